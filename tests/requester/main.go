package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/handler"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type requester struct {
	client *http.Client
	base   string

	mu     sync.Mutex
	orders []string
}

func (r *requester) do(ctx context.Context, method, path string, body any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.base+path, &buf)
	if err != nil {
		log.Println("bad request:", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		log.Println("Ошибка запроса:", err)
		return
	}
	resp.Body.Close()
	log.Println(method, path, "->", resp.Status)
}

func (r *requester) knownOrder() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.orders) == 0 {
		return "", false
	}
	return r.orders[rand.IntN(len(r.orders))], true
}

func (r *requester) create(ctx context.Context) {
	id := uuid.NewString()
	r.do(ctx, http.MethodPost, "/commands", handler.Command{
		CommandID: uuid.NewString(),
		OrderID:   id,
		Kind:      "CREATE",
		Payload: handler.CommandPayload{
			CustomerName: "customer_" + id[:8],
			Items: []handler.Item{{
				ProductID: "sku-1",
				Quantity:  1 + rand.IntN(3),
				UnitPrice: decimal.New(int64(500+rand.IntN(5000)), -2),
				Category:  "STANDARD",
			}},
		},
		IssuedAt: time.Now().UTC(),
	})

	r.mu.Lock()
	r.orders = append(r.orders, id)
	r.mu.Unlock()
}

// step sends one random request. Reads dominate, unknown ids hit the 404 path.
func (r *requester) step(ctx context.Context) {
	id, ok := r.knownOrder()
	if !ok || rand.IntN(10) == 0 {
		r.create(ctx)
		return
	}
	if rand.IntN(5) == 0 {
		id = uuid.NewString()
	}

	switch n := rand.IntN(20); {
	case n == 0:
		r.do(ctx, http.MethodPost, "/orders/"+id+"/rebuild", nil)
	case n == 1:
		r.do(ctx, http.MethodGet, "/cache/status", nil)
	case n < 6:
		r.do(ctx, http.MethodPost, "/commands", handler.Command{
			CommandID: uuid.NewString(),
			OrderID:   id,
			Kind:      "PAY",
			Payload:   handler.CommandPayload{PaymentRef: "pay_" + id[:8]},
			IssuedAt:  time.Now().UTC(),
		})
	case n < 12:
		r.do(ctx, http.MethodGet, "/orders/"+id+"/status", nil)
	default:
		r.do(ctx, http.MethodGet, "/orders/"+id, nil)
	}
}

func main() {
	base := flag.String("base", "http://localhost:9000", "service address")
	workers := flag.Int("workers", 10, "max parallel requests per round")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	r := &requester{client: &http.Client{Timeout: 5 * time.Second}, base: *base}
	for ctx.Err() == nil {
		var wg sync.WaitGroup
		for range rand.IntN(*workers + 1) {
			wg.Go(func() { r.step(ctx) })
		}
		wg.Wait()
		time.Sleep(20 * time.Millisecond)
	}
}
