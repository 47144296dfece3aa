package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/handler"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

var categories = []string{"DIGITAL", "PERISHABLE", "STANDARD"}

func randomItems() []handler.Item {
	items := make([]handler.Item, 1+rand.IntN(3))
	for i := range items {
		items[i] = handler.Item{
			ProductID: fmt.Sprintf("sku-%d", rand.IntN(1000)),
			Quantity:  1 + rand.IntN(5),
			UnitPrice: decimal.New(int64(100+rand.IntN(10000)), -2),
			Category:  categories[rand.IntN(len(categories))],
		}
	}
	return items
}

func command(orderID, kind string, payload handler.CommandPayload) handler.Command {
	return handler.Command{
		CommandID: uuid.NewString(),
		OrderID:   orderID,
		Kind:      kind,
		Payload:   payload,
		IssuedAt:  time.Now().UTC(),
	}
}

// lifecycle builds the commands of one order. Some orders take the decline
// or cancel path, and every tenth command is an invalid transition.
func lifecycle() []handler.Command {
	id := uuid.NewString()
	cmds := []handler.Command{
		command(id, "CREATE", handler.CommandPayload{CustomerName: "customer_" + id[:8], Items: randomItems()}),
		command(id, "PAY", handler.CommandPayload{PaymentRef: "pay_" + id[:8]}),
	}

	switch rand.IntN(4) {
	case 0:
		cmds = append(cmds, command(id, "DECLINE_PAYMENT", handler.CommandPayload{Reason: "insufficient funds"}))
	case 1:
		cmds = append(cmds,
			command(id, "CONFIRM_PAYMENT", handler.CommandPayload{}),
			command(id, "CANCEL", handler.CommandPayload{Reason: "changed mind"}),
			command(id, "REFUND", handler.CommandPayload{}),
		)
	default:
		cmds = append(cmds,
			command(id, "CONFIRM_PAYMENT", handler.CommandPayload{}),
			command(id, "SHIP", handler.CommandPayload{TrackingNumber: "TRACK" + id[:6]}),
		)
	}

	if rand.IntN(10) == 0 {
		cmds = append(cmds, command(id, "PAY", handler.CommandPayload{PaymentRef: "late"}))
	}
	return cmds
}

func main() {
	writer := &kafka.Writer{
		Addr:     kafka.TCP("localhost:9092"),
		Topic:    "order-commands",
		Balancer: &kafka.Hash{},
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds := lifecycle()
			msgs := make([]kafka.Message, 0, len(cmds)+1)
			for _, cmd := range cmds {
				data, _ := json.Marshal(cmd)
				msgs = append(msgs, kafka.Message{Key: []byte(cmd.OrderID), Value: data})
			}
			// повторная доставка одной из команд
			msgs = append(msgs, msgs[rand.IntN(len(msgs))])

			if err := writer.WriteMessages(ctx, msgs...); err != nil {
				log.Println("failed to write commands:", err)
				continue
			}
			log.Println("order lifecycle generated", cmds[0].OrderID, len(cmds))
		case <-ctx.Done():
			return
		}
	}
}
