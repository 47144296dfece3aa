package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health ответ проверки зависимостей
type Health struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}

type HealthHandler struct {
	logger  *slog.Logger
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthHandler(logger *slog.Logger, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		logger:  logger.With(slog.String("handler", "health")),
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

func (h *HealthHandler) Init(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health проверяет доступность зависимостей.
// @Summary      Проверка здоровья
// @Tags         health
// @Produce      json
// @Success      200  {object}  Health
// @Failure      503  {object}  Health
// @Router       /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		res = Health{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	)
	for name, check := range h.checks {
		wg.Go(func() {
			status := "ok"
			if err := check.Ping(ctx); err != nil {
				h.logger.WarnContext(ctx, "health check failed", slog.String("check", name), slog.Any("error", err))
				status = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			res.Checks[name] = status
			if status != "ok" {
				res.Status = "degraded"
			}
		})
	}
	wg.Wait()

	code := http.StatusOK
	if res.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, res, code)
}
