package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
)

type ReconcilerConfig struct {
	Interval time.Duration

	// GracePeriod is how old a PENDING event must be before it is treated as
	// abandoned by a crashed publish.
	GracePeriod time.Duration
	BatchSize   int
}

type Reconciler struct {
	logger    *slog.Logger
	outbox    OutboxRepo
	publisher EventPublisher
	cfg       ReconcilerConfig
	now       func() time.Time
}

func NewReconciler(logger *slog.Logger, outbox OutboxRepo, publisher EventPublisher, cfg ReconcilerConfig) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	return &Reconciler{
		logger:    logger.With(slog.String("service", "reconciler")),
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *Reconciler) Start(ctx context.Context) error {
	r.logger.Info("reconciler started", slog.Duration("interval", r.cfg.Interval))

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("reconciliation failed", slog.Any("error", err))
			}
		}
	}
}

// RunOnce republishes one batch of pending events and returns how many of
// them reached the bus. Events of one order go out in version order; after a
// failure the rest of that order waits for the next run, and so does an order
// whose earlier events are not in the batch yet.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	events, err := r.outbox.PendingEvents(ctx, r.now().Add(-r.cfg.GracePeriod), r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending events: %w", err)
	}

	published := 0
	blocked := make(map[string]struct{})
	checked := make(map[string]struct{})
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return published, err
		}
		if _, ok := blocked[ev.OrderID]; ok {
			reconciledEvents.WithLabelValues("skipped").Inc()
			continue
		}

		// события отсортированы по версии, достаточно проверить первое событие заказа
		if _, ok := checked[ev.OrderID]; !ok {
			checked[ev.OrderID] = struct{}{}
			if !r.inOrder(ctx, ev) {
				blocked[ev.OrderID] = struct{}{}
				reconciledEvents.WithLabelValues("skipped").Inc()
				continue
			}
		}

		if err := r.publisher.Publish(ctx, ev); err != nil {
			blocked[ev.OrderID] = struct{}{}
			reconciledEvents.WithLabelValues("failed").Inc()
			r.logger.Warn("event still pending",
				slog.String("event_id", ev.ID), slog.String("order_id", ev.OrderID), slog.Any("error", err))
			continue
		}

		published++
		reconciledEvents.WithLabelValues("published").Inc()
	}

	if len(events) > 0 {
		r.logger.Info("reconciliation finished", slog.Int("pending", len(events)), slog.Int("published", published))
	}
	return published, nil
}

// inOrder reports whether no earlier event of the order still waits for the
// bus outside of this batch.
func (r *Reconciler) inOrder(ctx context.Context, ev entities.DomainEvent) bool {
	if ev.Version == 1 {
		return true
	}
	held, err := r.outbox.HasUnpublishedBefore(ctx, ev.OrderID, ev.Version)
	if err != nil {
		r.logger.Warn("failed to check earlier events",
			slog.String("order_id", ev.OrderID), slog.Any("error", err))
		return false
	}
	if held {
		r.logger.Debug("event waits for an earlier one",
			slog.String("event_id", ev.ID), slog.String("order_id", ev.OrderID), slog.Int64("version", ev.Version))
	}
	return !held
}
