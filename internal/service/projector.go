package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/cache"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/projection"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type EventLog interface {
	EventsByOrderID(ctx context.Context, orderID string) ([]entities.DomainEvent, error)
}

type ProjectionStore interface {
	Get(ctx context.Context, orderID string) (entities.Projection, error)
	Update(ctx context.Context, orderID string, fn cache.UpdateFunc) (entities.Projection, bool, error)
}

type Projector struct {
	logger *slog.Logger
	store  ProjectionStore
	events EventLog
}

func NewProjector(logger *slog.Logger, store ProjectionStore, events EventLog) *Projector {
	return &Projector{
		logger: logger.With(slog.String("service", "projector")),
		store:  store,
		events: events,
	}
}

// Handle folds ev into the projection of its order. Redelivered and
// out-of-date events leave the projection as it is.
func (p *Projector) Handle(ctx context.Context, ev entities.DomainEvent) error {
	ctx, span := tracing.Tracer().Start(ctx, "Projector.Handle", trace.WithAttributes(
		attribute.String("event.id", ev.ID),
		attribute.String("order.id", ev.OrderID),
		attribute.Int64("order.version", ev.Version),
	), trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	_, changed, err := p.store.Update(ctx, ev.OrderID, func(cur entities.Projection) (entities.Projection, bool) {
		return projection.Apply(cur, ev)
	})
	if err != nil {
		return fmt.Errorf("failed to apply event: %w", err)
	}

	if !changed {
		projectionUpdates.WithLabelValues("skipped").Inc()
		p.logger.Debug("event already applied", slog.String("event_id", ev.ID), slog.Int64("version", ev.Version))
		return nil
	}
	projectionUpdates.WithLabelValues("applied").Inc()
	return nil
}

// Rebuild replays the event log of orderID into its projection. A stored
// projection that is already newer than the log is kept.
func (p *Projector) Rebuild(ctx context.Context, orderID string) (entities.Projection, error) {
	ctx, span := tracing.Tracer().Start(ctx, "Projector.Rebuild", trace.WithAttributes(
		attribute.String("order.id", orderID),
	))
	defer span.End()

	events, err := p.events.EventsByOrderID(ctx, orderID)
	if err != nil {
		return entities.Projection{}, fmt.Errorf("failed to load events: %w", err)
	}
	if len(events) == 0 {
		return entities.Projection{}, entities.ErrOrderNotFound
	}

	rebuilt := projection.Replay(events)
	stored, _, err := p.store.Update(ctx, orderID, func(cur entities.Projection) (entities.Projection, bool) {
		if cur.Version > rebuilt.Version {
			return cur, false
		}
		return rebuilt, true
	})
	if err != nil {
		return entities.Projection{}, fmt.Errorf("failed to store projection: %w", err)
	}

	projectionRebuilds.Inc()
	p.logger.Info("projection rebuilt",
		slog.String("order_id", orderID), slog.Int("events", len(events)), slog.Int64("version", stored.Version))
	return stored, nil
}
