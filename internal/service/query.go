package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"

	"golang.org/x/sync/singleflight"
)

type Rebuilder interface {
	Rebuild(ctx context.Context, orderID string) (entities.Projection, error)
}

type QueryService struct {
	logger    *slog.Logger
	store     ProjectionStore
	rebuilder Rebuilder
	group     singleflight.Group
}

func NewQueryService(logger *slog.Logger, store ProjectionStore, rebuilder Rebuilder) *QueryService {
	return &QueryService{
		logger:    logger.With(slog.String("service", "query")),
		store:     store,
		rebuilder: rebuilder,
	}
}

// GetProjection returns the read view of an order. A missing view is rebuilt
// from the event log; concurrent misses for one order share one rebuild.
func (s *QueryService) GetProjection(ctx context.Context, orderID string) (entities.Projection, error) {
	p, err := s.store.Get(ctx, orderID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, entities.ErrProjectionNotFound) {
		return entities.Projection{}, err
	}

	v, err, shared := s.group.Do(orderID, func() (any, error) {
		return s.rebuilder.Rebuild(context.WithoutCancel(ctx), orderID)
	})
	if err != nil {
		return entities.Projection{}, err
	}
	if shared {
		s.logger.Debug("rebuild shared", slog.String("order_id", orderID))
	}
	return v.(entities.Projection), nil
}

// Rebuild forces a replay of the event log into the projection.
func (s *QueryService) Rebuild(ctx context.Context, orderID string) (entities.Projection, error) {
	v, err, _ := s.group.Do(orderID, func() (any, error) {
		return s.rebuilder.Rebuild(context.WithoutCancel(ctx), orderID)
	})
	if err != nil {
		return entities.Projection{}, err
	}
	return v.(entities.Projection), nil
}
