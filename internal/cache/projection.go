package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	localcache "github.com/SergeyBogomolovv/order-lifecycle/pkg/cache"

	"github.com/redis/go-redis/v9"
)

const (
	projectionPrefix = "projection:"

	fieldVersion = "version"
	fieldData    = "data"

	maxWatchRetries = 10
)

func projectionKey(orderID string) string {
	return projectionPrefix + orderID
}

// UpdateFunc derives the next projection from the stored one. It returns
// false when nothing has to be written.
type UpdateFunc func(p entities.Projection) (entities.Projection, bool)

// ProjectionStore keeps one hash per order with the projection version and
// its encoded body. Updates are compare-and-set on the hash.
type ProjectionStore struct {
	logger  *slog.Logger
	rdb     redis.UniversalClient
	monitor *Monitor
	ttl     time.Duration

	localMu sync.Mutex
	local   *localcache.LRUCache[entities.Projection]
}

// NewProjectionStore builds the store. ttl of zero keeps projections in Redis
// forever. local may be nil to disable the fallback.
func NewProjectionStore(logger *slog.Logger, rdb redis.UniversalClient, monitor *Monitor, local *localcache.LRUCache[entities.Projection], ttl time.Duration) *ProjectionStore {
	s := &ProjectionStore{
		logger:  logger.With(slog.String("service", "projection-store")),
		rdb:     rdb,
		monitor: monitor,
		ttl:     ttl,
		local:   local,
	}
	if local != nil {
		monitor.register(s)
	}
	return s
}

func (s *ProjectionStore) Get(ctx context.Context, orderID string) (entities.Projection, error) {
	if s.local != nil {
		if p, ok := s.local.Get(projectionKey(orderID)); ok {
			return p, nil
		}
	}

	if !s.monitor.Available() {
		if s.local == nil {
			return entities.Projection{}, fmt.Errorf("%w: redis is down", entities.ErrTransportUnavailable)
		}
		return entities.Projection{}, entities.ErrProjectionNotFound
	}

	data, err := s.rdb.HGet(ctx, projectionKey(orderID), fieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.Projection{}, entities.ErrProjectionNotFound
	}
	if err != nil {
		if err = s.fallback(ctx, err); err != nil {
			return entities.Projection{}, err
		}
		return entities.Projection{}, entities.ErrProjectionNotFound
	}

	return decodeProjection(data)
}

// Update applies fn to the stored projection of orderID atomically. A missing
// projection is passed to fn as the zero value.
func (s *ProjectionStore) Update(ctx context.Context, orderID string, fn UpdateFunc) (entities.Projection, bool, error) {
	if s.monitor.Available() {
		p, changed, err := s.updateRedis(ctx, projectionKey(orderID), fn)
		if err == nil {
			s.dropStaleLocal(projectionKey(orderID), p.Version)
			return p, changed, nil
		}
		if err = s.fallback(ctx, err); err != nil {
			return entities.Projection{}, false, err
		}
	} else if s.local == nil {
		return entities.Projection{}, false, fmt.Errorf("%w: redis is down", entities.ErrTransportUnavailable)
	}

	return s.updateLocal(projectionKey(orderID), fn)
}

// Replace overwrites the projection, whatever version is stored.
func (s *ProjectionStore) Replace(ctx context.Context, p entities.Projection) error {
	_, _, err := s.Update(ctx, p.OrderID, func(entities.Projection) (entities.Projection, bool) {
		return p, true
	})
	return err
}

func (s *ProjectionStore) updateRedis(ctx context.Context, key string, fn UpdateFunc) (entities.Projection, bool, error) {
	var (
		result  entities.Projection
		changed bool
	)

	txf := func(tx *redis.Tx) error {
		current, err := s.readTx(ctx, tx, key)
		if err != nil {
			return err
		}

		next, ok := fn(current)
		if !ok {
			result, changed = current, false
			return nil
		}

		data, err := next.Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal projection: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldVersion, next.Version, fieldData, data)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
			return nil
		})
		if err == nil {
			result, changed = next, true
		}
		return err
	}

	for range maxWatchRetries {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return result, changed, err
	}
	return entities.Projection{}, false, fmt.Errorf("%w: projection %s kept changing", entities.ErrConcurrencyConflict, strings.TrimPrefix(key, projectionPrefix))
}

func (s *ProjectionStore) readTx(ctx context.Context, tx *redis.Tx, key string) (entities.Projection, error) {
	data, err := tx.HGet(ctx, key, fieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.Projection{}, nil
	}
	if err != nil {
		return entities.Projection{}, err
	}
	return decodeProjection(data)
}

func (s *ProjectionStore) updateLocal(key string, fn UpdateFunc) (entities.Projection, bool, error) {
	s.localMu.Lock()
	defer s.localMu.Unlock()

	current, _ := s.local.Get(key)
	next, ok := fn(current)
	if !ok {
		return current, false, nil
	}
	s.local.Set(key, next)
	return next, true, nil
}

func (s *ProjectionStore) dropStaleLocal(key string, version int64) {
	if s.local == nil {
		return
	}
	s.localMu.Lock()
	defer s.localMu.Unlock()
	if p, ok := s.local.Get(key); ok && p.Version <= version {
		s.local.Delete(key)
	}
}

func (s *ProjectionStore) fallback(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, entities.ErrConcurrencyConflict) {
		return err
	}
	s.monitor.MarkUnavailable(err)
	if s.local == nil {
		return fmt.Errorf("%w: %w", entities.ErrTransportUnavailable, err)
	}
	s.logger.Debug("redis error, falling back to local projections", slog.Any("error", err))
	return nil
}

func (s *ProjectionStore) name() string { return "projections" }

func (s *ProjectionStore) localSize() int { return s.local.Size() }

// resync moves local projections to Redis. A projection already stored in
// Redis with the same or a newer version is kept.
func (s *ProjectionStore) resync(ctx context.Context) (int, error) {
	var (
		n    int
		errs error
	)
	s.local.Range(func(key string, p entities.Projection, _ time.Duration) bool {
		_, _, err := s.updateRedis(ctx, key, func(current entities.Projection) (entities.Projection, bool) {
			return p, p.Version > current.Version
		})
		if err != nil {
			errs = err
			return false
		}
		s.local.Delete(key)
		n++
		return true
	})
	return n, errs
}

func decodeProjection(data []byte) (entities.Projection, error) {
	var p entities.Projection
	if err := p.Unmarshal(data); err != nil {
		return entities.Projection{}, fmt.Errorf("failed to unmarshal projection: %w", err)
	}
	return p, nil
}
