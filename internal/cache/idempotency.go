package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	localcache "github.com/SergeyBogomolovv/order-lifecycle/pkg/cache"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idem:"

const maxRecordAttempts = 3

// errKeyChurn means the key kept expiring between SETNX and GET. Redis itself
// is fine, so it does not switch the cache to the local store.
var errKeyChurn = errors.New("idempotency key expired while recording")

func idempotencyKey(commandID string) string {
	return idempotencyPrefix + commandID
}

// IdempotencyCache maps command ids to their final outcome. The first outcome
// recorded for a command id wins until its ttl runs out.
type IdempotencyCache struct {
	logger  *slog.Logger
	rdb     redis.UniversalClient
	monitor *Monitor
	local   *localcache.LRUCache[[]byte]
}

// NewIdempotencyCache builds the cache. local may be nil, then Redis faults
// are returned as entities.ErrTransportUnavailable instead of being absorbed.
func NewIdempotencyCache(logger *slog.Logger, rdb redis.UniversalClient, monitor *Monitor, local *localcache.LRUCache[[]byte]) *IdempotencyCache {
	c := &IdempotencyCache{
		logger:  logger.With(slog.String("service", "idempotency-cache")),
		rdb:     rdb,
		monitor: monitor,
		local:   local,
	}
	if local != nil {
		monitor.register(c)
	}
	return c
}

// Record stores outcome unless the command id already has one, and returns
// the outcome that is stored afterwards.
func (c *IdempotencyCache) Record(ctx context.Context, outcome entities.Outcome, ttl time.Duration) (entities.Outcome, error) {
	data, err := outcome.Marshal()
	if err != nil {
		return entities.Outcome{}, fmt.Errorf("failed to marshal outcome: %w", err)
	}
	key := idempotencyKey(outcome.CommandID)

	if c.monitor.Available() {
		stored, err := c.recordRedis(ctx, key, data, ttl)
		if err == nil {
			return decodeOutcome(stored)
		}
		if errors.Is(err, errKeyChurn) {
			return entities.Outcome{}, fmt.Errorf("%w: %w", entities.ErrTransportUnavailable, err)
		}
		if err = c.fallback(ctx, err); err != nil {
			return entities.Outcome{}, err
		}
	} else if c.local == nil {
		return entities.Outcome{}, fmt.Errorf("%w: redis is down", entities.ErrTransportUnavailable)
	}

	stored, _ := c.local.SetIfAbsent(key, data, ttl)
	return decodeOutcome(stored)
}

func (c *IdempotencyCache) recordRedis(ctx context.Context, key string, data []byte, ttl time.Duration) ([]byte, error) {
	for range maxRecordAttempts {
		ok, err := c.rdb.SetNX(ctx, key, data, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return data, nil
		}

		existing, err := c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// истекла между SETNX и GET, повторяем запись
			continue
		}
		return existing, err
	}
	return nil, errKeyChurn
}

// Lookup returns the outcome recorded for commandID, if any.
func (c *IdempotencyCache) Lookup(ctx context.Context, commandID string) (entities.Outcome, bool, error) {
	key := idempotencyKey(commandID)

	if c.local != nil {
		if data, ok := c.local.Get(key); ok {
			out, err := decodeOutcome(data)
			return out, err == nil, err
		}
	}

	if !c.monitor.Available() {
		if c.local == nil {
			return entities.Outcome{}, false, fmt.Errorf("%w: redis is down", entities.ErrTransportUnavailable)
		}
		return entities.Outcome{}, false, nil
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.Outcome{}, false, nil
	}
	if err != nil {
		if err = c.fallback(ctx, err); err != nil {
			return entities.Outcome{}, false, err
		}
		return entities.Outcome{}, false, nil
	}

	out, err := decodeOutcome(data)
	return out, err == nil, err
}

// fallback decides what a Redis error means for the caller: nil when the
// local store takes over, an error otherwise.
func (c *IdempotencyCache) fallback(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.monitor.MarkUnavailable(err)
	if c.local == nil {
		return fmt.Errorf("%w: %w", entities.ErrTransportUnavailable, err)
	}
	c.logger.Debug("redis error, falling back to local cache", slog.Any("error", err))
	return nil
}

func (c *IdempotencyCache) name() string { return "idempotency" }

func (c *IdempotencyCache) localSize() int { return c.local.Size() }

func (c *IdempotencyCache) resync(ctx context.Context) (int, error) {
	var (
		n    int
		errs error
	)
	c.local.Range(func(key string, value []byte, ttl time.Duration) bool {
		if err := c.rdb.SetNX(ctx, key, value, ttl).Err(); err != nil {
			errs = err
			return false
		}
		c.local.Delete(key)
		n++
		return true
	})
	return n, errs
}

func decodeOutcome(data []byte) (entities.Outcome, error) {
	var out entities.Outcome
	if err := out.Unmarshal(data); err != nil {
		return entities.Outcome{}, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}
	return out, nil
}
