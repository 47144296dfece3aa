// Package cache keeps the idempotency records and order projections in Redis.
// While Redis is unreachable both stores fall back to process memory; a
// monitor pings Redis and pushes the local entries back once it returns.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ModeRedis = "redis"
	ModeLocal = "local"
)

// fallbackStore is a store that can run on local memory and move its local
// entries to Redis later.
type fallbackStore interface {
	name() string
	localSize() int
	resync(ctx context.Context) (int, error)
}

type Status struct {
	Mode           string         `json:"mode"`
	RedisAvailable bool           `json:"redis_available"`
	LastCheck      time.Time      `json:"last_check"`
	LastError      string         `json:"last_error,omitempty"`
	LocalEntries   map[string]int `json:"local_entries"`
}

type Monitor struct {
	logger   *slog.Logger
	rdb      redis.UniversalClient
	interval time.Duration

	available atomic.Bool

	mu        sync.Mutex
	stores    []fallbackStore
	lastCheck time.Time
	lastErr   string
}

func NewMonitor(logger *slog.Logger, rdb redis.UniversalClient, interval time.Duration) *Monitor {
	m := &Monitor{
		logger:   logger.With(slog.String("service", "redis-monitor")),
		rdb:      rdb,
		interval: interval,
	}
	m.available.Store(true)
	return m
}

func (m *Monitor) register(s fallbackStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = append(m.stores, s)
}

func (m *Monitor) Available() bool {
	return m.available.Load()
}

// MarkUnavailable switches the stores to local memory until the next
// successful check.
func (m *Monitor) MarkUnavailable(err error) {
	if m.available.CompareAndSwap(true, false) {
		m.logger.Warn("redis unavailable, using local fallback", slog.Any("error", err))
	}
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
}

// Start runs the health check loop until ctx is done.
func (m *Monitor) Start(ctx context.Context) error {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Check(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Check pings Redis once. When Redis is back after an outage the local
// entries of every store are written to it.
func (m *Monitor) Check(ctx context.Context) bool {
	err := m.rdb.Ping(ctx).Err()

	m.mu.Lock()
	m.lastCheck = time.Now()
	if err != nil {
		m.lastErr = err.Error()
	} else {
		m.lastErr = ""
	}
	stores := append([]fallbackStore(nil), m.stores...)
	m.mu.Unlock()

	if err != nil {
		m.MarkUnavailable(err)
		return false
	}

	recovered := m.available.CompareAndSwap(false, true)
	if recovered {
		m.logger.Info("redis is available again, resyncing local entries")
	}

	// записи могли остаться локально, даже если redis упал и поднялся между проверками
	for _, s := range stores {
		if s.localSize() == 0 {
			continue
		}
		n, err := s.resync(ctx)
		if err != nil {
			m.logger.Error("failed to resync local entries", slog.String("store", s.name()), slog.Any("error", err))
			continue
		}
		m.logger.Info("local entries resynced", slog.String("store", s.name()), slog.Int("count", n))
	}
	return true
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		Mode:           ModeRedis,
		RedisAvailable: m.available.Load(),
		LastCheck:      m.lastCheck,
		LastError:      m.lastErr,
		LocalEntries:   make(map[string]int, len(m.stores)),
	}
	if !st.RedisAvailable {
		st.Mode = ModeLocal
	}
	for _, s := range m.stores {
		st.LocalEntries[s.name()] = s.localSize()
	}
	return st
}
