// Package keyed provides a mutex per key. Holders of different keys never
// block each other, and idle keys take no memory.
package keyed

import (
	"context"
	"sync"
)

type lock struct {
	ch   chan struct{}
	refs int
}

type Mutex struct {
	mu    sync.Mutex
	locks map[string]*lock
}

func NewMutex() *Mutex {
	return &Mutex{locks: make(map[string]*lock)}
}

// Lock blocks until key is free and returns the function that releases it.
func (m *Mutex) Lock(key string) (unlock func()) {
	unlock, _ = m.LockContext(context.Background(), key)
	return unlock
}

// LockContext is Lock that gives up when ctx is done.
func (m *Mutex) LockContext(ctx context.Context, key string) (func(), error) {
	l := m.acquire(key)

	select {
	case l.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-l.ch
				m.release(key, l)
			})
		}, nil
	case <-ctx.Done():
		m.release(key, l)
		return nil, ctx.Err()
	}
}

// Len returns the number of keys that are held or waited on.
func (m *Mutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *Mutex) acquire(key string) *lock {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[key]
	if !ok {
		l = &lock{ch: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	return l
}

func (m *Mutex) release(key string, l *lock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}
