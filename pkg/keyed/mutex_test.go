package keyed_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/pkg/keyed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutex_SameKeyIsExclusive(t *testing.T) {
	m := keyed.NewMutex()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			unlock := m.Lock("A")
			defer unlock()

			n := inside.Add(1)
			for {
				cur := maxInside.Load()
				if n <= cur || maxInside.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, m.Len())
}

func TestMutex_DifferentKeysDoNotBlock(t *testing.T) {
	m := keyed.NewMutex()

	unlockA := m.Lock("A")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := m.Lock("B")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another key blocked")
	}
}

func TestMutex_LockContextCancelled(t *testing.T) {
	m := keyed.NewMutex()
	unlock := m.Lock("A")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.LockContext(ctx, "A")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Equal(t, 0, m.Len())

	unlock2, err := m.LockContext(context.Background(), "A")
	require.NoError(t, err)
	unlock2()
}

func TestMutex_UnlockTwiceIsSafe(t *testing.T) {
	m := keyed.NewMutex()
	unlock := m.Lock("A")
	unlock()
	unlock()

	unlock = m.Lock("A")
	unlock()
	assert.Equal(t, 0, m.Len())
}
