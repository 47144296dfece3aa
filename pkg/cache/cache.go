package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const janitorInterval = 2 * time.Minute

type entry[V any] struct {
	key        string
	value      V
	expiration time.Time
}

// LRUCache is a size-bounded cache with per-entry expiration. A capacity of
// zero or less means unbounded.
type LRUCache[V any] struct {
	capacity int
	mu       sync.Mutex
	ll       *list.List
	cache    map[string]*list.Element
	ttl      time.Duration
	now      func() time.Time
}

func NewLRUCache[V any](capacity int, ttl time.Duration) *LRUCache[V] {
	return &LRUCache[V]{
		capacity: capacity,
		ll:       list.New(),
		cache:    make(map[string]*list.Element),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.cache[key]; ok {
		ent := ele.Value.(*entry[V])
		if c.now().After(ent.expiration) {
			c.removeElement(ele)
			var zero V
			return zero, false
		}
		c.ll.MoveToFront(ele)
		return ent.value, true
	}
	var zero V
	return zero, false
}

func (c *LRUCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

func (c *LRUCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiration := c.now().Add(ttl)
	if ele, ok := c.cache[key]; ok {
		c.ll.MoveToFront(ele)
		ent := ele.Value.(*entry[V])
		ent.value = value
		ent.expiration = expiration
		return
	}

	ent := &entry[V]{key: key, value: value, expiration: expiration}
	ele := c.ll.PushFront(ent)
	c.cache[key] = ele

	if c.capacity > 0 && c.ll.Len() > c.capacity {
		c.removeOldest()
	}
}

// SetIfAbsent stores value unless a live entry exists, and returns the entry
// that is in the cache afterwards.
func (c *LRUCache[V]) SetIfAbsent(key string, value V, ttl time.Duration) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.cache[key]; ok {
		ent := ele.Value.(*entry[V])
		if !c.now().After(ent.expiration) {
			c.ll.MoveToFront(ele)
			return ent.value, false
		}
		c.removeElement(ele)
	}

	ent := &entry[V]{key: key, value: value, expiration: c.now().Add(ttl)}
	c.cache[key] = c.ll.PushFront(ent)
	if c.capacity > 0 && c.ll.Len() > c.capacity {
		c.removeOldest()
	}
	return value, true
}

func (c *LRUCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.cache[key]; ok {
		c.removeElement(ele)
	}
}

// Range calls fn for every live entry with its remaining ttl, from the most
// recently used one. fn runs outside the lock.
func (c *LRUCache[V]) Range(fn func(key string, value V, ttl time.Duration) bool) {
	type item struct {
		key   string
		value V
		ttl   time.Duration
	}

	c.mu.Lock()
	now := c.now()
	items := make([]item, 0, c.ll.Len())
	for e := c.ll.Front(); e != nil; e = e.Next() {
		ent := e.Value.(*entry[V])
		if left := ent.expiration.Sub(now); left > 0 {
			items = append(items, item{key: ent.key, value: ent.value, ttl: left})
		}
	}
	c.mu.Unlock()

	for _, it := range items {
		if !fn(it.key, it.value, it.ttl) {
			return
		}
	}
}

func (c *LRUCache[V]) removeOldest() {
	ele := c.ll.Back()
	if ele != nil {
		c.removeElement(ele)
	}
}

func (c *LRUCache[V]) removeElement(e *list.Element) {
	c.ll.Remove(e)
	ent := e.Value.(*entry[V])
	delete(c.cache, ent.key)
}

func (c *LRUCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRUCache[V]) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Start runs the janitor, so the cache can be registered as an app starter.
func (c *LRUCache[V]) Start(ctx context.Context) error {
	c.StartJanitor(ctx)
	return nil
}

func (c *LRUCache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for e := c.ll.Back(); e != nil; {
		prev := e.Prev()
		ent := e.Value.(*entry[V])
		if now.After(ent.expiration) {
			c.removeElement(e)
		}
		e = prev
	}
}
