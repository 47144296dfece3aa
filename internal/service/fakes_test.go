package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/trm"
)

var errConnReset = errors.New("connection reset by peer")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type txKey struct{}

type stagedTx struct {
	create   *entities.Order
	update   *entities.Order
	expected int64
	event    *entities.DomainEvent
}

// fakeStore is an in-memory order store with the same conditional write
// rules as the postgres repo. Writes are staged in the transaction and
// applied on commit, so a failed transaction leaves nothing behind.
type fakeStore struct {
	mu        sync.Mutex
	orders    map[string]entities.Order
	events    []entities.DomainEvent
	byCommand map[string]entities.DomainEvent
	status    map[string]entities.PublishStatus

	failGets    int
	failCommits int

	// beforeCommit runs under the store lock right before a commit is checked.
	beforeCommit func(s *fakeStore)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:    make(map[string]entities.Order),
		byCommand: make(map[string]entities.DomainEvent),
		status:    make(map[string]entities.PublishStatus),
	}
}

var _ trm.Manager = (*fakeStore)(nil)

func (s *fakeStore) BeginTx(ctx context.Context) (context.Context, trm.Transaction, error) {
	return nil, nil, errors.New("not supported")
}

func (s *fakeStore) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	tx := &stagedTx{}
	if err := callback(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCommits > 0 {
		s.failCommits--
		return errConnReset
	}
	if s.beforeCommit != nil {
		s.beforeCommit(s)
	}

	if tx.create != nil {
		if _, ok := s.orders[tx.create.ID]; ok {
			return fmt.Errorf("order exists: %w", entities.ErrConcurrencyConflict)
		}
	}
	if tx.update != nil {
		if cur, ok := s.orders[tx.update.ID]; !ok || cur.Version != tx.expected {
			return fmt.Errorf("stale version: %w", entities.ErrConcurrencyConflict)
		}
	}
	if tx.event != nil {
		if _, ok := s.byCommand[tx.event.CommandID]; ok {
			return fmt.Errorf("duplicate command: %w", entities.ErrConcurrencyConflict)
		}
		for _, ev := range s.events {
			if ev.OrderID == tx.event.OrderID && ev.Version == tx.event.Version {
				return fmt.Errorf("duplicate version: %w", entities.ErrConcurrencyConflict)
			}
		}
	}

	if tx.create != nil {
		s.orders[tx.create.ID] = tx.create.Clone()
	}
	if tx.update != nil {
		s.orders[tx.update.ID] = tx.update.Clone()
	}
	if tx.event != nil {
		s.events = append(s.events, *tx.event)
		s.byCommand[tx.event.CommandID] = *tx.event
		s.status[tx.event.ID] = entities.PublishStatusPending
	}
	return nil
}

func staged(ctx context.Context) *stagedTx {
	tx, ok := ctx.Value(txKey{}).(*stagedTx)
	if !ok {
		panic("write outside of transaction")
	}
	return tx
}

func (s *fakeStore) GetOrder(ctx context.Context, orderID string) (entities.Order, error) {
	if err := ctx.Err(); err != nil {
		return entities.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failGets > 0 {
		s.failGets--
		return entities.Order{}, errConnReset
	}
	o, ok := s.orders[orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (s *fakeStore) CreateOrder(ctx context.Context, o entities.Order) error {
	o = o.Clone()
	staged(ctx).create = &o
	return ctx.Err()
}

func (s *fakeStore) UpdateOrder(ctx context.Context, o entities.Order, expectedVersion int64) error {
	o = o.Clone()
	tx := staged(ctx)
	tx.update, tx.expected = &o, expectedVersion
	return ctx.Err()
}

func (s *fakeStore) InsertEvent(ctx context.Context, ev entities.DomainEvent) error {
	staged(ctx).event = &ev
	return ctx.Err()
}

func (s *fakeStore) EventByCommandID(ctx context.Context, commandID string) (entities.DomainEvent, error) {
	if err := ctx.Err(); err != nil {
		return entities.DomainEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.byCommand[commandID]
	if !ok {
		return entities.DomainEvent{}, entities.ErrEventNotFound
	}
	return ev, nil
}

func (s *fakeStore) EventsByOrderID(ctx context.Context, orderID string) ([]entities.DomainEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.DomainEvent
	for _, ev := range s.events {
		if ev.OrderID == orderID {
			out = append(out, ev)
		}
	}
	slices.SortFunc(out, func(a, b entities.DomainEvent) int { return int(a.Version - b.Version) })
	return out, nil
}

func (s *fakeStore) HasUnpublishedBefore(ctx context.Context, orderID string, version int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.events {
		if ev.OrderID == orderID && ev.Version < version && s.status[ev.ID] != entities.PublishStatusPublished {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) MarkEventPublishPending(_ context.Context, eventID string, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status[eventID] != entities.PublishStatusPublished {
		s.status[eventID] = entities.PublishStatusPublishPending
	}
	return nil
}

func (s *fakeStore) MarkEventPublished(_ context.Context, eventID string) error {
	s.markPublished(eventID)
	return nil
}

func (s *fakeStore) PendingEvents(_ context.Context, staleBefore time.Time, limit int) ([]entities.DomainEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.DomainEvent
	for _, ev := range s.events {
		switch s.status[ev.ID] {
		case entities.PublishStatusPublishPending:
			out = append(out, ev)
		case entities.PublishStatusPending:
			if ev.EmittedAt.Before(staleBefore) {
				out = append(out, ev)
			}
		}
	}
	slices.SortFunc(out, func(a, b entities.DomainEvent) int {
		if a.OrderID != b.OrderID {
			return strings.Compare(a.OrderID, b.OrderID)
		}
		return int(a.Version - b.Version)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) markPublished(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[eventID] = entities.PublishStatusPublished
}

func (s *fakeStore) publishStatus(eventID string) entities.PublishStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[eventID]
}

func (s *fakeStore) order(id string) (entities.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

func (s *fakeStore) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type fakeIdempotency struct {
	mu       sync.Mutex
	outcomes map[string]entities.Outcome
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{outcomes: make(map[string]entities.Outcome)}
}

func (f *fakeIdempotency) Record(ctx context.Context, out entities.Outcome, _ time.Duration) (entities.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return entities.Outcome{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.outcomes[out.CommandID]; ok {
		return prev, nil
	}
	f.outcomes[out.CommandID] = out
	return out, nil
}

func (f *fakeIdempotency) Lookup(ctx context.Context, commandID string) (entities.Outcome, bool, error) {
	if err := ctx.Err(); err != nil {
		return entities.Outcome{}, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out, ok := f.outcomes[commandID]
	return out, ok, nil
}

func (f *fakeIdempotency) has(commandID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.outcomes[commandID]
	return ok
}

func (f *fakeIdempotency) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.outcomes)
}

// fakePublisher keeps what reached the bus and updates the outbox status of
// the store the way the real publisher does.
type fakePublisher struct {
	mu        sync.Mutex
	outbox    *fakeStore
	published []entities.DomainEvent
	fail      bool
}

func newFakePublisher(outbox *fakeStore) *fakePublisher {
	return &fakePublisher{outbox: outbox}
}

func (f *fakePublisher) Publish(ctx context.Context, ev entities.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		f.outbox.MarkEventPublishPending(ctx, ev.ID, "broker down")
		return fmt.Errorf("%w: broker down", entities.ErrPublishFailure)
	}
	f.published = append(f.published, ev)
	f.outbox.markPublished(ev.ID)
	return nil
}

func (f *fakePublisher) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakePublisher) events() []entities.DomainEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.published)
}
