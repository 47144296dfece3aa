package projection_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/projection"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/statemachine"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lifecycle(t *testing.T, orderID string) []entities.DomainEvent {
	t.Helper()

	at := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	create := entities.Command{
		ID:      "create-" + orderID,
		OrderID: orderID,
		Kind:    entities.CommandCreate,
		Payload: entities.CommandPayload{
			CustomerName: "Dana",
			Items:        []entities.Item{{ProductID: "P1", Quantity: 3, UnitPrice: decimal.NewFromInt(7)}},
		},
	}

	order, ev, err := statemachine.Transition(nil, create, at)
	require.NoError(t, err)
	events := []entities.DomainEvent{ev}

	kinds := []entities.CommandKind{entities.CommandPay, entities.CommandConfirmPayment, entities.CommandShip}
	for i, kind := range kinds {
		c := entities.Command{ID: fmt.Sprintf("%s-%d", orderID, i), OrderID: orderID, Kind: kind}
		order, ev, err = statemachine.Transition(&order, c, at.Add(time.Duration(i+1)*time.Minute))
		require.NoError(t, err)
		events = append(events, ev)
	}
	return events
}

func TestApply_Incremental(t *testing.T) {
	events := lifecycle(t, "A")

	var p entities.Projection
	for _, ev := range events {
		var changed bool
		p, changed = projection.Apply(p, ev)
		assert.True(t, changed)
	}

	assert.Equal(t, "A", p.OrderID)
	assert.Equal(t, entities.StateShipped, p.State)
	assert.Equal(t, int64(4), p.Version)
	assert.Equal(t, entities.EventOrderShipped, p.LastEventKind)
	assert.True(t, decimal.NewFromInt(21).Equal(p.Total))
	require.Len(t, p.History, 4)
	assert.Equal(t, entities.StateCreated, p.History[0].State)
	assert.Equal(t, entities.StateShipped, p.History[3].State)
}

func TestApply_DuplicateIsNoop(t *testing.T) {
	events := lifecycle(t, "A")
	p := projection.Replay(events)

	for _, ev := range events {
		again, changed := projection.Apply(p, ev)
		assert.False(t, changed)
		assert.Equal(t, p, again)
	}
}

func TestReplay_MatchesIncrementalUnderRedelivery(t *testing.T) {
	events := lifecycle(t, "A")

	var incremental entities.Projection
	for _, ev := range events {
		incremental, _ = projection.Apply(incremental, ev)
	}

	streams := map[string][]entities.DomainEvent{
		"clean":               events,
		"every event twice":   {events[0], events[0], events[1], events[1], events[2], events[2], events[3], events[3]},
		"stale retries":       {events[0], events[1], events[0], events[2], events[1], events[3], events[2], events[0]},
		"tail redelivered":    append(append([]entities.DomainEvent{}, events...), events[3], events[3]),
		"retry after restart": append(append([]entities.DomainEvent{}, events[:2]...), events...),
	}

	for name, stream := range streams {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, incremental, projection.Replay(stream))
		})
	}
}

func TestReplay_Empty(t *testing.T) {
	p := projection.Replay(nil)
	assert.Equal(t, int64(0), p.Version)
	assert.Empty(t, p.OrderID)
}
