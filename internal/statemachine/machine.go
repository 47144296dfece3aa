// Package statemachine holds the order lifecycle transition rules. Transition
// is a pure function: the same order, command and time always give the same
// result, which makes events replayable.
package statemachine

import (
	"fmt"
	"strings"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"

	"github.com/google/uuid"
)

// eventNamespace seeds the name-based event ids.
var eventNamespace = uuid.MustParse("6f1c2a9e-3d4b-4f5a-9b7c-2e8d1f0a4c6b")

type transitionKey struct {
	from entities.OrderState
	kind entities.CommandKind
}

type rule struct {
	to    entities.OrderState
	event entities.EventKind
	apply func(o *entities.Order, p entities.CommandPayload)
}

var rules = map[transitionKey]rule{
	{entities.StateCreated, entities.CommandPay}: {
		to:    entities.StatePaymentPending,
		event: entities.EventPaymentRequested,
		apply: func(o *entities.Order, p entities.CommandPayload) { o.PaymentRef = p.PaymentRef },
	},
	{entities.StatePaymentPending, entities.CommandConfirmPayment}: {
		to:    entities.StatePaid,
		event: entities.EventPaymentConfirmed,
		apply: func(o *entities.Order, p entities.CommandPayload) {
			if p.PaymentRef != "" {
				o.PaymentRef = p.PaymentRef
			}
		},
	},
	{entities.StatePaymentPending, entities.CommandDeclinePayment}: {
		to:    entities.StateFailed,
		event: entities.EventPaymentDeclined,
		apply: setReason,
	},
	{entities.StatePaid, entities.CommandShip}: {
		to:    entities.StateShipped,
		event: entities.EventOrderShipped,
		apply: func(o *entities.Order, p entities.CommandPayload) { o.TrackingNumber = p.TrackingNumber },
	},
	{entities.StatePaid, entities.CommandRefund}:           {to: entities.StateRefunded, event: entities.EventOrderRefunded, apply: setReason},
	{entities.StateShipped, entities.CommandRefund}:        {to: entities.StateRefunded, event: entities.EventOrderRefunded, apply: setReason},
	{entities.StateCreated, entities.CommandCancel}:        {to: entities.StateCancelled, event: entities.EventOrderCancelled, apply: setReason},
	{entities.StatePaymentPending, entities.CommandCancel}: {to: entities.StateCancelled, event: entities.EventOrderCancelled, apply: setReason},
	{entities.StatePaid, entities.CommandCancel}:           {to: entities.StateCancelled, event: entities.EventOrderCancelled, apply: setReason},
}

func setReason(o *entities.Order, p entities.CommandPayload) {
	o.Reason = p.Reason
}

// EventID derives the id of the event produced by a command, so that
// reprocessing a command can never mint a second event id.
func EventID(commandID string) string {
	return uuid.NewSHA1(eventNamespace, []byte(commandID)).String()
}

// Transition computes the next order state for cmd. current is nil when the
// order does not exist yet. Rejections wrap entities.ErrValidation,
// entities.ErrInvalidTransition or entities.ErrOrderNotFound.
func Transition(current *entities.Order, cmd entities.Command, now time.Time) (entities.Order, entities.DomainEvent, error) {
	if err := cmd.Validate(); err != nil {
		return entities.Order{}, entities.DomainEvent{}, err
	}

	if current == nil {
		if cmd.Kind != entities.CommandCreate {
			return entities.Order{}, entities.DomainEvent{}, fmt.Errorf("%w: %s", entities.ErrOrderNotFound, cmd.OrderID)
		}
		return create(cmd, now)
	}

	if current.ID != cmd.OrderID {
		return entities.Order{}, entities.DomainEvent{}, fmt.Errorf("%w: command targets order %s, got %s", entities.ErrValidation, cmd.OrderID, current.ID)
	}
	if cmd.Kind == entities.CommandCreate {
		return entities.Order{}, entities.DomainEvent{}, fmt.Errorf("%w: order %s already exists", entities.ErrInvalidTransition, current.ID)
	}

	r, ok := rules[transitionKey{from: current.State, kind: cmd.Kind}]
	if !ok || current.State.IsTerminal() {
		return entities.Order{}, entities.DomainEvent{}, fmt.Errorf("%w: %s is not allowed in state %s", entities.ErrInvalidTransition, cmd.Kind, current.State)
	}

	next := current.Clone()
	next.State = r.to
	next.Version = current.Version + 1
	next.UpdatedAt = now
	r.apply(&next, cmd.Payload)
	next.Total = entities.ComputeTotal(next.Items)

	return next, newEvent(next, cmd, r.event, now), nil
}

func create(cmd entities.Command, now time.Time) (entities.Order, entities.DomainEvent, error) {
	if err := validateCreate(cmd.Payload); err != nil {
		return entities.Order{}, entities.DomainEvent{}, err
	}

	items := make([]entities.Item, len(cmd.Payload.Items))
	for i, it := range cmd.Payload.Items {
		if it.Category == "" {
			it.Category = entities.CategoryStandard
		}
		items[i] = it
	}

	order := entities.Order{
		ID:           cmd.OrderID,
		CustomerName: strings.TrimSpace(cmd.Payload.CustomerName),
		State:        entities.StateCreated,
		Items:        items,
		Total:        entities.ComputeTotal(items),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return order, newEvent(order, cmd, entities.EventOrderCreated, now), nil
}

func validateCreate(p entities.CommandPayload) error {
	if strings.TrimSpace(p.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", entities.ErrValidation)
	}
	if len(p.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", entities.ErrValidation)
	}
	for i, it := range p.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("%w: item %d: product id is required", entities.ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", entities.ErrValidation, i)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d: unit price must not be negative", entities.ErrValidation, i)
		}
		if it.Category != "" && !it.Category.Valid() {
			return fmt.Errorf("%w: item %d: unknown category %q", entities.ErrValidation, i, it.Category)
		}
	}
	return nil
}

func newEvent(o entities.Order, cmd entities.Command, kind entities.EventKind, now time.Time) entities.DomainEvent {
	return entities.DomainEvent{
		ID:        EventID(cmd.ID),
		OrderID:   o.ID,
		CommandID: cmd.ID,
		Kind:      kind,
		Version:   o.Version,
		Snapshot:  o.Clone(),
		EmittedAt: now,
	}
}
