package entities

import "time"

type EventKind string

const (
	EventOrderCreated     EventKind = "ORDER_CREATED"
	EventPaymentRequested EventKind = "PAYMENT_REQUESTED"
	EventPaymentConfirmed EventKind = "PAYMENT_CONFIRMED"
	EventPaymentDeclined  EventKind = "PAYMENT_DECLINED"
	EventOrderShipped     EventKind = "ORDER_SHIPPED"
	EventOrderCancelled   EventKind = "ORDER_CANCELLED"
	EventOrderRefunded    EventKind = "ORDER_REFUNDED"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventOrderCreated, EventPaymentRequested, EventPaymentConfirmed, EventPaymentDeclined,
		EventOrderShipped, EventOrderCancelled, EventOrderRefunded:
		return true
	}
	return false
}

// DomainEvent is append-only: once emitted it is never changed.
type DomainEvent struct {
	ID        string
	OrderID   string
	CommandID string
	Kind      EventKind

	// Version is the order version produced by the transition.
	Version int64

	// Snapshot is the order state right after the transition.
	Snapshot Order

	EmittedAt time.Time
}

type PublishStatus string

const (
	PublishStatusPending        PublishStatus = "PENDING"
	PublishStatusPublished      PublishStatus = "PUBLISHED"
	PublishStatusPublishPending PublishStatus = "PUBLISH_PENDING"
)
