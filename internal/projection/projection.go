// Package projection builds the order read view from domain events.
package projection

import (
	"slices"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
)

// Apply folds ev into p. Events whose resulting version is not newer than the
// projection are ignored, so redelivered events are a no-op. The returned
// flag tells whether p changed.
func Apply(p entities.Projection, ev entities.DomainEvent) (entities.Projection, bool) {
	if ev.Version <= p.Version {
		return p, false
	}

	s := ev.Snapshot
	next := entities.Projection{
		OrderID:        ev.OrderID,
		CustomerName:   s.CustomerName,
		State:          s.State,
		Items:          slices.Clone(s.Items),
		Total:          s.Total,
		Version:        ev.Version,
		PaymentRef:     s.PaymentRef,
		TrackingNumber: s.TrackingNumber,
		Reason:         s.Reason,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		LastEventID:    ev.ID,
		LastEventKind:  ev.Kind,
	}

	next.History = make([]entities.StateChange, 0, len(p.History)+1)
	next.History = append(next.History, p.History...)
	next.History = append(next.History, entities.StateChange{
		EventID: ev.ID,
		Kind:    ev.Kind,
		State:   s.State,
		Version: ev.Version,
		At:      ev.EmittedAt,
	})

	return next, true
}

// Replay builds a projection from scratch out of an event stream of one
// order. Duplicates in the stream are skipped the same way Apply skips them.
func Replay(events []entities.DomainEvent) entities.Projection {
	var p entities.Projection
	for _, ev := range events {
		p, _ = Apply(p, ev)
	}
	return p
}
