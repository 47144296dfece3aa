package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/codec"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             string          `db:"id"`
	CustomerName   string          `db:"customer_name"`
	State          string          `db:"state"`
	Total          decimal.Decimal `db:"total"`
	Version        int64           `db:"version"`
	PaymentRef     sql.NullString  `db:"payment_ref"`
	TrackingNumber sql.NullString  `db:"tracking_number"`
	Reason         sql.NullString  `db:"reason"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type Item struct {
	OrderID   string          `db:"order_id"`
	Position  int             `db:"position"`
	ProductID string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Category  string          `db:"category"`
}

type Event struct {
	ID              string         `db:"id"`
	OrderID         string         `db:"order_id"`
	CommandID       string         `db:"command_id"`
	Kind            string         `db:"kind"`
	Version         int64          `db:"version"`
	Payload         []byte         `db:"payload"`
	EmittedAt       time.Time      `db:"emitted_at"`
	PublishStatus   string         `db:"publish_status"`
	PublishAttempts int            `db:"publish_attempts"`
	LastError       sql.NullString `db:"last_error"`
	PublishedAt     sql.NullTime   `db:"published_at"`
}

var eventColumns = []string{
	"id", "order_id", "command_id", "kind", "version", "payload", "emitted_at",
	"publish_status", "publish_attempts", "last_error", "published_at",
}

func ItemToEntity(i Item) entities.Item {
	return entities.Item{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Category:  entities.Category(i.Category),
	}
}

func OrderToEntity(o Order, items []Item) entities.Order {
	order := entities.Order{
		ID:             o.ID,
		CustomerName:   o.CustomerName,
		State:          entities.OrderState(o.State),
		Total:          o.Total,
		Version:        o.Version,
		PaymentRef:     nullStringToString(o.PaymentRef),
		TrackingNumber: nullStringToString(o.TrackingNumber),
		Reason:         nullStringToString(o.Reason),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if len(items) > 0 {
		order.Items = make([]entities.Item, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

func EventFromEntity(ev entities.DomainEvent) (Event, error) {
	payload, err := json.Marshal(codec.SnapshotFromOrder(ev.Snapshot))
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return Event{
		ID:            ev.ID,
		OrderID:       ev.OrderID,
		CommandID:     ev.CommandID,
		Kind:          string(ev.Kind),
		Version:       ev.Version,
		Payload:       payload,
		EmittedAt:     ev.EmittedAt,
		PublishStatus: string(entities.PublishStatusPending),
	}, nil
}

func EventToEntity(e Event) (entities.DomainEvent, error) {
	var snapshot codec.OrderSnapshot
	if err := json.Unmarshal(e.Payload, &snapshot); err != nil {
		return entities.DomainEvent{}, fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	return entities.DomainEvent{
		ID:        e.ID,
		OrderID:   e.OrderID,
		CommandID: e.CommandID,
		Kind:      entities.EventKind(e.Kind),
		Version:   e.Version,
		Snapshot:  snapshot.ToOrder(),
		EmittedAt: e.EmittedAt,
	}, nil
}

func EventsToEntities(rows []Event) ([]entities.DomainEvent, error) {
	events := make([]entities.DomainEvent, 0, len(rows))
	for _, row := range rows {
		ev, err := EventToEntity(row)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", row.ID, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
