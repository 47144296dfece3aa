package handler

import (
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"

	"github.com/shopspring/decimal"
)

// Command запрос на изменение заказа. Тот же формат читается из топика команд.
type Command struct {
	CommandID string         `json:"commandId" validate:"required,max=128"`
	OrderID   string         `json:"orderId" validate:"required,max=128"`
	Kind      string         `json:"kind" validate:"required,oneof=CREATE PAY CONFIRM_PAYMENT DECLINE_PAYMENT SHIP CANCEL REFUND" example:"PAY"`
	Payload   CommandPayload `json:"payload"`
	IssuedAt  time.Time      `json:"issuedAt"`
}

// CommandPayload данные команды, читаются только поля нужные для её типа
type CommandPayload struct {
	CustomerName   string `json:"customerName,omitempty"`
	Items          []Item `json:"items,omitempty" validate:"omitempty,dive"`
	PaymentRef     string `json:"paymentRef,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// Item позиция заказа
type Item struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unitPrice" swaggertype:"string" example:"10.50"`
	Category  string          `json:"category,omitempty" validate:"omitempty,oneof=DIGITAL PERISHABLE STANDARD"`
}

// Event событие, созданное принятой командой
type Event struct {
	EventID   string    `json:"eventId"`
	Kind      string    `json:"kind"`
	Version   int64     `json:"resultingVersion"`
	EmittedAt time.Time `json:"emittedAt"`
}

// Outcome результат обработки команды
type Outcome struct {
	CommandID string `json:"commandId"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status" example:"ACCEPTED"`
	Reason    string `json:"reason,omitempty" example:"INVALID_TRANSITION"`
	Message   string `json:"message,omitempty"`
	Event     *Event `json:"event,omitempty"`

	RetryAfterSeconds int  `json:"retryAfterSeconds,omitempty"`
	PublishPending    bool `json:"publishPending,omitempty"`
	Replayed          bool `json:"replayed,omitempty"`
}

// StateChange запись истории заказа
type StateChange struct {
	EventID string    `json:"eventId"`
	Kind    string    `json:"kind"`
	State   string    `json:"state"`
	Version int64     `json:"version"`
	At      time.Time `json:"at"`
}

// Order представление заказа для чтения
type Order struct {
	OrderID        string          `json:"orderId"`
	CustomerName   string          `json:"customerName"`
	State          string          `json:"state" example:"PAID"`
	Items          []Item          `json:"items"`
	Total          decimal.Decimal `json:"total" swaggertype:"string" example:"25.00"`
	Version        int64           `json:"version"`
	PaymentRef     string          `json:"paymentRef,omitempty"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	LastEventID    string          `json:"lastEventId"`
	LastEventKind  string          `json:"lastEventKind"`
	History        []StateChange   `json:"history"`
}

// OrderStatus краткий статус заказа
type OrderStatus struct {
	OrderID   string    `json:"orderId"`
	State     string    `json:"state" example:"SHIPPED"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ItemJSONToEntity(i Item) entities.Item {
	return entities.Item{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Category:  entities.Category(i.Category),
	}
}

func ItemEntityToJSON(i entities.Item) Item {
	return Item{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Category:  string(i.Category),
	}
}

func CommandJSONToEntity(c Command) entities.Command {
	var items []entities.Item
	if len(c.Payload.Items) > 0 {
		items = make([]entities.Item, 0, len(c.Payload.Items))
		for _, it := range c.Payload.Items {
			items = append(items, ItemJSONToEntity(it))
		}
	}

	issuedAt := c.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now().UTC()
	}

	return entities.Command{
		ID:      c.CommandID,
		OrderID: c.OrderID,
		Kind:    entities.CommandKind(c.Kind),
		Payload: entities.CommandPayload{
			CustomerName:   c.Payload.CustomerName,
			Items:          items,
			PaymentRef:     c.Payload.PaymentRef,
			TrackingNumber: c.Payload.TrackingNumber,
			Reason:         c.Payload.Reason,
		},
		IssuedAt: issuedAt,
	}
}

func OutcomeEntityToJSON(o entities.Outcome) Outcome {
	res := Outcome{
		CommandID:      o.CommandID,
		OrderID:        o.OrderID,
		Status:         string(o.Status),
		Reason:         string(o.Reason),
		Message:        o.Message,
		PublishPending: o.PublishPending,
		Replayed:       o.Replayed,
	}
	if o.Event != nil {
		res.Event = &Event{
			EventID:   o.Event.ID,
			Kind:      string(o.Event.Kind),
			Version:   o.Event.Version,
			EmittedAt: o.Event.EmittedAt,
		}
	}
	if o.Status == entities.OutcomeDeferred {
		res.RetryAfterSeconds = max(1, int((o.RetryAfter+time.Second-1)/time.Second))
	}
	return res
}

func ProjectionEntityToJSON(p entities.Projection) Order {
	items := make([]Item, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, ItemEntityToJSON(it))
	}

	history := make([]StateChange, 0, len(p.History))
	for _, h := range p.History {
		history = append(history, StateChange{
			EventID: h.EventID,
			Kind:    string(h.Kind),
			State:   string(h.State),
			Version: h.Version,
			At:      h.At,
		})
	}

	return Order{
		OrderID:        p.OrderID,
		CustomerName:   p.CustomerName,
		State:          string(p.State),
		Items:          items,
		Total:          p.Total,
		Version:        p.Version,
		PaymentRef:     p.PaymentRef,
		TrackingNumber: p.TrackingNumber,
		Reason:         p.Reason,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		LastEventID:    p.LastEventID,
		LastEventKind:  string(p.LastEventKind),
		History:        history,
	}
}

func ProjectionEntityToStatus(p entities.Projection) OrderStatus {
	return OrderStatus{
		OrderID:   p.OrderID,
		State:     string(p.State),
		Version:   p.Version,
		UpdatedAt: p.UpdatedAt,
	}
}
