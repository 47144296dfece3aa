package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderState string

const (
	StateCreated        OrderState = "CREATED"
	StatePaymentPending OrderState = "PAYMENT_PENDING"
	StatePaid           OrderState = "PAID"
	StateShipped        OrderState = "SHIPPED"
	StateCancelled      OrderState = "CANCELLED"
	StateRefunded       OrderState = "REFUNDED"
	StateFailed         OrderState = "FAILED"
)

// IsTerminal reports whether no further transition is possible from the state.
func (s OrderState) IsTerminal() bool {
	switch s {
	case StateCancelled, StateRefunded, StateFailed:
		return true
	}
	return false
}

func (s OrderState) Valid() bool {
	switch s {
	case StateCreated, StatePaymentPending, StatePaid, StateShipped,
		StateCancelled, StateRefunded, StateFailed:
		return true
	}
	return false
}

type Category string

const (
	CategoryDigital    Category = "DIGITAL"
	CategoryPerishable Category = "PERISHABLE"
	CategoryStandard   Category = "STANDARD"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDigital, CategoryPerishable, CategoryStandard:
		return true
	}
	return false
}

type Item struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Category  Category
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID           string
	CustomerName string
	State        OrderState

	// позиции фиксируются при создании заказа и больше не меняются
	Items []Item
	Total decimal.Decimal

	Version int64

	PaymentRef     string
	TrackingNumber string
	Reason         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Clone returns a copy that does not share the items slice.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]Item, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}
