package codec

import (
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"

	"github.com/shopspring/decimal"
)

// OrderSnapshot is the wire form of the order state carried by an event.
type OrderSnapshot struct {
	OrderID        string          `json:"orderId"`
	CustomerName   string          `json:"customerName"`
	State          string          `json:"state"`
	Items          []ItemSnapshot  `json:"items"`
	Total          decimal.Decimal `json:"total"`
	Version        int64           `json:"version"`
	PaymentRef     string          `json:"paymentRef,omitempty"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type ItemSnapshot struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Category  string          `json:"category"`
}

func SnapshotFromOrder(o entities.Order) OrderSnapshot {
	items := make([]ItemSnapshot, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemSnapshot{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Category:  string(it.Category),
		})
	}

	return OrderSnapshot{
		OrderID:        o.ID,
		CustomerName:   o.CustomerName,
		State:          string(o.State),
		Items:          items,
		Total:          o.Total,
		Version:        o.Version,
		PaymentRef:     o.PaymentRef,
		TrackingNumber: o.TrackingNumber,
		Reason:         o.Reason,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (s OrderSnapshot) ToOrder() entities.Order {
	items := make([]entities.Item, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, entities.Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Category:  entities.Category(it.Category),
		})
	}

	return entities.Order{
		ID:             s.OrderID,
		CustomerName:   s.CustomerName,
		State:          entities.OrderState(s.State),
		Items:          items,
		Total:          s.Total,
		Version:        s.Version,
		PaymentRef:     s.PaymentRef,
		TrackingNumber: s.TrackingNumber,
		Reason:         s.Reason,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
