package entities

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/shopspring/decimal"
)

type StateChange struct {
	EventID string
	Kind    EventKind
	State   OrderState
	Version int64
	At      time.Time
}

// Projection is the denormalized read view of an order. It is eventually
// consistent with the order store and can always be rebuilt from events.
type Projection struct {
	OrderID        string
	CustomerName   string
	State          OrderState
	Items          []Item
	Total          decimal.Decimal
	Version        int64
	PaymentRef     string
	TrackingNumber string
	Reason         string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	LastEventID   string
	LastEventKind EventKind
	History       []StateChange
}

func (p *Projection) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Projection) Unmarshal(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(p)
}
