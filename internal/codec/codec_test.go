package codec_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/codec"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var emittedAt = time.Date(2025, 3, 4, 12, 30, 0, 0, time.UTC)

func sampleEvent() entities.DomainEvent {
	return entities.DomainEvent{
		ID:        "0d9f1f5e-2c33-5b7a-9e2d-7b1c0c1f7a11",
		OrderID:   "order-1",
		CommandID: "cmd-1",
		Kind:      entities.EventPaymentRequested,
		Version:   2,
		Snapshot: entities.Order{
			ID:           "order-1",
			CustomerName: "Noa Levi",
			State:        entities.StatePaymentPending,
			Items: []entities.Item{
				{ProductID: "P1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.50"), Category: entities.CategoryDigital},
			},
			Total:      decimal.RequireFromString("21.00"),
			Version:    2,
			PaymentRef: "pay-7",
			CreatedAt:  emittedAt.Add(-time.Minute),
			UpdatedAt:  emittedAt,
		},
		EmittedAt: emittedAt,
	}
}

func assertSameEvent(t *testing.T, want, got entities.DomainEvent) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.OrderID, got.OrderID)
	assert.Equal(t, want.CommandID, got.CommandID)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.Version, got.Version)
	assert.True(t, want.EmittedAt.Equal(got.EmittedAt), "emitted at %s != %s", want.EmittedAt, got.EmittedAt)

	assert.Equal(t, want.Snapshot.State, got.Snapshot.State)
	assert.Equal(t, want.Snapshot.CustomerName, got.Snapshot.CustomerName)
	assert.Equal(t, want.Snapshot.PaymentRef, got.Snapshot.PaymentRef)
	assert.True(t, want.Snapshot.Total.Equal(got.Snapshot.Total))
	assert.True(t, want.Snapshot.CreatedAt.Equal(got.Snapshot.CreatedAt))
	require.Len(t, got.Snapshot.Items, len(want.Snapshot.Items))
	for i := range want.Snapshot.Items {
		assert.Equal(t, want.Snapshot.Items[i].ProductID, got.Snapshot.Items[i].ProductID)
		assert.Equal(t, want.Snapshot.Items[i].Quantity, got.Snapshot.Items[i].Quantity)
		assert.Equal(t, want.Snapshot.Items[i].Category, got.Snapshot.Items[i].Category)
		assert.True(t, want.Snapshot.Items[i].UnitPrice.Equal(got.Snapshot.Items[i].UnitPrice))
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, format := range []codec.Format{codec.FormatJSON, codec.FormatCloudEvents} {
		t.Run(string(format), func(t *testing.T) {
			c, err := codec.New(format, "/orders")
			require.NoError(t, err)

			data, err := c.Encode(sampleEvent())
			require.NoError(t, err)

			got, err := c.Decode(data)
			require.NoError(t, err)
			assertSameEvent(t, sampleEvent(), got)
		})
	}
}

func TestCodec_JSONLayout(t *testing.T) {
	c, err := codec.New(codec.FormatJSON, "")
	require.NoError(t, err)

	data, err := c.Encode(sampleEvent())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"eventId", "orderId", "kind", "resultingVersion", "payload", "emittedAt"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "PAYMENT_REQUESTED", raw["kind"])
	assert.InDelta(t, 2, raw["resultingVersion"], 0)
	assert.Equal(t, "application/json", c.ContentType())
}

func TestCodec_CloudEventsLayout(t *testing.T) {
	c, err := codec.New(codec.FormatCloudEvents, "/orders")
	require.NoError(t, err)

	data, err := c.Encode(sampleEvent())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "1.0", raw["specversion"])
	assert.Equal(t, "orders.payment_requested", raw["type"])
	assert.Equal(t, "order-1", raw["subject"])
	assert.Equal(t, "/orders", raw["source"])
	assert.Equal(t, "cmd-1", raw["commandid"])
	assert.Contains(t, raw, "resultingversion")
	assert.Contains(t, raw, "data")
	assert.Equal(t, "application/cloudevents+json", c.ContentType())
}

func TestDecode_AcceptsBothLayouts(t *testing.T) {
	jsonCodec, err := codec.New(codec.FormatJSON, "")
	require.NoError(t, err)
	ceCodec, err := codec.New(codec.FormatCloudEvents, "")
	require.NoError(t, err)

	fromCE, err := ceCodec.Encode(sampleEvent())
	require.NoError(t, err)
	got, err := jsonCodec.Decode(fromCE)
	require.NoError(t, err)
	assertSameEvent(t, sampleEvent(), got)

	fromJSON, err := jsonCodec.Encode(sampleEvent())
	require.NoError(t, err)
	got, err = ceCodec.Decode(fromJSON)
	require.NoError(t, err)
	assertSameEvent(t, sampleEvent(), got)
}

func TestDecode_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{`},
		{name: "missing event id", data: `{"orderId":"A","kind":"ORDER_CREATED","resultingVersion":1}`},
		{name: "missing order id", data: `{"eventId":"e","kind":"ORDER_CREATED","resultingVersion":1}`},
		{name: "unknown kind", data: `{"eventId":"e","orderId":"A","kind":"ORDER_EXPLODED","resultingVersion":1}`},
		{name: "zero version", data: `{"eventId":"e","orderId":"A","kind":"ORDER_CREATED","resultingVersion":0}`},
		{name: "cloudevent without version", data: `{"specversion":"1.0","id":"e","source":"/o","type":"orders.order_created","subject":"A"}`},
		{name: "cloudevent foreign type", data: `{"specversion":"1.0","id":"e","source":"/o","type":"billing.invoice","subject":"A","resultingversion":1}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode([]byte(tc.data))
			assert.ErrorIs(t, err, codec.ErrMalformedEvent)
		})
	}
}

func TestCodec_RejectsInvalidEvent(t *testing.T) {
	c, err := codec.New(codec.FormatJSON, "")
	require.NoError(t, err)

	ev := sampleEvent()
	ev.Kind = "UNKNOWN"
	_, err = c.Encode(ev)
	assert.ErrorIs(t, err, codec.ErrMalformedEvent)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := codec.New("avro", "")
	assert.Error(t, err)
}
