package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/codec"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/service"
	mocks "github.com/SergeyBogomolovv/order-lifecycle/internal/service/mocks"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/utils"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleEvent(orderID string, version int64) entities.DomainEvent {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return entities.DomainEvent{
		ID:        orderID + "-ev-" + string(rune('0'+version)),
		OrderID:   orderID,
		CommandID: orderID + "-cmd-" + string(rune('0'+version)),
		Kind:      entities.EventOrderCreated,
		Version:   version,
		Snapshot: entities.Order{
			ID:           orderID,
			CustomerName: "Ivan",
			State:        entities.StateCreated,
			Items:        []entities.Item{{ProductID: "sku-1", Quantity: 1, UnitPrice: decimal.NewFromInt(5), Category: entities.CategoryStandard}},
			Total:        decimal.NewFromInt(5),
			Version:      version,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		EmittedAt: now,
	}
}

func newTestPublisher(t *testing.T, writer service.MessageWriter, outbox service.OutboxRepo) service.EventPublisher {
	c, err := codec.New(codec.FormatJSON, "")
	require.NoError(t, err)

	return service.NewPublisher(discardLogger(), writer, c, outbox, service.PublisherConfig{
		Retry:        utils.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond},
		WriteTimeout: time.Second,
	})
}

func TestPublisher_Publish(t *testing.T) {
	type MockBehavior func(writer *mocks.MockMessageWriter, outbox *mocks.MockOutboxRepo)

	brokerDown := errors.New("broker down")
	ev := sampleEvent("o1", 1)

	testCases := []struct {
		name         string
		mockBehavior MockBehavior
		wantErr      error
	}{
		{
			name: "OK",
			mockBehavior: func(writer *mocks.MockMessageWriter, outbox *mocks.MockOutboxRepo) {
				writer.EXPECT().WriteMessages(mock.Anything, mock.Anything).Return(nil).Once()
				outbox.EXPECT().MarkEventPublished(mock.Anything, ev.ID).Return(nil).Once()
			},
		},
		{
			name: "Retry works (first write fails, second succeeds)",
			mockBehavior: func(writer *mocks.MockMessageWriter, outbox *mocks.MockOutboxRepo) {
				writer.EXPECT().WriteMessages(mock.Anything, mock.Anything).Return(brokerDown).Once()
				writer.EXPECT().WriteMessages(mock.Anything, mock.Anything).Return(nil).Once()
				outbox.EXPECT().MarkEventPublished(mock.Anything, ev.ID).Return(nil).Once()
			},
		},
		{
			name: "retries exhausted",
			mockBehavior: func(writer *mocks.MockMessageWriter, outbox *mocks.MockOutboxRepo) {
				writer.EXPECT().WriteMessages(mock.Anything, mock.Anything).Return(brokerDown).Times(3)
				outbox.EXPECT().MarkEventPublishPending(mock.Anything, ev.ID, mock.AnythingOfType("string")).Return(nil).Once()
			},
			wantErr: entities.ErrPublishFailure,
		},
		{
			name: "mark published fails",
			mockBehavior: func(writer *mocks.MockMessageWriter, outbox *mocks.MockOutboxRepo) {
				writer.EXPECT().WriteMessages(mock.Anything, mock.Anything).Return(nil).Once()
				outbox.EXPECT().MarkEventPublished(mock.Anything, ev.ID).Return(errors.New("db error")).Once()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			writer := mocks.NewMockMessageWriter(t)
			outbox := mocks.NewMockOutboxRepo(t)
			tc.mockBehavior(writer, outbox)

			err := newTestPublisher(t, writer, outbox).Publish(context.Background(), ev)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPublisher_Message(t *testing.T) {
	writer := mocks.NewMockMessageWriter(t)
	outbox := mocks.NewMockOutboxRepo(t)
	ev := sampleEvent("o1", 1)

	var got kafka.Message
	writer.EXPECT().WriteMessages(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, msgs ...kafka.Message) {
			require.Len(t, msgs, 1)
			got = msgs[0]
		}).
		Return(nil).Once()
	outbox.EXPECT().MarkEventPublished(mock.Anything, ev.ID).Return(nil).Once()

	require.NoError(t, newTestPublisher(t, writer, outbox).Publish(context.Background(), ev))

	assert.Equal(t, []byte("o1"), got.Key)
	assert.Equal(t, ev.EmittedAt, got.Time)

	headers := make(map[string]string)
	for _, h := range got.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "application/json", headers[service.HeaderContentType])
	assert.Equal(t, string(entities.EventOrderCreated), headers[service.HeaderEventKind])

	decoded, err := codec.Decode(got.Value)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, ev.Version, decoded.Version)
}
