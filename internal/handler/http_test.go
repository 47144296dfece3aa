package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/cache"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/handler"
	mocks "github.com/SergeyBogomolovv/order-lifecycle/internal/handler/mocks"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type deps struct {
	processor *mocks.MockCommandProcessor
	orders    *mocks.MockProjectionReader
	cache     *mocks.MockCacheStatusProvider
}

func newRouter(t *testing.T) (chi.Router, deps) {
	d := deps{
		processor: mocks.NewMockCommandProcessor(t),
		orders:    mocks.NewMockProjectionReader(t),
		cache:     mocks.NewMockCacheStatusProvider(t),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewHTTPHandler(logger, d.processor, d.orders, d.cache)

	r := chi.NewRouter()
	h.Init(r)
	return r, d
}

func serve(t *testing.T, r http.Handler, req *http.Request) (*http.Response, string) {
	t.Helper()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	res := rr.Result()
	t.Cleanup(func() { res.Body.Close() })

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func outcomeFor(cmd entities.Command, status entities.OutcomeStatus, reason entities.Reason) entities.Outcome {
	return entities.Outcome{CommandID: cmd.ID, OrderID: cmd.OrderID, Status: status, Reason: reason, Message: "details"}
}

func TestHTTPHandler_SubmitCommand(t *testing.T) {
	const payBody = `{"commandId":"c2","orderId":"o1","kind":"PAY","payload":{"paymentRef":"ref-1"}}`

	ev := entities.DomainEvent{ID: "ev-2", OrderID: "o1", CommandID: "c2", Kind: entities.EventPaymentRequested, Version: 2}
	pay := func(cmd entities.Command) bool {
		return cmd.ID == "c2" && cmd.OrderID == "o1" && cmd.Kind == entities.CommandPay &&
			cmd.Payload.PaymentRef == "ref-1" && !cmd.IssuedAt.IsZero()
	}

	testCases := []struct {
		name           string
		body           string
		mockBehavior   func(p *mocks.MockCommandProcessor)
		wantStatus     int
		wantBody       string
		wantRetryAfter string
	}{
		{
			name: "accepted",
			body: payBody,
			mockBehavior: func(p *mocks.MockCommandProcessor) {
				p.EXPECT().Process(mock.Anything, mock.MatchedBy(pay)).
					RunAndReturn(func(_ context.Context, cmd entities.Command) (entities.Outcome, error) {
						return entities.Accepted(cmd, ev), nil
					}).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"resultingVersion":2`,
		},
		{
			name: "invalid transition",
			body: payBody,
			mockBehavior: func(p *mocks.MockCommandProcessor) {
				p.EXPECT().Process(mock.Anything, mock.MatchedBy(pay)).
					RunAndReturn(func(_ context.Context, cmd entities.Command) (entities.Outcome, error) {
						return outcomeFor(cmd, entities.OutcomeRejected, entities.ReasonInvalidTransition), nil
					}).Once()
			},
			wantStatus: http.StatusConflict,
			wantBody:   `"reason":"INVALID_TRANSITION"`,
		},
		{
			name: "order not found",
			body: payBody,
			mockBehavior: func(p *mocks.MockCommandProcessor) {
				p.EXPECT().Process(mock.Anything, mock.Anything).
					RunAndReturn(func(_ context.Context, cmd entities.Command) (entities.Outcome, error) {
						return outcomeFor(cmd, entities.OutcomeRejected, entities.ReasonOrderNotFound), nil
					}).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"reason":"ORDER_NOT_FOUND"`,
		},
		{
			name: "business validation",
			body: `{"commandId":"c1","orderId":"o1","kind":"CREATE","payload":{"customerName":"Ivan"}}`,
			mockBehavior: func(p *mocks.MockCommandProcessor) {
				p.EXPECT().Process(mock.Anything, mock.Anything).
					RunAndReturn(func(_ context.Context, cmd entities.Command) (entities.Outcome, error) {
						return outcomeFor(cmd, entities.OutcomeRejected, entities.ReasonValidation), nil
					}).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"reason":"VALIDATION_ERROR"`,
		},
		{
			name: "deferred",
			body: payBody,
			mockBehavior: func(p *mocks.MockCommandProcessor) {
				p.EXPECT().Process(mock.Anything, mock.Anything).
					RunAndReturn(func(_ context.Context, cmd entities.Command) (entities.Outcome, error) {
						out := outcomeFor(cmd, entities.OutcomeDeferred, entities.ReasonTransportUnavailable)
						out.RetryAfter = 1500 * time.Millisecond
						return out, nil
					}).Once()
			},
			wantStatus:     http.StatusServiceUnavailable,
			wantBody:       `"retryAfterSeconds":2`,
			wantRetryAfter: "2",
		},
		{
			name: "interrupted",
			body: payBody,
			mockBehavior: func(p *mocks.MockCommandProcessor) {
				p.EXPECT().Process(mock.Anything, mock.Anything).
					Return(entities.Outcome{}, context.Canceled).Once()
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"request cancelled"`,
		},
		{
			name:         "malformed json",
			body:         `{"commandId":`,
			mockBehavior: func(*mocks.MockCommandProcessor) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"invalid request body"`,
		},
		{
			name:         "unknown field",
			body:         `{"commandId":"c1","orderId":"o1","kind":"PAY","amount":5}`,
			mockBehavior: func(*mocks.MockCommandProcessor) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"invalid request body"`,
		},
		{
			name:         "unknown kind",
			body:         `{"commandId":"c1","orderId":"o1","kind":"TELEPORT"}`,
			mockBehavior: func(*mocks.MockCommandProcessor) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"Kind":"oneof"`,
		},
		{
			name:         "missing command id",
			body:         `{"orderId":"o1","kind":"PAY"}`,
			mockBehavior: func(*mocks.MockCommandProcessor) {},
			wantStatus:   http.StatusBadRequest,
			wantBody:     `"CommandID":"required"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, d := newRouter(t)
			tc.mockBehavior(d.processor)

			req := httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(tc.body))
			res, body := serve(t, r, req)

			assert.Equal(t, tc.wantStatus, res.StatusCode)
			assert.Contains(t, body, tc.wantBody)
			assert.Equal(t, tc.wantRetryAfter, res.Header.Get("Retry-After"))
		})
	}
}

func TestHTTPHandler_SubmitCommand_CreatePayload(t *testing.T) {
	r, d := newRouter(t)

	d.processor.EXPECT().Process(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, cmd entities.Command) (entities.Outcome, error) {
			require.Len(t, cmd.Payload.Items, 1)
			it := cmd.Payload.Items[0]
			assert.Equal(t, "sku-1", it.ProductID)
			assert.Equal(t, 3, it.Quantity)
			assert.True(t, it.UnitPrice.Equal(decimal.RequireFromString("19.99")))
			assert.Equal(t, entities.CategoryPerishable, it.Category)
			assert.Equal(t, "Ivan", cmd.Payload.CustomerName)
			return outcomeFor(cmd, entities.OutcomeAccepted, ""), nil
		}).Once()

	body := `{"commandId":"c1","orderId":"o1","kind":"CREATE","issuedAt":"2025-03-01T12:00:00Z",
		"payload":{"customerName":"Ivan","items":[{"productId":"sku-1","quantity":3,"unitPrice":"19.99","category":"PERISHABLE"}]}}`
	res, _ := serve(t, r, httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHTTPHandler_GetOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	view := entities.Projection{
		OrderID:      "o1",
		CustomerName: "Ivan",
		State:        entities.StatePaid,
		Items:        []entities.Item{{ProductID: "sku-1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.50"), Category: entities.CategoryStandard}},
		Total:        decimal.RequireFromString("21.00"),
		Version:      3,
		UpdatedAt:    now,
		History: []entities.StateChange{
			{EventID: "e1", Kind: entities.EventOrderCreated, State: entities.StateCreated, Version: 1, At: now},
		},
	}

	testCases := []struct {
		name         string
		path         string
		mockBehavior func(orders *mocks.MockProjectionReader)
		wantStatus   int
		wantBody     string
	}{
		{
			name: "success",
			path: "/orders/o1",
			mockBehavior: func(orders *mocks.MockProjectionReader) {
				orders.EXPECT().GetProjection(mock.Anything, "o1").Return(view, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"total":"21"`,
		},
		{
			name: "status",
			path: "/orders/o1/status",
			mockBehavior: func(orders *mocks.MockProjectionReader) {
				orders.EXPECT().GetProjection(mock.Anything, "o1").Return(view, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"state":"PAID"`,
		},
		{
			name: "not found",
			path: "/orders/missing",
			mockBehavior: func(orders *mocks.MockProjectionReader) {
				orders.EXPECT().GetProjection(mock.Anything, "missing").
					Return(entities.Projection{}, entities.ErrOrderNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"order not found"`,
		},
		{
			name: "store unavailable",
			path: "/orders/o1",
			mockBehavior: func(orders *mocks.MockProjectionReader) {
				orders.EXPECT().GetProjection(mock.Anything, "o1").
					Return(entities.Projection{}, entities.ErrTransportUnavailable).Once()
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"service unavailable"`,
		},
		{
			name: "internal error",
			path: "/orders/o1",
			mockBehavior: func(orders *mocks.MockProjectionReader) {
				orders.EXPECT().GetProjection(mock.Anything, "o1").
					Return(entities.Projection{}, errors.New("boom")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"internal server error"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, d := newRouter(t)
			tc.mockBehavior(d.orders)

			res, body := serve(t, r, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.wantStatus, res.StatusCode)
			assert.Contains(t, body, tc.wantBody)

			if tc.name == "success" {
				var resp map[string]any
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "o1", resp["orderId"])
				assert.Len(t, resp["history"], 1)
			}
		})
	}
}

func TestHTTPHandler_RebuildOrder(t *testing.T) {
	r, d := newRouter(t)
	d.orders.EXPECT().Rebuild(mock.Anything, "o1").
		Return(entities.Projection{OrderID: "o1", State: entities.StateShipped, Version: 4}, nil).Once()

	res, body := serve(t, r, httptest.NewRequest(http.MethodPost, "/orders/o1/rebuild", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"version":4`)
}

func TestHTTPHandler_CacheStatus(t *testing.T) {
	r, d := newRouter(t)
	d.cache.EXPECT().Status().Return(cache.Status{
		Mode:         cache.ModeLocal,
		LocalEntries: map[string]int{"idempotency": 3},
	}).Once()

	res, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/cache/status", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"mode":"local"`)
	assert.Contains(t, body, `"idempotency":3`)
}

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCases := []struct {
		name       string
		redisErr   error
		wantStatus int
		wantBody   string
	}{
		{name: "healthy", wantStatus: http.StatusOK, wantBody: `"status":"ok"`},
		{name: "redis down", redisErr: errors.New("dial tcp: refused"), wantStatus: http.StatusServiceUnavailable, wantBody: `"redis":"dial tcp: refused"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := handler.NewHealthHandler(logger, map[string]handler.Pinger{
				"postgres": handler.PingFunc(func(context.Context) error { return nil }),
				"redis":    handler.PingFunc(func(context.Context) error { return tc.redisErr }),
			})
			r := chi.NewRouter()
			h.Init(r)

			res, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.wantStatus, res.StatusCode)
			assert.Contains(t, body, tc.wantBody)
		})
	}
}
