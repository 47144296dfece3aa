package tracing_test

import (
	"context"
	"testing"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/config"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/tracing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestKafkaHeadersCarryTraceContext(t *testing.T) {
	shutdown, err := tracing.Setup(context.Background(), config.Otel{ServiceName: "test"})
	require.NoError(t, err)
	defer shutdown(context.Background())

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	headers := tracing.InjectKafka(ctx, []kafka.Header{{Key: "content-type", Value: []byte("application/json")}})
	require.Len(t, headers, 2)

	got := trace.SpanContextFromContext(tracing.ExtractKafka(context.Background(), headers))
	assert.True(t, got.IsRemote())
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
	assert.Equal(t, span.SpanContext().SpanID(), got.SpanID())
}

func TestExtractKafka_NoHeaders(t *testing.T) {
	_, err := tracing.Setup(context.Background(), config.Otel{ServiceName: "test"})
	require.NoError(t, err)

	got := trace.SpanContextFromContext(tracing.ExtractKafka(context.Background(), nil))
	assert.False(t, got.IsValid())
}
