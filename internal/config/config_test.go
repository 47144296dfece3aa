package config_test

import (
	"testing"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_USER", "orders")
	t.Setenv("POSTGRES_PASSWORD", "secret")
}

func TestNew_Defaults(t *testing.T) {
	setRequired(t)

	cfg := config.New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 5, cfg.Pipeline.ConflictAttempts)
	assert.Equal(t, 30*time.Second, cfg.Redis.HealthInterval)
	assert.True(t, cfg.Redis.FallbackEnabled)
	assert.Equal(t, "json", cfg.Publisher.Format)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestNew_FromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("EVENT_FORMAT", "cloudevents")
	t.Setenv("IDEMPOTENCY_TTL", "2h")
	t.Setenv("REDIS_FALLBACK_ENABLED", "false")
	t.Setenv("KAFKA_CONSUMERS", "not-a-number")

	cfg := config.New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "cloudevents", cfg.Publisher.Format)
	assert.Equal(t, 2*time.Hour, cfg.Pipeline.IdempotencyTTL)
	assert.False(t, cfg.Redis.FallbackEnabled)
	assert.Equal(t, 4, cfg.Kafka.Consumers)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown env", env: map[string]string{"ENV": "qa"}},
		{name: "idempotency ttl too short", env: map[string]string{"IDEMPOTENCY_TTL": "10s"}},
		{name: "unknown event format", env: map[string]string{"EVENT_FORMAT": "avro"}},
		{name: "same topics", env: map[string]string{"KAFKA_EVENTS_TOPIC": "order-commands"}},
		{name: "no consumers", env: map[string]string{"KAFKA_CONSUMERS": "0"}},
		{name: "bad redis addr", env: map[string]string{"REDIS_ADDR": "redis"}},
		{name: "conflict delays inverted", env: map[string]string{"PIPELINE_CONFLICT_MAX_DELAY": "1ms"}},
		{name: "otel without endpoint", env: map[string]string{"OTEL_ENABLED": "true", "OTEL_EXPORTER_OTLP_ENDPOINT": ""}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			assert.Error(t, config.New().Validate())
		})
	}
}
