package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Kafka Kafka `validate:"required"`

	Postgres Postgres `validate:"required"`

	Redis Redis `validate:"required"`

	Pipeline   Pipeline
	Publisher  Publisher
	Reconciler Reconciler
	Projection Projection

	Otel Otel
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,gt=0,lte=65535"`
}

type Kafka struct {
	GroupID string   `validate:"required"`
	Brokers []string `validate:"required,min=1,dive,hostname_port"`

	CommandsTopic string `validate:"required"`
	EventsTopic   string `validate:"required,nefield=CommandsTopic"`

	ProjectorGroupID string `validate:"required,nefield=GroupID"`

	// количество ридеров в одной группе, каждый обрабатывает свои партиции последовательно
	Consumers int `validate:"gte=1,lte=64"`

	ReaderMaxWait time.Duration `validate:"gte=0"`
	BatchTimeout  time.Duration `validate:"gte=0"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

type Redis struct {
	Addr     string `validate:"required,hostname_port"`
	Password string
	DB       int `validate:"gte=0,lte=15"`

	DialTimeout time.Duration `validate:"gte=0"`
	ReadTimeout time.Duration `validate:"gte=0"`

	HealthInterval time.Duration `validate:"gte=1s"`

	// локальный fallback на время недоступности redis
	FallbackEnabled bool
	LocalCapacity   int           `validate:"gte=0"`
	LocalTTL        time.Duration `validate:"gte=1s"`
}

type Pipeline struct {
	MaxInFlight int64 `validate:"gte=1"`

	ConflictAttempts  int           `validate:"gte=1"`
	ConflictBaseDelay time.Duration `validate:"gt=0"`
	ConflictMaxDelay  time.Duration `validate:"gtefield=ConflictBaseDelay"`

	StoreAttempts  int           `validate:"gte=1"`
	StoreBaseDelay time.Duration `validate:"gt=0"`

	// must exceed the redelivery window of the command transport
	IdempotencyTTL time.Duration `validate:"gte=1m"`

	DeferRetryAfter time.Duration `validate:"gt=0"`
}

type Publisher struct {
	Format string `validate:"required,oneof=json cloudevents"`
	Source string `validate:"required"`

	Attempts  int           `validate:"gte=1"`
	BaseDelay time.Duration `validate:"gt=0"`
	MaxDelay  time.Duration `validate:"gtefield=BaseDelay"`

	WriteTimeout time.Duration `validate:"gt=0"`
}

type Reconciler struct {
	Interval    time.Duration `validate:"gte=1s"`
	GracePeriod time.Duration `validate:"gte=1s"`
	BatchSize   int           `validate:"gte=1,lte=10000"`
}

type Projection struct {
	// 0 - проекции в redis не истекают
	TTL time.Duration `validate:"gte=0"`
}

type Otel struct {
	Enabled        bool
	Endpoint       string `validate:"required_if=Enabled true"`
	Insecure       bool
	ServiceName    string `validate:"required"`
	ServiceVersion string
	ExportTimeout  time.Duration `validate:"gte=0"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Kafka: Kafka{
			GroupID:          env("KAFKA_GROUP_ID", "order-lifecycle"),
			ProjectorGroupID: env("KAFKA_PROJECTOR_GROUP_ID", "order-lifecycle-projector"),
			CommandsTopic:    env("KAFKA_COMMANDS_TOPIC", "order-commands"),
			EventsTopic:      env("KAFKA_EVENTS_TOPIC", "order-events"),
			Brokers:          strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),
			Consumers:        envInt("KAFKA_CONSUMERS", 4),

			ReaderMaxWait: envDuration("KAFKA_READER_MAX_WAIT", 10*time.Millisecond),
			BatchTimeout:  envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "orders"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: Redis{
			Addr:     env("REDIS_ADDR", "localhost:6379"),
			Password: env("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),

			DialTimeout: envDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout: envDuration("REDIS_READ_TIMEOUT", time.Second),

			HealthInterval: envDuration("REDIS_HEALTH_INTERVAL", 30*time.Second),

			FallbackEnabled: envBool("REDIS_FALLBACK_ENABLED", true),
			LocalCapacity:   envInt("REDIS_LOCAL_CAPACITY", 1000),
			LocalTTL:        envDuration("REDIS_LOCAL_TTL", 30*time.Minute),
		},

		Pipeline: Pipeline{
			MaxInFlight: int64(envInt("PIPELINE_MAX_IN_FLIGHT", 256)),

			ConflictAttempts:  envInt("PIPELINE_CONFLICT_ATTEMPTS", 5),
			ConflictBaseDelay: envDuration("PIPELINE_CONFLICT_BASE_DELAY", 10*time.Millisecond),
			ConflictMaxDelay:  envDuration("PIPELINE_CONFLICT_MAX_DELAY", 200*time.Millisecond),

			StoreAttempts:  envInt("PIPELINE_STORE_ATTEMPTS", 3),
			StoreBaseDelay: envDuration("PIPELINE_STORE_BASE_DELAY", 100*time.Millisecond),

			IdempotencyTTL: envDuration("IDEMPOTENCY_TTL", 24*time.Hour),

			DeferRetryAfter: envDuration("PIPELINE_DEFER_RETRY_AFTER", 5*time.Second),
		},

		Publisher: Publisher{
			Format: env("EVENT_FORMAT", "json"),
			Source: env("EVENT_SOURCE", "/order-lifecycle"),

			Attempts:  envInt("PUBLISHER_ATTEMPTS", 3),
			BaseDelay: envDuration("PUBLISHER_BASE_DELAY", 100*time.Millisecond),
			MaxDelay:  envDuration("PUBLISHER_MAX_DELAY", 2*time.Second),

			WriteTimeout: envDuration("PUBLISHER_WRITE_TIMEOUT", 5*time.Second),
		},

		Reconciler: Reconciler{
			Interval:    envDuration("RECONCILER_INTERVAL", 15*time.Second),
			GracePeriod: envDuration("RECONCILER_GRACE_PERIOD", time.Minute),
			BatchSize:   envInt("RECONCILER_BATCH_SIZE", 100),
		},

		Projection: Projection{
			TTL: envDuration("PROJECTION_TTL", 0),
		},

		Otel: Otel{
			Enabled:        envBool("OTEL_ENABLED", false),
			Endpoint:       env("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure:       envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName:    env("OTEL_SERVICE_NAME", "order-lifecycle"),
			ServiceVersion: env("OTEL_SERVICE_VERSION", "dev"),
			ExportTimeout:  envDuration("OTEL_EXPORT_TIMEOUT", 10*time.Second),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if len(fallback) == 0 {
		return ""
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return fallback
}
