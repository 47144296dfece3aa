package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/tracing"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/utils"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderContentType = "content-type"
	HeaderEventKind   = "event-kind"
)

type OutboxRepo interface {
	HasUnpublishedBefore(ctx context.Context, orderID string, version int64) (bool, error)
	MarkEventPublished(ctx context.Context, eventID string) error
	MarkEventPublishPending(ctx context.Context, eventID string, cause string) error
	PendingEvents(ctx context.Context, staleBefore time.Time, limit int) ([]entities.DomainEvent, error)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type EventEncoder interface {
	Encode(ev entities.DomainEvent) ([]byte, error)
	ContentType() string
}

type PublisherConfig struct {
	Retry        utils.RetryConfig
	WriteTimeout time.Duration
}

type publisher struct {
	logger  *slog.Logger
	writer  MessageWriter
	encoder EventEncoder
	outbox  OutboxRepo
	cfg     PublisherConfig
}

func NewPublisher(logger *slog.Logger, writer MessageWriter, encoder EventEncoder, outbox OutboxRepo, cfg PublisherConfig) *publisher {
	return &publisher{
		logger:  logger.With(slog.String("service", "publisher")),
		writer:  writer,
		encoder: encoder,
		outbox:  outbox,
		cfg:     cfg,
	}
}

// Publish writes ev to the event topic keyed by order id, so events of one
// order stay in one partition in version order. When retries run out the
// event is marked PUBLISH_PENDING and ErrPublishFailure is returned.
func (p *publisher) Publish(ctx context.Context, ev entities.DomainEvent) error {
	ctx, span := tracing.Tracer().Start(ctx, "Publisher.Publish", trace.WithAttributes(
		attribute.String("event.id", ev.ID),
		attribute.String("event.kind", string(ev.Kind)),
		attribute.String("order.id", ev.OrderID),
		attribute.Int64("order.version", ev.Version),
	), trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	value, err := p.encoder.Encode(ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", entities.ErrPublishFailure, err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: value,
		Headers: tracing.InjectKafka(ctx, []kafka.Header{
			{Key: HeaderContentType, Value: []byte(p.encoder.ContentType())},
			{Key: HeaderEventKind, Value: []byte(ev.Kind)},
		}),
		Time: ev.EmittedAt,
	}

	err = utils.Retry(ctx, p.cfg.Retry, func(ctx context.Context) error {
		writeCtx := ctx
		if p.cfg.WriteTimeout > 0 {
			var cancel context.CancelFunc
			writeCtx, cancel = context.WithTimeout(ctx, p.cfg.WriteTimeout)
			defer cancel()
		}
		return p.writer.WriteMessages(writeCtx, msg)
	})
	if err != nil {
		publishFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if merr := p.outbox.MarkEventPublishPending(context.WithoutCancel(ctx), ev.ID, err.Error()); merr != nil {
			p.logger.Error("failed to mark event publish pending", slog.String("event_id", ev.ID), slog.Any("error", merr))
		}
		return fmt.Errorf("%w: %w", entities.ErrPublishFailure, err)
	}

	eventsPublished.Inc()
	if err := p.outbox.MarkEventPublished(context.WithoutCancel(ctx), ev.ID); err != nil {
		// событие уже в топике, реконсилер отправит его повторно, потребители это переживут
		p.logger.Warn("failed to mark event published", slog.String("event_id", ev.ID), slog.Any("error", err))
	}

	p.logger.Debug("event published",
		slog.String("event_id", ev.ID), slog.String("kind", string(ev.Kind)), slog.Int64("version", ev.Version))
	return nil
}
