package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/config"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/tracing"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
)

var errMalformed = errors.New("malformed message")

// dlqBackoff paces DLQ writes, which are retried until they pass or the
// consumer stops.
var dlqBackoff = utils.RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 5 * time.Second, Jitter: 0.2}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaReaders creates count readers of one consumer group. Kafka assigns
// each reader its own partitions, so every partition is still read in order.
func NewKafkaReaders(cfg config.Kafka, groupID, topic string, count int) []MessageReader {
	readers := make([]MessageReader, 0, count)
	for range count {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: groupID,
			Topic:   topic,
			MaxWait: cfg.ReaderMaxWait,
		}))
	}
	return readers
}

func NewDLQWriter(cfg config.Kafka) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
	}
}

// consumer is the fetch, handle, commit loop shared by the command and event
// consumers. Malformed messages go to <topic>-dlq; a message is committed
// only after it is handled, so a stop in the middle redelivers it.
type consumer struct {
	logger  *slog.Logger
	readers []MessageReader
	dlq     MessageWriter
	handle  func(ctx context.Context, m kafka.Message) error
}

func (c *consumer) Consume(ctx context.Context) {
	var wg sync.WaitGroup
	for _, r := range c.readers {
		wg.Go(func() { c.consume(ctx, r) })
	}
	wg.Wait()
}

func (c *consumer) consume(ctx context.Context, r MessageReader) {
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			c.logger.Error("failed to fetch message", slog.Any("error", err))
			continue
		}

		inProgress.Inc()
		start := time.Now()
		err = c.handle(ctx, m)
		processingDuration.Observe(time.Since(start).Seconds())
		inProgress.Dec()

		if err != nil {
			// сообщение не закоммичено, после перезапуска оно придёт снова
			if ctx.Err() != nil {
				return
			}

			messagesFailed.Inc()
			c.logger.Error("failed to handle message",
				slog.String("topic", m.Topic), slog.Int64("offset", m.Offset), slog.Any("error", err))

			// без записи в DLQ коммитить нельзя, иначе сообщение потеряется
			if err := c.writeToDLQ(ctx, m); err != nil {
				return
			}
		} else {
			messagesProcessed.Inc()
		}

		if err := r.CommitMessages(ctx, m); err != nil {
			commitErrors.Inc()
			c.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (c *consumer) writeToDLQ(ctx context.Context, m kafka.Message) error {
	messagesDLQ.Inc()
	dead := kafka.Message{
		Topic:   fmt.Sprintf("%s-dlq", m.Topic),
		Key:     m.Key,
		Value:   m.Value,
		Headers: m.Headers,
	}
	for attempt := 1; ; attempt++ {
		err := c.dlq.WriteMessages(ctx, dead)
		if err == nil {
			return nil
		}

		c.logger.Error("failed to write message to DLQ",
			slog.String("topic", dead.Topic), slog.Int("attempt", attempt), slog.Any("error", err))
		if err := utils.Sleep(ctx, dlqBackoff.Backoff(attempt)); err != nil {
			return err
		}
	}
}

func (c *consumer) Close() error {
	var errs []error
	for _, r := range c.readers {
		errs = append(errs, r.Close())
	}
	errs = append(errs, c.dlq.Close())
	return errors.Join(errs...)
}

type CommandConsumer struct {
	consumer
	validate  *validator.Validate
	processor CommandProcessor
}

func NewCommandConsumer(logger *slog.Logger, processor CommandProcessor, dlq MessageWriter, readers ...MessageReader) *CommandConsumer {
	c := &CommandConsumer{
		validate:  validator.New(),
		processor: processor,
	}
	c.consumer = consumer{
		logger:  logger.With(slog.String("handler", "kafka-commands")),
		readers: readers,
		dlq:     dlq,
		handle:  c.handleCommand,
	}
	return c
}

// handleCommand processes one command message. Deferred outcomes are retried
// in place, so the offset is never committed past an unfinished command.
func (c *CommandConsumer) handleCommand(ctx context.Context, m kafka.Message) error {
	var req Command
	if err := json.Unmarshal(m.Value, &req); err != nil {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: invalid command: %w", errMalformed, err)
	}

	ctx = tracing.ExtractKafka(ctx, m.Headers)
	cmd := CommandJSONToEntity(req)

	for {
		out, err := c.processor.Process(ctx, cmd)
		if err != nil {
			return err
		}

		if out.Status != entities.OutcomeDeferred {
			c.logger.Debug("command handled",
				slog.String("command_id", out.CommandID),
				slog.String("status", string(out.Status)),
				slog.String("reason", string(out.Reason)),
				slog.Bool("replayed", out.Replayed))
			return nil
		}

		deferredRetries.Inc()
		c.logger.Warn("command deferred, retrying",
			slog.String("command_id", out.CommandID), slog.String("reason", string(out.Reason)), slog.Duration("retry_after", out.RetryAfter))
		if err := utils.Sleep(ctx, out.RetryAfter); err != nil {
			return err
		}
	}
}

type EventHandler interface {
	Handle(ctx context.Context, ev entities.DomainEvent) error
}

type EventDecoder func(data []byte) (entities.DomainEvent, error)

type EventConsumer struct {
	consumer
	decode  EventDecoder
	handler EventHandler
	retry   utils.RetryConfig
}

func NewEventConsumer(logger *slog.Logger, decode EventDecoder, handler EventHandler, dlq MessageWriter, readers ...MessageReader) *EventConsumer {
	c := &EventConsumer{
		decode:  decode,
		handler: handler,
		retry:   utils.RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 5 * time.Second, Jitter: 0.2},
	}
	c.consumer = consumer{
		logger:  logger.With(slog.String("handler", "kafka-events")),
		readers: readers,
		dlq:     dlq,
		handle:  c.handleEvent,
	}
	return c
}

// handleEvent applies one event to the read model. Store failures are
// retried until they pass or ctx ends: skipping an event would leave the
// projection behind.
func (c *EventConsumer) handleEvent(ctx context.Context, m kafka.Message) error {
	ev, err := c.decode(m.Value)
	if err != nil {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}

	ctx = tracing.ExtractKafka(ctx, m.Headers)
	for attempt := 1; ; attempt++ {
		err := c.handler.Handle(ctx, ev)
		if err == nil {
			return nil
		}

		c.logger.Warn("failed to apply event, retrying",
			slog.String("event_id", ev.ID), slog.Int("attempt", attempt), slog.Any("error", err))
		if err := utils.Sleep(ctx, c.retry.Backoff(attempt)); err != nil {
			return err
		}
	}
}
