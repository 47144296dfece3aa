package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/statemachine"
	"github.com/SergeyBogomolovv/order-lifecycle/internal/tracing"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/keyed"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/trm"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

type OrderRepo interface {
	GetOrder(ctx context.Context, orderID string) (entities.Order, error)

	// Записи условные: конфликт версии или повтор command_id дают ErrConcurrencyConflict
	CreateOrder(ctx context.Context, o entities.Order) error
	UpdateOrder(ctx context.Context, o entities.Order, expectedVersion int64) error
	InsertEvent(ctx context.Context, ev entities.DomainEvent) error

	EventByCommandID(ctx context.Context, commandID string) (entities.DomainEvent, error)

	HasUnpublishedBefore(ctx context.Context, orderID string, version int64) (bool, error)
	MarkEventPublishPending(ctx context.Context, eventID string, cause string) error
}

type IdempotencyStore interface {
	Record(ctx context.Context, outcome entities.Outcome, ttl time.Duration) (entities.Outcome, error)
	Lookup(ctx context.Context, commandID string) (entities.Outcome, bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev entities.DomainEvent) error
}

type ProcessorConfig struct {
	MaxInFlight int64

	// Conflict bounds the restarts of the pipeline on version conflicts.
	Conflict utils.RetryConfig

	// Store bounds the retries of a single store or cache call.
	Store utils.RetryConfig

	IdempotencyTTL  time.Duration
	DeferRetryAfter time.Duration
}

type Processor struct {
	logger      *slog.Logger
	txManager   trm.Manager
	repo        OrderRepo
	idempotency IdempotencyStore
	publisher   EventPublisher

	cfg      ProcessorConfig
	locks    *keyed.Mutex
	inFlight *semaphore.Weighted
	now      func() time.Time
}

func NewProcessor(
	logger *slog.Logger,
	txManager trm.Manager,
	repo OrderRepo,
	idempotency IdempotencyStore,
	publisher EventPublisher,
	cfg ProcessorConfig,
) *Processor {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}
	return &Processor{
		logger:      logger.With(slog.String("service", "processor")),
		txManager:   txManager,
		repo:        repo,
		idempotency: idempotency,
		publisher:   publisher,
		cfg:         cfg,
		locks:       keyed.NewMutex(),
		inFlight:    semaphore.NewWeighted(cfg.MaxInFlight),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Process runs cmd through the pipeline and returns its outcome. An error is
// returned only when ctx ends before the state change is committed; in that
// case nothing has been changed and the command can be delivered again.
func (p *Processor) Process(ctx context.Context, cmd entities.Command) (entities.Outcome, error) {
	ctx, span := tracing.Tracer().Start(ctx, "Processor.Process", trace.WithAttributes(
		attribute.String("command.id", cmd.ID),
		attribute.String("command.kind", string(cmd.Kind)),
		attribute.String("order.id", cmd.OrderID),
	))
	defer span.End()

	start := time.Now()
	out, err := p.process(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entities.Outcome{}, err
	}

	span.SetAttributes(attribute.String("outcome.status", string(out.Status)))
	commandsTotal.WithLabelValues(string(cmd.Kind), string(out.Status), string(out.Reason)).Inc()
	commandDuration.WithLabelValues(string(cmd.Kind)).Observe(time.Since(start).Seconds())
	return out, nil
}

func (p *Processor) process(ctx context.Context, cmd entities.Command) (entities.Outcome, error) {
	if err := cmd.Validate(); err != nil {
		return entities.Rejected(cmd, err), nil
	}

	if err := p.inFlight.Acquire(ctx, 1); err != nil {
		return entities.Outcome{}, err
	}
	defer p.inFlight.Release(1)

	commandsInFlight.Inc()
	defer commandsInFlight.Dec()

	unlock, err := p.locks.LockContext(ctx, cmd.OrderID)
	if err != nil {
		return entities.Outcome{}, err
	}
	defer unlock()

	out, found, err := p.lookup(ctx, cmd)
	if err != nil {
		return p.deferOrFail(ctx, cmd, err)
	}
	if found {
		return out, nil
	}

	for attempt := 1; ; attempt++ {
		out, err := p.attempt(ctx, cmd)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, entities.ErrConcurrencyConflict) {
			return p.deferOrFail(ctx, cmd, err)
		}

		conflictRetries.Inc()
		p.logger.Debug("version conflict, restarting pipeline",
			slog.String("command_id", cmd.ID), slog.String("order_id", cmd.OrderID), slog.Int("attempt", attempt))

		// конфликт по command_id значит, что команду уже провели в другом месте
		if out, found, lerr := p.lookupDurable(ctx, cmd); lerr == nil && found {
			return out, nil
		}

		if attempt >= p.cfg.Conflict.MaxAttempts {
			return entities.Deferred(cmd, err, p.cfg.DeferRetryAfter), nil
		}
		if err := utils.Sleep(ctx, p.cfg.Conflict.Backoff(attempt)); err != nil {
			return entities.Outcome{}, err
		}
	}
}

// attempt is one pass of load, transition and conditional write. A nil error
// means the outcome is final.
func (p *Processor) attempt(ctx context.Context, cmd entities.Command) (entities.Outcome, error) {
	current, err := p.loadOrder(ctx, cmd.OrderID)
	if err != nil {
		return entities.Outcome{}, err
	}

	next, ev, err := statemachine.Transition(current, cmd, p.now())
	if err != nil {
		if !entities.IsBusinessError(err) {
			return entities.Outcome{}, err
		}
		return p.reject(ctx, cmd, err)
	}

	if err := p.persist(ctx, current, next, ev); err != nil {
		return entities.Outcome{}, err
	}

	// после коммита отмена уже невозможна: доводим запись исхода и публикацию до конца
	ctx = context.WithoutCancel(ctx)

	out := entities.Accepted(cmd, ev)
	p.record(ctx, out)

	if err := p.publish(ctx, ev); err != nil {
		p.logger.Warn("event left for reconciliation",
			slog.String("event_id", ev.ID), slog.String("order_id", ev.OrderID), slog.Any("error", err))
		out.PublishPending = true
	}

	p.logger.Debug("command accepted",
		slog.String("command_id", cmd.ID), slog.String("order_id", cmd.OrderID),
		slog.String("state", string(next.State)), slog.Int64("version", next.Version))
	return out, nil
}

// publish sends ev to the bus unless an earlier event of the same order is
// still waiting there. Then ev is queued behind it and the reconciler sends
// both in version order.
func (p *Processor) publish(ctx context.Context, ev entities.DomainEvent) error {
	if ev.Version == 1 {
		return p.publisher.Publish(ctx, ev)
	}

	held, err := p.repo.HasUnpublishedBefore(ctx, ev.OrderID, ev.Version)
	if err == nil && !held {
		return p.publisher.Publish(ctx, ev)
	}

	if err == nil {
		err = fmt.Errorf("an event before version %d is not published", ev.Version)
	}
	if merr := p.repo.MarkEventPublishPending(ctx, ev.ID, err.Error()); merr != nil {
		p.logger.Error("failed to mark event publish pending", slog.String("event_id", ev.ID), slog.Any("error", merr))
	}
	heldEvents.Inc()
	return fmt.Errorf("%w: %w", entities.ErrPublishFailure, err)
}

func (p *Processor) loadOrder(ctx context.Context, orderID string) (*entities.Order, error) {
	var order entities.Order
	err := utils.Retry(ctx, p.cfg.Store, func(ctx context.Context) error {
		var err error
		order, err = p.repo.GetOrder(ctx, orderID)
		return err
	}, entities.ErrOrderNotFound, context.Canceled, context.DeadlineExceeded)

	if errors.Is(err, entities.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

func (p *Processor) persist(ctx context.Context, current *entities.Order, next entities.Order, ev entities.DomainEvent) error {
	return utils.Retry(ctx, p.cfg.Store, func(ctx context.Context) error {
		return p.txManager.Do(ctx, func(ctx context.Context) error {
			if current == nil {
				if err := p.repo.CreateOrder(ctx, next); err != nil {
					return err
				}
			} else if err := p.repo.UpdateOrder(ctx, next, current.Version); err != nil {
				return err
			}
			return p.repo.InsertEvent(ctx, ev)
		})
	}, entities.ErrConcurrencyConflict, context.Canceled, context.DeadlineExceeded)
}

func (p *Processor) reject(ctx context.Context, cmd entities.Command, cause error) (entities.Outcome, error) {
	out := entities.Rejected(cmd, cause)
	if out.Cacheable() {
		if err := ctx.Err(); err != nil {
			return entities.Outcome{}, err
		}
		out = p.record(ctx, out)
	}
	return out, nil
}

// record stores out for its command id and returns the stored outcome. A
// failure is logged only: accepted outcomes are still found through the
// event log.
func (p *Processor) record(ctx context.Context, out entities.Outcome) entities.Outcome {
	var stored entities.Outcome
	err := utils.Retry(ctx, p.cfg.Store, func(ctx context.Context) error {
		var err error
		stored, err = p.idempotency.Record(ctx, out, p.cfg.IdempotencyTTL)
		return err
	})
	if err != nil {
		p.logger.Error("failed to record outcome", slog.String("command_id", out.CommandID), slog.Any("error", err))
		return out
	}
	return stored
}

// lookup finds an earlier outcome of cmd in the cache, then in the event log.
func (p *Processor) lookup(ctx context.Context, cmd entities.Command) (entities.Outcome, bool, error) {
	var (
		out   entities.Outcome
		found bool
	)
	err := utils.Retry(ctx, p.cfg.Store, func(ctx context.Context) error {
		var err error
		out, found, err = p.idempotency.Lookup(ctx, cmd.ID)
		return err
	}, context.Canceled, context.DeadlineExceeded)
	if err != nil {
		return entities.Outcome{}, false, fmt.Errorf("failed to look up outcome: %w", err)
	}
	if found {
		replayedOutcomes.WithLabelValues("cache").Inc()
		out.Replayed = true
		return out, true, nil
	}

	return p.lookupDurable(ctx, cmd)
}

func (p *Processor) lookupDurable(ctx context.Context, cmd entities.Command) (entities.Outcome, bool, error) {
	var ev entities.DomainEvent
	err := utils.Retry(ctx, p.cfg.Store, func(ctx context.Context) error {
		var err error
		ev, err = p.repo.EventByCommandID(ctx, cmd.ID)
		return err
	}, entities.ErrEventNotFound, context.Canceled, context.DeadlineExceeded)

	if errors.Is(err, entities.ErrEventNotFound) {
		return entities.Outcome{}, false, nil
	}
	if err != nil {
		return entities.Outcome{}, false, fmt.Errorf("failed to look up event: %w", err)
	}

	replayedOutcomes.WithLabelValues("event_log").Inc()
	out := p.record(ctx, entities.Accepted(cmd, ev))
	out.Replayed = true
	return out, true, nil
}

// deferOrFail turns an infrastructure fault into a deferred outcome. A done
// context is returned as is, since nothing was committed.
func (p *Processor) deferOrFail(ctx context.Context, cmd entities.Command, err error) (entities.Outcome, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return entities.Outcome{}, ctxErr
	}

	p.logger.Warn("command deferred",
		slog.String("command_id", cmd.ID), slog.String("order_id", cmd.OrderID), slog.Any("error", err))
	return entities.Deferred(cmd, fmt.Errorf("%w: %w", entities.ErrTransportUnavailable, err), p.cfg.DeferRetryAfter), nil
}
