package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SergeyBogomolovv/order-lifecycle/internal/entities"
	"github.com/SergeyBogomolovv/order-lifecycle/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *postgresRepo) GetOrder(ctx context.Context, orderID string) (entities.Order, error) {
	query, args := r.qb.Select(
		"id", "customer_name", "state", "total", "version",
		"payment_ref", "tracking_number", "reason", "created_at", "updated_at").
		From("orders").
		Where(sq.Eq{"id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select("order_id", "position", "product_id", "quantity", "unit_price", "category").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("position").
		MustSql()

	var items []Item
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get items: %w", err)
	}

	return OrderToEntity(order, items), nil
}

// CreateOrder inserts a new order with its items. An order that already
// exists is reported as a concurrency conflict.
func (r *postgresRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns(
			"id", "customer_name", "state", "total", "version",
			"payment_ref", "tracking_number", "reason", "created_at", "updated_at",
		).
		Values(
			o.ID, o.CustomerName, string(o.State), o.Total, o.Version,
			nullString(o.PaymentRef), nullString(o.TrackingNumber), nullString(o.Reason), o.CreatedAt, o.UpdatedAt,
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return mapWriteError("failed to create order", err)
	}

	if len(o.Items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_id", "position", "product_id", "quantity", "unit_price", "category")
	for i, it := range o.Items {
		q = q.Values(o.ID, i, it.ProductID, it.Quantity, it.UnitPrice, string(it.Category))
	}

	query, args = q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return mapWriteError("failed to save items", err)
	}
	return nil
}

// UpdateOrder writes o only if the stored version is still expectedVersion.
func (r *postgresRepo) UpdateOrder(ctx context.Context, o entities.Order, expectedVersion int64) error {
	query, args := r.qb.Update("orders").
		SetMap(map[string]any{
			"state":           string(o.State),
			"total":           o.Total,
			"version":         o.Version,
			"payment_ref":     nullString(o.PaymentRef),
			"tracking_number": nullString(o.TrackingNumber),
			"reason":          nullString(o.Reason),
			"updated_at":      o.UpdatedAt,
		}).
		Where(sq.Eq{"id": o.ID, "version": expectedVersion}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("failed to update order", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: order %s is no longer at version %d", entities.ErrConcurrencyConflict, o.ID, expectedVersion)
	}
	return nil
}

// InsertEvent appends ev to the outbox with the PENDING status.
func (r *postgresRepo) InsertEvent(ctx context.Context, ev entities.DomainEvent) error {
	row, err := EventFromEntity(ev)
	if err != nil {
		return err
	}

	query, args := r.qb.Insert("order_events").
		Columns("id", "order_id", "command_id", "kind", "version", "payload", "emitted_at", "publish_status").
		Values(row.ID, row.OrderID, row.CommandID, row.Kind, row.Version, row.Payload, row.EmittedAt, row.PublishStatus).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return mapWriteError("failed to insert event", err)
	}
	return nil
}

func (r *postgresRepo) EventByCommandID(ctx context.Context, commandID string) (entities.DomainEvent, error) {
	query, args := r.qb.Select(eventColumns...).
		From("order_events").
		Where(sq.Eq{"command_id": commandID}).
		MustSql()

	var row Event
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.DomainEvent{}, entities.ErrEventNotFound
	}
	if err != nil {
		return entities.DomainEvent{}, fmt.Errorf("failed to get event: %w", err)
	}
	return EventToEntity(row)
}

func (r *postgresRepo) EventsByOrderID(ctx context.Context, orderID string) ([]entities.DomainEvent, error) {
	query, args := r.qb.Select(eventColumns...).
		From("order_events").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("version").
		MustSql()

	var rows []Event
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return EventsToEntities(rows)
}

func (r *postgresRepo) MarkEventPublished(ctx context.Context, eventID string) error {
	query, args := r.qb.Update("order_events").
		Set("publish_status", string(entities.PublishStatusPublished)).
		Set("published_at", time.Now().UTC()).
		Set("last_error", nil).
		Set("publish_attempts", sq.Expr("publish_attempts + 1")).
		Where(sq.Eq{"id": eventID}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark event published: %w", err)
	}
	return nil
}

func (r *postgresRepo) MarkEventPublishPending(ctx context.Context, eventID string, cause string) error {
	query, args := r.qb.Update("order_events").
		Set("publish_status", string(entities.PublishStatusPublishPending)).
		Set("last_error", nullString(cause)).
		Set("publish_attempts", sq.Expr("publish_attempts + 1")).
		Where(sq.And{
			sq.Eq{"id": eventID},
			sq.NotEq{"publish_status": string(entities.PublishStatusPublished)},
		}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark event publish pending: %w", err)
	}
	return nil
}

// PendingEvents returns events waiting for publication: the ones marked
// PUBLISH_PENDING and the PENDING ones emitted before staleBefore, which were
// left behind by a crash between commit and publish.
func (r *postgresRepo) PendingEvents(ctx context.Context, staleBefore time.Time, limit int) ([]entities.DomainEvent, error) {
	query, args := r.qb.Select(eventColumns...).
		From("order_events").
		Where(sq.Or{
			sq.Eq{"publish_status": string(entities.PublishStatusPublishPending)},
			sq.And{
				sq.Eq{"publish_status": string(entities.PublishStatusPending)},
				sq.Lt{"emitted_at": staleBefore},
			},
		}).
		OrderBy("order_id", "version").
		Limit(uint64(limit)).
		MustSql()

	var rows []Event
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select pending events: %w", err)
	}
	return EventsToEntities(rows)
}

// HasUnpublishedBefore reports whether an event of orderID older than version
// has not reached the bus yet.
func (r *postgresRepo) HasUnpublishedBefore(ctx context.Context, orderID string, version int64) (bool, error) {
	query, args := r.qb.Select("1").
		Prefix("SELECT EXISTS (").
		From("order_events").
		Where(sq.And{
			sq.Eq{"order_id": orderID},
			sq.Lt{"version": version},
			sq.NotEq{"publish_status": string(entities.PublishStatusPublished)},
		}).
		Suffix(")").
		MustSql()

	var exists bool
	if err := r.getContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("failed to check unpublished events: %w", err)
	}
	return exists, nil
}

// Ping is used by the health endpoint.
func (r *postgresRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func mapWriteError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", msg, entities.ErrConcurrencyConflict, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
