package order

import (
	"context"
	"errors"
	"time"

	"chiringuito/internal/db"
	"chiringuito/internal/domain"
	"chiringuito/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   db.DBTX
	logger *zap.Logger
}

func NewPostgres(pool db.DBTX, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (status, total_amount)
VALUES ($1, $2)
RETURNING id, created_at, updated_at
`
	res := o
	if res.Status == "" {
		res.Status = domain.OrderStatusPending
	}
	err := db.Conn(ctx, r.pool).QueryRow(ctx, q, res.Status, res.TotalAmount).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		r.logger.Error("order repo: create", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("order repo: created",
		zap.Stringer("order_id", res.ID),
		zap.String("total", res.TotalAmount.StringFixed(domain.MoneyScale)),
	)
	return &res, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	const q = `
SELECT id, status, total_amount, created_at, updated_at
FROM orders
WHERE id = $1
`
	var o domain.Order
	err := db.Conn(ctx, r.pool).QueryRow(ctx, q, id).Scan(
		&o.ID,
		&o.Status,
		&o.TotalAmount,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("order repo: get not found", zap.Stringer("order_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order repo: get", zap.Stringer("order_id", id), zap.Error(err))
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	const q = `
UPDATE orders
SET total_amount = $1, updated_at = now()
WHERE id = $2
`
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, q, total, id)
	if err != nil {
		r.logger.Error("order repo: update total", zap.Stringer("order_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Debug("order repo: total updated",
		zap.Stringer("order_id", id),
		zap.String("total", total.StringFixed(domain.MoneyScale)),
	)
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("order repo: delete", zap.Stringer("order_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Debug("order repo: deleted", zap.Stringer("order_id", id))
	return nil
}

func (r *postgresRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	const q = `
DELETE FROM orders
WHERE status = $1 AND updated_at < $2
`
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, q, domain.OrderStatusPending, before)
	if err != nil {
		r.logger.Error("order repo: delete stale", zap.Time("before", before), zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
