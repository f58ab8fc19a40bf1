package orderline

import (
	"context"
	"errors"

	"chiringuito/internal/db"
	"chiringuito/internal/domain"
	"chiringuito/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const selectColumns = `id, order_id, menu_item_id, quantity, unit_price, line_total, created_at`

type postgresRepo struct {
	pool   db.DBTX
	logger *zap.Logger
}

func NewPostgres(pool db.DBTX, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	const q = `
SELECT ` + selectColumns + `
FROM order_lines
WHERE order_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := db.Conn(ctx, r.pool).Query(ctx, q, orderID)
	if err != nil {
		r.logger.Error("order line repo: list", zap.Stringer("order_id", orderID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) GetByOrderAndMenuItem(ctx context.Context, orderID, menuItemID uuid.UUID) (*domain.OrderLine, error) {
	const q = `
SELECT ` + selectColumns + `
FROM order_lines
WHERE order_id = $1 AND menu_item_id = $2
`
	line, err := scanLine(db.Conn(ctx, r.pool).QueryRow(ctx, q, orderID, menuItemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order line repo: get",
			zap.Stringer("order_id", orderID),
			zap.Stringer("menu_item_id", menuItemID),
			zap.Error(err),
		)
		return nil, err
	}
	return &line, nil
}

func (r *postgresRepo) Save(ctx context.Context, line domain.OrderLine) (*domain.OrderLine, error) {
	if line.ID == uuid.Nil {
		return r.insert(ctx, line)
	}

	const q = `
UPDATE order_lines
SET quantity = $1, unit_price = $2, line_total = $3, updated_at = now()
WHERE id = $4
`
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, q, line.Quantity, line.UnitPrice, line.LineTotal, line.ID)
	if err != nil {
		r.logger.Error("order line repo: update", zap.Stringer("order_line_id", line.ID), zap.Error(err))
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	r.logger.Debug("order line repo: updated",
		zap.Stringer("order_line_id", line.ID),
		zap.Int("quantity", line.Quantity),
	)
	return &line, nil
}

func (r *postgresRepo) insert(ctx context.Context, line domain.OrderLine) (*domain.OrderLine, error) {
	const q = `
INSERT INTO order_lines (order_id, menu_item_id, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at
`
	res := line
	err := db.Conn(ctx, r.pool).QueryRow(ctx, q,
		line.OrderID,
		line.MenuItemID,
		line.Quantity,
		line.UnitPrice,
		line.LineTotal,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("order line repo: insert",
			zap.Stringer("order_id", line.OrderID),
			zap.Stringer("menu_item_id", line.MenuItemID),
			zap.Error(err),
		)
		return nil, err
	}
	r.logger.Debug("order line repo: inserted",
		zap.Stringer("order_line_id", res.ID),
		zap.Stringer("order_id", res.OrderID),
		zap.Int("quantity", res.Quantity),
	)
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM order_lines WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("order line repo: delete", zap.Stringer("order_line_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanLine(row pgx.Row) (domain.OrderLine, error) {
	var line domain.OrderLine
	err := row.Scan(
		&line.ID,
		&line.OrderID,
		&line.MenuItemID,
		&line.Quantity,
		&line.UnitPrice,
		&line.LineTotal,
		&line.CreatedAt,
	)
	return line, err
}
