package menu

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

const selectColumns = `id, name, COALESCE(description, ''), price, COALESCE(image_url, ''), available, created_at`

type postgresRepo struct {
	pool   db.DBTX
	logger *zap.Logger
}

func NewPostgres(pool db.DBTX, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	const q = `
SELECT ` + selectColumns + `
FROM menu_items
WHERE id = $1
`
	item, err := scanItem(db.Conn(ctx, r.pool).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("menu repo: get not found", zap.Stringer("menu_item_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("menu repo: get", zap.Stringer("menu_item_id", id), zap.Error(err))
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const q = `
SELECT ` + selectColumns + `
FROM menu_items
WHERE id = ANY($1::uuid[])
`
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}
	return r.list(ctx, "list by ids", q, keys)
}

func (r *postgresRepo) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	const q = `
SELECT ` + selectColumns + `
FROM menu_items
WHERE available = TRUE
ORDER BY name ASC
`
	return r.list(ctx, "list available", q)
}

func (r *postgresRepo) Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	const q = `
INSERT INTO menu_items (name, description, price, image_url, available)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    image_url = EXCLUDED.image_url,
    available = EXCLUDED.available
RETURNING id, created_at
`
	res := item
	err := db.Conn(ctx, r.pool).QueryRow(ctx, q,
		item.Name,
		item.Description,
		item.Price,
		item.ImageURL,
		item.Available,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("menu repo: upsert", zap.String("name", item.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("menu repo: upserted", zap.String("name", res.Name), zap.Stringer("menu_item_id", res.ID))
	return &res, nil
}

func (r *postgresRepo) list(ctx context.Context, op, q string, args ...any) ([]domain.MenuItem, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("menu repo: "+op, zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.MenuItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("menu repo: "+op+" rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("menu repo: "+op, zap.Int("count", len(result)))
	return result, nil
}

func scanItem(row pgx.Row) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.ImageURL,
		&item.Available,
		&item.CreatedAt,
	)
	return item, err
}
