package order

import (
	"context"
	"time"

	"chiringuito/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteStale removes pending orders not updated since before and reports how many went.
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
