package menu

import (
	"context"

	"chiringuito/internal/domain"
	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error)
	ListAvailable(ctx context.Context) ([]domain.MenuItem, error)
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}
