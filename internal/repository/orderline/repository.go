package orderline

import (
	"context"

	"chiringuito/internal/domain"
	"github.com/google/uuid"
)

type Repository interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error)
	GetByOrderAndMenuItem(ctx context.Context, orderID, menuItemID uuid.UUID) (*domain.OrderLine, error)
	// Save inserts the line when its ID is uuid.Nil and updates it otherwise.
	Save(ctx context.Context, line domain.OrderLine) (*domain.OrderLine, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
