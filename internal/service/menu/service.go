package menu

import (
	"context"

	"chiringuito/internal/domain"
	"chiringuito/internal/logging"
	"chiringuito/internal/media"
	menurepo "chiringuito/internal/repository/menu"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service struct {
	repo   menurepo.Repository
	images media.Resolver
	logger *zap.Logger
}

// Item is a menu entry in display shape.
type Item struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Available   bool
}

func New(repo menurepo.Repository, images media.Resolver, logger *zap.Logger) *Service {
	if images == nil {
		images = media.Passthrough{}
	}
	return &Service{repo: repo, images: images, logger: logging.OrNop(logger).Named("menu")}
}

// List returns the available items ordered by name.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		url, err := s.images.ImageURL(ctx, it.ImageURL)
		if err != nil {
			// Fall back to the stored reference.
			s.logger.Warn("resolve image", zap.Stringer("menu_item_id", it.ID), zap.Error(err))
			url = it.ImageURL
		}
		out = append(out, Item{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			ImageURL:    url,
			Available:   it.Available,
		})
	}
	return out, nil
}

func (s *Service) Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	return s.repo.Upsert(ctx, item)
}
