package menu

import (
	"context"
	"errors"
	"testing"

	"chiringuito/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	items    []domain.MenuItem
	err      error
	upserted []domain.MenuItem
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	for _, it := range s.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) ListByIDs(_ context.Context, _ []uuid.UUID) ([]domain.MenuItem, error) {
	return s.items, s.err
}

func (s *stubRepo) ListAvailable(_ context.Context) ([]domain.MenuItem, error) {
	return s.items, s.err
}

func (s *stubRepo) Upsert(_ context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	s.upserted = append(s.upserted, item)
	item.ID = uuid.New()
	return &item, s.err
}

type stubResolver struct {
	prefix string
	err    error
}

func (s stubResolver) ImageURL(_ context.Context, ref string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.prefix + ref, nil
}

func TestServiceList_ResolvesImages(t *testing.T) {
	repo := &stubRepo{items: []domain.MenuItem{
		{ID: uuid.New(), Name: "Croquetas", Price: decimal.RequireFromString("6.00"), ImageURL: "croquetas.jpg", Available: true},
		{ID: uuid.New(), Name: "Paella", Price: decimal.RequireFromString("12.50"), Available: true},
	}}
	svc := New(repo, stubResolver{prefix: "https://img/"}, nil)

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Croquetas" {
		t.Fatalf("unexpected items %+v", got)
	}
	if got[0].ImageURL != "https://img/croquetas.jpg" {
		t.Fatalf("unexpected image url %q", got[0].ImageURL)
	}
	if got[1].Price.StringFixed(2) != "12.50" {
		t.Fatalf("unexpected price %s", got[1].Price)
	}
}

func TestServiceList_ImageErrorKeepsReference(t *testing.T) {
	repo := &stubRepo{items: []domain.MenuItem{{ID: uuid.New(), Name: "Paella", ImageURL: "paella.jpg", Available: true}}}
	svc := New(repo, stubResolver{err: errors.New("no storage")}, nil)

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ImageURL != "paella.jpg" {
		t.Fatalf("expected raw reference, got %q", got[0].ImageURL)
	}
}

func TestServiceList_RepoError(t *testing.T) {
	boom := errors.New("db down")
	svc := New(&stubRepo{err: boom}, nil, nil)
	if _, err := svc.List(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestServiceUpsert(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, nil, nil)
	saved, err := svc.Upsert(context.Background(), domain.MenuItem{Name: "Tortilla"})
	if err != nil || saved.ID == uuid.Nil {
		t.Fatalf("Upsert = %+v, %v", saved, err)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].Name != "Tortilla" {
		t.Fatalf("unexpected upserts %+v", repo.upserted)
	}
}
