package seed

import (
	"context"
	_ "embed"
	"fmt"

	"chiringuito/internal/domain"
	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

//go:embed menu.toml
var defaultMenu string

type menuFile struct {
	Items []menuSeed `toml:"item"`
}

type menuSeed struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Price       string `toml:"price"`
	Image       string `toml:"image"`
	Available   *bool  `toml:"available"`
}

// MenuWriter stores menu items, matching existing ones by name.
type MenuWriter interface {
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}

// Apply upserts the embedded default menu. It is idempotent by item name.
func Apply(ctx context.Context, w MenuWriter) (int, error) {
	return ApplyTOML(ctx, w, defaultMenu)
}

// ApplyTOML upserts the items of a TOML menu document.
func ApplyTOML(ctx context.Context, w MenuWriter, doc string) (int, error) {
	items, err := parseMenu(doc)
	if err != nil {
		return 0, err
	}
	for i, it := range items {
		if _, err := w.Upsert(ctx, it); err != nil {
			return i, fmt.Errorf("upsert menu item %q: %w", it.Name, err)
		}
	}
	return len(items), nil
}

func parseMenu(doc string) ([]domain.MenuItem, error) {
	var f menuFile
	if _, err := toml.Decode(doc, &f); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}

	items := make([]domain.MenuItem, 0, len(f.Items))
	for _, s := range f.Items {
		if s.Name == "" {
			return nil, fmt.Errorf("menu item without name")
		}
		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			return nil, fmt.Errorf("menu item %q: invalid price %q", s.Name, s.Price)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("menu item %q: negative price", s.Name)
		}
		available := true
		if s.Available != nil {
			available = *s.Available
		}
		items = append(items, domain.MenuItem{
			Name:        s.Name,
			Description: s.Description,
			Price:       price.Round(domain.MoneyScale),
			ImageURL:    s.Image,
			Available:   available,
		})
	}
	return items, nil
}
