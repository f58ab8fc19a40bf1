package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chiringuito/internal/domain"
	"github.com/shopspring/decimal"
)

// MenuWriter stores menu items, matching existing ones by name.
type MenuWriter interface {
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}

// CSVImporter reads menu CSV files with the columns name, description, price,
// imageUrl and available, and upserts one item per row.
type CSVImporter struct {
	reader *csv.Reader
	menu   MenuWriter
}

func NewCSVImporter(r io.Reader, menu MenuWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader: csvr,
		menu:   menu,
	}
}

// Run upserts every row and returns how many items were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing name column")
	}
	if _, ok := index["price"]; !ok {
		return 0, errors.New("missing price column")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		item, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if item == nil {
			continue
		}
		if _, err := i.menu.Upsert(ctx, *item); err != nil {
			return imported, fmt.Errorf("upsert menu item %q: %w", item.Name, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*domain.MenuItem, error) {
	name := pick(record, index, "name")
	priceStr := pick(record, index, "price")
	if name == "" && priceStr == "" {
		return nil, nil
	}
	if name == "" {
		return nil, errors.New("name required")
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for %q", priceStr, name)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("negative price for %q", name)
	}

	available := true
	if v := pick(record, index, "available"); v != "" {
		available, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid available flag %q for %q", v, name)
		}
	}

	return &domain.MenuItem{
		Name:        name,
		Description: pick(record, index, "description"),
		Price:       price.Round(domain.MoneyScale),
		ImageURL:    pick(record, index, "imageUrl"),
		Available:   available,
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
