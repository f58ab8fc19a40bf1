package order

import (
	"chiringuito/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnknownItemName stands in for menu items that no longer exist.
const UnknownItemName = "Unknown Item"

type Summary struct {
	OrderID     uuid.UUID
	Status      string
	TotalAmount decimal.Decimal
	ItemCount   int
	Lines       []SummaryLine
}

type SummaryLine struct {
	OrderLineID  uuid.UUID
	MenuItemID   uuid.UUID
	MenuItemName string
	Quantity     int
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
}

// buildSummary recomputes the total and item count from lines rather than trusting o.
func buildSummary(o domain.Order, lines []domain.OrderLine, names map[uuid.UUID]string) *Summary {
	out := &Summary{
		OrderID:     o.ID,
		Status:      o.Status,
		TotalAmount: domain.SumLineTotals(lines),
		ItemCount:   domain.CountItems(lines),
		Lines:       make([]SummaryLine, 0, len(lines)),
	}
	for _, l := range lines {
		name, ok := names[l.MenuItemID]
		if !ok {
			name = UnknownItemName
		}
		out.Lines = append(out.Lines, SummaryLine{
			OrderLineID:  l.ID,
			MenuItemID:   l.MenuItemID,
			MenuItemName: name,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineTotal:    l.LineTotal,
		})
	}
	return out
}
