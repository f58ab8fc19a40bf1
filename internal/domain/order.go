package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatusPending is the only status a cart order takes.
const OrderStatusPending = "PENDING"

// MaxLineQuantity is the largest quantity one order line can hold. The order_lines
// quantity CHECK enforces the same bound.
const MaxLineQuantity = 50

// MoneyScale is the number of fraction digits stored for prices and totals.
const MoneyScale = 2

type Order struct {
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewPendingOrder returns an unsaved order with zero total.
func NewPendingOrder() Order {
	return Order{Status: OrderStatusPending, TotalAmount: decimal.Zero}
}

type OrderLine struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"orderId"`
	MenuItemID uuid.UUID       `json:"menuItemId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Recalculate sets LineTotal to Quantity x UnitPrice.
func (l *OrderLine) Recalculate() {
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(MoneyScale)
}

// SumLineTotals adds up the line totals of lines.
func SumLineTotals(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total.Round(MoneyScale)
}

// CountItems adds up the quantities of lines.
func CountItems(lines []OrderLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
