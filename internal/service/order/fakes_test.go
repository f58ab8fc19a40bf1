package order

import (
	"context"
	"sort"
	"time"

	"chiringuito/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore backs the menu, order and order line repos with maps.
type memStore struct {
	items  map[uuid.UUID]domain.MenuItem
	orders map[uuid.UUID]domain.Order
	lines  map[uuid.UUID]domain.OrderLine
	seq    int

	orderCreates int
	orderUpdates int
	orderDeletes int
	lineSaves    int
	lineDeletes  int
}

func newMemStore() *memStore {
	return &memStore{
		items:  make(map[uuid.UUID]domain.MenuItem),
		orders: make(map[uuid.UUID]domain.Order),
		lines:  make(map[uuid.UUID]domain.OrderLine),
	}
}

func (m *memStore) addItem(name, price string, available bool) domain.MenuItem {
	item := domain.MenuItem{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Available: available,
	}
	m.items[item.ID] = item
	return item
}

func (m *memStore) writes() int {
	return m.orderCreates + m.orderUpdates + m.orderDeletes + m.lineSaves + m.lineDeletes
}

func (m *memStore) linesOf(orderID uuid.UUID) []domain.OrderLine {
	var out []domain.OrderLine
	for _, l := range m.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type memMenu struct{ *memStore }

func (m memMenu) GetByID(_ context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (m memMenu) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type memOrders struct{ *memStore }

func (m memOrders) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	m.orderCreates++
	o.ID = uuid.New()
	m.orders[o.ID] = o
	return &o, nil
}

func (m memOrders) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (m memOrders) UpdateTotal(_ context.Context, id uuid.UUID, total decimal.Decimal) error {
	m.orderUpdates++
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.TotalAmount = total
	m.orders[id] = o
	return nil
}

func (m memOrders) Delete(_ context.Context, id uuid.UUID) error {
	m.orderDeletes++
	delete(m.orders, id)
	for lid, l := range m.lines {
		if l.OrderID == id {
			delete(m.lines, lid)
		}
	}
	return nil
}

type memLines struct{ *memStore }

func (m memLines) ListByOrder(_ context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	return m.linesOf(orderID), nil
}

func (m memLines) GetByOrderAndMenuItem(_ context.Context, orderID, menuItemID uuid.UUID) (*domain.OrderLine, error) {
	for _, l := range m.lines {
		if l.OrderID == orderID && l.MenuItemID == menuItemID {
			return &l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m memLines) Save(_ context.Context, line domain.OrderLine) (*domain.OrderLine, error) {
	m.lineSaves++
	if line.ID == uuid.Nil {
		m.seq++
		line.ID = uuid.New()
		line.CreatedAt = time.Unix(int64(m.seq), 0)
	}
	m.lines[line.ID] = line
	return &line, nil
}

func (m memLines) Delete(_ context.Context, id uuid.UUID) error {
	m.lineDeletes++
	if _, ok := m.lines[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.lines, id)
	return nil
}

type passTx struct{ calls int }

func (p *passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type fakeSession struct {
	ref      *uuid.UUID
	setCalls int
	cleared  bool
	err      error
}

func (f *fakeSession) OrderRef(context.Context) (uuid.UUID, bool, error) {
	if f.err != nil {
		return uuid.Nil, false, f.err
	}
	if f.ref == nil {
		return uuid.Nil, false, nil
	}
	return *f.ref, true, nil
}

func (f *fakeSession) SetOrderRef(_ context.Context, id uuid.UUID) error {
	f.setCalls++
	f.ref = &id
	f.cleared = false
	return nil
}

func (f *fakeSession) ClearOrderRef(context.Context) error {
	f.ref = nil
	f.cleared = true
	return nil
}

func newTestService(store *memStore, limits Limits) *Service {
	return New(&passTx{}, memMenu{store}, memOrders{store}, memLines{store}, limits, nil)
}
