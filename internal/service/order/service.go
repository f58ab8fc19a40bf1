package order

import (
	"context"
	"errors"
	"fmt"

	"chiringuito/internal/domain"
	"chiringuito/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service struct {
	tx     transactor
	menu   menuRepo
	orders orderRepo
	lines  lineRepo
	limits Limits
	logger *zap.Logger
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type menuRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error)
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type lineRepo interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error)
	GetByOrderAndMenuItem(ctx context.Context, orderID, menuItemID uuid.UUID) (*domain.OrderLine, error)
	Save(ctx context.Context, line domain.OrderLine) (*domain.OrderLine, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Session is the caller's view of the order reference kept in its session.
type Session interface {
	OrderRef(ctx context.Context) (uuid.UUID, bool, error)
	SetOrderRef(ctx context.Context, id uuid.UUID) error
	ClearOrderRef(ctx context.Context) error
}

type Limits struct {
	MaxTotalItems      int
	MaxLineQuantity    int
	EnforceCapOnUpdate bool
}

func DefaultLimits() Limits {
	return Limits{MaxTotalItems: 50, MaxLineQuantity: domain.MaxLineQuantity}
}

func New(tx transactor, menu menuRepo, orders orderRepo, lines lineRepo, limits Limits, logger *zap.Logger) *Service {
	if limits.MaxTotalItems <= 0 || limits.MaxLineQuantity <= 0 {
		d := DefaultLimits()
		d.EnforceCapOnUpdate = limits.EnforceCapOnUpdate
		limits = d
	}
	limits.MaxLineQuantity = min(limits.MaxLineQuantity, domain.MaxLineQuantity)
	return &Service{
		tx:     tx,
		menu:   menu,
		orders: orders,
		lines:  lines,
		limits: limits,
		logger: logging.OrNop(logger).Named("order"),
	}
}

// AddItem merges quantity of the menu item into the session's order, creating the
// order when the session has none.
func (s *Service) AddItem(ctx context.Context, sess Session, menuItemID uuid.UUID, quantity int) (*Summary, error) {
	if err := s.checkQuantity(quantity); err != nil {
		return nil, err
	}

	var (
		summary *Summary
		fresh   bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err := s.menu.GetByID(ctx, menuItemID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Errorf(domain.ErrNotFound, "Menu item not found with id: %s", menuItemID)
			}
			return fmt.Errorf("load menu item: %w", err)
		}
		if !item.Available {
			return domain.Errorf(domain.ErrUnavailable, "Menu item is not available: %s", item.Name)
		}

		o, lines, err := s.resolveOrder(ctx, sess)
		if err != nil {
			return err
		}
		fresh = o.ID == uuid.Nil

		idx := -1
		for i := range lines {
			if lines[i].MenuItemID == menuItemID {
				idx = i
				break
			}
		}
		line := domain.OrderLine{OrderID: o.ID, MenuItemID: menuItemID}
		if idx >= 0 {
			line = lines[idx]
		}

		if domain.CountItems(lines)+quantity > s.limits.MaxTotalItems {
			return domain.Errorf(domain.ErrLimitExceeded, "Cannot exceed maximum of %d items in cart", s.limits.MaxTotalItems)
		}
		if line.Quantity+quantity > s.limits.MaxLineQuantity {
			return domain.Errorf(domain.ErrLimitExceeded, "Cannot exceed maximum of %d of one item", s.limits.MaxLineQuantity)
		}

		line.Quantity += quantity
		line.UnitPrice = item.Price
		line.Recalculate()
		if idx >= 0 {
			lines[idx] = line
		} else {
			lines = append(lines, line)
			idx = len(lines) - 1
		}
		o.TotalAmount = domain.SumLineTotals(lines)

		if fresh {
			created, err := s.orders.Create(ctx, o)
			if err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			o = *created
			lines[idx].OrderID = o.ID
		} else if err := s.orders.UpdateTotal(ctx, o.ID, o.TotalAmount); err != nil {
			return fmt.Errorf("update order total: %w", err)
		}

		saved, err := s.lines.Save(ctx, lines[idx])
		if err != nil {
			return fmt.Errorf("save order line: %w", err)
		}
		lines[idx] = *saved

		names, err := s.itemNames(ctx, lines)
		if err != nil {
			return err
		}
		summary = buildSummary(o, lines, names)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fresh {
		if err := sess.SetOrderRef(ctx, summary.OrderID); err != nil {
			s.logger.Error("set session order", zap.Stringer("order_id", summary.OrderID), zap.Error(err))
			return nil, fmt.Errorf("set session order: %w", err)
		}
	}
	s.logger.Debug("item added",
		zap.Stringer("order_id", summary.OrderID),
		zap.Stringer("menu_item_id", menuItemID),
		zap.Int("quantity", quantity),
		zap.Bool("new_order", fresh),
	)
	return summary, nil
}

// GetCart returns the session's cart. ok is false when the session has no usable order.
func (s *Service) GetCart(ctx context.Context, sess Session) (*Summary, bool, error) {
	ref, ok, err := sess.OrderRef(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("read session order: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	o, err := s.orders.GetByID(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load order: %w", err)
	}
	lines, err := s.lines.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, false, fmt.Errorf("load order lines: %w", err)
	}
	names, err := s.itemNames(ctx, lines)
	if err != nil {
		return nil, false, err
	}
	return buildSummary(*o, lines, names), true, nil
}

// UpdateQuantity replaces the quantity of an existing line.
func (s *Service) UpdateQuantity(ctx context.Context, sess Session, menuItemID uuid.UUID, quantity int) (*Summary, error) {
	if err := s.checkQuantity(quantity); err != nil {
		return nil, err
	}

	var summary *Summary
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.activeOrder(ctx, sess)
		if err != nil {
			return err
		}

		line, err := s.cartLine(ctx, o.ID, menuItemID)
		if err != nil {
			return err
		}
		if _, err := s.menu.GetByID(ctx, menuItemID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Errorf(domain.ErrNotFound, "Menu item not found")
			}
			return fmt.Errorf("load menu item: %w", err)
		}

		lines, err := s.lines.ListByOrder(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("load order lines: %w", err)
		}
		if s.limits.EnforceCapOnUpdate && domain.CountItems(lines)-line.Quantity+quantity > s.limits.MaxTotalItems {
			return domain.Errorf(domain.ErrLimitExceeded, "Cannot exceed maximum of %d items in cart", s.limits.MaxTotalItems)
		}

		line.Quantity = quantity
		line.Recalculate()
		saved, err := s.lines.Save(ctx, *line)
		if err != nil {
			return fmt.Errorf("save order line: %w", err)
		}
		for i := range lines {
			if lines[i].ID == saved.ID {
				lines[i] = *saved
			}
		}

		o.TotalAmount = domain.SumLineTotals(lines)
		if err := s.orders.UpdateTotal(ctx, o.ID, o.TotalAmount); err != nil {
			return fmt.Errorf("update order total: %w", err)
		}

		names, err := s.itemNames(ctx, lines)
		if err != nil {
			return err
		}
		summary = buildSummary(*o, lines, names)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RemoveItem deletes the line for the menu item. Removing the last line deletes the
// order and clears the session reference.
func (s *Service) RemoveItem(ctx context.Context, sess Session, menuItemID uuid.UUID) error {
	var emptied bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.activeOrder(ctx, sess)
		if err != nil {
			return err
		}
		line, err := s.cartLine(ctx, o.ID, menuItemID)
		if err != nil {
			return err
		}
		if err := s.lines.Delete(ctx, line.ID); err != nil {
			return fmt.Errorf("delete order line: %w", err)
		}

		remaining, err := s.lines.ListByOrder(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("load order lines: %w", err)
		}
		if len(remaining) == 0 {
			emptied = true
			if err := s.orders.Delete(ctx, o.ID); err != nil {
				return fmt.Errorf("delete order: %w", err)
			}
			return nil
		}
		if err := s.orders.UpdateTotal(ctx, o.ID, domain.SumLineTotals(remaining)); err != nil {
			return fmt.Errorf("update order total: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if emptied {
		if err := sess.ClearOrderRef(ctx); err != nil {
			s.logger.Error("clear session order", zap.Error(err))
			return fmt.Errorf("clear session order: %w", err)
		}
	}
	return nil
}

func (s *Service) checkQuantity(quantity int) error {
	if quantity < 1 || quantity > s.limits.MaxLineQuantity {
		return domain.Errorf(domain.ErrInvalidArgument, "Quantity must be between 1 and %d", s.limits.MaxLineQuantity)
	}
	return nil
}

// resolveOrder returns the session's order and its lines, or an unsaved pending order
// when the session has no reference or the referenced order is gone.
func (s *Service) resolveOrder(ctx context.Context, sess Session) (domain.Order, []domain.OrderLine, error) {
	ref, ok, err := sess.OrderRef(ctx)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("read session order: %w", err)
	}
	if !ok {
		return domain.NewPendingOrder(), nil, nil
	}

	o, err := s.orders.GetByID(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("stale session order", zap.Stringer("order_id", ref))
			return domain.NewPendingOrder(), nil, nil
		}
		return domain.Order{}, nil, fmt.Errorf("load order: %w", err)
	}
	lines, err := s.lines.ListByOrder(ctx, o.ID)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("load order lines: %w", err)
	}
	return *o, lines, nil
}

func (s *Service) activeOrder(ctx context.Context, sess Session) (*domain.Order, error) {
	ref, ok, err := sess.OrderRef(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session order: %w", err)
	}
	if !ok {
		return nil, domain.Errorf(domain.ErrInvalidState, "No active order in session")
	}
	o, err := s.orders.GetByID(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrInvalidState, "Order not found")
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return o, nil
}

func (s *Service) cartLine(ctx context.Context, orderID, menuItemID uuid.UUID) (*domain.OrderLine, error) {
	line, err := s.lines.GetByOrderAndMenuItem(ctx, orderID, menuItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrInvalidArgument, "Item not found in cart")
		}
		return nil, fmt.Errorf("load order line: %w", err)
	}
	return line, nil
}

func (s *Service) itemNames(ctx context.Context, lines []domain.OrderLine) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(lines))
	if len(lines) == 0 {
		return names, nil
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MenuItemID)
	}
	items, err := s.menu.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	for _, it := range items {
		names[it.ID] = it.Name
	}
	return names, nil
}
