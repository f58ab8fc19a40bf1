package session

import (
	"context"

	"github.com/google/uuid"
)

// OrderIDKey is the session key holding the active order id.
const OrderIDKey = "orderId"

// Scope binds a Store to one session id and exposes the order reference.
type Scope struct {
	store Store
	id    string
}

func NewScope(store Store, id string) *Scope {
	return &Scope{store: store, id: id}
}

func (s *Scope) ID() string {
	return s.id
}

// OrderRef returns the stored order id. ok is false when nothing usable is stored.
func (s *Scope) OrderRef(ctx context.Context) (uuid.UUID, bool, error) {
	raw, err := s.store.Get(ctx, s.id, OrderIDKey)
	if err != nil {
		return uuid.Nil, false, err
	}
	id, ok := ParseOrderID(raw)
	return id, ok, nil
}

func (s *Scope) SetOrderRef(ctx context.Context, id uuid.UUID) error {
	return s.store.Set(ctx, s.id, OrderIDKey, id.String())
}

func (s *Scope) ClearOrderRef(ctx context.Context) error {
	return s.store.Delete(ctx, s.id, OrderIDKey)
}

// ParseOrderID accepts uuid.UUID, [16]byte, string and []byte values.
func ParseOrderID(raw any) (uuid.UUID, bool) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, v != uuid.Nil
	case [16]byte:
		id := uuid.UUID(v)
		return id, id != uuid.Nil
	case string:
		return parseString(v)
	case []byte:
		if len(v) == 16 {
			id, err := uuid.FromBytes(v)
			if err == nil && id != uuid.Nil {
				return id, true
			}
		}
		return parseString(string(v))
	default:
		return uuid.Nil, false
	}
}

func parseString(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
