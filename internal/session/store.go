package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
)

// Store keeps small per-session values. Get returns nil with no error when the
// session or the key is absent. Sessions expire after the store's TTL of inactivity;
// Set and Touch restart that clock.
type Store interface {
	Get(ctx context.Context, sid, key string) (any, error)
	Set(ctx context.Context, sid, key string, value any) error
	Delete(ctx context.Context, sid, key string) error
	Touch(ctx context.Context, sid string) error
	Ping(ctx context.Context) error
}

// NewID returns a random URL-safe session id.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
