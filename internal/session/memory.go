package session

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	values    map[string]any
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Sessions expire ttl after their last write or touch.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, sid, key string) (any, error) {
	m.mu.RLock()
	s, ok := m.sessions[sid]
	if !ok {
		m.mu.RUnlock()
		return nil, nil
	}
	expired := m.now().After(s.expiresAt)
	value := s.values[key]
	m.mu.RUnlock()

	if expired {
		m.mu.Lock()
		if cur, ok := m.sessions[sid]; ok && m.now().After(cur.expiresAt) {
			delete(m.sessions, sid)
		}
		m.mu.Unlock()
		return nil, nil
	}
	return value, nil
}

func (m *MemoryStore) Set(_ context.Context, sid, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sid]
	if !ok || m.now().After(s.expiresAt) {
		s = &memorySession{values: make(map[string]any)}
		m.sessions[sid] = s
	}
	s.values[key] = value
	s.expiresAt = m.now().Add(m.ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sid, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sid]
	if !ok {
		return nil
	}
	delete(s.values, key)
	if len(s.values) == 0 {
		delete(m.sessions, sid)
	}
	return nil
}

func (m *MemoryStore) Touch(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sid]
	if !ok {
		return nil
	}
	now := m.now()
	if now.After(s.expiresAt) {
		delete(m.sessions, sid)
		return nil
	}
	s.expiresAt = now.Add(m.ttl)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// PurgeExpired drops expired sessions and returns how many were removed.
func (m *MemoryStore) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for sid, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, sid)
			n++
		}
	}
	return n
}
