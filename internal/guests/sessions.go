package guests

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionSource hands out the session identifier a guest cart is tagged
// with. pkg/redis.Client implements it.
type SessionSource interface {
	GuestSession(ctx context.Context, guestID string, ttl time.Duration) (string, error)
	EndGuestSession(ctx context.Context, guestID string) error
}

// MemorySessions is the in-process SessionSource used when Redis is disabled.
type MemorySessions struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]memorySession
}

type memorySession struct {
	id      string
	expires time.Time
}

// NewMemorySessions returns an empty in-process session store.
func NewMemorySessions(now func() time.Time) *MemorySessions {
	if now == nil {
		now = time.Now
	}
	return &MemorySessions{now: now, sessions: make(map[string]memorySession)}
}

func (m *MemorySessions) GuestSession(_ context.Context, guestID string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if current, ok := m.sessions[guestID]; ok && now.Before(current.expires) {
		return current.id, nil
	}
	session := memorySession{id: uuid.NewString(), expires: now.Add(ttl)}
	m.sessions[guestID] = session
	return session.id, nil
}

func (m *MemorySessions) EndGuestSession(_ context.Context, guestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, guestID)
	return nil
}
