// Package eventledger records which provider webhook events have been
// processed, so a redelivered event has no additional side effect.
package eventledger

import (
	"context"
	"sync"
	"time"
)

// Ledger reserves webhook event ids before handling. Reserve is an atomic
// check-and-insert: the first caller for an id gets true, every later caller
// gets false. A failed handling releases the reservation so the provider's
// redelivery can retry it.
type Ledger interface {
	Reserve(ctx context.Context, eventID, eventType string) (bool, error)
	Release(ctx context.Context, eventID string) error
	Seen(ctx context.Context, eventID string) (bool, error)
}

// Memory is the in-process ledger. Its guarantee is scoped to one running
// instance; production deployments should use the sqlite ledger instead.
type Memory struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{seen: make(map[string]time.Time)}
}

func (m *Memory) Reserve(ctx context.Context, eventID, eventType string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.seen[eventID]; ok {
		return false, nil
	}
	m.seen[eventID] = time.Now()
	return true, nil
}

func (m *Memory) Release(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.seen, eventID)
	return nil
}

func (m *Memory) Seen(ctx context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.seen[eventID]
	return ok, nil
}
