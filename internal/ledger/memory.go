package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is the in-process ledger backend: a mutex-guarded map of slot id to
// expiry. A hold may linger in the map after its logical expiry until the
// next sweep; every public operation sweeps (at least for the slot it
// touches) before deciding anything.
type Memory struct {
	mu    sync.Mutex
	holds map[uuid.UUID]time.Time
	now   func() time.Time
}

func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock injects the clock, so tests can cross expiry
// boundaries without sleeping.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		holds: make(map[uuid.UUID]time.Time),
		now:   now,
	}
}

func (m *Memory) Place(ctx context.Context, slotID uuid.UUID, ttl time.Duration) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expiry, ok := m.holds[slotID]; ok && expiry.After(now) {
		return time.Time{}, ErrAlreadyHeld
	}

	expiry := now.Add(ttl)
	m.holds[slotID] = expiry
	return expiry, nil
}

func (m *Memory) Remove(ctx context.Context, slotID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holds[slotID]; !ok {
		return false, nil
	}
	delete(m.holds, slotID)
	return true, nil
}

func (m *Memory) IsHeld(ctx context.Context, slotID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.holds[slotID]
	if !ok {
		return false, nil
	}
	if !expiry.After(m.now()) {
		delete(m.holds, slotID)
		return false, nil
	}
	return true, nil
}

func (m *Memory) SweepExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	swept := 0
	for id, expiry := range m.holds {
		if !expiry.After(now) {
			delete(m.holds, id)
			swept++
		}
	}
	return swept, nil
}
