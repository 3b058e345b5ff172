package catalog

import (
	"sync"

	"github.com/google/uuid"
)

// Catalog is the in-memory store of appointment slots. It is seeded once at
// startup and afterwards the only mutation is MarkBooked flipping a slot's
// availability flag.
//
// Slots are kept in insertion order so that queries sorting by start time
// have a stable tie-break when two practitioners share a start time.
type Catalog struct {
	mu          sync.RWMutex
	slots       map[uuid.UUID]*Slot
	order       []uuid.UUID
	initialized bool
}

func New() *Catalog {
	return &Catalog{
		slots: make(map[uuid.UUID]*Slot),
	}
}

// Initialize populates the catalog from the seed configuration. It is
// idempotent: concurrent and repeated calls after the first are no-ops.
func (c *Catalog) Initialize(cfg SeedConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	slots := generateSlots(cfg)
	for i := range slots {
		s := slots[i]
		c.slots[s.ID] = &s
		c.order = append(c.order, s.ID)
	}

	c.initialized = true
	return nil
}

// Get returns a copy of the slot, so callers never observe a torn record.
func (c *Catalog) Get(id uuid.UUID) (Slot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.slots[id]
	if !ok {
		return Slot{}, false
	}
	return *s, true
}

// MarkBooked sets the slot's availability flag to false and reports whether
// the slot exists. Booking an already-booked slot is still reported as true;
// the flag never reverts.
func (c *Catalog) MarkBooked(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[id]
	if !ok {
		return false
	}
	s.Available = false
	return true
}

// Snapshot returns copies of all slots in insertion order.
func (c *Catalog) Snapshot() []Slot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Slot, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.slots[id])
	}
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}
