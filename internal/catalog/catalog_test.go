package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestInitializeIdempotent(t *testing.T) {
	c := New()

	if err := c.Initialize(SeedConfig{Days: 7}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	first := c.Len()
	if first == 0 {
		t.Fatal("expected slots after initialize")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Initialize(SeedConfig{Days: 7}); err != nil {
				t.Errorf("repeat initialize: %v", err)
			}
		}()
	}
	wg.Wait()

	if c.Len() != first {
		t.Errorf("catalog double-populated: %d slots, want %d", c.Len(), first)
	}
}

func TestSeedGrid(t *testing.T) {
	c := New()
	if err := c.Initialize(SeedConfig{Days: 14, Practitioners: 3}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	// Any 14 consecutive days hold exactly 10 weekdays, each with 6 starts
	// per practitioner per motive.
	want := len(DefaultMotives) * 10 * 3 * len(slotHours)
	if c.Len() != want {
		t.Fatalf("seeded %d slots, want %d", c.Len(), want)
	}

	now := time.Now()
	for _, slot := range c.Snapshot() {
		if !slot.Available {
			t.Errorf("slot %s seeded unavailable", slot.ID)
		}
		if !slot.StartTime.After(now) {
			t.Errorf("slot %s starts in the past: %s", slot.ID, slot.StartTime)
		}
		if wd := slot.StartTime.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("slot %s falls on a weekend", slot.ID)
		}

		motive := MotiveByID(slot.MotiveID)
		if motive == nil {
			t.Fatalf("slot %s has unknown motive %q", slot.ID, slot.MotiveID)
		}
		if slot.DurationMinutes() != motive.DurationMinutes {
			t.Errorf("slot %s duration %d, want %d for motive %s",
				slot.ID, slot.DurationMinutes(), motive.DurationMinutes, motive.ID)
		}
	}
}

func TestSeedExtendedRoster(t *testing.T) {
	c := New()
	if err := c.Initialize(SeedConfig{Days: 1, Practitioners: 6}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	seen := make(map[string]bool)
	for _, slot := range c.Snapshot() {
		if slot.PractitionerName == "" || slot.PractitionerID == "" {
			t.Fatalf("slot %s has empty practitioner", slot.ID)
		}
		seen[slot.PractitionerID] = true
	}
	// Day 1 can land on a weekend, in which case nothing is seeded.
	if len(seen) != 0 && len(seen) != 6 {
		t.Errorf("got %d practitioners, want 6", len(seen))
	}
}

func TestMarkBooked(t *testing.T) {
	id := uuid.New()
	c := New()
	err := c.Initialize(SeedConfig{Slots: []Slot{{
		ID:        id,
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(90 * time.Minute),
		MotiveID:  "follow_up",
		Available: true,
	}}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if !c.MarkBooked(id) {
		t.Fatal("MarkBooked on existing slot returned false")
	}
	slot, ok := c.Get(id)
	if !ok || slot.Available {
		t.Fatal("slot still available after MarkBooked")
	}

	// Idempotent: a second booking still reports the slot existed, and the
	// flag never reverts.
	if !c.MarkBooked(id) {
		t.Error("repeat MarkBooked returned false")
	}
	if slot, _ := c.Get(id); slot.Available {
		t.Error("availability flag reverted")
	}

	if c.MarkBooked(uuid.New()) {
		t.Error("MarkBooked on unknown slot returned true")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	id := uuid.New()
	c := New()
	if err := c.Initialize(SeedConfig{Slots: []Slot{{ID: id, Available: true}}}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	slot, _ := c.Get(id)
	slot.Available = false

	if fresh, _ := c.Get(id); !fresh.Available {
		t.Error("mutating a returned slot leaked into the catalog")
	}
}

func TestMotiveByID(t *testing.T) {
	if m := MotiveByID("emergency"); m == nil || m.DurationMinutes != 30 {
		t.Errorf("emergency motive lookup: %+v", m)
	}
	if m := MotiveByID("no_such_motive"); m != nil {
		t.Errorf("unknown motive returned %+v", m)
	}
}
