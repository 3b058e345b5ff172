package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// testClock is a manually advanced clock shared with the ledger under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestPlaceConflict(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	slotID := uuid.New()

	expiry, err := m.Place(ctx, slotID, time.Minute)
	if err != nil {
		t.Fatalf("first place: %v", err)
	}
	if !expiry.After(time.Now()) {
		t.Errorf("expiry %s not in the future", expiry)
	}

	if _, err := m.Place(ctx, slotID, time.Minute); err != ErrAlreadyHeld {
		t.Fatalf("second place: got %v, want ErrAlreadyHeld", err)
	}

	// A different slot is unaffected.
	if _, err := m.Place(ctx, uuid.New(), time.Minute); err != nil {
		t.Errorf("place on other slot: %v", err)
	}
}

func TestExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	m := NewMemoryWithClock(clock.Now)
	slotID := uuid.New()

	if _, err := m.Place(ctx, slotID, 60*time.Second); err != nil {
		t.Fatalf("place: %v", err)
	}

	clock.Advance(59 * time.Second)
	if held, _ := m.IsHeld(ctx, slotID); !held {
		t.Fatal("hold gone before expiry")
	}
	if _, err := m.Place(ctx, slotID, time.Minute); err != ErrAlreadyHeld {
		t.Fatalf("place before expiry: got %v, want ErrAlreadyHeld", err)
	}

	// At the expiry instant the hold is logically gone, even though it is
	// still in the map until this read sweeps it.
	clock.Advance(time.Second)
	if held, _ := m.IsHeld(ctx, slotID); held {
		t.Fatal("hold still live at expiry instant")
	}
	if _, err := m.Place(ctx, slotID, time.Minute); err != nil {
		t.Fatalf("place after expiry: %v", err)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	slotID := uuid.New()

	if removed, _ := m.Remove(ctx, slotID); removed {
		t.Error("remove of absent hold reported true")
	}

	if _, err := m.Place(ctx, slotID, time.Minute); err != nil {
		t.Fatalf("place: %v", err)
	}
	if removed, _ := m.Remove(ctx, slotID); !removed {
		t.Error("remove of live hold reported false")
	}
	if removed, _ := m.Remove(ctx, slotID); removed {
		t.Error("second remove reported true")
	}
	if held, _ := m.IsHeld(ctx, slotID); held {
		t.Error("hold survives removal")
	}
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	m := NewMemoryWithClock(clock.Now)

	live := uuid.New()
	if _, err := m.Place(ctx, live, time.Hour); err != nil {
		t.Fatalf("place live: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := m.Place(ctx, uuid.New(), time.Minute); err != nil {
			t.Fatalf("place short: %v", err)
		}
	}

	clock.Advance(2 * time.Minute)

	swept, err := m.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 3 {
		t.Errorf("swept %d holds, want 3", swept)
	}
	if held, _ := m.IsHeld(ctx, live); !held {
		t.Error("sweep removed a live hold")
	}

	// Sweeping again is a no-op.
	if swept, _ := m.SweepExpired(ctx); swept != 0 {
		t.Errorf("second sweep removed %d holds", swept)
	}
}

func TestConcurrentPlaceExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	slotID := uuid.New()

	const callers = 64

	var (
		wg        sync.WaitGroup
		successes int64
		conflicts int64
		mu        sync.Mutex
	)

	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := m.Place(ctx, slotID, time.Minute)
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				successes++
			case ErrAlreadyHeld:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if successes != 1 {
		t.Errorf("%d concurrent places succeeded, want exactly 1", successes)
	}
	if conflicts != callers-1 {
		t.Errorf("%d conflicts, want %d", conflicts, callers-1)
	}
}
