// Package ledger tracks temporary, expiring holds on slots. A hold blocks
// other holds on the same slot until it is released, consumed by a booking,
// or passes its expiry. Expired holds are swept lazily: every operation that
// depends on hold state sweeps first, nothing runs on a timer.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAlreadyHeld = errors.New("slot already has a live hold")

// Ledger is the hold store. Place is the one operation that must be atomic:
// under concurrent calls for the same slot exactly one succeeds and the rest
// get ErrAlreadyHeld. Both backends implement it as a conditional write with
// no check-then-write window.
type Ledger interface {
	// Place creates a hold expiring ttl from now and returns the expiry.
	// Fails with ErrAlreadyHeld when a live hold exists for the slot.
	Place(ctx context.Context, slotID uuid.UUID, ttl time.Duration) (time.Time, error)

	// Remove deletes the hold if present and reports whether one was removed.
	// Removing an absent hold is not an error.
	Remove(ctx context.Context, slotID uuid.UUID) (bool, error)

	// IsHeld reports whether a live hold exists for the slot, sweeping first.
	IsHeld(ctx context.Context, slotID uuid.UUID) (bool, error)

	// SweepExpired drops every hold whose expiry is at or before now and
	// returns how many were dropped.
	SweepExpired(ctx context.Context) (int, error)
}
