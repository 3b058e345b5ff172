// Package availability is the reservation engine: it answers filtered
// queries over the slot catalog and drives each slot through the
// free -> held -> booked protocol, with holds tracked by the ledger.
package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/availability/internal/catalog"
	"github.com/clinicbook/availability/internal/ledger"
)

// DefaultHoldTTL balances "long enough to finish a spoken confirmation"
// against "short enough to free a contested slot quickly".
const DefaultHoldTTL = 5 * time.Minute

// DefaultSearchWindow is the horizon used when a search gives no end date.
const DefaultSearchWindow = 14 * 24 * time.Hour

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrSlotUnavailable = errors.New("slot is no longer available")
)

type Service struct {
	catalog *catalog.Catalog
	ledger  ledger.Ledger
	logger  zerolog.Logger

	// bookMu serializes the availability re-check with the booking commit,
	// so two bookings of one slot can never both pass the re-check.
	bookMu sync.Mutex

	now func() time.Time
}

func NewService(cat *catalog.Catalog, led ledger.Ledger, logger zerolog.Logger) *Service {
	return &Service{
		catalog: cat,
		ledger:  led,
		logger:  logger,
		now:     time.Now,
	}
}

// SearchParams filters a slot query. Zero Start/End fall back to
// now .. now+DefaultSearchWindow.
type SearchParams struct {
	MotiveID       string
	Start          time.Time
	End            time.Time
	PractitionerID string
	Limit          int
	Offset         int
}

// SearchResult carries one page of matches plus the total match count
// before pagination, so callers can page with offset.
type SearchResult struct {
	Slots    []catalog.Slot
	Total    int
	MotiveID string
}

// Search returns available, unheld slots matching the params, ascending by
// start time with insertion order as the tie-break. An unknown motive
// yields an empty result, not an error.
func (s *Service) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	if _, err := s.ledger.SweepExpired(ctx); err != nil {
		return SearchResult{}, fmt.Errorf("sweep expired holds: %w", err)
	}

	if p.Start.IsZero() {
		p.Start = s.now()
	}
	if p.End.IsZero() {
		p.End = p.Start.Add(DefaultSearchWindow)
	}

	var matches []catalog.Slot
	for _, slot := range s.catalog.Snapshot() {
		if !slot.Available {
			continue
		}
		if slot.MotiveID != p.MotiveID {
			continue
		}
		if slot.StartTime.Before(p.Start) || slot.StartTime.After(p.End) {
			continue
		}
		if p.PractitionerID != "" && slot.PractitionerID != p.PractitionerID {
			continue
		}
		held, err := s.ledger.IsHeld(ctx, slot.ID)
		if err != nil {
			return SearchResult{}, fmt.Errorf("check hold for slot %s: %w", slot.ID, err)
		}
		if held {
			continue
		}
		matches = append(matches, slot)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StartTime.Before(matches[j].StartTime)
	})

	total := len(matches)
	page := paginate(matches, p.Offset, p.Limit)

	return SearchResult{Slots: page, Total: total, MotiveID: p.MotiveID}, nil
}

func paginate(slots []catalog.Slot, offset, limit int) []catalog.Slot {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(slots) {
		return nil
	}
	slots = slots[offset:]
	if limit > 0 && limit < len(slots) {
		slots = slots[:limit]
	}
	return slots
}

// GetSlot returns the slot with its availability recomputed against the
// current hold and booking state.
func (s *Service) GetSlot(ctx context.Context, slotID uuid.UUID) (catalog.Slot, error) {
	slot, ok := s.catalog.Get(slotID)
	if !ok {
		return catalog.Slot{}, ErrSlotNotFound
	}

	if slot.Available {
		held, err := s.ledger.IsHeld(ctx, slotID)
		if err != nil {
			return catalog.Slot{}, fmt.Errorf("check hold: %w", err)
		}
		slot.Available = !held
	}
	return slot, nil
}

// CheckAvailability reports whether the slot exists, is unbooked, and is
// not currently held. Pure read.
func (s *Service) CheckAvailability(ctx context.Context, slotID uuid.UUID) (bool, error) {
	slot, ok := s.catalog.Get(slotID)
	if !ok || !slot.Available {
		return false, nil
	}

	held, err := s.ledger.IsHeld(ctx, slotID)
	if err != nil {
		return false, fmt.Errorf("check hold: %w", err)
	}
	return !held, nil
}

// Reserve places a temporary hold on the slot. Exactly one of N concurrent
// reservations of a free slot succeeds; losers get ledger.ErrAlreadyHeld.
func (s *Service) Reserve(ctx context.Context, slotID uuid.UUID, ttl time.Duration) (time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}

	slot, ok := s.catalog.Get(slotID)
	if !ok {
		return time.Time{}, ErrSlotNotFound
	}
	if !slot.Available {
		return time.Time{}, ErrSlotUnavailable
	}

	expiry, err := s.ledger.Place(ctx, slotID, ttl)
	if err != nil {
		return time.Time{}, err
	}

	s.logger.Debug().
		Stringer("slot_id", slotID).
		Time("expires_at", expiry).
		Msg("slot reserved")

	return expiry, nil
}

// Release drops the hold on a slot, reporting whether one existed. Safe to
// call on unheld or unknown slots.
func (s *Service) Release(ctx context.Context, slotID uuid.UUID) (bool, error) {
	return s.ledger.Remove(ctx, slotID)
}

// BookingDetails are the patient facts carried into the audit record.
// All fields are optional; the slot facts are always recorded.
type BookingDetails struct {
	PatientFirstName string
	PatientLastName  string
	PatientBirthdate string
	MotiveID         string
}

// Book is the terminal transition. It re-verifies the slot is unbooked
// inside the critical section, marks it booked, clears any hold, and emits
// the audit record that is the durable trace of the booking.
//
// An existing hold does not block booking: holder identity is not tracked,
// so a live hold at book time is taken to be the booking caller's own
// reservation being consumed.
func (s *Service) Book(ctx context.Context, slotID uuid.UUID, details BookingDetails) (uuid.UUID, error) {
	s.bookMu.Lock()
	defer s.bookMu.Unlock()

	slot, ok := s.catalog.Get(slotID)
	if !ok {
		return uuid.Nil, ErrSlotNotFound
	}
	if !slot.Available {
		return uuid.Nil, ErrSlotUnavailable
	}

	s.catalog.MarkBooked(slotID)
	if _, err := s.ledger.Remove(ctx, slotID); err != nil {
		// The booking is committed; a dangling hold only delays re-offering
		// a slot that is no longer offered anyway.
		s.logger.Warn().Err(err).Stringer("slot_id", slotID).Msg("clear hold after booking")
	}

	bookingID := uuid.New()
	s.auditBooking(bookingID, slot, details)

	return bookingID, nil
}

func (s *Service) auditBooking(bookingID uuid.UUID, slot catalog.Slot, details BookingDetails) {
	motiveName := "Consultation"
	if m := catalog.MotiveByID(details.MotiveID); m != nil {
		motiveName = m.Name
	}

	evt := s.logger.Info().
		Stringer("booking_id", bookingID).
		Stringer("slot_id", slot.ID).
		Time("slot_start", slot.StartTime).
		Str("practitioner", slot.PractitionerName).
		Str("motive", motiveName).
		Int("duration_min", slot.DurationMinutes())

	if details.PatientFirstName != "" || details.PatientLastName != "" {
		evt = evt.Str("patient", details.PatientFirstName+" "+details.PatientLastName)
	}
	if details.PatientBirthdate != "" {
		evt = evt.Str("birthdate", details.PatientBirthdate)
	}

	evt.Msg("calendar booking")
}
