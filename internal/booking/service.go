// Package booking is the collaborator-facing booking pipeline: the dialogue
// agent hands it a chosen slot and the patient's details, and it drives
// check -> reserve -> book against the availability service. Every outcome,
// including losing a race, is a BookingResult the agent can read to the
// patient; nothing here returns an error across the boundary.
package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/availability/internal/api"
)

const (
	CodeSlotUnavailable     = "SLOT_UNAVAILABLE"
	CodeReservationConflict = "RESERVATION_CONFLICT"
	CodeBookingError        = "BOOKING_ERROR"
)

const holdSeconds = 300

// BookingResult is the outcome of a booking attempt. It is a value object:
// the audit record emitted by the availability service is the durable trace,
// not this.
type BookingResult struct {
	Success   bool
	BookingID uuid.UUID
	Message   string
	ErrorCode string
}

// SlotAPI is what the pipeline needs from the availability service,
// satisfied by *client.Client.
type SlotAPI interface {
	CheckSlotAvailability(ctx context.Context, slotID uuid.UUID) (bool, error)
	ReserveSlot(ctx context.Context, slotID uuid.UUID, holdSeconds int) (bool, error)
	ReleaseSlot(ctx context.Context, slotID uuid.UUID) (bool, error)
	BookSlot(ctx context.Context, slotID uuid.UUID, req api.BookRequest) (uuid.UUID, bool, error)
}

type Service struct {
	slots  SlotAPI
	logger zerolog.Logger
}

func NewService(slots SlotAPI, logger zerolog.Logger) *Service {
	return &Service{slots: slots, logger: logger}
}

// BookAppointment verifies the slot is still free, holds it, and finalizes
// the booking with the patient facts. The patient may have picked this slot
// minutes ago, so every step re-checks against the live state.
func (s *Service) BookAppointment(
	ctx context.Context,
	slot api.SlotResponse,
	patientFirstName, patientLastName, patientBirthdate, motiveID string,
) BookingResult {
	available, err := s.slots.CheckSlotAvailability(ctx, slot.ID)
	if err != nil {
		return s.bookingError(slot.ID, err)
	}
	if !available {
		return BookingResult{
			Success:   false,
			Message:   "Ce créneau n'est plus disponible. Voulez-vous choisir un autre horaire ?",
			ErrorCode: CodeSlotUnavailable,
		}
	}

	reserved, err := s.slots.ReserveSlot(ctx, slot.ID, holdSeconds)
	if err != nil {
		return s.bookingError(slot.ID, err)
	}
	if !reserved {
		return BookingResult{
			Success:   false,
			Message:   "Ce créneau vient d'être réservé. Voulez-vous choisir un autre horaire ?",
			ErrorCode: CodeReservationConflict,
		}
	}

	bookingID, booked, err := s.slots.BookSlot(ctx, slot.ID, api.BookRequest{
		PatientFirstName: patientFirstName,
		PatientLastName:  patientLastName,
		PatientBirthdate: patientBirthdate,
		MotiveID:         motiveID,
	})
	if err != nil {
		s.releaseQuietly(ctx, slot.ID)
		return s.bookingError(slot.ID, err)
	}
	if !booked {
		// Someone booked the slot without a hold between our reserve and
		// book. Drop our hold so the slot is not blocked until expiry.
		s.releaseQuietly(ctx, slot.ID)
		return BookingResult{
			Success:   false,
			Message:   "Ce créneau n'est plus disponible. Voulez-vous choisir un autre horaire ?",
			ErrorCode: CodeSlotUnavailable,
		}
	}

	s.logger.Info().
		Stringer("booking_id", bookingID).
		Stringer("slot_id", slot.ID).
		Str("practitioner", slot.PractitionerName).
		Msg("appointment booked")

	return BookingResult{
		Success:   true,
		BookingID: bookingID,
		Message: "Rendez-vous confirmé pour " + FrenchTime(slot.StartTime) +
			" avec " + slot.PractitionerName + ".",
	}
}

func (s *Service) bookingError(slotID uuid.UUID, err error) BookingResult {
	s.logger.Error().Err(err).Stringer("slot_id", slotID).Msg("booking failed")
	return BookingResult{
		Success:   false,
		Message:   "Une erreur est survenue. Veuillez réessayer.",
		ErrorCode: CodeBookingError,
	}
}

func (s *Service) releaseQuietly(ctx context.Context, slotID uuid.UUID) {
	if _, err := s.slots.ReleaseSlot(ctx, slotID); err != nil {
		s.logger.Warn().Err(err).Stringer("slot_id", slotID).Msg("release hold after failed booking")
	}
}
