package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/availability/internal/catalog"
)

type SlotResponse struct {
	ID               uuid.UUID `json:"id"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	PractitionerName string    `json:"practitioner_name"`
	PractitionerID   string    `json:"practitioner_id"`
	MotiveID         string    `json:"motive_id"`
	IsAvailable      bool      `json:"is_available"`
}

func newSlotResponse(s catalog.Slot) SlotResponse {
	return SlotResponse{
		ID:               s.ID,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		PractitionerName: s.PractitionerName,
		PractitionerID:   s.PractitionerID,
		MotiveID:         s.MotiveID,
		IsAvailable:      s.Available,
	}
}

type AvailabilityResponse struct {
	Slots    []SlotResponse `json:"slots"`
	Total    int            `json:"total"`
	MotiveID string         `json:"motive_id"`
}

type MotiveResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description"`
}

type MotivesResponse struct {
	Motives []MotiveResponse `json:"motives"`
}

type ReservationRequest struct {
	ReservationDurationSeconds int `json:"reservation_duration_seconds"`
}

type ReservationResponse struct {
	Success   bool      `json:"success"`
	SlotID    uuid.UUID `json:"slot_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ReleaseResponse struct {
	Success bool      `json:"success"`
	SlotID  uuid.UUID `json:"slot_id"`
}

type BookRequest struct {
	PatientFirstName string `json:"patient_first_name,omitempty"`
	PatientLastName  string `json:"patient_last_name,omitempty"`
	PatientBirthdate string `json:"patient_birthdate,omitempty"`
	MotiveID         string `json:"motive_id,omitempty"`
}

type BookResponse struct {
	Success   bool      `json:"success"`
	SlotID    uuid.UUID `json:"slot_id"`
	BookingID uuid.UUID `json:"booking_id"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
	Env       string `json:"env,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
