package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a bookable appointment window for one practitioner and one
// visit motive. Once Available flips to false it never becomes true again.
type Slot struct {
	ID               uuid.UUID
	StartTime        time.Time
	EndTime          time.Time
	PractitionerID   string
	PractitionerName string
	MotiveID         string
	Available        bool
}

func (s Slot) DurationMinutes() int {
	return int(s.EndTime.Sub(s.StartTime).Minutes())
}

// Motive is the clinical reason for a visit. Static reference data; the
// catalog tags and sizes slots with it but never mutates it.
type Motive struct {
	ID              string
	Name            string
	DurationMinutes int
	Description     string
}
