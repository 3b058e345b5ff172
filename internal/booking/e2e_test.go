package booking

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/availability/internal/api"
	"github.com/clinicbook/availability/internal/availability"
	"github.com/clinicbook/availability/internal/catalog"
	"github.com/clinicbook/availability/internal/client"
	"github.com/clinicbook/availability/internal/ledger"
)

// The whole consumed interface in one pass: a dialogue agent searching,
// then booking, through a live server.
func TestBookAppointmentEndToEnd(t *testing.T) {
	ctx := context.Background()

	start := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	seed := catalog.Slot{
		ID:               uuid.New(),
		StartTime:        start,
		EndTime:          start.Add(45 * time.Minute),
		PractitionerID:   "dr-dubois",
		PractitionerName: "Dr. Marie Dubois",
		MotiveID:         "first_consultation",
		Available:        true,
	}

	cat := catalog.New()
	if err := cat.Initialize(catalog.SeedConfig{Slots: []catalog.Slot{seed}}); err != nil {
		t.Fatalf("initialize catalog: %v", err)
	}
	engine := availability.NewService(cat, ledger.NewMemory(), zerolog.Nop())

	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Service: engine,
		Logger:  zerolog.Nop(),
		Env:     "test",
		Version: "test",
	}))
	t.Cleanup(srv.Close)

	c := client.New(srv.URL, 5*time.Second)
	svc := NewService(c, zerolog.Nop())

	found, err := c.SearchSlots(ctx, client.SearchOptions{MotiveID: "first_consultation", Limit: 5})
	if err != nil || len(found) != 1 {
		t.Fatalf("search: %d slots, err=%v", len(found), err)
	}

	result := svc.BookAppointment(ctx, found[0], "Anna", "Leroy", "1987-04-12", "first_consultation")
	if !result.Success {
		t.Fatalf("booking failed: %+v", result)
	}
	if result.BookingID == uuid.Nil {
		t.Fatal("booking id is nil")
	}

	// The slot is gone for everyone now.
	found, err = c.SearchSlots(ctx, client.SearchOptions{MotiveID: "first_consultation", Limit: 5})
	if err != nil || len(found) != 0 {
		t.Fatalf("search after booking: %d slots, err=%v", len(found), err)
	}

	retry := svc.BookAppointment(ctx, seedToResponse(seed), "Paul", "Durand", "1990-06-01", "first_consultation")
	if retry.Success || retry.ErrorCode != CodeSlotUnavailable {
		t.Fatalf("second booking: %+v, want SLOT_UNAVAILABLE", retry)
	}
}

func seedToResponse(s catalog.Slot) api.SlotResponse {
	return api.SlotResponse{
		ID:               s.ID,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		PractitionerName: s.PractitionerName,
		PractitionerID:   s.PractitionerID,
		MotiveID:         s.MotiveID,
		IsAvailable:      s.Available,
	}
}
