package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicbook/availability/internal/availability"
	"github.com/clinicbook/availability/internal/catalog"
	"github.com/clinicbook/availability/internal/ledger"
)

const (
	defaultLimit = 5
	maxLimit     = 20

	minHoldSeconds     = 60
	maxHoldSeconds     = 900
	defaultHoldSeconds = 300
)

func listMotivesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		motives := make([]MotiveResponse, 0, len(catalog.DefaultMotives))
		for _, m := range catalog.DefaultMotives {
			motives = append(motives, MotiveResponse{
				ID:              m.ID,
				Name:            m.Name,
				DurationMinutes: m.DurationMinutes,
				Description:     m.Description,
			})
		}
		writeJSON(w, http.StatusOK, MotivesResponse{Motives: motives})
	}
}

func searchAvailabilitiesHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		motiveID := q.Get("motive_id")
		if motiveID == "" {
			writeError(w, http.StatusBadRequest, "missing_motive_id", "motive_id is required")
			return
		}

		start, err := parseTimeParam(q.Get("start_date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date", "start_date must be RFC 3339")
			return
		}
		end, err := parseTimeParam(q.Get("end_date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_date", "end_date must be RFC 3339")
			return
		}

		limit, err := parseIntParam(q.Get("limit"), defaultLimit)
		if err != nil || limit < 1 || limit > maxLimit {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 20")
			return
		}
		offset, err := parseIntParam(q.Get("offset"), 0)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "invalid_offset", "offset must be >= 0")
			return
		}

		result, err := svc.Search(r.Context(), availability.SearchParams{
			MotiveID:       motiveID,
			Start:          start,
			End:            end,
			PractitionerID: q.Get("practitioner_id"),
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		slots := make([]SlotResponse, 0, len(result.Slots))
		for _, s := range result.Slots {
			slots = append(slots, newSlotResponse(s))
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			Slots:    slots,
			Total:    result.Total,
			MotiveID: result.MotiveID,
		})
	}
}

func getSlotHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, ok := slotIDParam(w, r)
		if !ok {
			return
		}

		slot, err := svc.GetSlot(r.Context(), slotID)
		if err != nil {
			handleSlotError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newSlotResponse(slot))
	}
}

func reserveSlotHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, ok := slotIDParam(w, r)
		if !ok {
			return
		}

		seconds := defaultHoldSeconds
		var req ReservationRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.ReservationDurationSeconds != 0 {
			seconds = req.ReservationDurationSeconds
		}
		if seconds < minHoldSeconds || seconds > maxHoldSeconds {
			writeError(w, http.StatusBadRequest, "invalid_duration",
				"reservation_duration_seconds must be between 60 and 900")
			return
		}

		expiry, err := svc.Reserve(r.Context(), slotID, time.Duration(seconds)*time.Second)
		if err != nil {
			handleSlotError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ReservationResponse{
			Success:   true,
			SlotID:    slotID,
			ExpiresAt: expiry,
		})
	}
}

func releaseSlotHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, ok := slotIDParam(w, r)
		if !ok {
			return
		}

		released, err := svc.Release(r.Context(), slotID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		// success=false just means there was nothing to release.
		writeJSON(w, http.StatusOK, ReleaseResponse{Success: released, SlotID: slotID})
	}
}

func bookSlotHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, ok := slotIDParam(w, r)
		if !ok {
			return
		}

		var req BookRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		bookingID, err := svc.Book(r.Context(), slotID, availability.BookingDetails{
			PatientFirstName: req.PatientFirstName,
			PatientLastName:  req.PatientLastName,
			PatientBirthdate: req.PatientBirthdate,
			MotiveID:         req.MotiveID,
		})
		if err != nil {
			handleSlotError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BookResponse{
			Success:   true,
			SlotID:    slotID,
			BookingID: bookingID,
		})
	}
}

func handleSlotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", "slot not found")
	case errors.Is(err, availability.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "slot is no longer available")
	case errors.Is(err, ledger.ErrAlreadyHeld):
		writeError(w, http.StatusConflict, "reservation_conflict", "slot is already reserved")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func slotIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "slotID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_slot_id", "slot id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody parses an optional JSON body; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseIntParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
