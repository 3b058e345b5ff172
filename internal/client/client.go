// Package client is the HTTP client for the availability service. It is the
// only path through which dialogue agents (or any other collaborator) reach
// the catalog and the reservation ledger.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/availability/internal/api"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client with a pooled transport sized for many concurrent
// dialogue sessions. A zero timeout falls back to 10s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 25,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SearchOptions mirrors the search query parameters. Zero times mean the
// server-side defaults (now .. now+2 weeks).
type SearchOptions struct {
	MotiveID       string
	Start          time.Time
	End            time.Time
	PractitionerID string
	Limit          int
	Offset         int
}

// SearchSlots fetches one page of available slots for a motive.
func (c *Client) SearchSlots(ctx context.Context, opts SearchOptions) ([]api.SlotResponse, error) {
	params := url.Values{}
	params.Set("motive_id", opts.MotiveID)
	if !opts.Start.IsZero() {
		params.Set("start_date", opts.Start.Format(time.RFC3339))
	}
	if !opts.End.IsZero() {
		params.Set("end_date", opts.End.Format(time.RFC3339))
	}
	if opts.PractitionerID != "" {
		params.Set("practitioner_id", opts.PractitionerID)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var resp api.AvailabilityResponse
	status, err := c.doJSON(ctx, http.MethodGet, "/api/v1/availabilities?"+params.Encode(), nil, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search availabilities: unexpected status %d", status)
	}
	return resp.Slots, nil
}

// GetSlot fetches a slot with its availability recomputed live. The second
// return is false when the slot does not exist.
func (c *Client) GetSlot(ctx context.Context, slotID uuid.UUID) (api.SlotResponse, bool, error) {
	var resp api.SlotResponse
	status, err := c.doJSON(ctx, http.MethodGet, "/api/v1/availabilities/"+slotID.String(), nil, &resp)
	if err != nil {
		return api.SlotResponse{}, false, err
	}
	switch status {
	case http.StatusOK:
		return resp, true, nil
	case http.StatusNotFound:
		return api.SlotResponse{}, false, nil
	default:
		return api.SlotResponse{}, false, fmt.Errorf("get slot: unexpected status %d", status)
	}
}

// CheckSlotAvailability reports whether the slot can still be reserved or
// booked. Unknown slots are simply not available.
func (c *Client) CheckSlotAvailability(ctx context.Context, slotID uuid.UUID) (bool, error) {
	slot, found, err := c.GetSlot(ctx, slotID)
	if err != nil || !found {
		return false, err
	}
	return slot.IsAvailable, nil
}

// ReserveSlot places a temporary hold. Returns false without error when the
// slot is already held or unavailable.
func (c *Client) ReserveSlot(ctx context.Context, slotID uuid.UUID, holdSeconds int) (bool, error) {
	body := api.ReservationRequest{ReservationDurationSeconds: holdSeconds}

	var resp api.ReservationResponse
	status, err := c.doJSON(ctx, http.MethodPost,
		"/api/v1/availabilities/"+slotID.String()+"/reserve", body, &resp)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusConflict, http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("reserve slot: unexpected status %d", status)
	}
}

// ReleaseSlot drops a hold. False means there was nothing to release.
func (c *Client) ReleaseSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	var resp api.ReleaseResponse
	status, err := c.doJSON(ctx, http.MethodPost,
		"/api/v1/availabilities/"+slotID.String()+"/release", nil, &resp)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("release slot: unexpected status %d", status)
	}
	return resp.Success, nil
}

// BookSlot finalizes a booking, carrying the patient facts for the audit
// record. Returns false without error when the slot was taken in the
// meantime or never existed.
func (c *Client) BookSlot(ctx context.Context, slotID uuid.UUID, req api.BookRequest) (uuid.UUID, bool, error) {
	var resp api.BookResponse
	status, err := c.doJSON(ctx, http.MethodPost,
		"/api/v1/availabilities/"+slotID.String()+"/book", req, &resp)
	if err != nil {
		return uuid.Nil, false, err
	}
	switch status {
	case http.StatusOK:
		return resp.BookingID, true, nil
	case http.StatusConflict, http.StatusNotFound:
		return uuid.Nil, false, nil
	default:
		return uuid.Nil, false, fmt.Errorf("book slot: unexpected status %d", status)
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) (int, error) {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
