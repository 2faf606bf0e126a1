package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// isoMillis matches the date format the reservation API stores.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// GetReservationByUser returns the user's reservation, or nil when there is none.
// A 404, an empty body, null and an empty array all mean "no reservation".
func (c *Client) GetReservationByUser(ctx context.Context, userID string) (*ReservationRecord, error) {
	q := url.Values{}
	q.Set("user", userID)

	req, err := c.newRequest(ctx, http.MethodGet, "/reservations", q, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do("get_reservation", req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeReservationLookup(body)
}

func decodeReservationLookup(body []byte) (*ReservationRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	if body[0] == '[' {
		var records []ReservationRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("decode get_reservation response: %w", err)
		}
		if len(records) == 0 {
			return nil, nil
		}
		return &records[0], nil
	}

	var record ReservationRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("decode get_reservation response: %w", err)
	}
	if record.ID == "" {
		return nil, nil
	}
	return &record, nil
}

// CreateReservation posts a reservation stamped with the current time and
// returns the server-assigned id.
func (c *Client) CreateReservation(ctx context.Context, userID, spotID, email string) (string, error) {
	payload := ReservationRequest{
		User:  userID,
		Spot:  spotID,
		Date:  c.now().UTC().Format(isoMillis),
		Email: email,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/reservations", nil, payload)
	if err != nil {
		return "", err
	}

	var resp createReservationResponse
	if err := c.doJSON("create_reservation", req, &resp); err != nil {
		return "", err
	}
	id := resp.id()
	if id == "" {
		return "", fmt.Errorf("%w: reservation response missing id", ErrUnexpectedStatus)
	}
	return id, nil
}

func (c *Client) DeleteReservation(ctx context.Context, reservationID string) error {
	if strings.TrimSpace(reservationID) == "" {
		return fmt.Errorf("%w: empty reservation id", ErrRequest)
	}
	path := "/reservations/" + url.PathEscape(reservationID)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus("delete_reservation", req)
}
