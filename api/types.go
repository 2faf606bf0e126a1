package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Spot is one physical parking space as served by GET /parking.
type Spot struct {
	ID       string `json:"_id,omitempty"`
	Number   string `json:"number"`
	Floor    int    `json:"floor"`
	Occupied bool   `json:"occupied"`
}

// Key is the identifier used in /parking/{id} and in reservation bodies.
func (s Spot) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Number
}

// UnmarshalJSON accepts spot numbers sent either as strings or as JSON numbers.
func (s *Spot) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"_id"`
		Number   json.RawMessage `json:"number"`
		Floor    int             `json:"floor"`
		Occupied bool            `json:"occupied"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	number, err := decodeNumber(raw.Number)
	if err != nil {
		return err
	}
	*s = Spot{ID: raw.ID, Number: number, Floor: raw.Floor, Occupied: raw.Occupied}
	return nil
}

func decodeNumber(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return "", err
		}
		return str, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", fmt.Errorf("invalid spot number %s", string(raw))
	}
	return num.String(), nil
}

// ReservationRecord is a reservation as stored by the API.
type ReservationRecord struct {
	ID    string `json:"id"`
	User  string `json:"user"`
	Spot  Spot   `json:"spot"`
	Date  string `json:"date"`
	Email string `json:"email"`
}

func (r *ReservationRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string          `json:"id"`
		MongoID string          `json:"_id"`
		User    string          `json:"user"`
		Spot    json.RawMessage `json:"spot"`
		Date    string          `json:"date"`
		Email   string          `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	record := ReservationRecord{ID: raw.ID, User: raw.User, Date: raw.Date, Email: raw.Email}
	if record.ID == "" {
		record.ID = raw.MongoID
	}
	spot, err := decodeReservationSpot(raw.Spot)
	if err != nil {
		return err
	}
	record.Spot = spot
	*r = record
	return nil
}

// decodeReservationSpot handles a populated spot object or a bare identifier.
func decodeReservationSpot(raw json.RawMessage) (Spot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return Spot{}, nil
	}
	if raw[0] == '{' {
		var spot Spot
		err := json.Unmarshal(raw, &spot)
		return spot, err
	}
	id, err := decodeNumber(raw)
	if err != nil {
		return Spot{}, err
	}
	return Spot{ID: id, Number: id}, nil
}

// ReservationRequest is the POST /reservations body.
type ReservationRequest struct {
	User  string `json:"user"`
	Spot  string `json:"spot"`
	Date  string `json:"date"`
	Email string `json:"email"`
}

type createReservationResponse struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
}

func (r createReservationResponse) id() string {
	if strings.TrimSpace(r.ID) != "" {
		return r.ID
	}
	return r.MongoID
}

type spotStateRequest struct {
	Occupied bool `json:"occupied"`
}
