package state

import (
	"time"

	"parking-cli/api"
)

type Reservation struct {
	ID    string    `json:"id"`
	User  string    `json:"user"`
	Spot  api.Spot  `json:"spot"`
	Date  time.Time `json:"date"`
	Email string    `json:"email"`
}

// ReservationPayload is what a caller knows about a reservation before the
// store completes it with the user id and a timestamp.
type ReservationPayload struct {
	ID    string
	Spot  api.Spot
	Email string
}

type IdentityStore struct {
	id          string
	reservation *Reservation
	now         func() time.Time
}

func NewIdentityStore(now func() time.Time) *IdentityStore {
	if now == nil {
		now = time.Now
	}
	return &IdentityStore{now: now}
}

func (s *IdentityStore) ID() string {
	return s.id
}

func (s *IdentityStore) SetUserID(id string) {
	s.id = id
}

// Reservation returns a copy of the current reservation, or nil.
func (s *IdentityStore) Reservation() *Reservation {
	if s.reservation == nil {
		return nil
	}
	r := *s.reservation
	return &r
}

// SetReservation installs a reservation built from payload, owned by the
// current user and dated now. A nil payload clears the reservation.
func (s *IdentityStore) SetReservation(payload *ReservationPayload) {
	if payload == nil {
		s.reservation = nil
		return
	}
	s.reservation = &Reservation{
		ID:    payload.ID,
		User:  s.id,
		Spot:  payload.Spot,
		Date:  s.now(),
		Email: payload.Email,
	}
}
