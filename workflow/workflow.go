// Package workflow drives the book/cancel confirmation flow against the
// remote API and keeps the local stores in step with it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"parking-cli/api"
	"parking-cli/state"
	"parking-cli/storage"
)

var (
	ErrNothingToConfirm = errors.New("no booking or cancellation is awaiting confirmation")
	ErrDialogOpen       = errors.New("another confirmation is already pending")
	ErrAlreadyReserved  = errors.New("user already holds a reservation")
	ErrSpotOccupied     = errors.New("spot is not free")
	ErrNotReservedSpot  = errors.New("spot is not reserved by this user")
	ErrInvalidEmail     = errors.New("a valid email address is required")
)

type Phase int

const (
	Idle Phase = iota
	ConfirmingBooking
	ConfirmingCancellation
)

func (p Phase) String() string {
	switch p {
	case ConfirmingBooking:
		return "confirming-booking"
	case ConfirmingCancellation:
		return "confirming-cancellation"
	}
	return "idle"
}

// Remote is the part of the API client the workflow writes through.
type Remote interface {
	UpdateSpotState(ctx context.Context, spot api.Spot) error
	CreateReservation(ctx context.Context, userID, spotID, email string) (string, error)
	DeleteReservation(ctx context.Context, reservationID string) error
}

type HistoryRecorder interface {
	Record(entry storage.HistoryEntry) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type Workflow struct {
	state    *state.State
	remote   Remote
	history  HistoryRecorder
	log      Logger
	validate *validator.Validate
	now      func() time.Time

	phase  Phase
	target api.Spot
}

// New builds an idle workflow. history may be nil.
func New(st *state.State, remote Remote, history HistoryRecorder, log Logger) *Workflow {
	return &Workflow{
		state:    st,
		remote:   remote,
		history:  history,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (w *Workflow) Phase() Phase {
	return w.phase
}

// Target is the spot awaiting confirmation.
func (w *Workflow) Target() (api.Spot, bool) {
	if w.phase == Idle {
		return api.Spot{}, false
	}
	return w.target, true
}

// RequestBooking opens the booking confirmation for a free spot. Only offered
// while the user holds no reservation.
func (w *Workflow) RequestBooking(spot api.Spot) error {
	if w.phase != Idle {
		return ErrDialogOpen
	}
	if w.state.User.Reservation() != nil {
		return ErrAlreadyReserved
	}
	if spot.Occupied {
		return fmt.Errorf("%w: %s", ErrSpotOccupied, spot.Number)
	}
	w.phase = ConfirmingBooking
	w.target = spot
	return nil
}

// RequestCancellation opens the cancellation confirmation for the user's own spot.
func (w *Workflow) RequestCancellation(spot api.Spot) error {
	if w.phase != Idle {
		return ErrDialogOpen
	}
	reservation := w.state.User.Reservation()
	if reservation == nil || (reservation.Spot.Number != spot.Number && reservation.Spot.Key() != spot.Key()) {
		return fmt.Errorf("%w: %s", ErrNotReservedSpot, spot.Number)
	}
	w.phase = ConfirmingCancellation
	w.target = spot
	return nil
}

func (w *Workflow) Dismiss() {
	w.phase = Idle
	w.target = api.Spot{}
}

// Confirm runs the pending action. email is only read for bookings; an
// invalid address keeps the confirmation open. Otherwise the workflow is
// back to Idle before any remote call is made, and the sequence stops at
// the first failure without undoing earlier steps.
func (w *Workflow) Confirm(ctx context.Context, email string) error {
	phase, spot := w.phase, w.target
	switch phase {
	case Idle:
		return ErrNothingToConfirm
	case ConfirmingBooking:
		email = strings.TrimSpace(email)
		if err := w.validate.Var(email, "required,email"); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
	}
	w.Dismiss()

	if err := w.remote.UpdateSpotState(ctx, spot); err != nil {
		w.log.Error("Failed to toggle spot %s: %v", spot.Number, err)
		return fmt.Errorf("toggle spot %s: %w", spot.Number, err)
	}
	w.state.Parking.ChangeSpotState(spot)

	if phase == ConfirmingCancellation {
		return w.cancel(ctx, spot)
	}
	return w.book(ctx, spot, email)
}

func (w *Workflow) cancel(ctx context.Context, spot api.Spot) error {
	reservation := w.state.User.Reservation()
	reservationID := ""
	email := ""
	if reservation != nil {
		reservationID = reservation.ID
		email = reservation.Email
	}

	if err := w.remote.DeleteReservation(ctx, reservationID); err != nil {
		w.log.Error("Failed to delete reservation %s: %v", reservationID, err)
		return fmt.Errorf("delete reservation %s: %w", reservationID, err)
	}
	w.state.User.SetReservation(nil)
	w.log.Info("Reservation %s on spot %s cancelled", reservationID, spot.Number)

	w.record(storage.ActionCancelled, reservationID, spot, email)
	return nil
}

func (w *Workflow) book(ctx context.Context, spot api.Spot, email string) error {
	userID := w.state.User.ID()
	reservationID, err := w.remote.CreateReservation(ctx, userID, spot.Key(), email)
	if err != nil {
		w.log.Error("Failed to create reservation on spot %s: %v", spot.Number, err)
		return fmt.Errorf("create reservation on %s: %w", spot.Number, err)
	}

	booked := spot
	booked.Occupied = !spot.Occupied
	w.state.User.SetReservation(&state.ReservationPayload{
		ID:    reservationID,
		Spot:  booked,
		Email: email,
	})
	w.log.Info("Reservation %s created on spot %s for user %s", reservationID, spot.Number, userID)

	w.record(storage.ActionBooked, reservationID, spot, email)
	return nil
}

func (w *Workflow) record(action, reservationID string, spot api.Spot, email string) {
	if w.history == nil {
		return
	}
	entry := storage.HistoryEntry{
		ReservationID: reservationID,
		UserID:        w.state.User.ID(),
		SpotNumber:    spot.Number,
		Floor:         spot.Floor,
		Email:         email,
		Action:        action,
		At:            w.now().UTC().Format(time.RFC3339),
	}
	if err := w.history.Record(entry); err != nil {
		w.log.Warn("Failed to record %s history for reservation %s: %v", action, reservationID, err)
	}
}
