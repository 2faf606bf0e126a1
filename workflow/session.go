package workflow

import (
	"context"

	"github.com/google/uuid"

	"parking-cli/api"
	"parking-cli/state"
)

type SessionRemote interface {
	ListSpots(ctx context.Context) ([]api.Spot, error)
	GetReservationByUser(ctx context.Context, userID string) (*api.ReservationRecord, error)
}

// IdentitySlot persists the anonymous user id across runs.
type IdentitySlot interface {
	UserID() (string, error)
	SetUserID(id string) error
}

// LoadSession restores the user and the spot list. A first run generates and
// stores a new id and skips the reservation lookup. Spots are loaded before
// the reservation so its spot can be matched to the stored one. Remote
// failures are logged and leave the affected store empty; only local storage
// errors are returned.
func LoadSession(ctx context.Context, st *state.State, remote SessionRemote, slot IdentitySlot, log Logger) error {
	userID, err := slot.UserID()
	if err != nil {
		return err
	}

	if userID == "" {
		userID = uuid.NewString()
		if err := slot.SetUserID(userID); err != nil {
			return err
		}
		st.User.SetUserID(userID)
		log.Info("Generated new user id %s", userID)
		RefreshSpots(ctx, st, remote, log)
		return nil
	}

	st.User.SetUserID(userID)
	RefreshSpots(ctx, st, remote, log)
	RestoreReservation(ctx, st, remote, log)
	return nil
}

// RestoreReservation installs the user's existing reservation, if any. The
// API may send the spot as a bare id; it is replaced by the stored spot with
// that key. A spot missing from the store is taken as occupied, since it is
// reserved.
func RestoreReservation(ctx context.Context, st *state.State, remote SessionRemote, log Logger) {
	record, err := remote.GetReservationByUser(ctx, st.User.ID())
	if err != nil {
		log.Warn("Could not look up reservation for user %s: %v", st.User.ID(), err)
		return
	}
	if record == nil {
		return
	}
	spot, ok := st.Parking.Resolve(record.Spot)
	if !ok {
		spot = record.Spot
		spot.Occupied = true
	}
	st.User.SetReservation(&state.ReservationPayload{
		ID:    record.ID,
		Spot:  spot,
		Email: record.Email,
	})
}

// RefreshSpots replaces the spot list with the server's.
func RefreshSpots(ctx context.Context, st *state.State, remote SessionRemote, log Logger) {
	spots, err := remote.ListSpots(ctx)
	if err != nil {
		log.Warn("Could not fetch parking spots: %v", err)
		return
	}
	st.Parking.SetParkingSpots(spots)
}

// ResetIdentity stores a fresh user id in slot. The next session starts
// without the previous id's reservation.
func ResetIdentity(slot IdentitySlot) (string, error) {
	userID := uuid.NewString()
	if err := slot.SetUserID(userID); err != nil {
		return "", err
	}
	return userID, nil
}
