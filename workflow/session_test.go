package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-cli/api"
	"parking-cli/logger"
	"parking-cli/state"
)

type memorySlot struct {
	id      string
	loadErr error
	saves   int
}

func (m *memorySlot) UserID() (string, error) { return m.id, m.loadErr }

func (m *memorySlot) SetUserID(id string) error {
	m.id = id
	m.saves++
	return nil
}

type stubRemote struct {
	spots          []api.Spot
	spotsErr       error
	reservation    *api.ReservationRecord
	reservationErr error
	lookups        []string
}

func (s *stubRemote) ListSpots(context.Context) ([]api.Spot, error) {
	return s.spots, s.spotsErr
}

func (s *stubRemote) GetReservationByUser(_ context.Context, userID string) (*api.ReservationRecord, error) {
	s.lookups = append(s.lookups, userID)
	return s.reservation, s.reservationErr
}

func TestLoadSessionFirstRun(t *testing.T) {
	slot := &memorySlot{}
	remote := &stubRemote{spots: []api.Spot{{Number: "A12", Floor: 1}, {Number: "B3", Floor: 2}}}
	st := state.New()

	require.NoError(t, LoadSession(context.Background(), st, remote, slot, logger.Discard()))

	_, err := uuid.Parse(st.User.ID())
	require.NoError(t, err)
	assert.Equal(t, slot.id, st.User.ID())
	assert.Equal(t, 1, slot.saves)
	assert.Empty(t, remote.lookups, "no reservation lookup on first run")
	assert.Equal(t, []int{1, 2}, st.Parking.Floors())
}

func TestLoadSessionReturningUser(t *testing.T) {
	slot := &memorySlot{id: "u1"}
	remote := &stubRemote{
		spots: []api.Spot{{Number: "B3", Floor: 2, Occupied: true}},
		reservation: &api.ReservationRecord{
			ID: "r1", User: "u1", Email: "a@b.com",
			Spot: api.Spot{Number: "B3", Floor: 2, Occupied: true},
		},
	}
	st := state.New()

	require.NoError(t, LoadSession(context.Background(), st, remote, slot, logger.Discard()))

	assert.Equal(t, "u1", st.User.ID())
	assert.Equal(t, 0, slot.saves)
	assert.Equal(t, []string{"u1"}, remote.lookups)
	reservation := st.User.Reservation()
	require.NotNil(t, reservation)
	assert.Equal(t, "r1", reservation.ID)
	assert.Equal(t, "u1", reservation.User)
	assert.Equal(t, "B3", reservation.Spot.Number)
}

func TestRestoredReservationWithBareSpotIDCancels(t *testing.T) {
	var patches []map[string]any
	var deletes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/parking":
			_, _ = io.WriteString(w, `[{"_id":"s1","number":"A12","floor":1,"occupied":true},{"_id":"s2","number":"B3","floor":2,"occupied":false}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/reservations":
			_, _ = io.WriteString(w, `{"_id":"r1","user":"u1","spot":"s1","date":"2024-03-07T09:30:00.000Z","email":"a@b.com"}`)
		case r.Method == http.MethodPatch:
			var body map[string]any
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &body)
			assert.Equal(t, "/parking/s1", r.URL.Path)
			patches = append(patches, body)
		case r.Method == http.MethodDelete:
			deletes = append(deletes, r.URL.Path)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, time.Second, nil, nil)
	st := state.New()
	require.NoError(t, LoadSession(context.Background(), st, client, &memorySlot{id: "u1"}, logger.Discard()))

	reservation := st.User.Reservation()
	require.NotNil(t, reservation)
	assert.Equal(t, "A12", reservation.Spot.Number)
	assert.Equal(t, "s1", reservation.Spot.ID)
	assert.True(t, reservation.Spot.Occupied)

	stored, ok := st.Parking.Spot("A12")
	require.True(t, ok)
	assert.Equal(t, state.StatusReserved, state.StatusOf(stored, reservation))

	spot, ok := st.Parking.Resolve(reservation.Spot)
	require.True(t, ok)
	wf := New(st, client, nil, logger.Discard())
	require.NoError(t, wf.RequestCancellation(spot))
	require.NoError(t, wf.Confirm(context.Background(), ""))

	assert.Equal(t, []map[string]any{{"occupied": false}}, patches)
	assert.Equal(t, []string{"/reservations/r1"}, deletes)
	assert.Nil(t, st.User.Reservation())
	stored, _ = st.Parking.Spot("A12")
	assert.False(t, stored.Occupied)
}

func TestRestoredReservationUnknownSpotIsOccupied(t *testing.T) {
	remote := &stubRemote{
		reservation: &api.ReservationRecord{ID: "r1", Spot: api.Spot{ID: "s9", Number: "s9"}},
	}
	st := state.New()

	require.NoError(t, LoadSession(context.Background(), st, remote, &memorySlot{id: "u1"}, logger.Discard()))
	reservation := st.User.Reservation()
	require.NotNil(t, reservation)
	assert.True(t, reservation.Spot.Occupied)
}

func TestLoadSessionRemoteFailuresAreLogged(t *testing.T) {
	slot := &memorySlot{id: "u1"}
	remote := &stubRemote{
		spotsErr:       api.ErrRequest,
		reservationErr: api.ErrRequest,
	}
	st := state.New()

	require.NoError(t, LoadSession(context.Background(), st, remote, slot, logger.Discard()))
	assert.Equal(t, "u1", st.User.ID())
	assert.Nil(t, st.User.Reservation())
	assert.Empty(t, st.Parking.Spots())
}

func TestLoadSessionLocalFailure(t *testing.T) {
	slot := &memorySlot{loadErr: errors.New("permission denied")}
	err := LoadSession(context.Background(), state.New(), &stubRemote{}, slot, logger.Discard())
	assert.Error(t, err)
}

func TestRefreshSpotsKeepsPreviousOnEmpty(t *testing.T) {
	st := state.New()
	st.Parking.SetParkingSpots([]api.Spot{{Number: "A12", Floor: 1}})

	RefreshSpots(context.Background(), st, &stubRemote{}, logger.Discard())
	assert.Len(t, st.Parking.Spots(), 1)
}

func TestResetIdentity(t *testing.T) {
	slot := &memorySlot{id: "u1"}

	id, err := ResetIdentity(slot)
	require.NoError(t, err)
	assert.NotEqual(t, "u1", id)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, slot.id)
	assert.Equal(t, 1, slot.saves)
}
