package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-cli/api"
	"parking-cli/logger"
	"parking-cli/metrics"
	"parking-cli/state"
	"parking-cli/workflow"
)

type fakeRemote struct {
	spots    []api.Spot
	patched  []api.Spot
	created  []string
	deleted  []string
	failPost bool
}

func (f *fakeRemote) ListSpots(ctx context.Context) ([]api.Spot, error) {
	return f.spots, nil
}

func (f *fakeRemote) GetReservationByUser(ctx context.Context, userID string) (*api.ReservationRecord, error) {
	return nil, nil
}

func (f *fakeRemote) UpdateSpotState(ctx context.Context, spot api.Spot) error {
	f.patched = append(f.patched, spot)
	return nil
}

func (f *fakeRemote) CreateReservation(ctx context.Context, userID, spotID, email string) (string, error) {
	if f.failPost {
		return "", errors.New("unavailable")
	}
	f.created = append(f.created, spotID+"|"+email)
	return "r1", nil
}

func (f *fakeRemote) DeleteReservation(ctx context.Context, reservationID string) error {
	f.deleted = append(f.deleted, reservationID)
	return nil
}

func newTestServer(t *testing.T, remote *fakeRemote, collector Recorder) (*Server, *state.State) {
	t.Helper()
	st := state.New()
	st.User.SetUserID("u1")
	st.Parking.SetParkingSpots(remote.spots)

	log := logger.Discard()
	wf := workflow.New(st, remote, nil, log)
	srv, err := NewServer(st, wf, remote, Facility{
		Name:    "Parking Courier",
		Address: "Rue Paul Cézanne, 74000 Annecy",
		Phone:   "+33 4 50 33 87 99",
		MapURL:  "https://maps.example.com/embed",
	}, log, collector)
	require.NoError(t, err)
	return srv, st
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleRemote() *fakeRemote {
	return &fakeRemote{spots: []api.Spot{
		{Number: "A12", Floor: 1},
		{Number: "B3", Floor: 2, Occupied: true},
		{Number: "C1", Floor: 0},
	}}
}

func TestIndexListsSpotsAndContact(t *testing.T) {
	srv, _ := newTestServer(t, sampleRemote(), nil)

	rec := get(t, srv.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Welcome to Parking Courier")
	assert.Contains(t, body, "A12")
	assert.Contains(t, body, "B3")
	assert.Contains(t, body, "+33 4 50 33 87 99")
	assert.Contains(t, body, `src="https://maps.example.com/embed"`)
	assert.Contains(t, body, "You have no reservation.")
	assert.Equal(t, 2, strings.Count(body, `action="/book"`))
}

func TestIndexFilters(t *testing.T) {
	srv, _ := newTestServer(t, sampleRemote(), nil)

	body := get(t, srv.Handler(), "/?floor=2").Body.String()
	assert.Contains(t, body, "<td>B3</td>")
	assert.NotContains(t, body, "<td>A12</td>")

	body = get(t, srv.Handler(), "/?state=free&q=C").Body.String()
	assert.Contains(t, body, "<td>C1</td>")
	assert.NotContains(t, body, "<td>A12</td>")
	assert.NotContains(t, body, "<td>B3</td>")
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	srv, _ := newTestServer(t, sampleRemote(), nil)

	for _, target := range []string{"/spots", "/a/b/c", "/book"} {
		rec := get(t, srv.Handler(), target)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/", rec.Header().Get("Location"), target)
	}
}

func TestBookingFlow(t *testing.T) {
	remote := sampleRemote()
	srv, st := newTestServer(t, remote, nil)
	h := srv.Handler()

	rec := post(t, h, "/book", url.Values{"spot": {"A12"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "Book spot A12?")
	assert.Contains(t, body, `name="email"`)

	post(t, h, "/confirm", url.Values{"email": {"not-an-email"}})
	body = get(t, h, "/").Body.String()
	assert.Contains(t, body, "Please enter a valid email address.")
	assert.Contains(t, body, "Book spot A12?")
	assert.Empty(t, remote.patched)

	post(t, h, "/confirm", url.Values{"email": {"a@b.com"}})
	require.Len(t, remote.patched, 1)
	assert.Equal(t, []string{"A12|a@b.com"}, remote.created)

	reservation := st.User.Reservation()
	require.NotNil(t, reservation)
	assert.Equal(t, "r1", reservation.ID)

	body = get(t, h, "/").Body.String()
	assert.Contains(t, body, "Your spot is booked.")
	assert.Contains(t, body, "Your reservation")
	assert.NotContains(t, body, `action="/book"`)
	assert.NotContains(t, body, `role="dialog"`)

	// The notice is shown once.
	assert.NotContains(t, get(t, h, "/").Body.String(), "Your spot is booked.")
}

func TestCancellationFlow(t *testing.T) {
	remote := sampleRemote()
	srv, st := newTestServer(t, remote, nil)
	st.User.SetReservation(&state.ReservationPayload{ID: "r9", Spot: api.Spot{Number: "B3", Floor: 2, Occupied: true}, Email: "a@b.com"})
	h := srv.Handler()

	post(t, h, "/cancel", nil)
	assert.Contains(t, get(t, h, "/").Body.String(), "Cancel your reservation of spot B3?")

	post(t, h, "/confirm", nil)
	assert.Equal(t, []string{"r9"}, remote.deleted)
	assert.Nil(t, st.User.Reservation())
	spot, ok := st.Parking.Spot("B3")
	require.True(t, ok)
	assert.False(t, spot.Occupied)
}

func TestFailedReservationKeepsSpotFlip(t *testing.T) {
	remote := sampleRemote()
	remote.failPost = true
	srv, st := newTestServer(t, remote, nil)
	h := srv.Handler()

	post(t, h, "/book", url.Values{"spot": {"A12"}})
	post(t, h, "/confirm", url.Values{"email": {"a@b.com"}})

	assert.Nil(t, st.User.Reservation())
	spot, ok := st.Parking.Spot("A12")
	require.True(t, ok)
	assert.True(t, spot.Occupied)
	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "Something went wrong, please try again.")
	assert.NotContains(t, body, `role="dialog"`)
}

func TestDismissClosesDialog(t *testing.T) {
	remote := sampleRemote()
	srv, _ := newTestServer(t, remote, nil)
	h := srv.Handler()

	post(t, h, "/book", url.Values{"spot": {"C1"}})
	post(t, h, "/dismiss", nil)
	assert.NotContains(t, get(t, h, "/").Body.String(), `role="dialog"`)

	post(t, h, "/confirm", url.Values{"email": {"a@b.com"}})
	assert.Empty(t, remote.patched)
	assert.Contains(t, get(t, h, "/").Body.String(), "Nothing to confirm.")
}

func TestBookOccupiedSpotRefused(t *testing.T) {
	srv, _ := newTestServer(t, sampleRemote(), nil)
	h := srv.Handler()

	post(t, h, "/book", url.Values{"spot": {"B3"}})
	body := get(t, h, "/").Body.String()
	assert.Contains(t, body, "This spot is not free.")
	assert.NotContains(t, body, `role="dialog"`)
}

func TestMetricsEndpoint(t *testing.T) {
	collector := metrics.New("parking")
	srv, _ := newTestServer(t, sampleRemote(), collector)
	h := srv.Handler()

	get(t, h, "/")
	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `parking_http_requests_total{method="GET",route="/",status="200"} 1`)
}

func TestMetricsCountRedirects(t *testing.T) {
	collector := metrics.New("parking")
	srv, _ := newTestServer(t, sampleRemote(), collector)
	h := srv.Handler()

	get(t, h, "/nowhere")
	get(t, h, "/book")
	body := get(t, h, "/metrics").Body.String()
	assert.Contains(t, body, `parking_http_requests_total{method="GET",route="unmatched",status="302"} 2`)
}

func TestCancelRestoredReservationByServerID(t *testing.T) {
	remote := &fakeRemote{spots: []api.Spot{{ID: "s1", Number: "A12", Floor: 1, Occupied: true}}}
	srv, st := newTestServer(t, remote, nil)
	st.User.SetReservation(&state.ReservationPayload{ID: "r1", Spot: api.Spot{ID: "s1", Number: "s1", Occupied: true}})
	h := srv.Handler()

	post(t, h, "/cancel", nil)
	post(t, h, "/confirm", nil)

	require.Len(t, remote.patched, 1)
	assert.Equal(t, "A12", remote.patched[0].Number)
	assert.True(t, remote.patched[0].Occupied)
	assert.Equal(t, []string{"r1"}, remote.deleted)
}

func TestRefreshReloadsSpots(t *testing.T) {
	remote := sampleRemote()
	srv, st := newTestServer(t, remote, nil)
	remote.spots = append(remote.spots, api.Spot{Number: "D4", Floor: 3})

	rec := post(t, srv.Handler(), "/refresh", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := st.Parking.Spot("D4")
	assert.True(t, ok)
	assert.Equal(t, []int{0, 1, 2, 3}, st.Parking.Floors())
}
