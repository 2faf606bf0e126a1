// Package web serves the parking dashboard: one page listing spots, the
// visitor's reservation and the pending confirmation, plus form endpoints
// that drive the workflow.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"parking-cli/api"
	"parking-cli/state"
	"parking-cli/workflow"
)

//go:embed templates/*.html
var templateFS embed.FS

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Recorder collects dashboard request metrics and exposes them.
type Recorder interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
	Handler() http.Handler
}

type Facility struct {
	Name        string
	Description string
	Address     string
	Phone       string
	MapURL      string
}

type Server struct {
	mu       sync.Mutex
	state    *state.State
	workflow *workflow.Workflow
	remote   workflow.SessionRemote
	facility Facility
	log      Logger
	metrics  Recorder
	page     *template.Template
	notice   string
	router   *mux.Router
}

// NewServer builds the dashboard over an already loaded session. metrics may be nil.
func NewServer(st *state.State, wf *workflow.Workflow, remote workflow.SessionRemote, facility Facility, log Logger, metrics Recorder) (*Server, error) {
	page, err := template.New("index.html").Funcs(template.FuncMap{
		"reservationDate": state.FormatReservationDate,
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		state:    st,
		workflow: wf,
		remote:   remote,
		facility: facility,
		log:      log,
		metrics:  metrics,
		page:     page,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	if s.metrics != nil {
		r.Use(s.observe)
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/book", s.handleBook).Methods(http.MethodPost)
	r.HandleFunc("/cancel", s.handleCancel).Methods(http.MethodPost)
	r.HandleFunc("/confirm", s.handleConfirm).Methods(http.MethodPost)
	r.HandleFunc("/dismiss", s.handleDismiss).Methods(http.MethodPost)

	// mux skips middleware for these two, so they are wrapped directly.
	var fallback http.Handler = http.HandlerFunc(redirectHome)
	if s.metrics != nil {
		fallback = s.observe(fallback)
	}
	r.NotFoundHandler = fallback
	r.MethodNotAllowedHandler = fallback
	return r
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

func backHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type spotRow struct {
	Number   string
	Floor    int
	Status   state.SpotStatus
	Bookable bool
	Mine     bool
}

type pageData struct {
	Facility    Facility
	Spots       []spotRow
	Floors      []int
	Query       string
	Floor       string
	State       string
	Reservation *state.Reservation
	Pending     string
	Target      api.Spot
	Notice      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := state.Criteria{Query: q.Get("q")}
	if floor, err := strconv.Atoi(q.Get("floor")); err == nil {
		criteria.Floor = state.FloorFilter(floor)
	}
	switch q.Get("state") {
	case "free":
		criteria.Occupied = state.StateFilter(false)
	case "occupied":
		criteria.Occupied = state.StateFilter(true)
	}

	s.mu.Lock()
	reservation := s.state.User.Reservation()
	data := pageData{
		Facility:    s.facility,
		Floors:      s.state.Parking.Floors(),
		Query:       criteria.Query,
		Floor:       q.Get("floor"),
		State:       q.Get("state"),
		Reservation: reservation,
		Notice:      s.notice,
	}
	for _, spot := range state.Filter(s.state.Parking.Spots(), criteria) {
		status := state.StatusOf(spot, reservation)
		data.Spots = append(data.Spots, spotRow{
			Number:   spot.Number,
			Floor:    spot.Floor,
			Status:   status,
			Bookable: state.CanBook(spot, reservation),
			Mine:     status == state.StatusReserved,
		})
	}
	if target, ok := s.workflow.Target(); ok {
		data.Pending = s.workflow.Phase().String()
		data.Target = target
	}
	s.notice = ""
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error("GET / - Failed to render page: %v", err)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	workflow.RefreshSpots(context.WithoutCancel(r.Context()), s.state, s.remote, s.log)
	s.mu.Unlock()
	backHome(w, r)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.PostFormValue("spot"))

	s.mu.Lock()
	defer s.mu.Unlock()

	spot, ok := s.state.Parking.Spot(number)
	if !ok {
		s.log.Warn("POST /book - Unknown spot %q", number)
		s.notice = "Unknown spot " + number + "."
		backHome(w, r)
		return
	}
	if err := s.workflow.RequestBooking(spot); err != nil {
		s.log.Warn("POST /book - Booking refused for spot %s: %v", number, err)
		s.notice = noticeFor(err)
	}
	backHome(w, r)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation := s.state.User.Reservation()
	if reservation == nil {
		s.notice = noticeFor(workflow.ErrNotReservedSpot)
		backHome(w, r)
		return
	}
	spot := reservation.Spot
	if current, ok := s.state.Parking.Resolve(spot); ok {
		spot = current
	}
	if err := s.workflow.RequestCancellation(spot); err != nil {
		s.log.Warn("POST /cancel - Cancellation refused for spot %s: %v", spot.Number, err)
		s.notice = noticeFor(err)
	}
	backHome(w, r)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")

	s.mu.Lock()
	defer s.mu.Unlock()

	phase := s.workflow.Phase()
	if err := s.workflow.Confirm(context.WithoutCancel(r.Context()), email); err != nil {
		s.notice = noticeFor(err)
		backHome(w, r)
		return
	}
	switch phase {
	case workflow.ConfirmingBooking:
		s.notice = "Your spot is booked. A confirmation email is on its way."
	case workflow.ConfirmingCancellation:
		s.notice = "Your reservation has been cancelled."
	}
	backHome(w, r)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.workflow.Dismiss()
	s.mu.Unlock()
	backHome(w, r)
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, workflow.ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, workflow.ErrAlreadyReserved):
		return "You already hold a reservation."
	case errors.Is(err, workflow.ErrSpotOccupied):
		return "This spot is not free."
	case errors.Is(err, workflow.ErrNotReservedSpot):
		return "You have no reservation on this spot."
	case errors.Is(err, workflow.ErrDialogOpen):
		return "Finish or dismiss the pending confirmation first."
	case errors.Is(err, workflow.ErrNothingToConfirm):
		return "Nothing to confirm."
	}
	return "Something went wrong, please try again."
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.ObserveHTTP(r.Method, route, sw.status, time.Since(start))
	})
}
