package cmd

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"parking-cli/state"
	"parking-cli/storage"
	"parking-cli/workflow"

	"golang.org/x/term"
)

// session is one loaded view of the parking: stores, workflow and the
// local history database.
type session struct {
	state    *state.State
	workflow *workflow.Workflow
	db       *sql.DB
}

func openSession(ctx context.Context) (*session, error) {
	st := state.New()
	if err := workflow.LoadSession(ctx, st, client, storage.LocalIdentity{}, appLog); err != nil {
		return nil, err
	}

	var history workflow.HistoryRecorder
	db, err := storage.OpenHistoryDB()
	if err != nil {
		appLog.Warn("History disabled: %v", err)
	} else {
		history = storage.History{DB: db}
	}

	return &session{
		state:    st,
		workflow: workflow.New(st, client, history, appLog),
		db:       db,
	}, nil
}

func (s *session) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func prompt(in io.Reader, label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(in)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func confirm(in io.Reader, question string) (bool, error) {
	answer, err := prompt(in, question+" [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// parseFloorFilter turns the --floor flag into a filter; "" and "all" mean none.
func parseFloorFilter(input string) (*int, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "all") {
		return nil, nil
	}
	floor, err := strconv.Atoi(input)
	if err != nil {
		return nil, fmt.Errorf("invalid floor %q (expected an integer)", input)
	}
	return state.FloorFilter(floor), nil
}

// parseStateFilter turns the --state flag into a filter; "" and "all" mean none.
func parseStateFilter(input string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "all":
		return nil, nil
	case "free":
		return state.StateFilter(false), nil
	case "occupied":
		return state.StateFilter(true), nil
	}
	return nil, fmt.Errorf("invalid state %q (expected free or occupied)", input)
}

func statusLabel(status state.SpotStatus) string {
	switch status {
	case state.StatusFree:
		return "Free"
	case state.StatusReserved:
		return "Reserved"
	}
	return "Occupied"
}

func printReservation(r *state.Reservation) {
	if r == nil {
		fmt.Println("You have no reservation.")
		return
	}
	fmt.Printf("You reserved spot %s (floor %d).\n", r.Spot.Number, r.Spot.Floor)
	fmt.Println(state.FormatReservationDate(r.Date))
	fmt.Printf("Contact: %s\n", r.Email)
	fmt.Printf("Reservation ID: %s\n", r.ID)
}
