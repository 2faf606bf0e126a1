package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"parking-cli/state"

	"github.com/spf13/cobra"
)

type SpotRow struct {
	Number   string `json:"number"`
	Floor    int    `json:"floor"`
	Occupied bool   `json:"occupied"`
	Status   string `json:"status"`
	Bookable bool   `json:"bookable"`
}

func spotsCmd() *cobra.Command {
	var search string
	var floor string
	var spotState string

	cmd := &cobra.Command{
		Use:   "spots",
		Short: "List parking spots",
		RunE: func(cmd *cobra.Command, args []string) error {
			floorFilter, err := parseFloorFilter(floor)
			if err != nil {
				return err
			}
			stateFilter, err := parseStateFilter(spotState)
			if err != nil {
				return err
			}

			ctx := context.Background()
			sess, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			criteria := state.Criteria{Query: search, Floor: floorFilter, Occupied: stateFilter}
			rows := buildSpotRows(sess.state, criteria)

			if outputJSON {
				return writeJSON(rows)
			}
			return renderSpots(rows)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Spot number contains")
	cmd.Flags().StringVar(&floor, "floor", "", "Floor number")
	cmd.Flags().StringVar(&spotState, "state", "", "free or occupied")
	return cmd
}

func floorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "floors",
		Short: "List floors",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(context.Background())
			if err != nil {
				return err
			}
			defer sess.Close()

			floors := sess.state.Parking.Floors()
			if outputJSON {
				return writeJSON(floors)
			}
			if len(floors) == 0 {
				fmt.Println("No floors.")
				return nil
			}
			labels := make([]string, 0, len(floors))
			for _, f := range floors {
				labels = append(labels, strconv.Itoa(f))
			}
			fmt.Println(strings.Join(labels, " "))
			return nil
		},
	}
	return cmd
}

func buildSpotRows(st *state.State, criteria state.Criteria) []SpotRow {
	reservation := st.User.Reservation()
	spots := state.Filter(st.Parking.Spots(), criteria)
	rows := make([]SpotRow, 0, len(spots))
	for _, spot := range spots {
		rows = append(rows, SpotRow{
			Number:   spot.Number,
			Floor:    spot.Floor,
			Occupied: spot.Occupied,
			Status:   string(state.StatusOf(spot, reservation)),
			Bookable: state.CanBook(spot, reservation),
		})
	}
	return rows
}

func renderSpots(rows []SpotRow) error {
	if len(rows) == 0 {
		fmt.Println("No results.")
		return nil
	}

	if outputCompact {
		parts := make([]string, 0, len(rows))
		for _, row := range rows {
			mark := "✗"
			if !row.Occupied {
				mark = "✓"
			}
			parts = append(parts, fmt.Sprintf("%s/%d %s", row.Number, row.Floor, mark))
		}
		fmt.Println(strings.Join(parts, " | "))
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "SPOT\tFLOOR\tSTATE\tACTION")
	for _, row := range rows {
		action := ""
		if row.Bookable {
			action = "parking book " + row.Number
		}
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\n", row.Number, row.Floor, statusLabel(state.SpotStatus(row.Status)), action)
	}
	return writer.Flush()
}
