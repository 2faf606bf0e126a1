package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"parking-cli/storage"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var action string
	var limit int
	var allUsers bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show bookings and cancellations made from this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch action {
			case "", storage.ActionBooked, storage.ActionCancelled:
			default:
				return fmt.Errorf("invalid --action %q (expected %s or %s)", action, storage.ActionBooked, storage.ActionCancelled)
			}

			filter := storage.HistoryFilter{Action: action, Limit: limit}
			if !allUsers {
				userID, err := storage.LocalIdentity{}.UserID()
				if err != nil {
					return err
				}
				if userID == "" {
					fmt.Println("No history.")
					return nil
				}
				filter.UserID = userID
			}

			db, err := storage.OpenHistoryDB()
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := storage.ListHistory(db, filter)
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(entries)
			}

			if len(entries) == 0 {
				fmt.Println("No history.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if !outputCompact {
				fmt.Fprintln(writer, "AT\tACTION\tSPOT\tFLOOR\tEMAIL\tRESERVATION")
			}
			for _, entry := range entries {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%s\t%s\n", entry.At, entry.Action, entry.SpotNumber, entry.Floor, entry.Email, entry.ReservationID)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "Only booked or cancelled entries")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries")
	cmd.Flags().BoolVar(&allUsers, "all-users", false, "Include entries of previous user ids")
	return cmd
}
