package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func cancelCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel your reservation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !isInteractive() {
				return fmt.Errorf("--yes is required when stdin is not a terminal")
			}

			ctx := context.Background()
			sess, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			reservation := sess.state.User.Reservation()
			if reservation == nil {
				return fmt.Errorf("you have no reservation to cancel")
			}
			spot := reservation.Spot
			if current, ok := sess.state.Parking.Resolve(spot); ok {
				spot = current
			}
			if err := sess.workflow.RequestCancellation(spot); err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(os.Stdin, fmt.Sprintf("Cancel your reservation of spot %s? This cannot be undone.", spot.Number))
				if err != nil {
					return err
				}
				if !ok {
					sess.workflow.Dismiss()
					fmt.Println("Cancellation dismissed.")
					return nil
				}
			}

			if err := sess.workflow.Confirm(ctx, ""); err != nil {
				return err
			}
			fmt.Printf("Reservation %s on spot %s cancelled.\n", reservation.ID, spot.Number)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func reservationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reservation",
		Short: "Show your reservation",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(context.Background())
			if err != nil {
				return err
			}
			defer sess.Close()

			reservation := sess.state.User.Reservation()
			if outputJSON {
				return writeJSON(reservation)
			}
			printReservation(reservation)
			return nil
		},
	}
	return cmd
}
