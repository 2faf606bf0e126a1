package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"parking-cli/workflow"

	"github.com/spf13/cobra"
)

func bookCmd() *cobra.Command {
	var email string
	var yes bool

	cmd := &cobra.Command{
		Use:   "book <spot|alias>",
		Short: "Book a free spot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := strings.TrimSpace(args[0])
			interactive := isInteractive()
			if !yes && !interactive {
				return fmt.Errorf("--yes is required when stdin is not a terminal")
			}

			ctx := context.Background()
			sess, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			spot, ok := sess.state.Parking.Spot(number)
			if !ok {
				spot, ok = sess.state.Parking.Spot(resolveSpotNumber(number))
			}
			if !ok {
				return fmt.Errorf("spot %q not found", number)
			}
			if err := sess.workflow.RequestBooking(spot); err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(os.Stdin, fmt.Sprintf("Book spot %s on floor %d?", spot.Number, spot.Floor))
				if err != nil {
					return err
				}
				if !ok {
					sess.workflow.Dismiss()
					fmt.Println("Booking dismissed.")
					return nil
				}
			}

			for {
				if email == "" && interactive {
					fmt.Println("A confirmation email will be sent to you.")
					email, err = prompt(os.Stdin, "Email: ")
					if err != nil {
						return err
					}
				}
				err = sess.workflow.Confirm(ctx, email)
				if errors.Is(err, workflow.ErrInvalidEmail) && interactive {
					fmt.Println(err)
					email = ""
					continue
				}
				break
			}
			if err != nil {
				return err
			}

			reservation := sess.state.User.Reservation()
			if outputJSON {
				return writeJSON(reservation)
			}
			fmt.Printf("Booked: spot %s (floor %d)\n", spot.Number, spot.Floor)
			fmt.Printf("Reservation ID: %s\n", reservation.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Contact email for the reservation")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
