package cmd

import (
	"context"
	"fmt"
	"os"

	"parking-cli/state"
	"parking-cli/storage"
	"parking-cli/workflow"

	"github.com/spf13/cobra"
)

type WhoAmI struct {
	UserID      string             `json:"user_id"`
	CreatedAt   string             `json:"created_at,omitempty"`
	Reservation *state.Reservation `json:"reservation"`
}

func whoamiCmd() *cobra.Command {
	var reset bool
	var forget bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show or reset the anonymous user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset && forget {
				return fmt.Errorf("choose either --reset or --forget")
			}
			if reset {
				return resetIdentity(yes)
			}
			if forget {
				if err := storage.ClearIdentity(); err != nil {
					return err
				}
				fmt.Println("Local user id removed. A new one is generated on the next run.")
				return nil
			}

			sess, err := openSession(context.Background())
			if err != nil {
				return err
			}
			defer sess.Close()

			out := WhoAmI{
				UserID:      sess.state.User.ID(),
				Reservation: sess.state.User.Reservation(),
			}
			if identity, err := storage.LoadIdentity(); err == nil && identity != nil {
				out.CreatedAt = identity.CreatedAt
			}

			if outputJSON {
				return writeJSON(out)
			}
			fmt.Printf("User ID: %s\n", out.UserID)
			if out.CreatedAt != "" {
				fmt.Printf("Created: %s\n", out.CreatedAt)
			}
			printReservation(out.Reservation)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Generate a new user id")
	cmd.Flags().BoolVar(&forget, "forget", false, "Delete the stored user id")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func resetIdentity(yes bool) error {
	if !yes {
		if !isInteractive() {
			return fmt.Errorf("--yes is required when stdin is not a terminal")
		}
		ok, err := confirm(os.Stdin, "A new user id loses access to the current reservation. Continue?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Kept the current user id.")
			return nil
		}
	}

	userID, err := workflow.ResetIdentity(storage.LocalIdentity{})
	if err != nil {
		return err
	}
	appLog.Info("User id reset to %s", userID)

	if outputJSON {
		return writeJSON(WhoAmI{UserID: userID})
	}
	fmt.Printf("New user ID: %s\n", userID)
	return nil
}
