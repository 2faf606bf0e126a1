package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"parking-cli/state"
	"parking-cli/storage"

	"github.com/spf13/cobra"
)

func favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage saved spot aliases",
	}

	cmd.AddCommand(favoritesListCmd())
	cmd.AddCommand(favoritesAddCmd())
	cmd.AddCommand(favoritesRemoveCmd())
	return cmd
}

type FavoriteRow struct {
	Alias  string           `json:"alias"`
	Spot   string           `json:"spot"`
	Note   string           `json:"note,omitempty"`
	Status state.SpotStatus `json:"status,omitempty"`
}

func favoritesListCmd() *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved spots",
		RunE: func(cmd *cobra.Command, args []string) error {
			favorites, err := storage.LoadFavorites()
			if err != nil {
				return err
			}

			rows := make([]FavoriteRow, 0, len(favorites))
			for _, favorite := range favorites {
				rows = append(rows, FavoriteRow{Alias: favorite.Alias, Spot: favorite.Spot, Note: favorite.Note})
			}

			if live && len(rows) > 0 {
				sess, err := openSession(context.Background())
				if err != nil {
					return err
				}
				defer sess.Close()
				reservation := sess.state.User.Reservation()
				for i := range rows {
					if spot, ok := sess.state.Parking.Spot(rows[i].Spot); ok {
						rows[i].Status = state.StatusOf(spot, reservation)
					}
				}
			}

			if outputJSON {
				return writeJSON(rows)
			}
			if len(rows) == 0 {
				fmt.Println("No favorites saved.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if !outputCompact {
				fmt.Fprintln(writer, "ALIAS\tSPOT\tSTATE\tNOTE")
			}
			for _, row := range rows {
				status := "-"
				if row.Status != "" {
					status = statusLabel(row.Status)
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", row.Alias, row.Spot, status, row.Note)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Fetch the current state of each spot")
	return cmd
}

func favoritesAddCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "add <alias> <spot>",
		Short: "Save a spot under an alias",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := strings.TrimSpace(args[0])
			number := strings.TrimSpace(args[1])
			if alias == "" || number == "" {
				return fmt.Errorf("alias and spot are required")
			}

			favorites, err := storage.LoadFavorites()
			if err != nil {
				return err
			}
			if _, ok := storage.FindFavorite(favorites, alias); ok {
				return fmt.Errorf("favorite alias %q already exists", alias)
			}

			favorites = append(favorites, storage.Favorite{Alias: alias, Spot: number, Note: note})
			if err := storage.SaveFavorites(favorites); err != nil {
				return err
			}
			fmt.Printf("Saved spot %s as %s.\n", number, alias)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Free-form note")
	return cmd
}

func favoritesRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <alias>",
		Short: "Remove a saved spot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := strings.TrimSpace(args[0])
			favorites, err := storage.LoadFavorites()
			if err != nil {
				return err
			}

			favorites, ok := storage.RemoveFavorite(favorites, alias)
			if !ok {
				return fmt.Errorf("favorite alias %q not found", alias)
			}
			if err := storage.SaveFavorites(favorites); err != nil {
				return err
			}
			fmt.Printf("Removed favorite %s.\n", alias)
			return nil
		},
	}

	return cmd
}

// resolveSpotNumber maps a saved alias to its spot number. Unknown input is
// returned unchanged.
func resolveSpotNumber(input string) string {
	input = strings.TrimSpace(input)
	favorites, err := storage.LoadFavorites()
	if err != nil {
		appLog.Warn("Could not read favorites: %v", err)
		return input
	}
	if favorite, ok := storage.FindFavorite(favorites, input); ok {
		return favorite.Spot
	}
	return input
}
