package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the facility description, contact and map",
		RunE: func(cmd *cobra.Command, args []string) error {
			facility := cfg.Facility
			if outputJSON {
				return writeJSON(facility)
			}

			if outputCompact {
				fmt.Printf("%s | %s | %s\n", facility.Name, facility.Address, facility.Phone)
				return nil
			}

			fmt.Printf("Welcome to %s\n\n", facility.Name)
			if facility.Description != "" {
				fmt.Printf("%s\n\n", facility.Description)
			}
			fmt.Println("CONTACT")
			fmt.Println(facility.Address)
			fmt.Println(facility.Phone)
			if facility.MapURL != "" {
				fmt.Printf("\nMap: %s\n", facility.MapURL)
			}
			return nil
		},
	}
	return cmd
}
