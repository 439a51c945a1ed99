package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

var territoryCmd = &cobra.Command{
	Use:   "territory <state> [city]",
	Short: "Resolve the utility territory for a location",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		city := ""
		if len(args) == 2 {
			city = args[1]
		}
		t := domain.ResolveTerritory(args[0], city)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.Code, t.Name, t.Color)
		return nil
	},
}
