// Command installtrack runs the solar installation tracker API and its
// operator tooling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "installtrack",
	Short: "Solar installation tracker",
	Long: `Track solar installation records per user.

Available subcommands:
  serve      - Run the HTTP API
  bulk       - Prepare and upload spreadsheet imports
  territory  - Resolve the utility territory for a location`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(territoryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
