package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solarops/installation-tracker/internal/infrastructure/importer"
)

var (
	uploadServer   string
	uploadToken    string
	uploadUsername string
	uploadPassword string
	uploadKey      string
)

// bulkCmd groups spreadsheet import helpers
var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Prepare and upload spreadsheet imports",
}

var bulkPrepareCmd = &cobra.Command{
	Use:   "prepare <input.csv|input.xlsx> [output.json]",
	Short: "Convert a spreadsheet into a bulk payload file",
	Long: `Read a .csv or .xlsx file, check every row with the server's rules and
write {"installations": [...]} to output.json (default payload.json).

Row numbers in errors are spreadsheet line numbers.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBulkPrepare,
}

var bulkUploadCmd = &cobra.Command{
	Use:   "upload <input.csv|input.xlsx|payload.json>",
	Short: "Upload a spreadsheet or payload file to a running server",
	Args:  cobra.ExactArgs(1),
	RunE:  runBulkUpload,
}

func init() {
	bulkUploadCmd.Flags().StringVar(&uploadServer, "server", "http://localhost:3000", "Server base URL")
	bulkUploadCmd.Flags().StringVar(&uploadToken, "token", "", "Bearer token (skips login)")
	bulkUploadCmd.Flags().StringVarP(&uploadUsername, "username", "u", "", "Login username")
	bulkUploadCmd.Flags().StringVarP(&uploadPassword, "password", "p", "", "Login password")
	bulkUploadCmd.Flags().StringVar(&uploadKey, "idempotency-key", "", "Key that makes a retried upload a no-op")

	bulkCmd.AddCommand(bulkPrepareCmd)
	bulkCmd.AddCommand(bulkUploadCmd)
}

func runBulkPrepare(cmd *cobra.Command, args []string) error {
	output := "payload.json"
	if len(args) == 2 {
		output = args[1]
	}

	payload, err := loadSheet(args[0])
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := writePayload(f, payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d installations to %s\n", len(payload.Installations), output)
	return nil
}

func runBulkUpload(cmd *cobra.Command, args []string) error {
	if uploadToken == "" && (uploadUsername == "" || uploadPassword == "") {
		return errors.New("either --token or both --username and --password are required")
	}

	var payload importer.Payload
	var err error
	if strings.EqualFold(filepath.Ext(args[0]), ".json") {
		payload, err = loadPayload(args[0])
	} else {
		payload, err = loadSheet(args[0])
	}
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := importer.NewClient(uploadServer)
	if uploadToken != "" {
		client.SetToken(uploadToken)
	} else if _, err := client.Login(ctx, uploadUsername, uploadPassword); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	res, err := client.Upload(ctx, payload, uploadKey)
	if err != nil {
		var apiErr *importer.APIError
		if errors.As(err, &apiErr) && len(apiErr.Failures) > 0 {
			out := cmd.ErrOrStderr()
			for _, f := range apiErr.Failures {
				fmt.Fprintf(out, "%s: %s\n", rowLabel(payload, f.Index), strings.Join(f.Errors, "; "))
			}
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d installations\n", res.Added)
	return nil
}

// loadSheet reads and pre-validates a spreadsheet.
func loadSheet(path string) (importer.Payload, error) {
	records, err := importer.ReadFile(path)
	if err != nil {
		return importer.Payload{}, err
	}
	if len(records) == 0 {
		return importer.Payload{}, fmt.Errorf("%s has no data rows", path)
	}
	if err := importer.Validate(records); err != nil {
		return importer.Payload{}, err
	}
	return importer.Payload{Installations: records}, nil
}

func loadPayload(path string) (importer.Payload, error) {
	var p importer.Payload
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

func writePayload(w io.Writer, p importer.Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// rowLabel names a rejected row by spreadsheet line when it is known.
func rowLabel(p importer.Payload, index int) string {
	if index >= 0 && index < len(p.Installations) && p.Installations[index].Line > 0 {
		return fmt.Sprintf("row %d", p.Installations[index].Line)
	}
	return fmt.Sprintf("item %d", index)
}
