// Package importer turns spreadsheets into bulk installation payloads and
// uploads them to a running server.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/solarops/installation-tracker/internal/core/ports"
	"github.com/solarops/installation-tracker/internal/core/service"
)

// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// headerAliases maps normalized header text to record fields.
var headerAliases = map[string][]string{
	"homeownerName": {"homeownername", "homeowner name", "homeowner", "name"},
	"address":       {"address", "street", "street address"},
	"city":          {"city", "town"},
	"state":         {"state", "state/province", "province", "region"},
	"zip":           {"zip", "zipcode", "zip code", "postal", "postalcode", "postal code"},
	"systemSize":    {"systemsize", "system size", "system_kw", "system kw", "system (kw)", "kw", "capacity"},
	"installDate":   {"installdate", "install date", "date", "install"},
	"notes":         {"notes", "note", "comments", "comment"},
	"latitude":      {"latitude", "lat"},
	"longitude":     {"longitude", "lng", "lon", "long"},
}

var requiredFields = []string{"homeownerName", "address", "city", "state", "zip", "systemSize"}

var aliasIndex = func() map[string]string {
	idx := make(map[string]string)
	for field, aliases := range headerAliases {
		for _, a := range aliases {
			idx[a] = field
		}
	}
	return idx
}()

// Record is one payload row. Values are sent as text; the server accepts
// strings for numeric fields.
type Record struct {
	HomeownerName string `json:"homeownerName"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	SystemSize    string `json:"systemSize"`
	InstallDate   string `json:"installDate,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Latitude      string `json:"latitude,omitempty"`
	Longitude     string `json:"longitude,omitempty"`

	// Line is the 1-based spreadsheet line the row came from.
	Line int `json:"-"`
}

func (r Record) input() ports.InstallationInput {
	in := ports.InstallationInput{
		HomeownerName: r.HomeownerName,
		Address:       r.Address,
		City:          r.City,
		State:         r.State,
		Zip:           r.Zip,
		SystemSize:    r.SystemSize,
		Notes:         r.Notes,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
	}
	if r.InstallDate != "" {
		d := r.InstallDate
		in.InstallDate = &d
	}
	return in
}

func (r *Record) set(field, value string) {
	switch field {
	case "homeownerName":
		r.HomeownerName = value
	case "address":
		r.Address = value
	case "city":
		r.City = value
	case "state":
		r.State = value
	case "zip":
		r.Zip = value
	case "systemSize":
		r.SystemSize = value
	case "installDate":
		r.InstallDate = value
	case "notes":
		r.Notes = value
	case "latitude":
		r.Latitude = value
	case "longitude":
		r.Longitude = value
	}
}

// Payload is the request body of POST /api/installations/bulk.
type Payload struct {
	Installations []Record `json:"installations"`
}

// MissingColumnsError names required fields with no matching header.
type MissingColumnsError struct {
	Fields []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Fields, ", ")
}

// RowError lists the problems of one spreadsheet line.
type RowError struct {
	Line   int
	Errors []string
}

// RowsError rejects a sheet with at least one invalid row.
type RowsError struct {
	Rows []RowError
}

func (e *RowsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d invalid row(s)", len(e.Rows))
	for _, r := range e.Rows {
		fmt.Fprintf(&b, "\n  row %d: %s", r.Line, strings.Join(r.Errors, "; "))
	}
	return b.String()
}

// ReadFile loads the first sheet of a .csv or .xlsx file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return parseRows(rows)
}

// ReadXLSX reads the first worksheet.
func ReadXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

// parseRows maps the header row through headerAliases and converts every
// non-blank line after it.
func parseRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Fields: requiredFields}
	}

	columns := make(map[int]string)
	seen := make(map[string]bool)
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		field, ok := aliasIndex[key]
		if !ok || seen[field] {
			continue
		}
		columns[i] = field
		seen[field] = true
	}

	var missing []string
	for _, f := range requiredFields {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Fields: missing}
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := Record{Line: i + 2}
		for col, field := range columns {
			if col < len(row) {
				rec.set(field, strings.TrimSpace(row[col]))
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Validate runs every record through the server's field rules.
func Validate(records []Record) error {
	var bad []RowError
	for _, r := range records {
		if errs := service.Check(r.input()); len(errs) > 0 {
			bad = append(bad, RowError{Line: r.Line, Errors: errs})
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return &RowsError{Rows: bad}
}
