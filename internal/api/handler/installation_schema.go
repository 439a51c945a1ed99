package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/solarops/installation-tracker/internal/core/domain"
	"github.com/solarops/installation-tracker/internal/core/ports"
)

// ErrorResponse is the envelope of every error reply. Failures is only set
// when a bulk import is rejected.
type ErrorResponse struct {
	Error    string               `json:"error"`
	Failures []domain.BulkFailure `json:"failures,omitempty"`
}

// flexText accepts a JSON string or number. null and absent are the same.
type flexText struct {
	Value string
	Set   bool
}

func (f *flexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flexText{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexText{Value: s, Set: true}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexText{Value: n.String(), Set: true}
	return nil
}

func (f flexText) ptr() *string {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// installationRequest is the body of create, update and every bulk row.
type installationRequest struct {
	HomeownerName flexText `json:"homeownerName" swaggertype:"string"`
	Address       flexText `json:"address" swaggertype:"string"`
	City          flexText `json:"city" swaggertype:"string"`
	State         flexText `json:"state" swaggertype:"string"`
	Zip           flexText `json:"zip" swaggertype:"string"`
	SystemSize    flexText `json:"systemSize" swaggertype:"number"`
	InstallDate   flexText `json:"installDate" swaggertype:"string"`
	Notes         flexText `json:"notes" swaggertype:"string"`
	Latitude      flexText `json:"latitude" swaggertype:"number"`
	Longitude     flexText `json:"longitude" swaggertype:"number"`
}

func (r installationRequest) toInput() ports.InstallationInput {
	return ports.InstallationInput{
		HomeownerName: r.HomeownerName.Value,
		Address:       r.Address.Value,
		City:          r.City.Value,
		State:         r.State.Value,
		Zip:           r.Zip.Value,
		SystemSize:    r.SystemSize.Value,
		InstallDate:   r.InstallDate.ptr(),
		Notes:         r.Notes.Value,
		Latitude:      r.Latitude.Value,
		Longitude:     r.Longitude.Value,
	}
}

type bulkRequest struct {
	Installations []installationRequest `json:"installations"`
}

func (r bulkRequest) toInputs() []ports.InstallationInput {
	out := make([]ports.InstallationInput, 0, len(r.Installations))
	for _, row := range r.Installations {
		out = append(out, row.toInput())
	}
	return out
}

type bulkResponse struct {
	Added         int                   `json:"added"`
	Installations []domain.Installation `json:"installations"`
}

type messageResponse struct {
	Message string `json:"message"`
}
