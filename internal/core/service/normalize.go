package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/solarops/installation-tracker/internal/core/domain"
	"github.com/solarops/installation-tracker/internal/core/ports"
)

const (
	msgHomeownerName = "Homeowner name must be at least 2 characters"
	msgAddress       = "Street address is required"
	msgCity          = "City is required"
	msgState         = "State is required"
	msgZip           = "ZIP is required"
	msgSystemSize    = "System size must be a positive number"
	msgLatitude      = "Latitude must be numeric"
	msgLongitude     = "Longitude must be numeric"
)

// Normalizer turns raw payloads into canonical installation records. Single
// create, update and every bulk row go through the same rules.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize validates in and returns a new record stamped with a fresh id,
// createdAt and the caller as owner. On failure the record is zero and the
// returned slice lists every problem found.
func (n *Normalizer) Normalize(in ports.InstallationInput, caller domain.Identity) (domain.Installation, []string) {
	inst, errs := normalizeFields(in)
	if len(errs) > 0 {
		return domain.Installation{}, errs
	}

	now := n.now()
	inst.ID = generateID(now)
	inst.CreatedAt = domain.Timestamp(now)
	if caller.ID != "" {
		id := caller.ID
		inst.OwnerID = &id
	}
	if caller.Username != "" {
		name := caller.Username
		inst.OwnerUsername = &name
	}
	return inst, nil
}

// Check reports the problems Normalize would find in in without building a
// record. Import tooling uses it to pre-validate rows.
func Check(in ports.InstallationInput) []string {
	_, errs := normalizeFields(in)
	return errs
}

// normalizeFields validates and coerces the editable fields only.
func normalizeFields(in ports.InstallationInput) (domain.Installation, []string) {
	var errs []string

	inst := domain.Installation{
		HomeownerName: strings.TrimSpace(in.HomeownerName),
		Address:       strings.TrimSpace(in.Address),
		City:          strings.TrimSpace(in.City),
		State:         strings.ToUpper(strings.TrimSpace(in.State)),
		Zip:           strings.TrimSpace(in.Zip),
		Notes:         strings.TrimSpace(in.Notes),
	}

	if len([]rune(inst.HomeownerName)) < 2 {
		errs = append(errs, msgHomeownerName)
	}
	if inst.Address == "" {
		errs = append(errs, msgAddress)
	}
	if inst.City == "" {
		errs = append(errs, msgCity)
	}
	if inst.State == "" {
		errs = append(errs, msgState)
	}
	if inst.Zip == "" {
		errs = append(errs, msgZip)
	}

	size, ok := domain.ParseDecimal(in.SystemSize)
	if !ok || size <= 0 {
		errs = append(errs, msgSystemSize)
	}
	inst.SystemSize = domain.Kilowatts(size)

	// installDate is opaque: no format check.
	if in.InstallDate != nil && *in.InstallDate != "" {
		d := *in.InstallDate
		inst.InstallDate = &d
	}

	lat, err := parseOptional(in.Latitude)
	if err != nil {
		errs = append(errs, msgLatitude)
	}
	inst.Latitude = lat

	lng, err := parseOptional(in.Longitude)
	if err != nil {
		errs = append(errs, msgLongitude)
	}
	inst.Longitude = lng

	return inst, errs
}

// parseOptional returns nil for blank input.
func parseOptional(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, ok := domain.ParseDecimal(s)
	if !ok {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	return &v, nil
}

// generateID returns "<unix millis><6 hex chars>".
func generateID(now time.Time) string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d%06x", now.UnixMilli(), now.UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("%d%s", now.UnixMilli(), hex.EncodeToString(b))
}
