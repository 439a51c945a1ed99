package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// TimestampLayout is the ISO-8601 form used for createdAt/updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in TimestampLayout (UTC, millisecond precision).
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Kilowatts is a system size. Older data files stored it as free text
// ("5.5", "5 kW"); those decode from their leading number, or 0 when there
// is none, so one odd row never makes a whole partition unreadable.
type Kilowatts float64

func (k *Kilowatts) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, _ := LeadingDecimal(s)
		*k = Kilowatts(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*k = Kilowatts(v)
	return nil
}

// Installation is one solar installation record as persisted in a partition file.
type Installation struct {
	ID            string    `json:"id"`
	HomeownerName string    `json:"homeownerName"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Zip           string    `json:"zip"`
	SystemSize    Kilowatts `json:"systemSize"`
	InstallDate   *string   `json:"installDate"`
	Notes         string    `json:"notes"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt,omitempty"`
	OwnerID       *string   `json:"ownerId"`
	OwnerUsername *string   `json:"ownerUsername"`
}

// Territory resolves the utility territory for display. The result is never stored.
func (i Installation) Territory() Territory {
	return ResolveTerritory(i.State, i.City)
}

// OwnedBy reports whether the record was created by the given identity,
// matching on either id or username.
func (i Installation) OwnedBy(id Identity) bool {
	if i.OwnerID != nil && id.ID != "" && *i.OwnerID == id.ID {
		return true
	}
	return i.OwnerUsername != nil && id.Username != "" && *i.OwnerUsername == id.Username
}

// ApplyUpdate replaces every editable field with the values from next.
// id, createdAt and the owner fields are kept from the stored record.
func (i *Installation) ApplyUpdate(next Installation, now time.Time) {
	id, createdAt := i.ID, i.CreatedAt
	ownerID, ownerUsername := i.OwnerID, i.OwnerUsername

	*i = next
	i.ID = id
	i.CreatedAt = createdAt
	i.OwnerID = ownerID
	i.OwnerUsername = ownerUsername
	i.UpdatedAt = Timestamp(now)
}
