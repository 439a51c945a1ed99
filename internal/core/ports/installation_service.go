package ports

import (
	"context"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

// InstallationInput is a raw record payload before normalization. Numeric
// fields arrive as text so "5.5" and 5.5 are handled alike.
type InstallationInput struct {
	HomeownerName string
	Address       string
	City          string
	State         string
	Zip           string
	SystemSize    string
	InstallDate   *string
	Notes         string
	Latitude      string
	Longitude     string
}

// BulkResult is returned by a successful batch import.
type BulkResult struct {
	Added         int
	Installations []domain.Installation
}

// InstallationService defines the record use cases.
type InstallationService interface {
	List(ctx context.Context, caller domain.Identity) ([]domain.Installation, error)
	Get(ctx context.Context, caller domain.Identity, id string) (*domain.Installation, error)
	Create(ctx context.Context, caller domain.Identity, in InstallationInput) (*domain.Installation, error)
	// CreateBulk is all-or-nothing. A non-empty importKey makes the batch
	// idempotent per caller when an import guard is configured.
	CreateBulk(ctx context.Context, caller domain.Identity, in []InstallationInput, importKey string) (*BulkResult, error)
	Update(ctx context.Context, caller domain.Identity, id string, in InstallationInput) (*domain.Installation, error)
	Delete(ctx context.Context, caller domain.Identity, id string) error
}
