package ports

import (
	"context"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

// InstallationRepository persists installation records. Every call is scoped
// to the partition owned by the given identity (the shared pool when the
// identity is anonymous or per-user storage is disabled).
type InstallationRepository interface {
	List(ctx context.Context, owner domain.Identity) ([]domain.Installation, error)
	FindByID(ctx context.Context, owner domain.Identity, id string) (*domain.Installation, error)
	Create(ctx context.Context, owner domain.Identity, inst domain.Installation) (*domain.Installation, error)
	// CreateMany appends all records with a single write.
	CreateMany(ctx context.Context, owner domain.Identity, insts []domain.Installation) ([]domain.Installation, error)
	// Update replaces the editable fields of the record with id. Returns
	// domain.ErrInstallationNotFound when absent.
	Update(ctx context.Context, owner domain.Identity, id string, next domain.Installation) (*domain.Installation, error)
	Delete(ctx context.Context, owner domain.Identity, id string) error
}
