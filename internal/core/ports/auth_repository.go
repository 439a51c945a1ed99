package ports

import (
	"context"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

// UserRepository persists file-backed users.
type UserRepository interface {
	// FindByUsername matches case-insensitively and returns
	// domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
