package ports

import (
	"context"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.Identity, error)
	CreateUser(ctx context.Context, username, password string) (*domain.Identity, error)
	ListUsers(ctx context.Context) ([]domain.UserSummary, error)
}

// TokenAuthenticator validates bearer tokens for the auth middleware.
type TokenAuthenticator interface {
	// Configured reports whether a signing secret is available.
	Configured() bool
	Authenticate(token string) (*domain.Identity, error)
}
