package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/solarops/installation-tracker/internal/core/domain"
	"github.com/solarops/installation-tracker/internal/core/ports"
)

const (
	defaultTokenTTL   = 12 * time.Hour
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and refuses longer input.
	maxPasswordBytes = 72
)

// AuthConfig tunes token issuance and hashing.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService checks credentials against static and file-backed users and
// issues/validates bearer tokens.
type AuthService struct {
	repo      ports.UserRepository
	static    *StaticUsers
	jwtSecret string
	tokenTTL  time.Duration
	cost      int
	now       func() time.Time
}

func NewAuthService(repo ports.UserRepository, static *StaticUsers, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:      repo,
		static:    static,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
		cost:      cfg.BcryptCost,
		now:       time.Now,
	}
}

// findUser prefers static users over file users with the same name.
func (s *AuthService) findUser(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := s.static.Lookup(username); ok {
		return &u, nil
	}
	return s.repo.FindByUsername(ctx, username)
}

// VerifyCredentials never tells unknown users apart from wrong passwords.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (*domain.Identity, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.findUser(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	id := user.Identity()
	return &id, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.Identity, error) {
	id, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(*id)
	if err != nil {
		return "", nil, err
	}
	return token, id, nil
}

// IssueToken signs an HS256 token carrying id and username.
func (s *AuthService) IssueToken(id domain.Identity) (string, error) {
	if s.jwtSecret == "" {
		return "", domain.ErrAuthNotConfigured
	}

	now := s.now()
	claims := jwt.MapClaims{
		"id":       id.ID,
		"username": id.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) Configured() bool {
	return s.jwtSecret != ""
}

// Authenticate validates a bearer token. Bad signatures and expired tokens
// both yield domain.ErrInvalidToken.
func (s *AuthService) Authenticate(token string) (*domain.Identity, error) {
	if s.jwtSecret == "" {
		return nil, domain.ErrAuthNotConfigured
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" && username == "" {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Identity{ID: id, Username: username}, nil
}

// CreateUser adds a file-backed user. Names already used by a static or
// file user are rejected with domain.ErrUserExists.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*domain.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &domain.ValidationError{Errors: []string{"Username and password are required"}}
	}
	if len(password) < minPasswordLength {
		return nil, &domain.ValidationError{Errors: []string{"Password must be at least 8 characters long"}}
	}
	if len(password) > maxPasswordBytes {
		return nil, &domain.ValidationError{Errors: []string{"Password must be at most 72 bytes long"}}
	}

	if _, err := s.findUser(ctx, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    domain.Timestamp(s.now()),
	})
	if err != nil {
		return nil, err
	}

	id := created.Identity()
	return &id, nil
}

// ListUsers returns static users first, then file users, without hashes.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	fileUsers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserSummary, 0, s.static.Len()+len(fileUsers))
	for _, u := range s.static.List() {
		out = append(out, domain.UserSummary{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt, ManagedByEnv: true})
	}
	for _, u := range fileUsers {
		out = append(out, domain.UserSummary{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt})
	}
	return out, nil
}
