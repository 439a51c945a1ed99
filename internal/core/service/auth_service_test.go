package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

type stubUserRepo struct {
	users []domain.User
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) (*domain.User, error) {
	r.users = append(r.users, user)
	return &user, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), r.users...), nil
}

func newTestAuthService(t *testing.T, repo *stubUserRepo, creds ...StaticCredential) *AuthService {
	t.Helper()
	static, err := NewStaticUsers(creds, bcrypt.MinCost, zerolog.Nop())
	if err != nil {
		t.Fatalf("static users: %v", err)
	}
	return NewAuthService(repo, static, AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost})
}

func TestAuthService_CreateUser_Success(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestAuthService(t, repo)

	id, err := svc.CreateUser(context.Background(), "  alice  ", "pass1234")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if id.Username != "alice" || id.ID == "" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(repo.users))
	}
	stored := repo.users[0]
	if stored.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.CreatedAt == "" {
		t.Fatalf("expected createdAt")
	}
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	svc := newTestAuthService(t, &stubUserRepo{})

	var ve *domain.ValidationError
	if _, err := svc.CreateUser(context.Background(), "", "pass1234"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for missing username, got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), "bob", "short"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for short password, got %v", err)
	} else if ve.Errors[0] != "Password must be at least 8 characters long" {
		t.Fatalf("unexpected message: %v", ve.Errors)
	}
	if _, err := svc.CreateUser(context.Background(), "bob", strings.Repeat("a", 73)); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for long password, got %v", err)
	} else if ve.Errors[0] != "Password must be at most 72 bytes long" {
		t.Fatalf("unexpected message: %v", ve.Errors)
	}
	if _, err := svc.CreateUser(context.Background(), "carol", strings.Repeat("a", 72)); err != nil {
		t.Fatalf("72-byte password should be accepted, got %v", err)
	}
}

func TestAuthService_CreateUser_Duplicate(t *testing.T) {
	svc := newTestAuthService(t, &stubUserRepo{})

	if _, err := svc.CreateUser(context.Background(), "bob", "password1"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), "BOB", "password2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_CreateUser_StaticNameTaken(t *testing.T) {
	svc := newTestAuthService(t, &stubUserRepo{}, StaticCredential{Index: 1, Username: "Ops", Password: "envpass"})

	if _, err := svc.CreateUser(context.Background(), "ops", "password1"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newTestAuthService(t, &stubUserRepo{})

	if _, err := svc.CreateUser(context.Background(), "carol", "s3cretpass"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	token, id, err := svc.Login(context.Background(), "CAROL", "s3cretpass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if id == nil || id.Username != "carol" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["username"] != "carol" || claims["id"] != id.ID {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthService_Login_StaticUserWithEmptyFile(t *testing.T) {
	svc := newTestAuthService(t, &stubUserRepo{}, StaticCredential{Index: 1, Username: "installer", Password: "sunshine"})

	token, id, err := svc.Login(context.Background(), "installer", "sunshine")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || id.ID != "env-1" {
		t.Fatalf("unexpected result: %q %+v", token, id)
	}
}

func TestAuthService_Login_StaticTakesPrecedence(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("filepass"), bcrypt.MinCost)
	repo := &stubUserRepo{users: []domain.User{{ID: "file-1", Username: "dana", PasswordHash: string(hash)}}}
	svc := newTestAuthService(t, repo, StaticCredential{Index: 3, Username: "Dana", Password: "envpass"})

	if _, _, err := svc.Login(context.Background(), "dana", "filepass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected file password to be shadowed, got %v", err)
	}
	_, id, err := svc.Login(context.Background(), "dana", "envpass")
	if err != nil {
		t.Fatalf("static login failed: %v", err)
	}
	if id.ID != "env-3" {
		t.Fatalf("expected static identity, got %+v", id)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	svc := newTestAuthService(t, &stubUserRepo{})
	_, _ = svc.CreateUser(context.Background(), "dave", "goodpass1")

	_, _, wrongPass := svc.Login(context.Background(), "dave", "badpass12")
	_, _, unknown := svc.Login(context.Background(), "ghost", "whatever1")
	if wrongPass != domain.ErrInvalidCredentials || unknown != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials twice, got %v / %v", wrongPass, unknown)
	}
}

func TestAuthService_IssueToken_NoSecret(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{}, nil, AuthConfig{})
	if _, err := svc.IssueToken(domain.Identity{ID: "1", Username: "x"}); err != domain.ErrAuthNotConfigured {
		t.Fatalf("expected ErrAuthNotConfigured, got %v", err)
	}
	if _, err := svc.Authenticate("anything"); err != domain.ErrAuthNotConfigured {
		t.Fatalf("expected ErrAuthNotConfigured, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	svc := newTestAuthService(t, &stubUserRepo{})
	token, err := svc.IssueToken(domain.Identity{ID: "u1", Username: "erin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.ID != "u1" || id.Username != "erin" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	other := NewAuthService(&stubUserRepo{}, nil, AuthConfig{JWTSecret: "other"})
	if _, err := other.Authenticate(token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	svc := newTestAuthService(t, &stubUserRepo{})
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.IssueToken(domain.Identity{ID: "u1", Username: "erin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.Authenticate(token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_ListUsers(t *testing.T) {
	repo := &stubUserRepo{users: []domain.User{{ID: "f1", Username: "frank", PasswordHash: "x"}}}
	svc := newTestAuthService(t, repo, StaticCredential{Index: 1, Username: "ops", Password: "pw"})

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if !users[0].ManagedByEnv || users[0].Username != "ops" {
		t.Fatalf("expected static user first, got %+v", users[0])
	}
	if users[1].ManagedByEnv || users[1].Username != "frank" {
		t.Fatalf("unexpected file user: %+v", users[1])
	}
}
