package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

type stubAuthenticator struct {
	configured bool
	identity   *domain.Identity
	err        error
	gotToken   string
}

func (s *stubAuthenticator) Configured() bool { return s.configured }

func (s *stubAuthenticator) Authenticate(token string) (*domain.Identity, error) {
	s.gotToken = token
	return s.identity, s.err
}

func runAuth(t *testing.T, authn *stubAuthenticator, header string) (bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := Auth(authn)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	authn := &stubAuthenticator{configured: true, identity: &domain.Identity{ID: "u1", Username: "alice"}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(authn)(func(c echo.Context) error {
		called = true
		id, ok := Identity(c)
		if !ok {
			t.Fatalf("identity not set")
		}
		if id.ID != "u1" || id.Username != "alice" {
			t.Fatalf("unexpected identity: %+v", id)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if authn.gotToken != "abc.def.ghi" {
		t.Fatalf("unexpected token passed: %q", authn.gotToken)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		authn   *stubAuthenticator
		header  string
		code    int
		message string
	}{
		{
			name:    "missing header",
			authn:   &stubAuthenticator{configured: true},
			code:    http.StatusUnauthorized,
			message: "Authorization header missing",
		},
		{
			name:    "no token part",
			authn:   &stubAuthenticator{configured: true},
			header:  "Bearer",
			code:    http.StatusUnauthorized,
			message: "Invalid Authorization header format",
		},
		{
			name:    "bad token",
			authn:   &stubAuthenticator{configured: true, err: domain.ErrInvalidToken},
			header:  "Bearer not-a-token",
			code:    http.StatusUnauthorized,
			message: "Invalid or expired token",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called, err := runAuth(t, tc.authn, tc.header)
			if called {
				t.Fatalf("should not reach next")
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("expected *echo.HTTPError, got %v", err)
			}
			if he.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, he.Code)
			}
			if he.Message != tc.message {
				t.Fatalf("expected %q, got %v", tc.message, he.Message)
			}
		})
	}
}

func TestAuthMiddleware_NotConfigured(t *testing.T) {
	for _, header := range []string{"", "Bearer whatever"} {
		called, err := runAuth(t, &stubAuthenticator{configured: false}, header)
		if called {
			t.Fatalf("should not reach next")
		}
		if !errors.Is(err, domain.ErrAuthNotConfigured) {
			t.Fatalf("expected ErrAuthNotConfigured, got %v", err)
		}
	}
}
