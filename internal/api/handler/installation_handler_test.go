package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/solarops/installation-tracker/internal/api/middleware"
	"github.com/solarops/installation-tracker/internal/core/domain"
	"github.com/solarops/installation-tracker/internal/core/ports"
)

type stubInstallationService struct {
	listFn   func(ctx context.Context, caller domain.Identity) ([]domain.Installation, error)
	getFn    func(ctx context.Context, caller domain.Identity, id string) (*domain.Installation, error)
	createFn func(ctx context.Context, caller domain.Identity, in ports.InstallationInput) (*domain.Installation, error)
	bulkFn   func(ctx context.Context, caller domain.Identity, in []ports.InstallationInput, key string) (*ports.BulkResult, error)
	updateFn func(ctx context.Context, caller domain.Identity, id string, in ports.InstallationInput) (*domain.Installation, error)
	deleteFn func(ctx context.Context, caller domain.Identity, id string) error
}

func (s *stubInstallationService) List(ctx context.Context, caller domain.Identity) ([]domain.Installation, error) {
	return s.listFn(ctx, caller)
}

func (s *stubInstallationService) Get(ctx context.Context, caller domain.Identity, id string) (*domain.Installation, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubInstallationService) Create(ctx context.Context, caller domain.Identity, in ports.InstallationInput) (*domain.Installation, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubInstallationService) CreateBulk(ctx context.Context, caller domain.Identity, in []ports.InstallationInput, key string) (*ports.BulkResult, error) {
	return s.bulkFn(ctx, caller, in, key)
}

func (s *stubInstallationService) Update(ctx context.Context, caller domain.Identity, id string, in ports.InstallationInput) (*domain.Installation, error) {
	return s.updateFn(ctx, caller, id, in)
}

func (s *stubInstallationService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	return s.deleteFn(ctx, caller, id)
}

var alice = domain.Identity{ID: "u1", Username: "alice"}

func authedContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONContext(method, target, body)
	c.Set(middleware.IdentityKey, alice)
	return c, rec
}

func TestInstallationHandler_RequiresIdentity(t *testing.T) {
	handler := NewInstallationHandler(&stubInstallationService{})

	c, _ := newJSONContext(http.MethodGet, "/api/installations", "")
	expectHTTPError(t, handler.List(c), http.StatusUnauthorized, "")
}

func TestInstallationHandler_List_EmptyIsArray(t *testing.T) {
	stub := &stubInstallationService{
		listFn: func(ctx context.Context, caller domain.Identity) ([]domain.Installation, error) {
			if caller != alice {
				t.Fatalf("unexpected caller: %+v", caller)
			}
			return nil, nil
		},
	}
	handler := NewInstallationHandler(stub)

	c, rec := authedContext(http.MethodGet, "/api/installations", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestInstallationHandler_Create_LenientTypes(t *testing.T) {
	var got ports.InstallationInput
	stub := &stubInstallationService{
		createFn: func(ctx context.Context, caller domain.Identity, in ports.InstallationInput) (*domain.Installation, error) {
			got = in
			return &domain.Installation{ID: "1", HomeownerName: "Jo"}, nil
		},
	}
	handler := NewInstallationHandler(stub)

	body := `{"homeownerName":"Jo","address":"1 Main","city":"Chicago","state":"il","zip":60601,` +
		`"systemSize":5.5,"installDate":null,"latitude":"41.88","longitude":-87.63}`
	c, rec := authedContext(http.MethodPost, "/api/installations", body)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if got.SystemSize != "5.5" || got.Zip != "60601" || got.Latitude != "41.88" || got.Longitude != "-87.63" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.InstallDate != nil {
		t.Fatalf("null installDate should stay nil, got %q", *got.InstallDate)
	}
}

func TestInstallationHandler_Create_RejectsObjectField(t *testing.T) {
	handler := NewInstallationHandler(&stubInstallationService{})

	c, _ := authedContext(http.MethodPost, "/api/installations", `{"homeownerName":{"first":"Jo"}}`)
	expectHTTPError(t, handler.Create(c), http.StatusBadRequest, "Invalid request body")
}

func TestInstallationHandler_Create_ValidationPassesThrough(t *testing.T) {
	stub := &stubInstallationService{
		createFn: func(ctx context.Context, caller domain.Identity, in ports.InstallationInput) (*domain.Installation, error) {
			return nil, &domain.ValidationError{Errors: []string{"System size must be a positive number"}}
		},
	}
	handler := NewInstallationHandler(stub)

	c, _ := authedContext(http.MethodPost, "/api/installations", `{"systemSize":"-3"}`)
	var ve *domain.ValidationError
	if err := handler.Create(c); !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %v", err)
	}
}

func TestInstallationHandler_CreateBulk(t *testing.T) {
	var gotKey string
	var gotRows int
	stub := &stubInstallationService{
		bulkFn: func(ctx context.Context, caller domain.Identity, in []ports.InstallationInput, key string) (*ports.BulkResult, error) {
			gotKey, gotRows = key, len(in)
			return &ports.BulkResult{Added: 2, Installations: []domain.Installation{{ID: "a"}, {ID: "b"}}}, nil
		},
	}
	handler := NewInstallationHandler(stub)

	c, rec := authedContext(http.MethodPost, "/api/installations/bulk", `{"installations":[{"homeownerName":"A"},{"homeownerName":"B"}]}`)
	c.Request().Header.Set(HeaderIdempotencyKey, "batch-1")
	if err := handler.CreateBulk(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotKey != "batch-1" || gotRows != 2 {
		t.Fatalf("unexpected call: key=%q rows=%d", gotKey, gotRows)
	}

	var resp bulkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Added != 2 || len(resp.Installations) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestInstallationHandler_CreateBulk_MissingArrayReachesService(t *testing.T) {
	stub := &stubInstallationService{
		bulkFn: func(ctx context.Context, caller domain.Identity, in []ports.InstallationInput, key string) (*ports.BulkResult, error) {
			if len(in) != 0 {
				t.Fatalf("expected no rows, got %d", len(in))
			}
			return nil, &domain.ValidationError{Errors: []string{"installations must be a non-empty array"}}
		},
	}
	handler := NewInstallationHandler(stub)

	c, _ := authedContext(http.MethodPost, "/api/installations/bulk", `{}`)
	var ve *domain.ValidationError
	if err := handler.CreateBulk(c); !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %v", err)
	}
}

func TestInstallationHandler_UpdateAndDelete(t *testing.T) {
	stub := &stubInstallationService{
		updateFn: func(ctx context.Context, caller domain.Identity, id string, in ports.InstallationInput) (*domain.Installation, error) {
			if id != "42" {
				t.Fatalf("unexpected id %q", id)
			}
			return &domain.Installation{ID: id, HomeownerName: in.HomeownerName}, nil
		},
		deleteFn: func(ctx context.Context, caller domain.Identity, id string) error {
			if id == "missing" {
				return domain.ErrInstallationNotFound
			}
			return nil
		},
	}
	handler := NewInstallationHandler(stub)

	c, rec := authedContext(http.MethodPut, "/api/installations/42", `{"homeownerName":"Jo"}`)
	c.SetParamNames("id")
	c.SetParamValues("42")
	if err := handler.Update(c); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = authedContext(http.MethodDelete, "/api/installations/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"Installation deleted successfully"}` {
		t.Fatalf("unexpected body: %s", got)
	}

	c, _ = authedContext(http.MethodDelete, "/api/installations/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := handler.Delete(c); !errors.Is(err, domain.ErrInstallationNotFound) {
		t.Fatalf("expected ErrInstallationNotFound, got %v", err)
	}
}

func TestFlexText(t *testing.T) {
	tests := []struct {
		in      string
		want    flexText
		wantErr bool
	}{
		{in: `"5.5"`, want: flexText{Value: "5.5", Set: true}},
		{in: `5.5`, want: flexText{Value: "5.5", Set: true}},
		{in: `-3`, want: flexText{Value: "-3", Set: true}},
		{in: `""`, want: flexText{Value: "", Set: true}},
		{in: `null`, want: flexText{}},
		{in: `true`, wantErr: true},
		{in: `[1]`, wantErr: true},
	}

	for _, tc := range tests {
		var f flexText
		err := json.Unmarshal([]byte(tc.in), &f)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.in, err)
		}
		if f != tc.want {
			t.Fatalf("%s: got %+v, want %+v", tc.in, f, tc.want)
		}
	}
}
