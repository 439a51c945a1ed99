package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

const (
	defaultTimeout = 30 * time.Second
	loginPath      = "/api/auth/login"
	bulkPath       = "/api/installations/bulk"
)

// Client talks to a running tracker API.
type Client struct {
	httpClient *resty.Client
}

// NewClient points a client at baseURL (scheme and host, no /api suffix).
func NewClient(baseURL string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client}
}

// APIError is a non-2xx reply. Failures is set when a bulk upload was
// rejected row by row.
type APIError struct {
	Status   int
	Message  string
	Failures []domain.BulkFailure
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error    string               `json:"error"`
	Failures []domain.BulkFailure `json:"failures"`
}

type loginBody struct {
	Token string `json:"token"`
}

// UploadResult is the server's reply to an accepted batch.
type UploadResult struct {
	Added         int                   `json:"added"`
	Installations []domain.Installation `json:"installations"`
}

// SetToken makes later requests carry a bearer token.
func (c *Client) SetToken(token string) {
	c.httpClient.SetAuthToken(token)
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginBody
	var apiErr errorBody
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		SetError(&apiErr).
		Post(loginPath)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	if resp.IsError() {
		return "", &APIError{Status: resp.StatusCode(), Message: apiErr.Error}
	}
	if out.Token == "" {
		return "", errors.New("login response has no token")
	}

	c.SetToken(out.Token)
	return out.Token, nil
}

// Upload posts p as one batch. A non-empty importKey is sent as the
// Idempotency-Key header.
func (c *Client) Upload(ctx context.Context, p Payload, importKey string) (*UploadResult, error) {
	var out UploadResult
	var apiErr errorBody
	req := c.httpClient.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&out).
		SetError(&apiErr)
	if importKey != "" {
		req.SetHeader("Idempotency-Key", importKey)
	}

	resp, err := req.Post(bulkPath)
	if err != nil {
		return nil, fmt.Errorf("bulk upload request: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Message: apiErr.Error, Failures: apiErr.Failures}
	}
	return &out, nil
}
