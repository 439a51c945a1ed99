package domain

import (
	"errors"
	"strings"
)

var (
	ErrInstallationNotFound  = errors.New("installation not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrUserExists            = errors.New("username already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrAuthNotConfigured     = errors.New("jwt secret is not configured")
	ErrAdminKeyNotConfigured = errors.New("admin api key is not configured")
	ErrDuplicateImport       = errors.New("bulk import already processed")
)

// ValidationError carries the human-readable problems found in one payload.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// BulkFailure lists the problems of one rejected batch row.
type BulkFailure struct {
	Index  int      `json:"index"`
	Errors []string `json:"errors"`
}

// BulkValidationError rejects a whole batch when any row is invalid.
type BulkValidationError struct {
	Failures []BulkFailure
}

func (e *BulkValidationError) Error() string {
	return "one or more installations failed validation"
}
