package services

import (
	"errors"
	"fmt"

	"github.com/prof-it/school-service/internal/repositories"
)

// Sentinel errors returned by services. Handlers map these onto HTTP
// status codes; services never import net/http.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrConflict           = errors.New("resource conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyApproved    = errors.New("user already approved")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidView        = errors.New("invalid availability view")
	ErrUnavailable        = errors.New("dependency unavailable")
)

// lookupFailure maps a repository read error onto the service error
// vocabulary: a missing record becomes ErrNotFound, anything else is a
// storage failure and keeps its cause.
func lookupFailure(err error, subject string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", ErrNotFound, subject)
	}
	return fmt.Errorf("failed to load %s: %w", subject, err)
}
