// Package services provides business logic for the panel API.
package services

import (
	"fmt"

	"github.com/ocserv-tools/ocserv-panel/internal/apperrors"
)

// Re-exported sentinels so service code can wrap without importing apperrors everywhere.
var (
	ErrNotFound      = apperrors.ErrNotFound
	ErrDuplicate     = apperrors.ErrDuplicate
	ErrInvalidInput  = apperrors.ErrInvalidInput
	ErrDatabaseError = apperrors.ErrDatabaseError
	ErrOcservError   = apperrors.ErrOcservError
)

// MapRepoError translates repository errors to application-level errors,
// preserving the operation context.
func MapRepoError(op string, err error) error {
	return apperrors.TranslateRepoError(op, err)
}

// WrapOcservError wraps a control tool failure with operation context.
func WrapOcservError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrOcservError, err)
}

// WrapDBError wraps database errors without mapping, preserving the original error.
func WrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrDatabaseError, err)
}
