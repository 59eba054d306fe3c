// Package validation provides structured validation for the panel API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ocserv-tools/ocserv-panel/internal/apperrors"
	"github.com/ocserv-tools/ocserv-panel/internal/models"
)

// Result holds validation results with multiple field errors.
type Result struct {
	Valid  bool
	Errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// New creates a new valid Result.
func New() *Result {
	return &Result{Valid: true}
}

// AddError adds a field error and marks the result as invalid.
func (r *Result) AddError(field, message string) *Result {
	r.Valid = false
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
	return r
}

// AddErrorf adds a formatted field error.
func (r *Result) AddErrorf(field, format string, args ...interface{}) *Result {
	return r.AddError(field, fmt.Sprintf(format, args...))
}

// Merge combines another Result into this one.
func (r *Result) Merge(other *Result) *Result {
	if other == nil {
		return r
	}
	for _, e := range other.Errors {
		r.AddError(e.Field, e.Message)
	}
	return r
}

// ToError converts the Result to an apperrors.Error if invalid.
// Returns nil if the result is valid.
func (r *Result) ToError() *apperrors.Error {
	if r.Valid || len(r.Errors) == 0 {
		return nil
	}
	if len(r.Errors) == 1 {
		return apperrors.InvalidField(r.Errors[0].Field, r.Errors[0].Message)
	}
	// Multiple errors - combine messages
	var messages []string
	for _, e := range r.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return apperrors.InvalidInput(strings.Join(messages, "; "))
}

// HasErrors returns true if there are validation errors.
func (r *Result) HasErrors() bool {
	return !r.Valid || len(r.Errors) > 0
}

// FirstError returns the first error message, or empty string.
func (r *Result) FirstError() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// usernamePattern matches usernames ocpasswd accepts without quoting trouble.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// CheckUsername validates a VPN or panel username.
func (r *Result) CheckUsername(field, username string) *Result {
	switch {
	case username == "":
		return r.AddError(field, "username is required")
	case len(username) > 64:
		return r.AddError(field, "username must be at most 64 characters")
	case !usernamePattern.MatchString(username):
		return r.AddError(field, "username may only contain letters, digits, dot, dash and underscore")
	}
	return r
}

// CheckPassword validates a password against the minimum length policy.
func (r *Result) CheckPassword(field, password string, minLength int) *Result {
	if minLength <= 0 {
		minLength = 8
	}
	if len(password) < minLength {
		return r.AddErrorf(field, "password must be at least %d characters", minLength)
	}
	return r
}

// CheckTrafficType validates a VPN traffic accounting mode.
func (r *Result) CheckTrafficType(field, trafficType string) *Result {
	if trafficType != "" && !models.ValidTrafficType(trafficType) {
		return r.AddErrorf(field, "traffic type must be one of %s, %s, %s",
			models.TrafficFree, models.TrafficMonthly, models.TrafficTotal)
	}
	return r
}
