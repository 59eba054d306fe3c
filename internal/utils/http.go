package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// GetIDParam extracts and validates a numeric :id path parameter.
// Sends a 400 problem response and returns false when the parameter is invalid.
func GetIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		ProblemBadRequest(c, fmt.Sprintf("Invalid ID: %s", raw))
		return 0, false
	}
	return id, true
}

// GetNameParam extracts a non-empty :name path parameter.
// Sends a 400 problem response and returns false when the parameter is missing.
func GetNameParam(c *gin.Context) (string, bool) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		ProblemBadRequest(c, "Missing name parameter")
		return "", false
	}
	return name, true
}

// BindAndValidate binds the JSON request body into req and sends a problem
// response on failure. Returns false when the handler should stop.
func BindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if fieldErrors := formatValidationErrors(err); len(fieldErrors) > 0 {
			ProblemValidation(c, "Request validation failed", fieldErrors)
		} else {
			ProblemBadRequest(c, "Invalid request body")
		}
		return false
	}
	return true
}

// formatValidationErrors converts validator errors into field-level messages.
func formatValidationErrors(err error) []ValidationError {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	out := make([]ValidationError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		case "alphanum":
			message = fmt.Sprintf("%s must contain only letters and digits", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		out = append(out, ValidationError{Field: field, Message: message})
	}
	return out
}
