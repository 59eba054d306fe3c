package utils

import (
	"database/sql"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// HandleDBError processes common database errors and sends appropriate RFC 9457 problem responses.
// Returns true if an error was handled (response sent), false if no error or unhandled.
// Use this for consistent error handling in handlers that query the database directly.
func HandleDBError(c *gin.Context, err error, resource string) bool {
	if err == nil {
		return false
	}

	logger.Error("database error for %s: %v", resource, err)

	errStr := err.Error()

	switch {
	case err == sql.ErrNoRows:
		ProblemNotFound(c, resource)

	case strings.Contains(errStr, "Duplicate entry"):
		ProblemDuplicate(c, resource)

	case strings.Contains(errStr, "foreign key constraint fails"):
		// Foreign key constraint on INSERT/UPDATE (referenced record doesn't exist)
		ProblemBadRequest(c, "Referenced "+resource+" does not exist")

	case strings.Contains(errStr, "Data too long"):
		ProblemValidation(c, "Data exceeds maximum length for "+resource, nil)

	case strings.Contains(errStr, "Incorrect"):
		// Handles "Incorrect integer value", "Incorrect datetime value", etc.
		ProblemValidation(c, "Invalid data format for "+resource, nil)

	case strings.Contains(errStr, "Out of range"):
		ProblemValidation(c, "Value out of range for "+resource, nil)

	default:
		ProblemInternal(c, err)
	}

	return true
}
