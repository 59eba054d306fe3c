package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/apperrors"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
)

// Success sends a 200 response with a JSON body.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the created resource.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated sends a 200 response with a pagination envelope.
func Paginated(c *gin.Context, result PageResult) {
	c.JSON(http.StatusOK, result)
}

// ProblemNotFound sends a 404 problem response for a missing resource.
func ProblemNotFound(c *gin.Context, resource string) {
	problem := NewNotFoundProblem(resource, c.Request.URL.Path)
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemDuplicate sends a 409 problem response for a conflicting resource.
func ProblemDuplicate(c *gin.Context, resource string) {
	problem := NewDuplicateProblem(resource, c.Request.URL.Path)
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemBadRequest sends a 400 problem response.
func ProblemBadRequest(c *gin.Context, detail string) {
	problem := NewBadRequestProblem(detail, c.Request.URL.Path)
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemValidation sends a 422 problem response with field errors.
func ProblemValidation(c *gin.Context, detail string, fieldErrors []ValidationError) {
	problem := NewValidationProblem(detail, c.Request.URL.Path, fieldErrors)
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemUnauthorized sends a 401 problem response.
func ProblemUnauthorized(c *gin.Context, detail string) {
	problem := NewAuthenticationProblem(detail, c.Request.URL.Path)
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemForbidden sends a 403 problem response.
func ProblemForbidden(c *gin.Context, detail string) {
	problem := NewProblemDetail(
		ProblemTypeInsufficientPermissions,
		"Insufficient Permissions",
		403,
		detail,
		c.Request.URL.Path,
	)
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemInternal sends a 500 problem response and logs the underlying error.
func ProblemInternal(c *gin.Context, err error) {
	logger.Error("internal server error: path=%s error=%v", c.Request.URL.Path, err)
	problem := NewInternalServerProblem("An unexpected error occurred", c.Request.URL.Path)
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemOcserv sends a 502 problem response for occtl/ocpasswd failures.
func ProblemOcserv(c *gin.Context, detail string) {
	problem := NewOcservControlProblem(detail, c.Request.URL.Path)
	if traceID := getTraceID(c); traceID != "" {
		problem.WithTraceID(traceID)
	}
	SendProblem(c, problem)
}

// ProblemFromError maps an application error to the matching problem response.
func ProblemFromError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.CodeNotFound:
			ProblemNotFound(c, appErr.Message)
		case apperrors.CodeDuplicate:
			ProblemDuplicate(c, appErr.Message)
		case apperrors.CodeInvalidInput, apperrors.CodeValidation:
			ProblemBadRequest(c, appErr.Message)
		case apperrors.CodeUnauthorized:
			ProblemUnauthorized(c, appErr.Message)
		case apperrors.CodeForbidden:
			ProblemForbidden(c, appErr.Message)
		case apperrors.CodeOcserv:
			ProblemOcserv(c, appErr.Message)
		default:
			ProblemInternal(c, err)
		}
		return
	}
	ProblemInternal(c, err)
}
