package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocserv-tools/ocserv-panel/internal/apperrors"
)

func TestResultSingleFieldError(t *testing.T) {
	r := New().CheckUsername("username", "")

	require.True(t, r.HasErrors())
	err := r.ToError()
	require.NotNil(t, err)
	assert.Equal(t, apperrors.CodeValidation, err.Code)
	assert.Equal(t, "username", err.Field)
}

func TestResultMultipleErrorsCombine(t *testing.T) {
	r := New().
		CheckUsername("username", "bad name!").
		CheckPassword("password", "ab", 8)

	err := r.ToError()
	require.NotNil(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, err.Code)
	assert.Contains(t, err.Message, "username")
	assert.Contains(t, err.Message, "password")
}

func TestResultValid(t *testing.T) {
	r := New().
		CheckUsername("username", "alice.vpn-01").
		CheckPassword("password", "long-enough-secret", 8).
		CheckTrafficType("traffic_type", "monthly")

	assert.False(t, r.HasErrors())
	assert.Nil(t, r.ToError())
}

func TestCheckTrafficType(t *testing.T) {
	assert.False(t, New().CheckTrafficType("traffic_type", "").HasErrors())
	assert.False(t, New().CheckTrafficType("traffic_type", "free").HasErrors())
	assert.True(t, New().CheckTrafficType("traffic_type", "weekly").HasErrors())
}
