package auth

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLocalPart(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{
			name:     "simple email",
			email:    "hassan@example.org",
			expected: "hassan",
		},
		{
			name:     "email with dots",
			email:    "john.doe@example.com",
			expected: "john_doe",
		},
		{
			name:     "email with numbers",
			email:    "user123@test.org",
			expected: "user123",
		},
		{
			name:     "email with plus alias",
			email:    "test+alias@domain.com",
			expected: "test_alias",
		},
		{
			name:     "short local part gets domain appended",
			email:    "ab@company.com",
			expected: "ab_company",
		},
	}

	pattern := regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeLocalPart(tt.email)
			assert.Equal(t, tt.expected, result)
			assert.Regexp(t, pattern, result)
		})
	}
}

func TestSanitizeLocalPartTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcdefgh"
	}
	result := sanitizeLocalPart(long + "@example.com")
	assert.LessOrEqual(t, len(result), 100)
}
