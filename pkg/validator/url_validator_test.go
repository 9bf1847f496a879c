package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{"https", "https://example.com/a", ""},
		{"http with query", "http://example.com/path?q=1&r=2", ""},
		{"ftp", "ftp://files.example.com/pub", ""},
		{"port and fragment", "https://example.com:8443/x#section", ""},
		{"empty", "", "URL cannot be empty"},
		{"whitespace", "   ", "URL cannot be empty"},
		{"no scheme", "not-a-valid-url", "Invalid URL format"},
		{"javascript", "javascript:alert(1)", "Unsupported URL scheme"},
		{"mailto", "mailto:someone@example.com", "Unsupported URL scheme"},
		{"too long", "https://example.com/" + strings.Repeat("a", MaxURLLength), "URL too long (max 2048 characters)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			if assert.True(t, errors.As(err, &vErr)) {
				assert.Equal(t, "url", vErr.Field)
				assert.Equal(t, tt.wantMsg, vErr.Message)
			}
		})
	}
}
