package validator

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxURLLength bounds accepted URLs.
const MaxURLLength = 2048

var (
	validate = validator.New()

	// allowedSchemes lists permitted URL schemes
	allowedSchemes = map[string]bool{
		"http":  true,
		"https": true,
		"ftp":   true,
	}
)

// ValidateURL checks if a string is a syntactically valid absolute URL
// with a permitted scheme and a host.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return &ValidationError{Field: "url", Message: "URL cannot be empty"}
	}

	if len(rawURL) > MaxURLLength {
		return &ValidationError{Field: "url", Message: "URL too long (max 2048 characters)"}
	}

	if err := validate.Var(rawURL, "url"); err != nil {
		return &ValidationError{Field: "url", Message: "Invalid URL format"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "Invalid URL structure"}
	}

	if !allowedSchemes[strings.ToLower(parsed.Scheme)] {
		return &ValidationError{Field: "url", Message: "Unsupported URL scheme"}
	}

	if parsed.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must contain a host"}
	}

	return nil
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
