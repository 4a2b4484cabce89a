package validation

import (
	"errors"
	"strings"
)

// ValidateUsername validates an account username
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return errors.New("username is required")
	}

	if len(trimmed) > 150 {
		return errors.New("username is too long (max 150 characters)")
	}

	if strings.Contains(trimmed, "@") {
		return errors.New("username must not contain @")
	}

	return nil
}
