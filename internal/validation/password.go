package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit; longer input is rejected, not truncated.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must not exceed %d bytes", MaxPasswordBytes)
)

// ValidatePassword checks the length policy of a single password.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	return nil
}

// ValidatePasswordReset returns every reason the pair is rejected, or nil.
// All reasons are collected so a form can show them together.
func ValidatePasswordReset(password, confirmPassword string) []error {
	var reasons []error

	if password != confirmPassword {
		reasons = append(reasons, ErrPasswordMismatch)
	}

	err := ValidatePassword(password)
	if err != nil {
		reasons = append(reasons, err)
	}

	return reasons
}
