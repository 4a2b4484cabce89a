package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// MaxEmailLength is the RFC 5321 limit on a forward path.
const MaxEmailLength = 254

var (
	ErrEmailRequired = errors.New("email address is required")
	ErrEmailTooLong  = errors.New("email address is too long (max 254 characters)")
	ErrEmailInvalid  = errors.New("invalid email address format")
)

// ValidateEmail accepts a bare RFC 5322 address. Display-name forms such as
// "Jane <jane@example.com>" are rejected; accounts store the address only.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailInvalid
	}

	return nil
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmailIdentifier reports whether a login identifier names an email
// address rather than a username. Usernames never contain "@".
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}
