package service

import (
	"errors"
	"strings"

	"github.com/templui/passreset/internal/repository"
)

var (
	ErrAccountNotFound  = errors.New("no account is associated with this identifier")
	ErrTokenNotFound    = errors.New("invalid password reset link")
	ErrTokenExpired     = errors.New("this password reset link has expired")
	ErrTokenStorage     = repository.ErrTokenStorage
	ErrDelivery         = errors.New("failed to deliver password reset email")
	ErrValidationFailed = errors.New("password validation failed")
	ErrCredentialUpdate = errors.New("failed to update password")
)

// ValidationError lists every reason a new password was rejected.
// errors.Is(err, ErrValidationFailed) matches it.
type ValidationError struct {
	Reasons []error
}

func (e *ValidationError) Error() string {
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Messages(), "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		msgs = append(msgs, r.Error())
	}
	return msgs
}
