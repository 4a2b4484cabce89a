package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"github.com/templui/passreset/internal/ctxkeys"
	"github.com/templui/passreset/internal/errutil"
	"github.com/templui/passreset/internal/metrics"
	"github.com/templui/passreset/internal/model"
	"github.com/templui/passreset/internal/repository"
	"github.com/templui/passreset/internal/validation"
)

// PasswordResetService issues, validates and consumes password reset tokens.
//
// A token is Active from creation until it is purged, either because its
// ten minute window closed (detected when it is next presented) or because a
// password reset with it succeeded. A purged id is never valid again.
type PasswordResetService struct {
	tokenRepository repository.TokenRepository
	accounts        AccountDirectory
	mailer          Mailer
	transactor      repository.Transactor
	metrics         *metrics.Metrics
	appURL          string
	appName         string
}

func NewPasswordResetService(
	tokenRepository repository.TokenRepository,
	accounts AccountDirectory,
	mailer Mailer,
	transactor repository.Transactor,
	m *metrics.Metrics,
	appURL string,
	appName string,
) (*PasswordResetService, error) {
	if tokenRepository == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("token repository is required")
	}
	if accounts == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("account directory is required")
	}
	if mailer == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("mailer is required")
	}
	if transactor == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("transactor is required")
	}

	return &PasswordResetService{
		tokenRepository: tokenRepository,
		accounts:        accounts,
		mailer:          mailer,
		transactor:      transactor,
		metrics:         m,
		appURL:          strings.TrimRight(appURL, "/"),
		appName:         appName,
	}, nil
}

// RequestReset creates a token for the account behind identifier and sends
// the reset link exactly once.
//
// Unknown accounts yield ErrAccountNotFound; callers that want enumeration
// resistance have to hide it themselves. When delivery fails the message is
// still returned along with an ErrDelivery error, and the token stays valid.
func (s *PasswordResetService) RequestReset(ctx context.Context, identifier string) (*model.DeliveryMessage, error) {
	user, err := s.accounts.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.metrics.RecordRequest("account_not_found")
			slog.Info("password reset requested for unknown account", "identifier", identifier)
			return nil, ErrAccountNotFound
		}
		s.metrics.RecordRequest("error")
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "FindByIdentifier").
			Wrap(err)
	}

	token, err := s.tokenRepository.Create(ctx, user.ID)
	if err != nil {
		s.metrics.RecordRequest("storage_error")
		return nil, oops.Code("RESET_TOKEN_STORAGE_FAILED").
			With("operation", "Create").
			With("user_id", user.ID).
			Wrap(err)
	}

	msg := s.buildMessage(user, token)

	err = s.mailer.Send(ctx, msg)
	if err != nil {
		s.metrics.RecordRequest("delivery_error")
		err = oops.Code("RESET_DELIVERY_FAILED").
			With("operation", "Send").
			With("user_id", user.ID).
			Wrap(fmt.Errorf("%w: %w", ErrDelivery, err))
		errutil.LogError(slog.Default(), "failed to send password reset email", err)
		return msg, err
	}

	s.metrics.RecordRequest("sent")
	slog.Info("password reset link sent", "user_id", user.ID)
	return msg, nil
}

// ValidateToken returns the token when it exists and is inside its window.
// An expired token is purged before ErrTokenExpired is returned. A valid
// token is left untouched.
func (s *PasswordResetService) ValidateToken(ctx context.Context, id string) (*model.ResetToken, error) {
	token, err := s.validate(ctx, id)
	switch {
	case err == nil:
		s.metrics.RecordValidation("valid")
	case errors.Is(err, ErrTokenNotFound):
		s.metrics.RecordValidation("not_found")
	case errors.Is(err, ErrTokenExpired):
		s.metrics.RecordValidation("expired")
	default:
		s.metrics.RecordValidation("error")
	}
	return token, err
}

func (s *PasswordResetService) validate(ctx context.Context, id string) (*model.ResetToken, error) {
	token, err := s.tokenRepository.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "ByID").
			Wrap(err)
	}

	if token.Consumed {
		s.purge(ctx, token, "consumed")
		return nil, ErrTokenNotFound
	}

	if token.IsExpired(ctxkeys.Now(ctx)) {
		s.purge(ctx, token, "expired")
		return nil, ErrTokenExpired
	}

	return token, nil
}

// purge removes a token found unusable. Failures are logged, never returned,
// so the caller still sees the expired/not found outcome.
func (s *PasswordResetService) purge(ctx context.Context, token *model.ResetToken, reason string) {
	err := s.tokenRepository.Delete(ctx, token.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) {
			slog.Warn("failed to purge reset token", "error", err, "reason", reason, "user_id", token.UserID)
		}
		return
	}
	s.metrics.RecordPurged(1)
}

// ResetPassword sets a new password with a valid token and purges the token.
//
// A rejected password (mismatch or policy) returns a *ValidationError and
// leaves the token usable. Deleting the token and updating the credential
// happen in one transaction: when two requests race on the same token exactly
// one succeeds and the other gets ErrTokenNotFound, and a failed credential
// update rolls the deletion back.
func (s *PasswordResetService) ResetPassword(ctx context.Context, id, newPassword, confirmPassword string) error {
	err := s.resetPassword(ctx, id, newPassword, confirmPassword)
	s.metrics.RecordReset(resetOutcome(err))
	return err
}

func (s *PasswordResetService) resetPassword(ctx context.Context, id, newPassword, confirmPassword string) error {
	token, err := s.ValidateToken(ctx, id)
	if err != nil {
		return err
	}

	reasons := validation.ValidatePasswordReset(newPassword, confirmPassword)
	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}

	expired := false
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		// The delete is the claim: only one transaction can remove the row.
		err := s.tokenRepository.Delete(ctx, token.ID)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return ErrTokenNotFound
			}
			return oops.Code("RESET_CONSUME_FAILED").
				With("operation", "Delete").
				With("user_id", token.UserID).
				Wrap(err)
		}

		// created_at is immutable, so the copy read during validation is current.
		if token.IsExpired(ctxkeys.Now(ctx)) {
			expired = true
			return nil
		}

		err = s.accounts.SetCredential(ctx, token.UserID, newPassword)
		if err != nil {
			return oops.Code("RESET_CREDENTIAL_FAILED").
				With("operation", "SetCredential").
				With("user_id", token.UserID).
				Wrap(fmt.Errorf("%w: %w", ErrCredentialUpdate, err))
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			errutil.LogError(slog.Default(), "password reset failed", err)
		}
		return err
	}

	if expired {
		s.metrics.RecordPurged(1)
		return ErrTokenExpired
	}

	slog.Info("password reset completed", "user_id", token.UserID)
	return nil
}

// PurgeExpired deletes every token whose window has closed.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokenRepository.DeleteExpired(ctx, ctxkeys.Now(ctx))
	if err != nil {
		return 0, oops.Code("RESET_CLEANUP_FAILED").
			With("operation", "DeleteExpired").
			Wrap(err)
	}
	s.metrics.RecordPurged(n)
	return n, nil
}

func (s *PasswordResetService) ResetURL(tokenID string) string {
	return fmt.Sprintf("%s/reset-password/%s/", s.appURL, tokenID)
}

func (s *PasswordResetService) buildMessage(user *model.User, token *model.ResetToken) *model.DeliveryMessage {
	resetURL := s.ResetURL(token.ID)
	subject, body := passwordResetEmailTemplate(resetURL, s.appName)

	return &model.DeliveryMessage{
		To:      user.Email,
		Subject: subject,
		Body:    body,
		URL:     resetURL,
		TokenID: token.ID,
	}
}

func resetOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrTokenNotFound):
		return "not_found"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrCredentialUpdate):
		return "credential_error"
	default:
		return "error"
	}
}
