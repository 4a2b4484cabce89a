package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/passreset/internal/errutil"
	"github.com/templui/passreset/internal/service"
)

const resetLinkSent = "password reset link sent"

type PasswordResetHandler struct {
	resetService   *service.PasswordResetService
	concealUnknown bool
}

// NewPasswordResetHandler returns the reset endpoints. With concealUnknown set,
// a request for an unknown account gets the same response as a sent link.
func NewPasswordResetHandler(resetService *service.PasswordResetService, concealUnknown bool) *PasswordResetHandler {
	return &PasswordResetHandler{
		resetService:   resetService,
		concealUnknown: concealUnknown,
	}
}

// ForgotPassword issues a reset token for the account named by "identifier"
// (or "email" / "username") and mails the link.
func (h *PasswordResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := firstNonEmpty(fields["identifier"], fields["email"], fields["username"])
	if identifier == "" {
		respondError(w, http.StatusBadRequest, "email or username is required")
		return
	}

	_, err = h.resetService.RequestReset(r.Context(), identifier)
	switch {
	case err == nil:
		respondMessage(w, http.StatusAccepted, resetLinkSent)
	case errors.Is(err, service.ErrAccountNotFound):
		if h.concealUnknown {
			respondMessage(w, http.StatusAccepted, resetLinkSent)
			return
		}
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDelivery):
		respondError(w, http.StatusBadGateway, service.ErrDelivery.Error())
	default:
		errutil.LogError(slog.Default(), "password reset request failed", err)
		respondError(w, http.StatusInternalServerError, "an error occurred, please try again")
	}
}

// ValidateToken reports whether the link is still usable.
func (h *PasswordResetHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.resetService.ValidateToken(r.Context(), r.PathValue("token"))
	if err != nil {
		h.respondTokenError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"expires_at": token.ExpiresAt(),
	})
}

// ResetPassword sets a new password from "password" and "confirm_password".
func (h *PasswordResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.resetService.ResetPassword(r.Context(), r.PathValue("token"), fields["password"], fields["confirm_password"])
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":   service.ErrValidationFailed.Error(),
				"details": verr.Messages(),
			})
			return
		}
		h.respondTokenError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "password reset successful")
}

func (h *PasswordResetHandler) respondTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTokenNotFound):
		respondError(w, http.StatusNotFound, service.ErrTokenNotFound.Error())
	case errors.Is(err, service.ErrTokenExpired):
		respondError(w, http.StatusGone, service.ErrTokenExpired.Error())
	default:
		// Service already logged it with its code.
		respondError(w, http.StatusInternalServerError, "an error occurred, please try again")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
