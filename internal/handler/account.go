package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/passreset/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accountService.Register(r.Context(), fields["email"], fields["username"], fields["password"])
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, map[string]any{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		})
	case errors.Is(err, service.ErrEmailAlreadyExists), errors.Is(err, service.ErrUsernameAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidPassword):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("registration failed", "error", err)
		respondError(w, http.StatusInternalServerError, "an error occurred, please try again")
	}
}
