package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/passreset/internal/service"
	"github.com/templui/passreset/internal/validation"
)

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.accounts.Register(ctx, "  Jane@Example.COM ", "jane", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "jane", user.Username)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, user.HasPassword())

	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantErr  error
	}{
		{"duplicate email", "jane@example.com", "jane2", "secret1", service.ErrEmailAlreadyExists},
		{"duplicate username", "other@example.com", "jane", "secret1", service.ErrUsernameAlreadyExists},
		{"invalid email", "not-an-email", "bob", "secret1", service.ErrInvalidEmail},
		{"short password", "bob@example.com", "bob", "abc", validation.ErrPasswordTooShort},
		{"long password", "bob@example.com", "bob", strings.Repeat("x", 73), validation.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.Register(ctx, tt.email, tt.username, tt.password)
			require.ErrorIs(t, err, tt.wantErr)
			if errors.Is(tt.wantErr, validation.ErrPasswordTooShort) {
				require.ErrorIs(t, err, service.ErrInvalidPassword)
			}
		})
	}

	t.Run("username with @ is rejected", func(t *testing.T) {
		_, err := f.accounts.Register(ctx, "carl@example.com", "carl@home", "secret1")
		require.ErrorIs(t, err, service.ErrInvalidUsername)
	})
}

func TestAccountService_FindByIdentifier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, _ := f.register(ctx, t)

	tests := []struct {
		name       string
		identifier string
		wantErr    error
	}{
		{"email", user.Email, nil},
		{"email upper case", strings.ToUpper(user.Email), nil},
		{"username padded", " " + user.Username + "\t", nil},
		{"unknown email", "missing@example.com", service.ErrAccountNotFound},
		{"unknown username", "missing-user", service.ErrAccountNotFound},
		{"blank", "   ", service.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.accounts.FindByIdentifier(ctx, tt.identifier)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestAccountService_SetCredential(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, oldPassword := f.register(ctx, t)

	require.NoError(t, f.accounts.SetCredential(ctx, user.ID, "brand-new"))

	_, err := f.accounts.Authenticate(ctx, user.Username, "brand-new")
	require.NoError(t, err)
	_, err = f.accounts.Authenticate(ctx, user.Username, oldPassword)
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	err = f.accounts.SetCredential(ctx, "00000000-0000-4000-8000-000000000000", "brand-new")
	require.Error(t, err)
}
