package repository_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/templui/passreset/internal/model"
	"github.com/templui/passreset/internal/repository"
)

// createTestUser inserts an account the reset tokens can point at.
func createTestUser(ctx context.Context, t *testing.T, db *sqlx.DB) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(gofakeit.Email()),
		Username:     gofakeit.Username() + gofakeit.DigitN(4),
		PasswordHash: "testhash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, user))
	return user
}
