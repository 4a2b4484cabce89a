package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/passreset/internal/ctxkeys"
	"github.com/templui/passreset/internal/model"
)

var (
	ErrTokenNotFound  = errors.New("token not found")
	ErrTokenStorage   = errors.New("token storage failed")
	ErrDuplicateToken = errors.New("token id already exists")
)

// TokenRepository is the persistent set of outstanding reset tokens.
type TokenRepository interface {
	Create(ctx context.Context, userID string) (*model.ResetToken, error)
	ByID(ctx context.Context, id string) (*model.ResetToken, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Create allocates a fresh random id and stores an unconsumed token for userID.
// created_at is the request time carried by ctx.
func (r *tokenRepository) Create(ctx context.Context, userID string) (*model.ResetToken, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("%w: generate id: %w", ErrTokenStorage, err)
	}

	token := &model.ResetToken{
		ID:        id.String(),
		UserID:    userID,
		Consumed:  false,
		CreatedAt: ctxkeys.Now(ctx).UTC(),
	}

	query := `
		INSERT INTO reset_tokens (id, user_id, consumed, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = conn(ctx, r.db).ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Consumed,
		token.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %w", ErrTokenStorage, ErrDuplicateToken)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenStorage, err)
	}

	return token, nil
}

// ByID returns ErrTokenNotFound for ids that are not well-formed UUIDs
// without touching the database.
func (r *tokenRepository) ByID(ctx context.Context, id string) (*model.ResetToken, error) {
	id, ok := normalizeID(id)
	if !ok {
		return nil, ErrTokenNotFound
	}

	token := &model.ResetToken{}
	query := `SELECT id, user_id, consumed, created_at FROM reset_tokens WHERE id = $1`

	err := sqlx.GetContext(ctx, conn(ctx, r.db), token, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// Delete removes the token in a single statement. Exactly one of several
// concurrent callers sees a deleted row; the rest get ErrTokenNotFound.
func (r *tokenRepository) Delete(ctx context.Context, id string) error {
	id, ok := normalizeID(id)
	if !ok {
		return ErrTokenNotFound
	}

	query := `DELETE FROM reset_tokens WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// DeleteExpired removes every token whose validity window closed before now.
// Validation already purges expired tokens lazily; this is an optional sweep
// for the cleanup command.
func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-model.ResetTokenTTL).UTC()
	query := `DELETE FROM reset_tokens WHERE created_at < $1 OR consumed = $2`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, cutoff, true)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return result.RowsAffected()
}

func normalizeID(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// isUniqueViolation works for both SQLite and PostgreSQL.
func isUniqueViolation(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}
