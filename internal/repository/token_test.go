package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/passreset/internal/ctxkeys"
	"github.com/templui/passreset/internal/db/dbtest"
	"github.com/templui/passreset/internal/repository"
)

func TestTokenRepository_Create(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewTokenRepository(db)
	user := createTestUser(ctx, t, db)

	t.Run("stores an unconsumed token stamped with now", func(t *testing.T) {
		token, err := repo.Create(ctx, user.ID)
		require.NoError(t, err)

		_, err = uuid.Parse(token.ID)
		require.NoError(t, err)

		stored, err := repo.ByID(ctx, token.ID)
		require.NoError(t, err)
		assert.Equal(t, token.ID, stored.ID)
		assert.Equal(t, user.ID, stored.UserID)
		assert.False(t, stored.Consumed)
		assert.WithinDuration(t, time.Now(), stored.CreatedAt, 2*time.Second)
	})

	t.Run("uses the request time from context", func(t *testing.T) {
		at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		token, err := repo.Create(ctxkeys.WithRequestTime(ctx, at), user.ID)
		require.NoError(t, err)

		stored, err := repo.ByID(ctx, token.ID)
		require.NoError(t, err)
		assert.True(t, at.Equal(stored.CreatedAt), "created_at = %s", stored.CreatedAt)
	})

	t.Run("ids are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 50 {
			token, err := repo.Create(ctx, user.ID)
			require.NoError(t, err)
			_, dup := seen[token.ID]
			require.False(t, dup)
			seen[token.ID] = struct{}{}
		}
	})

	t.Run("fails for unknown account", func(t *testing.T) {
		_, err := repo.Create(ctx, uuid.New().String())
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrTokenStorage)
	})
}

func TestTokenRepository_UniqueIDConstraint(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	user := createTestUser(ctx, t, db)

	id := uuid.New().String()
	insert := `INSERT INTO reset_tokens (id, user_id, consumed, created_at) VALUES ($1, $2, $3, $4)`

	_, err := db.Exec(insert, id, user.ID, false, time.Now().UTC())
	require.NoError(t, err)

	_, err = db.Exec(insert, id, user.ID, false, time.Now().UTC())
	require.Error(t, err, "database must reject a second token with the same id")
}

func TestTokenRepository_ByID(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewTokenRepository(db)

	tests := []struct {
		name string
		id   string
	}{
		{name: "unknown id", id: uuid.New().String()},
		{name: "empty id", id: ""},
		{name: "malformed id", id: "../../etc/passwd"},
		{name: "sql in id", id: "' OR 1=1 --"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := repo.ByID(ctx, tt.id)
			assert.Nil(t, token)
			assert.ErrorIs(t, err, repository.ErrTokenNotFound)
		})
	}
}

func TestTokenRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewTokenRepository(db)
	user := createTestUser(ctx, t, db)

	token, err := repo.Create(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, token.ID))

	_, err = repo.ByID(ctx, token.ID)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)

	err = repo.Delete(ctx, token.ID)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestTokenRepository_DeleteConcurrent(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewTokenRepository(db)
	user := createTestUser(ctx, t, db)

	token, err := repo.Create(ctx, user.ID)
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		deleted   int
		notFound  int
		otherErrs []error
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Delete(ctx, token.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				deleted++
			case errors.Is(err, repository.ErrTokenNotFound):
				notFound++
			default:
				otherErrs = append(otherErrs, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, otherErrs)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, workers-1, notFound)
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := repository.NewTokenRepository(db)
	user := createTestUser(ctx, t, db)

	now := time.Now().UTC()
	stale, err := repo.Create(ctxkeys.WithRequestTime(ctx, now.Add(-11*time.Minute)), user.ID)
	require.NoError(t, err)
	fresh, err := repo.Create(ctxkeys.WithRequestTime(ctx, now.Add(-9*time.Minute)), user.ID)
	require.NoError(t, err)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.ByID(ctx, stale.ID)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)

	_, err = repo.ByID(ctx, fresh.ID)
	assert.NoError(t, err)
}
