package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wastetrack/internal/database"
	"wastetrack/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory
	// database, so pin everything to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func TestSessionRotate_SingleUse(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()

	jti1 := uuid.NewString()
	sess, err := repo.Create(ctx, 1, jti1, time.Now().Add(time.Hour))
	require.NoError(t, err)

	jti2 := uuid.NewString()
	require.NoError(t, repo.Rotate(ctx, sess.ID, jti1, jti2))

	live, err := repo.GetLive(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, jti2, live.CurrentRefreshTokenID)

	// Presenting the spent jti again burns the whole session.
	err = repo.Rotate(ctx, sess.ID, jti1, uuid.NewString())
	assert.ErrorIs(t, err, ErrRefreshReused)

	_, err = repo.GetLive(ctx, sess.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRotate_ConcurrentSingleWinner(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()

	jti := uuid.NewString()
	sess, err := repo.Create(ctx, 1, jti, time.Now().Add(time.Hour))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = repo.Rotate(ctx, sess.ID, jti, uuid.NewString())
		}(i)
	}
	wg.Wait()

	var wins, reuses int
	for _, res := range results {
		switch {
		case res == nil:
			wins++
		case errors.Is(res, ErrRefreshReused):
			reuses++
		default:
			t.Fatalf("unexpected rotation result: %v", res)
		}
	}
	assert.Equal(t, 1, wins, "exactly one rotation may win")
	assert.Equal(t, 1, reuses, "the loser must be flagged as reuse")
}

func TestSessionRotate_ExpiredSession(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()

	jti := uuid.NewString()
	sess, err := repo.Create(ctx, 2, jti, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	err = repo.Rotate(ctx, sess.ID, jti, uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = repo.GetLive(ctx, sess.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRotate_MissingSession(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))

	err := repo.Rotate(context.Background(), uuid.NewString(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionGetLive_DeletesExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	sess, err := repo.Create(ctx, 3, uuid.NewString(), time.Now().Add(-time.Second))
	require.NoError(t, err)

	_, err = repo.GetLive(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)

	var count int64
	require.NoError(t, db.Model(&domain.Session{}).Where("id = ?", sess.ID).Count(&count).Error)
	assert.Zero(t, count, "expired session row must be deleted on read")
}

func TestSessionInvalidateAllForUser(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, 7, uuid.NewString(), time.Now().Add(time.Hour))
		require.NoError(t, err)
	}
	other, err := repo.Create(ctx, 8, uuid.NewString(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	n, err := repo.InvalidateAllForUser(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = repo.GetLive(ctx, other.ID)
	assert.NoError(t, err, "sessions of other users stay alive")
}

func TestSessionDeleteExpired(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, uuid.NewString(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	live, err := repo.Create(ctx, 1, uuid.NewString(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.GetLive(ctx, live.ID)
	assert.NoError(t, err)
}
