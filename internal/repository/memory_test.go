package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lionfish/api/internal/models"
)

func TestMemoryStoreTxCommitPublishes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.Users().Create(ctx, models.User{ID: "u1", Email: "a@example.com"}))

	// Not visible until commit.
	_, err = store.Users().GetByID(ctx, "u1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, tx.Commit(ctx))

	user, err := store.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestMemoryStoreTxRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.Jobs().Create(ctx, models.Job{ID: "j1", UserID: "u1", Status: models.JobStatusPending, ImageVersionID: "v1"}))
	require.NoError(t, tx.Rollback(ctx))

	jobs, err := store.Jobs().ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestMemoryStoreTxReadsOwnWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	image := models.Image{ID: "i1", UserID: "u1", Nickname: "demo", ImageURL: "registry.example/demo"}
	require.NoError(t, tx.Images().Create(ctx, image))

	got, err := tx.Images().GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Nickname)
}

func TestMemoryStoreDuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Users().Create(ctx, models.User{ID: "u1", Email: "a@example.com"}))
	err := store.Users().Create(ctx, models.User{ID: "u2", Email: "a@example.com"})
	assert.Error(t, err)
}

func TestMemoryStoreJobStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Jobs().Create(ctx, models.Job{ID: "j1", UserID: "u1", Status: models.JobStatusPending, ImageVersionID: "v1"}))

	pending, err := store.Jobs().ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, store.Jobs().UpdateStatus(ctx, "j1", models.JobStatusCompleted))

	pending, err = store.Jobs().ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, store.Jobs().UpdateStatus(ctx, "missing", models.JobStatusFailed), ErrJobNotFound)
}
