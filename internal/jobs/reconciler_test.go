package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lionfish/api/internal/config"
	"lionfish/api/internal/models"
	"lionfish/api/internal/provisioning"
	"lionfish/api/internal/repository"
)

func newReconcilerFixture() (*Reconciler, *repository.MemoryStore, *provisioning.Fake) {
	store := repository.NewMemoryStore()
	fake := provisioning.NewFake()
	reconciler := NewReconciler(store, fake, config.ReconcilerConfig{
		Enabled:    true,
		SweepAfter: time.Hour,
	}, zerolog.Nop())
	return reconciler, store, fake
}

func pendingJob(t *testing.T, store *repository.MemoryStore, fake *provisioning.Fake, userID string) models.Job {
	t.Helper()
	ctx := context.Background()

	machine, err := fake.CreateMachine(ctx, userID, "shared", "none", "registry.example/demo:latest")
	require.NoError(t, err)

	job := models.Job{
		ID:             "job-" + machine.ID,
		UserID:         userID,
		Status:         models.JobStatusPending,
		ImageVersionID: "v1",
		MachineID:      &machine.ID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, store.Jobs().Create(ctx, job))
	return job
}

func TestReconcileCompletesStoppedMachines(t *testing.T) {
	ctx := context.Background()
	reconciler, store, fake := newReconcilerFixture()

	job := pendingJob(t, store, fake, "user-1")
	fake.SetMachineState(job.UserID, *job.MachineID, "stopped")

	require.NoError(t, reconciler.reconcile(ctx))

	jobs, err := store.Jobs().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusCompleted, jobs[0].Status)
}

func TestReconcileFailsFailedMachines(t *testing.T) {
	ctx := context.Background()
	reconciler, store, fake := newReconcilerFixture()

	job := pendingJob(t, store, fake, "user-1")
	fake.SetMachineState(job.UserID, *job.MachineID, "failed")

	require.NoError(t, reconciler.reconcile(ctx))

	jobs, err := store.Jobs().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusFailed, jobs[0].Status)
}

func TestReconcileLeavesRunningMachinesPending(t *testing.T) {
	ctx := context.Background()
	reconciler, store, fake := newReconcilerFixture()

	pendingJob(t, store, fake, "user-1")

	require.NoError(t, reconciler.reconcile(ctx))

	jobs, err := store.Jobs().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusPending, jobs[0].Status)
}

func TestReconcileSweepsStaleJobsWithoutMachines(t *testing.T) {
	ctx := context.Background()
	reconciler, store, _ := newReconcilerFixture()

	stale := models.Job{
		ID:             "job-stale",
		UserID:         "user-1",
		Status:         models.JobStatusPending,
		ImageVersionID: "v1",
		CreatedAt:      time.Now().Add(-2 * time.Hour),
		UpdatedAt:      time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, store.Jobs().Create(ctx, stale))

	fresh := models.Job{
		ID:             "job-fresh",
		UserID:         "user-1",
		Status:         models.JobStatusPending,
		ImageVersionID: "v1",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, store.Jobs().Create(ctx, fresh))

	require.NoError(t, reconciler.reconcile(ctx))

	jobs, err := store.Jobs().ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	byID := map[string]models.JobStatus{}
	for _, job := range jobs {
		byID[job.ID] = job.Status
	}
	assert.Equal(t, models.JobStatusFailed, byID["job-stale"])
	assert.Equal(t, models.JobStatusPending, byID["job-fresh"])
}
