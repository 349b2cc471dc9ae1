package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"lionfish/api/internal/config"
	"lionfish/api/internal/models"
	"lionfish/api/internal/provisioning"
	"lionfish/api/internal/repository"
)

// Reconciler is the out-of-band writer of job status. Every minute it asks
// the provisioning API about each pending job's machine and advances the row;
// pending jobs with no answer past the sweep horizon are marked failed.
type Reconciler struct {
	cron        *cron.Cron
	store       repository.Store
	provisioner provisioning.Provisioner
	sweepAfter  time.Duration
	log         zerolog.Logger
}

func NewReconciler(
	store repository.Store,
	provisioner provisioning.Provisioner,
	cfg config.ReconcilerConfig,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		cron:        cron.New(cron.WithSeconds()),
		store:       store,
		provisioner: provisioner,
		sweepAfter:  cfg.SweepAfter,
		log:         log,
	}
}

func (r *Reconciler) Start() error {
	if _, err := r.cron.AddFunc("0 * * * * *", r.runOnce); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop waits for a running reconcile pass to drain, bounded at 5s.
func (r *Reconciler) Stop() {
	select {
	case <-r.cron.Stop().Done():
	case <-time.After(5 * time.Second):
		r.log.Warn().Msg("reconciler stop timed out")
	}
}

func (r *Reconciler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.reconcile(ctx); err != nil {
		r.log.Error().Err(err).Msg("job reconciliation failed")
	}
}

func (r *Reconciler) reconcile(ctx context.Context) error {
	pending, err := r.store.Jobs().ListPending(ctx)
	if err != nil {
		return err
	}

	for _, job := range pending {
		if job.MachineID == nil {
			// The machine was never confirmed; give up after the horizon.
			if time.Since(job.CreatedAt) > r.sweepAfter {
				r.transition(ctx, job, models.JobStatusFailed)
			}
			continue
		}

		machine, err := r.provisioner.GetMachine(ctx, job.UserID, *job.MachineID)
		if err != nil {
			r.log.Warn().Err(err).Str("job_id", job.ID).Msg("machine lookup failed")
			if time.Since(job.CreatedAt) > r.sweepAfter {
				r.transition(ctx, job, models.JobStatusFailed)
			}
			continue
		}

		switch machine.State {
		case "stopped", "destroyed":
			r.transition(ctx, job, models.JobStatusCompleted)
		case "failed":
			r.transition(ctx, job, models.JobStatusFailed)
		}
	}
	return nil
}

func (r *Reconciler) transition(ctx context.Context, job models.Job, status models.JobStatus) {
	if err := r.store.Jobs().UpdateStatus(ctx, job.ID, status); err != nil {
		r.log.Error().Err(err).Str("job_id", job.ID).Msg("job status update failed")
		return
	}
	r.log.Info().
		Str("job_id", job.ID).
		Str("status", string(status)).
		Msg("job reconciled")
}
