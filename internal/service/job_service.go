package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"lionfish/api/internal/config"
	"lionfish/api/internal/ids"
	"lionfish/api/internal/models"
	"lionfish/api/internal/provisioning"
	"lionfish/api/internal/repository"
)

type JobService struct {
	store       repository.Store
	provisioner provisioning.Provisioner
	cfg         *config.AppConfig
	log         zerolog.Logger
}

func NewJobService(
	store repository.Store,
	provisioner provisioning.Provisioner,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *JobService {
	return &JobService{
		store:       store,
		provisioner: provisioner,
		cfg:         cfg,
		log:         log,
	}
}

// Create runs the job workflow: ownership check, version resolution, pending
// job row, then the remote machine call — all inside one transaction. A
// provisioning failure rolls the row back, so a committed job implies the
// machine request succeeded. The remote call itself cannot be undone; a crash
// between its success and the commit leaves a machine with no job row, which
// is a known limitation.
func (s *JobService) Create(ctx context.Context, user models.User, imageID, imageVersionID, cpuKind, gpuKind string) (models.Job, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return models.Job{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	image, err := tx.Images().GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return models.Job{}, ErrNotFound
		}
		return models.Job{}, err
	}

	if image.UserID != user.ID {
		s.log.Warn().
			Str("user_id", user.ID).
			Str("image_id", imageID).
			Msg("job creation for foreign image")
		return models.Job{}, ErrUnauthorized
	}

	versions, err := tx.ImageVersions().ListByImage(ctx, imageID)
	if err != nil {
		return models.Job{}, err
	}
	var version *models.ImageVersion
	for i := range versions {
		if versions[i].ID == imageVersionID {
			version = &versions[i]
			break
		}
	}
	if version == nil {
		return models.Job{}, ErrNotFound
	}

	now := time.Now()
	job := models.Job{
		ID:             ids.New(),
		UserID:         user.ID,
		Status:         models.JobStatusPending,
		ImageVersionID: version.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.Jobs().Create(ctx, job); err != nil {
		return models.Job{}, err
	}

	machineCtx, cancel := context.WithTimeout(ctx, s.cfg.Provisioner.Timeout)
	defer cancel()
	machine, err := s.provisioner.CreateMachine(
		machineCtx,
		user.ID,
		cpuKind,
		gpuKind,
		imageRef(image, *version),
	)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("create machine failed")
		return models.Job{}, err
	}

	if err := tx.Jobs().SetMachine(ctx, job.ID, machine.ID); err != nil {
		return models.Job{}, err
	}
	job.MachineID = &machine.ID

	if err := tx.Commit(ctx); err != nil {
		return models.Job{}, fmt.Errorf("commit job: %w", err)
	}
	return job, nil
}

func (s *JobService) ListForUser(ctx context.Context, userID string) ([]models.Job, error) {
	return s.store.Jobs().ListByUser(ctx, userID)
}

func imageRef(image models.Image, version models.ImageVersion) string {
	return fmt.Sprintf("%s:%s", image.ImageURL, version.VersionNumber)
}
