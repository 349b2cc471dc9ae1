package repository

import (
	"context"
	"errors"

	"lionfish/api/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrImageNotFound = errors.New("image not found")
	ErrJobNotFound   = errors.New("job not found")
)

type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type ImageRepository interface {
	Create(ctx context.Context, image models.Image) error
	GetByID(ctx context.Context, id string) (models.Image, error)
	ListByUser(ctx context.Context, userID string) ([]models.Image, error)
}

type ImageVersionRepository interface {
	Create(ctx context.Context, version models.ImageVersion) error
	ListByImage(ctx context.Context, imageID string) ([]models.ImageVersion, error)
}

type JobRepository interface {
	Create(ctx context.Context, job models.Job) error
	ListByUser(ctx context.Context, userID string) ([]models.Job, error)
	ListPending(ctx context.Context) ([]models.Job, error)
	SetMachine(ctx context.Context, id string, machineID string) error
	UpdateStatus(ctx context.Context, id string, status models.JobStatus) error
}

// Store exposes the per-entity repositories plus transaction scoping. The
// services depend only on this interface; the postgres implementation lives in
// this package, the in-memory one backs tests.
type Store interface {
	Users() UserRepository
	Images() ImageRepository
	ImageVersions() ImageVersionRepository
	Jobs() JobRepository
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a transaction handle. Repositories obtained from it read and write
// inside the transaction; nothing is visible outside until Commit. Rollback
// after Commit is a no-op, so `defer tx.Rollback(ctx)` is safe on every path.
type Tx interface {
	Users() UserRepository
	Images() ImageRepository
	ImageVersions() ImageVersionRepository
	Jobs() JobRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
