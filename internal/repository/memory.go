package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"lionfish/api/internal/models"
)

// MemoryStore implements Store entirely in memory. Tests and local runs use
// it in place of postgres. Transactions operate on a copy of the data and
// publish it on Commit, which is enough rollback fidelity for the workflows
// covered here.
type MemoryStore struct {
	mu   sync.Mutex
	data memData
}

type memData struct {
	users    []models.User
	images   []models.Image
	versions []models.ImageVersion
	jobs     []models.Job
}

func (d memData) clone() memData {
	return memData{
		users:    append([]models.User(nil), d.users...),
		images:   append([]models.Image(nil), d.images...),
		versions: append([]models.ImageVersion(nil), d.versions...),
		jobs:     append([]models.Job(nil), d.jobs...),
	}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

type memAccess interface {
	with(fn func(d *memData) error) error
}

func (s *MemoryStore) with(fn func(d *memData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (s *MemoryStore) Users() UserRepository { return &memoryUserRepository{src: s} }

func (s *MemoryStore) Images() ImageRepository { return &memoryImageRepository{src: s} }

func (s *MemoryStore) ImageVersions() ImageVersionRepository {
	return &memoryImageVersionRepository{src: s}
}

func (s *MemoryStore) Jobs() JobRepository { return &memoryJobRepository{src: s} }

func (s *MemoryStore) Begin(context.Context) (Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memoryTx{store: s, data: s.data.clone()}, nil
}

type memoryTx struct {
	store *MemoryStore
	data  memData
	done  bool
}

func (t *memoryTx) with(fn func(d *memData) error) error {
	return fn(&t.data)
}

func (t *memoryTx) Users() UserRepository { return &memoryUserRepository{src: t} }

func (t *memoryTx) Images() ImageRepository { return &memoryImageRepository{src: t} }

func (t *memoryTx) ImageVersions() ImageVersionRepository {
	return &memoryImageVersionRepository{src: t}
}

func (t *memoryTx) Jobs() JobRepository { return &memoryJobRepository{src: t} }

func (t *memoryTx) Commit(context.Context) error {
	if t.done {
		return errors.New("tx already finished")
	}
	t.done = true
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.data = t.data
	return nil
}

func (t *memoryTx) Rollback(context.Context) error {
	t.done = true
	return nil
}

type memoryUserRepository struct {
	src memAccess
}

func (r *memoryUserRepository) Create(_ context.Context, user models.User) error {
	return r.src.with(func(d *memData) error {
		for _, existing := range d.users {
			if existing.Email == user.Email {
				return errors.New("duplicate email")
			}
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now()
		}
		d.users = append(d.users, user)
		return nil
	})
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (models.User, error) {
	var user models.User
	err := r.src.with(func(d *memData) error {
		for _, candidate := range d.users {
			if candidate.ID == id {
				user = candidate
				return nil
			}
		}
		return ErrUserNotFound
	})
	return user, err
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	var user models.User
	err := r.src.with(func(d *memData) error {
		for _, candidate := range d.users {
			if candidate.Email == email {
				user = candidate
				return nil
			}
		}
		return ErrUserNotFound
	})
	return user, err
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) error {
	return r.src.with(func(d *memData) error {
		for i, candidate := range d.users {
			if candidate.ID == id {
				d.users = append(d.users[:i], d.users[i+1:]...)
				return nil
			}
		}
		return ErrUserNotFound
	})
}

type memoryImageRepository struct {
	src memAccess
}

func (r *memoryImageRepository) Create(_ context.Context, image models.Image) error {
	return r.src.with(func(d *memData) error {
		if image.CreatedAt.IsZero() {
			image.CreatedAt = time.Now()
		}
		d.images = append(d.images, image)
		return nil
	})
}

func (r *memoryImageRepository) GetByID(_ context.Context, id string) (models.Image, error) {
	var image models.Image
	err := r.src.with(func(d *memData) error {
		for _, candidate := range d.images {
			if candidate.ID == id {
				image = candidate
				return nil
			}
		}
		return ErrImageNotFound
	})
	return image, err
}

func (r *memoryImageRepository) ListByUser(_ context.Context, userID string) ([]models.Image, error) {
	var images []models.Image
	err := r.src.with(func(d *memData) error {
		for _, candidate := range d.images {
			if candidate.UserID == userID {
				images = append(images, candidate)
			}
		}
		return nil
	})
	return images, err
}

type memoryImageVersionRepository struct {
	src memAccess
}

func (r *memoryImageVersionRepository) Create(_ context.Context, version models.ImageVersion) error {
	return r.src.with(func(d *memData) error {
		if version.CreatedAt.IsZero() {
			version.CreatedAt = time.Now()
		}
		d.versions = append(d.versions, version)
		return nil
	})
}

func (r *memoryImageVersionRepository) ListByImage(_ context.Context, imageID string) ([]models.ImageVersion, error) {
	var versions []models.ImageVersion
	err := r.src.with(func(d *memData) error {
		for _, candidate := range d.versions {
			if candidate.ImageID == imageID {
				versions = append(versions, candidate)
			}
		}
		return nil
	})
	return versions, err
}

type memoryJobRepository struct {
	src memAccess
}

func (r *memoryJobRepository) Create(_ context.Context, job models.Job) error {
	return r.src.with(func(d *memData) error {
		if job.CreatedAt.IsZero() {
			job.CreatedAt = time.Now()
		}
		if job.UpdatedAt.IsZero() {
			job.UpdatedAt = job.CreatedAt
		}
		d.jobs = append(d.jobs, job)
		return nil
	})
}

func (r *memoryJobRepository) ListByUser(_ context.Context, userID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.src.with(func(d *memData) error {
		for _, candidate := range d.jobs {
			if candidate.UserID == userID {
				jobs = append(jobs, candidate)
			}
		}
		return nil
	})
	return jobs, err
}

func (r *memoryJobRepository) ListPending(_ context.Context) ([]models.Job, error) {
	var jobs []models.Job
	err := r.src.with(func(d *memData) error {
		for _, candidate := range d.jobs {
			if candidate.Status == models.JobStatusPending {
				jobs = append(jobs, candidate)
			}
		}
		return nil
	})
	return jobs, err
}

func (r *memoryJobRepository) SetMachine(_ context.Context, id string, machineID string) error {
	return r.src.with(func(d *memData) error {
		for i := range d.jobs {
			if d.jobs[i].ID == id {
				d.jobs[i].MachineID = &machineID
				d.jobs[i].UpdatedAt = time.Now()
				return nil
			}
		}
		return ErrJobNotFound
	})
}

func (r *memoryJobRepository) UpdateStatus(_ context.Context, id string, status models.JobStatus) error {
	return r.src.with(func(d *memData) error {
		for i := range d.jobs {
			if d.jobs[i].ID == id {
				d.jobs[i].Status = status
				d.jobs[i].UpdatedAt = time.Now()
				return nil
			}
		}
		return ErrJobNotFound
	})
}
