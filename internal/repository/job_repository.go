package repository

import (
	"context"

	"lionfish/api/internal/models"
)

type PostgresJobRepository struct {
	db DBTX
}

func (r *PostgresJobRepository) Create(ctx context.Context, job models.Job) error {
	const query = `
		INSERT INTO jobs (id, user_id, status, image_version_id, machine_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		job.ID,
		job.UserID,
		job.Status,
		job.ImageVersionID,
		job.MachineID,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (r *PostgresJobRepository) ListByUser(ctx context.Context, userID string) ([]models.Job, error) {
	const query = `
		SELECT id, user_id, status, image_version_id, machine_id, created_at, updated_at
		FROM jobs
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.Status,
			&job.ImageVersionID,
			&job.MachineID,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *PostgresJobRepository) ListPending(ctx context.Context) ([]models.Job, error) {
	const query = `
		SELECT id, user_id, status, image_version_id, machine_id, created_at, updated_at
		FROM jobs
		WHERE status = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, models.JobStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.Status,
			&job.ImageVersionID,
			&job.MachineID,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *PostgresJobRepository) SetMachine(ctx context.Context, id string, machineID string) error {
	const query = `
		UPDATE jobs SET machine_id = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, machineID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PostgresJobRepository) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	const query = `
		UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}
