package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lionfish/api/internal/models"
)

type PostgresImageRepository struct {
	db DBTX
}

func (r *PostgresImageRepository) Create(ctx context.Context, image models.Image) error {
	const query = `
		INSERT INTO images (id, user_id, nickname, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		image.ID,
		image.UserID,
		image.Nickname,
		image.ImageURL,
		image.CreatedAt,
	)
	return err
}

func (r *PostgresImageRepository) GetByID(ctx context.Context, id string) (models.Image, error) {
	const query = `
		SELECT id, user_id, nickname, image_url, created_at
		FROM images WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	var image models.Image
	if err := row.Scan(
		&image.ID,
		&image.UserID,
		&image.Nickname,
		&image.ImageURL,
		&image.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Image{}, ErrImageNotFound
		}
		return models.Image{}, err
	}
	return image, nil
}

func (r *PostgresImageRepository) ListByUser(ctx context.Context, userID string) ([]models.Image, error) {
	const query = `
		SELECT id, user_id, nickname, image_url, created_at
		FROM images
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var image models.Image
		if err := rows.Scan(
			&image.ID,
			&image.UserID,
			&image.Nickname,
			&image.ImageURL,
			&image.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

type PostgresImageVersionRepository struct {
	db DBTX
}

func (r *PostgresImageVersionRepository) Create(ctx context.Context, version models.ImageVersion) error {
	const query = `
		INSERT INTO image_versions (id, image_id, hash, version_number, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		version.ID,
		version.ImageID,
		version.Hash,
		version.VersionNumber,
		version.CreatedAt,
	)
	return err
}

func (r *PostgresImageVersionRepository) ListByImage(ctx context.Context, imageID string) ([]models.ImageVersion, error) {
	const query = `
		SELECT id, image_id, hash, version_number, created_at
		FROM image_versions
		WHERE image_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []models.ImageVersion
	for rows.Next() {
		var version models.ImageVersion
		if err := rows.Scan(
			&version.ID,
			&version.ImageID,
			&version.Hash,
			&version.VersionNumber,
			&version.CreatedAt,
		); err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}
