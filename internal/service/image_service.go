package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"lionfish/api/internal/ids"
	"lionfish/api/internal/models"
	"lionfish/api/internal/repository"
)

type ImageService struct {
	store repository.Store
	log   zerolog.Logger
}

func NewImageService(store repository.Store, log zerolog.Logger) *ImageService {
	return &ImageService{store: store, log: log}
}

// Create inserts the image together with its "latest" placeholder version.
// Both rows land in one transaction so no image exists without a version.
func (s *ImageService) Create(ctx context.Context, user models.User, nickname, imageURL string) (models.Image, error) {
	now := time.Now()
	image := models.Image{
		ID:        ids.New(),
		UserID:    user.ID,
		Nickname:  nickname,
		ImageURL:  imageURL,
		CreatedAt: now,
	}
	version := models.ImageVersion{
		ID:            ids.New(),
		ImageID:       image.ID,
		Hash:          "",
		VersionNumber: "latest",
		CreatedAt:     now,
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return models.Image{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.Images().Create(ctx, image); err != nil {
		return models.Image{}, err
	}
	if err := tx.ImageVersions().Create(ctx, version); err != nil {
		return models.Image{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Image{}, err
	}
	return image, nil
}

func (s *ImageService) ListForUser(ctx context.Context, userID string) ([]models.Image, error) {
	return s.store.Images().ListByUser(ctx, userID)
}

// ListVersions returns the versions of an image the user owns. Reading a
// foreign image is ErrUnauthorized, an absent one ErrNotFound.
func (s *ImageService) ListVersions(ctx context.Context, user models.User, imageID string) ([]models.ImageVersion, error) {
	image, err := s.store.Images().GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if image.UserID != user.ID {
		return nil, ErrUnauthorized
	}

	return s.store.ImageVersions().ListByImage(ctx, imageID)
}
