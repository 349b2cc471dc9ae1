package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lionfish/api/internal/models"
)

type createImageRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"required"`
}

type imageResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Nickname  string    `json:"nickname"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type imageVersionResponse struct {
	ID            string    `json:"id"`
	ImageID       string    `json:"imageId"`
	Hash          string    `json:"hash"`
	VersionNumber string    `json:"versionNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newImageResponse(image models.Image) imageResponse {
	return imageResponse{
		ID:        image.ID,
		UserID:    image.UserID,
		Nickname:  image.Nickname,
		ImageURL:  image.ImageURL,
		CreatedAt: image.CreatedAt,
	}
}

func (h HandlerSet) CreateImage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := h.images.Create(c.Request.Context(), user, req.Nickname, req.ImageURL)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newImageResponse(image))
}

func (h HandlerSet) GetImages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	images, err := h.images.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := make([]imageResponse, 0, len(images))
	for _, image := range images {
		resp = append(resp, newImageResponse(image))
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) GetImageVersions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	versions, err := h.images.ListVersions(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := make([]imageVersionResponse, 0, len(versions))
	for _, version := range versions {
		resp = append(resp, imageVersionResponse{
			ID:            version.ID,
			ImageID:       version.ImageID,
			Hash:          version.Hash,
			VersionNumber: version.VersionNumber,
			CreatedAt:     version.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}
