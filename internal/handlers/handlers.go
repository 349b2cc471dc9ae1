package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"lionfish/api/internal/cache"
	"lionfish/api/internal/config"
	"lionfish/api/internal/middleware"
	"lionfish/api/internal/models"
	"lionfish/api/internal/provisioning"
	"lionfish/api/internal/repository"
	"lionfish/api/internal/service"
)

type HandlerSet struct {
	log    zerolog.Logger
	cfg    *config.AppConfig
	auth   *service.AuthService
	images *service.ImageService
	jobs   *service.JobService
}

func NewHandlerSet(
	log zerolog.Logger,
	store repository.Store,
	sessions cache.CredentialStore,
	provisioner provisioning.Provisioner,
	cfg *config.AppConfig,
) HandlerSet {
	return HandlerSet{
		log:    log,
		cfg:    cfg,
		auth:   service.NewAuthService(store, sessions, provisioner, cfg, log),
		images: service.NewImageService(store, log),
		jobs:   service.NewJobService(store, provisioner, cfg, log),
	}
}

func (h HandlerSet) Register(engine *gin.Engine) {
	engine.GET("/ping", h.Ping)
	engine.POST("/users", h.CreateUser)
	engine.POST("/sessions", h.CreateSession)

	authed := engine.Group("", middleware.Auth(h.auth))
	authed.GET("/users", h.GetUser)
	authed.POST("/images", h.CreateImage)
	authed.GET("/images", h.GetImages)
	authed.GET("/images/:id/versions", h.GetImageVersions)
	authed.POST("/jobs", h.CreateJob)
	authed.GET("/jobs", h.GetJobs)
}

func (h HandlerSet) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// currentUser is only called behind the auth middleware, which guarantees the
// context carries a user.
func currentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(middleware.CurrentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

// renderError maps service failures onto the wire contract: 401 for auth
// failures, 404 for absent entities, and an opaque 500 for everything
// internal. Detail never leaves the log.
func (h HandlerSet) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	default:
		h.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
