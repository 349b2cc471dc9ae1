package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lionfish/api/internal/cache"
	"lionfish/api/internal/config"
	"lionfish/api/internal/ids"
	"lionfish/api/internal/models"
	"lionfish/api/internal/provisioning"
	"lionfish/api/internal/repository"
	"lionfish/api/internal/security"
)

var ErrEmailTaken = errors.New("email already registered")

type AuthService struct {
	store       repository.Store
	sessions    cache.CredentialStore
	provisioner provisioning.Provisioner
	cfg         *config.AppConfig
	log         zerolog.Logger
}

func NewAuthService(
	store repository.Store,
	sessions cache.CredentialStore,
	provisioner provisioning.Provisioner,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		store:       store,
		sessions:    sessions,
		provisioner: provisioner,
		cfg:         cfg,
		log:         log,
	}
}

// Register creates the user row and the remote application namespace keyed by
// the new user's id inside one transaction, so a provisioning failure leaves
// no orphaned user behind.
func (s *AuthService) Register(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return models.User{}, errors.New("email and password required")
	}

	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.Users().Create(ctx, user); err != nil {
		return models.User{}, err
	}

	appCtx, cancel := context.WithTimeout(ctx, s.cfg.Provisioner.Timeout)
	defer cancel()
	if err := s.provisioner.CreateApp(appCtx, user.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("create app failed")
		return models.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login verifies the password and issues a session token. A missing user and
// a wrong password are reported identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Warn().Str("email", email).Msg("login for unknown user")
			return "", models.User{}, ErrUnauthenticated
		}
		return "", models.User{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.log.Warn().Str("email", email).Msg("invalid password")
		return "", models.User{}, ErrUnauthenticated
	}

	token, err := s.IssueSession(ctx, user.ID)
	if err != nil {
		return "", models.User{}, err
	}
	return token, user, nil
}

// IssueSession generates a random 256-bit token and maps it to the user id in
// the credential store for SESSION_EXPIRATION seconds. No collision check; at
// this size the birthday bound is negligible.
func (s *AuthService) IssueSession(ctx context.Context, userID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := base64.StdEncoding.EncodeToString(raw)

	ttl := time.Duration(s.cfg.Session.Expiration) * time.Second
	if err := s.sessions.SetWithTTL(ctx, sessionKey(token), userID, ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. Any cache miss, malformed
// payload, or lookup failure collapses to ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrUnauthenticated
	}

	value, ok, err := s.sessions.Get(ctx, sessionKey(token))
	if err != nil {
		s.log.Error().Err(err).Msg("session lookup failed")
		return models.User{}, ErrUnauthenticated
	}
	if !ok {
		return models.User{}, ErrUnauthenticated
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		s.log.Error().Str("value", value).Msg("session payload is not a uuid")
		return models.User{}, ErrUnauthenticated
	}

	user, err := s.store.Users().GetByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// A live token referencing a deleted user. Deny rather than crash,
			// but make the inconsistency loud.
			s.log.Error().Str("user_id", userID.String()).Msg("session references deleted user")
			return models.User{}, ErrUnauthenticated
		}
		return models.User{}, err
	}
	return user, nil
}

func sessionKey(token string) string {
	return token + ":session"
}
