package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lionfish/api/internal/cache"
	"lionfish/api/internal/config"
	"lionfish/api/internal/provisioning"
	"lionfish/api/internal/repository"
)

func newTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Session:     config.SessionConfig{Expiration: 60 * 60 * 24 * 14},
		Provisioner: config.ProvisionerConfig{Timeout: 5 * time.Second},
		Reconciler:  config.ReconcilerConfig{SweepAfter: time.Hour},
	}
}

type authFixture struct {
	auth        *AuthService
	store       *repository.MemoryStore
	sessions    *cache.MemoryCredentialStore
	provisioner *provisioning.Fake
}

func newAuthFixture() authFixture {
	store := repository.NewMemoryStore()
	sessions := cache.NewMemoryCredentialStore()
	fake := provisioning.NewFake()
	auth := NewAuthService(store, sessions, fake, newTestConfig(), zerolog.Nop())
	return authFixture{auth: auth, store: store, sessions: sessions, provisioner: fake}
}

func TestRegisterLoginAuthenticateRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	user, err := f.auth.Register(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, []string{user.ID}, f.provisioner.Apps())

	token, loggedIn, err := f.auth.Login(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	resolved, err := f.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	user, err := f.auth.Register(ctx, "  A@Example.COM ", "abceasyas123")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	_, err := f.auth.Register(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "a@example.com", "different-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRollsBackWhenCreateAppFails(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.provisioner.CreateAppErr = provisioning.ErrProvisioning

	_, err := f.auth.Register(ctx, "a@example.com", "abceasyas123")
	require.Error(t, err)

	// The user row must not survive the failed provisioning call.
	_, err = f.store.Users().FindByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	_, err := f.auth.Register(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)

	_, _, err = f.auth.Login(ctx, "a@example.com", "not-the-password")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLoginUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	_, _, err := f.auth.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	_, err := f.auth.Register(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)
	token, _, err := f.auth.Login(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "definitely-not-a-token",
		"near miss":    token + "z",
		"random bytes": "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Authenticate(ctx, bad)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestAuthenticateMalformedCachePayload(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	require.NoError(t, f.sessions.SetWithTTL(ctx, "sometoken:session", "not-a-uuid", time.Minute))

	_, err := f.auth.Authenticate(ctx, "sometoken")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	user, err := f.auth.Register(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)
	token, _, err := f.auth.Login(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)

	require.NoError(t, f.store.Users().Delete(ctx, user.ID))

	// A live token for a deleted user denies access instead of crashing.
	_, err = f.auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestIssueSessionStoresUnderSessionKey(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	user, err := f.auth.Register(ctx, "a@example.com", "abceasyas123")
	require.NoError(t, err)

	token, err := f.auth.IssueSession(ctx, user.ID)
	require.NoError(t, err)

	value, ok, err := f.sessions.Get(ctx, token+":session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, value)
}
