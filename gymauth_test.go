package gymauth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gymcoach/gymauth/adapters/memory"
	"github.com/gymcoach/gymauth/core"
	"github.com/gymcoach/gymauth/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secretshouldbeatleast32charslong"

type recordingAdapter struct {
	handler core.AuthHandler
	opts    core.RouteOptions
	calls   int
	err     error
}

func (r *recordingAdapter) RegisterRoutes(handler core.AuthHandler, opts core.RouteOptions) error {
	r.calls++
	r.handler = handler
	r.opts = opts
	return r.err
}

func fastHasher() *crypto.Argon2 {
	return &crypto.Argon2{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "missing secret", mutate: func(c *Config) { c.Secret = "" }, wantErr: ErrSecretRequired},
		{name: "short secret", mutate: func(c *Config) { c.Secret = strings.Repeat("s", 31) }, wantErr: ErrSecretTooShort},
		{name: "missing storage", mutate: func(c *Config) { c.Storage = nil }, wantErr: ErrStorageRequired},
		{name: "missing http", mutate: func(c *Config) { c.HTTP = nil }, wantErr: ErrHTTPAdapterRequired},
		{name: "invalid subject", mutate: func(c *Config) { c.SubjectKind = "phone" }, wantErr: core.ErrInvalidSubjectKind},
		{name: "sub-second ttl", mutate: func(c *Config) { c.TokenTTL = time.Millisecond }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			cfg := Config{
				Secret:         testSecret,
				Storage:        memory.New(),
				HTTP:           &recordingAdapter{},
				PasswordHasher: fastHasher(),
			}
			test.mutate(&cfg)

			// Act
			auth, err := New(cfg)

			// Assert
			require.Error(t, err)
			assert.Nil(t, auth)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	// Arrange
	adapter := &recordingAdapter{}

	// Act
	auth, err := New(Config{
		Secret:         testSecret,
		Storage:        memory.New(),
		HTTP:           adapter,
		PasswordHasher: fastHasher(),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, adapter.calls)
	assert.Same(t, auth, adapter.handler)
	assert.Equal(t, "/auth", adapter.opts.BasePath)
	assert.Equal(t, 30*time.Minute, auth.TokenTTL())
}

func TestNew_PassesRouteOptions(t *testing.T) {
	// Arrange
	adapter := &recordingAdapter{}
	transport := TransportConfig{CookieName: "gym_token", HeaderName: "X-Gym-Token"}

	// Act
	_, err := New(Config{
		Secret:         testSecret,
		TokenTTL:       time.Hour,
		Storage:        memory.New(),
		HTTP:           adapter,
		PasswordHasher: fastHasher(),
		BasePath:       "/api/auth",
		Delivery:       DeliveryCookie,
		Transport:      transport,
		SecureCookie:   true,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, core.RouteOptions{
		BasePath:     "/api/auth",
		Transport:    transport,
		Delivery:     DeliveryCookie,
		SecureCookie: true,
	}, adapter.opts)
}

func TestNew_RouteRegistrationError(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(Config{
		Secret:         testSecret,
		Storage:        memory.New(),
		HTTP:           &recordingAdapter{err: boom},
		PasswordHasher: fastHasher(),
	})

	assert.ErrorIs(t, err, boom)
}

func TestNew_RegisterLoginAuthenticate(t *testing.T) {
	// Arrange
	auth, err := New(Config{
		Secret:         testSecret,
		Storage:        memory.New(),
		HTTP:           &recordingAdapter{},
		PasswordHasher: fastHasher(),
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = auth.Register(ctx, core.RegisterInput{Email: "coach@x.com", Password: "Password1", Role: "coach"})
	require.NoError(t, err)

	// Act
	res, err := auth.Login(ctx, core.LoginInput{Email: "coach@x.com", Password: "Password1"})
	require.NoError(t, err)
	ac, err := auth.Authenticator().AuthenticateToken(ctx, res.AccessToken)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "coach@x.com", ac.Email)
	assert.True(t, Authorize(ac, RoleCoach).Allowed)
	assert.False(t, Authorize(ac, RoleTrainee).Allowed)
}
