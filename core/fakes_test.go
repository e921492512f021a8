package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gymcoach/gymauth/pkg/crypto"
	"github.com/gymcoach/gymauth/pkg/token"
	"github.com/stretchr/testify/require"
)

// fakeStorage is a test-only UserStorage keeping users in maps, with error
// fields for behavior injection and lookup counters.
type fakeStorage struct {
	mu      sync.Mutex
	byEmail map[string]*User
	nextID  int64

	createErr error
	getErr    error

	lookups int
	creates int
}

var _ UserStorage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{byEmail: make(map[string]*User), nextID: 1}
}

func (f *fakeStorage) CreateUser(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrUserExists
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Unix(1_700_000_000, 0).UTC()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	f.byEmail[u.Email] = &stored
	return nil
}

func (f *fakeStorage) GetUserByID(ctx context.Context, id int64) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// put stores u directly, bypassing CreateUser.
func (f *fakeStorage) put(u *User) *User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.nextID
		f.nextID++
	}
	stored := *u
	f.byEmail[u.Email] = &stored
	return u
}

func (f *fakeStorage) setActive(email string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[email].IsActive = active
}

// countingHasher wraps a PasswordHandler and counts Verify calls.
type countingHasher struct {
	crypto.PasswordHandler
	verifies int
}

func (c *countingHasher) Verify(password, hash string) bool {
	c.verifies++
	return c.PasswordHandler.Verify(password, hash)
}

// recordingObserver keeps every reported outcome.
type recordingObserver struct {
	mu            sync.Mutex
	auths         []string
	logins        []string
	registrations []string
}

func (r *recordingObserver) ObserveAuthentication(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auths = append(r.auths, o)
}

func (r *recordingObserver) ObserveLogin(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, o)
}

func (r *recordingObserver) ObserveRegistration(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations = append(r.registrations, o)
}

// mapSource is a TokenSource backed by plain maps.
type mapSource struct {
	cookies map[string]string
	headers map[string]string
}

func (m mapSource) Cookie(name string) string { return m.cookies[name] }
func (m mapSource) Header(name string) string { return m.headers[name] }

const testSecret = "0123456789abcdef0123456789abcdef"

func fastHasher() *crypto.Argon2 {
	return &crypto.Argon2{
		Memory:      64,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	}
}

type testEnv struct {
	auth     *Auth
	store    *fakeStorage
	hasher   *countingHasher
	observer *recordingObserver
	codec    *token.Codec
	now      time.Time
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func newTestEnv(t *testing.T, mutate ...func(*Config)) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    newFakeStorage(),
		hasher:   &countingHasher{PasswordHandler: fastHasher()},
		observer: &recordingObserver{},
		now:      time.Unix(1_700_000_000, 0),
	}

	codec, err := token.NewCodec([]byte(testSecret), 30*time.Minute,
		token.WithClock(func() time.Time { return env.now }))
	require.NoError(t, err)
	env.codec = codec

	cfg := Config{
		Storage:        env.store,
		PasswordHasher: env.hasher,
		Observer:       env.observer,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	auth, err := NewAuth(cfg, codec)
	require.NoError(t, err)
	env.auth = auth
	return env
}

// registerUser registers through the public flow and returns the stored user.
func (e *testEnv) registerUser(t *testing.T, email, password string, role Role) *PublicUser {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: password,
		Role:     string(role),
	})
	require.NoError(t, err)
	return u
}
