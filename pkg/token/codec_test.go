package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCodec(t *testing.T, ttl time.Duration) (*Codec, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c, err := NewCodec(testSecret, ttl, WithClock(clock.Now))
	require.NoError(t, err)
	return c, clock
}

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestNewCodec_Validation(t *testing.T) {
	tests := []struct {
		name    string
		secret  []byte
		ttl     time.Duration
		wantErr error
	}{
		{name: "ok", secret: testSecret, ttl: time.Minute},
		{name: "empty secret", secret: nil, ttl: time.Minute, wantErr: ErrSecretRequired},
		{name: "zero ttl", secret: testSecret, ttl: 0, wantErr: ErrInvalidTTL},
		{name: "negative ttl", secret: testSecret, ttl: -time.Minute, wantErr: ErrInvalidTTL},
		{name: "sub-second ttl", secret: testSecret, ttl: 500 * time.Millisecond, wantErr: ErrInvalidTTL},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Act
			c, err := NewCodec(test.secret, test.ttl)

			// Assert
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.ttl, c.TTL())
		})
	}
}

func TestNewCodec_CopiesSecret(t *testing.T) {
	// Arrange
	secret := append([]byte(nil), testSecret...)
	c, err := NewCodec(secret, time.Hour)
	require.NoError(t, err)
	tok, _, err := c.Encode("a@x.com", "trainee")
	require.NoError(t, err)

	// Act
	secret[0] = 'X'
	_, err = c.Decode(tok)

	// Assert
	assert.NoError(t, err)
}

func TestCodec_EncodeDecode_RoundTrip(t *testing.T) {
	// Arrange
	c, clock := newTestCodec(t, 30*time.Minute)

	// Act
	tok, issued, err := c.Encode("a@x.com", "coach")
	require.NoError(t, err)
	got, err := c.Decode(tok)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(tok, ".")))
	assert.Equal(t, "a@x.com", got.Subject)
	assert.Equal(t, "coach", got.Role)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, issued.ID, got.ID)
	assert.True(t, got.IssuedAt.Equal(clock.t))
	assert.True(t, got.ExpiresAt.Equal(clock.t.Add(30*time.Minute)))
	assert.Equal(t, got.ExpiresAt.Sub(got.IssuedAt), c.TTL())
}

func TestCodec_Encode_EmptySubject(t *testing.T) {
	c, _ := newTestCodec(t, time.Minute)

	for _, subject := range []string{"", "   "} {
		_, _, err := c.Encode(subject, "trainee")
		assert.ErrorIs(t, err, ErrEmptySubject)
	}
}

func TestCodec_Decode_ExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr error
	}{
		{name: "just issued", advance: 0},
		{name: "one second before exp", advance: time.Hour - time.Second},
		{name: "exactly at exp", advance: time.Hour, wantErr: ErrTokenExpired},
		{name: "after exp", advance: 2 * time.Hour, wantErr: ErrTokenExpired},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			c, clock := newTestCodec(t, time.Hour)
			tok, _, err := c.Encode("a@x.com", "trainee")
			require.NoError(t, err)

			// Act
			clock.t = clock.t.Add(test.advance)
			_, err = c.Decode(tok)

			// Assert
			if test.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.wantErr)
		})
	}
}

func TestCodec_Decode_RejectsForeignSecret(t *testing.T) {
	// Arrange
	c, _ := newTestCodec(t, time.Hour)
	other, err := NewCodec([]byte("another-secret-another-secret-xx"), time.Hour)
	require.NoError(t, err)
	tok, _, err := other.Encode("a@x.com", "trainee")
	require.NoError(t, err)

	// Act
	_, err = c.Decode(tok)

	// Assert
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestCodec_Decode_Malformed(t *testing.T) {
	c, clock := newTestCodec(t, time.Hour)
	exp := jwt.NewNumericDate(clock.t.Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "two segments", token: "eyJhbGciOiJIUzI1NiJ9.e30"},
		{
			name: "alg none",
			token: signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType,
				jwt.RegisteredClaims{Subject: "a@x.com", ExpiresAt: exp}),
		},
		{
			name: "hs512 with same secret",
			token: signRaw(t, jwt.SigningMethodHS512, testSecret,
				jwt.RegisteredClaims{Subject: "a@x.com", ExpiresAt: exp}),
		},
		{
			name: "missing exp",
			token: signRaw(t, jwt.SigningMethodHS256, testSecret,
				jwt.RegisteredClaims{Subject: "a@x.com"}),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Act
			claims, err := c.Decode(test.token)

			// Assert
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestCodec_Decode_TamperedPayload(t *testing.T) {
	// Arrange
	c, _ := newTestCodec(t, time.Hour)
	trainee, _, err := c.Encode("a@x.com", "trainee")
	require.NoError(t, err)
	coach, _, err := c.Encode("a@x.com", "coach")
	require.NoError(t, err)
	parts := strings.Split(trainee, ".")
	forged := parts[0] + "." + strings.Split(coach, ".")[1] + "." + parts[2]

	// Act
	_, err = c.Decode(forged)

	// Assert
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestCodec_Decode_MissingSubject(t *testing.T) {
	// Arrange
	c, clock := newTestCodec(t, time.Hour)
	tok := signRaw(t, jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	})

	// Act
	_, err := c.Decode(tok)

	// Assert
	assert.ErrorIs(t, err, ErrMissingSubject)
}
