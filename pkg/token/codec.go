// Package token encodes and decodes the signed, expiring access tokens
// issued at login. Tokens are compact HS256 JWS strings; the signing
// algorithm is pinned on decode.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gymcoach/gymauth/pkg/crypto"
)

// Algorithm is the only signing algorithm produced or accepted.
const Algorithm = "HS256"

// Config errors
var (
	ErrSecretRequired = errors.New("token secret is required")
	ErrInvalidTTL     = errors.New("token ttl must be at least one second")
)

// Encode errors
var (
	ErrEmptySubject = errors.New("token subject must not be empty")
)

// Decode errors
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token is expired")
	ErrMissingSubject = errors.New("token has no subject")
)

// Claims is the decoded content of an access token.
type Claims struct {
	Subject   string
	Role      string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	ids    *crypto.NanoIDGenerator
	parser *jwt.Parser
}

type Option func(*Codec)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec returns a codec bound to secret and ttl for its whole lifetime.
// The secret is copied so later mutation of the caller's slice has no effect.
func NewCodec(secret []byte, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrSecretRequired
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("%w - got %s", ErrInvalidTTL, ttl)
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
		ids:    crypto.NewNanoID(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	return c, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode signs a token for subject. The returned Claims carry the exact
// iat/exp values embedded in the token.
func (c *Codec) Encode(subject, role string) (string, Claims, error) {
	if strings.TrimSpace(subject) == "" {
		return "", Claims{}, ErrEmptySubject
	}

	jti, err := c.ids.Generate()
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	issuedAt := jwt.NewNumericDate(c.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(c.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, Claims{
		Subject:   subject,
		Role:      role,
		ID:        jti,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Decode verifies signature, algorithm and expiry. A token is expired from
// the instant now >= exp; no leeway is granted.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &jwtClaims{}

	_, err := c.parser.ParseWithClaims(tokenString, claims, c.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSubject
	}

	out := &Claims{
		Subject: claims.Subject,
		Role:    claims.Role,
		ID:      claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != Algorithm {
		return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
	}
	return c.secret, nil
}
