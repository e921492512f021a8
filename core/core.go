package core

import (
	"fmt"
	"time"

	"github.com/gymcoach/gymauth/internal/logging"
	"github.com/gymcoach/gymauth/pkg/crypto"
)

type Config struct {
	Secret   string
	TokenTTL time.Duration

	Storage UserStorage

	HTTP HTTPAdapter

	// Optional config
	PasswordHasher crypto.PasswordHandler
	PasswordPolicy *PasswordPolicy
	SubjectKind    SubjectKind
	Delivery       Delivery
	Transport      TransportConfig
	BasePath       string
	SecureCookie   bool
	Observer       Observer
	Logger         logging.Logger
}

type Auth struct {
	storage       UserStorage
	codec         TokenCodec
	hasher        crypto.PasswordHandler
	policy        PasswordPolicy
	subject       SubjectKind
	observer      Observer
	log           logging.Logger
	authenticator *Authenticator
	dummyHash     string
}

var _ AuthHandler = (*Auth)(nil)

// dummyPassword is hashed once at startup; logins for unknown emails verify
// against it.
const dummyPassword = "gymauth-timing-equalizer"

// NewAuth assembles the login, registration and authentication flows from
// cfg and codec. Optional fields of cfg fall back to defaults.
func NewAuth(cfg Config, codec TokenCodec) (*Auth, error) {
	if cfg.Storage == nil {
		return nil, ErrStorageRequired
	}
	if codec == nil {
		return nil, ErrCodecRequired
	}

	hasher := cfg.PasswordHasher
	if hasher == nil {
		hasher = crypto.NewArgon2()
	}

	policy := DefaultPasswordPolicy()
	if cfg.PasswordPolicy != nil {
		policy = *cfg.PasswordPolicy
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	subject := cfg.SubjectKind
	if subject == "" {
		subject = SubjectEmail
	}
	if !subject.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubjectKind, subject)
	}

	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver()
	}

	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Auth{
		storage:       cfg.Storage,
		codec:         codec,
		hasher:        hasher,
		policy:        policy,
		subject:       subject,
		observer:      observer,
		log:           log.With("component", "auth"),
		authenticator: NewAuthenticator(cfg.Storage, codec, subject, cfg.Transport, observer, log),
		dummyHash:     dummyHash,
	}, nil
}

// Authenticator exposes the request authenticator, e.g. for custom guards.
func (a *Auth) Authenticator() *Authenticator {
	return a.authenticator
}
