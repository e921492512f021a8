package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gymcoach/gymauth/internal/logging"
	"github.com/gymcoach/gymauth/pkg/crypto"
)

// SubjectKind selects which user attribute is carried in the token subject.
type SubjectKind string

const (
	SubjectEmail SubjectKind = "email"
	SubjectID    SubjectKind = "id"
)

func (k SubjectKind) Valid() bool {
	return k == SubjectEmail || k == SubjectID
}

var errMissingToken = errors.New("no token in request")

// Authenticator turns a request's token into an AuthContext.
//
// It performs exactly one user lookup per call and never writes.
type Authenticator struct {
	users     UserStorage
	codec     TokenCodec
	subject   SubjectKind
	transport TransportConfig
	observer  Observer
	log       logging.Logger
}

func NewAuthenticator(
	users UserStorage,
	codec TokenCodec,
	subject SubjectKind,
	transport TransportConfig,
	observer Observer,
	log logging.Logger,
) *Authenticator {
	if observer == nil {
		observer = NopObserver()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Authenticator{
		users:     users,
		codec:     codec,
		subject:   subject,
		transport: transport.withDefaults(),
		observer:  observer,
		log:       log.With("component", "authenticator"),
	}
}

// Authenticate resolves the token carried by src and validates it.
func (a *Authenticator) Authenticate(ctx context.Context, src TokenSource) (*AuthContext, error) {
	tok, transport, ok := ResolveToken(src, a.transport)
	if !ok {
		return nil, a.fail(ctx, unauthenticated(errMissingToken), "")
	}

	ac, err := a.AuthenticateToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	a.log.Debug(ctx, "request authenticated",
		"user_id", ac.UserID, "transport", string(transport), "token", crypto.Fingerprint(tok))
	return ac, nil
}

// AuthenticateToken validates an already extracted token.
//
// Decode failures and unknown subjects are indistinguishable to the caller;
// the cause is kept in Error.Reason for logging. The role in the returned
// context comes from the stored user, not from the token.
func (a *Authenticator) AuthenticateToken(ctx context.Context, tok string) (*AuthContext, error) {
	claims, err := a.codec.Decode(tok)
	if err != nil {
		return nil, a.fail(ctx, unauthenticated(err), tok)
	}

	user, err := a.lookup(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, a.fail(ctx, unauthenticated(err), tok)
		}
		return nil, a.fail(ctx, internal(fmt.Errorf("failed to load user: %w", err)), tok)
	}

	if !user.IsActive {
		return nil, a.fail(ctx, accountInactive(), tok)
	}

	a.observer.ObserveAuthentication(OutcomeSuccess)

	return &AuthContext{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

func (a *Authenticator) lookup(ctx context.Context, subject string) (*User, error) {
	switch a.subject {
	case SubjectID:
		id, err := strconv.ParseInt(subject, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: subject %q is not a user id", ErrUserNotFound, subject)
		}
		return a.users.GetUserByID(ctx, id)
	default:
		return a.users.GetUserByEmail(ctx, subject)
	}
}

func (a *Authenticator) fail(ctx context.Context, e *Error, tok string) *Error {
	a.observer.ObserveAuthentication(e.Code)

	args := []any{"code", e.Code, "token", crypto.Fingerprint(tok)}
	if e.Reason != nil {
		args = append(args, "reason", e.Reason.Error())
	}

	if errors.Is(e, ErrInternal) {
		a.log.Error(ctx, "authentication failed", args...)
	} else {
		a.log.Debug(ctx, "authentication rejected", args...)
	}
	return e
}

// subjectFor returns the token subject identifying u.
func subjectFor(kind SubjectKind, u *User) string {
	if kind == SubjectID {
		return strconv.FormatInt(u.ID, 10)
	}
	return u.Email
}
