package core

import (
	"context"
	"time"

	"github.com/gymcoach/gymauth/pkg/token"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORT (Database operations)
// ============================================

// UserStorage defines the credential-store operations the subsystem needs.
//
// Lookups return ErrUserNotFound when no row matches; CreateUser returns
// ErrUserExists on an email collision and fills ID and timestamps on success.
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// ============================================
// TOKEN PORT
// ============================================

// TokenCodec signs and verifies access tokens.
type TokenCodec interface {
	Encode(subject, role string) (string, token.Claims, error)
	Decode(tokenString string) (*token.Claims, error)
	TTL() time.Duration
}

var _ TokenCodec = (*token.Codec)(nil)

// ============================================
// OBSERVER PORT (metrics)
// ============================================

// Observer receives one event per authentication, login and registration.
// Outcomes are "success" or the error code of the failure.
type Observer interface {
	ObserveAuthentication(outcome string)
	ObserveLogin(result string)
	ObserveRegistration(result string)
}

// OutcomeSuccess is reported to the Observer for successful operations.
const OutcomeSuccess = "success"

type nopObserver struct{}

func (nopObserver) ObserveAuthentication(string) {}
func (nopObserver) ObserveLogin(string)          {}
func (nopObserver) ObserveRegistration(string)   {}

// NopObserver discards every event.
func NopObserver() Observer { return nopObserver{} }

// ============================================
// AUTH HANDLER (for HTTP adapters)
// ============================================

// AuthHandler provides authentication operations for HTTP adapters
type AuthHandler interface {
	Register(ctx context.Context, input RegisterInput) (*PublicUser, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Authenticate(ctx context.Context, src TokenSource) (*AuthContext, error)
	Profile(ctx context.Context, ac *AuthContext) (*PublicUser, error)
	TokenTTL() time.Duration
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(handler AuthHandler, opts RouteOptions) error
}

// Delivery selects where a freshly issued token is handed to the client.
type Delivery string

const (
	DeliveryCookie Delivery = "cookie"
	DeliveryBody   Delivery = "body"
	DeliveryBoth   Delivery = "both"
)

func (d Delivery) Valid() bool {
	return d == DeliveryCookie || d == DeliveryBody || d == DeliveryBoth
}

func (d Delivery) Cookie() bool { return d == DeliveryCookie || d == DeliveryBoth }
func (d Delivery) Body() bool   { return d == DeliveryBody || d == DeliveryBoth }

// RouteOptions configures the routes an HTTPAdapter mounts.
type RouteOptions struct {
	BasePath     string
	Transport    TransportConfig
	Delivery     Delivery
	SecureCookie bool
}
