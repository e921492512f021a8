package fiber

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gymcoach/gymauth/core"
	"github.com/gymcoach/gymauth/internal/logging"
)

type Adapter struct {
	app      *fiber.App
	auth     core.AuthHandler
	opts     core.RouteOptions
	registry *core.EndpointRegistry
	log      logging.Logger

	loginLimit  int
	loginWindow time.Duration
}

var _ core.HTTPAdapter = (*Adapter)(nil)

type Option func(*Adapter)

func WithLogger(log logging.Logger) Option {
	return func(a *Adapter) {
		a.log = log
	}
}

// WithLoginRateLimit caps login attempts per client IP to max per window.
// max <= 0 disables the limiter.
func WithLoginRateLimit(max int, window time.Duration) Option {
	return func(a *Adapter) {
		a.loginLimit = max
		a.loginWindow = window
	}
}

func New(app *fiber.App, opts ...Option) *Adapter {
	a := &Adapter{
		app:      app,
		registry: core.NewEndpointRegistry(),
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logging.Discard()
	}
	return a
}

// RegisterRoutes mounts the built-in auth endpoints under opts.BasePath.
func (a *Adapter) RegisterRoutes(handler core.AuthHandler, opts core.RouteOptions) error {
	if handler == nil {
		return fmt.Errorf("failed to register routes: auth handler is nil")
	}
	if opts.Delivery == "" {
		opts.Delivery = core.DeliveryBoth
	}
	if !opts.Delivery.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidDelivery, opts.Delivery)
	}
	if opts.Transport.CookieName == "" {
		opts.Transport.CookieName = core.DefaultCookieName
	}
	if opts.Transport.HeaderName == "" {
		opts.Transport.HeaderName = core.DefaultHeaderName
	}
	opts.BasePath = "/" + strings.Trim(opts.BasePath, "/")

	a.auth = handler
	a.opts = opts

	handlers := map[string]func(*core.RequestContext) error{
		core.OpRegister: a.handleRegister,
		core.OpLogin:    a.handleLogin,
		core.OpLogout:   a.handleLogout,
		core.OpMe:       a.handleMe,
	}

	api := a.app.Group(opts.BasePath)
	for opID, h := range handlers {
		ep, ok := a.registry.Lookup(opID)
		if !ok {
			return fmt.Errorf("failed to register routes: no endpoint for %q", opID)
		}
		ep.Handler = h

		if opID == core.OpLogin && a.loginLimit > 0 {
			api.Add([]string{ep.Method}, ep.Path, a.loginLimiter(), a.wrap(ep))
			continue
		}
		api.Add([]string{ep.Method}, ep.Path, a.wrap(ep))
	}

	a.log.Info(context.Background(), "auth routes registered",
		"base_path", opts.BasePath, "delivery", string(opts.Delivery), "login_rate_limit", a.loginLimit)
	return nil
}

// Handle registers an application endpoint guarded by ep.Access. Paths are
// absolute, not relative to the auth base path.
func (a *Adapter) Handle(ep core.Endpoint) error {
	if ep.Handler == nil {
		return fmt.Errorf("endpoint %s %s has no handler", ep.Method, ep.Path)
	}
	if err := a.registry.Register(ep); err != nil {
		return err
	}
	a.app.Add([]string{ep.Method}, ep.Path, a.wrap(&ep))
	return nil
}

// Endpoints lists every endpoint known to the adapter.
func (a *Adapter) Endpoints() []*core.Endpoint {
	return a.registry.Endpoints()
}

// wrap turns an endpoint into a fiber handler that enforces its access rule.
func (a *Adapter) wrap(ep *core.Endpoint) fiber.Handler {
	return func(c fiber.Ctx) error {
		rc := &core.RequestContext{Request: c}

		if !ep.Access.Public {
			ac, err := a.authorize(c, ep.Access.Role)
			if err != nil {
				return a.respondError(c, err)
			}
			rc.Auth = ac
		}

		return ep.Handler(rc)
	}
}

func (a *Adapter) loginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        a.loginLimit,
		Expiration: a.loginWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{
				Error:   codeRateLimited,
				Message: "too many login attempts, try again later",
			})
		},
	})
}
