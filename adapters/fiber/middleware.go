package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gymcoach/gymauth/core"
)

type ctxKey int

const authContextKey ctxKey = iota

// requestSource exposes a fiber request as a core.TokenSource.
type requestSource struct {
	c fiber.Ctx
}

func (s requestSource) Cookie(name string) string { return s.c.Cookies(name) }
func (s requestSource) Header(name string) string { return s.c.Get(name) }

// RequireAuthenticated builds a middleware that admits any active user and
// stores the AuthContext for downstream handlers.
func (a *Adapter) RequireAuthenticated() fiber.Handler {
	return a.RequireRole(core.AnyRole)
}

// RequireRole builds a middleware that admits only users holding role.
func (a *Adapter) RequireRole(role core.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, err := a.authorize(c, role); err != nil {
			return a.respondError(c, err)
		}
		return c.Next()
	}
}

// AuthFromCtx returns the AuthContext stored by a guard, if any.
func AuthFromCtx(c fiber.Ctx) (*core.AuthContext, bool) {
	ac, ok := c.Locals(authContextKey).(*core.AuthContext)
	return ac, ok && ac != nil
}

// authorize authenticates the request, checks role and records the result
// in the request locals.
func (a *Adapter) authorize(c fiber.Ctx, role core.Role) (*core.AuthContext, error) {
	if a.auth == nil {
		return nil, core.AsError(core.ErrHTTPAdapterRequired)
	}

	ac, err := a.auth.Authenticate(c.Context(), requestSource{c: c})
	if err != nil {
		return nil, err
	}

	if err := core.Authorize(ac, role).Err(); err != nil {
		return nil, err
	}

	c.Locals(authContextKey, ac)
	return ac, nil
}

// MetricsHandler adapts a net/http handler, e.g. a Prometheus exposition
// handler, to fiber.
func MetricsHandler(h http.Handler) fiber.Handler {
	return adaptor.HTTPHandler(h)
}
