package fiber

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gymcoach/gymauth/core"
	"github.com/gymcoach/gymauth/internal/logging"
)

const (
	codeRateLimited      = "rate_limited"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// loginRequest accepts both a JSON body {email, password} and the OAuth2
// password form (username, password).
type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (a *Adapter) handleRegister(ctx *core.RequestContext) error {
	fctx := ctx.Request.(fiber.Ctx)

	var input core.RegisterInput
	if err := fctx.Bind().Body(&input); err != nil {
		return a.respondError(fctx, core.InvalidInput(core.CodeInvalidRequest, "invalid request body"))
	}

	user, err := a.auth.Register(fctx.Context(), input)
	if err != nil {
		return a.respondError(fctx, err)
	}

	return fctx.Status(http.StatusCreated).JSON(user)
}

func (a *Adapter) handleLogin(ctx *core.RequestContext) error {
	fctx := ctx.Request.(fiber.Ctx)

	var req loginRequest
	if err := fctx.Bind().Body(&req); err != nil {
		return a.respondError(fctx, core.InvalidInput(core.CodeInvalidRequest, "invalid request body"))
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}

	res, err := a.auth.Login(fctx.Context(), core.LoginInput{Email: email, Password: req.Password})
	if err != nil {
		return a.respondError(fctx, err)
	}

	if a.opts.Delivery.Cookie() {
		a.setTokenCookie(fctx, res.AccessToken, a.auth.TokenTTL())
	}

	body := *res
	if !a.opts.Delivery.Body() {
		body.AccessToken = ""
	}

	return fctx.Status(http.StatusOK).JSON(body)
}

// handleLogout only clears the cookie. Tokens already handed out stay valid
// until they expire.
func (a *Adapter) handleLogout(ctx *core.RequestContext) error {
	fctx := ctx.Request.(fiber.Ctx)

	a.clearTokenCookie(fctx)

	return fctx.Status(http.StatusOK).JSON(fiber.Map{
		"message": "logged out",
	})
}

func (a *Adapter) handleMe(ctx *core.RequestContext) error {
	fctx := ctx.Request.(fiber.Ctx)

	user, err := a.auth.Profile(fctx.Context(), ctx.Auth)
	if err != nil {
		return a.respondError(fctx, err)
	}

	return fctx.Status(http.StatusOK).JSON(user)
}

func (a *Adapter) setTokenCookie(c fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.opts.Transport.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Secure:   a.opts.SecureCookie,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *Adapter) clearTokenCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.opts.Transport.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   a.opts.SecureCookie,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// respondError maps err onto a status code and JSON error body. The error
// reason is logged, never sent.
func (a *Adapter) respondError(c fiber.Ctx, err error) error {
	return writeError(c, a.log, err)
}

func writeError(c fiber.Ctx, log logging.Logger, err error) error {
	e := core.AsError(err)
	status := mapErrorToStatus(e)

	if status == http.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	if status >= http.StatusInternalServerError {
		log.Error(c.Context(), "request failed",
			"method", c.Method(), "path", c.Path(), "code", e.Code, "reason", e.Reason)
	}

	return c.Status(status).JSON(errorBody{
		Error:   e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// mapErrorToStatus maps core error kinds to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, core.ErrDuplicateEmail),
		errors.Is(err, core.ErrWeakPassword),
		errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders errors that escape handlers, including fiber's own
// (unknown route, bad method), in the same JSON shape as auth errors.
func ErrorHandler(log logging.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logging.Discard()
	}
	return func(c fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return writeError(c, log, err)
		}

		code := core.CodeInvalidRequest
		switch {
		case fe.Code == http.StatusNotFound:
			code = codeNotFound
		case fe.Code == http.StatusMethodNotAllowed:
			code = codeMethodNotAllowed
		case fe.Code == http.StatusTooManyRequests:
			code = codeRateLimited
		case fe.Code >= http.StatusInternalServerError:
			code = core.CodeInternal
		}

		return c.Status(fe.Code).JSON(errorBody{
			Error:   code,
			Message: strings.ToLower(fe.Message),
		})
	}
}
