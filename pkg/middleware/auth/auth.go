package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
	"github.com/Skotchmaster/bakery/pkg/tokens"
)

const (
	CookieName = "token"

	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
)

type Middleware struct {
	JWTSecret    []byte
	CookieSecure bool
}

func New(secret []byte, cookieSecure bool) *Middleware {
	return &Middleware{JWTSecret: secret, CookieSecure: cookieSecure}
}

// tokenFrom prefers the cookie and falls back to a bearer header for API clients.
func tokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if v, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// RequireAuth validates the access token and stores the identity on the context.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context())

		raw := tokenFrom(c)
		if raw == "" {
			l.Warn("auth_failed", "status", 401, "reason", "token missing")
			return apperr.ErrTokenMissing
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "token invalid", "error", err)
			c.SetCookie(m.ClearCookie())
			return apperr.ErrTokenInvalid
		}
		id, err := claims.UserID()
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "bad subject", "error", err)
			return apperr.ErrTokenInvalid
		}

		c.Set(CtxUserID, id)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxEmail, claims.Email)
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return apperr.ErrTokenInvalid
			}
			if !slices.Contains(roles, role) {
				logging.FromContext(c.Request().Context()).Warn("auth_failed",
					"status", 403, "reason", "role not allowed", "role", role)
				return apperr.ErrForbidden
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) uint {
	id, _ := c.Get(CtxUserID).(uint)
	return id
}

func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

func Email(c echo.Context) string {
	e, _ := c.Get(CtxEmail).(string)
	return e
}

func (m *Middleware) SessionCookie(token string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   m.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Middleware) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
