// Package csrf implements double-submit cookie protection for requests that
// authenticate with the session cookie.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
)

type Config struct {
	CookieName string
	HeaderName string
	// SessionCookie is the auth cookie; requests without it carry no ambient
	// credentials and are not checked.
	SessionCookie string

	Secure bool
	MaxAge time.Duration

	// SkipOriginCheck turns off the Origin/Referer comparison.
	SkipOriginCheck bool
	SkipPaths       []string
}

func DefaultConfig() Config {
	return Config{
		CookieName:    "XSRF-TOKEN",
		HeaderName:    "X-CSRF-Token",
		SessionCookie: "token",
		MaxAge:        24 * time.Hour,
	}
}

var (
	errToken  = apperr.ErrForbidden.Msg("Invalid CSRF token")
	errOrigin = apperr.ErrForbidden.Msg("Invalid request origin")
)

func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = def.SessionCookie
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	skip := map[string]struct{}{}
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			token := readCookie(req, cfg.CookieName)
			if token == "" {
				var err error
				if token, err = newToken(32); err != nil {
					return apperr.ErrServer.Wrap(err)
				}
				setCookie(c, cfg, token)
			}

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}
			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}
			if strings.HasPrefix(req.Header.Get(echo.HeaderAuthorization), "Bearer ") {
				return next(c)
			}
			if readCookie(req, cfg.SessionCookie) == "" {
				return next(c)
			}

			l := logging.FromContext(req.Context())
			if !cfg.SkipOriginCheck && !SameOrigin(req) {
				l.Warn("csrf_rejected", "status", 403, "reason", "origin mismatch")
				return errOrigin
			}
			provided := req.Header.Get(cfg.HeaderName)
			if provided == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
				l.Warn("csrf_rejected", "status", 403, "reason", "token mismatch")
				return errToken
			}
			return next(c)
		}
	}
}

func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func setCookie(c echo.Context, cfg Config, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Secure:   cfg.Secure,
		HttpOnly: false,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

func readCookie(req *http.Request, name string) string {
	ck, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// SameOrigin accepts Origin, falling back to Referer.
func SameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, schemeOf(r)) && strings.EqualFold(u.Host, r.Host)
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
