package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bakery/pkg/apperr"
)

func newEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/cart", ok)
	e.POST("/cart", ok)
	e.POST("/login", ok)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCSRF(t *testing.T) {
	e := newEcho(Config{SkipPaths: []string{"/login"}})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	session := &http.Cookie{Name: "token", Value: "jwt"}
	xsrf := &http.Cookie{Name: "XSRF-TOKEN", Value: token}

	// cookie session without the header
	req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(session)
	req.AddCookie(xsrf)
	require.Equal(t, http.StatusForbidden, serve(e, req).Code)

	// matching header
	req = httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(session)
	req.AddCookie(xsrf)
	require.Equal(t, http.StatusNoContent, serve(e, req).Code)

	// foreign origin
	req = httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(session)
	req.AddCookie(xsrf)
	require.Equal(t, http.StatusForbidden, serve(e, req).Code)

	// bearer clients and anonymous requests are not checked
	req = httptest.NewRequest(http.MethodPost, "/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	req.AddCookie(session)
	require.Equal(t, http.StatusNoContent, serve(e, req).Code)
	require.Equal(t, http.StatusNoContent, serve(e, httptest.NewRequest(http.MethodPost, "/cart", nil)).Code)

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(session)
	require.Equal(t, http.StatusNoContent, serve(e, req).Code)
}

func TestOriginCheckOnByDefault(t *testing.T) {
	session := &http.Cookie{Name: "token", Value: "jwt"}
	post := func(origin string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/cart", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		req.Header.Set("X-CSRF-Token", "t")
		req.AddCookie(session)
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "t"})
		return req
	}

	// a config that only sets the session cookie still compares origins
	e := newEcho(Config{SessionCookie: "token"})
	require.Equal(t, http.StatusForbidden, serve(e, post("http://evil.test")).Code)
	require.Equal(t, http.StatusForbidden, serve(e, post("")).Code)
	require.Equal(t, http.StatusNoContent, serve(e, post("http://example.com")).Code)

	e = newEcho(Config{SkipOriginCheck: true})
	require.Equal(t, http.StatusNoContent, serve(e, post("http://evil.test")).Code)
}

func TestSameOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://shop.test/ws", nil)
	req.Header.Set("Referer", "http://shop.test/orders")
	require.True(t, SameOrigin(req))

	req.Header.Set("Origin", "https://shop.test")
	require.False(t, SameOrigin(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	require.True(t, SameOrigin(req))
}
