package loggingmw

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
)

func TestRequestLoggerRendersErrors(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
	e.GET("/boom", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return apperr.ErrForbidden
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	require.Contains(t, buf.String(), "inside_handler")
	require.Contains(t, buf.String(), `"status":403`)
}
