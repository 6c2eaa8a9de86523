package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesOnCode(t *testing.T) {
	custom := ErrConflict.Msg("You have already reviewed this product for this order")
	wrapped := fmt.Errorf("add review: %w", custom)

	require.ErrorIs(t, wrapped, ErrConflict)
	require.NotErrorIs(t, wrapped, ErrForbidden)
	require.Equal(t, "Resource already exists", ErrConflict.Message)
}

func TestQueryHidesCause(t *testing.T) {
	cause := errors.New("pq: relation \"orders\" does not exist")
	err := Query(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, http.StatusInternalServerError, err.Status)
	require.NotContains(t, err.Message, "relation")
}

func TestFromUnknownError(t *testing.T) {
	ae := From(errors.New("boom"))
	require.Equal(t, CodeServer, ae.Code)
	require.Equal(t, "Internal server error", ae.Message)
	require.Nil(t, From(nil))
}

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"app error", ErrForbidden, http.StatusForbidden, CodeForbidden, ErrForbidden.Message},
		{"echo error", echo.NewHTTPError(http.StatusNotFound, "Not Found"), http.StatusNotFound, CodeNotFound, "Not Found"},
		{"storage error", Query(errors.New("secret dsn")), http.StatusInternalServerError, CodeQueryFailed, "Database operation failed"},
		{"plain error", errors.New("secret"), http.StatusInternalServerError, CodeServer, "Internal server error"},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			HTTPErrorHandler(tc.err, c)

			require.Equal(t, tc.status, rec.Code)
			var body Body
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.False(t, body.Success)
			require.Equal(t, tc.code, body.Code)
			require.Equal(t, tc.msg, body.Message)
			require.NotContains(t, rec.Body.String(), "secret")
		})
	}
}
