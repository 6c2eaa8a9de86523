package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/pkg/logging"
)

type Body struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func fromHTTPError(he *echo.HTTPError) *Error {
	msg := fmt.Sprint(he.Message)
	code := CodeServer
	switch {
	case he.Code == http.StatusUnauthorized:
		code = CodeTokenInvalid
	case he.Code == http.StatusForbidden:
		code = CodeForbidden
	case he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed:
		code = CodeNotFound
	case he.Code == http.StatusConflict:
		code = CodeConflict
	case he.Code >= 400 && he.Code < 500:
		code = CodeValidation
	}
	return &Error{Code: code, Status: he.Code, Message: msg, Err: he.Internal}
}

// HTTPErrorHandler renders {success:false, code, message} for every failed request.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ae *Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
	case errors.As(err, &he):
		ae = fromHTTPError(he)
	default:
		ae = ErrServer.Wrap(err)
	}

	if ae.Status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_failed",
			"status", ae.Status,
			"code", ae.Code,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(ae.Status)
		return
	}
	_ = c.JSON(ae.Status, Body{Success: false, Code: ae.Code, Message: ae.Message})
}
