package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/internal/service"
	"github.com/Skotchmaster/bakery/internal/transport"
	"github.com/Skotchmaster/bakery/pkg/logging"
	middleware "github.com/Skotchmaster/bakery/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc *service.AuthService
	MW  *middleware.Middleware
}

func (h *AuthHTTP) RequestOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.request_otp")

	var req transport.RequestOTPRequest
	if err := bind(c, &req); err != nil {
		l.Warn("request_otp_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	if err := h.Svc.RequestOTP(ctx, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "OTP sent to your email"})
}

func (h *AuthHTTP) LoginOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login_otp")

	var req transport.LoginOTPRequest
	if err := bind(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	res, err := h.Svc.LoginOTP(ctx, req.Email, req.OTP)
	if err != nil {
		return err
	}

	c.SetCookie(h.MW.SessionCookie(res.Token, res.ExpiresAt))
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Success:   true,
		User:      res.User,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(h.MW.ClearCookie())
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	u, err := h.Svc.Me(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
