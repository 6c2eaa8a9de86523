package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/internal/service"
	"github.com/Skotchmaster/bakery/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) Drivers(c echo.Context) error {
	users, err := h.Svc.ListDrivers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) PromoteDriver(c echo.Context) error {
	var req transport.PromoteDriverRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, created, err := h.Svc.PromoteDriver(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, transport.PromoteDriverResponse{Success: true, User: u, Created: created})
}

func (h *UserHTTP) DeleteDriver(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.Svc.DeleteDriver(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
