package httpserver

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/service"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	middleware "github.com/Skotchmaster/bakery/pkg/middleware/auth"
	"github.com/Skotchmaster/bakery/pkg/pagination"
)

func actor(c echo.Context) service.Actor {
	return service.Actor{
		ID:    middleware.UserID(c),
		Role:  models.Role(middleware.Role(c)),
		Email: middleware.Email(c),
	}
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrValidation.Msgf("invalid %s", name)
	}
	return uint(id), nil
}

// bind decodes and validates the body.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.ErrValidation.Msg("invalid body").Wrap(err)
	}
	return c.Validate(req)
}

func pageParams(c echo.Context) (int, int) {
	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	limit := pagination.ParseIntDefault(c.QueryParam("limit"), pagination.DefaultLimit)
	return pagination.Normalize(page, limit)
}

func orderQuery(c echo.Context) models.OrderQuery {
	page, limit := pageParams(c)
	return models.OrderQuery{
		Page:   page,
		Limit:  limit,
		SortBy: c.QueryParam("sortBy"),
		Desc:   pagination.IsDesc(c.QueryParam("order")),
		Status: c.QueryParam("status"),
	}
}
