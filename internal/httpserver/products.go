package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/service"
	"github.com/Skotchmaster/bakery/internal/transport"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
	"github.com/Skotchmaster/bakery/pkg/pagination"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func priceParam(c echo.Context, name string) (*decimal.Decimal, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, apperr.ErrValidation.Msgf("%s must be a number", name)
	}
	return &d, nil
}

func (h *CatalogHTTP) List(c echo.Context) error {
	page, limit := pageParams(c)
	q := models.ProductQuery{
		Page:     page,
		Limit:    limit,
		SortBy:   c.QueryParam("sortBy"),
		Desc:     pagination.IsDesc(c.QueryParam("order")),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	var err error
	if q.MinPrice, err = priceParam(c, "minPrice"); err != nil {
		return err
	}
	if q.MaxPrice, err = priceParam(c, "maxPrice"); err != nil {
		return err
	}

	res, err := h.Svc.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create")

	var req transport.CreateProductRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	p, err := h.Svc.Create(ctx, &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := bind(c, &req); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	p, err := h.Svc.Update(ctx, id, service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Product deleted"})
}
