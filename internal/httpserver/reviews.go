package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/internal/service"
	"github.com/Skotchmaster/bakery/internal/transport"
	middleware "github.com/Skotchmaster/bakery/pkg/middleware/auth"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	var req transport.CreateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rv, err := h.Svc.AddReview(c.Request().Context(), middleware.UserID(c), service.ReviewInput{
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHTTP) ByProduct(c echo.Context) error {
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	page, limit := pageParams(c)
	res, err := h.Svc.ListByProduct(c.Request().Context(), productID, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReviewHTTP) CanReview(c echo.Context) error {
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	el, err := h.Svc.CanReview(c.Request().Context(), middleware.UserID(c), productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, el)
}

func (h *ReviewHTTP) Mine(c echo.Context) error {
	items, err := h.Svc.ListMine(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ReviewHTTP) Rating(c echo.Context) error {
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	r, err := h.Svc.Rating(c.Request().Context(), productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}
