package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/internal/service"
	"github.com/Skotchmaster/bakery/internal/transport"
	"github.com/Skotchmaster/bakery/pkg/logging"
	middleware "github.com/Skotchmaster/bakery/pkg/middleware/auth"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Get(c echo.Context) error {
	cart, err := h.Svc.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := bind(c, &req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	item, err := h.Svc.Add(ctx, middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	var req transport.UpdateCartRequest
	if err := bind(c, &req); err != nil {
		logging.FromContext(ctx).Warn("update_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	item, err := h.Svc.Update(ctx, middleware.UserID(c), productID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) Remove(c echo.Context) error {
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(c.Request().Context(), middleware.UserID(c), productID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Item removed from cart"})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	if _, err := h.Svc.Clear(c.Request().Context(), middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Cart cleared"})
}
