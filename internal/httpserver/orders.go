package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery/internal/events"
	"github.com/Skotchmaster/bakery/internal/service"
	"github.com/Skotchmaster/bakery/internal/transport"
	"github.com/Skotchmaster/bakery/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
	Hub *events.Hub
}

func (h *OrderHTTP) Place(c echo.Context) error {
	ctx := c.Request().Context()
	order, err := h.Svc.PlaceOrder(ctx, actor(c))
	if err != nil {
		return err
	}
	logging.FromContext(ctx).With("handler", "order.place").Info("place_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.OrderResponse{Success: true, Order: order})
}

func (h *OrderHTTP) Mine(c echo.Context) error {
	a := actor(c)
	page, err := h.Svc.ListForCustomer(c.Request().Context(), a.ID, orderQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) Assigned(c echo.Context) error {
	a := actor(c)
	page, err := h.Svc.ListForDriver(c.Request().Context(), a.ID, orderQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) All(c echo.Context) error {
	page, err := h.Svc.ListAll(c.Request().Context(), orderQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.Svc.GetOrder(c.Request().Context(), id, actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.OrderResponse{Success: true, Order: order})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		logging.FromContext(ctx).Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.OrderResponse{Success: true, Order: order})
}

func (h *OrderHTTP) AssignDriver(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.AssignDriverRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.Svc.AssignDriver(ctx, id, req.DriverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.OrderResponse{Success: true, Order: order})
}

func (h *OrderHTTP) UpdateDeliveryStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.Svc.UpdateDeliveryStatus(ctx, id, actor(c), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.OrderResponse{Success: true, Order: order})
}

// Stream upgrades to a websocket that receives the order events visible to
// the caller.
func (h *OrderHTTP) Stream(c echo.Context) error {
	a := actor(c)
	if err := h.Hub.ServeWS(c.Response(), c.Request(), a.ID, a.Role); err != nil {
		logging.FromContext(c.Request().Context()).Warn("order_stream_error", "reason", "upgrade failed", "error", err)
	}
	return nil
}
