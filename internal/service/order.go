package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/bakery/internal/events"
	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/notify"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
	"github.com/Skotchmaster/bakery/pkg/pagination"
	"github.com/Skotchmaster/bakery/pkg/telemetry"
)

var tracer = telemetry.Tracer("bakery/service")

// productLookupLimit bounds concurrent catalog reads during placement.
const productLookupLimit = 8

// OrderService owns the order lifecycle: placement from the cart, admin status
// changes, driver assignment and driver delivery updates.
type OrderService struct {
	Carts   CartStore
	Catalog CatalogStore
	Orders  OrderStore
	Mailer  Mailer
	Events  events.Publisher
	Tasks   Spawner
}

// PlaceOrder turns the customer's cart into a Pending order priced at current
// catalog prices. Every line is validated before anything is written. Stock
// decrement, cart clearing, the invoice email and the order_placed event run
// as background tasks after the order is committed.
func (s *OrderService) PlaceOrder(ctx context.Context, customer Actor) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "order.place", trace.WithAttributes(
		attribute.Int64("user.id", int64(customer.ID)),
	))
	order, err := s.placeOrder(ctx, customer)
	if order != nil {
		span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))
	}
	telemetry.End(span, err)

	outcome := "success"
	if err != nil {
		outcome = apperr.From(err).Code
	}
	telemetry.OrderPlaced(outcome)
	return order, err
}

func (s *OrderService) placeOrder(ctx context.Context, customer Actor) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", customer.ID)

	cart, err := s.Carts.GetCart(ctx, customer.ID)
	if err != nil {
		l.Error("place_order_error", "status", 500, "reason", "cannot read cart", "error", err)
		return nil, apperr.Query(err)
	}
	if len(cart) == 0 {
		l.Warn("place_order_error", "status", 400, "reason", "cart is empty")
		return nil, ErrCartEmpty
	}

	products, err := s.lookupProducts(ctx, cart)
	if err != nil {
		l.Error("place_order_error", "status", 500, "reason", "cannot read products", "error", err)
		return nil, apperr.Query(err)
	}

	items := make([]models.OrderItem, 0, len(cart))
	total := decimal.Zero
	for i, line := range cart {
		p := products[i]
		if err := checkLine(line, p); err != nil {
			l.Warn("place_order_error", "status", apperr.StatusOf(err), "reason", err.Error(), "product_id", line.ProductID)
			return nil, err
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)
		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
			Subtotal:    subtotal,
		})
	}

	order := &models.Order{
		UserID:      customer.ID,
		TotalAmount: total,
		Status:      models.StatusPending,
	}
	if err := s.Orders.CreateOrder(ctx, order, items); err != nil {
		l.Error("place_order_error", "status", 500, "reason", "cannot create order", "error", err)
		return nil, ErrOrderCreation.Wrap(err)
	}

	l.Info("place_order_success", "order_id", order.ID, "total", total.StringFixed(2), "lines", len(items))
	s.afterPlacement(ctx, customer, order, items)
	return order, nil
}

// lookupProducts reads every cart product concurrently; the result is indexed
// like cart, with nil for products that no longer exist.
func (s *OrderService) lookupProducts(ctx context.Context, cart []models.CartItem) ([]*models.Product, error) {
	products := make([]*models.Product, len(cart))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(productLookupLimit)
	for i, line := range cart {
		g.Go(func() error {
			p, err := s.Catalog.GetProduct(gctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("get product %d: %w", line.ProductID, err)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

func checkLine(line models.CartItem, p *models.Product) error {
	switch {
	case p == nil:
		return ErrProductNotFound.Msgf("Product %d not found", line.ProductID)
	case line.Quantity < 1:
		return ErrInvalidQuantity
	case p.Stock <= 0:
		return ErrOutOfStock.Msgf("%s is out of stock", p.Name)
	case line.Quantity > p.Stock:
		return ErrInsufficientStock.Msgf("Not enough stock for %s. Only %d available", p.Name, p.Stock)
	}
	return nil
}

func (s *OrderService) afterPlacement(ctx context.Context, customer Actor, order *models.Order, items []models.OrderItem) {
	snapshot := *order
	lines := append([]models.OrderItem(nil), items...)

	s.Tasks.Go(ctx, "decrement_stock", func(ctx context.Context) error {
		var errs []error
		for _, it := range lines {
			ok, err := s.Catalog.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				errs = append(errs, fmt.Errorf("product %d: %w", it.ProductID, err))
				continue
			}
			if !ok {
				logging.FromContext(ctx).Warn("stock_decrement_skipped",
					"order_id", snapshot.ID, "product_id", it.ProductID, "quantity", it.Quantity)
			}
		}
		return errors.Join(errs...)
	})

	s.Tasks.Go(ctx, "clear_cart", func(ctx context.Context) error {
		_, err := s.Carts.ClearCart(ctx, customer.ID)
		return err
	})

	if customer.Email != "" && s.Mailer != nil {
		s.Tasks.Go(ctx, "send_invoice", func(ctx context.Context) error {
			return s.Mailer.SendInvoice(ctx, customer.Email, notify.InvoiceFrom(&snapshot, lines))
		})
	}

	s.publish(ctx, events.OrderPlaced, &snapshot)
}

func (s *OrderService) publish(ctx context.Context, t events.Type, o *models.Order) {
	if s.Events == nil || o == nil {
		return
	}
	e := events.NewOrderEvent(t, o)
	s.Tasks.Go(ctx, "publish_"+string(t), func(ctx context.Context) error {
		return s.Events.Publish(ctx, e)
	})
}

// reload fetches the order after a successful update for the response and
// the outgoing event.
func (s *OrderService) reload(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, apperr.Query(err)
	}
	if o == nil {
		return nil, ErrOrderUpdate
	}
	return o, nil
}

// UpdateStatus lets an admin move an order to any status of the lifecycle.
// Transitions are deliberately unrestricted and re-applying the current
// status succeeds.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (o *models.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.update_status", trace.WithAttributes(
		attribute.Int64("order.id", int64(orderID)),
		attribute.String("order.status", status),
	))
	defer func() {
		telemetry.End(span, err)
		telemetry.OrderStatusUpdated("admin", status, err)
	}()
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", orderID)

	st, ok := models.ParseStatus(status)
	if !ok {
		l.Warn("update_status_error", "status", 400, "reason", "invalid status", "value", status)
		return nil, ErrInvalidStatus.Msgf("Invalid order status %q", status)
	}

	updated, err := s.Orders.SetStatus(ctx, orderID, st)
	if err != nil {
		l.Error("update_status_error", "status", 500, "reason", "cannot update order", "error", err)
		return nil, apperr.Query(err)
	}
	if !updated {
		l.Warn("update_status_error", "status", 404, "reason", "order not found")
		return nil, ErrOrderUpdate
	}

	o, err = s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}
	l.Info("update_status_success", "new_status", st)
	s.publish(ctx, events.OrderStatusChanged, o)
	return o, nil
}

// AssignDriver sets the driver of an order. The driver's role is not checked.
func (s *OrderService) AssignDriver(ctx context.Context, orderID, driverID uint) (o *models.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.assign_driver", trace.WithAttributes(
		attribute.Int64("order.id", int64(orderID)),
		attribute.Int64("driver.id", int64(driverID)),
	))
	defer func() { telemetry.End(span, err) }()
	l := logging.FromContext(ctx).With("svc", "order.assign_driver", "order_id", orderID)

	if driverID == 0 {
		l.Warn("assign_driver_error", "status", 400, "reason", "driver_id missing")
		return nil, apperr.ErrValidation.Msg("driver_id is required")
	}

	updated, err := s.Orders.SetDriver(ctx, orderID, driverID)
	if err != nil {
		l.Error("assign_driver_error", "status", 500, "reason", "cannot update order", "error", err)
		return nil, apperr.Query(err)
	}
	if !updated {
		l.Warn("assign_driver_error", "status", 404, "reason", "order not found")
		return nil, ErrOrderUpdate
	}

	o, err = s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}
	l.Info("assign_driver_success", "driver_id", driverID)
	s.publish(ctx, events.DriverAssigned, o)
	return o, nil
}

// UpdateDeliveryStatus is the driver's view of the lifecycle. The update only
// matches orders assigned to the driver, so an unknown order and somebody
// else's order are indistinguishable to the caller.
func (s *OrderService) UpdateDeliveryStatus(ctx context.Context, orderID uint, driver Actor, status string) (o *models.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.update_delivery_status", trace.WithAttributes(
		attribute.Int64("order.id", int64(orderID)),
		attribute.Int64("driver.id", int64(driver.ID)),
		attribute.String("order.status", status),
	))
	defer func() {
		telemetry.End(span, err)
		telemetry.OrderStatusUpdated("driver", status, err)
	}()
	l := logging.FromContext(ctx).With("svc", "order.update_delivery_status", "order_id", orderID, "driver_id", driver.ID)

	st, ok := models.ParseStatus(status)
	if !ok || !models.IsDeliveryStatus(st) {
		l.Warn("update_delivery_status_error", "status", 400, "reason", "status not allowed for drivers", "value", status)
		return nil, ErrInvalidDelivery
	}

	updated, err := s.Orders.SetDeliveryStatus(ctx, orderID, driver.ID, st)
	if err != nil {
		l.Error("update_delivery_status_error", "status", 500, "reason", "cannot update order", "error", err)
		return nil, apperr.Query(err)
	}
	if !updated {
		l.Warn("update_delivery_status_error", "status", 404, "reason", "order not found or not assigned to driver")
		return nil, ErrOrderUpdate.Msg("Order not found or not assigned to you")
	}

	o, err = s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}
	l.Info("update_delivery_status_success", "new_status", st)

	if st == models.StatusOnTheWay && s.Mailer != nil {
		s.Tasks.Go(ctx, "send_delivery_update", func(ctx context.Context) error {
			email, err := s.Orders.CustomerEmail(ctx, orderID)
			if err != nil {
				return err
			}
			if email == "" {
				return fmt.Errorf("order %d has no customer email", orderID)
			}
			return s.Mailer.SendDeliveryUpdate(ctx, email, notify.DeliveryUpdate{OrderID: orderID, Status: st})
		})
	}
	s.publish(ctx, events.DeliveryStatusChanged, o)
	return o, nil
}

// GetOrder returns the order with its lines. Customers may only read their
// own orders and drivers the ones assigned to them.
func (s *OrderService) GetOrder(ctx context.Context, orderID uint, viewer Actor) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.get", "order_id", orderID)

	o, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		l.Error("get_order_error", "status", 500, "reason", "cannot read order", "error", err)
		return nil, apperr.Query(err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	switch viewer.Role {
	case models.RoleAdmin:
	case models.RoleDriver:
		if o.DriverID == nil || *o.DriverID != viewer.ID {
			l.Warn("get_order_error", "status", 403, "reason", "order not assigned to driver")
			return nil, apperr.ErrForbidden
		}
	default:
		if o.UserID != viewer.ID {
			l.Warn("get_order_error", "status", 403, "reason", "order belongs to another customer")
			return nil, apperr.ErrForbidden
		}
	}
	return o, nil
}

func (s *OrderService) list(ctx context.Context, q models.OrderQuery) (pagination.Page[models.Order], error) {
	orders, total, err := s.Orders.ListOrders(ctx, q)
	if err != nil {
		logging.FromContext(ctx).Error("list_orders_error", "status", 500, "error", err)
		return pagination.Page[models.Order]{}, apperr.Query(err)
	}
	return pagination.New(orders, q.Page, q.Limit, total), nil
}

func (s *OrderService) ListForCustomer(ctx context.Context, customerID uint, q models.OrderQuery) (pagination.Page[models.Order], error) {
	q.UserID, q.DriverID, q.WithCustomer = customerID, 0, false
	return s.list(ctx, q)
}

func (s *OrderService) ListForDriver(ctx context.Context, driverID uint, q models.OrderQuery) (pagination.Page[models.Order], error) {
	q.UserID, q.DriverID, q.WithCustomer = 0, driverID, true
	return s.list(ctx, q)
}

func (s *OrderService) ListAll(ctx context.Context, q models.OrderQuery) (pagination.Page[models.Order], error) {
	q.UserID, q.DriverID, q.WithCustomer = 0, 0, true
	return s.list(ctx, q)
}
