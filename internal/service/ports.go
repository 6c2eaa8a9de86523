package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/notify"
	"github.com/Skotchmaster/bakery/internal/tasks"
)

// Actor is the authenticated caller as established by the auth middleware.
type Actor struct {
	ID    uint
	Role  models.Role
	Email string
}

type CartStore interface {
	GetCart(ctx context.Context, userID uint) ([]models.CartItem, error)
	ClearCart(ctx context.Context, userID uint) (int64, error)
}

type CatalogStore interface {
	// GetProduct returns (nil, nil) for a missing product.
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, q models.OrderQuery) ([]models.Order, int64, error)
	SetStatus(ctx context.Context, id uint, status models.OrderStatus) (bool, error)
	SetDriver(ctx context.Context, id, driverID uint) (bool, error)
	SetDeliveryStatus(ctx context.Context, id, driverID uint, status models.OrderStatus) (bool, error)
	UnassignDriverFromAll(ctx context.Context, driverID uint) (int64, error)
	CustomerEmail(ctx context.Context, orderID uint) (string, error)
}

type Mailer interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
	SendInvoice(ctx context.Context, to string, inv notify.Invoice) error
	SendDriverPromotion(ctx context.Context, to string) error
	SendDeliveryUpdate(ctx context.Context, to string, u notify.DeliveryUpdate) error
}

type Spawner interface {
	Go(ctx context.Context, name string, fn tasks.Func)
}
