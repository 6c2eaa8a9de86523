package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bakery/internal/models"
)

type Type string

const (
	OrderPlaced           Type = "order_placed"
	OrderStatusChanged    Type = "order_status_changed"
	DriverAssigned        Type = "driver_assigned"
	DeliveryStatusChanged Type = "delivery_status_changed"
)

type OrderEvent struct {
	ID          string             `json:"id"`
	Type        Type               `json:"type"`
	OrderID     uint               `json:"order_id"`
	UserID      uint               `json:"user_id"`
	DriverID    *uint              `json:"driver_id,omitempty"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func NewOrderEvent(t Type, o *models.Order) OrderEvent {
	return OrderEvent{
		ID:          uuid.NewString(),
		Type:        t,
		OrderID:     o.ID,
		UserID:      o.UserID,
		DriverID:    o.DriverID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

// Fanout delivers to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e OrderEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
