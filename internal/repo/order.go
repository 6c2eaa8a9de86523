package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/pkg/pagination"
)

// CreateOrder inserts the header and its lines atomically. On success
// order.ID and every item's OrderID are populated.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// GetOrder returns (nil, nil) when the order does not exist.
func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Customer").
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, q models.OrderQuery) ([]models.Order, int64, error) {
	db := r.DB.WithContext(ctx).Model(&models.Order{})
	if q.UserID != 0 {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.DriverID != 0 {
		db = db.Where("driver_id = ?", q.DriverID)
	}
	if q.Status != "" {
		db = db.Where("LOWER(status) = LOWER(?)", q.Status)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pagination.Calculate(q.Page, q.Limit)
	col := pagination.SortColumn(q.SortBy, models.OrderSortFields, "created_at")

	find := db.Order(pagination.OrderBy(col, q.Desc)).Order("id DESC").Offset(offset).Limit(limit)
	if q.WithCustomer {
		find = find.Preload("Customer")
	}

	var orders []models.Order
	if err := find.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormRepo) SetStatus(ctx context.Context, id uint, status models.OrderStatus) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepo) SetDriver(ctx context.Context, id, driverID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("driver_id", driverID)
	return res.RowsAffected > 0, res.Error
}

// SetDeliveryStatus only touches the order if it is assigned to driverID.
func (r *GormRepo) SetDeliveryStatus(ctx context.Context, id, driverID uint, status models.OrderStatus) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND driver_id = ?", id, driverID).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

// UnassignDriverFromAll puts every order of the driver back into the Pending queue.
func (r *GormRepo) UnassignDriverFromAll(ctx context.Context, driverID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("driver_id = ?", driverID).
		Updates(map[string]any{"driver_id": nil, "status": models.StatusPending})
	return res.RowsAffected, res.Error
}

// CustomerEmail returns "" when the order or its customer is gone.
func (r *GormRepo) CustomerEmail(ctx context.Context, orderID uint) (string, error) {
	var emails []string
	err := r.DB.WithContext(ctx).
		Table("orders").
		Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.id = ?", orderID).
		Limit(1).
		Pluck("users.email", &emails).Error
	if err != nil || len(emails) == 0 {
		return "", err
	}
	return emails[0], nil
}
