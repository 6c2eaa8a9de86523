package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/pkg/pagination"
)

// GetProduct returns (nil, nil) when the product does not exist.
func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	db := r.DB.WithContext(ctx).Model(&models.Product{})

	if q.IDs != nil {
		if len(q.IDs) == 0 {
			return []models.Product{}, 0, nil
		}
		db = db.Where("id IN ?", q.IDs)
	} else if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}

	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pagination.Calculate(q.Page, q.Limit)
	col := pagination.SortColumn(q.SortBy, models.ProductSortFields, "created_at")

	var items []models.Product
	if err := db.Order(pagination.OrderBy(col, q.Desc)).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// UpdateProduct applies the non-empty column map and returns the fresh row.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, updates map[string]any) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
		}
		return tx.First(&p, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock is a single conditional UPDATE; it reports false when the
// product is gone or has fewer than qty units left.
func (r *GormRepo) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
