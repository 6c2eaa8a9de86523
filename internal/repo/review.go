package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/pkg/pagination"
)

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(rv).Error
}

func (r *GormRepo) HasReviewed(ctx context.Context, userID, productID, orderID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND product_id = ? AND order_id = ?", userID, productID, orderID).
		Count(&n).Error
	return n > 0, err
}

// HasReviewedProduct reports whether the user reviewed the product under any
// order.
func (r *GormRepo) HasReviewedProduct(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	return n > 0, err
}

// IsOrderEligible checks that orderID belongs to userID, is Delivered and
// contains productID.
func (r *GormRepo) IsOrderEligible(ctx context.Context, userID, productID, orderID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Table("orders").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.id = ? AND orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			orderID, userID, models.StatusDelivered, productID).
		Count(&n).Error
	return n > 0, err
}

// FindEligibleOrder returns the most recent Delivered order of the user that
// contains the product and has not been reviewed for it yet, or 0.
func (r *GormRepo) FindEligibleOrder(ctx context.Context, userID, productID uint) (uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Table("orders").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, models.StatusDelivered, productID).
		Where("NOT EXISTS (SELECT 1 FROM reviews WHERE reviews.user_id = orders.user_id AND reviews.product_id = order_items.product_id AND reviews.order_id = orders.id)").
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(1).
		Pluck("orders.id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return ids[0], nil
}

func (r *GormRepo) ListProductReviews(ctx context.Context, productID uint, page, limit int) ([]models.Review, int64, error) {
	db := r.DB.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, size := pagination.Calculate(page, limit)
	var items []models.Review
	if err := r.DB.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(size).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) ListUserReviews(ctx context.Context, userID uint) ([]models.Review, error) {
	var items []models.Review
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ProductRating(ctx context.Context, productID uint) (models.Rating, error) {
	var out models.Rating
	err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&out).Error
	return out, err
}
