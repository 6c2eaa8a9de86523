package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery/internal/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUserByEmail returns (nil, nil) for unknown emails.
func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) SetRole(ctx context.Context, id uint, role models.Role) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListUsers returns every user, or only those with role when it is set.
func (r *GormRepo) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	db := r.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if role != "" {
		db = db.Where("role = ?", role)
	}
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DriverRemoval reports what RemoveDriver did to the account.
type DriverRemoval int

const (
	DriverNotFound DriverRemoval = iota
	DriverDeleted
	// DriverDemoted: the account owns orders, which must outlive it, so it
	// keeps existing as a customer.
	DriverDemoted
)

// RemoveDriver deletes the user if it still has the driver role. Users that
// placed orders themselves are demoted to customer instead.
func (r *GormRepo) RemoveDriver(ctx context.Context, id uint) (DriverRemoval, error) {
	out := DriverNotFound
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		err := tx.Where("id = ? AND role = ?", id, models.RoleDriver).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var owned int64
		if err := tx.Model(&models.Order{}).Where("user_id = ?", id).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			if err := tx.Model(&u).Update("role", models.RoleCustomer).Error; err != nil {
				return err
			}
			out = DriverDemoted
			return nil
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&u).Error; err != nil {
			return err
		}
		out = DriverDeleted
		return nil
	})
	if err != nil {
		return DriverNotFound, err
	}
	return out, nil
}
