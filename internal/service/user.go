package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/repo"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/logging"
	"github.com/Skotchmaster/bakery/pkg/validate"
)

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
	RemoveDriver(ctx context.Context, id uint) (repo.DriverRemoval, error)
}

type UserService struct {
	Users  UserStore
	Orders OrderStore
	Mailer Mailer
	Tasks  Spawner
}

type DeleteDriverResult struct {
	DriverID       uint  `json:"driver_id"`
	Deleted        bool  `json:"deleted"`
	Demoted        bool  `json:"demoted"`
	OrdersAffected int64 `json:"orders_affected"`
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validate.Email(email) {
		return "", apperr.ErrValidation.Msg("a valid email is required")
	}
	return email, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, "")
}

func (s *UserService) ListDrivers(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, models.RoleDriver)
}

func (s *UserService) list(ctx context.Context, role models.Role) ([]models.User, error) {
	users, err := s.Users.ListUsers(ctx, role)
	if err != nil {
		logging.FromContext(ctx).Error("list_users_error", "status", 500, "role", role, "error", err)
		return nil, apperr.Query(err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Grant gives the account behind email the role, creating the account when it
// does not exist yet. created reports whether a new user was inserted.
func (s *UserService) Grant(ctx context.Context, email string, role models.Role) (u *models.User, created bool, err error) {
	l := logging.FromContext(ctx).With("svc", "user.grant", "role", role)

	if role != models.RoleDriver && role != models.RoleAdmin && role != models.RoleCustomer {
		return nil, false, apperr.ErrValidation.Msgf("unknown role %q", role)
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, false, err
	}

	u, err = s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		l.Error("grant_role_error", "status", 500, "error", err)
		return nil, false, apperr.Query(err)
	}
	if u == nil {
		u = &models.User{Email: email, Role: role}
		if err := s.Users.CreateUser(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, false, apperr.ErrConflict.Msg("User already exists")
			}
			l.Error("grant_role_error", "status", 500, "error", err)
			return nil, false, apperr.Query(err)
		}
		l.Info("grant_role_success", "user_id", u.ID, "created", true)
		return u, true, nil
	}

	if u.Role != role {
		if err := s.Users.SetRole(ctx, u.ID, role); err != nil {
			l.Error("grant_role_error", "status", 500, "user_id", u.ID, "error", err)
			return nil, false, apperr.Query(err)
		}
		u.Role = role
	}
	l.Info("grant_role_success", "user_id", u.ID, "created", false)
	return u, false, nil
}

// PromoteDriver makes the user a driver and emails them in the background.
// Admin accounts are never demoted this way.
func (s *UserService) PromoteDriver(ctx context.Context, email string) (*models.User, bool, error) {
	norm, err := normalizeEmail(email)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.Users.GetUserByEmail(ctx, norm)
	if err != nil {
		return nil, false, apperr.Query(err)
	}
	if existing != nil && existing.Role == models.RoleAdmin {
		logging.FromContext(ctx).Warn("promote_driver_error", "status", 409, "reason", "user is an admin", "user_id", existing.ID)
		return nil, false, apperr.ErrConflict.Msg("User is an admin")
	}

	u, created, err := s.Grant(ctx, norm, models.RoleDriver)
	if err != nil {
		return nil, false, err
	}
	if s.Mailer != nil && s.Tasks != nil {
		to := u.Email
		s.Tasks.Go(ctx, "send_driver_promotion", func(ctx context.Context) error {
			return s.Mailer.SendDriverPromotion(ctx, to)
		})
	}
	return u, created, nil
}

// DeleteDriver releases every order of the driver back to Pending and then
// removes the account. A failed release keeps the driver.
func (s *UserService) DeleteDriver(ctx context.Context, driverID uint) (*DeleteDriverResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.delete_driver", "driver_id", driverID)

	n, err := s.Orders.UnassignDriverFromAll(ctx, driverID)
	if err != nil {
		l.Error("delete_driver_error", "status", 500, "reason", "cannot unassign orders", "error", err)
		return nil, ErrDriverDeleteFailed.Wrap(err)
	}

	removal, err := s.Users.RemoveDriver(ctx, driverID)
	if err != nil {
		l.Error("delete_driver_error", "status", 500, "reason", "cannot delete user", "orders_affected", n, "error", err)
		return nil, ErrDriverDeleteFailed.Wrap(err)
	}
	res := &DeleteDriverResult{DriverID: driverID, OrdersAffected: n}
	switch removal {
	case repo.DriverDeleted:
		res.Deleted = true
	case repo.DriverDemoted:
		res.Demoted = true
	default:
		l.Warn("delete_driver_error", "status", 404, "reason", "driver not found", "orders_affected", n)
		return nil, ErrDriverNotFound
	}

	l.Info("delete_driver_success", "orders_affected", n, "demoted", res.Demoted)
	return res, nil
}
