package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/otp"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	pkg_hash "github.com/Skotchmaster/bakery/pkg/hash"
	"github.com/Skotchmaster/bakery/pkg/logging"
	"github.com/Skotchmaster/bakery/pkg/tokens"
)

type OTPStore interface {
	TTL() time.Duration
	Save(email, hash string) error
	Verify(email string, check func(hash string) bool) error
}

type AuthService struct {
	Users     UserStore
	OTP       OTPStore
	Mailer    Mailer
	JWTSecret []byte
	TokenTTL  time.Duration
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
	Created   bool
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestOTP emails a fresh six digit code to email. Only the bcrypt hash of
// the code is kept and any earlier pending code is replaced.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	l := logging.FromContext(ctx).With("svc", "auth.request_otp", "email", email)

	code, err := newCode()
	if err != nil {
		l.Error("request_otp_error", "status", 500, "reason", "cannot generate code", "error", err)
		return apperr.ErrServer.Wrap(err)
	}
	h, err := pkg_hash.Hash(code)
	if err != nil {
		l.Error("request_otp_error", "status", 500, "reason", "cannot hash code", "error", err)
		return apperr.ErrServer.Wrap(err)
	}
	if err := s.OTP.Save(email, h); err != nil {
		l.Error("request_otp_error", "status", 500, "reason", "cannot store code", "error", err)
		return apperr.ErrServer.Wrap(err)
	}
	if err := s.Mailer.SendOTP(ctx, email, code, s.OTP.TTL()); err != nil {
		l.Error("request_otp_error", "status", 500, "reason", "cannot send email", "error", err)
		return ErrOTPSend.Wrap(err)
	}

	l.Info("request_otp_success")
	return nil
}

// LoginOTP exchanges a valid code for an access token. The first successful
// login of an unknown email creates a customer account.
func (s *AuthService) LoginOTP(ctx context.Context, email, code string) (*LoginResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	l := logging.FromContext(ctx).With("svc", "auth.login_otp", "email", email)

	err = s.OTP.Verify(email, func(h string) bool { return pkg_hash.Check(h, code) })
	switch {
	case errors.Is(err, otp.ErrMismatch):
		l.Warn("login_failed", "status", 400, "reason", "wrong code")
		return nil, ErrInvalidOTP
	case errors.Is(err, otp.ErrNotFound):
		l.Warn("login_failed", "status", 400, "reason", "code expired or not requested")
		return nil, ErrOTPExpired
	case errors.Is(err, otp.ErrTooManyAttempts):
		l.Warn("login_failed", "status", 400, "reason", "too many attempts")
		return nil, ErrOTPExpired.Msg("Too many attempts, request a new OTP")
	case err != nil:
		l.Error("login_failed", "status", 500, "reason", "otp store", "error", err)
		return nil, apperr.ErrServer.Wrap(err)
	}

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, apperr.Query(err)
	}
	created := false
	if u == nil {
		u = &models.User{Email: email, Role: models.RoleCustomer}
		if err := s.Users.CreateUser(ctx, u); err != nil {
			l.Error("login_failed", "status", 500, "reason", "cannot create user", "error", err)
			return nil, apperr.Query(err)
		}
		created = true
	}

	exp := time.Now().Add(s.TokenTTL)
	token, err := tokens.NewAccessToken(s.JWTSecret, u.ID, u.Email, string(u.Role), exp)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, apperr.ErrServer.Wrap(err)
	}

	l.Info("login_success", "user_id", u.ID, "created", created)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u, Created: created}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("me_error", "status", 500, "user_id", userID, "error", err)
		return nil, apperr.Query(err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
