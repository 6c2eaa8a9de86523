package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/internal/otp"
	"github.com/Skotchmaster/bakery/internal/repo"
	"github.com/Skotchmaster/bakery/internal/testutil"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	"github.com/Skotchmaster/bakery/pkg/tokens"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newAuth(t *testing.T) (*AuthService, *recMailer, *repo.GormRepo) {
	t.Helper()
	store, err := otp.Open(time.Minute, 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	r := repo.New(testutil.NewDB(t))
	mailer := &recMailer{}
	return &AuthService{
		Users:     r,
		OTP:       store,
		Mailer:    mailer,
		JWTSecret: testSecret,
		TokenTTL:  5 * time.Hour,
	}, mailer, r
}

func lastCode(t *testing.T, m *recMailer) string {
	t.Helper()
	mails := m.all()
	require.NotEmpty(t, mails)
	last := mails[len(mails)-1]
	require.Equal(t, "otp", last.kind)
	return last.data.(string)
}

func TestOTPLoginCreatesCustomer(t *testing.T) {
	svc, mailer, r := newAuth(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestOTP(ctx, "New@Example.com"))
	code := lastCode(t, mailer)
	require.Len(t, code, 6)
	require.Equal(t, "new@example.com", mailer.all()[0].to)

	res, err := svc.LoginOTP(ctx, "new@example.com", code)
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, models.RoleCustomer, res.User.Role)

	claims, err := tokens.AccessClaimsFromToken(res.Token, testSecret)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, res.User.ID, id)
	require.Equal(t, "customer", claims.Role)
	require.WithinDuration(t, time.Now().Add(5*time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = svc.LoginOTP(ctx, "new@example.com", code)
	require.ErrorIs(t, err, ErrOTPExpired, "codes are single use")

	u, err := r.GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, me.Email)
	_, err = svc.Me(ctx, 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestOTPLoginKeepsExistingRole(t *testing.T) {
	svc, mailer, r := newAuth(t)
	ctx := context.Background()
	require.NoError(t, r.CreateUser(ctx, &models.User{Email: "driver@example.com", Role: models.RoleDriver}))

	require.NoError(t, svc.RequestOTP(ctx, "driver@example.com"))
	res, err := svc.LoginOTP(ctx, "driver@example.com", lastCode(t, mailer))
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Equal(t, models.RoleDriver, res.User.Role)
}

func TestOTPLoginFailures(t *testing.T) {
	svc, mailer, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.LoginOTP(ctx, "ghost@example.com", "123456")
	require.ErrorIs(t, err, ErrOTPExpired)

	require.NoError(t, svc.RequestOTP(ctx, "a@example.com"))
	code := lastCode(t, mailer)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = svc.LoginOTP(ctx, "a@example.com", wrong)
	require.ErrorIs(t, err, ErrInvalidOTP)
	_, err = svc.LoginOTP(ctx, "a@example.com", wrong)
	require.ErrorIs(t, err, ErrInvalidOTP)
	_, err = svc.LoginOTP(ctx, "a@example.com", wrong)
	require.ErrorIs(t, err, ErrOTPExpired, "attempt budget spent")
	_, err = svc.LoginOTP(ctx, "a@example.com", code)
	require.ErrorIs(t, err, ErrOTPExpired)

	err = svc.RequestOTP(ctx, "bad")
	require.ErrorIs(t, err, apperr.ErrValidation)

	mailer.err = errors.New("smtp down")
	err = svc.RequestOTP(ctx, "a@example.com")
	require.ErrorIs(t, err, ErrOTPSend)
}
