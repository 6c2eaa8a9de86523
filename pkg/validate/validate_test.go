package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bakery/pkg/apperr"
)

type otpRequest struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,len=6,numeric"`
}

func TestValidate(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(&otpRequest{Email: "a@b.co", OTP: "123456"}))

	err := v.Validate(&otpRequest{Email: "nope", OTP: "12"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	ae := apperr.From(err)
	require.Contains(t, ae.Message, "email must be a valid email")
	require.Contains(t, ae.Message, "otp must be 6 characters")
}

func TestEmail(t *testing.T) {
	require.True(t, Email("baker@example.com"))
	require.False(t, Email(""))
	require.False(t, Email("not-an-email"))
}
