package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://bakery@localhost/bakery")
	t.Setenv("OTP_TTL", "2m")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("EMAIL_DISABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg := FromEnv()
	require.Equal(t, 2*time.Minute, cfg.OTPTTL)
	require.Equal(t, "order_events", cfg.OrderEventsTopic)
	require.Equal(t, "products", cfg.Search.Index)
	require.Equal(t, 587, cfg.SMTP.Port)
	require.Equal(t, "mailer@example.com", cfg.SMTP.User)
	require.True(t, cfg.EmailDisabled)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "none", cfg.TraceExporter)
	require.Equal(t, 5*time.Hour, cfg.JWTTTL)
}
