// Package notify sends transactional email: OTP codes, invoices, driver
// promotions and delivery updates.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/bakery/pkg/logging"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers through an authenticated SMTP relay (STARTTLS on 587).
type SMTPMailer struct {
	cfg  SMTPConfig
	send sendFunc
}

func NewSMTP(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"Date: " + time.Now().UTC().Format(time.RFC1123Z),
		"",
		body,
	}, "\r\n")

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send %q: %w", subject, err)
	}
	logging.FromContext(ctx).Info("email_sent", "to", to, "subject", subject)
	return nil
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	body, err := render("otp", map[string]any{"Code": code, "Minutes": int(ttl.Minutes())})
	if err != nil {
		return err
	}
	return m.deliver(ctx, to, "Your Bakery One-Time Password (OTP)", body)
}

func (m *SMTPMailer) SendInvoice(ctx context.Context, to string, inv Invoice) error {
	body, err := render("invoice", inv)
	if err != nil {
		return err
	}
	return m.deliver(ctx, to, fmt.Sprintf("Your Bakery Invoice #%d", inv.OrderID), body)
}

func (m *SMTPMailer) SendDriverPromotion(ctx context.Context, to string) error {
	body, err := render("promotion", nil)
	if err != nil {
		return err
	}
	return m.deliver(ctx, to, "You have been promoted to Driver", body)
}

func (m *SMTPMailer) SendDeliveryUpdate(ctx context.Context, to string, u DeliveryUpdate) error {
	body, err := render("delivery", u)
	if err != nil {
		return err
	}
	return m.deliver(ctx, to, fmt.Sprintf("Your Order #%d is now %s!", u.OrderID, u.Status), body)
}

// LogMailer is used when email is disabled or SMTP credentials are missing.
// It renders every message so template errors still surface.
type LogMailer struct {
	Log *slog.Logger
}

func (m *LogMailer) logged(ctx context.Context, kind, to string, attrs ...any) {
	l := m.Log
	if l == nil {
		l = logging.FromContext(ctx)
	}
	l.Info("email_skipped_dev_mode", append([]any{"kind", kind, "to", to}, attrs...)...)
}

func (m *LogMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	if _, err := render("otp", map[string]any{"Code": code, "Minutes": int(ttl.Minutes())}); err != nil {
		return err
	}
	m.logged(ctx, "otp", to, "otp", code)
	return nil
}

func (m *LogMailer) SendInvoice(ctx context.Context, to string, inv Invoice) error {
	if _, err := render("invoice", inv); err != nil {
		return err
	}
	m.logged(ctx, "invoice", to, "order_id", inv.OrderID, "total", inv.Total.StringFixed(2))
	return nil
}

func (m *LogMailer) SendDriverPromotion(ctx context.Context, to string) error {
	m.logged(ctx, "driver_promotion", to)
	return nil
}

func (m *LogMailer) SendDeliveryUpdate(ctx context.Context, to string, u DeliveryUpdate) error {
	m.logged(ctx, "delivery_update", to, "order_id", u.OrderID, "status", u.Status)
	return nil
}
