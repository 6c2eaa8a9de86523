package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/bakery/internal/config"
	"github.com/Skotchmaster/bakery/internal/events"
	"github.com/Skotchmaster/bakery/internal/httpserver"
	"github.com/Skotchmaster/bakery/internal/notify"
	"github.com/Skotchmaster/bakery/internal/otp"
	"github.com/Skotchmaster/bakery/internal/repo"
	"github.com/Skotchmaster/bakery/internal/search"
	"github.com/Skotchmaster/bakery/internal/service"
	"github.com/Skotchmaster/bakery/internal/tasks"
	pkgdb "github.com/Skotchmaster/bakery/pkg/db"
	"github.com/Skotchmaster/bakery/pkg/logging"
	middleware "github.com/Skotchmaster/bakery/pkg/middleware/auth"
	"github.com/Skotchmaster/bakery/pkg/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newMailer(cfg config.ServiceConfig, logger *slog.Logger) service.Mailer {
	if cfg.EmailDisabled {
		return &notify.LogMailer{Log: logger}
	}
	return notify.NewSMTP(cfg.SMTP)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(cmd.Context(), logger)

	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TraceConfig{
		ServiceName: cfg.ServiceName,
		Exporter:    cfg.TraceExporter,
	})
	if err != nil {
		return err
	}

	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	r := repo.New(db)
	if err := r.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	otpStore, err := otp.Open(cfg.OTPTTL, otp.DefaultMaxAttempts)
	if err != nil {
		return err
	}

	runner := tasks.New(logger, cfg.TaskConcurrency, cfg.TaskTimeout)
	hub := events.NewHub(logger)
	publishers := events.Fanout{hub}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic)
		publishers = append(publishers, producer)
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	catalog := &service.CatalogService{Repo: r, Tasks: runner}
	if cfg.Search.URL != "" {
		sc, err := search.New(ctx, cfg.Search)
		if err == nil {
			err = sc.EnsureIndex(ctx)
		}
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			catalog.Search = sc
		}
	}

	mailer := newMailer(cfg, logger)
	mw := middleware.New(cfg.JWTSecret, cfg.CookieSecure)

	e := httpserver.New(logger)
	httpserver.Register(e, &httpserver.Deps{
		DB:   db,
		Auth: mw,
		AuthHandler: &httpserver.AuthHTTP{MW: mw, Svc: &service.AuthService{
			Users:     r,
			OTP:       otpStore,
			Mailer:    mailer,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.JWTTTL,
		}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
		OrderHandler: &httpserver.OrderHTTP{Hub: hub, Svc: &service.OrderService{
			Carts:   r,
			Catalog: r,
			Orders:  r,
			Mailer:  mailer,
			Events:  publishers,
			Tasks:   runner,
		}},
		ReviewHandler: &httpserver.ReviewHTTP{Svc: &service.ReviewService{Repo: r}},
		UserHandler: &httpserver.UserHTTP{Svc: &service.UserService{
			Users:  r,
			Orders: r,
			Mailer: mailer,
			Tasks:  runner,
		}},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	serveErr := listen(srv, quit, logger)

	go func() {
		<-quit
		logger.Error("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	hub.Close()
	if err := runner.Shutdown(sctx); err != nil {
		logger.Error("task drain error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}
	if err := otpStore.Close(); err != nil {
		logger.Error("otp store close error", "error", err)
	}
	if err := shutdownTracing(sctx); err != nil {
		logger.Error("tracer shutdown error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
	return serveErr
}

// listen serves until a signal arrives or the listener fails; a listener
// error is returned so the caller still runs the shutdown sequence.
func listen(srv *http.Server, quit <-chan os.Signal, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-quit:
		logger.Info("signal_received", "signal", sig.String())
		return nil
	case err := <-errCh:
		logger.Error("http_server_error", "error", err)
		return fmt.Errorf("http server: %w", err)
	}
}
