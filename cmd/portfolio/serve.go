package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"portfolio/internal/adapters/email"
	web "portfolio/internal/adapters/http"
	"portfolio/internal/adapters/http/perf"
	"portfolio/internal/adapters/storage"
	"portfolio/internal/adapters/telemetry"
	"portfolio/internal/application/orchestrators"
	"portfolio/internal/config"
	"portfolio/internal/domain/account"
	"portfolio/internal/domain/record"
)

const (
	shutdownGrace = 10 * time.Second
	sweepEvery    = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, version, cfg.TraceSampleRatio)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("telemetry_shutdown_failed", "error", err)
		}
	}()

	collector := perf.NewCollector(perf.DefaultRingSize)
	backend, closeStore, err := openStore(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := seedAdmin(ctx, cfg, backend.Store); err != nil {
		return err
	}

	csrfKey, err := web.LoadKey("PORTFOLIO_CSRF_KEY", cfg.CSRFKey, cfg.IsProduction())
	if err != nil {
		return err
	}
	cookieKey, err := web.LoadKey("PORTFOLIO_COOKIE_KEY", cfg.CookieKey, cfg.IsProduction())
	if err != nil {
		return err
	}
	if cfg.ResendKey == "" && cfg.IsProduction() {
		slog.Warn("config_event", "event", "email_disabled", "detail", "PORTFOLIO_RESEND_KEY is not set")
	}

	srv, err := web.NewServer(web.Options{
		Store:              backend.Store,
		Sender:             email.New(cfg.ResendKey, cfg.EmailFrom),
		NotifyTo:           cfg.NotifyTo,
		Collector:          collector,
		CSRFKey:            csrfKey,
		CookieKey:          cookieKey,
		SessionTTL:         cfg.SessionTTL,
		SlowRequest:        time.Duration(cfg.SlowRequestMs) * time.Millisecond,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Secure:             cfg.IsProduction(),
		TrustedOrigins:     cfg.TrustedOrigins,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	go func() {
		t := time.NewTicker(sweepEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := srv.SweepSessions(); n > 0 {
					slog.Debug("session_sweep", "expired", n)
				}
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "addr", cfg.Addr, "version", version, "env", cfg.Env, "backend", backend.Name)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// seedAdmin creates the first account from PORTFOLIO_ADMIN_PASSWORD. The
// password is only needed while no account exists; production refuses to
// start with an empty accounts collection.
func seedAdmin(ctx context.Context, cfg config.Config, store record.Store) error {
	err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.AccountDeps{
		Accounts: storage.NewRepository[account.Account](store, record.Accounts),
		Now:      time.Now,
	}, cfg.AdminEmail, cfg.AdminPassword)
	switch {
	case errors.Is(err, orchestrators.ErrNoAdminPassword) && cfg.IsProduction():
		return fmt.Errorf("seed admin: no accounts exist: %w: PORTFOLIO_ADMIN_PASSWORD", config.ErrMissingSecret)
	case errors.Is(err, orchestrators.ErrNoAdminPassword):
		slog.Warn("seed_event", "event", "admin_not_seeded", "detail", "set PORTFOLIO_ADMIN_PASSWORD or run portfolio passwd")
	case err != nil:
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
