package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailPkg "bogoninja/internal/adapters/email"
	"bogoninja/internal/adapters/email/templates"
	web "bogoninja/internal/adapters/http"
	"bogoninja/internal/adapters/http/perf"
	"bogoninja/internal/adapters/storage"
	accountStore "bogoninja/internal/adapters/storage/account"
	registrantStore "bogoninja/internal/adapters/storage/registrant"
	"bogoninja/internal/application/orchestrators"
	"bogoninja/internal/config"
	"bogoninja/internal/domain/session"
	"bogoninja/internal/domain/unsubscribe"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownTimeout bounds draining HTTP requests and background email jobs.
const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return err
	}
	schema, err := storage.SchemaVersion(ctx, db, cfg.DBDriver)
	if err != nil {
		return err
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, cfg.DBDriver, collector, cfg.SlowQueryMs)

	stores := &web.Stores{
		RegistrantStore: registrantStore.NewSQLStore(timedDB),
		AccountStore:    accountStore.NewSQLStore(timedDB),
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
			Correo:   cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}, stores.AccountStore)
		if err != nil {
			return err
		}
		if created {
			slog.Info("auth_event", "event", "admin_seeded")
		}
	}

	sessions, err := session.NewManager([]byte(cfg.JWTSecret), session.WithDenylist(session.NewDenylist()))
	if err != nil {
		return err
	}
	signer, err := unsubscribe.NewSigner([]byte(cfg.UnsubscribeSecret))
	if err != nil {
		return err
	}
	renderer, err := templates.New(cfg.BaseURL)
	if err != nil {
		return err
	}

	var sender emailPkg.Sender
	if cfg.Resend.APIKey != "" {
		sender = emailPkg.NewResendSender(cfg.Resend.APIKey, cfg.Resend.Sender)
		slog.Info("email_event", "event", "sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		slog.Info("email_event", "event", "sender_configured", "provider", "noop")
	}

	notifier := orchestrators.NewNotifier(orchestrators.NotifierDeps{
		Sender:   sender,
		Renderer: renderer,
		Signer:   signer,
		BaseURL:  cfg.BaseURL,
		CopyTo:   cfg.Resend.Copy,
	})

	handler := web.NewMux(stores, web.Options{
		StaticDir:      cfg.StaticDir,
		Sessions:       sessions,
		Unsubscribe:    signer,
		Sender:         sender,
		Renderer:       renderer,
		Notifier:       notifier,
		BaseURL:        cfg.BaseURL,
		CSRFKey:        cfg.CSRFKey,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		RateLimit:      cfg.RateLimit,
		SlowRequestMs:  cfg.SlowRequestMs,
		Collector:      collector,
		Version:        version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second, // session-email sends every batch inline
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "driver", cfg.DBDriver, "schema", schema)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("server_stopping")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}

	done := make(chan struct{})
	go func() {
		notifier.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		slog.Warn("email_event", "event", "shutdown_abandoned_jobs")
	}
	return nil
}

// setupLogger installs a JSON handler in production and a text handler otherwise.
func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
