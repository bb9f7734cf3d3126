package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"eventdesk/internal/adapters/api"
	emailPkg "eventdesk/internal/adapters/email"
	web "eventdesk/internal/adapters/http"
	"eventdesk/internal/adapters/http/metrics"
	"eventdesk/internal/adapters/storage"
	preferenceStore "eventdesk/internal/adapters/storage/preference"
	sessionStore "eventdesk/internal/adapters/storage/session"
	"eventdesk/internal/application/notify"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/session"
	"eventdesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// sessionMaxAge is how long an idle browser session's values are kept.
const sessionMaxAge = 30 * 24 * time.Hour

func main() {
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("startup_failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	keys, err := cfg.DeriveKeys()
	if err != nil {
		fatal("derive keys", err)
	}

	// SQLite holds session values (unless Redis is configured) and UI preferences.
	dsn := cfg.Storage.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		fatal("open database", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		fatal("database unreachable", err)
	}
	if err := storage.InitDB(db, cfg.Storage.DBPath); err != nil {
		fatal("migrate database", err)
	}
	timedDB := storage.NewTimedDB(db, metrics.DBQueryDuration, cfg.Storage.SlowQueryMs)

	stop := make(chan struct{})

	var backend session.Backend
	if cfg.Storage.RedisAddr != "" {
		client, err := sessionStore.ConnectRedis(ctx, sessionStore.RedisConfig{
			Addr: cfg.Storage.RedisAddr,
			DB:   cfg.Storage.RedisDB,
		})
		if err != nil {
			fatal("connect redis", err)
		}
		defer client.Close()
		backend = sessionStore.NewRedisStore(client, sessionStore.DefaultRedisTTL)
		slog.Info("startup_event", "event", "session_backend", "backend", "redis", "addr", cfg.Storage.RedisAddr)
	} else {
		sqliteSessions := sessionStore.NewSQLiteStore(timedDB)
		backend = sqliteSessions
		purge := orchestrators.PurgeSessionsDeps{Store: sqliteSessions, MaxAge: sessionMaxAge, Now: time.Now}
		orchestrators.StartBackgroundWorker("session_purge", func(ctx context.Context) error {
			_, err := orchestrators.ExecutePurgeSessions(ctx, purge)
			return err
		}, time.Hour, stop)
		slog.Info("startup_event", "event", "session_backend", "backend", "sqlite", "db", cfg.Storage.DBPath)
	}

	bus := notify.NewBus()
	bus.OnChange = func(total int) { metrics.SessionSubscribers.Set(float64(total)) }

	client := api.New(api.Config{
		BaseURL:  cfg.API.BaseURL,
		ImageURL: cfg.API.ImageURL,
		Timeout:  cfg.API.Timeout,
	})

	var mailer emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		mailer = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
		slog.Info("startup_event", "event", "email_sender", "provider", "resend")
	} else {
		mailer = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("startup_event", "event", "email_sender", "provider", "noop", "detail", "EVENTDESK_RESEND_KEY is not set, feedback replies are not delivered")
		} else {
			slog.Info("startup_event", "event", "email_sender", "provider", "noop")
		}
	}

	handler, err := web.NewMux(web.Deps{
		API:                client,
		ImageURL:           client.ImageURL,
		Sessions:           session.NewManager(backend, keys.HashKey, keys.BlockKey),
		Preferences:        preferenceStore.NewSQLiteStore(timedDB),
		Bus:                bus,
		Mailer:             mailer,
		Policy:             cfg.OTPPolicy(),
		Now:                time.Now,
		HashKey:            keys.HashKey,
		CSRFKey:            keys.CSRFKey,
		TrustedOrigins:     cfg.Origins(),
		SecureCookies:      cfg.IsProduction(),
		RateLimitPerSecond: cfg.HTTP.RateLimitPerSecond,
		AuthRatePerMinute:  cfg.HTTP.AuthRatePerMinute,
		SlowRequestMs:      cfg.HTTP.SlowRequestMs,
		Stop:               stop,
	})
	if err != nil {
		fatal("build handlers", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Notification streams end when shutdown starts.
	baseCtx, cancelStreams := context.WithCancel(ctx)
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }
	srv.RegisterOnShutdown(cancelStreams)

	go func() {
		slog.Info("startup_event", "event", "listening", "addr", cfg.Addr, "version", version,
			"env", cfg.Env, "api", cfg.API.BaseURL, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutdown_event", "event", "signal")

	close(stop)
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown_event", "event", "forced", "error", err)
	}
}

func fatal(step string, err error) {
	slog.Error("startup_failed", "step", step, "error", err)
	os.Exit(1)
}
