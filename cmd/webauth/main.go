// Command webauth runs the authentication web service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/was-labs/webauth/internal/auth"
	"github.com/was-labs/webauth/internal/config"
	"github.com/was-labs/webauth/internal/httpapi"
	"github.com/was-labs/webauth/internal/logging"
	"github.com/was-labs/webauth/internal/metrics"
	"github.com/was-labs/webauth/internal/ratelimit"
	"github.com/was-labs/webauth/internal/session"
	"github.com/was-labs/webauth/internal/token"
	"github.com/was-labs/webauth/internal/users"
)

func main() {
	if err := run(); err != nil {
		logging.NewDefault().Error(context.Background(), "fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logging.NewDefault()

	codec, err := token.NewCodec(token.Config{Secret: []byte(cfg.TokenSecret)})
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	var repo users.Repository
	if cfg.DatabaseDSN == "" {
		log.Warn(ctx, "no database DSN configured, using in-memory user store")
		repo = users.NewMemoryRepository()
	} else {
		db, err := users.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		repo = users.NewPostgresRepository(db)
	}

	set := &metrics.Set{}
	reg, err := metrics.RegisterOTel(otel.GetMeterProvider().Meter("webauth"), set)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Unregister() }()

	store := session.NewRedisStore(rdb)
	svc := auth.NewService(repo, codec, store, cfg.TokenTTL, log, set)

	// One shared bucket per guarded route, built once at startup.
	limits := ratelimit.NewRegistry(map[string]ratelimit.Config{
		"/auth/register": {
			Capacity:        float64(cfg.RegisterLimitBurst),
			RefillPerSecond: float64(cfg.RegisterLimitBurst) / cfg.RegisterLimitWindow.Seconds(),
		},
	})

	handlers := httpapi.NewHandlers(svc, repo, cfg.CookieName, log)
	router := httpapi.NewRouter(handlers,
		httpapi.Authenticate(codec, store, cfg.CookieName, log, set),
		httpapi.RateLimit(limits, log, set),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
