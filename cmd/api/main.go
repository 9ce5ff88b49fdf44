// cmd/api/main.go
//
// TalentFlux API – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (defaults → CONFIG_FILE → ENV_FILE → environment), with
//     "vault:" references resolved on demand.  Any problem exits 1 with
//     every offending variable listed.
//
//  2. Start the zap logger (stdout, plus a rotating file when LOG_DIR is set).
//
//  3. Register lifecycle hooks in dependency order: tracer provider,
//     database pool, Redis client.  A failed Start aborts before listening.
//
//  4. Build the application handler and serve until SIGINT or SIGTERM.
//
//  5. Drain the server, then run every stop hook in reverse order.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/talentflux/talentflux-api/internal/app"
	"github.com/talentflux/talentflux-api/internal/cache"
	"github.com/talentflux/talentflux-api/internal/config"
	"github.com/talentflux/talentflux-api/internal/database"
	"github.com/talentflux/talentflux-api/internal/lifecycle"
	"github.com/talentflux/talentflux-api/internal/logger"
	"github.com/talentflux/talentflux-api/internal/server"
	"github.com/talentflux/talentflux-api/internal/tracing"
	"github.com/talentflux/talentflux-api/internal/vault"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx, config.WithSecretResolver(vault.NewLazy(ctx, nil)))
	if err != nil {
		boot, _ := logger.New(logger.Options{})
		var cerr *config.Error
		if errors.As(err, &cerr) {
			boot.Error("invalid configuration", zap.Strings("fields", cerr.FieldNames()), zap.Error(err))
		} else {
			boot.Error("load configuration", zap.Error(err))
		}
		return 1
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Dir: cfg.LogDir})
	if err != nil {
		boot, _ := logger.New(logger.Options{})
		boot.Error("start logger", zap.Error(err))
		return 1
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded",
		zap.String("app", cfg.AppName),
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment),
	)

	//
	// ── 3.  Lifecycle hooks ─────────────────────────────────────────────
	//
	db := database.New(cfg, log)
	rdb := cache.NewRedis(cfg, log)
	var shutdownTracing tracing.Shutdown

	lc := lifecycle.New(log)
	lc.Append(lifecycle.Hook{
		Name: "tracing",
		Start: func(ctx context.Context) (err error) {
			shutdownTracing, err = tracing.Setup(ctx, cfg)
			return err
		},
		Stop: func(ctx context.Context) error {
			if shutdownTracing == nil {
				return nil
			}
			return shutdownTracing(ctx)
		},
	})
	lc.Append(lifecycle.Hook{
		Name:  "database",
		Start: db.Init,
		Stop:  func(context.Context) error { return db.Close() },
	})
	lc.Append(lifecycle.Hook{
		Name:  "redis",
		Start: rdb.Init,
		Stop:  func(context.Context) error { return rdb.Close() },
	})

	code := 0
	if err := lc.Start(ctx); err != nil {
		code = 1
	} else {
		//
		// ── 4.  Serve ───────────────────────────────────────────────────
		//
		opts := []app.Option{
			app.WithLogger(log),
			app.WithReadinessCheck("database", db.Ping),
		}
		if rdb.Available() {
			opts = append(opts, app.WithReadinessCheck("redis", rdb.Ping))
		}
		srv := server.New(cfg, app.New(cfg, opts...), log)
		if err := srv.Run(ctx); err != nil {
			log.Error("server stopped", zap.Error(err))
			code = 1
		}
	}

	//
	// ── 5.  Release resources ───────────────────────────────────────────
	//
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = lc.Stop(sctx)
	return code
}
