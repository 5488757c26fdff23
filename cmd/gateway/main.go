// Package main contains the entrypoint for the PlatePal AI gateway server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/platepal/platepal/internal/app"
	"github.com/platepal/platepal/internal/app/tasks"
	"github.com/platepal/platepal/internal/config"
	"github.com/platepal/platepal/internal/database"
	"github.com/platepal/platepal/internal/gateway"
	"github.com/platepal/platepal/internal/logger"
	"github.com/platepal/platepal/internal/ratelimit"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all gateway components, blocks until shutdown, and
// returns the process exit code.
func run(ctx context.Context) int {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	if cfg.AI.Token == "" {
		log.Error("AI provider token is required, set PLATEPAL_AI_TOKEN")
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var limiter ratelimit.Limiter
	var memLimiter *ratelimit.MemoryLimiter
	if cfg.RateLimit.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		log.Info("Using Redis rate limiter", "addr", cfg.RateLimit.RedisAddr)
	} else {
		memLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limiter = memLimiter
		log.Info("Using in-memory rate limiter")
	}

	upstream := gateway.NewUpstreamClient(cfg.AI)
	server := gateway.New(cfg, upstream, limiter, log)

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Store:   store,
		Limiter: memLimiter,
	}
	sched, err := app.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	application := app.New(log, cfg, server, sched)

	log.Info("Starting gateway...")
	runErr := application.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Gateway stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Gateway stopped gracefully.")
	return 0
}
