package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"joblisting/internal/account"
	"joblisting/internal/api"
	"joblisting/internal/application"
	"joblisting/internal/auth"
	"joblisting/internal/config"
	"joblisting/internal/contact"
	"joblisting/internal/database"
	"joblisting/internal/job"
	"joblisting/internal/notification"
	"joblisting/internal/resume"
)

func main() {
	cfg := config.MustLoad()

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	logger.Info("database connection ready", slog.String("driver", cfg.Database.Driver))

	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	ctx := context.Background()
	adminHash, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}
	created, err := database.EnsureAdmin(ctx, db, adminHash)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if created {
		logger.Warn("seeded admin account with configured password, rotate it with cmd/admin --reset-admin-password")
	}

	jobs := job.NewService(db)
	if cfg.Seed.SampleJobs {
		n, err := jobs.SeedSampleJobs(ctx)
		if err != nil {
			log.Fatalf("seed sample jobs: %v", err)
		}
		if n > 0 {
			logger.Info("seeded sample jobs", slog.Int("count", n))
		}
	}

	authService, err := auth.NewAuthServiceFromFiles(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath, cfg.Auth.AccessTokenTTL)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	var (
		redisClient *redis.Client
		publisher   notification.Publisher
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}
		publisher = notification.NewRedisPublisher(redisClient)
		logger.Info("redis ready", slog.String("addr", cfg.Redis.Addr()))
	} else {
		logger.Info("redis disabled, live notifications and login rate limit are off")
	}

	notifications := notification.NewService(db, publisher, logger)

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Deps{
		Accounts:              account.NewService(db, logger),
		Jobs:                  jobs,
		Applications:          application.NewService(db, notifications, logger),
		Notifications:         notifications,
		Resumes:               resume.NewService(db),
		Contact:               contact.NewService(db, notifications, logger),
		Auth:                  authService,
		RedisClient:           redisClient,
		LoginRateLimitPerHour: cfg.Auth.LoginRateLimitPerHour,
		AllowedOrigins:        cfg.API.AllowedOrigins,
		Logger:                logger,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("addr", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
