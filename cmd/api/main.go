package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jungle-quest/quest-api/internal/config"
	"github.com/jungle-quest/quest-api/internal/database"
	"github.com/jungle-quest/quest-api/internal/events"
	"github.com/jungle-quest/quest-api/internal/grader"
	"github.com/jungle-quest/quest-api/internal/handler"
	"github.com/jungle-quest/quest-api/internal/middleware"
	"github.com/jungle-quest/quest-api/internal/models"
	"github.com/jungle-quest/quest-api/internal/repository"
	"github.com/jungle-quest/quest-api/internal/router"
	"github.com/jungle-quest/quest-api/internal/service"
	"github.com/jungle-quest/quest-api/pkg/runner"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Level{},
		&models.TestCase{},
		&models.User{},
		&models.ProgressEntry{},
		&models.Badge{},
		&models.Submission{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, snapshot caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, progress events disabled")
	}

	executor, err := runner.NewDockerExecutor(runner.Config{
		Host:          cfg.DockerHost,
		Image:         cfg.RunnerImage,
		Timeout:       cfg.ExecutionTimeout,
		MemoryLimitMB: int64(cfg.CodeRunMemoryMB),
		CPUShares:     int64(cfg.CodeRunCPUShares),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to create code executor: %v", err)
	}
	defer executor.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	levelRepo := repository.NewLevelRepository(db)
	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	publisher := events.NewPublisher(natsConn, logger)
	evaluator := grader.NewEvaluator(executor, cfg.ExecutionTimeout, logger)

	progressService := service.NewProgressService(userRepo, redisClient, cfg.SnapshotCacheTTL, publisher, logger)
	submissionService := service.NewSubmissionService(levelRepo, submissionRepo, evaluator, progressService, validate, logger)
	levelService := service.NewLevelService(levelRepo, validate, logger)
	seedService, err := service.NewSeedService(levelService, cfg.SeedEnabled, cfg.SeedToken, logger)
	if err != nil {
		log.Fatalf("failed to create seed service: %v", err)
	}

	levelHandler := handler.NewLevelHandler(levelService, validate, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, validate, logger)
	progressHandler := handler.NewProgressHandler(progressService, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		LevelHandler:      levelHandler,
		SubmissionHandler: submissionHandler,
		ProgressHandler:   progressHandler,
		SeedHandler:       seedHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
