package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"blood-link/internal/config"
	"blood-link/internal/handler"
	"blood-link/internal/middleware"
	"blood-link/internal/repository"
	"blood-link/internal/service"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply database migrations before serving",
			Value: true,
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cCtx.Bool("migrate") {
		applied, err := repository.Migrate(ctx, db)
		if err != nil {
			return err
		}
		logger.WithField("migrations", applied).Info("database migrated")
	}

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, match email dedupe disabled")
		redis = nil
	}
	if redis != nil {
		defer redis.Close()
	}

	minioClient, err := config.NewMinIOClient(cfg, logger)
	if err != nil {
		logger.WithError(err).Warn("object storage unavailable, photo upload will not work")
		minioClient = nil
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, minioClient, cfg, logger)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		BodyLimit:    6 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handler.SetupRoutes(app, handlers, services.Auth)

	go func() {
		logger.WithField("port", cfg.Port).Info("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.WithError(err).Warn("server shutdown was not clean")
	}
	services.Matching.Wait()
	return nil
}
