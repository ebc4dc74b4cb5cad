// Command server runs the Triplog API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/triplog/triplog/internal/auth"
	"github.com/triplog/triplog/internal/config"
	"github.com/triplog/triplog/internal/experience"
	"github.com/triplog/triplog/internal/mailer"
	"github.com/triplog/triplog/internal/store"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "server",
		Short:         "Triplog travel experience API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	serve.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Close(shutdownCtx); err != nil {
			logger.WithError(err).Warn("mongo disconnect failed")
		}
	}()

	sessions := auth.NewSessions(
		[]byte(cfg.Auth.SigningKey),
		cfg.Auth.Issuer,
		cfg.Auth.SessionDuration,
	)
	tokens := auth.NewActionTokens(db.Tokens)
	mail := mailer.NewSMTPSender(cfg.SMTP, logger)

	authService := auth.NewService(auth.ServiceOptions{
		Users:           db.Users,
		Tokens:          tokens,
		Sessions:        sessions,
		Mail:            mail,
		Logger:          logger,
		ClientURL:       cfg.ClientURL,
		VerificationTTL: cfg.Auth.VerificationTTL,
		ResetTTL:        cfg.Auth.ResetTTL,
	})
	gate := auth.NewGate(sessions, db.Users, cfg.IsProduction())

	expService := experience.NewService(db.Experiences, db.Users, logger)

	app := fiber.New(fiber.Config{
		AppName:      "triplog",
		ErrorHandler: auth.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(requestLogger(logger))

	api := app.Group("/api/v1")
	auth.NewController(authService, gate, logger).RegisterRoutes(api)
	experience.NewController(expService, gate, logger).RegisterRoutes(api.Group("/experiences"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	logger.WithField("addr", cfg.Server.Addr()).Info("server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func requestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		})
		if err != nil {
			entry.WithError(err).Warn("request failed")
		} else {
			entry.Debug("request handled")
		}
		return err
	}
}
