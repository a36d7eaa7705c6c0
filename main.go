package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/safein/safein-server/config"
	"github.com/safein/safein-server/controllers"
	"github.com/safein/safein-server/cron"
	"github.com/safein/safein-server/db"
	"github.com/safein/safein-server/logger"
	"github.com/safein/safein-server/redis"
	"github.com/safein/safein-server/routes"
	"github.com/safein/safein-server/schedule"
	"github.com/safein/safein-server/utils"
)

const filterTTL = 30 * 24 * time.Hour

func main() {
	rootCmd := &cobra.Command{
		Use:   "safein",
		Short: "SafeIn visitor management API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.Env)

			if err := db.Init(cfg.DatabaseURL); err != nil {
				return err
			}
			defer db.Close()
			return db.Migrate()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Env)

	if err := db.Init(cfg.DatabaseURL); err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := schedule.NewResolver(cfg.Location())

	var filters redis.FilterStore
	if err := redis.InitRedis(ctx, cfg.RedisAddr); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, keeping date filters in memory")
		filters = redis.NewMemoryFilterStore()
	} else {
		defer redis.Client.Close()
		filters = redis.NewFilterStore(redis.Client, filterTTL)
	}

	notifier := &utils.SMTPNotifier{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
	}

	h := &controllers.Handler{
		Resolver:  resolver,
		Filters:   filters,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  time.Duration(cfg.JWTExpirationHours) * time.Hour,
	}
	if cfg.Mail.Host != "" {
		h.Notifier = notifier
	}
	if cfg.Cloudinary.CloudName != "" {
		uploader, err := utils.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey,
			cfg.Cloudinary.APISecret, cfg.Cloudinary.UploadPreset)
		if err != nil {
			return err
		}
		h.Uploader = uploader
	} else {
		log.Warn().Msg("cloudinary not configured, visitor photo uploads disabled")
	}

	if h.Notifier != nil {
		scheduler, err := cron.StartCronJobs(cfg.LapseCron, &cron.LapseNotifier{
			Resolver: resolver,
			Notifier: notifier,
			Lookback: time.Duration(cfg.LapseLookbackDays) * 24 * time.Hour,
		})
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "SafeIn",
		ErrorHandler: controllers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("SafeIn API")
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": resolver.Now()})
	})
	routes.SetupRoutes(app, h)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("timezone", cfg.Timezone).Msg("server starting")
	if err := app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
