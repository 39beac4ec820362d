package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rcm/rcm/internal/config"
	"github.com/rcm/rcm/internal/domain/analytics"
	"github.com/rcm/rcm/internal/domain/claims"
	"github.com/rcm/rcm/internal/domain/rules"
	"github.com/rcm/rcm/internal/domain/validation"
	"github.com/rcm/rcm/internal/platform/augment"
	"github.com/rcm/rcm/internal/platform/auth"
	"github.com/rcm/rcm/internal/platform/db"
	"github.com/rcm/rcm/internal/platform/middleware"
	"github.com/rcm/rcm/internal/platform/usage"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rcm-server",
		Short: "Claims validation API server",
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
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		if !cfg.IsDev() {
			logger.Fatal().Msg("JWT_SECRET is required outside development")
		}
		logger.Warn().Msg("JWT_SECRET not set; using a static development secret")
		jwtSecret = []byte("dev-secret-do-not-use-in-production")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware guards everything except health checks and login
	e.Use(auth.Middleware(jwtSecret, auth.SkipPaths("/health", "/auth/login")))

	// API usage tracking
	tracker := usage.NewTracker(10000)
	e.Use(usage.Middleware(tracker))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Login
	e.POST("/auth/login", auth.LoginHandler(auth.LoginConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    jwtSecret,
	}))

	apiV1 := e.Group("/api/v1")

	// Augmentation provider
	var augmenter augment.Augmenter = augment.Disabled{}
	if cfg.AugmentEnabled && cfg.AnthropicAPIKey != "" {
		client, err := augment.NewClient(augment.ClientConfig{
			APIKey:     cfg.AnthropicAPIKey,
			Model:      cfg.AugmentModel,
			MaxRetries: cfg.AugmentMaxRetries,
			Logger:     logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create augmentation client")
		}
		augmenter = client
		logger.Info().Str("model", cfg.AugmentModel).Msg("augmentation enabled")
	} else {
		logger.Warn().Msg("augmentation disabled; validation runs on deterministic rules only")
	}

	// -- Register Domain Handlers --

	// Claims domain. The analytics repo is shared with the purge path so a
	// tenant reset clears its snapshot along with its claims.
	analyticsRepo := analytics.NewRepoPG(pool)
	claimsRepo := claims.NewRepoPG(pool)
	claimsSvc := claims.NewService(claimsRepo, analyticsRepo, logger)
	claims.NewHandler(claimsSvc).RegisterRoutes(apiV1)

	// Rules domain
	rulesRepo := rules.NewSourceRepoPG(pool)
	rulesSvc := rules.NewService(rulesRepo, logger)
	rules.NewHandler(rulesSvc).RegisterRoutes(apiV1)

	// Validation domain
	validationSvc := validation.NewService(claimsRepo, rulesRepo, augmenter, cfg.BatchSize, logger)
	validation.NewHandler(validationSvc).RegisterRoutes(apiV1)

	// Analytics domain
	analyticsSvc := analytics.NewService(analyticsRepo, logger)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(apiV1)

	// API usage endpoints
	usage.NewHandler(tracker).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
