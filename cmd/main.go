// @title Amuzz Backend API
// @version 1.0
// @description Amuzz Backend API for mood-based music discovery and playlists
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	_ "AMUZZ_BACK-END/docs" // This is required for swagger
	"AMUZZ_BACK-END/internal/cache"
	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/database"
	"AMUZZ_BACK-END/internal/handlers"
	"AMUZZ_BACK-END/internal/jamendo"
	"AMUZZ_BACK-END/internal/logger"
	"AMUZZ_BACK-END/internal/middleware"
	"AMUZZ_BACK-END/internal/payments"
	"AMUZZ_BACK-END/internal/repository"
	"AMUZZ_BACK-END/internal/routes"
	"AMUZZ_BACK-END/internal/services"
	"AMUZZ_BACK-END/internal/utils"
)

func main() {
	app := &cli.Command{
		Name:  "amuzz",
		Usage: "Amuzz backend server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Path to a .env file",
				Value:   ".env",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Apply or roll back database migrations",
				Commands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "Apply all pending migrations",
						Action: migrateAction(database.MigrateUp),
					},
					{
						Name:   "down",
						Usage:  "Roll back every migration",
						Action: migrateAction(database.MigrateDown),
					},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func setup(cmd *cli.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return nil, nil, err
	}

	zapLogger, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, zapLogger, nil
}

func migrateAction(step func(dsn string) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, zapLogger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer zapLogger.Sync()

		if err := step(cfg.GetDSN()); err != nil {
			return err
		}
		zapLogger.Info("migrations finished", zap.String("direction", cmd.Name))
		return nil
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, zapLogger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(cfg.GetDSN()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := repository.NewPostgresStore(pool)

	// --- Outbound providers ---

	healthChecks := []handlers.Check{{Name: "db", Ping: store.Ping}}

	var trackCache services.TrackCache
	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			zapLogger.Warn("redis unavailable, music cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			moodCache := cache.NewMoodCache(redisClient, cfg.Redis.CacheTTL)
			trackCache = moodCache
			healthChecks = append(healthChecks, handlers.Check{Name: "redis", Ping: moodCache.Ping})
		}
	}

	var googleProvider services.GoogleProvider
	if cfg.IsGoogleOAuthConfigured() {
		googleProvider = services.NewGoogleOAuthProvider(&cfg.GoogleOAuth)
	}

	catalog := jamendo.NewClient(&cfg.Jamendo, cfg.OutboundTimeout, logger.WithComponent(zapLogger, "jamendo"))
	gateway := payments.NewStripeGateway(&cfg.Stripe, nil)
	mailer := utils.NewEmailService(&cfg.Email)

	// --- Services ---

	authService := services.NewAuthService(store, mailer, cfg, logger.WithComponent(zapLogger, "auth"))
	playlistService := services.NewPlaylistService(store, logger.WithComponent(zapLogger, "playlists"))
	musicService := services.NewMusicService(catalog, trackCache, logger.WithComponent(zapLogger, "music"))
	paymentService := services.NewPaymentService(gateway, store, cfg.Frontend.BaseURL, logger.WithComponent(zapLogger, "payments"))
	googleService := services.NewGoogleAuthService(googleProvider, store, cfg.OutboundTimeout, logger.WithComponent(zapLogger, "google"))

	// --- HTTP Handlers ---

	metrics := middleware.NewMetrics()
	mux := http.NewServeMux()
	routes.SetupRoutes(mux, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, &cfg.JWT, zapLogger),
		Playlists: handlers.NewPlaylistsHandler(playlistService, zapLogger),
		Music:     handlers.NewMusicHandler(musicService, zapLogger),
		Payments:  handlers.NewPaymentsHandler(paymentService, zapLogger),
		Google:    handlers.NewGoogleAuthHandler(googleService, cfg, zapLogger),
		Health:    handlers.NewHealthHandler(logger.WithComponent(zapLogger, "health"), healthChecks...),
		Metrics:   metrics.Handler(),
	}, &cfg.JWT)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	// metrics must see the mux-populated pattern, so it wraps the mux directly
	var handler http.Handler = metrics.Middleware(mux)
	handler = middleware.Recovery(zapLogger)(handler)
	handler = middleware.RequestLogger(zapLogger)(handler)
	handler = c.Handler(handler)

	// --- HTTP Server + Graceful Shutdown ---

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zapLogger.Info("server stopped")
	return nil
}
