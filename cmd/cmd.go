package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dating-clock-backend/internal/config"
	"dating-clock-backend/internal/handlers"
	"dating-clock-backend/internal/metrics"
	"dating-clock-backend/internal/middleware"
	"dating-clock-backend/internal/repository"
	"dating-clock-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Optional .env for local development
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Connect to the broadcast backend
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping redis")
	}
	log.Info().Msg("Redis connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	// Initialize services
	identityClient := services.NewIdentityClient(
		cfg.Identity.BaseURL,
		time.Duration(cfg.Identity.TimeoutSeconds)*time.Second,
	)
	sessionService := services.NewSessionService(userRepo, identityClient, cfg.JWT.Secret)
	preferenceService := services.NewPreferenceService(userRepo, matchRepo)
	broadcaster := services.NewBroadcaster(rdb)
	matchService := services.NewMatchService(userRepo, matchRepo, broadcaster)
	hub := services.NewHub()
	feed := services.NewMatchFeed(db, userRepo, hub)

	// Start the real-time propagation paths
	notifyCtx, stopNotify := context.WithCancel(context.Background())
	go feed.Run(notifyCtx)
	go broadcaster.Run(notifyCtx, hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessionService)
	userHandler := handlers.NewUserHandler(sessionService, preferenceService)
	matchHandler := handlers.NewMatchHandler(matchService)
	wsHandler := handlers.NewWebSocketHandler(hub, sessionService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authHandler.Login)
		r.Get("/matches", matchHandler.List)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(sessionService))
			r.Get("/users/me", userHandler.Me)
			r.Put("/users/me/preference", userHandler.SetPreference)
			r.Get("/users/me/matched-hours", userHandler.MatchedHours)
			r.Get("/users/me/qr", userHandler.QRCode)
			r.Post("/matches/scan", matchHandler.Scan)
		})
	})

	// WebSocket routes
	r.Get("/ws", wsHandler.HandleParticipant)
	r.Get("/ws/live", wsHandler.HandleObserver)

	// Metrics
	r.Handle("/metrics", metrics.Handler())

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop the notification paths and drop every WebSocket connection
	stopNotify()
	hub.Close()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
