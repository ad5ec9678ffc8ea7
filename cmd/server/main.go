package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/drivebackup/auth-server-go/internal/config"
	"github.com/drivebackup/auth-server-go/internal/database"
	"github.com/drivebackup/auth-server-go/internal/handler"
	"github.com/drivebackup/auth-server-go/internal/jobs"
	"github.com/drivebackup/auth-server-go/internal/middleware"
	"github.com/drivebackup/auth-server-go/internal/provider"
	"github.com/drivebackup/auth-server-go/internal/redis"
	"github.com/drivebackup/auth-server-go/internal/repository"
	"github.com/drivebackup/auth-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	pairingRepo := repository.NewPairingRepository(db.DB)
	registry := provider.NewRegistry(cfg)
	pairingService := service.NewPairingService(pairingRepo, registry, redisClient, cfg)

	pages := handler.NewPages(cfg.StaticDir)
	pairingHandler := handler.NewPairingHandler(pairingService, pages)
	secretMiddleware := middleware.NewSharedSecretMiddleware(cfg.ClientSecret)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Get("/", pages.Index)
	r.Get("/about", pages.About)
	r.Get("/privacy-policy", pages.PrivacyPolicy)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	r.Route("/pin", func(r chi.Router) {
		r.Use(secretMiddleware.Handler)
		r.Post("/", pairingHandler.Pin)
	})

	r.Get("/provider/{userCode}", pairingHandler.Provider)
	r.Get("/callback", pairingHandler.Callback)

	r.Route("/token", func(r chi.Router) {
		r.Use(secretMiddleware.Handler)
		r.Post("/", pairingHandler.Token)
	})

	// Top-level catch-all: a bare pairing code redirects to the provider's
	// consent page. Static routes above take precedence in chi.
	r.Get("/{userCode}", pairingHandler.Redirect)

	reaper := jobs.NewReaperJob(pairingRepo, cfg.PairingTTL(), cfg.SweepInterval())
	reaper.Start()
	defer reaper.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
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
