package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/tic-tac-toe/internal/api"
	"github.com/tic-tac-toe/internal/config"
	"github.com/tic-tac-toe/internal/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatal().Err(err).Msg("invalid .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogPretty); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server exited properly")
}

// newRouter mounts the move API under /api plus a health probe
func newRouter(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", api.NewHandlers(cfg).RegisterRoutes)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	return r
}

// serve runs the HTTP server until ctx is done, then drains open requests
func serve(ctx context.Context, cfg *config.Config) error {
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.SearchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("strategy", cfg.Search.Strategy.String()).
			Int("workers", cfg.Search.Workers).
			Int("maxBoardSize", cfg.MaxBoardSize).
			Msg("server starting")
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
