package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/tempus/internal/api/handlers"
	"github.com/amaumene/tempus/internal/api/middleware"
	"github.com/amaumene/tempus/internal/config"
	"github.com/amaumene/tempus/internal/controllers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Controllers bundles what the HTTP layer needs
type Controllers struct {
	Browse    *controllers.BrowseController
	Watchlist *controllers.WatchlistController
	Swipe     *controllers.SwipeController
	Settings  *controllers.SettingsController
	Cache     handlers.CacheStats
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	ctrls  Controllers
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, ctrls Controllers, logger *logrus.Logger) *Server {
	s := &Server{
		ctrls:  ctrls,
		logger: logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // throttled AniList calls can queue
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler, middleware included
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.Handle("GET /health", healthHandler)

	statusHandler := handlers.NewStatusHandler(s.ctrls.Watchlist, s.ctrls.Cache, s.logger)
	mux.Handle("GET /status", statusHandler)

	mux.Handle("GET /metrics", promhttp.Handler())

	// Browse
	anime := handlers.NewAnimeHandler(s.ctrls.Browse, s.ctrls.Watchlist, s.ctrls.Swipe, s.logger)
	mux.HandleFunc("GET /api/anime/trending", anime.Trending())
	mux.HandleFunc("GET /api/anime/popular", anime.Popular())
	mux.HandleFunc("GET /api/anime/top", anime.TopRated())
	mux.HandleFunc("GET /api/anime/upcoming", anime.Upcoming())
	mux.HandleFunc("GET /api/anime/seasonal", anime.Seasonal())
	mux.HandleFunc("GET /api/anime/search", anime.Search())
	mux.HandleFunc("GET /api/anime/{id}", anime.Detail)
	mux.HandleFunc("GET /api/anime/{id}/watchlists", anime.Watchlists)
	mux.HandleFunc("POST /api/anime/{id}/swipe", anime.Swipe)
	mux.HandleFunc("GET /api/genres", anime.Genres)
	mux.HandleFunc("GET /api/genres/{genre}", anime.ByGenre())

	// Watchlists
	watchlists := handlers.NewWatchlistHandler(s.ctrls.Watchlist, s.ctrls.Browse, s.logger)
	mux.HandleFunc("GET /api/watchlists", watchlists.List)
	mux.HandleFunc("POST /api/watchlists", watchlists.Create)
	mux.HandleFunc("GET /api/watchlists/search", watchlists.Search)
	mux.HandleFunc("GET /api/watchlists/{id}", watchlists.Get)
	mux.HandleFunc("DELETE /api/watchlists/{id}", watchlists.Delete)
	mux.HandleFunc("POST /api/watchlists/{id}/items", watchlists.AddItem)
	mux.HandleFunc("PATCH /api/watchlists/{id}/items/{animeId}", watchlists.UpdateItem)
	mux.HandleFunc("DELETE /api/watchlists/{id}/items/{animeId}", watchlists.RemoveItem)

	// Settings
	settings := handlers.NewSettingsHandler(s.ctrls.Settings, s.logger)
	mux.HandleFunc("GET /api/settings", settings.Get)
	mux.HandleFunc("PUT /api/settings", settings.Update)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
