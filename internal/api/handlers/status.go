package handlers

import (
	"net/http"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/metrics"
	"github.com/sirupsen/logrus"
)

// CacheStats reports the AniList response cache size
type CacheStats interface {
	CachedResponses() int
}

// StatusHandler handles status requests
type StatusHandler struct {
	watchlistCtrl *controllers.WatchlistController
	cache         CacheStats
	logger        *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(watchlistCtrl *controllers.WatchlistController, cache CacheStats, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		watchlistCtrl: watchlistCtrl,
		cache:         cache,
		logger:        logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	*controllers.WatchlistStats
	CachedResponses int `json:"cached_responses"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.watchlistCtrl.Stats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute watchlist stats")
		writeError(w, h.logger, err)
		return
	}

	// drop series of deleted lists
	metrics.WatchlistEntries.Reset()
	for id, count := range stats.EntriesByWatchlist {
		metrics.WatchlistEntries.WithLabelValues(id).Set(float64(count))
	}

	response := StatusResponse{WatchlistStats: stats}
	if h.cache != nil {
		response.CachedResponses = h.cache.CachedResponses()
	}

	writeJSON(w, http.StatusOK, response)
}
