package handlers

import (
	"fmt"
	"net/http"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/models"
	"github.com/sirupsen/logrus"
)

// WatchlistHandler serves watchlist CRUD
type WatchlistHandler struct {
	watchlistCtrl *controllers.WatchlistController
	browseCtrl    *controllers.BrowseController
	logger        *logrus.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlistCtrl *controllers.WatchlistController, browseCtrl *controllers.BrowseController, logger *logrus.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistCtrl: watchlistCtrl,
		browseCtrl:    browseCtrl,
		logger:        logger,
	}
}

// List handles GET /api/watchlists
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.watchlistCtrl.GetAllWatchlists()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"watchlists": lists})
}

// Get handles GET /api/watchlists/{id}
func (h *WatchlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, err := h.watchlistCtrl.GetWatchlistByID(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateRequest is the body of POST /api/watchlists
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/watchlists
func (h *WatchlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.watchlistCtrl.CreateWatchlist(req.Name, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// Delete handles DELETE /api/watchlists/{id}
func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.watchlistCtrl.DeleteWatchlist(r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItemRequest is the body of POST /api/watchlists/{id}/items
type AddItemRequest struct {
	AnimeID int    `json:"animeId"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

// AddItem handles POST /api/watchlists/{id}/items. The anime is fetched
// from AniList so the stored entry carries full metadata.
func (h *WatchlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.AnimeID <= 0 {
		writeError(w, h.logger, fmt.Errorf("%w: animeId must be positive", controllers.ErrInvalidInput))
		return
	}

	var status models.WatchStatus
	if req.Status != "" {
		parsed, err := models.ParseWatchStatus(req.Status)
		if err != nil {
			writeError(w, h.logger, fmt.Errorf("%w: %v", controllers.ErrInvalidInput, err))
			return
		}
		status = parsed
	}

	listID := r.PathValue("id")
	if _, err := h.watchlistCtrl.GetWatchlistByID(listID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	anime, err := h.browseCtrl.Fetch(r.Context(), req.AnimeID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.watchlistCtrl.AddAnimeToWatchlist(listID, *anime, status, req.Notes); err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.watchlistCtrl.GetWatchlistByID(listID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// UpdateItemRequest is the body of PATCH /api/watchlists/{id}/items/{animeId}
type UpdateItemRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// UpdateItem handles PATCH /api/watchlists/{id}/items/{animeId}
func (h *WatchlistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	animeID, err := pathID(r, "animeId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req UpdateItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	status, err := models.ParseWatchStatus(req.Status)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: %v", controllers.ErrInvalidInput, err))
		return
	}

	listID := r.PathValue("id")
	if err := h.watchlistCtrl.UpdateWatchlistItemStatus(listID, animeID, status, req.Notes); err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.watchlistCtrl.GetWatchlistByID(listID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// RemoveItem handles DELETE /api/watchlists/{id}/items/{animeId}
func (h *WatchlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	animeID, err := pathID(r, "animeId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.watchlistCtrl.RemoveAnimeFromWatchlist(r.PathValue("id"), animeID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/watchlists/search?q=
func (h *WatchlistHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	matches, err := h.watchlistCtrl.SearchInWatchlists(query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response := map[string]interface{}{"results": matches}
	if len(matches) == 0 && query != "" {
		if suggestion, ok, err := h.watchlistCtrl.SuggestTitle(query); err == nil && ok {
			response["suggestion"] = suggestion
		}
	}
	writeJSON(w, http.StatusOK, response)
}
