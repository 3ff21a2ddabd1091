package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/services/anilist"
	"github.com/sirupsen/logrus"
)

// AnimeHandler serves the browse, detail and swipe endpoints
type AnimeHandler struct {
	browseCtrl    *controllers.BrowseController
	watchlistCtrl *controllers.WatchlistController
	swipeCtrl     *controllers.SwipeController
	logger        *logrus.Logger
}

// NewAnimeHandler creates a new anime handler
func NewAnimeHandler(
	browseCtrl *controllers.BrowseController,
	watchlistCtrl *controllers.WatchlistController,
	swipeCtrl *controllers.SwipeController,
	logger *logrus.Logger,
) *AnimeHandler {
	return &AnimeHandler{
		browseCtrl:    browseCtrl,
		watchlistCtrl: watchlistCtrl,
		swipeCtrl:     swipeCtrl,
		logger:        logger,
	}
}

type pagedFetch func(r *http.Request, page, perPage int) (*controllers.BrowsePage, error)

func (h *AnimeHandler) paged(fetch pagedFetch) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage, err := paging(r)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		result, err := fetch(r, page, perPage)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// Trending handles GET /api/anime/trending
func (h *AnimeHandler) Trending() http.HandlerFunc {
	return h.paged(func(r *http.Request, page, perPage int) (*controllers.BrowsePage, error) {
		return h.browseCtrl.Trending(r.Context(), page, perPage)
	})
}

// Popular handles GET /api/anime/popular
func (h *AnimeHandler) Popular() http.HandlerFunc {
	return h.paged(func(r *http.Request, page, perPage int) (*controllers.BrowsePage, error) {
		return h.browseCtrl.Popular(r.Context(), page, perPage)
	})
}

// TopRated handles GET /api/anime/top
func (h *AnimeHandler) TopRated() http.HandlerFunc {
	return h.paged(func(r *http.Request, page, perPage int) (*controllers.BrowsePage, error) {
		return h.browseCtrl.TopRated(r.Context(), page, perPage)
	})
}

// Upcoming handles GET /api/anime/upcoming
func (h *AnimeHandler) Upcoming() http.HandlerFunc {
	return h.paged(func(r *http.Request, page, perPage int) (*controllers.BrowsePage, error) {
		return h.browseCtrl.Upcoming(r.Context(), page, perPage)
	})
}

// Seasonal handles GET /api/anime/seasonal?year=&season=
func (h *AnimeHandler) Seasonal() http.HandlerFunc {
	return h.paged(func(r *http.Request, page, perPage int) (*controllers.BrowsePage, error) {
		year, err := intParam(r, "year")
		if err != nil {
			return nil, err
		}
		season, err := models.ParseMediaSeason(r.URL.Query().Get("season"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", controllers.ErrInvalidInput, err)
		}
		return h.browseCtrl.Seasonal(r.Context(), year, season, page, perPage)
	})
}

// ByGenre handles GET /api/genres/{genre}
func (h *AnimeHandler) ByGenre() http.HandlerFunc {
	return h.paged(func(r *http.Request, page, perPage int) (*controllers.BrowsePage, error) {
		return h.browseCtrl.ByGenre(r.Context(), r.PathValue("genre"), page, perPage)
	})
}

// Search handles GET /api/anime/search
func (h *AnimeHandler) Search() http.HandlerFunc {
	return h.paged(func(r *http.Request, page, perPage int) (*controllers.BrowsePage, error) {
		filters, err := searchFilters(r)
		if err != nil {
			return nil, err
		}
		return h.browseCtrl.Search(r.Context(), filters, page, perPage)
	})
}

// searchFilters reads q, genre, year, season, format, status and sort.
// genre and sort accept repeated or comma separated values.
func searchFilters(r *http.Request) (anilist.SearchFilters, error) {
	q := r.URL.Query()
	filters := anilist.SearchFilters{
		Search: q.Get("q"),
		Genres: listParam(q["genre"]),
	}

	year, err := intParam(r, "year")
	if err != nil {
		return filters, err
	}
	filters.Year = year

	if v := q.Get("season"); v != "" {
		if filters.Season, err = models.ParseMediaSeason(v); err != nil {
			return filters, fmt.Errorf("%w: %v", controllers.ErrInvalidInput, err)
		}
	}
	if v := q.Get("format"); v != "" {
		if filters.Format, err = models.ParseMediaFormat(v); err != nil {
			return filters, fmt.Errorf("%w: %v", controllers.ErrInvalidInput, err)
		}
	}
	if v := q.Get("status"); v != "" {
		if filters.Status, err = models.ParseMediaStatus(v); err != nil {
			return filters, fmt.Errorf("%w: %v", controllers.ErrInvalidInput, err)
		}
	}
	for _, v := range listParam(q["sort"]) {
		sort, err := models.ParseSortOption(v)
		if err != nil {
			return filters, fmt.Errorf("%w: %v", controllers.ErrInvalidInput, err)
		}
		filters.Sort = append(filters.Sort, sort)
	}

	return filters, nil
}

func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Genres handles GET /api/genres
func (h *AnimeHandler) Genres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"genres": anilist.AvailableGenres(),
	})
}

// Detail handles GET /api/anime/{id}
func (h *AnimeHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	detail, err := h.browseCtrl.Detail(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Watchlists handles GET /api/anime/{id}/watchlists
func (h *AnimeHandler) Watchlists(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	memberships, err := h.watchlistCtrl.IsAnimeInWatchlists(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"animeId":    id,
		"watchlists": memberships,
	})
}

// SwipeRequest is the body of POST /api/anime/{id}/swipe
type SwipeRequest struct {
	Direction string `json:"direction"`
}

// Swipe handles POST /api/anime/{id}/swipe
func (h *AnimeHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req SwipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	direction, err := controllers.ParseSwipeDirection(req.Direction)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	anime := models.Anime{ID: id}
	if direction != controllers.SwipeDown {
		fetched, err := h.browseCtrl.Fetch(r.Context(), id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		anime = *fetched
	}

	result, err := h.swipeCtrl.Swipe(anime, direction)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
