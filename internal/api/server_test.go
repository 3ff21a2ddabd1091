package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amaumene/tempus/internal/config"
	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/services/anilist"
	"github.com/sirupsen/logrus"
)

const fakeMedia = `{"data": {"Media": {"id": 1, "title": {"romaji": "Cowboy Bebop"}, "genres": ["Action"],
  "status": "FINISHED", "format": "TV", "studios": {"nodes": []}, "startDate": {}, "endDate": {}, "tags": []}}}`

const fakePage = `{"data": {"Page": {"pageInfo": {"total": 1, "currentPage": 1, "lastPage": 1, "hasNextPage": false, "perPage": 20},
  "media": [{"id": 1, "title": {"romaji": "Cowboy Bebop"}, "genres": ["Action"], "status": "FINISHED", "format": "TV",
  "studios": {"nodes": []}, "startDate": {}, "endDate": {}, "tags": []}]}}}`

func newTestServer(t *testing.T, anilistHandler http.HandlerFunc) http.Handler {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if anilistHandler == nil {
		anilistHandler = func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			if strings.Contains(string(body), "Media(id") {
				if strings.Contains(string(body), `"id":999`) {
					w.Write([]byte(`{"data": {"Media": null}}`))
					return
				}
				w.Write([]byte(fakeMedia))
				return
			}
			w.Write([]byte(fakePage))
		}
	}
	upstream := httptest.NewServer(anilistHandler)
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		AniListURL:     upstream.URL,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     1,
		RetryDelay:     time.Millisecond,
		CacheTTL:       time.Minute,
		PageSize:       20,
		ServerPort:     "0",
	}

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	client, err := anilist.NewClient(cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	watchlistCtrl := controllers.NewWatchlistController(db, logger)
	if err := watchlistCtrl.InitializeDefaultLists(); err != nil {
		t.Fatalf("InitializeDefaultLists failed: %v", err)
	}
	settingsCtrl := controllers.NewSettingsController(db, logger)

	server := NewServer(cfg, Controllers{
		Browse:    controllers.NewBrowseController(client, watchlistCtrl, settingsCtrl, nil, cfg.PageSize, logger),
		Watchlist: watchlistCtrl,
		Swipe:     controllers.NewSwipeController(watchlistCtrl, logger),
		Settings:  settingsCtrl,
		Cache:     client,
	}, logger)
	return server.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealthAndStatus(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("Unexpected health response: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var status map[string]interface{}
	decode(t, rec, &status)
	if status["total_watchlists"] != float64(3) {
		t.Errorf("Expected 3 watchlists, got %v", status["total_watchlists"])
	}

	rec = do(t, h, http.MethodPost, "/health", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil)
	do(t, h, http.MethodGet, "/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tempus_http_requests_total") {
		t.Error("Expected HTTP request counter in metrics output")
	}
}

func TestStatusDropsDeletedWatchlistGauge(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/watchlists", `{"name": "Gauge"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var created models.Watchlist
	decode(t, rec, &created)
	series := `watchlist="` + created.ID + `"`

	do(t, h, http.MethodGet, "/status", "")
	rec = do(t, h, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), series) {
		t.Fatalf("Expected gauge for %s after /status", created.ID)
	}

	if rec = do(t, h, http.MethodDelete, "/api/watchlists/"+created.ID, ""); rec.Code >= 300 {
		t.Fatalf("Delete failed: %d %s", rec.Code, rec.Body.String())
	}
	do(t, h, http.MethodGet, "/status", "")
	rec = do(t, h, http.MethodGet, "/metrics", "")
	if strings.Contains(rec.Body.String(), series) {
		t.Errorf("Gauge for deleted list %s still exported", created.ID)
	}
}

func TestBrowseEndpoints(t *testing.T) {
	h := newTestServer(t, nil)

	for _, path := range []string{
		"/api/anime/trending",
		"/api/anime/popular?page=2&perPage=5",
		"/api/anime/top",
		"/api/anime/upcoming",
		"/api/anime/seasonal?year=2024&season=fall",
		"/api/anime/search?q=bebop&genre=action,sci-fi&sort=score_desc",
		"/api/genres/Action",
	} {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d %s", path, rec.Code, rec.Body.String())
			continue
		}
		var page controllers.BrowsePage
		decode(t, rec, &page)
		if len(page.Media) != 1 || page.Media[0].ID != 1 {
			t.Errorf("%s: unexpected media %+v", path, page.Media)
		}
	}

	for _, path := range []string{
		"/api/anime/trending?page=abc",
		"/api/anime/seasonal?year=2024&season=monsoon",
		"/api/anime/search?format=BOOK",
		"/api/genres/Cooking",
	} {
		if rec := do(t, h, http.MethodGet, path, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/genres", "")
	var genres map[string][]string
	decode(t, rec, &genres)
	if len(genres["genres"]) != 18 {
		t.Errorf("Expected 18 genres, got %d", len(genres["genres"]))
	}
}

func TestAnimeDetailEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/anime/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var detail controllers.AnimeDetail
	decode(t, rec, &detail)
	if detail.DisplayTitle != "Cowboy Bebop" || detail.InWatchlist {
		t.Errorf("Unexpected detail: %+v", detail)
	}

	if rec := do(t, h, http.MethodGet, "/api/anime/999", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/anime/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestSwipeEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/anime/1/swipe", `{"direction": "right"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var result controllers.SwipeResult
	decode(t, rec, &result)
	if result.WatchlistID != models.WatchlistCurrentlyWatching {
		t.Errorf("Unexpected swipe result: %+v", result)
	}

	rec = do(t, h, http.MethodGet, "/api/anime/1/watchlists", "")
	var memberships struct {
		Watchlists []controllers.Membership `json:"watchlists"`
	}
	decode(t, rec, &memberships)
	if len(memberships.Watchlists) != 1 {
		t.Errorf("Expected 1 membership, got %+v", memberships.Watchlists)
	}

	rec = do(t, h, http.MethodPost, "/api/anime/1/swipe", `{"direction": "down"}`)
	decode(t, rec, &result)
	if result.RemovedFrom != 1 {
		t.Errorf("Expected removal from 1 list, got %d", result.RemovedFrom)
	}

	if rec := do(t, h, http.MethodPost, "/api/anime/1/swipe", `{"direction": "sideways"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestWatchlistEndpoints(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/watchlists", `{"name": "Rewatch"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var created models.Watchlist
	decode(t, rec, &created)

	rec = do(t, h, http.MethodPost, "/api/watchlists/"+created.ID+"/items", `{"animeId": 1, "status": "on-hold", "notes": "later"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var list models.Watchlist
	decode(t, rec, &list)
	if len(list.Items) != 1 || list.Items[0].WatchStatus != models.WatchStatusOnHold || list.Items[0].Anime.Title.Romaji != "Cowboy Bebop" {
		t.Errorf("Unexpected items: %+v", list.Items)
	}

	rec = do(t, h, http.MethodPatch, "/api/watchlists/"+created.ID+"/items/1", `{"status": "COMPLETED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &list)
	if list.Items[0].WatchStatus != models.WatchStatusCompleted || list.Items[0].Notes != "later" {
		t.Errorf("Unexpected item after patch: %+v", list.Items[0])
	}

	rec = do(t, h, http.MethodGet, "/api/watchlists/search?q=bebop", "")
	var found struct {
		Results []controllers.WatchlistMatch `json:"results"`
	}
	decode(t, rec, &found)
	if len(found.Results) != 1 {
		t.Errorf("Expected 1 search result, got %d", len(found.Results))
	}

	rec = do(t, h, http.MethodGet, "/api/watchlists/search?q=Cowboy%20Bebpo", "")
	var suggested map[string]interface{}
	decode(t, rec, &suggested)
	if suggested["suggestion"] != "Cowboy Bebop" {
		t.Errorf("Expected suggestion, got %v", suggested["suggestion"])
	}

	if rec := do(t, h, http.MethodDelete, "/api/watchlists/"+created.ID+"/items/1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPatch, "/api/watchlists/"+created.ID+"/items/1", `{"status": "DROPPED"}`); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing entry, got %d", rec.Code)
	}

	if rec := do(t, h, http.MethodDelete, "/api/watchlists/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/watchlists/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/watchlists/completed", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for default list, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/watchlists", "")
	var all struct {
		Watchlists []models.Watchlist `json:"watchlists"`
	}
	decode(t, rec, &all)
	if len(all.Watchlists) != 3 {
		t.Errorf("Expected 3 lists, got %d", len(all.Watchlists))
	}
}

func TestWatchlistValidation(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/watchlists", `{"name": ""}`, http.StatusBadRequest},
		{http.MethodPost, "/api/watchlists", `{"nom": "x"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/watchlists/plan-to-watch/items", `{"animeId": 0}`, http.StatusBadRequest},
		{http.MethodPost, "/api/watchlists/plan-to-watch/items", `{"animeId": 1, "status": "BINGED"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/watchlists/nope/items", `{"animeId": 1}`, http.StatusNotFound},
		{http.MethodPost, "/api/watchlists/plan-to-watch/items", `{"animeId": 999}`, http.StatusNotFound},
		{http.MethodPatch, "/api/watchlists/plan-to-watch/items/x", `{"status": "DROPPED"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s %s %s: expected %d, got %d", tt.method, tt.path, tt.body, tt.want, rec.Code)
		}
	}
}

func TestSettingsEndpoints(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/settings", "")
	var settings models.Settings
	decode(t, rec, &settings)
	if settings != *models.DefaultSettings() {
		t.Errorf("Expected defaults, got %+v", settings)
	}

	rec = do(t, h, http.MethodPut, "/api/settings", `{"showSpoilers": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	decode(t, rec, &settings)
	if !settings.ShowSpoilers || !settings.DarkMode {
		t.Errorf("Unexpected settings: %+v", settings)
	}

	if rec := do(t, h, http.MethodPut, "/api/settings", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty patch, got %d", rec.Code)
	}
}

func TestRateLimitMapsTo503(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	rec := do(t, h, http.MethodGet, "/api/anime/trending", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func TestUpstreamFailureMapsTo500(t *testing.T) {
	h := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := do(t, h, http.MethodGet, "/api/anime/trending", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("Expected generic message, got %s", rec.Body.String())
	}
}
