package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amaumene/tempus/internal/config"
	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/services/anilist"
	"github.com/amaumene/tempus/internal/utils"
)

const browsePage = `{"data": {"Page": {
  "pageInfo": {"total": 3, "currentPage": 1, "lastPage": 1, "hasNextPage": false, "perPage": 20},
  "media": [
    {"id": 1, "title": {"romaji": "Cowboy Bebop"}, "genres": ["Action"], "status": "FINISHED", "format": "TV",
     "studios": {"nodes": []}, "startDate": {}, "endDate": {},
     "tags": [{"id": 1, "name": "Space", "isMediaSpoiler": false, "isGeneralSpoiler": false},
              {"id": 2, "name": "Tragedy", "isMediaSpoiler": true, "isGeneralSpoiler": false}]},
    {"id": 2, "title": {"romaji": "Trigun"}, "genres": ["Action"], "status": "FINISHED", "format": "TV",
     "studios": {"nodes": []}, "startDate": {}, "endDate": {}, "tags": []},
    {"id": 3, "title": {"romaji": "Hentai Something"}, "genres": ["Ecchi"], "status": "FINISHED", "format": "OVA",
     "studios": {"nodes": []}, "startDate": {}, "endDate": {}, "tags": []}
  ]}}}`

const browseMedia = `{"data": {"Media": {"id": 1, "title": {"romaji": "Cowboy Bebop", "english": "Cowboy Bebop"},
  "description": "Space bounty hunters.<br><br>In 2071.", "genres": ["Action"], "status": "FINISHED", "format": "TV",
  "studios": {"nodes": []}, "startDate": {"year": 1998}, "endDate": {},
  "tags": [{"id": 2, "name": "Tragedy", "isMediaSpoiler": false, "isGeneralSpoiler": true}]}}}`

type fixture struct {
	browse     *BrowseController
	watchlists *WatchlistController
	settings   *SettingsController

	mu       sync.Mutex
	requests []map[string]interface{}
}

// request returns the variables of the i-th AniList call
func (f *fixture) request(i int) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func (f *fixture) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newBrowseFixture(t *testing.T, blacklist *utils.Blacklist) *fixture {
	t.Helper()
	f := &fixture{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		_ = json.Unmarshal(body, &req)
		f.mu.Lock()
		f.requests = append(f.requests, req.Variables)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(req.Query, "Media(id") {
			if req.Variables["id"] == float64(404) {
				_, _ = w.Write([]byte(`{"data": {"Media": null}}`))
				return
			}
			_, _ = w.Write([]byte(browseMedia))
			return
		}
		_, _ = w.Write([]byte(browsePage))
	}))
	t.Cleanup(server.Close)

	client, err := anilist.NewClient(&config.Config{
		AniListURL:     server.URL,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     0,
		RetryDelay:     time.Millisecond,
		CacheTTL:       time.Minute,
	}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	watchlists, db := newTestWatchlists(t)
	f.watchlists = watchlists
	f.settings = NewSettingsController(db, testLogger())
	f.browse = NewBrowseController(client, watchlists, f.settings, blacklist, 20, testLogger())
	return f
}

func TestBrowseAnnotatesAndFilters(t *testing.T) {
	f := newBrowseFixture(t, utils.NewBlacklist("hentai"))
	_ = f.watchlists.AddAnimeToWatchlist(models.WatchlistPlanToWatch, anime(2, "Trigun", ""), "", "")

	page, err := f.browse.Trending(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Trending failed: %v", err)
	}

	if page.Hidden != 1 || len(page.Media) != 2 {
		t.Fatalf("Expected 2 results and 1 hidden, got %d and %d", len(page.Media), page.Hidden)
	}
	if page.Media[0].InWatchlist || !page.Media[1].InWatchlist {
		t.Errorf("Unexpected watchlist flags: %v %v", page.Media[0].InWatchlist, page.Media[1].InWatchlist)
	}
	if len(page.Media[0].Tags) != 1 || page.Media[0].Tags[0].Name != "Space" {
		t.Errorf("Expected spoiler tag stripped, got %+v", page.Media[0].Tags)
	}
	if f.request(0)["perPage"] != float64(20) {
		t.Errorf("Expected default page size 20, got %v", f.request(0)["perPage"])
	}
}

func TestBrowseShowsSpoilersWhenEnabled(t *testing.T) {
	f := newBrowseFixture(t, nil)
	on := true
	_, _ = f.settings.Update(SettingsPatch{ShowSpoilers: &on})

	page, err := f.browse.Popular(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Popular failed: %v", err)
	}
	if len(page.Media) != 3 || page.Hidden != 0 {
		t.Fatalf("Expected all 3 results, got %d", len(page.Media))
	}
	if len(page.Media[0].Tags) != 2 {
		t.Errorf("Expected spoiler tags kept, got %+v", page.Media[0].Tags)
	}
	if f.request(0)["perPage"] != float64(10) {
		t.Errorf("Expected explicit page size 10, got %v", f.request(0)["perPage"])
	}
}

func TestBrowseByGenre(t *testing.T) {
	f := newBrowseFixture(t, nil)

	if _, err := f.browse.ByGenre(context.Background(), "slice of life", 1, 0); err != nil {
		t.Fatalf("ByGenre failed: %v", err)
	}
	genres, _ := f.request(0)["genre_in"].([]interface{})
	if len(genres) != 1 || genres[0] != "Slice of Life" {
		t.Errorf("Expected canonical genre, got %v", f.request(0)["genre_in"])
	}

	_, err := f.browse.ByGenre(context.Background(), "Mecah", 1, 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "Mecha"`) {
		t.Errorf("Expected suggestion in %q", err.Error())
	}
	if f.calls() != 1 {
		t.Error("Invalid genre must not reach the API")
	}
}

func TestBrowseSearchAndSeasonal(t *testing.T) {
	f := newBrowseFixture(t, nil)
	ctx := context.Background()

	_, err := f.browse.Search(ctx, anilist.SearchFilters{Search: "  bebop ", Genres: []string{"sci-fi"}}, 2, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if f.request(0)["search"] != "bebop" || f.request(0)["page"] != float64(2) {
		t.Errorf("Unexpected search variables: %v", f.request(0))
	}

	if _, err := f.browse.Seasonal(ctx, 1800, models.SeasonFall, 1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for year 1800, got %v", err)
	}
	if _, err := f.browse.Seasonal(ctx, 2024, models.SeasonFall, 1, 0); err != nil {
		t.Errorf("Seasonal failed: %v", err)
	}
}

func TestBrowseDetail(t *testing.T) {
	f := newBrowseFixture(t, nil)
	_ = f.watchlists.AddAnimeToWatchlist(models.WatchlistCompleted, anime(1, "Cowboy Bebop", ""), models.WatchStatusCompleted, "")

	detail, err := f.browse.Detail(context.Background(), 1)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	if !detail.InWatchlist || len(detail.Watchlists) != 1 || detail.Watchlists[0].WatchlistID != models.WatchlistCompleted {
		t.Errorf("Unexpected membership: %+v", detail.Watchlists)
	}
	if detail.DisplayTitle != "Cowboy Bebop" || detail.Year != 1998 {
		t.Errorf("Unexpected display fields: %q %d", detail.DisplayTitle, detail.Year)
	}
	if detail.PlainDescription != "Space bounty hunters.\n\nIn 2071." {
		t.Errorf("Unexpected description %q", detail.PlainDescription)
	}
	if len(detail.Tags) != 0 {
		t.Errorf("Expected spoiler tags stripped, got %+v", detail.Tags)
	}

	if _, err := f.browse.Detail(context.Background(), 404); !errors.Is(err, anilist.ErrAnimeNotFound) {
		t.Errorf("Expected ErrAnimeNotFound, got %v", err)
	}
	if _, err := f.browse.Detail(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestCanonicalGenre(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"action", "Action"},
		{"  SCI-FI ", "Sci-Fi"},
		{"Mahou Shoujo", "Mahou Shoujo"},
	}
	for _, tt := range tests {
		got, err := CanonicalGenre(tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.want, got)
		}
	}

	if _, err := CanonicalGenre("Cooking"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
