package anilist

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/amaumene/tempus/internal/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 50
)

// availableGenres is the fixed AniList genre collection
var availableGenres = []string{
	"Action",
	"Adventure",
	"Comedy",
	"Drama",
	"Ecchi",
	"Fantasy",
	"Horror",
	"Mahou Shoujo",
	"Mecha",
	"Music",
	"Mystery",
	"Psychological",
	"Romance",
	"Sci-Fi",
	"Slice of Life",
	"Sports",
	"Supernatural",
	"Thriller",
}

// SearchFilters narrows a media search. Zero values mean "no filter".
type SearchFilters struct {
	Search string
	Genres []string
	Year   int
	Season models.MediaSeason
	Format models.MediaFormat
	Status models.MediaStatus
	Sort   []models.SortOption // defaults to POPULARITY_DESC
}

// ActiveCount returns how many narrowing filters are set, ignoring search text and sort
func (f SearchFilters) ActiveCount() int {
	count := 0
	if len(f.Genres) > 0 {
		count++
	}
	if f.Year != 0 {
		count++
	}
	if f.Season != "" {
		count++
	}
	if f.Format != "" {
		count++
	}
	if f.Status != "" {
		count++
	}
	return count
}

// variables builds the GraphQL variables, leaving unset filters out entirely
func (f SearchFilters) variables(page, perPage int) map[string]interface{} {
	vars := map[string]interface{}{
		"page":    page,
		"perPage": perPage,
	}
	if f.Search != "" {
		vars["search"] = f.Search
	}
	if len(f.Genres) > 0 {
		vars["genre_in"] = f.Genres
	}
	if f.Year != 0 {
		vars["year"] = f.Year
	}
	if f.Season != "" {
		vars["season"] = f.Season
	}
	if f.Format != "" {
		vars["format"] = f.Format
	}
	if f.Status != "" {
		vars["status"] = f.Status
	}
	if len(f.Sort) > 0 {
		vars["sort"] = f.Sort
	} else {
		vars["sort"] = []models.SortOption{models.SortPopularityDesc}
	}
	return vars
}

func normalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	return page, perPage
}

type pageData struct {
	Page models.Page `json:"Page"`
}

type mediaData struct {
	Media *models.Anime `json:"Media"`
}

// SearchAnime searches anime with filters
func (c *Client) SearchAnime(ctx context.Context, page, perPage int, filters SearchFilters) (*models.Page, error) {
	page, perPage = normalizePaging(page, perPage)

	var result pageData
	if err := c.doQuery(ctx, searchAnimeQuery, filters.variables(page, perPage), &result); err != nil {
		return nil, fmt.Errorf("failed to search anime: %w", err)
	}
	return &result.Page, nil
}

// GetTrendingAnime retrieves currently trending anime
func (c *Client) GetTrendingAnime(ctx context.Context, page, perPage int) (*models.Page, error) {
	page, perPage = normalizePaging(page, perPage)

	var result pageData
	vars := map[string]interface{}{"page": page, "perPage": perPage}
	if err := c.doQuery(ctx, trendingAnimeQuery, vars, &result); err != nil {
		return nil, fmt.Errorf("failed to get trending anime: %w", err)
	}
	return &result.Page, nil
}

// GetAnimeByID retrieves a single anime
func (c *Client) GetAnimeByID(ctx context.Context, id int) (*models.Anime, error) {
	var result mediaData
	err := c.doQuery(ctx, animeByIDQuery, map[string]interface{}{"id": id}, &result)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("anime %d: %w", id, ErrAnimeNotFound)
		}
		return nil, fmt.Errorf("failed to get anime %d: %w", id, err)
	}
	if result.Media == nil {
		return nil, fmt.Errorf("anime %d: %w", id, ErrAnimeNotFound)
	}
	return result.Media, nil
}

// GetPopularAnime retrieves the most popular anime
func (c *Client) GetPopularAnime(ctx context.Context, page, perPage int) (*models.Page, error) {
	return c.SearchAnime(ctx, page, perPage, SearchFilters{
		Sort: []models.SortOption{models.SortPopularityDesc},
	})
}

// GetAnimeByGenre retrieves popular anime of one genre
func (c *Client) GetAnimeByGenre(ctx context.Context, genre string, page, perPage int) (*models.Page, error) {
	return c.SearchAnime(ctx, page, perPage, SearchFilters{
		Genres: []string{genre},
		Sort:   []models.SortOption{models.SortPopularityDesc},
	})
}

// GetSeasonalAnime retrieves popular anime of a broadcast season
func (c *Client) GetSeasonalAnime(ctx context.Context, year int, season models.MediaSeason, page, perPage int) (*models.Page, error) {
	return c.SearchAnime(ctx, page, perPage, SearchFilters{
		Year:   year,
		Season: season,
		Sort:   []models.SortOption{models.SortPopularityDesc},
	})
}

// GetTopRatedAnime retrieves the highest scored anime
func (c *Client) GetTopRatedAnime(ctx context.Context, page, perPage int) (*models.Page, error) {
	return c.SearchAnime(ctx, page, perPage, SearchFilters{
		Sort: []models.SortOption{models.SortScoreDesc},
	})
}

// GetUpcomingAnime retrieves popular anime that have not started airing
func (c *Client) GetUpcomingAnime(ctx context.Context, page, perPage int) (*models.Page, error) {
	return c.SearchAnime(ctx, page, perPage, SearchFilters{
		Status: models.MediaStatusNotYetReleased,
		Sort:   []models.SortOption{models.SortPopularityDesc},
	})
}

// AvailableGenres returns the static AniList genre list
func AvailableGenres() []string {
	out := make([]string, len(availableGenres))
	copy(out, availableGenres)
	return out
}
