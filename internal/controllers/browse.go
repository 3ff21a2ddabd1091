package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/services/anilist"
	"github.com/amaumene/tempus/internal/utils"
	"github.com/sirupsen/logrus"
)

// AnimeResult is a browsed title annotated with local state
type AnimeResult struct {
	models.Anime
	InWatchlist bool `json:"inWatchlist"`
}

// BrowsePage is one page of browse results
type BrowsePage struct {
	PageInfo models.PageInfo `json:"pageInfo"`
	Media    []AnimeResult   `json:"media"`
	Hidden   int             `json:"hidden,omitempty"` // titles dropped by the blacklist
}

// AnimeDetail is the full view of a single title
type AnimeDetail struct {
	AnimeResult
	DisplayTitle     string       `json:"displayTitle"`
	PlainDescription string       `json:"plainDescription"`
	Year             int          `json:"year,omitempty"`
	Airing           bool         `json:"airing"`
	Watchlists       []Membership `json:"watchlists"`
}

// BrowseController fetches titles from AniList and decorates them with the
// user's watchlist membership and spoiler preference
type BrowseController struct {
	client     *anilist.Client
	watchlists *WatchlistController
	settings   *SettingsController
	blacklist  *utils.Blacklist
	pageSize   int
	logger     *logrus.Logger
}

// NewBrowseController creates a new browse controller
func NewBrowseController(
	client *anilist.Client,
	watchlists *WatchlistController,
	settings *SettingsController,
	blacklist *utils.Blacklist,
	pageSize int,
	logger *logrus.Logger,
) *BrowseController {
	if blacklist == nil {
		blacklist = utils.NewBlacklist()
	}
	return &BrowseController{
		client:     client,
		watchlists: watchlists,
		settings:   settings,
		blacklist:  blacklist,
		pageSize:   pageSize,
		logger:     logger,
	}
}

func (c *BrowseController) perPage(n int) int {
	if n > 0 {
		return n
	}
	return c.pageSize
}

// Trending returns trending titles
func (c *BrowseController) Trending(ctx context.Context, page, perPage int) (*BrowsePage, error) {
	return c.decorate(c.client.GetTrendingAnime(ctx, page, c.perPage(perPage)))
}

// Popular returns the most popular titles
func (c *BrowseController) Popular(ctx context.Context, page, perPage int) (*BrowsePage, error) {
	return c.decorate(c.client.GetPopularAnime(ctx, page, c.perPage(perPage)))
}

// TopRated returns the highest scored titles
func (c *BrowseController) TopRated(ctx context.Context, page, perPage int) (*BrowsePage, error) {
	return c.decorate(c.client.GetTopRatedAnime(ctx, page, c.perPage(perPage)))
}

// Upcoming returns titles that have not started airing
func (c *BrowseController) Upcoming(ctx context.Context, page, perPage int) (*BrowsePage, error) {
	return c.decorate(c.client.GetUpcomingAnime(ctx, page, c.perPage(perPage)))
}

// Seasonal returns titles of one broadcast season
func (c *BrowseController) Seasonal(ctx context.Context, year int, season models.MediaSeason, page, perPage int) (*BrowsePage, error) {
	if year < 1940 || year > 2100 {
		return nil, fmt.Errorf("%w: year %d out of range", ErrInvalidInput, year)
	}
	return c.decorate(c.client.GetSeasonalAnime(ctx, year, season, page, c.perPage(perPage)))
}

// ByGenre returns popular titles of one genre
func (c *BrowseController) ByGenre(ctx context.Context, genre string, page, perPage int) (*BrowsePage, error) {
	canonical, err := CanonicalGenre(genre)
	if err != nil {
		return nil, err
	}
	return c.decorate(c.client.GetAnimeByGenre(ctx, canonical, page, c.perPage(perPage)))
}

// Search runs a filtered search. Genre filters are checked against the
// known genre list first.
func (c *BrowseController) Search(ctx context.Context, filters anilist.SearchFilters, page, perPage int) (*BrowsePage, error) {
	filters.Search = strings.TrimSpace(filters.Search)
	for i, g := range filters.Genres {
		canonical, err := CanonicalGenre(g)
		if err != nil {
			return nil, err
		}
		filters.Genres[i] = canonical
	}

	c.logger.WithFields(logrus.Fields{
		"query":   filters.Search,
		"filters": filters.ActiveCount(),
		"page":    page,
	}).Debug("Searching anime")

	return c.decorate(c.client.SearchAnime(ctx, page, c.perPage(perPage), filters))
}

// Detail returns a single title with its watchlist memberships
func (c *BrowseController) Detail(ctx context.Context, id int) (*AnimeDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: anime id must be positive", ErrInvalidInput)
	}

	anime, err := c.client.GetAnimeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	settings, err := c.settings.Get()
	if err != nil {
		return nil, err
	}
	if !settings.ShowSpoilers {
		anime.Tags = withoutSpoilers(anime.Tags)
	}

	memberships, err := c.watchlists.IsAnimeInWatchlists(id)
	if err != nil {
		return nil, err
	}

	return &AnimeDetail{
		AnimeResult:      AnimeResult{Anime: *anime, InWatchlist: len(memberships) > 0},
		DisplayTitle:     utils.FormattedTitle(anime),
		PlainDescription: utils.FormatDescription(anime.Description),
		Year:             utils.AnimeYear(anime),
		Airing:           utils.IsAiring(anime),
		Watchlists:       memberships,
	}, nil
}

// Fetch returns the raw title, for callers that store it in a watchlist
func (c *BrowseController) Fetch(ctx context.Context, id int) (*models.Anime, error) {
	return c.client.GetAnimeByID(ctx, id)
}

func (c *BrowseController) decorate(page *models.Page, err error) (*BrowsePage, error) {
	if err != nil {
		return nil, err
	}

	ids, err := c.watchlists.AnimeIDs()
	if err != nil {
		return nil, err
	}
	settings, err := c.settings.Get()
	if err != nil {
		return nil, err
	}

	result := &BrowsePage{
		PageInfo: page.PageInfo,
		Media:    make([]AnimeResult, 0, len(page.Media)),
	}
	for _, anime := range page.Media {
		if blocked, term := c.blacklist.IsBlacklisted(&anime); blocked {
			c.logger.WithFields(logrus.Fields{
				"anime_id": anime.ID,
				"term":     term,
			}).Debug("Hiding blacklisted anime")
			result.Hidden++
			continue
		}
		if !settings.ShowSpoilers {
			anime.Tags = withoutSpoilers(anime.Tags)
		}
		_, listed := ids[anime.ID]
		result.Media = append(result.Media, AnimeResult{Anime: anime, InWatchlist: listed})
	}

	return result, nil
}

func withoutSpoilers(tags []models.MediaTag) []models.MediaTag {
	kept := make([]models.MediaTag, 0, len(tags))
	for _, t := range tags {
		if !t.IsSpoiler() {
			kept = append(kept, t)
		}
	}
	return kept
}

// CanonicalGenre maps a user-typed genre to its AniList spelling. Unknown
// genres fail with a suggestion when one is close enough.
func CanonicalGenre(genre string) (string, error) {
	genres := anilist.AvailableGenres()
	folded := utils.Fold(strings.TrimSpace(genre))
	for _, g := range genres {
		if utils.Fold(g) == folded {
			return g, nil
		}
	}

	if suggestion, ok := utils.ClosestMatch(genre, genres); ok {
		return "", fmt.Errorf("%w: unknown genre %q, did you mean %q?", ErrInvalidInput, genre, suggestion)
	}
	return "", fmt.Errorf("%w: unknown genre %q", ErrInvalidInput, genre)
}
