package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Membership names a watchlist that holds a given anime
type Membership struct {
	WatchlistID   string `json:"watchlistId"`
	WatchlistName string `json:"watchlistName"`
}

// WatchlistMatch is a watchlist entry found by SearchInWatchlists
type WatchlistMatch struct {
	WatchlistID   string               `json:"watchlistId"`
	WatchlistName string               `json:"watchlistName"`
	Item          models.WatchlistItem `json:"item"`
}

// WatchlistStats summarises the stored collection
type WatchlistStats struct {
	TotalWatchlists    int            `json:"total_watchlists"`
	TotalEntries       int            `json:"total_entries"`
	UniqueAnime        int            `json:"unique_anime"`
	EntriesByWatchlist map[string]int `json:"entries_by_watchlist"`
	EntriesByStatus    map[string]int `json:"entries_by_status"`
}

// WatchlistController manages the user's watchlists.
// Every mutation is a whole-collection read-modify-write.
type WatchlistController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewWatchlistController creates a new watchlist controller
func NewWatchlistController(db *models.Database, logger *logrus.Logger) *WatchlistController {
	return &WatchlistController{
		db:     db,
		logger: logger,
	}
}

// InitializeDefaultLists creates the built-in lists the first time it runs
// against a store. Later calls are no-ops, even if the lists were emptied.
func (c *WatchlistController) InitializeDefaultLists() error {
	marker, err := c.db.GetItem(models.DefaultListsKey)
	if err != nil {
		return fmt.Errorf("failed to read default lists marker: %w", err)
	}
	if marker != nil {
		return nil
	}

	err = c.db.UpdateWatchlists(func(lists []*models.Watchlist) ([]*models.Watchlist, error) {
		return ensureDefaultLists(lists, time.Now()), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create default lists: %w", err)
	}

	if err := c.db.SetItem(models.DefaultListsKey, []byte("true")); err != nil {
		return fmt.Errorf("failed to save default lists marker: %w", err)
	}

	c.logger.Info("Default watchlists created")
	return nil
}

// ensureDefaultLists puts any missing built-in list in front of the collection
func ensureDefaultLists(lists []*models.Watchlist, now time.Time) []*models.Watchlist {
	var missing []*models.Watchlist
	for _, def := range models.DefaultWatchlists(now) {
		if findWatchlist(lists, def.ID) == nil {
			missing = append(missing, def)
		}
	}
	return append(missing, lists...)
}

func findWatchlist(lists []*models.Watchlist, id string) *models.Watchlist {
	for _, l := range lists {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// GetAllWatchlists returns every watchlist in stored order
func (c *WatchlistController) GetAllWatchlists() ([]*models.Watchlist, error) {
	return c.db.LoadWatchlists()
}

// GetWatchlistByID returns a single watchlist
func (c *WatchlistController) GetWatchlistByID(id string) (*models.Watchlist, error) {
	lists, err := c.db.LoadWatchlists()
	if err != nil {
		return nil, err
	}
	list := findWatchlist(lists, id)
	if list == nil {
		return nil, fmt.Errorf("%w: %s", ErrWatchlistNotFound, id)
	}
	return list, nil
}

// CreateWatchlist appends a new user-defined list
func (c *WatchlistController) CreateWatchlist(name, description string) (*models.Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: watchlist name is required", ErrInvalidInput)
	}

	now := time.Now()
	list := &models.Watchlist{
		ID:          "custom-" + uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Items:       []models.WatchlistItem{},
		CreatedDate: now,
		UpdatedDate: now,
	}

	err := c.db.UpdateWatchlists(func(lists []*models.Watchlist) ([]*models.Watchlist, error) {
		return append(lists, list), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create watchlist: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"watchlist_id": list.ID,
		"name":         list.Name,
	}).Info("Created watchlist")
	return list, nil
}

// AddAnimeToWatchlist adds anime to a list. An existing entry for the same
// anime is replaced in place; new entries go to the front.
// An empty status means PLAN_TO_WATCH.
func (c *WatchlistController) AddAnimeToWatchlist(watchlistID string, anime models.Anime, status models.WatchStatus, notes string) error {
	if anime.ID <= 0 {
		return fmt.Errorf("%w: anime id must be positive", ErrInvalidInput)
	}
	if status == "" {
		status = models.WatchStatusPlanToWatch
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown watch status %q", ErrInvalidInput, status)
	}

	err := c.db.UpdateWatchlists(func(lists []*models.Watchlist) ([]*models.Watchlist, error) {
		list := findWatchlist(lists, watchlistID)
		if list == nil {
			return nil, fmt.Errorf("%w: %s", ErrWatchlistNotFound, watchlistID)
		}

		now := time.Now()
		item := models.WatchlistItem{
			Anime:       anime,
			DateAdded:   now,
			Notes:       notes,
			WatchStatus: status,
		}

		if idx := list.IndexOf(anime.ID); idx >= 0 {
			list.Items[idx] = item
		} else {
			list.Items = append([]models.WatchlistItem{item}, list.Items...)
		}
		list.UpdatedDate = now
		return lists, nil
	})
	if err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"watchlist_id": watchlistID,
		"anime_id":     anime.ID,
		"status":       status,
	}).Debug("Added anime to watchlist")
	return nil
}

// RemoveAnimeFromWatchlist drops the entry for animeID from a list
func (c *WatchlistController) RemoveAnimeFromWatchlist(watchlistID string, animeID int) error {
	return c.db.UpdateWatchlists(func(lists []*models.Watchlist) ([]*models.Watchlist, error) {
		list := findWatchlist(lists, watchlistID)
		if list == nil {
			return nil, fmt.Errorf("%w: %s", ErrWatchlistNotFound, watchlistID)
		}
		removeEntry(list, animeID)
		list.UpdatedDate = time.Now()
		return lists, nil
	})
}

func removeEntry(list *models.Watchlist, animeID int) bool {
	kept := list.Items[:0]
	removed := false
	for _, item := range list.Items {
		if item.Anime.ID == animeID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	list.Items = kept
	return removed
}

// RemoveFromAllWatchlists drops animeID from every list and returns how many lists held it
func (c *WatchlistController) RemoveFromAllWatchlists(animeID int) (int, error) {
	removed := 0
	err := c.db.UpdateWatchlists(func(lists []*models.Watchlist) ([]*models.Watchlist, error) {
		now := time.Now()
		for _, list := range lists {
			if removeEntry(list, animeID) {
				list.UpdatedDate = now
				removed++
			}
		}
		return lists, nil
	})
	return removed, err
}

// UpdateWatchlistItemStatus changes the watch status of an entry.
// Notes are only replaced when notes is non-nil.
func (c *WatchlistController) UpdateWatchlistItemStatus(watchlistID string, animeID int, status models.WatchStatus, notes *string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown watch status %q", ErrInvalidInput, status)
	}

	return c.db.UpdateWatchlists(func(lists []*models.Watchlist) ([]*models.Watchlist, error) {
		list := findWatchlist(lists, watchlistID)
		if list == nil {
			return nil, fmt.Errorf("%w: %s", ErrWatchlistNotFound, watchlistID)
		}
		idx := list.IndexOf(animeID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: anime %d in %s", ErrEntryNotFound, animeID, watchlistID)
		}

		list.Items[idx].WatchStatus = status
		if notes != nil {
			list.Items[idx].Notes = *notes
		}
		list.UpdatedDate = time.Now()
		return lists, nil
	})
}

// DeleteWatchlist removes a user-defined list
func (c *WatchlistController) DeleteWatchlist(watchlistID string) error {
	if models.IsDefaultWatchlist(watchlistID) {
		return ErrDefaultWatchlist
	}

	err := c.db.UpdateWatchlists(func(lists []*models.Watchlist) ([]*models.Watchlist, error) {
		kept := make([]*models.Watchlist, 0, len(lists))
		for _, l := range lists {
			if l.ID != watchlistID {
				kept = append(kept, l)
			}
		}
		if len(kept) == len(lists) {
			return nil, fmt.Errorf("%w: %s", ErrWatchlistNotFound, watchlistID)
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	c.logger.WithField("watchlist_id", watchlistID).Info("Deleted watchlist")
	return nil
}

// IsAnimeInWatchlists lists every watchlist holding animeID
func (c *WatchlistController) IsAnimeInWatchlists(animeID int) ([]Membership, error) {
	lists, err := c.db.LoadWatchlists()
	if err != nil {
		return nil, err
	}

	result := []Membership{}
	for _, l := range lists {
		if l.Contains(animeID) {
			result = append(result, Membership{WatchlistID: l.ID, WatchlistName: l.Name})
		}
	}
	return result, nil
}

// AnimeIDs returns the set of anime ids present in any watchlist
func (c *WatchlistController) AnimeIDs() (map[int]struct{}, error) {
	lists, err := c.db.LoadWatchlists()
	if err != nil {
		return nil, err
	}

	ids := make(map[int]struct{})
	for _, l := range lists {
		for _, item := range l.Items {
			ids[item.Anime.ID] = struct{}{}
		}
	}
	return ids, nil
}

// SearchInWatchlists finds entries whose romaji or English title, or any
// genre, contains query. Matching ignores case and character width.
func (c *WatchlistController) SearchInWatchlists(query string) ([]WatchlistMatch, error) {
	lists, err := c.db.LoadWatchlists()
	if err != nil {
		return nil, err
	}

	q := strings.TrimSpace(query)
	matches := []WatchlistMatch{}
	for _, l := range lists {
		for _, item := range l.Items {
			if matchesEntry(item, q) {
				matches = append(matches, WatchlistMatch{
					WatchlistID:   l.ID,
					WatchlistName: l.Name,
					Item:          item,
				})
			}
		}
	}
	return matches, nil
}

func matchesEntry(item models.WatchlistItem, query string) bool {
	if utils.ContainsFold(item.Anime.Title.Romaji, query) {
		return true
	}
	if item.Anime.Title.English != "" && utils.ContainsFold(item.Anime.Title.English, query) {
		return true
	}
	for _, g := range item.Anime.Genres {
		if utils.ContainsFold(g, query) {
			return true
		}
	}
	return false
}

// SuggestTitle returns the stored title closest to query, for "did you mean" hints
func (c *WatchlistController) SuggestTitle(query string) (string, bool, error) {
	lists, err := c.db.LoadWatchlists()
	if err != nil {
		return "", false, err
	}

	var titles []string
	for _, l := range lists {
		for _, item := range l.Items {
			titles = append(titles, item.Anime.Title.Romaji)
			if item.Anime.Title.English != "" {
				titles = append(titles, item.Anime.Title.English)
			}
		}
	}

	title, ok := utils.ClosestMatch(query, titles)
	return title, ok, nil
}

// ToggleWatchlist removes anime from the first list holding it, or adds it to
// plan-to-watch when no list does. Returns whether the anime is now listed.
func (c *WatchlistController) ToggleWatchlist(anime models.Anime) (bool, error) {
	listed := false
	err := c.db.UpdateWatchlists(func(lists []*models.Watchlist) ([]*models.Watchlist, error) {
		now := time.Now()
		for _, l := range lists {
			if removeEntry(l, anime.ID) {
				l.UpdatedDate = now
				return lists, nil
			}
		}

		plan := findWatchlist(lists, models.WatchlistPlanToWatch)
		if plan == nil {
			return nil, fmt.Errorf("%w: %s", ErrWatchlistNotFound, models.WatchlistPlanToWatch)
		}
		plan.Items = append([]models.WatchlistItem{{
			Anime:       anime,
			DateAdded:   now,
			WatchStatus: models.WatchStatusPlanToWatch,
		}}, plan.Items...)
		plan.UpdatedDate = now
		listed = true
		return lists, nil
	})
	return listed, err
}

// ClearAllData wipes every watchlist, the first-run marker and the settings
func (c *WatchlistController) ClearAllData() error {
	if err := c.db.RemoveItem(models.WatchlistsKey); err != nil {
		return fmt.Errorf("failed to remove watchlists: %w", err)
	}
	if err := c.db.RemoveItem(models.DefaultListsKey); err != nil {
		return fmt.Errorf("failed to remove default lists marker: %w", err)
	}
	if err := c.db.DeleteSettings(); err != nil {
		return fmt.Errorf("failed to remove settings: %w", err)
	}

	c.logger.Warn("All local data cleared")
	return nil
}

// Stats counts entries per watchlist and per watch status
func (c *WatchlistController) Stats() (*WatchlistStats, error) {
	lists, err := c.db.LoadWatchlists()
	if err != nil {
		return nil, err
	}

	stats := &WatchlistStats{
		TotalWatchlists:    len(lists),
		EntriesByWatchlist: make(map[string]int),
		EntriesByStatus:    make(map[string]int),
	}
	unique := make(map[int]struct{})
	for _, l := range lists {
		stats.EntriesByWatchlist[l.ID] = len(l.Items)
		for _, item := range l.Items {
			stats.TotalEntries++
			stats.EntriesByStatus[string(item.WatchStatus)]++
			unique[item.Anime.ID] = struct{}{}
		}
	}
	stats.UniqueAnime = len(unique)

	return stats, nil
}
