package models

import "time"

// Default watchlist IDs. These lists are created on first run and can never be deleted.
const (
	WatchlistPlanToWatch       = "plan-to-watch"
	WatchlistCurrentlyWatching = "currently-watching"
	WatchlistCompleted         = "completed"
)

// Watchlist is a named, ordered collection of titles
type Watchlist struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Items       []WatchlistItem `json:"items"`
	CreatedDate time.Time       `json:"createdDate"`
	UpdatedDate time.Time       `json:"updatedDate"`
}

// WatchlistItem is one title inside a watchlist
type WatchlistItem struct {
	Anime       Anime       `json:"anime"`
	DateAdded   time.Time   `json:"dateAdded"`
	Notes       string      `json:"notes,omitempty"`
	WatchStatus WatchStatus `json:"watchStatus"`
}

// IsDefaultWatchlist reports whether id names one of the built-in lists
func IsDefaultWatchlist(id string) bool {
	switch id {
	case WatchlistPlanToWatch, WatchlistCurrentlyWatching, WatchlistCompleted:
		return true
	}
	return false
}

// DefaultWatchlists builds the three built-in lists, all stamped with now
func DefaultWatchlists(now time.Time) []*Watchlist {
	return []*Watchlist{
		{
			ID:          WatchlistPlanToWatch,
			Name:        "Plan to Watch",
			Description: "Anime you want to watch in the future",
			Items:       []WatchlistItem{},
			CreatedDate: now,
			UpdatedDate: now,
		},
		{
			ID:          WatchlistCurrentlyWatching,
			Name:        "Currently Watching",
			Description: "Anime you are currently watching",
			Items:       []WatchlistItem{},
			CreatedDate: now,
			UpdatedDate: now,
		},
		{
			ID:          WatchlistCompleted,
			Name:        "Completed",
			Description: "Anime you have finished watching",
			Items:       []WatchlistItem{},
			CreatedDate: now,
			UpdatedDate: now,
		},
	}
}

// IndexOf returns the position of the entry for animeID, or -1
func (w *Watchlist) IndexOf(animeID int) int {
	for i := range w.Items {
		if w.Items[i].Anime.ID == animeID {
			return i
		}
	}
	return -1
}

// Contains reports whether the list holds animeID
func (w *Watchlist) Contains(animeID int) bool {
	return w.IndexOf(animeID) >= 0
}

// Settings holds user preferences
type Settings struct {
	Notifications bool `json:"notifications"`
	DarkMode      bool `json:"darkMode"`
	AutoPlay      bool `json:"autoPlay"`
	ShowSpoilers  bool `json:"showSpoilers"`
}

// DefaultSettings returns the preferences used before the user changes anything
func DefaultSettings() *Settings {
	return &Settings{
		Notifications: true,
		DarkMode:      true,
		AutoPlay:      false,
		ShowSpoilers:  false,
	}
}
