package controllers

import (
	"fmt"
	"strings"

	"github.com/amaumene/tempus/internal/models"
	"github.com/sirupsen/logrus"
)

// SwipeDirection is a discovery-card gesture
type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"  // plan to watch
	SwipeRight SwipeDirection = "right" // watching
	SwipeUp    SwipeDirection = "up"    // completed
	SwipeDown  SwipeDirection = "down"  // not interested
)

// ParseSwipeDirection parses a direction name, ignoring case
func ParseSwipeDirection(s string) (SwipeDirection, error) {
	switch d := SwipeDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case SwipeLeft, SwipeRight, SwipeUp, SwipeDown:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown swipe direction %q", ErrInvalidInput, s)
}

// SwipeResult describes what a swipe did
type SwipeResult struct {
	Direction   SwipeDirection     `json:"direction"`
	WatchlistID string             `json:"watchlistId,omitempty"`
	WatchStatus models.WatchStatus `json:"watchStatus,omitempty"`
	RemovedFrom int                `json:"removedFrom,omitempty"`
	Message     string             `json:"message"`
}

type swipeTarget struct {
	watchlistID string
	status      models.WatchStatus
	label       string
}

var swipeTargets = map[SwipeDirection]swipeTarget{
	SwipeLeft:  {models.WatchlistPlanToWatch, models.WatchStatusPlanToWatch, "Plan to Watch"},
	SwipeRight: {models.WatchlistCurrentlyWatching, models.WatchStatusWatching, "Currently Watching"},
	SwipeUp:    {models.WatchlistCompleted, models.WatchStatusCompleted, "Completed"},
}

// SwipeController maps swipe gestures to watchlist operations
type SwipeController struct {
	watchlists *WatchlistController
	logger     *logrus.Logger
}

// NewSwipeController creates a new swipe controller
func NewSwipeController(watchlists *WatchlistController, logger *logrus.Logger) *SwipeController {
	return &SwipeController{
		watchlists: watchlists,
		logger:     logger,
	}
}

// Swipe applies a gesture to anime. Down removes it from every list.
func (c *SwipeController) Swipe(anime models.Anime, direction SwipeDirection) (*SwipeResult, error) {
	log := c.logger.WithFields(logrus.Fields{
		"anime_id":  anime.ID,
		"direction": direction,
	})

	if direction == SwipeDown {
		removed, err := c.watchlists.RemoveFromAllWatchlists(anime.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to dismiss anime: %w", err)
		}
		log.WithField("removed_from", removed).Debug("Dismissed anime")
		return &SwipeResult{
			Direction:   direction,
			RemovedFrom: removed,
			Message:     "Not interested",
		}, nil
	}

	target, ok := swipeTargets[direction]
	if !ok {
		return nil, fmt.Errorf("%w: unknown swipe direction %q", ErrInvalidInput, direction)
	}

	if err := c.watchlists.AddAnimeToWatchlist(target.watchlistID, anime, target.status, ""); err != nil {
		return nil, fmt.Errorf("failed to add anime to %s: %w", target.watchlistID, err)
	}
	log.WithField("watchlist_id", target.watchlistID).Debug("Swiped anime into watchlist")

	return &SwipeResult{
		Direction:   direction,
		WatchlistID: target.watchlistID,
		WatchStatus: target.status,
		Message:     "Added to " + target.label,
	}, nil
}
