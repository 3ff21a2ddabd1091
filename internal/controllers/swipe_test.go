package controllers

import (
	"errors"
	"testing"

	"github.com/amaumene/tempus/internal/models"
)

func TestParseSwipeDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    SwipeDirection
		wantErr bool
	}{
		{"left", SwipeLeft, false},
		{" RIGHT ", SwipeRight, false},
		{"Up", SwipeUp, false},
		{"down", SwipeDown, false},
		{"sideways", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSwipeDirection(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("Expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSwipe(t *testing.T) {
	tests := []struct {
		direction SwipeDirection
		list      string
		status    models.WatchStatus
	}{
		{SwipeLeft, models.WatchlistPlanToWatch, models.WatchStatusPlanToWatch},
		{SwipeRight, models.WatchlistCurrentlyWatching, models.WatchStatusWatching},
		{SwipeUp, models.WatchlistCompleted, models.WatchStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			watchlists, _ := newTestWatchlists(t)
			c := NewSwipeController(watchlists, testLogger())

			result, err := c.Swipe(anime(42, "Mononoke", ""), tt.direction)
			if err != nil {
				t.Fatalf("Swipe failed: %v", err)
			}
			if result.WatchlistID != tt.list || result.WatchStatus != tt.status {
				t.Errorf("Unexpected result: %+v", result)
			}

			list, _ := watchlists.GetWatchlistByID(tt.list)
			if len(list.Items) != 1 || list.Items[0].WatchStatus != tt.status {
				t.Errorf("Expected one %s entry in %s, got %+v", tt.status, tt.list, list.Items)
			}
		})
	}
}

func TestSwipeDownRemovesEverywhere(t *testing.T) {
	watchlists, _ := newTestWatchlists(t)
	c := NewSwipeController(watchlists, testLogger())
	a := anime(42, "Mononoke", "")

	_, _ = c.Swipe(a, SwipeLeft)
	_, _ = c.Swipe(a, SwipeUp)

	result, err := c.Swipe(a, SwipeDown)
	if err != nil {
		t.Fatalf("Swipe down failed: %v", err)
	}
	if result.RemovedFrom != 2 {
		t.Errorf("Expected removal from 2 lists, got %d", result.RemovedFrom)
	}

	memberships, _ := watchlists.IsAnimeInWatchlists(42)
	if len(memberships) != 0 {
		t.Errorf("Expected anime gone, still in %+v", memberships)
	}
}

func TestSwipeUnknownDirection(t *testing.T) {
	watchlists, _ := newTestWatchlists(t)
	c := NewSwipeController(watchlists, testLogger())

	if _, err := c.Swipe(anime(1, "A", ""), "diagonal"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
