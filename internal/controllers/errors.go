package controllers

import "errors"

var (
	// ErrWatchlistNotFound is returned when a watchlist id does not exist
	ErrWatchlistNotFound = errors.New("watchlist not found")

	// ErrEntryNotFound is returned when an anime is not in the given watchlist
	ErrEntryNotFound = errors.New("anime not in watchlist")

	// ErrDefaultWatchlist is returned when trying to delete a built-in list
	ErrDefaultWatchlist = errors.New("cannot delete default watchlists")

	// ErrInvalidInput is returned for malformed user input
	ErrInvalidInput = errors.New("invalid input")
)
