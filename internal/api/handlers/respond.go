package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/services/anilist"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, controllers.ErrWatchlistNotFound),
		errors.Is(err, controllers.ErrEntryNotFound),
		errors.Is(err, anilist.ErrAnimeNotFound):
		return http.StatusNotFound
	case errors.Is(err, controllers.ErrInvalidInput),
		errors.Is(err, controllers.ErrDefaultWatchlist):
		return http.StatusBadRequest
	case errors.Is(err, anilist.ErrRateLimited):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("Request failed")
		message = "Internal server error"
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "60")
	}
	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", controllers.ErrInvalidInput, err)
	}
	return nil
}

// intParam parses an optional integer query parameter
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", controllers.ErrInvalidInput, name)
	}
	return n, nil
}

// pathID parses a positive integer path value
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", controllers.ErrInvalidInput, name)
	}
	return id, nil
}

func paging(r *http.Request) (page, perPage int, err error) {
	if page, err = intParam(r, "page"); err != nil {
		return 0, 0, err
	}
	if perPage, err = intParam(r, "perPage"); err != nil {
		return 0, 0, err
	}
	return page, perPage, nil
}
