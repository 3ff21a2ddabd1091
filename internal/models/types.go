package models

import (
	"fmt"
	"strings"
)

// MediaStatus is the release lifecycle of a title as reported by AniList
type MediaStatus string

const (
	MediaStatusFinished       MediaStatus = "FINISHED"
	MediaStatusReleasing      MediaStatus = "RELEASING"
	MediaStatusNotYetReleased MediaStatus = "NOT_YET_RELEASED"
	MediaStatusCancelled      MediaStatus = "CANCELLED"
	MediaStatusHiatus         MediaStatus = "HIATUS"
)

// MediaSeason is the broadcast season of a title
type MediaSeason string

const (
	SeasonWinter MediaSeason = "WINTER"
	SeasonSpring MediaSeason = "SPRING"
	SeasonSummer MediaSeason = "SUMMER"
	SeasonFall   MediaSeason = "FALL"
)

// MediaFormat is the format category of a title
type MediaFormat string

const (
	FormatTV      MediaFormat = "TV"
	FormatTVShort MediaFormat = "TV_SHORT"
	FormatMovie   MediaFormat = "MOVIE"
	FormatSpecial MediaFormat = "SPECIAL"
	FormatOVA     MediaFormat = "OVA"
	FormatONA     MediaFormat = "ONA"
	FormatMusic   MediaFormat = "MUSIC"
)

// WatchStatus is the user's relationship to a title in a watchlist
type WatchStatus string

const (
	WatchStatusPlanToWatch WatchStatus = "PLAN_TO_WATCH"
	WatchStatusWatching    WatchStatus = "WATCHING"
	WatchStatusCompleted   WatchStatus = "COMPLETED"
	WatchStatusOnHold      WatchStatus = "ON_HOLD"
	WatchStatusDropped     WatchStatus = "DROPPED"
)

// SortOption is an AniList MediaSort value
type SortOption string

const (
	SortTitleRomaji    SortOption = "TITLE_ROMAJI"
	SortTitleEnglish   SortOption = "TITLE_ENGLISH"
	SortScoreDesc      SortOption = "SCORE_DESC"
	SortPopularityDesc SortOption = "POPULARITY_DESC"
	SortTrendingDesc   SortOption = "TRENDING_DESC"
	SortStartDateDesc  SortOption = "START_DATE_DESC"
	SortEpisodesDesc   SortOption = "EPISODES_DESC"
)

var (
	mediaStatuses = []MediaStatus{MediaStatusFinished, MediaStatusReleasing, MediaStatusNotYetReleased, MediaStatusCancelled, MediaStatusHiatus}
	mediaSeasons  = []MediaSeason{SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall}
	mediaFormats  = []MediaFormat{FormatTV, FormatTVShort, FormatMovie, FormatSpecial, FormatOVA, FormatONA, FormatMusic}
	watchStatuses = []WatchStatus{WatchStatusPlanToWatch, WatchStatusWatching, WatchStatusCompleted, WatchStatusOnHold, WatchStatusDropped}
	sortOptions   = []SortOption{SortTitleRomaji, SortTitleEnglish, SortScoreDesc, SortPopularityDesc, SortTrendingDesc, SortStartDateDesc, SortEpisodesDesc}
)

// WatchStatuses returns every watch status in display order
func WatchStatuses() []WatchStatus {
	out := make([]WatchStatus, len(watchStatuses))
	copy(out, watchStatuses)
	return out
}

// normalizeEnum accepts "plan to watch", "plan-to-watch" and "PLAN_TO_WATCH" alike
func normalizeEnum(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return s
}

func parseEnum[T ~string](kind, raw string, allowed []T) (T, error) {
	v := T(normalizeEnum(raw))
	for _, a := range allowed {
		if a == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown %s %q", kind, raw)
}

// ParseMediaStatus parses a user-supplied media status
func ParseMediaStatus(s string) (MediaStatus, error) {
	return parseEnum("media status", s, mediaStatuses)
}

// ParseMediaSeason parses a user-supplied season
func ParseMediaSeason(s string) (MediaSeason, error) {
	return parseEnum("season", s, mediaSeasons)
}

// ParseMediaFormat parses a user-supplied format
func ParseMediaFormat(s string) (MediaFormat, error) {
	return parseEnum("format", s, mediaFormats)
}

// ParseWatchStatus parses a user-supplied watch status
func ParseWatchStatus(s string) (WatchStatus, error) {
	return parseEnum("watch status", s, watchStatuses)
}

// ParseSortOption parses a user-supplied sort option
func ParseSortOption(s string) (SortOption, error) {
	return parseEnum("sort option", s, sortOptions)
}

// Valid reports whether the status is one of the known values
func (s WatchStatus) Valid() bool {
	for _, w := range watchStatuses {
		if w == s {
			return true
		}
	}
	return false
}
