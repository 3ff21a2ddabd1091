package models

// Anime is a single title as returned by AniList. It is stored verbatim
// inside watchlist entries, so the JSON tags follow the API field names.
type Anime struct {
	ID          int         `json:"id"`
	Title       Title       `json:"title"`
	Description string      `json:"description,omitempty"`
	CoverImage  CoverImage  `json:"coverImage"`
	BannerImage string      `json:"bannerImage,omitempty"`
	Genres      []string    `json:"genres"`
	Score       *int        `json:"averageScore,omitempty"`
	Episodes    *int        `json:"episodes,omitempty"`
	Duration    *int        `json:"duration,omitempty"` // minutes per episode
	Status      MediaStatus `json:"status"`
	Season      MediaSeason `json:"season,omitempty"`
	SeasonYear  *int        `json:"seasonYear,omitempty"`
	Format      MediaFormat `json:"format"`
	Studios     Studios     `json:"studios"`
	StartDate   FuzzyDate   `json:"startDate"`
	EndDate     FuzzyDate   `json:"endDate"`
	Trailer     *Trailer    `json:"trailer,omitempty"`
	Tags        []MediaTag  `json:"tags"`
}

// Title holds the title variants of a media item
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english,omitempty"`
	Native  string `json:"native"`
}

// CoverImage holds cover art URLs
type CoverImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
	Color  string `json:"color,omitempty"`
}

// Studios wraps the studio connection
type Studios struct {
	Nodes []Studio `json:"nodes"`
}

// Studio is an animation studio
type Studio struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FuzzyDate is a date where any part may be unknown
type FuzzyDate struct {
	Year  *int `json:"year,omitempty"`
	Month *int `json:"month,omitempty"`
	Day   *int `json:"day,omitempty"`
}

// Trailer references a hosted trailer video
type Trailer struct {
	ID   string `json:"id"`
	Site string `json:"site"`
}

// MediaTag is a descriptive tag, possibly a spoiler
type MediaTag struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Rank             *int   `json:"rank,omitempty"`
	IsMediaSpoiler   bool   `json:"isMediaSpoiler"`
	IsGeneralSpoiler bool   `json:"isGeneralSpoiler"`
}

// IsSpoiler reports whether the tag reveals plot
func (t MediaTag) IsSpoiler() bool {
	return t.IsMediaSpoiler || t.IsGeneralSpoiler
}

// StudioNames returns the studio names in order
func (a *Anime) StudioNames() []string {
	names := make([]string, 0, len(a.Studios.Nodes))
	for _, s := range a.Studios.Nodes {
		names = append(names, s.Name)
	}
	return names
}

// PageInfo describes pagination state of a Page query
type PageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
	PerPage     int  `json:"perPage"`
}

// Page is one page of media results
type Page struct {
	PageInfo PageInfo `json:"pageInfo"`
	Media    []Anime  `json:"media"`
}
