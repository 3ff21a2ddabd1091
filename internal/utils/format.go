package utils

import (
	"strings"

	"github.com/amaumene/tempus/internal/models"
	"golang.org/x/net/html"
)

const noDescription = "No description available."

// FormatDescription turns the HTML description AniList returns into plain text.
// Tags are dropped, entities decoded, <br> becomes a line break and runs of
// blank lines collapse to one.
func FormatDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return noDescription
	}

	doc, err := html.Parse(strings.NewReader(description))
	if err != nil {
		return strings.TrimSpace(description)
	}

	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && (n.Data == "br" || n.Data == "p"):
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	var out []string
	blank := false
	for _, line := range strings.Split(sb.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}

	if len(out) == 0 {
		return noDescription
	}
	return strings.Join(out, "\n")
}

// FormattedTitle picks the English title, falling back to romaji then native
func FormattedTitle(anime *models.Anime) string {
	if anime.Title.English != "" {
		return anime.Title.English
	}
	if anime.Title.Romaji != "" {
		return anime.Title.Romaji
	}
	return anime.Title.Native
}

// AnimeYear returns the start year, falling back to the season year.
// Returns 0 when neither is known.
func AnimeYear(anime *models.Anime) int {
	if anime.StartDate.Year != nil && *anime.StartDate.Year != 0 {
		return *anime.StartDate.Year
	}
	if anime.SeasonYear != nil {
		return *anime.SeasonYear
	}
	return 0
}

// IsAiring reports whether the title is currently releasing
func IsAiring(anime *models.Anime) bool {
	return anime.Status == models.MediaStatusReleasing
}

// Truncate shortens s to at most n runes, marking the cut with "..."
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
