package utils

import (
	"bufio"
	"os"
	"strings"

	"github.com/amaumene/tempus/internal/models"
)

// Blacklist holds terms that hide titles from browse results
type Blacklist struct {
	terms []string
}

// NewBlacklist builds a blacklist from in-memory terms
func NewBlacklist(terms ...string) *Blacklist {
	b := &Blacklist{}
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			b.terms = append(b.terms, term)
		}
	}
	return b
}

// LoadBlacklist loads blacklist terms from a file, one per line.
// Blank lines and lines starting with # are ignored.
func LoadBlacklist(path string) (*Blacklist, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Blacklist{terms: []string{}}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var terms []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term != "" && !strings.HasPrefix(term, "#") {
			terms = append(terms, term)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Blacklist{terms: terms}, nil
}

// Len returns the number of terms
func (b *Blacklist) Len() int {
	return len(b.terms)
}

// IsBlacklisted checks whether any title variant or genre of the anime
// contains a blacklist term. Returns (isBlacklisted, matchedTerm).
func (b *Blacklist) IsBlacklisted(anime *models.Anime) (bool, string) {
	fields := make([]string, 0, 3+len(anime.Genres))
	fields = append(fields, anime.Title.Romaji, anime.Title.English, anime.Title.Native)
	fields = append(fields, anime.Genres...)

	for _, term := range b.terms {
		for _, field := range fields {
			if field != "" && ContainsFold(field, term) {
				return true, term
			}
		}
	}

	return false, ""
}
