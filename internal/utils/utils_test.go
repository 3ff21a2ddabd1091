package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amaumene/tempus/internal/models"
)

func intPtr(v int) *int { return &v }

func TestFormatDescription(t *testing.T) {
	input := "Gold Roger was known as the <b>Pirate King</b> &amp; more.<br><br>\n<i>(Source: Crunchyroll)</i>"
	want := "Gold Roger was known as the Pirate King & more.\n\n(Source: Crunchyroll)"

	if got := FormatDescription(input); got != want {
		t.Errorf("FormatDescription mismatch\n got: %q\nwant: %q", got, want)
	}

	if got := FormatDescription(""); got != "No description available." {
		t.Errorf("Expected placeholder for empty description, got %q", got)
	}
	if got := FormatDescription("<br><br>"); got != "No description available." {
		t.Errorf("Expected placeholder for markup-only description, got %q", got)
	}
	if got := FormatDescription("&quot;Hi&quot; &lt;3"); got != `"Hi" <3` {
		t.Errorf("Entity decoding failed, got %q", got)
	}
}

func TestFormattedTitle(t *testing.T) {
	a := &models.Anime{Title: models.Title{Romaji: "Shingeki no Kyojin", English: "Attack on Titan", Native: "進撃の巨人"}}
	if got := FormattedTitle(a); got != "Attack on Titan" {
		t.Errorf("Expected English title, got %q", got)
	}

	a.Title.English = ""
	if got := FormattedTitle(a); got != "Shingeki no Kyojin" {
		t.Errorf("Expected romaji fallback, got %q", got)
	}

	a.Title.Romaji = ""
	if got := FormattedTitle(a); got != "進撃の巨人" {
		t.Errorf("Expected native fallback, got %q", got)
	}
}

func TestAnimeYearAndAiring(t *testing.T) {
	a := &models.Anime{SeasonYear: intPtr(2013)}
	if AnimeYear(a) != 2013 {
		t.Errorf("Expected season year fallback")
	}
	a.StartDate.Year = intPtr(2012)
	if AnimeYear(a) != 2012 {
		t.Errorf("Expected start year to win")
	}
	if AnimeYear(&models.Anime{}) != 0 {
		t.Errorf("Expected 0 for unknown year")
	}

	if IsAiring(a) {
		t.Error("Anime without status should not be airing")
	}
	a.Status = models.MediaStatusReleasing
	if !IsAiring(a) {
		t.Error("RELEASING anime should be airing")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Short strings should be unchanged, got %q", got)
	}
	if got := Truncate("hello world", 8); got != "hello..." {
		t.Errorf("Expected 'hello...', got %q", got)
	}
	if got := Truncate("進撃の巨人です", 5); got != "進撃..." {
		t.Errorf("Truncate should count runes, got %q", got)
	}
}

func TestFoldMatching(t *testing.T) {
	if !ContainsFold("Attack on Titan", "TITAN") {
		t.Error("Expected case-insensitive match")
	}
	if !ContainsFold("ＴＩＴＡＮ", "titan") {
		t.Error("Expected full-width letters to match ASCII")
	}
	if ContainsFold("Naruto", "bleach") {
		t.Error("Unexpected match")
	}
}

func TestClosestMatch(t *testing.T) {
	genres := []string{"Action", "Sci-Fi", "Slice of Life", "Romance"}

	if got, ok := ClosestMatch("scifi", genres); !ok || got != "Sci-Fi" {
		t.Errorf("Expected Sci-Fi, got %q (%v)", got, ok)
	}
	if got, ok := ClosestMatch("romanse", genres); !ok || got != "Romance" {
		t.Errorf("Expected Romance, got %q (%v)", got, ok)
	}
	if _, ok := ClosestMatch("completely unrelated", genres); ok {
		t.Error("Expected no suggestion for distant query")
	}
	if _, ok := ClosestMatch("  ", genres); ok {
		t.Error("Expected no suggestion for blank query")
	}
}

func TestBlacklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	content := "# hidden titles\n\necchi\n  Boruto  \n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write blacklist: %v", err)
	}

	b, err := LoadBlacklist(path)
	if err != nil {
		t.Fatalf("LoadBlacklist failed: %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("Expected 2 terms, got %d", b.Len())
	}

	byGenre := &models.Anime{Title: models.Title{Romaji: "Something"}, Genres: []string{"Comedy", "Ecchi"}}
	if hit, term := b.IsBlacklisted(byGenre); !hit || term != "ecchi" {
		t.Errorf("Expected genre match on ecchi, got %v %q", hit, term)
	}

	byTitle := &models.Anime{Title: models.Title{Romaji: "Boruto: Naruto Next Generations"}}
	if hit, _ := b.IsBlacklisted(byTitle); !hit {
		t.Error("Expected title match on Boruto")
	}

	clean := &models.Anime{Title: models.Title{Romaji: "Mushishi"}, Genres: []string{"Mystery"}}
	if hit, _ := b.IsBlacklisted(clean); hit {
		t.Error("Unexpected blacklist match")
	}

	missing, err := LoadBlacklist(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil || missing.Len() != 0 {
		t.Errorf("Missing file should give empty blacklist, got %v %v", missing, err)
	}
}
