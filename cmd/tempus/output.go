package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/utils"
)

const titleWidth = 48

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func scoreLabel(a *models.Anime) string {
	if a.Score == nil {
		return "-"
	}
	return fmt.Sprintf("%d%%", *a.Score)
}

func yearLabel(a *models.Anime) string {
	if y := utils.AnimeYear(a); y != 0 {
		return fmt.Sprint(y)
	}
	return "TBA"
}

func printPage(page *controllers.BrowsePage) error {
	if jsonOutput {
		return printJSON(page)
	}

	if len(page.Media) == 0 {
		fmt.Println("No anime found.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tTITLE\tYEAR\tFORMAT\tSCORE\t")
	for i := range page.Media {
		a := &page.Media[i].Anime
		marker := ""
		if page.Media[i].InWatchlist {
			marker = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, utils.Truncate(utils.FormattedTitle(a), titleWidth), yearLabel(a), a.Format, scoreLabel(a), marker)
	}
	w.Flush()

	info := page.PageInfo
	fmt.Printf("\nPage %d of %d (%d results)", info.CurrentPage, info.LastPage, info.Total)
	if page.Hidden > 0 {
		fmt.Printf(", %d hidden by blacklist", page.Hidden)
	}
	fmt.Println()
	return nil
}

func printDetail(d *controllers.AnimeDetail) error {
	if jsonOutput {
		return printJSON(d)
	}

	a := &d.Anime
	fmt.Printf("%s\n", d.DisplayTitle)
	if a.Title.Native != "" {
		fmt.Printf("%s\n", a.Title.Native)
	}
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("ID:       %d\n", a.ID)
	fmt.Printf("Format:   %s\n", a.Format)
	fmt.Printf("Status:   %s\n", a.Status)
	fmt.Printf("Year:     %s\n", yearLabel(a))
	if a.Episodes != nil {
		fmt.Printf("Episodes: %d\n", *a.Episodes)
	}
	if a.Duration != nil {
		fmt.Printf("Duration: %d min\n", *a.Duration)
	}
	fmt.Printf("Score:    %s\n", scoreLabel(a))
	if len(a.Genres) > 0 {
		fmt.Printf("Genres:   %s\n", strings.Join(a.Genres, ", "))
	}
	if studios := a.StudioNames(); len(studios) > 0 {
		fmt.Printf("Studios:  %s\n", strings.Join(studios, ", "))
	}
	if len(a.Tags) > 0 {
		names := make([]string, 0, len(a.Tags))
		for _, t := range a.Tags {
			names = append(names, t.Name)
		}
		fmt.Printf("Tags:     %s\n", strings.Join(names, ", "))
	}
	if a.Trailer != nil && a.Trailer.Site == "youtube" {
		fmt.Printf("Trailer:  https://www.youtube.com/watch?v=%s\n", a.Trailer.ID)
	}

	fmt.Printf("\n%s\n", d.PlainDescription)

	if len(d.Watchlists) > 0 {
		names := make([]string, 0, len(d.Watchlists))
		for _, m := range d.Watchlists {
			names = append(names, m.WatchlistName)
		}
		fmt.Printf("\nIn your lists: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func printWatchlists(lists []*models.Watchlist) error {
	if jsonOutput {
		return printJSON(lists)
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tENTRIES\tUPDATED")
	for _, l := range lists {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", l.ID, l.Name, len(l.Items), l.UpdatedDate.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func printWatchlist(l *models.Watchlist) error {
	if jsonOutput {
		return printJSON(l)
	}

	fmt.Printf("%s (%s)\n", l.Name, l.ID)
	if l.Description != "" {
		fmt.Println(l.Description)
	}
	fmt.Println()

	if len(l.Items) == 0 {
		fmt.Println("This list is empty.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tADDED\tNOTES")
	for i := range l.Items {
		item := &l.Items[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			item.Anime.ID,
			utils.Truncate(utils.FormattedTitle(&item.Anime), titleWidth),
			item.WatchStatus,
			item.DateAdded.Local().Format("2006-01-02"),
			utils.Truncate(item.Notes, 30))
	}
	return w.Flush()
}
