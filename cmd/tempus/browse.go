package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/services/anilist"
	"github.com/spf13/cobra"
)

type feedFunc func(c *controllers.BrowseController, ctx context.Context, page, perPage int) (*controllers.BrowsePage, error)

func addPagingFlags(cmd *cobra.Command, page, perPage *int) {
	cmd.Flags().IntVarP(page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(perPage, "per-page", "n", 0, "results per page (default PAGE_SIZE)")
}

func feedCmd(use, short string, feed feedFunc) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			result, err := feed(a.browse, ctx, page, perPage)
			if err != nil {
				return err
			}
			return printPage(result)
		}),
	}

	addPagingFlags(cmd, &page, &perPage)
	return cmd
}

func searchCmd() *cobra.Command {
	var (
		page, perPage int
		genres        []string
		year          int
		season        string
		format        string
		status        string
		sorts         []string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search anime by title and filters",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			filters := anilist.SearchFilters{
				Search: strings.Join(args, " "),
				Genres: genres,
				Year:   year,
			}

			var err error
			if season != "" {
				if filters.Season, err = models.ParseMediaSeason(season); err != nil {
					return err
				}
			}
			if format != "" {
				if filters.Format, err = models.ParseMediaFormat(format); err != nil {
					return err
				}
			}
			if status != "" {
				if filters.Status, err = models.ParseMediaStatus(status); err != nil {
					return err
				}
			}
			for _, s := range sorts {
				sort, err := models.ParseSortOption(s)
				if err != nil {
					return err
				}
				filters.Sort = append(filters.Sort, sort)
			}

			if filters.Search == "" && filters.ActiveCount() == 0 {
				return fmt.Errorf("give a query or at least one filter")
			}

			result, err := a.browse.Search(ctx, filters, page, perPage)
			if err != nil {
				return err
			}
			return printPage(result)
		}),
	}

	addPagingFlags(cmd, &page, &perPage)
	cmd.Flags().StringSliceVarP(&genres, "genre", "g", nil, "genre filter (repeatable)")
	cmd.Flags().IntVar(&year, "year", 0, "season year")
	cmd.Flags().StringVar(&season, "season", "", "WINTER, SPRING, SUMMER or FALL")
	cmd.Flags().StringVar(&format, "format", "", "TV, TV_SHORT, MOVIE, SPECIAL, OVA, ONA or MUSIC")
	cmd.Flags().StringVar(&status, "status", "", "FINISHED, RELEASING, NOT_YET_RELEASED, CANCELLED or HIATUS")
	cmd.Flags().StringSliceVar(&sorts, "sort", nil, "sort order, e.g. SCORE_DESC (default POPULARITY_DESC)")
	return cmd
}

func seasonalCmd() *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "seasonal YEAR SEASON",
		Short: "Show anime of a broadcast season",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			season, err := models.ParseMediaSeason(args[1])
			if err != nil {
				return err
			}

			result, err := a.browse.Seasonal(ctx, year, season, page, perPage)
			if err != nil {
				return err
			}
			return printPage(result)
		}),
	}

	addPagingFlags(cmd, &page, &perPage)
	return cmd
}

func genreCmd() *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "genre GENRE",
		Short: "Show popular anime of a genre",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			result, err := a.browse.ByGenre(ctx, strings.Join(args, " "), page, perPage)
			if err != nil {
				return err
			}
			return printPage(result)
		}),
	}

	addPagingFlags(cmd, &page, &perPage)
	return cmd
}

func genresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the available genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			genres := anilist.AvailableGenres()
			if jsonOutput {
				return printJSON(genres)
			}
			for _, g := range genres {
				fmt.Println(g)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ANIME_ID",
		Short: "Show anime details",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseAnimeID(args[0])
			if err != nil {
				return err
			}
			detail, err := a.browse.Detail(ctx, id)
			if err != nil {
				return err
			}
			return printDetail(detail)
		}),
	}
}

func parseAnimeID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid anime id %q", s)
	}
	return id, nil
}
