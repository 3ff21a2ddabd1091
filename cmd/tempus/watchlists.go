package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/utils"
	"github.com/spf13/cobra"
)

func listsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "List your watchlists",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			lists, err := a.watchlists.GetAllWatchlists()
			if err != nil {
				return err
			}
			return printWatchlists(lists)
		}),
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list WATCHLIST_ID",
		Short: "Show the entries of a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			list, err := a.watchlists.GetWatchlistByID(args[0])
			if err != nil {
				return err
			}
			return printWatchlist(list)
		}),
	}
}

func createListCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create-list NAME",
		Short: "Create a custom watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			list, err := a.watchlists.CreateWatchlist(strings.Join(args, " "), description)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(list)
			}
			fmt.Printf("Created %q (%s)\n", list.Name, list.ID)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "list description")
	return cmd
}

func deleteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-list WATCHLIST_ID",
		Short: "Delete a custom watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.watchlists.DeleteWatchlist(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		}),
	}
}

func addCmd() *cobra.Command {
	var status, notes string

	cmd := &cobra.Command{
		Use:   "add WATCHLIST_ID ANIME_ID",
		Short: "Add an anime to a watchlist",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseAnimeID(args[1])
			if err != nil {
				return err
			}

			var watchStatus models.WatchStatus
			if status != "" {
				if watchStatus, err = models.ParseWatchStatus(status); err != nil {
					return err
				}
			}

			// Fail on a bad list id before spending a request
			list, err := a.watchlists.GetWatchlistByID(args[0])
			if err != nil {
				return err
			}

			anime, err := a.browse.Fetch(ctx, id)
			if err != nil {
				return err
			}
			if err := a.watchlists.AddAnimeToWatchlist(list.ID, *anime, watchStatus, notes); err != nil {
				return err
			}

			fmt.Printf("Added %s to %s\n", utils.FormattedTitle(anime), list.Name)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "watch status (default PLAN_TO_WATCH)")
	cmd.Flags().StringVar(&notes, "notes", "", "personal notes")
	return cmd
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove WATCHLIST_ID ANIME_ID",
		Short: "Remove an anime from a watchlist",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseAnimeID(args[1])
			if err != nil {
				return err
			}
			if err := a.watchlists.RemoveAnimeFromWatchlist(args[0], id); err != nil {
				return err
			}
			fmt.Printf("Removed %d from %s\n", id, args[0])
			return nil
		}),
	}
}

func statusCmd() *cobra.Command {
	var notes string

	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "status WATCHLIST_ID ANIME_ID STATUS",
		Short: "Change the watch status of an entry",
		Long: "Change the watch status of an entry.\n\nStatuses: " +
			strings.Join(watchStatusNames(), ", "),
		Args: cobra.ExactArgs(3),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseAnimeID(args[1])
			if err != nil {
				return err
			}
			status, err := models.ParseWatchStatus(args[2])
			if err != nil {
				return err
			}

			var notesPtr *string
			if cmd.Flags().Changed("notes") {
				notesPtr = &notes
			}
			if err := a.watchlists.UpdateWatchlistItemStatus(args[0], id, status, notesPtr); err != nil {
				return err
			}
			fmt.Printf("Marked %d as %s\n", id, status)
			return nil
		}),
	}

	cmd.Flags().StringVar(&notes, "notes", "", "replace the entry notes")
	return cmd
}

func watchStatusNames() []string {
	statuses := models.WatchStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ANIME_ID",
		Short: "Add to Plan to Watch, or remove from the first list holding it",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseAnimeID(args[0])
			if err != nil {
				return err
			}
			anime, err := a.browse.Fetch(ctx, id)
			if err != nil {
				return err
			}

			listed, err := a.watchlists.ToggleWatchlist(*anime)
			if err != nil {
				return err
			}
			if listed {
				fmt.Printf("Added %s to Plan to Watch\n", utils.FormattedTitle(anime))
			} else {
				fmt.Printf("Removed %s from your lists\n", utils.FormattedTitle(anime))
			}
			return nil
		}),
	}
}

func swipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swipe ANIME_ID left|right|up|down",
		Short: "Sort an anime like a discovery card",
		Long: `Sort an anime like a discovery card:
  left   Plan to Watch
  right  Currently Watching
  up     Completed
  down   not interested, removes it from every list`,
		Args: cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseAnimeID(args[0])
			if err != nil {
				return err
			}
			direction, err := controllers.ParseSwipeDirection(args[1])
			if err != nil {
				return err
			}

			anime := &models.Anime{ID: id}
			if direction != controllers.SwipeDown {
				if anime, err = a.browse.Fetch(ctx, id); err != nil {
					return err
				}
			}

			result, err := a.swipe.Swipe(*anime, direction)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(result)
			}
			fmt.Println(result.Message)
			return nil
		}),
	}
}

func whereCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "where ANIME_ID",
		Short: "Show which watchlists hold an anime",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseAnimeID(args[0])
			if err != nil {
				return err
			}
			memberships, err := a.watchlists.IsAnimeInWatchlists(id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(memberships)
			}
			if len(memberships) == 0 {
				fmt.Println("Not in any watchlist.")
				return nil
			}
			for _, m := range memberships {
				fmt.Printf("%s\t%s\n", m.WatchlistID, m.WatchlistName)
			}
			return nil
		}),
	}
}

func findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find QUERY",
		Short: "Search your watchlists by title or genre",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			query := strings.Join(args, " ")
			matches, err := a.watchlists.SearchInWatchlists(query)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(matches)
			}

			if len(matches) == 0 {
				fmt.Println("No matching entries.")
				if title, ok, err := a.watchlists.SuggestTitle(query); err == nil && ok {
					fmt.Printf("Did you mean %q?\n", title)
				}
				return nil
			}

			w := newTable()
			fmt.Fprintln(w, "LIST\tID\tTITLE\tSTATUS")
			for _, m := range matches {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
					m.WatchlistName, m.Item.Anime.ID,
					utils.Truncate(utils.FormattedTitle(&m.Item.Anime), titleWidth),
					m.Item.WatchStatus)
			}
			return w.Flush()
		}),
	}
}
