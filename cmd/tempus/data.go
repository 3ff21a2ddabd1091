package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		Example: "  tempus settings\n" +
			"  tempus settings --set show-spoilers=true --set dark-mode=false",
		Args: cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			settings, err := a.settings.Get()
			if err != nil {
				return err
			}

			if len(assignments) > 0 {
				patch, err := controllers.ParseSettingsPatch(assignments)
				if err != nil {
					return err
				}
				if settings, err = a.settings.Update(patch); err != nil {
					return err
				}
			}

			if jsonOutput {
				return printJSON(settings)
			}
			w := newTable()
			fmt.Fprintf(w, "notifications\t%t\n", settings.Notifications)
			fmt.Fprintf(w, "dark-mode\t%t\n", settings.DarkMode)
			fmt.Fprintf(w, "auto-play\t%t\n", settings.AutoPlay)
			fmt.Fprintf(w, "show-spoilers\t%t\n", settings.ShowSpoilers)
			return w.Flush()
		}),
	}

	cmd.Flags().StringArrayVar(&assignments, "set", nil, "key=value to change (repeatable)")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [PATH]",
		Short: "Export watchlists and settings as JSON",
		Long:  "Export watchlists and settings as JSON. PATH defaults to BACKUP_FILE; use - for stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			path := a.cfg.BackupFile
			if len(args) == 1 {
				path = args[0]
			}

			if path == "-" {
				_, err := a.backups.ExportTo(os.Stdout)
				return err
			}

			backup, err := a.backups.Export(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported %d watchlists to %s\n", len(backup.Watchlists), path)
			return nil
		}),
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH",
		Short: "Replace local data with a backup",
		Long:  "Replace local data with a backup. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			var (
				backup *controllers.Backup
				err    error
			)
			if args[0] == "-" {
				backup, err = a.backups.ImportFrom(os.Stdin)
			} else {
				backup, err = a.backups.Import(args[0])
			}
			if err != nil {
				return err
			}

			entries := 0
			for _, l := range backup.Watchlists {
				entries += len(l.Items)
			}
			fmt.Printf("Imported %d watchlists with %d entries\n", len(backup.Watchlists), entries)
			return nil
		}),
	}
}

func resetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all watchlists and settings",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if !yes && !confirm("This deletes every watchlist and setting. Continue?") {
				fmt.Println("Aborted.")
				return nil
			}

			if err := a.watchlists.ClearAllData(); err != nil {
				return err
			}
			if err := a.watchlists.InitializeDefaultLists(); err != nil {
				return err
			}
			fmt.Println("Local data cleared.")
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
