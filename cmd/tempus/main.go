package main

import (
	"context"
	"fmt"
	"os"

	"github.com/amaumene/tempus/internal/config"
	"github.com/amaumene/tempus/internal/controllers"
	"github.com/amaumene/tempus/internal/models"
	"github.com/amaumene/tempus/internal/services/anilist"
	"github.com/amaumene/tempus/internal/telemetry"
	"github.com/amaumene/tempus/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	jsonOutput bool
	verbose    bool
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "tempus",
		Short:         "Discover anime on AniList and keep local watchlists",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		feedCmd("trending", "Show trending anime", (*controllers.BrowseController).Trending),
		feedCmd("popular", "Show the most popular anime", (*controllers.BrowseController).Popular),
		feedCmd("top", "Show the highest rated anime", (*controllers.BrowseController).TopRated),
		feedCmd("upcoming", "Show anime that have not aired yet", (*controllers.BrowseController).Upcoming),
		searchCmd(),
		seasonalCmd(),
		genreCmd(),
		genresCmd(),
		showCmd(),
	)
	rootCmd.AddCommand(
		listsCmd(),
		listCmd(),
		createListCmd(),
		deleteListCmd(),
		addCmd(),
		removeCmd(),
		statusCmd(),
		toggleCmd(),
		swipeCmd(),
		whereCmd(),
		findCmd(),
	)
	rootCmd.AddCommand(
		settingsCmd(),
		exportCmd(),
		importCmd(),
		resetCmd(),
		serveCmd(),
	)

	return rootCmd.Execute()
}

// app holds everything a command needs
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *models.Database
	client *anilist.Client

	watchlists *controllers.WatchlistController
	settings   *controllers.SettingsController
	browse     *controllers.BrowseController
	swipe      *controllers.SwipeController
	backups    *controllers.BackupController

	stopTracing func(context.Context) error
}

func newApp() (*app, error) {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := utils.NewLogger(level, cfg.LogFormat)
	logger.WithField("config_dir", cfg.ConfigDir).Debug("Configuration loaded")

	a := &app{cfg: cfg, logger: logger}

	// 3. Tracing
	if cfg.TracingEnabled {
		a.stopTracing = telemetry.Setup("tempus", version, logger)
	}

	// 4. Initialize database
	a.db, err = models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Debug("Database initialized")

	// 5. Load blacklist
	blacklist, err := utils.LoadBlacklist(cfg.BlacklistFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load blacklist, continuing without it")
		blacklist = utils.NewBlacklist()
	} else if blacklist.Len() > 0 {
		logger.WithField("terms", blacklist.Len()).Debug("Blacklist loaded")
	}

	// 6. Initialize services
	a.client, err = anilist.NewClient(cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize AniList client: %w", err)
	}

	// 7. Initialize controllers
	a.watchlists = controllers.NewWatchlistController(a.db, logger)
	a.settings = controllers.NewSettingsController(a.db, logger)
	a.browse = controllers.NewBrowseController(a.client, a.watchlists, a.settings, blacklist, cfg.PageSize, logger)
	a.swipe = controllers.NewSwipeController(a.watchlists, logger)
	a.backups = controllers.NewBackupController(a.db, logger)

	if err := a.watchlists.InitializeDefaultLists(); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Close releases the database and flushes spans
func (a *app) Close() {
	if a.stopTracing != nil {
		if err := a.stopTracing(context.Background()); err != nil {
			a.logger.WithError(err).Warn("Failed to flush traces")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close database")
		}
	}
}

// withApp wraps a command body with app setup and teardown
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd.Context(), a, args)
	}
}
