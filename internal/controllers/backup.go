package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amaumene/tempus/internal/models"
	"github.com/sirupsen/logrus"
)

// BackupVersion is the current backup document version
const BackupVersion = 1

// Backup is the exported form of all local data
type Backup struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Watchlists []*models.Watchlist `json:"watchlists"`
	Settings   *models.Settings    `json:"settings,omitempty"`
}

// BackupController exports and restores watchlists and settings
type BackupController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewBackupController creates a new backup controller
func NewBackupController(db *models.Database, logger *logrus.Logger) *BackupController {
	return &BackupController{
		db:     db,
		logger: logger,
	}
}

// Snapshot collects the current data into a backup document
func (c *BackupController) Snapshot() (*Backup, error) {
	lists, err := c.db.LoadWatchlists()
	if err != nil {
		return nil, err
	}
	settings, err := c.db.GetSettings()
	if err != nil {
		return nil, err
	}
	return &Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Watchlists: lists,
		Settings:   settings,
	}, nil
}

// ExportTo writes an indented backup document to w
func (c *BackupController) ExportTo(w io.Writer) (*Backup, error) {
	backup, err := c.Snapshot()
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return backup, nil
}

// Export writes a backup to path atomically
func (c *BackupController) Export(path string) (*Backup, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open tmp: %w", err)
	}
	backup, err := c.ExportTo(f)
	if err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("rename tmp: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"path":       path,
		"watchlists": len(backup.Watchlists),
	}).Info("Exported backup")
	return backup, nil
}

// Import replaces all local data with the backup stored at path
func (c *BackupController) Import(path string) (*Backup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	backup, err := c.ImportFrom(f)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"path":       path,
		"watchlists": len(backup.Watchlists),
	}).Info("Imported backup")
	return backup, nil
}

// ImportFrom replaces all local data with the backup read from r.
// Missing built-in lists are recreated and duplicate entries are dropped.
func (c *BackupController) ImportFrom(r io.Reader) (*Backup, error) {
	var backup Backup
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("%w: decode backup: %v", ErrInvalidInput, err)
	}
	if backup.Version < 1 || backup.Version > BackupVersion {
		return nil, fmt.Errorf("%w: unsupported backup version %d", ErrInvalidInput, backup.Version)
	}

	lists, err := sanitizeWatchlists(backup.Watchlists)
	if err != nil {
		return nil, err
	}
	backup.Watchlists = ensureDefaultLists(lists, time.Now())

	if err := c.db.Restore(backup.Watchlists, backup.Settings); err != nil {
		return nil, fmt.Errorf("failed to restore backup: %w", err)
	}

	return &backup, nil
}

func sanitizeWatchlists(lists []*models.Watchlist) ([]*models.Watchlist, error) {
	seen := make(map[string]bool, len(lists))
	out := make([]*models.Watchlist, 0, len(lists))
	for i, l := range lists {
		if l == nil {
			continue
		}
		l.ID = strings.TrimSpace(l.ID)
		if l.ID == "" {
			return nil, fmt.Errorf("%w: watchlist %d has no id", ErrInvalidInput, i)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("%w: duplicate watchlist id %q", ErrInvalidInput, l.ID)
		}
		seen[l.ID] = true

		items, err := sanitizeItems(l)
		if err != nil {
			return nil, err
		}
		l.Items = items
		out = append(out, l)
	}
	return out, nil
}

func sanitizeItems(l *models.Watchlist) ([]models.WatchlistItem, error) {
	seen := make(map[int]bool, len(l.Items))
	items := make([]models.WatchlistItem, 0, len(l.Items))
	for _, item := range l.Items {
		if item.Anime.ID <= 0 {
			return nil, fmt.Errorf("%w: entry without anime id in %q", ErrInvalidInput, l.ID)
		}
		if seen[item.Anime.ID] {
			continue
		}
		seen[item.Anime.ID] = true

		if item.WatchStatus == "" {
			item.WatchStatus = models.WatchStatusPlanToWatch
		}
		if !item.WatchStatus.Valid() {
			return nil, fmt.Errorf("%w: unknown watch status %q in %q", ErrInvalidInput, item.WatchStatus, l.ID)
		}
		items = append(items, item)
	}
	return items, nil
}
