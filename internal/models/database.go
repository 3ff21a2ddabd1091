package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Storage keys
const (
	WatchlistsKey      = "tempus_watchlists"
	DefaultListsKey    = "tempus_default_lists_created"
	settingsRecordKey  = "settings"
	keyValueBucketName = "tempus_kv"
)

var keyValueBucket = []byte(keyValueBucketName)

// ErrDatabaseLocked is returned when another process holds the database file
var ErrDatabaseLocked = errors.New("database is locked by another tempus process")

const openTimeout = 1 * time.Second

// Database wraps the bolthold store. Watchlists are kept as a single JSON
// blob in a plain key-value bucket; settings are a bolthold record.
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: openTimeout,
		},
	})
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s (stop tempus serve or use its HTTP API)", ErrDatabaseLocked, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Key-value operations

// GetItem returns the raw value stored under key, or nil if nothing is stored
func (db *Database) GetItem(key string) ([]byte, error) {
	var value []byte
	err := db.store.Bolt().View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(keyValueBucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// bbolt memory is only valid inside the transaction
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

// SetItem stores value under key, replacing any previous value
func (db *Database) SetItem(key string, value []byte) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(keyValueBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (db *Database) RemoveItem(key string) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(keyValueBucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// UpdateItem runs fn on the current value of key and stores its result,
// all inside one write transaction. A nil result deletes the key.
func (db *Database) UpdateItem(key string, fn func(current []byte) ([]byte, error)) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(keyValueBucket)
		if err != nil {
			return err
		}
		var current []byte
		if v := b.Get([]byte(key)); v != nil {
			current = append([]byte(nil), v...)
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return b.Delete([]byte(key))
		}
		return b.Put([]byte(key), next)
	})
}

// Watchlist collection operations

// LoadWatchlists reads the whole watchlist collection.
// A store with nothing saved yet yields an empty collection.
func (db *Database) LoadWatchlists() ([]*Watchlist, error) {
	data, err := db.GetItem(WatchlistsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlists: %w", err)
	}
	return decodeWatchlists(data)
}

// SaveWatchlists overwrites the whole watchlist collection
func (db *Database) SaveWatchlists(lists []*Watchlist) error {
	data, err := encodeWatchlists(lists)
	if err != nil {
		return err
	}
	return db.SetItem(WatchlistsKey, data)
}

// UpdateWatchlists loads the collection, lets fn mutate it in memory and
// writes the result back. If fn fails nothing is written.
func (db *Database) UpdateWatchlists(fn func(lists []*Watchlist) ([]*Watchlist, error)) error {
	return db.UpdateItem(WatchlistsKey, func(current []byte) ([]byte, error) {
		lists, err := decodeWatchlists(current)
		if err != nil {
			return nil, err
		}
		lists, err = fn(lists)
		if err != nil {
			return nil, err
		}
		return encodeWatchlists(lists)
	})
}

// Restore replaces the watchlist collection, marks the default lists as
// created and, when settings is non-nil, stores the settings record. All
// three writes share one transaction, so a failure leaves the store as it was.
func (db *Database) Restore(lists []*Watchlist, settings *Settings) error {
	data, err := encodeWatchlists(lists)
	if err != nil {
		return err
	}

	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(keyValueBucket)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(WatchlistsKey), data); err != nil {
			return fmt.Errorf("failed to write watchlists: %w", err)
		}
		if err := b.Put([]byte(DefaultListsKey), []byte("true")); err != nil {
			return fmt.Errorf("failed to write default lists marker: %w", err)
		}
		if settings != nil {
			if err := db.store.TxUpsert(tx, settingsRecordKey, settings); err != nil {
				return fmt.Errorf("failed to write settings: %w", err)
			}
		}
		return nil
	})
}

func decodeWatchlists(data []byte) ([]*Watchlist, error) {
	lists := []*Watchlist{}
	if len(data) == 0 {
		return lists, nil
	}
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("failed to decode watchlists: %w", err)
	}
	for _, l := range lists {
		if l.Items == nil {
			l.Items = []WatchlistItem{}
		}
	}
	return lists, nil
}

func encodeWatchlists(lists []*Watchlist) ([]byte, error) {
	if lists == nil {
		lists = []*Watchlist{}
	}
	data, err := json.Marshal(lists)
	if err != nil {
		return nil, fmt.Errorf("failed to encode watchlists: %w", err)
	}
	return data, nil
}

// Settings operations

// GetSettings returns the stored settings, or the defaults when none were saved
func (db *Database) GetSettings() (*Settings, error) {
	var settings Settings
	err := db.store.Get(settingsRecordKey, &settings)
	if errors.Is(err, bolthold.ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings stores the settings record
func (db *Database) SaveSettings(settings *Settings) error {
	return db.store.Upsert(settingsRecordKey, settings)
}

// DeleteSettings removes the settings record so defaults apply again
func (db *Database) DeleteSettings() error {
	err := db.store.Delete(settingsRecordKey, &Settings{})
	if err != nil && !errors.Is(err, bolthold.ErrNotFound) {
		return err
	}
	return nil
}
