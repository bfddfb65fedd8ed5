package metacache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"quaver/internal/config"
	"quaver/internal/metadata"
)

// Store persists derived metadata lookups in SQLite. Records are keyed by
// the cache key of the source they were derived from and stored as JSON
// payloads, so the schema survives record shape additions.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the metadata cache database. A file lock
// next to the database guards against concurrent quaver processes.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.CacheDatabasePath()
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, errors.New("metadata cache is in use by another quaver process")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the cache lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// GetAlbum returns the cached album for key, or nil when the key has never
// been looked up.
func (s *Store) GetAlbum(ctx context.Context, key string) (*metadata.AlbumRecord, error) {
	payload, err := s.getPayload(ctx, "album_lookups", key)
	if err != nil || payload == nil {
		return nil, err
	}
	var record metadata.AlbumRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode album %s: %w", key, err)
	}
	return &record, nil
}

// PutAlbum stores or replaces the cached album for key.
func (s *Store) PutAlbum(ctx context.Context, key string, record *metadata.AlbumRecord) error {
	if record == nil {
		return errors.New("album record required")
	}
	return s.putPayload(ctx, "album_lookups", key, record)
}

// GetSong returns the cached song for key, or nil when the key has never
// been looked up.
func (s *Store) GetSong(ctx context.Context, key string) (*metadata.SongRecord, error) {
	payload, err := s.getPayload(ctx, "song_lookups", key)
	if err != nil || payload == nil {
		return nil, err
	}
	var record metadata.SongRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode song %s: %w", key, err)
	}
	return &record, nil
}

// PutSong stores or replaces the cached song for key.
func (s *Store) PutSong(ctx context.Context, key string, record *metadata.SongRecord) error {
	if record == nil {
		return errors.New("song record required")
	}
	return s.putPayload(ctx, "song_lookups", key, record)
}

// DeleteAlbum removes the cached album for key. Deleting an absent key is
// not an error.
func (s *Store) DeleteAlbum(ctx context.Context, key string) error {
	return s.deletePayload(ctx, "album_lookups", key)
}

// DeleteSong removes the cached song for key. Deleting an absent key is not
// an error.
func (s *Store) DeleteSong(ctx context.Context, key string) error {
	return s.deletePayload(ctx, "song_lookups", key)
}

// Counts reports how many album and song lookups are cached.
func (s *Store) Counts(ctx context.Context) (albums, songs int64, err error) {
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM album_lookups").Scan(&albums); err != nil {
		return 0, 0, fmt.Errorf("count album lookups: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM song_lookups").Scan(&songs); err != nil {
		return 0, 0, fmt.Errorf("count song lookups: %w", err)
	}
	return albums, songs, nil
}

// Clear removes every cached lookup.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM album_lookups"); err != nil {
		return fmt.Errorf("clear album lookups: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM song_lookups"); err != nil {
		return fmt.Errorf("clear song lookups: %w", err)
	}
	return nil
}

func (s *Store) getPayload(ctx context.Context, table, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("cache key required")
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload_json FROM "+table+" WHERE cache_key = ?", key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", table, key, err)
	}
	return payload, nil
}

func (s *Store) deletePayload(ctx context.Context, table, key string) error {
	if key == "" {
		return errors.New("cache key required")
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE cache_key = ?", key); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, key, err)
	}
	return nil
}

func (s *Store) putPayload(ctx context.Context, table, key string, record any) error {
	if key == "" {
		return errors.New("cache key required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", table, key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO "+table+" (cache_key, payload_json, cached_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(cache_key) DO UPDATE SET payload_json = excluded.payload_json, cached_at = excluded.cached_at",
		key, string(payload), now,
	)
	if err != nil {
		return fmt.Errorf("write %s %s: %w", table, key, err)
	}
	return nil
}
