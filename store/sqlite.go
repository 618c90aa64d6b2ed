package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rwStasiuk/JSON-Database-Engine-Project/jsondb"
)

// SqliteStore keeps the collection/item/entry hierarchy in a single
// SQLite database. Every mutation is durable immediately, so Load and
// Save are no-ops; the same uniqueness, write-once, and error-taxonomy
// rules apply as for the json backend.
//
// Tables:
//
//	collections(name)                       PRIMARY KEY (name)
//	items(collection, name)                 PRIMARY KEY (collection, name)
//	entries(collection, item, key, value)   PRIMARY KEY (collection, item, key)
//	meta(id, version, updated)              single row
type SqliteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	stmts := []string{
		"PRAGMA journal_mode=WAL",
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			collection TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (collection, name)
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			collection TEXT NOT NULL,
			item TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (collection, item, key)
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			version INTEGER NOT NULL,
			updated TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(
		"INSERT OR IGNORE INTO meta (id, version, updated) VALUES (1, 1, ?)",
		time.Now().Format(time.RFC3339),
	); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error { return s.db.Close() }

func (s *SqliteStore) Load() error { return nil }

func (s *SqliteStore) Save() error { return nil }

func (s *SqliteStore) touch() {
	s.db.Exec("UPDATE meta SET updated = ? WHERE id = 1", time.Now().Format(time.RFC3339))
}

func (s *SqliteStore) collectionExists(name string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM collections WHERE name = ?", name).Scan(&n)
	return n > 0, err
}

func (s *SqliteStore) itemExists(collection, item string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM items WHERE collection = ? AND name = ?",
		collection, item,
	).Scan(&n)
	return n > 0, err
}

// resolveItem mirrors the json backend's lookup rules: the collection is
// checked first so the two failure sites report distinct messages.
func (s *SqliteStore) resolveItem(collection, item string) error {
	if ok, err := s.collectionExists(collection); err != nil {
		return err
	} else if !ok {
		return errKind(jsondb.ErrLookUp, "no collection called %q could be found", collection)
	}
	if ok, err := s.itemExists(collection, item); err != nil {
		return err
	} else if !ok {
		return errKind(jsondb.ErrLookUp, "no item called %q found in the %q collection", item, collection)
	}
	return nil
}

func (s *SqliteStore) AddCollection(name string) error {
	if strings.TrimSpace(name) == "" {
		return errKind(jsondb.ErrInsertion, "collection name must be a non-empty string")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok, err := s.collectionExists(name); err != nil {
		return err
	} else if ok {
		return errKind(jsondb.ErrInsertion, "the database already contains a collection called %q", name)
	}
	if _, err := s.db.Exec("INSERT INTO collections (name) VALUES (?)", name); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *SqliteStore) AddItem(collection, name string) error {
	if strings.TrimSpace(name) == "" {
		return errKind(jsondb.ErrInsertion, "item name must be a non-empty string")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok, err := s.collectionExists(collection); err != nil {
		return err
	} else if !ok {
		return errKind(jsondb.ErrLookUp, "no collection called %q could be found", collection)
	}
	if ok, err := s.itemExists(collection, name); err != nil {
		return err
	} else if ok {
		return errKind(jsondb.ErrInsertion, "the %q collection already contains an item called %q", collection, name)
	}
	if _, err := s.db.Exec(
		"INSERT INTO items (collection, name) VALUES (?, ?)", collection, name,
	); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *SqliteStore) GetValue(collection, item, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.resolveItem(collection, item); err != nil {
		return nil, err
	}
	var raw string
	err := s.db.QueryRow(
		"SELECT value FROM entries WHERE collection = ? AND item = ? AND key = ?",
		collection, item, key,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errKind(jsondb.ErrLookUp, "no key called %q could be found in the %q item", key, item)
	}
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *SqliteStore) SetValue(collection, item, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.resolveItem(collection, item); err != nil {
		return err
	}
	var n int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM entries WHERE collection = ? AND item = ? AND key = ?",
		collection, item, key,
	).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return errKind(jsondb.ErrInsertion, "the key name %q is not unique in the %q item", key, item)
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(
		"INSERT INTO entries (collection, item, key, value) VALUES (?, ?, ?, ?)",
		collection, item, key, string(b),
	); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *SqliteStore) DeleteCollection(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok, err := s.collectionExists(collection); err != nil {
		return err
	} else if !ok {
		return errKind(jsondb.ErrData,
			"the collection %q could not be deleted because it was not found in the database", collection)
	}
	for _, stmt := range []string{
		"DELETE FROM entries WHERE collection = ?",
		"DELETE FROM items WHERE collection = ?",
		"DELETE FROM collections WHERE name = ?",
	} {
		if _, err := s.db.Exec(stmt, collection); err != nil {
			return err
		}
	}
	s.touch()
	return nil
}

func (s *SqliteStore) DeleteItem(collection, item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok, err := s.collectionExists(collection); err != nil {
		return err
	} else if !ok {
		return errKind(jsondb.ErrData,
			"the item %q could not be deleted because the %q collection was not found", item, collection)
	}
	if ok, err := s.itemExists(collection, item); err != nil {
		return err
	} else if !ok {
		return errKind(jsondb.ErrData,
			"the item %q could not be deleted because it was not found in the %q collection", item, collection)
	}
	if _, err := s.db.Exec(
		"DELETE FROM entries WHERE collection = ? AND item = ?", collection, item,
	); err != nil {
		return err
	}
	if _, err := s.db.Exec(
		"DELETE FROM items WHERE collection = ? AND name = ?", collection, item,
	); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *SqliteStore) Collections() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query("SELECT name FROM collections ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SqliteStore) Items(collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ok, err := s.collectionExists(collection); err != nil {
		return nil, err
	} else if !ok {
		return nil, errKind(jsondb.ErrLookUp, "no collection called %q could be found", collection)
	}
	rows, err := s.db.Query(
		"SELECT name FROM items WHERE collection = ? ORDER BY name", collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SqliteStore) Item(collection, item string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.resolveItem(collection, item); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		"SELECT key, value FROM entries WHERE collection = ? AND item = ?",
		collection, item,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := map[string]any{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			continue
		}
		result[key] = v
	}
	return result, rows.Err()
}

func (s *SqliteStore) Meta() (jsondb.Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var meta jsondb.Meta
	if err := s.db.QueryRow(
		"SELECT version, updated FROM meta WHERE id = 1",
	).Scan(&meta.Version, &meta.Updated); err != nil {
		return jsondb.Meta{}, err
	}
	// Approximate size: the stored value text plus per-row name overhead.
	var bytes sql.NullInt64
	if err := s.db.QueryRow(
		"SELECT SUM(LENGTH(value) + LENGTH(key) + LENGTH(item)) FROM entries",
	).Scan(&bytes); err == nil && bytes.Valid {
		meta.Bytes = int(bytes.Int64)
	}
	return meta, nil
}
