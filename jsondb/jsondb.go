// Package jsondb implements a minimal document store over a single JSON
// file. A database is a two-level hierarchy: named collections containing
// named items, each item a flat map of keys to opaque JSON values.
//
// The DB keeps an in-memory cache mirroring the on-disk structure. Load
// replaces the cache from disk, Save writes it back; every mutating call
// in between changes memory only. One DB per file, one goroutine at a
// time — there is no internal locking.
package jsondb

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Meta is the bookkeeping block stored alongside collections. It is
// derived data, recomputed on every Save, and never authoritative.
type Meta struct {
	Version int `json:"version"`
	// Bytes is the compact JSON encoding length of the collections map as
	// of the last Save, not the pretty-printed file size.
	Bytes int `json:"bytes"`
	// Updated is the RFC 3339 timestamp of the last Save.
	Updated string `json:"updated"`
}

// Item is a flat map of keys to opaque JSON values.
type Item map[string]any

// Collection maps item names to items.
type Collection map[string]Item

// Database is the full on-disk shape: meta plus collections.
type Database struct {
	Meta        Meta                  `json:"meta"`
	Collections map[string]Collection `json:"collections"`
}

// DB owns the in-memory cache for a single .json file.
type DB struct {
	path  string
	cache Database
}

// New creates a DB bound to path. The path must end in ".json"
// (case-insensitive); the file is created empty if it does not exist.
func New(path string) (*DB, error) {
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return nil, newError(ErrPath, nil, "the file at %q is not a .json file", path)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, newError(ErrPath, err, "the file at %q could not be created or opened (%v)", path, err)
	}
	f.Close()
	return &DB{path: path, cache: freshDatabase()}, nil
}

func freshDatabase() Database {
	return Database{
		Meta:        Meta{Version: 1, Bytes: 0, Updated: time.Now().Format(time.RFC3339)},
		Collections: map[string]Collection{},
	}
}

// Path returns the file path the DB is bound to.
func (db *DB) Path() string { return db.path }

// Meta returns a copy of the current meta block.
func (db *DB) Meta() Meta { return db.cache.Meta }

// Load reads the file and replaces the cache with its contents.
//
// An empty or whitespace-only file is a no-op, so a freshly created file
// is accepted as the empty database. A root with exactly the keys "meta"
// and "collections" is treated as an already-formatted database and
// replaces the whole cache. Any other root is validated as a raw
// collections map and replaces only the collections, keeping fresh meta —
// this tolerates pre-existing object-of-objects-of-objects files not
// written by this package.
func (db *DB) Load() error {
	data, err := os.ReadFile(db.path)
	if err != nil {
		return newError(ErrFile, err, "the file at %q could not be opened or read (%v)", db.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return newError(ErrFile, err, "the file at %q could not be parsed (%v)", db.path, err)
	}

	if obj, ok := root.(map[string]any); ok && len(obj) == 2 {
		rawCols, hasCols := obj["collections"]
		if _, hasMeta := obj["meta"]; hasMeta && hasCols {
			if _, err := validate(rawCols); err != nil {
				return err
			}
			var parsed Database
			if err := json.Unmarshal(data, &parsed); err != nil {
				return newError(ErrFile, err, "the file at %q could not be parsed (%v)", db.path, err)
			}
			if parsed.Collections == nil {
				parsed.Collections = map[string]Collection{}
			}
			db.cache = parsed
			return nil
		}
	}

	cols, err := validate(root)
	if err != nil {
		return err
	}
	db.cache.Collections = cols
	return nil
}

// Save refreshes meta and writes the whole database to the file,
// pretty-printed with 2-space indentation, overwriting its contents.
// This is the only operation that persists state.
func (db *DB) Save() error {
	db.refreshMeta()
	out, err := json.MarshalIndent(db.cache, "", "  ")
	if err != nil {
		return newError(ErrFile, err, "the database could not be serialized (%v)", err)
	}
	if err := os.WriteFile(db.path, out, 0o644); err != nil {
		return newError(ErrFile, err, "the file at %q could not be opened or written (%v)", db.path, err)
	}
	return nil
}

func (db *DB) refreshMeta() {
	if b, err := json.Marshal(db.cache.Collections); err == nil {
		db.cache.Meta.Bytes = len(b)
	}
	db.cache.Meta.Updated = time.Now().Format(time.RFC3339)
}

// validate checks the object-of-objects-of-objects shape and converts it
// into typed collections. Values inside items are unconstrained.
func validate(root any) (map[string]Collection, error) {
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, newError(ErrData, nil,
			"invalid database structure: the root element must be a JSON object")
	}
	cols := make(map[string]Collection, len(obj))
	for name, rawCol := range obj {
		colObj, ok := rawCol.(map[string]any)
		if !ok {
			return nil, newError(ErrData, nil,
				"invalid database structure: the %q collection must be a JSON object", name)
		}
		col := make(Collection, len(colObj))
		for itemName, rawItem := range colObj {
			itemObj, ok := rawItem.(map[string]any)
			if !ok {
				return nil, newError(ErrData, nil,
					"invalid database structure: the %q item in the %q collection must be a JSON object",
					itemName, name)
			}
			col[itemName] = Item(itemObj)
		}
		cols[name] = col
	}
	return cols, nil
}

// resolveCollection returns a live reference into the cache.
func (db *DB) resolveCollection(collection string) (Collection, error) {
	c, ok := db.cache.Collections[collection]
	if !ok {
		return nil, newError(ErrLookUp, nil, "no collection called %q could be found", collection)
	}
	return c, nil
}

// resolveItem returns a live reference into the cache.
func (db *DB) resolveItem(collection, item string) (Item, error) {
	c, err := db.resolveCollection(collection)
	if err != nil {
		return nil, err
	}
	i, ok := c[item]
	if !ok {
		return nil, newError(ErrLookUp, nil, "no item called %q found in the %q collection", item, collection)
	}
	return i, nil
}

// AddCollection creates an empty collection. The name must be non-empty
// after trimming and unique within the database.
func (db *DB) AddCollection(name string) error {
	if strings.TrimSpace(name) == "" {
		return newError(ErrInsertion, nil, "collection name must be a non-empty string")
	}
	if _, exists := db.cache.Collections[name]; exists {
		return newError(ErrInsertion, nil, "the database already contains a collection called %q", name)
	}
	db.cache.Collections[name] = Collection{}
	return nil
}

// AddItem creates an empty item in the named collection. The item name
// must be non-empty after trimming and unique within the collection.
func (db *DB) AddItem(collection, name string) error {
	if strings.TrimSpace(name) == "" {
		return newError(ErrInsertion, nil, "item name must be a non-empty string")
	}
	c, err := db.resolveCollection(collection)
	if err != nil {
		return err
	}
	if _, exists := c[name]; exists {
		return newError(ErrInsertion, nil, "the %q collection already contains an item called %q", collection, name)
	}
	c[name] = Item{}
	return nil
}

// GetValue returns a copy of the value stored at key within the item.
func (db *DB) GetValue(collection, item, key string) (any, error) {
	i, err := db.resolveItem(collection, item)
	if err != nil {
		return nil, err
	}
	v, ok := i[key]
	if !ok {
		return nil, newError(ErrLookUp, nil, "no key called %q could be found in the %q item", key, item)
	}
	return copyValue(v), nil
}

// SetValue inserts a key/value pair into the item. Keys are write-once:
// setting an existing key fails, updates go through DeleteItem or a fresh
// key.
func (db *DB) SetValue(collection, item, key string, value any) error {
	i, err := db.resolveItem(collection, item)
	if err != nil {
		return err
	}
	if _, exists := i[key]; exists {
		return newError(ErrInsertion, nil, "the key name %q is not unique in the %q item", key, item)
	}
	i[key] = value
	return nil
}

// DeleteCollection removes a collection and everything beneath it.
func (db *DB) DeleteCollection(collection string) error {
	if _, ok := db.cache.Collections[collection]; !ok {
		return newError(ErrData, nil,
			"the collection %q could not be deleted because it was not found in the database", collection)
	}
	delete(db.cache.Collections, collection)
	return nil
}

// DeleteItem removes an item and all its keys from the collection.
func (db *DB) DeleteItem(collection, item string) error {
	c, ok := db.cache.Collections[collection]
	if !ok {
		return newError(ErrData, nil,
			"the item %q could not be deleted because the %q collection was not found", item, collection)
	}
	if _, ok := c[item]; !ok {
		return newError(ErrData, nil,
			"the item %q could not be deleted because it was not found in the %q collection", item, collection)
	}
	delete(c, item)
	return nil
}

// Collections returns the sorted names of all collections.
func (db *DB) Collections() []string {
	names := make([]string, 0, len(db.cache.Collections))
	for name := range db.cache.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items returns the sorted names of all items in the collection.
func (db *DB) Items(collection string) ([]string, error) {
	c, err := db.resolveCollection(collection)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Item returns a deep copy of the named item.
func (db *DB) Item(collection, item string) (map[string]any, error) {
	i, err := db.resolveItem(collection, item)
	if err != nil {
		return nil, err
	}
	return copyItem(i), nil
}

// copyValue deep-copies a value by round-tripping through JSON, so
// container values handed to callers cannot reach back into the cache.
func copyValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func copyItem(i Item) map[string]any {
	out := make(map[string]any, len(i))
	for k, v := range i {
		out[k] = copyValue(v)
	}
	return out
}
