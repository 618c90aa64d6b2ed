// Package store defines the backing store interface and implementations.
package store

import (
	"fmt"

	"github.com/rwStasiuk/JSON-Database-Engine-Project/jsondb"
)

// Store is the interface that all backing stores must implement. It
// mirrors the jsondb operation set: named collections of named items,
// each item a flat map of write-once keys to opaque JSON values. Every
// implementation reports failures with the jsondb error taxonomy.
//
// Load and Save are the explicit persistence points of the json backend;
// backends that persist on every call (sqlite) or never (memory) treat
// them as no-ops.
type Store interface {
	// Load replaces in-memory state from the backing medium.
	Load() error

	// Save writes in-memory state to the backing medium.
	Save() error

	// AddCollection creates an empty collection with a unique name.
	AddCollection(name string) error

	// AddItem creates an empty item with a name unique in its collection.
	AddItem(collection, name string) error

	// GetValue returns the value stored at key within an item.
	GetValue(collection, item, key string) (any, error)

	// SetValue inserts a key/value pair. Keys are write-once.
	SetValue(collection, item, key string, value any) error

	// DeleteCollection removes a collection and everything beneath it.
	DeleteCollection(collection string) error

	// DeleteItem removes an item and all its keys.
	DeleteItem(collection, item string) error

	// Collections returns the sorted names of all collections.
	Collections() ([]string, error)

	// Items returns the sorted names of all items in a collection.
	Items(collection string) ([]string, error)

	// Item returns a copy of the named item.
	Item(collection, item string) (map[string]any, error)

	// Meta returns the current bookkeeping block.
	Meta() (jsondb.Meta, error)

	// Close releases backend resources.
	Close() error
}

// errKind builds a taxonomy error for backends that do not delegate to a
// jsondb.DB.
func errKind(kind *jsondb.Kind, format string, args ...any) error {
	return &jsondb.Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
