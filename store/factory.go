package store

import "fmt"

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"json"   - single JSON database file at path (default)
//	"sqlite" - SQLite database at path
//	"memory" - in-memory (ephemeral, for testing)
func New(backend, path string) (Store, error) {
	switch backend {
	case "json", "":
		return NewJsonFileStore(path)
	case "sqlite":
		return NewSqliteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: json, sqlite, memory)", backend)
	}
}
