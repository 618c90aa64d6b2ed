package store

import (
	"sync"

	"github.com/rwStasiuk/JSON-Database-Engine-Project/jsondb"
)

// JsonFileStore mirrors the whole database to a single JSON file through
// a jsondb.DB. Mutations are in-memory until Save; Load replaces the
// cache from disk. The DB itself has no locking, so the store serializes
// access for concurrent HTTP handlers.
type JsonFileStore struct {
	mu sync.RWMutex
	db *jsondb.DB
}

func NewJsonFileStore(path string) (*JsonFileStore, error) {
	db, err := jsondb.New(path)
	if err != nil {
		return nil, err
	}
	return &JsonFileStore{db: db}, nil
}

func (s *JsonFileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Load()
}

func (s *JsonFileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Save()
}

func (s *JsonFileStore) AddCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.AddCollection(name)
}

func (s *JsonFileStore) AddItem(collection, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.AddItem(collection, name)
}

func (s *JsonFileStore) GetValue(collection, item, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.GetValue(collection, item, key)
}

func (s *JsonFileStore) SetValue(collection, item, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.SetValue(collection, item, key, value)
}

func (s *JsonFileStore) DeleteCollection(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.DeleteCollection(collection)
}

func (s *JsonFileStore) DeleteItem(collection, item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.DeleteItem(collection, item)
}

func (s *JsonFileStore) Collections() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Collections(), nil
}

func (s *JsonFileStore) Items(collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Items(collection)
}

func (s *JsonFileStore) Item(collection, item string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Item(collection, item)
}

func (s *JsonFileStore) Meta() (jsondb.Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Meta(), nil
}

func (s *JsonFileStore) Close() error { return nil }
