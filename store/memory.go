package store

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rwStasiuk/JSON-Database-Engine-Project/jsondb"
)

// MemoryStore keeps everything in memory. Data is lost on restart; Load
// and Save are no-ops. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	updated     string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		updated:     time.Now().Format(time.RFC3339),
	}
}

// deepCopy returns a deep copy of a value by round-tripping through JSON.
func deepCopy(src any) any {
	b, err := json.Marshal(src)
	if err != nil {
		return src
	}
	var dst any
	if err := json.Unmarshal(b, &dst); err != nil {
		return src
	}
	return dst
}

func (m *MemoryStore) touch() {
	m.updated = time.Now().Format(time.RFC3339)
}

func (m *MemoryStore) Load() error { return nil }

func (m *MemoryStore) Save() error { return nil }

func (m *MemoryStore) AddCollection(name string) error {
	if strings.TrimSpace(name) == "" {
		return errKind(jsondb.ErrInsertion, "collection name must be a non-empty string")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.collections[name]; exists {
		return errKind(jsondb.ErrInsertion, "the database already contains a collection called %q", name)
	}
	m.collections[name] = make(map[string]map[string]any)
	m.touch()
	return nil
}

func (m *MemoryStore) AddItem(collection, name string) error {
	if strings.TrimSpace(name) == "" {
		return errKind(jsondb.ErrInsertion, "item name must be a non-empty string")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.collections[collection]
	if !ok {
		return errKind(jsondb.ErrLookUp, "no collection called %q could be found", collection)
	}
	if _, exists := coll[name]; exists {
		return errKind(jsondb.ErrInsertion, "the %q collection already contains an item called %q", collection, name)
	}
	coll[name] = make(map[string]any)
	m.touch()
	return nil
}

func (m *MemoryStore) resolveItem(collection, item string) (map[string]any, error) {
	coll, ok := m.collections[collection]
	if !ok {
		return nil, errKind(jsondb.ErrLookUp, "no collection called %q could be found", collection)
	}
	i, ok := coll[item]
	if !ok {
		return nil, errKind(jsondb.ErrLookUp, "no item called %q found in the %q collection", item, collection)
	}
	return i, nil
}

func (m *MemoryStore) GetValue(collection, item, key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, err := m.resolveItem(collection, item)
	if err != nil {
		return nil, err
	}
	v, ok := i[key]
	if !ok {
		return nil, errKind(jsondb.ErrLookUp, "no key called %q could be found in the %q item", key, item)
	}
	return deepCopy(v), nil
}

func (m *MemoryStore) SetValue(collection, item, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.resolveItem(collection, item)
	if err != nil {
		return err
	}
	if _, exists := i[key]; exists {
		return errKind(jsondb.ErrInsertion, "the key name %q is not unique in the %q item", key, item)
	}
	i[key] = deepCopy(value)
	m.touch()
	return nil
}

func (m *MemoryStore) DeleteCollection(collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		return errKind(jsondb.ErrData,
			"the collection %q could not be deleted because it was not found in the database", collection)
	}
	delete(m.collections, collection)
	m.touch()
	return nil
}

func (m *MemoryStore) DeleteItem(collection, item string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.collections[collection]
	if !ok {
		return errKind(jsondb.ErrData,
			"the item %q could not be deleted because the %q collection was not found", item, collection)
	}
	if _, ok := coll[item]; !ok {
		return errKind(jsondb.ErrData,
			"the item %q could not be deleted because it was not found in the %q collection", item, collection)
	}
	delete(coll, item)
	m.touch()
	return nil
}

func (m *MemoryStore) Collections() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Items(collection string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coll, ok := m.collections[collection]
	if !ok {
		return nil, errKind(jsondb.ErrLookUp, "no collection called %q could be found", collection)
	}
	names := make([]string, 0, len(coll))
	for name := range coll {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Item(collection, item string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, err := m.resolveItem(collection, item)
	if err != nil {
		return nil, err
	}
	return deepCopy(i).(map[string]any), nil
}

func (m *MemoryStore) Meta() (jsondb.Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bytes := 0
	if b, err := json.Marshal(m.collections); err == nil {
		bytes = len(b)
	}
	return jsondb.Meta{Version: 1, Bytes: bytes, Updated: m.updated}, nil
}

func (m *MemoryStore) Close() error { return nil }
