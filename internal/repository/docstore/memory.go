package docstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store used by tests and by the
// "memory" driver in dev mode. Documents are deep-copied on the way in and
// out so callers never alias internal state.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

// Create stores data under a fresh server-assigned id.
func (s *MemoryStore) Create(_ context.Context, collection string, data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	col := s.collection(collection)
	col[id] = deepCopy(data)
	return id, nil
}

// ReadAll returns every document in the collection, id included.
func (s *MemoryStore) ReadAll(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	docs := make([]Document, 0, len(col))
	for id, data := range col {
		doc := Document(deepCopy(data))
		doc["id"] = id
		docs = append(docs, doc)
	}
	return docs, nil
}

// Get returns a single document by id.
func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	doc := Document(deepCopy(data))
	doc["id"] = id
	return doc, nil
}

// Update merges partial into the document, creating it when missing. Dotted
// keys patch a single nested field; map values merge recursively.
func (s *MemoryStore) Update(_ context.Context, collection, id string, partial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collection(collection)
	doc, ok := col[id]
	if !ok {
		doc = make(map[string]any)
		col[id] = doc
	}
	for key, value := range Flatten(partial) {
		setPath(doc, SplitPath(key), deepCopyValue(value))
	}
	return nil
}

// Delete removes the document; deleting a missing document is not an error,
// matching the remote backends.
func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) collection(name string) map[string]map[string]any {
	col, ok := s.collections[name]
	if !ok {
		col = make(map[string]map[string]any)
		s.collections[name] = col
	}
	return col
}

func setPath(doc map[string]any, path []string, value any) {
	if len(path) == 1 {
		doc[path[0]] = value
		return
	}
	next, ok := doc[path[0]].(map[string]any)
	if !ok {
		next = make(map[string]any)
		doc[path[0]] = next
	}
	setPath(next, path[1:], value)
}

func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

// deepCopyValue also normalizes values to their JSON shapes so reads behave
// identically across backends.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, float64:
		return val
	case map[string]any:
		return deepCopy(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return val
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return val
		}
		return out
	}
}
