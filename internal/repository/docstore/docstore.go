// Package docstore provides a generic document store over named collections,
// the persistence substrate for every ledger in the system. Three backends
// implement the same contract: MongoDB (primary), the Firestore REST API, and
// an in-memory store used in tests and dev mode.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a raw document as stored, including its "id" field.
type Document map[string]any

// ID returns the document id, or "" when absent.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Store is the contract every backend implements.
//
// Update has merge semantics: fields absent from partial are preserved, map
// values are merged recursively, and keys may be dotted paths (e.g.
// "dailySummaries.2025-04-28.stickSold") patching a single nested field
// without rewriting the document. Update upserts: a missing document is
// created.
type Store interface {
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	ReadAll(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// Decode maps a raw document onto a typed struct via a JSON round trip.
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// Encode converts a typed struct into the map form Update and Create expect.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	delete(m, "id")
	return m, nil
}

// Flatten rewrites a partial update into dotted-path form, expanding nested
// maps so plain key sets acquire merge (not replace) semantics on backends
// whose native set replaces embedded objects.
func Flatten(partial map[string]any) map[string]any {
	out := make(map[string]any, len(partial))
	flattenInto(out, "", partial)
	return out
}

func flattenInto(out map[string]any, prefix string, value map[string]any) {
	for k, v := range value {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = v
	}
}

// SplitPath splits a dotted field path into its segments.
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}
