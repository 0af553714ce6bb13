package docstore

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const firestoreBaseURL = "https://firestore.googleapis.com/v1"

// FirestoreStore implements Store against the Firestore REST API. Merge
// updates map onto PATCH with an updateMask field path per flattened key,
// and slash-separated ids ("2025/months/04") address subcollection
// documents directly.
type FirestoreStore struct {
	client    *resty.Client
	projectID string
	apiKey    string
}

// NewFirestoreStore builds a REST-backed store for the given project. The
// API key is optional when ambient credentials are attached by a proxy.
func NewFirestoreStore(projectID, apiKey string) *FirestoreStore {
	client := resty.New().
		SetBaseURL(firestoreBaseURL).
		SetTimeout(15 * time.Second)

	return &FirestoreStore{client: client, projectID: projectID, apiKey: apiKey}
}

type firestoreDocument struct {
	Name   string                    `json:"name,omitempty"`
	Fields map[string]map[string]any `json:"fields,omitempty"`
}

type firestoreList struct {
	Documents     []firestoreDocument `json:"documents"`
	NextPageToken string              `json:"nextPageToken"`
}

// Create posts data to the collection and returns the server-assigned id.
func (s *FirestoreStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	var created firestoreDocument
	resp, err := s.request(ctx).
		SetBody(firestoreDocument{Fields: encodeFields(data)}).
		SetResult(&created).
		Post(s.documentsPath(collection))
	if err != nil {
		return "", fmt.Errorf("firestore create in %s: %w", collection, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("firestore create in %s: status %d", collection, resp.StatusCode())
	}

	parts := strings.Split(created.Name, "/")
	return parts[len(parts)-1], nil
}

// ReadAll lists the collection, following pagination.
func (s *FirestoreStore) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	var docs []Document
	pageToken := ""
	for {
		var page firestoreList
		req := s.request(ctx).
			SetQueryParam("pageSize", "300").
			SetResult(&page)
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}
		resp, err := req.Get(s.documentsPath(collection))
		if err != nil {
			return nil, fmt.Errorf("firestore list %s: %w", collection, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("firestore list %s: status %d", collection, resp.StatusCode())
		}

		for _, fd := range page.Documents {
			docs = append(docs, decodeDocument(fd))
		}
		if page.NextPageToken == "" {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}

// Get fetches one document by id.
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var fd firestoreDocument
	resp, err := s.request(ctx).
		SetResult(&fd).
		Get(s.documentsPath(collection) + "/" + id)
	if err != nil {
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("firestore get %s/%s: status %d", collection, id, resp.StatusCode())
	}
	return decodeDocument(fd), nil
}

// Update patches the document with an updateMask covering exactly the
// flattened field paths, which yields merge semantics and upserts.
func (s *FirestoreStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	flat := Flatten(partial)
	if len(flat) == 0 {
		return nil
	}

	nested := make(map[string]any)
	req := s.request(ctx)
	for key, value := range flat {
		path := SplitPath(key)
		setPath(nested, path, value)
		req.QueryParam.Add("updateMask.fieldPaths", maskFieldPath(path))
	}

	resp, err := req.
		SetBody(firestoreDocument{Fields: encodeFields(nested)}).
		Patch(s.documentsPath(collection) + "/" + id)
	if err != nil {
		return fmt.Errorf("firestore update %s/%s: %w", collection, id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("firestore update %s/%s: status %d", collection, id, resp.StatusCode())
	}
	return nil
}

// Delete removes the document. Firestore treats deleting a missing document
// as success, matching the other backends.
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	resp, err := s.request(ctx).Delete(s.documentsPath(collection) + "/" + id)
	if err != nil {
		return fmt.Errorf("firestore delete %s/%s: %w", collection, id, err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("firestore delete %s/%s: status %d", collection, id, resp.StatusCode())
	}
	return nil
}

func (s *FirestoreStore) request(ctx context.Context) *resty.Request {
	req := s.client.R().SetContext(ctx)
	if s.apiKey != "" {
		req.SetQueryParam("key", s.apiKey)
	}
	return req
}

func (s *FirestoreStore) documentsPath(collection string) string {
	return fmt.Sprintf("/projects/%s/databases/(default)/documents/%s", s.projectID, collection)
}

var simpleFieldSegment = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

// maskFieldPath quotes path segments that are not simple identifiers
// (dates like 2025-04-28) with backticks as the REST API requires.
func maskFieldPath(path []string) string {
	quoted := make([]string, len(path))
	for i, seg := range path {
		if simpleFieldSegment.MatchString(seg) {
			quoted[i] = seg
		} else {
			quoted[i] = "`" + strings.ReplaceAll(seg, "`", "\\`") + "`"
		}
	}
	return strings.Join(quoted, ".")
}

func encodeFields(m map[string]any) map[string]map[string]any {
	fields := make(map[string]map[string]any, len(m))
	for k, v := range m {
		fields[k] = encodeValue(v)
	}
	return fields
}

func encodeValue(v any) map[string]any {
	switch val := v.(type) {
	case nil:
		return map[string]any{"nullValue": nil}
	case bool:
		return map[string]any{"booleanValue": val}
	case string:
		return map[string]any{"stringValue": val}
	case int:
		return map[string]any{"integerValue": strconv.Itoa(val)}
	case int64:
		return map[string]any{"integerValue": strconv.FormatInt(val, 10)}
	case float64:
		return map[string]any{"doubleValue": val}
	case map[string]any:
		return map[string]any{"mapValue": map[string]any{"fields": encodeFields(val)}}
	case []any:
		values := make([]map[string]any, len(val))
		for i, inner := range val {
			values[i] = encodeValue(inner)
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}
	default:
		return map[string]any{"stringValue": fmt.Sprint(val)}
	}
}

func decodeDocument(fd firestoreDocument) Document {
	doc := Document{}
	for k, v := range fd.Fields {
		doc[k] = decodeValue(v)
	}
	parts := strings.Split(fd.Name, "/")
	doc["id"] = parts[len(parts)-1]
	return doc
}

func decodeValue(v map[string]any) any {
	if s, ok := v["stringValue"].(string); ok {
		return s
	}
	if b, ok := v["booleanValue"].(bool); ok {
		return b
	}
	if d, ok := v["doubleValue"].(float64); ok {
		return d
	}
	if i, ok := v["integerValue"].(string); ok {
		n, err := strconv.ParseInt(i, 10, 64)
		if err == nil {
			return n
		}
		return i
	}
	if mv, ok := v["mapValue"].(map[string]any); ok {
		out := make(map[string]any)
		if fields, ok := mv["fields"].(map[string]any); ok {
			for k, inner := range fields {
				if innerMap, ok := inner.(map[string]any); ok {
					out[k] = decodeValue(innerMap)
				}
			}
		}
		return out
	}
	if av, ok := v["arrayValue"].(map[string]any); ok {
		var out []any
		if values, ok := av["values"].([]any); ok {
			for _, inner := range values {
				if innerMap, ok := inner.(map[string]any); ok {
					out = append(out, decodeValue(innerMap))
				}
			}
		}
		return out
	}
	if _, ok := v["nullValue"]; ok {
		return nil
	}
	return nil
}
