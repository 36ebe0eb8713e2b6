package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
)

// errQdrantNotFound marks a 404 from the Qdrant API.
var errQdrantNotFound = errors.New("qdrant: not found")

// QdrantConfig contains connection details for a Qdrant server.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// QdrantStore implements ports.VectorStore over Qdrant's REST API.
// The collection is created on first write, sized from the first vector.
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu    sync.Mutex
	ready bool
}

// NewQdrantStore creates a Qdrant-backed store.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:6333"
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &QdrantStore{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Store upserts documents as points. Document ids must be UUIDs.
func (s *QdrantStore) Store(ctx context.Context, docs []entities.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(docs[0].Embedding)); err != nil {
		return err
	}

	points := make([]qdrantPoint, len(docs))
	for i, doc := range docs {
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		points[i] = qdrantPoint{
			ID:     doc.ID,
			Vector: doc.Embedding,
			Payload: map[string]any{
				"content":    doc.Content,
				"created_at": createdAt.Format(time.RFC3339Nano),
			},
		}
	}

	return s.do(ctx, http.MethodPut, s.pointsPath("?wait=true"), map[string]any{"points": points}, nil)
}

// Search returns the topK nearest points. A missing collection yields no results.
func (s *QdrantStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	body := map[string]any{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, s.pointsPath("/search"), body, &resp)
	if errors.Is(err, errQdrantNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	results := make([]entities.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		doc := entities.Document{ID: fmt.Sprint(r.ID)}
		if v, ok := r.Payload["content"].(string); ok {
			doc.Content = v
		}
		if v, ok := r.Payload["created_at"].(string); ok {
			doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, v)
		}
		results = append(results, entities.SearchResult{Document: doc, Score: r.Score})
	}
	return results, nil
}

// Delete removes one point.
func (s *QdrantStore) Delete(ctx context.Context, id string) error {
	var existing struct {
		Result []json.RawMessage `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, s.pointsPath(""), map[string]any{"ids": []string{id}}, &existing)
	if errors.Is(err, errQdrantNotFound) {
		return entities.ErrNotFound
	}
	if err != nil {
		return err
	}
	if len(existing.Result) == 0 {
		return entities.ErrNotFound
	}

	return s.do(ctx, http.MethodPost, s.pointsPath("/delete?wait=true"), map[string]any{"points": []string{id}}, nil)
}

// Count returns the exact number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.do(ctx, http.MethodPost, s.pointsPath("/count"), map[string]any{"exact": true}, &resp)
	if errors.Is(err, errQdrantNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Close is a no-op; the HTTP client holds no exclusive resources.
func (s *QdrantStore) Close() error { return nil }

// ensureCollection creates the collection once per process if it is missing.
func (s *QdrantStore) ensureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if dimension <= 0 {
		return errors.New("qdrant: cannot create collection for empty vector")
	}

	err := s.do(ctx, http.MethodGet, "/collections/"+s.collection, nil, nil)
	if errors.Is(err, errQdrantNotFound) {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		err = s.do(ctx, http.MethodPut, "/collections/"+s.collection, body, nil)
	}
	if err != nil {
		return err
	}
	s.ready = true
	return nil
}

func (s *QdrantStore) pointsPath(suffix string) string {
	return "/collections/" + s.collection + "/points" + suffix
}

// do sends a JSON request and decodes the response into out when non-nil.
func (s *QdrantStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("qdrant %s %s: marshaling request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, reader)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errQdrantNotFound
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("qdrant %s %s: decoding response: %w", method, path, err)
		}
	}
	return nil
}
