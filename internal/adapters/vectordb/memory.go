package vectordb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
)

// InMemoryStore is a process-local vector store. Contents are lost on exit.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]entities.Document
}

// NewInMemoryStore creates a new in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		docs: make(map[string]entities.Document),
	}
}

// Store saves documents with their embeddings. Existing ids are rejected.
func (s *InMemoryStore) Store(ctx context.Context, docs []entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if _, exists := s.docs[doc.ID]; exists {
			return fmt.Errorf("document %s already exists", doc.ID)
		}
	}
	for _, doc := range docs {
		s.docs[doc.ID] = doc
	}
	return nil
}

// Search finds the most similar documents to a query embedding.
func (s *InMemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]entities.SearchResult, 0, len(s.docs))
	for _, doc := range s.docs {
		results = append(results, entities.SearchResult{
			Document: doc,
			Score:    cosineSimilarity(embedding, doc.Embedding),
		})
	}

	// Ties break on creation time so results are deterministic
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.CreatedAt.Before(results[j].Document.CreatedAt)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes one document.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return entities.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Count returns the number of stored documents.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error { return nil }
