package vectordb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
	"github.com/0xcro3dile/minirag/internal/domain/ports"
)

// blankText is embedded in place of empty or whitespace-only text. Ollama
// returns an empty vector for an empty prompt, which no store can rank.
const blankText = "(empty document)"

// Collection implements ports.Collection by embedding text before it reaches
// a ports.VectorStore.
type Collection struct {
	embedder ports.EmbeddingService
	store    ports.VectorStore
	now      func() time.Time
}

// NewCollection joins an embedder and a store.
func NewCollection(embedder ports.EmbeddingService, store ports.VectorStore) *Collection {
	return &Collection{
		embedder: embedder,
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Add embeds text and stores it under id.
func (c *Collection) Add(ctx context.Context, id, text string) error {
	embedding, err := c.embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding document: %w", err)
	}

	doc := entities.Document{
		ID:        id,
		Content:   text,
		Embedding: embedding,
		CreatedAt: c.now(),
	}
	if err := c.store.Store(ctx, []entities.Document{doc}); err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	return nil
}

// Query embeds text and returns the topK most similar documents.
func (c *Collection) Query(ctx context.Context, text string, topK int) ([]entities.SearchResult, error) {
	embedding, err := c.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := c.store.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}
	return results, nil
}

// Delete removes the document with the given id.
func (c *Collection) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, id)
}

// Count returns the number of stored documents.
func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

// embed vectorizes text. Blank text gets the vector of blankText, so empty
// documents are stored like any other and an empty question still ranks them.
func (c *Collection) embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		text = blankText
	}
	return c.embedder.Embed(ctx, text)
}
