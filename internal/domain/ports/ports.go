// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LLMService generates text responses from a language model.
type LLMService interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream produces a streaming completion.
	GenerateStream(ctx context.Context, prompt string) (<-chan StreamToken, error)
}

// VectorStore persists documents with their embeddings.
type VectorStore interface {
	// Store saves documents. Embeddings must already be set.
	Store(ctx context.Context, docs []entities.Document) error

	// Search finds the documents most similar to an embedding.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.SearchResult, error)

	// Delete removes one document. Returns entities.ErrNotFound for unknown ids.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}

// Collection is the text-in, text-out knowledge store the usecases talk to.
// Embedding happens behind it.
type Collection interface {
	// Add stores text under id.
	Add(ctx context.Context, id, text string) error

	// Query returns up to topK documents ranked by similarity to text.
	Query(ctx context.Context, text string, topK int) ([]entities.SearchResult, error)

	// Delete removes the document with the given id.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// DocumentLoader reads documents from disk.
type DocumentLoader interface {
	// Load reads the file at path into a document draft (no ID, no embedding).
	Load(ctx context.Context, path string) (*entities.Document, error)

	// SupportedExtensions returns file extensions this loader handles.
	SupportedExtensions() []string
}

// StreamToken represents a single token in a streaming LLM response.
type StreamToken struct {
	Content string
	Done    bool
	Error   error
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
