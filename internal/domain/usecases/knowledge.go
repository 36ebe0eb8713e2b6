// Package usecases contains application business rules.
// Usecases orchestrate entities and depend only on port interfaces.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
	"github.com/0xcro3dile/minirag/internal/domain/ports"
)

// KnowledgeUseCase adds and removes documents in the knowledge base.
type KnowledgeUseCase struct {
	collection ports.Collection
	loader     ports.DocumentLoader
	newID      func() string
}

// NewKnowledgeUseCase creates a KnowledgeUseCase with injected dependencies.
// loader may be nil when file ingestion is not used.
func NewKnowledgeUseCase(collection ports.Collection, loader ports.DocumentLoader) *KnowledgeUseCase {
	return &KnowledgeUseCase{
		collection: collection,
		loader:     loader,
		newID:      func() string { return uuid.NewString() },
	}
}

// Add stores text under a freshly generated id and returns that id.
// Text is stored as given; empty strings and duplicates are accepted.
func (uc *KnowledgeUseCase) Add(ctx context.Context, text string) (string, error) {
	id := uc.newID()
	if err := uc.collection.Add(ctx, id, text); err != nil {
		return "", entities.NewError(entities.KindStorage, "add", err)
	}
	return id, nil
}

// Delete removes a document by id.
func (uc *KnowledgeUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return entities.NewError(entities.KindInvalidInput, "delete", errors.New("id is required"))
	}
	if err := uc.collection.Delete(ctx, id); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return entities.NewError(entities.KindNotFound, "delete", err)
		}
		return entities.NewError(entities.KindStorage, "delete", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (uc *KnowledgeUseCase) Count(ctx context.Context) (int, error) {
	n, err := uc.collection.Count(ctx)
	if err != nil {
		return 0, entities.NewError(entities.KindRetrieval, "count", err)
	}
	return n, nil
}

// IngestFile loads a file and stores its content under FileID(path),
// replacing whatever an earlier version of the file produced.
func (uc *KnowledgeUseCase) IngestFile(ctx context.Context, path string) (string, error) {
	if uc.loader == nil {
		return "", entities.NewError(entities.KindInvalidInput, "ingest", errors.New("no document loader configured"))
	}
	doc, err := uc.loader.Load(ctx, path)
	if err != nil {
		return "", entities.NewError(entities.KindInvalidInput, "ingest", fmt.Errorf("loading %s: %w", path, err))
	}

	id := FileID(path)
	if err := uc.forget(ctx, id); err != nil {
		return "", err
	}
	if err := uc.collection.Add(ctx, id, doc.Content); err != nil {
		return "", entities.NewError(entities.KindStorage, "ingest", err)
	}
	return id, nil
}

// ForgetFile removes the document a file produced, if any.
func (uc *KnowledgeUseCase) ForgetFile(ctx context.Context, path string) error {
	return uc.forget(ctx, FileID(path))
}

func (uc *KnowledgeUseCase) forget(ctx context.Context, id string) error {
	err := uc.collection.Delete(ctx, id)
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		return entities.NewError(entities.KindStorage, "forget", err)
	}
	return nil
}

// FileID is the stable document id for a file: a name-based UUID of its
// absolute path, so the same file maps to the same document across restarts.
func FileID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}
