package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
)

// mockCollection implements ports.Collection for testing
type mockCollection struct {
	docs     []entities.Document
	addErr   error
	queryErr error
	lastTopK int
}

func (m *mockCollection) Add(ctx context.Context, id, text string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.docs = append(m.docs, entities.Document{ID: id, Content: text})
	return nil
}

func (m *mockCollection) Query(ctx context.Context, text string, topK int) ([]entities.SearchResult, error) {
	m.lastTopK = topK
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var results []entities.SearchResult
	for i, d := range m.docs {
		if i >= topK {
			break
		}
		results = append(results, entities.SearchResult{Document: d, Score: 0.9})
	}
	return results, nil
}

func (m *mockCollection) Delete(ctx context.Context, id string) error {
	for i, d := range m.docs {
		if d.ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return entities.ErrNotFound
}

func (m *mockCollection) Count(ctx context.Context) (int, error) {
	return len(m.docs), nil
}

// mockLoader implements ports.DocumentLoader for testing
type mockLoader struct {
	content string
	err     error
}

func (m *mockLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &entities.Document{Content: m.content}, nil
}

func (m *mockLoader) SupportedExtensions() []string {
	return []string{".txt"}
}

func TestKnowledgeUseCase_AddStoresText(t *testing.T) {
	coll := &mockCollection{}
	uc := NewKnowledgeUseCase(coll, nil)

	id, err := uc.Add(context.Background(), "Paris is the capital of France")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected an id")
	}
	if len(coll.docs) != 1 || coll.docs[0].ID != id {
		t.Errorf("document not stored under returned id: %+v", coll.docs)
	}
}

func TestKnowledgeUseCase_UniqueIDsForIdenticalText(t *testing.T) {
	uc := NewKnowledgeUseCase(&mockCollection{}, nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := uc.Add(context.Background(), "same text")
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestKnowledgeUseCase_EmptyTextAccepted(t *testing.T) {
	coll := &mockCollection{}
	uc := NewKnowledgeUseCase(coll, nil)

	if _, err := uc.Add(context.Background(), ""); err != nil {
		t.Fatalf("empty text should be accepted: %v", err)
	}
	if len(coll.docs) != 1 {
		t.Error("empty document should be stored")
	}
}

func TestKnowledgeUseCase_AddStorageFailure(t *testing.T) {
	uc := NewKnowledgeUseCase(&mockCollection{addErr: errors.New("disk full")}, nil)

	id, err := uc.Add(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if id != "" {
		t.Error("no id should be returned on failure")
	}
	if entities.KindOf(err) != entities.KindStorage {
		t.Errorf("expected storage kind, got %q", entities.KindOf(err))
	}
}

func TestKnowledgeUseCase_Delete(t *testing.T) {
	coll := &mockCollection{}
	uc := NewKnowledgeUseCase(coll, nil)
	ctx := context.Background()

	id, _ := uc.Add(ctx, "to be removed")
	if err := uc.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	err := uc.Delete(ctx, id)
	if entities.KindOf(err) != entities.KindNotFound {
		t.Errorf("second delete should be not_found, got %v", err)
	}

	err = uc.Delete(ctx, "")
	if entities.KindOf(err) != entities.KindInvalidInput {
		t.Errorf("empty id should be invalid_input, got %v", err)
	}
}

func TestKnowledgeUseCase_Count(t *testing.T) {
	uc := NewKnowledgeUseCase(&mockCollection{}, nil)
	ctx := context.Background()

	uc.Add(ctx, "a")
	uc.Add(ctx, "b")

	n, err := uc.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

func TestKnowledgeUseCase_IngestFile(t *testing.T) {
	coll := &mockCollection{}
	uc := NewKnowledgeUseCase(coll, &mockLoader{content: "from disk"})

	id, err := uc.IngestFile(context.Background(), "notes.txt")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if id == "" || coll.docs[0].Content != "from disk" {
		t.Errorf("unexpected stored docs: %+v", coll.docs)
	}
}

func TestKnowledgeUseCase_IngestFileErrors(t *testing.T) {
	noLoader := NewKnowledgeUseCase(&mockCollection{}, nil)
	if _, err := noLoader.IngestFile(context.Background(), "x.txt"); err == nil {
		t.Error("should error without loader")
	}

	badLoader := NewKnowledgeUseCase(&mockCollection{}, &mockLoader{err: errors.New("unreadable")})
	_, err := badLoader.IngestFile(context.Background(), "x.txt")
	if entities.KindOf(err) != entities.KindInvalidInput {
		t.Errorf("expected invalid_input, got %v", err)
	}
}
