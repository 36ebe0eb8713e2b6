package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
	"github.com/0xcro3dile/minirag/internal/domain/ports"
)

// mockLLM implements ports.LLMService for testing.
// With no fixed response it echoes the prompt back.
type mockLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	if m.response != "" {
		return m.response, nil
	}
	return prompt, nil
}

func (m *mockLLM) GenerateStream(ctx context.Context, prompt string) (<-chan ports.StreamToken, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan ports.StreamToken, 2)
	ch <- ports.StreamToken{Content: prompt}
	ch <- ports.StreamToken{Done: true}
	close(ch)
	return ch, nil
}

func TestQueryUseCase_ReturnsAnswer(t *testing.T) {
	coll := &mockCollection{docs: []entities.Document{{ID: "d1", Content: "relevant context"}}}
	llm := &mockLLM{response: "The answer is here"}
	uc := NewQueryUseCase(coll, llm)

	resp, err := uc.Query(context.Background(), "what is this?")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if resp.Answer != "The answer is here" {
		t.Errorf("unexpected answer: %s", resp.Answer)
	}
	if resp.Context != "relevant context" {
		t.Errorf("unexpected context: %s", resp.Context)
	}
}

func TestQueryUseCase_RetrievesSingleDocument(t *testing.T) {
	coll := &mockCollection{docs: []entities.Document{
		{ID: "d1", Content: "first"},
		{ID: "d2", Content: "second"},
	}}
	llm := &mockLLM{}
	uc := NewQueryUseCase(coll, llm)

	resp, err := uc.Query(context.Background(), "q")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if coll.lastTopK != 1 {
		t.Errorf("expected topK 1, got %d", coll.lastTopK)
	}
	if strings.Contains(resp.Prompt, "second") {
		t.Error("only the top document should be in the prompt")
	}
}

func TestQueryUseCase_PromptTemplate(t *testing.T) {
	got := BuildPrompt("Paris is the capital of France", "What is the capital of France?")
	want := "Context:\nParis is the capital of France\n\nQuestion: What is the capital of France?\n\nAnswer clearly and concisely:"
	if got != want {
		t.Errorf("prompt mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestQueryUseCase_EmptyStore(t *testing.T) {
	llm := &mockLLM{}
	uc := NewQueryUseCase(&mockCollection{}, llm)

	resp, err := uc.Query(context.Background(), "hello")
	if err != nil {
		t.Fatalf("should not fail on empty store: %v", err)
	}
	if resp.Context != "" {
		t.Errorf("context should be empty, got %q", resp.Context)
	}
	if !strings.HasPrefix(llm.lastPrompt, "Context:\n\n\nQuestion: hello") {
		t.Errorf("context section should be empty: %q", llm.lastPrompt)
	}
}

func TestQueryUseCase_EchoContainsStoredText(t *testing.T) {
	coll := &mockCollection{}
	knowledge := NewKnowledgeUseCase(coll, nil)
	uc := NewQueryUseCase(coll, &mockLLM{})
	ctx := context.Background()

	if _, err := knowledge.Add(ctx, "Paris is the capital of France"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	resp, err := uc.Query(ctx, "What is the capital of France?")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(resp.Answer, "Paris is the capital of France") {
		t.Errorf("answer should contain stored text: %q", resp.Answer)
	}
}

func TestQueryUseCase_ErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		coll *mockCollection
		llm  *mockLLM
		want entities.ErrorKind
	}{
		{
			name: "retrieval failure",
			coll: &mockCollection{queryErr: errors.New("store down")},
			llm:  &mockLLM{},
			want: entities.KindRetrieval,
		},
		{
			name: "inference failure",
			coll: &mockCollection{},
			llm:  &mockLLM{err: errors.New("model missing")},
			want: entities.KindInference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewQueryUseCase(tt.coll, tt.llm)
			_, err := uc.Query(context.Background(), "q")
			if got := entities.KindOf(err); got != tt.want {
				t.Errorf("expected %q, got %q (%v)", tt.want, got, err)
			}
		})
	}
}

func TestQueryUseCase_QueryStream(t *testing.T) {
	coll := &mockCollection{docs: []entities.Document{{ID: "d1", Content: "streamed context"}}}
	uc := NewQueryUseCase(coll, &mockLLM{})

	ch, err := uc.QueryStream(context.Background(), "q")
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	var sb strings.Builder
	for tok := range ch {
		sb.WriteString(tok.Content)
	}
	if !strings.Contains(sb.String(), "streamed context") {
		t.Errorf("stream should carry the prompt: %q", sb.String())
	}
}
