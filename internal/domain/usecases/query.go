// Package usecases - query.go retrieves context and generates answers.
package usecases

import (
	"context"
	"strings"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
	"github.com/0xcro3dile/minirag/internal/domain/ports"
)

// RetrievalTopK is the number of documents considered per question.
const RetrievalTopK = 1

// QueryUseCase answers questions from the knowledge base.
type QueryUseCase struct {
	collection ports.Collection
	llm        ports.LLMService
}

// NewQueryUseCase creates a QueryUseCase with injected dependencies.
func NewQueryUseCase(collection ports.Collection, llm ports.LLMService) *QueryUseCase {
	return &QueryUseCase{
		collection: collection,
		llm:        llm,
	}
}

// Query retrieves the most relevant document and asks the model to answer.
func (uc *QueryUseCase) Query(ctx context.Context, question string) (*entities.Answer, error) {
	knowledge, err := uc.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(knowledge, question)
	answer, err := uc.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, entities.NewError(entities.KindInference, "generate", err)
	}

	return &entities.Answer{
		Question: question,
		Context:  knowledge,
		Prompt:   prompt,
		Answer:   answer,
	}, nil
}

// QueryStream is Query with token-by-token output.
func (uc *QueryUseCase) QueryStream(ctx context.Context, question string) (<-chan ports.StreamToken, error) {
	knowledge, err := uc.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	tokens, err := uc.llm.GenerateStream(ctx, BuildPrompt(knowledge, question))
	if err != nil {
		return nil, entities.NewError(entities.KindInference, "generate", err)
	}
	return tokens, nil
}

// retrieve returns the text of the top-ranked document, or "" when the
// knowledge base is empty.
func (uc *QueryUseCase) retrieve(ctx context.Context, question string) (string, error) {
	results, err := uc.collection.Query(ctx, question, RetrievalTopK)
	if err != nil {
		return "", entities.NewError(entities.KindRetrieval, "query", err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].Document.Content, nil
}

// BuildPrompt embeds the retrieved context and the question in the fixed
// answer template.
func BuildPrompt(knowledge, question string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(knowledge)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer clearly and concisely:")
	return sb.String()
}
