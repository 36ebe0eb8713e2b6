// Package entities contains core business entities.
// These are pure domain objects with no external dependencies.
package entities

import "time"

// Document is a unit of stored knowledge.
// The ID is assigned once by the add path and never reused.
type Document struct {
	ID        string
	Content   string
	Embedding []float32 // Populated by the collection before storage
	CreatedAt time.Time
}

// SearchResult is a stored document ranked by similarity to a query.
type SearchResult struct {
	Document Document
	Score    float64 // Cosine similarity
}

// Answer is the transient result of one question.
// Context is empty when the knowledge base had nothing to offer.
type Answer struct {
	Question string
	Context  string
	Prompt   string
	Answer   string
}
