package entities

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so every endpoint can report it the same way.
type ErrorKind string

const (
	// KindInvalidInput means the caller sent a malformed request.
	KindInvalidInput ErrorKind = "invalid_input"

	// KindRetrieval means the vector store failed while answering a query.
	KindRetrieval ErrorKind = "retrieval"

	// KindInference means the language model failed to generate an answer.
	KindInference ErrorKind = "inference"

	// KindStorage means the vector store failed while writing or deleting.
	KindStorage ErrorKind = "storage"

	// KindNotFound means the referenced document does not exist.
	KindNotFound ErrorKind = "not_found"
)

// ErrNotFound is returned by stores when a document id is unknown.
var ErrNotFound = errors.New("document not found")

// Error is a failure tagged with its kind and the operation that raised it.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and operation name.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf extracts the kind of err, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
