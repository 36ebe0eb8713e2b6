// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
	"github.com/0xcro3dile/minirag/internal/domain/usecases"
)

// maxBodyBytes bounds request bodies for /query and /add.
const maxBodyBytes = 1 << 20

// Server is the HTTP server for the knowledge base API.
type Server struct {
	queryUseCase     *usecases.QueryUseCase
	knowledgeUseCase *usecases.KnowledgeUseCase
	addr             string
}

// NewServer creates a new HTTP server.
func NewServer(queryUC *usecases.QueryUseCase, knowledgeUC *usecases.KnowledgeUseCase, addr string) *Server {
	return &Server{
		queryUseCase:     queryUC,
		knowledgeUseCase: knowledgeUC,
		addr:             addr,
	}
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /query/stream", s.handleQueryStream) // SSE streaming
	mux.HandleFunc("POST /add", s.handleAdd)
	mux.HandleFunc("DELETE /documents/{id}", s.handleDelete)
	mux.HandleFunc("GET /health", s.handleHealth)

	return corsMiddleware(loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second, // Longer for streaming
	}

	log.Printf("[INFO] minirag server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleQuery answers a question from the knowledge base.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	question, err := requiredParam(w, r, "q")
	if err != nil {
		writeError(w, err)
		return
	}

	answer, err := s.queryUseCase.Query(r.Context(), question)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer.Answer})
}

// handleQueryStream handles SSE streaming queries.
func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("q") {
		writeError(w, entities.NewError(entities.KindInvalidInput, "query", errors.New("missing parameter q")))
		return
	}
	question := r.URL.Query().Get("q")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errors.New("streaming not supported"))
		return
	}

	tokens, err := s.queryUseCase.QueryStream(r.Context(), question)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for token := range tokens {
		if token.Error != nil {
			sendSSE(w, flusher, map[string]any{
				"error": token.Error.Error(),
				"kind":  entities.KindInference,
				"done":  true,
			})
			return
		}
		sendSSE(w, flusher, map[string]any{"content": token.Content, "done": token.Done})
	}
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, data map[string]any) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}

// handleAdd stores a new snippet of text.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	text, err := requiredParam(w, r, "text")
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := s.knowledgeUseCase.Add(r.Context(), text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Content added to knowledge base",
		"id":      id,
	})
}

// handleDelete removes a document by id.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.knowledgeUseCase.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Content removed from knowledge base",
		"id":      id,
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.knowledgeUseCase.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "documents": n})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError reports err with the status that matches its kind.
func writeError(w http.ResponseWriter, err error) {
	kind := entities.KindOf(err)
	status := statusFor(kind)
	if kind == "" {
		kind = "internal"
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %v", err)
	}

	writeJSON(w, status, map[string]string{
		"status":  "error",
		"kind":    string(kind),
		"message": err.Error(),
	})
}

func statusFor(kind entities.ErrorKind) int {
	switch kind {
	case entities.KindInvalidInput:
		return http.StatusBadRequest
	case entities.KindNotFound:
		return http.StatusNotFound
	case entities.KindRetrieval, entities.KindInference, entities.KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE working through the middleware.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
