package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/minirag/internal/adapters/embedding"
	"github.com/0xcro3dile/minirag/internal/adapters/filewatcher"
	"github.com/0xcro3dile/minirag/internal/adapters/llm"
	"github.com/0xcro3dile/minirag/internal/adapters/loader"
	"github.com/0xcro3dile/minirag/internal/adapters/vectordb"
	"github.com/0xcro3dile/minirag/internal/config"
	"github.com/0xcro3dile/minirag/internal/domain/ports"
	"github.com/0xcro3dile/minirag/internal/domain/usecases"
	httpserver "github.com/0xcro3dile/minirag/internal/infrastructure/http"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// runServe builds every collaborator once, injects them, and blocks until ctx ends.
func runServe(ctx context.Context, cfg *config.Config) error {
	store, err := newVectorStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder := embedding.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel, cfg.Ollama.Timeout)
	generator := llm.NewOllamaLLMAdapter(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout)
	collection := vectordb.NewCollection(embedder, store)

	queryUC := usecases.NewQueryUseCase(collection, generator)
	knowledgeUC := usecases.NewKnowledgeUseCase(collection, loader.NewTextLoader(cfg.Watch.Extensions...))

	if cfg.Watch.Dir != "" {
		if err := startInbox(ctx, knowledgeUC, cfg.Watch); err != nil {
			return err
		}
	}

	log.Printf("[INFO] Using %s store, model %s, embeddings %s", cfg.Store.Type, cfg.Ollama.Model, cfg.Ollama.EmbedModel)
	return httpserver.NewServer(queryUC, knowledgeUC, cfg.Server.Addr).Start(ctx)
}

func newVectorStore(cfg config.StoreConfig) (ports.VectorStore, error) {
	switch cfg.Type {
	case config.StoreSQLite:
		store, err := vectordb.NewSQLiteStore(cfg.Path, cfg.Collection)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case config.StoreMemory:
		log.Printf("[WARN] In-memory store selected; documents are lost on exit")
		return vectordb.NewInMemoryStore(), nil
	case config.StoreQdrant:
		return vectordb.NewQdrantStore(vectordb.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.Collection,
		}), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

// startInbox watches the configured directory in the background. Watcher
// failures after startup are logged and do not stop the server.
func startInbox(ctx context.Context, knowledgeUC *usecases.KnowledgeUseCase, cfg config.WatchConfig) error {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("creating watch directory: %w", err)
	}

	watcher, err := filewatcher.NewFSNotifyWatcher(cfg.Extensions)
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}

	go func() {
		defer watcher.Stop()
		if err := knowledgeUC.WatchInbox(ctx, watcher, cfg.Dir); err != nil {
			log.Printf("[ERROR] Inbox watcher stopped: %v", err)
		}
	}()
	return nil
}
