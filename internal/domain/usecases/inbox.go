package usecases

import (
	"context"
	"log"
	"path/filepath"

	"github.com/0xcro3dile/minirag/internal/domain/ports"
)

// WatchInbox ingests files dropped into dir until ctx is cancelled or the
// watcher stops. Each file owns the document with id FileID(path): a rewrite
// replaces it and a removal deletes it, including for files ingested by an
// earlier run. Files present before the call are not scanned.
func (uc *KnowledgeUseCase) WatchInbox(ctx context.Context, watcher ports.FileWatcher, dir string) error {
	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		return err
	}

	for event := range events {
		name := filepath.Base(event.Path)

		if event.Operation == ports.FileDeleted {
			if err := uc.ForgetFile(ctx, event.Path); err != nil {
				log.Printf("[WARN] Could not remove %s: %v", name, err)
				continue
			}
			log.Printf("[INFO] Removed %s from knowledge base", name)
			continue
		}

		id, err := uc.IngestFile(ctx, event.Path)
		if err != nil {
			log.Printf("[ERROR] Failed to ingest %s: %v", name, err)
			continue
		}
		log.Printf("[INFO] Ingested %s as %s", name, id)
	}
	return nil
}
