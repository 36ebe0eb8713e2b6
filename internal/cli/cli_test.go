package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/0xcro3dile/minirag/internal/adapters/vectordb"
	"github.com/0xcro3dile/minirag/internal/config"
)

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "minirag 1.2.3 (abc123)") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestVersionCommand_DevBuild(t *testing.T) {
	cmd := NewRootCommand("dev", "none", "unknown")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	cmd.Execute()

	if !strings.Contains(out.String(), "development (local-build)") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestNewVectorStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{"memory", config.StoreConfig{Type: config.StoreMemory}, false},
		{"sqlite", config.StoreConfig{Type: config.StoreSQLite, Path: t.TempDir(), Collection: "docs"}, false},
		{"qdrant", config.StoreConfig{Type: config.StoreQdrant, QdrantURL: "http://localhost:6333", Collection: "docs"}, false},
		{"unknown", config.StoreConfig{Type: "lancedb"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := newVectorStore(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer store.Close()
		})
	}
}

func TestNewVectorStore_Types(t *testing.T) {
	store, _ := newVectorStore(config.StoreConfig{Type: config.StoreMemory})
	if _, ok := store.(*vectordb.InMemoryStore); !ok {
		t.Errorf("expected in-memory store, got %T", store)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	quiet := &levelFilter{out: &buf}
	quiet.Write([]byte("[DEBUG] hidden\n"))
	quiet.Write([]byte("[INFO] shown\n"))

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected filtered output: %q", buf.String())
	}

	buf.Reset()
	loud := &levelFilter{out: &buf, verbose: true}
	loud.Write([]byte("[DEBUG] visible\n"))
	if !strings.Contains(buf.String(), "visible") {
		t.Error("verbose mode should keep debug lines")
	}
}
