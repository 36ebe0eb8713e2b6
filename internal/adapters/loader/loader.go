// Package loader provides document loading adapters.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/0xcro3dile/minirag/internal/domain/entities"
)

// MaxFileSize caps how much text a single dropped file may contribute.
const MaxFileSize = 4 << 20

// DefaultExtensions are the plain text formats accepted by default.
var DefaultExtensions = []string{".txt", ".md", ".markdown"}

// TextLoader loads plain text documents.
type TextLoader struct {
	extensions []string
}

// NewTextLoader creates a text loader. With no extensions it uses DefaultExtensions.
func NewTextLoader(extensions ...string) *TextLoader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &TextLoader{extensions: normalized}
}

// Load reads a text document from the given path. The returned document has
// no ID; the caller assigns one when it is stored.
func (l *TextLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	if !l.Supports(path) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", filepath.Base(path), MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s is not valid UTF-8 text", filepath.Base(path))
	}

	return &entities.Document{
		Content:   strings.TrimSpace(string(content)),
		CreatedAt: info.ModTime().UTC(),
	}, nil
}

// Supports reports whether path has one of the loader's extensions.
func (l *TextLoader) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range l.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// SupportedExtensions returns file extensions this loader handles.
func (l *TextLoader) SupportedExtensions() []string {
	out := make([]string, len(l.extensions))
	copy(out, l.extensions)
	return out
}
