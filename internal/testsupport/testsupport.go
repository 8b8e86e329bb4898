// Package testsupport builds throwaway collections for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/metadata"
)

// NewCollection initializes a collection in a temp directory and
// returns its root.
func NewCollection(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := bag.Initialize(root); err != nil {
		t.Fatalf("initialize collection: %v", err)
	}
	store := metadata.NewStore(root)
	if _, err := store.UpsertCollection(metadata.Collection{
		Archive: metadata.String("Test Archive"),
		Title:   metadata.String("Test collection"),
	}); err != nil {
		t.Fatalf("seed collection record: %v", err)
	}
	return root
}

// WriteSource drops a payload file with the given name and content under
// data/ and returns its absolute path.
func WriteSource(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, bag.DataDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create payload directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	return path
}
