package bag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Well-known names within a collection root.
const (
	BagItFile    = "bagit.txt"
	BagInfoFile  = "bag-info.json"
	DataDir      = "data"
	ItemMetaDir  = "item_metadata"
	FileMetaDir  = "file_metadata"
	HTMLDir      = "html"
	ThumbDir     = "thumb"
	LockFile     = ".odea.lock"
	ManifestFile = "manifest-sha256.txt"
)

// DerivDir is the payload subdirectory receiving generated derivatives.
var DerivDir = filepath.Join(DataDir, "deriv")

// bagitHeader is the fixed two-line BagIt declaration.
const bagitHeader = "BagIt-Version: 1.0\nTag-File-Character-Encoding: UTF-8\n"

// maxAncestorDepth bounds the upward walk in LocateRoot.
const maxAncestorDepth = 64

var (
	// ErrInvalidTarget reports an initialization target that does not
	// exist or is not a directory.
	ErrInvalidTarget = errors.New("invalid target directory")

	// ErrNotInCollection reports a path with no bagit.txt in any ancestor.
	ErrNotInCollection = errors.New("not inside a collection")
)

// Initialize creates the collection skeleton inside dir. The directory must
// already exist; it does not need to be empty. Existing files survive
// unchanged, so re-running Initialize on a live collection is a no-op.
func Initialize(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, dir)
	}

	bagit := filepath.Join(dir, BagItFile)
	if _, err := os.Stat(bagit); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(bagit, []byte(bagitHeader), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", BagItFile, err)
		}
	}

	for _, sub := range []string{DerivDir, FileMetaDir, ItemMetaDir, HTMLDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}
	return nil
}

// LocateRoot walks the ancestors of path looking for the nearest directory
// containing bagit.txt. The input does not need to exist on disk; resolution
// is purely lexical above the deepest existing component.
func LocateRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	dir := abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for i := 0; i < maxAncestorDepth; i++ {
		if IsRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w: %s", ErrNotInCollection, path)
}

// IsRoot reports whether dir holds a bagit.txt declaration and a payload
// directory.
func IsRoot(dir string) bool {
	if info, err := os.Stat(filepath.Join(dir, BagItFile)); err != nil || info.IsDir() {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, DataDir))
	return err == nil && info.IsDir()
}

// EnsureThumbDir creates the thumbnail directory on first use.
func EnsureThumbDir(root string) (string, error) {
	dir := filepath.Join(root, ThumbDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", ThumbDir, err)
	}
	return dir, nil
}

// Rel returns path relative to the collection root, using forward slashes so
// metadata and manifests stay portable.
func Rel(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relativize %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}
