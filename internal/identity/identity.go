// Package identity resolves the canonical item UUID for a file path.
//
// Resolution never consults a central service: an identifier already embedded
// in the filename wins, a UUID-tagged ancestor directory marks a multi-file
// item member, and otherwise a fresh v4 identifier is minted. Given the same
// on-disk tag state the same path always resolves to the same UUID, which is
// what makes repeated update runs idempotent.
package identity

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mcdrc/odea/internal/filename"
)

// Resolution is the outcome of resolving a path to an item identifier.
type Resolution struct {
	UUID string
	// MultiFileMember is set when the identifier came from an ancestor
	// directory name. Member files are never individually renamed.
	MultiFileMember bool
	// Minted is set when no existing identifier was found on disk.
	Minted bool
}

// Resolve determines the item UUID for the file at path. The root bounds the
// ancestor walk; directories at or above it are never inspected.
func Resolve(path, root string) Resolution {
	if id := filename.FindUUID(filepath.Base(path)); id != "" {
		return Resolution{UUID: strings.ToLower(id)}
	}

	dir := filepath.Dir(path)
	cleanRoot := filepath.Clean(root)
	for dir != cleanRoot && dir != filepath.Dir(dir) {
		if id := filename.FindUUID(filepath.Base(dir)); id != "" {
			return Resolution{UUID: strings.ToLower(id), MultiFileMember: true}
		}
		dir = filepath.Dir(dir)
	}

	return Resolution{UUID: uuid.NewString(), Minted: true}
}
