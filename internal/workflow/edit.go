package workflow

import (
	"errors"
	"fmt"

	"github.com/mcdrc/odea/internal/metadata"
)

// EditTarget resolves the item metadata sidecar for a file, so the CLI
// can hand it to the user's editor. The sidecar must already exist.
func (w *Workflow) EditTarget(target string) (string, error) {
	abs, root, err := w.resolveTarget(target)
	if err != nil {
		return "", err
	}
	parts, err := identifyTarget(root, abs)
	if err != nil {
		return "", err
	}

	store := metadata.NewStore(root)
	if _, err := store.LoadItem(parts.UUID); err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return "", fmt.Errorf("item %s has no metadata (run --update first): %w", parts.UUID, err)
		}
		return "", err
	}
	return store.ItemPath(parts.UUID), nil
}
