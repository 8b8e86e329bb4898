package workflow

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/filename"
	"github.com/mcdrc/odea/internal/metadata"
)

// Summary is a point-in-time census of one collection.
type Summary struct {
	Root        string
	Title       string
	Identifier  string
	Archive     string
	Items       int
	SourceFiles int
	Derivatives int
	Published   int
	Manifest    int
}

// Status collects a summary of the collection containing path. It takes
// no lock; the numbers are a snapshot for display, not a basis for
// writes.
func (w *Workflow) Status(path string) (*Summary, error) {
	if path == "" {
		path = "."
	}
	root, err := bag.LocateRoot(path)
	if err != nil {
		return nil, err
	}

	store := metadata.NewStore(root)
	summary := &Summary{Root: root}

	if coll, err := store.LoadCollection(); err == nil {
		summary.Title = metadata.Deref(coll.Title)
		summary.Identifier = coll.Identifier
		summary.Archive = metadata.Deref(coll.Archive)
	}

	items, _ := store.ListItems()
	summary.Items = len(items)
	for _, item := range items {
		tags, err := store.ListFileTags(item.Identifier)
		if err != nil {
			continue
		}
		for _, tag := range tags {
			if tag == filename.TagSource {
				summary.SourceFiles++
			} else {
				summary.Derivatives++
			}
		}
		if w.published(root, item.Identifier) {
			summary.Published++
		}
	}

	if raw, err := os.ReadFile(filepath.Join(root, bag.ManifestFile)); err == nil {
		for _, line := range strings.Split(string(raw), "\n") {
			if strings.TrimSpace(line) != "" {
				summary.Manifest++
			}
		}
	}
	return summary, nil
}
