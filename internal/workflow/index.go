package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/filename"
	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/metadata"
	"github.com/mcdrc/odea/internal/render"
)

// Index rebuilds the collection's HTML index. The collection record is
// upserted with the chrome flags first, then every item that already has
// a published page gets a card. path may be any location inside the
// collection; an empty path means the current directory.
func (w *Workflow) Index(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = "."
	}
	root, err := bag.LocateRoot(path)
	if err != nil {
		return "", err
	}
	var page string
	err = w.withLock(ctx, root, func() error {
		var ierr error
		page, ierr = w.index(root)
		return ierr
	})
	return page, err
}

func (w *Workflow) index(root string) (string, error) {
	store := metadata.NewStore(root)

	fields := metadata.Collection{}
	if w.site.Archive != "" {
		fields.Archive = metadata.String(w.site.Archive)
	}
	if w.site.ArchiveURL != "" {
		fields.ArchiveURL = metadata.String(w.site.ArchiveURL)
	}
	if w.site.License != "" {
		fields.Rights = metadata.String(w.site.License)
	}
	coll, err := store.UpsertCollection(fields)
	if err != nil {
		return "", err
	}

	items, listErr := store.ListItems()
	if listErr != nil {
		// Corrupt sidecars are reported but do not block the index.
		w.logger.Warn("some item records were skipped", logging.Error(listErr))
	}

	cards := make([]render.Card, 0, len(items))
	for _, item := range items {
		if !w.published(root, item.Identifier) {
			continue
		}
		thumb := ""
		if rec, err := store.LoadFile(item.Identifier, filename.TagSource); err == nil && rec.Thumb != "" {
			thumb = "../" + rec.Thumb
		}
		cards = append(cards, render.NewCard(*item, thumb))
	}

	page, err := render.WriteIndexPage(root, w.siteFor(coll), *coll, cards)
	if err != nil {
		return "", err
	}

	if err := bag.PruneManifest(root); err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("manifest prune failed", logging.Error(err))
	}

	w.logger.Info("collection index rebuilt",
		logging.String("identifier", coll.Identifier),
		logging.Int("items", len(cards)))
	w.advance(StageDone, logging.String("identifier", coll.Identifier))
	return page, nil
}

// published reports whether the item already has a rendered page, which
// is what admits it to the index.
func (w *Workflow) published(root, id string) bool {
	_, err := os.Stat(filepath.Join(root, bag.HTMLDir, id+".html"))
	return err == nil
}
