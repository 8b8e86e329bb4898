package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mcdrc/odea/internal/filename"
	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/metadata"
	"github.com/mcdrc/odea/internal/render"
)

// Publish renders the HTML description page for the item owning the
// given file. The item and its file records must exist; publishing an
// un-imported file is an error rather than a silently empty page.
func (w *Workflow) Publish(ctx context.Context, target string) (string, error) {
	abs, root, err := w.resolveTarget(target)
	if err != nil {
		return "", err
	}
	var page string
	err = w.withLock(ctx, root, func() error {
		var perr error
		page, perr = w.publish(root, abs)
		return perr
	})
	return page, err
}

func (w *Workflow) publish(root, abs string) (string, error) {
	parts, err := identifyTarget(root, abs)
	if err != nil {
		return "", err
	}

	store := metadata.NewStore(root)
	item, err := store.LoadItem(parts.UUID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return "", fmt.Errorf("item %s has no metadata (run --update first): %w", parts.UUID, err)
		}
		return "", err
	}

	records, err := store.FileRecords(parts.UUID)
	if err != nil {
		return "", err
	}
	rows := make([]render.FileRow, 0, len(records))
	preview := ""
	for _, rec := range records {
		rows = append(rows, render.NewFileRow(*rec))
		if rec.FormatTag == filename.TagSource && rec.Preview != "" {
			preview = "../" + rec.Preview
		}
	}

	coll, err := store.LoadCollection()
	if err != nil && !errors.Is(err, metadata.ErrNotFound) {
		return "", err
	}
	collectionID := ""
	if coll != nil {
		collectionID = coll.Identifier
	}

	page, err := render.WriteItemPage(root, w.siteFor(coll), *item, collectionID, preview, rows)
	if err != nil {
		return "", err
	}

	w.logger.Info("item page published",
		logging.String("identifier", parts.UUID),
		logging.String("page", filepath.Base(page)))
	w.advance(StagePublished, logging.String("identifier", parts.UUID))
	return page, nil
}
