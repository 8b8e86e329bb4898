package workflow

import (
	"fmt"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/metadata"
)

// NewCollection initializes the collection layout at dir and seeds
// bag-info.json with a minted identifier. The directory must already
// exist; re-running against a live collection leaves everything as is.
func (w *Workflow) NewCollection(dir, archive, title string) error {
	if dir == "" {
		return fmt.Errorf("%w: target directory", ErrMissingArgument)
	}
	if err := bag.Initialize(dir); err != nil {
		return err
	}

	fields := metadata.Collection{}
	if archive == "" {
		archive = w.site.Archive
	}
	if archive != "" {
		fields.Archive = metadata.String(archive)
	}
	if w.site.ArchiveURL != "" {
		fields.ArchiveURL = metadata.String(w.site.ArchiveURL)
	}
	if title != "" {
		fields.Title = metadata.String(title)
	}

	store := metadata.NewStore(dir)
	coll, err := store.UpsertCollection(fields)
	if err != nil {
		return err
	}

	w.logger.Info("collection initialized",
		logging.String("dir", dir),
		logging.String("identifier", coll.Identifier))
	return nil
}
