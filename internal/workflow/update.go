package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/fileutil"
	"github.com/mcdrc/odea/internal/filename"
	"github.com/mcdrc/odea/internal/identity"
	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/metadata"
	"github.com/mcdrc/odea/internal/services"
	"github.com/mcdrc/odea/internal/services/thumbs"
)

// thumbSourceTags lists derivative format tags that can stand in as the
// thumbnail source for files imagemagick cannot rasterize directly, in
// preference order.
var thumbSourceTags = []string{
	"df-video-still",
	"df-pdf-doc",
	"df-img-screenshot",
	"df-screenshot-cropped",
	"pf-screenshot",
}

// Update imports or refreshes one file: tag the filename with a format
// tag and item UUID, rename it on disk, record checksum/size/mtime in
// its sidecar, register it in the payload manifest, generate thumbnails
// for source files, and seed the parent item record. Returns the file's
// final path, which differs from the input when tagging renamed it.
func (w *Workflow) Update(ctx context.Context, target string) (string, error) {
	abs, root, err := w.resolveTarget(target)
	if err != nil {
		return "", err
	}
	final := abs
	err = w.withLock(ctx, root, func() error {
		var uerr error
		final, uerr = w.update(ctx, root, abs)
		return uerr
	})
	return final, err
}

func (w *Workflow) resolveTarget(target string) (abs, root string, err error) {
	if target == "" {
		return "", "", fmt.Errorf("%w: --filename", ErrMissingArgument)
	}
	abs, err = filepath.Abs(target)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", "", fmt.Errorf("input file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", "", fmt.Errorf("input %s is not a regular file", target)
	}
	root, err = bag.LocateRoot(abs)
	if err != nil {
		return "", "", err
	}
	return abs, root, nil
}

func (w *Workflow) update(ctx context.Context, root, abs string) (string, error) {
	w.advance(StageStart, logging.String("file", filepath.Base(abs)))

	parts, err := filename.Parse(filepath.Base(abs))
	if err != nil {
		return "", err
	}
	res := identity.Resolve(abs, root)
	if parts.FormatTag == "" {
		parts.FormatTag = filename.TagSource
	}

	var originalName string
	if parts.FormatTag == filename.TagSource {
		if slug := filename.Slug(parts.Basename); slug != parts.Basename {
			originalName = filepath.Base(abs)
			parts.Basename = slug
		}
	}

	// Member files of a multi-file item keep their on-disk names; the
	// directory carries the identifier for all of them.
	final := abs
	if !res.MultiFileMember {
		parts.UUID = res.UUID
		newName, err := filename.Build(parts)
		if err != nil {
			return "", err
		}
		if newName != filepath.Base(abs) {
			final = filepath.Join(filepath.Dir(abs), newName)
			if err := w.renamePayload(root, abs, final); err != nil {
				return "", err
			}
		}
	}
	w.advance(StageTagged,
		logging.String("file", filepath.Base(final)),
		logging.String("identifier", res.UUID),
		logging.Bool("minted", res.Minted))

	rel, err := bag.Rel(root, final)
	if err != nil {
		return "", err
	}
	st, err := fileutil.StatFile(final)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, bag.DataDir+"/") {
		if err := bag.UpdateManifest(root, rel, st.Checksum); err != nil {
			return "", err
		}
	}

	store := metadata.NewStore(root)
	if _, err := store.UpsertItem(res.UUID, metadata.Item{
		Title: metadata.String(metadata.DefaultTitle(parts.Basename)),
	}); err != nil {
		return "", err
	}
	w.advance(StageMetadataWritten, logging.String("identifier", res.UUID))

	rec := &metadata.FileRecord{
		Identifier:   res.UUID,
		Filename:     rel,
		Basename:     parts.Basename,
		FormatTag:    parts.FormatTag,
		Ext:          parts.Ext,
		Checksum:     st.Checksum,
		Size:         st.Size,
		MTime:        st.MTime,
		OriginalName: originalName,
	}
	if prev, err := store.LoadFile(rec.Identifier, rec.FormatTag); err == nil {
		if rec.OriginalName == "" {
			rec.OriginalName = prev.OriginalName
		}
	}

	w.thumbnail(ctx, root, store, rec)
	w.advance(StageThumbnailed, logging.String("identifier", res.UUID))

	if err := store.WriteFileRecord(rec); err != nil {
		return "", err
	}

	w.logger.Info("file updated",
		logging.String("file", rel),
		logging.String("identifier", res.UUID),
		logging.String("format", rec.FormatTag),
		logging.Int64("size", rec.Size))
	w.advance(StageDone, logging.String("identifier", res.UUID))
	return final, nil
}

func (w *Workflow) renamePayload(root, from, to string) error {
	oldRel, err := bag.Rel(root, from)
	if err != nil {
		return err
	}
	newRel, err := bag.Rel(root, to)
	if err != nil {
		return err
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(from), err)
	}
	w.logger.Info("file tagged",
		logging.String("from", oldRel),
		logging.String("to", newRel))
	return bag.RenameManifestEntry(root, oldRel, newRel)
}

// thumbnail fills rec.Thumb and rec.Preview for source files. Formats
// imagemagick cannot read fall back to a previously generated
// derivative; when none exists yet the thumbnail is simply skipped and
// a later update after derive picks it up.
func (w *Workflow) thumbnail(ctx context.Context, root string, store *metadata.Store, rec *metadata.FileRecord) {
	if rec.FormatTag != filename.TagSource {
		return
	}

	source := filepath.Join(root, filepath.FromSlash(rec.Filename))
	if !thumbs.Supported(lastExt(rec.Ext)) {
		source = w.thumbSource(root, store, rec.Identifier)
		if source == "" {
			w.logger.Debug("no thumbnail source available",
				logging.String("file", rec.Filename))
			return
		}
	}

	dir := filepath.Join(root, bag.ThumbDir)
	result, err := w.thumbnailer.Generate(ctx, thumbs.Request{
		Source: source,
		Dir:    dir,
		Key:    rec.Filename,
	})
	if err != nil {
		if errors.Is(err, services.ErrUnsupported) {
			w.logger.Debug("thumbnail skipped", logging.String("file", rec.Filename))
		} else {
			w.logger.Warn("thumbnail generation failed",
				logging.String("file", rec.Filename),
				logging.Error(err))
		}
		return
	}
	rec.Thumb = path.Join(bag.ThumbDir, result.Thumb)
	rec.Preview = path.Join(bag.ThumbDir, result.Preview)
}

func (w *Workflow) thumbSource(root string, store *metadata.Store, id string) string {
	for _, tag := range thumbSourceTags {
		rec, err := store.LoadFile(id, tag)
		if err != nil {
			continue
		}
		candidate := filepath.Join(root, filepath.FromSlash(rec.Filename))
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// lastExt reduces a compound extension like "tar.gz" to its final
// segment for format checks.
func lastExt(ext string) string {
	if i := strings.LastIndex(ext, "."); i >= 0 {
		return ext[i+1:]
	}
	return ext
}
