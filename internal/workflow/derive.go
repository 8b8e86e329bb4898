package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/fileutil"
	"github.com/mcdrc/odea/internal/filename"
	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/metadata"
	"github.com/mcdrc/odea/internal/plan"
	"github.com/mcdrc/odea/internal/services/convert"
)

// videoStillTag is the derivative whose conversion wants a frame offset
// from the middle of the source video.
const videoStillTag = "df-video-still"

// Derive generates the derivatives still owed for a tagged source file.
// The plan is the media-class target list minus format tags that already
// have a file record, so re-running converges to a no-op. One failed
// conversion is logged and skipped; the remaining targets still run, and
// the joined failures come back as the error.
func (w *Workflow) Derive(ctx context.Context, target string) error {
	abs, root, err := w.resolveTarget(target)
	if err != nil {
		return err
	}
	return w.withLock(ctx, root, func() error {
		return w.derive(ctx, root, abs)
	})
}

func (w *Workflow) derive(ctx context.Context, root, abs string) error {
	parts, err := identifyTarget(root, abs)
	if err != nil {
		return err
	}

	store := metadata.NewStore(root)
	existing, err := store.ListFileTags(parts.UUID)
	if err != nil {
		return err
	}

	targets := w.planner.Plan(lastExt(parts.Ext), existing)
	if len(targets) == 0 {
		w.logger.Info("no derivatives owed",
			logging.String("file", filepath.Base(abs)),
			logging.String("ext", parts.Ext))
		return nil
	}

	derivDir := filepath.Join(root, bag.DerivDir)
	if err := os.MkdirAll(derivDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", bag.DerivDir, err)
	}

	var failures []error
	for _, t := range targets {
		if err := w.deriveOne(ctx, root, store, abs, parts, t, derivDir); err != nil {
			w.logger.Warn("derivative failed",
				logging.String("file", filepath.Base(abs)),
				logging.String("target", t.Tag),
				logging.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", t.Tag, err))
		}
	}
	w.advance(StageDerived, logging.String("identifier", parts.UUID))
	return errors.Join(failures...)
}

func (w *Workflow) deriveOne(ctx context.Context, root string, store *metadata.Store, source string, parts filename.Parts, t plan.Target, derivDir string) error {
	name, err := filename.Build(filename.Parts{
		Basename:  parts.Basename,
		FormatTag: t.Tag,
		UUID:      parts.UUID,
		Ext:       t.Ext,
	})
	if err != nil {
		return err
	}
	out := filepath.Join(derivDir, name)

	if _, err := os.Stat(out); errors.Is(err, os.ErrNotExist) {
		req := convert.Request{Source: source, Target: out, Tag: t.Tag}
		if t.Tag == videoStillTag {
			req.Frame = w.stillFrame(ctx, source)
		}
		if err := w.converter.Convert(ctx, req); err != nil {
			return err
		}
	}

	rel, err := bag.Rel(root, out)
	if err != nil {
		return err
	}
	st, err := fileutil.StatFile(out)
	if err != nil {
		return err
	}
	if err := bag.UpdateManifest(root, rel, st.Checksum); err != nil {
		return err
	}
	if err := store.WriteFileRecord(&metadata.FileRecord{
		Identifier: parts.UUID,
		Filename:   rel,
		Basename:   parts.Basename,
		FormatTag:  t.Tag,
		Ext:        t.Ext,
		Checksum:   st.Checksum,
		Size:       st.Size,
		MTime:      st.MTime,
	}); err != nil {
		return err
	}

	w.logger.Info("derivative written",
		logging.String("file", rel),
		logging.String("target", t.Tag),
		logging.Int64("size", st.Size))
	return nil
}

// stillFrame picks the middle of the video so the still is not a black
// lead-in frame. Without a prober the first frame has to do.
func (w *Workflow) stillFrame(ctx context.Context, source string) string {
	prober, ok := w.converter.(Prober)
	if !ok {
		return ""
	}
	duration, err := prober.Duration(ctx, source)
	if err != nil || duration <= 0 {
		w.logger.Debug("duration probe failed", logging.Error(err))
		return ""
	}
	return strconv.Itoa(int(duration / 2))
}
