package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/mcdrc/odea/internal/bag"
	"github.com/mcdrc/odea/internal/filename"
	"github.com/mcdrc/odea/internal/identity"
	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/metadata"
	"github.com/mcdrc/odea/internal/plan"
	"github.com/mcdrc/odea/internal/render"
	"github.com/mcdrc/odea/internal/services/convert"
	"github.com/mcdrc/odea/internal/services/thumbs"
)

var (
	// ErrMissingArgument reports an operation invoked without its
	// required input, before any state is touched.
	ErrMissingArgument = errors.New("missing argument")

	// ErrLocked reports that another invocation holds the collection lock.
	ErrLocked = errors.New("collection is locked by another process")

	// ErrNotTagged reports a derive or publish target that has not been
	// through an update yet.
	ErrNotTagged = errors.New("file is not tagged")
)

// Stage names the progress points an update-family invocation moves
// through. Stages only ever advance; re-running an operation that
// already completed a stage passes through it without side effects.
type Stage string

const (
	StageStart           Stage = "start"
	StageTagged          Stage = "tagged"
	StageMetadataWritten Stage = "metadata-written"
	StageThumbnailed     Stage = "thumbnailed"
	StageDerived         Stage = "derived"
	StagePublished       Stage = "published"
	StageDone            Stage = "done"
)

// Converter turns one source file into one derivative.
type Converter interface {
	Convert(ctx context.Context, req convert.Request) error
}

// Prober measures media durations, used to pick the still frame for
// video thumbnails. Converters that cannot probe simply skip it.
type Prober interface {
	Duration(ctx context.Context, source string) (float64, error)
}

// Thumbnailer produces thumbnail and preview images.
type Thumbnailer interface {
	Generate(ctx context.Context, req thumbs.Request) (thumbs.Result, error)
}

// Site carries the page chrome settings from flags and config.
type Site struct {
	Archive    string
	ArchiveURL string
	License    string
	BaseURL    string
}

// Workflow executes collection operations.
type Workflow struct {
	logger      *slog.Logger
	converter   Converter
	thumbnailer Thumbnailer
	planner     *plan.Planner
	site        Site
	lockTimeout time.Duration
}

// Option adjusts workflow construction.
type Option func(*Workflow)

// WithConverter installs the derivative converter.
func WithConverter(c Converter) Option {
	return func(w *Workflow) { w.converter = c }
}

// WithThumbnailer installs the thumbnail generator.
func WithThumbnailer(t Thumbnailer) Option {
	return func(w *Workflow) { w.thumbnailer = t }
}

// WithPlanner installs the derivation planner.
func WithPlanner(p *plan.Planner) Option {
	return func(w *Workflow) { w.planner = p }
}

// WithSite sets the page chrome defaults.
func WithSite(site Site) Option {
	return func(w *Workflow) { w.site = site }
}

// WithLockTimeout adjusts how long an invocation waits for the
// collection lock before giving up.
func WithLockTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.lockTimeout = d }
}

// New assembles a workflow. Omitted collaborators fall back to the real
// implementations with default settings.
func New(logger *slog.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		logger:      logging.NewComponentLogger(logger, "workflow"),
		lockTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.converter == nil {
		w.converter = convert.NewCLI(logger)
	}
	if w.thumbnailer == nil {
		w.thumbnailer = thumbs.NewCLI(logger)
	}
	if w.planner == nil {
		w.planner = plan.New()
	}
	return w
}

// withLock runs fn while holding the collection lock. A lock held by
// another invocation aborts after the timeout instead of queueing
// silently behind a stuck process.
func (w *Workflow) withLock(ctx context.Context, root string, fn func() error) error {
	lock := flock.New(filepath.Join(root, bag.LockFile))
	lockCtx, cancel := context.WithTimeout(ctx, w.lockTimeout)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, 250*time.Millisecond)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrLocked, filepath.Join(root, bag.LockFile))
	case err != nil:
		return fmt.Errorf("acquire collection lock: %w", err)
	case !ok:
		return fmt.Errorf("%w: %s", ErrLocked, filepath.Join(root, bag.LockFile))
	}
	defer lock.Unlock()

	return fn()
}

// identifyTarget parses the target's name and, when the name itself
// carries no identifier, resolves one from the surrounding tree so
// member files of multi-file items are found through their ancestor
// directory. A target with no identifier anywhere has not been
// imported yet.
func identifyTarget(root, abs string) (filename.Parts, error) {
	parts, err := filename.Parse(filepath.Base(abs))
	if err != nil {
		return filename.Parts{}, err
	}
	if parts.UUID == "" {
		if res := identity.Resolve(abs, root); !res.Minted {
			parts.UUID = res.UUID
			if parts.FormatTag == "" {
				parts.FormatTag = filename.TagSource
			}
		}
	}
	if !parts.Tagged() {
		return filename.Parts{}, fmt.Errorf("%w: %s (run --update first)", ErrNotTagged, filepath.Base(abs))
	}
	return parts, nil
}

func (w *Workflow) advance(stage Stage, attrs ...logging.Attr) {
	attrs = append(attrs, logging.String("stage", string(stage)))
	w.logger.Debug("stage reached", logging.Args(attrs...)...)
}

// siteFor merges flag/config chrome with the collection record. Values
// stored in the collection win so a published bag stays self-describing.
func (w *Workflow) siteFor(coll *metadata.Collection) render.Site {
	site := render.Site{
		Archive:    w.site.Archive,
		ArchiveURL: w.site.ArchiveURL,
		License:    w.site.License,
	}
	if coll != nil {
		if v := metadata.Deref(coll.Archive); v != "" {
			site.Archive = v
		}
		if v := metadata.Deref(coll.ArchiveURL); v != "" {
			site.ArchiveURL = v
		}
		if v := metadata.Deref(coll.Rights); v != "" && site.License == "" {
			site.License = v
		}
	}
	if site.ArchiveURL == "" {
		site.ArchiveURL = w.site.BaseURL
	}
	return site
}
