package thumbs

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/services"
)

// commandContext allows tests to intercept external tool invocations.
var commandContext = exec.CommandContext

// Result names the generated images relative to the thumbnail directory.
type Result struct {
	Thumb   string
	Preview string
}

// Request describes a single thumbnail job. Key is the stable name the
// outputs are derived from, usually the file's collection-relative path.
type Request struct {
	Source string
	Dir    string
	Key    string
}

// Thumbnailer produces a thumbnail and preview image for a source file.
type Thumbnailer interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Option adjusts CLI construction.
type Option func(*CLI)

// WithTimeout overrides the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *CLI) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// CLI renders thumbnails by shelling out to imagemagick convert.
type CLI struct {
	logger  *slog.Logger
	timeout time.Duration
}

// NewCLI returns a Thumbnailer backed by the convert command line tool.
func NewCLI(logger *slog.Logger, opts ...Option) *CLI {
	c := &CLI{
		logger:  logging.NewComponentLogger(logger, "thumbs"),
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// renderable extensions convert can rasterize without an intermediate
// derivative. Everything else is the caller's problem.
var renderable = map[string]struct{}{
	"bmp": {}, "gif": {}, "jpeg": {}, "jpg": {}, "pdf": {},
	"png": {}, "svg": {}, "tif": {}, "tiff": {}, "webp": {},
}

// Supported reports whether Generate can handle a file extension.
func Supported(ext string) bool {
	_, ok := renderable[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// Names returns the output filenames Generate would produce for key,
// without generating anything.
func Names(key string) Result {
	sum := md5.Sum([]byte(key))
	stem := hex.EncodeToString(sum[:])
	return Result{
		Thumb:   stem + ".thumb.jpg",
		Preview: stem + ".preview.jpg",
	}
}

// Generate writes a square 360px thumbnail and an 800x600 bounded preview
// into req.Dir. Existing outputs are left alone, so re-running an update
// over an unchanged collection costs only two stat calls per file.
func (c *CLI) Generate(ctx context.Context, req Request) (Result, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Source)), ".")
	if !Supported(ext) {
		return Result{}, services.Wrap(services.ErrUnsupported, "thumbs", "generate",
			fmt.Sprintf("no direct rendering for .%s files", ext), nil)
	}
	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "thumbs", "generate", "create thumbnail directory", err)
	}

	names := Names(req.Key)
	// Multi-page sources render only their first page.
	page := req.Source + "[0]"

	jobs := []struct {
		out  string
		args []string
	}{
		{names.Thumb, []string{page, "-thumbnail", "360x360^", "-gravity", "center", "-extent", "360x360", "-flatten"}},
		{names.Preview, []string{page, "-resize", "800x600>", "-flatten"}},
	}
	for _, job := range jobs {
		target := filepath.Join(req.Dir, job.out)
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := c.run(ctx, append(job.args, target)); err != nil {
			return Result{}, err
		}
		c.logger.Info("thumbnail written",
			logging.String("source", filepath.Base(req.Source)),
			logging.String("output", job.out))
	}
	return names, nil
}

func (c *CLI) run(ctx context.Context, args []string) error {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := commandContext(runCtx, "convert", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrConversionFailed, "thumbs", "generate",
				fmt.Sprintf("convert timed out after %s", c.timeout), err)
		}
		detail := strings.TrimSpace(string(output))
		if len(detail) > 400 {
			detail = detail[len(detail)-400:]
		}
		return services.Wrap(services.ErrConversionFailed, "thumbs", "generate", detail, err)
	}
	return nil
}
