package convert

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/services"
)

var commandContext = exec.CommandContext

// Request names one conversion: the source file, the output path, the
// derivative format tag that selects the command, and an optional frame or
// time index for multi-page and video inputs.
type Request struct {
	Source string
	Target string
	Tag    string
	Frame  string
}

// Converter produces one derivative file per call.
type Converter interface {
	Convert(ctx context.Context, req Request) error
}

// Option configures the CLI converter.
type Option func(*CLI)

// WithCommands overlays command templates on the built-in table.
func WithCommands(overrides map[string]string) Option {
	return func(c *CLI) {
		for tag, cmd := range overrides {
			if strings.TrimSpace(cmd) != "" {
				c.commands[tag] = cmd
			}
		}
	}
}

// WithTimeouts sets the default and video-class command timeouts.
func WithTimeouts(standard, video time.Duration) Option {
	return func(c *CLI) {
		if standard > 0 {
			c.timeout = standard
		}
		if video > 0 {
			c.videoTimeout = video
		}
	}
}

// CLI runs conversion command templates through the shell.
type CLI struct {
	commands     map[string]string
	timeout      time.Duration
	videoTimeout time.Duration
	logger       *slog.Logger
}

// NewCLI constructs a converter with the built-in command table.
func NewCLI(logger *slog.Logger, opts ...Option) *CLI {
	c := &CLI{
		commands:     make(map[string]string, len(defaultCommands)),
		timeout:      30 * time.Second,
		videoTimeout: time.Hour,
		logger:       logging.NewComponentLogger(logger, "convert"),
	}
	for tag, cmd := range defaultCommands {
		c.commands[tag] = cmd
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert renders the command template for req.Tag and executes it. A missing
// template is a configuration error; command failure or timeout is a
// conversion failure scoped to this derivative. Some wkhtmltox builds exit
// nonzero after writing a usable output file, so a nonzero exit with the
// target present counts as success.
func (c *CLI) Convert(ctx context.Context, req Request) error {
	tmpl, ok := c.commands[req.Tag]
	if !ok {
		return services.Wrap(services.ErrConfiguration, "convert", req.Tag, "no command template", nil)
	}

	frame := req.Frame
	if frame == "" {
		frame = "0"
	}
	script := strings.NewReplacer(
		"{source}", req.Source,
		"{target}", req.Target,
		"{frame}", frame,
	).Replace(tmpl)

	timeout := c.timeout
	if strings.Contains(tmpl, "ffmpeg") {
		timeout = c.videoTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.logger.Debug("running conversion",
		logging.String("tag", req.Tag),
		logging.String("target", req.Target),
	)

	cmd := commandContext(runCtx, "sh", "-c", script)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrConversionFailed, "convert", req.Tag,
			"timed out after "+timeout.String(), nil)
	}
	if _, statErr := os.Stat(req.Target); statErr == nil {
		c.logger.Warn("converter exited nonzero but produced output",
			logging.String("tag", req.Tag),
			logging.Error(err),
		)
		return nil
	}
	detail := strings.TrimSpace(string(output))
	if len(detail) > 400 {
		detail = detail[len(detail)-400:]
	}
	if detail != "" {
		return services.Wrap(services.ErrConversionFailed, "convert", req.Tag, detail, err)
	}
	return services.Wrap(services.ErrConversionFailed, "convert", req.Tag, "command failed", err)
}

var _ Converter = (*CLI)(nil)
