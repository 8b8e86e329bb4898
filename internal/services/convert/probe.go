package convert

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mcdrc/odea/internal/services"
)

// Duration returns the length of a media file in seconds via ffprobe.
func (c *CLI) Duration(ctx context.Context, source string) (float64, error) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := commandContext(runCtx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source)
	output, err := cmd.Output()
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "convert", "probe", "ffprobe failed", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "convert", "probe", "unparsable ffprobe output", err)
	}
	return seconds, nil
}
