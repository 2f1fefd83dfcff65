// Package ffmpeg shells out to ffmpeg and ffprobe for the encode and mux
// steps of a render. Frames are fed over stdin as raw RGBA, so no
// intermediate image files touch disk.
package ffmpeg

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/iamvalenciia/zero-sum/internal/services"
)

// Duration returns the container duration of a media file in seconds.
func Duration(ctx context.Context, binary, path string) (float64, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", "empty path", nil)
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", strings.TrimSpace(string(output)), err)
	}

	value := strings.TrimSpace(string(output))
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", "unparseable output "+strconv.Quote(value), err)
	}
	if seconds < 0 {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", "negative duration", nil)
	}
	return seconds, nil
}
