package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/services"
)

// Encoder wraps a long-running ffmpeg process consuming raw RGBA frames on
// stdin. Frames must match the configured geometry exactly.
type Encoder struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    bytes.Buffer
	frameSize int
	closed    bool
}

// StartEncoder launches ffmpeg for a raw-frame encode into output. The
// returned encoder must be closed to flush the stream and reap the process.
func StartEncoder(ctx context.Context, cfg *config.Config, codec, output string) (*Encoder, error) {
	args := encoderArgs(cfg, codec, output)
	binary := strings.TrimSpace(cfg.Paths.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}

	enc := &Encoder{frameSize: cfg.Video.Width * cfg.Video.Height * 4}
	enc.cmd = exec.CommandContext(ctx, binary, args...)
	enc.cmd.Stderr = &enc.stderr

	stdin, err := enc.cmd.StdinPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "encoder", "open stdin pipe", "", err)
	}
	enc.stdin = stdin

	if err := enc.cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "encoder", "start ffmpeg", binary, err)
	}
	return enc, nil
}

func encoderArgs(cfg *config.Config, codec, output string) []string {
	return []string{
		"-hide_banner", "-v", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Video.Width, cfg.Video.Height),
		"-r", fmt.Sprintf("%d", cfg.Video.FPS),
		"-i", "-",
		"-c:v", codec,
		"-preset", cfg.Video.Preset,
		"-b:v", cfg.Video.Bitrate,
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		output,
	}
}

// WriteFrame streams one frame's pixel data to the encoder.
func (e *Encoder) WriteFrame(pix []byte) error {
	if len(pix) != e.frameSize {
		return services.Wrap(services.ErrValidation, "encoder", "write frame",
			fmt.Sprintf("frame is %d bytes, want %d", len(pix), e.frameSize), nil)
	}
	if _, err := e.stdin.Write(pix); err != nil {
		return services.Wrap(services.ErrExternalTool, "encoder", "write frame", e.tail(), err)
	}
	return nil
}

// Close ends the input stream and waits for ffmpeg to finish writing the
// container. It is safe to call more than once.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.stdin.Close(); err != nil {
		_ = e.cmd.Wait()
		return services.Wrap(services.ErrExternalTool, "encoder", "close stdin", e.tail(), err)
	}
	if err := e.cmd.Wait(); err != nil {
		return services.Wrap(services.ErrExternalTool, "encoder", "finalize", e.tail(), err)
	}
	return nil
}

// tail returns the last chunk of stderr for error context.
func (e *Encoder) tail() string {
	s := strings.TrimSpace(e.stderr.String())
	const max = 512
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}
