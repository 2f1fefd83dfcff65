package ffmpeg

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/iamvalenciia/zero-sum/internal/services"
)

const (
	// CodecHardware is tried first when codec selection is automatic.
	CodecHardware = "hevc_nvenc"
	// CodecSoftware always works and is the fallback.
	CodecSoftware = "libx264"
)

// SelectCodec resolves the configured codec preference to a concrete encoder.
// "auto" probes the hardware encoder with a tiny test encode and falls back
// to software when the probe fails. An explicit codec is trusted as-is.
func SelectCodec(ctx context.Context, binary, preference string, logger *slog.Logger) string {
	preference = strings.TrimSpace(preference)
	if preference != "" && preference != "auto" {
		return preference
	}

	if err := probeEncoder(ctx, binary, CodecHardware); err != nil {
		if logger != nil {
			logger.Info("hardware encoder unavailable, using software fallback",
				"tried", CodecHardware, "fallback", CodecSoftware, "error", err)
		}
		return CodecSoftware
	}
	return CodecHardware
}

// probeEncoder runs a one-frame lavfi encode to check that the encoder can
// actually initialize. Listing in `ffmpeg -encoders` is not enough; nvenc
// appears there even on machines without a usable GPU.
func probeEncoder(ctx context.Context, binary, codec string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner", "-v", "error",
		"-f", "lavfi", "-i", "color=black:s=64x64:d=0.1",
		"-frames:v", "1",
		"-c:v", codec,
		"-f", "null", "-")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrEncoderUnavailable, "ffmpeg", "probe encoder", strings.TrimSpace(string(output)), err)
	}
	return nil
}
