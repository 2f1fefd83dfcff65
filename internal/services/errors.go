package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFatalInput marks a required input that is entirely missing or
	// unreadable. Nothing can be rendered; the pipeline aborts before the
	// first frame.
	ErrFatalInput = errors.New("fatal input error")
	// ErrMissingAsset marks a pose or illustration file that could not be
	// resolved. Callers absorb it and continue without the asset.
	ErrMissingAsset = errors.New("missing asset")
	// ErrAlignment marks a transcript span where no sequence match was
	// found. Callers absorb it and fall back to proportional estimates.
	ErrAlignment = errors.New("alignment ambiguity")
	// ErrEncoderUnavailable marks hardware encoder initialization failure
	// and triggers the software fallback.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
	// ErrMuxFailure marks a failed or timed-out audio mux. The video-only
	// output is preserved.
	ErrMuxFailure = errors.New("mux failure")

	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err must abort the whole render rather than degrade
// the output. Only missing required inputs qualify; every other class is
// absorbed at the point of failure.
func Fatal(err error) bool {
	return errors.Is(err, ErrFatalInput)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
