package logging

import (
	"context"
	"log/slog"

	"github.com/iamvalenciia/zero-sum/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRenderID is the standardized structured logging key for render correlation identifiers.
	FieldRenderID = "render_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldSegment is the standardized structured logging key for segment indexes.
	FieldSegment = "segment"
	// FieldAsset is the standardized structured logging key for asset identifiers.
	FieldAsset = "asset"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := services.RenderIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRenderID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
