package services

import "context"

type contextKey string

const (
	renderIDKey contextKey = "render_id"
	stageKey    contextKey = "stage"
)

// WithRenderID annotates context with the render correlation identifier.
func WithRenderID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, renderIDKey, id)
}

// RenderIDFromContext extracts the render correlation identifier if present.
func RenderIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(renderIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
