package common

import "context"

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID contextKey = "run_id"
	ContextKeyPhase contextKey = "phase"
)

// WithRunID tags the context with the pipeline run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithPhase records the orchestrator phase currently executing.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ContextKeyPhase, phase)
}

// PhaseFromContext extracts the phase from context
func PhaseFromContext(ctx context.Context) string {
	if phase, ok := ctx.Value(ContextKeyPhase).(string); ok {
		return phase
	}
	return ""
}
