package pdf

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Runner executes an external tool; tests swap in a stub.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner runs commands through os/exec, capturing both streams.
type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	began := time.Now()
	err := cmd.Run()

	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("tool", name, "argv", args, "took_ms", time.Since(began).Milliseconds())
	if err != nil {
		logger.Warn("pdf.tool.failed", "error", err, "stderr", truncate(stderr.String(), 4<<10))
	} else {
		logger.Debug("pdf.tool.done", "stdout_bytes", stdout.Len())
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// truncate caps s at n bytes, marking the cut.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + " [truncated]"
	}
	return s
}
