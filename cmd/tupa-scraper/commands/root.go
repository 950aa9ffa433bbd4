package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitConfig = 2
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	cfg     *common.Config
	logger  *slog.Logger
	logFile io.Closer
}

var current = &app{}

var rootCmd = &cobra.Command{
	Use:           "tupa-scraper",
	Short:         "tupa-scraper extracts Peruvian TUPA procedures into a normalized catalog.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := common.LoadConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, closer, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		current.cfg = cfg
		current.logger = logger
		current.logFile = closer
		logger.Info("cli.start", "command", cmd.Name(), "args", args)
		return nil
	},
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if current.logFile != nil {
		if err != nil {
			current.logger.Error("cli.failed", "error", err)
		}
		_ = current.logFile.Close()
		current.logFile = nil
	}
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	if common.IsConfigError(err) || errors.Is(err, common.ErrDependencyMissing) {
		return ExitConfig
	}
	return ExitFailed
}

// newLogger opens the log file and returns a handler writing to it. Console
// output is reserved for status lines and summaries.
func newLogger(cfg common.LogConfig) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("LOG_LEVEL %q is not a log level", cfg.Level), common.ErrInvalidInput)
	}
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, common.NewAppError(common.CodeConfig, "open log file "+cfg.File, err)
		}
		w, closer = f, f
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts)), closer, nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), closer, nil
}
