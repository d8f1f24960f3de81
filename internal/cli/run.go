package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/converge/internal/engine"
	"github.com/roach88/converge/internal/source"
	"github.com/roach88/converge/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Interval time.Duration

	// TokenGenerator allows overriding the cycle token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator engine.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <desired-state-path>",
		Short: "Run the reconciliation loop",
		Long: `Run periodic reconciliation of the remote store against desired state.

Every cycle re-reads the desired-state path and the store, derives a
patchset, and applies it. Edits to desired state take effect on the next
cycle without a restart. Failed cycles are logged and the loop continues.

Example:
  converge run --db ./remote.db ./desired
  converge run --db ./remote.db --interval 10s state.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite remote store (required)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", engine.DefaultInterval, "reconciliation cadence")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLoop(opts *RunOptions, localPath string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)

	// Check desired state up front so a bad path fails fast instead of on
	// every cycle
	if _, err := source.Load(localPath); err != nil {
		return WrapExitError(ExitCommandError, "failed to load desired state", err)
	}

	logger.Info("opening store", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	tokens := opts.TokenGenerator
	if tokens == nil {
		tokens = engine.UUIDv7Generator{}
	}
	eng := engine.New(source.Provider{Path: localPath}, st, st,
		engine.WithInterval(opts.Interval),
		engine.WithTokenGenerator(tokens),
		engine.WithLogger(logger),
	)

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	logger.Info("reconciliation loop starting", "db", opts.Database, "local", localPath, "interval", opts.Interval)
	fmt.Fprintln(cmd.OutOrStdout(), "Reconciliation loop started. Press Ctrl-C to stop.")

	if err := eng.Run(ctx); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return WrapExitError(ExitFailure, "reconciliation loop error", err)
	}

	logger.Info("reconciliation loop stopped")
	return nil
}
