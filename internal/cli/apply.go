package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/converge/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Local    string
	Database string
	DryRun   bool
}

// ApplyResult holds the computed patchset and the effect of applying it.
type ApplyResult struct {
	PlanResult
	DryRun  bool             `json:"dry_run,omitempty"`
	Applied store.ApplyStats `json:"applied"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Compute the patchset and apply it to the store",
		Long: `Compute the patchset aligning the remote store with desired state and
apply it in one transaction.

With --dry-run the patchset is shown but not applied, and the exit code
follows plan semantics (1 on drift).

Example:
  converge apply --local ./desired --db ./remote.db
  converge apply --local state.yaml --db ./remote.db --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Local, "local", "", "desired-state path: CUE directory or YAML file (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite remote store (required)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show the patchset without applying it")
	_ = cmd.MarkFlagRequired("local")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runApply(opts *ApplyOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ps, plan, st, err := computePlan(ctx, opts.Local, opts.Database, formatter)
	if err != nil {
		return outputPlanError(formatter, err)
	}
	defer st.Close()

	result := ApplyResult{PlanResult: plan, DryRun: opts.DryRun}

	if opts.DryRun {
		if err := outputPlan(formatter, plan, ps); err != nil {
			return err
		}
		if !plan.Converged {
			return NewExitError(ExitFailure, fmt.Sprintf("drift detected: %d addition(s), %d deletion(s)", plan.Additions, plan.Deletions))
		}
		return nil
	}

	if !ps.Empty() {
		stats, err := st.Apply(ctx, ps)
		if err != nil {
			_ = formatter.Error("APPLY_FAILED", err.Error(), nil)
			return WrapExitError(ExitCommandError, "apply failed", err)
		}
		result.Applied = stats
	}

	return outputApply(formatter, result)
}

// outputApply renders the apply result in the configured format.
func outputApply(formatter *OutputFormatter, result ApplyResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Converged {
		fmt.Fprintf(formatter.Writer, "✓ Converged: %d desired record(s), nothing to apply\n", result.Local)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Applied: %d added, %d deleted, %d skipped\n",
		result.Applied.Added, result.Applied.Deleted, result.Applied.Skipped)
	return nil
}
