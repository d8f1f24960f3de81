package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/converge/internal/entity"
	"github.com/roach88/converge/internal/reconcile"
	"github.com/roach88/converge/internal/source"
	"github.com/roach88/converge/internal/store"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Local    string
	Database string
}

// PlanResult holds the computed patchset for output.
type PlanResult struct {
	Converged    bool              `json:"converged"`
	Local        int               `json:"local_records"`
	Remote       int               `json:"remote_records"`
	Additions    int               `json:"additions"`
	Deletions    int               `json:"deletions"`
	Instructions []InstructionView `json:"instructions,omitempty"`
}

// InstructionView is the output shape of one patchset instruction.
type InstructionView struct {
	Op          string         `json:"op"`
	ID          string         `json:"id"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Attrs       map[string]any `json:"attrs,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the patchset without applying it",
		Long: `Compute the patchset that would align the remote store with desired
state, without touching the store.

Exit code 0 means the store already matches; 1 means drift was detected.

Example:
  converge plan --local ./desired --db ./remote.db
  converge plan --local state.yaml --db ./remote.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Local, "local", "", "desired-state path: CUE directory or YAML file (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite remote store (required)")
	_ = cmd.MarkFlagRequired("local")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runPlan(opts *PlanOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ps, result, st, err := computePlan(cmd.Context(), opts.Local, opts.Database, formatter)
	if err != nil {
		return outputPlanError(formatter, err)
	}
	defer st.Close()

	if err := outputPlan(formatter, result, ps); err != nil {
		return err
	}
	if !result.Converged {
		return NewExitError(ExitFailure, fmt.Sprintf("drift detected: %d addition(s), %d deletion(s)", result.Additions, result.Deletions))
	}
	return nil
}

// computePlan loads both snapshots and reconciles them. The returned store is
// open; the caller closes it (apply reuses it for the write transaction).
func computePlan(ctx context.Context, localPath, dbPath string, formatter *OutputFormatter) (*entity.Patchset, PlanResult, *store.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	local, err := source.Load(localPath)
	if err != nil {
		return nil, PlanResult{}, nil, err
	}
	formatter.VerboseLog("Loaded %d desired record(s) from %s", len(local), localPath)

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, PlanResult{}, nil, fmt.Errorf("opening store %s: %w", dbPath, err)
	}

	remote, err := st.RemoteSnapshot(ctx)
	if err != nil {
		st.Close()
		return nil, PlanResult{}, nil, err
	}
	formatter.VerboseLog("Loaded %d remote record(s) from %s", len(remote), dbPath)

	ps, err := entity.Reconcile(local, remote)
	if err != nil {
		st.Close()
		return nil, PlanResult{}, nil, err
	}

	result := PlanResult{
		Converged:    ps.Empty(),
		Local:        len(local),
		Remote:       len(remote),
		Additions:    len(ps.Additions()),
		Deletions:    len(ps.Deletions()),
		Instructions: instructionViews(ps),
	}
	return ps, result, st, nil
}

// instructionViews flattens a patchset into its output shape.
func instructionViews(ps *entity.Patchset) []InstructionView {
	var views []InstructionView
	for _, ins := range ps.Instructions {
		switch ins.Op {
		case reconcile.OpAdd:
			views = append(views, InstructionView{
				Op:    string(ins.Op),
				ID:    ins.Key,
				Attrs: ins.Add.Attrs,
			})
		case reconcile.OpDelete:
			views = append(views, InstructionView{
				Op:          string(ins.Op),
				ID:          ins.Key,
				Fingerprint: ins.Fingerprint,
				Attrs:       ins.Delete.Attrs,
			})
		}
	}
	return views
}

// outputPlan renders the plan in the configured format.
func outputPlan(formatter *OutputFormatter, result PlanResult, ps *entity.Patchset) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Converged {
		fmt.Fprintf(formatter.Writer, "✓ Converged: %d desired record(s), remote matches\n", result.Local)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✗ Drift detected: %d addition(s), %d deletion(s)\n\n", result.Additions, result.Deletions)
	for _, ins := range ps.Instructions {
		switch ins.Op {
		case reconcile.OpAdd:
			fmt.Fprintf(formatter.Writer, "  + add    %s\n", ins.Key)
		case reconcile.OpDelete:
			fmt.Fprintf(formatter.Writer, "  - delete %s  %s\n", ins.Key, shortFingerprint(ins.Fingerprint))
		}
	}
	return nil
}

// outputPlanError maps load, store and reconcile failures onto the CLI's
// error surface. Data-level violations (invalid records, duplicate desired
// ids) exit 1; infrastructure problems exit 2.
func outputPlanError(formatter *OutputFormatter, err error) error {
	var loadErr *source.LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}

	var recErr *reconcile.Error
	if errors.As(err, &recErr) {
		_ = formatter.Error(string(recErr.Code), recErr.Error(), nil)
		return WrapExitError(ExitFailure, "reconciliation rejected inputs", recErr)
	}

	_ = formatter.Error(source.ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "plan failed", err)
}

// shortFingerprint truncates a fingerprint for text output.
func shortFingerprint(fp string) string {
	if len(fp) > 8 {
		return fp[:8]
	}
	return fp
}
