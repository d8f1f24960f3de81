package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/converge/internal/source"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool             `json:"valid"`
	Records int              `json:"records"`
	Errors  []ValidationItem `json:"errors,omitempty"`
}

// ValidationItem is one validation finding.
type ValidationItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <desired-state-path>",
		Short: "Validate desired state without touching the store",
		Long: `Load desired state from a CUE directory or YAML file and check the
invariants reconciliation requires: every record carries an id and no
id appears twice.

Reports all findings, not just the first.

Example:
  converge validate ./desired
  converge validate state.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCmd(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidateCmd(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	entities, err := source.Load(path)
	if err != nil {
		var loadErr *source.LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		_ = formatter.Error(source.ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load failed", err)
	}
	formatter.VerboseLog("Loaded %d record(s) from %s", len(entities), path)

	findings := source.Validate(entities)
	if len(findings) == 0 {
		return outputValidateSuccess(formatter, len(entities))
	}
	return outputValidateFindings(formatter, len(entities), findings)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, records int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Records: records})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d record(s) valid\n", records)
	return nil
}

// outputValidateFindings outputs validation findings and maps them to exit 1.
func outputValidateFindings(formatter *OutputFormatter, records int, findings []*source.LoadError) error {
	items := make([]ValidationItem, 0, len(findings))
	for _, f := range findings {
		items = append(items, ValidationItem{Code: f.Code, Message: f.Message})
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Records: records, Errors: items},
			Error: &CLIError{
				Code:    items[0].Code,
				Message: items[0].Message,
			},
		}
		enc := json.NewEncoder(formatter.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d finding(s)", len(items)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, item := range items {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", item.Code, item.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d finding(s)", len(items)))
}
