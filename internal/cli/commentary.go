package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kibitz/internal/commentary"
	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/schema"
	"github.com/roach88/kibitz/internal/view"
)

// CommentaryOptions holds flags for the commentary command.
type CommentaryOptions struct {
	*RootOptions
	Doc    string
	Log    string
	Strict bool
}

// NewCommentaryCommand creates the commentary command.
func NewCommentaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommentaryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "commentary",
		Short: "Parse and validate a commentary document",
		Long: `Parse a commentary document (JSON or YAML), bind its entries to
the moments detected in the log, and report every warning.

Exit codes:
  0 - Document parsed (warnings reported but not fatal)
  1 - Warnings present and --strict was set
  2 - Command error (files not found)

Examples:
  kibitz commentary --doc cast.yaml --log match.jsonl
  kibitz commentary --doc cast.yaml --log match.jsonl --strict`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentary(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Doc, "doc", "", "path to commentary document (required)")
	_ = cmd.MarkFlagRequired("doc")
	cmd.Flags().StringVar(&opts.Log, "log", "", "path to event log (required)")
	_ = cmd.MarkFlagRequired("log")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as failure")

	return cmd
}

func runCommentary(opts *CommentaryOptions, cmd *cobra.Command) error {
	doc, err := os.ReadFile(opts.Doc)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read commentary document", err)
	}
	events, err := loadLog(opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read event log", err)
	}

	res := runPipeline(events, detect.DefaultConfig())
	moments := view.MomentsFromCards(res.Ranked)

	bindMoments := make([]commentary.Moment, 0, len(moments))
	for _, m := range moments {
		start, end := momentIdxBounds(events, m)
		bindMoments = append(bindMoments, commentary.Moment{ID: m.ID, Start: start, End: end})
	}

	warnings := schema.ValidateCommentary(doc)
	parsed := commentary.Parse(doc, bindMoments, len(events))
	warnings = append(warnings, parsed.Warnings...)

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		if err := formatter.Success(map[string]any{
			"entry_count": len(parsed.Entries),
			"entries":     parsed.Entries,
			"warnings":    warnings,
		}); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%d entries bound, %d warnings\n", len(parsed.Entries), len(warnings))
		for _, warn := range warnings {
			fmt.Fprintf(w, "warning: %s\n", warn)
		}
	}

	if opts.Strict && len(warnings) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d warnings in strict mode", len(warnings)))
	}
	return nil
}
