package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/schema"
	"github.com/roach88/kibitz/internal/view"
)

// MomentsOptions holds flags for the moments command.
type MomentsOptions struct {
	*RootOptions
	Log   string
	Out   string
	Check string
}

// NewMomentsCommand creates the moments command.
func NewMomentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MomentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "moments",
		Short: "Compute or check a moments artifact",
		Long: `Compute the moments artifact for an event log. With --out the
artifact is written to disk; with --check it is compared byte for byte
against a precomputed artifact.

Exit codes:
  0 - Artifact computed (and matches, when checking)
  1 - Check failed (artifact differs or fails validation)
  2 - Command error (log not found, unwritable output)

Examples:
  kibitz moments --log match.jsonl --out moments.json
  kibitz moments --log match.jsonl --check moments.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMoments(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Log, "log", "", "path to event log (required)")
	_ = cmd.MarkFlagRequired("log")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write artifact to this path")
	cmd.Flags().StringVar(&opts.Check, "check", "", "compare against an existing artifact")

	return cmd
}

func runMoments(opts *MomentsOptions, cmd *cobra.Command) error {
	events, err := loadLog(opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read event log", err)
	}

	res := runPipeline(events, detect.DefaultConfig())
	moments := view.MomentsFromCards(res.Ranked)

	artifact, err := view.MarshalMoments(moments)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to marshal artifact", err)
	}

	if opts.Check != "" {
		want, err := os.ReadFile(opts.Check)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read artifact", err)
		}
		if err := schema.ValidateMoments(want); err != nil {
			return WrapExitError(ExitFailure, "artifact failed validation", err)
		}
		if !bytes.Equal(bytes.TrimSpace(artifact), bytes.TrimSpace(want)) {
			return NewExitError(ExitFailure, "artifact differs from computed moments")
		}
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, artifact, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write artifact", err)
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"moment_count": len(moments),
			"moments":      moments,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d moments\n", len(moments))
	for _, m := range moments {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s [%s] seq %d-%d\n", m.ID, m.Label, m.StartSeq, m.EndSeq)
	}
	return nil
}
