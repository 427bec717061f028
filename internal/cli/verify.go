package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/store"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
	MatchID  string
}

// VerifyData is the JSON payload of a verify run.
type VerifyData struct {
	Reports          []store.ReplayReport `json:"reports"`
	AllDeterministic bool                 `json:"all_deterministic"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay stored matches and verify determinism",
		Long: `Re-run detection over every stored match twice and compare the
results byte for byte.

Exit codes:
  0 - All matches replay deterministically
  1 - Divergence detected
  2 - Command error (database not found)

Examples:
  kibitz verify --db kibitz.db
  kibitz verify --db kibitz.db --match m1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.MatchID, "match", "", "verify a single match only")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var matchIDs []string
	if opts.MatchID != "" {
		matchIDs = []string{opts.MatchID}
	} else {
		matchIDs, err = st.ListMatches(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list matches", err)
		}
	}

	data := VerifyData{Reports: make([]store.ReplayReport, 0, len(matchIDs)), AllDeterministic: true}
	for _, id := range matchIDs {
		report, err := st.VerifyReplay(ctx, id, detect.DefaultConfig())
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay match %s", id), err)
		}
		data.Reports = append(data.Reports, report)
		if !report.Deterministic {
			data.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		if err := formatter.Success(data); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range data.Reports {
			status := "ok"
			if !r.Deterministic {
				status = "DIVERGED"
			}
			fmt.Fprintf(w, "%s: %s (%d events, %d candidates, trace %s)\n",
				r.MatchID, status, r.EventCount, r.CandidateCount, r.TraceHash)
		}
		if len(data.Reports) == 0 {
			fmt.Fprintln(w, "No matches found in database.")
		}
	}

	if !data.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged")
	}
	return nil
}
