package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kibitz/internal/commentary"
	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/store"
	"github.com/roach88/kibitz/internal/view"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Log        string
	Database   string
	Commentary string
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest an event log into the store",
		Long: `Ingest a match event log into the SQLite store, detect its
moments, and optionally bind a commentary document. Re-ingesting the
same log is idempotent.

Exit codes:
  0 - Log ingested
  2 - Command error (log not found, database not writable)

Examples:
  kibitz ingest --log match.jsonl --db kibitz.db
  kibitz ingest --log match.jsonl --db kibitz.db --commentary cast.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Log, "log", "", "path to event log (required)")
	_ = cmd.MarkFlagRequired("log")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Commentary, "commentary", "", "commentary document to bind and store")

	return cmd
}

func runIngest(opts *IngestOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	events, err := loadLog(opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read event log", err)
	}
	if len(events) == 0 {
		return NewExitError(ExitCommandError, "event log is empty")
	}
	matchID := events[0].MatchID
	if matchID == "" {
		return NewExitError(ExitCommandError, "events carry no match id")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	batchID, err := st.WriteEvents(ctx, matchID, events)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write events", err)
	}

	res := runPipeline(events, detect.DefaultConfig())
	moments := view.MomentsFromCards(res.Ranked)
	if err := st.WriteMoments(ctx, matchID, moments); err != nil {
		return WrapExitError(ExitCommandError, "failed to write moments", err)
	}

	var warnings []string
	entryCount := 0
	if opts.Commentary != "" {
		doc, err := os.ReadFile(opts.Commentary)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read commentary document", err)
		}

		bindMoments := make([]commentary.Moment, 0, len(moments))
		for _, m := range moments {
			start, end := momentIdxBounds(events, m)
			bindMoments = append(bindMoments, commentary.Moment{ID: m.ID, Start: start, End: end})
		}

		parsed := commentary.Parse(doc, bindMoments, len(events))
		warnings = parsed.Warnings
		entryCount = len(parsed.Entries)
		if err := st.WriteCommentary(ctx, matchID, parsed.Entries); err != nil {
			return WrapExitError(ExitCommandError, "failed to write commentary", err)
		}
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return formatter.Success(map[string]any{
			"match_id":     matchID,
			"batch_id":     batchID,
			"event_count":  len(events),
			"moment_count": len(moments),
			"entry_count":  entryCount,
			"warnings":     warnings,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "ingested %s: %d events, %d moments (batch %s)\n", matchID, len(events), len(moments), batchID)
	if opts.Commentary != "" {
		fmt.Fprintf(w, "bound %d commentary entries\n", entryCount)
	}
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return nil
}
