package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kibitz/internal/detect"
)

// DetectOptions holds flags for the detect command.
type DetectOptions struct {
	*RootOptions
	Log               string
	StallPeriod       int64
	ProximityCooldown int64
}

// DetectData is the JSON payload of a detect run.
type DetectData struct {
	EventCount int                `json:"event_count"`
	Candidates []detect.Candidate `json:"candidates"`
	Warnings   []string           `json:"warnings,omitempty"`
	Ranked     []cardSummary      `json:"ranked"`
}

type cardSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Turn   int64  `json:"turn"`
	Count  int    `json:"count"`
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DetectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run moment detection over an event log",
		Long: `Run the detection pass over a match event log and print the
collapsed, ranked moment cards.

Exit codes:
  0 - Detection ran (warnings do not fail the run)
  2 - Command error (log not found, malformed log)

Examples:
  kibitz detect --log match.jsonl
  kibitz detect --log match.jsonl --stall-period 5 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Log, "log", "", "path to event log (required)")
	_ = cmd.MarkFlagRequired("log")
	cmd.Flags().Int64Var(&opts.StallPeriod, "stall-period", 0, "override stall detector period")
	cmd.Flags().Int64Var(&opts.ProximityCooldown, "proximity-cooldown", -1, "override proximity cooldown turns")

	return cmd
}

func runDetect(opts *DetectOptions, cmd *cobra.Command) error {
	events, err := loadLog(opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read event log", err)
	}

	cfg := detect.DefaultConfig()
	if opts.StallPeriod > 0 {
		cfg.StallPeriod = opts.StallPeriod
	}
	if opts.ProximityCooldown >= 0 {
		cfg.ProximityCooldownTurns = opts.ProximityCooldown
	}

	res := runPipeline(events, cfg)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Format == "json" {
		data := DetectData{
			EventCount: len(events),
			Candidates: res.Detection.Candidates,
			Warnings:   res.Detection.Warnings,
			Ranked:     make([]cardSummary, 0, len(res.Ranked)),
		}
		for _, c := range res.Ranked {
			data.Ranked = append(data.Ranked, cardSummary{
				ID: c.ID, Title: c.Title, Detail: c.Detail, Turn: c.Turn, Count: c.Count,
			})
		}
		return formatter.Success(data)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d events, %d moments\n", len(events), len(res.Ranked))
	for _, c := range res.Ranked {
		fmt.Fprintln(out, "  "+cardLine(c))
	}
	for _, w := range res.Detection.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	return nil
}
