package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kibitz/internal/redact"
)

// RedactOptions holds flags for the redact command.
type RedactOptions struct {
	*RootOptions
	Log    string
	Mode   string
	Reveal bool
	Prefix string
}

// NewRedactCommand creates the redact command.
func NewRedactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RedactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "redact",
		Short: "Produce the safe view of an event log",
		Long: `Apply the mode-aware redaction gate to every event in a log and
print the safe views.

Exit codes:
  0 - Log redacted
  2 - Command error (log not found, unknown mode)

Examples:
  kibitz redact --log match.jsonl --mode spectator
  kibitz redact --log match.jsonl --mode director --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedact(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Log, "log", "", "path to event log (required)")
	_ = cmd.MarkFlagRequired("log")
	cmd.Flags().StringVar(&opts.Mode, "mode", string(redact.ModeSpectator), "viewer mode (spectator|postMatch|director)")
	cmd.Flags().BoolVar(&opts.Reveal, "reveal", false, "reveal spoilers")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", redact.DefaultPrivatePrefix, "private key prefix")

	return cmd
}

func runRedact(opts *RedactOptions, cmd *cobra.Command) error {
	mode := redact.Mode(opts.Mode)
	switch mode {
	case redact.ModeSpectator, redact.ModePostMatch, redact.ModeDirector:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown mode %q", opts.Mode))
	}

	events, err := loadLog(opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read event log", err)
	}

	pol := redact.Policy{Mode: mode, RevealSpoilers: opts.Reveal, Prefix: opts.Prefix}

	out := make([]redact.RedactedEvent, 0, len(events))
	redacted := 0
	for _, ev := range events {
		safe := redact.Redact(ev, pol)
		if safe.IsRedacted {
			redacted++
		}
		out = append(out, safe)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return formatter.Success(map[string]any{
			"mode":           mode,
			"event_count":    len(out),
			"redacted_count": redacted,
			"events":         out,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d events, %d redacted (mode %s)\n", len(out), redacted, mode)
	enc := json.NewEncoder(w)
	for _, safe := range out {
		if err := enc.Encode(safe); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode event", err)
		}
	}
	return nil
}
