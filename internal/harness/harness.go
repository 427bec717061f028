package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/present"
	"github.com/roach88/kibitz/internal/scene"
)

// Result holds one scenario execution's full pipeline output.
type Result struct {
	Events    []match.Event
	Detection detect.Result
	Cards     []present.Card
	Ranked    []present.Card
}

// Run executes a scenario through the full pipeline: load the log,
// detect, collapse, rank. Assertion checking is separate (Verify), so
// golden comparisons can run even while assertions are being written.
func Run(scenario *Scenario) (*Result, error) {
	events, err := loadEvents(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	cfg := detect.DefaultConfig()
	if scenario.Config != nil {
		applyOverrides(&cfg, scenario.Config)
	}

	detection := detect.RunPass(events, scene.DefaultReducer, cfg)
	cards := present.Collapse(detection.Candidates)
	ranked := present.PresentationOrder(cards)

	return &Result{
		Events:    events,
		Detection: detection,
		Cards:     cards,
		Ranked:    ranked,
	}, nil
}

// Verify checks every assertion against the result, collecting all
// failures rather than stopping at the first.
func (r *Result) Verify(assertions []Assertion) error {
	var failures []string

	for i, a := range assertions {
		if err := r.check(a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d assertion(s) failed:\n%s", len(failures), joinLines(failures))
	}
	return nil
}

func (r *Result) check(a Assertion) error {
	switch a.Type {
	case AssertMomentsOrder:
		return checkIDOrder(cardIDs(r.Cards), a.IDs)
	case AssertRankedOrder:
		return checkIDOrder(cardIDs(r.Ranked), a.IDs)
	case AssertMomentCount:
		n := 0
		for _, c := range r.Detection.Candidates {
			if c.ID == a.ID {
				n++
			}
		}
		if n != a.Count {
			return fmt.Errorf("id %q fired %d times, expected %d", a.ID, n, a.Count)
		}
		return nil
	case AssertCardCount:
		if len(r.Cards) != a.Count {
			return fmt.Errorf("got %d cards, expected %d", len(r.Cards), a.Count)
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func checkIDOrder(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("got ids %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("got ids %v, expected %v", got, want)
		}
	}
	return nil
}

func cardIDs(cards []present.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func joinLines(lines []string) string {
	var buf bytes.Buffer
	for i, l := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString("  " + l)
	}
	return buf.String()
}

// loadEvents materializes the scenario's event log. Inline events pass
// through the same wire decoder as on-disk logs, so a scenario cannot
// describe a log the real ingest path would reject.
func loadEvents(s *Scenario) ([]match.Event, error) {
	if s.EventsFile != "" {
		f, err := os.Open(s.EventsFile)
		if err != nil {
			return nil, fmt.Errorf("open events file: %w", err)
		}
		defer f.Close()
		return match.ReadLog(f)
	}

	data, err := json.Marshal(s.Events)
	if err != nil {
		return nil, fmt.Errorf("encode inline events: %w", err)
	}
	return match.ReadLog(bytes.NewReader(data))
}

// applyOverrides layers scenario config over the defaults.
func applyOverrides(cfg *detect.Config, ov *ConfigOverrides) {
	if ov.ProximityCooldownTurns != nil {
		cfg.ProximityCooldownTurns = *ov.ProximityCooldownTurns
	}
	if ov.StallPeriod != nil {
		cfg.StallPeriod = *ov.StallPeriod
	}
	if len(ov.ThresholdFractions) > 0 {
		cfg.ThresholdFractions = ov.ThresholdFractions
	}
}
