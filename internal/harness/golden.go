package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/kibitz/internal/match"
)

// TraceSnapshot captures the pipeline output for a scenario execution.
// Serialized with canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap flattens the snapshot into plain maps so canonical
// marshaling can order every key. Context fields are omitted when
// empty, matching how the candidates themselves carry them.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	candidates := make([]any, len(s.Result.Detection.Candidates))
	for i, c := range s.Result.Detection.Candidates {
		candidates[i] = map[string]any{
			"agent_id":  c.AgentID,
			"category":  string(c.Category),
			"id":        c.ID,
			"priority":  c.Priority,
			"register":  string(c.Register),
			"seq_end":   c.SeqEnd,
			"seq_start": c.SeqStart,
			"turn":      c.Turn,
		}
	}

	cards := make([]any, len(s.Result.Cards))
	for i, c := range s.Result.Cards {
		seqs := make([]any, len(c.CollapsedSeqs))
		for j, seq := range c.CollapsedSeqs {
			seqs[j] = seq
		}
		cards[i] = map[string]any{
			"collapsed_seqs": seqs,
			"count":          c.Count,
			"detail":         c.Detail,
			"icon":           c.Icon,
			"id":             c.ID,
			"title":          c.Title,
		}
	}

	ranked := make([]any, len(s.Result.Ranked))
	for i, c := range s.Result.Ranked {
		ranked[i] = c.ID
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"candidates":    candidates,
		"cards":         cards,
		"ranked":        ranked,
	}
}

// RunWithGolden executes a scenario and compares the pipeline trace
// against testdata/golden/{scenario.Name}.golden.
//
// Golden files are the source of truth for expected pipeline behavior;
// a byte diff means either a regression or an intentional change that
// needs -update.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Result:       result,
	}

	traceJSON, err := match.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}
