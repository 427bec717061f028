package cli

import (
	"fmt"
	"os"

	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/present"
	"github.com/roach88/kibitz/internal/scene"
	"github.com/roach88/kibitz/internal/view"
)

// loadLog reads a match event log (JSON array or NDJSON) from disk.
func loadLog(path string) ([]match.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return match.ReadLog(f)
}

// pipelineResult is the full analysis output for one log.
type pipelineResult struct {
	Events    []match.Event
	Detection detect.Result
	Cards     []present.Card
	Ranked    []present.Card
}

// runPipeline runs detection, collapsing, and ranking over a log.
func runPipeline(events []match.Event, cfg detect.Config) pipelineResult {
	detection := detect.RunPass(events, scene.DefaultReducer, cfg)
	cards := present.Collapse(detection.Candidates)
	return pipelineResult{
		Events:    events,
		Detection: detection,
		Cards:     cards,
		Ranked:    present.PresentationOrder(cards),
	}
}

// momentIdxBounds resolves a moment's seq range to event index bounds
// for commentary binding. A seq missing from the log resolves past the
// end.
func momentIdxBounds(events []match.Event, m view.Moment) (int64, int64) {
	start, end := int64(len(events)), int64(len(events))
	for i, ev := range events {
		if ev.Seq == m.StartSeq && start == int64(len(events)) {
			start = int64(i)
		}
		if ev.Seq == m.EndSeq {
			end = int64(i)
		}
	}
	if end == int64(len(events)) {
		end = start
	}
	return start, end
}

// cardLine formats one card for text output.
func cardLine(c present.Card) string {
	line := fmt.Sprintf("%s %s - %s (turn %d, seq %d)", c.Icon, c.Title, c.Detail, c.Turn, c.SeqStart)
	if c.Count > 1 {
		line += fmt.Sprintf(" [x%d]", c.Count)
	}
	return line
}
