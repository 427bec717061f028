package detect

import (
	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/scene"
)

// Result is the outcome of one detection pass: candidates in
// chronological order plus any warnings. A pass never fails - every
// anomaly is recorded as a warning and skipped.
type Result struct {
	Candidates []Candidate `json:"candidates"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// RunPass folds detection over one match's events.
//
// The reducer is the engine-supplied scene fold; a nil reducer leaves
// the scene empty, which degrades gracefully (stateless candidates
// still fire with raw-id context, stateful detectors see nothing).
//
// The stateful detector set runs when a turn boundary closes the
// previous turn, and once more after the stream ends if the final turn
// was never closed by a boundary event.
func RunPass(events []match.Event, red scene.Reducer, cfg Config) Result {
	var res Result

	st := NewState()
	var sc scene.Scene

	currentTurn := int64(0)
	turnProgress := false
	turnSpotted := false

	closeTurn := func(boundarySeq int64) {
		if currentTurn == 0 {
			return
		}
		// Door lists are small; rebuild the graph at every close so a
		// mid-match rewire of an existing door is never read stale.
		adj := scene.BuildAdjacency(sc)
		var fired []Candidate
		st, fired = Step(st, cfg, TurnInput{
			Turn:        currentTurn,
			Scene:       sc,
			Adjacency:   adj,
			BoundarySeq: boundarySeq,
			Progress:    turnProgress,
			Spotted:     turnSpotted,
		})
		res.Candidates = append(res.Candidates, fired...)
		turnProgress = false
		turnSpotted = false
	}

	var lastSeq int64
	for _, ev := range events {
		lastSeq = ev.Seq

		if ev.Type == match.EventTurnStarted {
			closeTurn(ev.Seq)
			if p, ok := ev.Payload.(match.TurnStarted); ok && p.Turn > 0 {
				currentTurn = p.Turn
			} else if ev.Turn > 0 {
				currentTurn = ev.Turn
			} else {
				currentTurn++
			}
		}

		if red != nil {
			sc = red(sc, ev)
		}

		if ev.Type == match.EventActionAdjudicated {
			if cand, ok := DetectAdjudicated(ev, sc); ok {
				res.Candidates = append(res.Candidates, cand)
				if cand.Register == RegisterProgress {
					turnProgress = true
				}
				if IsDetection(cand) {
					turnSpotted = true
				}
			}
		}
	}

	// A final turn never closed by a boundary event still gets its
	// stateful evaluation, anchored at the last event.
	closeTurn(lastSeq)

	return res
}
