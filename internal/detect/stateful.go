package detect

import (
	"fmt"
	"sort"

	"github.com/roach88/kibitz/internal/scene"
)

// TurnInput is everything the stateful detector set may read about one
// finished turn. All fields are read-only; the detectors' only writes
// go to the State that Step returns.
type TurnInput struct {
	// Turn is the turn being closed out.
	Turn int64

	// Scene is the snapshot at the end of the turn.
	Scene scene.Scene

	// Adjacency is the room graph for Scene.
	Adjacency scene.Adjacency

	// BoundarySeq anchors this turn's candidates on the timeline: the
	// seq of the boundary event that closed the turn (or of the final
	// event when the stream ended mid-turn).
	BoundarySeq int64

	// Progress reports whether any progress-register candidate fired
	// during the turn. Resets the stall counter.
	Progress bool

	// Spotted reports whether any detection-type candidate fired during
	// the turn. Suppresses the near-miss detector.
	Spotted bool
}

// Step runs the four stateful detectors over one finished turn.
// It is the explicit state-transition function (state, turn) ->
// (state', candidates): pure, deterministic, and unit-testable without
// a full pass.
//
// The once-per-turn guarantee lives here: a turn at or below
// LastProcessedTurn returns the state unchanged and no candidates.
func Step(st State, cfg Config, in TurnInput) (State, []Candidate) {
	if in.Turn <= st.LastProcessedTurn {
		return st, nil
	}

	next := st.copy()
	next.LastProcessedTurn = in.Turn

	var out []Candidate
	out = append(out, detectProximity(&next, cfg, in)...)
	out = append(out, detectStall(&next, cfg, in)...)
	out = append(out, detectNoiseCreep(&next, cfg, in)...)
	out = append(out, detectNearMiss(in)...)
	return next, out
}

// detectProximity emits guard-closing candidates: one per threatened
// agent for every guard whose room neighbors an agent's room. A guard
// that fires goes on cooldown so a stationary guard does not spam the
// same warning every turn.
func detectProximity(st *State, cfg Config, in TurnInput) []Candidate {
	if len(in.Adjacency) == 0 {
		return nil
	}

	var out []Candidate
	for _, gid := range sortedGuardIDs(in.Scene) {
		if until, ok := st.GuardCooldownUntil[gid]; ok && in.Turn < until {
			continue
		}
		guard := in.Scene.Guards[gid]
		if guard.Room == "" {
			continue
		}

		fired := false
		for _, aid := range sortedAgentIDs(in.Scene) {
			agent := in.Scene.Agents[aid]
			if agent.Room == "" || !in.Adjacency.Adjacent(guard.Room, agent.Room) {
				continue
			}
			out = append(out, Candidate{
				ID:       DefGuardClosing.ID,
				Category: DefGuardClosing.Category,
				Register: DefGuardClosing.Register,
				Priority: DefGuardClosing.Priority,
				Turn:     in.Turn,
				AgentID:  aid,
				SeqStart: in.BoundarySeq,
				SeqEnd:   in.BoundarySeq,
				Context: Context{
					Guard:     in.Scene.GuardLabel(gid),
					GuardRoom: in.Scene.RoomLabel(guard.Room),
					AgentRoom: in.Scene.RoomLabel(agent.Room),
				},
			})
			fired = true
		}
		if fired {
			st.GuardCooldownUntil[gid] = in.Turn + cfg.ProximityCooldownTurns
		}
	}
	return out
}

// detectStall counts consecutive turns without progress and fires on
// every StallPeriod-th one.
func detectStall(st *State, cfg Config, in TurnInput) []Candidate {
	if in.Progress {
		st.StallTurns = 0
		return nil
	}

	st.StallTurns++
	if cfg.StallPeriod <= 0 || st.StallTurns%cfg.StallPeriod != 0 {
		return nil
	}

	return []Candidate{{
		ID:       DefStall.ID,
		Category: DefStall.Category,
		Register: DefStall.Register,
		Priority: DefStall.Priority,
		Turn:     in.Turn,
		SeqStart: in.BoundarySeq,
		SeqEnd:   in.BoundarySeq,
		Context:  Context{StallTurns: st.StallTurns},
	}}
}

// detectNoiseCreep fires when the noise signal crosses a configured
// fraction of the gap between the current alert level's threshold and
// the next one. Each (level, fraction) pair fires at most once; the
// level is part of the guard key, so escalating to a new level
// re-arms every fraction.
func detectNoiseCreep(st *State, cfg Config, in TurnInput) []Candidate {
	noise := in.Scene.Noise
	if noise.Level < 0 || noise.Level >= len(noise.Thresholds) {
		return nil // already at the top level, nothing left to creep toward
	}

	var lower int64
	if noise.Level > 0 {
		lower = noise.Thresholds[noise.Level-1]
	}
	upper := noise.Thresholds[noise.Level]
	gap := upper - lower
	if gap <= 0 {
		return nil
	}
	pos := noise.Value - lower

	var out []Candidate
	for _, frac := range cfg.ThresholdFractions {
		if pos*100 < frac*gap {
			continue
		}
		key := fmt.Sprintf("%d:%d", noise.Level, frac)
		if st.FiredThresholds[key] {
			continue
		}
		st.FiredThresholds[key] = true
		out = append(out, Candidate{
			ID:       DefNoiseCreep.ID,
			Category: DefNoiseCreep.Category,
			Register: DefNoiseCreep.Register,
			Priority: DefNoiseCreep.Priority,
			Turn:     in.Turn,
			SeqStart: in.BoundarySeq,
			SeqEnd:   in.BoundarySeq,
			Context: Context{
				Level:   int64(noise.Level),
				Percent: frac,
			},
		})
	}
	return out
}

// detectNearMiss emits one candidate per guard/agent pair that shares a
// room, or where the guard just vacated the agent's room. Pairs are
// deduplicated within the turn, and the whole detector is suppressed on
// a turn that produced an explicit detection candidate.
func detectNearMiss(in TurnInput) []Candidate {
	if in.Spotted {
		return nil
	}

	seen := make(map[string]bool)
	var out []Candidate
	for _, gid := range sortedGuardIDs(in.Scene) {
		guard := in.Scene.Guards[gid]
		for _, aid := range sortedAgentIDs(in.Scene) {
			agent := in.Scene.Agents[aid]
			if agent.Room == "" {
				continue
			}
			shared := guard.Room != "" && guard.Room == agent.Room
			vacated := guard.PrevRoom != "" && guard.PrevRoom == agent.Room && guard.Room != agent.Room
			if !shared && !vacated {
				continue
			}
			pair := gid + "\x00" + aid
			if seen[pair] {
				continue
			}
			seen[pair] = true
			room := agent.Room
			out = append(out, Candidate{
				ID:       DefNearMiss.ID,
				Category: DefNearMiss.Category,
				Register: DefNearMiss.Register,
				Priority: DefNearMiss.Priority,
				Turn:     in.Turn,
				AgentID:  aid,
				SeqStart: in.BoundarySeq,
				SeqEnd:   in.BoundarySeq,
				Context: Context{
					Guard: in.Scene.GuardLabel(gid),
					Room:  in.Scene.RoomLabel(room),
				},
			})
		}
	}
	return out
}

func sortedGuardIDs(s scene.Scene) []string {
	ids := make([]string, 0, len(s.Guards))
	for id := range s.Guards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedAgentIDs(s scene.Scene) []string {
	ids := make([]string, 0, len(s.Agents))
	for id := range s.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
