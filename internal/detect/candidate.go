package detect

import (
	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/scene"
)

// DetectAdjudicated classifies one adjudication event into zero or one
// moment candidate.
//
// Precedence: the schema-fallback indicator always wins - an action the
// engine could not even parse is a moment regardless of what code the
// fallback path assigned. Otherwise the outcome code is looked up in
// the namespace matching its validity; unrecognized codes produce no
// candidate.
//
// Context identifiers are resolved against the scene snapshot after the
// event (missing lookups fall back to the raw identifier, which is what
// the label helpers already do).
func DetectAdjudicated(ev match.Event, after scene.Scene) (Candidate, bool) {
	adj, ok := ev.Payload.(match.ActionAdjudicated)
	if !ok {
		return Candidate{}, false
	}

	var def Def
	switch {
	case adj.SchemaFallback:
		def = SchemaFumble
	case adj.Valid:
		def, ok = ResultCodes[adj.Code]
		if !ok {
			return Candidate{}, false
		}
	default:
		def, ok = InvalidCodes[adj.Code]
		if !ok {
			return Candidate{}, false
		}
	}

	return Candidate{
		ID:       def.ID,
		Category: def.Category,
		Register: def.Register,
		Priority: def.Priority,
		Turn:     ev.Turn,
		AgentID:  adj.AgentID,
		SeqStart: ev.Seq,
		SeqEnd:   ev.Seq,
		Context:  buildContext(adj, after),
	}, true
}

// buildContext resolves the identifiers the adjudication detail names
// into human labels. The detail document is engine-authored; absent or
// mistyped fields simply leave context fields empty.
func buildContext(adj match.ActionAdjudicated, sc scene.Scene) Context {
	var ctx Context

	if room, ok := sc.Agents[adj.AgentID]; ok {
		ctx.AgentRoom = sc.RoomLabel(room.Room)
	}

	if adj.Detail == nil {
		return ctx
	}

	if id := detailStr(adj.Detail, "room"); id != "" {
		ctx.Room = sc.RoomLabel(id)
	}
	if id := detailStr(adj.Detail, "door"); id != "" {
		ctx.Door = sc.DoorLabel(id)
	}
	if id := detailStr(adj.Detail, "item"); id != "" {
		ctx.Item = sc.ItemLabel(id)
	}
	if id := detailStr(adj.Detail, "terminal"); id != "" {
		ctx.Terminal = sc.TerminalLabel(id)
	}
	if id := detailStr(adj.Detail, "guard"); id != "" {
		ctx.Guard = sc.GuardLabel(id)
	}

	return ctx
}

func detailStr(obj match.DocObject, key string) string {
	if s, ok := obj[key].(match.DocString); ok {
		return string(s)
	}
	return ""
}

// IsDetection reports whether a candidate is an explicit detection
// moment (used by the near-miss suppression rule).
func IsDetection(c Candidate) bool {
	for _, def := range ResultCodes {
		if def.ID == c.ID {
			return def.Detection
		}
	}
	return false
}
