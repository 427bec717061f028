package redact

import (
	"github.com/roach88/kibitz/internal/match"
)

// Mode is the viewer role for the mode-aware gate.
type Mode string

const (
	ModeSpectator Mode = "spectator"
	ModePostMatch Mode = "postMatch"
	ModeDirector  Mode = "director"
)

// Policy governs one redacted view of an event.
type Policy struct {
	Mode           Mode
	RevealSpoilers bool
	// Prefix overrides the private-key prefix when non-empty.
	Prefix string
}

// privileged reports whether this policy may see everything.
// CRITICAL: FullRaw is populated iff privileged() - the no-leak
// invariant depends on this single predicate.
func (p Policy) privileged() bool {
	return p.RevealSpoilers || p.Mode == ModeDirector
}

// stripPolicy selects the structural stage for the mode.
func (p Policy) stripPolicy() StripPolicy {
	vis := VisibilityLiveSafe
	switch {
	case p.Mode == ModeDirector:
		vis = VisibilityAlwaysFull
	case p.Mode == ModePostMatch:
		vis = VisibilityPostMatchReveal
	}
	return StripPolicy{Visibility: vis, Prefix: p.Prefix}
}

// Summary sentinels surfaced on redacted events, so a UI can show that
// something was hidden without mis-describing how much.
const (
	SummaryRedacted          = "[redacted]"
	SummaryPartiallyRedacted = "[partially redacted]"
	SummaryOutcomeWithheld   = "[outcome withheld]"
)

// RedactedEvent is the safe view of one raw event.
//
// Invariant: FullRaw is non-nil iff the policy reveals spoilers or the
// mode is director.
type RedactedEvent struct {
	Type    match.EventType `json:"type"`
	Seq     int64           `json:"seq"`
	MatchID string          `json:"match_id"`
	Turn    int64           `json:"turn,omitempty"`
	AgentID string          `json:"agent_id,omitempty"`

	IsRedacted bool            `json:"is_redacted"`
	Summary    string          `json:"summary,omitempty"`
	DisplayRaw match.DocObject `json:"display_raw"`
	FullRaw    match.DocObject `json:"full_raw,omitempty"`
}

// spoiler-bearing subfields of a match outcome. Everything else in the
// outcome (turn counts, map name) is safe to show live.
var spoilerOutcomeFields = map[string]bool{
	"winner":  true,
	"scores":  true,
	"reason":  true,
	"details": true,
}

// Redact produces the safe view of one event under a policy.
//
// Decision table: director never redacts; revealSpoilers never
// redacts; otherwise match-outcome events are always redacted, and in
// spectator mode private-observation events are too. The structural
// private-key strip runs first in every non-privileged view.
func Redact(ev match.Event, pol Policy) RedactedEvent {
	out := RedactedEvent{
		Type:    ev.Type,
		Seq:     ev.Seq,
		MatchID: ev.MatchID,
		Turn:    ev.Turn,
		AgentID: ev.AgentID,
	}

	var raw match.DocObject
	if ev.Payload != nil {
		raw = ev.Payload.DocView()
	} else {
		raw = match.DocObject{}
	}

	if pol.privileged() {
		out.DisplayRaw = raw.Clone()
		out.FullRaw = raw.Clone()
		return out
	}

	// Stage one: structural strip.
	display := StripPrivateObject(raw, pol.stripPolicy())

	// Stage two: spoiler-type substitution.
	switch ev.Type {
	case match.EventMatchEnded:
		out.IsRedacted = true
		out.Summary = SummaryOutcomeWithheld
		display = withholdOutcome(display)
	case match.EventObservationEmitted:
		if pol.Mode == ModeSpectator {
			var summary string
			display, summary = redactObservation(raw, display)
			if summary != "" {
				out.IsRedacted = true
				out.Summary = summary
			}
		}
	}

	out.DisplayRaw = display
	return out
}

// withholdOutcome removes only the spoiler-bearing subfields of the
// outcome object, not the whole payload.
func withholdOutcome(display match.DocObject) match.DocObject {
	outcome, ok := display["outcome"].(match.DocObject)
	if !ok {
		// Defensive: malformed outcome payloads pass through; there is
		// nothing spoiler-shaped to remove.
		return display
	}

	kept := make(match.DocObject, len(outcome))
	for k, v := range outcome {
		if spoilerOutcomeFields[k] {
			continue
		}
		kept[k] = v
	}
	display["outcome"] = kept
	return display
}

// redactObservation decides between the full sentinel (every field was
// private) and partial stripping (some fields were public), surfacing
// the distinction in the summary. An empty summary means nothing was
// private and the event is not redacted.
func redactObservation(raw, display match.DocObject) (match.DocObject, string) {
	origObs, origOK := raw["observation"].(match.DocObject)
	obs, ok := display["observation"].(match.DocObject)
	if !ok || !origOK {
		return display, ""
	}

	if len(obs) == 0 && len(origObs) > 0 {
		// Every field was private: replace the payload entirely with
		// the fixed sentinel.
		display["observation"] = match.DocString(SummaryRedacted)
		return display, SummaryRedacted
	}

	if strippedAny(origObs, obs) {
		return display, SummaryPartiallyRedacted
	}

	return display, ""
}
