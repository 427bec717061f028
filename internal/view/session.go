package view

import (
	"github.com/roach88/kibitz/internal/commentary"
	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/redact"
)

// Session binds one match's events, moments, and commentary behind the
// visibility gate. All viewer reads go through its methods.
//
// A Session is immutable after construction and safe for concurrent
// readers.
type Session struct {
	events  []match.Event
	moments []Moment
	entries []commentary.Entry

	// seqIdx maps an event seq to its index in the log. The playhead is
	// an index; moments carry seqs.
	seqIdx map[int64]int64
}

// NewSession builds the query surface for one match. Events must be in
// log order; moments and entries keep their given deterministic order.
func NewSession(events []match.Event, moments []Moment, entries []commentary.Entry) *Session {
	s := &Session{
		events:  events,
		moments: moments,
		entries: entries,
		seqIdx:  make(map[int64]int64, len(events)),
	}
	for i, ev := range events {
		if _, seen := s.seqIdx[ev.Seq]; !seen {
			s.seqIdx[ev.Seq] = int64(i)
		}
	}
	return s
}

// EventCount returns the log length, the clamp bound for commentary
// ranges.
func (s *Session) EventCount() int {
	return len(s.events)
}

// visible is the single gating rule: revealing shows everything,
// otherwise only what starts at or before the playhead.
func visible(startIdx, playhead int64, reveal bool) bool {
	return reveal || startIdx <= playhead
}

// momentIdxRange resolves a moment's seq range to an index range. A seq
// not present in the log resolves past the end, so an out-of-log moment
// stays hidden until reveal.
func (s *Session) momentIdxRange(m Moment) (int64, int64) {
	start, ok := s.seqIdx[m.StartSeq]
	if !ok {
		return int64(len(s.events)), int64(len(s.events))
	}
	end, ok := s.seqIdx[m.EndSeq]
	if !ok || end < start {
		end = start
	}
	return start, end
}

// MomentsAt returns the moments visible at the playhead, in their
// stored order.
func (s *Session) MomentsAt(playhead int64, reveal bool) []Moment {
	var out []Moment
	for _, m := range s.moments {
		start, _ := s.momentIdxRange(m)
		if visible(start, playhead, reveal) {
			out = append(out, m)
		}
	}
	return out
}

// CommentaryAt returns the commentary entries visible at the playhead.
func (s *Session) CommentaryAt(playhead int64, reveal bool) []commentary.Entry {
	var out []commentary.Entry
	for _, e := range s.entries {
		if visible(e.Start, playhead, reveal) {
			out = append(out, e)
		}
	}
	return out
}

// MomentCommentary returns the visible commentary scoped to one moment:
// entries bound to it by id, plus range-bound entries whose index range
// overlaps the moment's resolved range (inclusive on both ends).
func (s *Session) MomentCommentary(momentID string, playhead int64, reveal bool) []commentary.Entry {
	var target *Moment
	for i := range s.moments {
		if s.moments[i].ID == momentID {
			target = &s.moments[i]
			break
		}
	}
	if target == nil {
		return nil
	}
	mStart, mEnd := s.momentIdxRange(*target)

	var out []commentary.Entry
	for _, e := range s.entries {
		if !visible(e.Start, playhead, reveal) {
			continue
		}
		switch {
		case e.MomentID == momentID:
			out = append(out, e)
		case e.MomentID == "" && e.Start <= mEnd && e.End >= mStart:
			out = append(out, e)
		}
	}
	return out
}

// EventsAt returns the redacted view of every event visible at the
// playhead. The policy's reveal flag lifts the playhead gate as well as
// the content redaction; a director without reveal still replays
// gated.
func (s *Session) EventsAt(playhead int64, pol redact.Policy) []redact.RedactedEvent {
	var out []redact.RedactedEvent
	for i, ev := range s.events {
		if !visible(int64(i), playhead, pol.RevealSpoilers) {
			continue
		}
		out = append(out, redact.Redact(ev, pol))
	}
	return out
}
