// Package commentary parses externally authored commentary documents
// and binds each entry to a moment or an explicit event-index range.
//
// Parsing never fails: every malformed document, unknown reference, or
// out-of-range index degrades to a warning plus exclusion of the
// offending entry, and sibling entries are unaffected.
package commentary

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Severity is the closed set of commentary voices.
type Severity string

const (
	SeverityHype     Severity = "hype"
	SeverityAnalysis Severity = "analysis"
	SeverityRef      Severity = "ref"
	SeverityInfo     Severity = "info"
)

var validSeverities = map[Severity]bool{
	SeverityHype:     true,
	SeverityAnalysis: true,
	SeverityRef:      true,
	SeverityInfo:     true,
}

// Moment is the slice of a detected moment the binder needs: its id and
// resolved event-index range.
type Moment struct {
	ID    string
	Start int64
	End   int64
}

// Entry is one bound commentary entry. Start and End are the effective
// event-index range: the referenced moment's range when moment-bound,
// the clamped explicit range otherwise.
type Entry struct {
	ID       string   `json:"id"`
	MomentID string   `json:"moment_id,omitempty"`
	Start    int64    `json:"start"`
	End      int64    `json:"end"`
	Text     string   `json:"text"`
	Speaker  string   `json:"speaker,omitempty"`
	Severity Severity `json:"severity"`
	Tags     []string `json:"tags,omitempty"`
}

// Result is the outcome of one parse: the surviving entries in
// deterministic order plus every warning collected along the way.
type Result struct {
	Version  int      `json:"version,omitempty"`
	MatchID  string   `json:"match_id,omitempty"`
	Entries  []Entry  `json:"entries"`
	Warnings []string `json:"warnings,omitempty"`
}

// Parse reads a commentary document (JSON or YAML, YAML being a
// superset) and binds its entries against the detected moments and the
// event count.
//
// The result is sorted by effective start index ascending, ties broken
// by entry id lexicographically, so repeated parses of the same
// document are byte-identical.
func Parse(data []byte, moments []Moment, eventCount int) Result {
	var res Result

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("commentary document is not valid JSON or YAML: %v", err))
		return res
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		res.Warnings = append(res.Warnings, "commentary document must be an object")
		return res
	}

	if v, ok := asInt(doc["version"]); ok {
		res.Version = int(v)
	}
	if m, ok := doc["match_id"].(string); ok {
		res.MatchID = m
	} else if m, ok := doc["matchId"].(string); ok {
		res.MatchID = m
	}

	rawEntries, ok := doc["entries"].([]any)
	if !ok {
		res.Warnings = append(res.Warnings, "commentary document has no entries array")
		return res
	}

	byID := make(map[string]Moment, len(moments))
	for _, m := range moments {
		byID[m.ID] = m
	}

	for i, rawEntry := range rawEntries {
		entry, warns, ok := bindEntry(i, rawEntry, byID, eventCount)
		res.Warnings = append(res.Warnings, warns...)
		if ok {
			res.Entries = append(res.Entries, entry)
		}
	}

	sort.SliceStable(res.Entries, func(i, j int) bool {
		if res.Entries[i].Start != res.Entries[j].Start {
			return res.Entries[i].Start < res.Entries[j].Start
		}
		return res.Entries[i].ID < res.Entries[j].ID
	})

	return res
}

// bindEntry validates and binds one raw entry. A false return means the
// entry is dropped; the warnings explain why.
func bindEntry(ordinal int, raw any, moments map[string]Moment, eventCount int) (Entry, []string, bool) {
	var warns []string

	obj, ok := raw.(map[string]any)
	if !ok {
		return Entry{}, []string{fmt.Sprintf("entry %d: not an object, dropped", ordinal)}, false
	}

	var entry Entry
	if id, ok := obj["id"].(string); ok && id != "" {
		entry.ID = id
	} else {
		entry.ID = fmt.Sprintf("entry-%d", ordinal)
	}

	text, ok := obj["text"].(string)
	if !ok || text == "" {
		warns = append(warns, fmt.Sprintf("entry %q: missing or empty text, dropped", entry.ID))
		return Entry{}, warns, false
	}
	entry.Text = text

	if sp, ok := obj["speaker"].(string); ok {
		entry.Speaker = sp
	}

	entry.Severity = SeverityInfo
	if sev, ok := obj["severity"].(string); ok {
		if validSeverities[Severity(sev)] {
			entry.Severity = Severity(sev)
		} else {
			warns = append(warns, fmt.Sprintf("entry %q: unknown severity %q, using %q", entry.ID, sev, SeverityInfo))
		}
	}

	if rawTags, ok := obj["tags"].([]any); ok {
		for _, t := range rawTags {
			if s, ok := t.(string); ok {
				entry.Tags = append(entry.Tags, s)
			}
		}
	}

	momentID, hasMoment := obj["moment_id"].(string)
	if !hasMoment {
		momentID, hasMoment = obj["momentId"].(string)
	}
	startRaw := firstPresent(obj, "start_event_idx", "startEventIdx")
	endRaw := firstPresent(obj, "end_event_idx", "endEventIdx")
	start, hasStart := asInt(startRaw)
	end, hasEnd := asInt(endRaw)
	if startRaw != nil && !hasStart {
		warns = append(warns, fmt.Sprintf("entry %q: non-integer start_event_idx %v, ignored", entry.ID, startRaw))
	}
	if endRaw != nil && !hasEnd {
		warns = append(warns, fmt.Sprintf("entry %q: non-integer end_event_idx %v, ignored", entry.ID, endRaw))
	}

	switch {
	case hasMoment:
		m, known := moments[momentID]
		if !known {
			warns = append(warns, fmt.Sprintf("entry %q: unknown moment %q, dropped", entry.ID, momentID))
			return Entry{}, warns, false
		}
		entry.MomentID = momentID
		entry.Start = m.Start
		entry.End = m.End

	case hasStart || hasEnd:
		if !hasStart {
			start = end
		}
		if !hasEnd {
			end = start
		}
		if start > end {
			warns = append(warns, fmt.Sprintf("entry %q: inverted range [%d,%d], corrected", entry.ID, start, end))
			start, end = end, start
		}
		entry.Start = clampIdx(start, eventCount)
		entry.End = clampIdx(end, eventCount)

	default:
		warns = append(warns, fmt.Sprintf("entry %q: neither moment reference nor event range, dropped", entry.ID))
		return Entry{}, warns, false
	}

	return entry, warns, true
}

// clampIdx clamps an event index into [0, eventCount-1].
func clampIdx(idx int64, eventCount int) int64 {
	if idx < 0 {
		return 0
	}
	if max := int64(eventCount) - 1; idx > max {
		if max < 0 {
			return 0
		}
		return max
	}
	return idx
}

func firstPresent(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v
		}
	}
	return nil
}

// asInt coerces the integer shapes the YAML and JSON decoders produce.
// Fractional numbers do not coerce; an index is either whole or absent.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}
