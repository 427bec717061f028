package present

import (
	"sort"

	"github.com/roach88/kibitz/internal/detect"
)

// Card is a collapsed, presentation-ready moment. Created once per
// detection pass and never mutated; recomputation from identical input
// is byte-identical.
type Card struct {
	ID       string          `json:"id"`
	Category detect.Category `json:"category"`
	Register detect.Register `json:"register"`
	Priority int             `json:"priority"`
	Turn     int64           `json:"turn"`
	AgentID  string          `json:"agent_id,omitempty"`

	Icon   string `json:"icon"`
	Title  string `json:"title"`
	Detail string `json:"detail"`

	SeqStart int64 `json:"seq_start"`
	SeqEnd   int64 `json:"seq_end"`

	// Count is the number of merged occurrences; CollapsedSeqs records
	// every merged occurrence's seq in order.
	Count         int     `json:"count"`
	CollapsedSeqs []int64 `json:"collapsed_seqs"`
}

// collapseKey is the identity under which adjacent candidates merge.
type collapseKey struct {
	agentID  string
	title    string
	category detect.Category
	register detect.Register
}

// Collapse merges chronologically adjacent same-kind candidates into
// cards.
//
// This is a single left-to-right pass: only consecutive runs merge,
// never non-adjacent occurrences. The merged card keeps the FIRST
// occurrence's icon, title, and detail; later occurrences contribute
// their seq and the count.
//
// The input must already be in chronological order (RunPass output is).
func Collapse(cands []detect.Candidate) []Card {
	var out []Card
	var lastKey collapseKey

	for _, c := range cands {
		key := collapseKey{
			agentID:  c.AgentID,
			title:    Title(c.ID),
			category: c.Category,
			register: c.Register,
		}

		if len(out) > 0 && key == lastKey {
			card := &out[len(out)-1]
			card.Count++
			card.CollapsedSeqs = append(card.CollapsedSeqs, c.SeqStart)
			card.SeqEnd = c.SeqEnd
			continue
		}

		out = append(out, Card{
			ID:            c.ID,
			Category:      c.Category,
			Register:      c.Register,
			Priority:      c.Priority,
			Turn:          c.Turn,
			AgentID:       c.AgentID,
			Icon:          Icon(c.Category),
			Title:         key.title,
			Detail:        Render(c),
			SeqStart:      c.SeqStart,
			SeqEnd:        c.SeqEnd,
			Count:         1,
			CollapsedSeqs: []int64{c.SeqStart},
		})
		lastKey = key
	}

	return out
}

// PresentationOrder returns a new slice sorted for the ranked panel:
// priority descending, ties broken by seq descending (most recent
// first). The chronological input is left untouched - timeline
// placement and the ranked panel are two different orderings and must
// not be conflated.
func PresentationOrder(cards []Card) []Card {
	out := append([]Card(nil), cards...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].SeqStart > out[j].SeqStart
	})
	return out
}
