// Package view is the viewer-facing query surface. Every read a viewer
// can make passes through a Session, which applies playhead gating and
// redaction; no other package hands ungated data to a renderer.
package view

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/kibitz/internal/present"
)

// Moment is one presentable turning point, either derived from a
// detection pass or loaded verbatim from a precomputed artifact.
type Moment struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	StartSeq    int64    `json:"start_seq"`
	EndSeq      int64    `json:"end_seq"`
	Signals     []string `json:"signals"`
	Description string   `json:"description,omitempty"`
}

// MomentsFromCards converts collapsed cards into moments. Card identity
// alone is not unique across a match, so the moment id appends the
// first seq of the card's range.
func MomentsFromCards(cards []present.Card) []Moment {
	out := make([]Moment, 0, len(cards))
	for _, c := range cards {
		m := Moment{
			ID:          fmt.Sprintf("%s-%d", c.ID, c.SeqStart),
			Label:       c.Title,
			Type:        c.ID,
			StartSeq:    c.SeqStart,
			EndSeq:      c.SeqEnd,
			Signals:     []string{string(c.Category), string(c.Register)},
			Description: c.Detail,
		}
		if c.Count > 1 {
			m.Signals = append(m.Signals, fmt.Sprintf("collapsed:%d", c.Count))
		}
		out = append(out, m)
	}
	return out
}

// momentAlias accepts both key spellings external harnesses produce.
type momentAlias struct {
	Moment
	StartSeqAlt *int64 `json:"startSeq"`
	EndSeqAlt   *int64 `json:"endSeq"`
}

// LoadMoments parses a precomputed moments artifact. The artifact is
// consumed verbatim instead of recomputing detection; entries with an
// empty id or an inverted seq range are rejected because a malformed
// artifact must not silently gate visibility wrong.
func LoadMoments(data []byte) ([]Moment, error) {
	var aliases []momentAlias
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parse moments artifact: %w", err)
	}

	moments := make([]Moment, 0, len(aliases))
	for _, a := range aliases {
		m := a.Moment
		if a.StartSeqAlt != nil {
			m.StartSeq = *a.StartSeqAlt
		}
		if a.EndSeqAlt != nil {
			m.EndSeq = *a.EndSeqAlt
		}
		moments = append(moments, m)
	}
	for i, m := range moments {
		if m.ID == "" {
			return nil, fmt.Errorf("moments artifact entry %d: missing id", i)
		}
		if m.StartSeq > m.EndSeq {
			return nil, fmt.Errorf("moments artifact entry %q: inverted seq range [%d,%d]", m.ID, m.StartSeq, m.EndSeq)
		}
	}
	return moments, nil
}

// MarshalMoments serializes moments in the artifact format.
func MarshalMoments(moments []Moment) ([]byte, error) {
	return json.MarshalIndent(moments, "", "  ")
}
