package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/scene"
)

// ReplayReport summarizes one replay verification run.
type ReplayReport struct {
	MatchID        string `json:"match_id"`
	EventCount     int    `json:"event_count"`
	CandidateCount int    `json:"candidate_count"`
	Deterministic  bool   `json:"deterministic"`
	TraceHash      string `json:"trace_hash"`
}

// VerifyReplay loads a match from the store and runs detection twice
// from scratch, comparing serialized results byte for byte. Identical
// bytes mean the derived telemetry is reproducible from the stored log
// alone.
//
// The trace hash is a domain-separated digest of the first pass's
// candidates, stable across machines for the same log and config.
func (s *Store) VerifyReplay(ctx context.Context, matchID string, cfg detect.Config) (ReplayReport, error) {
	report := ReplayReport{MatchID: matchID}

	events, err := s.ReadEvents(ctx, matchID)
	if err != nil {
		return report, err
	}
	report.EventCount = len(events)

	first := detect.RunPass(events, scene.DefaultReducer, cfg)
	second := detect.RunPass(events, scene.DefaultReducer, cfg)

	firstBytes, err := json.Marshal(first)
	if err != nil {
		return report, fmt.Errorf("verify replay: marshal first pass: %w", err)
	}
	secondBytes, err := json.Marshal(second)
	if err != nil {
		return report, fmt.Errorf("verify replay: marshal second pass: %w", err)
	}

	report.CandidateCount = len(first.Candidates)
	report.Deterministic = bytes.Equal(firstBytes, secondBytes)
	report.TraceHash = match.HashDomain(match.DomainTrace, firstBytes)

	return report, nil
}
