package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/kibitz/internal/commentary"
	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/view"
)

// ReadEvents returns a match's full event log in seq order.
func (s *Store) ReadEvents(ctx context.Context, matchID string) ([]match.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, type, turn, agent_id, payload
		FROM events
		WHERE match_id = ?
		ORDER BY seq ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var events []match.Event
	for rows.Next() {
		var (
			seq, turn       int64
			evType, agentID string
			payload         string
		)
		if err := rows.Scan(&seq, &evType, &turn, &agentID, &payload); err != nil {
			return nil, fmt.Errorf("read events: scan: %w", err)
		}

		ev, err := unmarshalEvent(matchID, seq, turn, evType, agentID, payload)
		if err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: iterate: %w", err)
	}

	return events, nil
}

// ReadMoments returns a match's stored moments ordered by start seq,
// ties broken by id for identical results across replays.
func (s *Store) ReadMoments(ctx context.Context, matchID string) ([]view.Moment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, type, start_seq, end_seq, signals, description
		FROM moments
		WHERE match_id = ?
		ORDER BY start_seq ASC, id COLLATE BINARY ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("read moments: %w", err)
	}
	defer rows.Close()

	var moments []view.Moment
	for rows.Next() {
		var (
			m       view.Moment
			signals string
		)
		if err := rows.Scan(&m.ID, &m.Label, &m.Type, &m.StartSeq, &m.EndSeq, &signals, &m.Description); err != nil {
			return nil, fmt.Errorf("read moments: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(signals), &m.Signals); err != nil {
			return nil, fmt.Errorf("read moments: signals for %q: %w", m.ID, err)
		}
		moments = append(moments, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read moments: iterate: %w", err)
	}

	return moments, nil
}

// ReadCommentary returns a match's stored commentary entries in the
// binder's deterministic order (start ascending, id tie-break).
func (s *Store) ReadCommentary(ctx context.Context, matchID string) ([]commentary.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, moment_id, start_idx, end_idx, text, speaker, severity, tags
		FROM commentary
		WHERE match_id = ?
		ORDER BY start_idx ASC, id COLLATE BINARY ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("read commentary: %w", err)
	}
	defer rows.Close()

	var entries []commentary.Entry
	for rows.Next() {
		var (
			e        commentary.Entry
			severity string
			tags     string
		)
		if err := rows.Scan(&e.ID, &e.MomentID, &e.Start, &e.End, &e.Text, &e.Speaker, &severity, &tags); err != nil {
			return nil, fmt.Errorf("read commentary: scan: %w", err)
		}
		e.Severity = commentary.Severity(severity)
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("read commentary: tags for %q: %w", e.ID, err)
		}
		if len(e.Tags) == 0 {
			e.Tags = nil
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read commentary: iterate: %w", err)
	}

	return entries, nil
}

// ListMatches returns all match ids in the store, ordered.
func (s *Store) ListMatches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM matches ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list matches: scan: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: iterate: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}

// Session loads a match's full state from the store into a viewer
// session: events, moments, and commentary behind the visibility gate.
func (s *Store) Session(ctx context.Context, matchID string) (*view.Session, error) {
	events, err := s.ReadEvents(ctx, matchID)
	if err != nil {
		return nil, err
	}
	moments, err := s.ReadMoments(ctx, matchID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ReadCommentary(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return view.NewSession(events, moments, entries), nil
}
