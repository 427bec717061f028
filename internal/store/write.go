package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/kibitz/internal/commentary"
	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/view"
)

// WriteEvents ingests one match log as a single batch and returns the
// batch id. The whole batch commits atomically.
//
// Uses ON CONFLICT DO NOTHING per event for idempotency - re-ingesting
// the same log is safe and leaves the stored seqs untouched. Payloads
// are serialized to canonical JSON so replay verification can compare
// bytes.
func (s *Store) WriteEvents(ctx context.Context, matchID string, events []match.Event) (string, error) {
	batchID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write events: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	mapName := ""
	for _, ev := range events {
		if started, ok := ev.Payload.(match.MatchStarted); ok {
			mapName = started.MapName
			break
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (id, map_name, event_count)
		VALUES (?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET map_name = excluded.map_name
	`, matchID, mapName)
	if err != nil {
		return "", fmt.Errorf("write events: upsert match: %w", err)
	}

	for _, ev := range events {
		payloadJSON, err := marshalPayload(ev)
		if err != nil {
			return "", fmt.Errorf("write events: seq %d: %w", ev.Seq, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (match_id, seq, type, turn, agent_id, payload, batch_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(match_id, seq) DO NOTHING
		`, matchID, ev.Seq, string(ev.Type), ev.Turn, ev.AgentID, payloadJSON, batchID)
		if err != nil {
			return "", fmt.Errorf("write events: insert seq %d: %w", ev.Seq, err)
		}
	}

	// The stored count is derived from the events table, not from the
	// batch: ON CONFLICT DO NOTHING above means a re-ingested log may
	// contribute fewer rows than it carries.
	_, err = tx.ExecContext(ctx, `
		UPDATE matches
		SET event_count = (SELECT COUNT(*) FROM events WHERE match_id = ?)
		WHERE id = ?
	`, matchID, matchID)
	if err != nil {
		return "", fmt.Errorf("write events: update event count: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ingest_batches (id, match_id, event_count)
		VALUES (?, ?, ?)
	`, batchID, matchID, len(events))
	if err != nil {
		return "", fmt.Errorf("write events: record batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write events: commit: %w", err)
	}

	return batchID, nil
}

// WriteMoments stores a moments artifact for a match, replacing any
// previous artifact for that match.
func (s *Store) WriteMoments(ctx context.Context, matchID string, moments []view.Moment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write moments: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM moments WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("write moments: clear previous: %w", err)
	}

	for _, m := range moments {
		signals, err := json.Marshal(m.Signals)
		if err != nil {
			return fmt.Errorf("write moments: marshal signals for %q: %w", m.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO moments (match_id, id, label, type, start_seq, end_seq, signals, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, matchID, m.ID, m.Label, m.Type, m.StartSeq, m.EndSeq, string(signals), m.Description)
		if err != nil {
			return fmt.Errorf("write moments: insert %q: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write moments: commit: %w", err)
	}

	return nil
}

// WriteCommentary stores bound commentary entries for a match,
// replacing any previous set.
func (s *Store) WriteCommentary(ctx context.Context, matchID string, entries []commentary.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write commentary: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM commentary WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("write commentary: clear previous: %w", err)
	}

	for _, e := range entries {
		tags, err := json.Marshal(e.Tags)
		if err != nil {
			return fmt.Errorf("write commentary: marshal tags for %q: %w", e.ID, err)
		}
		if e.Tags == nil {
			tags = []byte("[]")
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO commentary (match_id, id, moment_id, start_idx, end_idx, text, speaker, severity, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, matchID, e.ID, e.MomentID, e.Start, e.End, e.Text, e.Speaker, string(e.Severity), string(tags))
		if err != nil {
			return fmt.Errorf("write commentary: insert %q: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write commentary: commit: %w", err)
	}

	return nil
}
