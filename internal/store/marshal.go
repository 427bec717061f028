package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/kibitz/internal/match"
)

// marshalPayload serializes an event payload to canonical JSON. A nil
// payload stores as an empty object so the column stays NOT NULL.
func marshalPayload(ev match.Event) (string, error) {
	if ev.Payload == nil {
		return "{}", nil
	}
	data, err := match.MarshalCanonical(ev.Payload.DocView())
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// rowEnvelope rebuilds the wire form of an event from its columns so
// the match package's type-dispatching decoder does the payload work.
type rowEnvelope struct {
	Type    match.EventType `json:"type"`
	Seq     int64           `json:"seq"`
	MatchID string          `json:"match_id"`
	Turn    int64           `json:"turn,omitempty"`
	AgentID string          `json:"agent_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// unmarshalEvent decodes one stored row back into an event.
func unmarshalEvent(matchID string, seq, turn int64, evType, agentID, payload string) (match.Event, error) {
	env := rowEnvelope{
		Type:    match.EventType(evType),
		Seq:     seq,
		MatchID: matchID,
		Turn:    turn,
		AgentID: agentID,
		Payload: json.RawMessage(payload),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return match.Event{}, fmt.Errorf("rebuild event envelope: %w", err)
	}

	var ev match.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return match.Event{}, fmt.Errorf("decode stored event seq %d: %w", seq, err)
	}
	return ev, nil
}
