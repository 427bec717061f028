package match

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// eventEnvelope mirrors Event with a raw payload for two-phase decoding.
type eventEnvelope struct {
	Type    EventType       `json:"type"`
	Seq     int64           `json:"seq"`
	MatchID string          `json:"match_id"`
	Turn    int64           `json:"turn,omitempty"`
	AgentID string          `json:"agent_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// UnmarshalJSON implements json.Unmarshaler for Event, dispatching the
// payload on the type discriminator.
func (e *Event) UnmarshalJSON(data []byte) error {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	if !ValidEventTypes[env.Type] {
		return fmt.Errorf("unknown event type %q", env.Type)
	}

	payload, err := unmarshalPayload(env.Type, env.Payload)
	if err != nil {
		return fmt.Errorf("event seq %d: %w", env.Seq, err)
	}

	e.Type = env.Type
	e.Seq = env.Seq
	e.MatchID = env.MatchID
	e.Turn = env.Turn
	e.AgentID = env.AgentID
	e.Payload = payload
	return nil
}

// unmarshalPayload decodes the type-specific payload variant.
// A missing payload decodes to the variant's zero value so that minimal
// hand-written logs stay loadable.
func unmarshalPayload(t EventType, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(raw))
		d.UseNumber()
		return d.Decode(v)
	}

	switch t {
	case EventMatchStarted:
		var p MatchStarted
		if err := dec(&p); err != nil {
			return nil, err
		}
		return p, nil
	case EventTurnStarted:
		var p TurnStarted
		if err := dec(&p); err != nil {
			return nil, err
		}
		return p, nil
	case EventObservationEmitted:
		var p ObservationEmitted
		if err := dec(&p); err != nil {
			return nil, err
		}
		return p, nil
	case EventActionSubmitted:
		var p ActionSubmitted
		if err := dec(&p); err != nil {
			return nil, err
		}
		return p, nil
	case EventActionAdjudicated:
		var p ActionAdjudicated
		if err := dec(&p); err != nil {
			return nil, err
		}
		return p, nil
	case EventStateUpdated:
		var p StateUpdated
		if err := dec(&p); err != nil {
			return nil, err
		}
		return p, nil
	case EventAgentError:
		var p AgentError
		if err := dec(&p); err != nil {
			return nil, err
		}
		return p, nil
	case EventMatchEnded:
		var p MatchEnded
		if err := dec(&p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
}

// ReadLog decodes an event log from JSON. Both a top-level array and
// newline-delimited JSON objects are accepted; engines emit either.
// The returned slice is sorted by Seq ascending with the original
// position as a stable tie-break.
func ReadLog(r io.Reader) ([]Event, error) {
	br := bufio.NewReader(r)

	// Peek past leading whitespace for the array form.
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}

	var events []Event
	if first == '[' {
		dec := json.NewDecoder(br)
		dec.UseNumber()
		if err := dec.Decode(&events); err != nil {
			return nil, fmt.Errorf("decode event log: %w", err)
		}
	} else {
		dec := json.NewDecoder(br)
		dec.UseNumber()
		for {
			var ev Event
			if err := dec.Decode(&ev); err == io.EOF {
				break
			} else if err != nil {
				return nil, fmt.Errorf("decode event %d: %w", len(events), err)
			}
			events = append(events, ev)
		}
	}

	sortLog(events)
	return events, nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			if err := br.UnreadByte(); err != nil {
				return 0, err
			}
			return b, nil
		}
	}
}

// sortLog orders events by Seq ascending, stable in original position
// for equal Seq.
func sortLog(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Seq < events[j].Seq
	})
}

// WriteLog encodes events as a JSON array, one event per line, in log
// order. Used by the offline harness and test fixtures.
func WriteLog(w io.Writer, events []Event) error {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return err
	}
	for i, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event seq %d: %w", ev.Seq, err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, ",\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n]\n")
	return err
}
