package match

// EventType discriminates the closed set of log event kinds.
type EventType string

const (
	EventMatchStarted      EventType = "match_started"
	EventTurnStarted       EventType = "turn_started"
	EventObservationEmitted EventType = "observation_emitted"
	EventActionSubmitted   EventType = "action_submitted"
	EventActionAdjudicated EventType = "action_adjudicated"
	EventStateUpdated      EventType = "state_updated"
	EventAgentError        EventType = "agent_error"
	EventMatchEnded        EventType = "match_ended"
)

// ValidEventTypes defines the allowed event discriminators.
var ValidEventTypes = map[EventType]bool{
	EventMatchStarted:       true,
	EventTurnStarted:        true,
	EventObservationEmitted: true,
	EventActionSubmitted:    true,
	EventActionAdjudicated:  true,
	EventStateUpdated:       true,
	EventAgentError:         true,
	EventMatchEnded:         true,
}

// Event is one entry of the immutable, sequence-numbered match log.
//
// Within one match, Seq is unique and the log is consumed in
// non-decreasing Seq order (stable tie-break by original position).
// Turn is 0 when the event is not tied to a turn; turns number from 1.
// AgentID is empty when the event is not attributed to an agent.
type Event struct {
	Type    EventType `json:"type"`
	Seq     int64     `json:"seq"`
	MatchID string    `json:"match_id"`
	Turn    int64     `json:"turn,omitempty"`
	AgentID string    `json:"agent_id,omitempty"`
	Payload Payload   `json:"payload"`
}

// Payload is the sealed set of per-kind event payloads.
// Each variant carries only the fields valid for its kind; free-form
// content uses the Doc tree.
type Payload interface {
	payload()
	// DocView renders the payload as a Doc tree. The redaction gate
	// walks this view; it must include every payload field.
	DocView() DocObject
}

// MatchStarted announces the match, its map, and the participating agents.
type MatchStarted struct {
	MapName string   `json:"map_name"`
	Agents  []string `json:"agents"`
}

func (MatchStarted) payload() {}

// DocView implements Payload.
func (p MatchStarted) DocView() DocObject {
	agents := make(DocArray, len(p.Agents))
	for i, a := range p.Agents {
		agents[i] = DocString(a)
	}
	return DocObject{
		"map_name": DocString(p.MapName),
		"agents":   agents,
	}
}

// TurnStarted marks a turn boundary. The stateful detector set runs
// exactly once per turn boundary.
type TurnStarted struct {
	Turn int64 `json:"turn"`
}

func (TurnStarted) payload() {}

// DocView implements Payload.
func (p TurnStarted) DocView() DocObject {
	return DocObject{"turn": DocInt(p.Turn)}
}

// ObservationEmitted carries what one agent privately observed.
// Observation content is free-form and may contain private-prefixed keys.
type ObservationEmitted struct {
	AgentID     string    `json:"agent_id"`
	Observation DocObject `json:"observation"`
}

func (ObservationEmitted) payload() {}

// DocView implements Payload.
func (p ObservationEmitted) DocView() DocObject {
	return DocObject{
		"agent_id":    DocString(p.AgentID),
		"observation": p.Observation.Clone(),
	}
}

// ActionSubmitted records an agent's raw action request before adjudication.
type ActionSubmitted struct {
	AgentID string    `json:"agent_id"`
	Action  string    `json:"action"`
	Args    DocObject `json:"args,omitempty"`
}

func (ActionSubmitted) payload() {}

// DocView implements Payload.
func (p ActionSubmitted) DocView() DocObject {
	out := DocObject{
		"agent_id": DocString(p.AgentID),
		"action":   DocString(p.Action),
	}
	if p.Args != nil {
		out["args"] = p.Args.Clone()
	}
	return out
}

// ActionAdjudicated records the engine's ruling on a submitted action.
//
// Code lives in one of two namespaces: invalid-attempt codes when
// Valid is false (e.g. "blocked_by_locked_door") and result codes when
// Valid is true (e.g. "hack_complete"). SchemaFallback marks actions
// the engine could not parse against the action schema and adjudicated
// via its fallback path.
type ActionAdjudicated struct {
	AgentID        string    `json:"agent_id"`
	Action         string    `json:"action"`
	Valid          bool      `json:"valid"`
	Code           string    `json:"code"`
	SchemaFallback bool      `json:"schema_fallback,omitempty"`
	Detail         DocObject `json:"detail,omitempty"`
}

func (ActionAdjudicated) payload() {}

// DocView implements Payload.
func (p ActionAdjudicated) DocView() DocObject {
	out := DocObject{
		"agent_id": DocString(p.AgentID),
		"action":   DocString(p.Action),
		"valid":    DocBool(p.Valid),
		"code":     DocString(p.Code),
	}
	if p.SchemaFallback {
		out["schema_fallback"] = DocBool(true)
	}
	if p.Detail != nil {
		out["detail"] = p.Detail.Clone()
	}
	return out
}

// StateUpdated carries the engine's state delta for the scene reducer.
type StateUpdated struct {
	Delta DocObject `json:"delta"`
}

func (StateUpdated) payload() {}

// DocView implements Payload.
func (p StateUpdated) DocView() DocObject {
	return DocObject{"delta": p.Delta.Clone()}
}

// AgentError records a harness-side agent failure (timeout, crash).
type AgentError struct {
	AgentID string `json:"agent_id"`
	Message string `json:"message"`
}

func (AgentError) payload() {}

// DocView implements Payload.
func (p AgentError) DocView() DocObject {
	return DocObject{
		"agent_id": DocString(p.AgentID),
		"message":  DocString(p.Message),
	}
}

// MatchEnded carries the final outcome. Scores, reason, and free-form
// details are spoiler-bearing; winner-agnostic fields (e.g. turn count)
// are not.
type MatchEnded struct {
	Outcome DocObject `json:"outcome"`
}

func (MatchEnded) payload() {}

// DocView implements Payload.
func (p MatchEnded) DocView() DocObject {
	return DocObject{"outcome": p.Outcome.Clone()}
}
