package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kibitz/internal/match"
	"github.com/roach88/kibitz/internal/scene"
)

// tenEventLog builds the reference scenario: ten events where event 3
// is an invalid action mapping to locked_door and event 7 a successful
// hack_complete result.
func tenEventLog() []match.Event {
	return []match.Event{
		{Type: match.EventMatchStarted, Seq: 1, MatchID: "m1", Payload: match.MatchStarted{MapName: "bank", Agents: []string{"ghost"}}},
		{Type: match.EventTurnStarted, Seq: 2, MatchID: "m1", Turn: 1, Payload: match.TurnStarted{Turn: 1}},
		adjudicated(3, 1, "ghost", false, "blocked_by_locked_door", nil),
		{Type: match.EventStateUpdated, Seq: 4, MatchID: "m1", Payload: match.StateUpdated{Delta: match.DocObject{}}},
		{Type: match.EventTurnStarted, Seq: 5, MatchID: "m1", Turn: 2, Payload: match.TurnStarted{Turn: 2}},
		{Type: match.EventActionSubmitted, Seq: 6, MatchID: "m1", Turn: 2, AgentID: "ghost", Payload: match.ActionSubmitted{AgentID: "ghost", Action: "hack"}},
		adjudicated(7, 2, "ghost", true, "hack_complete", nil),
		{Type: match.EventStateUpdated, Seq: 8, MatchID: "m1", Payload: match.StateUpdated{Delta: match.DocObject{}}},
		{Type: match.EventObservationEmitted, Seq: 9, MatchID: "m1", Turn: 2, AgentID: "ghost", Payload: match.ObservationEmitted{AgentID: "ghost", Observation: match.DocObject{}}},
		{Type: match.EventMatchEnded, Seq: 10, MatchID: "m1", Payload: match.MatchEnded{Outcome: match.DocObject{}}},
	}
}

func TestRunPass_EndToEnd(t *testing.T) {
	res := RunPass(tenEventLog(), scene.DefaultReducer, DefaultConfig())

	require.Len(t, res.Candidates, 2, "exactly two candidates")
	assert.Empty(t, res.Warnings)

	// Chronological order.
	assert.Equal(t, "locked_door", res.Candidates[0].ID)
	assert.Equal(t, int64(3), res.Candidates[0].SeqStart)
	assert.Equal(t, 80, res.Candidates[0].Priority)

	assert.Equal(t, "terminal_hacked", res.Candidates[1].ID)
	assert.Equal(t, int64(7), res.Candidates[1].SeqStart)
	assert.Equal(t, 60, res.Candidates[1].Priority)
}

func TestRunPass_Deterministic(t *testing.T) {
	events := tenEventLog()

	first := RunPass(events, scene.DefaultReducer, DefaultConfig())
	for i := 0; i < 5; i++ {
		again := RunPass(events, scene.DefaultReducer, DefaultConfig())
		require.Equal(t, first, again, "identical input must reproduce identical output")
	}
}

func TestRunPass_NilReducerDegrades(t *testing.T) {
	res := RunPass(tenEventLog(), nil, DefaultConfig())

	// Stateless candidates still fire; stateful detectors see an empty
	// scene and stay quiet (apart from the stall counter, which needs
	// three turns and only two exist here).
	require.Len(t, res.Candidates, 2)
}

func TestRunPass_FinalTurnClosedAtStreamEnd(t *testing.T) {
	// Guard adjacent to the agent on the final, never-closed turn: the
	// end-of-stream evaluation must still fire proximity.
	sceneDelta, err := match.UnmarshalDoc([]byte(`{
		"rooms": [{"id":"hall"},{"id":"vault"}],
		"doors": [{"id":"d1","from":"hall","to":"vault"}],
		"agents": [{"id":"ghost","room":"vault"}],
		"guards": [{"id":"g1","room":"hall"}]
	}`))
	require.NoError(t, err)

	events := []match.Event{
		{Type: match.EventMatchStarted, Seq: 1, MatchID: "m1", Payload: match.MatchStarted{MapName: "bank", Agents: []string{"ghost"}}},
		{Type: match.EventTurnStarted, Seq: 2, MatchID: "m1", Turn: 1, Payload: match.TurnStarted{Turn: 1}},
		{Type: match.EventStateUpdated, Seq: 3, MatchID: "m1", Payload: match.StateUpdated{Delta: sceneDelta.(match.DocObject)}},
	}

	res := RunPass(events, scene.DefaultReducer, DefaultConfig())

	var ids []string
	for _, c := range res.Candidates {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, "guard_closing")

	for _, c := range res.Candidates {
		assert.Equal(t, int64(3), c.SeqStart, "anchored at the last event")
		assert.Equal(t, int64(1), c.Turn)
	}
}

func TestRunPass_DoorRewireRefreshesAdjacency(t *testing.T) {
	// Rewiring an existing door mid-match keeps the door count
	// constant; the proximity detector must still see the new graph.
	initial, err := match.UnmarshalDoc([]byte(`{
		"rooms": [{"id":"hall"},{"id":"vault"},{"id":"attic"}],
		"doors": [{"id":"d1","from":"hall","to":"vault"}],
		"agents": [{"id":"ghost","room":"vault"}],
		"guards": [{"id":"g1","room":"attic"}]
	}`))
	require.NoError(t, err)
	rewire, err := match.UnmarshalDoc([]byte(`{
		"doors": [{"id":"d1","from":"attic","to":"vault"}]
	}`))
	require.NoError(t, err)

	events := []match.Event{
		{Type: match.EventMatchStarted, Seq: 1, MatchID: "m1", Payload: match.MatchStarted{MapName: "bank", Agents: []string{"ghost"}}},
		{Type: match.EventTurnStarted, Seq: 2, MatchID: "m1", Turn: 1, Payload: match.TurnStarted{Turn: 1}},
		{Type: match.EventStateUpdated, Seq: 3, MatchID: "m1", Payload: match.StateUpdated{Delta: initial.(match.DocObject)}},
		{Type: match.EventTurnStarted, Seq: 4, MatchID: "m1", Turn: 2, Payload: match.TurnStarted{Turn: 2}},
		{Type: match.EventStateUpdated, Seq: 5, MatchID: "m1", Payload: match.StateUpdated{Delta: rewire.(match.DocObject)}},
		{Type: match.EventMatchEnded, Seq: 6, MatchID: "m1", Payload: match.MatchEnded{Outcome: match.DocObject{}}},
	}

	res := RunPass(events, scene.DefaultReducer, DefaultConfig())

	byTurn := map[int64][]string{}
	for _, c := range res.Candidates {
		byTurn[c.Turn] = append(byTurn[c.Turn], c.ID)
	}

	// Turn 1: attic does not touch vault yet, so no proximity.
	assert.NotContains(t, byTurn[1], "guard_closing")
	// Turn 2: d1 now joins attic and vault.
	assert.Contains(t, byTurn[2], "guard_closing")
}

func TestRunPass_TurnBoundaryRunsOnce(t *testing.T) {
	// Two boundary events for the same turn number: the second must not
	// re-run the stateful set.
	sceneDelta, err := match.UnmarshalDoc([]byte(`{
		"rooms": [{"id":"hall"},{"id":"vault"}],
		"doors": [{"id":"d1","from":"hall","to":"vault"}],
		"agents": [{"id":"ghost","room":"vault"}],
		"guards": [{"id":"g1","room":"hall"}]
	}`))
	require.NoError(t, err)

	events := []match.Event{
		{Type: match.EventStateUpdated, Seq: 1, MatchID: "m1", Payload: match.StateUpdated{Delta: sceneDelta.(match.DocObject)}},
		{Type: match.EventTurnStarted, Seq: 2, MatchID: "m1", Turn: 1, Payload: match.TurnStarted{Turn: 1}},
		{Type: match.EventTurnStarted, Seq: 3, MatchID: "m1", Turn: 1, Payload: match.TurnStarted{Turn: 1}},
		{Type: match.EventTurnStarted, Seq: 4, MatchID: "m1", Turn: 2, Payload: match.TurnStarted{Turn: 2}},
	}

	res := RunPass(events, scene.DefaultReducer, DefaultConfig())

	closing := 0
	for _, c := range res.Candidates {
		if c.ID == "guard_closing" && c.Turn == 1 {
			closing++
		}
	}
	assert.Equal(t, 1, closing, "turn 1 evaluated exactly once")
}
