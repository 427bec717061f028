package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kibitz/internal/match"
)

func TestBuildAdjacency_Undirected(t *testing.T) {
	s := Scene{
		Doors: []Door{
			{ID: "d1", From: "hall", To: "vault"},
			{ID: "d2", From: "hall", To: "lobby"},
			{ID: "d3", From: "vault", To: "hall"}, // duplicate edge, reversed
		},
	}

	adj := BuildAdjacency(s)

	assert.Equal(t, []string{"lobby", "vault"}, adj.Neighbors("hall"))
	assert.Equal(t, []string{"hall"}, adj.Neighbors("vault"))
	assert.True(t, adj.Adjacent("vault", "hall"))
	assert.True(t, adj.Adjacent("hall", "vault"))
	assert.False(t, adj.Adjacent("vault", "lobby"))
}

func TestBuildAdjacency_EmptyScene(t *testing.T) {
	adj := BuildAdjacency(Scene{})
	assert.Empty(t, adj.Neighbors("anywhere"))
	assert.False(t, adj.Adjacent("a", "b"))
}

func TestLabels_FallBackToRawID(t *testing.T) {
	s := Scene{
		Rooms:  map[string]Room{"r1": {ID: "r1", Name: "Vault"}},
		Guards: map[string]Guard{"g1": {ID: "g1"}}, // no name
	}

	assert.Equal(t, "Vault", s.RoomLabel("r1"))
	assert.Equal(t, "r9", s.RoomLabel("r9"))
	assert.Equal(t, "g1", s.GuardLabel("g1"))
	assert.Equal(t, "t7", s.TerminalLabel("t7"))
}

func stateUpdate(seq int64, deltaJSON string) match.Event {
	doc, err := match.UnmarshalDoc([]byte(deltaJSON))
	if err != nil {
		panic(err)
	}
	return match.Event{
		Type:    match.EventStateUpdated,
		Seq:     seq,
		MatchID: "m1",
		Payload: match.StateUpdated{Delta: doc.(match.DocObject)},
	}
}

func TestDefaultReducer_BuildsScene(t *testing.T) {
	var s Scene
	s = DefaultReducer(s, match.Event{
		Type:    match.EventMatchStarted,
		Seq:     1,
		MatchID: "m1",
		Payload: match.MatchStarted{MapName: "bank", Agents: []string{"ghost"}},
	})
	s = DefaultReducer(s, stateUpdate(2, `{
		"rooms": [{"id":"hall","name":"Hall"},{"id":"vault","name":"Vault"}],
		"doors": [{"id":"d1","from":"hall","to":"vault","locked":true}],
		"agents": [{"id":"ghost","name":"Ghost","room":"hall"}],
		"guards": [{"id":"g1","name":"Patrol A","room":"vault"}],
		"noise": {"level":0,"value":40,"thresholds":[100,500,900]}
	}`))

	assert.Equal(t, "bank", s.MapName)
	assert.Equal(t, "hall", s.Agents["ghost"].Room)
	assert.Equal(t, "vault", s.Guards["g1"].Room)
	assert.True(t, s.Doors[0].Locked)
	assert.Equal(t, int64(40), s.Noise.Value)
}

func TestDefaultReducer_GuardMoveTracksPrevRoom(t *testing.T) {
	var s Scene
	s = DefaultReducer(s, stateUpdate(1, `{"guards":[{"id":"g1","room":"hall"}]}`))
	s = DefaultReducer(s, stateUpdate(2, `{"guards":[{"id":"g1","room":"vault"}]}`))

	g := s.Guards["g1"]
	assert.Equal(t, "vault", g.Room)
	assert.Equal(t, "hall", g.PrevRoom)
}

func TestDefaultReducer_Pure(t *testing.T) {
	var s Scene
	s = DefaultReducer(s, stateUpdate(1, `{"guards":[{"id":"g1","room":"hall"}]}`))

	before := s.Guards["g1"].Room
	_ = DefaultReducer(s, stateUpdate(2, `{"guards":[{"id":"g1","room":"vault"}]}`))

	require.Equal(t, before, s.Guards["g1"].Room, "input scene must not be mutated")
}

func TestDefaultReducer_MalformedDeltaIgnored(t *testing.T) {
	var s Scene
	s = DefaultReducer(s, stateUpdate(1, `{"guards":["not-an-object"],"rooms":[{"name":"no id"}]}`))

	assert.Empty(t, s.Guards)
	assert.Empty(t, s.Rooms)
}
