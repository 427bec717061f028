package match

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `[
{"type":"match_started","seq":1,"match_id":"m1","payload":{"map_name":"bank","agents":["ghost","wraith"]}},
{"type":"turn_started","seq":2,"match_id":"m1","turn":1,"payload":{"turn":1}},
{"type":"action_adjudicated","seq":3,"match_id":"m1","turn":1,"agent_id":"ghost","payload":{"agent_id":"ghost","action":"move","valid":false,"code":"blocked_by_locked_door"}},
{"type":"match_ended","seq":4,"match_id":"m1","payload":{"outcome":{"winner":"ghost","scores":{"ghost":10},"reason":"extraction"}}}
]`

func TestReadLog_Array(t *testing.T) {
	events, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, EventMatchStarted, events[0].Type)
	started, ok := events[0].Payload.(MatchStarted)
	require.True(t, ok)
	assert.Equal(t, "bank", started.MapName)
	assert.Equal(t, []string{"ghost", "wraith"}, started.Agents)

	adj, ok := events[2].Payload.(ActionAdjudicated)
	require.True(t, ok)
	assert.False(t, adj.Valid)
	assert.Equal(t, "blocked_by_locked_door", adj.Code)
}

func TestReadLog_NDJSON(t *testing.T) {
	nd := `{"type":"turn_started","seq":2,"match_id":"m1","turn":1,"payload":{"turn":1}}
{"type":"match_started","seq":1,"match_id":"m1","payload":{"map_name":"bank","agents":[]}}`

	events, err := ReadLog(strings.NewReader(nd))
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Sorted by seq regardless of file order.
	assert.Equal(t, int64(1), events[0].Seq)
	assert.Equal(t, int64(2), events[1].Seq)
}

func TestReadLog_UnknownType(t *testing.T) {
	_, err := ReadLog(strings.NewReader(`[{"type":"teleported","seq":1,"match_id":"m1","payload":{}}]`))
	assert.Error(t, err)
}

func TestReadLog_StableTieBreak(t *testing.T) {
	nd := `{"type":"agent_error","seq":5,"match_id":"m1","agent_id":"a","payload":{"agent_id":"a","message":"first"}}
{"type":"agent_error","seq":5,"match_id":"m1","agent_id":"a","payload":{"agent_id":"a","message":"second"}}`

	events, err := ReadLog(strings.NewReader(nd))
	require.NoError(t, err)
	require.Len(t, events, 2)

	first, _ := events[0].Payload.(AgentError)
	second, _ := events[1].Payload.(AgentError)
	assert.Equal(t, "first", first.Message)
	assert.Equal(t, "second", second.Message)
}

func TestWriteLog_RoundTrip(t *testing.T) {
	events, err := ReadLog(strings.NewReader(sampleLog))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteLog(&buf, events))

	again, err := ReadLog(&buf)
	require.NoError(t, err)
	assert.Equal(t, events, again)
}
