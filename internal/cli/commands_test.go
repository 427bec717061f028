package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `[
	{"type": "match_started", "seq": 1, "match_id": "m1",
	 "payload": {"map_name": "bank", "agents": ["ghost"]}},
	{"type": "turn_started", "seq": 2, "match_id": "m1", "turn": 1,
	 "payload": {"turn": 1}},
	{"type": "action_adjudicated", "seq": 3, "match_id": "m1", "turn": 1, "agent_id": "ghost",
	 "payload": {"agent_id": "ghost", "action": "move", "valid": false,
	             "code": "blocked_by_locked_door", "detail": {"door": "vault_door"}}},
	{"type": "state_updated", "seq": 4, "match_id": "m1",
	 "payload": {"delta": {}}},
	{"type": "match_ended", "seq": 5, "match_id": "m1",
	 "payload": {"outcome": {"winner": "ghost", "total_turns": 1}}}
]`

func writeSampleLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	err := cmd.Execute()
	return buf.String(), err
}

func TestDetect_Text(t *testing.T) {
	log := writeSampleLog(t)

	out, err := execute(t, "detect", "--log", log)
	require.NoError(t, err)
	assert.Contains(t, out, "5 events, 1 moments")
	assert.Contains(t, out, "Locked door")
}

func TestDetect_JSON(t *testing.T) {
	log := writeSampleLog(t)

	out, err := execute(t, "detect", "--log", log, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(5), data["event_count"])
	assert.Len(t, data["candidates"], 1)
}

func TestDetect_MissingLog(t *testing.T) {
	_, err := execute(t, "detect", "--log", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMoments_WriteThenCheck(t *testing.T) {
	log := writeSampleLog(t)
	artifact := filepath.Join(t.TempDir(), "moments.json")

	_, err := execute(t, "moments", "--log", log, "--out", artifact)
	require.NoError(t, err)

	// The artifact it just wrote must check clean.
	out, err := execute(t, "moments", "--log", log, "--check", artifact)
	require.NoError(t, err)
	assert.Contains(t, out, "1 moments")
}

func TestMoments_CheckDetectsDrift(t *testing.T) {
	log := writeSampleLog(t)
	artifact := filepath.Join(t.TempDir(), "moments.json")

	_, err := execute(t, "moments", "--log", log, "--out", artifact)
	require.NoError(t, err)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	drifted := bytes.Replace(data, []byte("locked_door"), []byte("open_door"), 1)
	require.NoError(t, os.WriteFile(artifact, drifted, 0o644))

	_, err = execute(t, "moments", "--log", log, "--check", artifact)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRedact_SpectatorHidesOutcome(t *testing.T) {
	log := writeSampleLog(t)

	out, err := execute(t, "redact", "--log", log, "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "winner")
	assert.Contains(t, out, "[outcome withheld]")
}

func TestRedact_DirectorSeesOutcome(t *testing.T) {
	log := writeSampleLog(t)

	out, err := execute(t, "redact", "--log", log, "--mode", "director", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "winner")
}

func TestRedact_UnknownMode(t *testing.T) {
	log := writeSampleLog(t)

	_, err := execute(t, "redact", "--log", log, "--mode", "referee")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCommentary_BindsAndWarns(t *testing.T) {
	log := writeSampleLog(t)
	doc := filepath.Join(t.TempDir(), "cast.yaml")
	require.NoError(t, os.WriteFile(doc, []byte(`
entries:
  - text: rough start at the vault
    start_event_idx: 0
    end_event_idx: 2
  - text: orphaned
    moment_id: no-such-moment
`), 0o644))

	out, err := execute(t, "commentary", "--doc", doc, "--log", log)
	require.NoError(t, err, "warnings alone do not fail the command")
	assert.Contains(t, out, "1 entries bound")
	assert.Contains(t, out, "warning:")
}

func TestCommentary_StrictFailsOnWarnings(t *testing.T) {
	log := writeSampleLog(t)
	doc := filepath.Join(t.TempDir(), "cast.yaml")
	require.NoError(t, os.WriteFile(doc, []byte(`
entries:
  - text: orphaned
    moment_id: no-such-moment
`), 0o644))

	_, err := execute(t, "commentary", "--doc", doc, "--log", log, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestIngestThenVerify(t *testing.T) {
	log := writeSampleLog(t)
	db := filepath.Join(t.TempDir(), "kibitz.db")

	out, err := execute(t, "ingest", "--log", log, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "ingested m1: 5 events, 1 moments")

	out, err = execute(t, "verify", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "m1: ok")
}

func TestVerify_JSON(t *testing.T) {
	log := writeSampleLog(t)
	db := filepath.Join(t.TempDir(), "kibitz.db")

	_, err := execute(t, "ingest", "--log", log, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "verify", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["all_deterministic"])
}
