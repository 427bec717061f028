package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kibitz/internal/match"
)

func obsEvent(obs match.DocObject) match.Event {
	return match.Event{
		Type:    match.EventObservationEmitted,
		Seq:     12,
		MatchID: "m1",
		Turn:    3,
		AgentID: "ghost",
		Payload: match.ObservationEmitted{AgentID: "ghost", Observation: obs},
	}
}

func endedEvent(outcome match.DocObject) match.Event {
	return match.Event{
		Type:    match.EventMatchEnded,
		Seq:     40,
		MatchID: "m1",
		Payload: match.MatchEnded{Outcome: outcome},
	}
}

func TestStripPrivate_RemovesNestedKeys(t *testing.T) {
	in := match.DocObject{
		"room":          match.S("vault"),
		"private_route": match.A(match.S("a"), match.S("b")),
		"gear": match.DocObject{
			"tool":          match.S("picks"),
			"private_codes": match.I(4411),
		},
		"stack": match.A(
			match.DocObject{"private_note": match.S("x"), "ok": match.B(true)},
		),
	}

	got := StripPrivateObject(in, StripPolicy{Visibility: VisibilityLiveSafe})

	assert.NotContains(t, got, "private_route")
	gear := got["gear"].(match.DocObject)
	assert.NotContains(t, gear, "private_codes")
	assert.Equal(t, match.S("picks"), gear["tool"])
	elem := got["stack"].(match.DocArray)[0].(match.DocObject)
	assert.NotContains(t, elem, "private_note")
	assert.Equal(t, match.B(true), elem["ok"])
}

func TestStripPrivate_NullAndPrimitivesPassThrough(t *testing.T) {
	pol := StripPolicy{Visibility: VisibilityLiveSafe}

	assert.Equal(t, match.DocNull{}, StripPrivate(match.DocNull{}, pol))
	assert.Equal(t, match.S("hi"), StripPrivate(match.S("hi"), pol))
	assert.Equal(t, match.I(7), StripPrivate(match.I(7), pol))
	assert.Equal(t,
		match.A(match.I(1), match.DocNull{}),
		StripPrivate(match.A(match.I(1), match.DocNull{}), pol))
}

func TestStripPrivate_Idempotent(t *testing.T) {
	in := match.DocObject{
		"a":         match.S("x"),
		"private_b": match.S("y"),
		"nested":    match.DocObject{"private_c": match.I(1), "d": match.I(2)},
	}
	pol := StripPolicy{Visibility: VisibilityLiveSafe}

	once := StripPrivate(in, pol)
	twice := StripPrivate(once, pol)
	assert.Equal(t, once, twice)
}

func TestStripPrivate_AlwaysFullCopiesWithoutAliasing(t *testing.T) {
	in := match.DocObject{"private_x": match.S("secret"), "arr": match.A(match.I(1))}

	got := StripPrivateObject(in, StripPolicy{Visibility: VisibilityAlwaysFull})

	require.Contains(t, got, "private_x")
	got["mutated"] = match.B(true)
	assert.NotContains(t, in, "mutated", "output must not alias input")
}

func TestStripPrivate_CustomPrefix(t *testing.T) {
	in := match.DocObject{"hidden_a": match.S("x"), "private_b": match.S("y")}

	got := StripPrivateObject(in, StripPolicy{Visibility: VisibilityLiveSafe, Prefix: "hidden_"})

	assert.NotContains(t, got, "hidden_a")
	assert.Contains(t, got, "private_b", "default prefix does not apply when overridden")
}

func TestRedact_DirectorSeesEverything(t *testing.T) {
	ev := obsEvent(match.DocObject{"private_plan": match.S("vault run"), "room": match.S("hall")})

	got := Redact(ev, Policy{Mode: ModeDirector})

	assert.False(t, got.IsRedacted)
	require.NotNil(t, got.FullRaw)
	obs := got.DisplayRaw["observation"].(match.DocObject)
	assert.Contains(t, obs, "private_plan")
}

func TestRedact_RevealSpoilersNeverRedacts(t *testing.T) {
	for _, mode := range []Mode{ModeSpectator, ModePostMatch, ModeDirector} {
		got := Redact(endedEvent(match.DocObject{"winner": match.S("ghost")}),
			Policy{Mode: mode, RevealSpoilers: true})

		assert.False(t, got.IsRedacted, "mode %s", mode)
		require.NotNil(t, got.FullRaw, "mode %s", mode)
		outcome := got.DisplayRaw["outcome"].(match.DocObject)
		assert.Equal(t, match.S("ghost"), outcome["winner"])
	}
}

func TestRedact_OutcomeWithheldForUnprivileged(t *testing.T) {
	ev := endedEvent(match.DocObject{
		"winner":      match.S("ghost"),
		"scores":      match.DocObject{"ghost": match.I(9)},
		"reason":      match.S("extraction"),
		"details":     match.A(match.S("vault emptied")),
		"total_turns": match.I(14),
	})

	for _, mode := range []Mode{ModeSpectator, ModePostMatch} {
		got := Redact(ev, Policy{Mode: mode})

		assert.True(t, got.IsRedacted, "mode %s", mode)
		assert.Equal(t, SummaryOutcomeWithheld, got.Summary)
		assert.Nil(t, got.FullRaw, "mode %s", mode)

		outcome := got.DisplayRaw["outcome"].(match.DocObject)
		assert.NotContains(t, outcome, "winner")
		assert.NotContains(t, outcome, "scores")
		assert.NotContains(t, outcome, "reason")
		assert.NotContains(t, outcome, "details")
		assert.Equal(t, match.I(14), outcome["total_turns"])
	}
}

func TestRedact_SpectatorObservationFullyPrivate(t *testing.T) {
	ev := obsEvent(match.DocObject{
		"private_plan":  match.S("vault run"),
		"private_route": match.A(match.S("hall")),
	})

	got := Redact(ev, Policy{Mode: ModeSpectator})

	assert.True(t, got.IsRedacted)
	assert.Equal(t, SummaryRedacted, got.Summary)
	assert.Equal(t, match.DocString(SummaryRedacted), got.DisplayRaw["observation"])
}

func TestRedact_SpectatorObservationPartiallyPrivate(t *testing.T) {
	ev := obsEvent(match.DocObject{
		"room":         match.S("hall"),
		"private_plan": match.S("vault run"),
	})

	got := Redact(ev, Policy{Mode: ModeSpectator})

	assert.True(t, got.IsRedacted)
	assert.Equal(t, SummaryPartiallyRedacted, got.Summary)
	obs := got.DisplayRaw["observation"].(match.DocObject)
	assert.Equal(t, match.S("hall"), obs["room"])
	assert.NotContains(t, obs, "private_plan")
}

func TestRedact_SpectatorObservationNothingPrivate(t *testing.T) {
	ev := obsEvent(match.DocObject{"room": match.S("hall")})

	got := Redact(ev, Policy{Mode: ModeSpectator})

	assert.False(t, got.IsRedacted)
	assert.Empty(t, got.Summary)
}

func TestRedact_PostMatchObservationOnlyStripped(t *testing.T) {
	// Observations are a spectator-only substitution; postMatch still
	// strips private keys but does not flag the event.
	ev := obsEvent(match.DocObject{
		"room":         match.S("hall"),
		"private_plan": match.S("vault run"),
	})

	got := Redact(ev, Policy{Mode: ModePostMatch})

	assert.False(t, got.IsRedacted)
	obs := got.DisplayRaw["observation"].(match.DocObject)
	assert.NotContains(t, obs, "private_plan")
	assert.Equal(t, match.S("hall"), obs["room"])
}

func TestRedact_FullRawInvariant(t *testing.T) {
	ev := obsEvent(match.DocObject{"private_plan": match.S("x")})

	for _, tc := range []struct {
		pol  Policy
		want bool
	}{
		{Policy{Mode: ModeSpectator}, false},
		{Policy{Mode: ModePostMatch}, false},
		{Policy{Mode: ModeDirector}, true},
		{Policy{Mode: ModeSpectator, RevealSpoilers: true}, true},
		{Policy{Mode: ModePostMatch, RevealSpoilers: true}, true},
		{Policy{Mode: ModeDirector, RevealSpoilers: true}, true},
	} {
		got := Redact(ev, tc.pol)
		assert.Equal(t, tc.want, got.FullRaw != nil,
			"mode=%s reveal=%v", tc.pol.Mode, tc.pol.RevealSpoilers)
	}
}

func TestRedact_NoLeakProperty(t *testing.T) {
	// Serialize every unprivileged view and assert no private value text
	// survives anywhere in the output bytes.
	secrets := []string{"vault run", "4411", "dead drop"}
	events := []match.Event{
		obsEvent(match.DocObject{
			"room":         match.S("hall"),
			"private_plan": match.S("vault run"),
			"private_code": match.I(4411),
			"cache": match.DocObject{
				"private_site": match.S("dead drop"),
			},
		}),
		endedEvent(match.DocObject{
			"winner": match.S("ghost"),
			"reason": match.S("dead drop"),
		}),
	}

	for _, mode := range []Mode{ModeSpectator, ModePostMatch} {
		for _, ev := range events {
			got := Redact(ev, Policy{Mode: mode})
			require.Nil(t, got.FullRaw)

			raw, err := match.MarshalCanonical(got.DisplayRaw)
			require.NoError(t, err)
			for _, secret := range secrets {
				assert.False(t, strings.Contains(string(raw), secret),
					"mode=%s seq=%d leaked %q", mode, ev.Seq, secret)
			}
		}
	}
}

func TestRedact_InputNotMutated(t *testing.T) {
	obs := match.DocObject{"room": match.S("hall"), "private_plan": match.S("vault run")}
	ev := obsEvent(obs)

	_ = Redact(ev, Policy{Mode: ModeSpectator})

	assert.Contains(t, obs, "private_plan", "source payload must survive redaction")
	assert.Equal(t, match.S("vault run"), obs["private_plan"])
}

func TestRedact_NilPayload(t *testing.T) {
	ev := match.Event{Type: match.EventTurnStarted, Seq: 2, MatchID: "m1", Turn: 1}

	got := Redact(ev, Policy{Mode: ModeSpectator})

	assert.False(t, got.IsRedacted)
	assert.NotNil(t, got.DisplayRaw)
}
