package present

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kibitz/internal/detect"
)

func cand(id string, agent string, turn, seq int64, ctx detect.Context) detect.Candidate {
	priority := 0
	if def, ok := detect.InvalidCodes["no_such_exit"]; ok && id == def.ID {
		priority = def.Priority
	}
	return detect.Candidate{
		ID:       id,
		Category: detect.CategoryNavigation,
		Register: detect.RegisterFailure,
		Priority: priority,
		Turn:     turn,
		AgentID:  agent,
		SeqStart: seq,
		SeqEnd:   seq,
		Context:  ctx,
	}
}

func TestRender_Deterministic(t *testing.T) {
	c := cand("locked_door", "ghost", 2, 14, detect.Context{Door: "Vault Door"})

	first := Render(c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Render(c), "same candidate must always render the same text")
	}
	assert.Contains(t, first, "Vault Door")
}

func TestRender_DistinctOccurrencesMayDiffer(t *testing.T) {
	// Not asserting they DO differ (that depends on the hash), only
	// that each is individually stable and drawn from the template set.
	a := Render(cand("locked_door", "ghost", 2, 14, detect.Context{Door: "Vault Door"}))
	b := Render(cand("locked_door", "ghost", 3, 22, detect.Context{Door: "Vault Door"}))

	for _, text := range []string{a, b} {
		assert.NotContains(t, text, "{", "no unresolved placeholder may leak")
	}
}

func TestRender_MissingFieldFallsBackToGeneric(t *testing.T) {
	// locked_door templates all reference {door}; with no door in
	// context the generic sentence must be used.
	text := Render(cand("locked_door", "ghost", 1, 5, detect.Context{}))

	assert.Equal(t, "A locked door blocks the way.", text)
}

func TestRender_UnknownTaxonomyFallsBackToID(t *testing.T) {
	text := Render(cand("future_moment", "ghost", 1, 5, detect.Context{}))
	assert.Equal(t, "future_moment", text)
}

func TestCollapse_AdjacentRunMerges(t *testing.T) {
	// Three adjacent wrong turns by the same agent, then an unrelated
	// candidate: the run collapses to one card with count=3, the fourth
	// stays separate.
	cands := []detect.Candidate{
		cand("wrong_turn", "ghost", 1, 3, detect.Context{AgentRoom: "Hall"}),
		cand("wrong_turn", "ghost", 1, 4, detect.Context{AgentRoom: "Hall"}),
		cand("wrong_turn", "ghost", 1, 5, detect.Context{AgentRoom: "Hall"}),
		{
			ID: "terminal_hacked", Category: detect.CategoryObjective,
			Register: detect.RegisterProgress, Priority: 60,
			Turn: 2, AgentID: "ghost", SeqStart: 9, SeqEnd: 9,
		},
	}

	cards := Collapse(cands)

	require.Len(t, cards, 2)
	assert.Equal(t, 3, cards[0].Count)
	assert.Equal(t, []int64{3, 4, 5}, cards[0].CollapsedSeqs)
	assert.Equal(t, int64(3), cards[0].SeqStart)
	assert.Equal(t, int64(5), cards[0].SeqEnd)
	assert.Equal(t, "Wrong turn", cards[0].Title)

	assert.Equal(t, 1, cards[1].Count)
	assert.Equal(t, "terminal_hacked", cards[1].ID)
}

func TestCollapse_NonAdjacentRunsStaySeparate(t *testing.T) {
	cands := []detect.Candidate{
		cand("wrong_turn", "ghost", 1, 3, detect.Context{}),
		{ID: "loot_secured", Category: detect.CategoryObjective, Register: detect.RegisterProgress, AgentID: "ghost", SeqStart: 4, SeqEnd: 4},
		cand("wrong_turn", "ghost", 1, 5, detect.Context{}),
	}

	cards := Collapse(cands)

	require.Len(t, cards, 3, "no cross-matching of non-adjacent runs")
	assert.Equal(t, 1, cards[0].Count)
	assert.Equal(t, 1, cards[2].Count)
}

func TestCollapse_DifferentAgentsDontMerge(t *testing.T) {
	cands := []detect.Candidate{
		cand("wrong_turn", "ghost", 1, 3, detect.Context{}),
		cand("wrong_turn", "wraith", 1, 4, detect.Context{}),
	}

	cards := Collapse(cands)
	require.Len(t, cards, 2)
}

func TestCollapse_KeepsFirstDetail(t *testing.T) {
	first := cand("locked_door", "ghost", 1, 3, detect.Context{Door: "North Door"})
	second := cand("locked_door", "ghost", 1, 4, detect.Context{Door: "South Door"})

	cards := Collapse([]detect.Candidate{first, second})

	require.Len(t, cards, 1)
	assert.Equal(t, Render(first), cards[0].Detail, "merged card keeps the first occurrence's detail")
}

func TestPresentationOrder_PriorityDescSeqDesc(t *testing.T) {
	cards := Collapse([]detect.Candidate{
		cand("wrong_turn", "ghost", 1, 3, detect.Context{}), // priority 40
		{ID: "locked_door", Category: detect.CategoryNavigation, Register: detect.RegisterFailure, Priority: 80, AgentID: "wraith", SeqStart: 5, SeqEnd: 5},
		{ID: "terminal_hacked", Category: detect.CategoryObjective, Register: detect.RegisterProgress, Priority: 60, AgentID: "ghost", SeqStart: 9, SeqEnd: 9},
	})

	ranked := PresentationOrder(cards)

	var ids []string
	for _, c := range ranked {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"locked_door", "terminal_hacked", "wrong_turn"}, ids)

	// Chronological input untouched.
	assert.Equal(t, "wrong_turn", cards[0].ID)
}

func TestPresentationOrder_TieBreakMostRecentFirst(t *testing.T) {
	a := Card{ID: "x", Priority: 70, SeqStart: 3}
	b := Card{ID: "y", Priority: 70, SeqStart: 9}

	ranked := PresentationOrder([]Card{a, b})
	assert.Equal(t, "y", ranked[0].ID, "equal priority: most recent first")
}

func TestEndToEndPresentation(t *testing.T) {
	// The reference scenario: locked_door (priority 80, seq 3) and
	// terminal_hacked (priority 60, seq 7) arrive chronologically;
	// presentation order reverses them.
	cands := []detect.Candidate{
		{ID: "locked_door", Category: detect.CategoryNavigation, Register: detect.RegisterFailure, Priority: 80, Turn: 1, AgentID: "ghost", SeqStart: 3, SeqEnd: 3},
		{ID: "terminal_hacked", Category: detect.CategoryObjective, Register: detect.RegisterProgress, Priority: 60, Turn: 2, AgentID: "ghost", SeqStart: 7, SeqEnd: 7},
	}

	cards := Collapse(cands)
	require.Len(t, cards, 2)
	assert.Equal(t, "locked_door", cards[0].ID)

	ranked := PresentationOrder(cards)
	assert.Equal(t, "locked_door", ranked[0].ID)
	assert.Equal(t, "terminal_hacked", ranked[1].ID)
}

func TestRender_NoTemplateLeaksBraces(t *testing.T) {
	for id := range map[string][]string{"locked_door": nil, "guard_closing": nil, "noise_creep": nil, "stalled_objective": nil} {
		text := Render(detect.Candidate{ID: id, SeqStart: 1})
		assert.False(t, strings.Contains(text, "{") || strings.Contains(text, "}"),
			"taxonomy %s leaked a placeholder: %q", id, text)
	}
}
