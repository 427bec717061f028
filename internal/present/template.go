// Package present turns raw candidates into presentation-ready moment
// cards: deterministic flavor text plus adjacent-run collapsing.
package present

import (
	"fmt"
	"strings"

	"github.com/roach88/kibitz/internal/detect"
	"github.com/roach88/kibitz/internal/match"
)

// titles maps taxonomy ids to the fixed card title. Titles take part in
// the collapse key, so they must not vary per occurrence.
var titles = map[string]string{
	"schema_fumble":     "Garbled orders",
	"locked_door":       "Locked door",
	"wrong_turn":        "Wrong turn",
	"overreach":         "Out of reach",
	"fumbled_pickup":    "Fumbled pickup",
	"terminal_rebuffed": "Terminal rebuffed",
	"tool_dead":         "Tool dead",
	"guard_blocked":     "Guard in the way",
	"redundant_hack":    "Already hacked",
	"terminal_hacked":   "Terminal hacked",
	"hack_in_progress":  "Hack under way",
	"loot_secured":      "Loot secured",
	"door_unlocked":     "Door unlocked",
	"spotted":           "Spotted",
	"clean_getaway":     "Clean getaway",
	"distraction_set":   "Distraction set",
	"guard_lured":       "Guard lured",
	"camera_dark":       "Camera dark",
	"alarm_raised":      "Alarm raised",
	"guard_closing":     "Guard closing in",
	"stalled_objective": "Stalled out",
	"noise_creep":       "Noise creeping up",
	"near_miss":         "Near miss",
}

// icons maps categories to the symbolic icon name a UI renders.
var icons = map[detect.Category]string{
	detect.CategoryNavigation: "compass",
	detect.CategoryStealth:    "eye",
	detect.CategoryObjective:  "target",
	detect.CategoryEquipment:  "wrench",
	detect.CategorySystem:     "glitch",
}

// templates lists the candidate detail sentences per taxonomy id.
// Placeholders in {braces} resolve against the candidate's context.
// Variant choice is a pure function of candidate identity, so the same
// candidate always renders the same sentence while two occurrences of
// the same moment type can differ.
var templates = map[string][]string{
	"schema_fumble": {
		"The orders came through garbled and the engine had to improvise.",
		"An unparseable action forced the fallback ruling.",
	},
	"locked_door": {
		"{door} refuses to budge.",
		"A rattled handle, but {door} stays shut.",
		"No luck: {door} is locked tight.",
	},
	"wrong_turn": {
		"That way leads nowhere.",
		"A dead end out of {agent_room}.",
	},
	"overreach": {
		"The target is out of reach from {agent_room}.",
		"Too far away to pull that off.",
	},
	"fumbled_pickup": {
		"{item} is not where it was expected.",
		"Grasping at empty air where {item} should be.",
	},
	"terminal_rebuffed": {
		"{terminal} rejects the attempt.",
		"No session on {terminal} this time.",
	},
	"tool_dead": {
		"The tool is out of charge.",
	},
	"guard_blocked": {
		"{guard} stands squarely in the way.",
	},
	"redundant_hack": {
		"{terminal} was already cracked.",
	},
	"terminal_hacked": {
		"{terminal} belongs to the intruders now.",
		"Root access on {terminal}.",
	},
	"hack_in_progress": {
		"Code scrolls across {terminal}.",
	},
	"loot_secured": {
		"{item} disappears into the bag.",
		"{item} secured.",
	},
	"door_unlocked": {
		"{door} clicks open.",
	},
	"spotted": {
		"{guard} looks straight at the intruder.",
		"Cover blown in {room}.",
	},
	"clean_getaway": {
		"Out clean, nothing but footprints.",
	},
	"distraction_set": {
		"A diversion is in place in {room}.",
	},
	"guard_lured": {
		"{guard} takes the bait.",
	},
	"camera_dark": {
		"One less camera watching {room}.",
	},
	"alarm_raised": {
		"Klaxons. Everyone knows now.",
		"The alarm screams through {room}.",
	},
	"guard_closing": {
		"{guard} is one door away, {guard_room} to {agent_room}.",
		"{guard} prowls {guard_room}, next to {agent_room}.",
	},
	"stalled_objective": {
		"{stall_turns} turns without progress.",
		"The clock ticks: {stall_turns} stalled turns.",
	},
	"noise_creep": {
		"Noise at {percent}% of the way to the next alert level.",
		"The needle climbs: {percent}% toward escalation.",
	},
	"near_miss": {
		"{guard} and the intruder share {room} for a heartbeat.",
		"A whisker from {guard} in {room}.",
	},
}

// generic is the context-free fallback sentence per taxonomy id, used
// when a selected template references a context field the candidate
// does not carry. A broken "{door}" literal must never reach a viewer.
var generic = map[string]string{
	"schema_fumble":     "An action the engine could not parse.",
	"locked_door":       "A locked door blocks the way.",
	"wrong_turn":        "A move that led nowhere.",
	"overreach":         "An attempt made from too far away.",
	"fumbled_pickup":    "A pickup that found nothing.",
	"terminal_rebuffed": "A terminal refused the attempt.",
	"tool_dead":         "A tool with no charge left.",
	"guard_blocked":     "A guard blocked the attempt.",
	"redundant_hack":    "A terminal that was already cracked.",
	"terminal_hacked":   "A terminal fell.",
	"hack_in_progress":  "A hack is under way.",
	"loot_secured":      "Loot changed hands.",
	"door_unlocked":     "A door came open.",
	"spotted":           "An intruder was seen.",
	"clean_getaway":     "A clean escape.",
	"distraction_set":   "A diversion is in place.",
	"guard_lured":       "A guard took the bait.",
	"camera_dark":       "A camera went dark.",
	"alarm_raised":      "The alarm went up.",
	"guard_closing":     "A guard is one room away.",
	"stalled_objective": "No progress for several turns.",
	"noise_creep":       "The noise level is creeping up.",
	"near_miss":         "A guard passed within a whisker.",
}

// Title returns the fixed card title for a taxonomy id, falling back to
// the id itself for unknown taxonomy entries.
func Title(id string) string {
	if t, ok := titles[id]; ok {
		return t
	}
	return id
}

// Icon returns the symbolic icon name for a category.
func Icon(cat detect.Category) string {
	if ic, ok := icons[cat]; ok {
		return ic
	}
	return "dot"
}

// Render produces the detail sentence for a candidate.
//
// Variant selection is seeded ONLY by candidate identity
// (id:agent:turn:seqStart): recomputing the same candidate on another
// machine or render yields the same text. Do not substitute an RNG
// here - determinism of the whole derived artifact depends on it.
func Render(c detect.Candidate) string {
	list := templates[c.ID]
	if len(list) == 0 {
		if g, ok := generic[c.ID]; ok {
			return g
		}
		return Title(c.ID)
	}

	seed := fmt.Sprintf("%s:%s:%d:%d", c.ID, c.AgentID, c.Turn, c.SeqStart)
	idx := match.HashDomainUint64(match.DomainTemplate, []byte(seed)) % uint64(len(list))

	text, ok := substitute(list[idx], c.Context)
	if !ok {
		if g, okG := generic[c.ID]; okG {
			return g
		}
		return Title(c.ID)
	}
	return text
}

// substitute resolves {field} placeholders against the context.
// Returns ok=false when any referenced field is absent, signalling the
// caller to use the generic sentence instead.
func substitute(tmpl string, ctx detect.Context) (string, bool) {
	var b strings.Builder
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), true
		}
		closeIdx := strings.IndexByte(rest[open:], '}')
		if closeIdx < 0 {
			b.WriteString(rest)
			return b.String(), true
		}
		closeIdx += open

		b.WriteString(rest[:open])
		name := rest[open+1 : closeIdx]
		val, ok := ctx.Field(name)
		if !ok {
			return "", false
		}
		b.WriteString(val)
		rest = rest[closeIdx+1:]
	}
}
