// Package scene models the domain snapshot that detectors read.
//
// The snapshot is produced by a reducer folding state events; the
// reducer itself belongs to the match engine and is opaque to the rest
// of kibitz. Detectors only ever read a Scene - all their writes go to
// detector state they are handed explicitly.
package scene

import (
	"github.com/roach88/kibitz/internal/match"
)

// Scene is one immutable snapshot of the match world.
// The zero value is a valid empty scene; detectors treat missing
// lookups as "no candidate", never as an error.
type Scene struct {
	MapName   string
	Rooms     map[string]Room
	Doors     []Door
	Agents    map[string]Agent
	Guards    map[string]Guard
	Terminals map[string]Terminal
	Items     map[string]Item
	Noise     Noise
}

// Room is a map location.
type Room struct {
	ID   string
	Name string
}

// Door joins two rooms. Doors are undirected for adjacency purposes.
type Door struct {
	ID     string
	Name   string
	From   string
	To     string
	Locked bool
}

// Agent is a player-controlled actor.
type Agent struct {
	ID   string
	Name string
	Room string
}

// Guard is a mobile threat. PrevRoom tracks the room it occupied on the
// previous turn, which the near-miss detector needs for "just vacated"
// checks.
type Guard struct {
	ID       string
	Name     string
	Room     string
	PrevRoom string
}

// Terminal is a hackable objective.
type Terminal struct {
	ID     string
	Name   string
	Room   string
	Hacked bool
}

// Item is a carryable object.
type Item struct {
	ID     string
	Name   string
	Room   string
	Holder string
}

// Noise is the continuous alertness signal. Value and Thresholds are
// integer basis points - floats are forbidden throughout kibitz because
// they break byte-identical recomputation.
//
// Thresholds holds the escalation boundary for each alert level in
// ascending order: crossing Thresholds[i] moves the match to level i+1.
type Noise struct {
	Level      int
	Value      int64
	Thresholds []int64
}

// Reducer is the pure state-transition function supplied by the match
// engine: (scene, event) -> scene. It must not mutate its input.
type Reducer func(Scene, match.Event) Scene

// RoomLabel resolves a room id to its human label, falling back to the
// raw id when the scene has no such room.
func (s Scene) RoomLabel(id string) string {
	if r, ok := s.Rooms[id]; ok && r.Name != "" {
		return r.Name
	}
	return id
}

// AgentLabel resolves an agent id to its human label.
func (s Scene) AgentLabel(id string) string {
	if a, ok := s.Agents[id]; ok && a.Name != "" {
		return a.Name
	}
	return id
}

// GuardLabel resolves a guard id to its human label.
func (s Scene) GuardLabel(id string) string {
	if g, ok := s.Guards[id]; ok && g.Name != "" {
		return g.Name
	}
	return id
}

// TerminalLabel resolves a terminal id to its human label.
func (s Scene) TerminalLabel(id string) string {
	if t, ok := s.Terminals[id]; ok && t.Name != "" {
		return t.Name
	}
	return id
}

// ItemLabel resolves an item id to its human label.
func (s Scene) ItemLabel(id string) string {
	if it, ok := s.Items[id]; ok && it.Name != "" {
		return it.Name
	}
	return id
}

// DoorLabel resolves a door id to its human label.
func (s Scene) DoorLabel(id string) string {
	for _, d := range s.Doors {
		if d.ID == id {
			if d.Name != "" {
				return d.Name
			}
			return id
		}
	}
	return id
}

// clone returns a copy with fresh maps so a reducer can update the next
// snapshot without mutating the previous one. The Doors and Thresholds
// slices are copied too.
func (s Scene) clone() Scene {
	out := s
	out.Rooms = copyMap(s.Rooms)
	out.Agents = copyMap(s.Agents)
	out.Guards = copyMap(s.Guards)
	out.Terminals = copyMap(s.Terminals)
	out.Items = copyMap(s.Items)
	out.Doors = append([]Door(nil), s.Doors...)
	out.Noise.Thresholds = append([]int64(nil), s.Noise.Thresholds...)
	return out
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
