package scene

import (
	"github.com/roach88/kibitz/internal/match"
)

// DefaultReducer folds the reference engine's state deltas into a
// scene. Engines with richer state models supply their own Reducer;
// this one understands the delta vocabulary the reference engine emits
// inside StateUpdated events and ignores everything else.
//
// It is pure: the input scene is never mutated.
func DefaultReducer(s Scene, ev match.Event) Scene {
	switch p := ev.Payload.(type) {
	case match.MatchStarted:
		next := s.clone()
		next.MapName = p.MapName
		for _, id := range p.Agents {
			if _, ok := next.Agents[id]; !ok {
				next.Agents[id] = Agent{ID: id}
			}
		}
		return next
	case match.StateUpdated:
		return applyDelta(s, p.Delta)
	default:
		return s
	}
}

// applyDelta merges one delta document into the scene. Unknown keys and
// malformed entries are skipped: a defensive gap in the delta must
// never fail a detection pass.
func applyDelta(s Scene, delta match.DocObject) Scene {
	next := s.clone()

	if rooms, ok := delta["rooms"].(match.DocArray); ok {
		for _, v := range rooms {
			obj, ok := v.(match.DocObject)
			if !ok {
				continue
			}
			id := docStr(obj, "id")
			if id == "" {
				continue
			}
			next.Rooms[id] = Room{ID: id, Name: docStr(obj, "name")}
		}
	}

	if doors, ok := delta["doors"].(match.DocArray); ok {
		for _, v := range doors {
			obj, ok := v.(match.DocObject)
			if !ok {
				continue
			}
			id := docStr(obj, "id")
			if id == "" {
				continue
			}
			door := Door{
				ID:     id,
				Name:   docStr(obj, "name"),
				From:   docStr(obj, "from"),
				To:     docStr(obj, "to"),
				Locked: docBool(obj, "locked"),
			}
			replaced := false
			for i, existing := range next.Doors {
				if existing.ID == id {
					next.Doors[i] = door
					replaced = true
					break
				}
			}
			if !replaced {
				next.Doors = append(next.Doors, door)
			}
		}
	}

	if agents, ok := delta["agents"].(match.DocArray); ok {
		for _, v := range agents {
			obj, ok := v.(match.DocObject)
			if !ok {
				continue
			}
			id := docStr(obj, "id")
			if id == "" {
				continue
			}
			agent := next.Agents[id]
			agent.ID = id
			if name := docStr(obj, "name"); name != "" {
				agent.Name = name
			}
			if room := docStr(obj, "room"); room != "" {
				agent.Room = room
			}
			next.Agents[id] = agent
		}
	}

	if guards, ok := delta["guards"].(match.DocArray); ok {
		for _, v := range guards {
			obj, ok := v.(match.DocObject)
			if !ok {
				continue
			}
			id := docStr(obj, "id")
			if id == "" {
				continue
			}
			guard := next.Guards[id]
			guard.ID = id
			if name := docStr(obj, "name"); name != "" {
				guard.Name = name
			}
			if room := docStr(obj, "room"); room != "" && room != guard.Room {
				guard.PrevRoom = guard.Room
				guard.Room = room
			}
			next.Guards[id] = guard
		}
	}

	if terminals, ok := delta["terminals"].(match.DocArray); ok {
		for _, v := range terminals {
			obj, ok := v.(match.DocObject)
			if !ok {
				continue
			}
			id := docStr(obj, "id")
			if id == "" {
				continue
			}
			term := next.Terminals[id]
			term.ID = id
			if name := docStr(obj, "name"); name != "" {
				term.Name = name
			}
			if room := docStr(obj, "room"); room != "" {
				term.Room = room
			}
			if _, present := obj["hacked"]; present {
				term.Hacked = docBool(obj, "hacked")
			}
			next.Terminals[id] = term
		}
	}

	if items, ok := delta["items"].(match.DocArray); ok {
		for _, v := range items {
			obj, ok := v.(match.DocObject)
			if !ok {
				continue
			}
			id := docStr(obj, "id")
			if id == "" {
				continue
			}
			item := next.Items[id]
			item.ID = id
			if name := docStr(obj, "name"); name != "" {
				item.Name = name
			}
			if room := docStr(obj, "room"); room != "" {
				item.Room = room
			}
			if _, present := obj["holder"]; present {
				item.Holder = docStr(obj, "holder")
			}
			next.Items[id] = item
		}
	}

	if noise, ok := delta["noise"].(match.DocObject); ok {
		if v, ok := noise["level"].(match.DocInt); ok {
			next.Noise.Level = int(v)
		}
		if v, ok := noise["value"].(match.DocInt); ok {
			next.Noise.Value = int64(v)
		}
		if arr, ok := noise["thresholds"].(match.DocArray); ok {
			thresholds := make([]int64, 0, len(arr))
			for _, tv := range arr {
				if n, ok := tv.(match.DocInt); ok {
					thresholds = append(thresholds, int64(n))
				}
			}
			next.Noise.Thresholds = thresholds
		}
	}

	return next
}

func docStr(obj match.DocObject, key string) string {
	if s, ok := obj[key].(match.DocString); ok {
		return string(s)
	}
	return ""
}

func docBool(obj match.DocObject, key string) bool {
	if b, ok := obj[key].(match.DocBool); ok {
		return bool(b)
	}
	return false
}
