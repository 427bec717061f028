package scene

import "sort"

// Adjacency is the undirected room graph built from a scene's door
// list. Neighbor lists are sorted so iteration order is deterministic.
type Adjacency map[string][]string

// BuildAdjacency constructs the adjacency graph from the scene's doors.
// Locked doors still count as adjacency: a guard behind a locked door
// is still "one room away" for tension purposes.
func BuildAdjacency(s Scene) Adjacency {
	adj := make(Adjacency)
	seen := make(map[[2]string]bool)

	add := func(a, b string) {
		if a == "" || b == "" || a == b {
			return
		}
		key := [2]string{a, b}
		if a > b {
			key = [2]string{b, a}
		}
		if seen[key] {
			return
		}
		seen[key] = true
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}

	for _, d := range s.Doors {
		add(d.From, d.To)
	}

	for room := range adj {
		sort.Strings(adj[room])
	}
	return adj
}

// Neighbors returns the sorted neighbor rooms of the given room.
// Unknown rooms have no neighbors.
func (a Adjacency) Neighbors(room string) []string {
	return a[room]
}

// Adjacent reports whether two rooms share a door.
func (a Adjacency) Adjacent(x, y string) bool {
	for _, n := range a[x] {
		if n == y {
			return true
		}
	}
	return false
}
