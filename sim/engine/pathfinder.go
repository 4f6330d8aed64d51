package engine

// FindShortestPath runs a breadth-first search from start to end,
// treating every road as unit weight. The result minimizes hop count;
// among equal-hop paths the winner is determined by adjacency-list
// creation order, which makes the search deterministic (but not a
// shortest-distance result — road lengths and speed limits are
// ignored).
//
// Returns [start] when start == end, and an empty slice when end is
// unreachable. Unreachable is a normal outcome, not an error.
func FindShortestPath(n *RoadNetwork, start, end int) []int {
	if n.Intersection(start) == nil || n.Intersection(end) == nil {
		return nil
	}
	if start == end {
		return []int{start}
	}

	type queued struct {
		id   int
		path []int
	}
	queue := []queued{{id: start, path: []int{start}}}
	visited := map[int]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		roads := n.adjacency[current.id]
		for _, road := range roads {
			neighbor := road.To
			if visited[neighbor] {
				continue
			}

			path := make([]int, len(current.path), len(current.path)+1)
			copy(path, current.path)
			path = append(path, neighbor)

			if neighbor == end {
				return path
			}

			visited[neighbor] = true
			queue = append(queue, queued{id: neighbor, path: path})
		}
	}

	return nil
}
