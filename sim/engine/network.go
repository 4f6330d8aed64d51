package engine

import "fmt"

// NoIntersection is the sentinel for "no intersection id" (unset
// destination, arrival exit direction, and similar).
const NoIntersection = -1

// NoRoad is the sentinel for "not currently on a road".
const NoRoad = -1

// Intersection is a node of the road graph: a spawn point, transit
// point, and/or trip destination. ID and position are immutable after
// creation; IsDestination and Signal may change before or during a run.
type Intersection struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	IsDestination bool    `json:"is_destination"`

	// Signal gates which approach directions may enter the
	// intersection. Nil means the intersection is unsignaled.
	Signal Signal `json:"-"`
}

// Road is a directed edge of the road graph. A "two-way" road is two
// independent Road records. Immutable after creation.
type Road struct {
	ID         int     `json:"id"`
	From       int     `json:"from"`
	To         int     `json:"to"`
	Length     float64 `json:"length_m"`
	SpeedLimit float64 `json:"speed_limit_kmh"`
	Lanes      int     `json:"lanes"`
}

// RoadNetwork owns intersections and directed roads plus an adjacency
// index. Outgoing roads are kept in creation order; that order is the
// tie-break in pathfinding and the iteration order for destination
// draws, so it must stay stable.
type RoadNetwork struct {
	intersections map[int]*Intersection
	roads         map[int]*Road
	order         []int           // intersection ids in creation order
	adjacency     map[int][]*Road // outgoing roads in creation order

	intersectionCounter int
	roadCounter         int
}

// NewRoadNetwork returns an empty network.
func NewRoadNetwork() *RoadNetwork {
	return &RoadNetwork{
		intersections: make(map[int]*Intersection),
		roads:         make(map[int]*Road),
		adjacency:     make(map[int][]*Road),
	}
}

// AddIntersection creates a new intersection with the next sequential
// id. Always succeeds. New intersections are destination-eligible;
// callers may clear the flag.
func (n *RoadNetwork) AddIntersection(name string, x, y float64) *Intersection {
	in := &Intersection{
		ID:            n.intersectionCounter,
		Name:          name,
		X:             x,
		Y:             y,
		IsDestination: true,
	}
	n.intersections[in.ID] = in
	n.adjacency[in.ID] = nil
	n.order = append(n.order, in.ID)
	n.intersectionCounter++
	return in
}

// AddRoad creates a directed road between two existing intersections.
// Returns ErrInvalidReference if either endpoint is unknown; in that
// case the network is unchanged.
func (n *RoadNetwork) AddRoad(from, to int, length, speedLimit float64, lanes int) (*Road, error) {
	if _, ok := n.intersections[from]; !ok {
		return nil, fmt.Errorf("%w: from_id=%d", ErrInvalidReference, from)
	}
	if _, ok := n.intersections[to]; !ok {
		return nil, fmt.Errorf("%w: to_id=%d", ErrInvalidReference, to)
	}
	r := &Road{
		ID:         n.roadCounter,
		From:       from,
		To:         to,
		Length:     length,
		SpeedLimit: speedLimit,
		Lanes:      lanes,
	}
	n.roads[r.ID] = r
	n.adjacency[from] = append(n.adjacency[from], r)
	n.roadCounter++
	return r, nil
}

// AddTwoWayRoad creates two independent directed roads, one per
// direction. Returns the forward and reverse roads.
func (n *RoadNetwork) AddTwoWayRoad(a, b int, length, speedLimit float64, lanes int) (*Road, *Road, error) {
	fwd, err := n.AddRoad(a, b, length, speedLimit, lanes)
	if err != nil {
		return nil, nil, err
	}
	rev, err := n.AddRoad(b, a, length, speedLimit, lanes)
	if err != nil {
		return nil, nil, err
	}
	return fwd, rev, nil
}

// Intersection returns the intersection with the given id, or nil.
func (n *RoadNetwork) Intersection(id int) *Intersection {
	return n.intersections[id]
}

// Road returns the road with the given id, or nil.
func (n *RoadNetwork) Road(id int) *Road {
	return n.roads[id]
}

// OutgoingRoads returns the roads leaving an intersection in creation
// order. Returns ErrUnknownIntersection for an unknown id.
func (n *RoadNetwork) OutgoingRoads(id int) ([]*Road, error) {
	roads, ok := n.adjacency[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrUnknownIntersection, id)
	}
	return roads, nil
}

// Neighbors returns the intersections reachable over one outgoing road,
// in creation order of those roads.
func (n *RoadNetwork) Neighbors(id int) ([]*Intersection, error) {
	roads, err := n.OutgoingRoads(id)
	if err != nil {
		return nil, err
	}
	neighbors := make([]*Intersection, 0, len(roads))
	for _, r := range roads {
		neighbors = append(neighbors, n.intersections[r.To])
	}
	return neighbors, nil
}

// RoadBetween returns the first road from one intersection to another,
// or nil. Directionality matters: a reverse road is a distinct entity.
func (n *RoadNetwork) RoadBetween(from, to int) *Road {
	for _, r := range n.adjacency[from] {
		if r.To == to {
			return r
		}
	}
	return nil
}

// Intersections returns all intersections in creation order.
func (n *RoadNetwork) Intersections() []*Intersection {
	result := make([]*Intersection, 0, len(n.order))
	for _, id := range n.order {
		result = append(result, n.intersections[id])
	}
	return result
}

// Roads returns all roads in creation order.
func (n *RoadNetwork) Roads() []*Road {
	result := make([]*Road, 0, len(n.roads))
	for id := 0; id < n.roadCounter; id++ {
		if r, ok := n.roads[id]; ok {
			result = append(result, r)
		}
	}
	return result
}

// NumIntersections returns the number of intersections.
func (n *RoadNetwork) NumIntersections() int { return len(n.intersections) }

// NumRoads returns the number of roads.
func (n *RoadNetwork) NumRoads() int { return len(n.roads) }

// AttachSignal installs a signal on an intersection. Passing nil
// removes any existing signal.
func (n *RoadNetwork) AttachSignal(id int, s Signal) error {
	in, ok := n.intersections[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", ErrUnknownIntersection, id)
	}
	in.Signal = s
	return nil
}
