package engine

// VehicleState enumerates the vehicle lifecycle: Idle until a route is
// assigned, Driving while in transit, Arrived at the final route node.
// Arrived is terminal; the fleet removes arrived vehicles the same
// tick.
type VehicleState string

const (
	StateIdle    VehicleState = "idle"
	StateDriving VehicleState = "driving"
	StateArrived VehicleState = "arrived"
)

// PlaceholderVehicleID marks a vehicle that has not yet been assigned
// its fleet-global id (spawners create vehicles with this id and the
// fleet replaces it).
const PlaceholderVehicleID = -1

// Vehicle is one simulated agent. All mutation happens through its
// VehicleController; everything here is plain state.
type Vehicle struct {
	ID int `json:"id"`

	// IntersectionID is the last intersection reached (the origin of
	// the current road while driving).
	IntersectionID int `json:"intersection_id"`

	// DestinationID is NoIntersection until a destination is assigned.
	DestinationID int `json:"destination_id"`

	Speed float64      `json:"speed_kmh"`
	State VehicleState `json:"state"`

	// Route is the ordered sequence of intersection ids to traverse;
	// RouteIndex points at the route entry for IntersectionID.
	Route      []int `json:"route,omitempty"`
	RouteIndex int   `json:"route_index"`

	// Progress is the fractional position along the current road,
	// nominally in [0,1]. It may transiently exceed 1 inside a tick
	// before the overshoot is folded onto the next road.
	Progress float64 `json:"progress"`

	// RoadID is NoRoad when the vehicle is not on a road.
	RoadID int `json:"road_id"`
}

// NewVehicle creates an idle vehicle at the given intersection.
func NewVehicle(id, intersectionID int, speedKmh float64) *Vehicle {
	return &Vehicle{
		ID:             id,
		IntersectionID: intersectionID,
		DestinationID:  NoIntersection,
		Speed:          speedKmh,
		State:          StateIdle,
		RoadID:         NoRoad,
	}
}

// Position returns the vehicle's display position: a linear
// interpolation between the current road's endpoints by the progress
// fraction clamped to [0,1]. This is a derived value for external
// consumers, never simulation state.
func (v *Vehicle) Position(n *RoadNetwork) (float64, float64) {
	road := n.Road(v.RoadID)
	if road == nil || v.Progress <= 0 {
		if in := n.Intersection(v.IntersectionID); in != nil {
			return in.X, in.Y
		}
		return 0, 0
	}

	from := n.Intersection(road.From)
	to := n.Intersection(road.To)
	if from == nil || to == nil {
		return 0, 0
	}

	progress := v.Progress
	if progress > 1 {
		progress = 1
	}
	x := from.X + (to.X-from.X)*progress
	y := from.Y + (to.Y-from.Y)*progress
	return x, y
}

// ReachedDestination reports whether the vehicle arrived at its
// assigned destination.
func (v *Vehicle) ReachedDestination() bool {
	return v.State == StateArrived && v.IntersectionID == v.DestinationID
}
