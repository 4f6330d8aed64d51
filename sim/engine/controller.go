package engine

import "fmt"

const (
	// safetyMarginFraction is the car-following gap, as a fraction of
	// road length, kept behind the nearest leader on the same road.
	safetyMarginFraction = 0.03

	// signalHoldPoint is the progress fraction where a vehicle waits
	// when the upcoming intersection's signal is not green for its
	// approach: just short of full entry.
	signalHoldPoint = 0.95
)

// VehicleController binds one vehicle to the network and drives its
// per-tick movement. Controllers see their peers through a live, shared
// slice the fleet refreshes each tick: a controller processed later in
// the tick observes the already-committed progress of earlier ones.
// Car-following depends on that ordering, so the peer view must not be
// replaced with a frozen snapshot.
type VehicleController struct {
	Vehicle *Vehicle

	network *RoadNetwork
	monitor *TrafficMonitor
	peers   []*Vehicle
}

// NewVehicleController creates a controller for a vehicle. The monitor
// may be nil; pass records are then skipped.
func NewVehicleController(v *Vehicle, n *RoadNetwork, monitor *TrafficMonitor) *VehicleController {
	return &VehicleController{Vehicle: v, network: n, monitor: monitor}
}

// SetPeers replaces the controller's view of all active vehicles. The
// fleet passes its own vehicle slice, not a copy.
func (c *VehicleController) SetPeers(peers []*Vehicle) {
	c.peers = peers
}

// SetDestination assigns a destination and computes a route. If the
// destination equals the current intersection the vehicle arrives
// immediately with route [current]. If no route exists the call fails
// with ErrNoPathFound and the vehicle's prior state is untouched.
func (c *VehicleController) SetDestination(destID int) error {
	v := c.Vehicle
	if c.network.Intersection(destID) == nil {
		return fmt.Errorf("%w: id=%d", ErrUnknownIntersection, destID)
	}

	if destID == v.IntersectionID {
		v.DestinationID = destID
		v.Route = []int{v.IntersectionID}
		v.RouteIndex = 0
		v.Progress = 0
		v.RoadID = NoRoad
		v.State = StateArrived
		return nil
	}

	route := FindShortestPath(c.network, v.IntersectionID, destID)
	if len(route) == 0 {
		return fmt.Errorf("%w: from=%d to=%d", ErrNoPathFound, v.IntersectionID, destID)
	}

	v.DestinationID = destID
	v.Route = route
	v.RouteIndex = 0
	v.Progress = 0
	v.State = StateDriving

	v.RoadID = NoRoad
	if len(route) > 1 {
		if road := c.network.RoadBetween(v.IntersectionID, route[1]); road != nil {
			v.RoadID = road.ID
		}
	}
	return nil
}

// Update advances the vehicle by dt seconds. Movement is the metric
// distance at the vehicle's speed converted to a progress fraction of
// the current road, clamped first by car-following, then by the
// upcoming signal. Committed progress of 1.0 or more rolls over to the
// next road, carrying the overshoot, until the route is exhausted or
// progress lands inside a road; a fast vehicle can cross several
// intersections in one tick.
func (c *VehicleController) Update(dt float64) {
	v := c.Vehicle
	if v.State != StateDriving {
		return
	}
	road := c.network.Road(v.RoadID)
	if road == nil || road.Length <= 0 {
		return
	}

	distance := v.Speed * 1000 / 3600 * dt
	tentative := v.Progress + distance/road.Length

	// Car-following: stay a margin behind the nearest leader on the
	// same road. The clamp never moves the vehicle backward.
	if leader, ok := c.nearestLeaderProgress(v); ok {
		limit := leader - safetyMarginFraction
		if limit < v.Progress {
			limit = v.Progress
		}
		if tentative > limit {
			tentative = limit
		}
	}

	// Signal: hold just short of the intersection when the approach is
	// not green. A vehicle that legally passed the hold point before
	// the phase changed is not pushed back.
	if next := c.network.Intersection(road.To); next != nil && next.Signal != nil {
		if !next.Signal.IsGreenFor(v.IntersectionID) {
			hold := signalHoldPoint
			if v.Progress > hold {
				hold = v.Progress
			}
			if tentative > hold {
				tentative = hold
			}
		}
	}

	v.Progress = tentative

	for v.Progress >= 1.0 {
		c.advanceToNextIntersection()
		if v.State == StateArrived {
			break
		}
	}
}

// nearestLeaderProgress returns the minimum progress among other
// driving vehicles on the same road strictly ahead of this one.
func (c *VehicleController) nearestLeaderProgress(v *Vehicle) (float64, bool) {
	found := false
	var nearest float64
	for _, other := range c.peers {
		if other == v || other.State != StateDriving || other.RoadID != v.RoadID {
			continue
		}
		if other.Progress <= v.Progress {
			continue
		}
		if !found || other.Progress < nearest {
			nearest = other.Progress
			found = true
		}
	}
	return nearest, found
}

// advanceToNextIntersection moves the vehicle to the next route node,
// folding the progress overshoot onto the new road. At the final route
// node the vehicle arrives: road cleared, progress zeroed.
func (c *VehicleController) advanceToNextIntersection() {
	v := c.Vehicle
	previous := v.IntersectionID

	v.RouteIndex++
	v.IntersectionID = v.Route[v.RouteIndex]
	v.Progress -= 1.0

	if v.RouteIndex >= len(v.Route)-1 {
		v.State = StateArrived
		v.Progress = 0
		v.RoadID = NoRoad
		if c.monitor != nil {
			c.monitor.RecordPass(v.IntersectionID, previous, NoIntersection)
		}
		return
	}

	next := v.Route[v.RouteIndex+1]
	v.RoadID = NoRoad
	if road := c.network.RoadBetween(v.IntersectionID, next); road != nil {
		v.RoadID = road.ID
	}
	if c.monitor != nil {
		c.monitor.RecordPass(v.IntersectionID, previous, next)
	}
}
