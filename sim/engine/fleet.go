package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// VehicleFleet orchestrates spawners, vehicle controllers, and the
// traffic monitor. It owns the per-tick update order and the vehicle
// lifecycle, and it holds the global vehicle id counter.
type VehicleFleet struct {
	network     *RoadNetwork
	vehicles    []*Vehicle
	controllers []*VehicleController
	spawners    []*VehicleSpawner

	nextVehicleID int
	monitor       *TrafficMonitor
	rng           *rand.Rand
}

// NewVehicleFleet creates a fleet over the given network with a
// time-seeded random source. Call Seed for reproducible runs.
func NewVehicleFleet(n *RoadNetwork) *VehicleFleet {
	return &VehicleFleet{
		network: n,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed reseeds the fleet's random source, which is shared with every
// spawner, so a fixed seed makes spawn timing, speed draws, and
// destination picks reproducible.
func (f *VehicleFleet) Seed(seed int64) {
	f.rng.Seed(seed)
}

// SetMonitor attaches a traffic monitor. Vehicles added afterwards
// record their intersection passes into it.
func (f *VehicleFleet) SetMonitor(m *TrafficMonitor) {
	f.monitor = m
}

// Monitor returns the attached monitor, or nil.
func (f *VehicleFleet) Monitor() *TrafficMonitor { return f.monitor }

// Network returns the fleet's road network.
func (f *VehicleFleet) Network() *RoadNetwork { return f.network }

// AddSpawner creates a Poisson spawner at an intersection. Returns
// ErrUnknownIntersection if the intersection does not exist.
func (f *VehicleFleet) AddSpawner(intersectionID int, rate, speedMin, speedMax float64) (*VehicleSpawner, error) {
	if f.network.Intersection(intersectionID) == nil {
		return nil, fmt.Errorf("%w: id=%d", ErrUnknownIntersection, intersectionID)
	}
	s := NewVehicleSpawner(intersectionID, rate, speedMin, speedMax, f.rng)
	f.spawners = append(f.spawners, s)
	return s, nil
}

// Spawners returns the fleet's spawners in creation order.
func (f *VehicleFleet) Spawners() []*VehicleSpawner {
	result := make([]*VehicleSpawner, len(f.spawners))
	copy(result, f.spawners)
	return result
}

// Update advances the simulation by dt seconds in a fixed order:
//
//  1. advance the monitor clock and prune stale entries, then tick
//     every attached signal;
//  2. run every spawner, assigning each new vehicle a global id, a
//     controller, and (when possible) a destination;
//  3. refresh every controller's peer view with the live vehicle
//     slice — the same slice, not a snapshot, so controllers later in
//     fleet order observe the already-updated progress of earlier
//     ones (car-following depends on this);
//  4. advance every controller in fleet order;
//  5. remove arrived vehicles, walking indices downward so removals do
//     not invalidate pending ones.
func (f *VehicleFleet) Update(dt float64) {
	if f.monitor != nil {
		f.monitor.Update(dt)
	}
	for _, in := range f.network.Intersections() {
		if in.Signal != nil {
			in.Signal.Update(dt)
		}
	}

	for _, spawner := range f.spawners {
		for _, v := range spawner.Update(dt) {
			f.AddVehicle(v)
		}
	}

	for _, c := range f.controllers {
		c.SetPeers(f.vehicles)
	}

	for _, c := range f.controllers {
		c.Update(dt)
	}

	for i := len(f.vehicles) - 1; i >= 0; i-- {
		if f.vehicles[i].State == StateArrived {
			f.vehicles = append(f.vehicles[:i], f.vehicles[i+1:]...)
			f.controllers = append(f.controllers[:i], f.controllers[i+1:]...)
		}
	}
}

// AddVehicle registers a vehicle with the fleet: assigns the next
// global id, builds its controller, and attempts a random destination.
// A vehicle with no reachable destination stays Idle.
func (f *VehicleFleet) AddVehicle(v *Vehicle) *VehicleController {
	v.ID = f.nextVehicleID
	f.nextVehicleID++

	f.vehicles = append(f.vehicles, v)
	c := NewVehicleController(v, f.network, f.monitor)
	f.controllers = append(f.controllers, c)

	if dest := f.pickDestination(v.IntersectionID); dest != NoIntersection {
		// ErrNoPathFound leaves the vehicle Idle, which is the
		// expected outcome on partially connected networks.
		_ = c.SetDestination(dest)
	}
	return c
}

// pickDestination draws a uniform random destination among
// destination-eligible intersections, excluding the given one. Returns
// NoIntersection when none are eligible.
func (f *VehicleFleet) pickDestination(excludeID int) int {
	var eligible []*Intersection
	for _, in := range f.network.Intersections() {
		if in.ID != excludeID && in.IsDestination {
			eligible = append(eligible, in)
		}
	}
	if len(eligible) == 0 {
		return NoIntersection
	}
	return eligible[f.rng.Intn(len(eligible))].ID
}

// Vehicles returns a copy of the active vehicle list.
func (f *VehicleFleet) Vehicles() []*Vehicle {
	result := make([]*Vehicle, len(f.vehicles))
	copy(result, f.vehicles)
	return result
}

// Controller returns the controller for the vehicle at the given fleet
// index, or nil. Vehicles and controllers share indices.
func (f *VehicleFleet) Controller(index int) *VehicleController {
	if index < 0 || index >= len(f.controllers) {
		return nil
	}
	return f.controllers[index]
}

// NumVehicles returns the number of active vehicles.
func (f *VehicleFleet) NumVehicles() int { return len(f.vehicles) }
