package engine

import "sort"

// Simulation bundles a network, fleet, and monitor behind a single
// stepping surface and produces JSON-ready snapshots for presentation
// layers. It adds nothing to the core semantics; Fleet.Update does the
// actual work.
type Simulation struct {
	Network *RoadNetwork
	Fleet   *VehicleFleet
	Monitor *TrafficMonitor

	elapsed float64
	ticks   int
}

// NewSimulation wires a fleet and monitor over the given network.
func NewSimulation(n *RoadNetwork, windowSeconds float64) *Simulation {
	fleet := NewVehicleFleet(n)
	monitor := NewTrafficMonitor(windowSeconds)
	fleet.SetMonitor(monitor)
	return &Simulation{
		Network: n,
		Fleet:   fleet,
		Monitor: monitor,
	}
}

// Step advances the simulation by dt seconds.
func (s *Simulation) Step(dt float64) {
	s.Fleet.Update(dt)
	s.elapsed += dt
	s.ticks++
}

// StepN advances the simulation n ticks of dt seconds each.
func (s *Simulation) StepN(dt float64, n int) {
	for i := 0; i < n; i++ {
		s.Step(dt)
	}
}

// Elapsed returns total simulated time in seconds.
func (s *Simulation) Elapsed() float64 { return s.elapsed }

// Ticks returns the number of steps taken.
func (s *Simulation) Ticks() int { return s.ticks }

// VehicleSnapshot is the externally visible view of one vehicle,
// including its interpolated display position.
type VehicleSnapshot struct {
	ID             int          `json:"id"`
	X              float64      `json:"x"`
	Y              float64      `json:"y"`
	State          VehicleState `json:"state"`
	SpeedKmh       float64      `json:"speed_kmh"`
	IntersectionID int          `json:"intersection_id"`
	DestinationID  int          `json:"destination_id"`
	RoadID         int          `json:"road_id"`
	Progress       float64      `json:"progress"`
}

// SignalSnapshot is the externally visible view of one signal.
type SignalSnapshot struct {
	IntersectionID int    `json:"intersection_id"`
	Kind           string `json:"kind"` // "simple" or "phased"

	// Phased controllers only.
	PhaseIndex int           `json:"phase_index,omitempty"`
	Phases     []SignalPhase `json:"phases,omitempty"`
	Elapsed    float64       `json:"elapsed_seconds"`

	// Simple signals only.
	Green bool `json:"green,omitempty"`
}

// DirectionRate is one in-window direction count for an intersection.
// To is NoIntersection (-1) for vehicles that arrived there.
type DirectionRate struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Count int `json:"count"`
}

// IntersectionRates aggregates the monitor's in-window counts for one
// intersection.
type IntersectionRates struct {
	IntersectionID int             `json:"intersection_id"`
	Total          int             `json:"total"`
	Directions     []DirectionRate `json:"directions"`
}

// SortDirectionRates orders direction counts by (From, To) so snapshots
// of identical runs serialize identically.
func SortDirectionRates(dirs []DirectionRate) {
	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].From != dirs[j].From {
			return dirs[i].From < dirs[j].From
		}
		return dirs[i].To < dirs[j].To
	})
}

// SimulationState is the complete read-only snapshot consumed by the
// API, WebSocket, and MCP layers.
type SimulationState struct {
	Time         float64             `json:"time"`
	Tick         int                 `json:"tick"`
	VehicleCount int                 `json:"vehicle_count"`
	Vehicles     []VehicleSnapshot   `json:"vehicles"`
	Signals      []SignalSnapshot    `json:"signals,omitempty"`
	Rates        []IntersectionRates `json:"rates,omitempty"`
}

// Snapshot builds the current SimulationState.
func (s *Simulation) Snapshot() *SimulationState {
	state := &SimulationState{
		Time: s.elapsed,
		Tick: s.ticks,
	}

	vehicles := s.Fleet.Vehicles()
	state.VehicleCount = len(vehicles)
	state.Vehicles = make([]VehicleSnapshot, 0, len(vehicles))
	for _, v := range vehicles {
		x, y := v.Position(s.Network)
		state.Vehicles = append(state.Vehicles, VehicleSnapshot{
			ID:             v.ID,
			X:              x,
			Y:              y,
			State:          v.State,
			SpeedKmh:       v.Speed,
			IntersectionID: v.IntersectionID,
			DestinationID:  v.DestinationID,
			RoadID:         v.RoadID,
			Progress:       v.Progress,
		})
	}

	for _, in := range s.Network.Intersections() {
		if in.Signal == nil {
			continue
		}
		snap := SignalSnapshot{IntersectionID: in.ID}
		switch sig := in.Signal.(type) {
		case *SignalController:
			snap.Kind = "phased"
			snap.PhaseIndex = sig.CurrentPhaseIndex()
			snap.Phases = sig.Phases()
			snap.Elapsed = sig.Elapsed()
		case *SimpleSignal:
			snap.Kind = "simple"
			snap.Green = sig.IsGreen()
		default:
			snap.Kind = "custom"
		}
		state.Signals = append(state.Signals, snap)
	}

	if s.Monitor != nil {
		for _, in := range s.Network.Intersections() {
			rates := s.Monitor.RatesForIntersection(in.ID)
			if len(rates) == 0 {
				continue
			}
			entry := IntersectionRates{IntersectionID: in.ID}
			for key, count := range rates {
				entry.Total += count
				entry.Directions = append(entry.Directions, DirectionRate{
					From:  key.From,
					To:    key.To,
					Count: count,
				})
			}
			SortDirectionRates(entry.Directions)
			state.Rates = append(state.Rates, entry)
		}
	}

	return state
}
