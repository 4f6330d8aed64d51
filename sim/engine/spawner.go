package engine

import (
	"math"
	"math/rand"
)

// VehicleSpawner models a homogeneous Poisson arrival process at one
// intersection: inter-arrival intervals are independent exponential
// draws with mean 1/rate. The spawner shares the fleet's random source
// so runs are reproducible under a fixed seed.
type VehicleSpawner struct {
	IntersectionID int

	rate     float64 // vehicles per second (lambda)
	speedMin float64
	speedMax float64

	sinceLast    float64
	nextInterval float64
	rng          *rand.Rand
}

// NewVehicleSpawner creates a spawner at the given intersection. A rate
// of zero or less never spawns.
func NewVehicleSpawner(intersectionID int, rate, speedMin, speedMax float64, rng *rand.Rand) *VehicleSpawner {
	s := &VehicleSpawner{
		IntersectionID: intersectionID,
		speedMin:       speedMin,
		speedMax:       speedMax,
		rng:            rng,
	}
	s.setRate(rate)
	return s
}

// Rate returns the current arrival rate in vehicles per second.
func (s *VehicleSpawner) Rate() float64 { return s.rate }

// SetRate updates the arrival rate, clamped to zero. This is one of
// the two interactive mutation points exposed to presentation layers.
// The pending interval is redrawn so a rate change takes effect
// immediately (otherwise a spawner revived from rate zero would wait on
// an infinite interval forever). Returns the clamped rate.
func (s *VehicleSpawner) SetRate(rate float64) float64 {
	s.setRate(rate)
	return s.rate
}

func (s *VehicleSpawner) setRate(rate float64) {
	if rate < 0 {
		rate = 0
	}
	s.rate = rate
	s.nextInterval = s.drawInterval()
}

// drawInterval draws the next exponential inter-arrival interval.
func (s *VehicleSpawner) drawInterval() float64 {
	if s.rate <= 0 {
		return math.Inf(1)
	}
	return s.rng.ExpFloat64() / s.rate
}

// Update accumulates elapsed time and returns the vehicles due this
// tick, possibly several when dt spans multiple intervals. The
// accumulator subtracts each consumed interval instead of resetting to
// zero; resetting would systematically stretch the gaps and break the
// Poisson rate under variable tick sizes. Spawned vehicles carry a
// placeholder id and a uniformly drawn speed; the fleet assigns real
// ids and destinations.
func (s *VehicleSpawner) Update(dt float64) []*Vehicle {
	s.sinceLast += dt

	var spawned []*Vehicle
	for s.sinceLast >= s.nextInterval {
		s.sinceLast -= s.nextInterval
		s.nextInterval = s.drawInterval()

		speed := s.speedMin + s.rng.Float64()*(s.speedMax-s.speedMin)
		spawned = append(spawned, NewVehicle(PlaceholderVehicleID, s.IntersectionID, speed))
	}
	return spawned
}
