package engine

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func createTestSpawner(t *testing.T, rate float64) *VehicleSpawner {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	return NewVehicleSpawner(0, rate, 30, 60, rng)
}

func TestSpawner_ZeroRateNeverSpawns(t *testing.T) {
	s := createTestSpawner(t, 0)

	total := 0
	for i := 0; i < 1000; i++ {
		total += len(s.Update(1.0))
	}
	if total != 0 {
		t.Errorf("zero-rate spawner produced %d vehicles over 1000s", total)
	}
}

func TestSpawner_NegativeRateClampsToZero(t *testing.T) {
	s := createTestSpawner(t, 1)

	if got := s.SetRate(-3); got != 0 {
		t.Fatalf("expected clamped rate 0, got %g", got)
	}
	if len(s.Update(100)) != 0 {
		t.Error("clamped-to-zero spawner still spawned")
	}
}

func TestSpawner_RateRecoveryAfterZero(t *testing.T) {
	s := createTestSpawner(t, 0)

	// Accumulate time against an infinite interval, then revive the
	// rate; the pending interval must be redrawn to a finite one.
	s.Update(50)
	s.SetRate(2)

	total := 0
	for i := 0; i < 100; i++ {
		total += len(s.Update(1.0))
	}
	if total == 0 {
		t.Error("spawner never recovered after rate was raised from zero")
	}
}

func TestSpawner_EmpiricalMeanInterval(t *testing.T) {
	const (
		rate     = 0.5 // one vehicle every 2s on average
		duration = 20000.0
		dt       = 0.1
	)
	s := createTestSpawner(t, rate)

	var arrivals []float64
	clock := 0.0
	for clock < duration {
		clock += dt
		for range s.Update(dt) {
			arrivals = append(arrivals, clock)
		}
	}

	if len(arrivals) < 100 {
		t.Fatalf("too few arrivals for a stable estimate: %d", len(arrivals))
	}

	intervals := make([]float64, len(arrivals)-1)
	for i := 1; i < len(arrivals); i++ {
		intervals[i-1] = arrivals[i] - arrivals[i-1]
	}

	mean := stat.Mean(intervals, nil)
	want := 1 / rate
	// Tick quantization adds up to dt of jitter per interval; allow 10%.
	if math.Abs(mean-want) > want*0.1 {
		t.Errorf("empirical mean interval %g, expected about %g", mean, want)
	}

	// Exponential intervals have stddev equal to the mean.
	sd := stat.StdDev(intervals, nil)
	if math.Abs(sd-want) > want*0.2 {
		t.Errorf("empirical interval stddev %g, expected about %g", sd, want)
	}
}

func TestSpawner_MultipleSpawnsPerTick(t *testing.T) {
	s := createTestSpawner(t, 10)

	// At 10 vehicles/s a 5 second tick spans many intervals; all of
	// them must be honored in one Update.
	spawned := s.Update(5.0)
	if len(spawned) < 20 {
		t.Errorf("expected a burst of spawns across a long tick, got %d", len(spawned))
	}
	for i, v := range spawned {
		if v.ID != PlaceholderVehicleID {
			t.Errorf("spawn %d: expected placeholder id, got %d", i, v.ID)
		}
		if v.Speed < 30 || v.Speed > 60 {
			t.Errorf("spawn %d: speed %g outside [30, 60]", i, v.Speed)
		}
		if v.State != StateIdle {
			t.Errorf("spawn %d: expected Idle, got %s", i, v.State)
		}
	}
}

func TestSpawner_DeterministicUnderSeed(t *testing.T) {
	run := func() []int {
		rng := rand.New(rand.NewSource(7))
		s := NewVehicleSpawner(0, 1, 40, 40, rng)
		var counts []int
		for i := 0; i < 50; i++ {
			counts = append(counts, len(s.Update(0.5)))
		}
		return counts
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("tick %d: runs diverged (%d vs %d)", i, first[i], second[i])
		}
	}
}
