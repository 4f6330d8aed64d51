package engine

import (
	"reflect"
	"testing"
)

func TestMonitor_WindowFloor(t *testing.T) {
	m := NewTrafficMonitor(0.2)
	if m.WindowSeconds() != 1 {
		t.Errorf("expected window floored to 1s, got %g", m.WindowSeconds())
	}
}

func TestMonitor_RecordAndCount(t *testing.T) {
	m := NewTrafficMonitor(60)

	m.RecordPass(5, 1, 2)
	m.RecordPass(5, 1, 2)
	m.RecordPass(5, 3, NoIntersection)
	m.RecordPass(9, 1, 5)

	rates := m.RatesForIntersection(5)
	want := map[DirectionKey]int{
		{From: 1, To: 2}:              2,
		{From: 3, To: NoIntersection}: 1,
	}
	if !reflect.DeepEqual(rates, want) {
		t.Errorf("expected %v, got %v", want, rates)
	}
	if m.TotalRateForIntersection(5) != 3 {
		t.Errorf("expected total 3, got %d", m.TotalRateForIntersection(5))
	}
	if m.TotalRateForIntersection(9) != 1 {
		t.Errorf("expected total 1, got %d", m.TotalRateForIntersection(9))
	}
	if m.TotalRateForIntersection(777) != 0 {
		t.Error("unknown intersection should count zero")
	}
}

// TestMonitor_WindowExpiry replays the reference sequence: record a
// pass at t=0 with a 60s window, advance 61s, and the count drops to
// zero.
func TestMonitor_WindowExpiry(t *testing.T) {
	m := NewTrafficMonitor(60)

	m.RecordPass(1, 0, 2)
	if m.TotalRateForIntersection(1) != 1 {
		t.Fatalf("expected 1 before expiry, got %d", m.TotalRateForIntersection(1))
	}

	m.Update(61)
	if got := m.TotalRateForIntersection(1); got != 0 {
		t.Errorf("expected 0 after window expiry, got %d", got)
	}
}

func TestMonitor_PartialPruning(t *testing.T) {
	m := NewTrafficMonitor(10)

	m.RecordPass(1, 0, 2) // t=0
	m.Update(6)
	m.RecordPass(1, 0, 2) // t=6
	m.Update(5)           // t=11: cutoff 1, first event pruned

	if got := m.TotalRateForIntersection(1); got != 1 {
		t.Errorf("expected 1 surviving event, got %d", got)
	}

	m.Update(10) // t=21: cutoff 11, second event pruned
	if got := m.TotalRateForIntersection(1); got != 0 {
		t.Errorf("expected 0 after full expiry, got %d", got)
	}
}

func TestMonitor_BoundaryEventSurvives(t *testing.T) {
	m := NewTrafficMonitor(10)

	m.RecordPass(1, 0, 2) // t=0
	m.Update(10)          // cutoff exactly 0; pruning is strict (< cutoff)

	if got := m.TotalRateForIntersection(1); got != 1 {
		t.Errorf("event exactly at the window edge should survive, got %d", got)
	}
}

func TestMonitor_IgnoresNonPositiveDelta(t *testing.T) {
	m := NewTrafficMonitor(10)
	m.Update(5)
	m.Update(0)
	m.Update(-3)
	if m.Time() != 5 {
		t.Errorf("expected clock 5, got %g", m.Time())
	}
}

func TestMonitor_AllRates(t *testing.T) {
	m := NewTrafficMonitor(60)
	m.RecordPass(1, 0, 2)
	m.RecordPass(2, 1, 3)
	m.RecordPass(2, 1, 3)

	all := m.AllRates()
	if len(all) != 2 {
		t.Fatalf("expected 2 intersections, got %d", len(all))
	}
	if all[2][DirectionKey{From: 1, To: 3}] != 2 {
		t.Errorf("expected count 2 at intersection 2, got %v", all[2])
	}
}

func TestMonitor_Clear(t *testing.T) {
	m := NewTrafficMonitor(60)
	m.RecordPass(1, 0, 2)
	m.Update(5)

	m.Clear()
	if m.Time() != 0 {
		t.Errorf("clock not reset: %g", m.Time())
	}
	if len(m.AllRates()) != 0 {
		t.Error("events survived Clear")
	}
}
