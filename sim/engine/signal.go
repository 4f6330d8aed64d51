package engine

import "fmt"

// MinPhaseDuration is the floor for any signal phase duration, in
// seconds. Adjustments that would go below it are clamped, not
// rejected.
const MinPhaseDuration = 1.0

// Signal is the capability a vehicle controller needs from any signal
// variant: "is this approach direction clear to proceed". Approach
// directions are identified by the id of the intersection the vehicle
// is coming from. A nil Signal on an intersection means no signal.
type Signal interface {
	// Update advances the signal's internal clock by dt seconds.
	Update(dt float64)
	// IsGreenFor reports whether traffic arriving from the given
	// intersection may enter.
	IsGreenFor(approachID int) bool
}

// SimpleSignal is the legacy two-state red/green timer. While green it
// admits every approach; while red it admits none.
type SimpleSignal struct {
	GreenDuration float64
	RedDuration   float64

	elapsed float64
	red     bool
}

// NewSimpleSignal creates a simple signal that starts green. Durations
// are clamped to MinPhaseDuration.
func NewSimpleSignal(greenDuration, redDuration float64) *SimpleSignal {
	return &SimpleSignal{
		GreenDuration: clampDuration(greenDuration),
		RedDuration:   clampDuration(redDuration),
	}
}

// Update advances the timer, flipping between green and red. Like the
// phased controller, elapsed time is reset to zero on a transition;
// overshoot past the boundary is discarded.
func (s *SimpleSignal) Update(dt float64) {
	s.elapsed += dt
	duration := s.GreenDuration
	if s.red {
		duration = s.RedDuration
	}
	if s.elapsed >= duration {
		s.red = !s.red
		s.elapsed = 0
	}
}

// IsGreenFor reports green for every approach while the light is green.
func (s *SimpleSignal) IsGreenFor(int) bool { return !s.red }

// IsGreen reports the current light state.
func (s *SimpleSignal) IsGreen() bool { return !s.red }

// SignalPhase is one interval of a phased controller's cycle: the set
// of approach directions permitted to proceed, and how long the phase
// lasts.
type SignalPhase struct {
	Name       string  `json:"name,omitempty"`
	Approaches []int   `json:"approaches"`
	Duration   float64 `json:"duration_seconds"`
}

// Allows reports whether the phase admits the given approach.
func (p SignalPhase) Allows(approachID int) bool {
	for _, id := range p.Approaches {
		if id == approachID {
			return true
		}
	}
	return false
}

// SignalController is a cyclic phase state machine: an ordered,
// non-empty sequence of phases, the current phase index, and the time
// elapsed within the current phase.
type SignalController struct {
	phases  []SignalPhase
	current int
	elapsed float64
}

// NewSignalController creates a controller over the given phases.
// Returns ErrInvalidPhase for an empty phase list. Phase durations are
// clamped to MinPhaseDuration.
func NewSignalController(phases []SignalPhase) (*SignalController, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: phase list is empty", ErrInvalidPhase)
	}
	owned := make([]SignalPhase, len(phases))
	copy(owned, phases)
	for i := range owned {
		owned[i].Duration = clampDuration(owned[i].Duration)
	}
	return &SignalController{phases: owned}, nil
}

// Update advances the phase clock. When elapsed time reaches the
// current phase's duration the controller moves to the next phase
// (cyclically) and resets elapsed to zero. Overshoot beyond the phase
// boundary is discarded, not carried into the next phase; vehicle
// movement deliberately follows the opposite policy.
func (s *SignalController) Update(dt float64) {
	s.elapsed += dt
	if s.elapsed >= s.phases[s.current].Duration {
		s.current = (s.current + 1) % len(s.phases)
		s.elapsed = 0
	}
}

// IsGreenFor reports whether the current phase admits the approach.
func (s *SignalController) IsGreenFor(approachID int) bool {
	return s.phases[s.current].Allows(approachID)
}

// CurrentPhaseIndex returns the 0-based index of the active phase.
func (s *SignalController) CurrentPhaseIndex() int { return s.current }

// CurrentPhase returns a copy of the active phase.
func (s *SignalController) CurrentPhase() SignalPhase { return s.phases[s.current] }

// Elapsed returns the time spent in the current phase.
func (s *SignalController) Elapsed() float64 { return s.elapsed }

// PhaseCount returns the number of phases in the cycle.
func (s *SignalController) PhaseCount() int { return len(s.phases) }

// Phases returns a copy of the phase sequence.
func (s *SignalController) Phases() []SignalPhase {
	result := make([]SignalPhase, len(s.phases))
	copy(result, s.phases)
	return result
}

// SetPhaseDuration sets a phase's duration, clamped to
// MinPhaseDuration. Returns the resulting duration.
func (s *SignalController) SetPhaseDuration(index int, duration float64) (float64, error) {
	if index < 0 || index >= len(s.phases) {
		return 0, fmt.Errorf("%w: index=%d, phases=%d", ErrInvalidPhase, index, len(s.phases))
	}
	s.phases[index].Duration = clampDuration(duration)
	return s.phases[index].Duration, nil
}

// AdjustPhaseDuration adds delta seconds to a phase's duration, clamped
// to MinPhaseDuration. This is one of the two interactive mutation
// points exposed to presentation layers. Returns the resulting
// duration.
func (s *SignalController) AdjustPhaseDuration(index int, delta float64) (float64, error) {
	if index < 0 || index >= len(s.phases) {
		return 0, fmt.Errorf("%w: index=%d, phases=%d", ErrInvalidPhase, index, len(s.phases))
	}
	return s.SetPhaseDuration(index, s.phases[index].Duration+delta)
}

func clampDuration(d float64) float64 {
	if d < MinPhaseDuration {
		return MinPhaseDuration
	}
	return d
}
