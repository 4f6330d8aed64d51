package engine

// DirectionKey identifies one movement through an intersection: the
// intersection the vehicle entered from and the intersection it exited
// toward. To is NoIntersection when the vehicle arrived (the
// intersection was its destination).
type DirectionKey struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// TrafficMonitor counts vehicle passes through intersections, broken
// down by direction, within a trailing time window. It keeps its own
// clock, advanced by the fleet before any pass events of the tick are
// recorded. The reported numbers are raw counts of events inside the
// window; "per minute" is only exact when the window is 60 seconds.
type TrafficMonitor struct {
	window float64
	clock  float64

	// events[intersectionID][key] is a time-ordered queue of pass
	// timestamps inside the window.
	events map[int]map[DirectionKey][]float64
}

// NewTrafficMonitor creates a monitor with the given window, floored at
// one second.
func NewTrafficMonitor(windowSeconds float64) *TrafficMonitor {
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	return &TrafficMonitor{
		window: windowSeconds,
		events: make(map[int]map[DirectionKey][]float64),
	}
}

// Time returns the monitor's current clock.
func (m *TrafficMonitor) Time() float64 { return m.clock }

// WindowSeconds returns the trailing window length.
func (m *TrafficMonitor) WindowSeconds() float64 { return m.window }

// Update advances the clock and prunes events older than the window.
// Non-positive deltas are ignored.
func (m *TrafficMonitor) Update(dt float64) {
	if dt <= 0 {
		return
	}
	m.clock += dt
	cutoff := m.clock - m.window
	for _, directions := range m.events {
		for key, queue := range directions {
			i := 0
			for i < len(queue) && queue[i] < cutoff {
				i++
			}
			if i > 0 {
				directions[key] = queue[i:]
			}
		}
	}
}

// RecordPass registers one vehicle movement through an intersection at
// the monitor's current time. Pass NoIntersection as toID when the
// intersection was the vehicle's destination.
func (m *TrafficMonitor) RecordPass(intersectionID, fromID, toID int) {
	directions, ok := m.events[intersectionID]
	if !ok {
		directions = make(map[DirectionKey][]float64)
		m.events[intersectionID] = directions
	}
	key := DirectionKey{From: fromID, To: toID}
	directions[key] = append(directions[key], m.clock)
}

// RatesForIntersection returns the in-window pass count per direction
// for one intersection.
func (m *TrafficMonitor) RatesForIntersection(intersectionID int) map[DirectionKey]int {
	result := make(map[DirectionKey]int)
	for key, queue := range m.events[intersectionID] {
		result[key] = len(queue)
	}
	return result
}

// TotalRateForIntersection returns the total in-window pass count for
// one intersection across all directions.
func (m *TrafficMonitor) TotalRateForIntersection(intersectionID int) int {
	total := 0
	for _, queue := range m.events[intersectionID] {
		total += len(queue)
	}
	return total
}

// AllRates returns the in-window pass counts for every intersection
// that has recorded events.
func (m *TrafficMonitor) AllRates() map[int]map[DirectionKey]int {
	result := make(map[int]map[DirectionKey]int, len(m.events))
	for id := range m.events {
		result[id] = m.RatesForIntersection(id)
	}
	return result
}

// Clear drops all recorded events and resets the clock.
func (m *TrafficMonitor) Clear() {
	m.events = make(map[int]map[DirectionKey][]float64)
	m.clock = 0
}
