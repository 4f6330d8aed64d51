// Package engine implements the traffic-flow simulation core: the road
// network graph, breadth-first pathfinding, traffic signals, per-vehicle
// kinematics with car-following and signal compliance, Poisson vehicle
// spawning, fleet orchestration, and windowed traffic-rate accounting.
//
// The engine is single-threaded and cooperatively stepped: the caller
// drives simulation time by calling Fleet.Update (or Simulation.Step)
// with an explicit delta. Nothing in this package blocks, spawns
// goroutines, or keeps its own timers. Presentation layers (HTTP API,
// WebSocket, MCP) live outside this package and only read snapshots or
// invoke the two interactive mutation points: signal phase-duration
// adjustment and spawner rate adjustment.
package engine
