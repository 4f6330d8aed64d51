// Package websocket provides WebSocket transport for the traffic
// simulation.
//
// The websocket package implements:
//   - Real-time streaming of simulation state snapshots
//   - Run-aware WebSocket connections
//   - Automatic state broadcasting after each step
//   - Connection lifecycle management
//   - Message routing and handling
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - Outgoing: {run_id: "ab12", event: "state_update", state: {...}}
//   - Incoming messages are ignored; connections are watch-only and
//     mutations go through the HTTP API or MCP tools.
//
// Run Integration:
//
// WebSocket connections are run-aware. Clients specify their run ID via
// query parameter (?run=ab12) when establishing the connection. State
// updates are broadcast only to clients watching the same run.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	// After advancing a run:
//	hub.BroadcastToRun(runID, sim.Snapshot())
//
// Connection Lifecycle:
//
// 1. Client connects with run ID
// 2. Connection registered with hub
// 3. Client receives a state snapshot after every step
// 4. Disconnection triggers cleanup
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive updates
// simultaneously without blocking each other.
package websocket
