// Package api provides HTTP REST API handlers for the traffic
// simulation.
//
// The api package implements:
//   - RESTful endpoints for run management and stepping
//   - Signal and spawner adjustment endpoints
//   - Scenario listing and selection
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Run Management:
//   - POST /api/runs - Create a new run from a scenario
//   - GET /api/runs - List all runs
//   - GET /api/runs/{id} - Get a specific run
//   - DELETE /api/runs/{id} - Delete a run
//
// Simulation Operations:
//   - GET /api/runs/{id}/state - Current state snapshot
//   - POST /api/runs/{id}/step - Advance the simulation
//   - GET /api/runs/{id}/intersections/{intersection}/rates - Monitor readout
//   - POST /api/runs/{id}/signals/{intersection} - Adjust a signal phase
//   - POST /api/runs/{id}/spawners/{intersection} - Set a spawn rate
//
// Scenarios:
//   - GET /api/scenarios - List available scenarios
//   - POST /api/scenarios - Save a scenario
//   - GET /api/scenarios/{name} - Get a specific scenario
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Stepping is explicit:
//
//	POST /api/runs/{id}/step
//	{
//	  "dt": 0.5,       // seconds per tick, (0, 10]
//	  "ticks": 10      // tick count, [1, 10000]
//	}
//
// The response carries the full post-step state snapshot, which is also
// broadcast to WebSocket clients watching the run (connect to
// /ws?run={id}).
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
