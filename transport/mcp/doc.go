// Package mcp provides Model Context Protocol server implementation for
// the traffic simulation.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for simulation operations
//   - Run-aware command execution
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_run: Create new simulation run with scenario selection
//   - list_runs: List all active runs
//   - get_run: Get specific run details
//   - sim_state: Get current state snapshot of a run
//   - step: Advance a run by a number of ticks
//   - adjust_signal_phase: Lengthen or shorten a signal phase
//   - set_spawn_rate: Change a spawner's arrival rate
//   - intersection_rates: Windowed throughput counts at an intersection
//   - list_scenarios: List available scenario configurations
//   - sim_instructions: Get comprehensive simulation instructions
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Run Management:
//
// All simulation tools take a run_id parameter. Multiple runs can be
// stepped and measured independently; each run has its own network,
// fleet, signals, and monitor.
//
// Usage:
//
//	// The client proxies every tool call to the REST API.
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Run traffic experiments autonomously
//   - Measure throughput before and after timing changes
//   - Tune signal phases against observed congestion
//   - Manage multiple concurrent runs
package mcp
