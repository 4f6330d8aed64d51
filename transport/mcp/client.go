package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pmajewski/trafficflow/sim/engine"
	"github.com/pmajewski/trafficflow/sim/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Traffic Flow Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Traffic Flow Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Runs are discrete-time traffic simulations over a road network:
vehicles spawn at intersections, route to destinations via shortest
path, follow the car ahead, and stop at red signals. Nothing moves
until you step a run.

AVAILABLE TOOLS:
- create_run: Create a new simulation run from a scenario
- list_runs: List all active runs
- get_run: Get run details with a state snapshot
- sim_state: Get the current state snapshot of a run
- step: Advance a run by a number of ticks
- adjust_signal_phase: Lengthen or shorten a signal phase
- set_spawn_rate: Change a spawner's vehicle arrival rate
- intersection_rates: Windowed throughput counts at an intersection
- list_scenarios: List available scenario configurations
- sim_instructions: Get comprehensive simulation instructions

Typical workflow: list_scenarios, create_run, step (repeatedly),
intersection_rates to measure, then adjust_signal_phase or
set_spawn_rate and step again to compare.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Run management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_run",
		Description: "Create a new simulation run with optional scenario selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Name of the scenario to use (optional, defaults to the server default)",
				},
			},
		},
	}, c.handleCreateRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List all active simulation runs",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_run",
		Description: "Get details of a specific run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID to retrieve",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetRun)

	// Simulation operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "sim_state",
		Description: "Get the current simulation state snapshot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleSimState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Advance the simulation by a number of ticks. Each tick is dt seconds of simulated time. Nothing moves between calls.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": "Number of ticks to advance, 1-10000 (default 1)",
				},
				"dt": map[string]interface{}{
					"type":        "number",
					"description": "Seconds of simulated time per tick, up to 10 (default 0.5)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of what you expect this step to show (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "adjust_signal_phase",
		Description: "Lengthen or shorten one phase of a traffic signal. The duration never drops below the 1 second floor.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
				"intersection": map[string]interface{}{
					"type":        "integer",
					"description": "Intersection ID carrying the signal",
				},
				"phase_index": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based phase index",
				},
				"delta": map[string]interface{}{
					"type":        "number",
					"description": "Seconds to add to the phase duration (negative to shorten)",
				},
			},
			Required: []string{"run_id", "intersection", "phase_index", "delta"},
		},
	}, c.handleAdjustSignalPhase)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_spawn_rate",
		Description: "Set the vehicle arrival rate of a spawner. Rates are vehicles per second; negative values clamp to zero.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
				"intersection": map[string]interface{}{
					"type":        "integer",
					"description": "Intersection ID carrying the spawner",
				},
				"rate": map[string]interface{}{
					"type":        "number",
					"description": "New rate in vehicles per second",
				},
			},
			Required: []string{"run_id", "intersection", "rate"},
		},
	}, c.handleSetSpawnRate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "intersection_rates",
		Description: "Get windowed per-direction vehicle counts at an intersection. Counts cover the monitor window ending at the current simulation time.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
				"intersection": map[string]interface{}{
					"type":        "integer",
					"description": "Intersection ID to read",
				},
			},
			Required: []string{"run_id", "intersection"},
		},
	}, c.handleIntersectionRates)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List available scenario configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "sim_instructions",
		Description: "Get comprehensive simulation instructions and mechanics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleSimInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	scenarioID, _ := args["scenario_id"].(string)

	body := map[string]string{}
	if scenarioID != "" {
		body["scenario_id"] = scenarioID
	}

	var run service.RunInfo
	err := c.apiCall("POST", "/api/runs", body, &run)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created run: %s\nScenario: %s\n\n%s",
		run.ID, run.ScenarioName, formatSimState(run.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int               `json:"count"`
		Runs  []service.RunInfo `json:"runs"`
	}

	err := c.apiCall("GET", "/api/runs", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Runs (%d):\n\n", response.Count)
	for _, r := range response.Runs {
		line := fmt.Sprintf("- %s (Scenario: %s, Created: %s",
			r.ID, r.ScenarioName, r.CreatedAt.Format("15:04:05"))
		if r.State != nil {
			line += fmt.Sprintf(", t=%.1fs, vehicles=%d", r.State.Time, r.State.VehicleCount)
		}
		result += line + ")\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID, _ := args["run_id"].(string)

	var run service.RunInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/runs/%s", runID), nil, &run)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatRunInfo(&run)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSimState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID, _ := args["run_id"].(string)

	var state engine.SimulationState
	err := c.apiCall("GET", fmt.Sprintf("/api/runs/%s/state", runID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSimState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID, _ := args["run_id"].(string)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{}
	if ticks, ok := args["ticks"].(float64); ok {
		body["ticks"] = int(ticks)
	}
	if dt, ok := args["dt"].(float64); ok {
		body["dt"] = dt
	}

	var result service.StepResult
	err := c.apiCall("POST", fmt.Sprintf("/api/runs/%s/step", runID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatStepResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleAdjustSignalPhase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID, _ := args["run_id"].(string)
	intersection := intArg(args, "intersection")
	phaseIndex := intArg(args, "phase_index")
	delta, _ := args["delta"].(float64)

	body := map[string]interface{}{
		"phase_index": phaseIndex,
		"delta":       delta,
	}

	var result service.SignalAdjustResult
	err := c.apiCall("POST", fmt.Sprintf("/api/runs/%s/signals/%d", runID, intersection), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("Signal at intersection %d adjusted\nPhase %d duration: %.1fs\n\nPhases:\n%s",
		result.IntersectionID, result.PhaseIndex, result.Duration, formatPhases(result.Phases))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleSetSpawnRate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID, _ := args["run_id"].(string)
	intersection := intArg(args, "intersection")
	rate, _ := args["rate"].(float64)

	body := map[string]interface{}{
		"rate": rate,
	}

	var result service.SpawnerAdjustResult
	err := c.apiCall("POST", fmt.Sprintf("/api/runs/%s/spawners/%d", runID, intersection), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("Spawner at intersection %d set to %.2f vehicles/second (%.0f/hour)",
		result.IntersectionID, result.Rate, result.Rate*3600)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleIntersectionRates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID, _ := args["run_id"].(string)
	intersection := intArg(args, "intersection")

	var result service.RatesResult
	err := c.apiCall("GET", fmt.Sprintf("/api/runs/%s/intersections/%d/rates", runID, intersection), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatRates(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []service.ScenarioInfo
	err := c.apiCall("GET", "/api/scenarios", nil, &scenarios)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Scenarios:\n\n"
	for _, sc := range scenarios {
		result += fmt.Sprintf("• %s\n  %s\n  Network: %s, Spawners: %d, Signals: %d\n\n",
			sc.ScenarioID, sc.Description, sc.NetworkKind, sc.Spawners, sc.Signals)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSimInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Traffic Flow Simulator - Complete Instructions

OBJECTIVE:
Study and shape traffic flow over a road network by stepping a
simulation, measuring throughput at intersections, and tuning signal
timings and spawn rates.

SIMULATION MECHANICS:
• Time is discrete: nothing moves until you call the step tool
• Each tick advances dt seconds of simulated time (default 0.5s)
• Vehicles spawn at intersections via Poisson arrival processes
• Each vehicle routes to a random destination via shortest path (hop count)
• Vehicles never pass the car ahead on the same road; followers hold a small gap behind their leader
• A red signal holds approaching vehicles at 95% of the road; they cross only when their approach turns green
• Vehicles that reach their destination are removed from the network

RUN MANAGEMENT:
• Multiple runs can exist simultaneously, each with independent state
• Each run has a unique 4-character ID
• Runs are created from named scenarios (list_scenarios shows them)
• Scenarios with a seed produce reproducible runs

MEASUREMENT:
• intersection_rates reports per-direction vehicle counts at one intersection
• Counts cover a sliding window (default 60 simulated seconds) ending at the current simulation time
• A direction is (from, to): the previous intersection and the next one
• A "to" of -1 means the vehicle arrived at that intersection
• Counts are in simulated time: step long enough to fill the window before comparing readings

CONTROL KNOBS:
• adjust_signal_phase lengthens or shortens one phase of a signal cycle
  - Phase durations never drop below 1 second
  - Longer green for a congested approach increases its throughput
• set_spawn_rate changes how fast a spawner emits vehicles
  - Rates are vehicles per second; 0 stops spawning entirely
  - Rate changes take effect from the next spawn interval

SUGGESTED EXPERIMENT LOOP:
1. create_run from a scenario with signals
2. step until the monitor window is full (e.g. 120 ticks of 0.5s)
3. intersection_rates at the signalized intersection to get a baseline
4. adjust_signal_phase to favor the heavier approach
5. step the same amount again and compare the new rates

COMMON PITFALLS:
• Reading rates before the window has filled - early counts understate steady-state flow
• Comparing rates across different amounts of stepped time
• Expecting wall-clock behavior: a run only advances when stepped
• Adjusting a signal at an intersection that has none (only scenarios with signals have them)`

	return mcp.NewToolResultText(instructions), nil
}

// intArg reads an integer tool argument, which arrives as a JSON number.
func intArg(args map[string]interface{}, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

// Formatting helpers

func formatRunInfo(run *service.RunInfo) string {
	return fmt.Sprintf("Run: %s\nScenario: %s\nCreated: %s\n\n%s",
		run.ID, run.ScenarioName,
		run.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSimState(run.State))
}

func formatSimState(state *engine.SimulationState) string {
	if state == nil {
		return "No simulation state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Time: %.1fs | Tick: %d | Vehicles: %d\n",
		state.Time, state.Tick, state.VehicleCount))

	if len(state.Signals) > 0 {
		result.WriteString("\nSignals:\n")
		for _, sig := range state.Signals {
			switch sig.Kind {
			case "phased":
				phase := ""
				if sig.PhaseIndex < len(sig.Phases) {
					p := sig.Phases[sig.PhaseIndex]
					name := p.Name
					if name == "" {
						name = fmt.Sprintf("phase %d", sig.PhaseIndex)
					}
					phase = fmt.Sprintf("%s (%.1fs of %.1fs, green for %s)",
						name, sig.Elapsed, p.Duration, formatApproaches(p.Approaches))
				}
				result.WriteString(fmt.Sprintf("- intersection %d: %s\n", sig.IntersectionID, phase))
			case "simple":
				color := "red"
				if sig.Green {
					color = "green"
				}
				result.WriteString(fmt.Sprintf("- intersection %d: %s\n", sig.IntersectionID, color))
			default:
				result.WriteString(fmt.Sprintf("- intersection %d: %s\n", sig.IntersectionID, sig.Kind))
			}
		}
	}

	if len(state.Vehicles) > 0 {
		result.WriteString("\nVehicles:\n")
		for _, v := range state.Vehicles {
			line := fmt.Sprintf("- #%d %s at (%.1f, %.1f)", v.ID, v.State, v.X, v.Y)
			if v.State == engine.StateDriving {
				line += fmt.Sprintf(" road %d %.0f%% @ %.0f km/h -> %d",
					v.RoadID, v.Progress*100, v.SpeedKmh, v.DestinationID)
			}
			result.WriteString(line + "\n")
		}
	}

	if len(state.Rates) > 0 {
		result.WriteString("\nIn-window passes:\n")
		for _, r := range state.Rates {
			result.WriteString(fmt.Sprintf("- intersection %d: %d\n", r.IntersectionID, r.Total))
		}
	}

	return result.String()
}

func formatStepResult(result *service.StepResult) string {
	header := fmt.Sprintf("Advanced %d ticks of %.2fs (%.1fs simulated, %.1fs total)\n\n",
		result.Ticks, result.Dt, float64(result.Ticks)*result.Dt, result.ElapsedTime)
	return header + formatSimState(result.State)
}

func formatRates(result *service.RatesResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Intersection %d - last %.0fs of simulated time\n",
		result.IntersectionID, result.WindowSeconds))
	b.WriteString(fmt.Sprintf("Total passes: %d\n", result.Total))

	if len(result.Directions) == 0 {
		b.WriteString("(no traffic recorded in window)")
		return b.String()
	}

	b.WriteString("\nBy direction:\n")
	for _, d := range result.Directions {
		to := fmt.Sprintf("%d", d.To)
		if d.To == engine.NoIntersection {
			to = "arrived"
		}
		perHour := float64(d.Count) / result.WindowSeconds * 3600
		b.WriteString(fmt.Sprintf("- from %d to %s: %d (%.0f/hour)\n", d.From, to, d.Count, perHour))
	}
	return b.String()
}

func formatPhases(phases []engine.SignalPhase) string {
	var b strings.Builder
	for i, p := range phases {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("phase %d", i)
		}
		b.WriteString(fmt.Sprintf("%d. %s: %.1fs, green for %s\n",
			i, name, p.Duration, formatApproaches(p.Approaches)))
	}
	return b.String()
}

func formatApproaches(approaches []int) string {
	if len(approaches) == 0 {
		return "all approaches"
	}
	parts := make([]string, 0, len(approaches))
	for _, a := range approaches {
		parts = append(parts, fmt.Sprintf("%d", a))
	}
	return "approaches " + strings.Join(parts, ",")
}
