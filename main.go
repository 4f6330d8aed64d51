// Command trafficflow starts the traffic flow simulation server.
//
// It supports three modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "run" – advances a scenario headlessly and prints periodic throughput stats
//  3. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, scenario directory, debug logging, and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pmajewski/trafficflow/api"
	"github.com/pmajewski/trafficflow/sim/config"
	"github.com/pmajewski/trafficflow/sim/engine"
	"github.com/pmajewski/trafficflow/sim/run"
	"github.com/pmajewski/trafficflow/sim/service"
	"github.com/pmajewski/trafficflow/transport/mcp"
	"github.com/pmajewski/trafficflow/transport/websocket"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Traffic Flow Simulation Server"
)

// getScenarioDirDefault returns the default scenario directory.
// It first honors the SCENARIO_DIR environment variable, then falls back to "scenarios".
func getScenarioDirDefault() string {
	if dir := os.Getenv("SCENARIO_DIR"); dir != "" {
		return dir
	}
	return "scenarios"
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	serverFlags := []cli.Flag{
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port"},
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
		&cli.StringFlag{Name: "scenario-dir", Value: getScenarioDirDefault(), Usage: "Directory containing scenario configurations"},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel"},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)"},
	}

	cmd := &cli.Command{
		Name:    "trafficflow",
		Usage:   AppName,
		Version: Version,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags:   serverFlags,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					setupLogging(cmd.Bool("debug"))
					simService, err := initializeServices(cmd.String("scenario-dir"))
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					runHTTPServer(simService, cmd)
					return nil
				},
			},
			{
				Name:  "run",
				Usage: "Advance a scenario headlessly and print periodic stats",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scenario-dir", Value: getScenarioDirDefault(), Usage: "Directory containing scenario configurations"},
					&cli.StringFlag{Name: "scenario", Usage: "Scenario name (default: server default)"},
					&cli.IntFlag{Name: "ticks", Value: 1200, Usage: "Number of ticks to simulate"},
					&cli.FloatFlag{Name: "dt", Value: 0.5, Usage: "Seconds of simulated time per tick"},
					&cli.IntFlag{Name: "report-every", Value: 120, Usage: "Print stats every N ticks"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runHeadless(
						cmd.String("scenario-dir"),
						cmd.String("scenario"),
						int(cmd.Int("ticks")),
						cmd.Float("dt"),
						int(cmd.Int("report-every")),
					)
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Flags:   serverFlags,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					setupLogging(cmd.Bool("debug"))
					simService, err := initializeServices(cmd.String("scenario-dir"))
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					runStdioMCPWithInternalServer(simService, int(cmd.Int("port")))
					return nil
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(simService service.SimService, cmd *cli.Command) {
	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Create API server
	apiServer := api.NewServer(simService, hub)

	// Setup HTTP server address
	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))

	// Create MCP client for /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	// Create main router that combines API and MCP
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	// Always add MCP endpoint for HTTP server
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?run=<run_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Check if ngrok should be enabled (from flag or environment)
	ngrokShouldRun := cmd.Bool("ngrok")
	if !ngrokShouldRun {
		// Check environment variable if flag not set
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	// Start ngrok tunnel if enabled
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Get auth token from flag or environment (support both naming conventions)
			authToken := cmd.String("ngrok-auth")
			if authToken == "" {
				authToken = os.Getenv("NGROK_AUTHTOKEN")
				if authToken == "" {
					authToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
				}
			}

			if authToken == "" {
				log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
				return
			}

			log.Println("Starting ngrok tunnel...")

			// Get domain from flag or environment
			domain := cmd.String("ngrok-domain")
			if domain == "" {
				domain = os.Getenv("NGROK_DOMAIN")
			}

			// Configure ngrok endpoint
			var tunnel ngrokConfig.Tunnel
			if domain != "" {
				tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
				log.Printf("Using custom ngrok domain: %s", domain)
			} else {
				tunnel = ngrokConfig.HTTPEndpoint()
			}

			// Start ngrok tunnel
			tun, err := ngrok.Listen(ctx,
				tunnel,
				ngrok.WithAuthtoken(authToken),
			)
			if err != nil {
				log.Printf("Failed to start ngrok tunnel: %v", err)
				return
			}
			defer func() {
				if err := tun.Close(); err != nil {
					log.Printf("Failed to close ngrok tunnel: %v", err)
				}
			}()

			ngrokURL := tun.URL()
			log.Printf("Ngrok tunnel established: %s", ngrokURL)
			log.Printf("  REST API (ngrok): %s/api", ngrokURL)
			log.Printf("  WebSocket (ngrok): %s/ws?run=<run_id>", ngrokURL)
			log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

			// Serve HTTP through ngrok tunnel
			if err := http.Serve(tun, mainRouter); err != nil && err != http.ErrServerClosed {
				log.Printf("Ngrok server error: %v", err)
			}
			log.Println("Ngrok tunnel closed")
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Println("Server stopped")
}

// initializeServices wires run/scenario managers and the simulation service.
// It also starts a background cleanup routine to prune stale runs.
func initializeServices(scenarioDir string) (service.SimService, error) {
	scenarioManager, err := config.NewManager(scenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}

	runManager := run.NewManager()

	simService := service.NewSimService(runManager, scenarioManager)

	// Start run cleanup routine
	go runCleanupRoutine(runManager)

	return simService, nil
}

// runCleanupRoutine periodically removes runs that have not been accessed
// within the retention window.
func runCleanupRoutine(manager *run.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredRuns(24 * time.Hour)
		if removed > 0 {
			log.Printf("Cleaned up %d expired runs", removed)
		}
	}
}

// runHeadless builds a scenario, steps it for the requested number of
// ticks, and prints windowed throughput stats along the way.
func runHeadless(scenarioDir, scenarioName string, ticks int, dt float64, reportEvery int) error {
	scenarioManager, err := config.NewManager(scenarioDir)
	if err != nil {
		return fmt.Errorf("failed to create scenario manager: %w", err)
	}

	runManager := run.NewManager()
	simService := service.NewSimService(runManager, scenarioManager)

	ctx := context.Background()
	runInfo, err := simService.CreateRun(ctx, scenarioName)
	if err != nil {
		return err
	}

	log.Printf("Running scenario %q for %d ticks of %.2fs (%.0fs simulated)",
		runInfo.ScenarioName, ticks, dt, float64(ticks)*dt)

	if reportEvery <= 0 {
		reportEvery = ticks
	}

	remaining := ticks
	for remaining > 0 {
		batch := reportEvery
		if batch > remaining {
			batch = remaining
		}

		result, err := simService.Step(ctx, runInfo.ID, dt, batch)
		if err != nil {
			return err
		}
		remaining -= batch

		printHeadlessReport(result.State)
	}

	return nil
}

func printHeadlessReport(state *engine.SimulationState) {
	fmt.Printf("t=%.1fs tick=%d vehicles=%d\n", state.Time, state.Tick, state.VehicleCount)
	for _, r := range state.Rates {
		fmt.Printf("  intersection %d: %d passes in window\n", r.IntersectionID, r.Total)
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured port; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(simService service.SimService, port int) {
	var baseURL string
	var httpServer *http.Server
	var listener net.Listener

	// First, try to connect to an external API server
	externalURL := fmt.Sprintf("http://localhost:%d", port)
	log.Printf("Checking for external API server at %s...", externalURL)

	// Test if external server is running
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		// No external server found, start internal one
		log.Printf("No external API server found, starting internal HTTP server")

		// Start internal HTTP server on a random available port
		listener, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to get available port: %v", err)
		}

		// Get the actual port that was assigned
		internalPort := listener.Addr().(*net.TCPAddr).Port
		internalAddr := fmt.Sprintf("127.0.0.1:%d", internalPort)

		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		// Create WebSocket hub
		hub := websocket.NewHub()
		go hub.Run()

		// Create API server
		apiServer := api.NewServer(simService, hub)

		// Start internal HTTP server in background
		httpServer = &http.Server{
			Handler: apiServer,
		}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		// Wait a moment for the server to be ready
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	// Create MCP client pointing to the selected server
	mcpClient := mcp.NewClient(baseURL)

	// Run MCP stdio server (blocking)
	if baseURL == externalURL {
		log.Println("MCP stdio server ready (using external HTTP server)")
	} else {
		log.Println("MCP stdio server ready (using internal HTTP server)")
	}

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
