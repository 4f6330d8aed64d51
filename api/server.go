package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pmajewski/trafficflow/sim/engine"
	"github.com/pmajewski/trafficflow/sim/service"
	"github.com/pmajewski/trafficflow/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.SimService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(simService service.SimService, hub *websocket.Hub) *Server {
	s := &Server{
		service: simService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// API routes with clean REST patterns
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Run management
	api.HandleFunc("/runs", s.handleCreateRun).Methods("POST")
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")

	// Simulation operations
	api.HandleFunc("/runs/{id}/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/runs/{id}/step", s.handleStep).Methods("POST")
	api.HandleFunc("/runs/{id}/intersections/{intersection}/rates", s.handleIntersectionRates).Methods("GET")
	api.HandleFunc("/runs/{id}/signals/{intersection}", s.handleAdjustSignal).Methods("POST")
	api.HandleFunc("/runs/{id}/spawners/{intersection}", s.handleSetSpawnerRate).Methods("POST")

	// Scenarios
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios", s.handleCreateScenario).Methods("POST")
	api.HandleFunc("/scenarios/{name}", s.handleGetScenario).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Run Handlers

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	run, err := s.service.CreateRun(r.Context(), req.ScenarioID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of runs to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(runs, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = runs[i].CreatedAt, runs[j].CreatedAt
		} else { // "accessed"
			ti, tj = runs[i].LastAccessedAt, runs[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	limit := len(runs)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(runs) {
			limit = l
		}
	}
	runs = runs[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
		"sort":  sortBy,
		"order": order,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	run, err := s.service.GetRun(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	if err := s.service.DeleteRun(r.Context(), runID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Run %s deleted", runID),
	})
}

// Simulation Operation Handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	state, err := s.service.GetState(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	var req struct {
		Dt    float64 `json:"dt,omitempty"`
		Ticks int     `json:"ticks,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Step defaults: one half-second tick.
	if req.Dt == 0 {
		req.Dt = 0.5
	}
	if req.Ticks == 0 {
		req.Ticks = 1
	}

	result, err := s.service.Step(r.Context(), runID, req.Dt, req.Ticks)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	// Broadcast to WebSocket clients
	if s.hub != nil {
		s.hub.BroadcastToRun(runID, result.State)
	}

	// Compact server log for observability
	fmt.Printf("[STEP] run=%s ticks=%d dt=%.2f t=%.1f vehicles=%d\n",
		runID, result.Ticks, result.Dt, result.ElapsedTime, result.State.VehicleCount)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleIntersectionRates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	intersectionID, err := strconv.Atoi(vars["intersection"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid intersection id")
		return
	}

	result, err := s.service.IntersectionRates(r.Context(), runID, intersectionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAdjustSignal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	intersectionID, err := strconv.Atoi(vars["intersection"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid intersection id")
		return
	}

	var req struct {
		PhaseIndex int     `json:"phase_index"`
		Delta      float64 `json:"delta"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.AdjustSignalPhase(r.Context(), runID, intersectionID, req.PhaseIndex, req.Delta)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(runID, "signal_adjusted", result)
	}

	fmt.Printf("[SIGNAL] run=%s intersection=%d phase=%d duration=%.1f\n",
		runID, result.IntersectionID, result.PhaseIndex, result.Duration)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSetSpawnerRate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	intersectionID, err := strconv.Atoi(vars["intersection"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid intersection id")
		return
	}

	var req struct {
		Rate float64 `json:"rate"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.SetSpawnerRate(r.Context(), runID, intersectionID, req.Rate)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(runID, "spawner_adjusted", result)
	}

	fmt.Printf("[SPAWNER] run=%s intersection=%d rate=%.2f\n",
		runID, result.IntersectionID, result.Rate)

	respondJSON(w, http.StatusOK, result)
}

// Scenario Handlers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.service.ListScenarios(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	scenarioName := vars["name"]

	// Remove .json extension if present
	scenarioName = strings.TrimSuffix(scenarioName, ".json")

	cfg, err := s.service.LoadScenario(r.Context(), scenarioName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var cfg engine.ScenarioConfig

	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if cfg.Name == "" {
		respondError(w, http.StatusBadRequest, "Scenario name is required")
		return
	}

	if err := s.service.SaveScenario(r.Context(), cfg.Name, &cfg); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save scenario: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Scenario saved successfully",
		"scenario_id": cfg.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run")
	if runID == "" {
		http.Error(w, "run parameter required", http.StatusBadRequest)
		return
	}

	// Verify run exists
	if _, err := s.service.GetRun(context.Background(), runID); err != nil {
		http.Error(w, "Invalid run", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, runID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
