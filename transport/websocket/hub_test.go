package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pmajewski/trafficflow/sim/engine"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	if hub.runs == nil {
		t.Error("Hub runs map is nil")
	}

	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}

	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}

	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:   hub,
		runID: "test-run",
		send:  make(chan []byte, 256),
	}

	hub.registerClient(client)

	if _, exists := hub.runs["test-run"]; !exists {
		t.Error("Run was not created")
	}

	if !hub.runs["test-run"][client] {
		t.Error("Client was not registered for run")
	}

	if len(hub.runs["test-run"]) != 1 {
		t.Errorf("Expected 1 client for run, got %d", len(hub.runs["test-run"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:   hub,
		runID: "test-run",
		send:  make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.runs["test-run"]; exists {
		t.Error("Run entry should have been cleaned up after last client unregistered")
	}
}

func TestHubMultipleClientsForRun(t *testing.T) {
	hub := NewHub()
	runID := "multi-client-run"

	client1 := &Client{
		hub:   hub,
		runID: runID,
		send:  make(chan []byte, 256),
	}
	client2 := &Client{
		hub:   hub,
		runID: runID,
		send:  make(chan []byte, 256),
	}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.runs[runID]) != 2 {
		t.Errorf("Expected 2 clients for run, got %d", len(hub.runs[runID]))
	}

	hub.unregisterClient(client1)

	if len(hub.runs[runID]) != 1 {
		t.Errorf("Expected 1 client remaining for run, got %d", len(hub.runs[runID]))
	}

	if !hub.runs[runID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToRun(t *testing.T) {
	hub := NewHub()
	runID := "broadcast-test"

	client := &Client{
		hub:   hub,
		runID: runID,
		send:  make(chan []byte, 256),
	}

	hub.registerClient(client)

	state := &engine.SimulationState{
		Time:         12.5,
		Tick:         25,
		VehicleCount: 3,
	}

	hub.BroadcastToRun(runID, state)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}

		if message.RunID != runID {
			t.Errorf("Expected runID %s, got %s", runID, message.RunID)
		}

		if message.Event != "state_update" {
			t.Errorf("Expected event 'state_update', got %s", message.Event)
		}

		if message.State.Tick != 25 || message.State.VehicleCount != 3 {
			t.Error("SimulationState not correctly transmitted")
		}

	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	done := make(chan bool)

	go func() {
		for {
			select {
			case message := <-hub.broadcast:
				if message.RunID != "event-test" {
					t.Errorf("Expected runID 'event-test', got %s", message.RunID)
				}
				if message.Event != "custom-event" {
					t.Errorf("Expected event 'custom-event', got %s", message.Event)
				}
				if message.Data != "test-data" {
					t.Errorf("Expected data 'test-data', got %v", message.Data)
				}
				done <- true
				return
			case <-time.After(100 * time.Millisecond):
				t.Error("No broadcast message received within timeout")
				done <- false
				return
			}
		}
	}()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	<-done
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()

	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run")
		if runID == "" {
			runID = "default"
		}
		hub.ServeWS(w, r, runID)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?run=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give some time for registration
	time.Sleep(50 * time.Millisecond)

	if len(hub.runs["ws-test"]) != 1 {
		t.Errorf("Expected 1 client for run, got %d", len(hub.runs["ws-test"]))
	}

	conn.Close()

	// Give some time for unregistration
	time.Sleep(10 * time.Millisecond)

	if _, exists := hub.runs["ws-test"]; exists {
		t.Error("Run entry should have been cleaned up after WebSocket close")
	}
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()

	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run")
		if runID == "" {
			runID = "default"
		}
		hub.ServeWS(w, r, runID)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?run=msg-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give time for connection to establish
	time.Sleep(10 * time.Millisecond)

	state := &engine.SimulationState{
		Time:         3.5,
		Tick:         7,
		VehicleCount: 2,
		Vehicles: []engine.VehicleSnapshot{
			{ID: 0, X: 42, Y: 0, State: engine.StateDriving},
			{ID: 1, X: 10, Y: 5, State: engine.StateDriving},
		},
	}

	hub.BroadcastToRun("msg-test", state)

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, messageData, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(messageData, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if message.RunID != "msg-test" {
		t.Errorf("Expected runID 'msg-test', got %s", message.RunID)
	}

	if message.State.Tick != 7 || message.State.VehicleCount != 2 {
		t.Error("SimulationState not correctly received")
	}

	if len(message.State.Vehicles) != 2 || message.State.Vehicles[0].X != 42 {
		t.Error("Vehicle snapshots not correctly received")
	}
}
