// Package service defines the simulation service layer: the SimService
// interface consumed by every transport (HTTP, WebSocket, MCP) and the
// manager interfaces it is assembled from.
//
// The service owns cross-cutting request validation (step sizes, tick
// counts) and translates between engine state and the transport-facing
// result types. It holds no simulation logic itself; runs are advanced
// by the engine and stored by a RunManager.
//
// Usage:
//
//	svc := service.NewSimService(runs, scenarios)
//	info, err := svc.CreateRun(ctx, "classic")
//	result, err := svc.Step(ctx, info.ID, 0.5, 10)
package service
