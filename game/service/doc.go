// Package service provides the business logic layer for the tactics radius
// engine.
//
// The service package implements:
//   - Multi-session management over immutable map snapshots
//   - Scenario loading through a ScenarioManager
//   - Movement and attack radius queries
//   - Path lookup and unit moves that spend fuel
//
// Core Interfaces:
//
// RadiusService is the main service interface used by the HTTP, WebSocket and
// MCP transports. SessionManager stores sessions, ScenarioManager loads
// scenarios and Notifier receives events after state changes and queries.
//
// Usage:
//
//	sessions := session.NewManager()
//	scenarios, _ := config.NewManager("configs")
//	svc := service.NewRadiusService(sessions, scenarios, nil)
//
//	info, err := svc.CreateSession(ctx, "skirmish")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := svc.Moveable(ctx, info.ID, service.RadiusQuery{X: 2, Y: 5})
//
// Errors returned by the service wrap the package sentinels, so transports
// map them with errors.Is.
package service
