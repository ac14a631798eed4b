// Package mcp exposes the radius engine to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API (see package api) and the JSON response is rendered as agent-friendly
// text with numbered map rows and columns.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - list_scenarios: scenarios available on the server
//   - render_map: current map with coordinates
//   - describe_tile: layers, per movement type costs and occupants
//   - moveable: reachable tiles and their path costs
//   - attackable: attackable tiles and hostile targets (default or cost mode)
//   - movement_path: cheapest path from a unit to a tile
//   - move_unit: move a unit, spending fuel
//   - radius_rules: movement and attack rules
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
