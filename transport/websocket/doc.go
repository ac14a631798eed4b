// Package websocket pushes radius engine events to browser clients.
//
// A central Hub keeps the connected clients grouped by session id. The Hub
// implements service.Notifier, so the service publishes session_created,
// unit_moved and radius events straight into it, and every client watching
// that session receives them as JSON:
//
//	{"session_id":"ab12","event":"unit_moved","message":"...","timestamp":"...","data":{...}}
//
// Clients connect with the session in the query string (/api/ws?session=ab12)
// and only listen; incoming frames just keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewRadiusService(sessions, scenarios, hub)
//
// Notify never blocks. When the broadcast queue is full the event is dropped
// and logged.
package websocket
