// Package api exposes the radius service over HTTP using gorilla/mux.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 create a session ({"scenario": "skirmish"}, empty for the default)
//   - GET    /api/sessions                 list sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET    /api/sessions/{id}            session info with units and the rendered map
//   - DELETE /api/sessions/{id}            delete a session
//   - GET    /api/sessions/{id}/map        rendered map as plain text
//
// Radius queries:
//   - GET /api/sessions/{id}/moveable?x=&y=[&radius=]
//   - GET /api/sessions/{id}/attackable?x=&y=[&mode=default|cost][&radius=]
//   - GET /api/sessions/{id}/path?from=x,y&to=x,y
//   - GET /api/sessions/{id}/tile?x=&y=
//
// Moves:
//   - POST /api/sessions/{id}/move         {"from": {"x": 1, "y": 2}, "to": {"x": 3, "y": 2}}
//
// Scenarios:
//   - GET /api/scenarios
//   - GET /api/scenarios/{name}
//
// Events:
//   - GET /api/ws?session={id}             WebSocket stream of session events
//
// Errors are returned as {"error": "..."}. Unknown sessions and scenarios
// are 404, malformed queries 400, and queries naming an empty tile or an
// unreachable target 422.
package api
