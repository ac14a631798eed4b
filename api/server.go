package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/service"
	"github.com/wricardo/mcp-training/tactics/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.RadiusService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *slog.Logger
}

// NewServer creates a new API server. hub may be nil, which disables /api/ws.
func NewServer(radiusService service.RadiusService, hub *websocket.Hub) *Server {
	s := &Server{
		service: radiusService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  slog.Default().With("component", "api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/map", s.handleGetMap).Methods("GET")

	// Radius queries
	api.HandleFunc("/sessions/{id}/moveable", s.handleMoveable).Methods("GET")
	api.HandleFunc("/sessions/{id}/attackable", s.handleAttackable).Methods("GET")
	api.HandleFunc("/sessions/{id}/path", s.handlePath).Methods("GET")
	api.HandleFunc("/sessions/{id}/tile", s.handleTile).Methods("GET")

	// Game operations
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")

	// Scenarios
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios/{name}", s.handleGetScenario).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	api.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinels to HTTP status codes
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrScenarioNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidQuery):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNoUnit), errors.Is(err, service.ErrUnreachable):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondError(w, status, err.Error())
}

// Query helpers

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s parameter", service.ErrInvalidQuery, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrInvalidQuery, name)
	}
	return v, nil
}

func positionParams(r *http.Request) (grid.Vector, error) {
	x, err := intParam(r, "x")
	if err != nil {
		return grid.Vector{}, err
	}
	y, err := intParam(r, "y")
	if err != nil {
		return grid.Vector{}, err
	}
	return grid.Vec(x, y), nil
}

func radiusParam(r *http.Request) (*float64, error) {
	raw := r.URL.Query().Get("radius")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: radius must be a number", service.ErrInvalidQuery)
	}
	return &v, nil
}

func vectorParam(r *http.Request, name string) (grid.Vector, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return grid.Vector{}, fmt.Errorf("%w: missing %s parameter", service.ErrInvalidQuery, name)
	}
	v, err := grid.ParseVector(raw)
	if err != nil {
		return grid.Vector{}, fmt.Errorf("%w: %s: %v", service.ErrInvalidQuery, name, err)
	}
	return v, nil
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario string `json:"scenario,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	session, err := s.service.CreateSession(r.Context(), req.Scenario)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < total {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// handleGetMap returns the rendered map as plain text
func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, session.Map)
}

// Radius Handlers

func (s *Server) handleMoveable(w http.ResponseWriter, r *http.Request) {
	at, err := positionParams(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	radius, err := radiusParam(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	report, err := s.service.Moveable(r.Context(), mux.Vars(r)["id"], service.RadiusQuery{X: at.X, Y: at.Y, Radius: radius})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleAttackable(w http.ResponseWriter, r *http.Request) {
	at, err := positionParams(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	radius, err := radiusParam(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	q := service.AttackQuery{X: at.X, Y: at.Y, Mode: r.URL.Query().Get("mode"), Radius: radius}
	report, err := s.service.Attackable(r.Context(), mux.Vars(r)["id"], q)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	from, err := vectorParam(r, "from")
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	to, err := vectorParam(r, "to")
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	report, err := s.service.Path(r.Context(), mux.Vars(r)["id"], from, to)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	at, err := positionParams(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	tile, err := s.service.DescribeTile(r.Context(), mux.Vars(r)["id"], at)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tile)
}

// Game Operation Handlers

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		From *grid.Vector `json:"from"`
		To   *grid.Vector `json:"to"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.From == nil || req.To == nil {
		respondError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	result, err := s.service.MoveUnit(r.Context(), sessionID, *req.From, *req.To)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Scenario Handlers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.service.ListScenarios(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	scenario, err := s.service.LoadScenario(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, scenario)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket disabled")
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session parameter required")
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
