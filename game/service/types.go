package service

import (
	"time"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/engine"
	"github.com/wricardo/mcp-training/tactics/game/grid"
)

// Session is an active game holding the current map snapshot.
type Session struct {
	ID             string
	Scenario       string
	Map            *board.Map
	Moves          int
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string     `json:"id"`
	Scenario       string     `json:"scenario"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Biome          string     `json:"biome"`
	Moves          int        `json:"moves"`
	Units          []UnitInfo `json:"units"`
	Map            string     `json:"map"`
}

// UnitInfo describes a unit on the map.
type UnitInfo struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	MovementType string      `json:"movement_type"`
	Player       int         `json:"player"`
	Fuel         int         `json:"fuel"`
	Radius       int         `json:"radius"`
	Position     grid.Vector `json:"position"`
	Transports   []string    `json:"transports,omitempty"`
}

// RadiusQuery selects the unit at (X, Y). Radius overrides the unit
// type's movement radius when set.
type RadiusQuery struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Radius *float64 `json:"radius,omitempty"`
}

// AttackQuery is a RadiusQuery with an attack mode ("default" or "cost").
type AttackQuery struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Mode   string   `json:"mode,omitempty"`
	Radius *float64 `json:"radius,omitempty"`
}

// RadiusReport is the movement radius of a unit.
type RadiusReport struct {
	SessionID    string              `json:"session_id"`
	Unit         UnitInfo            `json:"unit"`
	Radius       float64             `json:"radius"`
	Items        []engine.RadiusItem `json:"items"`
	Destinations []grid.Vector       `json:"destinations"`
	Map          string              `json:"map"`
}

// AttackReport is the attack radius of a unit.
type AttackReport struct {
	SessionID string              `json:"session_id"`
	Unit      UnitInfo            `json:"unit"`
	Mode      string              `json:"mode"`
	Radius    float64             `json:"radius"`
	Items     []engine.AttackItem `json:"items"`
	Targets   []engine.AttackItem `json:"targets"`
	Map       string              `json:"map"`
}

// PathReport is the cheapest path from a unit to a target vector.
type PathReport struct {
	SessionID string        `json:"session_id"`
	Unit      UnitInfo      `json:"unit"`
	From      grid.Vector   `json:"from"`
	To        grid.Vector   `json:"to"`
	Reachable bool          `json:"reachable"`
	Steps     []grid.Vector `json:"steps"`
	Cost      float64       `json:"cost"`
	Map       string        `json:"map"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Unit     UnitInfo      `json:"unit"`
	From     grid.Vector   `json:"from"`
	To       grid.Vector   `json:"to"`
	Path     []grid.Vector `json:"path"`
	Cost     float64       `json:"cost"`
	FuelUsed int           `json:"fuel_used"`
	Boarded  bool          `json:"boarded,omitempty"`
	Session  *SessionInfo  `json:"session"`
}

// TileInfo describes one map cell.
type TileInfo struct {
	Position grid.Vector        `json:"position"`
	Layers   []string           `json:"layers"`
	Costs    map[string]float64 `json:"costs"`
	Building string             `json:"building,omitempty"`
	Unit     *UnitInfo          `json:"unit,omitempty"`
}

// Event is published to a Notifier after state changes and queries.
type Event struct {
	Type      string    `json:"type"` // "session_created", "unit_moved", "radius"
	SessionID string    `json:"session_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

const (
	EventSessionCreated = "session_created"
	EventUnitMoved      = "unit_moved"
	EventRadius         = "radius"
)
