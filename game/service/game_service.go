package service

import (
	"context"
	"errors"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/grid"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrNoUnit           = errors.New("no unit at position")
	ErrUnreachable      = errors.New("target not reachable")
	ErrInvalidQuery     = errors.New("invalid query")
)

// RadiusService defines all game-related operations
type RadiusService interface {
	// Session Management
	CreateSession(ctx context.Context, scenario string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Radius queries
	Moveable(ctx context.Context, sessionID string, q RadiusQuery) (*RadiusReport, error)
	Attackable(ctx context.Context, sessionID string, q AttackQuery) (*AttackReport, error)
	Path(ctx context.Context, sessionID string, from, to grid.Vector) (*PathReport, error)
	DescribeTile(ctx context.Context, sessionID string, at grid.Vector) (*TileInfo, error)

	// Game Operations
	MoveUnit(ctx context.Context, sessionID string, from, to grid.Vector) (*MoveResult, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*config.ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*config.Scenario, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, scenario string, m *board.Map) (*Session, error)
	Get(id string) (*Session, error)
	Update(id string, m *board.Map) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ScenarioManager handles scenario loading
type ScenarioManager interface {
	LoadScenario(name string) (*config.Scenario, error)
	ListScenarios() ([]*config.ScenarioInfo, error)
	GetDefault() *config.Scenario
}

// Notifier receives events for session subscribers.
type Notifier interface {
	Notify(event Event)
}
