package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/engine"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/terrain"
)

// Render marks
const (
	markMove   = '*'
	markAttack = 'x'
	markPath   = 'o'
)

// radiusServiceImpl implements the RadiusService interface
type radiusServiceImpl struct {
	sessions  SessionManager
	scenarios ScenarioManager
	notifier  Notifier
	logger    *slog.Logger
	mu        sync.RWMutex
}

// NewRadiusService creates a new service instance. notifier may be nil.
func NewRadiusService(sessions SessionManager, scenarios ScenarioManager, notifier Notifier) RadiusService {
	return &radiusServiceImpl{
		sessions:  sessions,
		scenarios: scenarios,
		notifier:  notifier,
		logger:    slog.Default().With("component", "service"),
	}
}

// CreateSession builds the named scenario (or the default one) into a new session
func (s *radiusServiceImpl) CreateSession(ctx context.Context, scenario string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sc *config.Scenario
	if scenario != "" {
		loaded, err := s.scenarios.LoadScenario(scenario)
		if err != nil {
			return nil, s.scenarioError(scenario, err)
		}
		sc = loaded
	} else {
		sc = s.scenarios.GetDefault()
		scenario = "default"
	}

	m, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario %s: %w", scenario, err)
	}

	sess, err := s.sessions.Create("", scenario, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created", "session", sess.ID, "scenario", scenario)
	s.notify(EventSessionCreated, sess.ID, fmt.Sprintf("Session created from %s", sc.Name), nil)
	return sessionInfo(sess), nil
}

// scenarioError adds the available scenario ids to a not-found error
func (s *radiusServiceImpl) scenarioError(name string, err error) error {
	if !errors.Is(err, config.ErrScenarioNotFound) {
		return fmt.Errorf("failed to load scenario %s: %w", name, err)
	}
	infos, listErr := s.scenarios.ListScenarios()
	if listErr != nil || len(infos) == 0 {
		return fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ScenarioID)
	}
	return fmt.Errorf("%w: %s. Available scenarios: %v", ErrScenarioNotFound, name, ids)
}

// GetSession retrieves session information
func (s *radiusServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *radiusServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *radiusServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// Moveable returns the movement radius of the unit at the query position
func (s *radiusServiceImpl) Moveable(ctx context.Context, sessionID string, q RadiusQuery) (*RadiusReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	origin := grid.Vec(q.X, q.Y)
	u, err := unitAt(sess.Map, origin)
	if err != nil {
		return nil, err
	}
	radius, err := queryRadius(u, q.Radius)
	if err != nil {
		return nil, err
	}

	result := engine.Moveable(sess.Map, u, origin, engine.WithRadius(radius))
	report := &RadiusReport{
		SessionID: sess.ID,
		Unit:      unitInfo(origin, u),
		Radius:    math.Min(radius, float64(u.Fuel)),
		Items:     result.Items(),
	}
	marks := make(map[grid.Vector]rune)
	for _, item := range result.Destinations(sess.Map, u) {
		report.Destinations = append(report.Destinations, item.Vector)
		marks[item.Vector] = markMove
	}
	report.Map = sess.Map.Render(marks)

	s.logger.Debug("moveable", "session", sess.ID, "unit", u.ID, "origin", origin.String(), "reachable", result.Len())
	s.notify(EventRadius, sess.ID, fmt.Sprintf("%s can reach %d tiles", u.Type.Name, result.Len()), report)
	return report, nil
}

// Attackable returns the attack radius of the unit at the query position
func (s *radiusServiceImpl) Attackable(ctx context.Context, sessionID string, q AttackQuery) (*AttackReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mode, err := engine.ParseAttackMode(q.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	origin := grid.Vec(q.X, q.Y)
	u, err := unitAt(sess.Map, origin)
	if err != nil {
		return nil, err
	}
	radius, err := queryRadius(u, q.Radius)
	if err != nil {
		return nil, err
	}

	result := engine.Attackable(sess.Map, u, origin, mode, engine.WithRadius(radius))
	report := &AttackReport{
		SessionID: sess.ID,
		Unit:      unitInfo(origin, u),
		Mode:      mode.String(),
		Radius:    math.Min(radius, float64(u.Fuel)),
		Items:     result.Items(),
		Targets:   result.Targets(sess.Map, u),
	}
	marks := make(map[grid.Vector]rune, result.Len())
	for _, v := range result.Vectors() {
		marks[v] = markAttack
	}
	report.Map = sess.Map.Render(marks)

	s.logger.Debug("attackable", "session", sess.ID, "unit", u.ID, "mode", mode.String(), "tiles", result.Len(), "targets", len(report.Targets))
	s.notify(EventRadius, sess.ID, fmt.Sprintf("%s threatens %d tiles", u.Type.Name, result.Len()), report)
	return report, nil
}

// Path returns the cheapest path for the unit at from to reach to this turn
func (s *radiusServiceImpl) Path(ctx context.Context, sessionID string, from, to grid.Vector) (*PathReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	u, err := unitAt(sess.Map, from)
	if err != nil {
		return nil, err
	}
	if !sess.Map.Contains(to) {
		return nil, fmt.Errorf("%w: target %s is outside the map", ErrInvalidQuery, to)
	}

	result := engine.Moveable(sess.Map, u, from, engine.WithRadius(float64(u.Type.Radius)))
	report := &PathReport{
		SessionID: sess.ID,
		Unit:      unitInfo(from, u),
		From:      from,
		To:        to,
		Steps:     []grid.Vector{},
	}
	if item, ok := result.Get(to); ok {
		report.Reachable = true
		report.Cost = item.Cost
		report.Steps = engine.GetMovementPath(sess.Map, to, result, nil).Path
	}
	marks := make(map[grid.Vector]rune, len(report.Steps))
	for _, v := range report.Steps {
		marks[v] = markPath
	}
	report.Map = sess.Map.Render(marks)
	return report, nil
}

// DescribeTile returns the layers, costs and occupants of one tile
func (s *radiusServiceImpl) DescribeTile(ctx context.Context, sessionID string, at grid.Vector) (*TileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	cell, err := sess.Map.CellAt(at)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	info := &TileInfo{
		Position: at,
		Costs:    make(map[string]float64),
	}
	for i := 0; ; i++ {
		tile, ok := cell.Layer(i)
		if !ok {
			break
		}
		info.Layers = append(info.Layers, tile.Name)
	}
	for _, mt := range terrain.MovementTypes() {
		info.Costs[mt.String()] = engine.CellCost(cell, mt)
	}
	if b := sess.Map.BuildingAt(at); b != nil {
		info.Building = b.Kind.String()
	}
	if u := sess.Map.UnitAt(at); u != nil {
		ui := unitInfo(at, u)
		info.Unit = &ui
	}
	return info, nil
}

// MoveUnit moves the unit at from to one of its destinations, spending
// fuel for the rounded-up path cost. Moving onto a friendly transporter
// boards it.
func (s *radiusServiceImpl) MoveUnit(ctx context.Context, sessionID string, from, to grid.Vector) (*MoveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	m := sess.Map
	u, err := unitAt(m, from)
	if err != nil {
		return nil, err
	}
	if !m.Contains(to) {
		return nil, fmt.Errorf("%w: target %s is outside the map", ErrInvalidQuery, to)
	}

	result := engine.Moveable(m, u, from, engine.WithRadius(float64(u.Type.Radius)))
	var target *engine.RadiusItem
	for _, item := range result.Destinations(m, u) {
		if item.Vector == to {
			target = &item
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s cannot end its move on %s", ErrUnreachable, u.Type.Name, to)
	}

	path := engine.GetMovementPath(m, to, result, nil).Path
	fuel := int(math.Ceil(target.Cost))
	moveResult := &MoveResult{
		Success:  true,
		From:     from,
		To:       to,
		Path:     path,
		Cost:     target.Cost,
		FuelUsed: fuel,
	}
	if from == to {
		moveResult.Message = fmt.Sprintf("%s holds position", u.Type.Name)
		moveResult.Unit = unitInfo(from, u)
		moveResult.Session = sessionInfo(sess)
		return moveResult, nil
	}

	var next *board.Map
	if carrier := m.UnitAt(to); carrier != nil {
		passenger := u.Clone()
		passenger.Fuel = max(passenger.Fuel-fuel, 0)
		loaded := carrier.Clone()
		loaded.Transports = append(loaded.Transports, passenger)
		next, err = m.WithoutUnit(from).WithUnit(to, loaded)
		moveResult.Boarded = true
		moveResult.Unit = unitInfo(to, passenger)
		moveResult.Message = fmt.Sprintf("%s boarded %s", u.Type.Name, carrier.Type.Name)
	} else {
		next, err = m.WithUnitMoved(from, to, fuel)
		if err == nil {
			moveResult.Unit = unitInfo(to, next.UnitAt(to))
		}
		moveResult.Message = fmt.Sprintf("%s moved to %s", u.Type.Name, to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to move unit: %w", err)
	}

	updated, err := s.sessions.Update(sess.ID, next)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	moveResult.Session = sessionInfo(updated)

	s.logger.Info("unit moved", "session", sess.ID, "unit", u.ID, "from", from.String(), "to", to.String(), "cost", target.Cost, "fuel", fuel)
	s.notify(EventUnitMoved, sess.ID, moveResult.Message, map[string]any{
		"unit": moveResult.Unit,
		"from": from,
		"to":   to,
		"path": path,
	})
	return moveResult, nil
}

// ListScenarios returns information about every valid scenario
func (s *radiusServiceImpl) ListScenarios(ctx context.Context) ([]*config.ScenarioInfo, error) {
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a scenario by name
func (s *radiusServiceImpl) LoadScenario(ctx context.Context, name string) (*config.Scenario, error) {
	sc, err := s.scenarios.LoadScenario(name)
	if err != nil {
		return nil, s.scenarioError(name, err)
	}
	return sc, nil
}

func (s *radiusServiceImpl) session(id string) (*Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.sessions.UpdateLastAccessed(id)
	return sess, nil
}

func (s *radiusServiceImpl) notify(kind, sessionID, message string, data any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(Event{
		Type:      kind,
		SessionID: sessionID,
		Message:   message,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func unitAt(m *board.Map, v grid.Vector) (*board.Unit, error) {
	if !m.Contains(v) {
		return nil, fmt.Errorf("%w: %s is outside the map", ErrInvalidQuery, v)
	}
	u := m.UnitAt(v)
	if u == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoUnit, v)
	}
	return u, nil
}

func queryRadius(u *board.Unit, radius *float64) (float64, error) {
	if radius == nil {
		return float64(u.Type.Radius), nil
	}
	if *radius < 0 || math.IsNaN(*radius) {
		return 0, fmt.Errorf("%w: radius must not be negative", ErrInvalidQuery)
	}
	return *radius, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	m := sess.Map
	entries := m.Units()
	info := &SessionInfo{
		ID:             sess.ID,
		Scenario:       sess.Scenario,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Width:          m.Extent().Width,
		Height:         m.Extent().Height,
		Biome:          m.Biome().String(),
		Moves:          sess.Moves,
		Units:          make([]UnitInfo, 0, len(entries)),
		Map:            m.Render(nil),
	}
	for _, e := range entries {
		info.Units = append(info.Units, unitInfo(e.Vector, e.Unit))
	}
	return info
}

func unitInfo(v grid.Vector, u *board.Unit) UnitInfo {
	info := UnitInfo{
		ID:           u.ID,
		Type:         u.Type.Name,
		MovementType: u.MovementType().String(),
		Player:       u.Player,
		Fuel:         u.Fuel,
		Radius:       u.Type.Radius,
		Position:     v,
	}
	for _, t := range u.Transports {
		info.Transports = append(info.Transports, t.ID)
	}
	return info
}
