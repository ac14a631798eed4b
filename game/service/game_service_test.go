package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/service"
	"github.com/wricardo/mcp-training/tactics/game/session"
)

// MockScenarioManager implements service.ScenarioManager for testing
type MockScenarioManager struct {
	scenarios map[string]*config.Scenario
}

func NewMockScenarioManager() *MockScenarioManager {
	field := &config.Scenario{
		Name:        "Field",
		Description: "Open field with a truck",
		Layout: []string{
			"......",
			"......",
			"......",
		},
		Units: []config.UnitSpec{
			{ID: "truck-1", Type: "Transporter", Player: 1, X: 1, Y: 1},
			{ID: "inf-1", Type: "Infantry", Player: 1, X: 1, Y: 2},
			{ID: "inf-9", Type: "Infantry", Player: 2, X: 5, Y: 2},
		},
		Buildings: []config.BuildingSpec{
			{Kind: "hq", Player: 1, X: 1, Y: 3},
		},
	}
	return &MockScenarioManager{
		scenarios: map[string]*config.Scenario{"field": field},
	}
}

func (m *MockScenarioManager) LoadScenario(name string) (*config.Scenario, error) {
	if s, ok := m.scenarios[name]; ok {
		return s, nil
	}
	return nil, config.ErrScenarioNotFound
}

func (m *MockScenarioManager) ListScenarios() ([]*config.ScenarioInfo, error) {
	var infos []*config.ScenarioInfo
	for id, s := range m.scenarios {
		infos = append(infos, s.Info(id, id+".json"))
	}
	return infos, nil
}

func (m *MockScenarioManager) GetDefault() *config.Scenario {
	return m.scenarios["field"]
}

// MockNotifier records every event it receives
type MockNotifier struct {
	mu     sync.Mutex
	events []service.Event
}

func (n *MockNotifier) Notify(event service.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *MockNotifier) Types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]string, 0, len(n.events))
	for _, e := range n.events {
		types = append(types, e.Type)
	}
	return types
}

func newTestService(t *testing.T) (service.RadiusService, *MockNotifier) {
	t.Helper()
	notifier := &MockNotifier{}
	return service.NewRadiusService(session.NewManager(), NewMockScenarioManager(), notifier), notifier
}

func createSession(t *testing.T, svc service.RadiusService) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), "field")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return info
}

func float(f float64) *float64 {
	return &f
}

func TestRadiusService_CreateSession(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	t.Run("named scenario", func(t *testing.T) {
		info := createSession(t, svc)
		if info.Scenario != "field" {
			t.Errorf("Expected scenario 'field', got %q", info.Scenario)
		}
		if info.Width != 6 || info.Height != 3 {
			t.Errorf("Expected 6x3 map, got %dx%d", info.Width, info.Height)
		}
		if len(info.Units) != 3 {
			t.Errorf("Expected 3 units, got %d", len(info.Units))
		}
		if info.Biome != "grassland" {
			t.Errorf("Expected grassland biome, got %q", info.Biome)
		}
		if !strings.Contains(info.Map, "1") || !strings.Contains(info.Map, "2") {
			t.Errorf("Expected rendered units in map:\n%s", info.Map)
		}
	})

	t.Run("default scenario", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "")
		if err != nil {
			t.Fatalf("Failed to create default session: %v", err)
		}
		if info.Scenario != "default" {
			t.Errorf("Expected scenario 'default', got %q", info.Scenario)
		}
	})

	t.Run("unknown scenario", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "missing")
		if !errors.Is(err, service.ErrScenarioNotFound) {
			t.Fatalf("Expected ErrScenarioNotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), "field") {
			t.Errorf("Expected available scenarios in error, got %v", err)
		}
	})

	if types := notifier.Types(); len(types) != 2 || types[0] != service.EventSessionCreated {
		t.Errorf("Expected two session_created events, got %v", types)
	}
}

func TestRadiusService_SessionLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info := createSession(t, svc)

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("Expected session %s, got %s", info.ID, got.ID)
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d (%v)", len(sessions), err)
	}

	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestRadiusService_Moveable(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()
	info := createSession(t, svc)

	report, err := svc.Moveable(ctx, info.ID, service.RadiusQuery{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Moveable failed: %v", err)
	}
	if report.Unit.ID != "inf-1" {
		t.Errorf("Expected inf-1, got %s", report.Unit.ID)
	}
	if report.Radius != 3 {
		t.Errorf("Expected radius 3, got %v", report.Radius)
	}
	if report.Items[0].Vector != grid.Vec(1, 2) || report.Items[0].Cost != 0 {
		t.Errorf("Expected origin first at cost 0, got %+v", report.Items[0])
	}

	costs := make(map[grid.Vector]float64)
	for _, item := range report.Items {
		costs[item.Vector] = item.Cost
	}
	if cost, ok := costs[grid.Vec(4, 2)]; !ok || cost != 3 {
		t.Errorf("Expected (4,2) at cost 3, got %v (%v)", cost, ok)
	}
	if _, ok := costs[grid.Vec(5, 2)]; ok {
		t.Error("Hostile tile must not be reachable")
	}

	hq := false
	for _, d := range report.Destinations {
		if d == grid.Vec(1, 3) {
			hq = true
		}
	}
	if !hq {
		t.Error("Expected the empty HQ tile as a destination")
	}
	if !strings.Contains(report.Map, "*") {
		t.Errorf("Expected marks in rendered map:\n%s", report.Map)
	}

	t.Run("radius override", func(t *testing.T) {
		report, err := svc.Moveable(ctx, info.ID, service.RadiusQuery{X: 1, Y: 2, Radius: float(1)})
		if err != nil {
			t.Fatalf("Moveable failed: %v", err)
		}
		for _, item := range report.Items {
			if item.Cost > 1 {
				t.Errorf("Item %s exceeds radius 1 with cost %v", item.Vector, item.Cost)
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		cases := []struct {
			name string
			id   string
			q    service.RadiusQuery
			want error
		}{
			{"negative radius", info.ID, service.RadiusQuery{X: 1, Y: 2, Radius: float(-1)}, service.ErrInvalidQuery},
			{"out of bounds", info.ID, service.RadiusQuery{X: 9, Y: 9}, service.ErrInvalidQuery},
			{"empty tile", info.ID, service.RadiusQuery{X: 3, Y: 3}, service.ErrNoUnit},
			{"unknown session", "nope", service.RadiusQuery{X: 1, Y: 2}, service.ErrSessionNotFound},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := svc.Moveable(ctx, tc.id, tc.q); !errors.Is(err, tc.want) {
					t.Errorf("Expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	found := false
	for _, typ := range notifier.Types() {
		if typ == service.EventRadius {
			found = true
		}
	}
	if !found {
		t.Error("Expected a radius event")
	}
}

func TestRadiusService_Attackable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info := createSession(t, svc)

	for _, mode := range []string{"", "default", "cost"} {
		t.Run("mode "+mode, func(t *testing.T) {
			report, err := svc.Attackable(ctx, info.ID, service.AttackQuery{X: 1, Y: 2, Mode: mode})
			if err != nil {
				t.Fatalf("Attackable failed: %v", err)
			}
			if len(report.Targets) != 1 || report.Targets[0].Vector != grid.Vec(5, 2) {
				t.Fatalf("Expected the enemy at (5,2) as only target, got %+v", report.Targets)
			}
			if report.Targets[0].Parent != grid.Vec(4, 2) {
				t.Errorf("Expected attack from (4,2), got %s", report.Targets[0].Parent)
			}
		})
	}

	if _, err := svc.Attackable(ctx, info.ID, service.AttackQuery{X: 1, Y: 2, Mode: "sideways"}); !errors.Is(err, service.ErrInvalidQuery) {
		t.Errorf("Expected ErrInvalidQuery for bad mode, got %v", err)
	}
}

func TestRadiusService_Path(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info := createSession(t, svc)

	report, err := svc.Path(ctx, info.ID, grid.Vec(1, 2), grid.Vec(3, 2))
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if !report.Reachable || report.Cost != 2 {
		t.Errorf("Expected reachable at cost 2, got %v at %v", report.Reachable, report.Cost)
	}
	if len(report.Steps) != 2 || report.Steps[1] != grid.Vec(3, 2) {
		t.Errorf("Expected two steps ending at (3,2), got %v", report.Steps)
	}
	if !strings.Contains(report.Map, "\n1oo.2.\n") {
		t.Errorf("Expected path marked on the map, got\n%s", report.Map)
	}

	report, err = svc.Path(ctx, info.ID, grid.Vec(1, 2), grid.Vec(6, 3))
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if report.Reachable || len(report.Steps) != 0 {
		t.Errorf("Expected unreachable target with no steps, got %+v", report)
	}

	if _, err := svc.Path(ctx, info.ID, grid.Vec(1, 2), grid.Vec(0, 0)); !errors.Is(err, service.ErrInvalidQuery) {
		t.Errorf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestRadiusService_MoveUnit(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()
	info := createSession(t, svc)

	result, err := svc.MoveUnit(ctx, info.ID, grid.Vec(1, 2), grid.Vec(3, 2))
	if err != nil {
		t.Fatalf("MoveUnit failed: %v", err)
	}
	if !result.Success || result.FuelUsed != 2 {
		t.Errorf("Expected success using 2 fuel, got %+v", result)
	}
	if result.Unit.Position != grid.Vec(3, 2) || result.Unit.Fuel != 48 {
		t.Errorf("Expected unit at (3,2) with 48 fuel, got %+v", result.Unit)
	}
	if result.Session.Moves != 1 {
		t.Errorf("Expected 1 move, got %d", result.Session.Moves)
	}

	t.Run("unreachable", func(t *testing.T) {
		_, err := svc.MoveUnit(ctx, info.ID, grid.Vec(3, 2), grid.Vec(5, 2))
		if !errors.Is(err, service.ErrUnreachable) {
			t.Errorf("Expected ErrUnreachable onto hostile unit, got %v", err)
		}
	})

	t.Run("no unit", func(t *testing.T) {
		_, err := svc.MoveUnit(ctx, info.ID, grid.Vec(1, 2), grid.Vec(2, 2))
		if !errors.Is(err, service.ErrNoUnit) {
			t.Errorf("Expected ErrNoUnit at the old position, got %v", err)
		}
	})

	t.Run("board transporter", func(t *testing.T) {
		result, err := svc.MoveUnit(ctx, info.ID, grid.Vec(3, 2), grid.Vec(1, 1))
		if err != nil {
			t.Fatalf("Boarding failed: %v", err)
		}
		if !result.Boarded {
			t.Error("Expected Boarded")
		}
		tile, err := svc.DescribeTile(ctx, info.ID, grid.Vec(1, 1))
		if err != nil {
			t.Fatalf("DescribeTile failed: %v", err)
		}
		if tile.Unit == nil || len(tile.Unit.Transports) != 1 || tile.Unit.Transports[0] != "inf-1" {
			t.Errorf("Expected truck carrying inf-1, got %+v", tile.Unit)
		}
	})

	moved := 0
	for _, typ := range notifier.Types() {
		if typ == service.EventUnitMoved {
			moved++
		}
	}
	if moved != 2 {
		t.Errorf("Expected 2 unit_moved events, got %d", moved)
	}
}

func TestRadiusService_DescribeTile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info := createSession(t, svc)

	tile, err := svc.DescribeTile(ctx, info.ID, grid.Vec(1, 3))
	if err != nil {
		t.Fatalf("DescribeTile failed: %v", err)
	}
	if len(tile.Layers) != 1 || tile.Layers[0] != "Plain" {
		t.Errorf("Expected a single Plain layer, got %v", tile.Layers)
	}
	if tile.Building != "hq" {
		t.Errorf("Expected hq building, got %q", tile.Building)
	}
	if tile.Costs["tires"] != 2 || tile.Costs["soldier"] != 1 {
		t.Errorf("Unexpected plain costs: %v", tile.Costs)
	}
	if tile.Unit != nil {
		t.Errorf("Expected no unit, got %+v", tile.Unit)
	}

	if _, err := svc.DescribeTile(ctx, info.ID, grid.Vec(7, 1)); !errors.Is(err, service.ErrInvalidQuery) {
		t.Errorf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestRadiusService_Scenarios(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	infos, err := svc.ListScenarios(ctx)
	if err != nil || len(infos) != 1 || infos[0].ScenarioID != "field" {
		t.Fatalf("Unexpected scenarios: %v (%v)", infos, err)
	}
	s, err := svc.LoadScenario(ctx, "field")
	if err != nil || s.Name != "Field" {
		t.Fatalf("Unexpected scenario: %v (%v)", s, err)
	}
	if _, err := svc.LoadScenario(ctx, "missing"); !errors.Is(err, service.ErrScenarioNotFound) {
		t.Errorf("Expected ErrScenarioNotFound, got %v", err)
	}
}

func TestRadiusService_Concurrency(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	info := createSession(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.Moveable(ctx, info.ID, service.RadiusQuery{X: 5, Y: 2})
		}()
		go func() {
			defer wg.Done()
			svc.Attackable(ctx, info.ID, service.AttackQuery{X: 5, Y: 2})
		}()
	}
	wg.Wait()
}
