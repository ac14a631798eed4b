package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidScenario  = errors.New("invalid scenario")
)

// DefaultScenario is loaded as the default when present in the directory.
const DefaultScenario = "skirmish"

// Manager handles scenario loading and caching
type Manager struct {
	dir             string
	defaultScenario *Scenario
	scenarios       map[string]*Scenario
	mu              sync.RWMutex
}

// NewManager creates a new scenario manager
func NewManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", dir)
	}

	m := &Manager{
		dir:       dir,
		scenarios: make(map[string]*Scenario),
	}

	if err := m.loadDefaultScenario(); err != nil {
		return nil, fmt.Errorf("failed to load default scenario: %w", err)
	}

	return m, nil
}

// LoadScenario loads a scenario by name
func (m *Manager) LoadScenario(name string) (*Scenario, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, ErrScenarioNotFound
	}

	m.mu.RLock()
	if s, exists := m.scenarios[name]; exists {
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if s, exists := m.scenarios[name]; exists {
		return s, nil
	}

	data, err := os.ReadFile(filepath.Join(m.dir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	m.scenarios[name] = s
	return s, nil
}

// ListScenarios returns information about all valid scenarios, sorted by id
func (m *Manager) ListScenarios() ([]*ScenarioInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var infos []*ScenarioInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		s, err := m.LoadScenario(id)
		if err != nil {
			// Skip invalid scenarios
			continue
		}
		infos = append(infos, s.Info(id, entry.Name()))
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ScenarioID < infos[j].ScenarioID })
	return infos, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *Scenario {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// SetDefault sets the default scenario by name
func (m *Manager) SetDefault(name string) error {
	s, err := m.LoadScenario(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScenario = s
	return nil
}

// RefreshCache drops every cached scenario and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.scenarios = make(map[string]*Scenario)
	m.mu.Unlock()

	return m.loadDefaultScenario()
}

func (m *Manager) loadDefaultScenario() error {
	s, err := m.LoadScenario(DefaultScenario)
	if err != nil {
		infos, listErr := m.ListScenarios()
		if listErr != nil || len(infos) == 0 {
			s = MinimalScenario()
		} else if s, err = m.LoadScenario(infos[0].ScenarioID); err != nil {
			s = MinimalScenario()
		}
	}

	m.mu.Lock()
	m.defaultScenario = s
	m.mu.Unlock()
	return nil
}

// SaveScenario validates s and writes it to disk
func (m *Manager) SaveScenario(name string, s *Scenario) error {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: bad scenario name %q", ErrInvalidScenario, name)
	}
	if err := ValidateScenario(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[name] = s
	m.mu.Unlock()
	return nil
}

// MinimalScenario is used when the config directory has no valid scenario.
func MinimalScenario() *Scenario {
	return &Scenario{
		Name:        "minimal",
		Description: "Built-in fallback skirmish",
		Layout: []string{
			"..F..",
			".~~~.",
			"..#..",
			".T.M.",
			".....",
		},
		Overlays: []string{
			".....",
			"..=..",
			".....",
			".....",
			".....",
		},
		Units: []UnitSpec{
			{ID: "inf-1", Type: "Infantry", Player: 1, X: 1, Y: 5},
			{ID: "tank-2", Type: "SmallTank", Player: 2, X: 5, Y: 1},
		},
		Buildings: []BuildingSpec{
			{Kind: "hq", Player: 1, X: 3, Y: 5},
			{Kind: "hq", Player: 2, X: 3, Y: 1},
		},
	}
}
