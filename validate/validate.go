// Command validate provides a small CLI that validates scenario JSON files
// (configs by default, or the directory given as the first argument). It
// checks:
//   - JSON structure and required fields
//   - Layout shape, tile characters and overlay stacking
//   - Unit and building placement
//   - Front lines: every headquarters can be reached by at least one enemy
//     unit on its full tank, and every unit can leave its tile
//
// Front line findings are warnings; only structural errors make a file
// invalid.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/tactics/game/board"
	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/engine"
	"github.com/wricardo/mcp-training/tactics/game/grid"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Warnings and Info are reported either way.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// validateScenarioFile loads and validates a single scenario file.
func validateScenarioFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	scenario, err := config.ParseScenario(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), config.ErrInvalidScenario.Error()+": "))
		return result
	}

	m, err := scenario.Build()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to build map: %v", err))
		return result
	}

	result.Warnings = append(result.Warnings, validateFrontLines(m)...)

	extent := m.Extent()
	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", scenario.Name),
		fmt.Sprintf("✓ Map: %dx%d (%s)", extent.Width, extent.Height, m.Biome()),
		fmt.Sprintf("✓ Units: %d", len(m.Units())),
		fmt.Sprintf("✓ Buildings: %d", len(scenario.Buildings)),
	)
	return result
}

// validateFrontLines reports headquarters no enemy unit can reach on a full
// tank and units that cannot move at all.
func validateFrontLines(m *board.Map) []string {
	var warnings []string

	reach := make(map[string]engine.SearchResult)
	for _, entry := range m.Units() {
		u := entry.Unit
		result := engine.Moveable(m, u, entry.Vector, engine.WithRadius(math.Inf(1)))
		reach[u.ID] = result
		if result.Len() <= 1 {
			warnings = append(warnings, fmt.Sprintf("Unit %s at %s cannot leave its tile", u.ID, entry.Vector))
		}
	}

	for _, v := range m.Extent().Vectors() {
		hq := m.BuildingAt(v)
		if hq == nil || hq.Kind != board.HQ {
			continue
		}
		if !hqThreatened(m, v, hq, reach) {
			warnings = append(warnings, fmt.Sprintf("HQ of player %d at %s is out of reach of every enemy unit", hq.Player, v))
		}
	}
	return warnings
}

// hqThreatened reports whether an enemy unit reaches the headquarters or a
// tile next to it.
func hqThreatened(m *board.Map, at grid.Vector, hq *board.Building, reach map[string]engine.SearchResult) bool {
	for _, entry := range m.Units() {
		if !m.IsOpponentEntity(entry.Unit, hq) {
			continue
		}
		result := reach[entry.Unit.ID]
		if result.Has(at) {
			return true
		}
		for _, n := range at.Adjacent() {
			if result.Has(n) {
				return true
			}
		}
	}
	return false
}

// main scans the scenario directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No scenario files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateScenarioFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Println("  ⚠️  " + warning)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scenarios are valid!")
	} else {
		fmt.Println("❌ Some scenarios have errors")
		os.Exit(1)
	}
}
