// Package config loads scenario fixtures for the tactics server.
//
// A scenario is a JSON file in the configs directory describing:
//   - the terrain layout, one legend character per tile ('.' plain,
//     '#' street, 'F' forest, 'M' mountain, '~' river, 'S' sea, ...)
//   - optional overlay rows stacking a bridge ('=') or pier ('p') on a tile
//   - teams, units (type, player, position, fuel, passengers) and buildings
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	scenario, err := manager.LoadScenario("trench-corridor")
//	m, err := scenario.Build()
//
// Validation:
//
// Every scenario is validated on load: rectangular layout with known legend
// characters, overlays only on top of base tiles, units and buildings inside
// the map, no two units on one tile, fuel within the unit type's tank and
// passengers a carrier can actually carry.
package config
