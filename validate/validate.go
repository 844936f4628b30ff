// Command validate provides a small CLI that validates game configuration JSON
// files in the ../configs directory (or the directory given as the first
// argument). It checks:
//   - JSON structure, with unknown keys rejected
//   - Required fields and grid bounds
//   - Obstacle counts that fit on the grid outside the start column
//   - Required messages and their format verbs
//   - Playability: sampled boards always have a route whose length matches
//     the recorded optimum
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
)

// playabilitySamples is the number of boards generated per configuration
const playabilitySamples = 50

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	// Required fields
	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	// Grid
	if config.GridSize < engine.MinGridSize || config.GridSize > engine.MaxGridSize {
		result.fail("grid_size must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, config.GridSize)
	} else if config.StartColumn < 1 || config.StartColumn > config.GridSize {
		result.fail("start_column must be between 1 and %d, got %d", config.GridSize, config.StartColumn)
	}

	// Obstacles
	if config.MinObstacles < 0 {
		result.fail("min_obstacles cannot be negative, got %d", config.MinObstacles)
	}
	if config.ObstacleSpread < 0 {
		result.fail("obstacle_spread cannot be negative, got %d", config.ObstacleSpread)
	}
	if result.Valid {
		freeCells := config.GridSize * (config.GridSize - 1)
		if most := config.MinObstacles + config.ObstacleSpread; most > freeCells {
			result.fail("up to %d obstacles requested but only %d cells lie outside the start column", most, freeCells)
		}
	}

	// Messages
	validateMessages(&result, config.Messages)

	if !result.Valid {
		return result
	}

	// Final gate: the engine must accept the file as-is
	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	minSteps, maxSteps, err := validatePlayability(&config, playabilitySamples)
	if err != nil {
		result.fail("Playability: %v", err)
		return result
	}

	mode := "exact route"
	if config.AllowAnyShortestPath {
		mode = "any shortest route"
	}
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Grid: %dx%d, start column %d", config.GridSize, config.GridSize, config.StartColumn),
		fmt.Sprintf("✓ Obstacles: %d to %d", config.MinObstacles, config.MinObstacles+max(config.ObstacleSpread-1, 0)),
		fmt.Sprintf("✓ Victory: %s", mode),
		fmt.Sprintf("✓ Playability: %d sample boards, optimal steps %d to %d", playabilitySamples, minSteps, maxSteps),
	)
	return result
}

// validateMessages requires every message and checks the format verbs the
// engine fills in.
func validateMessages(result *ValidationResult, messages engine.Messages) {
	required := []struct {
		key   string
		value string
	}{
		{"welcome", messages.Welcome},
		{"moved", messages.Moved},
		{"blocked", messages.Blocked},
		{"victory", messages.Victory},
		{"defeat", messages.Defeat},
		{"game_over", messages.GameOver},
	}
	for _, msg := range required {
		if msg.value == "" {
			result.fail("Missing required message: %s", msg.key)
		}
	}

	if messages.Victory != "" && strings.Count(messages.Victory, "%d") != 1 {
		result.fail("messages.victory must contain exactly one %%d, got %q", messages.Victory)
	}
	if messages.Defeat != "" && strings.Count(messages.Defeat, "%d") != 2 {
		result.fail("messages.defeat must contain two %%d, got %q", messages.Defeat)
	}
	if strings.Count(messages.Moved, "%s") > 1 {
		result.fail("messages.moved may contain at most one %%s, got %q", messages.Moved)
	}
}

// validatePlayability generates sample boards from a fixed seed and checks
// each one independently: the destination must be reachable, no obstacle
// may sit on the recorded optimal route, and a fresh search must agree on
// its length.
func validatePlayability(config *engine.GameConfig, samples int) (minSteps, maxSteps int, err error) {
	generator := engine.NewSeededGenerator(uint64(len(config.Name)) + 1)

	for i := 0; i < samples; i++ {
		board, err := generator.Generate(config)
		if err != nil {
			return 0, 0, fmt.Errorf("board %d: %w", i+1, err)
		}
		state := engine.NewGameState(board, config)

		for _, p := range state.ShortestPath {
			if state.IsObstacle(p) {
				return 0, 0, fmt.Errorf("board %d: obstacle on the optimal route at %s", i+1, p)
			}
		}

		path, err := pathfind.FindShortestPath(state.Start, state.Destination, pathfind.CardinalDirections, state.Walkable())
		if err != nil {
			return 0, 0, fmt.Errorf("board %d: %w", i+1, err)
		}
		if len(path) == 0 {
			return 0, 0, fmt.Errorf("board %d: destination %s unreachable from %s", i+1, state.Destination, state.Start)
		}
		if steps := len(path) - 1; steps != state.OptimalSteps {
			return 0, 0, fmt.Errorf("board %d: search found %d steps but the board records %d", i+1, steps, state.OptimalSteps)
		}

		if i == 0 || state.OptimalSteps < minSteps {
			minSteps = state.OptimalSteps
		}
		maxSteps = max(maxSteps, state.OptimalSteps)
	}
	return minSteps, maxSteps, nil
}

// main scans the config directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No configuration files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
