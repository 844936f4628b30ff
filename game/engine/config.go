package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMessages returns the texts used when a configuration leaves them out
func DefaultMessages() Messages {
	return Messages{
		Welcome:  "Find the shortest way to the yellow square!",
		Moved:    "Moved to %s",
		Blocked:  "Can't move there!",
		Victory:  "You won! Optimal route in %d steps!",
		Defeat:   "You lost! You took %d steps, the optimal route takes %d.",
		GameOver: "Game over. Reset to play a new board.",
	}
}

// DefaultConfig returns the classic 16x16 board configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Classic 16x16 board with 50 to 149 obstacles",
		GridSize:       DefaultGridSize,
		StartColumn:    1,
		MinObstacles:   50,
		ObstacleSpread: 100,
		Messages:       DefaultMessages(),
	}
}

// ApplyDefaults fills zero-valued optional fields
func ApplyDefaults(config *GameConfig) {
	if config.GridSize == 0 {
		config.GridSize = DefaultGridSize
	}
	if config.StartColumn == 0 {
		config.StartColumn = 1
	}

	defaults := DefaultMessages()
	if config.Messages.Welcome == "" {
		config.Messages.Welcome = defaults.Welcome
	}
	if config.Messages.Moved == "" {
		config.Messages.Moved = defaults.Moved
	}
	if config.Messages.Blocked == "" {
		config.Messages.Blocked = defaults.Blocked
	}
	if config.Messages.Victory == "" {
		config.Messages.Victory = defaults.Victory
	}
	if config.Messages.Defeat == "" {
		config.Messages.Defeat = defaults.Defeat
	}
	if config.Messages.GameOver == "" {
		config.Messages.GameOver = defaults.GameOver
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}
	if config.StartColumn < 1 || config.StartColumn > config.GridSize {
		return fmt.Errorf("config validation: start_column must be between 1 and grid_size (%d), got %d", config.GridSize, config.StartColumn)
	}

	// Validate obstacle settings
	if config.MinObstacles < 0 {
		return fmt.Errorf("config validation: min_obstacles cannot be negative, got %d", config.MinObstacles)
	}
	if config.ObstacleSpread < 0 {
		return fmt.Errorf("config validation: obstacle_spread cannot be negative, got %d", config.ObstacleSpread)
	}
	if config.MinObstacles+config.ObstacleSpread > MaxObstacles {
		return fmt.Errorf("config validation: min_obstacles + obstacle_spread must not exceed %d, got %d",
			MaxObstacles, config.MinObstacles+config.ObstacleSpread)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if config.Messages.Defeat == "" {
		return fmt.Errorf("config validation: messages.defeat is required")
	}

	// Validate format strings
	if strings.Count(config.Messages.Victory, "%d") != 1 {
		return fmt.Errorf("config validation: messages.victory must contain exactly one %%d for steps taken")
	}
	if strings.Count(config.Messages.Defeat, "%d") != 2 {
		return fmt.Errorf("config validation: messages.defeat must contain two %%d for steps taken and optimal steps")
	}
	if config.Messages.Moved != "" && strings.Count(config.Messages.Moved, "%s") > 1 {
		return fmt.Errorf("config validation: messages.moved may contain at most one %%s for the position")
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// ParseGameConfig decodes, defaults and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	ApplyDefaults(&config)

	// Validate the loaded configuration
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
