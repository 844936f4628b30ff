// Package config provides configuration management for the Shortest Path Maze.
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - Grid size and the column the player starts in
//   - Obstacle count as a minimum plus a random spread
//   - Whether any route of optimal length wins or only the pre-computed one
//   - Game messages for moves, blocked moves, victory and defeat
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("easy")
//
//	// Get default configuration (classic.json, or the built-in 16x16 board)
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// Names are plain identifiers; a trailing ".json" is accepted and ignored.
// Loaded configurations are cached until ReloadConfig or RefreshCache.
package config
