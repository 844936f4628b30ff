// Package engine provides the core game logic for the Shortest Path Maze.
//
// The engine package implements the game mechanics including:
//   - Board generation: start, destination, optimal path and obstacles
//   - Grid-based movement and collision detection
//   - Victory and defeat against the pre-computed optimal path
//   - Game state management and persistence
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current game state,
// while GameConfig defines the board parameters loaded from JSON files.
// Boards are produced by a BoardGenerator; RandomGenerator is the default.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the player
//	success := gameEngine.Move("right")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// The player starts on a cell of the start column and must reach the
// destination while obstacles block some cells. Obstacles never sit on the
// optimal path, so the destination is always reachable. Reaching the
// destination ends the game: it is a victory when the route taken is the
// optimal one, and a defeat otherwise.
package engine
