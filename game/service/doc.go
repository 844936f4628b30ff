// Package service provides the business logic layer for the Shortest Path Maze.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing with per-step traces
//   - Board resets (new board) and restarts (same board)
//   - Move history pagination
//   - Solution reveal and hints
//   - Stateless shortest-path queries
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// The service layer sits between the transports (HTTP, WebSocket, MCP,
// terminal) and the game engine. Each session owns its own engine; the
// states handed out are detached views with the optimal path withheld until
// the game is over.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "right", false)
package service
