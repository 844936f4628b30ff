// Package mcp exposes the maze game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API (see package api) and the JSON answer is rendered as
// plain text that a language model can read. No game state lives here.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - game_state: board rendering with position and possible moves
//   - move, bulk_move: step through the maze
//   - reset_game, restart_game: new board or replay of the current one
//   - move_history: paginated history plus the moves on the current board
//   - hint, solution: next optimal step, and the full route once the game is over
//   - describe_cell: what occupies a given (row,column)
//   - find_path: stateless shortest path on a caller-described grid
//   - list_configs, game_instructions: configurations and rules
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
