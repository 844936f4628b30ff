// Package api provides the HTTP REST API of the shortest-path maze game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"}, body optional)
//   - GET /api/sessions - List sessions (sort=created|accessed, order=asc|desc, limit=N)
//   - GET /api/sessions/unified - Sessions for the multi-board view (configName or sessionIds)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - One step ({"direction": "up", "reset": false})
//   - POST /api/sessions/{id}/bulk-move - Several steps ({"moves": ["up", "left"]})
//   - POST /api/sessions/{id}/reset - Generate a new board
//   - POST /api/sessions/{id}/restart - Replay the current board
//   - GET /api/sessions/{id}/history - Move history (page, limit, order)
//   - GET /api/sessions/{id}/solution - Optimal route, only once the game is over
//   - GET /api/sessions/{id}/hint - Next step towards the destination
//
// Pathfinding:
//   - POST /api/path - Shortest path on a caller-described grid
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration
//
// Other:
//   - GET /api/health - Liveness probe
//   - GET /metrics - Prometheus metrics
//   - GET /ws?session={id} - WebSocket state updates
//
// Request bodies are bound with go-chi/render and checked with
// go-playground/validator. Errors are returned as JSON:
//
//	{
//	  "status": "Invalid request.",
//	  "error": "Key: 'MoveRequest.Direction' Error:Field validation for 'Direction' failed on the 'required' tag",
//	  "validation": ["Direction is a required field"]
//	}
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
