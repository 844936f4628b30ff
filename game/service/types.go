package service

import (
	"time"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_boundary|blocked_obstacle|invalid_direction|game_over|victory|defeat
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos pathfind.Position `json:"start_pos"`
	EndPos   pathfind.Position `json:"end_pos"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	GameOverCode  string   `json:"game_over_code,omitempty"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves"`
	StepsTaken    int      `json:"steps_taken"`
	OptimalSteps  int      `json:"optimal_steps"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx      int               `json:"idx"`
	Dir      string            `json:"dir"`
	From     pathfind.Position `json:"from"`
	To       pathfind.Position `json:"to"`
	TileChar string            `json:"tile_char"`
	TileType string            `json:"tile_type"`
	Success  bool              `json:"success"`
	Arrived  bool              `json:"arrived,omitempty"`
}

// AttemptInfo details the first failed target cell attempted
type AttemptInfo struct {
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	TileChar string `json:"tile_char"`
	TileType string `json:"tile_type"`
	Passable bool   `json:"passable"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string            `json:"type"` // "move", "blocked", "victory", "defeat", "reset", "restart"
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Position  pathfind.Position `json:"position"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// SolutionResponse compares the route taken with the optimal one after the game ends
type SolutionResponse struct {
	ShortestPath []pathfind.Position `json:"shortest_path"`
	OptimalSteps int                 `json:"optimal_steps"`
	PathTaken    []pathfind.Position `json:"path_taken"`
	StepsTaken   int                 `json:"steps_taken"`
	Victory      bool                `json:"victory"`
	Board        []string            `json:"board"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename             string `json:"filename"`
	ConfigID             string `json:"config_id"` // The identifier to use for session creation
	Name                 string `json:"name"`      // Display name
	Description          string `json:"description"`
	GridSize             int    `json:"grid_size"`
	MinObstacles         int    `json:"min_obstacles"`
	MaxObstacles         int    `json:"max_obstacles"`
	AllowAnyShortestPath bool   `json:"allow_any_shortest_path"`
}

// PathRequest asks for a shortest path on an arbitrary square grid
type PathRequest struct {
	GridSize    int                 `json:"grid_size" validate:"required,min=1,max=1000"`
	Start       pathfind.Position   `json:"start"`
	Destination pathfind.Position   `json:"destination"`
	Blocked     []pathfind.Position `json:"blocked,omitempty" validate:"max=100000"`
	// Directions restricts movement to the named steps. Empty means all four.
	Directions []string `json:"directions,omitempty" validate:"omitempty,max=4,dive,oneof=left right up down"`
}

// PathResult is the answer to a PathRequest
type PathResult struct {
	Path     []pathfind.Position `json:"path"`
	Steps    int                 `json:"steps"`
	Expanded int                 `json:"expanded"`
	Found    bool                `json:"found"`
}
