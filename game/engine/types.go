package engine

import (
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/zyedidia/generic/mapset"
)

// CellType represents what occupies a grid cell
type CellType string

const (
	Open        CellType = "open"
	Obstacle    CellType = "obstacle"
	Start       CellType = "start"
	Destination CellType = "destination"
	Boundary    CellType = "boundary"

	// Validation constants
	MinGridSize     = 5
	MaxGridSize     = 50
	DefaultGridSize = 16
	MaxObstacles    = 10000
	MaxBulkMoves    = 50

	WebSocketBufferSize = 256
)

// Board characters used by GameState.Render
const (
	CharOpen        = '.'
	CharObstacle    = '#'
	CharStart       = 'S'
	CharDestination = 'D'
	CharPlayer      = 'P'
	CharOptimal     = '*'
	CharDetour      = 'x'
)

// Messages holds the player-facing texts of a configuration
type Messages struct {
	Welcome  string `json:"welcome"`
	Moved    string `json:"moved"`
	Blocked  string `json:"blocked"`
	Victory  string `json:"victory"`  // %d: steps taken
	Defeat   string `json:"defeat"`   // %d: steps taken, %d: optimal steps
	GameOver string `json:"game_over"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`

	// StartColumn is the column the player always starts in. Destination
	// and obstacles are never placed in it.
	StartColumn int `json:"start_column"`

	// Obstacle count is MinObstacles + rand[0, ObstacleSpread).
	MinObstacles   int `json:"min_obstacles"`
	ObstacleSpread int `json:"obstacle_spread"`

	// AllowAnyShortestPath accepts any route of optimal length as a win.
	// When false the route must match the pre-computed path exactly.
	AllowAnyShortestPath bool `json:"allow_any_shortest_path"`

	Messages Messages `json:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	GridSize     int                 `json:"grid_size"`
	Start        pathfind.Position   `json:"start"`
	Destination  pathfind.Position   `json:"destination"`
	PlayerPos    pathfind.Position   `json:"player_pos"`
	Obstacles    []pathfind.Position `json:"obstacles"`
	ShortestPath []pathfind.Position `json:"shortest_path,omitempty"`
	OptimalSteps int                 `json:"optimal_steps"`
	PathTaken    []pathfind.Position `json:"path_taken"`
	Message      string              `json:"message"`
	GameOver     bool                `json:"game_over"`
	Victory      bool                `json:"victory"`
	ConfigName   string              `json:"config_name"`
	BoardNumber  int                 `json:"board_number"`
	MoveHistory  []MoveHistoryEntry  `json:"move_history"`
	TotalMoves   int                 `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper view (not required for core game logic)
	Board []string `json:"board,omitempty"`

	obstacleSet *mapset.Set[pathfind.Position]
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string            `json:"action"`
	FromPosition pathfind.Position `json:"from_position"`
	ToPosition   pathfind.Position `json:"to_position"`
	Timestamp    int64             `json:"timestamp"`
	Success      bool              `json:"success"`
	MoveNumber   int               `json:"move_number"`
}

// Hint suggests the next step towards the destination
type Hint struct {
	Direction      string            `json:"direction"`
	Next           pathfind.Position `json:"next"`
	StepsRemaining int               `json:"steps_remaining"`
	OnOptimalPath  bool              `json:"on_optimal_path"`
}
