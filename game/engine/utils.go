package engine

import "github.com/wricardo/mcp-training/shortestmaze/game/pathfind"

// NewGameState lays a board out as a fresh game
func NewGameState(board *Board, config *GameConfig) *GameState {
	state := &GameState{
		GridSize:     board.Size,
		Start:        board.Start,
		Destination:  board.Destination,
		PlayerPos:    board.Start,
		Obstacles:    copyPositions(board.Obstacles),
		ShortestPath: copyPositions(board.ShortestPath),
		OptimalSteps: len(board.ShortestPath) - 1,
		PathTaken:    []pathfind.Position{board.Start},
		Message:      config.Messages.Welcome,
		ConfigName:   config.Name,
		BoardNumber:  1,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	state.IndexObstacles()
	return state
}

// BoardOf extracts the layout of a state so it can be replayed
func BoardOf(state *GameState) *Board {
	return &Board{
		Size:         state.GridSize,
		Start:        state.Start,
		Destination:  state.Destination,
		Obstacles:    copyPositions(state.Obstacles),
		ShortestPath: copyPositions(state.ShortestPath),
	}
}

// SamePath reports whether two routes visit the same cells in the same order
func SamePath(a, b []pathfind.Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsPrefix reports whether prefix is the beginning of path
func IsPrefix(prefix, path []pathfind.Position) bool {
	return len(prefix) <= len(path) && SamePath(prefix, path[:len(prefix)])
}

// ObstacleDensity returns the share of cells holding an obstacle
func ObstacleDensity(state *GameState) float64 {
	if state.GridSize == 0 {
		return 0
	}
	return float64(len(state.Obstacles)) / float64(state.GridSize*state.GridSize)
}

func copyPositions(in []pathfind.Position) []pathfind.Position {
	if in == nil {
		return nil
	}
	out := make([]pathfind.Position, len(in))
	copy(out, in)
	return out
}
