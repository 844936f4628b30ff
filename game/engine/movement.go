package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/zyedidia/generic/mapset"
)

// DirectionNames lists the accepted move names in the order of pathfind.CardinalDirections
var DirectionNames = []string{"left", "right", "up", "down"}

// ParseDirection maps a move name ("left", "Up", "ArrowDown", ...) to its delta
func ParseDirection(name string) (pathfind.Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "arrowleft":
		return pathfind.Left, true
	case "right", "arrowright":
		return pathfind.Right, true
	case "up", "arrowup":
		return pathfind.Up, true
	case "down", "arrowdown":
		return pathfind.Down, true
	}
	return pathfind.Direction{}, false
}

// DirectionName returns the move name for a cardinal delta, or "" if it is not one
func DirectionName(d pathfind.Direction) string {
	for i, dir := range pathfind.CardinalDirections {
		if dir == d {
			return DirectionNames[i]
		}
	}
	return ""
}

// IndexObstacles builds the obstacle lookup set. It must run before the
// state is shared between goroutines; readers never build it themselves.
func (gs *GameState) IndexObstacles() {
	set := mapset.Of(gs.Obstacles...)
	gs.obstacleSet = &set
}

// obstacles returns the indexed obstacle set. Unindexed states get a
// throwaway set so that reads never write to gs.
func (gs *GameState) obstacles() mapset.Set[pathfind.Position] {
	if gs.obstacleSet == nil {
		return mapset.Of(gs.Obstacles...)
	}
	return *gs.obstacleSet
}

// InBounds reports whether p lies on the grid
func (gs *GameState) InBounds(p pathfind.Position) bool {
	return pathfind.Square{Size: gs.GridSize}.Contains(p)
}

// IsObstacle reports whether p holds an obstacle
func (gs *GameState) IsObstacle(p pathfind.Position) bool {
	return gs.obstacles().Has(p)
}

// CanMoveTo checks if the player can stand on the given position
func (gs *GameState) CanMoveTo(p pathfind.Position) bool {
	return gs.InBounds(p) && !gs.IsObstacle(p)
}

// Walkable returns the in-bounds, obstacle-free cells as pathfinding bounds
func (gs *GameState) Walkable() pathfind.Bounds {
	return pathfind.BoundsFunc(gs.CanMoveTo)
}

// CellAt classifies a position. The player is not a cell type.
func (gs *GameState) CellAt(p pathfind.Position) CellType {
	switch {
	case !gs.InBounds(p):
		return Boundary
	case p == gs.Start:
		return Start
	case p == gs.Destination:
		return Destination
	case gs.IsObstacle(p):
		return Obstacle
	}
	return Open
}

// StepsTaken returns the number of successful moves on the current board
func (gs *GameState) StepsTaken() int {
	if len(gs.PathTaken) == 0 {
		return 0
	}
	return len(gs.PathTaken) - 1
}

// MovePlayer attempts to move the player in the specified direction
func (gs *GameState) MovePlayer(direction string, config *GameConfig) bool {
	if gs.GameOver {
		gs.Message = config.Messages.GameOver
		return false
	}

	delta, ok := ParseDirection(direction)
	if !ok {
		gs.Message = fmt.Sprintf("Unknown direction %q, use one of %s", direction, strings.Join(DirectionNames, ", "))
		return false
	}

	target := gs.PlayerPos.Add(delta)
	if !gs.CanMoveTo(target) {
		gs.Message = fmt.Sprintf("%s [Blocked by: %s at %s]", config.Messages.Blocked, gs.CellAt(target), target)
		return false
	}

	gs.PlayerPos = target
	gs.PathTaken = append(gs.PathTaken, target)

	if target == gs.Destination {
		gs.GameOver = true
		gs.Victory = gs.isWinningRoute(config)
		if gs.Victory {
			gs.Message = fmt.Sprintf(config.Messages.Victory, gs.StepsTaken())
		} else {
			gs.Message = fmt.Sprintf(config.Messages.Defeat, gs.StepsTaken(), gs.OptimalSteps)
		}
		return true
	}

	gs.Message = config.Messages.Moved
	if strings.Contains(config.Messages.Moved, "%s") {
		gs.Message = fmt.Sprintf(config.Messages.Moved, target)
	}
	return true
}

// isWinningRoute compares the route taken against the optimal one
func (gs *GameState) isWinningRoute(config *GameConfig) bool {
	if config.AllowAnyShortestPath {
		return gs.StepsTaken() == gs.OptimalSteps
	}
	return SamePath(gs.PathTaken, gs.ShortestPath)
}

// AddMoveToHistory adds a move to the game's move history
func (gs *GameState) AddMoveToHistory(action string, fromPos, toPos pathfind.Position, success bool) {
	entry := MoveHistoryEntry{
		Action:       action,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

// Render draws the board top row first. With reveal set the optimal path
// is marked with CharOptimal and cells visited off that path with CharDetour.
func (gs *GameState) Render(reveal bool) []string {
	var optimal, visited mapset.Set[pathfind.Position]
	if reveal {
		optimal = mapset.Of(gs.ShortestPath...)
		visited = mapset.Of(gs.PathTaken...)
	}

	rows := make([]string, 0, gs.GridSize)
	for r := 1; r <= gs.GridSize; r++ {
		var b strings.Builder
		b.Grow(gs.GridSize)
		for c := 1; c <= gs.GridSize; c++ {
			p := pathfind.Position{Row: r, Column: c}
			ch := rune(CharOpen)
			switch {
			case p == gs.PlayerPos:
				ch = CharPlayer
			case p == gs.Start:
				ch = CharStart
			case p == gs.Destination:
				ch = CharDestination
			case gs.IsObstacle(p):
				ch = CharObstacle
			case reveal && optimal.Has(p):
				ch = CharOptimal
			case reveal && visited.Has(p):
				ch = CharDetour
			}
			b.WriteRune(ch)
		}
		rows = append(rows, b.String())
	}
	return rows
}

// View returns a detached copy for clients. The optimal path is withheld
// until the game is over and the board rendering is filled in.
func (gs *GameState) View() *GameState {
	view := *gs
	view.Obstacles = copyPositions(gs.Obstacles)
	view.PathTaken = copyPositions(gs.PathTaken)
	view.MoveHistory = append([]MoveHistoryEntry(nil), gs.MoveHistory...)
	view.CurrentMoves = append([]MoveHistoryEntry(nil), gs.CurrentMoves...)
	if gs.GameOver {
		view.ShortestPath = copyPositions(gs.ShortestPath)
	} else {
		view.ShortestPath = nil
	}
	view.Board = gs.Render(gs.GameOver)
	return &view
}
