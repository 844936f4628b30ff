package engine

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
)

var (
	// ErrSolutionHidden is returned while the optimal path must stay secret
	ErrSolutionHidden = errors.New("solution is revealed once the game is over")
	// ErrGameOver is returned by operations that need a game in progress
	ErrGameOver = errors.New("game is over")
	// ErrNoRoute is returned when the destination cannot be reached from the player
	ErrNoRoute = errors.New("no route to destination")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() (*GameState, error)
	Restart() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetPlayerPosition() pathfind.Position

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) []bool

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Route reveal
	Solution() ([]pathfind.Position, error)
	Hint() (*Hint, error)
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state     *GameState
	config    *GameConfig
	generator BoardGenerator
}

// NewEngine creates a new game engine with the provided configuration and a random board
func NewEngine(config *GameConfig) (*GameEngine, error) {
	return NewEngineWithGenerator(config, NewRandomGenerator())
}

// NewEngineWithGenerator creates a new game engine drawing boards from generator
func NewEngineWithGenerator(config *GameConfig, generator BoardGenerator) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if generator == nil {
		return nil, fmt.Errorf("board generator cannot be nil")
	}

	board, err := generator.Generate(config)
	if err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config:    config,
		generator: generator,
		state:     NewGameState(board, config),
	}

	return engine, nil
}

// RestoreEngine wraps a previously saved state. Later resets draw boards from generator,
// or from a fresh random generator when it is nil.
func RestoreEngine(config *GameConfig, state *GameState, generator BoardGenerator) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if generator == nil {
		generator = NewRandomGenerator()
	}

	engine := &GameEngine{config: config, generator: generator}
	if err := engine.SetState(state); err != nil {
		return nil, err
	}
	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with default configuration
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		// The default configuration always validates and an open grid always has a route
		panic(err)
	}
	return engine
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.GridSize < MinGridSize || state.GridSize > MaxGridSize {
		return fmt.Errorf("state has invalid grid size %d", state.GridSize)
	}
	if !state.InBounds(state.PlayerPos) || !state.InBounds(state.Start) || !state.InBounds(state.Destination) {
		return fmt.Errorf("state has positions outside the %dx%d grid", state.GridSize, state.GridSize)
	}
	state.IndexObstacles()
	e.state = state
	return nil
}

// Reset starts a new board from the generator
func (e *GameEngine) Reset() (*GameState, error) {
	board, err := e.generator.Generate(e.config)
	if err != nil {
		return nil, err
	}
	e.replace(NewGameState(board, e.config), e.state.BoardNumber+1)
	return e.state, nil
}

// Restart replays the current board from its start
func (e *GameEngine) Restart() *GameState {
	e.replace(NewGameState(BoardOf(e.state), e.config), e.state.BoardNumber)
	return e.state
}

// replace swaps in next while preserving cumulative history and totals
func (e *GameEngine) replace(next *GameState, boardNumber int) {
	next.MoveHistory = e.state.MoveHistory
	next.TotalMoves = e.state.TotalMoves
	next.BoardNumber = boardNumber
	if next.MoveHistory == nil {
		next.MoveHistory = []MoveHistoryEntry{}
	}
	e.state = next
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether the player has won
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() pathfind.Position {
	return e.state.PlayerPos
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction string) bool {
	// Store previous position for history
	prevPos := e.state.PlayerPos
	success := e.state.MovePlayer(direction, e.config)

	action := direction
	if delta, ok := ParseDirection(direction); ok {
		action = DirectionName(delta)
	}
	e.state.AddMoveToHistory(action, prevPos, e.state.PlayerPos, success)

	return success
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	if e.state.GameOver {
		return false
	}
	delta, ok := ParseDirection(direction)
	if !ok {
		return false
	}
	return e.state.CanMoveTo(e.state.PlayerPos.Add(delta))
}

// GetPossibleMoves returns all valid directions the player can move
func (e *GameEngine) GetPossibleMoves() []string {
	possible := []string{}
	for _, dir := range DirectionNames {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}

		success := e.Move(direction)
		results = append(results, success)
	}

	return results
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new board
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	board, err := e.generator.Generate(config)
	if err != nil {
		return err
	}
	e.config = config
	e.state = NewGameState(board, config)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// Solution returns the optimal path once the game has ended
func (e *GameEngine) Solution() ([]pathfind.Position, error) {
	if !e.state.GameOver {
		return nil, ErrSolutionHidden
	}
	return copyPositions(e.state.ShortestPath), nil
}

// Hint suggests the next move. While the player is still on the optimal
// path it follows that path; otherwise a new route is searched around
// the obstacles from the current position.
func (e *GameEngine) Hint() (*Hint, error) {
	gs := e.state
	if gs.GameOver {
		return nil, ErrGameOver
	}

	if IsPrefix(gs.PathTaken, gs.ShortestPath) && len(gs.PathTaken) < len(gs.ShortestPath) {
		next := gs.ShortestPath[len(gs.PathTaken)]
		return &Hint{
			Direction:      DirectionName(pathfind.Between(gs.PlayerPos, next)),
			Next:           next,
			StepsRemaining: len(gs.ShortestPath) - len(gs.PathTaken),
			OnOptimalPath:  true,
		}, nil
	}

	route, err := pathfind.FindShortestPath(gs.PlayerPos, gs.Destination, pathfind.CardinalDirections, gs.Walkable())
	if err != nil {
		return nil, err
	}
	if len(route) < 2 {
		return nil, ErrNoRoute
	}
	return &Hint{
		Direction:      DirectionName(pathfind.Between(gs.PlayerPos, route[1])),
		Next:           route[1],
		StepsRemaining: len(route) - 1,
	}, nil
}
