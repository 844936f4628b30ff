package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
)

// ErrConfigUnavailable is returned when a session asks for a configuration that cannot be loaded
var ErrConfigUnavailable = errors.New("configuration unavailable")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a session, falling back to a lookup by display name
func (s *gameServiceImpl) getConfigID(sess *Session) string {
	if sess.ConfigID != "" {
		return sess.ConfigID
	}
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == sess.Config.Name {
				return cfg.ConfigID
			}
		}
	}
	return sess.Config.Name
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess), // Return the config_id, not the display name
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().View(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	configID := configName
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				configIDs := make([]string, 0, len(availableConfigs))
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("%w: config '%s' (%v). Available configs: %v", ErrConfigUnavailable, configName, err, configIDs)
			}
			return nil, fmt.Errorf("%w: config '%s' (%v). Use /api/configs to list available configurations", ErrConfigUnavailable, configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if configID != "" {
		sess.ConfigID = configID
	}
	s.persist(sess.ID, "create")

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	// Update last accessed time
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}

	// Handle reset if requested
	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset game: %w", err)
		}
		events = append(events, resetEvent(sess.Engine.GetState()))
	}

	prevPos := sess.Engine.GetPlayerPosition()
	success := sess.Engine.Move(direction)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   success,
		GameState: state.View(),
		Message:   state.Message,
		Events:    events,
	}

	if success {
		step := stepInfo(1, direction, prevPos, state)
		result.Step = &step
		result.Events = append(result.Events, moveEvents(state, direction)...)
	} else {
		result.AttemptedTo = attemptInfo(state, prevPos, direction)
		result.Events = append(result.Events, GameEvent{
			Type:      "blocked",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  prevPos,
		})
	}

	s.persist(sessionID, "move")

	return result, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	// Handle reset
	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset game: %w", err)
		}
		result.Events = append(result.Events, resetEvent(sess.Engine.GetState()))
	}
	result.StartPos = sess.Engine.GetPlayerPosition()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sess.Engine.IsGameOver() {
			result.Success = false
			result.StoppedReason = "game is already over"
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		prevPos := sess.Engine.GetPlayerPosition()
		success := sess.Engine.Move(move)
		state := sess.Engine.GetState()

		if !success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attemptInfo(state, prevPos, move)
			switch {
			case result.AttemptedTo == nil:
				result.StopReasonCode = "invalid_direction"
			case result.AttemptedTo.TileType == string(engine.Boundary):
				result.StopReasonCode = "blocked_boundary"
			default:
				result.StopReasonCode = "blocked_obstacle"
			}
			break
		}

		result.MovesExecuted++
		result.Events = append(result.Events, moveEvents(state, move)...)
		result.Steps = append(result.Steps, stepInfo(i+1, move, prevPos, state))
	}

	endState := sess.Engine.GetState()
	result.GameState = endState.View()
	result.EndPos = endState.PlayerPos
	result.GameOver = endState.GameOver
	result.Message = endState.Message
	result.StepsTaken = endState.StepsTaken()
	result.OptimalSteps = endState.OptimalSteps
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	if endState.GameOver {
		result.GameOverCode = "defeat"
		if endState.Victory {
			result.GameOverCode = "victory"
		}
		if result.StopReasonCode == "" {
			result.StopReasonCode = result.GameOverCode
		}
	}

	s.persist(sessionID, "bulk moves")

	return result, nil
}

// Reset starts a new board for a session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state, err := sess.Engine.Reset()
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	s.persist(sessionID, "reset")

	return state.View(), nil
}

// Restart replays the current board of a session
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Restart()

	s.persist(sessionID, "restart")

	return state.View(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().View(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetSolution reveals the optimal route once the game of a session is over
func (s *gameServiceImpl) GetSolution(ctx context.Context, sessionID string) (*SolutionResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	path, err := sess.Engine.Solution()
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	return &SolutionResponse{
		ShortestPath: path,
		OptimalSteps: state.OptimalSteps,
		PathTaken:    append([]pathfind.Position(nil), state.PathTaken...),
		StepsTaken:   state.StepsTaken(),
		Victory:      state.Victory,
		Board:        state.Render(true),
	}, nil
}

// GetHint suggests the next move for a session
func (s *gameServiceImpl) GetHint(ctx context.Context, sessionID string) (*engine.Hint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return sess.Engine.Hint()
}

// FindPath runs a shortest-path search on a caller-described grid
func (s *gameServiceImpl) FindPath(ctx context.Context, req PathRequest) (*PathResult, error) {
	directions := pathfind.CardinalDirections
	if len(req.Directions) > 0 {
		directions = make([]pathfind.Direction, 0, len(req.Directions))
		for _, name := range req.Directions {
			d, ok := engine.ParseDirection(name)
			if !ok {
				return nil, fmt.Errorf("%w: unknown direction %q", pathfind.ErrInvalidArgument, name)
			}
			directions = append(directions, d)
		}
	}

	res, err := pathfind.SolveGrid(ctx, req.GridSize, req.Start, req.Destination, directions, req.Blocked)
	if err != nil {
		return nil, err
	}

	return &PathResult{
		Path:     res.Path,
		Steps:    res.Steps,
		Expanded: res.Expanded,
		Found:    res.Found,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// persist saves a session after a state change. Failures are logged, not returned.
func (s *gameServiceImpl) persist(sessionID, action string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", sessionID, action, err)
	}
}

func resetEvent(state *engine.GameState) GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   fmt.Sprintf("New board #%d", state.BoardNumber),
		Timestamp: time.Now(),
		Position:  state.Start,
	}
}

// moveEvents generates events from a successful move
func moveEvents(state *engine.GameState, direction string) []GameEvent {
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to %s", direction, state.PlayerPos),
		Timestamp: time.Now(),
		Position:  state.PlayerPos,
	}}

	if state.GameOver {
		eventType := "defeat"
		if state.Victory {
			eventType = "victory"
		}
		events = append(events, GameEvent{
			Type:      eventType,
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  state.PlayerPos,
		})
	}

	return events
}

func stepInfo(idx int, direction string, from pathfind.Position, state *engine.GameState) StepInfo {
	tileChar, tileType := tileAt(state, state.PlayerPos)
	return StepInfo{
		Idx:      idx,
		Dir:      direction,
		From:     from,
		To:       state.PlayerPos,
		TileChar: tileChar,
		TileType: tileType,
		Success:  true,
		Arrived:  state.PlayerPos == state.Destination,
	}
}

// attemptInfo describes the cell a failed move aimed at, or nil for an unknown direction
func attemptInfo(state *engine.GameState, from pathfind.Position, direction string) *AttemptInfo {
	delta, ok := engine.ParseDirection(direction)
	if !ok {
		return nil
	}
	target := from.Add(delta)
	tileChar, tileType := tileAt(state, target)
	return &AttemptInfo{
		Row:      target.Row,
		Column:   target.Column,
		TileChar: tileChar,
		TileType: tileType,
		Passable: state.CanMoveTo(target),
	}
}

func tileAt(state *engine.GameState, p pathfind.Position) (string, string) {
	cell := state.CellAt(p)
	switch cell {
	case engine.Boundary, engine.Obstacle:
		return string(engine.CharObstacle), string(cell)
	case engine.Start:
		return string(engine.CharStart), string(cell)
	case engine.Destination:
		return string(engine.CharDestination), string(cell)
	default:
		return string(engine.CharOpen), string(cell)
	}
}
