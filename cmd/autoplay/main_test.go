package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/shortestmaze/api"
	"github.com/wricardo/mcp-training/shortestmaze/game/config"
	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/wricardo/mcp-training/shortestmaze/game/service"
	"github.com/wricardo/mcp-training/shortestmaze/game/session"
)

func p(row, column int) pathfind.Position {
	return pathfind.Position{Row: row, Column: column}
}

// fixedBoard is
//
//	S#D.
//	....
//	....
//	....
var fixedBoard = engine.Board{
	Size:        4,
	Start:       p(1, 1),
	Destination: p(1, 3),
	Obstacles:   []pathfind.Position{p(1, 2)},
}

func newBackend(t *testing.T, generator engine.BoardGenerator) *httptest.Server {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	require.NoError(t, err)
	sessionManager := session.NewManager()
	if generator != nil {
		sessionManager.SetGenerator(generator)
	}
	ts := httptest.NewServer(api.NewServer(service.NewGameService(sessionManager, configManager), nil))
	t.Cleanup(ts.Close)
	return ts
}

func fixedState(t *testing.T) *engine.GameState {
	t.Helper()
	board, err := engine.FixedGenerator{Board: fixedBoard}.Generate(engine.DefaultConfig())
	require.NoError(t, err)
	return engine.NewGameState(board, engine.DefaultConfig())
}

func TestStrategies_Plan(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     []string
	}{
		{OpenGridPlanner{}, []string{"right", "right"}},
		{WalkablePlanner{}, []string{"down", "right", "right", "up"}},
		{ExploreStrategy{}, []string{"down", "right", "right", "up"}},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.Name(), func(t *testing.T) {
			moves, err := tt.strategy.Plan(fixedState(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, moves)
		})
	}
}

func TestExploreStrategy_Backtracks(t *testing.T) {
	// S.#
	// .##
	// ..D
	// Heading right first runs into a dead end at (1,2).
	board, err := engine.FixedGenerator{Board: engine.Board{
		Size:        3,
		Start:       p(1, 1),
		Destination: p(3, 3),
		Obstacles:   []pathfind.Position{p(1, 3), p(2, 2), p(2, 3)},
	}}.Generate(engine.DefaultConfig())
	require.NoError(t, err)
	state := engine.NewGameState(board, engine.DefaultConfig())

	moves, err := ExploreStrategy{}.Plan(state)
	require.NoError(t, err)
	assert.Equal(t, []string{"right", "left", "down", "down", "right", "right"}, moves)
}

func TestStrategies_NoRoute(t *testing.T) {
	state := fixedState(t)
	state.Obstacles = append(state.Obstacles, p(2, 1))
	state = engine.NewGameState(engine.BoardOf(state), engine.DefaultConfig())

	_, err := WalkablePlanner{}.Plan(state)
	assert.Error(t, err)
	_, err = ExploreStrategy{}.Plan(state)
	assert.Error(t, err)
}

func TestMovesAlong(t *testing.T) {
	moves, err := movesAlong([]pathfind.Position{p(2, 2), p(2, 1), p(1, 1), p(1, 2), p(2, 2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "up", "right", "down"}, moves)

	_, err = movesAlong([]pathfind.Position{p(1, 1), p(3, 1)})
	assert.Error(t, err)
	_, err = movesAlong(nil)
	assert.Error(t, err)
}

func TestStrategyNames(t *testing.T) {
	assert.Equal(t, []string{"explore", "open-grid", "walkable"}, StrategyNames())
	for name, strategy := range Strategies {
		assert.Equal(t, name, strategy.Name())
	}
}

func TestRun_OpenGridWinsExactRouteBoards(t *testing.T) {
	ts := newBackend(t, engine.NewSeededGenerator(3))
	client := NewClient(ts.URL + "/")

	summary, err := run(context.Background(), client, OpenGridPlanner{}, "classic", "", 5, 0, true)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Games: 5, Victories: 5, Moves: summary.Moves}, summary)
	assert.Len(t, client.SessionID(), 4)
}

func TestRun_WalkableWinsAnyPathBoards(t *testing.T) {
	ts := newBackend(t, engine.NewSeededGenerator(11))

	summary, err := run(context.Background(), NewClient(ts.URL), WalkablePlanner{}, "any_path", "", 5, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Victories)
}

func TestRun_BlockedPlanIsUnfinished(t *testing.T) {
	ts := newBackend(t, engine.FixedGenerator{Board: fixedBoard})

	summary, err := run(context.Background(), NewClient(ts.URL), OpenGridPlanner{}, "", "", 2, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Unfinished)
	assert.Equal(t, 0, summary.Victories)
}

func TestRun_ExploreDetourIsDefeat(t *testing.T) {
	// The explore route on this board wanders into a dead end first, so the
	// player arrives with more steps than the optimum.
	ts := newBackend(t, engine.FixedGenerator{Board: engine.Board{
		Size:        3,
		Start:       p(1, 1),
		Destination: p(3, 3),
		Obstacles:   []pathfind.Position{p(1, 3), p(2, 2), p(2, 3)},
	}})

	summary, err := run(context.Background(), NewClient(ts.URL), ExploreStrategy{}, "", "", 1, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Defeats)
}

func TestRun_Resume(t *testing.T) {
	ts := newBackend(t, engine.FixedGenerator{Board: fixedBoard})

	creator := NewClient(ts.URL)
	_, err := creator.CreateSession(context.Background(), "")
	require.NoError(t, err)

	client := NewClient(ts.URL)
	summary, err := run(context.Background(), client, WalkablePlanner{}, "", creator.SessionID(), 1, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Victories)
	assert.Equal(t, creator.SessionID(), client.SessionID())

	_, err = run(context.Background(), NewClient(ts.URL), WalkablePlanner{}, "", "ZZZZ", 1, 0, false)
	assert.Error(t, err)
}
