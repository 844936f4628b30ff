package main

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
)

// Strategy plans the full list of moves for a fresh board
type Strategy interface {
	Name() string
	Plan(state *engine.GameState) ([]string, error)
}

// Strategies by name
var Strategies = map[string]Strategy{
	"open-grid": OpenGridPlanner{},
	"walkable":  WalkablePlanner{},
	"explore":   ExploreStrategy{},
}

// StrategyNames lists the registered strategies in a stable order
func StrategyNames() []string {
	names := make([]string, 0, len(Strategies))
	for name := range Strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenGridPlanner searches the grid as if it had no obstacles. Boards are
// laid out around that route, so it also reproduces the expected one.
type OpenGridPlanner struct{}

func (OpenGridPlanner) Name() string { return "open-grid" }

func (OpenGridPlanner) Plan(state *engine.GameState) ([]string, error) {
	path, err := pathfind.FindShortestPath(state.PlayerPos, state.Destination, pathfind.CardinalDirections, pathfind.Square{Size: state.GridSize})
	if err != nil {
		return nil, err
	}
	return movesAlong(path)
}

// WalkablePlanner searches around the obstacles. It always finds a route of
// optimal length, but not necessarily the expected one.
type WalkablePlanner struct{}

func (WalkablePlanner) Name() string { return "walkable" }

func (WalkablePlanner) Plan(state *engine.GameState) ([]string, error) {
	path, err := pathfind.FindShortestPath(state.PlayerPos, state.Destination, pathfind.CardinalDirections, state.Walkable())
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("no route from %s to %s", state.PlayerPos, state.Destination)
	}
	return movesAlong(path)
}

// ExploreStrategy walks depth first, always trying the neighbour closest to
// the destination and backing up out of dead ends. The backtracking steps
// are part of the plan.
type ExploreStrategy struct{}

func (ExploreStrategy) Name() string { return "explore" }

func (ExploreStrategy) Plan(state *engine.GameState) ([]string, error) {
	visited := mapset.New[pathfind.Position]()
	visited.Put(state.PlayerPos)
	stack := []pathfind.Position{state.PlayerPos}
	var moves []string

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		if current == state.Destination {
			return moves, nil
		}

		next, ok := closestUnvisited(state, current, visited)
		if !ok {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				moves = append(moves, engine.DirectionName(pathfind.Between(current, stack[len(stack)-1])))
			}
			continue
		}
		visited.Put(next)
		stack = append(stack, next)
		moves = append(moves, engine.DirectionName(pathfind.Between(current, next)))
	}
	return nil, fmt.Errorf("no route from %s to %s", state.PlayerPos, state.Destination)
}

func closestUnvisited(state *engine.GameState, from pathfind.Position, visited mapset.Set[pathfind.Position]) (pathfind.Position, bool) {
	best, found := pathfind.Position{}, false
	for _, d := range pathfind.CardinalDirections {
		candidate := from.Add(d)
		if visited.Has(candidate) || !state.CanMoveTo(candidate) {
			continue
		}
		if !found || pathfind.Manhattan(candidate, state.Destination) < pathfind.Manhattan(best, state.Destination) {
			best, found = candidate, true
		}
	}
	return best, found
}

// movesAlong converts a route into direction names
func movesAlong(path []pathfind.Position) ([]string, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty route")
	}
	moves := make([]string, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		name := engine.DirectionName(pathfind.Between(path[i-1], path[i]))
		if name == "" {
			return nil, fmt.Errorf("route jumps from %s to %s", path[i-1], path[i])
		}
		moves = append(moves, name)
	}
	return moves, nil
}
