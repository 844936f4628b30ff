package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/zyedidia/generic/mapset"
)

// Board is a freshly generated game layout
type Board struct {
	Size         int
	Start        pathfind.Position
	Destination  pathfind.Position
	Obstacles    []pathfind.Position
	ShortestPath []pathfind.Position
}

// BoardGenerator produces new boards for a configuration
type BoardGenerator interface {
	Generate(config *GameConfig) (*Board, error)
}

// RandomGenerator places start, destination and obstacles uniformly at random.
// It is safe for concurrent use.
type RandomGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomGenerator creates a generator with a randomly seeded source
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededGenerator creates a generator that always yields the same sequence of boards
func NewSeededGenerator(seed uint64) *RandomGenerator {
	return &RandomGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate builds a board: the optimal path is computed on the open grid
// first, then obstacles are scattered on every cell except that path and
// the start column.
func (g *RandomGenerator) Generate(config *GameConfig) (*Board, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	size := config.GridSize
	start := pathfind.Position{Row: g.coordinate(size), Column: config.StartColumn}
	destination := pathfind.Position{Row: g.coordinate(size), Column: g.columnAvoiding(size, config.StartColumn)}

	path, err := pathfind.FindShortestPath(start, destination, pathfind.CardinalDirections, pathfind.Square{Size: size})
	if err != nil {
		return nil, fmt.Errorf("failed to plan optimal path: %w", err)
	}

	onPath := mapset.Of(path...)
	obstacles := mapset.New[pathfind.Position]()
	count := config.MinObstacles
	if config.ObstacleSpread > 0 {
		count += g.rng.IntN(config.ObstacleSpread)
	}
	for i := 0; i < count; i++ {
		candidate := pathfind.Position{Row: g.coordinate(size), Column: g.columnAvoiding(size, config.StartColumn)}
		if !onPath.Has(candidate) {
			obstacles.Put(candidate)
		}
	}

	return &Board{
		Size:         size,
		Start:        start,
		Destination:  destination,
		Obstacles:    sortedPositions(obstacles),
		ShortestPath: path,
	}, nil
}

// coordinate returns a value in [1, size]
func (g *RandomGenerator) coordinate(size int) int {
	return g.rng.IntN(size) + 1
}

// columnAvoiding returns a column in [1, size] other than skip
func (g *RandomGenerator) columnAvoiding(size, skip int) int {
	column := g.rng.IntN(size-1) + 1
	if column >= skip {
		column++
	}
	return column
}

// FixedGenerator always returns the same board. Useful for replays and tests.
type FixedGenerator struct {
	Board Board
}

// Generate returns a copy of the fixed board, recomputing its optimal path
func (g FixedGenerator) Generate(config *GameConfig) (*Board, error) {
	board := g.Board
	if board.Size == 0 {
		board.Size = config.GridSize
	}
	bounds := pathfind.Square{Size: board.Size}
	blocked := mapset.Of(board.Obstacles...)
	walkable := pathfind.BoundsFunc(func(p pathfind.Position) bool {
		return bounds.Contains(p) && !blocked.Has(p)
	})

	path, err := pathfind.FindShortestPath(board.Start, board.Destination, pathfind.CardinalDirections, walkable)
	if err != nil {
		return nil, fmt.Errorf("failed to plan optimal path: %w", err)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("destination %s is unreachable from %s", board.Destination, board.Start)
	}

	board.Obstacles = sortedPositions(blocked)
	board.ShortestPath = path
	return &board, nil
}

func sortedPositions(set mapset.Set[pathfind.Position]) []pathfind.Position {
	out := make([]pathfind.Position, 0, set.Size())
	set.Each(func(p pathfind.Position) {
		out = append(out, p)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}
