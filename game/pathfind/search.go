package pathfind

import (
	"context"
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ErrInvalidArgument is returned when a search is requested with positions
// outside the bounds or without usable directions.
var ErrInvalidArgument = errors.New("invalid argument")

// Result summarises a finished search.
type Result struct {
	Path     []Position `json:"path"`
	Steps    int        `json:"steps"`
	Expanded int        `json:"expanded"`
	Found    bool       `json:"found"`
}

// StepSnapshot describes the search state after one expansion.
type StepSnapshot struct {
	Current   Position   `json:"current"`
	Frontier  []Position `json:"frontier"`
	Done      bool       `json:"done"`
	Found     bool       `json:"found"`
	Path      []Position `json:"path,omitempty"`
	StepIndex int        `json:"step_index"`
}

// Search holds the state of one A* run. It is owned by a single caller and is
// not safe for concurrent use.
type Search struct {
	start       Position
	destination Position
	directions  []Direction
	bounds      Bounds

	frontier           *frontier
	cameFrom           map[Position]Position
	costFromStart      map[Position]int
	estimatedTotalCost map[Position]int

	current  Position
	expanded int
	done     bool
	found    bool
	path     []Position
}

// FindShortestPath returns the fewest-step sequence of positions from start
// to destination, both inclusive, moving only by the given directions and
// never leaving bounds. The result is empty when destination is unreachable.
func FindShortestPath(start, destination Position, directions []Direction, bounds Bounds) ([]Position, error) {
	s, err := NewSearch(start, destination, directions, bounds)
	if err != nil {
		return nil, err
	}
	for s.Step() {
	}
	return s.Path(), nil
}

// Solve is FindShortestPath with search statistics.
func Solve(start, destination Position, directions []Direction, bounds Bounds) (Result, error) {
	s, err := NewSearch(start, destination, directions, bounds)
	if err != nil {
		return Result{}, err
	}
	for s.Step() {
	}
	return s.Result(), nil
}

// SolveGrid searches a size×size Square with the blocked cells removed.
// It stops early with ctx's error when ctx is cancelled.
func SolveGrid(ctx context.Context, size int, start, destination Position, directions []Direction, blocked []Position) (Result, error) {
	if size < 1 {
		return Result{}, fmt.Errorf("%w: grid_size must be positive, got %d", ErrInvalidArgument, size)
	}
	square := Square{Size: size}
	walls := mapset.Of(blocked...)
	bounds := BoundsFunc(func(p Position) bool {
		return square.Contains(p) && !walls.Has(p)
	})

	s, err := NewSearch(start, destination, directions, bounds)
	if err != nil {
		return Result{}, err
	}
	return s.Run(ctx)
}

// NewSearch validates the inputs and prepares a search positioned before its
// first expansion.
func NewSearch(start, destination Position, directions []Direction, bounds Bounds) (*Search, error) {
	if err := validate(start, destination, directions, bounds); err != nil {
		return nil, err
	}

	s := &Search{
		start:              start,
		destination:        destination,
		directions:         directions,
		bounds:             bounds,
		frontier:           newFrontier(),
		cameFrom:           make(map[Position]Position),
		costFromStart:      map[Position]int{start: 0},
		estimatedTotalCost: map[Position]int{start: Manhattan(start, destination)},
		current:            start,
	}
	s.frontier.push(start, s.estimatedTotalCost[start])
	return s, nil
}

func validate(start, destination Position, directions []Direction, bounds Bounds) error {
	if bounds == nil {
		return fmt.Errorf("%w: bounds are required", ErrInvalidArgument)
	}
	if len(directions) == 0 {
		return fmt.Errorf("%w: at least one direction is required", ErrInvalidArgument)
	}
	for _, d := range directions {
		if d.IsZero() {
			return fmt.Errorf("%w: direction %s does not move", ErrInvalidArgument, d)
		}
	}
	if !bounds.Contains(start) {
		return fmt.Errorf("%w: start %s is out of bounds", ErrInvalidArgument, start)
	}
	if !bounds.Contains(destination) {
		return fmt.Errorf("%w: destination %s is out of bounds", ErrInvalidArgument, destination)
	}
	return nil
}

// Step performs one expansion. It returns false once the search has
// finished, either by reaching the destination or by exhausting the frontier.
func (s *Search) Step() bool {
	if s.done {
		return false
	}

	current, ok := s.frontier.pop(s.estimate)
	if !ok {
		s.done = true
		s.path = []Position{}
		return false
	}
	s.current = current

	if current == s.destination {
		s.done = true
		s.found = true
		s.path = s.reconstructPath(current)
		return false
	}

	s.expanded++
	s.relaxNeighbors(current)
	return true
}

// Run steps until the search finishes or ctx is cancelled.
func (s *Search) Run(ctx context.Context) (Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return s.Result(), err
		}
		if !s.Step() {
			return s.Result(), nil
		}
	}
}

// Snapshot returns the state after the latest Step.
func (s *Search) Snapshot() StepSnapshot {
	return StepSnapshot{
		Current:   s.current,
		Frontier:  s.frontier.positions(),
		Done:      s.done,
		Found:     s.found,
		Path:      s.path,
		StepIndex: s.expanded,
	}
}

func (s *Search) relaxNeighbors(current Position) {
	tentative := s.costFromStart[current] + 1
	for _, d := range s.directions {
		next := current.Add(d)
		if !s.bounds.Contains(next) {
			continue
		}
		if known, seen := s.costFromStart[next]; seen && tentative >= known {
			continue
		}
		s.cameFrom[next] = current
		s.costFromStart[next] = tentative
		s.estimatedTotalCost[next] = tentative + Manhattan(next, s.destination)
		s.frontier.push(next, s.estimatedTotalCost[next])
	}
}

func (s *Search) estimate(p Position) int {
	return s.estimatedTotalCost[p]
}

func (s *Search) reconstructPath(destination Position) []Position {
	path := []Position{destination}
	current := destination
	for {
		previous, ok := s.cameFrom[current]
		if !ok {
			break
		}
		path = append(path, previous)
		current = previous
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Done reports whether the search has finished.
func (s *Search) Done() bool { return s.done }

// Found reports whether the destination was reached.
func (s *Search) Found() bool { return s.found }

// Expanded returns how many positions have been expanded so far.
func (s *Search) Expanded() int { return s.expanded }

// Frontier returns the positions still queued, oldest first.
func (s *Search) Frontier() []Position { return s.frontier.positions() }

// Path returns the finished path: nil while the search is running, empty
// when the destination was unreachable.
func (s *Search) Path() []Position {
	if !s.done {
		return nil
	}
	out := make([]Position, len(s.path))
	copy(out, s.path)
	return out
}

// Result returns a summary of the search so far.
func (s *Search) Result() Result {
	path := s.Path()
	steps := 0
	if len(path) > 0 {
		steps = len(path) - 1
	}
	return Result{
		Path:     path,
		Steps:    steps,
		Expanded: s.expanded,
		Found:    s.found,
	}
}
