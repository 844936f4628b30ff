package pathfind

import "fmt"

// Position is a 1-based grid coordinate.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Add returns the position reached by applying d to p.
func (p Position) Add(d Direction) Position {
	return Position{Row: p.Row + d.DRow, Column: p.Column + d.DColumn}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Column)
}

// Direction is a movement delta applied to a Position.
type Direction struct {
	DRow    int `json:"d_row"`
	DColumn int `json:"d_column"`
}

// IsZero reports whether d does not move at all.
func (d Direction) IsZero() bool {
	return d.DRow == 0 && d.DColumn == 0
}

func (d Direction) String() string {
	return fmt.Sprintf("[%d,%d]", d.DRow, d.DColumn)
}

var (
	Left  = Direction{DRow: 0, DColumn: -1}
	Right = Direction{DRow: 0, DColumn: 1}
	Up    = Direction{DRow: -1, DColumn: 0}
	Down  = Direction{DRow: 1, DColumn: 0}
)

// CardinalDirections lists the four axis-aligned steps in the order callers
// bind them to actions: left, right, up, down.
var CardinalDirections = []Direction{Left, Right, Up, Down}

// Between returns the direction that leads from a to b.
func Between(a, b Position) Direction {
	return Direction{DRow: b.Row - a.Row, DColumn: b.Column - a.Column}
}

// Manhattan is the search heuristic: |Δrow| + |Δcolumn|.
func Manhattan(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Column-b.Column)
}

// Bounds decides which positions belong to the grid.
type Bounds interface {
	Contains(p Position) bool
}

// BoundsFunc adapts an ordinary function to Bounds.
type BoundsFunc func(p Position) bool

// Contains calls f(p).
func (f BoundsFunc) Contains(p Position) bool {
	return f(p)
}

// Square is an N×N grid with rows and columns numbered 1..Size.
type Square struct {
	Size int
}

// Contains reports whether p lies within [1, Size] on both axes.
func (s Square) Contains(p Position) bool {
	return p.Row >= 1 && p.Row <= s.Size && p.Column >= 1 && p.Column <= s.Size
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
