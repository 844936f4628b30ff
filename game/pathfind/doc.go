// Package pathfind implements the shortest-path search that every maze board
// is scored against.
//
// The search is A* over a uniform grid with unit-cost steps. Positions are
// 1-based (row, column) pairs, movement is a caller-supplied set of
// directions, and the grid extent is supplied through the Bounds predicate,
// so obstacles can be folded into the same predicate when a caller needs
// them considered.
//
// Two entry points are provided:
//
//   - FindShortestPath runs a search to completion and returns the path.
//   - NewSearch returns a Search that can be advanced one expansion at a
//     time, for visualisations or callers that want to yield between steps.
//
// Usage:
//
//	path, err := pathfind.FindShortestPath(
//		pathfind.Position{Row: 1, Column: 1},
//		pathfind.Position{Row: 16, Column: 16},
//		pathfind.CardinalDirections,
//		pathfind.Square{Size: 16},
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if len(path) == 0 {
//		// destination unreachable
//	}
//
// Tie-breaking:
//
// When several frontier positions share the lowest estimated total cost, the
// one queued most recently is expanded first. Repeated calls with identical
// inputs therefore always return identical paths.
package pathfind
