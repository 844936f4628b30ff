// Package terminal plays the maze locally in a text terminal.
//
// Game drives a single engine.GameEngine from keypresses: arrow keys,
// WASD or HJKL move, r generates a new board, t replays the current one and
// q quits. Once the game is over the board reveals the optimal route (*)
// and any cells visited off it (x). Interface strings come from an
// embedded gettext catalog and are looked up with T, or Tf when they
// take arguments.
//
//	gameEngine, _ := engine.NewEngine(engine.DefaultConfig())
//	terminal.RunInteractive(ctx, gameEngine)
//
// WritePath prints the answer of a one-off shortest path query in the same
// style, which the solve command uses.
package terminal
