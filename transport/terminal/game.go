package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
)

const clearScreen = "\033[H\033[2J"

// Game runs one local engine in a terminal
type Game struct {
	engine   *engine.GameEngine
	renderer *Renderer
	out      io.Writer
	clear    bool
}

// NewGame creates a terminal game writing to out. When clear is set the
// screen is wiped before every frame.
func NewGame(gameEngine *engine.GameEngine, out io.Writer, clear bool) *Game {
	return &Game{
		engine:   gameEngine,
		renderer: NewRenderer(),
		out:      out,
		clear:    clear,
	}
}

func (g *Game) draw(status string) error {
	frame := g.renderer.Screen(g.engine.GetState(), status)
	if g.clear {
		frame = clearScreen + frame
	}
	_, err := io.WriteString(g.out, frame)
	return err
}

// Play reads keys from in until the player quits, in is exhausted or ctx
// is cancelled.
func (g *Game) Play(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)
	status := g.engine.GetState().Message

	for {
		if err := g.draw(status); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		key, err := ReadKey(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		switch key {
		case KeyQuit:
			_, err := io.WriteString(g.out, T("GOODBYE")+"\r\n")
			return err
		case KeyReset:
			state, err := g.engine.Reset()
			if err != nil {
				return fmt.Errorf("failed to generate board: %w", err)
			}
			status = state.Message
		case KeyRestart:
			status = g.engine.Restart().Message
		case KeyUnknown:
			status = T("UNKNOWN_KEY")
		default:
			g.engine.Move(key.Direction())
			status = g.engine.GetState().Message
		}
	}
}

// RunInteractive plays on the process terminal, switching stdin to raw
// mode so single keypresses arrive without Enter.
func RunInteractive(ctx context.Context, gameEngine *engine.GameEngine) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return NewGame(gameEngine, os.Stdout, false).Play(ctx, os.Stdin)
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		if needed := 2*gameEngine.GetState().GridSize + 2; width < needed {
			return fmt.Errorf("terminal is %d columns wide, the board needs %d", width, needed)
		}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("cannot set terminal to raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return NewGame(gameEngine, os.Stdout, true).Play(ctx, os.Stdin)
}

// PathBoard renders a solved grid: the path as CharOptimal between the
// start and destination.
func PathBoard(gridSize int, start, destination pathfind.Position, blocked, path []pathfind.Position) []string {
	state := &engine.GameState{
		GridSize:     gridSize,
		Start:        start,
		Destination:  destination,
		Obstacles:    blocked,
		ShortestPath: path,
	}
	state.IndexObstacles()
	return state.Render(true)
}

// WritePath prints the result of a shortest path query
func WritePath(out io.Writer, gridSize int, start, destination pathfind.Position, blocked []pathfind.Position, result *pathfind.Result) error {
	r := NewRenderer()
	if !result.Found {
		_, err := fmt.Fprintf(out, "%s\n", r.colorDefeat.Sprint(Tf("NO_PATH", start, destination)))
		return err
	}

	if _, err := fmt.Fprintf(out, "%s\n", r.colorVictory.Sprint(Tf("PATH_FOUND", result.Steps, result.Expanded))); err != nil {
		return err
	}
	for i, p := range result.Path {
		sep := " -> "
		if i == 0 {
			sep = ""
		}
		if _, err := fmt.Fprintf(out, "%s%s", sep, p); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "\n\n%s", r.Board(PathBoard(gridSize, start, destination, blocked, result.Path)))
	return err
}
