package terminal

import (
	"fmt"
	"strings"

	"github.com/gookit/color"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
)

// Renderer draws game states as colored text. Lines end in "\r\n" so the
// output stays aligned while the terminal is in raw mode.
type Renderer struct {
	colorOpen        color.Style
	colorObstacle    color.Style
	colorStart       color.Style
	colorDestination color.Style
	colorPlayer      color.Style
	colorOptimal     color.Style
	colorDetour      color.Style
	colorTitle       color.Style
	colorSubtle      color.Style
	colorVictory     color.Style
	colorDefeat      color.Style
}

// NewRenderer creates a renderer with the default palette
func NewRenderer() *Renderer {
	return &Renderer{
		colorOpen:        color.Style{color.FgGray},
		colorObstacle:    color.Style{color.FgRed, color.OpBold},
		colorStart:       color.Style{color.FgBlue, color.OpBold},
		colorDestination: color.Style{color.FgYellow, color.OpBold},
		colorPlayer:      color.Style{color.FgGreen, color.BgBlack, color.OpBold},
		colorOptimal:     color.Style{color.FgCyan, color.OpBold},
		colorDetour:      color.Style{color.FgMagenta},
		colorTitle:       color.Style{color.FgMagenta, color.OpBold},
		colorSubtle:      color.Style{color.FgGray, color.OpBold},
		colorVictory:     color.Style{color.FgGreen, color.OpBold},
		colorDefeat:      color.Style{color.FgRed, color.OpBold},
	}
}

func (r *Renderer) styleFor(ch rune) color.Style {
	switch ch {
	case engine.CharObstacle:
		return r.colorObstacle
	case engine.CharStart:
		return r.colorStart
	case engine.CharDestination:
		return r.colorDestination
	case engine.CharPlayer:
		return r.colorPlayer
	case engine.CharOptimal:
		return r.colorOptimal
	case engine.CharDetour:
		return r.colorDetour
	default:
		return r.colorOpen
	}
}

// Board colors the rows of a rendered board, one space between cells
func (r *Renderer) Board(rows []string) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(" ")
		for _, ch := range row {
			b.WriteString(" ")
			b.WriteString(r.styleFor(ch).Sprint(string(ch)))
		}
		b.WriteString("\r\n")
	}
	return b.String()
}

// Screen renders the full play screen for a state
func (r *Renderer) Screen(state *engine.GameState, status string) string {
	var b strings.Builder

	b.WriteString(r.colorTitle.Sprint(T("TITLE")))
	b.WriteString("\r\n")
	b.WriteString(r.colorSubtle.Sprint(Tf("BOARD_HEADER", state.BoardNumber, state.GridSize, state.GridSize, state.ConfigName)))
	b.WriteString("\r\n\r\n")

	b.WriteString(r.Board(state.Render(state.GameOver)))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "%s\r\n", Tf("POSITION", state.PlayerPos, state.Destination, state.StepsTaken()))
	b.WriteString(r.colorSubtle.Sprint(T("LEGEND")))
	if state.GameOver {
		b.WriteString("  ")
		b.WriteString(r.colorSubtle.Sprint(T("LEGEND_REVEAL")))
	}
	b.WriteString("\r\n\r\n")

	if state.GameOver {
		if state.Victory {
			b.WriteString(r.colorVictory.Sprint(Tf("VICTORY", state.StepsTaken())))
		} else {
			b.WriteString(r.colorDefeat.Sprint(Tf("DEFEAT", state.StepsTaken(), state.OptimalSteps)))
		}
		b.WriteString("\r\n")
		b.WriteString(T("GAME_OVER_PROMPT"))
	} else {
		b.WriteString(T("CONTROLS"))
	}
	b.WriteString("\r\n")

	if status != "" {
		b.WriteString("\r\n")
		b.WriteString(status)
		b.WriteString("\r\n")
	}
	return b.String()
}
