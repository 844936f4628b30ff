// Command autoplay plays boards against a running server through the REST
// API and reports how often a route-planning strategy wins.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
)

// Outcome is the result of one board
type Outcome struct {
	Finished bool
	Victory  bool
	Moves    int
	Steps    int
	Optimal  int
}

// Summary aggregates the outcomes of a run
type Summary struct {
	Games      int
	Victories  int
	Defeats    int
	Unfinished int
	Moves      int
}

func (s *Summary) add(o Outcome) {
	s.Games++
	s.Moves += o.Moves
	switch {
	case !o.Finished:
		s.Unfinished++
	case o.Victory:
		s.Victories++
	default:
		s.Defeats++
	}
}

// playBoard plans the whole route up front and submits it
func playBoard(ctx context.Context, client *Client, strategy Strategy, state *engine.GameState) (Outcome, error) {
	moves, err := strategy.Plan(state)
	if err != nil {
		return Outcome{}, err
	}

	result, err := client.BulkMove(ctx, moves)
	if err != nil {
		return Outcome{}, err
	}
	if result == nil {
		return Outcome{Moves: len(moves)}, nil
	}
	return Outcome{
		Finished: result.GameOver,
		Victory:  result.GameOverCode == "victory",
		Moves:    len(moves),
		Steps:    result.StepsTaken,
		Optimal:  result.OptimalSteps,
	}, nil
}

// run plays games boards on one session, resetting between boards
func run(ctx context.Context, client *Client, strategy Strategy, configID, resume string, games int, delay time.Duration, verbose bool) (*Summary, error) {
	var state *engine.GameState
	var err error
	if resume != "" {
		log.Printf("🔄 Resuming session: %s", resume)
		if _, err = client.Resume(ctx, resume); err != nil {
			return nil, fmt.Errorf("failed to resume session: %w", err)
		}
	} else {
		if _, err = client.CreateSession(ctx, configID); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		log.Printf("✨ Session created: %s", client.SessionID())
	}

	summary := &Summary{}
	for game := 1; game <= games; game++ {
		if state, err = client.Reset(ctx); err != nil {
			return summary, fmt.Errorf("failed to reset: %w", err)
		}

		outcome, err := playBoard(ctx, client, strategy, state)
		if err != nil {
			return summary, fmt.Errorf("board %d: %w", game, err)
		}
		summary.add(outcome)

		if verbose {
			log.Printf("Board %d: %s → %s, moves=%d steps=%d optimal=%d finished=%v victory=%v",
				game, state.Start, state.Destination, outcome.Moves, outcome.Steps, outcome.Optimal, outcome.Finished, outcome.Victory)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return summary, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play boards through the REST API with a route-planning strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: "http://localhost:8080",
				Usage: "Game server URL",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration to play (server default when empty)",
			},
			&cli.StringFlag{
				Name:  "continue",
				Usage: "Resume playing an existing session by ID",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Value: "open-grid",
				Usage: "One of " + strings.Join(StrategyNames(), ", "),
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 20,
				Usage: "Boards to play",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Pause between boards",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every board",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			strategy, ok := Strategies[cmd.String("strategy")]
			if !ok {
				return fmt.Errorf("unknown strategy %q, use one of %s", cmd.String("strategy"), strings.Join(StrategyNames(), ", "))
			}

			log.Printf("Connecting to game server at %s (strategy: %s)", cmd.String("url"), strategy.Name())
			client := NewClient(cmd.String("url"))

			summary, err := run(ctx, client, strategy, cmd.String("config"), cmd.String("continue"),
				cmd.Int("games"), cmd.Duration("delay"), cmd.Bool("verbose"))
			if err != nil {
				return err
			}

			log.Printf("🎉 %d/%d victories, %d defeats, %d unfinished, %d moves sent (session %s)",
				summary.Victories, summary.Games, summary.Defeats, summary.Unfinished, summary.Moves, client.SessionID())
			if summary.Victories < summary.Games {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
