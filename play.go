package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/shortestmaze/game/config"
	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/wricardo/mcp-training/shortestmaze/transport/terminal"
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a board in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "classic",
				Usage: "Configuration to play",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Board seed; 0 picks a random one",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configManager, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}
			gameConfig, err := configManager.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}

			var generator engine.BoardGenerator = engine.NewRandomGenerator()
			if seed := cmd.Uint64("seed"); seed != 0 {
				generator = engine.NewSeededGenerator(seed)
			}
			gameEngine, err := engine.NewEngineWithGenerator(gameConfig, generator)
			if err != nil {
				return err
			}
			return terminal.RunInteractive(ctx, gameEngine)
		},
	}
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "Print the shortest path between two cells",
		UsageText: "shortestmaze solve --grid 16 --from 16,1 --to 1,16 --blocked \"2,2;3,3\"",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "grid",
				Value: engine.DefaultGridSize,
				Usage: "Grid size N; rows and columns are numbered 1..N",
			},
			&cli.StringFlag{
				Name:     "from",
				Usage:    "Start cell as row,column",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Destination cell as row,column",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "blocked",
				Usage: "Blocked cells as row,column separated by ;",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gridSize := cmd.Int("grid")
			start, err := parsePosition(cmd.String("from"))
			if err != nil {
				return err
			}
			destination, err := parsePosition(cmd.String("to"))
			if err != nil {
				return err
			}
			blocked, err := parsePositions(cmd.String("blocked"))
			if err != nil {
				return err
			}

			result, err := solve(ctx, gridSize, start, destination, blocked)
			if err != nil {
				return err
			}
			return terminal.WritePath(os.Stdout, gridSize, start, destination, blocked, result)
		},
	}
}

// solve searches a gridSize square with the blocked cells removed
func solve(ctx context.Context, gridSize int, start, destination pathfind.Position, blocked []pathfind.Position) (*pathfind.Result, error) {
	result, err := pathfind.SolveGrid(ctx, gridSize, start, destination, pathfind.CardinalDirections, blocked)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// parsePosition reads "row,column"
func parsePosition(s string) (pathfind.Position, error) {
	row, column, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return pathfind.Position{}, fmt.Errorf("%w: position %q must be row,column", pathfind.ErrInvalidArgument, s)
	}
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return pathfind.Position{}, fmt.Errorf("%w: bad row in %q", pathfind.ErrInvalidArgument, s)
	}
	c, err := strconv.Atoi(strings.TrimSpace(column))
	if err != nil {
		return pathfind.Position{}, fmt.Errorf("%w: bad column in %q", pathfind.ErrInvalidArgument, s)
	}
	return pathfind.Position{Row: r, Column: c}, nil
}

// parsePositions reads "row,column;row,column;..."
func parsePositions(value string) ([]pathfind.Position, error) {
	var positions []pathfind.Position
	for _, part := range strings.Split(value, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := parsePosition(part)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}
