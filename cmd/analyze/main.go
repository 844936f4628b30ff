// Command analyze generates sample boards for each configuration in the
// configs directory and reports how they play: optimal route lengths,
// obstacle density, search effort and how many equally short routes a
// player could take instead of the expected one.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"text/tabwriter"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/shortestmaze/game/config"
	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
)

// Report summarizes the boards sampled for one configuration
type Report struct {
	ConfigID      string
	Boards        int
	MinSteps      int
	MaxSteps      int
	MeanSteps     float64
	MeanObstacles float64
	MeanDensity   float64
	MeanExpanded  float64
	// UniqueRoutes counts boards with exactly one shortest route
	UniqueRoutes int
	MaxRoutes    uint64
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Sample boards per configuration and report route statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Only analyze this configuration",
			},
			&cli.IntFlag{
				Name:  "boards",
				Value: 200,
				Usage: "Boards to sample per configuration",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "Seed for the board generator",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configManager, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}

			ids := []string{cmd.String("config")}
			if ids[0] == "" {
				infos, err := configManager.ListConfigs()
				if err != nil {
					return err
				}
				ids = ids[:0]
				for _, info := range infos {
					ids = append(ids, info.ConfigID)
				}
			}

			reports := make([]*Report, 0, len(ids))
			for i, id := range ids {
				gameConfig, err := configManager.LoadConfig(id)
				if err != nil {
					return err
				}
				bar := newBar(ansi.NewAnsiStdout(), cmd.Int("boards"), fmt.Sprintf("[cyan][%d/%d][reset] Sampling %s...", i+1, len(ids), id))
				report, err := analyzeConfig(ctx, id, gameConfig, cmd.Int("boards"), cmd.Uint64("seed"), bar)
				if err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				fmt.Println()
				reports = append(reports, report)
			}

			return writeReports(os.Stdout, reports)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newBar(out io.Writer, max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// analyzeConfig samples boards from a seeded generator so reports are
// reproducible for a given seed.
func analyzeConfig(ctx context.Context, id string, gameConfig *engine.GameConfig, boards int, seed uint64, bar *progressbar.ProgressBar) (*Report, error) {
	if boards < 1 {
		return nil, fmt.Errorf("%w: need at least one board, got %d", pathfind.ErrInvalidArgument, boards)
	}

	generator := engine.NewSeededGenerator(seed)
	report := &Report{ConfigID: id, Boards: boards, MinSteps: math.MaxInt}
	var steps, obstacles, density, expanded float64

	for i := 0; i < boards; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		board, err := generator.Generate(gameConfig)
		if err != nil {
			return nil, err
		}
		state := engine.NewGameState(board, gameConfig)

		result, err := pathfind.Solve(state.Start, state.Destination, pathfind.CardinalDirections, state.Walkable())
		if err != nil {
			return nil, err
		}
		if !result.Found {
			return nil, fmt.Errorf("board %d has no route from %s to %s", i+1, state.Start, state.Destination)
		}

		report.MinSteps = min(report.MinSteps, result.Steps)
		report.MaxSteps = max(report.MaxSteps, result.Steps)
		steps += float64(result.Steps)
		obstacles += float64(len(state.Obstacles))
		density += engine.ObstacleDensity(state)
		expanded += float64(result.Expanded)

		routes := countShortestRoutes(state)
		if routes == 1 {
			report.UniqueRoutes++
		}
		report.MaxRoutes = max(report.MaxRoutes, routes)

		if bar != nil {
			bar.Add(1)
		}
	}

	n := float64(boards)
	report.MeanSteps = steps / n
	report.MeanObstacles = obstacles / n
	report.MeanDensity = density / n
	report.MeanExpanded = expanded / n
	return report, nil
}

// countShortestRoutes counts the distinct shortest routes from start to
// destination with a breadth-first sweep. Counts saturate at MaxUint64.
func countShortestRoutes(state *engine.GameState) uint64 {
	walkable := state.Walkable()
	dist := map[pathfind.Position]int{state.Start: 0}
	ways := map[pathfind.Position]uint64{state.Start: 1}
	queue := []pathfind.Position{state.Start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == state.Destination {
			continue
		}
		for _, d := range pathfind.CardinalDirections {
			next := current.Add(d)
			if !walkable.Contains(next) {
				continue
			}
			nd, seen := dist[next]
			switch {
			case !seen:
				dist[next] = dist[current] + 1
				ways[next] = ways[current]
				queue = append(queue, next)
			case nd == dist[current]+1:
				if ways[next] > math.MaxUint64-ways[current] {
					ways[next] = math.MaxUint64
				} else {
					ways[next] += ways[current]
				}
			}
		}
	}
	return ways[state.Destination]
}

func writeReports(out io.Writer, reports []*Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONFIG\tBOARDS\tSTEPS (min/mean/max)\tOBSTACLES\tDENSITY\tEXPANDED\tUNIQUE ROUTE\tMAX ROUTES")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%d\t%d/%.1f/%d\t%.1f\t%.1f%%\t%.1f\t%.0f%%\t%d\n",
			r.ConfigID, r.Boards,
			r.MinSteps, r.MeanSteps, r.MaxSteps,
			r.MeanObstacles, r.MeanDensity*100, r.MeanExpanded,
			100*float64(r.UniqueRoutes)/float64(r.Boards), r.MaxRoutes)
	}
	return w.Flush()
}
