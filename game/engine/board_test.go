package engine

import (
	"reflect"
	"testing"

	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/zyedidia/generic/mapset"
)

func TestRandomGenerator_Generate(t *testing.T) {
	config := DefaultConfig()
	generator := NewSeededGenerator(42)

	for i := 0; i < 25; i++ {
		board, err := generator.Generate(config)
		if err != nil {
			t.Fatalf("board %d: Generate failed: %v", i, err)
		}

		if board.Start.Column != config.StartColumn {
			t.Errorf("board %d: start %s not in column %d", i, board.Start, config.StartColumn)
		}
		if board.Destination.Column == config.StartColumn {
			t.Errorf("board %d: destination %s in start column", i, board.Destination)
		}

		bounds := pathfind.Square{Size: config.GridSize}
		if !bounds.Contains(board.Start) || !bounds.Contains(board.Destination) {
			t.Fatalf("board %d: endpoints out of bounds", i)
		}

		path := board.ShortestPath
		if path[0] != board.Start || path[len(path)-1] != board.Destination {
			t.Errorf("board %d: path does not join start and destination", i)
		}
		if got, want := len(path)-1, pathfind.Manhattan(board.Start, board.Destination); got != want {
			t.Errorf("board %d: path has %d steps, want %d", i, got, want)
		}

		onPath := mapset.Of(path...)
		maxObstacles := config.MinObstacles + config.ObstacleSpread
		if len(board.Obstacles) > maxObstacles {
			t.Errorf("board %d: %d obstacles, expected at most %d", i, len(board.Obstacles), maxObstacles)
		}
		for _, o := range board.Obstacles {
			if onPath.Has(o) {
				t.Errorf("board %d: obstacle %s on the optimal path", i, o)
			}
			if o.Column == config.StartColumn {
				t.Errorf("board %d: obstacle %s in start column", i, o)
			}
			if !bounds.Contains(o) {
				t.Errorf("board %d: obstacle %s out of bounds", i, o)
			}
		}
		for j := 1; j < len(board.Obstacles); j++ {
			if board.Obstacles[j] == board.Obstacles[j-1] {
				t.Errorf("board %d: duplicate obstacle %s", i, board.Obstacles[j])
			}
		}
	}
}

func TestRandomGenerator_Seeded(t *testing.T) {
	config := DefaultConfig()
	a, err := NewSeededGenerator(99).Generate(config)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := NewSeededGenerator(99).Generate(config)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical boards for the same seed")
	}
}

func TestRandomGenerator_StartColumn(t *testing.T) {
	config := createValidConfig()
	config.StartColumn = 4
	generator := NewSeededGenerator(3)

	for i := 0; i < 20; i++ {
		board, err := generator.Generate(config)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if board.Start.Column != 4 || board.Destination.Column == 4 {
			t.Errorf("board %d: start %s destination %s", i, board.Start, board.Destination)
		}
	}
}

func TestRandomGenerator_InvalidConfig(t *testing.T) {
	config := createValidConfig()
	config.GridSize = 1
	if _, err := NewRandomGenerator().Generate(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestFixedGenerator(t *testing.T) {
	board, err := detourBoard().Generate(createTestConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if board.Size != 5 {
		t.Errorf("Expected size from config, got %d", board.Size)
	}
	want := []pathfind.Position{p(1, 1), p(2, 1), p(2, 2), p(2, 3), p(1, 3)}
	if !SamePath(board.ShortestPath, want) {
		t.Errorf("Expected path %v, got %v", want, board.ShortestPath)
	}
}
