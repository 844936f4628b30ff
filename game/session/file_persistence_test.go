package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/shortestmaze/game/config"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
)

func newTestFilePersistence(t *testing.T) (*FilePersistence, string) {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, dir
}

func TestFilePersistence(t *testing.T) {
	persistence, _ := newTestFilePersistence(t)
	testPersistenceContract(t, persistence)
}

func TestFilePersistence_FileStructure(t *testing.T) {
	persistence, dir := newTestFilePersistence(t)

	session := newPlayedSession(t, "struct1")
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "struct1.json"))
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("Failed to parse session file: %v", err)
	}
	for _, field := range []string{"id", "config_name", "config", "created_at", "last_accessed_at", "game_state"} {
		if _, ok := data[field]; !ok {
			t.Errorf("Expected field %q in session file", field)
		}
	}

	state, ok := data["game_state"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected game_state to be an object")
	}
	for _, field := range []string{"player_pos", "destination", "obstacles", "shortest_path", "path_taken", "move_history"} {
		if _, ok := state[field]; !ok {
			t.Errorf("Expected field %q in game_state", field)
		}
	}

	if !strings.Contains(string(raw), "\n  ") {
		t.Error("Expected session file to be indented")
	}
	if _, err := os.Stat(filepath.Join(dir, "struct1.json.tmp")); !os.IsNotExist(err) {
		t.Error("Expected no temporary file to remain after save")
	}
}

func TestFilePersistence_ResolvesConfigByName(t *testing.T) {
	persistence, dir := newTestFilePersistence(t)

	record := `{
  "id": "legacy",
  "config_name": "classic",
  "created_at": "2024-01-01T00:00:00Z",
  "last_accessed_at": "2024-01-01T00:00:00Z",
  "game_state": {
    "grid_size": 16,
    "start": {"row": 1, "column": 1},
    "destination": {"row": 1, "column": 3},
    "player_pos": {"row": 1, "column": 1},
    "obstacles": [{"row": 2, "column": 2}],
    "shortest_path": [{"row": 1, "column": 1}, {"row": 1, "column": 2}, {"row": 1, "column": 3}],
    "optimal_steps": 2,
    "path_taken": [{"row": 1, "column": 1}],
    "board_number": 1
  }
}`
	if err := os.WriteFile(filepath.Join(dir, "legacy.json"), []byte(record), 0644); err != nil {
		t.Fatalf("Failed to write legacy record: %v", err)
	}

	loaded, err := persistence.Load("legacy")
	if err != nil {
		t.Fatalf("Failed to load legacy record: %v", err)
	}
	if loaded.Config == nil || loaded.Config.GridSize != 16 {
		t.Fatalf("Expected the classic config to be resolved, got %+v", loaded.Config)
	}
	if loaded.ConfigID != "classic" {
		t.Errorf("Expected config ID 'classic', got %q", loaded.ConfigID)
	}
	if !loaded.Engine.GetState().IsObstacle(pathfind.Position{Row: 2, Column: 2}) {
		t.Error("Expected obstacle at (2,2)")
	}
	if !loaded.Engine.CanMove("right") {
		t.Error("Expected move right to be possible")
	}
}

func TestFilePersistence_Errors(t *testing.T) {
	persistence, dir := newTestFilePersistence(t)

	t.Run("load non-existent session", func(t *testing.T) {
		if _, err := persistence.Load("missing"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("load corrupted session", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
			t.Fatalf("Failed to write corrupted file: %v", err)
		}
		if _, err := persistence.Load("broken"); err == nil {
			t.Error("Expected error loading a corrupted session")
		}
	})

	t.Run("list ignores other files", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
		os.Mkdir(filepath.Join(dir, "nested.json"), 0755)

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}
		for _, id := range ids {
			if id == "notes" || id == "nested" {
				t.Errorf("Unexpected ID %q in listing", id)
			}
		}
	})
}
