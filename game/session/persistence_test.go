package session

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/wricardo/mcp-training/shortestmaze/game/service"
)

// newPlayedSession builds a session on testBoard that has made one move
func newPlayedSession(t *testing.T, id string) *service.Session {
	t.Helper()
	config := createTestConfig()
	eng, err := engine.NewEngineWithGenerator(config, testBoard())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if !eng.Move("right") {
		t.Fatal("Expected move right to succeed")
	}
	now := time.Now().Truncate(time.Second)
	return &service.Session{
		ID:             id,
		ConfigID:       config.Name,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now.Add(-time.Minute),
		LastAccessedAt: now,
	}
}

// testPersistenceContract exercises the behavior every SessionPersistence shares
func testPersistenceContract(t *testing.T, store SessionPersistence) {
	t.Run("save and load round trip", func(t *testing.T) {
		original := newPlayedSession(t, "round-trip")
		if err := store.Save(original); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !store.Exists("round-trip") {
			t.Fatal("Expected session to exist after save")
		}

		loaded, err := store.Load("round-trip")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loaded.ID != original.ID || loaded.ConfigID != original.ConfigID {
			t.Errorf("Expected %s/%s, got %s/%s", original.ID, original.ConfigID, loaded.ID, loaded.ConfigID)
		}
		if !loaded.CreatedAt.Equal(original.CreatedAt) || !loaded.LastAccessedAt.Equal(original.LastAccessedAt) {
			t.Error("Expected timestamps to survive the round trip")
		}

		state := loaded.Engine.GetState()
		if state.PlayerPos != (pathfind.Position{Row: 1, Column: 2}) {
			t.Errorf("Expected player at (1,2), got %s", state.PlayerPos)
		}
		if len(state.PathTaken) != 2 {
			t.Errorf("Expected 2 cells in path taken, got %v", state.PathTaken)
		}
		if len(state.MoveHistory) != 1 || state.MoveHistory[0].Action != "right" {
			t.Errorf("Expected one 'right' move in history, got %+v", state.MoveHistory)
		}
		if !state.IsObstacle(pathfind.Position{Row: 2, Column: 2}) {
			t.Error("Expected obstacle set to be rebuilt after load")
		}
		if !engine.SamePath(state.ShortestPath, original.Engine.GetState().ShortestPath) {
			t.Errorf("Expected shortest path to survive, got %v", state.ShortestPath)
		}
	})

	t.Run("loaded session keeps playing", func(t *testing.T) {
		loaded, err := store.Load("round-trip")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if !loaded.Engine.Move("right") {
			t.Fatal("Expected move onto destination to succeed")
		}
		if !loaded.Engine.IsVictory() {
			t.Errorf("Expected victory after following the optimal route, message %q", loaded.Engine.GetState().Message)
		}
	})

	t.Run("list all", func(t *testing.T) {
		for _, id := range []string{"list-b", "list-a"} {
			if err := store.Save(newPlayedSession(t, id)); err != nil {
				t.Fatalf("Failed to save %s: %v", id, err)
			}
		}
		ids, err := store.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}
		sort.Strings(ids)
		want := []string{"list-a", "list-b", "round-trip"}
		if len(ids) != len(want) {
			t.Fatalf("Expected %v, got %v", want, ids)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Errorf("Expected %v, got %v", want, ids)
				break
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.Delete("list-a"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if store.Exists("list-a") {
			t.Error("Expected session to be gone after delete")
		}
		if _, err := store.Load("list-a"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if err := store.Delete("list-a"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
		}
	})

	t.Run("invalid IDs", func(t *testing.T) {
		if _, err := store.Load("../outside"); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
		if store.Exists("../outside") {
			t.Error("Expected invalid ID to never exist")
		}
		bad := newPlayedSession(t, "ok")
		bad.ID = "no/slashes"
		if err := store.Save(bad); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID on save, got %v", err)
		}
	})

	t.Run("nil session", func(t *testing.T) {
		if err := store.Save(nil); err == nil {
			t.Error("Expected error saving a nil session")
		}
	})
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"a1b2", true},
		{"My_Session-1", true},
		{"", false},
		{"..", false},
		{"a/b", false},
		{"a b", false},
		{"toolong-toolong-toolong-toolong-toolong-toolong-toolong-toolong-x", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if tt.valid && err != nil {
				t.Errorf("Expected %q to be valid, got %v", tt.id, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidSessionID) {
				t.Errorf("Expected ErrInvalidSessionID for %q, got %v", tt.id, err)
			}
		})
	}
}

func TestDecodeSession_Errors(t *testing.T) {
	t.Run("malformed JSON", func(t *testing.T) {
		if _, err := decodeSession([]byte("{not json"), nil); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("missing game state", func(t *testing.T) {
		if _, err := decodeSession([]byte(`{"id":"x1","config_name":"classic"}`), nil); err == nil {
			t.Error("Expected error for record without game state")
		}
	})

	t.Run("no config and no manager", func(t *testing.T) {
		raw := []byte(`{"id":"x1","config_name":"classic","game_state":{"grid_size":5}}`)
		if _, err := decodeSession(raw, nil); err == nil {
			t.Error("Expected error when the config cannot be resolved")
		}
	})
}
