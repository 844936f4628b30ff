package session

import (
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/wricardo/mcp-training/shortestmaze/game/service"
)

func TestManagerWithPersistence(t *testing.T) {
	persistence, _ := newTestFilePersistence(t)

	manager := NewManagerWithPersistence(persistence)
	manager.SetGenerator(testBoard())
	config := createTestConfig()

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		session, err := manager.Create("auto1", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if !persistence.Exists(session.ID) {
			t.Error("Session should be auto-saved on creation")
		}

		loaded, err := persistence.Load(session.ID)
		if err != nil {
			t.Fatalf("Failed to load auto-saved session: %v", err)
		}
		if loaded.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loaded.ID)
		}
	})

	t.Run("Lazy Loading From Persistence", func(t *testing.T) {
		if _, err := manager.Create("lazy1", config); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if err := manager.DeleteFromMemory("lazy1"); err != nil {
			t.Fatalf("Failed to delete from memory: %v", err)
		}
		if !persistence.Exists("lazy1") {
			t.Fatal("Session should still exist in persistence")
		}

		session, err := manager.Get("lazy1")
		if err != nil {
			t.Fatalf("Failed to lazy-load session: %v", err)
		}
		if session.ID != "lazy1" {
			t.Errorf("Expected ID lazy1, got %s", session.ID)
		}

		again, err := manager.Get("lazy1")
		if err != nil || again != session {
			t.Error("Expected lazily loaded session to be cached in memory")
		}
	})

	t.Run("Save Persists Moves", func(t *testing.T) {
		session, err := manager.Create("moves1", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if !session.Engine.Move("right") {
			t.Fatal("Expected move right to succeed")
		}
		if err := manager.Save("moves1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		loaded, err := persistence.Load("moves1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if got := loaded.Engine.GetPlayerPosition(); got != (pathfind.Position{Row: 1, Column: 2}) {
			t.Errorf("Expected persisted player at (1,2), got %s", got)
		}
	})

	t.Run("Save Unknown Session", func(t *testing.T) {
		if err := manager.Save("unknown"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Delete Removes Persisted Session", func(t *testing.T) {
		if _, err := manager.Create("del1", config); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if err := manager.Delete("del1"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("del1") {
			t.Error("Session should be removed from persistence")
		}
		if _, err := manager.Get("del1"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Delete Session Only In Persistence", func(t *testing.T) {
		if _, err := manager.Create("disk1", config); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		manager.DeleteFromMemory("disk1")

		if err := manager.Delete("disk1"); err != nil {
			t.Fatalf("Failed to delete persisted session: %v", err)
		}
		if persistence.Exists("disk1") {
			t.Error("Session should be removed from persistence")
		}
	})

	t.Run("Update Last Accessed Saves", func(t *testing.T) {
		session, err := manager.Create("touch1", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		old := time.Now().Add(-time.Hour).Truncate(time.Second)
		session.LastAccessedAt = old

		if err := manager.UpdateLastAccessed("touch1"); err != nil {
			t.Fatalf("Failed to update last accessed: %v", err)
		}
		loaded, err := persistence.Load("touch1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if !loaded.LastAccessedAt.After(old) {
			t.Error("Expected persisted LastAccessedAt to be refreshed")
		}
	})
}

func TestManager_LoadPersistedSessions(t *testing.T) {
	persistence, _ := newTestFilePersistence(t)
	config := createTestConfig()

	writer := NewManagerWithPersistence(persistence)
	writer.SetGenerator(testBoard())
	for _, id := range []string{"boot1", "boot2", "boot3"} {
		if _, err := writer.Create(id, config); err != nil {
			t.Fatalf("Failed to create %s: %v", id, err)
		}
	}

	reader := NewManagerWithPersistence(persistence)
	if reader.Count() != 0 {
		t.Fatalf("Expected empty manager before loading, got %d", reader.Count())
	}
	if err := reader.LoadPersistedSessions(); err != nil {
		t.Fatalf("Failed to load persisted sessions: %v", err)
	}
	if reader.Count() != 3 {
		t.Errorf("Expected 3 sessions after loading, got %d", reader.Count())
	}

	// Loading twice does not duplicate sessions
	if err := reader.LoadPersistedSessions(); err != nil {
		t.Fatalf("Failed to reload persisted sessions: %v", err)
	}
	if reader.Count() != 3 {
		t.Errorf("Expected 3 sessions after second load, got %d", reader.Count())
	}
}

func TestManager_SaveAllSessions(t *testing.T) {
	persistence, _ := newTestFilePersistence(t)

	manager := NewManager()
	manager.SetGenerator(testBoard())
	for _, id := range []string{"all1", "all2"} {
		if _, err := manager.Create(id, createTestConfig()); err != nil {
			t.Fatalf("Failed to create %s: %v", id, err)
		}
	}

	// Without persistence saving is a no-op
	if err := manager.SaveAllSessions(); err != nil {
		t.Fatalf("Expected no error without persistence, got %v", err)
	}

	manager.persistence = persistence
	if err := manager.SaveAllSessions(); err != nil {
		t.Fatalf("Failed to save all sessions: %v", err)
	}

	ids, err := persistence.ListAll()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 persisted sessions, got %v", ids)
	}
}

func TestManager_ConcurrentReadsAfterReload(t *testing.T) {
	persistence, _ := newTestFilePersistence(t)
	manager := NewManagerWithPersistence(persistence)
	manager.SetGenerator(testBoard())
	if _, err := manager.Create("reload1", createTestConfig()); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	reloaded := NewManagerWithPersistence(persistence)
	session, err := reloaded.Get("reload1")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state := session.Engine.GetState()
			if view := state.View(); len(view.Board) != state.GridSize {
				t.Errorf("Expected %d board rows, got %d", state.GridSize, len(view.Board))
			}
			state.Walkable().Contains(state.Destination)
			session.Engine.CanMove("down")
		}()
	}
	wg.Wait()
}

func TestManager_ConcurrentLazyLoadSharesSession(t *testing.T) {
	persistence, _ := newTestFilePersistence(t)
	manager := NewManagerWithPersistence(persistence)
	manager.SetGenerator(testBoard())
	if _, err := manager.Create("shared1", createTestConfig()); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	reloaded := NewManagerWithPersistence(persistence)
	const workers = 8
	results := make([]*service.Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := reloaded.Get("shared1")
			if err != nil {
				t.Errorf("Failed to load session: %v", err)
				return
			}
			results[i] = session
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("Expected every caller to get the same session, worker %d differs", i)
		}
	}
}
