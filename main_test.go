package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/shortestmaze/game/config"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/wricardo/mcp-training/shortestmaze/game/session"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Shortest Maze Server" {
		t.Errorf("Expected app name %q, got %q", "Shortest Maze Server", AppName)
	}
}

// runRoot parses args against the real flag set and captures the options
func runRoot(t *testing.T, args ...string) (options, error) {
	t.Helper()
	var got options
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		got = optionsFrom(cmd)
		return nil
	}
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	err := app.Run(context.Background(), append([]string{"shortestmaze"}, args...))
	return got, err
}

func TestFlags(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("CONFIG_DIR", "configs")

	t.Run("defaults and env", func(t *testing.T) {
		opts, err := runRoot(t)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if opts.host != "127.0.0.1" {
			t.Errorf("Expected host from HOST, got %q", opts.host)
		}
		if opts.store != StoreFile {
			t.Errorf("Expected default store %q, got %q", StoreFile, opts.store)
		}
		if opts.configDir != "configs" {
			t.Errorf("Expected config dir configs, got %q", opts.configDir)
		}
		if opts.port <= 0 || opts.port > 65535 {
			t.Errorf("Invalid port: %d", opts.port)
		}
	})

	t.Run("explicit flags", func(t *testing.T) {
		opts, err := runRoot(t, "--port", "9090", "--store", "pebble", "--sessions-dir", "/tmp/s")
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if opts.port != 9090 || opts.store != StorePebble || opts.sessionsDir != "/tmp/s" {
			t.Errorf("Unexpected options: %+v", opts)
		}
		if opts.addr() != "127.0.0.1:9090" {
			t.Errorf("Unexpected addr %q", opts.addr())
		}
	})

	t.Run("allowed origins", func(t *testing.T) {
		opts, err := runRoot(t, "--allowed-origins", "https://a.example,https://b.example")
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(opts.origins) != 2 || opts.origins[1] != "https://b.example" {
			t.Errorf("Unexpected origins: %v", opts.origins)
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		if _, err := runRoot(t, "--store", "redis"); err == nil {
			t.Error("Expected error for unknown store")
		}
	})
}

func TestCommands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"server", "http", "mcp", "stdio-mcp", "mcp-stdio", "play", "solve"} {
		if app.Command(name) == nil {
			t.Errorf("Command %q is not registered", name)
		}
	}
}

func testOptions(t *testing.T, store string) options {
	t.Helper()
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	return options{
		host:        "localhost",
		port:        8080,
		configDir:   "configs",
		sessionsDir: t.TempDir(),
		store:       store,
	}
}

func TestInitializeServices(t *testing.T) {
	for _, store := range []string{StoreFile, StorePebble} {
		t.Run(store, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			gameService, closeStore, err := initializeServices(ctx, testOptions(t, store))
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}
			defer closeStore()

			info, err := gameService.CreateSession(ctx, "classic")
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			if info.GameState.GridSize != 16 {
				t.Errorf("Expected 16x16 board, got %d", info.GameState.GridSize)
			}
		})
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	opts := options{configDir: "/non/existent/path", sessionsDir: t.TempDir(), store: StoreFile}
	if _, _, err := initializeServices(context.Background(), opts); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestSyncWithStore(t *testing.T) {
	configManager, err := config.NewManager("configs")
	if err != nil {
		t.Skipf("Skipping test - configs unavailable: %v", err)
	}
	persistence, err := session.NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}
	manager := session.NewManagerWithPersistence(persistence)

	kept, err := manager.Create("", configManager.GetDefault())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	dropped, err := manager.Create("", configManager.GetDefault())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := persistence.Delete(dropped.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if pruned := syncWithStore(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := manager.Get(kept.ID); err != nil {
		t.Errorf("Kept session should remain: %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session in memory, got %d", manager.Count())
	}
	if syncWithStore(manager, nil) != 0 {
		t.Error("Expected nothing pruned without persistence")
	}
}

func TestRouter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, closeStore, err := initializeServices(ctx, testOptions(t, StoreFile))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer closeStore()

	ts := httptest.NewServer(newRouter(gameService, nil, "http://unused"))
	defer ts.Close()

	if !externalAPIAvailable(ts.URL) {
		t.Error("Expected health check to succeed")
	}

	resp, err := http.Get(ts.URL + "/mcp")
	if err != nil {
		t.Fatalf("GET /mcp failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", resp.StatusCode)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	resp, err = http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /mcp failed: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "Shortest Maze") {
		t.Errorf("Expected server info in initialize response, got %s", data)
	}
}

func TestExternalAPIAvailable_Down(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	if externalAPIAvailable(url) {
		t.Error("Expected 404 health check to count as unavailable")
	}
	ts.Close()
	if externalAPIAvailable(url) {
		t.Error("Expected closed server to be unavailable")
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input   string
		want    pathfind.Position
		wantErr bool
	}{
		{"1,2", pathfind.Position{Row: 1, Column: 2}, false},
		{" 16 , 3 ", pathfind.Position{Row: 16, Column: 3}, false},
		{"1", pathfind.Position{}, true},
		{"a,2", pathfind.Position{}, true},
		{"1,b", pathfind.Position{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parsePosition(tt.input)
			if tt.wantErr {
				if !errors.Is(err, pathfind.ErrInvalidArgument) {
					t.Errorf("Expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parsePosition(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
			}
		})
	}

	blocked, err := parsePositions("2,1; 2,2;")
	if err != nil {
		t.Fatalf("parsePositions failed: %v", err)
	}
	if len(blocked) != 2 || blocked[1] != (pathfind.Position{Row: 2, Column: 2}) {
		t.Errorf("Unexpected blocked cells: %v", blocked)
	}
	if blocked, err := parsePositions(""); err != nil || len(blocked) != 0 {
		t.Errorf("Expected no cells for empty input, got %v, %v", blocked, err)
	}
}

func TestSolve(t *testing.T) {
	blocked := []pathfind.Position{{Row: 2, Column: 1}, {Row: 2, Column: 2}}
	result, err := solve(context.Background(), 3, pathfind.Position{Row: 1, Column: 1}, pathfind.Position{Row: 3, Column: 1}, blocked)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !result.Found || result.Steps != 6 {
		t.Errorf("Expected a 6 step path, got found=%v steps=%d", result.Found, result.Steps)
	}

	_, err = solve(context.Background(), 3, pathfind.Position{Row: 1, Column: 1}, pathfind.Position{Row: 4, Column: 1}, nil)
	if !errors.Is(err, pathfind.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for an off-grid destination, got %v", err)
	}
}
