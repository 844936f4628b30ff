package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:           "Test Config",
		Description:    "A valid test configuration",
		GridSize:       8,
		StartColumn:    1,
		MinObstacles:   5,
		ObstacleSpread: 10,
		Messages:       DefaultMessages(),
	}
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	if err := ValidateGameConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
	if err := ValidateGameConfig(DefaultConfig()); err != nil {
		t.Errorf("Expected default config to pass validation, got: %v", err)
	}
}

func TestValidateGameConfig_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*GameConfig)
		expectedError string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"grid too small", func(c *GameConfig) { c.GridSize = 4 }, "grid_size must be between"},
		{"grid too large", func(c *GameConfig) { c.GridSize = 51 }, "grid_size must be between"},
		{"start column zero", func(c *GameConfig) { c.StartColumn = 0 }, "start_column must be between"},
		{"start column outside grid", func(c *GameConfig) { c.StartColumn = 9 }, "start_column must be between"},
		{"negative obstacles", func(c *GameConfig) { c.MinObstacles = -1 }, "min_obstacles cannot be negative"},
		{"negative spread", func(c *GameConfig) { c.ObstacleSpread = -1 }, "obstacle_spread cannot be negative"},
		{"too many obstacles", func(c *GameConfig) { c.MinObstacles = MaxObstacles }, "must not exceed"},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, "messages.welcome is required"},
		{"missing victory", func(c *GameConfig) { c.Messages.Victory = "" }, "messages.victory is required"},
		{"missing defeat", func(c *GameConfig) { c.Messages.Defeat = "" }, "messages.defeat is required"},
		{"victory without count", func(c *GameConfig) { c.Messages.Victory = "Well done" }, "exactly one %d"},
		{"defeat with one count", func(c *GameConfig) { c.Messages.Defeat = "Lost in %d" }, "two %d"},
		{"moved with two positions", func(c *GameConfig) { c.Messages.Moved = "%s to %s" }, "at most one %s"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.mutate(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatalf("Expected error containing '%s'", test.expectedError)
			}
			if !strings.Contains(err.Error(), test.expectedError) {
				t.Errorf("Expected error containing '%s', got: %v", test.expectedError, err)
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestApplyDefaults(t *testing.T) {
	config := &GameConfig{Name: "bare", Description: "only required fields"}
	ApplyDefaults(config)

	if config.GridSize != DefaultGridSize {
		t.Errorf("Expected grid size %d, got %d", DefaultGridSize, config.GridSize)
	}
	if config.StartColumn != 1 {
		t.Errorf("Expected start column 1, got %d", config.StartColumn)
	}
	if config.Messages != DefaultMessages() {
		t.Errorf("Expected default messages, got %+v", config.Messages)
	}

	custom := &GameConfig{Messages: Messages{Welcome: "Hi"}}
	ApplyDefaults(custom)
	if custom.Messages.Welcome != "Hi" {
		t.Error("ApplyDefaults overwrote a configured message")
	}
}

func TestParseGameConfig(t *testing.T) {
	t.Run("valid with defaults", func(t *testing.T) {
		config, err := ParseGameConfig([]byte(`{"name":"tiny","description":"d","grid_size":6,"min_obstacles":3}`))
		if err != nil {
			t.Fatalf("ParseGameConfig failed: %v", err)
		}
		if config.GridSize != 6 || config.MinObstacles != 3 || config.StartColumn != 1 {
			t.Errorf("Unexpected config %+v", config)
		}
		if config.Messages.Victory == "" {
			t.Error("Expected default victory message")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := ParseGameConfig([]byte(`{"name":`)); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("fails validation", func(t *testing.T) {
		if _, err := ParseGameConfig([]byte(`{"name":"x","description":"d","grid_size":3}`)); err == nil {
			t.Error("Expected error for invalid grid size")
		}
	})
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	content := `{"name":"file","description":"from disk","grid_size":10,"allow_any_shortest_path":true}`
	if err := os.WriteFile(filepath.Join(dir, "file.json"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Run("direct path", func(t *testing.T) {
		config, err := LoadGameConfig(filepath.Join(dir, "file.json"))
		if err != nil {
			t.Fatalf("LoadGameConfig failed: %v", err)
		}
		if config.GridSize != 10 || !config.AllowAnyShortestPath {
			t.Errorf("Unexpected config %+v", config)
		}
	})

	t.Run("CONFIG_DIR override", func(t *testing.T) {
		t.Setenv("CONFIG_DIR", dir)
		config, err := LoadGameConfig("configs/file.json")
		if err != nil {
			t.Fatalf("LoadGameConfig failed: %v", err)
		}
		if config.Name != "file" {
			t.Errorf("Expected name file, got %q", config.Name)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}
