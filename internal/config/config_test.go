package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedMatchesDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("embedded config differs from Default():\n%+v\n%+v", cfg, Default())
	}
}

func TestLoadCustomPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte("engine:\n  fade_time: 30\ndifficulty:\n  preset: lunatic\n  speed_scale: 9\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.FadeTime != 30 {
		t.Errorf("FadeTime = %d, expected 30", cfg.Engine.FadeTime)
	}
	if cfg.Engine.FPS != 60 {
		t.Errorf("FPS = %d, expected the default to survive", cfg.Engine.FPS)
	}
	if cfg.Difficulty.Preset != DifficultyLunatic {
		t.Errorf("Preset = %q", cfg.Difficulty.Preset)
	}
	if cfg.Difficulty.SpeedScale != 4 {
		t.Errorf("SpeedScale = %v, expected clamp to 4", cfg.Difficulty.SpeedScale)
	}
}

func TestLoadUserDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	dir := filepath.Join(home, ".danmaku", "configs")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("player:\n  lives: 9\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Player.Lives != 9 {
		t.Errorf("Lives = %d, expected 9 from the user config", cfg.Player.Lives)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid yaml", body: "engine: [1, 2"},
		{name: "zero fps", body: "engine:\n  fps: 0\n"},
		{name: "bad preset", body: "difficulty:\n  preset: extreme\n"},
		{name: "empty pool", body: "engine:\n  pools:\n    lasers: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing custom file should fail")
	}
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Difficulty
		pick  float64
	}{
		{"easy", "easy", DifficultyEasy, 1},
		{"mixed case", "Hard", DifficultyHard, 3},
		{"padded", " lunatic ", DifficultyLunatic, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDifficulty(tt.input)
			if err != nil {
				t.Fatalf("ParseDifficulty(%q): %v", tt.input, err)
			}
			if d != tt.want {
				t.Errorf("got %q, expected %q", d, tt.want)
			}
			if got := d.Pick(1, 2, 3, 4); got != tt.pick {
				t.Errorf("Pick = %v, expected %v", got, tt.pick)
			}
		})
	}

	if _, err := ParseDifficulty("extra"); err == nil {
		t.Error("unknown difficulty should fail")
	}
	if Difficulty("bogus").Index() != 1 {
		t.Error("unknown difficulty should index as normal")
	}

	c := DifficultyConfig{Preset: DifficultyLunatic, SpeedScale: 0.5, Density: 1}
	if c.Speed(2) != 3 {
		t.Errorf("Speed(2) = %v, expected 3", c.Speed(2))
	}
	if c.Count(5) != 10 {
		t.Errorf("Count(5) = %v, expected 10", c.Count(5))
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := Default()
	ApplyPreset(&cfg, DifficultyEasy)
	if cfg.Difficulty.Preset != DifficultyEasy || cfg.Player.Lives != 5 {
		t.Errorf("easy preset: %+v", cfg.Player)
	}
}
