package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the config directories.
const FileName = "danmaku.yaml"

// Load loads the engine configuration.
// Search order: customPath -> ~/.danmaku/configs/danmaku.yaml -> ./configs/danmaku.yaml -> embedded default
// Every file is decoded over Default(), so partial files only override what they set.
func Load(customPath string) (Config, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath) //#nosec G304 -- user supplied config path
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return normalize(cfg)
	}

	// Try user config directory
	if userCfgPath := userConfigPath(FileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil { //#nosec G304 -- fixed path under home
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return normalize(cfg)
			}
			cfg = Default()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", FileName)); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return normalize(cfg)
		}
		cfg = Default()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return normalize(cfg)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".danmaku", "configs", filename)
}

// normalize rejects unusable values and clamps scaling factors.
func normalize(cfg Config) (Config, error) {
	e := cfg.Engine
	switch {
	case e.FPS <= 0:
		return cfg, fmt.Errorf("config: fps must be positive, got %d", e.FPS)
	case e.ViewportW <= 0 || e.ViewportH <= 0:
		return cfg, fmt.Errorf("config: viewport must be positive, got %vx%v", e.ViewportW, e.ViewportH)
	case e.FadeTime < 1:
		return cfg, fmt.Errorf("config: fade_time must be at least 1, got %d", e.FadeTime)
	}
	p := e.Pools
	if p.Enemies <= 0 || p.Projectiles <= 0 || p.Particles <= 0 || p.Lasers <= 0 || p.Items <= 0 {
		return cfg, fmt.Errorf("config: pool sizes must be positive: %+v", p)
	}

	if cfg.Difficulty.Preset == "" {
		cfg.Difficulty.Preset = DifficultyNormal
	}
	if _, err := ParseDifficulty(string(cfg.Difficulty.Preset)); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.Difficulty.SpeedScale = clampF(cfg.Difficulty.SpeedScale, 0, 4)
	cfg.Difficulty.Density = clampF(cfg.Difficulty.Density, 0, 4)
	return cfg, nil
}
