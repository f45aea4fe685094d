package config

import (
	"fmt"
	"math"
	"strings"
)

// Difficulty is a named difficulty preset.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyNormal  Difficulty = "normal"
	DifficultyHard    Difficulty = "hard"
	DifficultyLunatic Difficulty = "lunatic"
)

// Difficulties lists the presets from easiest to hardest.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyLunatic}

// ParseDifficulty resolves a preset name, case-insensitively.
func ParseDifficulty(name string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q (use easy, normal, hard or lunatic)", name)
}

// Index returns 0 for easy up to 3 for lunatic. Unknown presets map to normal.
func (d Difficulty) Index() int {
	for i, known := range Difficulties {
		if d == known {
			return i
		}
	}
	return 1
}

// Level returns the preset as a level in [0, 1].
func (d Difficulty) Level() float64 {
	return float64(d.Index()) / float64(len(Difficulties)-1)
}

// Pick returns the value matching the difficulty.
func (d Difficulty) Pick(easy, normal, hard, lunatic float64) float64 {
	return [...]float64{easy, normal, hard, lunatic}[d.Index()]
}

// PickInt is Pick for integers.
func (d Difficulty) PickInt(easy, normal, hard, lunatic int) int {
	return [...]int{easy, normal, hard, lunatic}[d.Index()]
}

// Speed scales a base bullet speed by difficulty.
func (c DifficultyConfig) Speed(base float64) float64 {
	return base * (1 + c.Preset.Level()*c.SpeedScale)
}

// Count scales a base bullet count by difficulty, rounding to nearest.
func (c DifficultyConfig) Count(base int) int {
	n := int(math.Round(float64(base) * (1 + c.Preset.Level()*c.Density)))
	if n < 1 {
		n = 1
	}
	return n
}

// ApplyPreset selects a difficulty and adjusts player resources for it.
func ApplyPreset(cfg *Config, preset Difficulty) {
	cfg.Difficulty.Preset = preset
	switch preset {
	case DifficultyEasy:
		cfg.Player.Lives = 5
		cfg.Player.Bombs = 3
	case DifficultyLunatic:
		cfg.Player.Lives = 2
		cfg.Player.Bombs = 2
	}
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
