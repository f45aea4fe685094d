package config

import (
	_ "embed"
)

//go:embed defaults/danmaku.yaml
var defaultYAML []byte

// Default returns the hardcoded default configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			FPS:             60,
			ViewportW:       480,
			ViewportH:       560,
			ViewportMargin:  60,
			FadeTime:        60,
			DesyncInterval:  60,
			EnemyHurtRadius: 7,
			ScoreDelay:      120,
			FleeTimeout:     300,
			AttackDelay: AttackDelay{
				Normal: 60,
				Spell:  60,
			},
			Pools: PoolSizes{
				Enemies:     256,
				Projectiles: 4096,
				Particles:   4096,
				Lasers:      256,
				Items:       1024,
			},
		},
		Player: PlayerConfig{
			Lives:         3,
			Bombs:         3,
			Power:         100,
			Speed:         5,
			FocusSpeed:    2,
			HitRadius:     2,
			GrazeRadius:   12,
			InvulnFrames:  210,
			ShotInterval:  4,
			ShotDamage:    20,
			ShotSpeed:     20,
			BombRadius:    160,
			BombDamage:    100,
			BombFrames:    60,
			CollectLine:   128,
			CollectRadius: 30,
			PointValue:    10000,
		},
		Difficulty: DifficultyConfig{
			Preset:     DifficultyNormal,
			SpeedScale: 0.6,
			Density:    1.0,
		},
	}
}
