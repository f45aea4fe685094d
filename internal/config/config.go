// Package config provides YAML-based engine configuration loading and
// difficulty presets for danmaku stages.
package config

// Config is the full engine configuration.
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Player     PlayerConfig     `yaml:"player"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// EngineConfig defines simulation constants.
type EngineConfig struct {
	FPS             int         `yaml:"fps"`
	ViewportW       float64     `yaml:"viewport_w"`
	ViewportH       float64     `yaml:"viewport_h"`
	ViewportMargin  float64     `yaml:"viewport_margin"`
	FadeTime        int         `yaml:"fade_time"`         // Frames between finish and gameover
	DesyncInterval  int         `yaml:"desync_interval"`   // Frames between replay checksums
	EnemyHurtRadius float64     `yaml:"enemy_hurt_radius"` // Contact damage distance
	ScoreDelay      int         `yaml:"score_delay"`       // Frames before the clear bonus shows
	FleeTimeout     int         `yaml:"flee_timeout"`      // Frames a fleeing boss may stay
	AttackDelay     AttackDelay `yaml:"attack_delay"`
	Pools           PoolSizes   `yaml:"pools"`
}

// AttackDelay holds the pre-attack delay per attack kind.
type AttackDelay struct {
	Normal int `yaml:"normal"`
	Spell  int `yaml:"spell"`
}

// PoolSizes defines entity pool capacities.
type PoolSizes struct {
	Enemies     int `yaml:"enemies"`
	Projectiles int `yaml:"projectiles"`
	Particles   int `yaml:"particles"`
	Lasers      int `yaml:"lasers"`
	Items       int `yaml:"items"`
}

// PlayerConfig defines player parameters.
type PlayerConfig struct {
	Lives         int     `yaml:"lives"`
	Bombs         int     `yaml:"bombs"`
	Power         int     `yaml:"power"`
	Speed         float64 `yaml:"speed"`
	FocusSpeed    float64 `yaml:"focus_speed"`
	HitRadius     float64 `yaml:"hit_radius"`
	GrazeRadius   float64 `yaml:"graze_radius"`
	InvulnFrames  int     `yaml:"invuln_frames"`
	ShotInterval  int     `yaml:"shot_interval"`
	ShotDamage    float64 `yaml:"shot_damage"`
	ShotSpeed     float64 `yaml:"shot_speed"`
	BombRadius    float64 `yaml:"bomb_radius"`
	BombDamage    float64 `yaml:"bomb_damage"`
	BombFrames    int     `yaml:"bomb_frames"`
	CollectLine   float64 `yaml:"collect_line"` // Items above this y are auto-collected
	CollectRadius float64 `yaml:"collect_radius"`
	PointValue    uint64  `yaml:"point_value"` // Base value of a point item
}

// DifficultyConfig defines the difficulty preset and its scaling.
type DifficultyConfig struct {
	Preset     Difficulty `yaml:"preset"`
	SpeedScale float64    `yaml:"speed_scale"`   // Bullet speed multiplier at lunatic
	Density    float64    `yaml:"density_scale"` // Bullet count multiplier at lunatic
}
