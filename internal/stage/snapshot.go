package stage

import "github.com/vovakirdan/tui-danmaku/internal/core"

// Snapshot is a comparable summary of session state.
type Snapshot struct {
	Frames      int
	Timer       int
	Points      uint64
	Lives       int
	Bombs       int
	Power       int
	Graze       int
	PlayerPos   core.Vec
	Keys        core.KeyState
	Enemies     int
	Projectiles int
	Lasers      int
	Items       int
	Boss        bool
	Gameover    Outcome
	RNG         uint64
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Frames:      s.frames,
		Timer:       s.timer,
		Points:      s.player.Points,
		Lives:       s.player.Lives,
		Bombs:       s.player.Bombs,
		Power:       s.player.Power,
		Graze:       s.player.Graze,
		PlayerPos:   s.player.Pos,
		Keys:        s.player.Keys,
		Enemies:     s.enemies.Len(),
		Projectiles: s.projs.Len(),
		Lasers:      s.lasers.Len(),
		Items:       s.items.Len(),
		Boss:        s.BossActive(),
		Gameover:    s.gameover,
		RNG:         s.rng.Game().State(),
	}
}
