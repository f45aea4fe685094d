// Package common holds helpers shared by stage content: item drops,
// aiming, movement easing and the dialogue-driven music switch.
package common

import (
	"math"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/dialog"
	"github.com/vovakirdan/tui-danmaku/internal/sched"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
)

// Drop is a count of items of one type.
type Drop struct {
	Type  stage.ItemType
	Count int
}

// DropItems scatters items around pos.
func DropItems(s *stage.Session, pos core.Vec, drops ...Drop) {
	for _, d := range drops {
		for i := 0; i < d.Count; i++ {
			ofs := complex(s.RNG().Range(-15, 15), s.RNG().Range(-15, 15))
			s.SpawnItem(pos+ofs, d.Type)
		}
	}
}

// GoTo eases pos towards target by factor f.
func GoTo(e *stage.Enemy, target core.Vec, f float64) {
	v := core.Scale(target-e.Pos, f)
	e.Pos += v
	e.Moving = math.Abs(real(v)) >= 1
	e.FacingLeft = real(v) < 0
}

// AimAt returns the angle from pos to the player.
func AimAt(s *stage.Session, pos core.Vec) float64 {
	return core.Angle(s.Player().Pos - pos)
}

// Within reports whether age t is inside [start, end] on a step grid, the
// per-enemy counterpart of Session.FromTo.
func Within(t, start, end, step int) bool {
	if t < start || t > end {
		return false
	}
	return step <= 1 || (t-start)%step == 0
}

// Bullet fires an asymptotic bullet that starts fast and settles to vel.
func Bullet(s *stage.Session, pos, vel core.Vec, boost float64, glyph rune, col core.Color) {
	s.SpawnProjectile(stage.ProjectileSpec{
		Type:  stage.ProjEnemy,
		Pos:   pos,
		Rule:  stage.RuleAsymptotic,
		Args:  [4]core.Vec{vel, complex(boost, 0)},
		Glyph: glyph,
		Color: col,
	})
}

// StartBGM switches to track when the dialogue raises music_changes.
func StartBGM(s *stage.Session, d *dialog.Dialog, track, title string) *sched.Task {
	ev := d.Event(dialog.EventMusicChanges)
	return s.Go("bgm."+track, sched.Steps(
		func(*sched.Task) sched.Yield { return sched.WaitEvent(ev) },
		sched.Call(func() {
			if ev.Fired() {
				s.Audio().PlayTrack(track, title)
			}
		}),
	))
}

// OnBossAppears runs spawn when the dialogue raises boss_appears. If the
// dialogue is skipped before raising it, spawn still runs when it ends.
func OnBossAppears(s *stage.Session, d *dialog.Dialog, spawn func()) *sched.Task {
	ev := d.Event(dialog.EventBossAppears)
	return s.Go("boss.appear", sched.Steps(
		func(*sched.Task) sched.Yield { return sched.WaitEvent(ev) },
		sched.Call(spawn),
	))
}
