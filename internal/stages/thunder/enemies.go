package thunder

import (
	"math"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
	"github.com/vovakirdan/tui-danmaku/internal/stages/common"
)

// greeter slides in sideways, fires aimed fans, then leaves.
// Args[0] is the slide direction.
func greeter(s *stage.Session, e *stage.Enemy, t int) stage.Action {
	if t == stage.SignalKilled {
		common.DropItems(s, e.Pos, common.Drop{Type: stage.ItemPoints, Count: 2}, common.Drop{Type: stage.ItemPower, Count: 2})
		return stage.ActionAck
	}
	if t < 0 {
		return stage.ActionNone
	}

	if t <= 50 {
		common.GoTo(e, e.Pos0+core.Scale(e.Args[0], 50), 0.05)
	}
	if t > 200 {
		e.Pos += e.Args[0]
	}

	if common.Within(t, 80, 180, 20) {
		d := s.Difficulty().Index()
		speed := s.Config().Difficulty.Speed(3.5)
		aim := common.AimAt(s, e.Pos)
		for i := -d; i <= d; i++ {
			common.Bullet(s, e.Pos, core.Scale(core.Dir(aim+0.06*float64(i)), speed), 5, '•', core.ColorBlue)
		}
		s.Audio().PlayEffect("shot1")
	}
	return stage.ActionNone
}

// lightburst hovers and sprays rotating rings. Args[0] is the entry
// direction.
func lightburst(s *stage.Session, e *stage.Enemy, t int) stage.Action {
	if t == stage.SignalKilled {
		common.DropItems(s, e.Pos, common.Drop{Type: stage.ItemPoints, Count: 4}, common.Drop{Type: stage.ItemPower, Count: 2})
		return stage.ActionAck
	}
	if t < 0 {
		return stage.ActionNone
	}

	if t <= 70 {
		common.GoTo(e, e.Pos0+core.Scale(e.Args[0], 70), 0.05)
	}
	if t > 200 {
		e.Pos += e.Args[0]
	}

	if common.Within(t, 20, 300, 10) {
		i := (t - 20) / 10
		c := s.Config().Difficulty.Count(5)
		base := common.AimAt(s, e.Pos) - 0.4*float64(i)*s.Difficulty().Level()
		for j := 0; j < c; j++ {
			n := core.Dir(base + 2*math.Pi*float64(j)/float64(c))
			common.Bullet(s, e.Pos+core.Scale(n, 30), core.Scale(n, 2), 3, 'o', core.ColorMagenta)
		}
		s.Audio().PlayEffect("shot2")
	}
	return stage.ActionNone
}

// swirl flies along Args[0], turning by the unit factor Args[2] while its
// age is inside the window real(Args[1])..imag(Args[1]).
func swirl(s *stage.Session, e *stage.Enemy, t int) stage.Action {
	if t == stage.SignalKilled {
		common.DropItems(s, e.Pos, common.Drop{Type: stage.ItemPoints, Count: 1})
		return stage.ActionAck
	}
	if t < 0 {
		return stage.ActionNone
	}

	if ft := float64(t); ft > real(e.Args[1]) && ft < imag(e.Args[1]) {
		e.Args[0] *= e.Args[2]
	}
	e.Pos += e.Args[0]

	step := 26 - 4*s.Difficulty().Index()
	if common.Within(t, 0, 400, step) {
		side := core.Normalize(e.Args[0]) * 1i
		for _, sign := range []float64{1, -1} {
			common.Bullet(s, e.Pos, core.Scale(side, 2*sign), 3, '·', core.ColorCyan)
		}
		s.Audio().PlayEffect("shot1")
	}
	return stage.ActionNone
}

// laserFairy descends, then alternates accelerated lasers and bullets aimed
// at the player.
func laserFairy(s *stage.Session, e *stage.Enemy, t int) stage.Action {
	if t == stage.SignalKilled {
		common.DropItems(s, e.Pos, common.Drop{Type: stage.ItemPoints, Count: 5}, common.Drop{Type: stage.ItemPower, Count: 5})
		return stage.ActionAck
	}
	if t < 0 {
		return stage.ActionNone
	}

	if t <= 100 {
		common.GoTo(e, e.Pos0+core.Scale(e.Args[0], 100), 0.05)
	}
	if t > 700 {
		e.Pos -= e.Args[0]
	}

	step := 36 - 4*s.Difficulty().Index()
	if common.Within(t, 100, 700, step) {
		i := (t - 100) / step
		fac := 0.5 + 0.2*float64(s.Difficulty().Index())
		n := core.Dir(common.AimAt(s, e.Pos) + (0.2-0.02*float64(s.Difficulty().Index()))*float64(i%7-3))
		s.SpawnLaser(stage.LaserSpec{
			Pos:        e.Pos,
			Curve:      stage.CurveAccelerated,
			Args:       [4]core.Vec{core.Scale(n, fac*4), core.Scale(n, fac*0.05)},
			Timespan:   60,
			Deathtime:  200,
			ChargeTime: 20,
			Color:      core.ColorBrightMagenta,
		})
		s.SpawnProjectile(stage.ProjectileSpec{
			Type:  stage.ProjEnemy,
			Pos:   e.Pos,
			Rule:  stage.RuleAccelerated,
			Args:  [4]core.Vec{core.Scale(n, fac*4), core.Scale(n, fac*0.05)},
			Glyph: 'O',
			Color: core.ColorMagenta,
		})
		s.Audio().PlayEffect("shot_special1")
	}
	return stage.ActionNone
}

// zigzag is a bullet function: the bullet flies along Args[0] and flips
// sideways every Args[1] frames.
func zigzag(s *stage.Session, p *stage.Projectile, t int) stage.Action {
	if t < 0 {
		return stage.ActionNone
	}
	period := int(real(p.Args[1]))
	if period < 1 {
		period = 1
	}
	side := core.Normalize(p.Args[0]) * 1i
	if (t/period)%2 == 1 {
		side = -side
	}
	p.Pos += p.Args[0] + core.Scale(side, 1.5)
	return stage.ActionNone
}
