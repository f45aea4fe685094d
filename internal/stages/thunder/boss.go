package thunder

import (
	"math"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
	"github.com/vovakirdan/tui-danmaku/internal/stages/common"
)

const (
	midbossName = "Thunder Spirit"
	bossName    = "Storm Herald"
)

func midbossAttacks() []stage.AttackInfo {
	return []stage.AttackInfo{
		{Type: stage.AttackMove, Name: "intro", Timeout: 60, Pos: complex(240, 140)},
		{Type: stage.AttackNormal, Name: "bolts", HP: 1500, Timeout: 1200, Rule: bolts},
		{Type: stage.AttackSpellcard, Name: "Charge Sign: Static Field", HP: 1800, Timeout: 1500, Bonus: 500_000, Rule: staticField},
		{Type: stage.AttackMove, Name: "flee"},
	}
}

func bossAttacks() []stage.AttackInfo {
	return []stage.AttackInfo{
		{Type: stage.AttackMove, Name: "intro", Timeout: 60, Pos: complex(240, 120)},
		{Type: stage.AttackNormal, Name: "atmospheric", HP: 2500, Timeout: 1500, Rule: atmospheric},
		{Type: stage.AttackSpellcard, Name: "Thunder Sign: Cathode Rays", HP: 3000, Timeout: 1800, Bonus: 1_000_000, Rule: cathode},
		{Type: stage.AttackNormal, Name: "bolts", HP: 2500, Timeout: 1500, Rule: bolts},
		{Type: stage.AttackSurvival, Name: "Lightning Sign: Induction", Timeout: 1200, Bonus: 1_500_000, Rule: induction},
		{Type: stage.AttackMove, Name: "flee"},
	}
}

// bolts sweeps the boss between the sides and drops aimed bolt walls.
func bolts(s *stage.Session, b *stage.Boss, t int) {
	if t < 0 {
		return
	}
	switch t % 400 {
	case 0:
		b.Move = stage.MoveTowards(complex(100, 130), 0.04)
	case 200:
		b.Move = stage.MoveTowards(complex(380, 130), 0.04)
	}
	step := 50 - 8*s.Difficulty().Index()
	if t%step != 0 {
		return
	}
	n := s.Config().Difficulty.Count(6)
	aim := common.AimAt(s, b.Pos)
	speed := s.Config().Difficulty.Speed(2.5)
	for i := 0; i < n; i++ {
		a := aim + 0.12*(float64(i)-float64(n-1)/2)
		common.Bullet(s, b.Pos, core.Scale(core.Dir(a), speed), 2, '|', core.ColorBrightYellow)
	}
	s.Audio().PlayEffect("redirect")
}

// staticField surrounds the boss with rotating rings of zigzag bullets.
func staticField(s *stage.Session, b *stage.Boss, t int) {
	if t < 0 {
		return
	}
	if t == 0 {
		b.Move = stage.MoveTowards(complex(240, 160), 0.05)
	}
	if t%40 != 0 {
		return
	}
	n := s.Config().Difficulty.Count(10)
	turn := float64(t) * 0.013
	for i := 0; i < n; i++ {
		dir := core.Dir(turn + 2*math.Pi*float64(i)/float64(n))
		s.SpawnProjectile(stage.ProjectileSpec{
			Type:  stage.ProjEnemy,
			Pos:   b.Pos,
			Rule:  stage.RuleFunc,
			Func:  zigzag,
			Args:  [4]core.Vec{core.Scale(dir, 1.6), 12},
			Glyph: 'z',
			Color: core.ColorBrightCyan,
		})
	}
	s.Audio().PlayEffect("shot_special1")
}

// atmospheric rains bullets from the top edge around aimed lasers.
func atmospheric(s *stage.Session, b *stage.Boss, t int) {
	if t < 0 {
		return
	}
	w := s.Config().Engine.ViewportW
	if t%(23-2*s.Difficulty().Index()) == 0 {
		x := s.RNG().Range(0, w)
		s.Shoot(complex(x, 0), complex(s.RNG().Range(-0.3, 0.3), s.Config().Difficulty.Speed(2)), '\'', core.ColorBlue)
	}
	if t%120 == 60 {
		n := core.Dir(common.AimAt(s, b.Pos))
		s.SpawnLaser(stage.LaserSpec{
			Pos:        b.Pos,
			Curve:      stage.CurveLinear,
			Args:       [4]core.Vec{core.Scale(n, 6)},
			Timespan:   120,
			Deathtime:  90,
			ChargeTime: 40,
			Width:      5,
			Color:      core.ColorBrightBlue,
		})
		s.Audio().PlayEffect("laser1")
	}
}

// cathode fires pairs of sine lasers that sweep across the field.
func cathode(s *stage.Session, b *stage.Boss, t int) {
	if t < 0 {
		return
	}
	if t == 0 {
		b.Move = stage.MoveTowards(complex(240, 100), 0.05)
	}
	step := 70 - 10*s.Difficulty().Index()
	if t < 50 || (t-50)%step != 0 {
		return
	}
	down := core.Dir(common.AimAt(s, b.Pos))
	for _, phase := range []float64{0, math.Pi} {
		s.SpawnLaser(stage.LaserSpec{
			Pos:        b.Pos,
			Curve:      stage.CurveSine,
			Args:       [4]core.Vec{core.Scale(down, 3), 40, 0.08, complex(phase, 0)},
			Timespan:   80,
			Deathtime:  160,
			ChargeTime: 30,
			Color:      core.ColorBrightCyan,
		})
	}
	s.Audio().PlayEffect("laser1")
}

// induction is a survival card: accelerating zigzag spirals that cannot
// be shot down.
func induction(s *stage.Session, b *stage.Boss, t int) {
	if t < 0 {
		return
	}
	if t == 0 {
		b.Move = stage.MoveTowards(complex(240, 200), 0.05)
	}
	if t%8 != 0 {
		return
	}
	arms := 2 + s.Difficulty().Index()
	for i := 0; i < arms; i++ {
		a := float64(t)*0.05 + 2*math.Pi*float64(i)/float64(arms)
		s.SpawnProjectile(stage.ProjectileSpec{
			Type:  stage.ProjEnemy,
			Pos:   b.Pos,
			Rule:  stage.RuleFunc,
			Func:  zigzag,
			Args:  [4]core.Vec{core.Scale(core.Dir(a), 2), 16},
			Glyph: '~',
			Color: core.ColorBrightWhite,
		})
	}
}

// Spells lists the stage's spell cards in play order, for practice stages.
func Spells() []stage.AttackInfo {
	var out []stage.AttackInfo
	for _, a := range append(midbossAttacks(), bossAttacks()...) {
		if a.Type.IsSpell() {
			out = append(out, a)
		}
	}
	return out
}

// BossName returns the name of the caster of a spell from Spells.
func BossName(spell stage.AttackInfo) string {
	for _, a := range midbossAttacks() {
		if a.Name == spell.Name {
			return midbossName
		}
	}
	return bossName
}
