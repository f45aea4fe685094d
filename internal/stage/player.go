package stage

import (
	"math"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
	"github.com/vovakirdan/tui-danmaku/internal/replay"
)

// PlayerID is the fixed identity of the single player entity.
var PlayerID = entity.ID{Kind: entity.KindPlayer, Index: 0, Gen: 1}

const (
	grazePoints  = 50
	playerMargin = 12.0
	axisMax      = 32767.0
)

// Player is the player state. Keys and Inflags only change through input
// events so that replays see the same state.
type Player struct {
	Pos       core.Vec
	Lives     int
	Bombs     int
	Power     int
	Points    uint64
	PIV       uint64
	Graze     int
	Voltage   int
	Continues int
	Deaths    int
	BombsUsed int

	Keys    core.KeyState
	Inflags core.InputFlags
	AxisLR  int16
	AxisUD  int16

	invulnUntil int
	bombUntil   int
	lastShot    int
}

// State returns the header snapshot stored in replays.
func (p *Player) State() replay.PlayerState {
	return replay.PlayerState{
		Lives:     p.Lives,
		Bombs:     p.Bombs,
		Power:     p.Power,
		Points:    p.Points,
		Continues: p.Continues,
		PosX:      real(p.Pos),
		PosY:      imag(p.Pos),
	}
}

func (p *Player) restore(st replay.PlayerState) {
	p.Lives = st.Lives
	p.Bombs = st.Bombs
	p.Power = st.Power
	p.Points = st.Points
	p.Continues = st.Continues
	p.Pos = complex(st.PosX, st.PosY)
}

func (p *Player) graze() {
	p.Graze++
	p.Points += grazePoints
}

// Invulnerable reports whether hits are ignored at frame.
func (p *Player) Invulnerable(frame int) bool {
	return frame < p.invulnUntil
}

// Bombing reports whether a bomb is active at frame.
func (p *Player) Bombing(frame int) bool {
	return frame < p.bombUntil
}

// handleInput applies one input event. It runs the same way live and in
// playback.
func (s *Session) handleInput(typ replay.EventType, value uint16) {
	p := &s.player
	switch typ {
	case replay.EvPress:
		key := core.Key(value)
		if s.cleared() {
			if key == core.KeyShot && s.gameover == OutcomeScoreScreen && s.frames-s.gameoverTime >= 2*s.cfg.Engine.ScoreDelay {
				s.Finish(OutcomeWin)
			}
			if key == core.KeyBomb {
				return
			}
		}
		if p.Keys.Press(key) && key == core.KeyBomb {
			s.playerBomb()
		}
	case replay.EvRelease:
		p.Keys.Release(core.Key(value))
	case replay.EvAxisLR:
		p.AxisLR = int16(value)
	case replay.EvAxisUD:
		p.AxisUD = int16(value)
	case replay.EvInflags:
		p.Inflags = core.InputFlags(value)
	}
}

func (s *Session) playerBomb() {
	p := &s.player
	if p.Bombs <= 0 || p.Bombing(s.frames) || s.cleared() {
		return
	}
	p.Bombs--
	p.BombsUsed++
	p.bombUntil = s.frames + s.cfg.Player.BombFrames
	if p.invulnUntil < p.bombUntil {
		p.invulnUntil = p.bombUntil
	}
	s.audio.PlayEffect("bomb")
	s.log.Debug("player bomb", "frame", s.frames, "left", p.Bombs)
}

func (s *Session) damagePlayer(dmg DamageInfo) DamageResult {
	p := &s.player
	if !dmg.Kind.FromEnemy() || p.Invulnerable(s.frames) || s.cleared() {
		return DamageImmune
	}

	p.Deaths++
	p.invulnUntil = s.frames + s.cfg.Player.InvulnFrames
	p.Power = core.Max(p.Power-50, 0)
	s.audio.PlayEffect("death")
	s.ClearHazards(AllHazards, ClearBullets|ClearLasers)
	s.log.Debug("player hit", "frame", s.frames, "kind", dmg.Kind, "lives", p.Lives)

	if p.Lives <= 0 {
		s.Finish(OutcomeDefeat)
		return DamageOK
	}
	p.Lives--
	return DamageOK
}

// direction returns the movement direction from held keys, falling back to
// the analog axes.
func (p *Player) direction() core.Vec {
	var d core.Vec
	if p.Keys.Held(core.KeyLeft) {
		d -= 1
	}
	if p.Keys.Held(core.KeyRight) {
		d += 1
	}
	if p.Keys.Held(core.KeyUp) {
		d -= 1i
	}
	if p.Keys.Held(core.KeyDown) {
		d += 1i
	}
	if d != 0 {
		return core.Normalize(d)
	}
	d = complex(float64(p.AxisLR)/axisMax, float64(p.AxisUD)/axisMax)
	if core.Length(d) > 1 {
		d = core.Normalize(d)
	}
	return d
}

func (s *Session) processPlayer() {
	p := &s.player
	cfg := s.cfg.Player

	speed := cfg.Speed
	if p.Keys.Held(core.KeyFocus) {
		speed = cfg.FocusSpeed
	}
	if !s.cleared() {
		p.Pos += core.Scale(p.direction(), speed)
	}
	p.Pos = complex(
		core.ClampF(real(p.Pos), playerMargin, s.cfg.Engine.ViewportW-playerMargin),
		core.ClampF(imag(p.Pos), playerMargin, s.cfg.Engine.ViewportH-playerMargin),
	)

	if p.Keys.Held(core.KeyShot) && !s.cleared() && s.frames-p.lastShot >= cfg.ShotInterval {
		p.lastShot = s.frames
		s.playerShoot()
	}

	if p.Bombing(s.frames) {
		s.ClearHazardsAt(p.Pos, cfg.BombRadius, ClearBullets|ClearLasers)
		s.bombDamage(p.Pos, cfg.BombRadius, cfg.BombDamage/float64(core.Max(cfg.BombFrames, 1)))
	}
}

func (s *Session) playerShoot() {
	p := &s.player
	cfg := s.cfg.Player
	vel := complex(0, -cfg.ShotSpeed)
	for _, dx := range []float64{-6, 6} {
		s.SpawnProjectile(ProjectileSpec{
			Type:   ProjPlayer,
			Pos:    p.Pos + complex(dx, -8),
			Rule:   RuleLinear,
			Args:   [4]core.Vec{vel},
			Radius: 4,
			Damage: cfg.ShotDamage,
			Glyph:  '|',
		})
	}
	if p.Power >= 200 {
		for _, a := range []float64{-0.15, 0.15} {
			s.SpawnProjectile(ProjectileSpec{
				Type:   ProjPlayer,
				Pos:    p.Pos,
				Rule:   RuleLinear,
				Args:   [4]core.Vec{vel * core.Dir(a)},
				Radius: 4,
				Damage: cfg.ShotDamage / 2,
				Glyph:  '\'',
			})
		}
	}
	s.audio.PlayLoop("shot")
}

func (s *Session) bombDamage(center core.Vec, radius, amount float64) {
	dmg := DamageInfo{Amount: amount, Kind: DamagePlayerBomb}
	area := core.Circle{Center: center, Radius: radius}
	s.enemies.Each(func(_ entity.ID, e *Enemy) bool {
		if area.ContainsPoint(e.Pos) {
			s.damageEnemy(e, dmg)
		}
		return true
	})
	if b, ok := s.bosses.Get(s.boss); ok && area.ContainsPoint(b.Pos) {
		s.damageBoss(b, dmg)
	}
}

func (p *Player) draw(c *core.Canvas, frames int, focus bool) {
	col := core.ColorBrightWhite
	if p.Invulnerable(frames) && frames/4%2 == 0 {
		col = core.ColorGray
	}
	c.Plot(p.Pos, 'A', col)
	if focus {
		c.Plot(p.Pos+complex(0, 8), 'o', core.ColorBrightRed)
	}
	if p.Bombing(frames) {
		for i := 0; i < 16; i++ {
			a := float64(i) * math.Pi / 8
			c.Plot(p.Pos+core.Scale(core.Dir(a), 40), '*', core.ColorBrightYellow)
		}
	}
}
