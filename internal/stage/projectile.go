package stage

import (
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

// ProjType is the role of a projectile.
type ProjType uint8

const (
	ProjEnemy ProjType = iota
	ProjPlayer
	ProjParticle
	ProjDead
)

// ProjFlags modify projectile behavior.
type ProjFlags uint8

const (
	// FlagNoCollision disables hit and graze tests.
	FlagNoCollision ProjFlags = 1 << iota
	// FlagRequiredParticle makes a particle spawn fatal on a full pool
	// instead of being dropped.
	FlagRequiredParticle
	// FlagNoClear protects a hazard from non-forced clears.
	FlagNoClear
	// FlagOwnerBound clears the projectile once its owner is gone.
	FlagOwnerBound
)

// Rule selects how a projectile moves.
type Rule uint8

const (
	// RuleLinear adds Args[0] every frame.
	RuleLinear Rule = iota
	// RuleAccelerated adds Args[0], then adds Args[1] to Args[0].
	RuleAccelerated
	// RuleAsymptotic adds Args[0]*(Args[1]+1) and decays Args[1] by 0.8.
	RuleAsymptotic
	// RuleFunc hands movement to Func.
	RuleFunc
)

// ProjFunc is the logic of a RuleFunc projectile. It also receives
// SignalBirth and SignalDeath.
type ProjFunc func(s *Session, p *Projectile, t int) Action

const deadFadeFrames = 20

// Projectile is a bullet, a player shot or a particle.
type Projectile struct {
	ID        entity.ID
	Type      ProjType
	Pos       core.Vec
	Pos0      core.Vec
	PrevPos   core.Vec
	Args      [4]core.Vec
	Rule      Rule
	Func      ProjFunc
	Radius    float64
	Damage    float64
	Glyph     rune
	Color     core.Color
	Timeout   int
	Flags     ProjFlags
	BirthTime int
	Owner     entity.Ref
	Grazed    bool
}

// ProjectileSpec describes a projectile to spawn.
type ProjectileSpec struct {
	Type    ProjType
	Pos     core.Vec
	Rule    Rule
	Func    ProjFunc
	Args    [4]core.Vec
	Radius  float64
	Damage  float64
	Glyph   rune
	Color   core.Color
	Timeout int
	Flags   ProjFlags
	Owner   entity.ID
}

// ParticleSpec describes a cosmetic particle.
type ParticleSpec struct {
	Pos     core.Vec
	Vel     core.Vec
	Glyph   rune
	Color   core.Color
	Timeout int
	Flags   ProjFlags
}

// SpawnProjectile creates a bullet or player shot.
func (s *Session) SpawnProjectile(spec ProjectileSpec) entity.ID {
	s.mustNotDraw("spawn a projectile")

	id, p := s.projs.Acquire()
	p.ID = id
	p.Type = spec.Type
	p.Pos = spec.Pos
	p.Pos0 = spec.Pos
	p.PrevPos = spec.Pos
	p.Args = spec.Args
	p.Rule = spec.Rule
	p.Func = spec.Func
	p.Radius = spec.Radius
	if p.Radius == 0 {
		p.Radius = 3
	}
	p.Damage = spec.Damage
	p.Glyph = spec.Glyph
	if p.Glyph == 0 {
		p.Glyph = '•'
	}
	p.Color = spec.Color
	p.Timeout = spec.Timeout
	p.Flags = spec.Flags
	p.BirthTime = s.frames
	if !spec.Owner.IsZero() {
		p.Owner = s.reg.AddRef(spec.Owner)
	}

	if p.Rule == RuleFunc && p.Func != nil {
		p.Func(s, p, SignalBirth)
	}
	return id
}

// Shoot spawns an enemy bullet moving in a straight line.
func (s *Session) Shoot(pos, vel core.Vec, glyph rune, col core.Color) entity.ID {
	return s.SpawnProjectile(ProjectileSpec{
		Type:  ProjEnemy,
		Pos:   pos,
		Rule:  RuleLinear,
		Args:  [4]core.Vec{vel},
		Glyph: glyph,
		Color: col,
	})
}

// SpawnParticle creates a particle. Particles other than required ones are
// dropped when the particle pool is full.
func (s *Session) SpawnParticle(spec ParticleSpec) entity.ID {
	s.mustNotDraw("spawn a particle")

	if s.particles.Len() == s.particles.Cap() && spec.Flags&FlagRequiredParticle == 0 {
		return entity.ID{}
	}
	id, p := s.particles.Acquire()
	p.ID = id
	p.Type = ProjParticle
	p.Pos = spec.Pos
	p.Pos0 = spec.Pos
	p.PrevPos = spec.Pos
	p.Rule = RuleLinear
	p.Args[0] = spec.Vel
	p.Glyph = spec.Glyph
	p.Color = spec.Color
	p.Timeout = spec.Timeout
	p.Flags = spec.Flags | FlagNoCollision
	p.BirthTime = s.frames
	return id
}

// Projectile returns the live projectile behind id.
func (s *Session) Projectile(id entity.ID) (*Projectile, bool) {
	return s.projs.Get(id)
}

// Projectiles returns the IDs of live projectiles, dead ones included.
func (s *Session) Projectiles() []entity.ID {
	return s.projs.IDs()
}

// ProjectileOwner resolves the owner link of a projectile. It fails once
// the owner was released.
func (s *Session) ProjectileOwner(p *Projectile) (entity.ID, bool) {
	if p.Owner == 0 {
		return entity.ID{}, false
	}
	return s.reg.Deref(p.Owner)
}

// move advances p by its rule and returns the rule's action.
func (s *Session) moveProjectile(p *Projectile, t int) Action {
	p.PrevPos = p.Pos
	switch p.Rule {
	case RuleLinear:
		p.Pos += p.Args[0]
	case RuleAccelerated:
		p.Pos += p.Args[0]
		p.Args[0] += p.Args[1]
	case RuleAsymptotic:
		p.Pos += p.Args[0] * (p.Args[1] + 1)
		p.Args[1] *= 0.8
	case RuleFunc:
		if p.Func != nil {
			return p.Func(s, p, t)
		}
	}
	return ActionNone
}

func (s *Session) processProjectiles() {
	for _, id := range s.projs.IDs() {
		p, ok := s.projs.Get(id)
		if !ok {
			continue
		}
		t := s.frames - p.BirthTime

		if p.Flags&FlagOwnerBound != 0 && p.Type == ProjEnemy {
			if _, alive := s.ProjectileOwner(p); !alive {
				s.clearProjectile(id, true)
				continue
			}
		}

		if s.moveProjectile(p, t) == ActionDestroy {
			s.deleteProjectile(id)
			continue
		}
		if (p.Timeout > 0 && t >= p.Timeout) || !s.inViewport(p.Pos) {
			s.deleteProjectile(id)
			continue
		}
		if p.Flags&FlagNoCollision != 0 {
			continue
		}

		switch p.Type {
		case ProjEnemy:
			if s.projectileHitsPlayer(p) {
				s.deleteProjectile(id)
			}
		case ProjPlayer:
			if s.projectileHitsEnemy(p) {
				s.deleteProjectile(id)
			}
		}
	}
}

func (s *Session) projectileHitsPlayer(p *Projectile) bool {
	d := core.Length(p.Pos - s.player.Pos)
	if d < p.Radius+s.cfg.Player.HitRadius {
		s.Damage(PlayerID, DamageInfo{Amount: 1, Kind: DamageEnemyShot})
		return true
	}
	if !p.Grazed && d < p.Radius+s.cfg.Player.GrazeRadius {
		p.Grazed = true
		s.player.graze()
		s.audio.PlayLoop("graze")
	}
	return false
}

const (
	enemyHitRadius = 16.0
	bossHitRadius  = 28.0
)

func (s *Session) projectileHitsEnemy(p *Projectile) bool {
	hit := false
	dmg := DamageInfo{Amount: p.Damage, Kind: DamagePlayerShot}
	s.enemies.Each(func(id entity.ID, e *Enemy) bool {
		if core.Length(e.Pos-p.Pos) < enemyHitRadius+p.Radius && s.damageEnemy(e, dmg) == DamageOK {
			hit = true
			return false
		}
		return true
	})
	if hit {
		return true
	}
	if b, ok := s.bosses.Get(s.boss); ok && core.Length(b.Pos-p.Pos) < bossHitRadius+p.Radius {
		return s.damageBoss(b, dmg) == DamageOK
	}
	return false
}

func (s *Session) processParticles() {
	for _, id := range s.particles.IDs() {
		p, ok := s.particles.Get(id)
		if !ok {
			continue
		}
		s.moveProjectile(p, s.frames-p.BirthTime)
		if (p.Timeout > 0 && s.frames-p.BirthTime >= p.Timeout) || !s.inViewport(p.Pos) {
			s.particles.Release(id)
		}
	}
}

// clearProjectile turns an enemy bullet into a fading dead projectile.
// Protected bullets survive unless force is set.
func (s *Session) clearProjectile(id entity.ID, force bool) bool {
	p, ok := s.projs.Get(id)
	if !ok || p.Type != ProjEnemy {
		return false
	}
	if p.Flags&FlagNoClear != 0 && !force {
		return false
	}
	if p.Rule == RuleFunc && p.Func != nil {
		p.Func(s, p, SignalDeath)
	}
	p.Type = ProjDead
	p.Rule = RuleLinear
	p.Args[0] = core.Scale(p.Pos-p.PrevPos, 0.25)
	p.Flags |= FlagNoCollision
	p.Timeout = s.frames - p.BirthTime + deadFadeFrames
	p.Glyph = '·'
	p.Color = core.ColorGray
	return true
}

func (s *Session) deleteProjectile(id entity.ID) {
	p, ok := s.projs.Get(id)
	if !ok {
		return
	}
	if p.Rule == RuleFunc && p.Func != nil {
		p.Func(s, p, SignalDeath)
	}
	if p.Owner != 0 {
		s.reg.FreeRef(p.Owner)
	}
	s.projs.Release(id)
}

func (p *Projectile) draw(c *core.Canvas) {
	col := p.Color
	if col == core.ColorDefault {
		col = core.ColorBrightRed
		if p.Type == ProjPlayer {
			col = core.ColorBrightGreen
		}
	}
	c.Plot(p.Pos, p.Glyph, col)
}
