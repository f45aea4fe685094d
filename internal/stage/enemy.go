package stage

import (
	"math"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
	"github.com/vovakirdan/tui-danmaku/internal/sched"
)

// Health sentinels.
const (
	EnemyImmune = -9000.0
	EnemyKilled = -9002.0
)

// Signals passed to behavior rules instead of an age.
const (
	SignalBirth  = -9999
	SignalDeath  = -9998
	SignalKilled = -9997
)

// Action is returned by behavior rules.
type Action uint8

const (
	ActionNone Action = iota
	ActionAck
	ActionDestroy
)

// visualDelay is how many frames the drawn position slides in from the
// off-screen spawn point.
const visualDelay = 30

// EnemyBehavior is the logic rule of an enemy. t is the enemy age in
// frames or one of the Signal values.
type EnemyBehavior interface {
	Logic(s *Session, e *Enemy, t int) Action
}

// EnemyFunc adapts a function to EnemyBehavior.
type EnemyFunc func(s *Session, e *Enemy, t int) Action

func (f EnemyFunc) Logic(s *Session, e *Enemy, t int) Action {
	return f(s, e, t)
}

// Enemy is a pooled enemy.
type Enemy struct {
	ID         entity.ID
	Pos        core.Vec
	Pos0       core.Vec
	Pos0Visual core.Vec
	HP         float64
	SpawnHP    float64
	Alpha      float64
	Move       Move
	Args       [4]core.Vec
	Behavior   EnemyBehavior
	Visual     Visual
	BirthTime  int
	Moving     bool
	FacingLeft bool
	// Killed fires when the enemy is killed and is canceled when it is
	// removed, which also cancels tasks bound to it.
	Killed *sched.Event

	slain bool
}

// Vulnerable reports whether damage can apply.
func (e *Enemy) Vulnerable() bool {
	return e.HP > EnemyImmune
}

// Age returns the frames since spawn.
func (e *Enemy) Age(s *Session) int {
	return s.frames - e.BirthTime
}

// EnemySpec describes an enemy to spawn.
type EnemySpec struct {
	Pos      core.Vec
	HP       float64
	Visual   Visual
	Behavior EnemyBehavior
	Args     [4]core.Vec
	Move     Move
	// FadeIn starts the enemy transparent; it becomes harmful on contact
	// only once fully faded in.
	FadeIn bool
}

// SpawnEnemy creates an enemy and runs its behavior with SignalBirth.
func (s *Session) SpawnEnemy(spec EnemySpec) entity.ID {
	s.mustNotDraw("spawn an enemy")

	id, e := s.enemies.Acquire()
	e.ID = id
	e.BirthTime = s.frames
	e.Pos = spec.Pos
	e.Pos0 = spec.Pos
	e.Pos0Visual = spec.Pos
	e.HP = spec.HP
	e.SpawnHP = spec.HP
	e.Alpha = 1
	if spec.FadeIn {
		e.Alpha = 0
	}
	e.Behavior = spec.Behavior
	e.Visual = spec.Visual
	e.Args = spec.Args
	e.Move = spec.Move
	e.Killed = sched.NewEvent("enemy.killed")
	s.fixPos0Visual(e)

	s.callEnemyLogic(e, SignalBirth)
	return id
}

// Enemy returns the live enemy behind id.
func (s *Session) Enemy(id entity.ID) (*Enemy, bool) {
	return s.enemies.Get(id)
}

// EnemyTask starts a task that is canceled when the enemy goes away. For
// an enemy that is already gone the task is returned canceled and never
// runs.
func (s *Session) EnemyTask(id entity.ID, name string, fn sched.Func) *sched.Task {
	e, ok := s.enemies.Get(id)
	if !ok {
		return s.sched.Canceled(name)
	}
	t := s.sched.Go(name, fn)
	return t.BindTo(e.Killed)
}

// KillEnemy marks an enemy for death. It is removed on the next update.
func (s *Session) KillEnemy(id entity.ID) {
	if e, ok := s.enemies.Get(id); ok {
		e.HP = EnemyKilled
	}
}

// KillAllEnemies marks every enemy for death.
func (s *Session) KillAllEnemies() {
	s.enemies.Each(func(_ entity.ID, e *Enemy) bool {
		e.HP = EnemyKilled
		return true
	})
}

// Enemies returns the IDs of live enemies.
func (s *Session) Enemies() []entity.ID {
	return s.enemies.IDs()
}

func (s *Session) fixPos0Visual(e *Enemy) {
	if e.HP == EnemyImmune {
		return
	}
	const ofs = 21.0
	w, h := s.cfg.Engine.ViewportW, s.cfg.Engine.ViewportH
	x, y := real(e.Pos0Visual), imag(e.Pos0Visual)

	if x <= 0 && x > -ofs {
		x = -ofs
	} else if x >= w && x < w+ofs {
		x = w + ofs
	}
	if y <= 0 && y > -ofs {
		y = -ofs
	} else if y >= h && y < h+ofs {
		y = h + ofs
	}
	e.Pos0Visual = complex(x, y)
}

func (s *Session) callEnemyLogic(e *Enemy, t int) Action {
	if t == SignalKilled {
		e.Killed.Signal()
	}
	if e.Behavior != nil {
		return e.Behavior.Logic(s, e, t)
	}
	if t >= 0 {
		e.Advance()
	}
	return ActionNone
}

// Advance applies one frame of Move. Behaviors that replace the default
// rule call it themselves.
func (e *Enemy) Advance() {
	v := e.Move.Update(&e.Pos)
	e.Moving = math.Abs(real(v)) >= 1
	e.FacingLeft = real(v) < 0
}

// visualPos interpolates the drawn position during the entry slide.
func (s *Session) visualPos(e *Enemy) core.Vec {
	t := float64(s.frames-e.BirthTime) / visualDelay
	if t >= 1 || e.HP == EnemyImmune {
		return e.Pos
	}
	p := e.Pos - e.Pos0
	return p + core.Scale(e.Pos0, t) + core.Scale(e.Pos0Visual, 1-t)
}

func (s *Session) processEnemies() {
	hurt := s.cfg.Engine.EnemyHurtRadius
	for _, id := range s.enemies.IDs() {
		e, ok := s.enemies.Get(id)
		if !ok {
			continue
		}

		if e.HP == EnemyKilled {
			s.callEnemyLogic(e, SignalKilled)
			s.deleteEnemy(id)
			continue
		}

		action := s.callEnemyLogic(e, s.frames-e.BirthTime)

		if e.HP > EnemyImmune && e.Alpha >= 1 && core.Length(e.Pos-s.player.Pos) < hurt {
			s.Damage(PlayerID, DamageInfo{Kind: DamageEnemyCollision})
		}

		e.Alpha = core.Approach(e.Alpha, 1, 1.0/60)

		if (e.HP > EnemyImmune && (!s.inViewport(e.Pos) || e.HP <= 0)) || action == ActionDestroy {
			s.deleteEnemy(id)
			continue
		}

		if e.Visual != VisualNone {
			view := *e
			view.Pos = s.visualPos(e)
			e.Visual.tick(s, view, s.frames-e.BirthTime)
		}
	}
}

func (s *Session) deleteEnemy(id entity.ID) {
	e, ok := s.enemies.Get(id)
	if !ok {
		return
	}

	if e.HP <= 0 && e.HP != EnemyImmune {
		s.audio.PlayEffect("enemydeath")
		s.deathEffect(e.Pos)

		s.projs.Each(func(_ entity.ID, p *Projectile) bool {
			if p.Type == ProjEnemy && p.Flags&FlagNoCollision == 0 && core.Length(p.Pos-e.Pos) < 64 {
				s.SpawnAndCollectItem(e.Pos, ItemPIV)
			}
			return true
		})

		if e.slain {
			n := int(e.SpawnHP / 100)
			if n < 1 {
				n = 1
			}
			for i := 0; i < n; i++ {
				s.SpawnAndCollectItem(e.Pos, ItemVoltage)
			}
		}
	}

	s.callEnemyLogic(e, SignalDeath)
	e.Killed.Cancel()
	s.enemies.Release(id)
}

func (s *Session) deathEffect(pos core.Vec) {
	for i := 0; i < 10; i++ {
		speed := s.rng.Range(3, 13)
		s.SpawnParticle(ParticleSpec{
			Pos:     pos,
			Vel:     core.Scale(core.Dir(s.rng.Angle()), speed),
			Glyph:   '*',
			Color:   core.ColorBrightWhite,
			Timeout: 10,
		})
	}
	s.SpawnParticle(ParticleSpec{
		Pos:     pos,
		Glyph:   'O',
		Color:   core.ColorBrightYellow,
		Timeout: 20,
		Flags:   FlagRequiredParticle,
	})
}

// Visual is the drawing variant of an enemy.
type Visual uint8

const (
	VisualNone Visual = iota
	VisualFairy
	VisualBigFairy
	VisualSwirl
)

// tick runs the logic-side part of a visual: particle emission. It gets a
// copy of the enemy so it cannot change it.
func (v Visual) tick(s *Session, e Enemy, t int) {
	if v != VisualBigFairy || t%5 != 0 {
		return
	}
	offset := complex(s.rng.Range(-1, 1)*15, s.rng.Range(-1, 1)*10)
	s.SpawnParticle(ParticleSpec{
		Pos:     e.Pos + offset,
		Vel:     core.Scale(complex(0, -50)-offset, 1.0/50),
		Glyph:   '.',
		Color:   core.ColorCyan,
		Timeout: 50,
	})
}

func (v Visual) draw(c *core.Canvas, e Enemy, frames int) {
	col := core.ColorBrightMagenta
	if e.Alpha < 1 {
		col = core.ColorGray
	}
	switch v {
	case VisualFairy:
		glyph := 'Y'
		if e.Moving {
			glyph = '>'
			if e.FacingLeft {
				glyph = '<'
			}
		}
		c.Plot(e.Pos, glyph, col)
	case VisualBigFairy:
		c.Plot(e.Pos, 'W', col)
		c.Plot(e.Pos+complex(0, -12), rune("-\\|/"[frames/6%4]), core.ColorMagenta)
	case VisualSwirl:
		c.Plot(e.Pos, rune("@Oo0"[(frames/4)%4]), core.ColorBrightCyan)
	}
}
