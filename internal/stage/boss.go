package stage

import (
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
	"github.com/vovakirdan/tui-danmaku/internal/sched"
)

// AttackType is the kind of a boss attack.
type AttackType uint8

const (
	AttackMove AttackType = iota
	AttackNormal
	AttackSpellcard
	AttackSurvival
	AttackExtraSpell
)

var attackNames = [...]string{"move", "normal", "spellcard", "survival", "extraspell"}

func (t AttackType) String() string {
	if int(t) < len(attackNames) {
		return attackNames[t]
	}
	return "unknown"
}

// IsSpell reports whether the attack is a named spell with a capture bonus.
func (t AttackType) IsSpell() bool {
	return t == AttackSpellcard || t == AttackSurvival || t == AttackExtraSpell
}

// AttackRule drives a boss attack. t is negative before the attack starts,
// the elapsed frames once it runs, and SignalDeath when it ends.
type AttackRule func(s *Session, b *Boss, t int)

// AttackInfo is the static description of an attack.
type AttackInfo struct {
	Type    AttackType
	Name    string
	Timeout int // Frames; 0 means no time limit
	HP      float64
	Bonus   uint64
	Pos     core.Vec // Where the boss moves to at the start; 0 keeps position
	Rule    AttackRule
}

type endReason uint8

const (
	endNone endReason = iota
	endCleared
	endTimeout
	endFled
	endForced
)

var endNames = [...]string{"none", "cleared", "timeout", "fled", "forced"}

func (r endReason) String() string {
	return endNames[r]
}

// Attack is the run state of one attack.
type Attack struct {
	Info      AttackInfo
	HP        float64
	StartTime int
	EndTime   int
	Captured  bool
	// Ended is canceled when the attack ends, canceling tasks bound to it.
	Ended   *sched.Event
	Minions []entity.ID

	deathsAtStart int
	bombsAtStart  int
}

// BossStats summarizes a boss fight.
type BossStats struct {
	Attacks        int
	Cleared        int
	Timeouts       int
	SpellsCaptured int
	SpellsFailed   int
	Forced         bool
}

// Boss is the single boss entity.
type Boss struct {
	ID      entity.ID
	Name    string
	Pos     core.Vec
	Move    Move
	Attacks []Attack
	Cursor  int
	Stats   BossStats

	fleeing bool
	forced  bool
}

// Current returns the running attack, or nil once all attacks ended.
func (b *Boss) Current() *Attack {
	if b.Cursor >= len(b.Attacks) {
		return nil
	}
	return &b.Attacks[b.Cursor]
}

// Fleeing reports whether the boss is in its final 0-duration move.
func (b *Boss) Fleeing() bool {
	return b.fleeing
}

func (b *Boss) fleePhase() bool {
	a := b.Current()
	return a != nil && b.Cursor == len(b.Attacks)-1 && a.Info.Type == AttackMove && a.Info.Timeout == 0
}

// SpawnBoss creates the boss and starts its first attack. Only one boss
// can exist at a time.
func (s *Session) SpawnBoss(name string, pos core.Vec, attacks []AttackInfo) entity.ID {
	s.mustNotDraw("spawn a boss")
	if len(attacks) == 0 {
		entity.Fatalf("boss %q has no attacks", name)
	}

	id, b := s.bosses.Acquire()
	b.ID = id
	b.Name = name
	b.Pos = pos
	b.Attacks = make([]Attack, len(attacks))
	for i, info := range attacks {
		b.Attacks[i].Info = info
	}
	s.boss = id
	s.bossSeen = true
	s.bossDefeated = sched.NewEvent("boss.defeated")
	s.log.Debug("boss spawned", "name", name, "attacks", len(attacks), "frame", s.frames)

	s.startAttack(b)
	return id
}

// Boss returns the live boss.
func (s *Session) Boss() (*Boss, bool) {
	return s.bosses.Get(s.boss)
}

// BossActive reports whether a boss exists.
func (s *Session) BossActive() bool {
	return s.bosses.Alive(s.boss)
}

// BossFleeing reports whether the boss exists and is fleeing.
func (s *Session) BossFleeing() bool {
	b, ok := s.bosses.Get(s.boss)
	return ok && b.fleeing
}

// BossDefeated returns the event signaled when the last spawned boss runs
// out of attacks. It is nil before any boss spawned.
func (s *Session) BossDefeated() *sched.Event {
	return s.bossDefeated
}

// LastBossStats returns the stats of the last finished boss fight.
func (s *Session) LastBossStats() BossStats {
	return s.bossStats
}

// SpawnMinion spawns an enemy that is killed when the current attack ends.
func (s *Session) SpawnMinion(spec EnemySpec) entity.ID {
	id := s.SpawnEnemy(spec)
	if b, ok := s.bosses.Get(s.boss); ok {
		if a := b.Current(); a != nil {
			a.Minions = append(a.Minions, id)
		}
	}
	return id
}

// AttackTask starts a task that is canceled when the current attack ends.
func (s *Session) AttackTask(name string, fn sched.Func) *sched.Task {
	b, ok := s.bosses.Get(s.boss)
	if !ok || b.Current() == nil {
		return nil
	}
	return s.Go(name, fn).BindTo(b.Current().Ended)
}

// ForceFinish ends every remaining attack without bonuses on the next
// boss update.
func (s *Session) ForceFinish() {
	if b, ok := s.bosses.Get(s.boss); ok {
		b.forced = true
	}
}

func (s *Session) attackDelay(t AttackType) int {
	switch {
	case t == AttackMove:
		return 0
	case t.IsSpell():
		return s.cfg.Engine.AttackDelay.Spell
	default:
		return s.cfg.Engine.AttackDelay.Normal
	}
}

func (s *Session) startAttack(b *Boss) {
	a := b.Current()
	a.StartTime = s.frames + s.attackDelay(a.Info.Type)
	a.HP = a.Info.HP
	a.Ended = sched.NewEvent("attack.ended")
	a.deathsAtStart = s.player.Deaths
	a.bombsAtStart = s.player.BombsUsed
	b.Stats.Attacks++

	switch {
	case b.fleePhase():
		b.fleeing = true
		b.Move = MoveAccelerated(0, complex(0, -0.3))
	case a.Info.Pos != 0:
		b.Move = MoveTowards(a.Info.Pos, 0.05)
	}
	if a.Info.Type.IsSpell() {
		s.audio.PlayEffect("spellcard")
	}
	s.log.Debug("attack started", "boss", b.Name, "attack", a.Info.Name, "type", a.Info.Type, "start", a.StartTime)
}

func (s *Session) processBoss() {
	b, ok := s.bosses.Get(s.boss)
	if !ok {
		return
	}

	if b.forced {
		b.Stats.Forced = true
		for b.Current() != nil {
			s.endAttack(b, endForced)
		}
		s.finishBoss(b)
		return
	}

	b.Move.Update(&b.Pos)

	// A finished attack hands over to the next one within the same tick.
	for a := b.Current(); a != nil; a = b.Current() {
		t := s.frames - a.StartTime
		if a.Info.Rule != nil {
			a.Info.Rule(s, b, t)
		}
		reason := s.attackFinished(b, a, t)
		if reason == endNone {
			return
		}
		s.endAttack(b, reason)
	}
	s.finishBoss(b)
}

func (s *Session) attackFinished(b *Boss, a *Attack, t int) endReason {
	if t < 0 {
		return endNone
	}
	if b.fleePhase() {
		if !s.inViewport(b.Pos) || t >= s.cfg.Engine.FleeTimeout {
			return endFled
		}
		return endNone
	}
	switch a.Info.Type {
	case AttackMove:
		if a.Info.Timeout == 0 {
			return endCleared
		}
	case AttackNormal, AttackSpellcard, AttackExtraSpell:
		if a.HP <= 0 {
			return endCleared
		}
	}
	if a.Info.Timeout > 0 && t >= a.Info.Timeout {
		return endTimeout
	}
	return endNone
}

func (s *Session) endAttack(b *Boss, reason endReason) {
	a := b.Current()
	a.EndTime = s.frames

	if a.Info.Rule != nil {
		a.Info.Rule(s, b, SignalDeath)
	}
	for _, id := range a.Minions {
		s.KillEnemy(id)
	}
	a.Ended.Cancel()
	if a.Info.Type != AttackMove {
		s.ClearHazards(AllHazards, ClearBullets|ClearLasers)
	}

	switch reason {
	case endCleared:
		b.Stats.Cleared++
	case endTimeout:
		b.Stats.Timeouts++
	}

	if a.Info.Type.IsSpell() {
		success := reason == endCleared || (reason == endTimeout && a.Info.Type == AttackSurvival)
		clean := s.player.Deaths == a.deathsAtStart && s.player.BombsUsed == a.bombsAtStart
		if success && clean {
			a.Captured = true
			b.Stats.SpellsCaptured++
			s.player.Points += a.Info.Bonus
			s.audio.PlayEffect("spellclear")
		} else {
			b.Stats.SpellsFailed++
		}
	}

	s.log.Debug("attack ended", "boss", b.Name, "attack", a.Info.Name, "reason", reason, "captured", a.Captured, "frame", s.frames)

	b.Cursor++
	if b.Current() != nil {
		s.startAttack(b)
	}
}

func (s *Session) finishBoss(b *Boss) {
	s.bossStats = b.Stats
	s.bossDefeated.Signal()
	s.audio.PlayEffect("bossdeath")
	s.log.Info("boss finished", "name", b.Name, "cleared", b.Stats.Cleared,
		"captured", b.Stats.SpellsCaptured, "failed", b.Stats.SpellsFailed, "forced", b.Stats.Forced)
	s.bosses.Release(b.ID)
	s.boss = entity.ID{}
}

func (s *Session) damageBoss(b *Boss, dmg DamageInfo) DamageResult {
	a := b.Current()
	if a == nil || dmg.Kind.FromEnemy() || b.fleeing {
		return DamageImmune
	}
	if a.Info.Type == AttackMove || a.Info.Type == AttackSurvival || s.frames < a.StartTime || a.HP <= 0 {
		return DamageImmune
	}
	a.HP -= dmg.Amount
	if a.HP < 0 {
		a.HP = 0
	}
	s.hitSound(a.HP, a.Info.HP)
	return DamageOK
}

// draw renders the boss. It runs with the visual random stream active.
func (b *Boss) draw(c *core.Canvas, s *Session) {
	for i := 0; i < 3; i++ {
		jitter := complex(s.rng.Range(-10, 10), s.rng.Range(-6, 6))
		c.Plot(b.Pos+jitter, '~', core.ColorMagenta)
	}
	c.Plot(b.Pos, 'B', core.ColorBrightRed)

	a := b.Current()
	if a == nil {
		return
	}
	label := b.Name
	if a.Info.Type.IsSpell() && s.frames >= a.StartTime {
		label = a.Info.Name
	}
	c.Text(complex(8, 8), label, core.ColorBrightWhite)
	if a.Info.HP > 0 {
		const width = 20
		n := int(a.HP / a.Info.HP * width)
		bar := make([]rune, width)
		for i := range bar {
			bar[i] = '-'
			if i < n {
				bar[i] = '='
			}
		}
		c.Text(complex(8, 24), string(bar), core.ColorBrightRed)
	}
}
