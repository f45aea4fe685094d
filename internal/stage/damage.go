package stage

import (
	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

// DamageKind is the source of a damage application.
type DamageKind uint8

const (
	DamageEnemyShot DamageKind = iota
	DamageEnemyCollision
	DamagePlayerShot
	DamagePlayerBomb
	DamagePlayerDischarge
)

var damageNames = [...]string{"enemy_shot", "enemy_collision", "player_shot", "player_bomb", "player_discharge"}

func (k DamageKind) String() string {
	if int(k) < len(damageNames) {
		return damageNames[k]
	}
	return "unknown"
}

// FromEnemy reports whether the source is hostile to the player.
func (k DamageKind) FromEnemy() bool {
	return k == DamageEnemyShot || k == DamageEnemyCollision
}

// DamageInfo is passed to Damage and never stored.
type DamageInfo struct {
	Amount float64
	Kind   DamageKind
}

// DamageResult is the outcome of a damage application.
type DamageResult uint8

const (
	DamageOK DamageResult = iota
	DamageImmune
)

func (r DamageResult) String() string {
	if r == DamageOK {
		return "ok"
	}
	return "immune"
}

// Damage applies dmg to the entity behind id. Targets that are gone, cannot
// be damaged, or ignore the source kind report DamageImmune and keep their
// state.
func (s *Session) Damage(id entity.ID, dmg DamageInfo) DamageResult {
	switch id.Kind {
	case entity.KindEnemy:
		if e, ok := s.enemies.Get(id); ok {
			return s.damageEnemy(e, dmg)
		}
	case entity.KindBoss:
		if b, ok := s.bosses.Get(id); ok {
			return s.damageBoss(b, dmg)
		}
	case entity.KindPlayer:
		if id == PlayerID {
			return s.damagePlayer(dmg)
		}
	}
	return DamageImmune
}

func (s *Session) damageEnemy(e *Enemy, dmg DamageInfo) DamageResult {
	if !e.Vulnerable() || dmg.Kind.FromEnemy() {
		return DamageImmune
	}

	e.HP -= dmg.Amount
	if e.HP <= 0 {
		e.HP = EnemyKilled
		e.slain = true
	}
	s.hitSound(e.HP, e.SpawnHP)
	return DamageOK
}

func (s *Session) hitSound(hp, max float64) {
	if hp < max*0.1 {
		s.audio.PlayLoop("hit1")
	} else {
		s.audio.PlayLoop("hit0")
	}
}
