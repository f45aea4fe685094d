// Package practice registers one spell practice stage per spell card of
// the story stages. A practice stage is won shortly after the boss leaves.
package practice

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
	"github.com/vovakirdan/tui-danmaku/internal/stages/thunder"
)

const firstNumber = 100

func init() {
	for i, spell := range thunder.Spells() {
		spell := spell
		id := ID(spell.Name)
		number := firstNumber + i
		caster := thunder.BossName(spell)
		registry.Register(id, func() stage.Info {
			return New(id, number, caster, spell)
		})
	}
}

// ID derives a stage ID from a spell name: "Charge Sign: Static Field"
// becomes "spell_charge_sign_static_field".
func ID(spellName string) string {
	var b strings.Builder
	b.WriteString("spell")
	sep := true
	for _, r := range strings.ToLower(spellName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep {
				b.WriteByte('_')
				sep = false
			}
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

// New builds a practice stage for one spell.
func New(id string, number int, caster string, spell stage.AttackInfo) stage.Info {
	return stage.Info{
		ID:       id,
		Number:   number,
		Title:    "Spell Practice",
		Subtitle: fmt.Sprintf("%s ~ %s", caster, spell.Name),
		Type:     stage.TypeSpell,
		Track:    "practice",
		Procs: stage.Procs{
			Begin: func(s *stage.Session) {
				w := s.Config().Engine.ViewportW
				s.SpawnBoss(caster, complex(w/2, -40), []stage.AttackInfo{
					{Type: stage.AttackMove, Name: "intro", Timeout: 60, Pos: complex(w/2, 120)},
					spell,
					{Type: stage.AttackMove, Name: "flee"},
				})
			},
			Draw: func(s *stage.Session, c *core.Canvas) {
				c.Text(complex(8, 16), spell.Name, core.ColorGray)
			},
		},
	}
}
