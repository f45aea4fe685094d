package stage

import (
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

// ItemType is a pickup kind.
type ItemType uint8

const (
	ItemPoints ItemType = iota
	ItemPower
	ItemPIV
	ItemVoltage
	ItemLife
)

var itemGlyphs = [...]rune{'p', 'P', '+', 'v', '*'}

func (t ItemType) glyph() rune {
	if int(t) < len(itemGlyphs) {
		return itemGlyphs[t]
	}
	return '?'
}

const (
	itemMaxFall     = 3.0
	itemGravity     = 0.1
	itemCollectPull = 8.0
	pivValue        = 10
	maxPower        = 400
)

// Item is a pickup falling towards the bottom of the viewport.
type Item struct {
	ID        entity.ID
	Type      ItemType
	Pos       core.Vec
	Vel       core.Vec
	Auto      bool // Homing in on the player
	BirthTime int
}

// SpawnItem drops an item at pos.
func (s *Session) SpawnItem(pos core.Vec, typ ItemType) entity.ID {
	s.mustNotDraw("spawn an item")

	id, it := s.items.Acquire()
	it.ID = id
	it.Type = typ
	it.Pos = pos
	it.Vel = complex(s.rng.Range(-1, 1), -3)
	it.BirthTime = s.frames
	return id
}

// SpawnAndCollectItem drops an item that homes in on the player at once.
func (s *Session) SpawnAndCollectItem(pos core.Vec, typ ItemType) entity.ID {
	id := s.SpawnItem(pos, typ)
	if it, ok := s.items.Get(id); ok {
		it.Auto = true
	}
	return id
}

// Items returns the IDs of live items.
func (s *Session) Items() []entity.ID {
	return s.items.IDs()
}

func (s *Session) processItems() {
	collectAll := imag(s.player.Pos) < s.cfg.Player.CollectLine
	for _, id := range s.items.IDs() {
		it, ok := s.items.Get(id)
		if !ok {
			continue
		}
		if collectAll {
			it.Auto = true
		}

		if it.Auto {
			it.Pos += core.Scale(core.Normalize(s.player.Pos-it.Pos), itemCollectPull)
		} else {
			it.Pos += it.Vel
			it.Vel = complex(real(it.Vel)*0.95, core.ClampF(imag(it.Vel)+itemGravity, -itemMaxFall, itemMaxFall))
		}

		if core.Length(it.Pos-s.player.Pos) < s.cfg.Player.CollectRadius {
			s.collectItem(it)
			s.items.Release(id)
			continue
		}
		if imag(it.Pos) > s.cfg.Engine.ViewportH+s.cfg.Engine.ViewportMargin {
			s.items.Release(id)
		}
	}
}

func (s *Session) collectItem(it *Item) {
	p := &s.player
	switch it.Type {
	case ItemPoints:
		p.Points += s.cfg.Player.PointValue + p.PIV
	case ItemPower:
		p.Power = core.Min(p.Power+5, maxPower)
		p.Points += 10
	case ItemPIV:
		p.PIV += pivValue
	case ItemVoltage:
		p.Voltage++
	case ItemLife:
		p.Lives++
		s.audio.PlayEffect("extend")
		return
	}
	s.audio.PlayLoop("item")
}

func (it *Item) draw(c *core.Canvas) {
	col := core.ColorBrightYellow
	switch it.Type {
	case ItemPower, ItemLife:
		col = core.ColorBrightRed
	case ItemPoints:
		col = core.ColorBrightBlue
	}
	c.Plot(it.Pos, it.Type.glyph(), col)
}
