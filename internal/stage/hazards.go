package stage

import (
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

// ClearFlags select what ClearHazards removes.
type ClearFlags uint8

const (
	ClearBullets ClearFlags = 1 << iota
	ClearLasers
	// ClearForce also removes hazards marked FlagNoClear.
	ClearForce
)

// Predicate selects hazards by ID. It receives projectile and laser IDs.
type Predicate func(s *Session, id entity.ID) bool

// AllHazards matches every hazard.
func AllHazards(*Session, entity.ID) bool {
	return true
}

// InCircle matches bullets whose center is inside the circle and lasers
// whose visible curve touches it.
func InCircle(center core.Vec, radius float64) Predicate {
	area := core.Circle{Center: center, Radius: radius}
	return func(s *Session, id entity.ID) bool {
		switch id.Kind {
		case entity.KindProjectile:
			p, ok := s.projs.Get(id)
			return ok && area.ContainsPoint(p.Pos)
		case entity.KindLaser:
			l, ok := s.lasers.Get(id)
			return ok && l.intersects(s.frames-l.BirthTime, func(a, b core.Vec) bool {
				return area.IntersectsSegment(a, b, l.Width)
			})
		}
		return false
	}
}

// InEllipse is InCircle for a rotated ellipse.
func InEllipse(area core.Ellipse) Predicate {
	return func(s *Session, id entity.ID) bool {
		switch id.Kind {
		case entity.KindProjectile:
			p, ok := s.projs.Get(id)
			return ok && area.ContainsPoint(p.Pos)
		case entity.KindLaser:
			l, ok := s.lasers.Get(id)
			if !ok {
				return false
			}
			wide := area.Grow(l.Width / 2)
			return l.intersects(s.frames-l.BirthTime, wide.IntersectsSegment)
		}
		return false
	}
}

// ClearHazards removes every hazard matching pred and returns how many
// were cleared. Bullets turn into fading dead projectiles.
func (s *Session) ClearHazards(pred Predicate, flags ClearFlags) int {
	force := flags&ClearForce != 0
	n := 0
	if flags&ClearBullets != 0 {
		for _, id := range s.projs.IDs() {
			if p, ok := s.projs.Get(id); !ok || p.Type != ProjEnemy {
				continue
			}
			if pred(s, id) && s.clearProjectile(id, force) {
				n++
			}
		}
	}
	if flags&ClearLasers != 0 {
		for _, id := range s.lasers.IDs() {
			if pred(s, id) && s.clearLaser(id, force) {
				n++
			}
		}
	}
	return n
}

// ClearHazardsAt clears hazards within radius of center.
func (s *Session) ClearHazardsAt(center core.Vec, radius float64, flags ClearFlags) int {
	return s.ClearHazards(InCircle(center, radius), flags)
}

// ClearHazardsInEllipse clears hazards inside area.
func (s *Session) ClearHazardsInEllipse(area core.Ellipse, flags ClearFlags) int {
	return s.ClearHazards(InEllipse(area), flags)
}
