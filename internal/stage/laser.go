package stage

import (
	"math"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

// Curve selects the parametric shape of a laser.
type Curve uint8

const (
	// CurveLinear is Pos0 + Args[0]*t.
	CurveLinear Curve = iota
	// CurveAccelerated is Pos0 + Args[0]*t + Args[1]*t*t.
	CurveAccelerated
	// CurveSine runs along Args[0] and swings sideways by real(Args[1]),
	// with angular frequency real(Args[2]) and phase real(Args[3]).
	CurveSine
)

// maxLaserSegments bounds the sampling of one laser window.
const maxLaserSegments = 48

// Laser is a curve hazard drawn over a sliding parameter window.
type Laser struct {
	ID         entity.ID
	Pos0       core.Vec
	Args       [4]core.Vec
	Curve      Curve
	Speed      float64 // Parameter units per frame
	Timespan   float64 // Window length
	Deathtime  float64 // Parameter value where the curve ends
	Width      float64
	ChargeTime int
	Color      core.Color
	Flags      ProjFlags
	BirthTime  int
}

// LaserSpec describes a laser to spawn.
type LaserSpec struct {
	Pos        core.Vec
	Args       [4]core.Vec
	Curve      Curve
	Speed      float64
	Timespan   float64
	Deathtime  float64
	Width      float64
	ChargeTime int
	Color      core.Color
	Flags      ProjFlags
}

// SpawnLaser creates a laser.
func (s *Session) SpawnLaser(spec LaserSpec) entity.ID {
	s.mustNotDraw("spawn a laser")

	id, l := s.lasers.Acquire()
	l.ID = id
	l.Pos0 = spec.Pos
	l.Args = spec.Args
	l.Curve = spec.Curve
	l.Speed = spec.Speed
	if l.Speed <= 0 {
		l.Speed = 1
	}
	l.Timespan = spec.Timespan
	l.Deathtime = spec.Deathtime
	l.Width = spec.Width
	if l.Width <= 0 {
		l.Width = 6
	}
	l.ChargeTime = spec.ChargeTime
	l.Color = spec.Color
	l.Flags = spec.Flags
	l.BirthTime = s.frames
	return id
}

// Laser returns the live laser behind id.
func (s *Session) Laser(id entity.ID) (*Laser, bool) {
	return s.lasers.Get(id)
}

// Lasers returns the IDs of live lasers.
func (s *Session) Lasers() []entity.ID {
	return s.lasers.IDs()
}

// At evaluates the curve at parameter t.
func (l *Laser) At(t float64) core.Vec {
	switch l.Curve {
	case CurveAccelerated:
		return l.Pos0 + core.Scale(l.Args[0], t) + core.Scale(l.Args[1], t*t)
	case CurveSine:
		side := core.Normalize(l.Args[0]) * 1i
		swing := real(l.Args[1]) * math.Sin(real(l.Args[2])*t+real(l.Args[3]))
		return l.Pos0 + core.Scale(l.Args[0], t) + core.Scale(side, swing)
	default:
		return l.Pos0 + core.Scale(l.Args[0], t)
	}
}

// Window returns the visible parameter range at the given age.
func (l *Laser) Window(age int) (lo, hi float64) {
	head := float64(age) * l.Speed
	lo = math.Max(0, head-l.Timespan)
	hi = math.Min(head, l.Deathtime)
	return lo, hi
}

// Charged reports whether the laser can hurt at the given age.
func (l *Laser) Charged(age int) bool {
	return age >= l.ChargeTime && l.Flags&FlagNoCollision == 0
}

// Points samples the visible part of the curve.
func (l *Laser) Points(age int) []core.Vec {
	lo, hi := l.Window(age)
	if hi <= lo {
		return nil
	}
	n := int(math.Ceil(hi - lo))
	n = core.Clamp(n, 1, maxLaserSegments)
	pts := make([]core.Vec, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = l.At(lo + (hi-lo)*float64(i)/float64(n))
	}
	return pts
}

// intersects reports whether any segment of the visible curve satisfies hit.
func (l *Laser) intersects(age int, hit func(a, b core.Vec) bool) bool {
	pts := l.Points(age)
	for i := 1; i < len(pts); i++ {
		if hit(pts[i-1], pts[i]) {
			return true
		}
	}
	return false
}

func (s *Session) processLasers() {
	for _, id := range s.lasers.IDs() {
		l, ok := s.lasers.Get(id)
		if !ok {
			continue
		}
		age := s.frames - l.BirthTime
		if lo, _ := l.Window(age); lo >= l.Deathtime {
			s.lasers.Release(id)
			continue
		}
		if !l.Charged(age) {
			continue
		}
		body := core.Circle{Center: s.player.Pos, Radius: s.cfg.Player.HitRadius}
		if l.intersects(age, func(a, b core.Vec) bool { return body.IntersectsSegment(a, b, l.Width) }) {
			s.Damage(PlayerID, DamageInfo{Amount: 1, Kind: DamageEnemyShot})
		}
	}
}

func (s *Session) clearLaser(id entity.ID, force bool) bool {
	l, ok := s.lasers.Get(id)
	if !ok {
		return false
	}
	if l.Flags&FlagNoClear != 0 && !force {
		return false
	}
	return s.lasers.Release(id)
}

func (l *Laser) draw(c *core.Canvas, age int) {
	glyph, col := '|', l.Color
	if col == core.ColorDefault {
		col = core.ColorBrightCyan
	}
	if age < l.ChargeTime {
		glyph, col = ':', core.ColorGray
	}
	pts := l.Points(age)
	for i := 1; i < len(pts); i++ {
		c.Line(pts[i-1], pts[i], glyph, col)
	}
}
