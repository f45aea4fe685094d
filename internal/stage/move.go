package stage

import "github.com/vovakirdan/tui-danmaku/internal/core"

// Move is a simple kinematic model: each update adds Velocity to the
// position, then Velocity becomes Acceleration + Retention*Velocity, plus a
// pull towards AttractionPoint when Attraction is set.
type Move struct {
	Velocity        core.Vec
	Acceleration    core.Vec
	Retention       core.Vec
	Attraction      float64
	AttractionPoint core.Vec
	MaxPull         float64
}

// MoveLinear moves at constant velocity.
func MoveLinear(vel core.Vec) Move {
	return Move{Velocity: vel, Retention: 1}
}

// MoveAccelerated moves with constant acceleration.
func MoveAccelerated(vel, accel core.Vec) Move {
	return Move{Velocity: vel, Acceleration: accel, Retention: 1}
}

// MoveAsymptotic starts at vel and decays by retention every frame.
func MoveAsymptotic(vel core.Vec, retention float64) Move {
	return Move{Velocity: vel, Retention: complex(retention, 0)}
}

// MoveTowards pulls towards target with the given strength.
func MoveTowards(target core.Vec, attraction float64) Move {
	return Move{AttractionPoint: target, Attraction: attraction}
}

// MoveStop holds still.
func MoveStop() Move {
	return Move{}
}

// Update advances pos and returns the velocity that was applied.
func (m *Move) Update(pos *core.Vec) core.Vec {
	v := m.Velocity
	*pos += v
	m.Velocity = m.Acceleration + m.Retention*v
	if m.Attraction != 0 {
		pull := m.AttractionPoint - *pos
		if m.MaxPull > 0 && core.Length(pull) > m.MaxPull {
			pull = core.Scale(core.Normalize(pull), m.MaxPull)
		}
		m.Velocity += core.Scale(pull, m.Attraction)
	}
	return v
}
