package script

import (
	"math"

	"github.com/d5/tengo/v2"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
)

// newEngine builds the object scripts see as their first argument.
func newEngine(p *Program, s *stage.Session, e *stage.Enemy) *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"BIRTH":  &tengo.Int{Value: stage.SignalBirth},
		"DEATH":  &tengo.Int{Value: stage.SignalDeath},
		"KILLED": &tengo.Int{Value: stage.SignalKilled},
	}

	fn := func(name string, f tengo.CallableFunc) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}

	fn("pos", func(args ...tengo.Object) (tengo.Object, error) {
		return vec(e.Pos), nil
	})
	fn("player", func(args ...tengo.Object) (tengo.Object, error) {
		return vec(s.Player().Pos), nil
	})
	fn("hp", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: e.HP}, nil
	})
	fn("frames", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(s.Frames())}, nil
	})
	fn("level", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: s.Difficulty().Level()}, nil
	})

	fn("move", func(args ...tengo.Object) (tengo.Object, error) {
		v, err := vecArgs("move", args, 0)
		if err != nil {
			return nil, err
		}
		e.Move = stage.MoveLinear(v)
		return tengo.UndefinedValue, nil
	})
	fn("move_to", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		v, err := vecArgs("move_to", args, 0)
		if err != nil {
			return nil, err
		}
		k, err := floatArg("move_to", args, 2)
		if err != nil {
			return nil, err
		}
		e.Move = stage.MoveTowards(v, k)
		return tengo.UndefinedValue, nil
	})
	fn("stop", func(args ...tengo.Object) (tengo.Object, error) {
		e.Move = stage.MoveStop()
		return tengo.UndefinedValue, nil
	})

	fn("shoot", func(args ...tengo.Object) (tengo.Object, error) {
		v, err := vecArgs("shoot", args, 0)
		if err != nil {
			return nil, err
		}
		s.Shoot(e.Pos, v, p.glyph, p.color)
		return tengo.UndefinedValue, nil
	})
	// aim(speed?) fires one bullet at the player.
	fn("aim", func(args ...tengo.Object) (tengo.Object, error) {
		speed, err := speedArg("aim", p, args, 0)
		if err != nil {
			return nil, err
		}
		dir := core.Normalize(s.Player().Pos - e.Pos)
		s.Shoot(e.Pos, core.Scale(dir, speed), p.glyph, p.color)
		return tengo.UndefinedValue, nil
	})
	// ring(n, speed?, offset?) fires n bullets spread evenly.
	fn("ring", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || len(args) > 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		n, ok := tengo.ToInt(args[0])
		if !ok {
			return nil, argError("ring", "first", "int", args[0])
		}
		speed, err := speedArg("ring", p, args, 1)
		if err != nil {
			return nil, err
		}
		var offset float64
		if len(args) > 2 {
			if offset, err = floatArg("ring", args, 2); err != nil {
				return nil, err
			}
		}
		for i := 0; i < n; i++ {
			a := offset + 2*math.Pi*float64(i)/float64(n)
			s.Shoot(e.Pos, core.Scale(core.Dir(a), speed), p.glyph, p.color)
		}
		return tengo.UndefinedValue, nil
	})
	fn("clear", func(args ...tengo.Object) (tengo.Object, error) {
		r, err := floatArg("clear", args, 0)
		if err != nil {
			return nil, err
		}
		n := s.ClearHazardsAt(e.Pos, r, stage.ClearBullets)
		return &tengo.Int{Value: int64(n)}, nil
	})

	// Random draws come from the session streams so playback repeats them.
	fn("rand", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		lo, err := floatArg("rand", args, 0)
		if err != nil {
			return nil, err
		}
		hi, err := floatArg("rand", args, 1)
		if err != nil {
			return nil, err
		}
		return &tengo.Float{Value: s.RNG().Range(lo, hi)}, nil
	})
	fn("angle", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: s.RNG().Angle()}, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func vec(v core.Vec) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: real(v)},
		&tengo.Float{Value: imag(v)},
	}}
}

// vecArgs reads an x, y pair starting at args[i].
func vecArgs(name string, args []tengo.Object, i int) (core.Vec, error) {
	if len(args) < i+2 {
		return 0, tengo.ErrWrongNumArguments
	}
	x, err := floatArg(name, args, i)
	if err != nil {
		return 0, err
	}
	y, err := floatArg(name, args, i+1)
	if err != nil {
		return 0, err
	}
	return complex(x, y), nil
}

func floatArg(name string, args []tengo.Object, i int) (float64, error) {
	if i >= len(args) {
		return 0, tengo.ErrWrongNumArguments
	}
	v, ok := tengo.ToFloat64(args[i])
	if !ok {
		return 0, argError(name, ordinal(i), "float", args[i])
	}
	return v, nil
}

func speedArg(name string, p *Program, args []tengo.Object, i int) (float64, error) {
	if i >= len(args) {
		return p.speed, nil
	}
	return floatArg(name, args, i)
}

func argError(name, pos, expected string, got tengo.Object) error {
	return tengo.ErrInvalidArgumentType{
		Name:     name + " " + pos,
		Expected: expected,
		Found:    got.TypeName(),
	}
}

func ordinal(i int) string {
	switch i {
	case 0:
		return "first"
	case 1:
		return "second"
	case 2:
		return "third"
	}
	return "fourth"
}
