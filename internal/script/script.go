// Package script runs enemy behavior rules written in tengo.
//
// A script defines logic(e, state, t) where e exposes the enemy and the
// session, state is a map private to one enemy and t is the enemy age or
// one of e.BIRTH, e.DEATH, e.KILLED. logic may return "destroy" or "ack".
// Top-level glyph, color and speed globals set the bullet look and the
// default bullet speed.
package script

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
)

//go:embed scripts/*.tengo
var scriptsFS embed.FS

// maxAllocs bounds a single logic call.
const maxAllocs = 20000

const dispatch = `
if __run {
	__action = logic(__engine, __state, __t)
}
`

// Only modules without hidden state or wall clock access, so scripts
// stay replayable.
var modules = []string{"math", "text", "enum"}

// Program is a compiled behavior script. Behaviors cloned from it share
// nothing but the bytecode.
type Program struct {
	name     string
	compiled *tengo.Compiled
	glyph    rune
	color    core.Color
	speed    float64
}

// Load compiles an embedded script by name, with or without extension.
func Load(name string) (*Program, error) {
	file := strings.TrimSuffix(path.Base(name), ".tengo") + ".tengo"
	src, err := scriptsFS.ReadFile("scripts/" + file)
	if err != nil {
		return nil, fmt.Errorf("script: cannot load %q: %w", name, err)
	}
	return Compile(strings.TrimSuffix(file, ".tengo"), src)
}

// MustLoad is Load for stage content; a broken embedded script aborts
// the session.
func MustLoad(name string) *Program {
	p, err := Load(name)
	if err != nil {
		entity.Fatalf("%v", err)
	}
	return p
}

// Names lists the embedded scripts.
func Names() []string {
	entries, err := scriptsFS.ReadDir("scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tengo"))
	}
	return names
}

// Compile builds a program from source.
func Compile(name string, src []byte) (*Program, error) {
	full := make([]byte, 0, len(src)+len(dispatch)+1)
	full = append(full, src...)
	full = append(full, '\n')
	full = append(full, dispatch...)

	sc := tengo.NewScript(full)
	_ = sc.Add("__run", false)
	_ = sc.Add("__engine", map[string]any{})
	_ = sc.Add("__state", map[string]any{})
	_ = sc.Add("__t", 0)
	_ = sc.Add("__action", "")
	sc.SetImports(stdlib.GetModuleMap(modules...))
	sc.SetMaxAllocs(maxAllocs)

	compiled, err := sc.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: cannot compile %q: %w", name, err)
	}
	// Evaluate the top level once for the globals.
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("script: cannot run %q: %w", name, err)
	}

	p := &Program{name: name, compiled: compiled, glyph: '*', color: core.ColorRed, speed: 2}
	if g := globalString(compiled, "glyph"); g != "" {
		p.glyph = []rune(g)[0]
	}
	if c, ok := core.ParseColor(globalString(compiled, "color")); ok {
		p.color = c
	}
	if compiled.IsDefined("speed") {
		if v := compiled.Get("speed").Float(); v > 0 {
			p.speed = v
		}
	}
	return p, nil
}

func globalString(c *tengo.Compiled, name string) string {
	if !c.IsDefined(name) {
		return ""
	}
	return strings.TrimSpace(c.Get(name).String())
}

// Name returns the script name.
func (p *Program) Name() string { return p.name }

// Behavior returns a fresh behavior with its own globals and state map.
func (p *Program) Behavior() *Behavior {
	return &Behavior{
		prog:     p,
		compiled: p.compiled.Clone(),
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
}

// Behavior runs a program as the logic rule of one enemy.
type Behavior struct {
	prog     *Program
	compiled *tengo.Compiled
	state    *tengo.Map
	broken   bool
}

var _ stage.EnemyBehavior = (*Behavior)(nil)

// Logic runs the script. A script error is logged once and the enemy
// then falls back to its Move.
func (b *Behavior) Logic(s *stage.Session, e *stage.Enemy, t int) stage.Action {
	if b.broken {
		if t >= 0 {
			e.Advance()
		}
		return stage.ActionNone
	}

	action, err := b.run(s, e, t)
	if err != nil {
		b.broken = true
		s.Logger().Warn("enemy script failed", "script", b.prog.name, "t", t, "err", err)
	}
	if t >= 0 {
		e.Advance()
	}
	return action
}

func (b *Behavior) run(s *stage.Session, e *stage.Enemy, t int) (stage.Action, error) {
	c := b.compiled
	if err := c.Set("__run", true); err != nil {
		return stage.ActionNone, err
	}
	if err := c.Set("__engine", newEngine(b.prog, s, e)); err != nil {
		return stage.ActionNone, err
	}
	if err := c.Set("__state", b.state); err != nil {
		return stage.ActionNone, err
	}
	if err := c.Set("__t", t); err != nil {
		return stage.ActionNone, err
	}
	if err := c.Set("__action", ""); err != nil {
		return stage.ActionNone, err
	}
	if err := c.Run(); err != nil {
		return stage.ActionNone, err
	}

	switch strings.ToLower(c.Get("__action").String()) {
	case "destroy":
		return stage.ActionDestroy, nil
	case "ack":
		return stage.ActionAck, nil
	}
	return stage.ActionNone, nil
}
