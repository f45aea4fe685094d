// Package dialog runs scripted conversations on the stage scheduler.
//
// A Script is a list of steps. Running it shows lines one at a time and
// raises named events that stage code waits on. Every event fires at most
// once per dialog; events the script never raised fire when it ends so no
// waiter is left hanging.
package dialog

import (
	"io"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-danmaku/internal/sched"
)

// Standard event names.
const (
	EventBossAppears  = "boss_appears"
	EventMusicChanges = "music_changes"
	EventFadeoutBegan = "fadeout_began"
	EventFadeoutEnded = "fadeout_ended"
)

// FadeFrames is the length of the closing fade.
const FadeFrames = 20

type stepKind uint8

const (
	stepMsg stepKind = iota
	stepWait
	stepEvent
)

type step struct {
	kind      stepKind
	actor     string
	text      string
	frames    int
	skippable bool
}

// Line is the text currently on screen.
type Line struct {
	Actor string
	Text  string
}

// Script is a dialog definition. The zero value is empty.
type Script struct {
	Name  string
	steps []step
}

// NewScript creates an empty script.
func NewScript(name string) *Script {
	return &Script{Name: name}
}

// Msg adds a skippable line shown for a time estimated from its length.
func (s *Script) Msg(actor, text string) *Script {
	s.steps = append(s.steps, step{kind: stepMsg, actor: actor, text: text, frames: EstimateTimeout(text), skippable: true})
	return s
}

// MsgTimeout adds an unskippable line shown for exactly frames frames.
func (s *Script) MsgTimeout(actor string, frames int, text string) *Script {
	s.steps = append(s.steps, step{kind: stepMsg, actor: actor, text: text, frames: frames})
	return s
}

// Wait adds an unskippable pause.
func (s *Script) Wait(frames int) *Script {
	s.steps = append(s.steps, step{kind: stepWait, frames: frames})
	return s
}

// WaitSkippable adds a pause that paging cuts short.
func (s *Script) WaitSkippable(frames int) *Script {
	s.steps = append(s.steps, step{kind: stepWait, frames: frames, skippable: true})
	return s
}

// Event raises a named event.
func (s *Script) Event(name string) *Script {
	s.steps = append(s.steps, step{kind: stepEvent, text: name})
	return s
}

// Len returns the number of steps.
func (s *Script) Len() int {
	return len(s.steps)
}

// EstimateTimeout returns how long a skippable line stays up.
func EstimateTimeout(text string) int {
	return 60 + 2*utf8.RuneCountInString(text)
}

// Dialog is a running script.
type Dialog struct {
	script *Script
	log    *log.Logger
	events map[string]*sched.Event
	order  []string
	line   Line
	active bool
	paged  bool
	task   *sched.Task
}

// Start runs script on s. The first step executes immediately.
func Start(s *sched.Scheduler, script *Script, logger *log.Logger) *Dialog {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &Dialog{
		script: script,
		log:    logger,
		events: make(map[string]*sched.Event),
		active: true,
	}
	for _, name := range []string{EventBossAppears, EventMusicChanges, EventFadeoutBegan, EventFadeoutEnded} {
		d.Event(name)
	}
	for _, st := range script.steps {
		if st.kind == stepEvent {
			d.Event(st.text)
		}
	}
	d.log.Debug("dialog started", "script", script.Name, "steps", len(script.steps))
	d.task = s.Go("dialog:"+script.Name, d.run())
	return d
}

// Event returns the named event, creating it if needed.
func (d *Dialog) Event(name string) *sched.Event {
	if e, ok := d.events[name]; ok {
		return e
	}
	e := sched.NewEvent(name)
	d.events[name] = e
	d.order = append(d.order, name)
	return e
}

// Active reports whether the dialog is still on screen.
func (d *Dialog) Active() bool {
	return d != nil && d.active
}

// Line returns the visible line.
func (d *Dialog) Line() Line {
	return d.line
}

// Name returns the script name.
func (d *Dialog) Name() string {
	return d.script.Name
}

// Page skips the current skippable step on the next tick.
func (d *Dialog) Page() {
	if d.Active() {
		d.paged = true
	}
}

// Abort ends the dialog at once, firing its remaining events.
func (d *Dialog) Abort() {
	if !d.Active() {
		return
	}
	d.task.Cancel()
	d.finish()
}

func (d *Dialog) run() sched.Func {
	pc := 0
	start := 0
	entered := false
	fade := 0

	return func(t *sched.Task) sched.Yield {
		for pc < len(d.script.steps) {
			st := d.script.steps[pc]
			if !entered {
				entered = true
				start = t.Frame()
				d.paged = false
				switch st.kind {
				case stepMsg:
					d.line = Line{Actor: st.actor, Text: st.text}
				case stepEvent:
					d.log.Debug("dialog event", "script", d.script.Name, "event", st.text)
					d.events[st.text].SignalOnce()
					pc++
					entered = false
					continue
				}
			}

			if (st.skippable && d.paged) || t.Frame()-start >= st.frames {
				pc++
				entered = false
				continue
			}
			return sched.Wait(1)
		}

		if fade == 0 {
			d.line = Line{}
			d.events[EventFadeoutBegan].SignalOnce()
		}
		if fade < FadeFrames {
			fade++
			return sched.Wait(1)
		}
		d.finish()
		return sched.Done()
	}
}

func (d *Dialog) finish() {
	d.active = false
	d.line = Line{}
	for _, name := range d.order {
		d.events[name].SignalOnce()
	}
	d.log.Debug("dialog ended", "script", d.script.Name)
}
