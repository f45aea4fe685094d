// Package sched runs cooperative tasks on a single thread, one tick per
// logic frame. Tasks are plain closures that return a Yield describing
// their next suspension, so scheduling is fully deterministic.
package sched

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

// DefaultMaxResumes bounds how often one task may resume within a tick.
const DefaultMaxResumes = 10000

// Scheduler owns a set of tasks.
type Scheduler struct {
	log        *log.Logger
	frame      int
	tasks      []*Task
	timers     []*Task
	queue      []*Task
	running    bool
	maxResumes int
}

// New creates a scheduler. A nil logger discards output.
func New(logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scheduler{log: logger, maxResumes: DefaultMaxResumes}
}

// SetMaxResumes changes the per-tick resume guard.
func (s *Scheduler) SetMaxResumes(n int) {
	if n > 0 {
		s.maxResumes = n
	}
}

// Frame returns the number of completed or running ticks.
func (s *Scheduler) Frame() int {
	return s.frame
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if t.Alive() {
			n++
		}
	}
	return n
}

// Go starts a root task. The routine runs right away up to its first
// suspension point.
func (s *Scheduler) Go(name string, fn Func) *Task {
	return s.start(name, fn, nil, false)
}

// Run advances one tick. Tasks whose frame wait expired resume in the order
// they suspended; tasks woken by events during the tick run after them in
// wake order.
func (s *Scheduler) Run() {
	s.frame++

	kept := s.timers[:0]
	for _, t := range s.timers {
		if t.state != stateWaiting || t.wait.kind != waitFrames {
			continue
		}
		if t.wakeAt <= s.frame {
			t.state = stateQueued
			s.queue = append(s.queue, t)
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = kept

	s.running = true
	for i := 0; i < len(s.queue); i++ {
		t := s.queue[i]
		if t.state != stateQueued {
			continue
		}
		s.resume(t)
	}
	for i := range s.queue {
		s.queue[i] = nil
	}
	s.queue = s.queue[:0]
	s.running = false
	s.compact()
}

func (s *Scheduler) compact() {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Alive() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
}

// CancelAll cancels every live task.
func (s *Scheduler) CancelAll() {
	for _, t := range append([]*Task(nil), s.tasks...) {
		t.Cancel()
	}
	s.tasks = nil
	s.timers = nil
	s.queue = nil
}

// Running reports whether a tick is in progress.
func (s *Scheduler) Running() bool {
	return s.running
}

// Canceled returns a task that is canceled from the start. Its routine
// never runs and its Done event is already canceled.
func (s *Scheduler) Canceled(name string) *Task {
	t := &Task{name: name, sched: s, state: stateCanceled, done: NewEvent(name + ".done")}
	t.done.Cancel()
	return t
}

func (s *Scheduler) start(name string, fn Func, parent *Task, linked bool) *Task {
	t := &Task{
		name:   name,
		sched:  s,
		fn:     fn,
		parent: parent,
		linked: linked,
		done:   NewEvent(name + ".done"),
	}
	if parent != nil {
		parent.children = append(parent.children, t)
	}
	s.tasks = append(s.tasks, t)
	s.resume(t)
	return t
}

func (s *Scheduler) resume(t *Task) {
	if t.tick != s.frame {
		t.tick = s.frame
		t.resumes = 0
	}
	t.resumes++
	if t.resumes > s.maxResumes {
		entity.Fatalf("task %q resumed %d times in tick %d", t.name, t.resumes, s.frame)
	}

	t.state = stateRunning
	t.wait = Yield{}
	y := t.fn(t)
	if t.state == stateCanceled {
		return
	}
	s.suspend(t, y)
}

func (s *Scheduler) suspend(t *Task, y Yield) {
	t.wait = y
	t.result = ResultNone
	switch y.kind {
	case waitDone:
		t.state = stateFinished
		t.end()
		t.done.Signal()

	case waitFrames, waitContinue:
		n := y.frames
		if y.kind == waitContinue || n < 1 {
			n = 1
		}
		t.wait.kind = waitFrames
		t.wakeAt = s.frame + n
		t.state = stateWaiting
		s.timers = append(s.timers, t)

	case waitEvent:
		e := y.event
		switch {
		case e.canceled:
			t.result = ResultCanceled
			s.enqueue(t)
		case e.signals > 0:
			t.result = ResultSignaled
			s.enqueue(t)
		default:
			t.state = stateWaiting
			e.subscribe(t)
		}

	case waitSignal:
		e := y.event
		if e.canceled {
			t.result = ResultCanceled
			s.enqueue(t)
			return
		}
		t.state = stateWaiting
		e.subscribe(t)

	case waitSubtasks:
		if len(t.children) == 0 {
			s.enqueue(t)
			return
		}
		t.state = stateWaiting
	}
}

func (s *Scheduler) enqueue(t *Task) {
	t.state = stateQueued
	s.queue = append(s.queue, t)
}
