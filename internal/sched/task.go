package sched

type taskState uint8

const (
	stateRunning taskState = iota
	stateQueued
	stateWaiting
	stateFinished
	stateCanceled
)

type waitKind uint8

const (
	waitContinue waitKind = iota
	waitFrames
	waitEvent
	waitSignal
	waitSubtasks
	waitDone
)

// Yield is returned by a task routine to say how it suspends.
type Yield struct {
	kind   waitKind
	frames int
	event  *Event
	again  bool
}

// Wait suspends for n scheduler ticks. n < 1 is treated as 1.
func Wait(n int) Yield {
	return Yield{kind: waitFrames, frames: n}
}

// WaitEvent suspends until e fires. If e already fired or was canceled the
// task is requeued immediately and runs later in the same tick.
func WaitEvent(e *Event) Yield {
	return Yield{kind: waitEvent, event: e}
}

// WaitSignal suspends until the next signal of e, ignoring earlier ones.
func WaitSignal(e *Event) Yield {
	return Yield{kind: waitSignal, event: e}
}

// WaitSubtasks suspends until every child spawned by the task has ended.
func WaitSubtasks() Yield {
	return Yield{kind: waitSubtasks}
}

// Done finishes the task.
func Done() Yield {
	return Yield{kind: waitDone}
}

// Continue moves on to the next step of a Steps routine without suspending.
// Returned directly to the scheduler it behaves like Wait(1).
func Continue() Yield {
	return Yield{kind: waitContinue}
}

// Again suspends like y but reruns the current step of a Steps routine
// instead of advancing to the next one.
func Again(y Yield) Yield {
	y.again = true
	return y
}

// Func is one resumption of a task. It runs until its next suspension
// point and returns the Yield describing that suspension. Local state that
// must survive a suspension lives in the closure.
type Func func(t *Task) Yield

// Task is a cooperatively scheduled routine.
type Task struct {
	name     string
	sched    *Scheduler
	fn       Func
	state    taskState
	wait     Yield
	wakeAt   int
	result   EventResult
	parent   *Task
	children []*Task
	linked   bool
	done     *Event

	tick    int
	resumes int
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Scheduler returns the scheduler running the task.
func (t *Task) Scheduler() *Scheduler {
	return t.sched
}

// Frame returns the current scheduler tick.
func (t *Task) Frame() int {
	return t.sched.frame
}

// Result reports how the last event wait ended.
func (t *Task) Result() EventResult {
	return t.result
}

// Finished reports whether the task ran to completion.
func (t *Task) Finished() bool {
	return t.state == stateFinished
}

// Canceled reports whether the task was canceled.
func (t *Task) Canceled() bool {
	return t.state == stateCanceled
}

// Alive reports whether the task has neither finished nor been canceled.
func (t *Task) Alive() bool {
	return t.state != stateFinished && t.state != stateCanceled
}

// Done returns an event signaled when the task finishes and canceled when
// the task is canceled.
func (t *Task) Done() *Event {
	return t.done
}

// Go starts a child task. The child outlives the parent unless canceled;
// the parent can wait for it with WaitSubtasks.
func (t *Task) Go(name string, fn Func) *Task {
	return t.sched.start(name, fn, t, false)
}

// GoLinked starts a child task that is canceled when the parent ends.
func (t *Task) GoLinked(name string, fn Func) *Task {
	return t.sched.start(name, fn, t, true)
}

// BindTo cancels the task when e is canceled.
func (t *Task) BindTo(e *Event) *Task {
	if !t.Alive() {
		return t
	}
	if e.canceled {
		t.Cancel()
		return t
	}
	e.bound = append(e.bound, t)
	return t
}

// Cancel stops the task where it is suspended. The routine is never
// resumed again. Linked children are canceled with it.
func (t *Task) Cancel() {
	if !t.Alive() {
		return
	}
	if t.state == stateWaiting && t.wait.event != nil {
		t.wait.event.unsubscribe(t)
	}
	t.state = stateCanceled
	t.sched.log.Debug("task canceled", "task", t.name, "frame", t.sched.frame)
	t.end()
	t.done.Cancel()
}

func (t *Task) end() {
	for _, c := range t.children {
		if c.linked {
			c.Cancel()
		}
	}
	if t.parent != nil {
		t.parent.childEnded(t)
	}
}

func (t *Task) childEnded(c *Task) {
	for i, ch := range t.children {
		if ch == c {
			t.children = append(t.children[:i], t.children[i+1:]...)
			break
		}
	}
	if t.state == stateWaiting && t.wait.kind == waitSubtasks && len(t.children) == 0 {
		t.sched.enqueue(t)
	}
}

// Steps chains routines. Each step runs once and its Yield suspends the
// task before the next step, unless it returns Continue. A step returning
// Again(y) is rerun after the suspension. The returned routine carries its
// own program counter, so build one per task.
func Steps(steps ...Func) Func {
	pc := 0
	return func(t *Task) Yield {
		for pc < len(steps) {
			y := steps[pc](t)
			if !y.again {
				pc++
			}
			if y.kind != waitContinue {
				return y
			}
		}
		return Done()
	}
}

// Sleep is a step that waits n ticks.
func Sleep(n int) Func {
	return func(*Task) Yield {
		return Wait(n)
	}
}

// Call is a step that runs fn and continues.
func Call(fn func()) Func {
	return func(*Task) Yield {
		fn()
		return Continue()
	}
}

// Repeat runs body count times, waiting interval ticks between calls.
// A negative count repeats until the task is canceled.
func Repeat(count, interval int, body func(t *Task, i int)) Func {
	i := 0
	return func(t *Task) Yield {
		if count >= 0 && i >= count {
			return Done()
		}
		body(t, i)
		i++
		if count >= 0 && i >= count {
			return Done()
		}
		return Wait(interval)
	}
}
