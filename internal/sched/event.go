package sched

// EventResult tells a task why its event wait ended.
type EventResult uint8

const (
	ResultNone EventResult = iota
	ResultSignaled
	ResultCanceled
)

// String returns the result name used in logs.
func (r EventResult) String() string {
	switch r {
	case ResultSignaled:
		return "signaled"
	case ResultCanceled:
		return "canceled"
	default:
		return "none"
	}
}

// Event is a broadcast signal. It can fire many times and remembers that
// it has fired, so WaitEvent on a fired event resumes without blocking.
// A canceled event never fires again and releases every waiter with
// ResultCanceled; tasks bound to it are canceled.
type Event struct {
	name     string
	signals  int
	canceled bool
	waiters  []*Task
	bound    []*Task
}

// NewEvent creates an unfired event.
func NewEvent(name string) *Event {
	return &Event{name: name}
}

// Name returns the event name.
func (e *Event) Name() string {
	return e.name
}

// Fired reports whether the event has been signaled at least once.
func (e *Event) Fired() bool {
	return e.signals > 0
}

// Signals returns how many times the event fired.
func (e *Event) Signals() int {
	return e.signals
}

// Canceled reports whether Cancel was called.
func (e *Event) Canceled() bool {
	return e.canceled
}

// Signal wakes every current waiter. Waiters run later in the same
// scheduler tick when the scheduler is running, otherwise on the next one.
func (e *Event) Signal() {
	if e.canceled {
		return
	}
	e.signals++
	e.release(ResultSignaled)
}

// SignalOnce signals only if the event never fired before.
func (e *Event) SignalOnce() {
	if e.signals > 0 {
		return
	}
	e.Signal()
}

// Cancel permanently disables the event.
func (e *Event) Cancel() {
	if e.canceled {
		return
	}
	e.canceled = true
	e.release(ResultCanceled)

	bound := e.bound
	e.bound = nil
	for _, t := range bound {
		t.Cancel()
	}
}

func (e *Event) release(res EventResult) {
	waiters := e.waiters
	e.waiters = nil
	for _, t := range waiters {
		if t.state != stateWaiting || t.wait.event != e {
			continue
		}
		t.result = res
		t.sched.enqueue(t)
	}
}

func (e *Event) subscribe(t *Task) {
	e.waiters = append(e.waiters, t)
}

func (e *Event) unsubscribe(t *Task) {
	for i, w := range e.waiters {
		if w == t {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return
		}
	}
}
