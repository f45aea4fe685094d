package tui

import "github.com/vovakirdan/tui-danmaku/internal/core"

// Terminal key repeat starts after roughly 250-500ms and then fires every
// 30-50ms. A key counts as held until no repeat arrived for this long.
const (
	defaultHoldFrames = 30
	repeatHoldFrames  = 6
)

// KeyLatch turns the press-only key stream of a terminal into press and
// release transitions. A fresh press holds the key long enough to bridge
// the initial repeat delay; each repeat extends it by a shorter window.
type KeyLatch struct {
	holdFrames   int
	repeatFrames int
	held         [core.NumKeys]int // frames left; 0 means released
}

// NewKeyLatch creates a latch with the default hold windows.
func NewKeyLatch() *KeyLatch {
	return &KeyLatch{holdFrames: defaultHoldFrames, repeatFrames: repeatHoldFrames}
}

// Press records a key report. It returns true when the key was not held
// before, i.e. when a press transition must be sent to the session.
func (l *KeyLatch) Press(k core.Key) bool {
	if k >= core.NumKeys {
		return false
	}
	if l.held[k] > 0 {
		if l.held[k] < l.repeatFrames {
			l.held[k] = l.repeatFrames
		}
		return false
	}
	l.held[k] = l.holdFrames
	return true
}

// Tick advances the latch by one frame and returns the keys whose hold
// window ran out.
func (l *KeyLatch) Tick() []core.Key {
	var released []core.Key
	for k := range l.held {
		if l.held[k] == 0 {
			continue
		}
		l.held[k]--
		if l.held[k] == 0 {
			released = append(released, core.Key(k))
		}
	}
	return released
}

// Held reports whether k is currently latched.
func (l *KeyLatch) Held(k core.Key) bool {
	return k < core.NumKeys && l.held[k] > 0
}

// ReleaseAll clears the latch and returns every key that was held.
func (l *KeyLatch) ReleaseAll() []core.Key {
	var released []core.Key
	for k := range l.held {
		if l.held[k] > 0 {
			released = append(released, core.Key(k))
		}
		l.held[k] = 0
	}
	return released
}
