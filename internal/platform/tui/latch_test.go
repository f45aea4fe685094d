package tui

import (
	"testing"

	"github.com/vovakirdan/tui-danmaku/internal/core"
)

func TestKeyLatchHoldsUntilTimeout(t *testing.T) {
	l := NewKeyLatch()
	if !l.Press(core.KeyShot) {
		t.Fatal("first press should be a transition")
	}
	if l.Press(core.KeyShot) {
		t.Fatal("repeat should not be a transition")
	}
	for i := 0; i < defaultHoldFrames-1; i++ {
		if got := l.Tick(); len(got) != 0 {
			t.Fatalf("tick %d released %v", i, got)
		}
	}
	got := l.Tick()
	if len(got) != 1 || got[0] != core.KeyShot {
		t.Fatalf("Tick() = %v, expected [Shot]", got)
	}
	if l.Held(core.KeyShot) {
		t.Error("key still held after release")
	}
}

func TestKeyLatchRepeatExtendsHold(t *testing.T) {
	l := NewKeyLatch()
	l.Press(core.KeyLeft)
	for i := 0; i < defaultHoldFrames-2; i++ {
		l.Tick()
	}
	l.Press(core.KeyLeft) // repeat arrives near the end of the window
	for i := 0; i < repeatHoldFrames-1; i++ {
		if got := l.Tick(); len(got) != 0 {
			t.Fatalf("released early at %d: %v", i, got)
		}
	}
	if got := l.Tick(); len(got) != 1 {
		t.Fatalf("Tick() = %v, expected a release", got)
	}
}

func TestKeyLatchReleaseAll(t *testing.T) {
	l := NewKeyLatch()
	l.Press(core.KeyUp)
	l.Press(core.KeyFocus)
	got := l.ReleaseAll()
	if len(got) != 2 {
		t.Fatalf("ReleaseAll() = %v", got)
	}
	if l.Held(core.KeyUp) || l.Held(core.KeyFocus) {
		t.Error("keys still held")
	}
	if !l.Press(core.KeyUp) {
		t.Error("press after ReleaseAll should be a transition")
	}
	if l.Press(core.NumKeys) {
		t.Error("out of range key accepted")
	}
}
