package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-danmaku/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMapKey(t *testing.T) {
	m := NewKeyMapper()
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want core.Key
		ok   bool
	}{
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, core.KeyUp, true},
		{"wasd left", runeKey('a'), core.KeyLeft, true},
		{"shift right", tea.KeyMsg{Type: tea.KeyShiftRight}, core.KeyRight, true},
		{"shot", runeKey('z'), core.KeyShot, true},
		{"bomb", runeKey('x'), core.KeyBomb, true},
		{"focus", runeKey('c'), core.KeyFocus, true},
		{"skip", tea.KeyMsg{Type: tea.KeyEnter}, core.KeySkip, true},
		{"unbound", runeKey('m'), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.MapKey(tt.msg)
			if ok != tt.ok || got != tt.want {
				t.Errorf("MapKey() = %v, %v, expected %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMapAction(t *testing.T) {
	m := NewKeyMapper()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{runeKey('q'), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{runeKey('p'), core.ActionPause},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionPause},
		{tea.KeyMsg{Type: tea.KeyCtrlX}, core.ActionStop},
		{runeKey('z'), core.ActionNone},
	}
	for _, tt := range tests {
		if got := m.MapAction(tt.msg); got != tt.want {
			t.Errorf("MapAction(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
		}
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	m := NewKeyMapper()
	tests := []struct {
		msg  tea.KeyMsg
		want MenuAction
	}{
		{tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{runeKey('k'), MenuActionUp},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionScoreboard},
		{runeKey('l'), MenuActionRight},
		{runeKey('?'), MenuActionNone},
	}
	for _, tt := range tests {
		if got := m.MapKeyToMenuAction(tt.msg); got != tt.want {
			t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
		}
	}
}
