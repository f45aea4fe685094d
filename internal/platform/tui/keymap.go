package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-danmaku/internal/core"
)

// PlayKeyMap defines the key bindings of the stage viewer.
type PlayKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Focus      key.Binding
	Shot       key.Binding
	Bomb       key.Binding
	Skip       key.Binding
	Pause      key.Binding
	Stop       key.Binding
	FastFwd    key.Binding
	Screenshot key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k PlayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Shot, k.Bomb, k.Focus, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k PlayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Shot, k.Bomb, k.Focus, k.Skip},
		{k.Pause, k.Stop, k.FastFwd, k.Screenshot, k.Quit},
	}
}

// DefaultPlayKeyMap returns default key bindings.
// Terminals do not report a bare shift, so focus has its own key; shifted
// arrows move and hold focus together.
func DefaultPlayKeyMap() PlayKeyMap {
	return PlayKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w", "shift+up"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s", "shift+down"),
			key.WithHelp("↓/s", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a", "shift+left"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "shift+right"),
			key.WithHelp("→/d", "right"),
		),
		Focus: key.NewBinding(
			key.WithKeys("c", "C"),
			key.WithHelp("c", "focus"),
		),
		Shot: key.NewBinding(
			key.WithKeys("z", "Z", " "),
			key.WithHelp("z", "shot"),
		),
		Bomb: key.NewBinding(
			key.WithKeys("x", "X"),
			key.WithHelp("x", "bomb"),
		),
		Skip: key.NewBinding(
			key.WithKeys("ctrl+@", "enter", "tab"),
			key.WithHelp("enter", "skip dialogue"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("^x", "give up"),
		),
		FastFwd: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fast forward"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^s", "screenshot"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapper translates terminal key messages into gameplay keys and
// platform actions.
type KeyMapper struct {
	keys PlayKeyMap
}

// NewKeyMapper creates a mapper with the default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultPlayKeyMap()}
}

// Keys returns the bindings, for help views.
func (m *KeyMapper) Keys() PlayKeyMap {
	return m.keys
}

// MapKey returns the gameplay key bound to msg.
func (m *KeyMapper) MapKey(msg tea.KeyMsg) (core.Key, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		return core.KeyUp, true
	case key.Matches(msg, m.keys.Down):
		return core.KeyDown, true
	case key.Matches(msg, m.keys.Left):
		return core.KeyLeft, true
	case key.Matches(msg, m.keys.Right):
		return core.KeyRight, true
	case key.Matches(msg, m.keys.Focus):
		return core.KeyFocus, true
	case key.Matches(msg, m.keys.Shot):
		return core.KeyShot, true
	case key.Matches(msg, m.keys.Bomb):
		return core.KeyBomb, true
	case key.Matches(msg, m.keys.Skip):
		return core.KeySkip, true
	}
	return 0, false
}

// MapAction returns the platform action bound to msg.
func (m *KeyMapper) MapAction(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return core.ActionQuit
	case key.Matches(msg, m.keys.Pause):
		return core.ActionPause
	case key.Matches(msg, m.keys.Stop):
		return core.ActionStop
	}
	return core.ActionNone
}

// MenuAction represents menu navigation actions.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionLeft
	MenuActionRight
	MenuActionSelect
	MenuActionBack
	MenuActionScoreboard
	MenuActionQuit
)

// MapKeyToMenuAction maps a key message to a menu action.
func (m *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "up", "k", "w":
		return MenuActionUp
	case "down", "j", "s":
		return MenuActionDown
	case "left", "h", "a":
		return MenuActionLeft
	case "right", "l", "d":
		return MenuActionRight
	case "enter", " ", "z":
		return MenuActionSelect
	case "esc", "b":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	case "q", "ctrl+c":
		return MenuActionQuit
	}
	return MenuActionNone
}
