package core

// Key is a gameplay key whose held state is part of the simulation.
// Key transitions are what replays record.
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyFocus
	KeyShot
	KeyBomb
	KeySkip
	NumKeys
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyFocus:
		return "Focus"
	case KeyShot:
		return "Shot"
	case KeyBomb:
		return "Bomb"
	case KeySkip:
		return "Skip"
	default:
		return "Unknown"
	}
}

// KeyState is the set of currently held keys.
type KeyState uint16

// Held reports whether k is held.
func (s KeyState) Held(k Key) bool {
	return s&(1<<k) != 0
}

// Press marks k as held. Returns false if it already was.
func (s *KeyState) Press(k Key) bool {
	if k >= NumKeys || s.Held(k) {
		return false
	}
	*s |= 1 << k
	return true
}

// Release marks k as released. Returns false if it was not held.
func (s *KeyState) Release(k Key) bool {
	if k >= NumKeys || !s.Held(k) {
		return false
	}
	*s &^= 1 << k
	return true
}

// InputFlags are latched per-frame modifiers recorded alongside key events.
type InputFlags uint8

const (
	// InflagSkip pages through dialogue while set.
	InflagSkip InputFlags = 1 << iota
)

// Action represents a platform-level action that never reaches the simulation.
type Action int

const (
	ActionNone    Action = iota
	ActionConfirm        // Enter - confirm selection in menu
	ActionBack           // B, Escape - go back
	ActionPause          // P - pause/unpause the viewer
	ActionStop           // X - end the session (recorded as a defeat)
	ActionQuit           // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionPause:
		return "Pause"
	case ActionStop:
		return "Stop"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
