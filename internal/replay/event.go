// Package replay records and plays back the input log of stage sessions.
//
// A replay holds one Stage per played stage. Each Stage is a header
// (seed, start time, difficulty, initial player state) plus an ordered
// append-only list of frame-stamped events.
package replay

import "fmt"

// EventType identifies a replay event.
type EventType uint8

const (
	EvPress EventType = iota + 1
	EvRelease
	EvAxisLR
	EvAxisUD
	EvInflags
	EvCheckDesync
	EvFPS
	EvOver
)

var eventNames = map[EventType]string{
	EvPress:       "press",
	EvRelease:     "release",
	EvAxisLR:      "axis_lr",
	EvAxisUD:      "axis_ud",
	EvInflags:     "inflags",
	EvCheckDesync: "check_desync",
	EvFPS:         "fps",
	EvOver:        "over",
}

// String returns the event type name.
func (t EventType) String() string {
	if n, ok := eventNames[t]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// IsInput reports whether the event changes player input state.
func (t EventType) IsInput() bool {
	switch t {
	case EvPress, EvRelease, EvAxisLR, EvAxisUD, EvInflags:
		return true
	}
	return false
}

// Event is one frame-stamped replay entry.
type Event struct {
	Frame uint32    `msgpack:"f"`
	Type  EventType `msgpack:"t"`
	Value uint16    `msgpack:"v"`
}

func (e Event) String() string {
	return fmt.Sprintf("%d:%s:%d", e.Frame, e.Type, e.Value)
}

// Mode is the replay mode of a session.
type Mode uint8

const (
	// ModeOff runs without recording, as in headless tests.
	ModeOff Mode = iota
	ModeRecord
	ModePlay
)

func (m Mode) String() string {
	switch m {
	case ModeRecord:
		return "record"
	case ModePlay:
		return "play"
	default:
		return "off"
	}
}
