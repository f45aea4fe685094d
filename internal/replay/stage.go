package replay

import (
	"errors"
	"time"

	"github.com/vovakirdan/tui-danmaku/internal/config"
)

// ErrNoStage is returned when a replay has no stage with the requested id.
var ErrNoStage = errors.New("replay: stage not found")

// StageFlags are per-stage result bits.
type StageFlags uint8

// FlagClear marks a stage finished with a win.
const FlagClear StageFlags = 1 << 0

// PlayerState is the player snapshot stored in a stage header.
type PlayerState struct {
	Lives     int     `msgpack:"lives"`
	Bombs     int     `msgpack:"bombs"`
	Power     int     `msgpack:"power"`
	Points    uint64  `msgpack:"points"`
	Continues int     `msgpack:"continues"`
	PosX      float64 `msgpack:"x"`
	PosY      float64 `msgpack:"y"`
}

// Stage is the recorded log of one stage.
type Stage struct {
	StageID     string      `msgpack:"stage"`
	StartTime   int64       `msgpack:"start"`
	Seed        uint64      `msgpack:"seed"`
	Difficulty  string      `msgpack:"diff"`
	Player      PlayerState `msgpack:"plr"`
	FinalPoints uint64      `msgpack:"final"`
	Flags       StageFlags  `msgpack:"flags"`
	Events      []Event     `msgpack:"events"`

	// Config is the engine config the stage was recorded with, difficulty
	// preset applied. Playback runs with it instead of the local config.
	Config *config.Config `msgpack:"cfg,omitempty"`

	playpos     int
	desyncCheck uint16
	hasDesync   bool
	fps         uint16
}

// Started returns the recorded start time.
func (s *Stage) Started() time.Time {
	return time.Unix(s.StartTime, 0)
}

// Cleared reports whether the stage was won.
func (s *Stage) Cleared() bool {
	return s.Flags&FlagClear != 0
}

// Len returns the number of events.
func (s *Stage) Len() int {
	return len(s.Events)
}

// Last returns the final event, which is EvOver for a complete log.
func (s *Stage) Last() (Event, bool) {
	if len(s.Events) == 0 {
		return Event{}, false
	}
	return s.Events[len(s.Events)-1], true
}

// Record appends an event.
func (s *Stage) Record(frame uint32, typ EventType, value uint16) {
	s.Events = append(s.Events, Event{Frame: frame, Type: typ, Value: value})
}

// Rewind resets the playback cursor and check state.
func (s *Stage) Rewind() {
	s.playpos = 0
	s.desyncCheck = 0
	s.hasDesync = false
	s.fps = 0
}

// Next returns the events stamped with frame and advances the cursor past
// them. Events left behind for earlier frames are skipped and counted.
func (s *Stage) Next(frame uint32) (events []Event, skipped int) {
	i := s.playpos
	for i < len(s.Events) && s.Events[i].Frame < frame {
		i++
		skipped++
	}
	start := i
	for i < len(s.Events) && s.Events[i].Frame == frame {
		i++
	}
	s.playpos = i
	return s.Events[start:i], skipped
}

// Pending returns the number of events not yet played.
func (s *Stage) Pending() int {
	return len(s.Events) - s.playpos
}

// ExpectDesync stores the checksum read from an EvCheckDesync event.
func (s *Stage) ExpectDesync(value uint16) {
	s.desyncCheck = value
	s.hasDesync = true
}

// SetFPS stores the value of an EvFPS event.
func (s *Stage) SetFPS(fps uint16) {
	s.fps = fps
}

// FPS returns the last played back FPS sample.
func (s *Stage) FPS() uint16 {
	return s.fps
}

// CheckDesync compares or records the desync checksum for frame.
//
// In record mode a checksum event is appended every interval frames. In
// play mode a pending expected checksum is compared with value and then
// cleared; the recorded value and whether it differed are returned.
func (s *Stage) CheckDesync(mode Mode, frame uint32, value uint16, interval uint32) (recorded uint16, mismatch bool) {
	switch mode {
	case ModeRecord:
		if interval > 0 && frame%interval == 0 {
			s.Record(frame, EvCheckDesync, value)
		}
	case ModePlay:
		if !s.hasDesync {
			return 0, false
		}
		recorded = s.desyncCheck
		s.hasDesync = false
		return recorded, recorded != value
	}
	return 0, false
}
