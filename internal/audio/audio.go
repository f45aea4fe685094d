// Package audio is the sound interface seen by the simulation.
// Playback is fire-and-forget: failures are logged by the implementation
// and never reach gameplay code.
package audio

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"
)

// LoopTimeout is how many frames a loop keeps playing without being
// retriggered.
const LoopTimeout = 10

// PlayID identifies one effect playback. Zero means nothing played.
type PlayID uint64

// Track describes the current background music.
type Track struct {
	Name  string
	Title string
}

// Player plays named effects and music.
type Player interface {
	PlayEffect(name string) PlayID
	PlayLoop(name string)
	StopEffect(id PlayID)
	PlayTrack(name, title string)
	CurrentTrack() (Track, bool)
	// Update advances loop timeouts once per logic frame.
	Update(frame int)
	StopAll()
}

// LogPlayer is a Player without output device. It keeps the playback
// bookkeeping and logs every call at debug level.
type LogPlayer struct {
	log   *log.Logger
	next  PlayID
	loops map[string]int
	track *Track
	frame int
}

// NewLogPlayer creates a LogPlayer. A nil logger discards output.
func NewLogPlayer(logger *log.Logger) *LogPlayer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &LogPlayer{log: logger, loops: make(map[string]int)}
}

// PlayEffect logs a one-shot effect and returns its playback ID.
func (p *LogPlayer) PlayEffect(name string) PlayID {
	p.next++
	p.log.Debug("sfx", "name", name, "id", p.next)
	return p.next
}

// PlayLoop starts or retriggers a looping effect for this frame.
func (p *LogPlayer) PlayLoop(name string) {
	if _, ok := p.loops[name]; !ok {
		p.log.Debug("sfx loop start", "name", name)
	}
	p.loops[name] = p.frame
}

// StopEffect stops the effect with the given ID. Zero is ignored.
func (p *LogPlayer) StopEffect(id PlayID) {
	if id != 0 {
		p.log.Debug("sfx stop", "id", id)
	}
}

// PlayTrack switches the background music.
func (p *LogPlayer) PlayTrack(name, title string) {
	p.track = &Track{Name: name, Title: title}
	p.log.Debug("bgm", "name", name, "title", title)
}

// CurrentTrack returns the music playing, if any.
func (p *LogPlayer) CurrentTrack() (Track, bool) {
	if p.track == nil {
		return Track{}, false
	}
	return *p.track, true
}

// Update ends loops not retriggered within LoopTimeout frames.
func (p *LogPlayer) Update(frame int) {
	p.frame = frame
	var expired []string
	for name, last := range p.loops {
		if frame-last > LoopTimeout {
			expired = append(expired, name)
		}
	}
	sort.Strings(expired)
	for _, name := range expired {
		delete(p.loops, name)
		p.log.Debug("sfx loop end", "name", name)
	}
}

// StopAll ends every loop and the music.
func (p *LogPlayer) StopAll() {
	clear(p.loops)
	p.track = nil
}

// Looping returns the names of loops still playing, sorted.
func (p *LogPlayer) Looping() []string {
	names := make([]string, 0, len(p.loops))
	for name := range p.loops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recorder is a Player that keeps a log of effect names, for tests.
type Recorder struct {
	*LogPlayer
	Effects []string
	Loops   []string
	Tracks  []string
}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{LogPlayer: NewLogPlayer(nil)}
}

// PlayEffect records name and plays it.
func (r *Recorder) PlayEffect(name string) PlayID {
	r.Effects = append(r.Effects, name)
	return r.LogPlayer.PlayEffect(name)
}

// PlayLoop records name and plays it.
func (r *Recorder) PlayLoop(name string) {
	r.Loops = append(r.Loops, name)
	r.LogPlayer.PlayLoop(name)
}

// PlayTrack records name and plays it.
func (r *Recorder) PlayTrack(name, title string) {
	r.Tracks = append(r.Tracks, name)
	r.LogPlayer.PlayTrack(name, title)
}

// Count returns how many times effect or loop name was triggered.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, e := range r.Effects {
		if e == name {
			n++
		}
	}
	for _, e := range r.Loops {
		if e == name {
			n++
		}
	}
	return n
}
