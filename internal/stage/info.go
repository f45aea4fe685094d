// Package stage runs one stage session: a fixed-rate deterministic
// simulation of enemies, projectiles, lasers, items, a boss and the player,
// driven live or from a replay.
//
// All gameplay state lives in a Session. Stage content interacts with it
// through spawn calls, scheduler tasks and the per-frame procs of its Info.
package stage

import (
	"github.com/vovakirdan/tui-danmaku/internal/core"
)

// Type distinguishes story stages from single-spell practice stages.
type Type uint8

const (
	TypeStory Type = iota
	TypeSpell
)

func (t Type) String() string {
	if t == TypeSpell {
		return "spell"
	}
	return "story"
}

// Outcome is the gameover state of a session.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeDefeat
	OutcomeRestart
	OutcomeScoreScreen
	OutcomeTransitioning
	OutcomeAbort
)

var outcomeNames = [...]string{"none", "win", "defeat", "restart", "scorescreen", "transitioning", "abort"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Procs are the per-stage callbacks. Missing procs are replaced with
// no-op stubs when the session starts.
type Procs struct {
	// Begin runs once when the session starts.
	Begin func(s *Session)
	// Event runs every frame unless a boss fight or dialog holds the timeline.
	Event func(s *Session)
	// Update runs every frame while the stage is not transitioning out.
	Update func(s *Session)
	// End runs once when the session ends.
	End func(s *Session)
	// Draw renders the stage background. It must not change simulation state.
	Draw func(s *Session, c *core.Canvas)
}

// Info describes a playable stage.
type Info struct {
	ID       string
	Number   int
	Title    string
	Subtitle string
	Type     Type
	Track    string // Stage music
	Procs    Procs
}

// Progress persists player progress. Implementations report failures as
// errors; the session logs them and carries on.
type Progress interface {
	RecordStagePlayed(stageID, difficulty string) error
	RecordStageCleared(stageID, difficulty string) error
	UnlockTrack(name string) error
}

type nopProgress struct{}

func (nopProgress) RecordStagePlayed(string, string) error  { return nil }
func (nopProgress) RecordStageCleared(string, string) error { return nil }
func (nopProgress) UnlockTrack(string) error                { return nil }
