package stage

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-danmaku/internal/audio"
	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/dialog"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
	"github.com/vovakirdan/tui-danmaku/internal/sched"
)

type fakeProgress struct {
	played  []string
	cleared []string
	tracks  []string
}

func (p *fakeProgress) RecordStagePlayed(id, _ string) error {
	p.played = append(p.played, id)
	return nil
}

func (p *fakeProgress) RecordStageCleared(id, _ string) error {
	p.cleared = append(p.cleared, id)
	return nil
}

func (p *fakeProgress) UnlockTrack(name string) error {
	p.tracks = append(p.tracks, name)
	return nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Player.Lives = 99
	return cfg
}

// newTestSession starts a session with a recorder for sound and a fake
// progress store.
func newTestSession(t *testing.T, info Info, opts Options) (*Session, *audio.Recorder, *fakeProgress) {
	t.Helper()
	rec := audio.NewRecorder()
	prog := &fakeProgress{}
	if opts.Config.Engine.FPS == 0 {
		opts.Config = testConfig()
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	opts.Audio = rec
	opts.Progress = prog
	s, err := New(info, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, rec, prog
}

func step(t *testing.T, s *Session) bool {
	t.Helper()
	stop, err := s.LogicFrame()
	if err != nil {
		t.Fatalf("LogicFrame() at frame %d error = %v", s.Frames(), err)
	}
	return stop
}

func run(t *testing.T, s *Session, frames int) {
	t.Helper()
	for i := 0; i < frames; i++ {
		if step(t, s) {
			return
		}
	}
}

func TestFrameCounterLaw(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "law"}, Options{})

	prev := s.Frames()
	if prev != 0 {
		t.Fatalf("Frames() at start = %d", prev)
	}
	for i := 0; i < 300; i++ {
		if i == 100 {
			s.Finish(OutcomeDefeat)
		}
		stop := step(t, s)
		if got := s.Frames(); got != prev+1 {
			t.Fatalf("tick %d: frames went %d -> %d", i, prev, got)
		}
		prev = s.Frames()
		if stop {
			break
		}
	}
	if !s.Stopped() {
		t.Fatal("session did not stop after Finish")
	}
	if want := 100 + s.Config().Engine.FadeTime; s.Frames() != want {
		t.Errorf("stopped at frame %d, expected %d", s.Frames(), want)
	}
	if s.Gameover() != OutcomeDefeat {
		t.Errorf("Gameover() = %v, expected defeat", s.Gameover())
	}
	if stop, _ := s.LogicFrame(); !stop || s.Frames() != prev {
		t.Error("stopped session kept ticking")
	}
}

func TestMissingProcsAreStubbed(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "empty"}, Options{})
	run(t, s, 3)
	c := core.NewCanvas(core.NewScreen(40, 20), core.NewRect(0, 0, 40, 20), 480, 560)
	if err := s.RenderFrame(c); err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	s.End()
	s.End()
}

func TestFinishIgnoredWhileTransitioning(t *testing.T) {
	s, _, prog := newTestSession(t, Info{ID: "fin"}, Options{})
	s.Finish(OutcomeDefeat)
	s.Finish(OutcomeWin)
	run(t, s, 200)
	if s.Gameover() != OutcomeDefeat {
		t.Errorf("Gameover() = %v, expected the first outcome", s.Gameover())
	}
	if len(prog.cleared) != 0 {
		t.Errorf("cleared = %v, expected none", prog.cleared)
	}
}

func TestScoreScreen(t *testing.T) {
	s, rec, prog := newTestSession(t, Info{ID: "score"}, Options{})
	delay := s.Config().Engine.ScoreDelay

	s.Finish(OutcomeScoreScreen)
	run(t, s, delay+1)
	if s.ClearBonus() == 0 || rec.Count("bonus") != 1 {
		t.Fatalf("clear bonus not granted: bonus %d, sounds %d", s.ClearBonus(), rec.Count("bonus"))
	}

	s.Press(core.KeyShot)
	step(t, s)
	s.Release(core.KeyShot)
	if s.Gameover() != OutcomeScoreScreen {
		t.Fatalf("early shot changed outcome to %v", s.Gameover())
	}

	run(t, s, delay)
	s.Press(core.KeyShot)
	step(t, s)
	if s.Gameover() != OutcomeTransitioning {
		t.Fatalf("Gameover() = %v after late shot, expected transition", s.Gameover())
	}
	run(t, s, 200)
	if s.Gameover() != OutcomeWin {
		t.Errorf("Gameover() = %v, expected win", s.Gameover())
	}
	if len(prog.cleared) != 1 {
		t.Errorf("stage cleared %d times, expected once", len(prog.cleared))
	}
}

func TestSpellStageWinsAfterBoss(t *testing.T) {
	info := Info{ID: "spell", Type: TypeSpell, Procs: Procs{
		Begin: func(s *Session) {
			s.SpawnBoss("test", complex(240, 100), []AttackInfo{{Type: AttackMove, Timeout: 10}})
		},
	}}
	s, _, prog := newTestSession(t, info, Options{})
	for i := 0; i < 1000 && !step(t, s); i++ {
	}
	if s.Gameover() != OutcomeWin {
		t.Fatalf("Gameover() = %v, expected win", s.Gameover())
	}
	want := 10 + 1 + spellWinDelay + s.Config().Engine.FadeTime
	if s.Frames() != want {
		t.Errorf("stopped at frame %d, expected %d", s.Frames(), want)
	}
	if len(prog.cleared) != 1 || prog.cleared[0] != "spell" {
		t.Errorf("cleared = %v", prog.cleared)
	}
}

func TestUnlockTrack(t *testing.T) {
	s, _, prog := newTestSession(t, Info{ID: "t"}, Options{})
	s.UnlockTrack("boss1")
	s.Player().Continues = 1
	s.UnlockTrack("boss2")
	if len(prog.tracks) != 1 || prog.tracks[0] != "boss1" {
		t.Errorf("tracks = %v, expected [boss1]", prog.tracks)
	}
}

func TestTimerHelpers(t *testing.T) {
	var hits []int
	info := Info{ID: "timer", Procs: Procs{
		Event: func(s *Session) {
			if ok, i := s.FromTo(10, 30, 10); ok {
				hits = append(hits, i)
			}
		},
	}}
	s, _, _ := newTestSession(t, info, Options{})
	run(t, s, 50)
	if len(hits) != 3 || hits[0] != 0 || hits[2] != 2 {
		t.Errorf("FromTo hits = %v, expected [0 1 2]", hits)
	}
	if s.Timer() != 50 {
		t.Errorf("Timer() = %d, expected 50", s.Timer())
	}
}

func TestDialogHoldsTimer(t *testing.T) {
	var d *dialog.Dialog
	events := 0
	info := Info{ID: "dlg", Procs: Procs{
		Begin: func(s *Session) {
			d = s.BeginDialog(dialog.NewScript("intro").MsgTimeout("a", 30, "hello"))
		},
		Event: func(*Session) { events++ },
	}}
	s, _, _ := newTestSession(t, info, Options{})

	run(t, s, 10)
	if s.Timer() != 0 || events != 0 {
		t.Fatalf("timer %d, events %d while dialogue is active", s.Timer(), events)
	}
	run(t, s, 100)
	if d.Active() || s.Dialog() != nil {
		t.Fatal("dialogue still attached after fade-out")
	}
	if s.Timer() == 0 || events == 0 {
		t.Errorf("timeline did not resume: timer %d, events %d", s.Timer(), events)
	}
	if !d.Event(dialog.EventFadeoutEnded).Fired() {
		t.Error("fadeout_ended never fired")
	}
}

func TestSpawnFromDrawIsFatal(t *testing.T) {
	info := Info{ID: "draw", Procs: Procs{
		Draw: func(s *Session, _ *core.Canvas) {
			s.SpawnEnemy(EnemySpec{Pos: complex(10, 10), HP: 1})
		},
	}}
	s, _, _ := newTestSession(t, info, Options{})
	before := s.Snapshot()

	c := core.NewCanvas(core.NewScreen(40, 20), core.NewRect(0, 0, 40, 20), 480, 560)
	err := s.RenderFrame(c)
	var fe *entity.FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("RenderFrame() error = %v, expected a fatal error", err)
	}
	if s.RNG().Active() != s.RNG().Game() {
		t.Error("game stream not restored after a failed draw")
	}
	if s.Snapshot() != before {
		t.Error("draw changed session state")
	}
	if _, err := s.LogicFrame(); err != nil {
		t.Errorf("LogicFrame() after failed draw error = %v", err)
	}
}

func TestPoolExhaustionAbortsSession(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.Pools.Enemies = 4
	info := Info{ID: "full", Procs: Procs{
		Update: func(s *Session) {
			s.SpawnEnemy(EnemySpec{Pos: complex(100, 100), HP: 10})
		},
	}}
	s, _, _ := newTestSession(t, info, Options{Config: cfg})

	var err error
	stop := false
	for i := 0; i < 10 && !stop; i++ {
		stop, err = s.LogicFrame()
	}
	var fe *entity.FatalError
	if !stop || !errors.As(err, &fe) {
		t.Fatalf("LogicFrame() = %v, %v, expected a fatal stop", stop, err)
	}
	if s.Gameover() != OutcomeAbort {
		t.Errorf("Gameover() = %v, expected abort", s.Gameover())
	}
}

func TestRenderDoesNotTouchGameStream(t *testing.T) {
	info := Info{ID: "boss", Procs: Procs{
		Begin: func(s *Session) {
			s.SpawnBoss("b", complex(240, 100), []AttackInfo{{Type: AttackNormal, HP: 100, Timeout: 600}})
		},
	}}
	a, _, _ := newTestSession(t, info, Options{})
	b, _, _ := newTestSession(t, info, Options{})
	c := core.NewCanvas(core.NewScreen(40, 20), core.NewRect(0, 0, 40, 20), 480, 560)

	for i := 0; i < 30; i++ {
		step(t, a)
		step(t, b)
		if err := a.RenderFrame(c); err != nil {
			t.Fatal(err)
		}
	}
	if a.Snapshot() != b.Snapshot() {
		t.Errorf("rendering changed the simulation:\n%+v\n%+v", a.Snapshot(), b.Snapshot())
	}
}

func TestTasksRunInLogicFrames(t *testing.T) {
	ticks := 0
	info := Info{ID: "tasks", Procs: Procs{
		Begin: func(s *Session) {
			s.Go("count", sched.Repeat(5, 2, func(*sched.Task, int) { ticks++ }))
		},
	}}
	s, _, _ := newTestSession(t, info, Options{})
	run(t, s, 20)
	if ticks != 5 {
		t.Errorf("ticks = %d, expected 5", ticks)
	}
}

func TestDefeatDuringSpellWinDelay(t *testing.T) {
	info := Info{ID: "spell", Type: TypeSpell, Procs: Procs{
		Begin: func(s *Session) {
			s.SpawnBoss("test", complex(240, 100), []AttackInfo{{Type: AttackMove, Timeout: 10}})
		},
	}}
	s, _, prog := newTestSession(t, info, Options{})
	for i := 0; i < 1000 && s.transitionDelay == 0; i++ {
		if step(t, s) {
			t.Fatal("stage stopped before the win delay")
		}
	}
	run(t, s, 5)

	start := s.Frames()
	s.Finish(OutcomeDefeat)
	for i := 0; i < 1000 && !step(t, s); i++ {
	}
	if s.Gameover() != OutcomeDefeat {
		t.Errorf("Gameover() = %v, expected defeat", s.Gameover())
	}
	if want := start + s.Config().Engine.FadeTime; s.Frames() != want {
		t.Errorf("stopped at frame %d, expected %d", s.Frames(), want)
	}
	if len(prog.cleared) != 0 {
		t.Errorf("cleared = %v, expected none", prog.cleared)
	}
}
