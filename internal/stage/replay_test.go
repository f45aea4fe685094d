package stage

import (
	"bytes"
	"testing"
	"time"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/replay"
	"github.com/vovakirdan/tui-danmaku/internal/sched"
)

// busyStage spawns enemies that fire random spreads, so any divergence
// of the game stream shows up in the outcome.
func busyStage() Info {
	return Info{ID: "busy", Procs: Procs{
		Event: func(s *Session) {
			if ok, _ := s.FromTo(0, 10000, 40); !ok {
				return
			}
			x := s.RNG().Range(40, 440)
			id := s.SpawnEnemy(EnemySpec{
				Pos:    complex(x, 20),
				HP:     60,
				Visual: VisualFairy,
				Move:   MoveLinear(complex(s.RNG().Range(-1, 1), 1.2)),
			})
			s.EnemyTask(id, "spread", sched.Repeat(-1, 25, func(*sched.Task, int) {
				e, ok := s.Enemy(id)
				if !ok {
					return
				}
				base := s.RNG().Angle()
				for i := 0; i < 6; i++ {
					s.Shoot(e.Pos, core.Scale(core.Dir(base+float64(i)), 2.5), '*', core.ColorRed)
				}
			}))
		},
	}}
}

func TestRecordAndReplayInputFrames(t *testing.T) {
	presses := map[int]core.Key{10: core.KeyLeft, 200: core.KeyShot, 450: core.KeyFocus}
	rec := replay.New("tester")
	clock := func() time.Time { return time.Unix(1700000000, 0) }

	live, _, prog := newTestSession(t, busyStage(), Options{Record: rec, Now: clock})
	if len(prog.played) != 1 {
		t.Fatalf("stage start not recorded: %v", prog.played)
	}
	for live.Frames() < 500 {
		if k, ok := presses[live.Frames()]; ok {
			live.Press(k)
		}
		step(t, live)
	}
	live.Stop()
	for !step(t, live) {
	}
	want := live.Snapshot()
	live.End()

	rstage, err := rec.Stage("busy")
	if err != nil {
		t.Fatal(err)
	}
	var inputs []replay.Event
	for _, ev := range rstage.Events {
		if ev.Type.IsInput() {
			inputs = append(inputs, ev)
		}
	}
	if len(inputs) != 3 {
		t.Fatalf("recorded %d input events, expected 3: %v", len(inputs), inputs)
	}
	for _, ev := range inputs {
		if k, ok := presses[int(ev.Frame)]; !ok || ev.Type != replay.EvPress || core.Key(ev.Value) != k {
			t.Errorf("unexpected input event %v", ev)
		}
	}
	last, _ := rstage.Last()
	if last.Type != replay.EvOver || int(last.Frame) != want.Frames {
		t.Fatalf("last event = %v, expected over at %d", last, want.Frames)
	}

	// Round-trip through the file codec before playing back.
	var buf bytes.Buffer
	if err := replay.Write(&buf, rec); err != nil {
		t.Fatal(err)
	}
	loaded, err := replay.Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	pstage, err := loaded.Stage("busy")
	if err != nil {
		t.Fatal(err)
	}

	play, _, pprog := newTestSession(t, busyStage(), Options{Playback: pstage, Seed: 7})
	var changed []int
	keys := play.Player().Keys
	for {
		stop := step(t, play)
		if k := play.Player().Keys; k != keys {
			changed = append(changed, play.Frames()-1)
			keys = k
		}
		if stop {
			break
		}
	}

	if len(changed) != 3 || changed[0] != 10 || changed[1] != 200 || changed[2] != 450 {
		t.Errorf("key state changed at frames %v, expected [10 200 450]", changed)
	}
	if got := play.Snapshot(); got != want {
		t.Errorf("playback diverged:\nlive %+v\nplay %+v", want, got)
	}
	if play.Desyncs() != 0 {
		t.Errorf("Desyncs() = %d", play.Desyncs())
	}
	if len(pprog.played) != 0 || len(pprog.cleared) != 0 {
		t.Error("playback touched player progress")
	}
	if play.Player().Points != pstage.FinalPoints {
		t.Errorf("final points %d, recorded %d", play.Player().Points, pstage.FinalPoints)
	}
}

func TestPlaybackIgnoresLiveInput(t *testing.T) {
	rec := replay.New("tester")
	live, _, _ := newTestSession(t, Info{ID: "quiet"}, Options{Record: rec})
	run(t, live, 30)
	live.Stop()
	for !step(t, live) {
	}
	live.End()

	rstage, _ := rec.Stage("quiet")
	play, _, _ := newTestSession(t, Info{ID: "quiet"}, Options{Playback: rstage})
	play.Press(core.KeyLeft)
	step(t, play)
	if play.Player().Keys.Held(core.KeyLeft) {
		t.Error("live input reached a playback session")
	}
}

func TestDesyncIsOnlyAWarning(t *testing.T) {
	rec := replay.New("tester")
	live, _, _ := newTestSession(t, busyStage(), Options{Record: rec})
	run(t, live, 150)
	live.Stop()
	for !step(t, live) {
	}
	want := live.Frames()
	live.End()

	rstage, _ := rec.Stage("busy")
	for i := range rstage.Events {
		if rstage.Events[i].Type == replay.EvCheckDesync && rstage.Events[i].Frame == 60 {
			rstage.Events[i].Value ^= 0xFFFF
		}
	}
	play, _, _ := newTestSession(t, busyStage(), Options{Playback: rstage})
	for !step(t, play) {
	}
	if play.Desyncs() != 1 {
		t.Errorf("Desyncs() = %d, expected 1", play.Desyncs())
	}
	if play.Frames() != want {
		t.Errorf("playback stopped at %d, expected %d", play.Frames(), want)
	}
}

func TestRecordedWinSetsClearFlag(t *testing.T) {
	rec := replay.New("tester")
	s, _, _ := newTestSession(t, Info{ID: "win"}, Options{Record: rec})
	step(t, s)
	s.Finish(OutcomeWin)
	for !step(t, s) {
	}
	s.End()

	rstage, _ := rec.Stage("win")
	if !rstage.Cleared() {
		t.Error("won stage not flagged as cleared")
	}
	play, _, _ := newTestSession(t, Info{ID: "win"}, Options{Playback: rstage})
	for !step(t, play) {
	}
	if play.Gameover() != OutcomeWin {
		t.Errorf("playback outcome = %v, expected win", play.Gameover())
	}
}

func TestPlaybackUsesRecordedConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.FadeTime = 15
	rec := replay.New("tester")
	live, _, _ := newTestSession(t, busyStage(), Options{Config: cfg, Record: rec})
	run(t, live, 120)
	live.Stop()
	for !step(t, live) {
	}
	want := live.Snapshot()
	live.End()

	rstage, err := rec.Stage("busy")
	if err != nil {
		t.Fatal(err)
	}
	if rstage.Config == nil || rstage.Config.Engine.FadeTime != 15 {
		t.Fatalf("recorded config = %+v", rstage.Config)
	}

	local := testConfig()
	local.Engine.FadeTime = 90
	play, _, _ := newTestSession(t, busyStage(), Options{Config: local, Playback: rstage})
	if play.Config() != *rstage.Config {
		t.Errorf("playback config = %+v, expected the recorded one", play.Config())
	}
	for !step(t, play) {
	}
	if got := play.Snapshot(); got != want {
		t.Errorf("playback diverged:\nlive %+v\nplay %+v", want, got)
	}
	if play.Desyncs() != 0 {
		t.Errorf("Desyncs() = %d", play.Desyncs())
	}
}
