package replay

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tui-danmaku/internal/config"
)

func sampleReplay() *Replay {
	r := New("tester")
	s := r.CreateStage("thunder", time.Unix(1700000000, 0), 0xC0FFEE, "normal",
		PlayerState{Lives: 3, Bombs: 2, Power: 100, PosX: 240, PosY: 448})
	s.Record(0, EvFPS, 60)
	s.Record(10, EvPress, 5)
	s.Record(10, EvPress, 4)
	s.Record(20, EvRelease, 5)
	s.Record(100, EvFPS, 58)
	s.Record(200, EvOver, 0)
	s.FinalPoints = 123456
	s.Flags |= FlagClear
	return r
}

func TestCodecRoundTrip(t *testing.T) {
	r := sampleReplay()
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), Magic) {
		t.Fatal("encoded replay should start with the magic")
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.PlayerName != "tester" || len(got.Stages) != 1 {
		t.Fatalf("decoded replay = %+v", got)
	}
	s := got.Stages[0]
	want := r.Stages[0]
	if s.StageID != want.StageID || s.Seed != want.Seed || s.Difficulty != want.Difficulty {
		t.Errorf("header mismatch: %+v vs %+v", s, want)
	}
	if s.Player != want.Player {
		t.Errorf("player state = %+v, expected %+v", s.Player, want.Player)
	}
	if !s.Cleared() || s.FinalPoints != 123456 {
		t.Errorf("result mismatch: cleared=%v points=%d", s.Cleared(), s.FinalPoints)
	}
	if len(s.Events) != len(want.Events) {
		t.Fatalf("events = %d, expected %d", len(s.Events), len(want.Events))
	}
	for i := range s.Events {
		if s.Events[i] != want.Events[i] {
			t.Errorf("event %d = %v, expected %v", i, s.Events[i], want.Events[i])
		}
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{name: "bad magic", input: []byte("NOTAREPLAYFILE"), want: ErrBadMagic},
		{name: "future version", input: append([]byte(Magic), Version+1, 0x80), want: ErrVersion},
		{name: "zero version", input: append([]byte(Magic), 0, 0x80), want: ErrVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("Read() error = %v, expected %v", err, tt.want)
			}
		})
	}

	if _, err := Read(bytes.NewReader([]byte("DN"))); err == nil {
		t.Error("short input should fail")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replays", FileName("thunder", time.Unix(0, 0)))
	if err := Save(path, sampleReplay()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := r.Stage("thunder"); err != nil {
		t.Errorf("Stage(thunder): %v", err)
	}
	if _, err := r.Stage("missing"); !errors.Is(err, ErrNoStage) {
		t.Errorf("Stage(missing) error = %v, expected ErrNoStage", err)
	}
	if r.FinalPoints() != 123456 {
		t.Errorf("FinalPoints() = %d", r.FinalPoints())
	}
}

func TestPlaybackCursor(t *testing.T) {
	s := sampleReplay().Stages[0]

	evs, skipped := s.Next(0)
	if len(evs) != 1 || skipped != 0 {
		t.Fatalf("Next(0) = %v, %d", evs, skipped)
	}
	if evs, _ := s.Next(5); len(evs) != 0 {
		t.Errorf("Next(5) = %v, expected nothing", evs)
	}
	evs, _ = s.Next(10)
	if len(evs) != 2 || evs[0].Value != 5 || evs[1].Value != 4 {
		t.Errorf("Next(10) = %v, expected both presses in order", evs)
	}

	// Jumping past frame 20 skips its event.
	evs, skipped = s.Next(100)
	if skipped != 1 || len(evs) != 1 || evs[0].Type != EvFPS {
		t.Errorf("Next(100) = %v, skipped %d", evs, skipped)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, expected 1", s.Pending())
	}

	s.Rewind()
	if s.Pending() != s.Len() {
		t.Error("Rewind should reset the cursor")
	}
}

func TestCheckDesync(t *testing.T) {
	rec := &Stage{}
	for f := uint32(0); f < 200; f++ {
		rec.CheckDesync(ModeRecord, f, uint16(f), 60)
	}
	if rec.Len() != 4 {
		t.Fatalf("record mode wrote %d checks, expected 4 (frames 0, 60, 120, 180)", rec.Len())
	}

	play := &Stage{}
	if _, mismatch := play.CheckDesync(ModePlay, 0, 1, 60); mismatch {
		t.Error("no expected checksum means no mismatch")
	}
	play.ExpectDesync(7)
	if _, mismatch := play.CheckDesync(ModePlay, 60, 7, 60); mismatch {
		t.Error("equal checksum reported as mismatch")
	}
	play.ExpectDesync(7)
	recorded, mismatch := play.CheckDesync(ModePlay, 120, 8, 60)
	if !mismatch || recorded != 7 {
		t.Errorf("CheckDesync = %d, %v; expected 7, true", recorded, mismatch)
	}
	if _, mismatch := play.CheckDesync(ModePlay, 121, 9, 60); mismatch {
		t.Error("expected checksum should be consumed by the check")
	}
}

func TestFPSStats(t *testing.T) {
	s := sampleReplay().Stages[0]
	st := s.FPSStats()
	if st.Samples != 2 || st.Min != 58 || st.Max != 60 {
		t.Fatalf("FPSStats() = %+v", st)
	}
	// 60 held for 100 frames, 58 for 100 frames.
	if st.Mean != 59 {
		t.Errorf("Mean = %v, expected 59", st.Mean)
	}
	if (&Stage{}).FPSStats().Samples != 0 {
		t.Error("empty stage should have no samples")
	}
}

func TestExport(t *testing.T) {
	r := sampleReplay()

	var events bytes.Buffer
	if err := ExportEvents(&events, r); err != nil {
		t.Fatalf("ExportEvents: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(events.String()), "\n")
	if len(lines) != 7 {
		t.Fatalf("event export has %d lines, expected header + 6", len(lines))
	}
	if lines[0] != "stage,frame,type,value" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "thunder,10,press,5" {
		t.Errorf("row = %q", lines[2])
	}

	var summary bytes.Buffer
	if err := ExportSummary(&summary, r); err != nil {
		t.Fatalf("ExportSummary: %v", err)
	}
	if !strings.Contains(summary.String(), "thunder,normal,0xc0ffee") {
		t.Errorf("summary = %q", summary.String())
	}
	row := Summarize(r.Stages[0])
	if row.Inputs != 3 || row.Frames != 200 || !row.Cleared {
		t.Errorf("Summarize() = %+v", row)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	r := sampleReplay()
	cfg := config.Default()
	cfg.Engine.FadeTime = 15
	config.ApplyPreset(&cfg, config.DifficultyLunatic)
	r.Stages[0].Config = &cfg

	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c := got.Stages[0].Config; c == nil || *c != cfg {
		t.Errorf("Config = %+v, expected %+v", c, cfg)
	}

	buf.Reset()
	if err := Write(&buf, sampleReplay()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err = Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Stages[0].Config != nil {
		t.Error("stage without config decoded with one")
	}
}
