package storage

import "testing"

func TestStageProgress(t *testing.T) {
	store := openTest(t)

	p, err := store.Progress("thunder", "normal")
	if err != nil {
		t.Fatalf("Progress() failed: %v", err)
	}
	if p.Unlocked || p.NumPlayed != 0 {
		t.Fatalf("fresh progress = %+v", p)
	}

	for i := 0; i < 3; i++ {
		if err := store.RecordStagePlayed("thunder", "normal"); err != nil {
			t.Fatalf("RecordStagePlayed() failed: %v", err)
		}
	}
	if err := store.RecordStageCleared("thunder", "normal"); err != nil {
		t.Fatalf("RecordStageCleared() failed: %v", err)
	}
	store.RecordStagePlayed("thunder", "hard")

	p, _ = store.Progress("thunder", "normal")
	if !p.Unlocked || p.NumPlayed != 3 || p.NumCleared != 1 {
		t.Errorf("progress = %+v", p)
	}

	all, err := store.AllProgress()
	if err != nil {
		t.Fatalf("AllProgress() failed: %v", err)
	}
	if len(all) != 2 || all[0].Difficulty != "hard" || all[1].Difficulty != "normal" {
		t.Errorf("AllProgress() = %+v", all)
	}
}

func TestUnlockTrack(t *testing.T) {
	store := openTest(t)

	for _, name := range []string{"stage1", "boss1", "stage1"} {
		if err := store.UnlockTrack(name); err != nil {
			t.Fatalf("UnlockTrack(%q) failed: %v", name, err)
		}
	}
	tracks, err := store.UnlockedTracks()
	if err != nil {
		t.Fatalf("UnlockedTracks() failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Errorf("tracks = %v, expected two unique names", tracks)
	}
}

func TestReplayIndex(t *testing.T) {
	store := openTest(t)

	entries := []ReplayEntry{
		{Path: "/r/a.dnr", Player: "p", StageID: "thunder", Difficulty: "normal", Seed: 1 << 63, Points: 1000},
		{Path: "/r/b.dnr", Player: "p", StageID: "practice", Difficulty: "hard", Seed: 2, Points: 50, Cleared: true},
	}
	for _, e := range entries {
		if _, err := store.SaveReplay(e); err != nil {
			t.Fatalf("SaveReplay() failed: %v", err)
		}
	}
	// Re-saving a path updates it in place.
	entries[0].Points = 2000
	if _, err := store.SaveReplay(entries[0]); err != nil {
		t.Fatalf("SaveReplay() again failed: %v", err)
	}

	all, err := store.Replays("", 10)
	if err != nil {
		t.Fatalf("Replays() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d replays, expected 2", len(all))
	}
	if all[0].Path != "/r/b.dnr" || !all[0].Cleared {
		t.Errorf("newest replay = %+v", all[0])
	}
	if all[1].Points != 2000 || all[1].Seed != 1<<63 {
		t.Errorf("updated replay = %+v", all[1])
	}

	thunder, _ := store.Replays("thunder", 10)
	if len(thunder) != 1 {
		t.Errorf("thunder replays = %d", len(thunder))
	}
}
