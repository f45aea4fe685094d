package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-danmaku/internal/audio"
	"github.com/vovakirdan/tui-danmaku/internal/platform/tui"
	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/replay"
)

var (
	flagReplayStage string
	flagReplayLimit int
)

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Watch a recorded replay",
	Long: `Play back a recorded replay frame for frame.

Without a file, lists the most recent replays from the index.

Controls:
  F         - Toggle fast forward
  P/Esc     - Pause
  Ctrl+S    - Screenshot
  Q/Ctrl+C  - Quit

Examples:
  danmaku replay
  danmaku replay ~/.danmaku/replays/thunder_20260101_120000.dnmk
  danmaku replay run.dnmk --stage thunder`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&flagReplayStage, "stage", "", "Stage of the replay to play (default: first)")
	replayCmd.Flags().IntVar(&flagReplayLimit, "limit", 20, "Number of replays to list")
}

func runReplay(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listReplays()
	}

	r, err := replay.Load(args[0])
	if err != nil {
		return err
	}
	rs, err := pickStage(r, flagReplayStage)
	if err != nil {
		return err
	}
	info, err := registry.Create(rs.StageID)
	if err != nil {
		return err
	}

	rc := runtimeConfig()
	cfg, err := engineConfig(rc)
	if err != nil {
		return err
	}
	logger, closeLog := fileLogger()
	defer closeLog()

	res, err := tui.Run(tui.Options{
		Info:     info,
		Config:   cfg,
		Player:   r.PlayerName,
		Playback: rs,
		Logger:   logger,
		Audio:    audio.NewLogPlayer(logger),
		Width:    rc.ScreenW,
		Height:   rc.ScreenH,
	})
	if err != nil {
		return err
	}
	if res.Desyncs > 0 {
		fmt.Printf("%s: replay desynced %d times\n", rs.StageID, res.Desyncs)
	}
	return nil
}

// pickStage returns the stage with the given id, or the first one.
func pickStage(r *replay.Replay, id string) (*replay.Stage, error) {
	if id != "" {
		return r.Stage(id)
	}
	if len(r.Stages) == 0 {
		return nil, fmt.Errorf("%w: replay is empty", replay.ErrNoStage)
	}
	return r.Stages[0], nil
}

func listReplays() error {
	store := openStore()
	if store == nil {
		return fmt.Errorf("replay index unavailable; pass a replay file")
	}
	defer store.Close()

	entries, err := store.Replays(flagReplayStage, flagReplayLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No replays recorded yet.")
		fmt.Println()
		fmt.Println("Play 'danmaku play' to record one!")
		return nil
	}

	fmt.Printf("  %-16s  %-10s  %-8s  %-12s  %-5s  %s\n", "Date", "Stage", "Rank", "Score", "Clear", "File")
	fmt.Printf("  %-16s  %-10s  %-8s  %-12s  %-5s  %s\n", "----", "-----", "----", "-----", "-----", "----")
	for _, e := range entries {
		cleared := ""
		if e.Cleared {
			cleared = "yes"
		}
		fmt.Printf("  %-16s  %-10s  %-8s  %-12d  %-5s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.StageID, e.Difficulty, e.Points, cleared, e.Path)
	}
	return nil
}
