package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-danmaku/internal/audio"
	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/platform/tui"
	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play [stage]",
	Short: "Play a stage",
	Long: `Play the given stage, or pick one from the stage menu.

Every run is recorded. The replay is saved under --replays and indexed in
the progress database together with the score.

Controls:
  Arrows/WASD   - Move (shift+arrows: move focused)
  Z/Space       - Shot
  X             - Bomb
  C             - Focus
  Enter         - Skip dialogue
  P/Esc         - Pause
  Ctrl+X        - Give up
  Q/Ctrl+C      - Quit

Examples:
  danmaku play
  danmaku play thunder
  danmaku play thunder --difficulty lunatic --seed 42
  danmaku play thunder --config ./my-danmaku.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	rc := runtimeConfig()
	cfg, err := engineConfig(rc)
	if err != nil {
		return err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}
	logger, closeLog := fileLogger()
	defer closeLog()

	// A stage on the command line plays once; otherwise loop over the menu.
	if len(args) == 1 {
		_, err := playStage(args[0], cfg, rc, store, logger)
		return err
	}

	preset := cfg.Difficulty.Preset
	for {
		res, err := tui.RunMenu(store, preset, rc.ScreenW, rc.ScreenH)
		if err != nil {
			return err
		}
		preset = res.Difficulty
		switch {
		case res.Quit:
			return nil
		case res.WantsScoreboard:
			back, err := tui.RunScoreboard(store, "", rc.ScreenW, rc.ScreenH)
			if err != nil || !back {
				return err
			}
			continue
		}

		runCfg := cfg
		config.ApplyPreset(&runCfg, preset)
		quit, err := playStage(res.StageID, runCfg, rc, store, logger)
		if err != nil || quit {
			return err
		}
	}
}

// playStage runs one recorded stage. quit reports that the player asked
// to leave the program rather than return to the menu.
func playStage(id string, cfg config.Config, rc core.RuntimeConfig, store *storage.Store, logger *log.Logger) (quit bool, err error) {
	info, err := registry.Create(id)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownStage) {
			return true, fmt.Errorf("%w (run 'danmaku list' to see available stages)", err)
		}
		return true, err
	}

	res, err := tui.Run(tui.Options{
		Info:      info,
		Config:    cfg,
		Seed:      rc.Seed,
		Player:    playerName(),
		Store:     store,
		ReplayDir: expandHome(flagReplayDir),
		Logger:    logger,
		Audio:     audio.NewLogPlayer(logger),
		Width:     rc.ScreenW,
		Height:    rc.ScreenH,
	})
	if err != nil {
		return true, fmt.Errorf("stage %s: %w", id, err)
	}
	if res.ReplayPath != "" {
		fmt.Printf("%s: %v with %d points, replay saved to %s\n", id, res.Outcome, res.Points, res.ReplayPath)
	}
	return res.Quit, nil
}
