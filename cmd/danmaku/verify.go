package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-danmaku/internal/audio"
	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/replay"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
)

// verifySlack is the number of frames a playback may run past the end of
// its log before it counts as stuck.
const verifySlack = 600

var errVerify = errors.New("replay verification failed")

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check a replay by re-simulating it",
	Long: `Re-simulate every stage of a replay without a terminal and compare
the result with what was recorded: the final score and the desync checks
embedded in the log.

Examples:
  danmaku verify run.dnmk
  danmaku verify run.dnmk --debug`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

// verifyReport is the outcome of one re-simulated stage.
type verifyReport struct {
	StageID  string
	Outcome  stage.Outcome
	Frames   int
	Points   uint64
	Expected uint64
	Desyncs  int
	FPS      replay.FPSStats
}

// OK reports whether the playback matched the recording.
func (r verifyReport) OK() bool {
	return r.Desyncs == 0 && r.Points == r.Expected
}

func runVerify(_ *cobra.Command, args []string) error {
	r, err := replay.Load(args[0])
	if err != nil {
		return err
	}
	cfg, err := engineConfig(runtimeConfig())
	if err != nil {
		return err
	}
	logger := stderrLogger()
	if !flagDebug {
		logger.SetLevel(log.WarnLevel)
	}

	fmt.Printf("Replay by %s, %d stage(s)\n\n", r.PlayerName, len(r.Stages))
	failed := 0
	for _, rs := range r.Stages {
		rep, err := verifyStage(rs, cfg, logger)
		if err != nil {
			fmt.Printf("  %-10s  error: %v\n", rs.StageID, err)
			failed++
			continue
		}
		status := "ok"
		if !rep.OK() {
			status = "MISMATCH"
			failed++
		}
		fmt.Printf("  %-10s  %-8s  frames %-6d  points %d/%d  desyncs %d  %s\n",
			rep.StageID, rep.Outcome, rep.Frames, rep.Points, rep.Expected, rep.Desyncs, status)
		if rep.FPS.Samples > 0 {
			fmt.Printf("  %-10s  fps mean %.1f  stddev %.2f  min %.0f  max %.0f\n",
				"", rep.FPS.Mean, rep.FPS.StdDev, rep.FPS.Min, rep.FPS.Max)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d stage(s)", errVerify, failed, len(r.Stages))
	}
	return nil
}

// verifyStage plays rs back headlessly until the session stops.
func verifyStage(rs *replay.Stage, cfg config.Config, logger *log.Logger) (verifyReport, error) {
	rep := verifyReport{StageID: rs.StageID, Expected: rs.FinalPoints, FPS: rs.FPSStats()}

	info, err := registry.Create(rs.StageID)
	if err != nil {
		return rep, err
	}
	sess, err := stage.New(info, stage.Options{
		Config:   cfg,
		Playback: rs,
		Logger:   logger,
		Audio:    audio.NewRecorder(),
	})
	if err != nil {
		return rep, err
	}

	limit := verifySlack + 2*sess.Config().Engine.FadeTime
	if last, ok := rs.Last(); ok {
		limit += int(last.Frame)
	}
	for {
		stop, err := sess.LogicFrame()
		if err != nil {
			return rep, err
		}
		if stop {
			break
		}
		if sess.Frames() > limit {
			return rep, fmt.Errorf("playback did not end by frame %d", limit)
		}
	}
	sess.End()

	rep.Outcome = sess.Gameover()
	rep.Frames = sess.Frames()
	rep.Points = sess.Player().Points
	rep.Desyncs = sess.Desyncs()
	return rep, nil
}
