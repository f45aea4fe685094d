package stage

import (
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/replay"
)

// Press queues a key press for the next logic frame. Input is ignored in
// playback.
func (s *Session) Press(k core.Key) {
	s.queueInput(replay.EvPress, uint16(k))
}

// Release queues a key release.
func (s *Session) Release(k core.Key) {
	s.queueInput(replay.EvRelease, uint16(k))
}

// SetInflags queues a change of the latched input flags.
func (s *Session) SetInflags(f core.InputFlags) {
	s.queueInput(replay.EvInflags, uint16(f))
}

// SetAxis queues analog axis positions in [-32767, 32767].
func (s *Session) SetAxis(lr, ud int16) {
	s.queueInput(replay.EvAxisLR, uint16(lr))
	s.queueInput(replay.EvAxisUD, uint16(ud))
}

func (s *Session) queueInput(typ replay.EventType, value uint16) {
	if s.mode == replay.ModePlay {
		return
	}
	s.queue = append(s.queue, replay.Event{Type: typ, Value: value})
}

// LogicFrame advances the simulation by one tick. stop is true once the
// session has ended; err carries a fatal error that aborted it.
func (s *Session) LogicFrame() (stop bool, err error) {
	if s.stopped || s.ended {
		return true, nil
	}
	defer func() {
		if ferr := recoverFatal(recover()); ferr != nil {
			s.log.Error("stage aborted", "frame", s.frames, "err", ferr)
			s.gameover = OutcomeAbort
			s.stopped = true
			stop, err = true, ferr
		}
	}()

	s.recordFPS()
	s.processInput()

	if s.gameover != OutcomeTransitioning {
		s.sched.Run()
		if !s.shouldYield() {
			s.info.Procs.Event(s)
		}
		if s.gameover == OutcomeScoreScreen && s.frames-s.gameoverTime == s.cfg.Engine.ScoreDelay {
			s.grantClearBonus()
		}
		if s.info.Type == TypeSpell && s.bossSeen && !s.BossActive() && s.transitionDelay == 0 {
			s.transitionDelay = spellWinDelay
		}
		s.info.Procs.Update(s)
	}

	s.checkDesync()
	s.stageLogic()

	if s.gameover != OutcomeTransitioning {
		if s.stopRequested {
			s.Finish(OutcomeDefeat)
		} else if s.mode == replay.ModePlay {
			s.checkPlaybackEnd()
		}
	}

	s.frames++
	if !s.dialogHolds() && (!s.BossActive() || s.BossFleeing()) {
		s.timer++
	}

	if s.gameover == OutcomeTransitioning {
		s.countdown--
		if s.countdown <= 0 {
			s.gameover = s.pending
			s.stopped = true
			return true, nil
		}
	} else if s.transitionDelay > 0 {
		s.transitionDelay--
		if s.transitionDelay == 0 {
			s.Finish(OutcomeWin)
		}
	}
	return false, nil
}

func (s *Session) recordFPS() {
	if s.mode != replay.ModeRecord || s.frames == 0 || s.cfg.Engine.FPS <= 0 {
		return
	}
	if s.frames%s.cfg.Engine.FPS == 0 {
		s.rstage.Record(uint32(s.frames), replay.EvFPS, s.fps)
	}
}

func (s *Session) processInput() {
	if s.mode == replay.ModePlay {
		s.playbackInput()
		return
	}
	queue := s.queue
	s.queue = nil
	for _, ev := range queue {
		if s.mode == replay.ModeRecord {
			s.rstage.Record(uint32(s.frames), ev.Type, ev.Value)
		}
		s.handleInput(ev.Type, ev.Value)
	}
}

func (s *Session) playbackInput() {
	events, skipped := s.rstage.Next(uint32(s.frames))
	if skipped > 0 {
		s.log.Warn("replay events skipped", "frame", s.frames, "count", skipped)
	}
	for _, ev := range events {
		switch ev.Type {
		case replay.EvOver:
			s.log.Warn("replay ended early", "frame", s.frames)
			s.gameover = OutcomeDefeat
			s.stopped = true
		case replay.EvCheckDesync:
			s.rstage.ExpectDesync(ev.Value)
		case replay.EvFPS:
			s.rstage.SetFPS(ev.Value)
		default:
			s.handleInput(ev.Type, ev.Value)
		}
	}
}

// checkPlaybackEnd finishes playback a fade time ahead of the recorded
// end so that the fade-out lines up with the live run.
func (s *Session) checkPlaybackEnd() {
	last, ok := s.rstage.Last()
	if !ok || last.Type != replay.EvOver {
		return
	}
	if s.frames == int(last.Frame)-s.cfg.Engine.FadeTime {
		o := OutcomeDefeat
		if s.rstage.Cleared() {
			o = OutcomeWin
		}
		s.Finish(o)
	}
}

func (s *Session) checkDesync() {
	if s.rstage == nil {
		return
	}
	value := s.rng.Game().Checksum(s.player.Points)
	recorded, mismatch := s.rstage.CheckDesync(s.mode, uint32(s.frames), value, uint32(s.cfg.Engine.DesyncInterval))
	if mismatch {
		s.desyncs++
		s.log.Warn("replay desync detected", "frame", s.frames, "recorded", recorded, "computed", value)
	}
}

func (s *Session) stageLogic() {
	s.processPlayer()
	s.processBoss()
	s.processEnemies()
	s.processProjectiles()
	s.processItems()
	s.processLasers()
	s.processParticles()

	if s.dialog.Active() && (s.player.Inflags&core.InflagSkip != 0 || s.player.Keys.Held(core.KeySkip)) {
		s.dialog.Page()
	}
	s.audio.Update(s.frames)
}

func (s *Session) grantClearBonus() {
	p := &s.player
	bonus := uint64(p.Lives)*1_000_000 + uint64(p.Bombs)*200_000 + uint64(p.Graze)*100 + uint64(p.Voltage)*1000
	s.clearBonus = bonus
	p.Points += bonus
	s.audio.PlayEffect("bonus")
	s.log.Info("clear bonus", "bonus", bonus, "points", p.Points)
}

// End runs the End proc, stops all tasks and closes the stage log. It is
// safe to call more than once.
func (s *Session) End() {
	if s.ended {
		return
	}
	s.ended = true

	func() {
		defer func() {
			if err := recoverFatal(recover()); err != nil {
				s.log.Error("stage end proc failed", "err", err)
			}
		}()
		s.info.Procs.End(s)
	}()

	if s.dialog.Active() {
		s.dialog.Abort()
	}
	s.sched.CancelAll()
	s.audio.StopAll()

	if s.mode == replay.ModeRecord {
		outcome := s.gameover
		if outcome == OutcomeTransitioning {
			outcome = s.pending
		}
		s.rstage.Record(uint32(s.frames), replay.EvOver, uint16(outcome))
		s.rstage.FinalPoints = s.player.Points
		if outcome == OutcomeWin {
			s.rstage.Flags |= replay.FlagClear
		}
	}
	s.log.Info("stage ended", "outcome", s.gameover, "frames", s.frames, "points", s.player.Points)
}
