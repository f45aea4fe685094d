package stage

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-danmaku/internal/audio"
	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/dialog"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
	"github.com/vovakirdan/tui-danmaku/internal/replay"
	"github.com/vovakirdan/tui-danmaku/internal/rng"
	"github.com/vovakirdan/tui-danmaku/internal/sched"
)

// spellWinDelay is how long a spell stage waits after its boss is gone.
const spellWinDelay = 120

// Options configure a session.
type Options struct {
	Config config.Config
	// Seed for the game stream. Ignored in playback, where the recorded
	// seed is used.
	Seed uint64
	// Record, when set, receives a new stage log.
	Record *replay.Replay
	// Playback, when set, drives input from a recorded stage.
	Playback *replay.Stage
	Logger   *log.Logger
	Audio    audio.Player
	Progress Progress
	// Player overrides the initial player state, e.g. when a story run
	// carries over into the next stage.
	Player *replay.PlayerState
	// Now returns the wall clock. Defaults to time.Now.
	Now func() time.Time
}

// Session is the complete state of one stage run.
type Session struct {
	info     Info
	cfg      config.Config
	log      *log.Logger
	audio    audio.Player
	progress Progress

	sched *sched.Scheduler
	rng   *rng.Streams
	reg   *entity.Registry

	enemies   *entity.Pool[Enemy]
	projs     *entity.Pool[Projectile]
	particles *entity.Pool[Projectile]
	lasers    *entity.Pool[Laser]
	items     *entity.Pool[Item]
	bosses    *entity.Pool[Boss]

	boss         entity.ID
	bossSeen     bool
	bossDefeated *sched.Event
	bossStats    BossStats

	player Player
	dialog *dialog.Dialog

	frames int
	timer  int

	mode    replay.Mode
	rstage  *replay.Stage
	queue   []replay.Event
	fps     uint16
	desyncs int

	gameover        Outcome
	pending         Outcome
	countdown       int
	gameoverTime    int
	transitionDelay int
	clearBonus      uint64
	stopRequested   bool
	stopped         bool
	ended           bool

	inDraw bool
}

// New sets up a session for info and runs its Begin proc. Fatal errors
// raised while starting are returned.
func New(info Info, opts Options) (s *Session, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("stage", info.ID)

	cfg := opts.Config
	if cfg.Engine.FPS == 0 {
		cfg = config.Default()
	}
	seed := opts.Seed

	mode := replay.ModeOff
	var rstage *replay.Stage
	switch {
	case opts.Playback != nil:
		mode = replay.ModePlay
		rstage = opts.Playback
		rstage.Rewind()
		seed = rstage.Seed
		diff, perr := config.ParseDifficulty(rstage.Difficulty)
		if perr != nil {
			return nil, fmt.Errorf("stage: cannot play replay: %w", perr)
		}
		config.ApplyPreset(&cfg, diff)
		if rstage.Config != nil {
			if cfg != *rstage.Config {
				logger.Warn("local config differs from the recording; using the recorded one")
			}
			cfg = *rstage.Config
		}
	case opts.Record != nil:
		mode = replay.ModeRecord
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s = &Session{
		info:     info,
		cfg:      cfg,
		log:      logger,
		audio:    opts.Audio,
		progress: opts.Progress,
		sched:    sched.New(logger),
		rng:      rng.NewStreams(seed),
		reg:      entity.NewRegistry(),
		mode:     mode,
		rstage:   rstage,
		fps:      uint16(cfg.Engine.FPS),
	}
	if s.audio == nil {
		s.audio = audio.NewLogPlayer(logger)
	}
	if s.progress == nil {
		s.progress = nopProgress{}
	}
	s.stubProcs()

	defer func() {
		if ferr := recoverFatal(recover()); ferr != nil {
			s, err = nil, ferr
		}
	}()

	pools := cfg.Engine.Pools
	s.enemies = entity.NewPool[Enemy](entity.KindEnemy, pools.Enemies)
	s.projs = entity.NewPool[Projectile](entity.KindProjectile, pools.Projectiles)
	s.particles = entity.NewPool[Projectile](entity.KindParticle, pools.Particles)
	s.lasers = entity.NewPool[Laser](entity.KindLaser, pools.Lasers)
	s.items = entity.NewPool[Item](entity.KindItem, pools.Items)
	s.bosses = entity.NewPool[Boss](entity.KindBoss, 1)
	entity.Attach(s.reg, s.enemies)
	entity.Attach(s.reg, s.projs)
	entity.Attach(s.reg, s.particles)
	entity.Attach(s.reg, s.lasers)
	entity.Attach(s.reg, s.items)
	entity.Attach(s.reg, s.bosses)

	s.player = Player{
		Pos:   complex(cfg.Engine.ViewportW/2, cfg.Engine.ViewportH-64),
		Lives: cfg.Player.Lives,
		Bombs: cfg.Player.Bombs,
		Power: cfg.Player.Power,
	}
	switch {
	case rstage != nil:
		s.player.restore(rstage.Player)
	case opts.Player != nil:
		s.player.restore(*opts.Player)
	}

	if mode == replay.ModeRecord {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		s.rstage = opts.Record.CreateStage(info.ID, now(), seed, string(cfg.Difficulty.Preset), s.player.State())
		recorded := cfg
		s.rstage.Config = &recorded
		if perr := s.progress.RecordStagePlayed(info.ID, string(cfg.Difficulty.Preset)); perr != nil {
			s.log.Error("cannot record stage start", "err", perr)
		}
	}

	s.log.Info("stage started", "mode", mode, "seed", seed, "difficulty", cfg.Difficulty.Preset)
	if info.Track != "" {
		s.audio.PlayTrack(info.Track, info.Title)
	}
	s.info.Procs.Begin(s)
	return s, nil
}

func (s *Session) stubProcs() {
	p := &s.info.Procs
	stub := func(name string) func(*Session) {
		s.log.Debug("stage proc is missing", "proc", name)
		return func(*Session) {}
	}
	if p.Begin == nil {
		p.Begin = stub("begin")
	}
	if p.Event == nil {
		p.Event = stub("event")
	}
	if p.Update == nil {
		p.Update = stub("update")
	}
	if p.End == nil {
		p.End = stub("end")
	}
	if p.Draw == nil {
		s.log.Debug("stage proc is missing", "proc", "draw")
		p.Draw = func(*Session, *core.Canvas) {}
	}
}

// recoverFatal converts a recovered *entity.FatalError into an error and
// re-panics anything else.
func recoverFatal(r any) error {
	if r == nil {
		return nil
	}
	var fe *entity.FatalError
	if err, ok := r.(error); ok && errors.As(err, &fe) {
		return fe
	}
	panic(r)
}

// Info returns the stage description.
func (s *Session) Info() Info { return s.info }

// Config returns the effective configuration.
func (s *Session) Config() config.Config { return s.cfg }

// Difficulty returns the difficulty preset.
func (s *Session) Difficulty() config.Difficulty { return s.cfg.Difficulty.Preset }

// Logger returns the session logger.
func (s *Session) Logger() *log.Logger { return s.log }

// Audio returns the sound player.
func (s *Session) Audio() audio.Player { return s.audio }

// RNG returns the random streams. Gameplay code must only draw from them
// during logic frames.
func (s *Session) RNG() *rng.Streams { return s.rng }

// Scheduler returns the task scheduler.
func (s *Session) Scheduler() *sched.Scheduler { return s.sched }

// Registry returns the weak reference registry.
func (s *Session) Registry() *entity.Registry { return s.reg }

// Player returns the player.
func (s *Session) Player() *Player { return &s.player }

// Frames returns the logic frame counter.
func (s *Session) Frames() int { return s.frames }

// Timer returns the stage timeline counter. It stops during dialogue and
// boss fights.
func (s *Session) Timer() int { return s.timer }

// Mode returns the replay mode.
func (s *Session) Mode() replay.Mode { return s.mode }

// ReplayStage returns the recorded or played stage log, if any.
func (s *Session) ReplayStage() *replay.Stage { return s.rstage }

// Desyncs returns the number of checksum mismatches seen in playback.
func (s *Session) Desyncs() int { return s.desyncs }

// Gameover returns the current outcome.
func (s *Session) Gameover() Outcome { return s.gameover }

// Stopped reports whether the session finished its fade-out.
func (s *Session) Stopped() bool { return s.stopped }

// ClearBonus returns the bonus granted on the score screen.
func (s *Session) ClearBonus() uint64 { return s.clearBonus }

// Dialog returns the running dialogue, or nil.
func (s *Session) Dialog() *dialog.Dialog { return s.dialog }

// SetFPS sets the measured frame rate that RECORD mode samples.
func (s *Session) SetFPS(fps uint16) { s.fps = fps }

// Go starts a scheduler task.
func (s *Session) Go(name string, fn sched.Func) *sched.Task {
	s.mustNotDraw("start a task")
	return s.sched.Go(name, fn)
}

// At reports whether the stage timer equals t.
func (s *Session) At(t int) bool {
	return s.timer == t
}

// FromTo reports whether the timer is within [start, end] on a step
// boundary, and the step index.
func (s *Session) FromTo(start, end, step int) (bool, int) {
	if step < 1 {
		step = 1
	}
	if s.timer < start || s.timer > end || (s.timer-start)%step != 0 {
		return false, 0
	}
	return true, (s.timer - start) / step
}

// BeginDialog starts a dialogue, aborting a running one.
func (s *Session) BeginDialog(script *dialog.Script) *dialog.Dialog {
	s.mustNotDraw("start a dialogue")
	if s.dialog.Active() {
		s.dialog.Abort()
	}
	d := dialog.Start(s.sched, script, s.log)
	s.dialog = d
	s.sched.Go("dialog.cleanup", func(*sched.Task) sched.Yield {
		if !d.Event(dialog.EventFadeoutEnded).Fired() {
			return sched.WaitEvent(d.Event(dialog.EventFadeoutEnded))
		}
		if s.dialog == d {
			s.dialog = nil
		}
		return sched.Done()
	})
	return d
}

// dialogHolds reports whether a dialogue stops the timeline. It lets go
// once the dialogue starts fading out.
func (s *Session) dialogHolds() bool {
	return s.dialog.Active() && !s.dialog.Event(dialog.EventFadeoutBegan).Fired()
}

// shouldYield reports whether the stage event proc must pause.
func (s *Session) shouldYield() bool {
	return (s.BossActive() && !s.BossFleeing()) || s.dialog.Active()
}

// UnlockTrack unlocks a music track for the player. Replays and continued
// runs do not unlock anything.
func (s *Session) UnlockTrack(name string) {
	if s.mode == replay.ModePlay || s.player.Continues != 0 {
		return
	}
	if err := s.progress.UnlockTrack(name); err != nil {
		s.log.Error("cannot unlock track", "track", name, "err", err)
	}
}

// Finish starts the end of the session with the given outcome. It is
// ignored while a transition is already running.
func (s *Session) Finish(o Outcome) {
	if s.gameover == OutcomeTransitioning || s.stopped {
		return
	}
	prev := s.gameover

	if s.mode != replay.ModePlay && prev != OutcomeScoreScreen && (o == OutcomeScoreScreen || o == OutcomeWin) {
		if err := s.progress.RecordStageCleared(s.info.ID, string(s.Difficulty())); err != nil {
			s.log.Error("cannot record stage clear", "err", err)
		}
	}

	s.gameoverTime = s.frames
	if o == OutcomeScoreScreen {
		s.gameover = OutcomeScoreScreen
		s.log.Info("stage cleared", "frame", s.frames)
		return
	}
	s.gameover = OutcomeTransitioning
	s.pending = o
	s.countdown = s.cfg.Engine.FadeTime
	s.transitionDelay = 0
	s.log.Info("stage finishing", "outcome", o, "frame", s.frames)
}

// Stop asks the session to end as a defeat. It takes effect at the end of
// the current logic frame so that playback can stop at the same point.
func (s *Session) Stop() {
	s.stopRequested = true
}

// cleared reports whether the stage is on the score screen or fading out.
func (s *Session) cleared() bool {
	return s.gameover == OutcomeScoreScreen || s.gameover == OutcomeTransitioning
}

func (s *Session) mustNotDraw(what string) {
	if s.inDraw {
		entity.Fatalf("cannot %s from draw code", what)
	}
}

func (s *Session) inViewport(p core.Vec) bool {
	e := s.cfg.Engine
	return core.InViewport(p, e.ViewportW, e.ViewportH, e.ViewportMargin)
}
