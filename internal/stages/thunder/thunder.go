// Package thunder is the story stage "Above the Storm": fairy waves, a
// midboss, and a boss fight framed by dialogue.
package thunder

import (
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/dialog"
	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/sched"
	"github.com/vovakirdan/tui-danmaku/internal/script"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
	"github.com/vovakirdan/tui-danmaku/internal/stages/common"
)

// ID is the registry key of the stage.
const ID = "thunder"

const (
	trackStage = "thunder"
	trackBoss  = "thunder_boss"
)

func init() {
	registry.Register(ID, New)
}

// run holds per-session content state.
type run struct {
	aimer   *script.Program
	spinner *script.Program
}

// New builds the stage description.
func New() stage.Info {
	r := &run{}
	return stage.Info{
		ID:       ID,
		Number:   1,
		Title:    "Stage 1",
		Subtitle: "Above the Storm",
		Type:     stage.TypeStory,
		Track:    trackStage,
		Procs: stage.Procs{
			Begin: r.begin,
			Event: r.events,
			End:   r.end,
			Draw:  draw,
		},
	}
}

func (r *run) begin(s *stage.Session) {
	r.aimer = script.MustLoad("aimer")
	r.spinner = script.MustLoad("spinner")
}

func (r *run) end(s *stage.Session) {
	s.Logger().Debug("stage finished", "outcome", s.Gameover(), "points", s.Player().Points)
}

func (r *run) events(s *stage.Session) {
	w := s.Config().Engine.ViewportW
	d := s.Difficulty().Index()

	if ok, i := s.FromTo(60, 150, 15); ok {
		side := float64(i & 1)
		s.SpawnEnemy(stage.EnemySpec{
			Pos:      complex(w*side, 70+50*float64(i)),
			HP:       400,
			Visual:   stage.VisualFairy,
			Behavior: stage.EnemyFunc(greeter),
			Args:     [4]core.Vec{complex(3-6*side, 0)},
		})
	}

	if ok, i := s.FromTo(270, 320, 40); ok {
		s.SpawnEnemy(stage.EnemySpec{
			Pos:      complex(w/4+w/2*float64(i), 0),
			HP:       2000,
			Visual:   stage.VisualBigFairy,
			Behavior: stage.EnemyFunc(lightburst),
			Args:     [4]core.Vec{2i},
		})
	}

	if ok, _ := s.FromTo(400, 600, 20); ok {
		y := 200 * s.RNG().Float64()
		s.SpawnEnemy(stage.EnemySpec{
			Pos:      complex(0, y),
			HP:       500,
			Visual:   stage.VisualSwirl,
			Behavior: stage.EnemyFunc(swirl),
			Args:     [4]core.Vec{4 + 1i, complex(70+20*s.RNG().Float64(), 200), core.Dir(-0.05)},
		})
	}

	if ok, i := s.FromTo(700, 800, 50); ok {
		s.SpawnEnemy(stage.EnemySpec{
			Pos:      complex(w*float64(i+1)/4, 0),
			HP:       600,
			Visual:   stage.VisualFairy,
			Behavior: r.aimer.Behavior(),
		})
	}

	if s.At(900) {
		s.SpawnEnemy(stage.EnemySpec{
			Pos:      complex(w/2, 0),
			HP:       3000,
			Visual:   stage.VisualBigFairy,
			Behavior: stage.EnemyFunc(laserFairy),
			Args:     [4]core.Vec{2i},
		})
	}

	if s.At(1100) {
		s.SpawnBoss(midbossName, complex(w/2, -40), midbossAttacks())
	}

	if s.At(1101) {
		s.BeginDialog(postMidbossDialog())
	}

	if ok, _ := s.FromTo(1200, 1500, 60-5*d); ok {
		s.SpawnEnemy(stage.EnemySpec{
			Pos:      complex(w, 200*s.RNG().Float64()),
			HP:       500,
			Visual:   stage.VisualSwirl,
			Behavior: stage.EnemyFunc(swirl),
			Args:     [4]core.Vec{-4 + 1i, complex(70+20*s.RNG().Float64(), 200), core.Dir(0.05)},
		})
	}

	if ok, i := s.FromTo(1250, 1450, 100); ok {
		side := float64(i & 1)
		s.SpawnEnemy(stage.EnemySpec{
			Pos:      complex(w*side, 100),
			HP:       400,
			Visual:   stage.VisualFairy,
			Behavior: stage.EnemyFunc(greeter),
			Args:     [4]core.Vec{complex(6*(1-2*side), 1)},
		})
	}

	if s.At(1300) {
		for _, x := range []float64{w / 4, w * 3 / 4} {
			s.SpawnEnemy(stage.EnemySpec{
				Pos:      complex(x, 110),
				HP:       1500,
				Visual:   stage.VisualBigFairy,
				Behavior: r.spinner.Behavior(),
				FadeIn:   true,
			})
		}
	}

	if s.At(1700) {
		s.KillAllEnemies()
	}

	if s.At(1760) {
		r.bossFight(s)
	}
}

// bossFight opens the pre-boss dialogue; the boss enters when the
// dialogue says so, and the outro follows its defeat.
func (r *run) bossFight(s *stage.Session) {
	w := s.Config().Engine.ViewportW
	d := s.BeginDialog(preBossDialog())
	common.StartBGM(s, d, trackBoss, "Herald of the Storm")
	common.OnBossAppears(s, d, func() {
		s.SpawnBoss(bossName, complex(w/2, -40), bossAttacks())
		defeated := s.BossDefeated()
		s.Go("thunder.outro", sched.Steps(
			func(*sched.Task) sched.Yield { return sched.WaitEvent(defeated) },
			func(*sched.Task) sched.Yield {
				s.UnlockTrack(trackStage)
				s.UnlockTrack(trackBoss)
				outro := s.BeginDialog(postBossDialog())
				return sched.WaitEvent(outro.Event(dialog.EventFadeoutEnded))
			},
			sched.Call(func() { s.Finish(stage.OutcomeScoreScreen) }),
		))
	})
}

// draw paints falling rain and the occasional lightning flash.
func draw(s *stage.Session, c *core.Canvas) {
	w, h := s.Config().Engine.ViewportW, s.Config().Engine.ViewportH
	for i := 0; i < 14; i++ {
		p := complex(s.RNG().Range(0, w), s.RNG().Range(0, h))
		c.Plot(p, '\'', core.ColorBlue)
	}
	if s.Frames()%300 < 3 {
		x := s.RNG().Range(w/4, w*3/4)
		c.Line(complex(x, 0), complex(x+s.RNG().Range(-60, 60), h/2), '/', core.ColorBrightWhite)
	}
}
