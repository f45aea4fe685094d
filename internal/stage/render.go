package stage

import (
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

// RenderFrame draws the session onto c. It runs with the visual random
// stream active; spawning or starting tasks from here is fatal.
func (s *Session) RenderFrame(c *core.Canvas) (err error) {
	defer func() {
		if ferr := recoverFatal(recover()); ferr != nil {
			s.log.Error("draw aborted", "frame", s.frames, "err", ferr)
			err = ferr
		}
	}()

	s.rng.WithVisual(func() {
		s.inDraw = true
		defer func() { s.inDraw = false }()

		s.info.Procs.Draw(s, c)
		s.lasers.Each(func(_ entity.ID, l *Laser) bool {
			l.draw(c, s.frames-l.BirthTime)
			return true
		})
		s.items.Each(func(_ entity.ID, it *Item) bool {
			it.draw(c)
			return true
		})
		s.enemies.Each(func(_ entity.ID, e *Enemy) bool {
			view := *e
			view.Pos = s.visualPos(e)
			e.Visual.draw(c, view, s.frames-e.BirthTime)
			return true
		})
		if b, ok := s.bosses.Get(s.boss); ok {
			b.draw(c, s)
		}
		s.player.draw(c, s.frames, s.player.Keys.Held(core.KeyFocus))
		s.projs.Each(func(_ entity.ID, p *Projectile) bool {
			p.draw(c)
			return true
		})
		s.particles.Each(func(_ entity.ID, p *Projectile) bool {
			p.draw(c)
			return true
		})
		if s.dialog.Active() {
			if line := s.dialog.Line(); line.Text != "" {
				h := s.cfg.Engine.ViewportH
				c.Text(complex(16, h-48), line.Actor+":", core.ColorBrightYellow)
				c.Text(complex(16, h-32), line.Text, core.ColorBrightWhite)
			}
		}
		if s.gameover == OutcomeScoreScreen && s.frames-s.gameoverTime >= s.cfg.Engine.ScoreDelay {
			c.Text(complex(s.cfg.Engine.ViewportW/4, s.cfg.Engine.ViewportH/2), "STAGE CLEAR", core.ColorBrightYellow)
		}
	})
	return nil
}
