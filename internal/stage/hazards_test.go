package stage

import (
	"math"
	"testing"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

func spawnBullet(s *Session, pos core.Vec, flags ProjFlags) entity.ID {
	return s.SpawnProjectile(ProjectileSpec{Type: ProjEnemy, Pos: pos, Rule: RuleLinear, Flags: flags})
}

func liveBullets(s *Session) int {
	n := 0
	for _, id := range s.Projectiles() {
		if p, ok := s.Projectile(id); ok && p.Type == ProjEnemy {
			n++
		}
	}
	return n
}

func TestClearHazardsInCircle(t *testing.T) {
	tests := []struct {
		name    string
		flags   ClearFlags
		cleared int
		left    int
	}{
		{"bullets", ClearBullets, 2, 2},
		{"forced", ClearBullets | ClearForce, 3, 1},
		{"lasers only", ClearLasers, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestSession(t, Info{ID: "clear"}, Options{})
			center := complex(200, 200)
			spawnBullet(s, center, 0)
			spawnBullet(s, center+5i, 0)
			spawnBullet(s, center+8, FlagNoClear)
			spawnBullet(s, center+100, 0)

			if got := s.ClearHazardsAt(center, 20, tt.flags); got != tt.cleared {
				t.Errorf("cleared %d, expected %d", got, tt.cleared)
			}
			if got := liveBullets(s); got != tt.left {
				t.Errorf("%d live bullets, expected %d", got, tt.left)
			}
		})
	}
}

func TestClearedBulletsFadeOut(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "fade"}, Options{})
	id := spawnBullet(s, complex(200, 200), 0)
	s.ClearHazards(AllHazards, ClearBullets)

	p, ok := s.Projectile(id)
	if !ok || p.Type != ProjDead || p.Flags&FlagNoCollision == 0 {
		t.Fatalf("cleared bullet = %+v, ok %v", p, ok)
	}
	if n := s.ClearHazards(AllHazards, ClearBullets|ClearForce); n != 0 {
		t.Errorf("dead bullet cleared again: %d", n)
	}
	run(t, s, deadFadeFrames+1)
	if _, ok := s.Projectile(id); ok {
		t.Error("dead bullet never faded out")
	}
}

func TestClearHazardsInEllipse(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "ellipse"}, Options{})
	area := core.Ellipse{Center: complex(200, 200), Axes: complex(100, 10), Angle: math.Pi / 2}
	inside := spawnBullet(s, complex(200, 280), 0)
	outside := spawnBullet(s, complex(280, 200), 0)

	if n := s.ClearHazardsInEllipse(area, ClearBullets); n != 1 {
		t.Fatalf("cleared %d, expected 1", n)
	}
	if p, _ := s.Projectile(inside); p.Type != ProjDead {
		t.Error("bullet inside the rotated ellipse survived")
	}
	if p, _ := s.Projectile(outside); p.Type != ProjEnemy {
		t.Error("bullet outside the ellipse was cleared")
	}
}

func TestLaserPredicates(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "laser"}, Options{})
	id := s.SpawnLaser(LaserSpec{
		Pos:        complex(100, 300),
		Args:       [4]core.Vec{1},
		Speed:      10,
		Timespan:   1000,
		Deathtime:  400,
		ChargeTime: 1000,
	})
	run(t, s, 10)
	l, ok := s.Laser(id)
	if !ok {
		t.Fatal("laser gone")
	}
	if lo, hi := l.Window(s.Frames() - l.BirthTime); lo != 0 || hi != 100 {
		t.Fatalf("Window() = [%v, %v], expected [0, 100]", lo, hi)
	}

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"circle on the curve", InCircle(complex(150, 300), 5), true},
		{"circle beside the curve", InCircle(complex(150, 340), 5), false},
		{"circle past the head", InCircle(complex(300, 300), 5), false},
		{"ellipse across", InEllipse(core.Ellipse{Center: complex(150, 320), Axes: complex(5, 30)}), true},
		{"ellipse away", InEllipse(core.Ellipse{Center: complex(150, 400), Axes: complex(5, 30)}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(s, id); got != tt.want {
				t.Errorf("predicate = %v, expected %v", got, tt.want)
			}
		})
	}

	if n := s.ClearHazardsAt(complex(150, 300), 5, ClearBullets); n != 0 {
		t.Errorf("bullet clear removed %d lasers", n)
	}
	if n := s.ClearHazardsAt(complex(150, 300), 5, ClearLasers); n != 1 {
		t.Errorf("laser clear removed %d", n)
	}
}

func TestLaserExpiresAfterDeathtime(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "laser"}, Options{})
	id := s.SpawnLaser(LaserSpec{Pos: complex(100, 100), Args: [4]core.Vec{1}, Speed: 10, Timespan: 50, Deathtime: 100})
	run(t, s, 14)
	if _, ok := s.Laser(id); !ok {
		t.Fatal("laser expired early")
	}
	run(t, s, 2)
	if _, ok := s.Laser(id); ok {
		t.Error("laser outlived its deathtime")
	}
}

func TestChargedLaserHitsPlayer(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "hit"}, Options{})
	p := s.Player()
	lives := p.Lives
	s.SpawnLaser(LaserSpec{Pos: p.Pos - 100, Args: [4]core.Vec{1}, Speed: 20, Timespan: 300, Deathtime: 300, ChargeTime: 20})
	run(t, s, 15)
	if p.Lives != lives {
		t.Fatal("uncharged laser hurt the player")
	}
	run(t, s, 10)
	if p.Lives != lives-1 {
		t.Errorf("lives = %d, expected a laser hit", p.Lives)
	}
}

func TestOwnerBoundBulletsClearedWithOwner(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "owner"}, Options{})
	owner := s.SpawnEnemy(EnemySpec{Pos: complex(100, 100), HP: 10})
	id := s.SpawnProjectile(ProjectileSpec{Type: ProjEnemy, Pos: complex(200, 200), Owner: owner, Flags: FlagOwnerBound})
	free := s.SpawnProjectile(ProjectileSpec{Type: ProjEnemy, Pos: complex(220, 200), Owner: owner})

	p, _ := s.Projectile(id)
	if got, ok := s.ProjectileOwner(p); !ok || got != owner {
		t.Fatalf("ProjectileOwner() = %v, %v", got, ok)
	}
	s.KillEnemy(owner)
	step(t, s)

	if _, ok := s.ProjectileOwner(p); ok {
		t.Error("owner link resolves after the owner was released")
	}
	if p.Type != ProjDead {
		t.Error("owner-bound bullet survived its owner")
	}
	if fp, _ := s.Projectile(free); fp.Type != ProjEnemy {
		t.Error("unbound bullet was cleared")
	}
}

func TestEllipseClearCoversLaserWidth(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		want  bool
	}{
		{"narrow laser beside the ellipse", 0, false},
		{"wide laser reaching into the ellipse", 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestSession(t, Info{ID: "wide"}, Options{})
			id := s.SpawnLaser(LaserSpec{
				Pos:        complex(100, 300),
				Args:       [4]core.Vec{1},
				Speed:      10,
				Timespan:   1000,
				Deathtime:  400,
				Width:      tt.width,
				ChargeTime: 1000,
			})
			run(t, s, 10)
			area := core.Ellipse{Center: complex(150, 320), Axes: complex(5, 10)}
			if got := InEllipse(area)(s, id); got != tt.want {
				t.Errorf("InEllipse() = %v, expected %v", got, tt.want)
			}
		})
	}
}
