package stage

import (
	"testing"

	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/entity"
	"github.com/vovakirdan/tui-danmaku/internal/sched"
)

type signalCounter struct {
	birth, death, killed, ticks int
}

func (c *signalCounter) behavior() EnemyBehavior {
	return EnemyFunc(func(_ *Session, _ *Enemy, t int) Action {
		switch t {
		case SignalBirth:
			c.birth++
		case SignalDeath:
			c.death++
		case SignalKilled:
			c.killed++
		default:
			c.ticks++
		}
		return ActionNone
	})
}

func TestKilledEnemyRemovedNextFrame(t *testing.T) {
	s, rec, _ := newTestSession(t, Info{ID: "kill"}, Options{})
	var sig signalCounter

	id := s.SpawnEnemy(EnemySpec{Pos: complex(240, 100), HP: 100, Behavior: sig.behavior()})
	if s.Frames() != 0 || sig.birth != 1 {
		t.Fatalf("frames %d, births %d", s.Frames(), sig.birth)
	}
	step(t, s)

	if res := s.Damage(id, DamageInfo{Amount: 150, Kind: DamagePlayerShot}); res != DamageOK {
		t.Fatalf("Damage() = %v, expected ok", res)
	}
	e, ok := s.Enemy(id)
	if !ok {
		t.Fatal("enemy released by Damage")
	}
	if e.HP != EnemyKilled {
		t.Fatalf("hp after lethal damage = %v, expected the killed sentinel", e.HP)
	}

	step(t, s)
	if s.Frames() != 2 {
		t.Fatalf("Frames() = %d", s.Frames())
	}
	if _, ok := s.Enemy(id); ok {
		t.Fatal("killed enemy still in the pool at frame 2")
	}
	if sig.death != 1 || sig.killed != 1 {
		t.Errorf("death signals %d, killed signals %d, expected one each", sig.death, sig.killed)
	}
	if rec.Count("enemydeath") != 1 {
		t.Errorf("enemydeath played %d times", rec.Count("enemydeath"))
	}
	if len(s.Items()) != 1 {
		t.Errorf("items = %d, expected one voltage item", len(s.Items()))
	}

	step(t, s)
	if sig.death != 1 {
		t.Errorf("death signal fired again: %d", sig.death)
	}
}

func TestKilledEventCancelsBoundTasks(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "bound"}, Options{})
	id := s.SpawnEnemy(EnemySpec{Pos: complex(240, 100), HP: 10})
	e, _ := s.Enemy(id)
	killed := e.Killed

	task := s.EnemyTask(id, "shooter", func(*sched.Task) sched.Yield { return sched.Wait(1) })
	s.KillEnemy(id)
	step(t, s)

	if !killed.Fired() || !killed.Canceled() {
		t.Errorf("killed event fired %v, canceled %v", killed.Fired(), killed.Canceled())
	}
	if !task.Canceled() {
		t.Error("task bound to the enemy survived its death")
	}
	if len(s.Items()) != 0 {
		t.Errorf("scripted kill dropped %d voltage items", len(s.Items()))
	}
}

func TestEnemyOutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		spec EnemySpec
	}{
		{"spawned outside", EnemySpec{Pos: complex(-200, -200), HP: 50}},
		{"moves out", EnemySpec{Pos: complex(240, 10), HP: 50, Move: MoveLinear(complex(0, -100))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec, _ := newTestSession(t, Info{ID: "oob"}, Options{})
			id := s.SpawnEnemy(tt.spec)
			step(t, s)
			if _, ok := s.Enemy(id); ok {
				t.Fatal("enemy outside the viewport survived a tick")
			}
			if rec.Count("enemydeath") != 0 || len(s.Items()) != 0 {
				t.Errorf("leaving the screen counted as a kill")
			}
		})
	}
}

func TestEnemyOutOfBoundsSignalsDeath(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "oob"}, Options{})
	var sig signalCounter
	id := s.SpawnEnemy(EnemySpec{Pos: complex(-200, 300), HP: 50, Behavior: sig.behavior()})
	step(t, s)
	if _, ok := s.Enemy(id); ok {
		t.Fatal("enemy survived")
	}
	if sig.death != 1 || sig.killed != 0 || sig.ticks != 1 {
		t.Errorf("signals = %+v", sig)
	}
}

func TestImmuneEnemyStaysOffscreen(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "imm"}, Options{})
	id := s.SpawnEnemy(EnemySpec{Pos: complex(-200, -200), HP: EnemyImmune})
	run(t, s, 5)
	if _, ok := s.Enemy(id); !ok {
		t.Error("immune enemy was culled")
	}
}

func TestDamagePolicy(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "dmg"}, Options{})
	normal := s.SpawnEnemy(EnemySpec{Pos: complex(100, 100), HP: 100})
	immune := s.SpawnEnemy(EnemySpec{Pos: complex(200, 100), HP: EnemyImmune})
	gone := s.SpawnEnemy(EnemySpec{Pos: complex(300, 100), HP: 1})
	s.enemies.Release(gone)

	tests := []struct {
		name string
		id   entity.ID
		dmg  DamageInfo
		want DamageResult
	}{
		{"player shot on enemy", normal, DamageInfo{Amount: 10, Kind: DamagePlayerShot}, DamageOK},
		{"enemy shot on enemy", normal, DamageInfo{Amount: 10, Kind: DamageEnemyShot}, DamageImmune},
		{"collision on enemy", normal, DamageInfo{Amount: 10, Kind: DamageEnemyCollision}, DamageImmune},
		{"bomb on immune", immune, DamageInfo{Amount: 10, Kind: DamagePlayerBomb}, DamageImmune},
		{"released enemy", gone, DamageInfo{Amount: 10, Kind: DamagePlayerShot}, DamageImmune},
		{"player shot on player", PlayerID, DamageInfo{Amount: 1, Kind: DamagePlayerShot}, DamageImmune},
		{"unknown player id", entity.ID{Kind: entity.KindPlayer, Index: 3, Gen: 1}, DamageInfo{Kind: DamageEnemyShot}, DamageImmune},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.Snapshot()
			var hp float64
			if e, ok := s.Enemy(tt.id); ok {
				hp = e.HP
			}
			got := s.Damage(tt.id, tt.dmg)
			if got != tt.want {
				t.Fatalf("Damage() = %v, expected %v", got, tt.want)
			}
			if got == DamageImmune {
				if e, ok := s.Enemy(tt.id); ok && e.HP != hp {
					t.Errorf("hp changed %v -> %v", hp, e.HP)
				}
				if s.Snapshot() != before {
					t.Error("immune damage changed session state")
				}
			}
		})
	}
}

func TestInvulnerablePlayerIsImmune(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "inv"}, Options{})
	p := s.Player()
	lives := p.Lives

	if res := s.Damage(PlayerID, DamageInfo{Amount: 1, Kind: DamageEnemyShot}); res != DamageOK {
		t.Fatalf("first hit = %v", res)
	}
	if p.Lives != lives-1 {
		t.Fatalf("lives = %d, expected %d", p.Lives, lives-1)
	}
	if res := s.Damage(PlayerID, DamageInfo{Amount: 1, Kind: DamageEnemyShot}); res != DamageImmune {
		t.Errorf("hit during invulnerability = %v", res)
	}
	if p.Lives != lives-1 {
		t.Errorf("lives changed during invulnerability")
	}
}

func TestLastLifeEndsStage(t *testing.T) {
	cfg := testConfig()
	cfg.Player.Lives = 0
	s, _, _ := newTestSession(t, Info{ID: "last"}, Options{Config: cfg})
	s.Damage(PlayerID, DamageInfo{Amount: 1, Kind: DamageEnemyCollision})
	if s.Gameover() != OutcomeTransitioning {
		t.Fatalf("Gameover() = %v", s.Gameover())
	}
	run(t, s, 100)
	if s.Gameover() != OutcomeDefeat {
		t.Errorf("Gameover() = %v, expected defeat", s.Gameover())
	}
}

func TestEnemyContactHurtsPlayer(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "contact"}, Options{})
	p := s.Player()
	lives := p.Lives

	s.SpawnEnemy(EnemySpec{Pos: p.Pos, HP: 100, FadeIn: true})
	step(t, s)
	if p.Lives != lives {
		t.Fatal("enemy hurt the player while fading in")
	}
	run(t, s, 70)
	if p.Lives != lives-1 {
		t.Errorf("lives = %d, expected contact damage once faded in", p.Lives)
	}
}

func TestDeathDropsPointItemsForNearbyBullets(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "piv"}, Options{})
	pos := complex(240, 200)
	id := s.SpawnEnemy(EnemySpec{Pos: pos, HP: 250})
	s.Shoot(pos+10, 0, '*', core.ColorRed)
	s.Shoot(pos+20i, 0, '*', core.ColorRed)
	s.Shoot(pos+200, 0, '*', core.ColorRed)

	s.Damage(id, DamageInfo{Amount: 300, Kind: DamagePlayerBomb})
	step(t, s)

	piv, volt := 0, 0
	for _, iid := range s.Items() {
		it, _ := s.items.Get(iid)
		switch it.Type {
		case ItemPIV:
			piv++
		case ItemVoltage:
			volt++
		}
		if !it.Auto {
			t.Error("death drop is not auto-collected")
		}
	}
	if piv != 2 || volt != 2 {
		t.Errorf("piv %d, voltage %d, expected 2 and 2", piv, volt)
	}
}

func TestEnemyTaskForMissingEnemy(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "missing"}, Options{})
	id := s.SpawnEnemy(EnemySpec{Pos: complex(240, 100), HP: 10})
	s.enemies.Release(id)

	ran := false
	task := s.EnemyTask(id, "late", func(*sched.Task) sched.Yield {
		ran = true
		return sched.Done()
	})
	if task == nil {
		t.Fatal("EnemyTask() returned nil")
	}
	if !task.Canceled() {
		t.Error("task for a missing enemy should be canceled")
	}
	task.Cancel()
	step(t, s)
	if ran {
		t.Error("task for a missing enemy ran")
	}
}

func TestHitSound(t *testing.T) {
	tests := []struct {
		name   string
		hp     float64
		amount float64
		want   string
	}{
		{"well above threshold", 100, 50, "hit0"},
		{"at threshold", 100, 90, "hit0"},
		{"just below threshold", 100, 90.5, "hit1"},
		{"killed", 100, 150, "hit1"},
		{"immune", EnemyImmune, 50, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec, _ := newTestSession(t, Info{ID: "hits"}, Options{})
			id := s.SpawnEnemy(EnemySpec{Pos: complex(240, 100), HP: tt.hp})
			rec.Loops = nil

			s.Damage(id, DamageInfo{Amount: tt.amount, Kind: DamagePlayerShot})
			switch {
			case tt.want == "" && len(rec.Loops) != 0:
				t.Errorf("loops = %v, expected none", rec.Loops)
			case tt.want != "" && (len(rec.Loops) != 1 || rec.Loops[0] != tt.want):
				t.Errorf("loops = %v, expected [%s]", rec.Loops, tt.want)
			}
		})
	}
}

func TestPlayerShotFuncSignals(t *testing.T) {
	s, _, _ := newTestSession(t, Info{ID: "shotfn"}, Options{})
	var births, deaths int
	id := s.SpawnProjectile(ProjectileSpec{
		Type: ProjPlayer,
		Pos:  complex(240, 300),
		Rule: RuleFunc,
		Func: func(_ *Session, p *Projectile, t int) Action {
			switch {
			case t == SignalBirth:
				births++
			case t == SignalDeath:
				deaths++
			case t >= 3:
				return ActionDestroy
			default:
				p.Pos -= 2i
			}
			return ActionNone
		},
	})
	run(t, s, 10)

	if births != 1 || deaths != 1 {
		t.Errorf("births %d, deaths %d, expected one each", births, deaths)
	}
	if _, ok := s.Projectile(id); ok {
		t.Error("destroyed shot still alive")
	}
}
