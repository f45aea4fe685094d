// Package rng provides the deterministic random streams of a session.
//
// Gameplay draws from the game stream, which must produce the same sequence
// when a replay is played back. Render code draws from the visual stream;
// while the visual stream is active the game stream is locked and touching
// it is a fatal error.
package rng

import (
	"math"
	"sync/atomic"

	"github.com/vovakirdan/tui-danmaku/internal/entity"
)

// Stream is a deterministic pseudo-random number generator (64-bit LCG).
type Stream struct {
	name   string
	state  uint64
	locked atomic.Bool
}

// New creates a stream with the given seed. Seed 0 is replaced by 1.
func New(name string, seed uint64) *Stream {
	s := &Stream{name: name}
	s.Seed(seed)
	return s
}

// Seed resets the stream state.
func (s *Stream) Seed(seed uint64) {
	if seed == 0 {
		seed = 1
	}
	s.state = seed
}

// Name returns the stream name.
func (s *Stream) Name() string {
	return s.name
}

// State returns the raw generator state.
func (s *Stream) State() uint64 {
	return s.state
}

// Next generates the next random uint64.
func (s *Stream) Next() uint64 {
	if s.locked.Load() {
		entity.Fatalf("rng: %s stream used while locked", s.name)
	}
	s.state = s.state*6364136223846793005 + 1442695040888963407
	return s.state
}

// Intn returns a random int in [0, n).
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Next() % uint64(n)) //#nosec G115 -- n is always positive
}

// Float64 returns a random float64 in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.Next()>>11) / (1 << 53)
}

// Range returns a random float64 in [lo, hi).
func (s *Stream) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*s.Float64()
}

// Sign returns -1 or 1.
func (s *Stream) Sign() float64 {
	if s.Next()&(1<<40) != 0 {
		return 1
	}
	return -1
}

// Angle returns a random angle in [0, 2π).
func (s *Stream) Angle() float64 {
	return s.Float64() * 2 * math.Pi
}

// Checksum folds the stream state and a score into a 16-bit desync check
// value without advancing the stream.
func (s *Stream) Checksum(points uint64) uint16 {
	x := s.state ^ points
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return uint16(x & 0xFFFF)
}

// Streams holds the game and visual streams and which one is active.
type Streams struct {
	game   *Stream
	visual *Stream
	active atomic.Pointer[Stream]
}

// NewStreams seeds both streams. The visual stream is derived from the
// game seed so a session is reproducible on screen as well.
func NewStreams(seed uint64) *Streams {
	s := &Streams{
		game:   New("game", seed),
		visual: New("visual", seed^0x9E3779B97F4A7C15),
	}
	s.active.Store(s.game)
	return s
}

// Game returns the gameplay stream.
func (s *Streams) Game() *Stream {
	return s.game
}

// Visual returns the cosmetic stream.
func (s *Streams) Visual() *Stream {
	return s.visual
}

// Active returns the stream currently selected for draws.
func (s *Streams) Active() *Stream {
	return s.active.Load()
}

// Reseed resets the game stream, as done when a stage starts.
func (s *Streams) Reseed(seed uint64) {
	s.game.Seed(seed)
}

// WithVisual makes the visual stream active and locks the game stream for
// the duration of fn. The game stream is restored even if fn panics.
func (s *Streams) WithVisual(fn func()) {
	prev := s.active.Swap(s.visual)
	s.game.locked.Store(true)
	defer func() {
		s.game.locked.Store(false)
		s.active.Store(prev)
	}()
	fn()
}

// Float64 draws from the active stream.
func (s *Streams) Float64() float64 {
	return s.Active().Float64()
}

// Range draws from the active stream.
func (s *Streams) Range(lo, hi float64) float64 {
	return s.Active().Range(lo, hi)
}

// Intn draws from the active stream.
func (s *Streams) Intn(n int) int {
	return s.Active().Intn(n)
}

// Sign draws from the active stream.
func (s *Streams) Sign() float64 {
	return s.Active().Sign()
}

// Angle draws from the active stream.
func (s *Streams) Angle() float64 {
	return s.Active().Angle()
}
