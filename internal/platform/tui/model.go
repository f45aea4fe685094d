package tui

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-danmaku/internal/audio"
	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/replay"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
	"github.com/vovakirdan/tui-danmaku/internal/storage"
)

// fastForwardSteps is the number of logic frames per tick while a replay
// is fast-forwarded.
const fastForwardSteps = 4

// Options configure a viewer.
type Options struct {
	Info   stage.Info
	Config config.Config
	Seed   uint64
	// Player is the name written into recorded replays and scores.
	Player string
	// Playback replays a recorded stage instead of recording a new one.
	Playback *replay.Stage
	Store    *storage.Store
	// ReplayDir receives recorded replays. Empty disables saving.
	ReplayDir string
	Logger    *log.Logger
	Audio     audio.Player
	Width     int
	Height    int
	// Embedded viewers hand control back to their parent instead of
	// quitting the program.
	Embedded bool
}

// Result summarizes a finished viewer session.
type Result struct {
	StageID    string
	Outcome    stage.Outcome
	Points     uint64
	Frames     int
	Desyncs    int
	ReplayPath string
	// Quit is set when the player asked to leave the program.
	Quit bool
	Err  error
}

// fpsMeter measures the achieved tick rate once per second.
type fpsMeter struct {
	start time.Time
	ticks int
}

func (f *fpsMeter) tick(now time.Time) (uint16, bool) {
	if f.start.IsZero() {
		f.start = now
		return 0, false
	}
	f.ticks++
	el := now.Sub(f.start)
	if el < time.Second {
		return 0, false
	}
	fps := math.Round(float64(f.ticks) / el.Seconds())
	f.start, f.ticks = now, 0
	return uint16(min(fps, math.MaxUint16)), true
}

// Model is the Bubble Tea model that plays or replays one stage.
type Model struct {
	opts    Options
	sess    *stage.Session
	rec     *replay.Replay
	log     *log.Logger
	screen  *core.Screen
	width   int
	height  int
	latch   *KeyLatch
	keys    *KeyMapper
	help    help.Model
	fps     *fpsMeter
	hiScore uint64

	paused   bool
	fast     bool
	done     bool
	left     bool
	quitting bool
	result   Result
}

// NewModel starts a stage session for the viewer.
func NewModel(opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Player == "" {
		opts.Player = "player"
	}

	sopts := stage.Options{
		Config: opts.Config,
		Seed:   opts.Seed,
		Logger: logger,
		Audio:  opts.Audio,
	}
	if opts.Store != nil {
		sopts.Progress = opts.Store
	}
	var rec *replay.Replay
	if opts.Playback != nil {
		sopts.Playback = opts.Playback
	} else {
		rec = replay.New(opts.Player)
		sopts.Record = rec
	}

	sess, err := stage.New(opts.Info, sopts)
	if err != nil {
		return Model{}, fmt.Errorf("cannot start stage %s: %w", opts.Info.ID, err)
	}

	m := Model{
		opts:   opts,
		sess:   sess,
		rec:    rec,
		log:    logger,
		screen: core.NewScreen(1, 1),
		latch:  NewKeyLatch(),
		keys:   NewKeyMapper(),
		help:   help.New(),
		fps:    &fpsMeter{},
	}
	if opts.Store != nil {
		hi, err := opts.Store.HighScore(opts.Info.ID, m.difficulty())
		if err != nil {
			logger.Warn("cannot read high score", "err", err)
		}
		m.hiScore = hi
	}
	m.resize(opts.Width, opts.Height)
	return m, nil
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.tickRate())
}

func (m Model) tickRate() int {
	return m.sess.Config().Engine.FPS
}

func (m Model) difficulty() string {
	return string(m.sess.Config().Difficulty.Preset)
}

func (m Model) playback() bool {
	return m.opts.Playback != nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done {
		switch {
		case m.keys.MapAction(msg) == core.ActionQuit:
			m.quitting = true
			return m.leave()
		case msg.Type == tea.KeyEnter, msg.Type == tea.KeyEsc:
			return m.leave()
		}
		return m, nil
	}

	switch m.keys.MapAction(msg) {
	case core.ActionQuit:
		m.quitting = true
		m.finish(nil)
		return m.leave()
	case core.ActionPause:
		m.paused = !m.paused
		if m.paused {
			for _, k := range m.latch.ReleaseAll() {
				m.release(k)
			}
		}
		return m, nil
	case core.ActionStop:
		if !m.playback() {
			m.sess.Stop()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Keys().Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.keys.Keys().FastFwd):
		if m.playback() {
			m.fast = !m.fast
		}
		return m, nil
	}

	if m.playback() || m.paused {
		return m, nil
	}
	if k, ok := m.keys.MapKey(msg); ok {
		m.press(k)
		if strings.HasPrefix(msg.String(), "shift+") {
			m.press(core.KeyFocus)
		}
	}
	return m, nil
}

func (m *Model) press(k core.Key) {
	if !m.latch.Press(k) {
		return
	}
	m.sess.Press(k)
	if k == core.KeySkip {
		m.sess.SetInflags(core.InflagSkip)
	}
}

func (m *Model) release(k core.Key) {
	m.sess.Release(k)
	if k == core.KeySkip {
		m.sess.SetInflags(0)
	}
}

// handleTick runs the logic frames of one tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.done || m.left {
		return m, nil
	}
	next := tickCmd(m.tickRate())
	if m.paused {
		return m, next
	}
	if fps, ok := m.fps.tick(now); ok {
		m.sess.SetFPS(fps)
	}
	for _, k := range m.latch.Tick() {
		m.release(k)
	}

	steps := 1
	if m.fast {
		steps = fastForwardSteps
	}
	for range steps {
		stop, err := m.sess.LogicFrame()
		if stop {
			m.finish(err)
			return m, nil
		}
	}
	return m, next
}

// finish ends the session and stores the run. Safe to call twice.
func (m *Model) finish(err error) {
	if m.done {
		return
	}
	m.done = true
	if m.rec != nil && !m.sess.Stopped() {
		if derr := m.fadeOut(); err == nil {
			err = derr
		}
	}
	m.sess.End()

	m.result = Result{
		StageID: m.opts.Info.ID,
		Outcome: m.sess.Gameover(),
		Points:  m.sess.Player().Points,
		Frames:  m.sess.Frames(),
		Desyncs: m.sess.Desyncs(),
		Err:     err,
	}
	if m.rec != nil {
		m.saveRun()
	}
}

// fadeOut gives up a recording that is still running and simulates the
// fade until the session stops, so the saved log ends the way its playback
// will.
func (m *Model) fadeOut() error {
	m.sess.Stop()
	limit := m.sess.Config().Engine.FadeTime + 2
	for range limit {
		stop, err := m.sess.LogicFrame()
		if err != nil || stop {
			return err
		}
	}
	m.log.Warn("stage did not stop after fade", "frames", m.sess.Frames())
	return nil
}

// saveRun writes the recorded replay and the score. Failures are logged;
// the run itself is over either way.
func (m *Model) saveRun() {
	rs := m.sess.ReplayStage()
	cleared := rs != nil && rs.Cleared()
	store := m.opts.Store

	if store != nil && (m.result.Points > 0 || cleared) {
		_, err := store.SaveScore(storage.ScoreEntry{
			StageID:    m.opts.Info.ID,
			Difficulty: m.difficulty(),
			Player:     m.opts.Player,
			Points:     m.result.Points,
			Cleared:    cleared,
		})
		if err != nil {
			m.log.Error("cannot save score", "err", err)
		}
	}

	if m.opts.ReplayDir == "" || rs == nil || rs.Len() == 0 {
		return
	}
	path := filepath.Join(m.opts.ReplayDir, replay.FileName(m.opts.Info.ID, time.Now()))
	if err := replay.Save(path, m.rec); err != nil {
		m.log.Error("cannot save replay", "err", err)
		return
	}
	m.result.ReplayPath = path
	if store != nil {
		_, err := store.SaveReplay(storage.ReplayEntry{
			Path:       path,
			Player:     m.opts.Player,
			StageID:    m.opts.Info.ID,
			Difficulty: m.difficulty(),
			Seed:       rs.Seed,
			Points:     m.result.Points,
			Cleared:    cleared,
		})
		if err != nil {
			m.log.Error("cannot index replay", "err", err)
		}
	}
	m.log.Info("replay saved", "path", path)
}

func (m Model) leave() (tea.Model, tea.Cmd) {
	m.left = true
	if m.opts.Embedded {
		return m, nil
	}
	return m, tea.Quit
}

// resize lays the playfield out for a terminal of w×h cells. Cells are
// about twice as tall as wide, so the field is twice as wide in cells as
// its aspect ratio says.
func (m *Model) resize(w, h int) {
	if w <= 0 || h <= 0 {
		w, h = 80, 24
	}
	m.width, m.height = w, h
	fw, fh := m.fieldSize()
	m.screen.Resize(fw+2, fh+2)
}

func (m Model) fieldSize() (w, h int) {
	eng := m.sess.Config().Engine
	h = max(m.height-3, 8)
	w = int(float64(h) * eng.ViewportW / eng.ViewportH * 2)
	w = max(min(w, m.width-hudWidth-3), 16)
	return w, h
}

// hud collects the side panel content.
func (m Model) hud() hud {
	info := m.sess.Info()
	p := m.sess.Player()
	h := hud{
		Title:      info.Title,
		Subtitle:   info.Subtitle,
		Difficulty: m.difficulty(),
		Points:     p.Points,
		HiScore:    m.hiScore,
		Lives:      p.Lives,
		Bombs:      p.Bombs,
		Power:      p.Power,
		Graze:      p.Graze,
		Voltage:    p.Voltage,
		Frame:      m.sess.Frames(),
		Timer:      m.sess.Timer(),
		Desyncs:    m.sess.Desyncs(),
		Paused:     m.paused,
		Fast:       m.fast,
	}
	if m.playback() {
		h.Mode = "replay " + m.opts.Playback.StageID
	} else if m.rec != nil {
		h.Mode = "recording"
	}
	if b, ok := m.sess.Boss(); ok {
		h.Boss = b.Name
		if a := b.Current(); a != nil && a.Info.Type != stage.AttackMove {
			h.Attack = a.Info.Name
			h.Spell = a.Info.Type.IsSpell()
			h.AttackHP = a.HP
			if a.Info.Timeout > 0 {
				left := a.StartTime + a.Info.Timeout - m.sess.Frames()
				h.TimeLeft = float64(max(left, 0)) / float64(m.tickRate())
			}
		}
	}
	if m.done {
		h.Status = m.statusLine()
	}
	return h
}

func (m Model) statusLine() string {
	r := m.result
	var status string
	switch r.Outcome {
	case stage.OutcomeWin, stage.OutcomeScoreScreen:
		status = "STAGE CLEAR"
	case stage.OutcomeAbort:
		status = "ABORTED"
	default:
		status = "GAME OVER"
	}
	if r.ReplayPath != "" {
		status += "\nreplay saved"
	}
	return status + "\npress enter"
}

// saveScreenshot saves the current playfield to a file.
func (m *Model) saveScreenshot() {
	m.draw()

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".danmaku", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.log.Warn("cannot create screenshot directory", "err", err)
		return
	}
	name := fmt.Sprintf("%s_%s.txt", m.opts.Info.ID, time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(dir, name), []byte(m.screen.String()), 0o600); err != nil {
		m.log.Warn("cannot save screenshot", "err", err)
	}
}

// draw renders the session into the screen buffer.
func (m *Model) draw() {
	m.screen.Clear()
	fw, fh := m.fieldSize()
	m.screen.DrawBox(core.NewRect(0, 0, fw+2, fh+2), core.ColorGray)
	eng := m.sess.Config().Engine
	c := core.NewCanvas(m.screen, core.NewRect(1, 1, fw, fh), eng.ViewportW, eng.ViewportH)
	if err := m.sess.RenderFrame(c); err != nil {
		m.screen.DrawTextColored(2, 1, "render error", core.ColorBrightRed)
	}
	if m.paused {
		m.screen.DrawTextCentered(fh/2, "- PAUSED -")
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.left {
		return ""
	}
	m.draw()
	body := lipgloss.JoinHorizontal(lipgloss.Top, RenderScreen(m.screen), " ", renderHUD(m.hud()))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return body + "\n" + helpStyle.Render(m.help.View(m.keys.Keys()))
}

// Result returns the outcome of a finished session.
func (m Model) Result() (Result, bool) {
	return m.result, m.done
}

// Done reports whether the viewer was left.
func (m Model) Done() bool {
	return m.left
}

// IsQuitting reports whether the user asked to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run plays a stage in the terminal and returns how it went.
func Run(opts Options) (Result, error) {
	model, err := NewModel(opts)
	if err != nil {
		return Result{}, err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	m, ok := final.(Model)
	if !ok {
		return Result{}, nil
	}
	m.finish(nil)
	res, _ := m.Result()
	res.Quit = m.IsQuitting()
	return res, res.Err
}
