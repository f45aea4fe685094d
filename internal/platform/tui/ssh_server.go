package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-danmaku/internal/audio"
	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.danmaku/host_key.
	HostKeyPath string

	// DBPath is the path to the progress database.
	DBPath string

	// ReplayDir receives the replays of every session, one directory per user.
	ReplayDir string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Engine is the stage configuration shared by all sessions.
	Engine config.Config
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.danmaku/danmaku.db",
		ReplayDir:   "~/.danmaku/replays/ssh",
		IdleTimeout: 30 * time.Minute,
		Engine:      config.Default(),
	}
}

// SSHServer wraps a Wish SSH server that serves stages.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "danmaku-ssh",
		})
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open progress database", "error", err)
		// Continue without storage
	}

	home, homeErr := os.UserHomeDir()
	if cfg.HostKeyPath == "" {
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		cfg.HostKeyPath = filepath.Join(home, ".danmaku", "host_key")
	}
	if homeErr == nil && len(cfg.ReplayDir) > 1 && cfg.ReplayDir[:2] == "~/" {
		cfg.ReplayDir = filepath.Join(home, cfg.ReplayDir[2:])
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// unsafeName matches characters not allowed in per-user directory names.
var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	user := sshSession.User()
	dir := ""
	if s.config.ReplayDir != "" {
		dir = filepath.Join(s.config.ReplayDir, unsafeName.ReplaceAllString(user, "_"))
	}
	model := NewSessionModel(SessionOptions{
		Store:     s.store,
		Config:    s.config.Engine,
		Player:    user,
		ReplayDir: dir,
		Logger:    s.logger.With("user", user),
		Width:     pty.Window.Width,
		Height:    pty.Window.Height,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionOptions configure a SessionModel.
type SessionOptions struct {
	Store     *storage.Store
	Config    config.Config
	Player    string
	ReplayDir string
	Logger    *log.Logger
	Width     int
	Height    int
}

// SessionModel manages the full flow of one remote player:
// menu -> stage -> menu, with the scoreboard reachable from the menu.
type SessionModel struct {
	opts       SessionOptions
	menu       MenuModel
	scoreboard *ScoreboardModel
	viewer     *Model
	notice     string
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) SessionModel {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}
	return SessionModel{
		opts: opts,
		menu: NewMenuModel(opts.Store, opts.Config.Difficulty.Preset, opts.Width, opts.Height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Width = wsm.Width
		m.opts.Height = wsm.Height
	}

	switch {
	case m.viewer != nil:
		return m.updateViewer(msg)
	case m.scoreboard != nil:
		return m.updateScoreboard(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode. The menu quits its own
// program when done; that command is dropped here.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		m.notice = ""
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		sb := NewScoreboardModel(m.opts.Store, m.opts.Width, m.opts.Height)
		m.scoreboard = &sb
		m.resetMenu()
		return m, sb.Init()

	case m.menu.Selected() != nil:
		return m.startStage(m.menu.Selected().StageID)
	}
	return m, cmd
}

func (m *SessionModel) resetMenu() {
	m.menu = NewMenuModel(m.opts.Store, m.menu.Difficulty(), m.opts.Width, m.opts.Height)
}

// startStage creates the viewer for a selected stage.
func (m SessionModel) startStage(id string) (tea.Model, tea.Cmd) {
	diff := m.menu.Difficulty()
	m.resetMenu()

	info, err := registry.Create(id)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	cfg := m.opts.Config
	config.ApplyPreset(&cfg, diff)

	viewer, err := NewModel(Options{
		Info:      info,
		Config:    cfg,
		Player:    m.opts.Player,
		Store:     m.opts.Store,
		ReplayDir: m.opts.ReplayDir,
		Logger:    m.opts.Logger,
		Audio:     audio.NewLogPlayer(m.opts.Logger),
		Width:     m.opts.Width,
		Height:    m.opts.Height,
		Embedded:  true,
	})
	if err != nil {
		m.opts.Logger.Error("cannot start stage", "stage", id, "err", err)
		m.notice = err.Error()
		return m, nil
	}
	m.viewer = &viewer
	return m, viewer.Init()
}

// updateViewer handles updates while a stage runs.
func (m SessionModel) updateViewer(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.viewer.Update(msg)
	if viewer, ok := newModel.(Model); ok {
		m.viewer = &viewer
	}
	if !m.viewer.Done() {
		return m, cmd
	}

	if res, ok := m.viewer.Result(); ok {
		m.opts.Logger.Info("stage finished",
			"stage", res.StageID, "outcome", res.Outcome, "points", res.Points, "replay", res.ReplayPath)
	}
	if m.viewer.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	m.viewer = nil
	m.resetMenu()
	return m, m.menu.Init()
}

// updateScoreboard handles updates while the scoreboard is shown.
func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scoreboard.Update(msg)
	if sb, ok := newModel.(ScoreboardModel); ok {
		m.scoreboard = &sb
	}
	switch {
	case m.scoreboard.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.scoreboard.IsGoingBack():
		m.scoreboard = nil
		return m, nil
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch {
	case m.viewer != nil:
		return m.viewer.View()
	case m.scoreboard != nil:
		return m.scoreboard.View()
	}
	view := m.menu.View()
	if m.notice != "" {
		view += "\n" + centerText(m.notice, m.opts.Width)
	}
	return view
}
