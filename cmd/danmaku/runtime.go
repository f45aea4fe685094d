package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/core"
	"github.com/vovakirdan/tui-danmaku/internal/storage"
)

// runtimeConfig collects the platform settings from flags and the terminal.
func runtimeConfig() core.RuntimeConfig {
	rc := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW, rc.ScreenH = w, h
	}
	rc.TickRate = flagFPS
	rc.Seed = flagSeed
	rc.Difficulty = flagDifficulty
	return rc
}

// engineConfig loads the engine config and applies the runtime overrides.
func engineConfig(rc core.RuntimeConfig) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if rc.TickRate > 0 {
		cfg.Engine.FPS = rc.TickRate
	}
	if rc.Difficulty != "" {
		d, err := config.ParseDifficulty(rc.Difficulty)
		if err != nil {
			return cfg, err
		}
		config.ApplyPreset(&cfg, d)
	}
	return cfg, nil
}

// expandHome resolves a leading ~/ in flag paths.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// playerName is the name stored with scores and replays.
func playerName() string {
	if flagPlayer != "" {
		return flagPlayer
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}

// stderrLogger is the logger of headless commands.
func stderrLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "danmaku",
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// fileLogger is the logger of interactive commands; the terminal belongs to
// the UI, so records go to ~/.danmaku/danmaku.log. The returned func closes
// the file.
func fileLogger() (*log.Logger, func()) {
	path := expandHome("~/.danmaku/danmaku.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //#nosec G304 -- fixed path under home
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	logger := log.NewWithOptions(f, log.Options{ReportTimestamp: true})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, func() { _ = f.Close() }
}

// openStore opens the progress database, or returns nil with a warning.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open progress database: %v\n", err)
		return nil
	}
	return store
}
