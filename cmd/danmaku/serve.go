package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-danmaku/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the danmaku SSH server",
	Long: `Start an SSH server that allows users to connect and play stages.

Each SSH connection gets its own session with the stage menu. Scores
and progress are stored per-server (all users share the same
leaderboard); replays are saved per user under --replays/ssh.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.danmaku/host_key

Examples:
  danmaku serve                           # Listen on :23234 with auto-generated key
  danmaku serve --ssh :2222               # Listen on port 2222
  danmaku serve --host-key ./my_host_key  # Use specific host key
  danmaku serve --db ./danmaku.db         # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	engine, err := engineConfig(runtimeConfig())
	if err != nil {
		return err
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.ReplayDir = filepath.Join(expandHome(flagReplayDir), "ssh")
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Engine = engine

	server, err := tui.NewSSHServer(cfg, stderrLogger())
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	fmt.Printf("Starting danmaku SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")
	return server.ListenAndServe()
}
