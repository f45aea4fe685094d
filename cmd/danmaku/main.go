// danmaku plays deterministic bullet-hell stages in the terminal.
//
// Usage:
//
//	danmaku list                 - List registered stages
//	danmaku play [stage]         - Play a stage (menu when omitted), recording a replay
//	danmaku replay [file]        - Watch a replay (lists saved replays when omitted)
//	danmaku verify <file>        - Re-simulate a replay headlessly and check it
//	danmaku export <file>        - Export replay events or summaries as CSV
//	danmaku scores [stage]       - Browse scores and stage progress
//	danmaku serve                - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>       - Engine config YAML
//	--difficulty <name>   - easy, normal, hard or lunatic
//	--fps <rate>          - Tick rate (default: 60)
//	--seed <value>        - RNG seed for reproducible runs
//	--db <path>           - Database path (default: ~/.danmaku/danmaku.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import stages to register them
	_ "github.com/vovakirdan/tui-danmaku/internal/stages/practice"
	_ "github.com/vovakirdan/tui-danmaku/internal/stages/thunder"
)

var (
	// Global flags
	flagConfig     string
	flagDifficulty string
	flagFPS        int
	flagSeed       uint64
	flagDBPath     string
	flagReplayDir  string
	flagPlayer     string
	flagDebug      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "danmaku",
	Short: "Danmaku - deterministic bullet-hell stages in your terminal",
	Long: `Danmaku runs scripted shoot-'em-up stages on a fixed-step, fully
deterministic simulation. Every run is recorded as a replay that plays
back frame for frame.

Available commands:
  list     - Show all registered stages
  play     - Play a stage
  replay   - Watch a recorded replay
  verify   - Check a replay by re-simulating it
  export   - Export replay data as CSV
  scores   - View scores and stage progress
  serve    - Start SSH server for remote play

Examples:
  danmaku list
  danmaku play thunder --difficulty hard
  danmaku replay ~/.danmaku/replays/thunder_20260101_120000.dnmk
  danmaku verify run.dnmk
  danmaku export run.dnmk --summary --out runs.csv
  danmaku serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to custom engine config YAML")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, lunatic")
	pf.IntVar(&flagFPS, "fps", 0, "Tick rate (frames per second, 0 = from config)")
	pf.Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", "~/.danmaku/danmaku.db", "Path to progress database")
	pf.StringVar(&flagReplayDir, "replays", "~/.danmaku/replays", "Directory for recorded replays")
	pf.StringVar(&flagPlayer, "player", "", "Player name stored with scores and replays (default: $USER)")
	pf.BoolVar(&flagDebug, "debug", false, "Log at debug level")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}
