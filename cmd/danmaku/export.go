package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-danmaku/internal/replay"
)

var (
	flagExportOut     string
	flagExportSummary bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>...",
	Short: "Export replay data as CSV",
	Long: `Export the event log of a replay as CSV, one row per event.

With --summary, writes one row per stage instead: seed, difficulty,
event and input counts, final score and FPS statistics. Several replays
can be summarized into one file.

Examples:
  danmaku export run.dnmk
  danmaku export run.dnmk --out events.csv
  danmaku export ~/.danmaku/replays/*.dnmk --summary --out runs.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "-", "Output file ('-' for stdout)")
	exportCmd.Flags().BoolVar(&flagExportSummary, "summary", false, "Write one row per stage instead of per event")
}

func runExport(_ *cobra.Command, args []string) error {
	if !flagExportSummary && len(args) > 1 {
		return fmt.Errorf("event export takes a single replay; use --summary for several")
	}

	var w io.Writer = os.Stdout
	if flagExportOut != "-" {
		f, err := os.Create(flagExportOut) //#nosec G304 -- output path from the CLI
		if err != nil {
			return fmt.Errorf("cannot create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return exportReplays(w, args, flagExportSummary)
}

// exportReplays writes the CSV export of the given replay files to w.
func exportReplays(w io.Writer, paths []string, summary bool) error {
	merged := &replay.Replay{}
	for _, p := range paths {
		r, err := replay.Load(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if !summary {
			return replay.ExportEvents(w, r)
		}
		merged.Stages = append(merged.Stages, r.Stages...)
	}
	return replay.ExportSummary(w, merged)
}
