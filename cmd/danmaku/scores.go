package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/platform/tui"
	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/storage"
)

var flagScoresPlain bool

var scoresCmd = &cobra.Command{
	Use:   "scores [stage]",
	Short: "View scores and stage progress",
	Long: `Browse high scores and stage progress in an interactive table.

With --plain, prints the top 10 scores of a stage for the selected
difficulty instead.

Examples:
  danmaku scores
  danmaku scores thunder
  danmaku scores thunder --plain --difficulty lunatic`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresPlain, "plain", false, "Print scores as text instead of the interactive table")
}

func runScores(_ *cobra.Command, args []string) error {
	stageID := ""
	if len(args) == 1 {
		stageID = args[0]
		if !registry.Exists(stageID) {
			return fmt.Errorf("%w: %q (run 'danmaku list' to see available stages)", registry.ErrUnknownStage, stageID)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("cannot open progress database: %w", err)
	}
	defer store.Close()

	if !flagScoresPlain {
		rc := runtimeConfig()
		_, err := tui.RunScoreboard(store, stageID, rc.ScreenW, rc.ScreenH)
		return err
	}
	if stageID == "" {
		return fmt.Errorf("--plain needs a stage")
	}

	diff := config.DifficultyNormal
	if flagDifficulty != "" {
		if diff, err = config.ParseDifficulty(flagDifficulty); err != nil {
			return err
		}
	}
	return printScores(os.Stdout, store, stageID, string(diff))
}

// printScores writes the top scores and progress of one stage.
func printScores(w io.Writer, store *storage.Store, stageID, diff string) error {
	info, err := registry.Create(stageID)
	if err != nil {
		return err
	}
	scores, err := store.TopScores(stageID, diff, 10)
	if err != nil {
		return err
	}

	title := info.Title
	if info.Subtitle != "" {
		title += ": " + info.Subtitle
	}
	fmt.Fprintf(w, "High Scores - %s (%s)\n\n", title, diff)

	if len(scores) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Play 'danmaku play %s' to set the first high score!\n", stageID)
		return nil
	}

	fmt.Fprintf(w, "  %-4s  %-12s  %-16s  %-5s  %s\n", "Rank", "Score", "Player", "Clear", "Date")
	fmt.Fprintf(w, "  %-4s  %-12s  %-16s  %-5s  %s\n", "----", "-----", "------", "-----", "----")
	for i, e := range scores {
		cleared := ""
		if e.Cleared {
			cleared = "yes"
		}
		fmt.Fprintf(w, "  %-4d  %-12d  %-16s  %-5s  %s\n",
			i+1, e.Points, e.Player, cleared, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Fprintln(w)
	if p, err := store.Progress(stageID, diff); err == nil {
		fmt.Fprintf(w, "Played %d, cleared %d\n", p.NumPlayed, p.NumCleared)
	}
	return nil
}
