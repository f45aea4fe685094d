package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered stages",
	Long:  `Shows every stage registered in the engine: story stages and spell practice.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	stages := registry.List()

	if len(stages) == 0 {
		fmt.Println("No stages available.")
		return
	}

	fmt.Println("Available stages:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, s := range stages {
		maxIDLen = max(maxIDLen, len(s.ID))
	}

	fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, "ID", "Type", "Title")
	fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, "--", "----", "-----")

	for _, s := range stages {
		typ := "story"
		if s.Type == stage.TypeSpell {
			typ = "spell"
		}
		title := s.Title
		if s.Subtitle != "" {
			title += ": " + s.Subtitle
		}
		fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, s.ID, typ, title)
	}

	fmt.Println()
	fmt.Println("Run 'danmaku play <id>' to play a stage.")
}
