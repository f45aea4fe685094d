package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-danmaku/internal/core"
)

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(12, 2)
	s.DrawTextColored(0, 0, "danger", core.ColorBrightRed)
	s.DrawText(7, 0, "ok")
	s.DrawTextColored(0, 1, "@", core.ColorBrightWhite)

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, expected 2", len(lines))
	}
	if !strings.Contains(lines[0], "danger") || !strings.Contains(lines[0], "ok") {
		t.Errorf("first line = %q", lines[0])
	}
	if w := lipgloss.Width(lines[1]); w != 12 {
		t.Errorf("second line width = %d, expected 12", w)
	}
}

func TestRenderHUD(t *testing.T) {
	out := renderHUD(hud{
		Title:    "Stage 1",
		Points:   1200,
		HiScore:  900,
		Lives:    2,
		Boss:     "Storm Herald",
		Attack:   "Thunder Sign: Cathode Rays",
		Spell:    true,
		TimeLeft: 12.5,
		Status:   "GAME OVER",
	})
	for _, want := range []string{"Stage 1", "0000001200", "Storm Herald", "Cathode Rays", "12.5s", "GAME OVER"} {
		if !strings.Contains(out, want) {
			t.Errorf("HUD is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "PAUSED") {
		t.Error("status should take precedence over pause")
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText() = %q", got)
	}
	if got := centerText("abcdef", 4); got != "abcdef" {
		t.Errorf("centerText() = %q", got)
	}
}
