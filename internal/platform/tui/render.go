package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-danmaku/internal/core"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// hudWidth is the width of the side panel next to the playfield.
const hudWidth = 30

// hud is the side panel content.
type hud struct {
	Title      string
	Subtitle   string
	Difficulty string
	Mode       string
	Points     uint64
	HiScore    uint64
	Lives      int
	Bombs      int
	Power      int
	Graze      int
	Voltage    int
	Frame      int
	Timer      int
	Desyncs    int
	Boss       string
	Attack     string
	AttackHP   float64
	TimeLeft   float64 // seconds
	Spell      bool
	Paused     bool
	Fast       bool
	Status     string
}

var (
	hudTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	hudLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(9)
	hudValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	hudSpellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Italic(true)
	hudAlertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	hudBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(hudWidth - 2)
)

func hudRow(label, value string) string {
	return hudLabelStyle.Render(label) + hudValueStyle.Render(value)
}

// renderHUD draws the side panel.
func renderHUD(h hud) string {
	var b strings.Builder
	b.WriteString(hudTitleStyle.Render(h.Title))
	b.WriteString("\n")
	if h.Subtitle != "" {
		b.WriteString(h.Subtitle)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hudRow("Hi-Score", fmt.Sprintf("%010d", max(h.HiScore, h.Points))) + "\n")
	b.WriteString(hudRow("Score", fmt.Sprintf("%010d", h.Points)) + "\n\n")
	b.WriteString(hudRow("Lives", strings.Repeat("*", max(h.Lives, 0))) + "\n")
	b.WriteString(hudRow("Bombs", strings.Repeat("o", max(h.Bombs, 0))) + "\n")
	b.WriteString(hudRow("Power", fmt.Sprint(h.Power)) + "\n")
	b.WriteString(hudRow("Graze", fmt.Sprint(h.Graze)) + "\n")
	b.WriteString(hudRow("Voltage", fmt.Sprint(h.Voltage)) + "\n\n")
	b.WriteString(hudRow("Rank", h.Difficulty) + "\n")
	b.WriteString(hudRow("Frame", fmt.Sprintf("%d (%d)", h.Frame, h.Timer)) + "\n")
	if h.Mode != "" {
		b.WriteString(hudRow("Mode", h.Mode) + "\n")
	}
	if h.Desyncs > 0 {
		b.WriteString(hudAlertStyle.Render(fmt.Sprintf("%d desyncs", h.Desyncs)) + "\n")
	}

	if h.Boss != "" {
		b.WriteString("\n")
		b.WriteString(hudTitleStyle.Render(h.Boss) + "\n")
		if h.Attack != "" {
			name := h.Attack
			if h.Spell {
				name = hudSpellStyle.Render(name)
			}
			b.WriteString(name + "\n")
		}
		if h.AttackHP > 0 {
			b.WriteString(hudRow("HP", fmt.Sprintf("%.0f", h.AttackHP)) + "\n")
		}
		if h.TimeLeft > 0 {
			b.WriteString(hudRow("Time", fmt.Sprintf("%.1fs", h.TimeLeft)) + "\n")
		}
	}

	switch {
	case h.Status != "":
		b.WriteString("\n" + hudAlertStyle.Render(h.Status) + "\n")
	case h.Paused:
		b.WriteString("\n" + hudAlertStyle.Render("PAUSED") + "\n")
	case h.Fast:
		b.WriteString("\n" + hudAlertStyle.Render(">> x4") + "\n")
	}
	return hudBoxStyle.Render(b.String())
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
