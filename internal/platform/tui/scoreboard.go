package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
	"github.com/vovakirdan/tui-danmaku/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show stage list sidebar
	sidebarWidth       = 24  // Width of stage list sidebar
	maxScores          = 100 // Max scores to load
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Select   key.Binding
	Back     key.Binding
	Quit     key.Binding
	NextStage key.Binding
	PrevStage key.Binding
	NextDiff key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextStage, k.NextDiff, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextStage, k.PrevStage, k.NextDiff},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "prev stage"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next stage"),
		),
		NextStage: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next stage"),
		),
		PrevStage: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev stage"),
		),
		NextDiff: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "difficulty"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	stages      []registry.StageInfo
	stageCursor int
	diffCursor  int // index into diffFilters
	store       *storage.Store
	scores      []storage.ScoreEntry
	progress    string // played/cleared summary of the selected stage
	tracks      []string
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool // True if user pressed back (not quit)
	showSidebar bool // Whether to show stage list sidebar
}

// diffFilters are the difficulty filters cycled by NextDiff; "" shows all.
var diffFilters = []string{"", "easy", "normal", "hard", "lunatic"}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	stages := registry.List()

	keys := DefaultScoreboardKeyMap()
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		stages:      stages,
		stageCursor: 0,
		store:       store,
		keys:        keys,
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	// Initialize table
	m.table = m.createTable()

	if store != nil {
		if tracks, err := store.UnlockedTracks(); err == nil {
			m.tracks = tracks
		}
	}
	if len(m.stages) > 0 {
		m.loadScores(m.stages[0].ID)
	}

	return m
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Player", Width: 12},
		{Title: "Score", Width: 12},
		{Title: "Rank", Width: 8},
		{Title: "Clear", Width: 5},
		{Title: "Date", Width: 12},
	}

	// Calculate available width for table
	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}

	// Player name takes what is left
	if rest := tableWidth - 4 - 12 - 8 - 5 - 12 - 12; rest > 12 {
		columns[1].Width = min(rest, 20)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(m.height-8), // Leave room for header, help, and margins
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadScores loads scores and progress for the given stage ID.
func (m *ScoreboardModel) loadScores(stageID string) {
	if m.store == nil {
		m.scores = nil
		m.progress = ""
		m.updateTableRows()
		return
	}

	m.progress = m.loadProgress(stageID)
	scores, err := m.store.TopScores(stageID, diffFilters[m.diffCursor], maxScores)
	if err != nil {
		m.scores = nil
	} else {
		m.scores = scores
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current scores.
func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		cleared := ""
		if s.Cleared {
			cleared = "yes"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			s.Player,
			fmt.Sprintf("%d", s.Points),
			s.Difficulty,
			cleared,
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextStage), key.Matches(msg, m.keys.Right):
			if len(m.stages) > 0 {
				m.stageCursor = (m.stageCursor + 1) % len(m.stages)
				m.loadScores(m.stages[m.stageCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevStage), key.Matches(msg, m.keys.Left):
			if len(m.stages) > 0 {
				m.stageCursor--
				if m.stageCursor < 0 {
					m.stageCursor = len(m.stages) - 1
				}
				m.loadScores(m.stages[m.stageCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.NextDiff):
			m.diffCursor = (m.diffCursor + 1) % len(diffFilters)
			if len(m.stages) > 0 {
				m.loadScores(m.stages[m.stageCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	// Title
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "HIGH SCORES"
	if len(m.stages) > 0 {
		st := m.stages[m.stageCursor]
		title = fmt.Sprintf("HIGH SCORES - %s", st.Title)
		if st.Subtitle != "" {
			title += ": " + st.Subtitle
		}
	}
	filter := diffFilters[m.diffCursor]
	if filter == "" {
		filter = "all"
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")
	b.WriteString(centerText(dimStyle.Render("difficulty: "+filter+"  "+m.progress), m.width))
	b.WriteString("\n\n")

	if m.showSidebar {
		// Wide layout: sidebar + table
		b.WriteString(m.renderWideLayout())
	} else {
		// Narrow layout: stage tabs + table
		b.WriteString(m.renderNarrowLayout())
	}

	if len(m.tracks) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("music room: " + strings.Join(m.tracks, ", ")))
	}

	// Help bar
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// loadProgress summarizes the play record of a stage across difficulties.
func (m *ScoreboardModel) loadProgress(stageID string) string {
	all, err := m.store.AllProgress()
	if err != nil {
		return ""
	}
	played, cleared := 0, 0
	for _, p := range all {
		if p.StageID != stageID {
			continue
		}
		if f := diffFilters[m.diffCursor]; f != "" && p.Difficulty != f {
			continue
		}
		played += p.NumPlayed
		cleared += p.NumCleared
	}
	return fmt.Sprintf("played %d, cleared %d", played, cleared)
}

// renderWideLayout renders the scoreboard with sidebar for stage selection.
func (m ScoreboardModel) renderWideLayout() string {
	// Sidebar (stage list)
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Stages\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, st := range m.stages {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.stageCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}

		name := []rune(stageLabel(st))
		maxLen := sidebarWidth - 6
		if len(name) > maxLen {
			name = append(name[:maxLen-1], '.')
		}
		sidebar.WriteString(style.Render(cursor + string(name)))
		sidebar.WriteString("\n")
	}

	sidebarRendered := sidebarStyle.Render(sidebar.String())

	// Table
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	tableContent := m.renderTableContent()
	tableRendered := tableStyle.Render(tableContent)

	// Join horizontally
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarRendered, "  ", tableRendered)
}

// stageLabel is the short name of a stage in lists. Practice stages share
// a title, so the subtitle is more telling.
func stageLabel(st registry.StageInfo) string {
	if st.Type == stage.TypeSpell && st.Subtitle != "" {
		return st.Subtitle
	}
	return st.Title
}

// renderNarrowLayout renders the scoreboard with stage tabs above the table.
func (m ScoreboardModel) renderNarrowLayout() string {
	var b strings.Builder

	// Stage tabs (horizontal)
	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.stages))
	for i, st := range m.stages {
		shortName := stageLabel(st)
		if r := []rune(shortName); len(r) > 10 {
			shortName = string(r[:9]) + "."
		}
		if i == m.stageCursor {
			tabs[i] = activeTabStyle.Render(shortName)
		} else {
			tabs[i] = tabStyle.Render(" " + shortName + " ")
		}
	}

	// Wrap tabs if needed
	tabLine := strings.Join(tabs, " ")
	if lipgloss.Width(tabLine) > m.width-4 {
		// Just show current stage with arrows
		current := stageLabel(m.stages[m.stageCursor])
		tabLine = fmt.Sprintf("< %s >", current)
	}
	b.WriteString(centerText(tabLine, m.width))
	b.WriteString("\n\n")

	// Table
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	if len(m.scores) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No scores recorded yet.\nClear a stage to set a high score!")
	}

	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// SelectStage moves the cursor to the stage with the given ID.
func (m *ScoreboardModel) SelectStage(id string) bool {
	for i, st := range m.stages {
		if st.ID == id {
			m.stageCursor = i
			m.loadScores(id)
			return true
		}
	}
	return false
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunScoreboard(store *storage.Store, stageID string, width, height int) (goBack bool, err error) {
	model := NewScoreboardModel(store, width, height)
	if stageID != "" && !model.SelectStage(stageID) {
		return false, fmt.Errorf("%w: %s", registry.ErrUnknownStage, stageID)
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return false, nil
	}

	return m.IsGoingBack(), nil
}
