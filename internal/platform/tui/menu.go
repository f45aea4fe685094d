package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-danmaku/internal/config"
	"github.com/vovakirdan/tui-danmaku/internal/registry"
	"github.com/vovakirdan/tui-danmaku/internal/stage"
	"github.com/vovakirdan/tui-danmaku/internal/storage"
)

// MenuItem represents a selectable stage in the menu.
type MenuItem struct {
	StageID  string
	Title    string
	Subtitle string
	Type     stage.Type
	Played   int
	Cleared  int
}

// MenuModel is the Bubble Tea model for the stage picker.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	diff           int
	width          int
	height         int
	store          *storage.Store
	keyMapper      *KeyMapper
	quitting       bool
	selected       *MenuItem
	openScoreboard bool
}

// NewMenuModel creates a menu over the registered stages.
func NewMenuModel(store *storage.Store, preset config.Difficulty, width, height int) MenuModel {
	m := MenuModel{
		width:     width,
		height:    height,
		store:     store,
		keyMapper: NewKeyMapper(),
		diff:      1,
	}
	if preset != "" {
		m.diff = preset.Index()
	}
	m.loadItems()
	return m
}

// loadItems lists the stages with their progress on the selected difficulty.
func (m *MenuModel) loadItems() {
	stages := registry.List()
	m.items = make([]MenuItem, 0, len(stages))
	for _, s := range stages {
		item := MenuItem{StageID: s.ID, Title: s.Title, Subtitle: s.Subtitle, Type: s.Type}
		if m.store != nil {
			if p, err := m.store.Progress(s.ID, string(m.Difficulty())); err == nil {
				item.Played, item.Cleared = p.NumPlayed, p.NumCleared
			}
		}
		m.items = append(m.items, item)
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionLeft:
		if m.diff > 0 {
			m.diff--
			m.loadItems()
		}

	case MenuActionRight:
		if m.diff < len(config.Difficulties)-1 {
			m.diff++
			m.loadItems()
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, tea.Quit
	}
	return m, nil
}

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuCursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	menuClearedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	menuSpellTagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("D A N M A K U"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("< %s >", strings.ToUpper(string(m.Difficulty()))), m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText(menuDimStyle.Render("No stages registered."), m.width))
		b.WriteString("\n")
	}
	for i, item := range m.items {
		cursor := "  "
		title := item.Title
		if item.Subtitle != "" {
			title += ": " + item.Subtitle
		}
		if item.Type == stage.TypeSpell {
			title = menuSpellTagStyle.Render("[spell] ") + title
		}
		if i == m.cursor {
			cursor = "> "
			title = menuCursorStyle.Render(title)
		}

		status := menuDimStyle.Render("new")
		switch {
		case item.Cleared > 0:
			status = menuClearedStyle.Render(fmt.Sprintf("cleared %d/%d", item.Cleared, item.Played))
		case item.Played > 0:
			status = menuDimStyle.Render(fmt.Sprintf("played %d", item.Played))
		}
		b.WriteString(centerText(cursor+title+"  "+status, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Stage  |  Left/Right: Difficulty  |  Enter: Play  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(menuDimStyle.Render(controls), m.width))
	b.WriteString("\n")
	return b.String()
}

// Difficulty returns the selected difficulty.
func (m MenuModel) Difficulty() config.Difficulty {
	return config.Difficulties[m.diff]
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	StageID         string
	Difficulty      config.Difficulty
	WantsScoreboard bool
	Quit            bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(store *storage.Store, preset config.Difficulty, width, height int) (MenuResult, error) {
	model := NewMenuModel(store, preset, width, height)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Difficulty: preset}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Difficulty: preset, Quit: true}, nil
	}

	result := MenuResult{Difficulty: m.Difficulty()}
	switch {
	case m.WantsScoreboard():
		result.WantsScoreboard = true
	case m.Selected() != nil:
		result.StageID = m.Selected().StageID
	default:
		result.Quit = true
	}
	return result, nil
}
