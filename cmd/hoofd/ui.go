package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/GD-alt/hoofd/internal/config"
	"github.com/GD-alt/hoofd/internal/storage"
	"github.com/GD-alt/hoofd/pkg/engine"
	"github.com/GD-alt/hoofd/pkg/scene"
)

type screen int

const (
	screenMenu screen = iota
	screenScene
	screenCredits
	screenLanguage
	screenQuit
)

var (
	scenePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(1)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// menuItem is one actionable entry of the main menu.
type menuItem struct {
	label  string
	action string
}

// UI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type UI struct {
	game     *config.Game
	gamePath string
	lib      *scene.Library
	store    storage.Store
	logger   *slog.Logger

	session *engine.Session
	notices *[]string

	sceneViewport viewport.Model
	metaViewport  viewport.Model
	ready         bool
	width         int
	height        int

	screen     screen
	prevScreen screen
	selected   int
	err        error
}

func NewUI(game *config.Game, gamePath string, lib *scene.Library, store storage.Store, logger *slog.Logger) UI {
	sceneVp := viewport.New(60, 20)
	sceneVp.MouseWheelEnabled = true
	metaVp := viewport.New(24, 20)

	notices := make([]string, 0, 4)
	return UI{
		game:          game,
		gamePath:      gamePath,
		lib:           lib,
		store:         store,
		logger:        logger,
		notices:       &notices,
		sceneViewport: sceneVp,
		metaViewport:  metaVp,
		screen:        screenMenu,
	}
}

func (m UI) Init() tea.Cmd {
	return nil
}

// set returns the scene set for the configured language. Content for every
// configured language was verified at startup.
func (m *UI) set() *scene.Set {
	s, err := m.lib.Select(m.game.Language)
	if err != nil {
		panic(err)
	}
	return s
}

// activeSet prefers the running session's set: a language switch only takes
// effect on the next game start.
func (m *UI) activeSet() *scene.Set {
	if m.session != nil {
		return m.session.Set()
	}
	return m.set()
}

func (m *UI) pushNotice(msg string) {
	*m.notices = append(*m.notices, msg)
	if len(*m.notices) > 3 {
		*m.notices = (*m.notices)[len(*m.notices)-3:]
	}
}

func (m *UI) newSession() *engine.Session {
	set := m.set()
	policy := engine.EvalStrict
	if m.game.Policy == "lenient" {
		policy = engine.EvalLenient
	}
	opts := []engine.Option{
		engine.WithLogger(m.logger),
		engine.WithPolicy(policy),
		engine.WithHistoryLimit(m.game.HistoryLimit),
		engine.WithNotifier(m.pushNotice),
	}
	if m.store != nil {
		opts = append(opts, engine.WithStore(m.store, engine.DefaultSlot))
	}
	return engine.NewSession(set, opts...)
}

func (m *UI) menuItems() []menuItem {
	set := m.set()
	items := []menuItem{{set.Localized(scene.StrStart), "start"}}
	if m.store != nil {
		items = append(items, menuItem{set.Localized(scene.StrLoad), "load"})
	}
	items = append(items, menuItem{set.Localized(scene.StrCredits), "credits"})
	if len(m.game.Languages) > 1 {
		items = append(items, menuItem{set.Localized(scene.StrLanguage), "language"})
	}
	items = append(items, menuItem{set.Localized(scene.StrExit), "exit"})
	return items
}

func (m UI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.screen == screenQuit {
				return m, tea.Quit
			}
			m.prevScreen = m.screen
			m.screen = screenQuit
			return m, nil
		}

		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenScene:
			return m.updateScene(msg)
		case screenCredits:
			m.screen = screenMenu
			return m, nil
		case screenLanguage:
			return m.updateLanguage(msg)
		case screenQuit:
			return m.updateQuit(msg)
		}

	case tea.MouseMsg:
		if m.screen == screenScene {
			var cmd tea.Cmd
			m.sceneViewport, cmd = m.sceneViewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *UI) resize() {
	sceneWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - sceneWidth - 6
	m.sceneViewport.Width = sceneWidth - 2
	m.sceneViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	if m.screen == screenScene {
		m.refreshScene()
	}
}

func (m UI) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menuItems()
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(items)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		return m.runMenuAction(items[m.selected].action)
	}
	return m, nil
}

func (m UI) runMenuAction(action string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch action {
	case "start":
		m.session = m.newSession()
		if err := m.session.Start(ctx); err != nil {
			m.err = err
			m.session = nil
			return m, nil
		}
		m.err = nil
		m.selected = 0
		m.screen = screenScene
		m.refreshScene()

	case "load":
		m.session = m.newSession()
		if err := m.session.Load(ctx); err != nil {
			m.err = err
			m.session = nil
			return m, nil
		}
		m.err = nil
		m.selected = 0
		m.screen = screenScene
		m.refreshScene()

	case "credits":
		m.screen = screenCredits

	case "language":
		m.selected = 0
		m.screen = screenLanguage

	case "exit":
		return m, tea.Quit
	}
	return m, nil
}

func (m UI) updateLanguage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	langs := m.game.Languages
	switch msg.Type {
	case tea.KeyEsc:
		m.selected = 0
		m.screen = screenMenu
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(langs)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		chosen := langs[m.selected]
		if m.lib.RestartRequired(m.game.Language, chosen) {
			set, err := m.lib.Select(chosen)
			if err == nil {
				m.pushNotice(set.Localized(scene.StrRestartNeeded))
			}
		}
		m.game.Language = chosen
		if err := m.game.Save(m.gamePath); err != nil {
			m.logger.Warn("failed to persist language choice", "error", err)
		}
		m.selected = 0
		m.screen = screenMenu
	}
	return m, nil
}

func (m UI) updateQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		return m, tea.Quit
	case "n", "N", "esc":
		m.screen = m.prevScreen
	}
	return m, nil
}

func (m UI) updateScene(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pres := m.session.Presentation()
	if pres == nil {
		m.screen = screenMenu
		return m, nil
	}

	ctx := context.Background()
	switch msg.Type {
	case tea.KeyEsc:
		m.session.Destroy()
		m.session = nil
		m.selected = 0
		m.screen = screenMenu
		return m, nil

	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		m.refreshScene()
		return m, nil

	case tea.KeyDown:
		if m.selected < len(pres.Exits)-1 {
			m.selected++
		}
		m.refreshScene()
		return m, nil

	case tea.KeyEnter:
		if len(pres.Exits) > 0 {
			return m.choose(ctx, m.selected)
		}
		return m, nil
	}

	switch key := msg.String(); key {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(key[0] - '1')
		if i < len(pres.Exits) {
			return m.choose(ctx, i)
		}

	case "s":
		if m.store != nil && m.game.SaveLoad {
			if err := m.session.Save(ctx); err != nil {
				m.err = err
			}
			m.refreshScene()
		}

	case "l":
		if m.store != nil && m.game.SaveLoad {
			if err := m.session.Load(ctx); err != nil {
				m.err = err
			}
			m.selected = 0
			m.refreshScene()
		}
	}

	var cmd tea.Cmd
	m.sceneViewport, cmd = m.sceneViewport.Update(msg)
	return m, cmd
}

func (m UI) choose(ctx context.Context, i int) (tea.Model, tea.Cmd) {
	if err := m.session.Choose(ctx, i); err != nil {
		m.err = err
		m.refreshScene()
		return m, nil
	}
	m.err = nil
	m.selected = 0

	switch m.session.Status() {
	case engine.StatusTerminated:
		return m, tea.Quit
	case engine.StatusAtMenu:
		m.session = nil
		m.screen = screenMenu
		return m, nil
	}
	m.refreshScene()
	return m, nil
}

// refreshScene rebuilds both viewports from the current presentation.
func (m *UI) refreshScene() {
	pres := m.session.Presentation()
	if pres == nil {
		return
	}
	width := m.sceneViewport.Width - 4
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	if pres.Header != "" {
		content.WriteString(titleStyle.Render(pres.Header) + "\n\n")
	}
	if pres.Image != "" {
		content.WriteString(pres.Image + "\n\n")
	}
	if pres.Speaker != "" {
		content.WriteString(speakerStyle.Render(pres.Speaker+":") + "\n")
	}
	content.WriteString(wordwrap.String(pres.Text, width) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for i, exit := range pres.Exits {
		line := fmt.Sprintf("%d. %s", i+1, exit.Label)
		if i == m.selected {
			content.WriteString(selectedItemStyle.Render("▶ "+line) + "\n")
		} else {
			content.WriteString(itemStyle.Render("  "+line) + "\n")
		}
	}
	m.sceneViewport.SetContent(content.String())
	m.metaViewport.SetContent(m.writeMetadata(pres))
}

func (m *UI) writeMetadata(pres *engine.Presentation) string {
	set := m.activeSet()
	var content strings.Builder
	content.WriteString(titleStyle.Render(m.game.Name) + "\n\n")

	if m.game.Inventory {
		content.WriteString(itemStyle.Render("Inventory") + "\n")
		for _, line := range pres.Inventory {
			content.WriteString("• " + line + "\n")
		}
		content.WriteString("\n")
	}

	for _, notice := range *m.notices {
		content.WriteString(noticeStyle.Render(notice) + "\n")
	}
	if len(*m.notices) > 0 {
		content.WriteString("\n")
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
	}

	content.WriteString(promptStyle.Render("↑/↓ + Enter, 1-9") + "\n")
	if m.store != nil && m.game.SaveLoad {
		content.WriteString(promptStyle.Render("s: "+set.Localized(scene.StrSaveShort)) + "\n")
		content.WriteString(promptStyle.Render("l: "+set.Localized(scene.StrLoadShort)) + "\n")
	}
	content.WriteString(promptStyle.Render("Esc: menu, Ctrl+C: quit") + "\n")
	return content.String()
}

func (m UI) renderMenu() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(m.game.Name))
	content.WriteString("\n\n")

	for i, item := range m.menuItems() {
		if i == m.selected {
			content.WriteString(selectedItemStyle.Render("▶ "+item.label) + "\n")
		} else {
			content.WriteString(itemStyle.Render("  "+item.label) + "\n")
		}
	}

	for _, notice := range *m.notices {
		content.WriteString("\n" + noticeStyle.Render(notice))
	}
	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}

	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("↑/↓ + Enter. Ctrl+C to quit."))

	modal := modalStyle.Width(48).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m UI) renderCredits() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(m.set().Localized(scene.StrCredits)))
	content.WriteString("\n\n")
	content.WriteString(wordwrap.String(m.game.Credits, 44))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press any key to go back"))

	modal := modalStyle.Width(48).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m UI) renderLanguage() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(m.set().Localized(scene.StrLanguage)))
	content.WriteString("\n\n")

	for i, lang := range m.game.Languages {
		if i == m.selected {
			content.WriteString(selectedItemStyle.Render("▶ "+lang) + "\n")
		} else {
			content.WriteString(itemStyle.Render("  "+lang) + "\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("↑/↓ + Enter, Esc to cancel"))

	modal := modalStyle.Width(36).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m UI) renderQuit() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(m.game.Name))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(40).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m UI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	switch m.screen {
	case screenMenu:
		return m.renderMenu()
	case screenCredits:
		return m.renderCredits()
	case screenLanguage:
		return m.renderLanguage()
	case screenQuit:
		return m.renderQuit()
	}

	sceneWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - sceneWidth - 6

	scenePanel := scenePanelStyle.Width(sceneWidth).Height(m.height - 2).Render(
		m.sceneViewport.View(),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, scenePanel, metaPanel)
}
