// Package tui is a terminal front end for the dashboard. It drives the same
// navigation router as the web server and renders each section's view as
// plain text.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/collegedash/internal/navigation"
	"github.com/conneroisu/collegedash/internal/sections"
	"github.com/conneroisu/collegedash/internal/views"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	paletteLimit  = 8
)

// AliasesReloadedMsg is sent when the aliases file has been reloaded.
type AliasesReloadedMsg struct {
	Entries int
}

// WaitForReloadCmd returns a command that waits for the next alias reload.
func WaitForReloadCmd(reloads <-chan int) tea.Cmd {
	return func() tea.Msg {
		entries, ok := <-reloads
		if !ok {
			return nil
		}
		return AliasesReloadedMsg{Entries: entries}
	}
}

// Model is the bubbletea model of the terminal dashboard.
type Model struct {
	router  *navigation.Router
	aliases *sections.AliasTable
	reloads <-chan int

	viewport viewport.Model
	width    int
	height   int

	palette     textinput.Model
	paletteOpen bool
	matches     []sections.Match
	selected    int

	status string
	err    error
}

// Option configures a Model.
type Option func(*Model)

// WithReloads makes the model report alias reloads received on ch.
func WithReloads(ch <-chan int) Option {
	return func(m *Model) {
		m.reloads = ch
	}
}

// New creates a model around router. aliases feeds the palette search and
// may be nil.
func New(router *navigation.Router, aliases *sections.AliasTable, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "section, alias or title"
	ti.Prompt = "Go to › "
	ti.CharLimit = 64
	ti.PromptStyle = lipgloss.NewStyle().Foreground(primary).Bold(true)

	m := Model{
		router:   router,
		aliases:  aliases,
		viewport: viewport.New(defaultWidth, defaultHeight),
		width:    defaultWidth,
		height:   defaultHeight,
		palette:  ti,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.layout()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.reloads != nil {
		return WaitForReloadCmd(m.reloads)
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case AliasesReloadedMsg:
		m.status = fmt.Sprintf("Aliases reloaded (%d entries)", msg.Entries)
		if m.paletteOpen {
			m.search()
		}
		m.layout()
		if m.reloads == nil {
			return m, nil
		}
		return m, WaitForReloadCmd(m.reloads)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.paletteOpen {
			return m.handlePaletteKeys(msg)
		}
		return m.handleDashboardKeys(msg)
	}
	return m, nil
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "ctrl+k", "/", ":":
		return m.openPalette()
	case "esc", "backspace", "b":
		m.router.Back()
		m.refresh()
	case "h", "home":
		m.router.Home()
		m.refresh()
	case "1", "2", "3", "4":
		hubs := sections.Hubs()
		m.router.Navigate(hubs[key[0]-'1'].String())
		m.refresh()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handlePaletteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		return m, nil
	case "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "ctrl+n", "tab":
		if m.selected < len(m.matches)-1 {
			m.selected++
		}
		return m, nil
	case "enter":
		target := m.palette.Value()
		if len(m.matches) > 0 {
			target = m.matches[m.selected].Section.String()
		}
		m.closePalette()
		m.router.Navigate(target)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.palette, cmd = m.palette.Update(msg)
	m.selected = 0
	m.search()
	return m, cmd
}

func (m Model) openPalette() (tea.Model, tea.Cmd) {
	m.paletteOpen = true
	m.palette.Reset()
	cmd := m.palette.Focus()
	m.search()
	m.layout()
	return m, cmd
}

func (m *Model) closePalette() {
	m.paletteOpen = false
	m.palette.Blur()
	m.palette.Reset()
	m.matches = nil
	m.selected = 0
	m.layout()
}

func (m *Model) search() {
	m.matches = sections.Search(m.aliases, m.palette.Value(), paletteLimit)
	if m.selected >= len(m.matches) {
		m.selected = 0
	}
}

// layout sizes the viewport to what the header, palette and footer leave.
func (m *Model) layout() {
	used := 3 // header with border, footer
	if m.status != "" {
		used++
	}
	if m.paletteOpen {
		used += 3 + paletteLimit
	}
	h := m.height - used
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

// refresh re-renders the active section into the viewport.
func (m *Model) refresh() {
	state := m.router.State()
	text, err := views.PlainText(context.Background(), views.RenderID(state.Active))
	if err != nil {
		m.err = err
		text = "Failed to render " + state.Title + ": " + err.Error()
	}

	m.status = ""
	if !state.Known {
		m.status = fmt.Sprintf("No section named %q, showing the overview", state.Active)
	}
	m.viewport.SetContent(bodyStyle.Width(m.width).Render(text))
	m.viewport.GotoTop()
	m.layout()
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	if m.paletteOpen {
		b.WriteString(m.paletteView())
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) headerView() string {
	crumbs := m.router.State().Breadcrumbs
	parts := make([]string, 0, len(crumbs))
	for i, crumb := range crumbs {
		if i == len(crumbs)-1 {
			parts = append(parts, activeCrumbStyle.Render(crumb.Title))
		} else {
			parts = append(parts, crumbStyle.Render(crumb.Title))
		}
	}
	return headerStyle.Width(m.width).Render(strings.Join(parts, separatorStyle.Render(" › ")))
}

func (m Model) paletteView() string {
	title := cases.Title(language.English)
	lines := []string{m.palette.View()}
	if len(m.matches) == 0 {
		lines = append(lines, matchDetailStyle.Render("  no match, enter opens it as typed"))
	}
	for i, match := range m.matches {
		detail := matchDetailStyle.Render(fmt.Sprintf("  %s · %s", title.String(match.Section.Kind().String()), match.MatchedOn))
		if i == m.selected {
			lines = append(lines, selectedMatchStyle.Render("› "+match.Section.Title())+detail)
			continue
		}
		lines = append(lines, matchStyle.Render(match.Section.Title())+detail)
	}
	return paletteStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) helpView() string {
	if m.paletteOpen {
		return helpStyle.Render("↑/↓ select • enter go • esc close")
	}
	return helpStyle.Render("ctrl+k palette • esc back • h home • 1-4 hubs • q quit")
}

// Run starts the terminal dashboard and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, model Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running terminal dashboard: %w", err)
	}
	return nil
}
