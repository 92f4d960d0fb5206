package present

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ziadkadry99/slide/internal/deckstore"
	"github.com/ziadkadry99/slide/internal/render"
	"github.com/ziadkadry99/slide/internal/theme"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	footerStyle  = lipgloss.NewStyle().Faint(true)
	statusStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4040"))
	tileStyle    = lipgloss.NewStyle().Padding(0, 2).MarginBottom(1).Foreground(lipgloss.Color("#FFFFFF"))
	selectedTile = tileStyle.Bold(true).Underline(true)
)

// Run presents store until the user quits or ctx is done.
func Run(ctx context.Context, store *deckstore.Store) error {
	m := New(ctx, store)
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.mode {
	case modeEdit:
		body = m.editor.View()
	case modeDecks:
		body = m.decksView()
	default:
		body = m.slideView()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) slideView() string {
	plan := m.store.Plan()
	palette := m.store.Palette()
	return renderSlide(plan, palette, m.width, max(m.height-2, 1))
}

// renderSlide draws a plan as a full-width block. Color backgrounds are
// filled in; image backgrounds are shown as their address above the panel.
func renderSlide(plan render.Plan, palette theme.Palette, width, height int) string {
	lines := strings.Split(plan.Body, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = headingStyle.Render(strings.TrimSpace(strings.TrimLeft(line, "#")))
		}
	}
	content := strings.Join(lines, "\n")
	if plan.HasFooter() {
		content += "\n\n" + footerStyle.Render(plan.Footer)
	}
	if plan.Background.IsImage() {
		content = footerStyle.Render("[image] "+plan.Background.URL()) + "\n\n" + content
	}

	align := lipgloss.Left
	if plan.TextAlign == render.AlignCenter {
		align = lipgloss.Center
	}
	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 4).
		Align(align, lipgloss.Center)
	if !plan.Background.IsImage() {
		style = style.Background(lipgloss.Color(palette.Resolve(string(plan.Background))))
	}
	if plan.Panel == render.PanelEnd {
		style = style.Align(lipgloss.Right, lipgloss.Center)
	}
	return style.Render(content)
}

func (m *Model) decksView() string {
	if len(m.decks) == 0 {
		return "No saved decks. Press N for a new one, esc to go back."
	}
	palette := m.store.Palette()
	tiles := make([]string, 0, len(m.decks))
	for i, name := range m.decks {
		style := tileStyle
		if i == m.selected {
			style = selectedTile
		}
		bg := palette.Resolve(render.NameBackground(name, palette))
		tiles = append(tiles, style.Background(lipgloss.Color(bg)).Render(name))
	}
	return lipgloss.JoinVertical(lipgloss.Left, tiles...)
}

func (m *Model) statusLine() string {
	cursor, _ := m.store.Current()
	name := m.store.Deck().Name
	if name == "" {
		name = "untitled"
	}
	var hint string
	switch m.mode {
	case modeEdit:
		hint = "esc: present"
	case modeDecks:
		hint = "enter: open  N: new  esc: back"
	default:
		hint = "←/→: move  1-9: jump  e: edit  tab: decks  q: quit"
	}
	return statusStyle.Render(fmt.Sprintf("%s  %d/%d  %s  %s",
		name, cursor+1, len(m.store.Slides()), m.store.State(), hint))
}
