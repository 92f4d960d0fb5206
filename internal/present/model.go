// Package present shows the current deck in the terminal. Slides fill the
// screen; "e" switches to an editor whose changes are saved through the deck
// store, and tab opens the list of local decks.
package present

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/slide/internal/debounce"
	"github.com/ziadkadry99/slide/internal/deckstore"
)

type mode int

const (
	modeSlides mode = iota
	modeEdit
	modeDecks
)

// storeEventMsg carries a deck store change into the update loop.
type storeEventMsg deckstore.Event

// decksMsg carries a freshly read deck index.
type decksMsg struct {
	names []string
	err   error
}

// Model is the bubbletea model of the presenter.
type Model struct {
	ctx    context.Context
	store  *deckstore.Store
	events chan deckstore.Event
	unsub  func()

	mode     mode
	editor   textarea.Model
	decks    []string
	selected int
	err      error

	width  int
	height int
}

// New creates a presenter over store. It starts in the editor when the
// store's editor flag is set.
func New(ctx context.Context, store *deckstore.Store) *Model {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	m := &Model{
		ctx:    ctx,
		store:  store,
		events: make(chan deckstore.Event, 16),
		editor: ta,
		width:  80,
		height: 24,
	}
	m.unsub = store.Subscribe(func(ev deckstore.Event) {
		select {
		case m.events <- ev:
		default:
		}
	})
	if store.EditMode() {
		m.enterEdit()
	}
	return m
}

// Close stops following the store.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return storeEventMsg(ev)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) loadDecks() tea.Cmd {
	return func() tea.Msg {
		names, err := m.store.Index().List(m.ctx)
		return decksMsg{names: names, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.editor.SetWidth(msg.Width)
		m.editor.SetHeight(max(msg.Height-3, 1))
		return m, nil

	case storeEventMsg:
		return m, m.waitForEvent()

	case decksMsg:
		m.decks, m.err = msg.names, msg.err
		m.selected = 0
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.store.Flush()
			return m, tea.Quit
		}
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeDecks:
			return m.updateDecks(msg)
		default:
			return m.updateSlides(msg)
		}
	}

	if m.mode == modeEdit {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateSlides(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		m.store.Flush()
		return m, tea.Quit
	case "right", "l", "n", " ", "pgdown":
		m.store.Next()
	case "left", "h", "p", "pgup":
		m.store.Previous()
	case "home":
		m.store.SetCursor(0)
	case "end":
		m.store.SetCursor(len(m.store.Slides()) - 1)
	case "e":
		m.enterEdit()
		m.err = m.store.SetEditMode(m.ctx, true)
	case "tab":
		m.mode = modeDecks
		return m, m.loadDecks()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			m.store.SetCursor(int(key[0] - '1'))
		}
	}
	return m, nil
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.store.Flush()
		m.editor.Blur()
		m.mode = modeSlides
		m.err = m.store.SetEditMode(m.ctx, false)
		return m, nil
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.store.Edit(debounce.FieldText, after)
	}
	m.store.SetCursorFromOffset(lineOffset(m.editor.Value(), m.editor.Line()))
	return m, cmd
}

func (m *Model) updateDecks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab":
		m.mode = modeSlides
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.decks)-1 {
			m.selected++
		}
	case "enter":
		if m.selected < len(m.decks) {
			m.store.Flush()
			m.err = m.store.Load(m.ctx, deckstore.LoadParams{Name: m.decks[m.selected]})
			m.mode = modeSlides
		}
	case "N":
		m.store.Flush()
		m.err = m.store.NewDeck(m.ctx)
		m.mode = modeSlides
	}
	return m, nil
}

func (m *Model) enterEdit() {
	m.mode = modeEdit
	m.editor.SetValue(m.store.Value(debounce.FieldText))
	m.editor.Focus()
}

// lineOffset returns the byte offset of the start of line row in text.
func lineOffset(text string, row int) int {
	offset := 0
	for i, line := range strings.Split(text, "\n") {
		if i == row {
			break
		}
		offset += len(line) + 1
	}
	return offset
}
