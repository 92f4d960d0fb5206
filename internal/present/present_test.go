package present

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/slide/internal/deckstore"
	"github.com/ziadkadry99/slide/internal/kv"
	"github.com/ziadkadry99/slide/internal/logging"
	"github.com/ziadkadry99/slide/internal/render"
	"github.com/ziadkadry99/slide/internal/theme"
)

func newModel(t *testing.T, store kv.Store) (*Model, *deckstore.Store) {
	t.Helper()
	ds := deckstore.New(store, deckstore.Options{
		Logger:       logging.Discard(),
		EditDebounce: 10 * time.Millisecond,
		ImageDelay:   time.Hour,
	})
	t.Cleanup(ds.Close)
	if err := ds.Load(context.Background(), deckstore.LoadParams{}); err != nil {
		t.Fatal(err)
	}
	m := New(context.Background(), ds)
	t.Cleanup(m.Close)
	return m, ds
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNavigationKeys(t *testing.T) {
	m, ds := newModel(t, kv.NewMemory())

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want int
	}{
		{"right", tea.KeyMsg{Type: tea.KeyRight}, 1},
		{"right clamps", tea.KeyMsg{Type: tea.KeyRight}, 1},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, 0},
		{"left clamps", runes("h"), 0},
		{"digit", runes("2"), 1},
		{"digit past end clamps", runes("9"), 1},
		{"home", tea.KeyMsg{Type: tea.KeyHome}, 0},
	}
	for _, tt := range tests {
		m.Update(tt.msg)
		if got, _ := ds.Current(); got != tt.want {
			t.Errorf("%s: cursor = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, kv.NewMemory())
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestEditModeSavesText(t *testing.T) {
	store := kv.NewMemory()
	m, ds := newModel(t, store)

	m.Update(runes("e"))
	if m.mode != modeEdit || !ds.EditMode() {
		t.Fatal("e did not switch to the editor")
	}
	if raw, _ := store.Get(context.Background(), deckstore.EditFlagKey); raw != "true" {
		t.Errorf("edit flag = %q, want true", raw)
	}

	m.Update(runes("x"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeSlides || ds.EditMode() {
		t.Error("esc did not leave the editor")
	}
	if text := ds.Deck().Text; !strings.HasSuffix(text, "x") {
		t.Errorf("text = %q, want the typed character saved", text)
	}
}

func TestStartsInEditorWhenFlagSet(t *testing.T) {
	store := kv.NewMemory()
	store.Set(context.Background(), deckstore.EditFlagKey, "true")
	m, _ := newModel(t, store)
	if m.mode != modeEdit {
		t.Error("presenter did not start in the editor")
	}
}

func TestDeckList(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	store.Set(ctx, "Talk", `{"name":"Talk","text":"# Talk\n\n# End"}`)
	store.Set(ctx, "slide-sets", `["Talk"]`)
	m, ds := newModel(t, store)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.mode != modeDecks || cmd == nil {
		t.Fatal("tab did not open the deck list")
	}
	m.Update(cmd())
	if !strings.Contains(m.View(), "Talk") {
		t.Errorf("deck list view = %q", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeSlides {
		t.Error("enter did not return to slides")
	}
	if got := ds.Deck().Name; got != "Talk" {
		t.Errorf("deck = %q, want Talk", got)
	}
}

func TestRenderSlide(t *testing.T) {
	plan := render.Build("# Hello\n\nworld\n\n\nthanks", 0, "", theme.Default())
	out := renderSlide(plan, theme.Default(), 60, 12)
	for _, want := range []string{"Hello", "world", "thanks"} {
		if !strings.Contains(out, want) {
			t.Errorf("slide missing %q:\n%s", want, out)
		}
	}

	img := render.Build("# Cats", 0, "url(https://img.example/cat.jpg)", theme.Default())
	if out := renderSlide(img, theme.Default(), 60, 12); !strings.Contains(out, "https://img.example/cat.jpg") {
		t.Errorf("image slide missing address:\n%s", out)
	}
}

func TestLineOffset(t *testing.T) {
	text := "# A\nbody\n# B"
	for row, want := range []int{0, 4, 9} {
		if got := lineOffset(text, row); got != want {
			t.Errorf("lineOffset(row %d) = %d, want %d", row, got, want)
		}
	}
}
