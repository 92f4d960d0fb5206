package preview

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/slide/internal/deckstore"
	"github.com/ziadkadry99/slide/internal/kv"
	"github.com/ziadkadry99/slide/internal/logging"
	"github.com/ziadkadry99/slide/internal/render"
	"github.com/ziadkadry99/slide/internal/theme"
)

func newDeckStore(t *testing.T) *deckstore.Store {
	t.Helper()
	s := deckstore.New(kv.NewMemory(), deckstore.Options{
		Logger:     logging.Discard(),
		ImageDelay: time.Hour,
	})
	t.Cleanup(s.Close)
	if err := s.Load(context.Background(), deckstore.LoadParams{}); err != nil {
		t.Fatal(err)
	}
	return s
}

func newPreviewServer(t *testing.T, store *deckstore.Store) (*Preview, *httptest.Server) {
	t.Helper()
	p := New(store, logging.Discard())
	r := chi.NewRouter()
	p.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		p.Close()
		srv.Close()
	})
	return p, srv
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRendererColorBackground(t *testing.T) {
	r := NewRenderer()
	plan := render.Build("# Hello\n\nworld", 0, "", theme.Default())

	html, err := r.Slide(plan, theme.Default())
	if err != nil {
		t.Fatal(err)
	}
	out := string(html)
	if !strings.Contains(out, "background-color") {
		t.Errorf("missing background color in %s", out)
	}
	if !strings.Contains(out, "3D138D") {
		t.Errorf("accent not resolved through palette in %s", out)
	}
	if !strings.Contains(out, "Hello</h1>") {
		t.Errorf("heading not rendered in %s", out)
	}
	if strings.Contains(out, "<footer>") {
		t.Errorf("unexpected footer in %s", out)
	}
}

func TestRendererImageBackground(t *testing.T) {
	r := NewRenderer()
	plan := render.Build("# Cats", 0, "url(https://img.example/cat.jpg)", theme.Default())

	html, err := r.Slide(plan, theme.Default())
	if err != nil {
		t.Fatal(err)
	}
	out := string(html)
	if !strings.Contains(out, "background-image") || !strings.Contains(out, "https://img.example/cat.jpg") {
		t.Errorf("missing image background in %s", out)
	}
	if !strings.Contains(out, "has-panel") {
		t.Errorf("image slide should draw a panel: %s", out)
	}
}

func TestRendererFooter(t *testing.T) {
	r := NewRenderer()
	plan := render.Build("# Title\n\nbody\n\n\nthanks **all**", 0, "", theme.Default())

	html, err := r.Slide(plan, theme.Default())
	if err != nil {
		t.Fatal(err)
	}
	out := string(html)
	if !strings.Contains(out, "<footer>") || !strings.Contains(out, "<strong>all</strong>") {
		t.Errorf("footer not rendered in %s", out)
	}
}

func TestPageShowsCurrentSlide(t *testing.T) {
	store := newDeckStore(t)
	_, srv := newPreviewServer(t, store)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(string(body), "Hot</h1>") {
		t.Errorf("page does not show the first slide:\n%s", body)
	}
}

func TestWebSocketFollowsStore(t *testing.T) {
	store := newDeckStore(t)
	p, srv := newPreviewServer(t, store)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var msg slideMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "slide" || msg.Cursor != 0 || msg.Total != 2 {
		t.Errorf("first message = %+v", msg)
	}
	eventually(t, func() bool { return p.Clients() == 1 })

	if err := conn.WriteJSON(controlMessage{Type: "next"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Cursor != 1 || !strings.Contains(string(msg.HTML), "Frosty") {
		t.Errorf("after next = %+v", msg)
	}
	if cur, _ := store.Current(); cur != 1 {
		t.Errorf("store cursor = %d, want 1", cur)
	}
}

func TestWatchReloadsText(t *testing.T) {
	store := newDeckStore(t)
	path := filepath.Join(t.TempDir(), "talk.md")
	if err := os.WriteFile(path, []byte("# One"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, store, logging.Discard()) }()

	// Rewrite until the watcher has been registered and picks it up.
	eventually(t, func() bool {
		os.WriteFile(path, []byte("# One\n\n# Two"), 0o644)
		return store.Deck().Text == "# One\n\n# Two"
	})
	if got := len(store.Slides()); got != 2 {
		t.Errorf("slides = %d, want 2", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop")
	}
}

func TestRendererDropsUnsafeColor(t *testing.T) {
	palette := theme.Default()
	palette.Colors["graph-1"] = "red; position: fixed"
	plan := render.Build("# Hello\n\nworld", 0, "", palette)

	html, err := NewRenderer().Slide(plan, palette)
	if err != nil {
		t.Fatal(err)
	}
	if out := string(html); strings.Contains(out, "position: fixed") || strings.Contains(out, "background-color") {
		t.Errorf("unsafe color written into style: %s", out)
	}
}
