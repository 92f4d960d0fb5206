package preview

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/slide/internal/deckstore"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// slideMessage is pushed to browsers whenever the deck or cursor changes.
type slideMessage struct {
	Type   string        `json:"type"` // "slide"
	Cursor int           `json:"cursor"`
	Total  int           `json:"total"`
	Title  string        `json:"title"`
	HTML   template.HTML `json:"html"`
}

// controlMessage is sent by browsers to move through the deck.
type controlMessage struct {
	Type  string `json:"type"` // "next", "previous" or "goto"
	Slide int    `json:"slide"`
}

// client is one connected browser. Writes are serialized per connection.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Preview serves the store's current slide and keeps connected browsers in
// sync with it.
type Preview struct {
	store    *deckstore.Store
	renderer *Renderer
	page     *template.Template
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]*client

	unsubscribe func()
}

// New creates a Preview and subscribes it to store changes.
func New(store *deckstore.Store, logger *slog.Logger) *Preview {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Preview{
		store:    store,
		renderer: NewRenderer(),
		page:     template.Must(template.New("page").Parse(pageTemplate)),
		logger:   logger,
		clients:  make(map[string]*client),
	}
	p.unsubscribe = store.Subscribe(func(deckstore.Event) { p.broadcast() })
	return p
}

// RegisterRoutes mounts the page and the websocket on r.
func (p *Preview) RegisterRoutes(r chi.Router) {
	r.Get("/", p.handlePage)
	r.Get("/ws", p.handleWebSocket)
}

// Close disconnects all browsers and stops following the store.
func (p *Preview) Close() {
	p.unsubscribe()
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.conn.Close()
		delete(p.clients, id)
	}
}

// Clients returns the number of connected browsers.
func (p *Preview) Clients() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

func (p *Preview) current() (slideMessage, error) {
	cursor, _ := p.store.Current()
	html, err := p.renderer.Slide(p.store.Plan(), p.store.Palette())
	if err != nil {
		return slideMessage{}, err
	}
	title := p.store.Deck().Name
	if title == "" {
		title = "slide"
	}
	return slideMessage{
		Type:   "slide",
		Cursor: cursor,
		Total:  len(p.store.Slides()),
		Title:  title,
		HTML:   html,
	}, nil
}

func (p *Preview) handlePage(w http.ResponseWriter, r *http.Request) {
	msg, err := p.current()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err = p.page.Execute(&buf, map[string]any{
		"Title":  msg.Title,
		"Slide":  msg.HTML,
		"Number": msg.Cursor + 1,
		"Total":  msg.Total,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (p *Preview) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Warn("preview: websocket upgrade", "error", err)
		return
	}
	c := &client{id: uuid.New().String(), conn: conn}

	p.mu.Lock()
	p.clients[c.id] = c
	p.mu.Unlock()
	p.logger.Debug("preview client connected", "client", c.id)

	defer func() {
		p.mu.Lock()
		delete(p.clients, c.id)
		p.mu.Unlock()
		conn.Close()
	}()

	if msg, err := p.current(); err == nil {
		c.send(msg)
	}

	for {
		var ctl controlMessage
		if err := conn.ReadJSON(&ctl); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Debug("preview: websocket read", "client", c.id, "error", err)
			}
			return
		}
		switch ctl.Type {
		case "next":
			p.store.Next()
		case "previous":
			p.store.Previous()
		case "goto":
			p.store.SetCursor(ctl.Slide)
		}
	}
}

// broadcast sends the current slide to every browser.
func (p *Preview) broadcast() {
	msg, err := p.current()
	if err != nil {
		p.logger.Error("preview: rendering slide", "error", err)
		return
	}

	p.mu.Lock()
	clients := make([]*client, 0, len(p.clients))
	for _, c := range p.clients {
		clients = append(clients, c)
	}
	p.mu.Unlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			p.logger.Debug("preview: websocket write", "client", c.id, "error", err)
		}
	}
}
