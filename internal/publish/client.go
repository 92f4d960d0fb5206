package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ziadkadry99/slide/internal/deck"
)

// ErrUnauthorized is matched by errors.Is when the service rejects the PIN.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-success response from the storage service. Message is the
// response text, shown to the user as is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storage service returned %d", e.Status)
	}
	return e.Message
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match a 403.
func (e *Error) Unwrap() error {
	if e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// Client talks to the deck storage service.
type Client struct {
	apiURL   string
	shareURL string
	http     *http.Client
	now      func() time.Time
}

// NewClient creates a client for the service at apiURL. Share links are built
// from shareURL. A nil http client uses a 30s timeout default.
func NewClient(apiURL, shareURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiURL:   strings.TrimRight(apiURL, "/"),
		shareURL: shareURL,
		http:     hc,
		now:      time.Now,
	}
}

// ShareURL returns the link that opens the published deck id.
func (c *Client) ShareURL(id string) string {
	sep := "?"
	if strings.Contains(c.shareURL, "?") {
		sep = "&"
	}
	return c.shareURL + sep + "id=" + url.QueryEscape(id)
}

// Fetch downloads the published deck id. The returned deck is not local.
func (c *Client) Fetch(ctx context.Context, id string) (deck.Deck, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return deck.Deck{}, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return deck.Deck{}, fmt.Errorf("fetching deck %q: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return deck.Deck{}, fmt.Errorf("reading deck %q: %w", id, err)
	}
	if resp.StatusCode != http.StatusOK {
		return deck.Deck{}, &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var d deck.Deck
	if err := json.Unmarshal(body, &d); err != nil {
		return deck.Deck{}, fmt.Errorf("decoding deck %q: %w", id, err)
	}
	d.Local = false
	if d.ID == "" {
		d.ID = id
	}
	return d, nil
}

// Publish sends d under id. On success it returns the published copy: id,
// share link, email and PIN-stamped date filled in, marked local. On failure
// d is returned unchanged with the error.
func (c *Client) Publish(ctx context.Context, d deck.Deck, id Identity) (deck.Deck, error) {
	if err := id.Validate(); err != nil {
		return d, err
	}
	date, err := deck.EncodePIN(c.now(), id.PIN)
	if err != nil {
		return d, err
	}

	next := d.Wire()
	next.Email = id.Email
	next.Date = &date

	body, err := json.Marshal(next)
	if err != nil {
		return d, fmt.Errorf("encoding deck: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/", bytes.NewReader(body))
	if err != nil {
		return d, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return d, fmt.Errorf("publishing deck %q: %w", d.Name, err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return d, fmt.Errorf("reading publish response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return d, &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(text))}
	}

	published := strings.TrimSpace(string(text))
	next.ID = published
	next.PublishedURL = c.ShareURL(published)
	next.Local = true
	next.PIN = id.PIN
	return next, nil
}
