// Package imagesearch finds background images for title-only slides.
package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Finder looks up an image URL for a search term. ok is false when nothing
// matched.
type Finder interface {
	Find(ctx context.Context, query string) (imageURL string, ok bool, err error)
}

// DefaultUnsplashURL is the Unsplash API root.
const DefaultUnsplashURL = "https://api.unsplash.com"

// ErrNoKey is returned when no Unsplash access key is configured.
var ErrNoKey = errors.New("unsplash access key not configured")

// Unsplash searches photos through the Unsplash API.
type Unsplash struct {
	key     string
	baseURL string
	http    *http.Client
}

// NewUnsplash creates a Finder authenticating with the access key.
func NewUnsplash(key string, hc *http.Client) *Unsplash {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Unsplash{key: key, baseURL: DefaultUnsplashURL, http: hc}
}

// WithBaseURL returns a copy of u that talks to baseURL instead.
func (u *Unsplash) WithBaseURL(baseURL string) *Unsplash {
	c := *u
	c.baseURL = strings.TrimRight(baseURL, "/")
	return &c
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Find returns the regular-size URL of the first photo matching query.
func (u *Unsplash) Find(ctx context.Context, query string) (string, bool, error) {
	if u.key == "" {
		return "", false, ErrNoKey
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("Authorization", "Client-ID "+u.key)

	resp, err := u.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("searching images for %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", false, fmt.Errorf("unsplash returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false, fmt.Errorf("decoding unsplash response: %w", err)
	}
	if len(result.Results) == 0 || result.Results[0].URLs.Regular == "" {
		return "", false, nil
	}
	return result.Results[0].URLs.Regular, true, nil
}
