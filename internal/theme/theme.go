// Package theme resolves the palette a deck is rendered with.
//
// A deck's theme field is either empty (the default palette), an http(s) URL
// to a JSON theme, or a path to a local JSON, YAML or TOML theme file.
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Palette maps color names to concrete color values and lists the accent
// names rotated through as default slide backgrounds.
type Palette struct {
	Name    string            `json:"name" yaml:"name" toml:"name"`
	Colors  map[string]string `json:"colors" yaml:"colors" toml:"colors"`
	Accents []string          `json:"accents" yaml:"accents" toml:"accents"`
}

// Default returns the built-in palette.
func Default() Palette {
	return Palette{
		Name: "default",
		Colors: map[string]string{
			"brand":           "#7D4CDB",
			"accent-1":        "#6FFFB0",
			"accent-2":        "#FD6FFF",
			"accent-3":        "#81FCED",
			"accent-4":        "#FFCA58",
			"neutral-1":       "#00873D",
			"neutral-2":       "#3D138D",
			"neutral-3":       "#00739D",
			"neutral-4":       "#A2423D",
			"graph-1":         "#3D138D",
			"graph-2":         "#00739D",
			"graph-3":         "#A2423D",
			"graph-4":         "#00873D",
			"dark-1":          "#333333",
			"dark-2":          "#555555",
			"dark-3":          "#777777",
			"light-1":         "#F8F8F8",
			"light-2":         "#F2F2F2",
			"status-ok":       "#00C781",
			"status-warning":  "#FFAA15",
			"status-critical": "#FF4040",
		},
		Accents: []string{"graph-1", "graph-2", "graph-3"},
	}
}

// Has reports whether name is a color of the palette.
func (p Palette) Has(name string) bool {
	_, ok := p.Colors[name]
	return ok
}

// Resolve returns the concrete value of a color name, or name itself when
// the palette does not define it.
func (p Palette) Resolve(name string) string {
	if v, ok := p.Colors[name]; ok {
		return v
	}
	return name
}

// Accent returns the accent used for the slide at ordinal.
func (p Palette) Accent(ordinal int) string {
	if len(p.Accents) == 0 {
		return ""
	}
	if ordinal < 0 {
		ordinal = -ordinal
	}
	return p.Accents[ordinal%len(p.Accents)]
}

// Loader fetches theme references.
type Loader struct {
	client *http.Client
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil client uses http.DefaultClient and a nil
// logger uses slog.Default().
func NewLoader(client *http.Client, logger *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{client: client, logger: logger}
}

// Load returns the palette for ref. Any failure falls back to the default
// palette and is only logged.
func (l *Loader) Load(ctx context.Context, ref string) Palette {
	if strings.TrimSpace(ref) == "" {
		return Default()
	}
	p, err := l.load(ctx, ref)
	if err != nil {
		l.logger.Warn("theme load failed, using default", "theme", ref, "error", err)
		return Default()
	}
	return p
}

func (l *Loader) load(ctx context.Context, ref string) (Palette, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return l.fetch(ctx, ref)
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return Palette{}, fmt.Errorf("reading theme: %w", err)
	}
	return Parse(filepath.Ext(ref), data)
}

func (l *Loader) fetch(ctx context.Context, url string) (Palette, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Palette{}, fmt.Errorf("creating request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return Palette{}, fmt.Errorf("fetching theme: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Palette{}, fmt.Errorf("reading theme response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Palette{}, fmt.Errorf("theme returned status %d: %s", resp.StatusCode, string(body))
	}
	return Parse(".json", body)
}

// Parse decodes a theme document. ext selects the format (".json", ".yaml",
// ".yml" or ".toml"). Colors missing from the document are inherited from
// the default palette, and an empty accent list keeps the default accents.
func Parse(ext string, data []byte) (Palette, error) {
	var p Palette
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, &p)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return Palette{}, fmt.Errorf("parsing theme: %w", err)
	}

	base := Default()
	for k, v := range p.Colors {
		base.Colors[k] = v
	}
	if p.Name != "" {
		base.Name = p.Name
	}
	if len(p.Accents) > 0 {
		base.Accents = p.Accents
	}
	return base, nil
}
