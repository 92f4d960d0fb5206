package theme

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestAccentRotates(t *testing.T) {
	p := Default()
	want := []string{"graph-1", "graph-2", "graph-3", "graph-1"}
	for i, w := range want {
		if got := p.Accent(i); got != w {
			t.Errorf("Accent(%d) = %q, want %q", i, got, w)
		}
	}

	p.Accents = []string{"a", "b", "c", "d"}
	if got := p.Accent(7); got != "d" {
		t.Errorf("Accent(7) with four accents = %q, want %q", got, "d")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		ext  string
		data string
	}{
		{".json", `{"name":"sunset","colors":{"sun":"#ff8800"},"accents":["sun","brand"]}`},
		{".yaml", "name: sunset\ncolors:\n  sun: \"#ff8800\"\naccents: [sun, brand]\n"},
		{".toml", "name = \"sunset\"\naccents = [\"sun\", \"brand\"]\n[colors]\nsun = \"#ff8800\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			p, err := Parse(tt.ext, []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if p.Name != "sunset" {
				t.Errorf("Name = %q, want sunset", p.Name)
			}
			if p.Resolve("sun") != "#ff8800" {
				t.Errorf("sun = %q", p.Resolve("sun"))
			}
			if !p.Has("brand") {
				t.Error("default colors not inherited")
			}
			if len(p.Accents) != 2 || p.Accents[0] != "sun" {
				t.Errorf("Accents = %v", p.Accents)
			}
		})
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewLoader(srv.Client(), nil)
	p := l.Load(context.Background(), srv.URL+"/theme")
	if p.Name != "default" {
		t.Errorf("Name = %q, want default", p.Name)
	}
	if p := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json")); p.Name != "default" {
		t.Errorf("missing file Name = %q, want default", p.Name)
	}
}

func TestLoadURLAndFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"remote","colors":{"ink":"#000"}}`))
	}))
	defer srv.Close()

	l := NewLoader(srv.Client(), nil)
	if p := l.Load(context.Background(), srv.URL); p.Name != "remote" || !p.Has("ink") {
		t.Errorf("remote palette = %+v", p)
	}

	path := filepath.Join(t.TempDir(), "local.yml")
	if err := os.WriteFile(path, []byte("name: local\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p := l.Load(context.Background(), path); p.Name != "local" {
		t.Errorf("file palette name = %q", p.Name)
	}
}
