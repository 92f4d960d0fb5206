package importer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/deckstore"
	"github.com/ziadkadry99/slide/internal/kv"
	"github.com/ziadkadry99/slide/internal/logging"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "intro.md", "# Intro\n\n# Next")
	writeFile(t, root, "talks/go.markdown", "# Go")
	writeFile(t, root, "talks/draft.md", "# Draft")
	writeFile(t, root, "notes.txt", "not a deck")
	writeFile(t, root, "node_modules/pkg/readme.md", "# vendored")
	writeFile(t, root, "bin.md", "#\x00\x01")
	return root
}

func TestWalkDefaults(t *testing.T) {
	files, err := Walk(WalkConfig{RootDir: sampleTree(t)})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"intro.md", "talks/draft.md", "talks/go.markdown"}
	if got := relPaths(files); !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalkIncludeExclude(t *testing.T) {
	files, err := Walk(WalkConfig{
		RootDir: sampleTree(t),
		Include: []string{"talks/**"},
		Exclude: []string{"**/draft.*"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"talks/go.markdown"}
	if got := relPaths(files); !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalkMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.md", "# s")
	writeFile(t, root, "big.md", "# this one is larger")
	files, err := Walk(WalkConfig{RootDir: root, MaxFileSize: 5})
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); !reflect.DeepEqual(got, []string{"small.md"}) {
		t.Errorf("Walk() = %v", got)
	}
}

func TestDeckName(t *testing.T) {
	tests := map[string]string{
		"intro.md":          "intro",
		"talks/go.markdown": "talks-go",
		"a/b/c.md":          "a-b-c",
		"noext":             "noext",
	}
	for in, want := range tests {
		if got := DeckName(in); got != want {
			t.Errorf("DeckName(%q) = %q, want %q", in, got, want)
		}
	}
}

func newDeckStore(t *testing.T, store kv.Store) *deckstore.Store {
	t.Helper()
	s := deckstore.New(store, deckstore.Options{
		Logger:     logging.Discard(),
		ImageDelay: time.Hour,
		Now:        func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) },
	})
	t.Cleanup(s.Close)
	return s
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	ds := newDeckStore(t, store)

	files, err := Walk(WalkConfig{RootDir: sampleTree(t)})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Import(ctx, ds, files, Options{Logger: logging.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"intro", "talks-draft", "talks-go"}
	if !reflect.DeepEqual(res.Imported, want) {
		t.Errorf("imported = %v, want %v", res.Imported, want)
	}

	names, err := ds.Index().List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || names[0] != "talks-go" {
		t.Errorf("index = %v, want talks-go first", names)
	}

	raw, err := store.Get(ctx, "intro")
	if err != nil {
		t.Fatal(err)
	}
	var d deck.Deck
	json.Unmarshal([]byte(raw), &d)
	if d.Text != "# Intro\n\n# Next" || !d.Local {
		t.Errorf("stored deck = %+v", d)
	}
}

func TestImportConflicts(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "talk.md", "# New text")

	for _, replace := range []bool{false, true} {
		store := kv.NewMemory()
		store.Set(ctx, "talk", `{"name":"talk","text":"# Old text","local":true}`)
		ds := newDeckStore(t, store)

		files, _ := Walk(WalkConfig{RootDir: root})
		res, err := Import(ctx, ds, files, Options{Replace: replace})
		if err != nil {
			t.Fatal(err)
		}

		raw, _ := store.Get(ctx, "talk")
		var d deck.Deck
		json.Unmarshal([]byte(raw), &d)

		if replace {
			if !reflect.DeepEqual(res.Replaced, []string{"talk"}) || d.Text != "# New text" {
				t.Errorf("replace: result %+v, stored %q", res, d.Text)
			}
		} else {
			if !reflect.DeepEqual(res.Skipped, []string{"talk"}) || d.Text != "# Old text" {
				t.Errorf("skip: result %+v, stored %q", res, d.Text)
			}
		}
		if _, pending := ds.Pending(); pending {
			t.Error("a change is still pending after import")
		}
	}
}

func TestImportStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ds := newDeckStore(t, kv.NewMemory())
	_, err := Import(ctx, ds, []File{{RelPath: "a.md"}}, Options{})
	if err == nil {
		t.Error("expected an error for a canceled context")
	}
}
