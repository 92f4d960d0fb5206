// Package importer turns markdown files on disk into local decks. Imported
// decks go through the deck store like decks opened by id, so an existing
// local deck of the same name is only overwritten when asked to.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/deckstore"
	"github.com/ziadkadry99/slide/internal/progress"
)

// Options controls Import.
type Options struct {
	// Replace overwrites local decks with the same name instead of skipping
	// them.
	Replace  bool
	Reporter progress.Reporter
	Logger   *slog.Logger
}

// Result lists what happened to each file, by deck name.
type Result struct {
	Imported []string
	Replaced []string
	Skipped  []string
	Failed   map[string]error
}

// DeckName derives a deck name from a relative path: the extension is
// dropped and directories are joined with "-".
func DeckName(relPath string) string {
	name := strings.TrimSuffix(relPath, path.Ext(relPath))
	return strings.ReplaceAll(name, "/", "-")
}

// Import reads each file and saves it as a deck through store. The deck
// shown by store afterwards is the last one imported.
func Import(ctx context.Context, store *deckstore.Store, files []File, opts Options) (Result, error) {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := Result{Failed: make(map[string]error)}
	reporter.Start(len(files))
	defer reporter.Finish()

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := DeckName(f.RelPath)
		reporter.Update(i+1, f.RelPath)

		data, err := os.ReadFile(f.Path)
		if err != nil {
			res.Failed[name] = err
			logger.Warn("reading deck file", "path", f.Path, "error", err)
			continue
		}

		d := deck.Deck{Name: name, Text: string(data)}
		err = store.Change(ctx, d)
		switch {
		case err == nil:
			res.Imported = append(res.Imported, name)
		case errors.Is(err, deckstore.ErrNameConflict) && opts.Replace:
			if err := store.ConfirmReplace(ctx); err != nil {
				res.Failed[name] = err
				continue
			}
			res.Replaced = append(res.Replaced, name)
		case errors.Is(err, deckstore.ErrNameConflict):
			store.Discard()
			res.Skipped = append(res.Skipped, name)
		default:
			res.Failed[name] = err
			logger.Warn("importing deck", "name", name, "error", err)
		}
	}

	if len(res.Failed) > 0 {
		return res, fmt.Errorf("importer: %d of %d files failed", len(res.Failed), len(files))
	}
	return res, nil
}
