package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/slide/internal/deckstore"
	"github.com/ziadkadry99/slide/internal/lzstring"
)

var listEncode string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List local decks, most recently used first",
	Long: `Lists local decks. With --encode NAME, prints the deck's text compressed
for a legacy share link (?t=...) instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace(cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer ws.Close()

		ctx := cmd.Context()
		if listEncode != "" {
			if err := ws.decks.Load(ctx, deckstore.LoadParams{Name: listEncode}); err != nil {
				return err
			}
			d := ws.decks.Deck()
			if d.Name != listEncode {
				return fmt.Errorf("no local deck named %q", listEncode)
			}
			encoded, err := lzstring.CompressToEncodedURIComponent(d.Text)
			if err != nil {
				return err
			}
			fmt.Println(encoded)
			return nil
		}

		names, err := ws.decks.Index().List(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(os.Stderr, "No local decks yet. Run `slide new` or `slide import`.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm NAME...",
	Short: "Remove local decks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace(cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer ws.Close()

		for _, name := range args {
			if err := ws.decks.Remove(cmd.Context(), name); err != nil {
				return fmt.Errorf("removing %q: %w", name, err)
			}
			fmt.Fprintf(os.Stderr, "Removed %s\n", name)
		}
		return nil
	},
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new local deck named after today's date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace(cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer ws.Close()

		if err := ws.decks.NewDeck(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(ws.decks.Deck().Name)
		return nil
	},
}

var (
	openID    string
	openText  string
	openSlide int
	openSave  bool
)

var openCmd = &cobra.Command{
	Use:   "open [NAME]",
	Short: "Open a deck and print its current slide",
	Long: `Opens a deck the way the presenter does on start: a published deck by
--id, a local deck by name, the most recently used deck, or legacy
compressed text given with --text. With --save a published deck is copied
into the local decks, asking before it replaces one with the same name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace(cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer ws.Close()

		ctx := cmd.Context()
		if err := ws.decks.Load(ctx, loadParams(args, openID, openText, openSlide)); err != nil {
			return err
		}

		d := ws.decks.Deck()
		if openSave {
			if err := saveLocal(ctx, ws.decks); err != nil {
				return err
			}
			d = ws.decks.Deck()
		}

		cursor, slide := ws.decks.Current()
		fmt.Fprintf(os.Stderr, "%s (%s), slide %d of %d\n",
			displayName(d.Name), ws.decks.State(), cursor+1, len(ws.decks.Slides()))
		if d.PublishedURL != "" {
			fmt.Fprintf(os.Stderr, "  Shared at %s\n", d.PublishedURL)
		}
		fmt.Println(slide)
		return nil
	},
}

// loadParams builds the deck selection shared by open, present and preview.
func loadParams(args []string, id, text string, slide int) deckstore.LoadParams {
	p := deckstore.LoadParams{ID: id, Text: text, Slide: slide}
	if len(args) > 0 {
		p.Name = args[0]
	}
	return p
}

// saveLocal keeps the current deck as a local deck. When that would replace
// a local deck of the same name the user is asked first.
func saveLocal(ctx context.Context, decks *deckstore.Store) error {
	err := decks.Change(ctx, decks.Deck())
	if !errors.Is(err, deckstore.ErrNameConflict) {
		return err
	}

	pending, _ := decks.Pending()
	confirm := promptui.Prompt{
		Label:     fmt.Sprintf("A local deck named %q exists. Replace it", pending.Name),
		IsConfirm: true,
	}
	if _, err := confirm.Run(); err != nil {
		decks.Discard()
		fmt.Fprintln(os.Stderr, "Kept the local deck.")
		return nil
	}
	return decks.ConfirmReplace(ctx)
}

func displayName(name string) string {
	if name == "" {
		return "untitled deck"
	}
	return name
}

func init() {
	listCmd.Flags().StringVar(&listEncode, "encode", "", "print the compressed text of the named deck")

	for _, c := range []*cobra.Command{openCmd, presentCmd, previewCmd} {
		c.Flags().StringVar(&openID, "id", "", "open a published deck by id")
		c.Flags().StringVar(&openText, "text", "", "open legacy compressed deck text")
		c.Flags().IntVar(&openSlide, "slide", 0, "slide to start on (1-based)")
	}
	openCmd.Flags().BoolVar(&openSave, "save", false, "keep the opened deck as a local deck")

	rootCmd.AddCommand(listCmd, rmCmd, newCmd, openCmd)
}
