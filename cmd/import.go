package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/slide/internal/importer"
	"github.com/ziadkadry99/slide/internal/progress"
)

var (
	importInclude []string
	importExclude []string
	importReplace bool
)

var importCmd = &cobra.Command{
	Use:   "import [DIR]",
	Short: "Import markdown files as local decks",
	Long: `Walks DIR (default ".") for markdown files and saves each one as a local
deck named after its path. Existing decks with the same name are skipped
unless --replace is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		ws, err := openWorkspace(cfg, logger)
		if err != nil {
			return err
		}
		defer ws.Close()

		files, err := importer.Walk(importer.WalkConfig{
			RootDir: root,
			Include: importInclude,
			Exclude: importExclude,
		})
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintf(os.Stderr, "No markdown files found under %s\n", root)
			return nil
		}

		res, err := importer.Import(cmd.Context(), ws.decks, files, importer.Options{
			Replace:  importReplace,
			Reporter: progress.NewReporter("Importing decks", os.Stderr),
			Logger:   logger,
		})

		fmt.Fprintf(os.Stderr, "Imported %d, replaced %d, skipped %d\n",
			len(res.Imported), len(res.Replaced), len(res.Skipped))
		for _, name := range res.Skipped {
			fmt.Fprintf(os.Stderr, "  skipped %s (a local deck has this name; use --replace)\n", name)
		}
		for name, ferr := range res.Failed {
			fmt.Fprintf(os.Stderr, "  failed %s: %v\n", name, ferr)
		}
		return err
	},
}

func init() {
	importCmd.Flags().StringSliceVar(&importInclude, "include", nil, "glob patterns to import (default **/*.md, **/*.markdown)")
	importCmd.Flags().StringSliceVar(&importExclude, "exclude", nil, "glob patterns to skip")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "replace local decks with the same name")
	rootCmd.AddCommand(importCmd)
}
