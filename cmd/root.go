package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "slide",
	Short: "Write slide decks in plain text, present them and share them by URL",
	Long: `Slide turns plain text into a slide deck: every "# " heading starts a
new slide. Decks are kept locally, presented in the terminal or a browser,
and can be published to a storage service that hands out share links.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".slide.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
