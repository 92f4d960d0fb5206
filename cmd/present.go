package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/slide/internal/present"
)

var presentCmd = &cobra.Command{
	Use:   "present [NAME]",
	Short: "Present a deck in the terminal",
	Long: `Shows a deck full screen in the terminal. Arrow keys move between
slides, digits jump, "e" edits the deck text and tab lists local decks.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := ws.decks.Load(ctx, loadParams(args, openID, openText, openSlide)); err != nil {
			return err
		}
		return present.Run(ctx, ws.decks)
	},
}

func init() {
	rootCmd.AddCommand(presentCmd)
}
