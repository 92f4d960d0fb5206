package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/slide/internal/deck"
	"github.com/ziadkadry99/slide/internal/preview"
)

var (
	previewPort  int
	previewWatch string
)

var previewCmd = &cobra.Command{
	Use:   "preview [NAME]",
	Short: "Preview a deck in the browser with live reload",
	Long: `Serves the current slide as HTML and pushes every change to open browsers.
With --watch FILE the deck follows a markdown file: it is named after the
file and reloaded whenever the file is saved.`,
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

		if previewWatch != "" {
			data, err := os.ReadFile(previewWatch)
			if err != nil {
				return fmt.Errorf("reading %s: %w", previewWatch, err)
			}
			base := filepath.Base(previewWatch)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			if err := ws.decks.Change(ctx, deck.Deck{Name: name, Text: string(data), Local: true}); err != nil {
				return err
			}
			go func() {
				if err := preview.Watch(ctx, previewWatch, ws.decks, logger); err != nil {
					logger.Error("watching deck file", "path", previewWatch, "error", err)
				}
			}()
		}

		p := preview.New(ws.decks, logger)
		defer p.Close()

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		p.RegisterRoutes(r)

		addr := fmt.Sprintf("localhost:%d", previewPort)
		srv := &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "Previewing %s at http://%s/\n", displayName(ws.decks.Deck().Name), addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewPort, "port", 3000, "Port to serve the preview on")
	previewCmd.Flags().StringVar(&previewWatch, "watch", "", "markdown file to follow")
	rootCmd.AddCommand(previewCmd)
}
