package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/slide/internal/server"
	"github.com/ziadkadry99/slide/internal/slidesets"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the deck storage service",
	Long: `Starts the storage service that published decks are sent to. Decks are
kept in the configured backend (sqlite, fs, minio, s3 or memory) and updates
require the PIN the deck was first published with.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, closeStore, err := openBlobStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("opening %s storage: %w", cfg.Server.Storage.Backend, err)
		}
		defer closeStore()

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: cfg.Server.AllowAll,
		}, logger)
		slidesets.RegisterRoutes(srv.Router(), slidesets.NewService(store, logger))

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "slide server v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Storage: %s\n", cfg.Server.Storage.Backend)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
