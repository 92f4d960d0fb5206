package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ziadkadry99/slide/internal/blob"
	"github.com/ziadkadry99/slide/internal/config"
	"github.com/ziadkadry99/slide/internal/db"
	"github.com/ziadkadry99/slide/internal/deckstore"
	"github.com/ziadkadry99/slide/internal/imagesearch"
	"github.com/ziadkadry99/slide/internal/kv"
	"github.com/ziadkadry99/slide/internal/logging"
	"github.com/ziadkadry99/slide/internal/publish"
	"github.com/ziadkadry99/slide/internal/theme"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `slide init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the config level; --verbose
// forces debug.
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.New(level, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// workspace is the local state shared by the deck commands.
type workspace struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *db.DB
	decks  *deckstore.Store
}

// openWorkspace opens the local database and a deck store over it. Publishing
// is enabled when api_url is set and image lookup when unsplash_key is set.
func openWorkspace(cfg *config.Config, logger *slog.Logger) (*workspace, error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening local decks: %w", err)
	}

	hc := &http.Client{Timeout: 30 * time.Second}
	opts := deckstore.Options{
		Themes:       theme.NewLoader(hc, logger),
		EditDebounce: cfg.EditDebounce,
		ImageDelay:   cfg.ImageDelay,
		Logger:       logger,
	}
	if cfg.APIURL != "" {
		opts.Client = publish.NewClient(cfg.APIURL, cfg.ShareURL, hc)
	}
	if cfg.UnsplashKey != "" {
		opts.Finder = imagesearch.NewUnsplash(cfg.UnsplashKey, hc)
	}

	return &workspace{
		cfg:    cfg,
		logger: logger,
		db:     database,
		decks:  deckstore.New(kv.NewSQLStore(database), opts),
	}, nil
}

// Close saves pending edits and releases the database.
func (w *workspace) Close() {
	w.decks.Flush()
	w.decks.Close()
	w.db.Close()
}

// openBlobStore builds the storage service backend selected in the config.
// The returned close function releases backend resources.
func openBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, func(), error) {
	st := cfg.Server.Storage
	switch st.Backend {
	case config.BackendMemory:
		return blob.NewMemory(), func() {}, nil

	case config.BackendSQLite:
		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return nil, nil, fmt.Errorf("opening blob database: %w", err)
		}
		return blob.NewSQLStore(database), func() { database.Close() }, nil

	case config.BackendFS:
		store, err := blob.NewFSStore(cfg.StorageDir())
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case config.BackendMinio:
		store, err := blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  st.Endpoint,
			AccessKey: st.AccessKey,
			SecretKey: st.SecretKey,
			Bucket:    st.Bucket,
			UseSSL:    st.UseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case config.BackendS3:
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Region:    st.Region,
			Endpoint:  st.Endpoint,
			AccessKey: st.AccessKey,
			SecretKey: st.SecretKey,
			Bucket:    st.Bucket,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", st.Backend)
}
