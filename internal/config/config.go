package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/slide/internal/logging"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "SLIDE_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SLIDE_*). A double underscore nests:
// SLIDE_SERVER__PORT sets server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validBackends is the set of recognized storage backends.
var validBackends = map[Backend]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendFS:     true,
	BackendMinio:  true,
	BackendS3:     true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	for name, raw := range map[string]string{"api_url": c.APIURL, "share_url": c.ShareURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q: must be an absolute URL", name, raw)
		}
	}

	if c.EditDebounce < 0 {
		return fmt.Errorf("edit_debounce must be non-negative")
	}
	if c.ImageDelay < 0 {
		return fmt.Errorf("image_delay must be non-negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	st := c.Server.Storage
	if !validBackends[st.Backend] {
		return fmt.Errorf("invalid server.storage.backend %q: must be one of memory, sqlite, fs, minio, s3", st.Backend)
	}
	switch st.Backend {
	case BackendMinio:
		if st.Endpoint == "" {
			return fmt.Errorf("server.storage.endpoint is required for minio")
		}
		fallthrough
	case BackendS3:
		if st.Bucket == "" {
			return fmt.Errorf("server.storage.bucket is required for %s", st.Backend)
		}
	}

	return nil
}

// StorageDir returns the directory of the fs backend, defaulting to a
// "blobs" directory under data_dir.
func (c *Config) StorageDir() string {
	if c.Server.Storage.Dir != "" {
		return c.Server.Storage.Dir
	}
	return filepath.Join(c.DataDir, "blobs")
}

// DatabasePath returns the sqlite file used for local decks and, with the
// sqlite backend, for published decks.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "slide.db")
}
