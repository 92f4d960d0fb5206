package config

import "time"

// DefaultPort is the storage service port.
const DefaultPort = 8080

// DefaultConfig returns a Config with sensible defaults: a storage service on
// localhost backed by sqlite next to the local data.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		DataDir:      ".slide",
		APIURL:       "http://localhost:8080",
		ShareURL:     "http://localhost:8080/",
		EditDebounce: time.Second,
		ImageDelay:   5 * time.Second,
		Server: ServerConfig{
			Port:     DefaultPort,
			AllowAll: true,
			Storage: StorageConfig{
				Backend: BackendSQLite,
			},
		},
	}
}
