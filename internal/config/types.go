package config

import "time"

// Backend names a blob store implementation for the storage service.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendFS     Backend = "fs"
	BackendMinio  Backend = "minio"
	BackendS3     Backend = "s3"
)

// Config is the top-level slide configuration, corresponding to .slide.yml.
type Config struct {
	LogLevel     string        `yaml:"log_level" koanf:"log_level"`
	DataDir      string        `yaml:"data_dir" koanf:"data_dir"`
	APIURL       string        `yaml:"api_url" koanf:"api_url"`
	ShareURL     string        `yaml:"share_url" koanf:"share_url"`
	UnsplashKey  string        `yaml:"unsplash_key,omitempty" koanf:"unsplash_key"`
	EditDebounce time.Duration `yaml:"edit_debounce" koanf:"edit_debounce"`
	ImageDelay   time.Duration `yaml:"image_delay" koanf:"image_delay"`
	Server       ServerConfig  `yaml:"server" koanf:"server"`
}

// ServerConfig holds the storage service settings.
type ServerConfig struct {
	Port     int           `yaml:"port" koanf:"port"`
	AllowAll bool          `yaml:"allow_all" koanf:"allow_all"`
	Storage  StorageConfig `yaml:"storage" koanf:"storage"`
}

// StorageConfig selects and configures the blob backend.
type StorageConfig struct {
	Backend   Backend `yaml:"backend" koanf:"backend"`
	Dir       string  `yaml:"dir,omitempty" koanf:"dir"`
	Bucket    string  `yaml:"bucket,omitempty" koanf:"bucket"`
	Endpoint  string  `yaml:"endpoint,omitempty" koanf:"endpoint"`
	Region    string  `yaml:"region,omitempty" koanf:"region"`
	AccessKey string  `yaml:"access_key,omitempty" koanf:"access_key"`
	SecretKey string  `yaml:"secret_key,omitempty" koanf:"secret_key"`
	UseSSL    bool    `yaml:"use_ssl,omitempty" koanf:"use_ssl"`
}
