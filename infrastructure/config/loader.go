package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its config file
const DefaultPath = "config/config.yaml"

// Environment variables that override file values
const (
	EnvFFmpegPath  = "AFV_FFMPEG_PATH"
	EnvFFprobePath = "AFV_FFPROBE_PATH"
	EnvCacheDir    = "AFV_CACHE_DIR"
	EnvLogLevel    = "AFV_LOG_LEVEL"
	EnvLogFormat   = "AFV_LOG_FORMAT"
	EnvServerAddr  = "AFV_SERVER_ADDR"
)

// Config represents the complete application configuration
type Config struct {
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Paths   PathsConfig   `yaml:"paths"`
	Source  SourceConfig  `yaml:"source"`
	Google  GoogleConfig  `yaml:"google"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// FFmpegConfig contains encoder binaries and export settings
type FFmpegConfig struct {
	FFmpegPath        string        `yaml:"ffmpeg_path"`
	FFprobePath       string        `yaml:"ffprobe_path"`
	ReEncodeBitrate   string        `yaml:"reencode_bitrate"`
	PassthroughCodecs []string      `yaml:"passthrough_codecs"`
	Timeout           time.Duration `yaml:"timeout"`
}

// PathsConfig contains directory paths for generated output
type PathsConfig struct {
	CacheDirectory string `yaml:"cache_directory"` // empty means the user cache dir
}

// SourceConfig controls remote source downloads
type SourceConfig struct {
	DownloadTimeout     time.Duration `yaml:"download_timeout"`
	MaxDownloadAttempts int           `yaml:"max_download_attempts"`
}

// GoogleConfig contains Google API settings for drive:// sources
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Address    string `yaml:"address"`
	OutputRoot string `yaml:"output_root"` // empty → cache directory
}

// LoggingConfig contains log level and output format
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			FFmpegPath:        "ffmpeg",
			FFprobePath:       "ffprobe",
			ReEncodeBitrate:   "192k",
			PassthroughCodecs: []string{"aac", "alac"},
			Timeout:           5 * time.Minute,
		},
		Source: SourceConfig{
			DownloadTimeout:     2 * time.Minute,
			MaxDownloadAttempts: 3,
		},
		Server: ServerConfig{
			Address: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration from the specified YAML file on top of the defaults.
// A missing file is not an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads only the YAML file over the defaults, without environment overrides.
// Use it when the result will be written back.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with any set environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(EnvFFmpegPath, &c.FFmpeg.FFmpegPath)
	set(EnvFFprobePath, &c.FFmpeg.FFprobePath)
	set(EnvCacheDir, &c.Paths.CacheDirectory)
	set(EnvLogLevel, &c.Logging.Level)
	set(EnvLogFormat, &c.Logging.Format)
	set(EnvServerAddr, &c.Server.Address)
}

// Validate checks values that would otherwise fail deep inside a request
func (c *Config) Validate() error {
	if c.FFmpeg.Timeout <= 0 {
		return fmt.Errorf("ffmpeg.timeout must be positive, got %s", c.FFmpeg.Timeout)
	}
	if c.Source.MaxDownloadAttempts < 1 {
		return fmt.Errorf("source.max_download_attempts must be at least 1, got %d", c.Source.MaxDownloadAttempts)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
