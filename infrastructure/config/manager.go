package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors for config management
var (
	ErrUnknownKey    = errors.New("unknown config key")
	ErrInvalidValue  = errors.New("invalid config value")
	ErrDuplicateKey  = errors.New("codec already listed")
	ErrCodecNotFound = errors.New("codec not found")
)

// field binds a dotted key to its location in Config
type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(ptr func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = v
			return nil
		},
	}
}

func durationField(ptr func(*Config) *time.Duration) field {
	return field{
		get: func(c *Config) string { return ptr(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("%w: %q is not a positive duration", ErrInvalidValue, v)
			}
			*ptr(c) = d
			return nil
		},
	}
}

func intField(ptr func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("%w: %q is not a positive integer", ErrInvalidValue, v)
			}
			*ptr(c) = n
			return nil
		},
	}
}

var fields = map[string]field{
	"ffmpeg.ffmpeg_path":           stringField(func(c *Config) *string { return &c.FFmpeg.FFmpegPath }),
	"ffmpeg.ffprobe_path":          stringField(func(c *Config) *string { return &c.FFmpeg.FFprobePath }),
	"ffmpeg.reencode_bitrate":      stringField(func(c *Config) *string { return &c.FFmpeg.ReEncodeBitrate }),
	"ffmpeg.timeout":               durationField(func(c *Config) *time.Duration { return &c.FFmpeg.Timeout }),
	"paths.cache_directory":        stringField(func(c *Config) *string { return &c.Paths.CacheDirectory }),
	"source.download_timeout":      durationField(func(c *Config) *time.Duration { return &c.Source.DownloadTimeout }),
	"source.max_download_attempts": intField(func(c *Config) *int { return &c.Source.MaxDownloadAttempts }),
	"google.credentials_file":      stringField(func(c *Config) *string { return &c.Google.CredentialsFile }),
	"google.token_file":            stringField(func(c *Config) *string { return &c.Google.TokenFile }),
	"server.address":               stringField(func(c *Config) *string { return &c.Server.Address }),
	"server.output_root":           stringField(func(c *Config) *string { return &c.Server.OutputRoot }),
	"logging.level":                stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":               stringField(func(c *Config) *string { return &c.Logging.Format }),
	"ffmpeg.passthrough_codecs": {
		get: func(c *Config) string { return strings.Join(c.FFmpeg.PassthroughCodecs, ",") },
		set: func(c *Config, v string) error {
			c.FFmpeg.PassthroughCodecs = splitCodecs(v)
			return nil
		},
	},
}

// Setting is one key/value pair as shown by `config show`
type Setting struct {
	Key   string
	Value string
}

// ConfigManager reads and edits config entries by dotted key, saving after each change
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Keys returns every editable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns all settings in key order
func (m *ConfigManager) List() []Setting {
	keys := Keys()
	settings := make([]Setting, 0, len(keys))
	for _, k := range keys {
		settings = append(settings, Setting{Key: k, Value: fields[k].get(m.config)})
	}
	return settings
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(m.config), nil
}

// Set parses value into key and saves the file
func (m *ConfigManager) Set(key, value string) error {
	f, ok := fields[normalizeKey(key)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	previous := f.get(m.config)
	if err := f.set(m.config, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := m.config.Validate(); err != nil {
		_ = f.set(m.config, previous)
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return Save(m.config, m.configPath)
}

// --- Passthrough codec list ---

// AddPassthroughCodec allows stream copy for an additional codec
func (m *ConfigManager) AddPassthroughCodec(codec string) error {
	codec = strings.ToLower(strings.TrimSpace(codec))
	if codec == "" {
		return fmt.Errorf("%w: codec name is required", ErrInvalidValue)
	}

	for _, c := range m.config.FFmpeg.PassthroughCodecs {
		if c == codec {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, codec)
		}
	}

	m.config.FFmpeg.PassthroughCodecs = append(m.config.FFmpeg.PassthroughCodecs, codec)
	return Save(m.config, m.configPath)
}

// RemovePassthroughCodec stops stream copy for codec
func (m *ConfigManager) RemovePassthroughCodec(codec string) error {
	codec = strings.ToLower(strings.TrimSpace(codec))

	codecs := m.config.FFmpeg.PassthroughCodecs
	for i, c := range codecs {
		if c == codec {
			m.config.FFmpeg.PassthroughCodecs = append(codecs[:i:i], codecs[i+1:]...)
			return Save(m.config, m.configPath)
		}
	}
	return fmt.Errorf("%w: %s", ErrCodecNotFound, codec)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func splitCodecs(v string) []string {
	var codecs []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			codecs = append(codecs, part)
		}
	}
	return codecs
}
