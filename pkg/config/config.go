// Package config loads miid settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/james-see/miid/pkg/logger"
	"github.com/james-see/miid/pkg/smf"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvSoundFonts = "MIID_SF2"
	EnvLogLevel   = "MIID_LOG_LEVEL"
	EnvPort       = "MIID_PORT"
)

// Config holds every tunable setting.
type Config struct {
	LogLevel      string          `yaml:"log_level"`
	SoundFonts    []string        `yaml:"soundfonts"`
	ChannelPolicy string          `yaml:"channel_policy"`
	DebugDump     bool            `yaml:"debug_dump"`
	DebugDumpPath string          `yaml:"debug_dump_path"`
	SampleRate    int             `yaml:"sample_rate"`
	Server        ServerConfig    `yaml:"server"`
	PianoRoll     PianoRollConfig `yaml:"pianoroll"`
}

// ServerConfig configures the REST API.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// PianoRollConfig sets the piano-roll image scale.
type PianoRollConfig struct {
	BeatWidth float64 `yaml:"beat_width"` // pixels per quarter note
	KeyHeight float64 `yaml:"key_height"` // pixels per key
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		ChannelPolicy: smf.ChannelStrict.String(),
		DebugDumpPath: "_.mid",
		SampleRate:    44100,
		Server:        ServerConfig{Port: "8080"},
		PianoRoll:     PianoRollConfig{BeatWidth: 48, KeyHeight: 6},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/miid/config.yaml or its home
// directory equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "miid.yaml"
	}
	return filepath.Join(dir, "miid", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings that are still at their defaults with values
// from the environment. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	def := Default()
	if len(c.SoundFonts) == 0 {
		if v := getenv(EnvSoundFonts); v != "" {
			for _, p := range strings.Split(v, ":") {
				if p != "" {
					c.SoundFonts = append(c.SoundFonts, p)
				}
			}
		}
	}
	if c.LogLevel == def.LogLevel {
		if v := getenv(EnvLogLevel); v != "" {
			c.LogLevel = strings.ToLower(v)
		}
	}
	if c.Server.Port == def.Server.Port {
		if v := getenv(EnvPort); v != "" {
			c.Server.Port = v
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w (must be one of %s)", err, strings.Join(logger.Levels, ", "))
	}
	if _, err := smf.ParseChannelPolicy(c.ChannelPolicy); err != nil {
		return err
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000, got %d", c.SampleRate)
	}
	if c.DebugDump && c.DebugDumpPath == "" {
		return errors.New("debug_dump is set but debug_dump_path is empty")
	}
	if c.PianoRoll.BeatWidth <= 0 || c.PianoRoll.KeyHeight <= 0 {
		return fmt.Errorf("pianoroll scale must be positive, got %vx%v", c.PianoRoll.BeatWidth, c.PianoRoll.KeyHeight)
	}
	return nil
}

// DecoderOptions builds codec options from the configured channel policy.
func (c *Config) DecoderOptions() smf.Options {
	policy, _ := smf.ParseChannelPolicy(c.ChannelPolicy)
	return smf.Options{Logger: logger.GetLogger(), ChannelPolicy: policy}
}

// SoundFont returns the first configured SoundFont that exists on disk.
func (c *Config) SoundFont() (string, error) {
	for _, p := range c.SoundFonts {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if len(c.SoundFonts) == 0 {
		return "", fmt.Errorf("no soundfont configured; set %s or soundfonts in the config file", EnvSoundFonts)
	}
	return "", fmt.Errorf("none of the configured soundfonts exist: %s", strings.Join(c.SoundFonts, ", "))
}

// Save writes c to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
