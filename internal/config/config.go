// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Options are the tunables read from config.yaml. Everything has a
// working default; the file is optional.
type Options struct {
	WriteDelayMS        int    `yaml:"write_delay_ms"`
	SnapshotCompression int    `yaml:"snapshot_compression"`
	ServerAddr          string `yaml:"server_addr"`
	WatchDebounceMS     int    `yaml:"watch_debounce_ms"`
	MaxVideoMB          int64  `yaml:"max_video_mb"`
}

// Config holds all application configuration paths and options
type Config struct {
	HomeDir      string
	FuneditDir   string
	DatabasePath string
	SnapshotDir  string
	LogDir       string
	Options      Options
}

func defaultOptions() Options {
	return Options{
		WriteDelayMS:        1000,
		SnapshotCompression: 3,
		ServerAddr:          ":8847",
		WatchDebounceMS:     300,
		MaxVideoMB:          500,
	}
}

// Load creates a Config instance with resolved paths and any overrides
// from ~/.funedit/config.yaml
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return loadFrom(home)
}

func loadFrom(home string) (*Config, error) {
	funeditDir := filepath.Join(home, ".funedit")
	logDir := filepath.Join(funeditDir, "logs")

	// Ensure directories exist
	for _, dir := range []string{funeditDir, logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		HomeDir:      home,
		FuneditDir:   funeditDir,
		DatabasePath: filepath.Join(funeditDir, "projects.db"),
		SnapshotDir:  funeditDir,
		LogDir:       logDir,
		Options:      defaultOptions(),
	}

	// config.yaml is optional; a missing file is not an error.
	data, err := os.ReadFile(filepath.Join(funeditDir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg.Options); err != nil {
		return nil, err
	}
	applyDefaults(&cfg.Options)
	return cfg, nil
}

// applyDefaults restores defaults for values the file zeroed or omitted.
func applyDefaults(o *Options) {
	defaults := defaultOptions()
	if o.WriteDelayMS <= 0 {
		o.WriteDelayMS = defaults.WriteDelayMS
	}
	if o.SnapshotCompression <= 0 {
		o.SnapshotCompression = defaults.SnapshotCompression
	}
	if o.ServerAddr == "" {
		o.ServerAddr = defaults.ServerAddr
	}
	if o.WatchDebounceMS <= 0 {
		o.WatchDebounceMS = defaults.WatchDebounceMS
	}
	if o.MaxVideoMB <= 0 {
		o.MaxVideoMB = defaults.MaxVideoMB
	}
}

// WriteDelay returns the debounced-writer delay as a duration.
func (c *Config) WriteDelay() time.Duration {
	return time.Duration(c.Options.WriteDelayMS) * time.Millisecond
}

// WatchDebounce returns the file-watcher debounce as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Options.WatchDebounceMS) * time.Millisecond
}

// MaxVideoSize returns the video size cap in bytes.
func (c *Config) MaxVideoSize() int64 {
	return c.Options.MaxVideoMB * 1024 * 1024
}
