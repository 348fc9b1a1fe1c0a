// Package config loads fingerspell settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/word"
	"github.com/ayusman/fingerspell/internal/wordlog"
)

// DBFile is the history database file name inside the data directory.
const DBFile = "fingerspell.db"

// Config is the top-level fingerspell configuration.
type Config struct {
	Camera   capture.Config  `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Dwell    time.Duration   `yaml:"dwell"`
	Log      LogConfig       `yaml:"log"`
	DataDir  string          `yaml:"data_dir"`
	HTTP     HTTPConfig      `yaml:"http"`
	Plugins  PluginConfig    `yaml:"plugins"`
	Headless bool            `yaml:"headless"`
	Tray     bool            `yaml:"tray"`
	Windowed bool            `yaml:"windowed"`
}

// LogConfig controls where saved words are written.
type LogConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// HTTPConfig controls the optional HTTP surface. An empty Addr disables it.
type HTTPConfig struct {
	Addr   string `yaml:"addr"`
	WebDir string `yaml:"web_dir"`
}

// PluginConfig controls plugin discovery and event hooks.
type PluginConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
	Hooks   []plugin.Hook `yaml:"hooks"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Load reads path when it is not empty, applies FINGERSPELL_* environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := capture.DefaultConfig()
	if c.Camera.Width <= 0 {
		c.Camera.Width = def.Width
	}
	if c.Camera.Height <= 0 {
		c.Camera.Height = def.Height
	}
	if c.Camera.FPS <= 0 {
		c.Camera.FPS = def.FPS
	}

	det := detector.DefaultConfig()
	if c.Detector.MaxHands <= 0 {
		c.Detector.MaxHands = det.MaxHands
	}
	if c.Detector.MinConfidence <= 0 {
		c.Detector.MinConfidence = det.MinConfidence
	}
	if c.Detector.MinTrackingConf <= 0 {
		c.Detector.MinTrackingConf = det.MinTrackingConf
	}

	if c.Dwell <= 0 {
		c.Dwell = word.DefaultDwell
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "."
	}
	if c.Log.Prefix == "" {
		c.Log.Prefix = wordlog.DefaultPrefix
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Plugins.Timeout <= 0 {
		c.Plugins.Timeout = plugin.DefaultTimeout
	}
}

func (c *Config) applyEnv() {
	c.Camera.DeviceID = getEnvInt("FINGERSPELL_CAMERA", c.Camera.DeviceID)
	c.Dwell = getEnvDuration("FINGERSPELL_DWELL", c.Dwell)
	c.Log.Dir = getEnv("FINGERSPELL_LOG_DIR", c.Log.Dir)
	c.DataDir = getEnv("FINGERSPELL_DATA_DIR", c.DataDir)
	c.HTTP.Addr = getEnv("FINGERSPELL_HTTP_ADDR", c.HTTP.Addr)
	c.Plugins.Dir = getEnv("FINGERSPELL_PLUGIN_DIR", c.Plugins.Dir)
	c.Headless = getEnvBool("FINGERSPELL_HEADLESS", c.Headless)
	c.Detector.Script = getEnv("FINGERSPELL_LANDMARK_SCRIPT", c.Detector.Script)
	c.Detector.Mock = getEnvBool("FINGERSPELL_MOCK_DETECTOR", c.Detector.Mock)
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Camera.DeviceID < 0 {
		return fmt.Errorf("camera device id must not be negative, got %d", c.Camera.DeviceID)
	}
	if c.Dwell <= 0 {
		return fmt.Errorf("dwell must be positive, got %s", c.Dwell)
	}
	for i, h := range c.Plugins.Hooks {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("hooks[%d]: %w", i, err)
		}
	}
	return nil
}

// DBPath returns the history database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFile)
}

// PluginDir returns the plugin directory, defaulting to <data dir>/plugins.
func (c *Config) PluginDir() string {
	if c.Plugins.Dir != "" {
		return c.Plugins.Dir
	}
	return filepath.Join(c.DataDir, "plugins")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fingerspell"
	}
	return filepath.Join(home, ".fingerspell")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
