package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/fingerspell/internal/plugin"
)

var envVars = []string{
	"FINGERSPELL_CAMERA", "FINGERSPELL_DWELL", "FINGERSPELL_LOG_DIR",
	"FINGERSPELL_DATA_DIR", "FINGERSPELL_HTTP_ADDR", "FINGERSPELL_PLUGIN_DIR",
	"FINGERSPELL_HEADLESS", "FINGERSPELL_LANDMARK_SCRIPT", "FINGERSPELL_MOCK_DETECTOR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fingerspell.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Camera.DeviceID != 0 || cfg.Camera.Width != 1280 || cfg.Camera.Height != 720 {
		t.Errorf("Camera = %+v, want device 0 at 1280x720", cfg.Camera)
	}
	if cfg.Detector.MaxHands != 1 {
		t.Errorf("Detector.MaxHands = %d, want 1", cfg.Detector.MaxHands)
	}
	if cfg.Detector.MinConfidence != 0.7 {
		t.Errorf("Detector.MinConfidence = %f, want 0.7", cfg.Detector.MinConfidence)
	}
	if cfg.Dwell != 2*time.Second {
		t.Errorf("Dwell = %v, want 2s", cfg.Dwell)
	}
	if cfg.Log.Dir != "." || cfg.Log.Prefix != "isaretdili_kelimeler" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.HTTP.Addr != "" {
		t.Errorf("HTTP.Addr = %q, want disabled", cfg.HTTP.Addr)
	}
	if !strings.HasSuffix(cfg.DataDir, ".fingerspell") {
		t.Errorf("DataDir = %q, want ~/.fingerspell", cfg.DataDir)
	}
	if cfg.Plugins.Timeout != plugin.DefaultTimeout {
		t.Errorf("Plugins.Timeout = %v, want %v", cfg.Plugins.Timeout, plugin.DefaultTimeout)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
camera:
  device: 1
  width: 640
detector:
  min_confidence: 0.8
dwell: 1500ms
log:
  dir: /tmp/words
data_dir: /tmp/fs
http:
  addr: ":8080"
plugins:
  hooks:
    - event: word_saved
      plugin: keyboard
      action: type
      params:
        suffix: " "
tray: true
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Camera.DeviceID != 1 || cfg.Camera.Width != 640 {
		t.Errorf("Camera = %+v", cfg.Camera)
	}
	if cfg.Camera.Height != 720 {
		t.Errorf("Camera.Height = %d, want default 720", cfg.Camera.Height)
	}
	if cfg.Detector.MinConfidence != 0.8 || cfg.Detector.MaxHands != 1 {
		t.Errorf("Detector = %+v", cfg.Detector)
	}
	if cfg.Dwell != 1500*time.Millisecond {
		t.Errorf("Dwell = %v, want 1.5s", cfg.Dwell)
	}
	if cfg.Log.Dir != "/tmp/words" || cfg.Log.Prefix != "isaretdili_kelimeler" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.HTTP.Addr != ":8080" || !cfg.Tray {
		t.Errorf("HTTP.Addr = %q, Tray = %v", cfg.HTTP.Addr, cfg.Tray)
	}
	if cfg.DBPath() != "/tmp/fs/fingerspell.db" {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
	if cfg.PluginDir() != "/tmp/fs/plugins" {
		t.Errorf("PluginDir() = %q", cfg.PluginDir())
	}

	if len(cfg.Plugins.Hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(cfg.Plugins.Hooks))
	}
	h := cfg.Plugins.Hooks[0]
	if h.Event != plugin.EventWordSaved || h.Plugin != "keyboard" || h.Action != "type" || h.Params["suffix"] != " " {
		t.Errorf("hook = %+v", h)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFile(writeConfig(t, "camera: [1, 2")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINGERSPELL_CAMERA", "2")
	t.Setenv("FINGERSPELL_DWELL", "3s")
	t.Setenv("FINGERSPELL_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("FINGERSPELL_DATA_DIR", "/var/lib/fingerspell")
	t.Setenv("FINGERSPELL_HEADLESS", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Camera.DeviceID != 2 {
		t.Errorf("Camera.DeviceID = %d, want 2", cfg.Camera.DeviceID)
	}
	if cfg.Dwell != 3*time.Second {
		t.Errorf("Dwell = %v, want 3s", cfg.Dwell)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9000" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if !cfg.Headless {
		t.Error("Headless should be true")
	}
	if cfg.PluginDir() != "/var/lib/fingerspell/plugins" {
		t.Errorf("PluginDir() = %q", cfg.PluginDir())
	}
}

func TestLoad_DetectorEnv(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, "detector:\n  script: /opt/hands.py\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Detector.Script != "/opt/hands.py" || cfg.Detector.Mock {
		t.Errorf("Detector = %+v, want file script and real detection", cfg.Detector)
	}

	t.Setenv("FINGERSPELL_LANDMARK_SCRIPT", "/env/hands.py")
	t.Setenv("FINGERSPELL_MOCK_DETECTOR", "1")

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Detector.Script != "/env/hands.py" {
		t.Errorf("Detector.Script = %q, want env value", cfg.Detector.Script)
	}
	if !cfg.Detector.Mock {
		t.Error("Detector.Mock should be true")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINGERSPELL_LOG_DIR", "/env/logs")
	t.Setenv("FINGERSPELL_DWELL", "not-a-duration")

	cfg, err := Load(writeConfig(t, "log:\n  dir: /file/logs\ndwell: 1s\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Dir != "/env/logs" {
		t.Errorf("Log.Dir = %q, want env value", cfg.Log.Dir)
	}
	if cfg.Dwell != time.Second {
		t.Errorf("Dwell = %v, want file value for unparsable env", cfg.Dwell)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative camera", func(c *Config) { c.Camera.DeviceID = -1 }, true},
		{"zero dwell", func(c *Config) { c.Dwell = 0 }, true},
		{"bad hook", func(c *Config) {
			c.Plugins.Hooks = []plugin.Hook{{Event: "wave", Plugin: "keyboard", Action: "type"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
