package plugin

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ManifestFile is the manifest file name expected in each plugin directory.
const ManifestFile = "plugin.json"

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager discovers plugins below a directory and looks them up by name.
type Manager struct {
	pluginDir string
	plugins   map[string]*Plugin
	mu        sync.RWMutex
}

// NewManager creates a new plugin Manager with the given plugin directory.
func NewManager(pluginDir string) *Manager {
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
	}
}

// Discover replaces the known plugins with the subdirectories of the plugin
// directory that carry a readable manifest. A missing directory yields no
// plugins and no error.
func (m *Manager) Discover() error {
	found := make(map[string]*Plugin)

	info, err := os.Stat(m.pluginDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		m.replace(found)
		return nil
	case err != nil:
		return err
	case !info.IsDir():
		m.replace(found)
		return nil
	}

	entries, err := os.ReadDir(m.pluginDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, ok := loadPlugin(filepath.Join(m.pluginDir, entry.Name()))
		if !ok {
			continue
		}
		found[p.Manifest.Name] = p
	}

	m.replace(found)
	return nil
}

func (m *Manager) replace(plugins map[string]*Plugin) {
	m.mu.Lock()
	m.plugins = plugins
	m.mu.Unlock()
}

// loadPlugin reads dir's manifest. Unreadable or invalid manifests are skipped.
func loadPlugin(dir string) (*Plugin, bool) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, false
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, false
	}
	if manifest.Name == "" || manifest.Executable == "" {
		return nil, false
	}

	return &Plugin{
		Manifest:   manifest,
		Path:       dir,
		Executable: filepath.Join(dir, manifest.Executable),
	}, true
}

// Get returns a plugin by name.
// Returns ErrPluginNotFound if the plugin does not exist.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}

	return plugin, nil
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, plugin := range m.plugins {
		plugins = append(plugins, plugin)
	}
	m.mu.RUnlock()

	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})
	return plugins
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}
