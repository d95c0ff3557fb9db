// ABOUTME: Manages the lists of recently opened Gateway scripts and local files
// ABOUTME: Stores names or paths as JSON in the IDE's config directory

package recentscripts

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MaxRecentScripts is the maximum number of recent scripts to keep
const MaxRecentScripts = 5

// File names inside the config directory
const (
	scriptsFile = "recent-scripts.json"
	filesFile   = "recent-files.json"
)

// RecentScripts manages a most-recent-first list, of Gateway script names
// or of local .py paths used for import and export
type RecentScripts struct {
	configDir string
	fileName  string
	names     []string
}

type recentData struct {
	Scripts []string `json:"scripts"`
}

// New creates a manager for recent Gateway scripts in the given config directory.
// An empty directory keeps the list in memory only.
func New(configDir string) *RecentScripts {
	return &RecentScripts{configDir: configDir, fileName: scriptsFile}
}

// NewFiles creates a manager for recently imported or exported local files
func NewFiles(configDir string) *RecentScripts {
	return &RecentScripts{configDir: configDir, fileName: filesFile}
}

// configFile returns the path to the list's JSON file
func (rs *RecentScripts) configFile() string {
	return filepath.Join(rs.configDir, rs.fileName)
}

// Load reads the recent scripts list from disk
func (rs *RecentScripts) Load() ([]string, error) {
	if rs.configDir == "" {
		if rs.names == nil {
			rs.names = []string{}
		}
		return rs.names, nil
	}

	data, err := os.ReadFile(rs.configFile())
	if os.IsNotExist(err) {
		rs.names = []string{}
		return rs.names, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		// Invalid JSON, start fresh
		rs.names = []string{}
		return rs.names, nil
	}

	rs.names = make([]string, 0, len(recent.Scripts))
	for _, name := range recent.Scripts {
		if name != "" {
			rs.names = append(rs.names, name)
		}
	}
	return rs.names, nil
}

// Save writes the recent scripts list to disk
func (rs *RecentScripts) Save(names []string) error {
	if len(names) > MaxRecentScripts {
		names = names[:MaxRecentScripts]
	}
	rs.names = names

	if rs.configDir == "" {
		return nil
	}
	if err := os.MkdirAll(rs.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(recentData{Scripts: names}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rs.configFile(), data, 0600)
}

// Add moves name to the front of the list, adding it if missing
func (rs *RecentScripts) Add(name string) error {
	current := rs.List()

	names := make([]string, 0, len(current)+1)
	names = append(names, name)
	for _, n := range current {
		if n != name {
			names = append(names, n)
		}
	}
	return rs.Save(names)
}

// Remove drops name from the list, used after a script is deleted
func (rs *RecentScripts) Remove(name string) error {
	current := rs.List()

	names := make([]string, 0, len(current))
	for _, n := range current {
		if n != name {
			names = append(names, n)
		}
	}
	if len(names) == len(current) {
		return nil
	}
	return rs.Save(names)
}

// List returns the current list of recent scripts
func (rs *RecentScripts) List() []string {
	if rs.names == nil {
		if _, err := rs.Load(); err != nil {
			rs.names = []string{}
		}
	}
	return rs.names
}
