// Package config loads and persists mtodo preferences.
//
// Settings come from, in increasing priority: built-in defaults, the
// config.yaml file in the config directory, MTODO_* environment variables,
// and values Set at runtime (command-line flags). UpdateFile merges values
// into config.yaml so they survive the next start.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyWindowWidth     = "window.width"
	KeyWindowHeight    = "window.height"
	KeyDatabasePath    = "database.path"
	KeyDatabaseBackend = "database.backend"
	KeyStyleFile       = "style.file"
	KeyStyleDark       = "style.dark"
	KeyStyleIcon       = "style.icon"
	KeyShowAll         = "ui.show_all"
	KeyVerbose         = "verbose"
)

const (
	configFileName = "config.yaml"
	envPrefix      = "MTODO"
)

// KnownKeys documents every supported key for `mtodo config list`.
var KnownKeys = map[string]string{
	KeyWindowWidth:     "window width in columns (0 = use the terminal size)",
	KeyWindowHeight:    "window height in rows (0 = use the terminal size)",
	KeyDatabasePath:    "database location (file for sqlite, directory for dolt)",
	KeyDatabaseBackend: "storage backend: sqlite, dolt or memory",
	KeyStyleFile:       "theme file (.toml or .yaml) overriding widget colours",
	KeyStyleDark:       "prefer the dark palette",
	KeyStyleIcon:       "glyph shown before the window title",
	KeyShowAll:         "show done items in the list on start",
	KeyVerbose:         "enable debug logging",
}

var (
	mu sync.RWMutex
	v  *viper.Viper

	// configDirOverride is set by --config-dir.
	configDirOverride string
)

// Initialize sets up the viper configuration singleton. It must be called
// before any getter and may be called again to reload from disk.
func Initialize() error {
	mu.Lock()
	defer mu.Unlock()

	nv := viper.New()
	nv.SetEnvPrefix(envPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()

	nv.SetDefault(KeyWindowWidth, 0)
	nv.SetDefault(KeyWindowHeight, 0)
	nv.SetDefault(KeyDatabasePath, "")
	nv.SetDefault(KeyDatabaseBackend, "sqlite")
	nv.SetDefault(KeyStyleFile, "")
	nv.SetDefault(KeyStyleDark, false)
	nv.SetDefault(KeyStyleIcon, "☑")
	nv.SetDefault(KeyShowAll, false)
	nv.SetDefault(KeyVerbose, false)

	path := filepath.Join(configDirLocked(), configFileName)
	nv.SetConfigFile(path)
	nv.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := nv.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v = nv
	return nil
}

// ResetForTesting drops the loaded configuration and any directory override.
func ResetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	v = nil
	configDirOverride = ""
}

// SetConfigDir overrides where config.yaml is read from and written to.
// Call Initialize afterwards to load it.
func SetConfigDir(dir string) {
	mu.Lock()
	defer mu.Unlock()
	configDirOverride = dir
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() string {
	mu.RLock()
	defer mu.RUnlock()
	return configDirLocked()
}

func configDirLocked() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	if dir := os.Getenv("MTODO_CONFIG_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mtodo")
	}
	return ".mtodo"
}

// DataDir returns where the database, lock and log files live.
func DataDir() string {
	if dir := os.Getenv("MTODO_DATA_DIR"); dir != "" {
		return dir
	}
	return ConfigDir()
}

// ConfigFileUsed returns the path of config.yaml, whether or not it exists yet.
func ConfigFileUsed() string {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		return filepath.Join(configDirLocked(), configFileName)
	}
	return v.ConfigFileUsed()
}

func GetString(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

func GetBool(key string) bool {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

func GetInt(key string) int {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// Set overrides key for this process only.
func Set(key string, value interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns the effective value of every known key, sorted by key.
func AllSettings() [][2]string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, GetString(k)})
	}
	return out
}

// IsKnownKey reports whether key is a supported setting.
func IsKnownKey(key string) bool {
	_, ok := KnownKeys[key]
	return ok
}

// UpdateFile merges values into config.yaml and applies them to the running
// configuration. Keys already in the file but absent from values are kept.
func UpdateFile(values map[string]interface{}) error {
	mu.Lock()
	defer mu.Unlock()

	dir := configDirLocked()
	path := filepath.Join(dir, configFileName)

	fv := viper.New()
	fv.SetConfigFile(path)
	fv.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := fv.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	for key, value := range values {
		fv.Set(key, value)
		if v != nil {
			v.Set(key, value)
		}
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := fv.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// WindowSize returns the saved window height and width; zero means unset.
func WindowSize() (height, width int) {
	return GetInt(KeyWindowHeight), GetInt(KeyWindowWidth)
}

// SaveWindowSize persists the window size.
func SaveWindowSize(width, height int) error {
	return UpdateFile(map[string]interface{}{
		KeyWindowWidth:  width,
		KeyWindowHeight: height,
	})
}

// Backend returns the configured storage backend name.
func Backend() string {
	return strings.ToLower(GetString(KeyDatabaseBackend))
}

// DatabasePath returns the configured database location, defaulting to
// mtodo.db (sqlite) or dolt/ (dolt) inside the data directory.
func DatabasePath() string {
	if p := GetString(KeyDatabasePath); p != "" {
		return expandHome(p)
	}
	if Backend() == "dolt" {
		return filepath.Join(DataDir(), "dolt")
	}
	return filepath.Join(DataDir(), "mtodo.db")
}

// StyleFile returns the theme file path; relative paths resolve against the
// config directory. Empty means the built-in theme.
func StyleFile() string {
	p := GetString(KeyStyleFile)
	if p == "" {
		return ""
	}
	p = expandHome(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(ConfigDir(), p)
	}
	return p
}

// IsDarkStyle reports whether the dark palette is forced.
func IsDarkStyle() bool {
	return GetBool(KeyStyleDark)
}

// Icon returns the glyph shown in the window title.
func Icon() string {
	return GetString(KeyStyleIcon)
}

// ShowAll returns the initial show-done mode.
func ShowAll() bool {
	return GetBool(KeyShowAll)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
