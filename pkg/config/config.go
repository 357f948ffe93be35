// Package config handles loading and saving sv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/sv/config.yaml
//   - State:   ~/.local/state/sv/ (recent snapshot directories)
//
// A whitelist.txt next to a snapshot overrides the configured reference
// whitelist for that directory.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/snapview/pkg/props"
)

// WhitelistFile is the per-directory reference whitelist file name.
const WhitelistFile = "whitelist.txt"

// maxRecent bounds the recent directory list.
const maxRecent = 10

// UIConfig holds UI preference settings.
type UIConfig struct {
	SplitRatio  float64 `yaml:"split_ratio,omitempty"`  // Tree pane share of the width (0.2-0.8)
	Sort        string  `yaml:"sort,omitempty"`         // desc, asc or none
	OnlyMatches bool    `yaml:"only_matches,omitempty"` // Hide non-matching nodes while filtering
	Zoom        float64 `yaml:"zoom,omitempty"`         // Initial screenshot zoom
}

// WatchConfig controls reloading snapshots when they change on disk.
type WatchConfig struct {
	Enabled    *bool `yaml:"enabled,omitempty"`
	DebounceMs int   `yaml:"debounce_ms,omitempty"`
	ForcePoll  bool  `yaml:"force_poll,omitempty"`
}

// Config is the top-level configuration for sv.
type Config struct {
	UI        UIConfig    `yaml:"ui,omitempty"`
	Watch     WatchConfig `yaml:"watch,omitempty"`
	Whitelist []string    `yaml:"whitelist,omitempty"` // Keys used for element reference strings
	Recent    []string    `yaml:"recent,omitempty"`    // Recently opened snapshot directories
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			SplitRatio: 0.4,
			Sort:       props.SortDesc.String(),
			Zoom:       1,
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
	}
}

// SortOrder returns the configured sort order, falling back to descending.
func (c Config) SortOrder() props.SortOrder {
	o, err := props.ParseSortOrder(c.UI.Sort)
	if err != nil {
		return props.SortDesc
	}
	return o
}

// WatchEnabled reports whether snapshots reload on change. Defaults to on.
func (c Config) WatchEnabled() bool {
	return c.Watch.Enabled == nil || *c.Watch.Enabled
}

// ConfigDir returns the XDG config directory for sv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sv")
}

// StateDir returns the XDG state directory for sv.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "sv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "sv")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := props.ParseSortOrder(cfg.UI.Sort); err != nil {
		return cfg, fmt.Errorf("parsing config: ui.sort: %w", err)
	}
	if cfg.UI.SplitRatio < 0.2 || cfg.UI.SplitRatio > 0.8 {
		cfg.UI.SplitRatio = DefaultConfig().UI.SplitRatio
	}
	if cfg.UI.Zoom <= 0 {
		cfg.UI.Zoom = 1
	}

	for i := range cfg.Recent {
		cfg.Recent[i] = expandHome(cfg.Recent[i])
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// AddRecent moves dir to the front of the recent list.
func (c *Config) AddRecent(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	c.Recent = slices.DeleteFunc(c.Recent, func(d string) bool { return d == dir })
	c.Recent = append([]string{dir}, c.Recent...)
	if len(c.Recent) > maxRecent {
		c.Recent = c.Recent[:maxRecent]
	}
}

// WhitelistFor returns the reference whitelist for a snapshot: the
// whitelist.txt beside it when present, else the configured list.
func (c Config) WhitelistFor(snapshotPath string) ([]string, error) {
	path := filepath.Join(filepath.Dir(snapshotPath), WhitelistFile)
	list, err := LoadWhitelist(path)
	if err != nil {
		return c.Whitelist, err
	}
	if list == nil {
		return c.Whitelist, nil
	}
	return list, nil
}

// LoadWhitelist reads one key per line, ignoring blank lines. A missing
// file yields a nil list.
func LoadWhitelist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading whitelist: %w", err)
	}
	defer f.Close()

	list := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			list = append(list, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading whitelist: %w", err)
	}
	return list, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
