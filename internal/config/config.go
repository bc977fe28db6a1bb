// Package config handles configuration loading and defaults for tally.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/tally/config.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tally/internal/fsutil"
	"tally/internal/tally"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.tally)
	DataDir string `yaml:"data_dir,omitempty"`

	// Storage selects where the task list is persisted
	Storage StorageConfig `yaml:"storage,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	// UX customizes user experience settings
	UX UXConfig `yaml:"ux,omitempty"`

	// Backup configures snapshot backups
	Backup BackupConfig `yaml:"backup,omitempty"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "file" (one JSON file per record) or "sqlite"
	Backend string `yaml:"backend,omitempty"`
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`

	// Background color (hex)
	Background string `yaml:"background,omitempty"`

	// Text color (hex)
	Text string `yaml:"text,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	// Global keys
	Quit     string `yaml:"quit,omitempty"`      // default: "q,ctrl+c"
	Help     string `yaml:"help,omitempty"`      // default: "?"
	NextPane string `yaml:"next_pane,omitempty"` // default: "tab"
	Pane1    string `yaml:"pane_1,omitempty"`    // default: "1"
	Pane2    string `yaml:"pane_2,omitempty"`    // default: "2"
	Pane3    string `yaml:"pane_3,omitempty"`    // default: "3"

	// Navigation keys
	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g,home"
	Bottom string `yaml:"bottom,omitempty"` // default: "G,end"

	// Task keys
	AddTask       string `yaml:"add_task,omitempty"`       // default: "a"
	RenameTask    string `yaml:"rename_task,omitempty"`    // default: "r"
	LogOne        string `yaml:"log_one,omitempty"`        // default: "space,+"
	LogQuantity   string `yaml:"log_quantity,omitempty"`   // default: "enter,l"
	UndoLast      string `yaml:"undo_last,omitempty"`      // default: "u,-"
	ToggleArchive string `yaml:"toggle_archive,omitempty"` // default: "A"
	DeleteTask    string `yaml:"delete_task,omitempty"`    // default: "x"
	ResetAll      string `yaml:"reset_all,omitempty"`      // default: "R"

	// View keys
	RangeNext      string `yaml:"range_next,omitempty"`      // default: "]"
	RangePrev      string `yaml:"range_prev,omitempty"`      // default: "["
	ToggleArchived string `yaml:"toggle_archived,omitempty"` // default: "h"

	// Data keys
	Export string `yaml:"export,omitempty"` // default: "e"
	Import string `yaml:"import,omitempty"` // default: "i"
	Copy   string `yaml:"copy,omitempty"`   // default: "c"

	// Input keys
	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"

	// Snapshot history keys
	Undo string `yaml:"undo,omitempty"` // default: "ctrl+z"
	Redo string `yaml:"redo,omitempty"` // default: "ctrl+y"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// DefaultRange is the chart window in days (7, 14, 30, 60 or 90)
	DefaultRange int `yaml:"default_range,omitempty"` // default: 30

	// ShowArchived includes archived tasks in totals and the chart at startup
	ShowArchived bool `yaml:"show_archived,omitempty"` // default: false

	// RecentLimit caps the recent-activity feed
	RecentLimit int `yaml:"recent_limit,omitempty"` // default: 100

	// StatusTTLSeconds is how long status messages stay visible
	StatusTTLSeconds int `yaml:"status_ttl_seconds,omitempty"` // default: 3

	// ExportDir is where exports from the TUI are written (default: current directory)
	ExportDir string `yaml:"export_dir,omitempty"`

	// NarrowLayoutThreshold is the terminal width below which to use stacked layout
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 100
}

// BackupConfig defines snapshot backup settings.
type BackupConfig struct {
	// Keep is how many backups `tally backup --prune` retains
	Keep int `yaml:"keep,omitempty"` // default: 10

	// BeforeReset takes a backup before reset and import
	BeforeReset bool `yaml:"before_reset,omitempty"` // default: true
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Storage: StorageConfig{
			Backend: "file",
		},
		Theme: ThemeConfig{
			Primary:    "#4F46E5", // Indigo
			Accent:     "#16A34A", // Green
			Muted:      "#6B7280", // Gray
			Background: "",        // Terminal default
			Text:       "",        // Terminal default
		},
		UX: UXConfig{
			DefaultRange:          30,
			ShowArchived:          false,
			RecentLimit:           tally.DefaultRecentLimit,
			StatusTTLSeconds:      3,
			NarrowLayoutThreshold: 100,
		},
		Backup: BackupConfig{
			Keep:        10,
			BeforeReset: true,
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tally"
	}
	return filepath.Join(home, ".tally")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tally")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tally")
}

// Path returns the path to the config file, or "" when no home is known.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	path := Path()
	if path == "" {
		return cfg, nil
	}

	data, ok, err := fsutil.ReadFileIfExists(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return cfg, nil
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	cfg.mergeFromYAML(&userCfg, &doc)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the app cannot honor.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be file or sqlite, got %q", c.Storage.Backend)
	}
	valid := false
	for _, r := range tally.RangeOptions {
		if c.UX.DefaultRange == r {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("ux.default_range must be one of %v, got %d", tally.RangeOptions, c.UX.DefaultRange)
	}
	if c.UX.RecentLimit < 0 {
		return fmt.Errorf("ux.recent_limit must not be negative")
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup.keep must not be negative")
	}
	return nil
}

func setIfNonEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setIfPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	setIfNonEmpty(&c.DataDir, other.DataDir)
	setIfNonEmpty(&c.Storage.Backend, other.Storage.Backend)

	setIfNonEmpty(&c.Theme.Primary, other.Theme.Primary)
	setIfNonEmpty(&c.Theme.Accent, other.Theme.Accent)
	setIfNonEmpty(&c.Theme.Muted, other.Theme.Muted)
	setIfNonEmpty(&c.Theme.Background, other.Theme.Background)
	setIfNonEmpty(&c.Theme.Text, other.Theme.Text)

	keys := []struct {
		dst *string
		v   string
	}{
		{&c.Keys.Quit, other.Keys.Quit},
		{&c.Keys.Help, other.Keys.Help},
		{&c.Keys.NextPane, other.Keys.NextPane},
		{&c.Keys.Pane1, other.Keys.Pane1},
		{&c.Keys.Pane2, other.Keys.Pane2},
		{&c.Keys.Pane3, other.Keys.Pane3},
		{&c.Keys.Up, other.Keys.Up},
		{&c.Keys.Down, other.Keys.Down},
		{&c.Keys.Top, other.Keys.Top},
		{&c.Keys.Bottom, other.Keys.Bottom},
		{&c.Keys.AddTask, other.Keys.AddTask},
		{&c.Keys.RenameTask, other.Keys.RenameTask},
		{&c.Keys.LogOne, other.Keys.LogOne},
		{&c.Keys.LogQuantity, other.Keys.LogQuantity},
		{&c.Keys.UndoLast, other.Keys.UndoLast},
		{&c.Keys.ToggleArchive, other.Keys.ToggleArchive},
		{&c.Keys.DeleteTask, other.Keys.DeleteTask},
		{&c.Keys.ResetAll, other.Keys.ResetAll},
		{&c.Keys.RangeNext, other.Keys.RangeNext},
		{&c.Keys.RangePrev, other.Keys.RangePrev},
		{&c.Keys.ToggleArchived, other.Keys.ToggleArchived},
		{&c.Keys.Export, other.Keys.Export},
		{&c.Keys.Import, other.Keys.Import},
		{&c.Keys.Copy, other.Keys.Copy},
		{&c.Keys.Confirm, other.Keys.Confirm},
		{&c.Keys.Cancel, other.Keys.Cancel},
		{&c.Keys.Undo, other.Keys.Undo},
		{&c.Keys.Redo, other.Keys.Redo},
	}
	for _, k := range keys {
		setIfNonEmpty(k.dst, k.v)
	}

	setIfPositive(&c.UX.DefaultRange, other.UX.DefaultRange)
	setIfPositive(&c.UX.RecentLimit, other.UX.RecentLimit)
	setIfPositive(&c.UX.StatusTTLSeconds, other.UX.StatusTTLSeconds)
	setIfPositive(&c.UX.NarrowLayoutThreshold, other.UX.NarrowLayoutThreshold)
	setIfNonEmpty(&c.UX.ExportDir, other.UX.ExportDir)

	setIfPositive(&c.Backup.Keep, other.Backup.Keep)
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a document we cannot tell an explicit false from an omitted key.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	if yamlHasPath(doc, "ux", "show_archived") {
		c.UX.ShowArchived = other.UX.ShowArchived
	}
	if yamlHasPath(doc, "backup", "before_reset") {
		c.Backup.BeforeReset = other.Backup.BeforeReset
	}
	// keep: 0 is meaningful ("prune everything but the newest").
	if yamlHasPath(doc, "backup", "keep") {
		c.Backup.Keep = other.Backup.Keep
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return expandHome(c.DataDir)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
