// Package ui provides the terminal interface for tally.
// Every binding below can be overridden from the keys section of the config.
package ui

import (
	"strings"

	"tally/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// parseKeys splits a comma-separated override. An empty override keeps the
// defaults; "space" names the space bar.
func parseKeys(custom string, defaults ...string) []string {
	if custom == "" {
		return defaults
	}
	var out []string
	for _, k := range strings.Split(custom, ",") {
		k = strings.TrimSpace(k)
		if k == "space" {
			k = " "
		}
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// keyLabel is how a single key is shown in hints.
func keyLabel(k string) string {
	switch k {
	case " ":
		return "space"
	case "up":
		return "↑"
	case "down":
		return "↓"
	}
	return k
}

// bind builds a binding whose hint shows the first key actually bound.
func bind(custom, desc string, defaults ...string) key.Binding {
	keys := parseKeys(custom, defaults...)
	label := ""
	if len(keys) > 0 {
		label = keyLabel(keys[0])
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// GlobalKeyMap holds keys that work whenever no input is open.
type GlobalKeyMap struct {
	Quit, Help                    key.Binding
	NextPane, Pane1, Pane2, Pane3 key.Binding
	RangeNext, RangePrev          key.Binding
	ToggleArchived                key.Binding
	Export, Import, Copy          key.Binding
	ResetAll                      key.Binding
	Undo, Redo                    key.Binding
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit:           bind(cfg.Quit, "quit", "q", "ctrl+c"),
		Help:           bind(cfg.Help, "help", "?"),
		NextPane:       bind(cfg.NextPane, "pane", "tab"),
		Pane1:          bind(cfg.Pane1, "tasks", "1"),
		Pane2:          bind(cfg.Pane2, "chart", "2"),
		Pane3:          bind(cfg.Pane3, "activity", "3"),
		RangeNext:      bind(cfg.RangeNext, "longer range", "]"),
		RangePrev:      bind(cfg.RangePrev, "shorter range", "["),
		ToggleArchived: bind(cfg.ToggleArchived, "show/hide archived", "h"),
		Export:         bind(cfg.Export, "export", "e"),
		Import:         bind(cfg.Import, "import", "i"),
		Copy:           bind(cfg.Copy, "copy export", "c"),
		ResetAll:       bind(cfg.ResetAll, "reset all", "R"),
		Undo:           bind(cfg.Undo, "undo change", "ctrl+z"),
		Redo:           bind(cfg.Redo, "redo change", "ctrl+y"),
	}
}

// ShortHelp implements help.KeyMap.
func (k GlobalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.RangePrev, k.RangeNext, k.NextPane, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k GlobalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.Pane1, k.Pane2, k.Pane3, k.Help, k.Quit},
		{k.RangePrev, k.RangeNext, k.ToggleArchived},
		{k.Export, k.Copy, k.Import, k.ResetAll, k.Undo, k.Redo},
	}
}

// NavigationKeyMap moves through a list.
type NavigationKeyMap struct {
	Up, Down, Top, Bottom key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up:     bind(cfg.Up, "up", "k", "up"),
		Down:   bind(cfg.Down, "down", "j", "down"),
		Top:    bind(cfg.Top, "top", "g", "home"),
		Bottom: bind(cfg.Bottom, "bottom", "G", "end"),
	}
}

// InputKeyMap applies while a name or quantity is being typed.
type InputKeyMap struct {
	Confirm, Cancel key.Binding
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: bind(cfg.Confirm, "save", "enter"),
		Cancel:  bind(cfg.Cancel, "cancel", "esc"),
	}
}

// ShortHelp implements help.KeyMap.
func (k InputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k InputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// TaskKeyMap acts on the task under the cursor.
type TaskKeyMap struct {
	Add, Rename         key.Binding
	LogOne, LogQuantity key.Binding
	UndoLast            key.Binding
	Archive, Delete     key.Binding
	NavigationKeyMap
}

// NewTaskKeyMap creates task key bindings from config.
func NewTaskKeyMap(cfg *config.KeysConfig) TaskKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TaskKeyMap{
		Add:              bind(cfg.AddTask, "add", "a"),
		Rename:           bind(cfg.RenameTask, "rename", "r"),
		LogOne:           bind(cfg.LogOne, "+1", " ", "+"),
		LogQuantity:      bind(cfg.LogQuantity, "log qty", "enter", "l"),
		UndoLast:         bind(cfg.UndoLast, "undo last", "u", "-"),
		Archive:          bind(cfg.ToggleArchive, "archive", "A"),
		Delete:           bind(cfg.DeleteTask, "delete", "x"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp implements help.KeyMap.
func (k TaskKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.LogOne, k.LogQuantity, k.UndoLast, k.Archive, k.Delete}
}

// FullHelp implements help.KeyMap.
func (k TaskKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Rename, k.Archive, k.Delete},
		{k.LogOne, k.LogQuantity, k.UndoLast},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// ActivityKeyMap scrolls the recent-activity feed.
type ActivityKeyMap struct {
	NavigationKeyMap
}

// NewActivityKeyMap creates activity key bindings from config.
func NewActivityKeyMap(cfg *config.KeysConfig) ActivityKeyMap {
	return ActivityKeyMap{NavigationKeyMap: NewNavigationKeyMap(cfg)}
}

// ShortHelp implements help.KeyMap.
func (k ActivityKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Top, k.Bottom}
}

// FullHelp implements help.KeyMap.
func (k ActivityKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// HelpKeyMap closes the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the fixed overlay keys.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(key.WithKeys("?", "esc", "q", "enter", " "), key.WithHelp("any key", "close")),
	}
}

// ConfirmKeyMap answers the confirmation overlay.
type ConfirmKeyMap struct {
	Yes, No key.Binding
}

// DefaultConfirmKeyMap returns the y/n bindings.
func DefaultConfirmKeyMap() ConfirmKeyMap {
	return ConfirmKeyMap{
		Yes: key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y/enter", "confirm")),
		No:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "cancel")),
	}
}
