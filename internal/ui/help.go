package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

// HelpOverlay renders the keyboard reference from the live key maps, so
// custom bindings from the config show up as configured.
type HelpOverlay struct {
	width    int
	height   int
	styles   *Styles
	sections []helpSection
}

// NewHelpOverlay builds the sections from the given key maps.
func NewHelpOverlay(styles *Styles, global GlobalKeyMap, tasks TaskKeyMap, input InputKeyMap) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
		sections: []helpSection{
			{"Global", []key.Binding{global.NextPane, global.Pane1, global.Pane2, global.Pane3, global.Help, global.Quit}},
			{"View", []key.Binding{global.RangePrev, global.RangeNext, global.ToggleArchived}},
			{"Tasks", []key.Binding{tasks.Add, tasks.Rename, tasks.LogOne, tasks.LogQuantity, tasks.UndoLast, tasks.Archive, tasks.Delete, tasks.Up, tasks.Down}},
			{"Data", []key.Binding{global.Export, global.Copy, global.Import, global.ResetAll, global.Undo, global.Redo}},
			{"Input", []key.Binding{input.Confirm, input.Cancel}},
		},
	}
}

// SetSize sets the area the overlay is centered in.
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// displayKeys lists every key bound to b, the way the user would type it.
func displayKeys(b key.Binding) string {
	keys := make([]string, 0, len(b.Keys()))
	for _, k := range b.Keys() {
		keys = append(keys, keyLabel(k))
	}
	return strings.Join(keys, " / ")
}

// View renders the overlay centered in its area.
func (h *HelpOverlay) View() string {
	overlayWidth := 64
	if h.width > 0 {
		overlayWidth = min(64, max(20, h.width-4))
	}

	box := boxed(lipgloss.RoundedBorder(), h.styles.ColorPrimary).Padding(1, 2).Width(overlayWidth)
	section := fg(h.styles.ColorAccent).Bold(true)
	keyCol := fg(h.styles.ColorWarning).Width(18)

	var b strings.Builder
	b.WriteString(h.styles.PaneTitleStyle.Render("tally - Keyboard Shortcuts"))
	b.WriteString("\n")

	for _, s := range h.sections {
		b.WriteString("\n")
		b.WriteString(section.Render(s.title))
		b.WriteString("\n")
		for _, binding := range s.bindings {
			if !binding.Enabled() {
				continue
			}
			b.WriteString(keyCol.Render(displayKeys(binding)) + h.styles.TaskNameStyle.Render(binding.Help().Desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(h.styles.TaskArchivedStyle.Render("Log quantity accepts \"QTY\" or \"QTY YYYY-MM-DD\"."))
	b.WriteString("\n")
	b.WriteString(h.styles.TaskArchivedStyle.Render("Press ? or Esc to close"))

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box.Render(b.String()))
}
