package ui

import (
	"fmt"
	"strings"
	"time"

	"tally/internal/config"
	"tally/internal/tally"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ActivityPane is the newest-first feed of logged events.
type ActivityPane struct {
	items   []tally.Activity
	colors  map[string]string
	offset  int
	focused bool
	width   int
	height  int
	loc     *time.Location
	styles  *Styles
	keys    ActivityKeyMap
}

// NewActivityPane creates an empty activity pane.
func NewActivityPane(styles *Styles, keyCfg *config.KeysConfig) *ActivityPane {
	return &ActivityPane{
		colors: map[string]string{},
		loc:    time.Local,
		styles: styles,
		keys:   NewActivityKeyMap(keyCfg),
	}
}

// SetItems replaces the feed. tasks supplies swatch colors by id.
func (p *ActivityPane) SetItems(items []tally.Activity, tasks []tally.Task) {
	p.items = items
	p.colors = make(map[string]string, len(tasks))
	for _, t := range tasks {
		p.colors[t.ID] = t.Color
	}
	p.offset = min(p.offset, max(0, len(p.items)-1))
}

// SetLocation sets the zone timestamps are shown in.
func (p *ActivityPane) SetLocation(loc *time.Location) {
	if loc != nil {
		p.loc = loc
	}
}

// SetSize sets the pane dimensions.
func (p *ActivityPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether this pane is focused.
func (p *ActivityPane) SetFocused(focused bool) {
	p.focused = focused
}

func (p *ActivityPane) visibleRows() int {
	rows := p.height - 3 // title, separator, footer
	if rows < 3 {
		rows = 3
	}
	return rows
}

// Update scrolls the feed.
func (p *ActivityPane) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}
	last := max(0, len(p.items)-p.visibleRows())
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Down):
			p.offset = min(p.offset+1, last)
		case key.Matches(msg, p.keys.Up):
			p.offset = max(p.offset-1, 0)
		case key.Matches(msg, p.keys.Top):
			p.offset = 0
		case key.Matches(msg, p.keys.Bottom):
			p.offset = last
		}
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			p.offset = max(p.offset-1, 0)
		case tea.MouseButtonWheelDown:
			p.offset = min(p.offset+1, last)
		}
	}
	return nil
}

// View renders the activity pane.
func (p *ActivityPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("RECENT ACTIVITY"))
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(p.items) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true).Render("  Nothing logged yet."))
		b.WriteString("\n")
	} else {
		end := min(len(p.items), p.offset+p.visibleRows())
		for _, item := range p.items[p.offset:end] {
			b.WriteString(p.renderItem(item))
			b.WriteString("\n")
		}
		b.WriteString(p.styles.CountStyle.Render(fmt.Sprintf("  %d-%d of %d", p.offset+1, end, len(p.items))))
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

// renderItem lays out "Jan 02 15:04  ● name ×qty".
func (p *ActivityPane) renderItem(item tally.Activity) string {
	stamp := item.At.In(p.loc).Format("Jan 02 15:04")
	qty := ""
	if item.Qty > 1 {
		qty = fmt.Sprintf(" ×%d", item.Qty)
	}
	avail := p.width - 4 - runewidth.StringWidth(stamp) - 5 - runewidth.StringWidth(qty)
	name := runewidth.Truncate(item.Name, max(5, avail), "..")

	line := p.styles.ActivityTimeStyle.Render(stamp) + "  " + p.styles.Swatch(p.colors[item.TaskID]) + " " +
		p.styles.TaskNameStyle.Render(name)
	if qty != "" {
		line += p.styles.ActivityQtyStyle.Render(qty)
	}
	return " " + line
}
