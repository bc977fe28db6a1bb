package ui

import (
	"fmt"
	"strconv"
	"strings"

	"tally/internal/config"
	"tally/internal/storage"
	"tally/internal/tally"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// inputMode is what the pane's text input is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputRename
	inputLog
)

// TaskPane lists every task with today's and all-time counts and owns the
// per-task inline controls.
type TaskPane struct {
	tasks   []tally.Task
	today   map[string]int
	cursor  int
	focused bool
	width   int
	height  int
	mode    inputMode
	target  string // task id the input applies to
	input   textinput.Model
	storage *storage.Store
	styles  *Styles

	keys      TaskKeyMap
	inputKeys InputKeyMap
}

// NewTaskPane creates a new task pane with default keys.
func NewTaskPane(store *storage.Store, styles *Styles) *TaskPane {
	return NewTaskPaneWithKeys(store, styles, &config.KeysConfig{})
}

// NewTaskPaneWithKeys creates a new task pane with custom key bindings.
func NewTaskPaneWithKeys(store *storage.Store, styles *Styles, keyCfg *config.KeysConfig) *TaskPane {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	ti := textinput.New()
	ti.CharLimit = tally.MaxNameLen
	ti.Width = 40

	return &TaskPane{
		today:     map[string]int{},
		focused:   true,
		input:     ti,
		storage:   store,
		styles:    styles,
		keys:      NewTaskKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// SetTasks replaces the list shown and today's per-task counts.
func (p *TaskPane) SetTasks(tasks []tally.Task, today map[string]int) {
	p.tasks = tasks
	if today == nil {
		today = map[string]int{}
	}
	p.today = today
	if p.cursor >= len(p.tasks) {
		p.cursor = max(0, len(p.tasks)-1)
	}
}

// Selected returns the task under the cursor.
func (p *TaskPane) Selected() (tally.Task, bool) {
	if p.cursor < 0 || p.cursor >= len(p.tasks) {
		return tally.Task{}, false
	}
	return p.tasks[p.cursor], true
}

// SetSize sets the pane dimensions.
func (p *TaskPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-6)
}

// SetFocused sets whether this pane is focused.
func (p *TaskPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsFocused returns whether this pane is focused.
func (p *TaskPane) IsFocused() bool {
	return p.focused
}

// IsEditing reports whether the inline input is open.
func (p *TaskPane) IsEditing() bool {
	return p.mode != inputNone
}

func (p *TaskPane) openInput(mode inputMode, target, value, placeholder string) tea.Cmd {
	p.mode = mode
	p.target = target
	p.input.Reset()
	p.input.Placeholder = placeholder
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.input.Focus()
	return textinput.Blink
}

func (p *TaskPane) closeInput() {
	p.mode = inputNone
	p.target = ""
	p.input.Blur()
	p.input.Reset()
}

// parseLogInput reads "QTY [YYYY-MM-DD]". A blank quantity means 1.
func parseLogInput(s string) (qty int, dateKey string, ok bool) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return 1, "", true
	case 1, 2:
	default:
		return 0, "", false
	}
	qty, err := strconv.Atoi(fields[0])
	if err != nil || qty <= 0 {
		return 0, "", false
	}
	if len(fields) == 2 {
		if !tally.ValidDateKey(fields[1]) {
			return 0, "", false
		}
		dateKey = fields[1]
	}
	return qty, dateKey, true
}

// submit turns the input value into a command. Invalid quantities are
// dropped without a message.
func (p *TaskPane) submit() tea.Cmd {
	value := strings.TrimSpace(p.input.Value())
	mode, target := p.mode, p.target
	p.closeInput()

	switch mode {
	case inputAdd:
		return addTaskCmd(p.storage, value)
	case inputRename:
		if value == "" {
			return nil
		}
		return renameTaskCmd(p.storage, target, value)
	case inputLog:
		qty, dateKey, ok := parseLogInput(value)
		if !ok {
			return nil
		}
		name := target
		if i := tally.FindTask(p.tasks, target); i >= 0 {
			name = p.tasks[i].Name
		}
		return logQuantityCmd(p.storage, target, name, qty, dateKey)
	}
	return nil
}

// Update handles messages for the task pane.
func (p *TaskPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	if p.mode != inputNone {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, p.inputKeys.Confirm):
				return p.submit()
			case key.Matches(msg, p.inputKeys.Cancel):
				p.closeInput()
				return nil
			}
		}
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return p.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Down):
			if len(p.tasks) > 0 {
				p.cursor = min(p.cursor+1, len(p.tasks)-1)
			}

		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)

		case key.Matches(msg, p.keys.Top):
			p.cursor = 0

		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(0, len(p.tasks)-1)

		case key.Matches(msg, p.keys.Add):
			return p.openInput(inputAdd, "", "", tally.DefaultTaskName(len(p.tasks)))
		}

		task, ok := p.Selected()
		if !ok {
			return nil
		}
		switch {
		case key.Matches(msg, p.keys.Rename):
			return p.openInput(inputRename, task.ID, task.Name, "New name")

		case key.Matches(msg, p.keys.LogQuantity):
			return p.openInput(inputLog, task.ID, "", "qty [YYYY-MM-DD]")

		case key.Matches(msg, p.keys.LogOne):
			return logQuantityCmd(p.storage, task.ID, task.Name, 1, "")

		case key.Matches(msg, p.keys.UndoLast):
			return undoLastCmd(p.storage, task.ID, task.Name)

		case key.Matches(msg, p.keys.Archive):
			return toggleArchiveCmd(p.storage, task.ID, task.Name)
		}
	}

	return nil
}

// visibleRows is how many task rows fit between the header and the footer.
func (p *TaskPane) visibleRows() int {
	rows := p.height - 6 // title, separator, blank, footer, input
	if rows < 3 {
		rows = 5
	}
	return rows
}

func (p *TaskPane) windowStart() int {
	if rows := p.visibleRows(); p.cursor >= rows {
		return p.cursor - rows + 1
	}
	return 0
}

// handleMouse processes mouse events for the task pane.
func (p *TaskPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if len(p.tasks) == 0 {
		return nil
	}

	// Rows start after the border (1), title (1) and separator (1).
	const headerRows = 3

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.cursor = max(p.cursor-1, 0)
	case tea.MouseButtonWheelDown:
		p.cursor = min(p.cursor+1, len(p.tasks)-1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		row := msg.Y - headerRows
		if row < 0 || row >= p.visibleRows() {
			return nil
		}
		if idx := p.windowStart() + row; idx < len(p.tasks) {
			p.cursor = idx
		}
	}
	return nil
}

// View renders the task pane.
func (p *TaskPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("TASKS"))
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(p.tasks) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true).Render("  No tasks yet. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		start := p.windowStart()
		end := min(len(p.tasks), start+p.visibleRows())
		for i := start; i < end; i++ {
			b.WriteString(p.renderRow(i))
			b.WriteString("\n")
		}

		archived := 0
		for _, t := range p.tasks {
			if t.Archived {
				archived++
			}
		}
		b.WriteString("\n")
		footer := fmt.Sprintf("%d tasks", len(p.tasks))
		if archived > 0 {
			footer += fmt.Sprintf(", %d archived", archived)
		}
		b.WriteString("  " + p.styles.CountStyle.Render(footer))
		b.WriteString("\n")
	}

	if p.mode != inputNone {
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render(p.promptLabel()) + p.input.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

func (p *TaskPane) promptLabel() string {
	switch p.mode {
	case inputAdd:
		return "+ "
	case inputRename:
		return "rename: "
	case inputLog:
		return "log: "
	}
	return ""
}

// renderRow lays out "● name (archived)     today/total".
func (p *TaskPane) renderRow(i int) string {
	task := p.tasks[i]
	counts := fmt.Sprintf("%d/%d", p.today[task.ID], task.Total())
	countsWidth := runewidth.StringWidth(counts)

	suffix := ""
	if task.Archived {
		suffix = " (archived)"
	}

	// leading space + swatch + space, then name, then a gap before counts
	avail := p.width - 4 - 3 - countsWidth - 1 - runewidth.StringWidth(suffix)
	if avail < 5 {
		avail = 5
	}
	name := runewidth.Truncate(task.Name, avail, "..")
	pad := max(1, avail-runewidth.StringWidth(name)+1)

	if i == p.cursor && p.focused && p.mode == inputNone {
		line := " ● " + name + suffix + strings.Repeat(" ", pad) + counts
		return p.styles.TaskSelectedStyle.Render(line)
	}

	nameStyle := p.styles.TaskNameStyle
	if task.Archived {
		nameStyle = p.styles.TaskArchivedStyle
	}
	countStyle := p.styles.CountStyle
	if p.today[task.ID] > 0 {
		countStyle = p.styles.CountTodayStyle
	}
	return " " + p.styles.Swatch(task.Color) + " " + nameStyle.Render(name+suffix) +
		strings.Repeat(" ", pad) + countStyle.Render(counts)
}
