// Package ui provides the terminal interface for tally.
// This file contains the main App model which coordinates all panes and
// routes messages using the Bubble Tea architecture.
package ui

import (
	"fmt"
	"strings"
	"time"

	"tally/internal/backup"
	"tally/internal/config"
	"tally/internal/storage"
	"tally/internal/tally"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneTasks PaneID = iota
	PaneChart
	PaneActivity
)

var paneLabels = []string{"Tasks", "Chart", "Activity"}

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows all three panes side-by-side.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	NarrowLayoutThreshold int
	DefaultRange          int
	ShowArchived          bool
	RecentLimit           int
	StatusTTL             time.Duration
	ExportDir             string
	// Backups, when set, receives a backup before every reset.
	Backups *backup.Manager
}

// AppConfigFrom maps the loaded configuration onto the app.
func AppConfigFrom(cfg *config.Config, backups *backup.Manager) *AppConfig {
	ac := &AppConfig{
		Keys:                  &cfg.Keys,
		NarrowLayoutThreshold: cfg.UX.NarrowLayoutThreshold,
		DefaultRange:          cfg.UX.DefaultRange,
		ShowArchived:          cfg.UX.ShowArchived,
		RecentLimit:           cfg.UX.RecentLimit,
		StatusTTL:             time.Duration(cfg.UX.StatusTTLSeconds) * time.Second,
		ExportDir:             cfg.UX.ExportDir,
	}
	if cfg.Backup.BeforeReset {
		ac.Backups = backups
	}
	return ac
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Keys:                  &config.KeysConfig{},
		NarrowLayoutThreshold: 100,
		DefaultRange:          30,
		RecentLimit:           tally.DefaultRecentLimit,
		StatusTTL:             3 * time.Second,
	}
}

// App is the main application model that coordinates all panes.
type App struct {
	storage      *storage.Store
	styles       *Styles
	config       *AppConfig
	taskPane     *TaskPane
	chartPane    *ChartPane
	activityPane *ActivityPane
	helpOverlay  *HelpOverlay
	helpBar      help.Model
	history      *History
	undoBusy     bool
	confirm      *confirmState
	importing    bool
	importInput  textinput.Model
	activePane   PaneID
	layoutMode   LayoutMode
	showHelp     bool
	width        int
	height       int
	status       string
	statusErr    bool
	statusUntil  time.Time
	quitting     bool

	// Data and derived views
	tasks        []tally.Task
	rev          uint64
	loaded       bool
	deriver      tally.Deriver
	derived      tally.Derived
	showArchived bool
	rangeDays    int
	todayKey     string
	todayRev     uint64
	todayCounts  map[string]int

	// Key bindings
	keys        GlobalKeyMap
	inputKeys   InputKeyMap
	helpKeys    HelpKeyMap
	confirmKeys ConfirmKeyMap

	// Pane positions for mouse click detection (x coordinates)
	paneStarts [3]int
	paneEnds   [3]int
	contentTop int // Y coordinate where content starts
}

type confirmState struct {
	title  string
	body   string
	action string
	cmd    tea.Cmd
}

// NewApp creates a new application. Data loading is deferred to Init()
// to keep the constructor non-blocking.
func NewApp(store *storage.Store, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = defaultAppConfig()
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = 3 * time.Second
	}
	rangeDays := cfg.DefaultRange
	if rangeDays <= 0 {
		rangeDays = 30
	}

	keys := NewGlobalKeyMap(cfg.Keys)
	inputKeys := NewInputKeyMap(cfg.Keys)
	taskPane := NewTaskPaneWithKeys(store, styles, cfg.Keys)

	importInput := textinput.New()
	importInput.Placeholder = "path/to/export.json or .csv"
	importInput.CharLimit = 4096
	importInput.Width = 50

	helpBar := help.New()
	helpBar.Styles.ShortKey = styles.HelpKeyStyle
	helpBar.Styles.ShortDesc = styles.HelpStyle
	helpBar.Styles.ShortSeparator = styles.HelpStyle
	helpBar.Styles.Ellipsis = styles.HelpStyle

	app := &App{
		storage:      store,
		styles:       styles,
		config:       cfg,
		taskPane:     taskPane,
		chartPane:    NewChartPane(styles),
		activityPane: NewActivityPane(styles, cfg.Keys),
		helpOverlay:  NewHelpOverlay(styles, keys, taskPane.keys, inputKeys),
		helpBar:      helpBar,
		history:      NewHistory(store),
		importInput:  importInput,
		activePane:   PaneTasks,
		showArchived: cfg.ShowArchived,
		rangeDays:    rangeDays,
		keys:         keys,
		inputKeys:    inputKeys,
		helpKeys:     DefaultHelpKeyMap(),
		confirmKeys:  DefaultConfirmKeyMap(),
	}
	app.setActivePane(PaneTasks)
	return app
}

// tickMsg is sent periodically for time updates.
type tickMsg time.Time

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the app and loads all data asynchronously.
func (a *App) Init() tea.Cmd {
	return tea.Batch(tickCmd(), loadTasksCmd(a.storage))
}

// refresh recomputes the derived views. Each aggregate is recomputed only
// when its own inputs changed, so this is cheap to call on every tick.
func (a *App) refresh() {
	if !a.loaded {
		return
	}
	now := a.storage.Now()
	a.derived = a.deriver.Derive(tally.Inputs{
		Tasks:        a.tasks,
		Revision:     a.rev,
		ShowArchived: a.showArchived,
		RangeDays:    a.rangeDays,
		RecentLimit:  a.config.RecentLimit,
		Now:          now,
	})

	if today := tally.DateKey(now); today != a.todayKey || a.rev != a.todayRev || a.todayCounts == nil {
		a.todayCounts = make(map[string]int, len(a.tasks))
		for _, t := range a.tasks {
			a.todayCounts[t.ID] = tally.ComputeTotals([]tally.Task{t}, now).Today
		}
		a.todayKey, a.todayRev = today, a.rev
	}

	a.taskPane.SetTasks(a.tasks, a.todayCounts)
	a.chartPane.SetData(a.derived.Visible, a.derived.Series, a.rangeDays)
	a.activityPane.SetLocation(now.Location())
	a.activityPane.SetItems(a.derived.Recent, a.tasks)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Storage results first, regardless of which pane is active.
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		if msg.err != nil {
			a.SetStatus("Storage: "+msg.err.Error(), true)
		}
		a.tasks, a.rev, a.loaded = msg.tasks, msg.rev, true
		a.refresh()
		return a, nil

	case taskChangedMsg:
		if msg.err != nil {
			a.SetStatus(msg.err.Error(), true)
			return a, nil
		}
		if msg.change != nil {
			a.history.Record(msg.change)
		}
		if msg.desc != "" {
			a.SetStatus(msg.desc, false)
		}
		return a, loadTasksCmd(a.storage)

	case exportedMsg:
		if msg.err != nil {
			a.SetStatus("Export failed: "+msg.err.Error(), true)
		} else {
			a.SetStatus("Exported to "+msg.path, false)
		}
		return a, nil

	case copiedMsg:
		if msg.err != nil {
			a.SetStatus("Copy failed: "+msg.err.Error(), true)
		} else {
			a.SetStatus(fmt.Sprintf("Copied export to clipboard (%d bytes)", msg.bytes), false)
		}
		return a, nil

	case importedMsg:
		if msg.err != nil {
			a.SetStatus("Import failed: "+msg.err.Error(), true)
			return a, nil
		}
		if msg.change != nil {
			a.history.Record(msg.change)
		}
		status := fmt.Sprintf("Imported %d tasks, %d events", msg.result.Tasks, msg.result.Events)
		if msg.result.Skipped > 0 {
			status += fmt.Sprintf(" (%d rows skipped)", msg.result.Skipped)
		}
		a.SetStatus(status, false)
		return a, loadTasksCmd(a.storage)

	case undoResultMsg:
		a.undoBusy = false
		switch {
		case msg.err != nil:
			a.SetStatus("Undo failed: "+msg.err.Error(), true)
		case msg.desc != "":
			a.SetStatus("Undid: "+msg.desc, false)
		default:
			a.SetStatus("Nothing to undo", false)
		}
		return a, loadTasksCmd(a.storage)

	case redoResultMsg:
		a.undoBusy = false
		switch {
		case msg.err != nil:
			a.SetStatus("Redo failed: "+msg.err.Error(), true)
		case msg.desc != "":
			a.SetStatus("Redid: "+msg.desc, false)
		default:
			a.SetStatus("Nothing to redo", false)
		}
		return a, loadTasksCmd(a.storage)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && time.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		a.refresh()
		return a, tickCmd()

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a, a.handleMouse(msg)
	}

	// Anything else (cursor blinks) goes to whatever owns the input.
	if a.importing {
		var cmd tea.Cmd
		a.importInput, cmd = a.importInput.Update(msg)
		return a, cmd
	}
	return a, a.taskPane.Update(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.confirm != nil {
		switch {
		case key.Matches(msg, a.confirmKeys.Yes):
			cmd := a.confirm.cmd
			a.confirm = nil
			return a, cmd
		case key.Matches(msg, a.confirmKeys.No):
			a.confirm = nil
			a.SetStatus("Canceled", false)
		}
		return a, nil
	}

	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return a, nil
	}

	if a.importing {
		switch {
		case key.Matches(msg, a.inputKeys.Confirm):
			path := strings.TrimSpace(a.importInput.Value())
			a.closeImport()
			if path == "" {
				return a, nil
			}
			return a, importCmd(a.storage, path)
		case key.Matches(msg, a.inputKeys.Cancel):
			a.closeImport()
			return a, nil
		}
		var cmd tea.Cmd
		a.importInput, cmd = a.importInput.Update(msg)
		return a, cmd
	}

	if a.taskPane.IsEditing() {
		return a, a.taskPane.Update(msg)
	}

	if a.activePane == PaneTasks && key.Matches(msg, a.taskPane.keys.Delete) {
		task, ok := a.taskPane.Selected()
		if !ok {
			a.SetStatus("No task selected", true)
			return a, nil
		}
		a.confirm = &confirmState{
			title:  "Delete this task?",
			body:   fmt.Sprintf("%s and its %d events will be removed.", truncateText(task.Name, 40), len(task.Events)),
			action: "delete",
			cmd:    deleteTaskCmd(a.storage, task.ID),
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.NextPane):
		a.setActivePane((a.activePane + 1) % 3)
		return a, nil

	case key.Matches(msg, a.keys.Pane1):
		a.setActivePane(PaneTasks)
		return a, nil

	case key.Matches(msg, a.keys.Pane2):
		a.setActivePane(PaneChart)
		return a, nil

	case key.Matches(msg, a.keys.Pane3):
		a.setActivePane(PaneActivity)
		return a, nil

	case key.Matches(msg, a.keys.RangeNext):
		a.rangeDays = tally.NextRange(a.rangeDays, 1)
		a.refresh()
		return a, nil

	case key.Matches(msg, a.keys.RangePrev):
		a.rangeDays = tally.NextRange(a.rangeDays, -1)
		a.refresh()
		return a, nil

	case key.Matches(msg, a.keys.ToggleArchived):
		a.showArchived = !a.showArchived
		a.refresh()
		if a.showArchived {
			a.SetStatus("Including archived tasks", false)
		} else {
			a.SetStatus("Hiding archived tasks", false)
		}
		return a, nil

	case key.Matches(msg, a.keys.Export):
		return a, exportCmd(a.storage, a.config.ExportDir)

	case key.Matches(msg, a.keys.Copy):
		return a, copyExportCmd(a.storage)

	case key.Matches(msg, a.keys.Import):
		a.importing = true
		a.importInput.Reset()
		a.importInput.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.ResetAll):
		events := 0
		for _, t := range a.tasks {
			events += len(t.Events)
		}
		body := fmt.Sprintf("%d tasks and %d events will be removed.", len(a.tasks), events)
		if a.config.Backups != nil {
			body += "\nA backup is taken first."
		}
		a.confirm = &confirmState{
			title:  "Delete ALL tasks and data?",
			body:   body,
			action: "reset",
			cmd:    resetAllCmd(a.storage, a.config.Backups),
		}
		return a, nil

	case key.Matches(msg, a.keys.Undo):
		if a.undoBusy {
			a.SetStatus("Undo: busy", true)
			return a, nil
		}
		a.undoBusy = true
		return a, undoCmd(a.history)

	case key.Matches(msg, a.keys.Redo):
		if a.undoBusy {
			a.SetStatus("Redo: busy", true)
			return a, nil
		}
		a.undoBusy = true
		return a, redoCmd(a.history)
	}

	switch a.activePane {
	case PaneTasks:
		return a, a.taskPane.Update(msg)
	case PaneActivity:
		return a, a.activityPane.Update(msg)
	}
	return a, nil
}

func (a *App) closeImport() {
	a.importing = false
	a.importInput.Blur()
	a.importInput.Reset()
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.confirm != nil || a.showHelp {
		// Any click dismisses an overlay; a dismissed confirm is a decline.
		if msg.Action == tea.MouseActionPress {
			if a.confirm != nil {
				a.confirm = nil
				a.SetStatus("Canceled", false)
			}
			a.showHelp = false
		}
		return nil
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if a.layoutMode == LayoutNarrow && msg.Y == a.contentTop-1 {
			tabWidth := max(1, a.width/3)
			a.setActivePane(PaneID(min(2, msg.X/tabWidth)))
			return nil
		}
		if pane := a.paneAtPosition(msg.X); pane >= 0 && pane != a.activePane {
			a.setActivePane(pane)
		}
	}

	if msg.Y < a.contentTop {
		return nil
	}
	local := msg
	local.Y = msg.Y - a.contentTop
	local.X = msg.X - a.paneStarts[a.activePane]
	switch a.activePane {
	case PaneTasks:
		return a.taskPane.Update(local)
	case PaneActivity:
		return a.activityPane.Update(local)
	}
	return nil
}

// setActivePane sets the active pane and updates focus states.
func (a *App) setActivePane(pane PaneID) {
	a.activePane = pane
	a.taskPane.SetFocused(pane == PaneTasks)
	a.chartPane.SetFocused(pane == PaneChart)
	a.activityPane.SetFocused(pane == PaneActivity)
}

// paneAtPosition returns which pane is at the given X coordinate.
// Returns -1 if no pane is at that position.
func (a *App) paneAtPosition(x int) PaneID {
	if a.layoutMode == LayoutNarrow {
		return a.activePane
	}
	for i := range a.paneStarts {
		if x >= a.paneStarts[i] && x < a.paneEnds[i] {
			return PaneID(i)
		}
	}
	return -1
}

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	// Title bar (1), bordered cards (3), help bar (1), pane borders (2)
	contentHeight := a.height - 7
	if contentHeight < 10 {
		contentHeight = 10
	}
	a.contentTop = 4

	a.helpOverlay.SetSize(a.width, a.height)
	a.helpBar.Width = a.width
	a.importInput.Width = max(20, a.width-20)

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 100
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow

		narrowHeight := max(8, contentHeight-1)
		paneWidth := max(20, a.width-2)
		a.taskPane.SetSize(paneWidth, narrowHeight)
		a.chartPane.SetSize(paneWidth, narrowHeight)
		a.activityPane.SetSize(paneWidth, narrowHeight)

		for i := range a.paneStarts {
			a.paneStarts[i], a.paneEnds[i] = 0, a.width
		}
		// Content starts after the tab bar in narrow mode
		a.contentTop = 5
		return
	}

	a.layoutMode = LayoutWide
	// Two gaps and three pairs of borders
	totalWidth := a.width - 8
	tasksWidth := (totalWidth * 34) / 100
	chartWidth := (totalWidth * 40) / 100
	activityWidth := totalWidth - tasksWidth - chartWidth

	a.taskPane.SetSize(tasksWidth, contentHeight)
	a.chartPane.SetSize(chartWidth, contentHeight)
	a.activityPane.SetSize(activityWidth, contentHeight)

	// Rendered panes are two columns wider than their content, plus one
	// space between them.
	widths := [3]int{tasksWidth, chartWidth, activityWidth}
	x := 0
	for i, w := range widths {
		a.paneStarts[i] = x
		a.paneEnds[i] = x + w + 2
		x += w + 3
	}
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}
	if a.confirm != nil {
		return a.renderConfirm()
	}
	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(a.renderCards())
	b.WriteString("\n")

	switch a.layoutMode {
	case LayoutNarrow:
		b.WriteString(a.renderPaneTabs())
		b.WriteString("\n")
		b.WriteString(a.activeView())
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			a.taskPane.View(), " ", a.chartPane.View(), " ", a.activityPane.View()))
	}
	b.WriteString("\n")

	if a.importing {
		b.WriteString(a.styles.InputPromptStyle.Render("import: ") + a.importInput.View())
		b.WriteString("\n")
	}
	b.WriteString(a.renderHelpBar())
	return b.String()
}

func (a *App) activeView() string {
	switch a.activePane {
	case PaneChart:
		return a.chartPane.View()
	case PaneActivity:
		return a.activityPane.View()
	default:
		return a.taskPane.View()
	}
}

func (a *App) renderConfirm() string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorDanger)

	bodyStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorText)

	hintStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirm.title))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Render(a.confirm.body))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render(fmt.Sprintf("[y/enter] %s    [n/esc] cancel", a.confirm.action)))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(b.String()))
}

// renderPaneTabs renders a tab bar showing available panes.
func (a *App) renderPaneTabs() string {
	activeTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorPrimary).
		Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	parts := make([]string, 0, len(paneLabels))
	for i, label := range paneLabels {
		if PaneID(i) == a.activePane {
			parts = append(parts, activeTabStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, inactiveTabStyle.Render(" "+label+" "))
		}
	}

	tabBar := strings.Join(parts, "  ")
	if padding := (a.width - lipgloss.Width(tabBar)) / 2; padding > 0 {
		tabBar = strings.Repeat(" ", padding) + tabBar
	}
	return tabBar
}

// renderGoodbye shows today's tally on exit.
func (a *App) renderGoodbye() string {
	var b strings.Builder
	b.WriteString("\n  See you later!\n\n")
	if a.loaded {
		fmt.Fprintf(&b, "  Today: %d   All time: %d\n\n", a.derived.Totals.Today, a.derived.Totals.Total)
	}
	return b.String()
}

// renderTitleBar creates the top bar with the range selector and date.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" tally ")

	var ranges []string
	for _, r := range tally.RangeOptions {
		label := fmt.Sprintf("%dd", r)
		if r == a.rangeDays {
			ranges = append(ranges, a.styles.RangeActiveStyle.Render("["+label+"]"))
		} else {
			ranges = append(ranges, a.styles.RangeInactiveStyle.Render(" "+label+" "))
		}
	}
	selector := strings.Join(ranges, "")

	archived := "archived hidden"
	if a.showArchived {
		archived = "archived shown"
	}
	archivedLabel := a.styles.DateStyle.Render(archived)

	date := a.styles.DateStyle.Render(a.storage.Now().Format("Mon Jan 2 · 15:04"))

	used := lipgloss.Width(title) + lipgloss.Width(selector) + lipgloss.Width(archivedLabel) + lipgloss.Width(date)
	spacer := max(2, a.width-used-4)
	left := strings.Repeat(" ", spacer/2)
	right := strings.Repeat(" ", spacer-spacer/2)

	return title + "  " + selector + left + archivedLabel + right + date
}

// renderCards shows the today and all-time summary cards.
func (a *App) renderCards() string {
	card := func(label string, value int) string {
		return a.styles.CardLabelStyle.Render(label+" ") + a.styles.CardValueStyle.Render(fmt.Sprintf("%d", value))
	}
	today, total := 0, 0
	if a.loaded {
		today, total = a.derived.Totals.Today, a.derived.Totals.Total
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		a.styles.CardStyle.Render(card("Today", today)),
		" ",
		a.styles.CardStyle.Render(card("Total", total)),
	)
}

// renderHelpBar shows the status message, or hints for the current context.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.importing || a.taskPane.IsEditing() {
		return a.helpBar.ShortHelpView(a.inputKeys.ShortHelp())
	}

	var bindings []key.Binding
	switch a.activePane {
	case PaneTasks:
		bindings = a.taskPane.keys.ShortHelp()
	case PaneActivity:
		bindings = a.activityPane.keys.ShortHelp()
	}
	return a.helpBar.ShortHelpView(append(bindings, a.keys.ShortHelp()...))
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := a.config.StatusTTL
	if isErr {
		ttl *= 2
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program.
func Run(store *storage.Store, styles *Styles, cfg *AppConfig) error {
	app := NewApp(store, styles, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
