package ui

import (
	"fmt"
	"testing"
	"time"

	"tally/internal/config"
	"tally/internal/storage"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// testNow is a Tuesday afternoon; every test store runs on it.
var testNow = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

// setupTest prepares the test environment for deterministic rendering.
func setupTest(t *testing.T) {
	t.Helper()
	// Use ASCII profile to disable all color codes in output
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStore creates an in-memory Store with a fixed clock and
// sequential ids (id-1, id-2, ...).
func createTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store := storage.New(storage.NewMemoryBackend())
	store.SetNowFunc(func() time.Time { return testNow })
	if err := store.Save(nil); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	n := 0
	store.SetIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
	return store
}

// mustAdd appends a task and fails the test on error.
func mustAdd(t *testing.T, store *storage.Store, name string) string {
	t.Helper()
	task, err := store.AddTask(name)
	if err != nil {
		t.Fatalf("AddTask(%q): %v", name, err)
	}
	return task.ID
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

// stillCursors stops the text inputs from blinking. A blinking cursor
// answers every key with a tea.Tick that drain would have to wait out.
func stillCursors(app *App) {
	app.importInput.Cursor.SetMode(cursor.CursorStatic)
	app.taskPane.input.Cursor.SetMode(cursor.CursorStatic)
}

// drain runs cmd and feeds every app message it produces back into app,
// depth first, the way the runtime would. Other messages end the chain.
// Commands are run before they can be inspected, so callers must not hand
// it ticks; see stillCursors.
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for depth := 0; cmd != nil && depth < 20; depth++ {
		msg := cmd()
		switch msg := msg.(type) {
		case tea.BatchMsg:
			for _, c := range msg {
				drain(t, app, c)
			}
			return
		case tasksLoadedMsg, taskChangedMsg, exportedMsg, copiedMsg, importedMsg, undoResultMsg, redoResultMsg:
			_, cmd = app.Update(msg)
		default:
			return
		}
	}
}

// press sends a key to app and drains the resulting commands.
func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := app.Update(keyMsg(k))
		drain(t, app, cmd)
	}
}

// typeText sends each rune of s as a key press.
func typeText(t *testing.T, app *App, s string) {
	t.Helper()
	for _, r := range s {
		_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		drain(t, app, cmd)
	}
}

// keyMsg builds the tea.KeyMsg whose String() is k.
func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ", "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+z":
		return tea.KeyMsg{Type: tea.KeyCtrlZ}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
