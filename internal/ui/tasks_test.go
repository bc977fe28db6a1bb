package ui

import (
	"strings"
	"testing"

	"tally/internal/tally"
)

func TestParseLogInput(t *testing.T) {
	tests := []struct {
		in      string
		qty     int
		dateKey string
		ok      bool
	}{
		{"", 1, "", true},
		{"5", 5, "", true},
		{"  12  ", 12, "", true},
		{"2 2024-02-29", 2, "2024-02-29", true},
		{"0", 0, "", false},
		{"-1", 0, "", false},
		{"1.5", 0, "", false},
		{"ten", 0, "", false},
		{"1 2023-02-29", 0, "", false},
		{"1 2024-01-01 extra", 0, "", false},
	}
	for _, tc := range tests {
		qty, dateKey, ok := parseLogInput(tc.in)
		if ok != tc.ok || (ok && (qty != tc.qty || dateKey != tc.dateKey)) {
			t.Errorf("parseLogInput(%q) = %d, %q, %v; want %d, %q, %v",
				tc.in, qty, dateKey, ok, tc.qty, tc.dateKey, tc.ok)
		}
	}
}

func testPane(t *testing.T) *TaskPane {
	t.Helper()
	setupTest(t)
	pane := NewTaskPane(createTestStore(t), createTestStyles())
	pane.SetSize(50, 20)

	tasks := tally.AddTask(nil, "Pushups", "a")
	tasks = tally.AddTask(tasks, "A really long task name that will not fit", "b")
	tasks = tally.AddTask(tasks, "Retired", "c")
	tasks = tally.ToggleArchive(tasks, "c")
	tasks = tally.LogQuantity(tasks, "a", 3, "", testNow)
	pane.SetTasks(tasks, map[string]int{"a": 3})
	return pane
}

func TestTaskPaneView_Rows(t *testing.T) {
	view := testPane(t).View()

	if !strings.Contains(view, "Pushups") || !strings.Contains(view, "3/3") {
		t.Error("row should show name and today/total")
	}
	if !strings.Contains(view, "..") {
		t.Error("long names should be truncated")
	}
	if !strings.Contains(view, "Retired (archived)") {
		t.Error("archived tasks stay listed with a marker")
	}
	if !strings.Contains(view, "3 tasks, 1 archived") {
		t.Error("footer should count tasks")
	}
}

func TestTaskPaneView_Empty(t *testing.T) {
	setupTest(t)
	pane := NewTaskPane(createTestStore(t), createTestStyles())
	pane.SetSize(50, 20)
	if !strings.Contains(pane.View(), "No tasks yet") {
		t.Error("empty pane should explain how to add a task")
	}
}

func TestTaskPane_Navigation(t *testing.T) {
	pane := testPane(t)

	pane.Update(keyMsg("j"))
	pane.Update(keyMsg("j"))
	pane.Update(keyMsg("j"))
	if pane.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", pane.cursor)
	}
	pane.Update(keyMsg("g"))
	if pane.cursor != 0 {
		t.Errorf("cursor = %d after top", pane.cursor)
	}
	pane.Update(keyMsg("G"))
	if task, _ := pane.Selected(); task.ID != "c" {
		t.Errorf("selected %q after bottom", task.ID)
	}

	pane.SetTasks(nil, nil)
	if _, ok := pane.Selected(); ok {
		t.Error("nothing is selected in an empty list")
	}
}

func TestTaskPane_UnfocusedIgnoresKeys(t *testing.T) {
	pane := testPane(t)
	pane.SetFocused(false)
	if cmd := pane.Update(keyMsg("+")); cmd != nil {
		t.Error("unfocused pane should not act on keys")
	}
}

func TestTaskPane_CancelInput(t *testing.T) {
	pane := testPane(t)
	pane.Update(keyMsg("r"))
	if !pane.IsEditing() || pane.input.Value() != "Pushups" {
		t.Fatalf("rename should prefill the name, got %q", pane.input.Value())
	}
	if cmd := pane.Update(keyMsg("esc")); cmd != nil || pane.IsEditing() {
		t.Error("esc should close the input without a command")
	}
}
