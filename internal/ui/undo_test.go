package ui

import (
	"errors"
	"testing"

	"tally/internal/tally"
)

// recordingSaver remembers the last list written and can be told to fail.
type recordingSaver struct {
	saved []tally.Task
	err   error
}

func (s *recordingSaver) Save(tasks []tally.Task) error {
	if s.err != nil {
		return s.err
	}
	s.saved = tasks
	return nil
}

func named(names ...string) []tally.Task {
	var tasks []tally.Task
	for _, n := range names {
		tasks = tally.AddTask(tasks, n, n)
	}
	return tasks
}

func TestHistory_UndoRedo(t *testing.T) {
	saver := &recordingSaver{}
	h := NewHistory(saver)
	h.Record(NewChange("Added B", named("A"), named("A", "B")))

	desc, err := h.Undo()
	if err != nil || desc != "Added B" {
		t.Fatalf("Undo() = %q, %v", desc, err)
	}
	if len(saver.saved) != 1 {
		t.Errorf("undo saved %d tasks, want 1", len(saver.saved))
	}
	if h.CanUndo() || !h.CanRedo() {
		t.Error("change should move to the redo stack")
	}

	if desc, err = h.Redo(); err != nil || desc != "Added B" {
		t.Fatalf("Redo() = %q, %v", desc, err)
	}
	if len(saver.saved) != 2 {
		t.Errorf("redo saved %d tasks, want 2", len(saver.saved))
	}
	if !h.CanUndo() || h.CanRedo() {
		t.Error("redo should put the change back on the undo stack")
	}
}

func TestHistory_RecordClearsRedo(t *testing.T) {
	h := NewHistory(&recordingSaver{})
	h.Record(NewChange("first", nil, named("A")))
	_, _ = h.Undo()
	h.Record(NewChange("second", nil, named("B")))

	if h.CanRedo() {
		t.Error("a new change must clear the redo stack")
	}
}

func TestHistory_IsBounded(t *testing.T) {
	h := NewHistory(&recordingSaver{})
	for i := 0; i < maxHistorySize+10; i++ {
		h.Record(NewChange("step", nil, nil))
	}
	undone := 0
	for h.CanUndo() {
		if _, err := h.Undo(); err != nil {
			t.Fatal(err)
		}
		undone++
	}
	if undone != maxHistorySize {
		t.Errorf("undone %d changes, want %d", undone, maxHistorySize)
	}
}

func TestHistory_FailedUndoStaysOnStack(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	h := NewHistory(saver)
	h.Record(NewChange("broken", nil, named("A")))

	if _, err := h.Undo(); err == nil {
		t.Fatal("expected error")
	}
	if !h.CanUndo() || h.CanRedo() {
		t.Error("failed undo should be retryable")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(&recordingSaver{})
	if desc, err := h.Undo(); desc != "" || err != nil {
		t.Errorf("Undo() on empty = %q, %v", desc, err)
	}
	if desc, err := h.Redo(); desc != "" || err != nil {
		t.Errorf("Redo() on empty = %q, %v", desc, err)
	}
	h.Record(nil)
	if h.CanUndo() {
		t.Error("nil change should not be recorded")
	}
}

func TestHistory_RestoresDeletedTask(t *testing.T) {
	store := createTestStore(t)
	id := mustAdd(t, store, "Pushups")
	if _, err := store.LogQuantity(id, 5, ""); err != nil {
		t.Fatal(err)
	}

	before := store.Tasks()
	if _, err := store.DeleteTask(id); err != nil {
		t.Fatal(err)
	}
	h := NewHistory(store)
	h.Record(NewChange("Deleted Pushups", before, store.Tasks()))

	if _, err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].ID != id || tasks[0].Total() != 5 {
		t.Fatalf("after undo got %+v", tasks)
	}

	if _, err := h.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if n := len(store.Tasks()); n != 0 {
		t.Errorf("after redo got %d tasks, want 0", n)
	}
}

func TestNewChange_IsolatedFromCallerSlices(t *testing.T) {
	before := named("A")
	c := NewChange("x", before, nil)

	before[0].Name = "mutated"
	if got := c.Before[0].Name; got != "A" {
		t.Errorf("recorded name = %q, want A", got)
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer name", 8, "much l.."},
		{"anything", 0, ""},
	}
	for _, tc := range tests {
		if got := truncateText(tc.in, tc.max); got != tc.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
