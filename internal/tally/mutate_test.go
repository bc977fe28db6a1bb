package tally

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utcNoonJan2 = time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)

func sampleTasks() []Task {
	tasks := AddTask(nil, "Pushups", "a")
	tasks = AddTask(tasks, "", "b")
	tasks = LogQuantity(tasks, "a", 3, "", utcNoonJan2)
	tasks = LogQuantity(tasks, "b", 2, "2024-01-01", utcNoonJan2)
	return tasks
}

func TestAddTaskDefaultsAndPalette(t *testing.T) {
	var tasks []Task
	for i := 0; i < len(Palette)+2; i++ {
		tasks = AddTask(tasks, "  ", string(rune('a'+i)))
	}

	require.Len(t, tasks, len(Palette)+2)
	assert.Equal(t, "Task 1", tasks[0].Name)
	assert.Equal(t, "Task 12", tasks[11].Name)
	assert.Equal(t, Palette[0], tasks[0].Color)
	assert.Equal(t, Palette[1], tasks[11].Color)
	assert.False(t, tasks[3].Archived)
	assert.Empty(t, tasks[3].Events)
}

func TestAddTaskRejectsDuplicateID(t *testing.T) {
	tasks := AddTask(nil, "one", "x")
	tasks = AddTask(tasks, "two", "x")
	require.Len(t, tasks, 1)
	assert.Equal(t, "one", tasks[0].Name)
}

func TestMutatorsDoNotTouchInput(t *testing.T) {
	orig := sampleTasks()
	snapshot := CloneTasks(orig)

	_ = RenameTask(orig, "a", "Situps")
	_ = ToggleArchive(orig, "a")
	_ = DeleteTask(orig, "a")
	_ = LogQuantity(orig, "a", 4, "", utcNoonJan2)
	_ = UndoLast(orig, "a")
	_ = ResetAll(orig)

	assert.Equal(t, snapshot, orig)
}

func TestRenameTask(t *testing.T) {
	tasks := RenameTask(sampleTasks(), "a", "  Situps ")
	assert.Equal(t, "Situps", tasks[0].Name)

	same := RenameTask(tasks, "a", "   ")
	assert.Equal(t, "Situps", same[0].Name)

	unknown := RenameTask(tasks, "zzz", "x")
	assert.Equal(t, tasks, unknown)
}

func TestToggleArchiveFlipsBothWays(t *testing.T) {
	tasks := ToggleArchive(sampleTasks(), "b")
	assert.True(t, tasks[1].Archived)
	tasks = ToggleArchive(tasks, "b")
	assert.False(t, tasks[1].Archived)
}

func TestDeleteTaskRemovesEvents(t *testing.T) {
	tasks := DeleteTask(sampleTasks(), "a")
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].ID)
	assert.Equal(t, 2, ComputeTotals(tasks, utcNoonJan2).Total)

	assert.Len(t, DeleteTask(tasks, "missing"), 1)
}

func TestLogQuantityRejectsNonPositive(t *testing.T) {
	tasks := sampleTasks()
	assert.Equal(t, tasks, LogQuantity(tasks, "a", 0, "", utcNoonJan2))
	assert.Equal(t, tasks, LogQuantity(tasks, "a", -5, "", utcNoonJan2))
	assert.Equal(t, tasks, LogQuantity(tasks, "nope", 1, "", utcNoonJan2))
	assert.Equal(t, tasks, LogQuantity(tasks, "a", 1, "01/02/2024", utcNoonJan2))
}

func TestLogQuantityInstants(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2024, 3, 10, 23, 45, 12, 345_000_000, loc)

	tasks := LogQuantity(AddTask(nil, "x", "x"), "x", 2, "", now)
	assert.Equal(t, "2024-03-11T04:45:12.345Z", tasks[0].Events[0].ISO)

	tasks = LogQuantity(tasks, "x", 1, "2024-03-01", now)
	at, ok := tasks[0].Events[1].Instant()
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", DayKeyIn(at, loc))
	assert.Equal(t, 12, at.In(loc).Hour())
}

func TestUndoLastInvertsLog(t *testing.T) {
	tasks := sampleTasks()
	for _, qty := range []int{1, 7, 250} {
		after := UndoLast(LogQuantity(tasks, "a", qty, "", utcNoonJan2), "a")
		assert.Equal(t, tasks[0].Events, after[0].Events)
	}
}

func TestUndoLastRemovesAppendedNotLatest(t *testing.T) {
	tasks := AddTask(nil, "x", "x")
	tasks = LogQuantity(tasks, "x", 1, "", utcNoonJan2)
	tasks = LogQuantity(tasks, "x", 5, "2023-12-01", utcNoonJan2)

	tasks = UndoLast(tasks, "x")
	require.Len(t, tasks[0].Events, 1)
	assert.Equal(t, 1, tasks[0].Events[0].Qty)
}

func TestUndoLastEmptyIsNoop(t *testing.T) {
	tasks := AddTask(nil, "x", "x")
	assert.Equal(t, tasks, UndoLast(tasks, "x"))
}

func TestCloneTasksKeepsEmptyEvents(t *testing.T) {
	tasks := CloneTasks([]Task{{ID: "x", Name: "x", Events: []Event{}}, {ID: "y", Name: "y"}})
	assert.NotNil(t, tasks[0].Events)
	assert.Empty(t, tasks[0].Events)
	assert.Nil(t, tasks[1].Events)

	renamed := RenameTask(AddTask(nil, "x", "x"), "x", "z")
	assert.Equal(t, []Event{}, renamed[0].Events)
}

func TestResetAll(t *testing.T) {
	assert.Empty(t, ResetAll(sampleTasks()))
	assert.NotNil(t, ResetAll(nil))
}

func TestResolveTask(t *testing.T) {
	tasks := AddTask(nil, "Pushups", "abc-123")
	tasks = AddTask(tasks, "Reading", "abd-456")

	i, err := ResolveTask(tasks, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i, err = ResolveTask(tasks, "abd")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	i, err = ResolveTask(tasks, "pushups")
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = ResolveTask(tasks, "ab")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = ResolveTask(tasks, "walk")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
