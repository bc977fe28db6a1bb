package tally

import (
	"fmt"
	"strings"
	"time"
)

// The mutators below never modify their input. Each returns a fresh list,
// and returns an unchanged copy when the request does not apply.

// DefaultTaskName is the name given to the n-th task when none is supplied.
func DefaultTaskName(n int) string {
	return fmt.Sprintf("Task %d", n+1)
}

// AddTask appends a task with the given id. A blank name becomes
// "Task N"; the color cycles through Palette by position.
func AddTask(tasks []Task, name, id string) []Task {
	out := CloneTasks(tasks)
	id = strings.TrimSpace(id)
	if id == "" || FindTask(tasks, id) >= 0 {
		return out
	}
	n := len(tasks)
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTaskName(n)
	}
	return append(out, Task{
		ID:     id,
		Name:   name,
		Color:  PaletteColor(n),
		Events: []Event{},
	})
}

// RenameTask replaces a task's name. Blank names are ignored.
func RenameTask(tasks []Task, id, name string) []Task {
	out := CloneTasks(tasks)
	name = strings.TrimSpace(name)
	if i := FindTask(out, id); i >= 0 && name != "" {
		out[i].Name = name
	}
	return out
}

// ToggleArchive flips a task between active and archived.
func ToggleArchive(tasks []Task, id string) []Task {
	out := CloneTasks(tasks)
	if i := FindTask(out, id); i >= 0 {
		out[i].Archived = !out[i].Archived
	}
	return out
}

// DeleteTask removes a task together with its events.
func DeleteTask(tasks []Task, id string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == id {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// EventInstant resolves when a log lands: local noon of dateKey when one is
// given, otherwise now.
func EventInstant(dateKey string, now time.Time) (time.Time, bool) {
	if strings.TrimSpace(dateKey) == "" {
		return now, true
	}
	return LocalNoon(dateKey, now.Location())
}

// LogQuantity appends qty to a task. Non-positive quantities, unknown ids
// and malformed dates leave the list as it was.
func LogQuantity(tasks []Task, id string, qty int, dateKey string, now time.Time) []Task {
	out := CloneTasks(tasks)
	if qty <= 0 {
		return out
	}
	i := FindTask(out, id)
	if i < 0 {
		return out
	}
	at, ok := EventInstant(dateKey, now)
	if !ok {
		return out
	}
	out[i].Events = append(out[i].Events, Event{ISO: FormatISO(at), Qty: qty})
	return out
}

// UndoLast drops the most recently appended event of a task, which is not
// necessarily the chronologically latest one.
func UndoLast(tasks []Task, id string) []Task {
	out := CloneTasks(tasks)
	if i := FindTask(out, id); i >= 0 && len(out[i].Events) > 0 {
		out[i].Events = out[i].Events[:len(out[i].Events)-1]
	}
	return out
}

// ResetAll empties the list.
func ResetAll([]Task) []Task {
	return []Task{}
}

// ResolveTask finds a task by exact id, unique id prefix, or
// case-insensitive name, in that order.
func ResolveTask(tasks []Task, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, ErrTaskNotFound
	}
	if i := FindTask(tasks, ref); i >= 0 {
		return i, nil
	}

	match := -1
	for i, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %q matches more than one task id", ErrInvalidInput, ref)
			}
			match = i
		}
	}
	if match >= 0 {
		return match, nil
	}

	for i, t := range tasks {
		if strings.EqualFold(t.Name, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: more than one task is named %q", ErrInvalidInput, ref)
			}
			match = i
		}
	}
	if match >= 0 {
		return match, nil
	}
	return -1, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
}
