// Package tally holds the tracker's data model together with the pure
// mutators and aggregations computed over a task list.
package tally

import (
	"strings"
	"time"
)

// Palette is the fixed set of colors assigned to tasks in creation order.
var Palette = []string{
	"#4f46e5",
	"#16a34a",
	"#dc2626",
	"#0891b2",
	"#a855f7",
	"#f59e0b",
	"#0ea5e9",
	"#d946ef",
	"#10b981",
	"#f97316",
}

// Task is a named counter with an ordered history of logged quantities.
type Task struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Archived bool    `json:"archived"`
	Color    string  `json:"color"`
	Events   []Event `json:"events"`
}

// Event is one logged quantity. ISO is kept as text so that records written
// elsewhere round-trip byte for byte.
type Event struct {
	ISO string `json:"iso"`
	Qty int    `json:"qty"`
}

// Instant parses the event timestamp.
func (e Event) Instant() (time.Time, bool) {
	return ParseInstant(e.ISO)
}

// Total sums every event quantity of the task.
func (t Task) Total() int {
	n := 0
	for _, ev := range t.Events {
		n += ev.Qty
	}
	return n
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.Events != nil {
		out.Events = make([]Event, len(t.Events))
		copy(out.Events, t.Events)
	}
	return out
}

// CloneTasks deep-copies a task list. A nil list becomes an empty one.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// PaletteColor returns the color for the n-th created task.
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

// PaletteIndex reports where color sits in the palette, or -1.
func PaletteIndex(color string) int {
	for i, c := range Palette {
		if strings.EqualFold(c, color) {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with the given id, or -1.
func FindTask(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
