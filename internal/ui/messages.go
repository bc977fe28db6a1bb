// Package ui provides the terminal interface for tally.
// This file defines message types for async I/O operations using the Bubble Tea
// command pattern. All storage operations return these messages to keep the
// event loop non-blocking.
package ui

import (
	"tally/internal/importer"
	"tally/internal/tally"
)

// =============================================================================
// Undo/Redo Messages
// =============================================================================

// undoResultMsg is sent when an undo operation completes.
type undoResultMsg struct {
	desc string
	err  error
}

// redoResultMsg is sent when a redo operation completes.
type redoResultMsg struct {
	desc string
	err  error
}

// =============================================================================
// Task Messages
// =============================================================================

// tasksLoadedMsg carries the store's list and its revision.
type tasksLoadedMsg struct {
	tasks []tally.Task
	rev   uint64
	err   error // recovery warning; tasks are still usable
}

// taskChangedMsg is sent after any mutation of the list. change is nil when
// the mutation failed or had nothing to record.
type taskChangedMsg struct {
	desc   string
	change *Change
	err    error
}

// =============================================================================
// Data Messages
// =============================================================================

// exportedMsg is sent when an export file has been written.
type exportedMsg struct {
	path string
	err  error
}

// copiedMsg is sent when the export payload has been put on the clipboard.
type copiedMsg struct {
	bytes int
	err   error
}

// importedMsg is sent when an import attempt finishes.
type importedMsg struct {
	path   string
	result *importer.ImportResult
	change *Change
	err    error
}
