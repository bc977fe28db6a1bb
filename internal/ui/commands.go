// Package ui provides the terminal interface for tally.
// This file contains tea.Cmd factories that wrap storage operations. These
// commands run I/O asynchronously to keep the Bubble Tea event loop
// responsive. Each command returns a message type defined in messages.go.
package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tally/internal/backup"
	"tally/internal/fsutil"
	"tally/internal/importer"
	"tally/internal/storage"
	"tally/internal/tally"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// =============================================================================
// Task Commands
// =============================================================================

// loadTasksCmd returns a command that loads the list from storage. The list
// and its revision are read together.
func loadTasksCmd(store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		_, warn := store.Load()
		tasks, rev := store.Snapshot()
		return tasksLoadedMsg{tasks: tasks, rev: rev, err: warn}
	}
}

// track runs op, which must commit exactly once when it succeeds, and
// returns the list from either side of that commit. When another change
// landed in between the pair would be wrong, so no Change is returned and
// op is left out of the history.
func track(store *storage.Store, op func() (string, error)) (string, *Change, error) {
	before, rev := store.Snapshot()
	desc, err := op()
	if err != nil {
		return "", nil, err
	}
	after, next := store.Snapshot()
	if next != rev+1 {
		return desc, nil, nil
	}
	return desc, NewChange(desc, before, after), nil
}

// changeCmd runs op and records it so the change can be undone as a whole.
func changeCmd(store *storage.Store, op func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		desc, change, err := track(store, op)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{desc: desc, change: change}
	}
}

// addTaskCmd returns a command that appends a task. A blank name gets the
// default "Task N".
func addTaskCmd(store *storage.Store, name string) tea.Cmd {
	return changeCmd(store, func() (string, error) {
		task, err := store.AddTask(name)
		if err != nil {
			return "", err
		}
		return "Added " + truncateText(task.Name, 30), nil
	})
}

// renameTaskCmd returns a command that renames a task.
func renameTaskCmd(store *storage.Store, id, name string) tea.Cmd {
	return changeCmd(store, func() (string, error) {
		if err := store.RenameTask(id, name); err != nil {
			return "", err
		}
		return "Renamed to " + truncateText(strings.TrimSpace(name), 30), nil
	})
}

// toggleArchiveCmd returns a command that flips a task's archived flag.
func toggleArchiveCmd(store *storage.Store, id, name string) tea.Cmd {
	return changeCmd(store, func() (string, error) {
		archived, err := store.ToggleArchive(id)
		if err != nil {
			return "", err
		}
		if archived {
			return "Archived " + truncateText(name, 30), nil
		}
		return "Unarchived " + truncateText(name, 30), nil
	})
}

// deleteTaskCmd returns a command that removes a task with its events.
func deleteTaskCmd(store *storage.Store, id string) tea.Cmd {
	return changeCmd(store, func() (string, error) {
		removed, err := store.DeleteTask(id)
		if err != nil {
			return "", err
		}
		return "Deleted " + truncateText(removed.Name, 30), nil
	})
}

// logQuantityCmd returns a command that records qty against a task, on
// dateKey when it is set.
func logQuantityCmd(store *storage.Store, id, name string, qty int, dateKey string) tea.Cmd {
	return changeCmd(store, func() (string, error) {
		if _, err := store.LogQuantity(id, qty, dateKey); err != nil {
			return "", err
		}
		desc := fmt.Sprintf("+%d %s", qty, truncateText(name, 30))
		if dateKey != "" {
			desc += " on " + dateKey
		}
		return desc, nil
	})
}

// undoLastCmd returns a command that drops a task's most recent event.
// An empty task is reported without error.
func undoLastCmd(store *storage.Store, id, name string) tea.Cmd {
	return func() tea.Msg {
		desc, change, err := track(store, func() (string, error) {
			ev, err := store.UndoLast(id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Removed %d from %s", ev.Qty, truncateText(name, 30)), nil
		})
		if errors.Is(err, tally.ErrNothingToUndo) {
			return taskChangedMsg{desc: "Nothing to undo for " + truncateText(name, 30)}
		}
		if err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{desc: desc, change: change}
	}
}

// resetAllCmd returns a command that empties the list. When backups is set
// a backup is taken first and a failed backup aborts the reset.
func resetAllCmd(store *storage.Store, backups *backup.Manager) tea.Cmd {
	return changeCmd(store, func() (string, error) {
		desc := "Reset all data"
		if backups != nil {
			name, err := backups.Create("before reset")
			if err != nil {
				return "", fmt.Errorf("backup before reset: %w", err)
			}
			desc += " (backup " + name + ")"
		}
		if err := store.ResetAll(); err != nil {
			return "", err
		}
		return desc, nil
	})
}

// =============================================================================
// Data Commands
// =============================================================================

// exportCmd writes the export payload into dir.
func exportCmd(store *storage.Store, dir string) tea.Cmd {
	return func() tea.Msg {
		data, err := store.ExportSnapshot()
		if err != nil {
			return exportedMsg{err: err}
		}
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportedMsg{err: fmt.Errorf("create export dir: %w", err)}
		}
		path := filepath.Join(dir, tally.ExportFilename(store.Now()))
		if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

// copyExportCmd puts the export payload on the system clipboard.
func copyExportCmd(store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		data, err := store.ExportSnapshot()
		if err != nil {
			return copiedMsg{err: err}
		}
		if err := writeClipboard(string(data)); err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{bytes: len(data)}
	}
}

// importCmd replaces the list with the contents of path. The list is left
// untouched when the file cannot be read or does not validate.
func importCmd(store *storage.Store, path string) tea.Cmd {
	return func() tea.Msg {
		path = expandPath(path)
		f, err := os.Open(path)
		if err != nil {
			return importedMsg{path: path, err: err}
		}
		defer f.Close()

		imp := importer.GetImporter(importer.FormatForPath(path), importer.Options{Now: store.Now})
		var result *importer.ImportResult
		_, change, err := track(store, func() (string, error) {
			var err error
			result, err = imp.Import(f, store)
			return "Imported " + filepath.Base(path), err
		})
		if err != nil {
			return importedMsg{path: path, err: err}
		}
		return importedMsg{path: path, result: result, change: change}
	}
}

// expandPath expands a leading ~ in paths typed into the import prompt.
func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// =============================================================================
// Undo/Redo Commands
// =============================================================================

func undoCmd(history *History) tea.Cmd {
	return func() tea.Msg {
		desc, err := history.Undo()
		return undoResultMsg{desc: desc, err: err}
	}
}

func redoCmd(history *History) tea.Cmd {
	return func() tea.Msg {
		desc, err := history.Redo()
		return redoResultMsg{desc: desc, err: err}
	}
}
