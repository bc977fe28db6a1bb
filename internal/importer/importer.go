// Package importer reads task histories from files and replaces the store's
// list with them. Every importer can preview what it would load first.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tally/internal/tally"
)

// Target is the part of the store an import writes to.
type Target interface {
	ImportSnapshot(raw []byte) ([]tally.Task, error)
	Save(tasks []tally.Task) error
}

// ImportResult contains statistics about an import operation.
type ImportResult struct {
	Tasks   int      // Tasks now in the store
	Events  int      // Events now in the store
	Skipped int      // Input entries that were dropped
	Errors  []string // Why entries were dropped
}

// PreviewTask summarizes one task an import would create.
type PreviewTask struct {
	Name     string
	Archived bool
	Events   int
	Total    int
	First    string // earliest event day, YYYY-MM-DD
	Last     string // latest event day
}

// Importer defines the interface for import implementations.
type Importer interface {
	// Import reads the input and replaces the target's whole list.
	Import(reader io.Reader, target Target) (*ImportResult, error)

	// Preview reads the input without importing.
	Preview(reader io.Reader) ([]PreviewTask, error)

	// Name returns the format name (e.g., "snapshot", "csv").
	Name() string
}

// Options tune importers that need more than the input itself.
type Options struct {
	// TaskName names the single task the "events" format produces.
	TaskName string
	// NewID overrides id generation (tests).
	NewID func() string
	// Now is the clock whose zone date-only csv rows are read in.
	// Defaults to the local zone.
	Now func() time.Time
}

func (o Options) id() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

// GetImporter returns the importer for format, or nil when unsupported.
func GetImporter(format string, opts Options) Importer {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "snapshot", "json":
		return &SnapshotImporter{}
	case "events", "legacy":
		return &EventsImporter{opts: opts}
	case "csv":
		return &CSVImporter{opts: opts}
	default:
		return nil
	}
}

// FormatForPath picks a format from the file extension: ".csv" files are
// csv, everything else is treated as a snapshot.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "snapshot"
}

// SupportedFormats returns the list of supported import formats.
func SupportedFormats() []string {
	return []string{"snapshot", "events", "csv"}
}

// preview summarizes tasks for display.
func preview(tasks []tally.Task) []PreviewTask {
	out := make([]PreviewTask, 0, len(tasks))
	for _, t := range tasks {
		p := PreviewTask{Name: t.Name, Archived: t.Archived, Events: len(t.Events), Total: t.Total()}
		for _, ev := range t.Events {
			at, ok := ev.Instant()
			if !ok {
				continue
			}
			day := tally.DateKey(at.Local())
			if p.First == "" || day < p.First {
				p.First = day
			}
			if day > p.Last {
				p.Last = day
			}
		}
		out = append(out, p)
	}
	return out
}

func resultFor(tasks []tally.Task) *ImportResult {
	r := &ImportResult{Tasks: len(tasks)}
	for _, t := range tasks {
		r.Events += len(t.Events)
	}
	return r
}

func readAll(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
