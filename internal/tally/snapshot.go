package tally

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SnapshotVersion is written into every export.
const SnapshotVersion = 3

// Snapshot is the export/import envelope.
type Snapshot struct {
	Version    int    `json:"version"`
	ExportedAt string `json:"exportedAt"`
	Tasks      []Task `json:"tasks"`
}

// ExportFilename names an export written at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("task-counter-export-%d.json", now.UnixMilli())
}

// EncodeSnapshot renders tasks as an indented, versioned export payload.
func EncodeSnapshot(tasks []Task, now time.Time) ([]byte, error) {
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: FormatISO(now),
		Tasks:      normalizeNil(tasks),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses an export payload and validates its task list.
func DecodeSnapshot(raw []byte, source string) (*Snapshot, error) {
	if !json.Valid(raw) {
		return nil, &ParseError{Source: source, Err: syntaxError(raw)}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, invalidf(source, "", "payload must be an object")
	}
	tasksRaw, ok := top["tasks"]
	if !ok {
		return nil, invalidf(source, "tasks", "missing")
	}
	tasks, err := decodeTasks(tasksRaw, source)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Tasks: tasks}
	if v, ok := top["version"]; ok {
		_ = json.Unmarshal(v, &snap.Version)
	}
	if v, ok := top["exportedAt"]; ok {
		_ = json.Unmarshal(v, &snap.ExportedAt)
	}
	return snap, nil
}

// EncodeTasks renders the durable record: a bare task list.
func EncodeTasks(tasks []Task) ([]byte, error) {
	data, err := json.MarshalIndent(normalizeNil(tasks), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize tasks: %w", err)
	}
	return data, nil
}

// DecodeTasks parses and validates a durable task list record.
func DecodeTasks(raw []byte, source string) ([]Task, error) {
	if !json.Valid(raw) {
		return nil, &ParseError{Source: source, Err: syntaxError(raw)}
	}
	return decodeTasks(raw, source)
}

// DecodeLegacyEvents parses the legacy flat list of timestamps.
func DecodeLegacyEvents(raw []byte, source string) ([]string, error) {
	if !json.Valid(raw) {
		return nil, &ParseError{Source: source, Err: syntaxError(raw)}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, invalidf(source, "", "expected a list of timestamps")
	}
	return list, nil
}

// MigrateLegacy turns a legacy timestamp list into a single task with one
// quantity-1 event per timestamp.
func MigrateLegacy(isos []string, name, id string) []Task {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Task"
	}
	events := make([]Event, 0, len(isos))
	for _, iso := range isos {
		events = append(events, Event{ISO: iso, Qty: 1})
	}
	return []Task{{ID: id, Name: name, Color: Palette[0], Events: events}}
}

// DefaultTasks is the single empty task used when nothing else is usable.
func DefaultTasks(name, id string) []Task {
	return []Task{{ID: id, Name: name, Color: Palette[0], Events: []Event{}}}
}

// ValidateTasks checks the invariants a task list must hold before it is
// accepted.
func ValidateTasks(tasks []Task, source string) error {
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if strings.TrimSpace(t.ID) == "" {
			return invalidf(source, field+".id", "required")
		}
		if _, dup := seen[t.ID]; dup {
			return invalidf(source, field+".id", "duplicate id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
		for j, ev := range t.Events {
			if ev.Qty <= 0 {
				return invalidf(source, fmt.Sprintf("%s.events[%d].qty", field, j), "must be positive, got %d", ev.Qty)
			}
		}
	}
	return nil
}

type rawTask struct {
	ID       *string          `json:"id"`
	Name     *string          `json:"name"`
	Archived *bool            `json:"archived"`
	Color    *string          `json:"color"`
	Events   *json.RawMessage `json:"events"`
}

type rawEvent struct {
	ISO *string          `json:"iso"`
	Qty *json.RawMessage `json:"qty"`
}

func decodeTasks(raw json.RawMessage, source string) ([]Task, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, invalidf(source, "tasks", "must be a list")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, invalidf(source, "tasks", "must be a list")
	}

	tasks := make([]Task, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("tasks[%d]", i)
		var rt rawTask
		if err := json.Unmarshal(item, &rt); err != nil {
			return nil, invalidf(source, field, "%s", describeUnmarshal(err))
		}
		if rt.ID == nil {
			return nil, invalidf(source, field+".id", "required")
		}

		t := Task{ID: *rt.ID, Events: []Event{}}
		if rt.Name != nil {
			t.Name = *rt.Name
		}
		if strings.TrimSpace(t.Name) == "" {
			t.Name = DefaultTaskName(i)
		}
		if rt.Archived != nil {
			t.Archived = *rt.Archived
		}
		if rt.Color != nil && *rt.Color != "" {
			t.Color = *rt.Color
		} else {
			t.Color = PaletteColor(i)
		}

		if rt.Events != nil && !bytes.Equal(bytes.TrimSpace(*rt.Events), []byte("null")) {
			events, err := decodeEvents(*rt.Events, source, field)
			if err != nil {
				return nil, err
			}
			t.Events = events
		}
		tasks = append(tasks, t)
	}

	if err := ValidateTasks(tasks, source); err != nil {
		return nil, err
	}
	return tasks, nil
}

func decodeEvents(raw json.RawMessage, source, field string) ([]Event, error) {
	var items []rawEvent
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalidf(source, field+".events", "must be a list of {iso, qty}")
	}
	events := make([]Event, 0, len(items))
	for j, re := range items {
		ef := fmt.Sprintf("%s.events[%d]", field, j)
		if re.ISO == nil {
			return nil, invalidf(source, ef+".iso", "required")
		}
		if re.Qty == nil {
			return nil, invalidf(source, ef+".qty", "required")
		}
		qty, err := strconv.Atoi(string(bytes.TrimSpace(*re.Qty)))
		if err != nil {
			return nil, invalidf(source, ef+".qty", "must be a whole number, got %s", string(*re.Qty))
		}
		events = append(events, Event{ISO: *re.ISO, Qty: qty})
	}
	return events, nil
}

func describeUnmarshal(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			return fmt.Sprintf("%s must not be %s", typeErr.Field, typeErr.Value)
		}
		return fmt.Sprintf("must be an object, got %s", typeErr.Value)
	}
	return err.Error()
}

func syntaxError(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty input")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return errors.New("malformed JSON")
}

func normalizeNil(tasks []Task) []Task {
	if tasks == nil {
		return []Task{}
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t
		if out[i].Events == nil {
			out[i].Events = []Event{}
		}
	}
	return out
}
