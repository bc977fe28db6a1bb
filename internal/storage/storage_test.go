package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tally/internal/fsutil"
	"tally/internal/tally"
)

var fixedNow = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

// createTestStorage returns a Store over an in-memory backend with a fixed
// clock and sequential ids.
func createTestStorage(t *testing.T) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	return newTestStore(t, backend), backend
}

func newTestStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	s := New(backend)
	s.SetNowFunc(func() time.Time { return fixedNow })
	n := 0
	s.SetIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
	return s
}

func mustPut(t *testing.T, b Backend, key, value string) {
	t.Helper()
	if err := b.Put(key, []byte(value)); err != nil {
		t.Fatalf("Put(%s) error = %v", key, err)
	}
}

// =============================================================================
// Load / migration
// =============================================================================

func TestLoadEmptyStorageCreatesTaskA(t *testing.T) {
	s, backend := createTestStorage(t)

	tasks, err := s.Load()
	if err != nil {
		t.Fatalf("Load() warning = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Task A" || len(tasks[0].Events) != 0 {
		t.Fatalf("Load() = %+v, want one empty Task A", tasks)
	}
	if tasks[0].Color != tally.Palette[0] {
		t.Errorf("color = %s, want %s", tasks[0].Color, tally.Palette[0])
	}
	if _, err := backend.Get(KeyTasks); err != nil {
		t.Errorf("default list was not persisted: %v", err)
	}
}

func TestLoadMigratesLegacyEvents(t *testing.T) {
	s, backend := createTestStorage(t)
	mustPut(t, backend, KeyLegacyEvents, `["2024-01-01T10:00:00.000Z","2024-01-02T10:00:00.000Z"]`)
	mustPut(t, backend, KeyLegacyName, "Pushups")

	tasks, err := s.Load()
	if err != nil {
		t.Fatalf("Load() warning = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
	task := tasks[0]
	if task.Name != "Pushups" || task.Archived {
		t.Errorf("task = %+v", task)
	}
	if len(task.Events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(task.Events))
	}
	for _, ev := range task.Events {
		if ev.Qty != 1 {
			t.Errorf("event qty = %d, want 1", ev.Qty)
		}
	}

	// Migration happens once: the current record now wins.
	again := newTestStore(t, backend)
	reloaded, _ := again.Load()
	if reloaded[0].ID != task.ID {
		t.Errorf("second load id = %s, want %s", reloaded[0].ID, task.ID)
	}
}

func TestLoadLegacyWithoutName(t *testing.T) {
	s, backend := createTestStorage(t)
	mustPut(t, backend, KeyLegacyEvents, `["2024-01-01T10:00:00.000Z"]`)

	tasks, _ := s.Load()
	if tasks[0].Name != "Task" {
		t.Errorf("name = %q, want Task", tasks[0].Name)
	}
}

func TestLoadEmptyLegacyList(t *testing.T) {
	s, backend := createTestStorage(t)
	mustPut(t, backend, KeyLegacyEvents, `[]`)
	mustPut(t, backend, KeyLegacyName, "Ignored")

	tasks, _ := s.Load()
	if len(tasks) != 1 || tasks[0].Name != "Task A" {
		t.Errorf("Load() = %+v, want Task A", tasks)
	}
}

func TestLoadCorruptLegacyFallsBack(t *testing.T) {
	s, backend := createTestStorage(t)
	mustPut(t, backend, KeyLegacyEvents, `{not json`)

	tasks, err := s.Load()
	if err == nil {
		t.Error("Load() should report a warning")
	}
	if len(tasks) != 1 || tasks[0].Name != "Task" || len(tasks[0].Events) != 0 {
		t.Errorf("Load() = %+v, want default Task", tasks)
	}
}

func TestLoadCorruptRecordFallsBack(t *testing.T) {
	s, backend := createTestStorage(t)
	mustPut(t, backend, KeyTasks, `[{"id": "x", "events": [`)

	tasks, err := s.Load()
	if err == nil {
		t.Fatal("Load() should report a warning")
	}
	if !errors.Is(err, tally.ErrParse) {
		t.Errorf("warning = %v, want parse error", err)
	}
	if len(tasks) != 1 || len(tasks[0].Events) != 0 {
		t.Fatalf("Load() = %+v, want one default task", tasks)
	}

	var kept bool
	for _, k := range backend.Keys() {
		if strings.HasPrefix(k, KeyTasks+".corrupt.") {
			kept = true
		}
	}
	if !kept {
		t.Errorf("corrupt record was not preserved, keys = %v", backend.Keys())
	}
}

func TestLoadInvalidRecordRecoversFromBackup(t *testing.T) {
	backend := NewMemoryBackend()
	first := newTestStore(t, backend)
	if _, err := first.AddTask("Reading"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	mustPut(t, backend, KeyTasks, `[{"id": "a", "events": [{"iso": "x", "qty": -1}]}]`)

	s := newTestStore(t, backend)
	tasks, err := s.Load()
	if err == nil || !strings.Contains(err.Error(), "recovered from backup") {
		t.Fatalf("warning = %v, want backup recovery", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Task A" {
		t.Errorf("recovered = %+v, want the pre-add list", tasks)
	}
}

// =============================================================================
// Mutations
// =============================================================================

func TestAddTaskPersists(t *testing.T) {
	s, backend := createTestStorage(t)

	task, err := s.AddTask("  Water  ")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.Name != "Water" || task.Color != tally.Palette[1] {
		t.Errorf("task = %+v", task)
	}

	reloaded, err := newTestStore(t, backend).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(reloaded) != 2 || reloaded[1].ID != task.ID {
		t.Errorf("reloaded = %+v", reloaded)
	}
}

func TestAddTaskNameTooLong(t *testing.T) {
	s, _ := createTestStorage(t)
	_, err := s.AddTask(strings.Repeat("x", tally.MaxNameLen+1))
	if !errors.Is(err, tally.ErrInvalidInput) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestMutationsOnUnknownTask(t *testing.T) {
	s, _ := createTestStorage(t)
	before := s.Revision()

	checks := map[string]error{
		"rename":  s.RenameTask("nope", "x"),
		"archive": func() error { _, err := s.ToggleArchive("nope"); return err }(),
		"delete":  func() error { _, err := s.DeleteTask("nope"); return err }(),
		"log":     func() error { _, err := s.LogQuantity("nope", 1, ""); return err }(),
		"undo":    func() error { _, err := s.UndoLast("nope"); return err }(),
	}
	for name, err := range checks {
		if !errors.Is(err, tally.ErrTaskNotFound) {
			t.Errorf("%s: error = %v, want task not found", name, err)
		}
	}
	if s.Revision() != before+1 {
		t.Errorf("revision moved on rejected mutations: %d -> %d", before, s.Revision())
	}
}

func TestLogQuantityAndUndo(t *testing.T) {
	s, _ := createTestStorage(t)
	tasks, _ := s.Load()
	id := tasks[0].ID

	if _, err := s.LogQuantity(id, 0, ""); !errors.Is(err, tally.ErrInvalidQuantity) {
		t.Errorf("qty 0 error = %v", err)
	}
	if _, err := s.LogQuantity(id, -5, ""); !errors.Is(err, tally.ErrInvalidQuantity) {
		t.Errorf("qty -5 error = %v", err)
	}
	if _, err := s.LogQuantity(id, 1, "2024/01/01"); !errors.Is(err, tally.ErrInvalidDate) {
		t.Errorf("bad date error = %v", err)
	}

	ev, err := s.LogQuantity(id, 3, "")
	if err != nil {
		t.Fatalf("LogQuantity() error = %v", err)
	}
	if ev.ISO != "2024-01-02T15:00:00.000Z" || ev.Qty != 3 {
		t.Errorf("event = %+v", ev)
	}

	undone, err := s.UndoLast(id)
	if err != nil {
		t.Fatalf("UndoLast() error = %v", err)
	}
	if undone != ev {
		t.Errorf("undone = %+v, want %+v", undone, ev)
	}
	if _, err := s.UndoLast(id); !errors.Is(err, tally.ErrNothingToUndo) {
		t.Errorf("second undo error = %v", err)
	}
}

func TestUndoAfterBackdatedLog(t *testing.T) {
	s, _ := createTestStorage(t)
	tasks, _ := s.Load()
	id := tasks[0].ID

	if _, err := s.LogQuantity(id, 1, ""); err != nil {
		t.Fatal(err)
	}
	backdated, err := s.LogQuantity(id, 4, "2023-12-25")
	if err != nil {
		t.Fatal(err)
	}

	undone, err := s.UndoLast(id)
	if err != nil {
		t.Fatal(err)
	}
	if undone != backdated {
		t.Errorf("undo removed %+v, want the backdated %+v", undone, backdated)
	}
}

func TestToggleArchiveAndDelete(t *testing.T) {
	s, _ := createTestStorage(t)
	task, _ := s.AddTask("Walk")

	archived, err := s.ToggleArchive(task.ID)
	if err != nil || !archived {
		t.Fatalf("ToggleArchive() = %v, %v", archived, err)
	}
	if _, err := s.LogQuantity(task.ID, 2, ""); err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteTask(task.ID)
	if err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if len(removed.Events) != 1 {
		t.Errorf("removed = %+v", removed)
	}
	if len(s.Tasks()) != 1 {
		t.Errorf("tasks after delete = %d, want 1", len(s.Tasks()))
	}
}

func TestResetAll(t *testing.T) {
	s, backend := createTestStorage(t)
	_, _ = s.AddTask("x")
	if err := s.ResetAll(); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	reloaded, _ := newTestStore(t, backend).Load()
	if len(reloaded) != 0 {
		t.Errorf("reloaded = %+v, want empty", reloaded)
	}
}

// =============================================================================
// Import / export
// =============================================================================

func TestExportImportRoundTrip(t *testing.T) {
	s, _ := createTestStorage(t)
	tasks, _ := s.Load()
	second, _ := s.AddTask("Second")
	_, _ = s.LogQuantity(tasks[0].ID, 2, "")
	_, _ = s.LogQuantity(second.ID, 5, "2023-11-30")
	_, _ = s.ToggleArchive(second.ID)
	want := s.Tasks()

	data, err := s.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}

	other, _ := createTestStorage(t)
	got, err := other.ImportSnapshot(data)
	if err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestImportFailureKeepsState(t *testing.T) {
	s, _ := createTestStorage(t)
	_, _ = s.AddTask("Keep me")
	before, rev := s.Snapshot()

	for _, raw := range []string{`{"tasks": `, `{"tasks": "nope"}`, `{"tasks": [{"id": 1}]}`} {
		_, err := s.ImportSnapshot([]byte(raw))
		if err == nil {
			t.Fatalf("ImportSnapshot(%s) should fail", raw)
		}
		if !errors.Is(err, tally.ErrParse) && !errors.Is(err, tally.ErrValidation) {
			t.Errorf("ImportSnapshot(%s) error kind = %v", raw, err)
		}
	}

	after, rev2 := s.Snapshot()
	if fmt.Sprint(before) != fmt.Sprint(after) || rev != rev2 {
		t.Error("failed import changed the store")
	}
}

// =============================================================================
// Backends
// =============================================================================

func TestBackendsBehaveAlike(t *testing.T) {
	dir := t.TempDir()
	file, err := NewFileBackend(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatal(err)
	}
	db, err := NewSQLiteBackend(filepath.Join(dir, "db", "tally.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for name, b := range map[string]Backend{"file": file, "sqlite": db, "memory": NewMemoryBackend()} {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Get("k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v", err)
			}
			mustPut(t, b, "k", "v1")
			mustPut(t, b, "k", "v2")
			got, err := b.Get("k")
			if err != nil || string(got) != "v2" {
				t.Errorf("Get() = %q, %v", got, err)
			}
			if err := b.Delete("k"); err != nil {
				t.Fatal(err)
			}
			if _, err := b.Get("k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(deleted) error = %v", err)
			}
			if err := b.Put("../escape", nil); err == nil {
				t.Error("Put should reject path-like keys")
			}
		})
	}
}

func TestOpenFileAndSQLitePersist(t *testing.T) {
	for _, kind := range []string{BackendFile, BackendSQLite} {
		t.Run(kind, func(t *testing.T) {
			dir := t.TempDir()
			s, err := Open(Options{DataDir: dir, Backend: kind, Lock: true})
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			task, err := s.AddTask("Persisted")
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Close(); err != nil {
				t.Fatal(err)
			}

			s2, err := Open(Options{DataDir: dir, Backend: kind, Lock: true})
			if err != nil {
				t.Fatalf("reopen error = %v", err)
			}
			defer s2.Close()
			tasks, _ := s2.Load()
			if tally.FindTask(tasks, task.ID) < 0 {
				t.Errorf("task %s missing after reopen", task.ID)
			}
		})
	}
}

func TestOpenHonorsLock(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{DataDir: dir, Lock: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := Open(Options{DataDir: dir, Lock: true}); err == nil {
		t.Error("second locked Open should fail")
	}
	ro, err := Open(Options{DataDir: dir})
	if err != nil {
		t.Fatalf("unlocked Open error = %v", err)
	}
	ro.Close()
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(Options{DataDir: t.TempDir(), Backend: "redis"}); err == nil {
		t.Error("Open should reject unknown backend")
	}
}

// deniedBackend fails reads of the listed keys the way a permissions
// problem would.
type deniedBackend struct {
	*MemoryBackend
	denied map[string]bool
}

func (b *deniedBackend) Get(key string) ([]byte, error) {
	if b.denied[key] {
		return nil, fmt.Errorf("open %s: %w", key, os.ErrPermission)
	}
	return b.MemoryBackend.Get(key)
}

func TestLoadUnreadableRecordBlocksSaves(t *testing.T) {
	mem := NewMemoryBackend()
	original := []byte(`[{"id":"keep","name":"Keep me","color":"#4f46e5","archived":false,"events":[]}]`)
	if err := mem.Put(KeyTasks, original); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, &deniedBackend{MemoryBackend: mem, denied: map[string]bool{KeyTasks: true}})

	tasks, warn := s.Load()
	if !errors.Is(warn, ErrUnreadable) || !errors.Is(warn, os.ErrPermission) {
		t.Fatalf("Load() warning = %v, want ErrUnreadable wrapping the read error", warn)
	}
	if len(tasks) != 1 || tasks[0].Name != fallbackName {
		t.Errorf("Load() = %+v, want one default task", tasks)
	}

	if _, err := s.AddTask("Walk"); !errors.Is(err, ErrUnreadable) {
		t.Errorf("AddTask() error = %v, want ErrUnreadable", err)
	}
	if err := s.Save(nil); !errors.Is(err, ErrUnreadable) {
		t.Errorf("Save() error = %v, want ErrUnreadable", err)
	}
	if got, _ := mem.Get(KeyTasks); string(got) != string(original) {
		t.Errorf("record was overwritten: %s", got)
	}
}

func TestLoadUnreadableLegacyWritesNothing(t *testing.T) {
	mem := NewMemoryBackend()
	s := newTestStore(t, &deniedBackend{MemoryBackend: mem, denied: map[string]bool{KeyLegacyEvents: true}})

	if _, warn := s.Load(); !errors.Is(warn, ErrUnreadable) {
		t.Fatalf("Load() warning = %v, want ErrUnreadable", warn)
	}
	if _, err := mem.Get(KeyTasks); !errors.Is(err, ErrNotFound) {
		t.Errorf("current record written over unreadable legacy data (err = %v)", err)
	}
}

func TestUnlockedLoadDefersToLockHolder(t *testing.T) {
	dir := t.TempDir()
	record := filepath.Join(dir, KeyTasks)

	holder, err := fsutil.LockDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	ro, err := Open(Options{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	tasks, _ := ro.Load()
	ro.Close()
	if len(tasks) != 1 || tasks[0].Name != migratedDefaultName {
		t.Errorf("Load() = %+v, want the default task", tasks)
	}
	if _, err := os.Stat(record); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unlocked Load wrote while the lock was held (stat err = %v)", err)
	}

	if err := holder.Unlock(); err != nil {
		t.Fatal(err)
	}
	ro, err = Open(Options{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()
	if _, err := ro.Load(); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if _, err := os.Stat(record); err != nil {
		t.Errorf("migration was not persisted once the lock was free: %v", err)
	}
	if ro.GetDataDir() != dir {
		t.Errorf("GetDataDir() = %q, want %q", ro.GetDataDir(), dir)
	}
}
