package backup

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/storage"
	"tally/internal/tally"
)

// createTestStore returns a store with two tasks, one archived, and three events.
func createTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s := storage.New(storage.NewMemoryBackend())
	s.SetNowFunc(func() time.Time { return time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC) })

	tasks, _ := s.Load()
	walk, err := s.AddTask("Walk")
	if err != nil {
		t.Fatalf("AddTask() error: %v", err)
	}
	for _, id := range []string{tasks[0].ID, tasks[0].ID, walk.ID} {
		if _, err := s.LogQuantity(id, 1, ""); err != nil {
			t.Fatalf("LogQuantity() error: %v", err)
		}
	}
	if _, err := s.ToggleArchive(walk.ID); err != nil {
		t.Fatalf("ToggleArchive() error: %v", err)
	}
	return s
}

func newTestManager(t *testing.T, store Snapshotter) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m := NewManager(dir, store, "1.2.0-test")
	clock := time.Date(2025, 12, 15, 14, 30, 22, 0, time.Local)
	m.SetNowFunc(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	return m, dir
}

func TestManager_Create(t *testing.T) {
	manager, dir := newTestManager(t, createTestStore(t))

	name, err := manager.Create("manual")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(name) != 21 {
		t.Errorf("Expected backup name length 21, got %d: %s", len(name), name)
	}

	backupPath := filepath.Join(dir, BackupsDir, name)
	if _, err := os.Stat(filepath.Join(backupPath, SnapshotFile)); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(backupPath, ManifestFile))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if manifest.Version != ManifestVersion || manifest.AppVersion != "1.2.0-test" || manifest.Reason != "manual" {
		t.Errorf("manifest = %+v", manifest)
	}
	if want := (Stats{Tasks: 2, Archived: 1, Events: 3}); manifest.Stats != want {
		t.Errorf("stats = %+v, want %+v", manifest.Stats, want)
	}
}

func TestManager_CreateSameInstant(t *testing.T) {
	manager, _ := newTestManager(t, createTestStore(t))
	fixed := time.Date(2025, 12, 15, 9, 0, 0, 0, time.Local)
	manager.SetNowFunc(func() time.Time { return fixed })

	a, err := manager.Create("")
	if err != nil {
		t.Fatal(err)
	}
	b, err := manager.Create("")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two backups share the name %s", a)
	}
}

func TestManager_List(t *testing.T) {
	manager, dir := newTestManager(t, createTestStore(t))

	empty, err := manager.List()
	if err != nil || len(empty) != 0 {
		t.Fatalf("List() on fresh dir = %v, %v", empty, err)
	}

	first, _ := manager.Create("manual")
	second, _ := manager.Create("manual")
	if err := os.MkdirAll(filepath.Join(dir, BackupsDir, "not-a-backup"), 0700); err != nil {
		t.Fatal(err)
	}

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("Expected 2 backups, got %d", len(backups))
	}
	if backups[0].Name != second || backups[1].Name != first {
		t.Errorf("List() order = %s, %s; want newest first", backups[0].Name, backups[1].Name)
	}
}

func TestManager_Restore(t *testing.T) {
	store := createTestStore(t)
	manager, _ := newTestManager(t, store)
	want := store.Tasks()

	name, err := manager.Create("manual")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.ResetAll(); err != nil {
		t.Fatal(err)
	}

	safety, err := manager.Restore(name)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if safety == "" || safety == name {
		t.Errorf("safety backup name = %q", safety)
	}

	got := store.Tasks()
	if len(got) != len(want) || got[0].ID != want[0].ID || len(got[0].Events) != len(want[0].Events) {
		t.Errorf("restored = %+v, want %+v", got, want)
	}

	info, err := manager.GetBackup(safety)
	if err != nil {
		t.Fatalf("GetBackup(safety) error: %v", err)
	}
	if info.Stats.Tasks != 0 || info.Reason != "restore" {
		t.Errorf("safety backup = %+v, want the emptied list", info)
	}
}

func TestManager_RestoreLatest(t *testing.T) {
	store := createTestStore(t)
	manager, _ := newTestManager(t, store)

	if _, _, err := manager.RestoreLatest(); !errors.Is(err, ErrNoBackups) {
		t.Errorf("RestoreLatest() on empty = %v, want ErrNoBackups", err)
	}

	_, _ = manager.Create("manual")
	if _, err := store.AddTask("Later"); err != nil {
		t.Fatal(err)
	}
	latest, _ := manager.Create("manual")

	restored, _, err := manager.RestoreLatest()
	if err != nil {
		t.Fatalf("RestoreLatest() error: %v", err)
	}
	if restored != latest {
		t.Errorf("restored %s, want %s", restored, latest)
	}
	if n := len(store.Tasks()); n != 3 {
		t.Errorf("tasks after restore = %d, want 3", n)
	}
}

func TestManager_RestoreRejectsInvalid(t *testing.T) {
	store := createTestStore(t)
	manager, dir := newTestManager(t, store)

	if _, err := manager.Restore("2025-01-01_000000_000"); err == nil {
		t.Error("Restore of missing backup should fail")
	}
	if _, err := manager.Restore("../../etc"); err == nil {
		t.Error("Restore should reject path names")
	}

	name, _ := manager.Create("manual")
	path := filepath.Join(dir, BackupsDir, name, SnapshotFile)
	if err := os.WriteFile(path, []byte(`{"tasks": 1}`), 0600); err != nil {
		t.Fatal(err)
	}
	before := store.Revision()
	if _, err := manager.Restore(name); !errors.Is(err, tally.ErrValidation) {
		t.Errorf("Restore(corrupt) error = %v, want validation error", err)
	}
	if store.Revision() != before {
		t.Error("corrupt restore changed the store")
	}
}

func TestManager_Delete(t *testing.T) {
	manager, _ := newTestManager(t, createTestStore(t))
	name, _ := manager.Create("manual")

	if err := manager.Delete(name); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := manager.Delete(name); err == nil {
		t.Error("second Delete() should fail")
	}
}

func TestManager_Prune(t *testing.T) {
	manager, _ := newTestManager(t, createTestStore(t))
	for i := 0; i < 5; i++ {
		if _, err := manager.Create("manual"); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	deleted, err := manager.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}
	backups, _ := manager.List()
	if len(backups) != 2 {
		t.Errorf("Expected 2 backups after prune, got %d", len(backups))
	}
	if _, err := manager.Prune(-1); err == nil {
		t.Error("Prune(-1) should fail")
	}
}

func TestParseBackupName(t *testing.T) {
	got, err := parseBackupName("2025-12-15_143022_250")
	if err != nil {
		t.Fatalf("parseBackupName() error: %v", err)
	}
	want := time.Date(2025, 12, 15, 14, 30, 22, 250_000_000, time.Local)
	if !got.Equal(want) {
		t.Errorf("parseBackupName() = %v, want %v", got, want)
	}
	for _, bad := range []string{"", "2025-12-15_143022", "2025-12-15_143022_xyz", "2025-12-15_143022-250"} {
		if _, err := parseBackupName(bad); err == nil {
			t.Errorf("parseBackupName(%q) should fail", bad)
		}
	}
}
