// Package backup provides backup and restore functionality for tally.
// A backup is a directory holding one export snapshot plus a manifest, so
// it is independent of the storage backend in use.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"tally/internal/fsutil"
	"tally/internal/tally"
)

// Version constants for the backup format.
const (
	ManifestVersion = "2.0"
	ManifestFile    = "manifest.json"
	SnapshotFile    = "snapshot.json"
	BackupsDir      = "backups"

	nameLayout = "2006-01-02_150405"
)

// ErrNoBackups is returned by RestoreLatest when nothing has been saved.
var ErrNoBackups = errors.New("no backups available")

// Snapshotter is the part of the store a backup reads from and restores into.
type Snapshotter interface {
	ExportSnapshot() ([]byte, error)
	ImportSnapshot(raw []byte) ([]tally.Task, error)
}

// Manager handles backup and restore operations.
type Manager struct {
	backupDir  string // e.g. ~/.tally/backups
	store      Snapshotter
	appVersion string
	now        func() time.Time
}

// Manifest contains metadata about a backup.
type Manifest struct {
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	AppVersion string    `json:"app_version"`
	Reason     string    `json:"reason,omitempty"`
	Stats      Stats     `json:"stats"`
}

// Stats summarizes the list a backup holds.
type Stats struct {
	Tasks    int `json:"tasks"`
	Archived int `json:"archived"`
	Events   int `json:"events"`
}

// BackupInfo contains summary information about a backup.
type BackupInfo struct {
	Name      string    // Directory name (2025-12-15_143022_123)
	Path      string    // Full path to backup directory
	CreatedAt time.Time // When the backup was created
	Reason    string    // Why it was taken (manual, restore, reset, import)
	Stats     Stats
}

// NewManager creates a backup manager storing under dataDir/backups.
func NewManager(dataDir string, store Snapshotter, appVersion string) *Manager {
	return &Manager{
		backupDir:  filepath.Join(dataDir, BackupsDir),
		store:      store,
		appVersion: appVersion,
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock used for backup names.
func (m *Manager) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	m.now = now
}

// Dir returns the directory backups are kept in.
func (m *Manager) Dir() string { return m.backupDir }

// Create snapshots the store. reason is recorded in the manifest.
// Returns the backup name on success.
func (m *Manager) Create(reason string) (string, error) {
	data, err := m.store.ExportSnapshot()
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}
	snap, err := tally.DecodeSnapshot(data, SnapshotFile)
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := m.now()
	name, backupPath, err := m.reserve(now)
	if err != nil {
		return "", err
	}

	if err := fsutil.WriteFileAtomic(filepath.Join(backupPath, SnapshotFile), data, 0600); err != nil {
		_ = os.RemoveAll(backupPath)
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Reason:     reason,
		Stats:      statsFor(snap.Tasks),
	}
	if err := writeJSON(filepath.Join(backupPath, ManifestFile), manifest); err != nil {
		_ = os.RemoveAll(backupPath)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return name, nil
}

// reserve creates a fresh backup directory, stepping the millisecond
// suffix forward when two backups land in the same instant.
func (m *Manager) reserve(at time.Time) (string, string, error) {
	for i := 0; i < 1000; i++ {
		t := at.Add(time.Duration(i) * time.Millisecond)
		name := fmt.Sprintf("%s_%03d", t.Format(nameLayout), t.Nanosecond()/1e6)
		path := filepath.Join(m.backupDir, name)
		err := os.Mkdir(path, 0700)
		if err == nil {
			return name, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", fmt.Errorf("failed to create backup: %w", err)
		}
	}
	return "", "", fmt.Errorf("failed to create backup: no free name near %s", at.Format(nameLayout))
}

// List returns all available backups, sorted by creation time (newest first).
func (m *Manager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue // not a backup
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Restore replaces the store's list with the one in the named backup. A
// safety backup of the current list is taken first; its name is returned.
func (m *Manager) Restore(name string) (string, error) {
	if err := validateBackupName(name); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(m.backupDir, name, SnapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("backup not found: %s", name)
	}
	if err != nil {
		return "", fmt.Errorf("read backup %s: %w", name, err)
	}
	if _, err := tally.DecodeSnapshot(data, name); err != nil {
		return "", fmt.Errorf("backup %s is invalid: %w", name, err)
	}

	safetyName, err := m.Create("restore")
	if err != nil {
		return "", fmt.Errorf("failed to create safety backup: %w", err)
	}

	if _, err := m.store.ImportSnapshot(data); err != nil {
		return safetyName, fmt.Errorf("failed to restore %s (safety backup: %s): %w", name, safetyName, err)
	}
	return safetyName, nil
}

// RestoreLatest restores from the most recent backup.
func (m *Manager) RestoreLatest() (string, string, error) {
	backups, err := m.List()
	if err != nil {
		return "", "", err
	}
	if len(backups) == 0 {
		return "", "", ErrNoBackups
	}
	safety, err := m.Restore(backups[0].Name)
	return backups[0].Name, safety, err
}

// Delete removes a specific backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(backupPath)
}

// Prune removes old backups, keeping only the N most recent.
func (m *Manager) Prune(keepCount int) (int, error) {
	if keepCount < 0 {
		return 0, fmt.Errorf("keepCount must be non-negative")
	}

	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keepCount {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keepCount:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// GetBackup returns information about a specific backup.
func (m *Manager) GetBackup(name string) (*BackupInfo, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(m.backupDir, name)); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}
	return m.info(name)
}

func (m *Manager) info(name string) (*BackupInfo, error) {
	backupPath := filepath.Join(m.backupDir, name)

	var manifest Manifest
	if err := readJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		createdAt, parseErr := parseBackupName(name)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest = Manifest{CreatedAt: createdAt}
	}

	return &BackupInfo{
		Name:      name,
		Path:      backupPath,
		CreatedAt: manifest.CreatedAt,
		Reason:    manifest.Reason,
		Stats:     manifest.Stats,
	}, nil
}

func statsFor(tasks []tally.Task) Stats {
	stats := Stats{Tasks: len(tasks)}
	for _, t := range tasks {
		if t.Archived {
			stats.Archived++
		}
		stats.Events += len(t.Events)
	}
	return stats
}

func validateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseBackupName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// parseBackupName parses a backup directory name (2006-01-02_150405_XXX)
// into a timestamp.
func parseBackupName(name string) (time.Time, error) {
	if len(name) != len(nameLayout)+4 || name[len(nameLayout)] != '_' {
		return time.Time{}, fmt.Errorf("invalid backup format")
	}
	base, err := time.ParseInLocation(nameLayout, name[:len(nameLayout)], time.Local)
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.Atoi(name[len(nameLayout)+1:])
	if err != nil || ms < 0 || ms > 999 {
		return time.Time{}, fmt.Errorf("invalid milliseconds")
	}
	return base.Add(time.Duration(ms) * time.Millisecond), nil
}
