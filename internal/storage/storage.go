package storage

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"tally/internal/fsutil"
	"tally/internal/tally"
)

// Record keys. The names are kept from the original browser storage layout
// so exported data from either side lines up.
const (
	KeyTasks        = "taskCounter.tasks.v2"
	KeyLegacyEvents = "taskCounter.events.v1"
	KeyLegacyName   = "taskCounter.taskName"

	backupSuffix  = ".bak"
	corruptSuffix = ".corrupt."
)

const (
	migratedDefaultName = "Task A"
	fallbackName        = "Task"
)

// Store owns the task list and its persistence. All methods are safe for
// concurrent use; every change replaces the whole list.
type Store struct {
	mu      sync.Mutex
	backend Backend
	lock    *fsutil.DirLock
	dataDir string
	// lockable is set for on-disk stores; unlocked ones take the lock
	// for writes made while loading.
	lockable bool
	readErr  error

	tasks  []tally.Task
	loaded bool
	rev    uint64

	now   func() time.Time // injectable clock for deterministic tests
	newID func() string
}

// New wraps a backend. The list is read lazily on first access.
func New(backend Backend) *Store {
	return &Store{backend: backend, now: time.Now, newID: uuid.NewString}
}

// Options configure Open.
type Options struct {
	DataDir string
	Backend string
	// Lock takes the data-dir lock for the lifetime of the Store.
	Lock bool
}

// Open creates the configured backend under opts.DataDir.
func Open(opts Options) (*Store, error) {
	backend, err := OpenBackend(opts.Backend, opts.DataDir)
	if err != nil {
		return nil, err
	}

	s := New(backend)
	s.dataDir = opts.DataDir
	s.lockable = !strings.EqualFold(opts.Backend, BackendMemory)

	if opts.Lock && !strings.EqualFold(opts.Backend, BackendMemory) {
		lock, err := fsutil.LockDir(opts.DataDir)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		s.lock = lock
	}
	return s, nil
}

// Close releases the backend and the data-dir lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.backend.Close()
	if uerr := s.lock.Unlock(); err == nil {
		err = uerr
	}
	s.lock = nil
	return err
}

// GetDataDir returns the data directory the store was opened on, if any.
func (s *Store) GetDataDir() string {
	return s.dataDir
}

// SetNowFunc overrides the clock. Passing nil resets it to time.Now.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Now returns the current time according to the store clock.
func (s *Store) Now() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// SetIDFunc overrides the task id generator. Passing nil restores UUIDs.
func (s *Store) SetIDFunc(fn func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = uuid.NewString
	}
	s.newID = fn
}

// Load reads the list on first call and returns the current list after.
// The returned tasks are always usable; a non-nil error is a warning that
// describes a recovery that took place.
func (s *Store) Load() ([]tally.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	warn := s.ensureLoaded()
	return tally.CloneTasks(s.tasks), warn
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() []tally.Task {
	tasks, _ := s.Snapshot()
	return tasks
}

// Snapshot returns a copy of the current list with its revision.
func (s *Store) Snapshot() ([]tally.Task, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	return tally.CloneTasks(s.tasks), s.rev
}

// Revision increments every time the list is replaced.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	tasks, warn := s.readTasks()
	s.tasks = tasks
	s.loaded = true
	s.rev++
	return warn
}

func (s *Store) readTasks() ([]tally.Task, error) {
	raw, err := s.backend.Get(KeyTasks)
	switch {
	case err == nil:
		tasks, derr := tally.DecodeTasks(raw, KeyTasks)
		if derr == nil {
			return tasks, nil
		}
		return s.recoverCorrupt(raw, derr)

	case errors.Is(err, ErrNotFound):
		tasks, merr := s.migrateLegacy()
		if errors.Is(merr, ErrUnreadable) {
			return s.unreadable(merr)
		}
		if merr != nil {
			tasks = tally.DefaultTasks(fallbackName, s.newID())
		}
		werr := s.loadWrite(func() error { return s.writeLocked(tasks) })
		if werr != nil && merr == nil {
			merr = werr
		}
		if merr != nil {
			return tasks, fmt.Errorf("legacy data unusable, started with a default task: %w", merr)
		}
		return tasks, nil

	default:
		return s.unreadable(fmt.Errorf("%w: %w", ErrUnreadable, err))
	}
}

// unreadable serves a default list and blocks saves until the store is
// reopened, so the record that failed to read is never overwritten.
func (s *Store) unreadable(err error) ([]tally.Task, error) {
	s.readErr = err
	return tally.DefaultTasks(fallbackName, s.newID()), fmt.Errorf("%w (showing a default task, changes will not be saved)", err)
}

// loadWrite runs a write Load has to make for a migration or a recovery.
// A store opened without the data-dir lock takes it for the write. When
// another process holds it the write is skipped; that process persists
// its own copy.
func (s *Store) loadWrite(write func() error) error {
	if s.lock != nil || !s.lockable {
		return write()
	}
	lock, err := fsutil.LockDir(s.dataDir)
	if err != nil {
		return nil
	}
	defer lock.Unlock()
	return write()
}

// migrateLegacy builds the initial list from the pre-v2 records.
func (s *Store) migrateLegacy() ([]tally.Task, error) {
	raw, err := s.backend.Get(KeyLegacyEvents)
	if errors.Is(err, ErrNotFound) {
		return tally.DefaultTasks(migratedDefaultName, s.newID()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	isos, err := tally.DecodeLegacyEvents(raw, KeyLegacyEvents)
	if err != nil {
		return nil, err
	}
	if len(isos) == 0 {
		return tally.DefaultTasks(migratedDefaultName, s.newID()), nil
	}

	name := ""
	if rawName, err := s.backend.Get(KeyLegacyName); err == nil {
		name = string(rawName)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return tally.MigrateLegacy(isos, name, s.newID()), nil
}

func (s *Store) recoverCorrupt(raw []byte, cause error) ([]tally.Task, error) {
	corruptKey := KeyTasks + corruptSuffix + s.Now().Format("20060102-150405")

	if bak, err := s.backend.Get(KeyTasks + backupSuffix); err == nil && len(bytes.TrimSpace(bak)) > 0 {
		if tasks, err := tally.DecodeTasks(bak, KeyTasks+backupSuffix); err == nil {
			_ = s.loadWrite(func() error {
				_ = s.backend.Put(corruptKey, raw)
				return s.backend.Put(KeyTasks, bak)
			})
			return tasks, fmt.Errorf("%w (recovered from backup)", cause)
		}
	}

	tasks := tally.DefaultTasks(fallbackName, s.newID())
	_ = s.loadWrite(func() error {
		if err := s.backend.Put(corruptKey, raw); err != nil {
			return err
		}
		return s.putTasks(tasks)
	})
	return tasks, fmt.Errorf("%w (reset to a default task; original kept as %s)", cause, corruptKey)
}

// writeLocked keeps the previous record as a backup, then overwrites it.
func (s *Store) writeLocked(tasks []tally.Task) error {
	if prev, err := s.backend.Get(KeyTasks); err == nil {
		if _, derr := tally.DecodeTasks(prev, KeyTasks); derr == nil {
			_ = s.backend.Put(KeyTasks+backupSuffix, prev)
		}
	}
	return s.putTasks(tasks)
}

func (s *Store) putTasks(tasks []tally.Task) error {
	data, err := tally.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := s.backend.Put(KeyTasks, data); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// commitLocked validates, persists and only then swaps the list in.
func (s *Store) commitLocked(next []tally.Task) error {
	if s.readErr != nil {
		return s.readErr
	}
	if err := tally.ValidateTasks(next, KeyTasks); err != nil {
		return err
	}
	if err := s.writeLocked(next); err != nil {
		return err
	}
	s.tasks = next
	s.rev++
	return nil
}

// Save replaces the list with tasks and persists it.
func (s *Store) Save(tasks []tally.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	return s.commitLocked(tally.CloneTasks(tasks))
}

// ExportSnapshot renders the versioned export payload of the current list.
func (s *Store) ExportSnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	return tally.EncodeSnapshot(s.tasks, s.Now())
}

// ImportSnapshot replaces the whole list with the tasks in raw. On any
// error the current list is left untouched.
func (s *Store) ImportSnapshot(raw []byte) ([]tally.Task, error) {
	snap, err := tally.DecodeSnapshot(raw, "import")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	if err := s.commitLocked(snap.Tasks); err != nil {
		return nil, err
	}
	return tally.CloneTasks(s.tasks), nil
}

func checkName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > tally.MaxNameLen {
		return tally.ErrNameTooLong
	}
	return nil
}

func (s *Store) indexLocked(id string) (int, error) {
	i := tally.FindTask(s.tasks, id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", tally.ErrTaskNotFound, id)
	}
	return i, nil
}

// AddTask appends a new task. A blank name becomes "Task N".
func (s *Store) AddTask(name string) (tally.Task, error) {
	if err := checkName(name); err != nil {
		return tally.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()

	id := s.newID()
	if tally.FindTask(s.tasks, id) >= 0 {
		return tally.Task{}, fmt.Errorf("generated id %s already in use", id)
	}
	next := tally.AddTask(s.tasks, name, id)
	if err := s.commitLocked(next); err != nil {
		return tally.Task{}, err
	}
	return next[len(next)-1].Clone(), nil
}

// RenameTask changes a task's name. Blank names are rejected.
func (s *Store) RenameTask(id, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", tally.ErrInvalidInput)
	}
	if err := checkName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	if _, err := s.indexLocked(id); err != nil {
		return err
	}
	return s.commitLocked(tally.RenameTask(s.tasks, id, name))
}

// ToggleArchive flips the archived flag and reports the new value.
func (s *Store) ToggleArchive(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	i, err := s.indexLocked(id)
	if err != nil {
		return false, err
	}
	next := tally.ToggleArchive(s.tasks, id)
	if err := s.commitLocked(next); err != nil {
		return false, err
	}
	return next[i].Archived, nil
}

// DeleteTask removes a task with its events and returns what was removed.
func (s *Store) DeleteTask(id string) (tally.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	i, err := s.indexLocked(id)
	if err != nil {
		return tally.Task{}, err
	}
	removed := s.tasks[i].Clone()
	if err := s.commitLocked(tally.DeleteTask(s.tasks, id)); err != nil {
		return tally.Task{}, err
	}
	return removed, nil
}

// LogQuantity records qty against a task, at local noon of dateKey when
// given, otherwise now.
func (s *Store) LogQuantity(id string, qty int, dateKey string) (tally.Event, error) {
	if qty <= 0 {
		return tally.Event{}, tally.ErrInvalidQuantity
	}
	dateKey = strings.TrimSpace(dateKey)
	if dateKey != "" && !tally.ValidDateKey(dateKey) {
		return tally.Event{}, tally.ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	i, err := s.indexLocked(id)
	if err != nil {
		return tally.Event{}, err
	}
	next := tally.LogQuantity(s.tasks, id, qty, dateKey, s.Now())
	if err := s.commitLocked(next); err != nil {
		return tally.Event{}, err
	}
	events := next[i].Events
	return events[len(events)-1], nil
}

// UndoLast removes the most recently appended event of a task.
func (s *Store) UndoLast(id string) (tally.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	i, err := s.indexLocked(id)
	if err != nil {
		return tally.Event{}, err
	}
	events := s.tasks[i].Events
	if len(events) == 0 {
		return tally.Event{}, tally.ErrNothingToUndo
	}
	last := events[len(events)-1]
	if err := s.commitLocked(tally.UndoLast(s.tasks, id)); err != nil {
		return tally.Event{}, err
	}
	return last, nil
}

// ResetAll empties the list.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.ensureLoaded()
	return s.commitLocked(tally.ResetAll(s.tasks))
}
