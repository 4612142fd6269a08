package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

var (
	// ErrCorruptState indicates the state file exists but cannot be decoded or fails validation.
	ErrCorruptState = errors.New("corrupt state file")

	// ErrStoreWrite indicates the state file could not be written.
	ErrStoreWrite = errors.New("writing state file")

	// ErrStoreLocked indicates another process already owns the state file.
	ErrStoreLocked = errors.New("state file is locked by another process")

	// SkipSave is returned by an Update callback to signal that it made no
	// change. Update then returns nil without writing the file.
	SkipSave = errors.New("skip save")
)

// Path returns the standard location of the state file inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// LockPath returns the lock file guarding the state file at path.
func LockPath(path string) string {
	return path + ".lock"
}

// Load reads the aggregate at path.
// A missing file yields an empty aggregate; anything unreadable yields ErrCorruptState.
// Users listed as both authorized and banned stay banned.
func Load(path string) (*State, error) {
	st, _, err := load(path)
	return st, err
}

func load(path string) (*State, []int64, error) {
	st, reconciled, err := decodeFile(path)
	if err != nil {
		return nil, nil, err
	}

	if err := st.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, path, err)
	}

	return st, reconciled, nil
}

// decodeFile reads path and reconciles bans without checking the other
// invariants. It returns the users taken off the allow-list.
func decodeFile(path string) (*State, []int64, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path from operator config
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil, nil
		}
		return nil, nil, fmt.Errorf("%w: reading %s: %v", ErrCorruptState, path, err)
	}

	st := New()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, nil, fmt.Errorf("%w: parsing %s: %v", ErrCorruptState, path, err)
	}
	st.normalize()
	return st, st.reconcileBans(), nil
}

// Save writes the whole aggregate to path atomically.
func Save(path string, st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", ErrStoreWrite, err)
	}

	if err := writeFileAtomic(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	return nil
}

// Store is the single owner of the aggregate.
//
// Writers are serialized by mu and each Update persists before it publishes,
// so the published snapshot always matches the file. Readers take the
// snapshot without locking and must treat it as read-only.
type Store struct {
	mu         sync.Mutex
	path       string
	lock       *flock.Flock
	current    atomic.Pointer[State]
	reconciled []int64
}

// Open takes exclusive ownership of the state file at path and loads it.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	lock, err := tryLock(path)
	if err != nil {
		return nil, err
	}

	st, reconciled, err := load(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	s := &Store{path: path, lock: lock, reconciled: reconciled}
	s.current.Store(st)
	return s, nil
}

// Held reports whether another process owns the state file at path. It
// creates nothing: with no lock file there is no owner.
func Held(path string) (bool, error) {
	if _, err := os.Stat(LockPath(path)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking state lock: %w", err)
	}

	lock := flock.New(LockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("checking state lock: %w", err)
	}
	if !locked {
		return true, nil
	}
	return false, lock.Unlock()
}

func tryLock(path string) (*flock.Flock, error) {
	lock := flock.New(LockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking state file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrStoreLocked, path)
	}
	return lock, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Reconciled lists the users Open found both authorized and banned and
// took off the allow-list. The file is rewritten on the next Update.
func (s *Store) Reconciled() []int64 {
	return s.reconciled
}

// Snapshot returns the last persisted aggregate. Callers must not modify it.
func (s *Store) Snapshot() *State {
	return s.current.Load()
}

// Update runs fn against a private copy of the aggregate, saves the result
// and publishes it. If fn or the save fails, the published state is unchanged.
func (s *Store) Update(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, SkipSave) {
			return nil
		}
		return err
	}

	if err := Save(s.path, next); err != nil {
		return err
	}

	s.current.Store(next)
	return nil
}

// Close releases the file lock. The store must not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("unlocking state file: %w", err)
	}
	return nil
}
