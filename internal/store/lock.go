package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"moviely/internal/services"
)

const lockRetryDelay = 50 * time.Millisecond

// ProjectLock is an exclusive advisory lock serialising writers to one project.
type ProjectLock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used for id inside dir.
func LockPath(dir, id string) string {
	return filepath.Join(dir, id+".lock")
}

// Lock blocks until the writer lock for id is held or ctx is done.
func Lock(ctx context.Context, dir, id string) (*ProjectLock, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageError("create lock directory", err)
	}
	path := LockPath(dir, id)
	fl := flock.New(path)
	ok, err := fl.TryLockContext(contextOrBackground(ctx), lockRetryDelay)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "store", "lock", fmt.Sprintf("acquire lock for %q", id), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrStorage, "store", "lock", fmt.Sprintf("project %q is locked by another writer", id), nil)
	}
	return &ProjectLock{path: path, lock: fl}, nil
}

// TryLock acquires the writer lock for id without waiting.
func TryLock(dir, id string) (*ProjectLock, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageError("create lock directory", err)
	}
	path := LockPath(dir, id)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "store", "lock", fmt.Sprintf("acquire lock for %q", id), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrStorage, "store", "lock", fmt.Sprintf("project %q is locked by another writer", id), nil)
	}
	return &ProjectLock{path: path, lock: fl}, nil
}

// Path returns the lock file path.
func (l *ProjectLock) Path() string { return l.path }

// Unlock releases the lock. It is safe to call more than once.
func (l *ProjectLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
