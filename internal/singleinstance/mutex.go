// Package singleinstance provides a cross-process mutex that prevents
// two runs of the tool from contending for the GPU at once. The named OS
// mutex primitive itself (and the filesystem walk that drives per-file
// invocations) is an out-of-scope external collaborator; this package
// only needs to expose its acquire/release interface, backed here by an
// exclusive advisory flock(2) file lock, which requires no cgo. flock is
// only available on Unix-like systems; the package does not build on
// Windows.
package singleinstance

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Name is the well-known lock identity shared by every instance of the
// tool, matching the original named-mutex identity.
const Name = "anime4kconvert"

// Mutex is a held process-wide lock. Release it with Unlock.
type Mutex struct {
	file *os.File
}

// Acquire blocks indefinitely until the named lock is obtained. lockDir
// is the directory the lock file is created in (it must be writable and
// shared by every instance of the tool that should contend for the same
// lock, e.g. a well-known temp directory).
func Acquire(lockDir string) (*Mutex, error) {
	path := filepath.Join(lockDir, Name+".lock")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("singleinstance: failed to open lock file: %w", err)
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		file.Close()
		return nil, fmt.Errorf("singleinstance: failed to acquire lock: %w", err)
	}
	return &Mutex{file: file}, nil
}

// Unlock releases the lock and closes the underlying file.
func (m *Mutex) Unlock() error {
	if err := syscall.Flock(int(m.file.Fd()), syscall.LOCK_UN); err != nil {
		m.file.Close()
		return fmt.Errorf("singleinstance: failed to release lock: %w", err)
	}
	return m.file.Close()
}
