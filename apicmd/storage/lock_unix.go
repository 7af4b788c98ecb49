//go:build unix

package storage

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// dirLock holds an exclusive flock on a lock file inside the storage
// directory for the lifetime of the store.
type dirLock struct {
	file *os.File
}

func acquireDirLock(dir string) (*dirLock, error) {
	file, err := os.OpenFile(filepath.Join(dir, ".lock"), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		return nil, errors.New("storage directory is locked by another process")
	}

	return &dirLock{file: file}, nil
}

func (l *dirLock) release() error {
	if l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	return err
}
