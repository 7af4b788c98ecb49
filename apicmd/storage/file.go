package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const recordExt = ".rec"

// FileStorage persists one file per key under a directory. Writes are
// atomic (temp file + rename) and refuse to follow symlinks. An exclusive
// lock on the directory is held for the lifetime of the store so two
// processes cannot interleave writes to the same key.
type FileStorage struct {
	dir  string
	lock *dirLock
}

// NewFileStorage opens (creating if needed) a directory-backed store.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := mkdirAllSafe(dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	lock, err := acquireDirLock(dir)
	if err != nil {
		return nil, fmt.Errorf("lock storage directory: %w", err)
	}

	return &FileStorage{dir: dir, lock: lock}, nil
}

func (s *FileStorage) Get(key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	path := s.recordPath(key)
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, false, fmt.Errorf("record is a symlink, refusing to read: %s", path)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *FileStorage) Set(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	path := s.recordPath(key)
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("record is a symlink, refusing to write: %s", path)
	}

	// Write atomically by writing to temp file then renaming
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (s *FileStorage) Remove(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	err := os.Remove(s.recordPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStorage) ListKeys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, recordExt))
	}
	return keys, nil
}

// Close releases the directory lock.
func (s *FileStorage) Close() error {
	if s.lock != nil {
		return s.lock.release()
	}
	return nil
}

func (s *FileStorage) recordPath(key string) string {
	return filepath.Join(s.dir, key+recordExt)
}

// mkdirAllSafe creates directories with symlink protection.
func mkdirAllSafe(path string, perm os.FileMode) error {
	path = filepath.Clean(path)

	parts := splitPath(path)
	var current string
	if filepath.IsAbs(path) {
		current = string(filepath.Separator)
	}

	for _, part := range parts {
		current = filepath.Join(current, part)

		info, err := os.Lstat(current)
		if os.IsNotExist(err) {
			if err := os.Mkdir(current, perm); err != nil && !os.IsExist(err) {
				return err
			}
			continue
		} else if err != nil {
			return err
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path component is a symlink: %s", current)
		}
		if !info.IsDir() {
			return fmt.Errorf("path component is not a directory: %s", current)
		}
	}
	return nil
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, string(filepath.Separator)) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
