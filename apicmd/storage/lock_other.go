//go:build !unix

package storage

// dirLock is a no-op on platforms without flock support.
type dirLock struct{}

func acquireDirLock(string) (*dirLock, error) {
	return &dirLock{}, nil
}

func (l *dirLock) release() error {
	return nil
}
