//go:build unix

package installer

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

func tryLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, errors.New("lock held by another process")
		}
		return nil, fmt.Errorf("flock: %w", err)
	}
	return &fileLock{path: path, file: f}, nil
}

// unlockFile closes the lock file. The file itself stays; removing it
// would let a waiter lock an unlinked inode.
func unlockFile(l *fileLock) {
	_ = l.file.Close()
}
