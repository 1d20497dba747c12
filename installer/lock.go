package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultLockTimeout bounds the wait for another process installing the same version.
	DefaultLockTimeout = 2 * time.Minute

	lockRetryDelay = 100 * time.Millisecond
	lockExtension  = ".lock"
)

// fileLock is an exclusive advisory lock held on <target>.lock.
type fileLock struct {
	path string
	file *os.File
}

// acquireLock waits for the lock on target. The returned unlock must be called.
func acquireLock(ctx context.Context, target string, timeout time.Duration) (unlock func(), err error) {
	path := target + lockExtension
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		lock, err := tryLock(path)
		if err == nil {
			return func() { unlockFile(lock) }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout acquiring lock %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock acquisition cancelled: %w", ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}
}

// withLock runs fn while holding the lock on target.
func withLock(ctx context.Context, target string, timeout time.Duration, fn func() error) error {
	unlock, err := acquireLock(ctx, target, timeout)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}
