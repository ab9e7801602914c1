// Package fs holds the file plumbing of the CLI: an advisory single-writer
// lock on a document, atomic replacement and backups.
package fs

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrWouldBlock is returned when the lock is held by another process and
	// the timeout expired.
	ErrWouldBlock = errors.New("lock would block")

	// ErrInvalidTimeout is returned when a timeout is <= 0.
	ErrInvalidTimeout = errors.New("invalid lock timeout")

	// errInodeMismatch means the lock file was replaced between open and
	// flock. Callers retry.
	errInodeMismatch = errors.New("inode mismatch")
)

const (
	lockFilePerm = 0o600
	lockSuffix   = ".lock"
	maxBackoff   = 25 * time.Millisecond
)

// Lock is a held exclusive flock(2) on "<path>.lock". Call [Lock.Close] to
// release it.
//
// The lock file sits next to the document rather than on it, because the
// document itself is replaced by rename on every write.
type Lock struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// LockFile acquires an exclusive lock guarding path, polling with backoff
// (1ms to 25ms) until timeout expires. The returned error matches
// [ErrWouldBlock] on timeout.
func LockFile(path string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be > 0", ErrInvalidTimeout)
	}

	lockPath := path + lockSuffix
	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	for {
		file, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, lockFilePerm)
		if err != nil {
			return nil, fmt.Errorf("opening lockfile: %w", err)
		}

		err = acquire(file, lockPath)
		if err == nil {
			return &Lock{file: file, path: lockPath}, nil
		}

		_ = file.Close()

		if !errors.Is(err, ErrWouldBlock) && !errors.Is(err, errInodeMismatch) {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %s held by another process, timed out after %s", ErrWouldBlock, path, timeout)
		}

		time.Sleep(min(backoff, remaining))

		backoff = min(backoff*2, maxBackoff)
	}
}

// Path returns the lock file path.
func (lk *Lock) Path() string {
	return lk.path
}

// Close releases the lock. It is idempotent.
func (lk *Lock) Close() error {
	lk.mu.Lock()
	defer lk.mu.Unlock()

	if lk.file == nil {
		return nil
	}

	unlockErr := flock(int(lk.file.Fd()), unix.LOCK_UN)
	closeErr := lk.file.Close()
	lk.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking lock: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// acquire flocks file without blocking and checks that it is still the file
// at path. On failure the file is unlocked but not closed.
func acquire(file *os.File, path string) error {
	fd := int(file.Fd())

	if err := flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return ErrWouldBlock
		}

		return fmt.Errorf("flock: %w", err)
	}

	var openStat, pathStat unix.Stat_t

	if err := unix.Fstat(fd, &openStat); err != nil {
		_ = flock(fd, unix.LOCK_UN)

		return fmt.Errorf("fstat lockfile: %w", err)
	}

	if err := unix.Stat(path, &pathStat); err != nil {
		_ = flock(fd, unix.LOCK_UN)

		if errors.Is(err, unix.ENOENT) {
			return errInodeMismatch
		}

		return fmt.Errorf("stat lockfile: %w", err)
	}

	if openStat.Dev != pathStat.Dev || openStat.Ino != pathStat.Ino {
		_ = flock(fd, unix.LOCK_UN)

		return errInodeMismatch
	}

	return nil
}

func flock(fd, how int) error {
	for {
		err := unix.Flock(fd, how)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
