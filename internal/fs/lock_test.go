package fs_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/calvinalkan/idfpatch/internal/fs"
)

func Test_LockFile_Returns_ErrWouldBlock_When_Path_Is_Locked(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.idf")

	lock1, err := fs.LockFile(path, time.Second)
	if err != nil {
		t.Fatalf("LockFile(%q): %v", path, err)
	}

	t.Cleanup(func() { _ = lock1.Close() })

	if got, want := lock1.Path(), path+".lock"; got != want {
		t.Fatalf("lock path = %q, want %q", got, want)
	}

	lock2, err := fs.LockFile(path, 30*time.Millisecond)
	if !errors.Is(err, fs.ErrWouldBlock) {
		t.Fatalf("LockFile while locked: err=%v, want %v", err, fs.ErrWouldBlock)
	}

	if lock2 != nil {
		t.Fatal("LockFile while locked returned a lock")
	}

	if err := lock1.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	if err := lock1.Close(); err != nil {
		t.Fatalf("second Close(): %v", err)
	}

	lock3, err := fs.LockFile(path, time.Second)
	if err != nil {
		t.Fatalf("LockFile after release: %v", err)
	}

	if err := lock3.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}
}

func Test_LockFile_Returns_ErrInvalidTimeout_When_Timeout_Not_Positive(t *testing.T) {
	t.Parallel()

	_, err := fs.LockFile(filepath.Join(t.TempDir(), "model.idf"), 0)
	if !errors.Is(err, fs.ErrInvalidTimeout) {
		t.Fatalf("err = %v, want %v", err, fs.ErrInvalidTimeout)
	}
}

func Test_LockFile_Acquires_When_Holder_Releases_Before_Timeout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.idf")

	held, err := fs.LockFile(path, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)

		_ = held.Close()
	}()

	lk, err := fs.LockFile(path, 5*time.Second)
	if err != nil {
		t.Fatalf("LockFile: %v", err)
	}

	_ = lk.Close()
}
