package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// WriteFileAtomic replaces path with data via a temp file and rename, so
// readers see either the old or the new document.
func WriteFileAtomic(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// Backup copies path to "<dir>/<base>.<uuidv7>.bak" and returns the backup
// path. UUIDv7 names sort by creation time.
func Backup(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	defer src.Close()

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("backup: generate uuidv7: %w", err)
	}

	dst := filepath.Join(filepath.Dir(path), filepath.Base(path)+"."+id.String()+".bak")

	if err := atomic.WriteFile(dst, src); err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}

	return dst, nil
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	prefix := filepath.Base(path) + "."

	var out []string

	for _, e := range entries {
		name := e.Name()

		id, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}

		id, ok = strings.CutSuffix(id, ".bak")
		if !ok {
			continue
		}

		if u, err := uuid.Parse(id); err != nil || u.Version() != 7 {
			continue
		}

		out = append(out, filepath.Join(filepath.Dir(path), name))
	}

	return out, nil
}
