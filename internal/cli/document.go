package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinalkan/idfpatch/internal/config"
	"github.com/calvinalkan/idfpatch/internal/fs"
	"github.com/calvinalkan/idfpatch/pkg/idf"
)

var (
	errIDFRequired   = errors.New("idf path is required")
	errPlanRequired  = errors.New("plan path is required")
	errValueRequired = errors.New("value is required")
	errTypeRequired  = errors.New("record type is required")
	errKeyRequired   = errors.New("record key is required")
)

// absPath resolves path against the effective working directory.
func absPath(cfg *config.Config, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(cfg.EffectiveCwd, path)
}

// loadSchema returns the builtin schema, extended with the configured IDD
// file when there is one.
func loadSchema(cfg *config.Config) (*idf.Schema, error) {
	schema := idf.BuiltinSchema()

	if cfg.IDDPathAbs == "" {
		return schema, nil
	}

	f, err := os.Open(cfg.IDDPathAbs)
	if err != nil {
		return nil, fmt.Errorf("open idd: %w", err)
	}
	defer func() { _ = f.Close() }()

	dict, err := idf.ParseIDD(f)
	if err != nil {
		return nil, fmt.Errorf("idd %s: %w", cfg.IDDPathAbs, err)
	}

	schema.Merge(dict)

	return schema, nil
}

// readDocument parses the document at path into a new store.
func readDocument(cfg *config.Config, path string) (*idf.Store, error) {
	schema, err := loadSchema(cfg)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath(cfg, path))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	store := idf.NewStore(idf.WithResolver(schema))

	if _, err := store.Load(string(data)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return store, nil
}

// marshalOptions returns the serializer options from the config. comments
// forces field comments on.
func marshalOptions(cfg *config.Config, comments bool) []idf.MarshalOption {
	return []idf.MarshalOption{
		idf.WithIndent(cfg.IndentString),
		idf.WithFieldComments(comments || cfg.CommentsEnabled),
	}
}

// writeDocument replaces path with the serialized store. When backup is
// set and path exists, the previous content is kept next to it first.
// Returns the backup path, or "" when none was written.
func writeDocument(cfg *config.Config, path string, store *idf.Store, backup bool) (string, error) {
	abs := absPath(cfg, path)

	var backupPath string

	if backup {
		if _, err := os.Stat(abs); err == nil {
			backupPath, err = fs.Backup(abs)
			if err != nil {
				return "", fmt.Errorf("backup: %w", err)
			}
		}
	}

	data := store.Marshal(marshalOptions(cfg, false)...)

	if err := fs.WriteFileAtomic(abs, []byte(data)); err != nil {
		return backupPath, fmt.Errorf("write document: %w", err)
	}

	return backupPath, nil
}

// warnDuplicates reports keys that more than one record shares.
func warnDuplicates(o *IO, store *idf.Store) {
	for _, d := range store.Duplicates() {
		o.Warn(fmt.Sprintf("duplicate key %s %q (%d records)", d.Type, d.Key, len(d.Records)),
			"lookups use the first record; rename or remove the others")
	}
}
