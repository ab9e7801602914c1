// Package refindex keeps a derived SQLite index of every field value in a
// document, so name references (node names, list members) can be queried
// without scanning records.
//
// The index is a cache: [Index.Build] always rebuilds it from an
// [idf.Store], and nothing reads it back into a store.
package refindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// currentSchemaVersion is stored in SQLite's user_version pragma.
// A mismatch on Open drops and recreates the tables.
const currentSchemaVersion = 1

// sqliteBusyTimeout is the time SQLite waits when the database is locked.
const sqliteBusyTimeout = 10000 // milliseconds

// Ref is one field holding a value.
type Ref struct {
	Pos       int    // record position in the document
	Type      string // record type
	Key       string // record key (field 0)
	Field     int    // field index
	FieldName string // empty when the schema cannot name the field
	Value     string
}

func (r Ref) String() string {
	name := r.FieldName
	if name == "" {
		name = fmt.Sprintf("#%d", r.Field)
	}

	return fmt.Sprintf("%s %q field %d (%s)", r.Type, r.Key, r.Field, name)
}

// Index is an open reference index.
type Index struct {
	db *sql.DB
}

// Open opens the index at path, or an in-memory index when path is empty.
func Open(ctx context.Context, path string) (*Index, error) {
	db, err := openSqlite(ctx, path)
	if err != nil {
		return nil, err
	}

	version, err := storedSchemaVersion(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	if version != currentSchemaVersion {
		err = inTx(ctx, db, dropAndRecreateSchema)
		if err != nil {
			_ = db.Close()

			return nil, err
		}
	}

	return &Index{db: db}, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func openSqlite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Every connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = FULL;
		PRAGMA cache_size = -20000;
		PRAGMA temp_store = MEMORY;
	`, sqliteBusyTimeout))
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	return db, nil
}

func storedSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int

	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}

	return version, nil
}

func dropAndRecreateSchema(ctx context.Context, tx *sql.Tx) error {
	statements := []string{
		"DROP TABLE IF EXISTS fields",
		"DROP TABLE IF EXISTS records",
		`CREATE TABLE records (
			pos INTEGER PRIMARY KEY,
			type TEXT NOT NULL,
			key TEXT NOT NULL
		)`,
		`CREATE TABLE fields (
			pos INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			value TEXT NOT NULL,
			value_fold TEXT NOT NULL,
			name TEXT NOT NULL,
			node INTEGER NOT NULL,
			PRIMARY KEY (pos, idx)
		) WITHOUT ROWID`,
		"CREATE INDEX idx_fields_value ON fields(value_fold)",
		fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion),
	}

	for i, stmt := range statements {
		_, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}

	return nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(context.Context, *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin txn: %w", err)
	}

	err = fn(ctx, tx)
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit txn: %w", err)
	}

	return nil
}

// Build replaces the index content with the fields of store and returns
// the number of field rows written.
func (ix *Index) Build(ctx context.Context, store *idf.Store) (int, error) {
	namer, _ := store.Resolver().(idf.FieldNamer)

	rows := 0

	err := inTx(ctx, ix.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range []string{"DELETE FROM fields", "DELETE FROM records"} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("clear index: %w", err)
			}
		}

		insertRecord, err := tx.PrepareContext(ctx, "INSERT INTO records (pos, type, key) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare record insert: %w", err)
		}
		defer insertRecord.Close()

		insertField, err := tx.PrepareContext(ctx, `
			INSERT INTO fields (pos, idx, value, value_fold, name, node)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare field insert: %w", err)
		}
		defer insertField.Close()

		for pos, r := range store.Records() {
			if _, err := insertRecord.ExecContext(ctx, pos, r.Type(), r.Key()); err != nil {
				return fmt.Errorf("insert record %d: %w", pos, err)
			}

			for i, v := range r.Fields() {
				var name string
				if namer != nil {
					name, _ = namer.FieldName(r.Type(), i)
				}

				_, err := insertField.ExecContext(ctx, pos, i, v, idf.Fold(v), name, isNodeField(r.Type(), i, name))
				if err != nil {
					return fmt.Errorf("insert field %d of record %d: %w", i, pos, err)
				}

				rows++
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return rows, nil
}

// isNodeField reports whether a field names a node.
func isNodeField(recordType string, index int, name string) bool {
	switch {
	case strings.EqualFold(recordType, "NodeList") || strings.EqualFold(recordType, "OutdoorAir:NodeList"):
		return index > 0
	case strings.EqualFold(recordType, "OutdoorAir:Node"):
		return index == 0
	default:
		return strings.HasSuffix(name, "Node Name") || strings.HasSuffix(name, "Node or NodeList Name")
	}
}

const refColumns = `
	SELECT f.pos, r.type, r.key, f.idx, f.name, f.value
	FROM fields f JOIN records r ON r.pos = f.pos`

// Refs returns every field whose value equals value (case-insensitively),
// in document order.
func (ix *Index) Refs(ctx context.Context, value string) ([]Ref, error) {
	return ix.query(ctx, refColumns+`
		WHERE f.value_fold = ?
		ORDER BY f.pos, f.idx`, idf.Fold(value))
}

// OrphanNodes returns node fields whose value appears nowhere else in the
// document: a connection with only one end.
func (ix *Index) OrphanNodes(ctx context.Context) ([]Ref, error) {
	return ix.query(ctx, refColumns+`
		WHERE f.node = 1
		  AND f.value_fold != ''
		  AND (SELECT COUNT(*) FROM fields g WHERE g.value_fold = f.value_fold) = 1
		ORDER BY f.pos, f.idx`)
}

// Count returns the number of indexed records and fields.
func (ix *Index) Count(ctx context.Context) (records, fields int, err error) {
	err = ix.db.QueryRowContext(ctx, "SELECT (SELECT COUNT(*) FROM records), (SELECT COUNT(*) FROM fields)").Scan(&records, &fields)
	if err != nil {
		return 0, 0, fmt.Errorf("count: %w", err)
	}

	return records, fields, nil
}

func (ix *Index) query(ctx context.Context, query string, args ...any) ([]Ref, error) {
	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query refs: %w", err)
	}
	defer rows.Close()

	var out []Ref

	for rows.Next() {
		var ref Ref

		err := rows.Scan(&ref.Pos, &ref.Type, &ref.Key, &ref.Field, &ref.FieldName, &ref.Value)
		if err != nil {
			return nil, fmt.Errorf("scan ref: %w", err)
		}

		out = append(out, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refs: %w", err)
	}

	return out, nil
}
