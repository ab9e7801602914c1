package idf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports a lookup miss (record type + key, or a record that is
	// not part of the store).
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey reports an insertion that would make a key ambiguous
	// within its record type.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnknownField reports a field name the Resolver cannot map for a type.
	ErrUnknownField = errors.New("unknown field")

	// ErrFieldIndex reports a field position outside the record.
	ErrFieldIndex = errors.New("field index out of range")

	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("parse error")

	// ErrStaleMark reports a field handle whose field was removed.
	ErrStaleMark = errors.New("stale field mark")

	// ErrTxActive reports a second Begin while a transaction is open.
	ErrTxActive = errors.New("transaction already active")

	// ErrTxDone reports use of a committed or rolled back transaction.
	ErrTxDone = errors.New("transaction already finished")

	// ErrDetached reports a record that is owned by another store, or a
	// detached record passed where a stored one is required.
	ErrDetached = errors.New("record not owned by this store")
)

// Error is the error type returned by record-level operations.
//
// It carries the record context of the failure. The cause comes first,
// followed by the context:
//
//	record not found (record_type=Branch key=HW Loop Demand Inlet Branch)
//
// Use [errors.Is] for sentinels and [errors.As] for the fields:
//
//	var rErr *idf.Error
//	if errors.As(err, &rErr) {
//	    fmt.Println(rErr.Type, rErr.Key)
//	}
type Error struct {
	// Type is the record type involved, as given by the caller.
	Type string

	// Key is the record key (field 0) or the looked-up key.
	Key string

	// Field is the field name or "#<index>" involved, if any.
	Field string

	// Err is the underlying cause.
	Err error
}

// Error formats as "<cause> (record_type=X key=Y field=Z)".
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}

	suffix := e.suffix()

	switch {
	case suffix == "":
		return cause
	case cause == "":
		return suffix
	default:
		return cause + " " + suffix
	}
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func (e *Error) suffix() string {
	var parts []string

	if e.Type != "" {
		parts = append(parts, "record_type="+e.Type)
	}

	if e.Key != "" {
		parts = append(parts, "key="+e.Key)
	}

	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}

	if len(parts) == 0 {
		return ""
	}

	return "(" + strings.Join(parts, " ") + ")"
}

// withContext attaches record context. If err already is an *Error, missing
// fields are filled in and existing values are kept.
func withContext(err error, typ, key, field string) error {
	if err == nil {
		return nil
	}

	existing := &Error{}
	if errors.As(err, &existing) {
		if existing.Type == "" {
			existing.Type = typ
		}

		if existing.Key == "" {
			existing.Key = key
		}

		if existing.Field == "" {
			existing.Field = field
		}

		return existing
	}

	return &Error{Type: typ, Key: key, Field: field, Err: err}
}

func fieldLabel(i int) string {
	return fmt.Sprintf("#%d", i)
}

// ParseError reports malformed record text. It matches [ErrParse].
type ParseError struct {
	Line int    // 1-based line number
	Col  int    // 1-based column, 0 if unknown
	Text string // the offending line, without its newline
	Msg  string
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Col > 0 {
		loc = fmt.Sprintf("line %d col %d", e.Line, e.Col)
	}

	if e.Text == "" {
		return fmt.Sprintf("parse error: %s: %s", loc, e.Msg)
	}

	return fmt.Sprintf("parse error: %s: %s: %q", loc, e.Msg, e.Text)
}

// Is reports whether target is [ErrParse].
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
