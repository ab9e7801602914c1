package idf

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidValue reports a field value that cannot be written back to the
// flat text form (it contains a separator, a comment marker or a newline).
var ErrInvalidValue = errors.New("invalid field value")

// Record is one typed, positionally ordered list of string fields.
//
// The record type is not a field: field 0 is the first value after the type
// header and is conventionally the record's key.
//
// Positions are load-bearing. [Record.InsertFields] and
// [Record.RemoveFields] shift every later field, so a raw index taken before
// such a call is invalid afterwards. Re-resolve by name with
// [Record.FieldIndex], or hold a [Mark], which the record keeps in place
// across shifts.
type Record struct {
	typ    string
	fields []string
	store  *Store
	marks  []*Mark
	shape  uint64
}

// NewRecord returns a detached record. It joins a store through
// [Store.InsertRecordGroup] or [Store.Append].
func NewRecord(recordType string, fields ...string) *Record {
	return &Record{typ: recordType, fields: slices.Clone(fields)}
}

// Type returns the record type as written in the document.
func (r *Record) Type() string {
	return r.typ
}

// IsType reports whether the record has the given type (case-insensitive).
func (r *Record) IsType(recordType string) bool {
	return fold(r.typ) == fold(recordType)
}

// Key returns field 0, or "" for a record without fields.
func (r *Record) Key() string {
	if len(r.fields) == 0 {
		return ""
	}

	return r.fields[0]
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Field returns the value at position i. Positions past the end read as ""
// because trailing blank fields may be omitted from a document.
func (r *Record) Field(i int) string {
	if i < 0 || i >= len(r.fields) {
		return ""
	}

	return r.fields[i]
}

// Fields returns a copy of all field values.
func (r *Record) Fields() []string {
	return slices.Clone(r.fields)
}

// Shape returns a counter that changes on every shifting edit (insert or
// remove). Equal shapes mean previously taken indices are still valid.
func (r *Record) Shape() uint64 {
	return r.shape
}

// Attached reports whether the record currently belongs to a store.
func (r *Record) Attached() bool {
	return r.store != nil
}

// Clone returns a detached copy with the same type and fields.
func (r *Record) Clone() *Record {
	return NewRecord(r.typ, r.fields...)
}

// String renders the record in the flat text form, without comments.
func (r *Record) String() string {
	var b strings.Builder

	writeRecord(&b, r, marshalOptions{indent: "", fieldIndent: " ", inline: true})

	return b.String()
}

// FieldIndex resolves a field name through the owning store's [Resolver].
func (r *Record) FieldIndex(name string) (int, error) {
	if r.store == nil || r.store.resolver == nil {
		return 0, r.errorf(ErrDetached, name)
	}

	i, err := r.store.resolver.FieldIndex(r.typ, name)
	if err != nil {
		return 0, withContext(err, r.typ, r.Key(), name)
	}

	return i, nil
}

// Get returns the value of a named field. A schema-valid field past the end
// of the record reads as "".
func (r *Record) Get(name string) (string, error) {
	i, err := r.FieldIndex(name)
	if err != nil {
		return "", err
	}

	return r.Field(i), nil
}

// Set overwrites the field at position i in place. It never shifts fields.
func (r *Record) Set(i int, value string) error {
	if i < 0 || i >= len(r.fields) {
		return r.errorf(ErrFieldIndex, fieldLabel(i))
	}

	if err := checkValue(value); err != nil {
		return r.errorf(err, fieldLabel(i))
	}

	r.set(i, value)

	return nil
}

// SetField overwrites a named field. When the schema places the field past
// the end of the record, the record is padded with blank fields first;
// padding appends and does not move existing fields.
func (r *Record) SetField(name, value string) error {
	i, err := r.FieldIndex(name)
	if err != nil {
		return err
	}

	if err := checkValue(value); err != nil {
		return r.errorf(err, name)
	}

	if i >= len(r.fields) {
		pad := make([]string, i+1-len(r.fields))
		r.insert(len(r.fields), pad)
	}

	r.set(i, value)

	return nil
}

// InsertFields splices values in at pos, shifting the fields at and after
// pos up by len(values). pos may equal Len() to append.
//
// Every raw index >= pos taken before the call is invalid afterwards.
func (r *Record) InsertFields(pos int, values ...string) error {
	if pos < 0 || pos > len(r.fields) {
		return r.errorf(ErrFieldIndex, fieldLabel(pos))
	}

	for _, v := range values {
		if err := checkValue(v); err != nil {
			return r.errorf(err, fieldLabel(pos))
		}
	}

	if len(values) == 0 {
		return nil
	}

	r.insert(pos, slices.Clone(values))

	return nil
}

// AppendFields adds values after the last field. Existing indices stay valid.
func (r *Record) AppendFields(values ...string) error {
	return r.InsertFields(len(r.fields), values...)
}

// RemoveField removes the field at pos, shifting later fields down by one.
func (r *Record) RemoveField(pos int) error {
	return r.RemoveFields(pos, 1)
}

// RemoveFields removes n fields starting at pos. Marks on removed fields go
// stale; marks after them shift down.
func (r *Record) RemoveFields(pos, n int) error {
	if n < 0 || pos < 0 || pos+n > len(r.fields) {
		return r.errorf(ErrFieldIndex, fieldLabel(pos))
	}

	if n == 0 {
		return nil
	}

	r.remove(pos, n)

	return nil
}

// set, insert and remove are the only writers of r.fields once a record is
// stored. They keep marks, the key index and the undo log in step.

func (r *Record) set(i int, value string) {
	old := r.fields[i]
	if old == value {
		return
	}

	oldKey := r.Key()
	r.fields[i] = value

	r.changed(oldKey, func() { r.set(i, old) })
}

func (r *Record) insert(pos int, values []string) {
	oldKey := r.Key()
	r.fields = slices.Insert(r.fields, pos, values...)
	r.shape++

	for _, m := range r.marks {
		if m.index >= pos {
			m.index += len(values)
		}
	}

	n := len(values)
	r.changed(oldKey, func() { r.remove(pos, n) })
}

func (r *Record) remove(pos, n int) {
	oldKey := r.Key()
	removed := slices.Clone(r.fields[pos : pos+n])
	r.fields = slices.Delete(r.fields, pos, pos+n)
	r.shape++

	live := r.marks[:0]

	for _, m := range r.marks {
		switch {
		case m.index >= pos+n:
			m.index -= n
		case m.index >= pos:
			m.rec = nil

			continue
		}

		live = append(live, m)
	}

	clear(r.marks[len(live):])
	r.marks = live

	r.changed(oldKey, func() { r.insert(pos, removed) })
}

func (r *Record) changed(oldKey string, undo func()) {
	if r.store == nil {
		return
	}

	r.store.logUndo(undo)

	if r.Key() != oldKey {
		r.store.rekey(r, oldKey)
	}
}

func (r *Record) errorf(err error, field string) error {
	return &Error{Type: r.typ, Key: r.Key(), Field: field, Err: err}
}

// checkValue rejects values that would not read back unchanged. Parsing
// trims surrounding whitespace.
func checkValue(v string) error {
	if strings.ContainsAny(v, ",;!\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidValue, v)
	}

	if strings.TrimSpace(v) != v {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidValue, v)
	}

	return nil
}
