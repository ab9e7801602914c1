package idf

import "slices"

// Mark is a stable handle on one field of a record.
//
// The record moves the mark when fields are inserted or removed before it,
// so a mark keeps addressing the same logical field across shifts. When the
// marked field itself is removed the mark goes stale and every accessor
// returns [ErrStaleMark]. Release marks that are no longer needed.
type Mark struct {
	rec   *Record
	index int
}

// Mark returns a handle on the field currently at position i.
func (r *Record) Mark(i int) (*Mark, error) {
	if i < 0 || i >= len(r.fields) {
		return nil, r.errorf(ErrFieldIndex, fieldLabel(i))
	}

	m := &Mark{rec: r, index: i}
	r.marks = append(r.marks, m)

	return m, nil
}

// MarkField returns a handle on a named field.
func (r *Record) MarkField(name string) (*Mark, error) {
	i, err := r.FieldIndex(name)
	if err != nil {
		return nil, err
	}

	return r.Mark(i)
}

// Index returns the field's current position.
func (m *Mark) Index() (int, error) {
	if m.rec == nil {
		return 0, ErrStaleMark
	}

	return m.index, nil
}

// Value returns the field's current value.
func (m *Mark) Value() (string, error) {
	if m.rec == nil {
		return "", ErrStaleMark
	}

	return m.rec.fields[m.index], nil
}

// Set overwrites the marked field.
func (m *Mark) Set(value string) error {
	if m.rec == nil {
		return ErrStaleMark
	}

	return m.rec.Set(m.index, value)
}

// Release detaches the mark from its record. The mark is stale afterwards.
func (m *Mark) Release() {
	if m.rec == nil {
		return
	}

	if i := slices.Index(m.rec.marks, m); i >= 0 {
		m.rec.marks = slices.Delete(m.rec.marks, i, i+1)
	}

	m.rec = nil
}
