package idf

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Store is an ordered collection of records with derived lookup indices.
//
// The ordered record list is the source of truth. The type index and the key
// index are caches over it, maintained on every insert, remove and key edit;
// [Store.Verify] checks that they agree.
//
// Keys (field 0) are compared case-insensitively and must be unique within a
// keyed record type when records are inserted. A later edit of field 0 can
// still produce a collision; lookups then return the first record in
// document order and [Store.Duplicates] reports the collision.
//
// A Store is not safe for concurrent use. It performs no I/O.
type Store struct {
	resolver Resolver
	records  []*Record
	pos      map[*Record]int
	byType   map[string][]*Record
	byKey    map[string]map[string][]*Record
	tx       *Tx
	undoing  bool
}

// Option configures a [Store].
type Option func(*Store)

// WithResolver sets the field-name resolver. Default: [BuiltinSchema].
func WithResolver(r Resolver) Option {
	return func(s *Store) {
		s.resolver = r
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		pos:    make(map[*Record]int),
		byType: make(map[string][]*Record),
		byKey:  make(map[string]map[string][]*Record),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.resolver == nil {
		s.resolver = BuiltinSchema()
	}

	return s
}

// Resolver returns the store's field-name resolver.
func (s *Store) Resolver() Resolver {
	return s.resolver
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a snapshot of all records in document order.
func (s *Store) Records() []*Record {
	return slices.Clone(s.records)
}

// IndexOf returns the document position of r.
func (s *Store) IndexOf(r *Record) (int, bool) {
	if r == nil || r.store != s {
		return 0, false
	}

	i, ok := s.pos[r]

	return i, ok
}

// AllOfType returns a snapshot of the records of a type in document order.
// Later mutations do not affect the returned slice.
func (s *Store) AllOfType(recordType string) []*Record {
	return slices.Clone(s.byType[fold(recordType)])
}

// Types returns the distinct record types in order of first appearance.
func (s *Store) Types() []string {
	seen := make(map[string]bool, len(s.byType))

	var types []string

	for _, r := range s.records {
		k := fold(r.typ)
		if !seen[k] {
			seen[k] = true
			types = append(types, r.typ)
		}
	}

	return types
}

// FindByKey returns the first record of a type whose field 0 equals key
// (case-insensitive). It fails with [ErrNotFound] when there is none.
func (s *Store) FindByKey(recordType, key string) (*Record, error) {
	r, ok := s.Lookup(recordType, key)
	if !ok {
		return nil, &Error{Type: recordType, Key: key, Err: ErrNotFound}
	}

	return r, nil
}

// Lookup is [Store.FindByKey] for callers that skip missing records: a miss
// is an ordinary false, not an error.
func (s *Store) Lookup(recordType, key string) (*Record, bool) {
	if s.keyed(recordType) {
		matches := s.byKey[fold(recordType)][fold(key)]
		if len(matches) == 0 {
			return nil, false
		}

		return matches[0], true
	}

	return s.lookupField(recordType, 0, key)
}

// FindByField returns the first record of a type whose field at index equals
// value (case-insensitive).
func (s *Store) FindByField(recordType string, index int, value string) (*Record, error) {
	r, ok := s.lookupField(recordType, index, value)
	if !ok {
		return nil, &Error{Type: recordType, Key: value, Field: fieldLabel(index), Err: ErrNotFound}
	}

	return r, nil
}

func (s *Store) lookupField(recordType string, index int, value string) (*Record, bool) {
	want := fold(value)

	for _, r := range s.byType[fold(recordType)] {
		if index < len(r.fields) && fold(r.fields[index]) == want {
			return r, true
		}
	}

	return nil, false
}

// Append inserts recs as one group at the end of the document.
func (s *Store) Append(recs ...*Record) error {
	return s.InsertRecordGroup(len(s.records), recs...)
}

// InsertRecordGroup inserts recs as a contiguous block starting at document
// position pos (Len() appends).
//
// It fails with [ErrDuplicateKey] when a record's key collides with an
// existing record of the same keyed type or with another record of the group,
// and with [ErrDetached] when a record already belongs to a store. The store is
// unchanged on error.
func (s *Store) InsertRecordGroup(pos int, recs ...*Record) error {
	if pos < 0 || pos > len(s.records) {
		return fmt.Errorf("insert record group: position %d outside [0, %d]", pos, len(s.records))
	}

	seen := make(map[[2]string]bool, len(recs))

	for _, r := range recs {
		if r == nil {
			return errors.New("insert record group: nil record")
		}

		if r.store != nil {
			return &Error{Type: r.typ, Key: r.Key(), Err: ErrDetached}
		}

		if r.typ == "" {
			return &Error{Key: r.Key(), Err: errors.New("empty record type")}
		}

		for i, v := range r.fields {
			if err := checkValue(v); err != nil {
				return r.errorf(err, fieldLabel(i))
			}
		}

		if !s.indexable(r) {
			continue
		}

		id := [2]string{fold(r.typ), fold(r.Key())}
		if seen[id] || len(s.byKey[id[0]][id[1]]) > 0 {
			return &Error{Type: r.typ, Key: r.Key(), Err: ErrDuplicateKey}
		}

		seen[id] = true
	}

	if len(recs) == 0 {
		return nil
	}

	s.insertAt(pos, slices.Clone(recs))

	return nil
}

// Remove deletes r from the document and both indices.
func (s *Store) Remove(r *Record) error {
	if r == nil || r.store != s {
		if r == nil {
			return &Error{Err: ErrNotFound}
		}

		return &Error{Type: r.typ, Key: r.Key(), Err: ErrNotFound}
	}

	s.removeAt(s.pos[r])

	return nil
}

func (s *Store) insertAt(pos int, recs []*Record) {
	s.records = slices.Insert(s.records, pos, recs...)
	s.renumber(pos)

	for _, r := range recs {
		r.store = s
		s.indexAdd(r)
	}

	n := len(recs)
	s.logUndo(func() {
		for range n {
			s.removeAt(pos)
		}
	})
}

func (s *Store) removeAt(pos int) {
	r := s.records[pos]

	s.indexRemove(r, r.Key())
	s.records = slices.Delete(s.records, pos, pos+1)
	delete(s.pos, r)
	s.renumber(pos)
	r.store = nil

	s.logUndo(func() { s.insertAt(pos, []*Record{r}) })
}

func (s *Store) renumber(from int) {
	for i := from; i < len(s.records); i++ {
		s.pos[s.records[i]] = i
	}
}

// keyed reports whether records of a type are key-indexed.
func (s *Store) keyed(recordType string) bool {
	if kp, ok := s.resolver.(KeyPolicy); ok {
		return kp.Keyed(recordType)
	}

	return true
}

func (s *Store) indexable(r *Record) bool {
	return r.Key() != "" && s.keyed(r.typ)
}

func (s *Store) indexAdd(r *Record) {
	t := fold(r.typ)
	s.byType[t] = s.insertOrdered(s.byType[t], r)

	if !s.indexable(r) {
		return
	}

	keys := s.byKey[t]
	if keys == nil {
		keys = make(map[string][]*Record)
		s.byKey[t] = keys
	}

	k := fold(r.Key())
	keys[k] = s.insertOrdered(keys[k], r)
}

func (s *Store) indexRemove(r *Record, key string) {
	t := fold(r.typ)
	s.byType[t] = deleteRecord(s.byType[t], r)

	if len(s.byType[t]) == 0 {
		delete(s.byType, t)
	}

	if key == "" || !s.keyed(r.typ) {
		return
	}

	keys := s.byKey[t]
	k := fold(key)

	keys[k] = deleteRecord(keys[k], r)
	if len(keys[k]) == 0 {
		delete(keys, k)
	}

	if len(keys) == 0 {
		delete(s.byKey, t)
	}
}

// rekey moves r in the key index after its field 0 changed.
func (s *Store) rekey(r *Record, oldKey string) {
	if oldKey != "" && s.keyed(r.typ) {
		keys := s.byKey[fold(r.typ)]
		k := fold(oldKey)

		keys[k] = deleteRecord(keys[k], r)
		if len(keys[k]) == 0 {
			delete(keys, k)
		}
	}

	if !s.indexable(r) {
		return
	}

	t := fold(r.typ)

	keys := s.byKey[t]
	if keys == nil {
		keys = make(map[string][]*Record)
		s.byKey[t] = keys
	}

	k := fold(r.Key())
	keys[k] = s.insertOrdered(keys[k], r)
}

// insertOrdered inserts r into list keeping document order.
func (s *Store) insertOrdered(list []*Record, r *Record) []*Record {
	p := s.pos[r]
	i := sort.Search(len(list), func(i int) bool { return s.pos[list[i]] > p })

	return slices.Insert(list, i, r)
}

func deleteRecord(list []*Record, r *Record) []*Record {
	if i := slices.Index(list, r); i >= 0 {
		return slices.Delete(list, i, i+1)
	}

	return list
}

// Duplicate is a key shared by more than one record of a keyed type.
type Duplicate struct {
	Type    string
	Key     string
	Records []*Record // document order; Records[0] is what lookups return
}

// Duplicates reports every ambiguous (type, key) in document order of the
// first record. Inserts reject duplicates, so these only arise from edits of
// field 0.
func (s *Store) Duplicates() []Duplicate {
	var out []Duplicate

	for _, keys := range s.byKey {
		for _, recs := range keys {
			if len(recs) > 1 {
				out = append(out, Duplicate{Type: recs[0].typ, Key: recs[0].Key(), Records: slices.Clone(recs)})
			}
		}
	}

	slices.SortFunc(out, func(a, b Duplicate) int {
		return s.pos[a.Records[0]] - s.pos[b.Records[0]]
	})

	return out
}

// Verify checks that both indices agree with the ordered record list.
func (s *Store) Verify() error {
	if len(s.pos) != len(s.records) {
		return fmt.Errorf("verify: %d positions for %d records", len(s.pos), len(s.records))
	}

	wantType := make(map[string]int)
	wantKey := 0

	for i, r := range s.records {
		if r.store != s {
			return fmt.Errorf("verify: record %d (%s %q) not owned by store", i, r.typ, r.Key())
		}

		if s.pos[r] != i {
			return fmt.Errorf("verify: record %d (%s %q) indexed at position %d", i, r.typ, r.Key(), s.pos[r])
		}

		t := fold(r.typ)
		wantType[t]++

		if !slices.Contains(s.byType[t], r) {
			return fmt.Errorf("verify: record %d (%s %q) missing from type index", i, r.typ, r.Key())
		}

		if s.indexable(r) {
			wantKey++

			if !slices.Contains(s.byKey[t][fold(r.Key())], r) {
				return fmt.Errorf("verify: record %d (%s %q) missing from key index", i, r.typ, r.Key())
			}
		}
	}

	for t, recs := range s.byType {
		if len(recs) != wantType[t] {
			return fmt.Errorf("verify: type index %q holds %d records, document has %d", t, len(recs), wantType[t])
		}

		for i := 1; i < len(recs); i++ {
			if s.pos[recs[i-1]] >= s.pos[recs[i]] {
				return fmt.Errorf("verify: type index %q out of document order", t)
			}
		}
	}

	gotKey := 0
	for _, keys := range s.byKey {
		for _, recs := range keys {
			gotKey += len(recs)
		}
	}

	if gotKey != wantKey {
		return fmt.Errorf("verify: key index holds %d records, document has %d keyed", gotKey, wantKey)
	}

	return nil
}

// Load parses text and appends its records as one group. It is used both for
// the initial document and for merging authored fragments.
func (s *Store) Load(text string) ([]*Record, error) {
	return s.LoadAt(len(s.records), text)
}

// LoadAt parses text and inserts its records as one group at pos.
func (s *Store) LoadAt(pos int, text string) ([]*Record, error) {
	recs, err := Parse(text)
	if err != nil {
		return nil, err
	}

	if err := s.InsertRecordGroup(pos, recs...); err != nil {
		return nil, err
	}

	return recs, nil
}
