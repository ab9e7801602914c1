package graft

import (
	"strconv"
	"strings"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// FreshNodeName returns base if no field of any record in the store holds
// it, otherwise the first free "base 2", "base 3", ... Comparison is
// case-insensitive.
func FreshNodeName(store *idf.Store, base string) string {
	return freshName(usedValues(store), base)
}

func usedValues(store *idf.Store) map[string]bool {
	used := make(map[string]bool)

	for _, r := range store.Records() {
		for _, v := range r.Fields() {
			if v != "" {
				used[idf.Fold(v)] = true
			}
		}
	}

	return used
}

func freshName(used map[string]bool, base string) string {
	if !used[idf.Fold(base)] {
		return base
	}

	for n := 2; ; n++ {
		name := base + " " + strconv.Itoa(n)
		if !used[idf.Fold(name)] {
			return name
		}
	}
}

// FieldRef names a field of every record of a type. An empty Field means
// every field of the type.
type FieldRef struct {
	Type  string
	Field string
}

// RenameNode rewrites every occurrence of node from to to in the given
// fields. With no refs, every field of every record is searched. It returns
// the number of fields changed; the store is unchanged on error.
func RenameNode(store *idf.Store, refs []FieldRef, from, to string) (int, error) {
	if strings.TrimSpace(from) == "" {
		return 0, &idf.Error{Field: "from", Err: idf.ErrInvalidValue}
	}

	edits, err := refEdits(store, refs, len(refs) == 0, from, to)
	if err != nil {
		return 0, err
	}

	err = store.Update(func() error {
		for _, e := range edits {
			if err := e.apply(); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(edits), nil
}

type fieldKey struct {
	rec   *idf.Record
	index int
}

// refEdits plans setting every field in refs that equals from to to. With
// all set, refs is ignored and every field of every record is searched.
func refEdits(store *idf.Store, refs []FieldRef, all bool, from, to string) ([]fieldEdit, error) {
	want := idf.Fold(from)
	seen := make(map[fieldKey]bool)

	var edits []fieldEdit

	scan := func(r *idf.Record, index int) {
		k := fieldKey{r, index}
		if seen[k] || idf.Fold(r.Field(index)) != want {
			return
		}

		seen[k] = true
		edits = append(edits, fieldEdit{rec: r, index: index, value: to})
	}

	if all {
		for _, r := range store.Records() {
			for i := range r.Len() {
				scan(r, i)
			}
		}

		return edits, nil
	}

	for _, ref := range refs {
		for _, r := range store.AllOfType(ref.Type) {
			if ref.Field == "" {
				for i := range r.Len() {
					scan(r, i)
				}

				continue
			}

			i, err := r.FieldIndex(ref.Field)
			if err != nil {
				return nil, err
			}

			if i < r.Len() {
				scan(r, i)
			}
		}
	}

	return edits, nil
}
