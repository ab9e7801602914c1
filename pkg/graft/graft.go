package graft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// Position selects where a component goes in a branch. Build one with
// [At], [Before] or [AtEnd].
type Position struct {
	ordinal    int
	before     Predicate
	end        bool
	beforeLast bool
	desc       string
}

// At places the component before the item at ordinal (0 is the branch
// start). ordinal == Len() is the same as [AtEnd].
func At(ordinal int) Position {
	return Position{ordinal: ordinal, desc: fmt.Sprintf("item %d", ordinal)}
}

// Before places the component in front of the first item matching pred.
func Before(pred Predicate, desc string) Position {
	return Position{before: pred, desc: desc}
}

// AtEnd appends the component after the last item of the branch.
func AtEnd() Position {
	return Position{end: true, desc: "end"}
}

// BeforeLast places the item in front of the last one, keeping a list's
// closing entry (outlet or bypass branch) last. On an empty list it appends.
func BeforeLast() Position {
	return Position{beforeLast: true, desc: "before last"}
}

func (p Position) String() string {
	return p.desc
}

// DefaultOutletRefs are the loop fields that name a branch's outlet node
// from outside the branch.
var DefaultOutletRefs = []FieldRef{
	{Type: "PlantLoop", Field: "Plant Side Outlet Node Name"},
	{Type: "PlantLoop", Field: "Demand Side Outlet Node Name"},
	{Type: "CondenserLoop", Field: "Condenser Side Outlet Node Name"},
	{Type: "CondenserLoop", Field: "Demand Side Outlet Node Name"},
}

// Nodes are the connection points of a grafted component.
type Nodes struct {
	Inlet  string
	Outlet string
}

// Spec describes one component graft into a branch.
type Spec struct {
	// Branch is the anchor branch name.
	Branch string

	// Type and Name identify the new component.
	Type string
	Name string

	// Where places the component. The zero value is the branch start.
	Where Position

	// OutletNode is the base name for the new outlet node. Default:
	// "<Name> Outlet Node". The final name is made collision-free.
	OutletNode string

	// Render returns the text of the component's own records (and any
	// auxiliary records), built from the allocated nodes. Nil merges nothing.
	Render func(Nodes) (string, error)

	// OutletRefs are redirected from the old branch outlet to the new one
	// when the component is appended at the branch end. Default:
	// DefaultOutletRefs.
	OutletRefs []FieldRef
}

// Result reports what a graft did.
type Result struct {
	Ordinal int
	Nodes   Nodes
	Records []*idf.Record
	Rewired int
}

// Insert grafts a new component into a branch:
//
//  1. locate the branch and the insertion point
//  2. allocate a fresh outlet node
//  3. point the downstream neighbour (or the loop outlet fields, at the
//     branch end) at the new node
//  4. insert the component quadruple
//  5. merge the rendered records
//
// Every lookup and field resolution happens before the first mutation, and
// the mutations run in one [idf.Store.Update]. On any error the store is
// unchanged.
func Insert(store *idf.Store, spec Spec) (Result, error) {
	if spec.Type == "" || spec.Name == "" {
		return Result{}, errors.New("graft: component type and name are required")
	}

	seq, err := OpenBranch(store, spec.Branch)
	if err != nil {
		return Result{}, err
	}

	ordinal, err := resolvePosition(seq, spec.Where)
	if err != nil {
		return Result{}, err
	}

	n := seq.Len()
	if n == 0 {
		return Result{}, &idf.Error{Type: "Branch", Key: spec.Branch, Err: errors.New("branch has no components to connect to")}
	}

	var inlet string

	if ordinal < n {
		next, _ := seq.Item(ordinal)
		inlet = next.Inlet()
	} else {
		last, _ := seq.Item(n - 1)
		inlet = last.Outlet()
	}

	if inlet == "" {
		return Result{}, &idf.Error{Type: "Branch", Key: spec.Branch, Field: spec.Where.String(), Err: errors.New("no node at insertion point")}
	}

	base := spec.OutletNode
	if base == "" {
		base = spec.Name + " Outlet Node"
	}

	nodes := Nodes{Inlet: inlet, Outlet: FreshNodeName(store, base)}

	var edits []fieldEdit

	if ordinal < n {
		next, _ := seq.Item(ordinal)

		compEdits, err := inletEdits(store, next.Type(), next.Name(), nodes.Outlet)
		if err != nil {
			return Result{}, fmt.Errorf("rewire downstream %s %q: %w", next.Type(), next.Name(), err)
		}

		slot, _ := seq.FieldIndex(ordinal, SlotInlet)
		edits = append(edits, fieldEdit{rec: seq.Record(), index: slot, value: nodes.Outlet})
		edits = append(edits, compEdits...)
	} else {
		refs := spec.OutletRefs
		if refs == nil {
			refs = knownRefs(store, DefaultOutletRefs)
		}

		loopEdits, err := refEdits(store, refs, false, inlet, nodes.Outlet)
		if err != nil {
			return Result{}, err
		}

		edits = append(edits, loopEdits...)
	}

	recs, err := render(spec.Render, nodes)
	if err != nil {
		return Result{}, err
	}

	err = store.Update(func() error {
		for _, e := range edits {
			if err := e.apply(); err != nil {
				return err
			}
		}

		if err := seq.InsertItem(ordinal, spec.Type, spec.Name, nodes.Inlet, nodes.Outlet); err != nil {
			return err
		}

		return store.Append(recs...)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Ordinal: ordinal, Nodes: nodes, Records: recs, Rewired: len(edits)}, nil
}

func resolvePosition(seq *Sequence, where Position) (int, error) {
	n := seq.Len()

	switch {
	case where.end:
		return n, nil
	case where.beforeLast:
		return max(n-1, 0), nil
	case where.before != nil:
		it, ok := seq.Find(where.before)
		if !ok {
			rec := seq.Record()

			return 0, &idf.Error{Type: rec.Type(), Key: rec.Key(), Field: where.String(), Err: idf.ErrNotFound}
		}

		return it.Ordinal, nil
	default:
		if where.ordinal < 0 || where.ordinal > n {
			rec := seq.Record()

			return 0, &idf.Error{Type: rec.Type(), Key: rec.Key(), Field: where.String(), Err: idf.ErrFieldIndex}
		}

		return where.ordinal, nil
	}
}

// knownRefs drops the refs the store's resolver cannot map, so the default
// loop fields work with schemas that lack the loop types.
func knownRefs(store *idf.Store, refs []FieldRef) []FieldRef {
	var known []FieldRef

	for _, ref := range refs {
		if _, err := store.Resolver().FieldIndex(ref.Type, ref.Field); err == nil {
			known = append(known, ref)
		}
	}

	return known
}

func render(fn func(Nodes) (string, error), nodes Nodes) ([]*idf.Record, error) {
	if fn == nil {
		return nil, nil
	}

	text, err := fn(nodes)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	recs, err := idf.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	return recs, nil
}

// ReplaceSpec describes an in-place component swap.
type ReplaceSpec struct {
	// OldType and OldName identify the component being replaced.
	OldType string
	OldName string

	// NewType and NewName identify the replacement. NewName defaults to
	// OldName.
	NewType string
	NewName string

	// Branch restricts the reference rewrite to one branch. Empty means
	// every Branch that lists the old component.
	Branch string

	// Render returns the replacement's records. It sees the old record, so
	// node names and settings can be carried over.
	Render func(old *idf.Record) (string, error)
}

// Replace swaps a component for another one in place: the (type, name) slots
// of every referencing branch item are rewritten, the old record is removed
// and the rendered records take its place in the document. Node slots are
// left alone, so the replacement must reuse the old inlet and outlet nodes.
//
// Every lookup happens before the first mutation; on error the store is
// unchanged.
func Replace(store *idf.Store, spec ReplaceSpec) (Result, error) {
	if spec.NewType == "" {
		return Result{}, errors.New("replace: new component type is required")
	}

	newName := spec.NewName
	if newName == "" {
		newName = spec.OldName
	}

	old, err := store.FindByKey(spec.OldType, spec.OldName)
	if err != nil {
		return Result{}, err
	}

	var branches []*idf.Record

	if spec.Branch != "" {
		b, err := store.FindByKey("Branch", spec.Branch)
		if err != nil {
			return Result{}, err
		}

		branches = []*idf.Record{b}
	} else {
		branches = store.AllOfType("Branch")
	}

	var (
		edits []fieldEdit
		nodes Nodes
	)

	for _, b := range branches {
		seq := NewSequence(b, BranchLayout)

		for _, it := range seq.Items() {
			if !ByTypeAndName(spec.OldType, spec.OldName)(it) {
				continue
			}

			ti, _ := seq.FieldIndex(it.Ordinal, SlotType)
			ni, _ := seq.FieldIndex(it.Ordinal, SlotName)
			edits = append(edits,
				fieldEdit{rec: b, index: ti, value: spec.NewType},
				fieldEdit{rec: b, index: ni, value: newName},
			)

			if nodes.Inlet == "" {
				nodes = Nodes{Inlet: it.Inlet(), Outlet: it.Outlet()}
			}
		}
	}

	if len(edits) == 0 {
		return Result{}, &idf.Error{Type: spec.OldType, Key: spec.OldName, Field: "branch reference", Err: idf.ErrNotFound}
	}

	var recs []*idf.Record

	if spec.Render != nil {
		text, err := spec.Render(old)
		if err != nil {
			return Result{}, fmt.Errorf("render: %w", err)
		}

		recs, err = idf.Parse(text)
		if err != nil {
			return Result{}, fmt.Errorf("render: %w", err)
		}
	}

	pos, _ := store.IndexOf(old)

	err = store.Update(func() error {
		for _, e := range edits {
			if err := e.apply(); err != nil {
				return err
			}
		}

		if err := store.Remove(old); err != nil {
			return err
		}

		return store.InsertRecordGroup(pos, recs...)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Nodes: nodes, Records: recs, Rewired: len(edits) / 2}, nil
}

// ReplaceInLists rewrites the (oldType, oldName) pair to (newType, newName)
// wherever the two values sit next to each other in a record of listType.
// It returns the number of pairs rewritten.
func ReplaceInLists(store *idf.Store, listType, oldType, oldName, newType, newName string) (int, error) {
	var edits []fieldEdit

	for _, r := range store.AllOfType(listType) {
		for i := 0; i+1 < r.Len(); i++ {
			if strings.EqualFold(r.Field(i), oldType) && strings.EqualFold(r.Field(i+1), oldName) {
				edits = append(edits,
					fieldEdit{rec: r, index: i, value: newType},
					fieldEdit{rec: r, index: i + 1, value: newName},
				)
				i++
			}
		}
	}

	if len(edits) == 0 {
		return 0, &idf.Error{Type: listType, Key: oldName, Field: oldType, Err: idf.ErrNotFound}
	}

	err := store.Update(func() error {
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

	return len(edits) / 2, nil
}
