package graft

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// InsertIntoList inserts one item into the list record (listType, listName).
// It is idempotent: when an item with the same values is already listed,
// nothing changes and inserted is false.
//
// Parallel lists (BranchList, Connector:Splitter, Connector:Mixer,
// equipment lists) are not kept in step automatically; call this once per
// list, or use [AddBranchToLoop], and check with [VerifyLoop].
func InsertIntoList(store *idf.Store, listType, listName string, layout Layout, where Position, values ...string) (inserted bool, err error) {
	seq, err := Open(store, listType, listName, layout)
	if err != nil {
		return false, err
	}

	if contains(seq, values) {
		return false, nil
	}

	ordinal, err := resolvePosition(seq, where)
	if err != nil {
		return false, err
	}

	err = store.Update(func() error {
		return seq.InsertItem(ordinal, values...)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// AppendToList adds one item at the end of a list record, unless it is
// already listed.
func AppendToList(store *idf.Store, listType, listName string, layout Layout, values ...string) (bool, error) {
	return InsertIntoList(store, listType, listName, layout, AtEnd(), values...)
}

func contains(seq *Sequence, values []string) bool {
	for _, it := range seq.Items() {
		if slices.EqualFunc(it.Values, values, strings.EqualFold) {
			return true
		}
	}

	return false
}

// LoopLists names the three records that enumerate the branches of one loop
// side.
type LoopLists struct {
	BranchList string
	Splitter   string
	Mixer      string
}

// AddBranchToLoop lists branch in the branch list, the splitter outlets and
// the mixer inlets of one loop side, in front of each list's last entry.
// Lists that already hold the branch are left alone. The branch record must
// exist. On error the store is unchanged.
func AddBranchToLoop(store *idf.Store, lists LoopLists, branch string) error {
	if _, err := store.FindByKey("Branch", branch); err != nil {
		return err
	}

	seqs, err := openLoop(store, lists)
	if err != nil {
		return err
	}

	return store.Update(func() error {
		for _, seq := range seqs {
			if contains(seq, []string{branch}) {
				continue
			}

			ordinal, err := resolvePosition(seq, BeforeLast())
			if err != nil {
				return err
			}

			if err := seq.InsertItem(ordinal, branch); err != nil {
				return err
			}
		}

		return nil
	})
}

func openLoop(store *idf.Store, lists LoopLists) ([]*Sequence, error) {
	branchList, err := Open(store, "BranchList", lists.BranchList, NameListLayout)
	if err != nil {
		return nil, err
	}

	splitter, err := Open(store, "Connector:Splitter", lists.Splitter, ConnectorLayout)
	if err != nil {
		return nil, err
	}

	mixer, err := Open(store, "Connector:Mixer", lists.Mixer, ConnectorLayout)
	if err != nil {
		return nil, err
	}

	return []*Sequence{branchList, splitter, mixer}, nil
}

// VerifyLoop checks that the lists of one loop side agree:
//
//   - the splitter outlets and the mixer inlets name the same branches
//   - the branch list holds the splitter inlet, every parallel branch and
//     the mixer outlet, and nothing else
//   - every listed branch exists
//
// Every mismatch is reported; the result matches [ErrLoopLists].
func VerifyLoop(store *idf.Store, lists LoopLists) error {
	seqs, err := openLoop(store, lists)
	if err != nil {
		return err
	}

	branchList, splitter, mixer := seqs[0], seqs[1], seqs[2]

	listed := names(branchList)
	outlets := names(splitter)
	inlets := names(mixer)
	splitterInlet := splitter.Record().Field(1)
	mixerOutlet := mixer.Record().Field(1)

	var errs []error

	mismatch := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrLoopLists}, args...)...))
	}

	for _, b := range outlets {
		if !hasName(inlets, b) {
			mismatch("branch %q is a Connector:Splitter %q outlet but not a Connector:Mixer %q inlet", b, lists.Splitter, lists.Mixer)
		}

		if !hasName(listed, b) {
			mismatch("branch %q is a Connector:Splitter %q outlet but not in BranchList %q", b, lists.Splitter, lists.BranchList)
		}
	}

	for _, b := range inlets {
		if !hasName(outlets, b) {
			mismatch("branch %q is a Connector:Mixer %q inlet but not a Connector:Splitter %q outlet", b, lists.Mixer, lists.Splitter)
		}
	}

	for _, b := range []string{splitterInlet, mixerOutlet} {
		if b != "" && !hasName(listed, b) {
			mismatch("connector branch %q not in BranchList %q", b, lists.BranchList)
		}
	}

	for _, b := range listed {
		if !hasName(outlets, b) && !strings.EqualFold(b, splitterInlet) && !strings.EqualFold(b, mixerOutlet) {
			mismatch("branch %q in BranchList %q is not connected by %q or %q", b, lists.BranchList, lists.Splitter, lists.Mixer)
		}

		if _, ok := store.Lookup("Branch", b); !ok {
			errs = append(errs, &idf.Error{Type: "Branch", Key: b, Field: "BranchList " + lists.BranchList, Err: idf.ErrNotFound})
		}
	}

	return errors.Join(errs...)
}

func names(seq *Sequence) []string {
	items := seq.Items()
	out := make([]string, 0, len(items))

	for _, it := range items {
		if it.Name() != "" {
			out = append(out, it.Name())
		}
	}

	return out
}

func hasName(list []string, name string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, name) })
}

// LoopSide is one side of a plant or condenser loop.
type LoopSide struct {
	Loop  string // loop type and name, for messages
	Side  string
	Lists LoopLists
}

var loopSideFields = []struct {
	loopType string
	side     string
	branches string
	conns    string
}{
	{"PlantLoop", "supply", "Plant Side Branch List Name", "Plant Side Connector List Name"},
	{"PlantLoop", "demand", "Demand Side Branch List Name", "Demand Side Connector List Name"},
	{"CondenserLoop", "supply", "Condenser Side Branch List Name", "Condenser Side Connector List Name"},
	{"CondenserLoop", "demand", "Demand Side Branch List Name", "Demand Side Connector List Name"},
}

// LoopSides collects the branch list, splitter and mixer of every plant and
// condenser loop side in the store, read through each loop's ConnectorList.
func LoopSides(store *idf.Store) ([]LoopSide, error) {
	var sides []LoopSide

	for _, f := range loopSideFields {
		for _, loop := range store.AllOfType(f.loopType) {
			branchList, err := loop.Get(f.branches)
			if err != nil {
				return nil, err
			}

			connList, err := loop.Get(f.conns)
			if err != nil {
				return nil, err
			}

			if branchList == "" || connList == "" {
				continue
			}

			lists := LoopLists{BranchList: branchList}

			conns, err := Open(store, "ConnectorList", connList, EquipmentListLayout)
			if err != nil {
				return nil, err
			}

			for _, it := range conns.Items() {
				switch {
				case strings.EqualFold(it.Type(), "Connector:Splitter"):
					lists.Splitter = it.Name()
				case strings.EqualFold(it.Type(), "Connector:Mixer"):
					lists.Mixer = it.Name()
				}
			}

			if lists.Splitter == "" || lists.Mixer == "" {
				return nil, &idf.Error{Type: "ConnectorList", Key: connList, Err: fmt.Errorf("%w: needs one splitter and one mixer", ErrLoopLists)}
			}

			sides = append(sides, LoopSide{Loop: f.loopType + " " + loop.Key(), Side: f.side, Lists: lists})
		}
	}

	return sides, nil
}
