package plan

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/calvinalkan/idfpatch/pkg/graft"
	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// Options configures [Apply].
type Options struct {
	// Vars override the plan's variables.
	Vars map[string]string

	// Logf receives one line per step. Nil is silent.
	Logf func(format string, args ...any)
}

// Report describes an applied plan.
type Report struct {
	RunID string
	Plan  string
	Steps []StepResult
}

// Applied counts the steps that were not skipped.
func (r Report) Applied() int {
	n := 0

	for _, st := range r.Steps {
		if !st.Skipped {
			n++
		}
	}

	return n
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index   int // 1-based
	Op      string
	Target  string
	Skipped bool
	Detail  string
}

// Apply runs every step of p against store in one transaction. On error
// the store is unchanged and the error is a [*StepError].
func Apply(ctx context.Context, store *idf.Store, p *Plan, opts Options) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}

	vars := maps.Clone(p.Vars)
	if vars == nil {
		vars = map[string]string{}
	}

	maps.Copy(vars, opts.Vars)

	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	report := Report{RunID: runID.String(), Plan: p.Name}

	err = store.Update(func() error {
		for i, raw := range p.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}

			st, err := expandStep(raw, vars)
			if err != nil {
				return &StepError{Index: i + 1, Op: raw.Op, Err: err}
			}

			res := StepResult{Index: i + 1, Op: st.Op, Target: target(st)}

			// Each step runs on its own savepoint: a skipped step leaves no
			// partial edits behind.
			var detail string

			err = store.Update(func() error {
				var runErr error

				detail, runErr = run(store, st, vars)

				return runErr
			})

			switch {
			case err == nil:
				res.Detail = detail
			case st.SkipMissing && errors.Is(err, idf.ErrNotFound):
				res.Skipped = true
				res.Detail = err.Error()
			default:
				return &StepError{Index: i + 1, Op: st.Op, Err: err}
			}

			if res.Skipped {
				logf("step %d %s %s: skipped: %s", res.Index, res.Op, res.Target, res.Detail)
			} else {
				logf("step %d %s %s: %s", res.Index, res.Op, res.Target, res.Detail)
			}

			report.Steps = append(report.Steps, res)
		}

		return nil
	})
	if err != nil {
		return Report{}, err
	}

	return report, nil
}

func target(st Step) string {
	switch st.Op {
	case OpAppendToList, OpReplaceInLists:
		if st.ListName != "" {
			return st.List + " " + st.ListName
		}

		return st.List
	case OpRenameNode:
		return st.From
	case OpLoad:
		return "fragment"
	}

	if st.Type == "" {
		return st.Name
	}

	return st.Type + " " + st.Name
}

func run(store *idf.Store, st Step, vars map[string]string) (string, error) {
	switch st.Op {
	case OpReplaceComponent:
		return replaceComponent(store, st, vars)
	case OpInsertComponent, OpAppendComponent:
		return insertComponent(store, st, vars)
	case OpAddBranch:
		return addBranch(store, st, vars)
	case OpReplaceInLists:
		n, err := graft.ReplaceInLists(store, st.List, st.Type, st.Name, st.NewType, st.NewName)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%d pairs replaced", n), nil
	case OpAppendToList:
		return appendToList(store, st)
	case OpSetField:
		rec, err := store.FindByKey(st.Type, st.Name)
		if err != nil {
			return "", err
		}

		if err := rec.SetField(st.Field, st.Value); err != nil {
			return "", err
		}

		return fmt.Sprintf("%s = %q", st.Field, st.Value), nil
	case OpRenameNode:
		var refs []graft.FieldRef
		if len(st.Refs) > 0 {
			refs = fieldRefs(st.Refs)
		}

		n, err := graft.RenameNode(store, refs, st.From, st.To)
		if err != nil {
			return "", err
		}

		if n == 0 {
			return "", &idf.Error{Type: "node", Key: st.From, Err: idf.ErrNotFound}
		}

		return fmt.Sprintf("%d fields renamed to %q", n, st.To), nil
	case OpRemove:
		rec, err := store.FindByKey(st.Type, st.Name)
		if err != nil {
			return "", err
		}

		return "removed", store.Remove(rec)
	case OpLoad:
		text, err := expand("text", st.Text, templateData{Vars: vars})
		if err != nil {
			return "", err
		}

		recs, err := store.Load(text)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%d records loaded", len(recs)), nil
	}

	return "", fmt.Errorf("%w %q", ErrUnknownOp, st.Op)
}

func replaceComponent(store *idf.Store, st Step, vars map[string]string) (string, error) {
	spec := graft.ReplaceSpec{
		OldType: st.Type,
		OldName: st.Name,
		NewType: st.NewType,
		NewName: st.NewName,
		Branch:  st.Branch,
	}

	newName := st.NewName
	if newName == "" {
		newName = st.Name
	}

	if st.Template != "" {
		spec.Render = func(old *idf.Record) (string, error) {
			return expand("template", st.Template, templateData{Vars: vars, Name: newName, Type: st.NewType, Old: old})
		}
	}

	res, err := graft.Replace(store, spec)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d branch items rewritten, %d records added", res.Rewired, len(res.Records)), nil
}

func insertComponent(store *idf.Store, st Step, vars map[string]string) (string, error) {
	spec := graft.Spec{
		Branch:     st.Branch,
		Type:       st.Type,
		Name:       st.Name,
		OutletNode: st.OutletNode,
	}

	switch {
	case st.Op == OpAppendComponent:
		spec.Where = graft.AtEnd()

		if len(st.Refs) > 0 {
			spec.OutletRefs = fieldRefs(st.Refs)
		}
	case st.At != nil:
		spec.Where = graft.At(*st.At)
	default:
		spec.Where = anchor(*st.Before)
	}

	if st.Template != "" {
		spec.Render = func(n graft.Nodes) (string, error) {
			return expand("template", st.Template, templateData{Vars: vars, Name: st.Name, Type: st.Type, Inlet: n.Inlet, Outlet: n.Outlet})
		}
	}

	res, err := graft.Insert(store, spec)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("item %d, inlet %q, outlet %q, %d references rewired", res.Ordinal, res.Nodes.Inlet, res.Nodes.Outlet, res.Rewired), nil
}

func anchor(a Anchor) graft.Position {
	var (
		preds []graft.Predicate
		desc  []string
	)

	if a.Type != "" {
		preds = append(preds, graft.ByType(a.Type))
		desc = append(desc, a.Type)
	}

	if a.Name != "" {
		preds = append(preds, graft.ByName(a.Name))
		desc = append(desc, fmt.Sprintf("%q", a.Name))
	}

	if a.NameSuffix != "" {
		preds = append(preds, graft.ByNameSuffix(a.NameSuffix))
		desc = append(desc, fmt.Sprintf("*%q", a.NameSuffix))
	}

	return graft.Before(func(it graft.Item) bool {
		for _, p := range preds {
			if !p(it) {
				return false
			}
		}

		return len(preds) > 0
	}, "before "+strings.Join(desc, " "))
}

func addBranch(store *idf.Store, st Step, vars map[string]string) (string, error) {
	added := 0

	if st.Template != "" {
		text, err := expand("template", st.Template, templateData{Vars: vars, Name: st.Name, Type: "Branch"})
		if err != nil {
			return "", err
		}

		recs, err := store.Load(text)
		if err != nil {
			return "", err
		}

		added = len(recs)
	}

	lists := graft.LoopLists{BranchList: st.Loop.BranchList, Splitter: st.Loop.Splitter, Mixer: st.Loop.Mixer}

	if err := graft.AddBranchToLoop(store, lists, st.Name); err != nil {
		return "", err
	}

	if err := graft.VerifyLoop(store, lists); err != nil {
		return "", err
	}

	return fmt.Sprintf("%d records added, listed in %s, %s, %s", added, lists.BranchList, lists.Splitter, lists.Mixer), nil
}

// listLayouts maps list record types to their layout. Anything else is a
// (type, name) equipment list unless the step gives a layout.
var listLayouts = map[string]graft.Layout{
	"branchlist":          graft.NameListLayout,
	"nodelist":            graft.NameListLayout,
	"outdoorair:nodelist": {Header: 0, Group: 1},
	"connector:splitter":  graft.ConnectorLayout,
	"connector:mixer":     graft.ConnectorLayout,
}

func layoutFor(st Step) graft.Layout {
	if st.Layout != nil {
		return graft.Layout{Header: st.Layout.Header, Group: st.Layout.Group}
	}

	if l, ok := listLayouts[strings.ToLower(st.List)]; ok {
		return l
	}

	return graft.EquipmentListLayout
}

func position(where string) (graft.Position, error) {
	switch strings.ToLower(where) {
	case "", "end":
		return graft.AtEnd(), nil
	case "start":
		return graft.At(0), nil
	case "before_last":
		return graft.BeforeLast(), nil
	default:
		return graft.Position{}, fmt.Errorf("%w: where %q (want end, start or before_last)", ErrInvalidPlan, where)
	}
}

func appendToList(store *idf.Store, st Step) (string, error) {
	where, err := position(st.Where)
	if err != nil {
		return "", err
	}

	inserted, err := graft.InsertIntoList(store, st.List, st.ListName, layoutFor(st), where, st.Values...)
	if err != nil {
		return "", err
	}

	if !inserted {
		return "already listed", nil
	}

	return "listed " + strings.Join(st.Values, ", "), nil
}

func fieldRefs(refs []Ref) []graft.FieldRef {
	out := make([]graft.FieldRef, len(refs))
	for i, r := range refs {
		out[i] = graft.FieldRef{Type: r.Type, Field: r.Field}
	}

	return out
}
