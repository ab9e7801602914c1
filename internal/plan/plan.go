// Package plan runs declarative patch plans against a document.
//
// A plan is an ordered list of steps (JSONC or TOML). Each step names one
// operation from pkg/graft or pkg/idf; text fields are expanded with
// text/template before use. [Apply] runs the whole plan in one store
// transaction, so a failing step leaves the document untouched.
package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
)

// Operation names.
const (
	OpReplaceComponent = "replace_component"
	OpInsertComponent  = "insert_component"
	OpAppendComponent  = "append_component"
	OpAddBranch        = "add_branch"
	OpReplaceInLists   = "replace_in_lists"
	OpAppendToList     = "append_to_list"
	OpSetField         = "set_field"
	OpRenameNode       = "rename_node"
	OpRemove           = "remove"
	OpLoad             = "load"
)

// Ops lists every supported operation.
var Ops = []string{
	OpReplaceComponent, OpInsertComponent, OpAppendComponent, OpAddBranch,
	OpReplaceInLists, OpAppendToList, OpSetField, OpRenameNode, OpRemove, OpLoad,
}

// Plan is a named list of steps.
type Plan struct {
	Name  string            `json:"name,omitempty"  toml:"name"`
	Vars  map[string]string `json:"vars,omitempty"  toml:"vars"`
	Steps []Step            `json:"steps"           toml:"steps"`
}

// Step is one operation. Which fields apply depends on Op.
type Step struct {
	Op string `json:"op" toml:"op"`

	// SkipMissing turns "record not found" into a skipped step.
	SkipMissing bool `json:"skip_missing,omitempty" toml:"skip_missing"`

	// Target record or component.
	Type   string `json:"type,omitempty"   toml:"type"`
	Name   string `json:"name,omitempty"   toml:"name"`
	Branch string `json:"branch,omitempty" toml:"branch"`

	// replace_component, replace_in_lists
	NewType string `json:"new_type,omitempty" toml:"new_type"`
	NewName string `json:"new_name,omitempty" toml:"new_name"`

	// insert_component, append_component
	Before     *Anchor `json:"before,omitempty"      toml:"before"`
	At         *int    `json:"at,omitempty"          toml:"at"`
	OutletNode string  `json:"outlet_node,omitempty" toml:"outlet_node"`

	// Template is the IDF text of the records a step adds.
	Template string `json:"template,omitempty" toml:"template"`

	// append_to_list, replace_in_lists
	List     string      `json:"list,omitempty"      toml:"list"`
	ListName string      `json:"list_name,omitempty" toml:"list_name"`
	Values   []string    `json:"values,omitempty"    toml:"values"`
	Where    string      `json:"where,omitempty"     toml:"where"`
	Layout   *LayoutSpec `json:"layout,omitempty"    toml:"layout"`

	// add_branch
	Loop *Loop `json:"loop,omitempty" toml:"loop"`

	// set_field
	Field string `json:"field,omitempty" toml:"field"`
	Value string `json:"value,omitempty" toml:"value"`

	// rename_node; Refs also overrides the loop outlet fields of
	// append_component.
	From string `json:"from,omitempty" toml:"from"`
	To   string `json:"to,omitempty"   toml:"to"`
	Refs []Ref  `json:"refs,omitempty" toml:"refs"`

	// load
	Text string `json:"text,omitempty" toml:"text"`
}

// Anchor selects the branch item a component is inserted in front of.
type Anchor struct {
	Type       string `json:"type,omitempty"        toml:"type"`
	Name       string `json:"name,omitempty"        toml:"name"`
	NameSuffix string `json:"name_suffix,omitempty" toml:"name_suffix"`
}

// Loop names the lists of one loop side.
type Loop struct {
	BranchList string `json:"branch_list" toml:"branch_list"`
	Splitter   string `json:"splitter"    toml:"splitter"`
	Mixer      string `json:"mixer"       toml:"mixer"`
}

// LayoutSpec overrides the list layout of append_to_list.
type LayoutSpec struct {
	Header int `json:"header" toml:"header"`
	Group  int `json:"group"  toml:"group"`
}

// Ref is a (record type, field name) pair; an empty Field means every field.
type Ref struct {
	Type  string `json:"type"            toml:"type"`
	Field string `json:"field,omitempty" toml:"field"`
}

// Format is a plan file syntax.
type Format int

// Plan formats.
const (
	FormatJSON Format = iota
	FormatTOML
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q (want .json, .jsonc or .toml)", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads and validates the plan at path.
func Load(path string) (*Plan, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// Parse decodes and validates a plan. Unknown keys are rejected in both
// formats.
func Parse(data []byte, format Format) (*Plan, error) {
	var p Plan

	switch format {
	case FormatJSON:
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid JSONC: %w", ErrInvalidPlan, err)
		}

		dec := json.NewDecoder(bytes.NewReader(standardized))
		dec.DisallowUnknownFields()

		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %w", ErrInvalidPlan, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &p)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid TOML: %w", ErrInvalidPlan, err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}

			return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalidPlan, strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Validate checks that every step names a known op and carries the fields
// that op needs.
func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidPlan)
	}

	for i, st := range p.Steps {
		if err := st.validate(); err != nil {
			return &StepError{Index: i + 1, Op: st.Op, Err: err}
		}
	}

	return nil
}

func (st Step) validate() error {
	if !slices.Contains(Ops, st.Op) {
		return fmt.Errorf("%w %q (want one of %s)", ErrUnknownOp, st.Op, strings.Join(Ops, ", "))
	}

	var required map[string]string

	switch st.Op {
	case OpReplaceComponent:
		required = map[string]string{"type": st.Type, "name": st.Name, "new_type": st.NewType}
	case OpInsertComponent:
		required = map[string]string{"type": st.Type, "name": st.Name, "branch": st.Branch}

		if (st.Before == nil) == (st.At == nil) {
			return fmt.Errorf("%w: exactly one of before and at is required", ErrInvalidPlan)
		}
	case OpAppendComponent:
		required = map[string]string{"type": st.Type, "name": st.Name, "branch": st.Branch}
	case OpAddBranch:
		required = map[string]string{"name": st.Name}

		if st.Loop == nil || st.Loop.BranchList == "" || st.Loop.Splitter == "" || st.Loop.Mixer == "" {
			return fmt.Errorf("%w: loop.branch_list, loop.splitter and loop.mixer are required", ErrInvalidPlan)
		}
	case OpReplaceInLists:
		required = map[string]string{"list": st.List, "type": st.Type, "name": st.Name, "new_type": st.NewType, "new_name": st.NewName}
	case OpAppendToList:
		required = map[string]string{"list": st.List, "list_name": st.ListName}

		if len(st.Values) == 0 {
			return fmt.Errorf("%w: values are required", ErrInvalidPlan)
		}

		if _, err := position(st.Where); err != nil {
			return err
		}
	case OpSetField:
		required = map[string]string{"type": st.Type, "name": st.Name, "field": st.Field}
	case OpRenameNode:
		required = map[string]string{"from": st.From, "to": st.To}
	case OpRemove:
		required = map[string]string{"type": st.Type, "name": st.Name}
	case OpLoad:
		required = map[string]string{"text": st.Text}
	}

	var missing []string

	for k, v := range required {
		if v == "" {
			missing = append(missing, k)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)

		return fmt.Errorf("%w: missing %s", ErrInvalidPlan, strings.Join(missing, ", "))
	}

	return nil
}
