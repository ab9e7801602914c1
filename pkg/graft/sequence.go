package graft

import (
	"fmt"
	"strings"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// Layout describes how a list-like record lays out its items: Header fields
// first, then repeating groups of Group fields.
type Layout struct {
	Header int
	Group  int
}

var (
	// BranchLayout is Name, Pressure Drop Curve Name, then (type, name,
	// inlet node, outlet node) per component.
	BranchLayout = Layout{Header: 2, Group: 4}

	// EquipmentListLayout is Name, then (type, name) per component.
	EquipmentListLayout = Layout{Header: 1, Group: 2}

	// NameListLayout is Name, then one name per item (BranchList, NodeList).
	NameListLayout = Layout{Header: 1, Group: 1}

	// ConnectorLayout is Name, the inlet (splitter) or outlet (mixer)
	// branch, then one branch name per item.
	ConnectorLayout = Layout{Header: 2, Group: 1}
)

// Branch quadruple slots.
const (
	SlotType   = 0
	SlotName   = 1
	SlotInlet  = 2
	SlotOutlet = 3
)

// Item is a copy of one group of a [Sequence].
type Item struct {
	Ordinal int
	Values  []string
}

// Type returns the component type, or "" for single-value items.
func (it Item) Type() string {
	if len(it.Values) < 2 {
		return ""
	}

	return it.Values[SlotType]
}

// Name returns the component or list entry name.
func (it Item) Name() string {
	switch len(it.Values) {
	case 0:
		return ""
	case 1:
		return it.Values[0]
	default:
		return it.Values[SlotName]
	}
}

// Inlet returns the inlet node of a branch item.
func (it Item) Inlet() string {
	if len(it.Values) <= SlotInlet {
		return ""
	}

	return it.Values[SlotInlet]
}

// Outlet returns the outlet node of a branch item.
func (it Item) Outlet() string {
	if len(it.Values) <= SlotOutlet {
		return ""
	}

	return it.Values[SlotOutlet]
}

// Predicate selects an item.
type Predicate func(Item) bool

// ByType matches items of a component type.
func ByType(typ string) Predicate {
	return func(it Item) bool { return strings.EqualFold(it.Type(), typ) }
}

// ByName matches items by name.
func ByName(name string) Predicate {
	return func(it Item) bool { return strings.EqualFold(it.Name(), name) }
}

// ByNameSuffix matches items whose name ends with suffix.
func ByNameSuffix(suffix string) Predicate {
	suffix = strings.ToLower(suffix)

	return func(it Item) bool { return strings.HasSuffix(strings.ToLower(it.Name()), suffix) }
}

// ByTypeAndName matches one (type, name) reference.
func ByTypeAndName(typ, name string) Predicate {
	return func(it Item) bool {
		return strings.EqualFold(it.Type(), typ) && strings.EqualFold(it.Name(), name)
	}
}

// DownstreamOf matches the item fed by node.
func DownstreamOf(node string) Predicate {
	return func(it Item) bool { return it.Inlet() != "" && strings.EqualFold(it.Inlet(), node) }
}

// Sequence is an item view over a list-like record.
//
// It holds no positions of its own: every call reads the record as it is
// now, so a Sequence stays correct across edits made through it or directly
// on the record.
type Sequence struct {
	rec    *idf.Record
	layout Layout
}

// Open returns the sequence view of the record (recordType, name).
func Open(store *idf.Store, recordType, name string, layout Layout) (*Sequence, error) {
	if layout.Group <= 0 || layout.Header < 0 {
		return nil, fmt.Errorf("open %s: invalid layout %+v", recordType, layout)
	}

	rec, err := store.FindByKey(recordType, name)
	if err != nil {
		return nil, err
	}

	return &Sequence{rec: rec, layout: layout}, nil
}

// OpenBranch opens a Branch record.
func OpenBranch(store *idf.Store, name string) (*Sequence, error) {
	return Open(store, "Branch", name, BranchLayout)
}

// NewSequence wraps a record the caller already holds.
func NewSequence(rec *idf.Record, layout Layout) *Sequence {
	return &Sequence{rec: rec, layout: layout}
}

// Record returns the underlying record.
func (s *Sequence) Record() *idf.Record {
	return s.rec
}

// Layout returns the sequence layout.
func (s *Sequence) Layout() Layout {
	return s.layout
}

// Len returns the number of items. Trailing groups whose fields are all
// blank do not count.
func (s *Sequence) Len() int {
	n := s.rec.Len() - s.layout.Header
	if n <= 0 {
		return 0
	}

	items := (n + s.layout.Group - 1) / s.layout.Group

	for items > 0 && s.blank(items-1) {
		items--
	}

	return items
}

func (s *Sequence) blank(ordinal int) bool {
	start := s.layout.Header + ordinal*s.layout.Group

	for i := start; i < start+s.layout.Group; i++ {
		if strings.TrimSpace(s.rec.Field(i)) != "" {
			return false
		}
	}

	return true
}

// Items returns every item in order.
func (s *Sequence) Items() []Item {
	n := s.Len()
	out := make([]Item, 0, n)

	for i := range n {
		out = append(out, s.item(i))
	}

	return out
}

// Item returns the item at ordinal.
func (s *Sequence) Item(ordinal int) (Item, error) {
	if ordinal < 0 || ordinal >= s.Len() {
		return Item{}, s.errorf(idf.ErrFieldIndex, "item %d of %d", ordinal, s.Len())
	}

	return s.item(ordinal), nil
}

func (s *Sequence) item(ordinal int) Item {
	start := s.layout.Header + ordinal*s.layout.Group
	values := make([]string, s.layout.Group)

	for i := range values {
		values[i] = s.rec.Field(start + i)
	}

	return Item{Ordinal: ordinal, Values: values}
}

// Find returns the first item matching pred.
func (s *Sequence) Find(pred Predicate) (Item, bool) {
	for _, it := range s.Items() {
		if pred(it) {
			return it, true
		}
	}

	return Item{}, false
}

// FieldIndex returns the record field index of slot within the item at
// ordinal. ordinal may equal Len() to address the next item.
func (s *Sequence) FieldIndex(ordinal, slot int) (int, error) {
	if ordinal < 0 || ordinal > s.Len() || slot < 0 || slot >= s.layout.Group {
		return 0, s.errorf(idf.ErrFieldIndex, "item %d slot %d", ordinal, slot)
	}

	return s.layout.Header + ordinal*s.layout.Group + slot, nil
}

// InsertItem inserts one item before ordinal; ordinal == Len() appends.
// Every later item moves up by one ordinal.
func (s *Sequence) InsertItem(ordinal int, values ...string) error {
	if len(values) != s.layout.Group {
		return s.errorf(idf.ErrFieldIndex, "item needs %d values, got %d", s.layout.Group, len(values))
	}

	n := s.Len()
	if ordinal < 0 || ordinal > n {
		return s.errorf(idf.ErrFieldIndex, "insert at item %d of %d", ordinal, n)
	}

	pos := s.layout.Header + ordinal*s.layout.Group
	if pos > s.rec.Len() {
		// Header shorter than the layout: pad it first.
		pad := make([]string, pos-s.rec.Len())
		if err := s.rec.AppendFields(pad...); err != nil {
			return err
		}
	}

	return s.rec.InsertFields(pos, values...)
}

// AppendItem adds an item after the last one.
func (s *Sequence) AppendItem(values ...string) error {
	return s.InsertItem(s.Len(), values...)
}

// RemoveItem removes the item at ordinal.
func (s *Sequence) RemoveItem(ordinal int) error {
	if ordinal < 0 || ordinal >= s.Len() {
		return s.errorf(idf.ErrFieldIndex, "remove item %d of %d", ordinal, s.Len())
	}

	return s.rec.RemoveFields(s.layout.Header+ordinal*s.layout.Group, s.layout.Group)
}

// SetSlot overwrites one slot of an existing item.
func (s *Sequence) SetSlot(ordinal, slot int, value string) error {
	if ordinal >= s.Len() {
		return s.errorf(idf.ErrFieldIndex, "item %d of %d", ordinal, s.Len())
	}

	i, err := s.FieldIndex(ordinal, slot)
	if err != nil {
		return err
	}

	if i >= s.rec.Len() {
		// A short last group: pad up to the slot.
		pad := make([]string, i+1-s.rec.Len())
		if err := s.rec.AppendFields(pad...); err != nil {
			return err
		}
	}

	return s.rec.Set(i, value)
}

func (s *Sequence) errorf(err error, format string, args ...any) error {
	return &idf.Error{
		Type:  s.rec.Type(),
		Key:   s.rec.Key(),
		Field: fmt.Sprintf(format, args...),
		Err:   err,
	}
}
