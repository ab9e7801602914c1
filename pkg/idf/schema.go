package idf

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Resolver maps a field name to its position within a record type.
//
// The engine only depends on this contract. How the mapping is built (IDD
// file, Go table, anything else) is up to the implementation. Unmapped names
// must return an error matching [ErrUnknownField].
type Resolver interface {
	FieldIndex(recordType, fieldName string) (int, error)
}

// FieldNamer is optionally implemented by a [Resolver] to name positions.
// The serializer uses it for "!- Field Name" comments.
type FieldNamer interface {
	FieldName(recordType string, index int) (string, bool)
}

// KeyPolicy is optionally implemented by a [Resolver] to declare which record
// types are keyed by field 0. Unkeyed types (Version, Output:Variable, ...)
// are never key-indexed and never trigger [ErrDuplicateKey].
type KeyPolicy interface {
	Keyed(recordType string) bool
}

// ObjectSchema describes the field layout of one record type.
type ObjectSchema struct {
	// Type is the record type name.
	Type string

	// Fields lists field names by position. It may stop short of the
	// record's real length when the type has extensible groups.
	Fields []string

	// ExtensibleStart is the position of the first field of the first
	// extensible group. Only used when ExtensibleSize > 0.
	ExtensibleStart int

	// ExtensibleSize is the number of fields per repeating group
	// ("Component 1 Object Type", "Component 1 Name", ...).
	ExtensibleSize int

	// Unkeyed marks types whose field 0 is not a unique name.
	Unkeyed bool
}

// Schema is an in-memory [Resolver], [FieldNamer] and [KeyPolicy].
// The zero value is not usable; use [NewSchema], [BuiltinSchema] or [ParseIDD].
type Schema struct {
	objects map[string]*ObjectSchema
}

// NewSchema returns a schema holding the given object layouts.
func NewSchema(objects ...ObjectSchema) *Schema {
	s := &Schema{objects: make(map[string]*ObjectSchema, len(objects))}

	for _, obj := range objects {
		s.Add(obj)
	}

	return s
}

// Add registers or replaces the layout of obj.Type.
func (s *Schema) Add(obj ObjectSchema) {
	obj.Fields = slices.Clone(obj.Fields)
	s.objects[fold(obj.Type)] = &obj
}

// Merge copies every layout of other into s; other wins on conflicts.
func (s *Schema) Merge(other *Schema) {
	if other == nil {
		return
	}

	for k, obj := range other.objects {
		cp := *obj
		cp.Fields = slices.Clone(obj.Fields)
		s.objects[k] = &cp
	}
}

// Object returns the layout of a record type.
func (s *Schema) Object(recordType string) (ObjectSchema, bool) {
	obj, ok := s.objects[fold(recordType)]
	if !ok {
		return ObjectSchema{}, false
	}

	return *obj, true
}

// Len returns the number of known record types.
func (s *Schema) Len() int {
	return len(s.objects)
}

// FieldIndex implements [Resolver].
//
// Names are matched case-insensitively. Names beyond the listed fields of
// an extensible type are resolved arithmetically: "Component 7 Name" maps to
// the "Component 1 Name" slot of the seventh group.
func (s *Schema) FieldIndex(recordType, fieldName string) (int, error) {
	obj, ok := s.objects[fold(recordType)]
	if !ok {
		return 0, &Error{Type: recordType, Field: fieldName, Err: ErrUnknownField}
	}

	for i, name := range obj.Fields {
		if strings.EqualFold(name, fieldName) {
			return i, nil
		}
	}

	if obj.ExtensibleSize > 0 {
		template, n, ok := groupTemplate(fieldName)
		if ok && n > 0 {
			end := min(obj.ExtensibleStart+obj.ExtensibleSize, len(obj.Fields))
			for i := obj.ExtensibleStart; i < end; i++ {
				if strings.EqualFold(obj.Fields[i], template) {
					return obj.ExtensibleStart + (n-1)*obj.ExtensibleSize + (i - obj.ExtensibleStart), nil
				}
			}
		}
	}

	return 0, &Error{Type: recordType, Field: fieldName, Err: ErrUnknownField}
}

// FieldName implements [FieldNamer].
func (s *Schema) FieldName(recordType string, index int) (string, bool) {
	obj, ok := s.objects[fold(recordType)]
	if !ok || index < 0 {
		return "", false
	}

	if index < len(obj.Fields) {
		return obj.Fields[index], true
	}

	if obj.ExtensibleSize <= 0 || index < obj.ExtensibleStart {
		return "", false
	}

	rel := index - obj.ExtensibleStart
	slot := obj.ExtensibleStart + rel%obj.ExtensibleSize

	if slot >= len(obj.Fields) {
		return "", false
	}

	return renumber(obj.Fields[slot], rel/obj.ExtensibleSize+1)
}

// Keyed implements [KeyPolicy]. Unknown types are keyed.
func (s *Schema) Keyed(recordType string) bool {
	obj, ok := s.objects[fold(recordType)]
	if !ok {
		return true
	}

	return !obj.Unkeyed
}

// groupTemplate replaces the first number in name with 1 and returns it.
func groupTemplate(name string) (string, int, bool) {
	start, end := firstNumber(name)
	if start < 0 {
		return "", 0, false
	}

	n, err := strconv.Atoi(name[start:end])
	if err != nil {
		return "", 0, false
	}

	return name[:start] + "1" + name[end:], n, true
}

// renumber replaces the leading "1" group counter in a template name.
func renumber(template string, n int) (string, bool) {
	start, end := firstNumber(template)
	if start < 0 || template[start:end] != "1" {
		return "", false
	}

	return template[:start] + strconv.Itoa(n) + template[end:], true
}

func firstNumber(s string) (int, int) {
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return -1, -1
	}

	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	return start, end
}

// Fold returns the case-insensitive identity of a type name, key or node
// name. Two names are the same when their folds are equal.
func Fold(s string) string {
	return fold(s)
}

func fold(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return cases.Fold().String(s)
		}
	}

	return strings.ToLower(s)
}
