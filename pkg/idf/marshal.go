package idf

import (
	"io"
	"strings"
)

const (
	defaultFieldIndent = "  "
	defaultCommentCol  = 29
)

// MarshalOption configures [Store.Marshal].
type MarshalOption func(*marshalOptions)

type marshalOptions struct {
	indent      string // prefix of the type line
	fieldIndent string // prefix of each field line
	inline      bool   // whole record on one line
	comments    bool   // "!- Field Name" after each named field
	commentCol  int
}

// WithIndent sets the prefix written before every field line. The default
// is two spaces.
func WithIndent(indent string) MarshalOption {
	return func(o *marshalOptions) {
		o.fieldIndent = indent
	}
}

// WithFieldComments toggles "!- Field Name" comments after each field the
// store's resolver can name. Off by default; it needs a resolver that
// implements [FieldNamer].
func WithFieldComments(on bool) MarshalOption {
	return func(o *marshalOptions) {
		o.comments = on
	}
}

// Marshal renders the document in record order. Records are separated by a
// blank line and field values are written verbatim, so parsing the output
// yields the same types and fields.
func (s *Store) Marshal(opts ...MarshalOption) string {
	o, namer := s.marshalOptions(opts)

	var b strings.Builder

	for i, r := range s.records {
		if i > 0 {
			b.WriteByte('\n')
		}

		writeRecordNamed(&b, r, o, namer)
		b.WriteByte('\n')
	}

	return b.String()
}

// MarshalRecord renders a single record the way [Store.Marshal] does,
// without the trailing newline.
func (s *Store) MarshalRecord(r *Record, opts ...MarshalOption) string {
	o, namer := s.marshalOptions(opts)

	var b strings.Builder

	writeRecordNamed(&b, r, o, namer)

	return b.String()
}

func (s *Store) marshalOptions(opts []MarshalOption) (marshalOptions, FieldNamer) {
	o := marshalOptions{fieldIndent: defaultFieldIndent, commentCol: defaultCommentCol}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(&o)
	}

	var namer FieldNamer
	if o.comments {
		namer, _ = s.resolver.(FieldNamer)
	}

	return o, namer
}

// WriteTo writes [Store.Marshal] output with default options to w.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.Marshal())

	return int64(n), err
}

func writeRecord(b *strings.Builder, r *Record, o marshalOptions) {
	writeRecordNamed(b, r, o, nil)
}

func writeRecordNamed(b *strings.Builder, r *Record, o marshalOptions, namer FieldNamer) {
	b.WriteString(o.indent)
	b.WriteString(r.typ)

	if len(r.fields) == 0 {
		b.WriteByte(';')

		return
	}

	b.WriteByte(',')

	for i, v := range r.fields {
		sep := byte(',')
		if i == len(r.fields)-1 {
			sep = ';'
		}

		if !o.inline {
			b.WriteByte('\n')
		}

		start := b.Len()

		b.WriteString(o.fieldIndent)
		b.WriteString(v)
		b.WriteByte(sep)

		if namer == nil || o.inline {
			continue
		}

		name, ok := namer.FieldName(r.typ, i)
		if !ok {
			continue
		}

		pad := o.commentCol - (b.Len() - start)
		if pad < 2 {
			pad = 2
		}

		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString("!- ")
		b.WriteString(name)
	}
}
