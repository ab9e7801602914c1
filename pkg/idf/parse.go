package idf

import (
	"strings"
)

// Parse reads records of the form
//
//	Type, field1, field2, ..., fieldN;
//
// Records may span lines and several records may share a line. A '!' starts
// a comment that runs to the end of the line. Blank lines are ignored, values
// are trimmed, and empty values (",,") are kept. A separator directly before
// the terminating ';' yields a trailing empty field, so a record always has
// one more field than it has commas after the type.
//
// Malformed input (a record without a type, a record that never reaches its
// ';', or a value that continues on a new line without a separator) fails
// with a *ParseError that matches [ErrParse].
func Parse(text string) ([]*Record, error) {
	p := parser{src: text, line: 1}

	return p.parse()
}

type parser struct {
	src string

	line    int // current line, 1-based
	col     int // column of the last consumed byte, 1-based
	lineOff int // offset of the current line start

	recs []*Record

	// current record
	open      bool
	startLine int
	typ       string
	haveType  bool
	fields    []string

	// current value
	tok      strings.Builder
	tokLine  int // line where the value's content began, 0 if none yet
	tokBreak bool
}

func (p *parser) parse() ([]*Record, error) {
	for i := 0; i < len(p.src); i++ {
		c := p.src[i]
		p.col = i - p.lineOff + 1

		switch c {
		case '!':
			for i+1 < len(p.src) && p.src[i+1] != '\n' {
				i++
			}
		case '\n':
			if p.tokLine != 0 {
				p.tokBreak = true
			}

			p.line++
			p.lineOff = i + 1
		case ',', ';':
			if !p.open {
				p.begin()
			}

			if err := p.endValue(); err != nil {
				return nil, err
			}

			if c == ';' {
				p.endRecord()
			}
		case ' ', '\t', '\r', '\f', '\v':
			if p.tokLine != 0 && !p.tokBreak {
				p.tok.WriteByte(c)
			}
		default:
			if !p.open {
				p.begin()
			}

			if p.tokBreak {
				return nil, p.errorf(p.line, "value continues on a new line without ',' or ';'")
			}

			if p.tokLine == 0 {
				p.tokLine = p.line
			}

			p.tok.WriteByte(c)
		}
	}

	if p.open {
		return nil, p.errorf(p.startLine, "unterminated record: missing ';'")
	}

	return p.recs, nil
}

func (p *parser) begin() {
	p.open = true
	p.startLine = p.line
}

func (p *parser) endValue() error {
	value := strings.TrimSpace(p.tok.String())
	p.tok.Reset()
	p.tokLine = 0
	p.tokBreak = false

	if !p.haveType {
		if value == "" {
			return p.errorf(p.line, "missing record type")
		}

		p.typ = value
		p.haveType = true

		return nil
	}

	p.fields = append(p.fields, value)

	return nil
}

func (p *parser) endRecord() {
	p.recs = append(p.recs, &Record{typ: p.typ, fields: p.fields})

	p.open = false
	p.typ = ""
	p.haveType = false
	p.fields = nil
}

func (p *parser) errorf(line int, msg string) *ParseError {
	col := 0
	if line == p.line {
		col = p.col
	}

	return &ParseError{Line: line, Col: col, Text: lineText(p.src, line), Msg: msg}
}

// lineText returns line n (1-based) of src without its newline.
func lineText(src string, n int) string {
	for i := 1; i < n; i++ {
		nl := strings.IndexByte(src, '\n')
		if nl < 0 {
			return ""
		}

		src = src[nl+1:]
	}

	if nl := strings.IndexByte(src, '\n'); nl >= 0 {
		src = src[:nl]
	}

	return strings.TrimRight(src, "\r")
}
