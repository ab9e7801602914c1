package idf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxIDDLine = 1 << 20

// ParseIDD builds a [Schema] from an EnergyPlus input data dictionary.
//
// Only what the engine needs is read: class names, the "\field" name of each
// A/N slot, "\extensible:N" with its "\begin-extensible" marker, and
// whether the first field is a "Name" (which makes the type keyed). Every
// other directive is ignored.
func ParseIDD(r io.Reader) (*Schema, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxIDDLine)

	schema := NewSchema()

	var (
		cur     *ObjectSchema
		lineNum int
	)

	flush := func() {
		if cur == nil {
			return
		}

		cur.Unkeyed = len(cur.Fields) == 0 || !strings.EqualFold(cur.Fields[0], "Name")
		if cur.ExtensibleStart < 0 {
			cur.ExtensibleSize = 0
			cur.ExtensibleStart = 0
		}

		schema.Add(*cur)
		cur = nil
	}

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '!' {
			continue
		}

		if line[0] == '\\' {
			if cur != nil {
				if err := applyIDDDirective(cur, line); err != nil {
					return nil, &ParseError{Line: lineNum, Text: scanner.Text(), Msg: err.Error()}
				}
			}

			continue
		}

		head, directive, _ := strings.Cut(line, `\`)

		if isIDDSlotLine(head) {
			if cur == nil {
				return nil, &ParseError{Line: lineNum, Text: scanner.Text(), Msg: "field before class name"}
			}

			for _, tok := range strings.FieldsFunc(head, isIDDSep) {
				if tok = strings.TrimSpace(tok); tok != "" {
					cur.Fields = append(cur.Fields, "")
				}
			}
		} else {
			flush()

			name := head
			if i := strings.IndexAny(head, ",;"); i >= 0 {
				name = head[:i]
			}

			name = strings.TrimSpace(name)
			if name == "" {
				return nil, &ParseError{Line: lineNum, Text: scanner.Text(), Msg: "empty class name"}
			}

			cur = &ObjectSchema{Type: name, ExtensibleStart: -1}
		}

		if directive != "" && cur != nil {
			if err := applyIDDDirective(cur, `\`+directive); err != nil {
				return nil, &ParseError{Line: lineNum, Text: scanner.Text(), Msg: err.Error()}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading idd: %w", err)
	}

	flush()

	return schema, nil
}

func applyIDDDirective(obj *ObjectSchema, line string) error {
	word, rest, _ := strings.Cut(strings.TrimPrefix(line, `\`), " ")
	rest = strings.TrimSpace(rest)

	switch {
	case word == "field":
		if len(obj.Fields) == 0 {
			return fmt.Errorf(`\field before any slot in %s`, obj.Type)
		}

		obj.Fields[len(obj.Fields)-1] = rest
	case word == "begin-extensible":
		if len(obj.Fields) > 0 && obj.ExtensibleStart < 0 {
			obj.ExtensibleStart = len(obj.Fields) - 1
		}
	case strings.HasPrefix(word, "extensible:"):
		n, err := strconv.Atoi(strings.TrimPrefix(word, "extensible:"))
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %q", word)
		}

		obj.ExtensibleSize = n
	}

	return nil
}

// isIDDSlotLine reports whether s starts with an A1/N12 style slot.
func isIDDSlotLine(s string) bool {
	if len(s) < 2 || (s[0] != 'A' && s[0] != 'N') {
		return false
	}

	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	if i == 1 {
		return false
	}

	rest := strings.TrimLeft(s[i:], " \t")

	return rest != "" && (rest[0] == ',' || rest[0] == ';')
}

func isIDDSep(r rune) bool {
	return r == ',' || r == ';'
}
