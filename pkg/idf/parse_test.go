package idf_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

type parsed struct {
	Type   string
	Fields []string
}

func parseAll(t *testing.T, text string) []parsed {
	t.Helper()

	recs, err := idf.Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out := make([]parsed, 0, len(recs))
	for _, r := range recs {
		out = append(out, parsed{Type: r.Type(), Fields: r.Fields()})
	}

	return out
}

func Test_Parse_Returns_Records_When_Input_Is_Well_Formed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []parsed
	}{
		{
			name: "empty input",
			text: "",
			want: []parsed{},
		},
		{
			name: "only comments and blank lines",
			text: "! header\n\n   ! another\n",
			want: []parsed{},
		},
		{
			name: "multi line record with comments",
			text: "Pipe:Adiabatic,\n  P1,            !- Name\n  In,            !- Inlet Node Name\n  Out;           !- Outlet Node Name\n",
			want: []parsed{{Type: "Pipe:Adiabatic", Fields: []string{"P1", "In", "Out"}}},
		},
		{
			name: "two records on one line",
			text: "Version,9.4; Timestep,4;",
			want: []parsed{
				{Type: "Version", Fields: []string{"9.4"}},
				{Type: "Timestep", Fields: []string{"4"}},
			},
		},
		{
			name: "empty fields are kept",
			text: "Branch,B1,,Pipe:Adiabatic,P1,In,Out;",
			want: []parsed{{Type: "Branch", Fields: []string{"B1", "", "Pipe:Adiabatic", "P1", "In", "Out"}}},
		},
		{
			name: "trailing separator yields trailing empty field",
			text: "NodeList,NL,A,;",
			want: []parsed{{Type: "NodeList", Fields: []string{"NL", "A", ""}}},
		},
		{
			name: "record without fields",
			text: "Lead Input;",
			want: []parsed{{Type: "Lead Input", Fields: nil}},
		},
		{
			name: "inner whitespace kept outer trimmed",
			text: "Pipe:Outdoor,  HW Loop Pipe  ,\tCon 1 ;",
			want: []parsed{{Type: "Pipe:Outdoor", Fields: []string{"HW Loop Pipe", "Con 1"}}},
		},
		{
			name: "separator on the next line",
			text: "Version,\n  9.4\n  ;\n",
			want: []parsed{{Type: "Version", Fields: []string{"9.4"}}},
		},
		{
			name: "crlf line endings",
			text: "Version,\r\n  9.4;\r\n",
			want: []parsed{{Type: "Version", Fields: []string{"9.4"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseAll(t, tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Parse_Returns_ParseError_When_Input_Is_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantLine int
	}{
		{name: "unterminated record", text: "Version,\n  9.4,\n", wantLine: 1},
		{name: "unterminated after a good record", text: "Version,9.4;\n\nTimestep,\n 4", wantLine: 3},
		{name: "missing type", text: "Version,9.4;\n , A;", wantLine: 2},
		{name: "bare terminator", text: ";", wantLine: 1},
		{name: "value broken across lines", text: "Pipe:Adiabatic,\n  P1\n  In;\n", wantLine: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := idf.Parse(tt.text)
			if err == nil {
				t.Fatal("expected error")
			}

			if !errors.Is(err, idf.ErrParse) {
				t.Fatalf("err = %v, want ErrParse", err)
			}

			var pErr *idf.ParseError
			if !errors.As(err, &pErr) {
				t.Fatalf("err = %T, want *idf.ParseError", err)
			}

			if pErr.Line != tt.wantLine {
				t.Fatalf("line = %d, want %d (%v)", pErr.Line, tt.wantLine, err)
			}
		})
	}
}
