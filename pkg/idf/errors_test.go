package idf_test

import (
	"errors"
	"testing"

	"github.com/calvinalkan/idfpatch/pkg/idf"
)

func Test_Error_Formats_Correctly_When_Various_Inputs(t *testing.T) {
	t.Parallel()

	base := errors.New("something failed")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  (*idf.Error)(nil),
			want: "",
		},
		{
			name: "bare cause",
			err:  &idf.Error{Err: base},
			want: "something failed",
		},
		{
			name: "with type",
			err:  &idf.Error{Type: "Branch", Err: base},
			want: "something failed (record_type=Branch)",
		},
		{
			name: "with type key and field",
			err:  &idf.Error{Type: "Branch", Key: "B1", Field: "Component 1 Name", Err: base},
			want: "something failed (record_type=Branch key=B1 field=Component 1 Name)",
		},
		{
			name: "context without cause",
			err:  &idf.Error{Key: "B1"},
			want: "(key=B1)",
		},
		{
			name: "parse error with text",
			err:  &idf.ParseError{Line: 3, Col: 7, Text: "  P1", Msg: "unterminated record: missing ';'"},
			want: `parse error: line 3 col 7: unterminated record: missing ';': "  P1"`,
		},
		{
			name: "parse error without column",
			err:  &idf.ParseError{Line: 1, Msg: "missing record type"},
			want: "parse error: line 1: missing record type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_Error_Unwraps_To_Sentinel_When_Wrapped(t *testing.T) {
	t.Parallel()

	err := &idf.Error{Type: "Branch", Key: "B1", Err: idf.ErrNotFound}

	if !errors.Is(err, idf.ErrNotFound) {
		t.Fatal("errors.Is(ErrNotFound) = false")
	}

	if errors.Is(err, idf.ErrDuplicateKey) {
		t.Fatal("errors.Is(ErrDuplicateKey) = true")
	}
}
