package cli

import (
	"bytes"
	"strings"
	"testing"
)

func Test_IO_Prints_Warnings_Before_And_After_Output_When_Warned(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut, false)
	o.Warn("node \"X\" has one end", "connect it")
	o.Println("result")

	if got, want := o.Finish(), 1; got != want {
		t.Fatalf("exit = %d, want %d", got, want)
	}

	if got, want := out.String(), "result\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}

	line := "warning: node \"X\" has one end: connect it\n"
	if got, want := errOut.String(), line+line; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}
}

func Test_IO_Finish_Returns_Zero_When_No_Warnings(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut, false)
	o.Printf("%d records\n", 3)

	if got := o.Finish(); got != 0 {
		t.Fatalf("exit = %d, want 0", got)
	}

	if errOut.Len() != 0 {
		t.Fatalf("stderr = %q, want empty", errOut.String())
	}
}

func Test_IO_Colors_Prefix_When_Colored(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut, true)
	o.Error(errUnknownCommand)

	if !strings.Contains(errOut.String(), "\x1b[") {
		t.Fatalf("stderr = %q, want ANSI color", errOut.String())
	}

	if !strings.Contains(errOut.String(), "unknown command") {
		t.Fatalf("stderr = %q, want message", errOut.String())
	}
}

func Test_SplitArgs_Groups_Quoted_Words_When_Line_Has_Quotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want []string
	}{
		{`ls`, []string{"ls"}},
		{`show  Pipe:Adiabatic   "Bypass Pipe"`, []string{"show", "Pipe:Adiabatic", "Bypass Pipe"}},
		{`set T "K" F ""`, []string{"set", "T", "K", "F", ""}},
		{`set T "say \"hi\""`, []string{"set", "T", `say "hi"`}},
	}

	for _, tt := range tests {
		got, err := splitArgs(tt.line)
		if err != nil {
			t.Fatalf("splitArgs(%q): %v", tt.line, err)
		}

		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Fatalf("splitArgs(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}

	if _, err := splitArgs(`show "open`); err == nil {
		t.Fatal("want error for unterminated quote")
	}
}
