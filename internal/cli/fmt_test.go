package cli_test

import (
	"testing"

	"github.com/calvinalkan/idfpatch/internal/cli"
)

func Test_Fmt_Prints_Canonical_Document_When_Not_Writing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	stdout := c.MustRun("fmt", "model.idf")

	cli.AssertContains(t, stdout, "PlantLoop,\n  HW Loop,")
	cli.AssertContains(t, stdout, "!- Plant Side Inlet Node Name")
	cli.AssertContains(t, stdout, "Pipe:Adiabatic,\n  Outlet Pipe,")
	cli.AssertNotContains(t, stdout, "hot water demand side")

	if got := c.ReadFile("model.idf"); got != loopIDF {
		t.Fatalf("document changed without -w:\n%s", got)
	}
}

func Test_Fmt_Omits_Comments_When_Disabled_In_Config(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile(".idfpatch.json", `{"field_comments": false, "indent": 4}`)

	stdout := c.MustRun("fmt", "model.idf")

	cli.AssertNotContains(t, stdout, "!-")
	cli.AssertContains(t, stdout, "PlantLoop,\n    HW Loop,\n")

	stdout = c.MustRun("fmt", "--comments", "model.idf")
	cli.AssertContains(t, stdout, "!- Name")
}

func Test_Fmt_Rewrites_Document_When_Write_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	stdout := c.MustRun("fmt", "-w", "model.idf")
	cli.AssertContains(t, stdout, "wrote model.idf")

	written := c.ReadFile("model.idf")
	cli.AssertContains(t, written, "!- Demand Side Branch List Name")

	// Formatting is stable.
	again := c.MustRun("fmt", "model.idf")
	if again+"\n" != written {
		t.Fatalf("second fmt differs:\n--- written\n%s\n--- again\n%s", written, again)
	}
}

func Test_Fmt_Reports_Line_When_Document_Is_Malformed(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("broken.idf", "Version,9.6;\nPipe:Adiabatic,P1,In,Out\n")

	stderr := c.MustFail("fmt", "broken.idf")

	cli.AssertContains(t, stderr, "broken.idf")
}
