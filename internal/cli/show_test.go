package cli_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/idfpatch/internal/cli"
)

func Test_Show_Prints_Record_When_Type_And_Key_Differ_In_Case(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	stdout := c.MustRun("show", "model.idf", "pipe:adiabatic", "BYPASS PIPE")

	want := "Pipe:Adiabatic,\n" +
		"  Bypass Pipe,               !- Name\n" +
		"  Bypass In,                 !- Inlet Node Name\n" +
		"  Bypass Out;                !- Outlet Node Name"
	if diff := cmp.Diff(want, stdout); diff != "" {
		t.Fatalf("show mismatch (-want +got):\n%s", diff)
	}
}

func Test_Show_Fails_When_Record_Is_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	cli.AssertContains(t, c.MustFail("show", "model.idf", "Pipe:Adiabatic", "Nope"), "record not found")
	cli.AssertContains(t, c.MustFail("show", "model.idf", "Pipe:Adiabatic"), "record key is required")
	cli.AssertContains(t, c.MustFail("show", "missing.idf", "Pipe:Adiabatic", "Nope"), "read document")
}

func Test_Ls_Counts_Types_When_No_Type_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	stdout := c.MustRun("ls", "model.idf")

	want := []string{
		"PlantLoop\t1",
		"BranchList\t1",
		"Connector:Splitter\t1",
		"Connector:Mixer\t1",
		"ConnectorList\t1",
		"Branch\t3",
		"Pipe:Adiabatic\t3",
	}
	if diff := cmp.Diff(want, strings.Split(stdout, "\n")); diff != "" {
		t.Fatalf("ls mismatch (-want +got):\n%s", diff)
	}
}

func Test_Ls_Lists_Keys_When_Type_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	stdout := c.MustRun("ls", "model.idf", "branch")

	want := []string{"HW Demand Inlet Branch", "HW Demand Bypass Branch", "HW Demand Outlet Branch"}
	if diff := cmp.Diff(want, strings.Split(stdout, "\n")); diff != "" {
		t.Fatalf("ls mismatch (-want +got):\n%s", diff)
	}
}
