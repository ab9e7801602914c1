package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/calvinalkan/idfpatch/internal/cli"
	"github.com/calvinalkan/idfpatch/pkg/idf"
)

const loopIDF = `! hot water demand side
PlantLoop,HW Loop,Water,,HW Loop Operation,HW Supply Outlet,100,10,autosize,0,autocalculate,
  HW Supply Inlet,HW Supply Outlet,,,HW Demand Inlet,HW Demand Outlet,HW Demand Branches,HW Demand Connectors,Optimal;
BranchList,HW Demand Branches,HW Demand Inlet Branch,HW Demand Bypass Branch,HW Demand Outlet Branch;
Connector:Splitter,HW Demand Splitter,HW Demand Inlet Branch,HW Demand Bypass Branch;
Connector:Mixer,HW Demand Mixer,HW Demand Outlet Branch,HW Demand Bypass Branch;
ConnectorList,HW Demand Connectors,Connector:Splitter,HW Demand Splitter,Connector:Mixer,HW Demand Mixer;
Branch,HW Demand Inlet Branch,,Pipe:Adiabatic,Inlet Pipe,HW Demand Inlet,Inlet Pipe Outlet;
Branch,HW Demand Bypass Branch,,Pipe:Adiabatic,Bypass Pipe,Bypass In,Bypass Out;
Branch,HW Demand Outlet Branch,,Pipe:Adiabatic,Outlet Pipe,Outlet Pipe Inlet,HW Demand Outlet;
Pipe:Adiabatic,Inlet Pipe,HW Demand Inlet,Inlet Pipe Outlet;
Pipe:Adiabatic,Bypass Pipe,Bypass In,Bypass Out;
Pipe:Adiabatic,Outlet Pipe,Outlet Pipe Inlet,HW Demand Outlet;
`

// loadFields parses the document name in the test directory and returns
// the fields of one record.
func loadFields(t *testing.T, c *cli.CLI, name, typ, key string) []string {
	t.Helper()

	s := idf.NewStore()
	if _, err := s.Load(c.ReadFile(name)); err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}

	rec, err := s.FindByKey(typ, key)
	if err != nil {
		t.Fatalf("lookup in %s: %v", name, err)
	}

	return rec.Fields()
}

func Test_Run_Prints_Usage_When_No_Command_Given(t *testing.T) {
	t.Parallel()

	// Call Run directly without test helper (which adds --cwd)
	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"idfpatch"}, nil, nil)

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr.String(), ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout.String(), "idfpatch - patch the record network")
	cli.AssertContains(t, stdout.String(), "apply <plan> <idf>")
	cli.AssertContains(t, stdout.String(), "print-config")
	cli.AssertContains(t, stdout.String(), "Global flags:")
	cli.AssertContains(t, stdout.String(), "--idd")
}

func Test_Run_Fails_When_Global_Flag_Is_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "ls")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--cwd")
}

func Test_Run_Fails_When_IDD_Flag_Is_Empty(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--idd=", "print-config")

	cli.AssertContains(t, stderr, "idd path cannot be empty")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Run_Fails_When_Command_Is_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "error: unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Command_Prints_Help_When_Help_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("apply", "--help")

	cli.AssertContains(t, stdout, "Usage: idfpatch apply <plan> <idf> [flags]")
	cli.AssertContains(t, stdout, "--dry-run")
	cli.AssertContains(t, stdout, "--no-backup")
}

func Test_Command_Fails_With_Usage_When_Flag_Is_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("fmt", "--bogus", "model.idf")

	cli.AssertContains(t, stderr, "unknown flag: --bogus")
	cli.AssertContains(t, stderr, "Usage: idfpatch fmt <idf> [flags]")
}

func Test_Command_Prints_Same_Flags_When_Help_Given_Or_Parse_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	help := c.MustRun("fmt", "--help")
	stderr := c.MustFail("fmt", "--bogus")

	_, helpFlags, ok := strings.Cut(help, "\nFlags:\n")
	if !ok {
		t.Fatalf("help has no flags section:\n%s", help)
	}

	_, errFlags, ok := strings.Cut(stderr, "\nFlags:\n")
	if !ok {
		t.Fatalf("stderr has no flags section:\n%s", stderr)
	}

	if helpFlags != errFlags {
		t.Fatalf("flags differ\nhelp:\n%s\nstderr:\n%s", helpFlags, errFlags)
	}
}

func Test_PrintConfig_Shows_Project_Config_When_File_Exists(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".idfpatch.json", `{
  // two-space fields are the default
  "indent": 4,
  "backup": false,
}`)

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "effective_cwd="+c.Dir)
	cli.AssertContains(t, stdout, "idd_path=(builtin)")
	cli.AssertContains(t, stdout, "indent=4")
	cli.AssertContains(t, stdout, "backup=false")
	cli.AssertContains(t, stdout, "project_config="+c.Path(".idfpatch.json"))
	cli.AssertNotContains(t, stdout, "(defaults only)")
}

func Test_PrintConfig_Shows_Defaults_When_No_Config_Exists(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "indent=2")
	cli.AssertContains(t, stdout, "field_comments=true")
	cli.AssertContains(t, stdout, "lock_timeout=5s")
	cli.AssertContains(t, stdout, "(defaults only)")
}
