package cli_test

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/idfpatch/internal/cli"
	"github.com/calvinalkan/idfpatch/internal/fs"
)

const tunePlan = `{
  // set the scheme, remove a pipe that may be gone already
  "name": "tune loop",
  "vars": {"scheme": "SequentialLoad"},
  "steps": [
    {"op": "set_field", "type": "PlantLoop", "name": "HW Loop",
     "field": "Load Distribution Scheme", "value": "{{.Vars.scheme}}"},
    {"op": "remove", "type": "Pipe:Adiabatic", "name": "Old Meter Pipe", "skip_missing": true},
  ],
}`

const poolPlanTOML = `
name = "swimming pool"

[vars]
loop = "HW Demand"

[[steps]]
op = "load"
text = '''
Branch,Pool Branch,,Pipe:Adiabatic,Pool Pipe,Pool In,Pool Out;
Pipe:Adiabatic,Pool Pipe,Pool In,Pool Out;
'''

[[steps]]
op = "add_branch"
name = "Pool Branch"

[steps.loop]
branch_list = "{{.Vars.loop}} Branches"
splitter = "{{.Vars.loop}} Splitter"
mixer = "{{.Vars.loop}} Mixer"
`

func Test_Apply_Writes_Document_And_Backup_When_Plan_Succeeds(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile("tune.jsonc", tunePlan)

	stdout, stderr, code := c.Run("apply", "tune.jsonc", "model.idf")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	cli.AssertContains(t, stdout, "applied 1 of 2 steps from tune loop (run ")
	cli.AssertContains(t, stdout, "wrote model.idf")
	cli.AssertContains(t, stdout, "backup ")
	cli.AssertContains(t, stderr, "skipped step 2 (remove) Pipe:Adiabatic Old Meter Pipe")

	loop := loadFields(t, c, "model.idf", "PlantLoop", "HW Loop")
	require.Equal(t, "SequentialLoad", loop[len(loop)-1])

	backups, err := fs.Backups(c.Path("model.idf"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	require.Contains(t, stdout, backups[0])

	original, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	require.Equal(t, loopIDF, string(original))
}

func Test_Apply_Prints_Document_When_Dry_Run(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile("tune.jsonc", tunePlan)

	stdout := c.MustRun("apply", "--dry-run", "tune.jsonc", "model.idf")

	cli.AssertContains(t, stdout, "SequentialLoad;")
	cli.AssertContains(t, stdout, "!- Load Distribution Scheme")
	require.Equal(t, loopIDF, c.ReadFile("model.idf"))

	backups, err := fs.Backups(c.Path("model.idf"))
	require.NoError(t, err)
	require.Empty(t, backups)
}

func Test_Apply_Leaves_Document_Unchanged_When_Step_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile("broken.json", `{"steps": [
  {"op": "rename_node", "from": "Bypass In", "to": "Bypass Inlet"},
  {"op": "set_field", "type": "PlantLoop", "name": "No Such Loop", "field": "Fluid Type", "value": "Steam"}
]}`)

	stderr := c.MustFail("apply", "broken.json", "model.idf")

	cli.AssertContains(t, stderr, "step 2 (set_field)")
	cli.AssertContains(t, stderr, "record not found")
	require.Equal(t, loopIDF, c.ReadFile("model.idf"))

	backups, err := fs.Backups(c.Path("model.idf"))
	require.NoError(t, err)
	require.Empty(t, backups)
}

func Test_Apply_Writes_Output_With_Overridden_Var_When_Output_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile("tune.jsonc", tunePlan)

	stdout := c.MustRun("apply", "-o", "out.idf", "--no-backup", "--var", "scheme=UniformLoad", "tune.jsonc", "model.idf")

	cli.AssertContains(t, stdout, "wrote out.idf")
	cli.AssertNotContains(t, stdout, "backup ")
	require.Equal(t, loopIDF, c.ReadFile("model.idf"))

	loop := loadFields(t, c, "out.idf", "PlantLoop", "HW Loop")
	require.Equal(t, "UniformLoad", loop[len(loop)-1])
}

func Test_Apply_Fails_When_Input_Is_Locked_And_Output_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile("tune.jsonc", tunePlan)
	c.WriteFile(".idfpatch.json", `{"lock_timeout": "50ms"}`)

	lock, err := fs.LockFile(c.Path("model.idf"), time.Second)
	require.NoError(t, err)

	defer func() { _ = lock.Close() }()

	stderr := c.MustFail("apply", "-o", "out.idf", "tune.jsonc", "model.idf")

	cli.AssertContains(t, stderr, "lock model.idf")
	cli.AssertContains(t, stderr, "lock would block")
	require.NoFileExists(t, c.Path("out.idf"))
}

func Test_Apply_Fails_When_Var_Has_No_Value(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile("tune.jsonc", tunePlan)

	stderr := c.MustFail("apply", "--var", "scheme", "tune.jsonc", "model.idf")

	cli.AssertContains(t, stderr, "invalid --var")
}

func Test_Apply_Fails_When_Args_Are_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustFail("apply"), "plan path is required")
	cli.AssertContains(t, c.MustFail("apply", "plan.toml"), "idf path is required")
}

func Test_Apply_Adds_Branch_To_Every_Loop_List_When_Plan_Is_TOML(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile("pool.toml", poolPlanTOML)

	stdout := c.MustRun("apply", "-v", "pool.toml", "model.idf")
	cli.AssertContains(t, stdout, "applied 2 of 2 steps from swimming pool")

	want := []string{"HW Demand Branches", "HW Demand Inlet Branch", "HW Demand Bypass Branch", "Pool Branch", "HW Demand Outlet Branch"}
	if diff := cmp.Diff(want, loadFields(t, c, "model.idf", "BranchList", "HW Demand Branches")); diff != "" {
		t.Fatalf("branch list mismatch (-want +got):\n%s", diff)
	}

	want = []string{"HW Demand Mixer", "HW Demand Outlet Branch", "Pool Branch", "HW Demand Bypass Branch"}
	if diff := cmp.Diff(want, loadFields(t, c, "model.idf", "Connector:Mixer", "HW Demand Mixer")); diff != "" {
		t.Fatalf("mixer mismatch (-want +got):\n%s", diff)
	}
}

func Test_Apply_Logs_Steps_To_Stderr_When_Verbose(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)
	c.WriteFile("pool.toml", poolPlanTOML)

	_, stderr, code := c.Run("apply", "--verbose", "--no-backup", "pool.toml", "model.idf")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	cli.AssertContains(t, stderr, "step 1 load fragment")
	cli.AssertContains(t, stderr, "step 2 add_branch Pool Branch")
}
