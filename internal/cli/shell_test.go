package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/idfpatch/internal/cli"
	"github.com/calvinalkan/idfpatch/internal/fs"
)

func Test_Shell_Writes_Edits_When_Write_Command_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	input := `ls branch
set pipe:adiabatic "bypass pipe" "Inlet Node Name" "Bypass Inlet"
set Branch "HW Demand Bypass Branch" 4 "Bypass Inlet"
write
quit
`

	stdout, stderr, code := c.RunWithInput(input, "shell", "model.idf")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	cli.AssertContains(t, stdout, "HW Demand Bypass Branch\n")
	cli.AssertContains(t, stdout, `set Pipe:Adiabatic "Bypass Pipe" Inlet Node Name = "Bypass Inlet"`)
	cli.AssertContains(t, stdout, "wrote model.idf")

	require.Equal(t, []string{"Bypass Pipe", "Bypass Inlet", "Bypass Out"}, loadFields(t, c, "model.idf", "Pipe:Adiabatic", "Bypass Pipe"))
	require.Equal(t, "Bypass Inlet", loadFields(t, c, "model.idf", "Branch", "HW Demand Bypass Branch")[4])

	backups, err := fs.Backups(c.Path("model.idf"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
}

func Test_Shell_Warns_When_Quitting_With_Unsaved_Edits(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	_, stderr, code := c.RunWithInput(`rename "Bypass In" "BP In"`+"\nquit\n", "shell", "model.idf")

	require.Equal(t, 1, code)
	cli.AssertContains(t, stderr, "warning: unsaved changes discarded")
	require.Equal(t, loopIDF, c.ReadFile("model.idf"))
}

func Test_Shell_Keeps_Going_When_Command_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("model.idf", loopIDF)

	input := `frobnicate
show Pipe:Adiabatic "No Such Pipe
show Pipe:Adiabatic "No Such Pipe"
rename "Bypass In" "BP In"
refs "bp in"
`

	stdout, stderr, code := c.RunWithInput(input, "shell", "model.idf")

	// Unsaved rename at end of input.
	require.Equal(t, 1, code)

	cli.AssertContains(t, stderr, "error: unknown command: frobnicate")
	cli.AssertContains(t, stderr, "error: unterminated quote")
	cli.AssertContains(t, stderr, "error: record not found")
	cli.AssertContains(t, stdout, `renamed "Bypass In" to "BP In" in 2 fields`)
	cli.AssertContains(t, stdout, `Pipe:Adiabatic "Bypass Pipe" field 1 (Inlet Node Name)`)
}
