package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/idfpatch/internal/config"
)

// Run is the main entry point. Returns exit code.
// sigCh receives interrupt signals; the first one cancels the running
// command. Nil disables signal handling.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globalFlags := flag.NewFlagSet("idfpatch", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(&strings.Builder{})

	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagCwd := globalFlags.StringP("cwd", "C", "", "Run as if started in `dir`")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config `file`")
	flagIDD := globalFlags.String("idd", "", "Resolve field names with the IDD `file`")

	colored := !color.NoColor && env["NO_COLOR"] == "" && errOut == os.Stderr
	o := NewIO(out, errOut, colored)

	if len(args) > 0 {
		args = args[1:]
	}

	if err := globalFlags.Parse(args); err != nil {
		o.Error(err)
		printGlobalOptions(o)

		return 1
	}

	cfg, err := config.Load(config.Input{
		WorkDirOverride: *flagCwd,
		ConfigPath:      *flagConfig,
		Overrides:       config.Config{IDDPath: *flagIDD},
		IDDOverride:     globalFlags.Changed("idd"),
		Env:             env,
	})
	if err != nil {
		o.Error(err)
		printGlobalOptions(o)

		return 1
	}

	commands := allCommands(&cfg, in, env)

	rest := globalFlags.Args()
	if *flagHelp || len(rest) == 0 {
		printUsage(o, commands)

		return 0
	}

	name := rest[0]

	idx := slices.IndexFunc(commands, func(c *Command) bool { return c.Name() == name })
	if idx < 0 {
		o.Error(fmt.Errorf("%w: %s", errUnknownCommand, name))
		o.ErrPrintln()
		printUsageTo(o, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return commands[idx].Run(ctx, o, rest[1:])
}

var errUnknownCommand = errors.New("unknown command")

func allCommands(cfg *config.Config, in io.Reader, env map[string]string) []*Command {
	return []*Command{
		ApplyCmd(cfg),
		FmtCmd(cfg),
		ShowCmd(cfg),
		LsCmd(cfg),
		RefsCmd(cfg),
		CheckCmd(cfg),
		ShellCmd(cfg, in, env),
		PrintConfigCmd(cfg),
	}
}

const usageHeader = `idfpatch - patch the record network of EnergyPlus IDF documents

Usage: idfpatch [global flags] <command> [args]
`

func printUsage(o *IO, commands []*Command) {
	o.Println(usageHeader)
	o.Println("Commands:")

	for _, c := range commands {
		o.Println(c.HelpLine())
	}

	o.Println()
	o.Println("Global flags:")
	o.Println(globalOptions)
	o.Println()
	o.Println("Run 'idfpatch <command> --help' for command flags.")
}

func printUsageTo(o *IO, commands []*Command) {
	o.ErrPrintln("Usage: idfpatch [global flags] <command> [args]")
	o.ErrPrintln()
	o.ErrPrintln("Commands:")

	for _, c := range commands {
		o.ErrPrintln(c.HelpLine())
	}
}

const globalOptions = `  -C, --cwd <dir>      Run as if started in <dir>
  -c, --config <file>  Use specified config file
      --idd <file>     Resolve field names with an EnergyPlus IDD file
  -h, --help           Show help`

func printGlobalOptions(o *IO) {
	o.ErrPrintln()
	o.ErrPrintln("Global flags:")
	o.ErrPrintln(globalOptions)
}
