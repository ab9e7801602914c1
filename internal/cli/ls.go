package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/idfpatch/internal/config"
)

// LsCmd returns the ls command.
func LsCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("ls", flag.ContinueOnError),
		Usage: "ls <idf> [type]",
		Short: "List record types or keys",
		Long: `Without a type, print every record type with its record count, in order of
first appearance. With a type, print the key of each record of that type.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execLs(io, cfg, args)
		},
	}
}

func execLs(io *IO, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errIDFRequired
	}

	store, err := readDocument(cfg, args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		for _, typ := range store.Types() {
			io.Printf("%s\t%d\n", typ, len(store.AllOfType(typ)))
		}

		return nil
	}

	for _, rec := range store.AllOfType(args[1]) {
		io.Println(rec.Key())
	}

	return nil
}
