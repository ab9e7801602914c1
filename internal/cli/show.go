package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/idfpatch/internal/config"
)

// ShowCmd returns the show command.
func ShowCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <idf> <type> <key>",
		Short: "Show one record",
		Long:  "Print one record with field name comments. Type and key match case-insensitively.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execShow(io, cfg, args)
		},
	}
}

func execShow(io *IO, cfg *config.Config, args []string) error {
	switch len(args) {
	case 0:
		return errIDFRequired
	case 1:
		return errTypeRequired
	case 2:
		return errKeyRequired
	}

	store, err := readDocument(cfg, args[0])
	if err != nil {
		return err
	}

	rec, err := store.FindByKey(args[1], args[2])
	if err != nil {
		return err
	}

	io.Println(store.MarshalRecord(rec, marshalOptions(cfg, true)...))

	return nil
}
