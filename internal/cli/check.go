package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/idfpatch/internal/config"
	"github.com/calvinalkan/idfpatch/pkg/graft"
)

// CheckCmd returns the check command.
func CheckCmd(cfg *config.Config) *Command {
	flags := flag.NewFlagSet("check", flag.ContinueOnError)
	flags.String("index", "", "Keep the reference index in the SQLite `file` (default: in memory)")

	return &Command{
		Flags: flags,
		Usage: "check <idf> [flags]",
		Short: "Report problems in the record network",
		Long: `Check a document for:
  - keys shared by more than one record of a type
  - node names used by exactly one field (a connection with one end)
  - plant and condenser loop sides whose branch list, splitter and mixer
    disagree

Every problem is a warning; the exit code is 1 when there is any.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execCheck(ctx, io, cfg, flags, args)
		},
	}
}

func execCheck(ctx context.Context, io *IO, cfg *config.Config, flags *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return errIDFRequired
	}

	store, err := readDocument(cfg, args[0])
	if err != nil {
		return err
	}

	if err := store.Verify(); err != nil {
		return err
	}

	problems := len(store.Duplicates())
	warnDuplicates(io, store)

	indexPath, _ := flags.GetString("index")

	ix, err := buildIndex(ctx, cfg, indexPath, store)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	orphans, err := ix.OrphanNodes(ctx)
	if err != nil {
		return err
	}

	for _, ref := range orphans {
		problems++

		io.Warn(fmt.Sprintf("node %q is only used by %s", ref.Value, ref), "connect it or fix the spelling")
	}

	sides, err := graft.LoopSides(store)
	if err != nil {
		problems++

		io.Warn(err.Error(), "fix the loop's connector list")
	}

	for _, side := range sides {
		for _, e := range splitErrors(graft.VerifyLoop(store, side.Lists)) {
			problems++

			io.Warn(fmt.Sprintf("%s %s side: %v", side.Loop, side.Side, e), "list the branch in the branch list, splitter and mixer")
		}
	}

	if problems > 0 {
		io.Printf("problems: %d (%d records)\n", problems, store.Len())

		return nil
	}

	io.Printf("ok: %d records, %d types\n", store.Len(), len(store.Types()))

	return nil
}

// splitErrors unpacks an errors.Join result.
func splitErrors(err error) []error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}

	return []error{err}
}
