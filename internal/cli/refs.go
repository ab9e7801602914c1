package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/idfpatch/internal/config"
	"github.com/calvinalkan/idfpatch/internal/refindex"
	"github.com/calvinalkan/idfpatch/pkg/idf"
)

// RefsCmd returns the refs command.
func RefsCmd(cfg *config.Config) *Command {
	flags := flag.NewFlagSet("refs", flag.ContinueOnError)
	flags.String("index", "", "Keep the reference index in the SQLite `file` (default: in memory)")

	return &Command{
		Flags: flags,
		Usage: "refs <idf> <value> [flags]",
		Short: "List every field holding a value",
		Long: `Print every field whose value equals <value>, case-insensitively, in
document order. Use it to find where a node, branch or component name is
referenced before renaming or removing it.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execRefs(ctx, io, cfg, flags, args)
		},
	}
}

func execRefs(ctx context.Context, io *IO, cfg *config.Config, flags *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return errIDFRequired
	}

	if len(args) < 2 || args[1] == "" {
		return errValueRequired
	}

	store, err := readDocument(cfg, args[0])
	if err != nil {
		return err
	}

	indexPath, _ := flags.GetString("index")

	ix, err := buildIndex(ctx, cfg, indexPath, store)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	refs, err := ix.Refs(ctx, args[1])
	if err != nil {
		return err
	}

	if len(refs) == 0 {
		io.Warn(fmt.Sprintf("no field holds %q", args[1]), "check the spelling or list keys with 'idfpatch ls'")

		return nil
	}

	for _, ref := range refs {
		io.Println(ref.String())
	}

	return nil
}

// buildIndex opens the reference index (in memory when path is empty) and
// rebuilds it from store.
func buildIndex(ctx context.Context, cfg *config.Config, path string, store *idf.Store) (*refindex.Index, error) {
	if path != "" {
		path = absPath(cfg, path)
	}

	ix, err := refindex.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	if _, err := ix.Build(ctx, store); err != nil {
		_ = ix.Close()

		return nil, err
	}

	return ix, nil
}
