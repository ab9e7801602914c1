package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/idfpatch/internal/config"
	"github.com/calvinalkan/idfpatch/internal/fs"
)

// FmtCmd returns the fmt command.
func FmtCmd(cfg *config.Config) *Command {
	flags := flag.NewFlagSet("fmt", flag.ContinueOnError)
	flags.BoolP("write", "w", false, "Replace the document instead of printing it")
	flags.Bool("comments", false, "Write field name comments even when disabled in config")

	return &Command{
		Flags: flags,
		Usage: "fmt <idf> [flags]",
		Short: "Reformat a document",
		Long: `Parse a document and write it back in canonical form: one field per line,
one blank line between records. Comments in the input are not kept.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execFmt(io, cfg, flags, args)
		},
	}
}

func execFmt(io *IO, cfg *config.Config, flags *flag.FlagSet, args []string) (err error) {
	if len(args) == 0 {
		return errIDFRequired
	}

	path := args[0]
	write, _ := flags.GetBool("write")
	comments, _ := flags.GetBool("comments")

	if !write {
		store, err := readDocument(cfg, path)
		if err != nil {
			return err
		}

		warnDuplicates(io, store)
		io.Printf("%s", store.Marshal(marshalOptions(cfg, comments)...))

		return nil
	}

	lock, err := fs.LockFile(absPath(cfg, path), cfg.LockTimeoutDur)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}

	defer func() {
		if closeErr := lock.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("unlock %s: %w", path, closeErr))
		}
	}()

	store, err := readDocument(cfg, path)
	if err != nil {
		return err
	}

	warnDuplicates(io, store)

	data := store.Marshal(marshalOptions(cfg, comments)...)
	if err := fs.WriteFileAtomic(absPath(cfg, path), []byte(data)); err != nil {
		return err
	}

	io.Println("wrote", path)

	return nil
}
